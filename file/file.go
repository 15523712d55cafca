package file

import (
	"bytes"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/jsphweid/kerngrid/db"
	"github.com/jsphweid/kerngrid/eventfile"
	"github.com/jsphweid/kerngrid/grid"
	"github.com/jsphweid/kerngrid/merge"
	"github.com/jsphweid/kerngrid/midi"
	"github.com/jsphweid/kerngrid/model"
	"github.com/jsphweid/kerngrid/musicxml"
	"github.com/jsphweid/kerngrid/sample"
)

type Format string

const (
	Midi     Format = "midi"
	MusicXML Format = "musicxml"
	Events   Format = "events"
	Unknown  Format = ""
)

func FormatOf(path string) Format {
	switch {
	case midi.IsMidiPath(path):
		return Midi
	case musicxml.IsMusicXMLPath(path):
		return MusicXML
	case eventfile.IsEventPath(path):
		return Events
	}
	return Unknown
}

func IsSupported(path string) bool {
	return FormatOf(path) != Unknown
}

// Parse reads a score in the format named by the extension of name. A
// score without a title is titled after name.
func Parse(name string, data []byte) (*model.Score, error) {
	title := strings.TrimSuffix(filepath.Base(name), filepath.Ext(name))

	var score *model.Score
	var err error
	switch FormatOf(name) {
	case Midi:
		s, rerr := midi.Read(bytes.NewReader(data))
		if rerr != nil {
			return nil, rerr
		}
		score, err = midi.ToScore(s, title)
	case MusicXML:
		doc, derr := musicxml.Decode(bytes.NewReader(data))
		if derr != nil {
			return nil, errors.New(fmt.Sprintf("Error parsing musicxml file... %s", derr.Error()))
		}
		score, err = musicxml.ToScore(doc)
	case Events:
		score, err = eventfile.Parse(data)
	default:
		return nil, errors.New(fmt.Sprintf("unsupported file type %q", filepath.Ext(name)))
	}
	if err != nil {
		return nil, err
	}

	hasTitle := false
	for _, r := range score.References {
		hasTitle = hasTitle || r.Key == "OTL"
	}
	if !hasTitle && title != "" {
		score.SetReference("OTL", title)
	}
	return score, nil
}

func Load(path string) (*model.Score, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return Parse(path, data)
}

type Options struct {
	merge.Options

	// Measures limits the output to a range such as "3-8".
	Measures string

	// Metadata, when set, adds reference records looked up by file name.
	Metadata *db.Store
}

// Convert turns score into a kern document. name is the source file
// name used for metadata lookup.
func Convert(name string, score *model.Score, opts Options) (*grid.Document, error) {
	if opts.Measures != "" {
		from, to, err := sample.ParseRange(opts.Measures)
		if err != nil {
			return nil, err
		}
		score, err = sample.Measures(score, from, to)
		if err != nil {
			return nil, err
		}
	}
	if opts.Metadata != nil {
		if err := opts.Metadata.Annotate(score, filepath.Base(name)); err != nil {
			return nil, err
		}
	}
	return merge.Convert(score, opts.Options)
}

func ConvertFile(path string, opts Options) (*grid.Document, error) {
	score, err := Load(path)
	if err != nil {
		return nil, err
	}
	return Convert(path, score, opts)
}

// CreateManifest numbers paths in order. Outputs are filled in as the
// files are converted.
func CreateManifest(paths []string) model.Manifest {
	res := make(model.Manifest)
	for i, v := range paths {
		res[uint32(i)] = model.ManifestEntry{Source: v}
	}
	return res
}
