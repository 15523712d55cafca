// Package eventfile reads and writes scores described as YAML (or JSON,
// which the YAML decoder accepts as well).
//
//	references:
//	  - {key: COM, value: Bach}
//	parts:
//	  - name: Soprano
//	    measures:
//	      - number: 1
//	        timestamp: 0
//	        duration: 4
//	        events:
//	          - {kind: clef, token: "*clefG2", start: 0}
//	          - {kind: note, token: "2c", start: 0, duration: 2, verses: [la]}
//	          - {kind: rest, token: "2r", start: 2, duration: 2}
package eventfile

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/jsphweid/kerngrid/humnum"
	"github.com/jsphweid/kerngrid/kern"
	"github.com/jsphweid/kerngrid/model"
	"gopkg.in/yaml.v3"
)

func IsEventPath(path string) bool {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml", ".json":
		return true
	}
	return false
}

func Load(path string) (*model.Score, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return Parse(data)
}

// Parse decodes a score and fills in what the file may leave out:
// measure numbers, timestamps that follow on from the previous measure,
// and note durations that can be read from the kern token.
func Parse(data []byte) (*model.Score, error) {
	var score model.Score
	if err := yaml.Unmarshal(data, &score); err != nil {
		return nil, errors.New(fmt.Sprintf("Error parsing event file... %s", err.Error()))
	}
	if len(score.Parts) == 0 {
		return nil, errors.New("event file has no parts")
	}
	for p := range score.Parts {
		fill(&score.Parts[p])
	}
	return &score, nil
}

func fill(part *model.Part) {
	ts := humnum.Zero
	for i := range part.Measures {
		m := &part.Measures[i]
		if m.Number == 0 {
			m.Number = 1
			if i > 0 {
				m.Number = part.Measures[i-1].Number + 1
			}
		}
		if i > 0 && m.Timestamp.IsZero() {
			m.Timestamp = ts
		}
		for j := range m.Events {
			e := &m.Events[j]
			if e.Kind.IsSounding() && e.Duration.IsZero() {
				e.Duration = kern.Duration(e.Token)
			}
		}
		if m.Duration.IsZero() {
			m.Duration = measureEnd(m).Sub(m.Timestamp)
		}
		ts = m.Timestamp.Add(m.Duration)
	}
}

func measureEnd(m *model.Measure) humnum.Num {
	end := m.Timestamp
	for _, e := range m.Events {
		end = humnum.Max(end, e.End())
	}
	return end
}

func Write(w io.Writer, score *model.Score) error {
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(score); err != nil {
		return err
	}
	return enc.Close()
}
