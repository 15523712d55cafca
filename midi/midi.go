package midi

import (
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"gitlab.com/gomidi/midi/v2/smf"
)

// Read parses a standard MIDI file. The smf reader panics on some broken
// files, which is reported as an error.
func Read(r io.Reader) (s *smf.SMF, e error) {
	// https://github.com/gomidi/midi/issues/20
	defer func() {
		if rec := recover(); rec != nil {
			e = errors.New(fmt.Sprintf("Error parsing midi file... %v", rec))
		}
	}()

	res, err := smf.ReadFrom(r)
	if err != nil {
		return nil, errors.New(fmt.Sprintf("Error parsing midi file... %s", err.Error()))
	}
	return res, nil
}

func IsMidiPath(path string) bool {
	ext := strings.ToLower(filepath.Ext(path))
	return ext == ".mid" || ext == ".midi"
}
