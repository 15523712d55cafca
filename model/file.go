package model

import "strconv"

// Manifest maps output file numbers to where each conversion came from.
type Manifest = map[uint32]ManifestEntry

type ManifestEntry struct {
	Source string
	Output string
	Error  string
}

// ScoreMetadata is what the metadata table knows about a source file.
type ScoreMetadata struct {
	Title    string
	Composer string
	Release  string
	Year     uint
}

// References renders the known fields as reference records.
func (m ScoreMetadata) References() []Reference {
	var res []Reference
	if m.Composer != "" {
		res = append(res, Reference{Key: "COM", Value: m.Composer})
	}
	if m.Title != "" {
		res = append(res, Reference{Key: "OTL", Value: m.Title})
	}
	if m.Year != 0 {
		res = append(res, Reference{Key: "ODT", Value: strconv.FormatUint(uint64(m.Year), 10)})
	}
	if m.Release != "" {
		res = append(res, Reference{Key: "PTL", Value: m.Release})
	}
	return res
}
