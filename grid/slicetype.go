package grid

import "fmt"

// SliceType is the kind of line a slice becomes in the output.
type SliceType int

const (
	Notes SliceType = iota + 1
	GraceNotes
	Measures
	Stria
	Clefs
	Transpositions
	KeyDesignations
	KeySigs
	TimeSigs
	MeterSigs
	Tempos
	Labels
	LabelAbbrs
	Ottavas
	Exclusives
	Manipulators
	Layouts
	LocalComments
	Invalid
	GlobalComments
	GlobalLayouts
	ReferenceRecords
)

var sliceTypeNames = map[SliceType]string{
	Notes:            "notes",
	GraceNotes:       "gracenotes",
	Measures:         "measures",
	Stria:            "stria",
	Clefs:            "clefs",
	Transpositions:   "transpositions",
	KeyDesignations:  "keydesignations",
	KeySigs:          "keysigs",
	TimeSigs:         "timesigs",
	MeterSigs:        "metersigs",
	Tempos:           "tempos",
	Labels:           "labels",
	LabelAbbrs:       "labelabbrs",
	Ottavas:          "ottavas",
	Exclusives:       "exclusives",
	Manipulators:     "manipulators",
	Layouts:          "layouts",
	LocalComments:    "localcomments",
	Invalid:          "invalid",
	GlobalComments:   "globalcomments",
	GlobalLayouts:    "globallayouts",
	ReferenceRecords: "referencerecords",
}

func (t SliceType) String() string {
	if name, ok := sliceTypeNames[t]; ok {
		return name
	}
	return fmt.Sprintf("SliceType(%d)", int(t))
}

func (t SliceType) IsData() bool {
	switch t {
	case Notes, GraceNotes:
		return true
	}
	return false
}

func (t SliceType) IsMeasure() bool {
	return t == Measures
}

func (t SliceType) IsInterpretation() bool {
	switch t {
	case Stria, Clefs, Transpositions, KeyDesignations, KeySigs, TimeSigs,
		MeterSigs, Tempos, Labels, LabelAbbrs, Ottavas, Exclusives, Manipulators:
		return true
	}
	return false
}

func (t SliceType) IsLayout() bool {
	switch t {
	case Layouts, LocalComments:
		return true
	}
	return false
}

// HasSpines is false for lines that are not split into one field per
// spine: global comments, global layouts and reference records. Invalid
// slices are never written.
func (t SliceType) HasSpines() bool {
	switch t {
	case Notes, GraceNotes, Measures, Stria, Clefs, Transpositions,
		KeyDesignations, KeySigs, TimeSigs, MeterSigs, Tempos, Labels,
		LabelAbbrs, Ottavas, Exclusives, Manipulators, Layouts, LocalComments:
		return true
	}
	return false
}

// NullToken is the placeholder for an empty cell of this kind of slice.
// Unspined kinds have no placeholder.
func (t SliceType) NullToken() string {
	switch {
	case t.IsData():
		return "."
	case t.IsMeasure():
		return "="
	case t.IsInterpretation():
		return "*"
	case t.IsLayout():
		return "!"
	}
	return ""
}
