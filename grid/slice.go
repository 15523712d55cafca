package grid

import (
	"errors"
	"fmt"
	"strings"

	"github.com/jsphweid/kerngrid/debug"
	"github.com/jsphweid/kerngrid/humnum"
	"github.com/jsphweid/kerngrid/kern"
)

// Counts answers the score wide column questions a slice needs when it is
// written out, so that every line has the same fields.
type Counts interface {
	// VerseCount is the number of verse columns after a staff, or after
	// the part itself when staff is -1.
	VerseCount(part, staff int) int
	HarmonyCount(part int) int
	HasDynamics(part int) bool
	HasFiguredBass(part int) bool
}

// Slice is one instant of the score: one output line.
type Slice struct {
	Timestamp humnum.Num
	Duration  humnum.Num
	Type      SliceType
	Parts     []*Part
}

// NewSlice allocates partCount parts, each with a single staff holding a
// single empty voice.
func NewSlice(timestamp humnum.Num, typ SliceType, partCount int) *Slice {
	s := &Slice{Timestamp: timestamp, Type: typ}
	if partCount > 0 {
		s.InitializeByStaffCount(partCount)
	}
	return s
}

// CloneSliceShape copies the part and staff counts of other. The staves
// have no voices.
func CloneSliceShape(timestamp humnum.Num, typ SliceType, other *Slice) *Slice {
	s := &Slice{Timestamp: timestamp, Type: typ}
	s.Parts = make([]*Part, len(other.Parts))
	for p, part := range other.Parts {
		s.Parts[p] = NewPart(part.StaffCount())
	}
	return s
}

// InitializeBySlice copies the part, staff and voice counts of other,
// with empty voices.
func (s *Slice) InitializeBySlice(other *Slice) {
	s.Parts = make([]*Part, len(other.Parts))
	for p, part := range other.Parts {
		s.Parts[p] = NewPart(part.StaffCount())
		for st, staff := range part.Staves {
			voices := make([]*Voice, staff.VoiceCount())
			for v := range voices {
				voices[v] = &Voice{}
			}
			s.Parts[p].Staves[st].Voices = voices
		}
	}
}

// InitializePartStaves allocates one part per entry of staffCounts with
// that many staves and no voices.
func (s *Slice) InitializePartStaves(staffCounts []int) {
	s.Parts = make([]*Part, len(staffCounts))
	for p, count := range staffCounts {
		s.Parts[p] = NewPart(count)
	}
}

// InitializeByStaffCount allocates count single staff parts, each with
// one empty voice.
func (s *Slice) InitializeByStaffCount(count int) {
	s.Parts = make([]*Part, count)
	for p := range s.Parts {
		s.Parts[p] = NewPart(1)
		s.Parts[p].Staves[0].Voices = []*Voice{{}}
	}
}

func (s *Slice) PartCount() int {
	return len(s.Parts)
}

func (s *Slice) Part(index int) *Part {
	if index < 0 || index >= len(s.Parts) {
		return nil
	}
	return s.Parts[index]
}

func (s *Slice) Staff(part, staff int) *Staff {
	p := s.Part(part)
	if p == nil {
		return nil
	}
	return p.Staff(staff)
}

// Shape is the staff count of every part.
func (s *Slice) Shape() []int {
	shape := make([]int, len(s.Parts))
	for p, part := range s.Parts {
		shape[p] = part.StaffCount()
	}
	return shape
}

// AddToken writes text at part/staff/voice, growing the voice list. Part
// and staff must already exist.
func (s *Slice) AddToken(text string, part, staff, voice int) error {
	if part < 0 || part >= len(s.Parts) {
		return errors.New(fmt.Sprintf("part index %d is out of range: size is %d", part, len(s.Parts)))
	}
	p := s.Parts[part]
	if staff < 0 || staff >= len(p.Staves) {
		return errors.New(fmt.Sprintf("staff index %d is out of range: size is %d", staff, len(p.Staves)))
	}
	if voice < 0 {
		return errors.New(fmt.Sprintf("voice index %d is out of range", voice))
	}
	st := p.Staves[staff]
	for len(st.Voices) <= voice {
		st.Voices = append(st.Voices, &Voice{})
	}
	st.Voices[voice].SetToken(newTrackToken(text, part, staff))
	return nil
}

func (s *Slice) IsData() bool           { return s.Type.IsData() }
func (s *Slice) IsNote() bool           { return s.Type == Notes }
func (s *Slice) IsGrace() bool          { return s.Type == GraceNotes }
func (s *Slice) IsMeasure() bool        { return s.Type == Measures }
func (s *Slice) IsInterpretation() bool { return s.Type.IsInterpretation() }
func (s *Slice) IsClef() bool           { return s.Type == Clefs }
func (s *Slice) IsKeySig() bool         { return s.Type == KeySigs }
func (s *Slice) IsTimeSig() bool        { return s.Type == TimeSigs }
func (s *Slice) IsTempo() bool          { return s.Type == Tempos }
func (s *Slice) IsLabel() bool          { return s.Type == Labels }
func (s *Slice) IsLabelAbbr() bool      { return s.Type == LabelAbbrs }
func (s *Slice) IsTranspose() bool      { return s.Type == Transpositions }
func (s *Slice) IsManipulator() bool    { return s.Type == Manipulators }
func (s *Slice) IsLayout() bool         { return s.Type.IsLayout() }
func (s *Slice) IsLocalLayout() bool    { return s.Type == Layouts }
func (s *Slice) IsGlobalComment() bool  { return s.Type == GlobalComments }
func (s *Slice) IsGlobalLayout() bool   { return s.Type == GlobalLayouts }
func (s *Slice) IsReferenceRecord() bool {
	return s.Type == ReferenceRecords
}
func (s *Slice) IsInvalid() bool { return s.Type == Invalid }
func (s *Slice) HasSpines() bool { return s.Type.HasSpines() }

func (s *Slice) NullToken() string {
	return s.Type.NullToken()
}

// Invalidate removes the slice from the output.
func (s *Slice) Invalidate() {
	s.Type = Invalid
	s.Duration = humnum.Zero
}

// firstText is the text of part 0, staff 0, voice 0.
func (s *Slice) firstText() (string, bool) {
	st := s.Staff(0, 0)
	if st == nil || st.VoiceCount() == 0 {
		return "", false
	}
	t := st.Voices[0].Token()
	if t == nil {
		return "", false
	}
	return t.Text, true
}

// Transfer builds the output fields of the slice. Tokens are moved out of
// their cells, so transferring again yields only placeholders. Parts and
// staves are written right to left, voices left to right, each staff or
// part followed by its side columns padded to the counts in c.
func (s *Slice) Transfer(c Counts, recip bool) []string {
	var line []string
	empty := "."
	switch {
	case s.IsMeasure():
		if text, ok := s.firstText(); ok {
			empty = text
		} else {
			empty = "="
		}
	case s.IsInterpretation():
		empty = "*"
	case s.IsLayout():
		empty = "!"
	}

	if recip && s.HasSpines() {
		switch {
		case s.IsNote():
			line = append(line, kern.Recip(s.Duration))
		case s.IsMeasure():
			if text, ok := s.firstText(); ok {
				line = append(line, text)
			} else {
				line = append(line, "=X")
			}
		case s.IsInterpretation():
			line = append(line, "*")
		case s.IsGrace():
			line = append(line, "q")
		default:
			line = append(line, "!")
		}
	}

	for p := len(s.Parts) - 1; p >= 0; p-- {
		part := s.Parts[p]
		for st := len(part.Staves) - 1; st >= 0; st-- {
			staff := part.Staves[st]
			if len(staff.Voices) == 0 {
				line = append(line, empty)
			}
			for _, v := range staff.Voices {
				if t := v.TakeToken(); t != nil {
					line = append(line, t.Text)
				} else {
					line = append(line, empty)
				}
			}
			if c != nil {
				line = transferSide(line, &staff.Side, empty, c.VerseCount(p, st), false, false, 0)
			}
		}
		if c != nil {
			line = transferSide(line, &part.Side, empty, c.VerseCount(p, -1),
				c.HasDynamics(p), c.HasFiguredBass(p), c.HarmonyCount(p))
		}
	}
	return line
}

func transferSide(line []string, side *Side, empty string, maxVerses int, dynamics, figuredBass bool, maxHarmony int) []string {
	take := func(t *Token) {
		if t != nil {
			line = append(line, t.Text)
		} else {
			line = append(line, empty)
		}
	}

	for i := 0; i < maxVerses; i++ {
		take(side.TakeVerse(i))
	}
	for i := maxVerses; i < side.VerseCount(); i++ {
		if t := side.TakeVerse(i); t != nil {
			debug.Log("grid", "dropping verse %d %q: only %d verse columns", i+1, t.Text, maxVerses)
		}
	}

	if dynamics {
		take(side.TakeDynamics())
	} else if t := side.TakeDynamics(); t != nil {
		debug.Log("grid", "dropping dynamic %q: no dynamics column", t.Text)
	}

	if figuredBass {
		take(side.TakeFiguredBass())
	} else if t := side.TakeFiguredBass(); t != nil {
		debug.Log("grid", "dropping figured bass %q: no figured bass column", t.Text)
	}

	if maxHarmony > 0 {
		take(side.TakeHarmony())
		for i := 1; i < maxHarmony; i++ {
			line = append(line, empty)
		}
	} else if t := side.TakeHarmony(); t != nil {
		debug.Log("grid", "dropping harmony %q: no harmony column", t.Text)
	}
	return line
}

func (s *Slice) String() string {
	var b strings.Builder
	fmt.Fprintf(&b, "%v %v dur=%v", s.Type, s.Timestamp, s.Duration)
	for p, part := range s.Parts {
		fmt.Fprintf(&b, " (p%d:", p)
		for st, staff := range part.Staves {
			fmt.Fprintf(&b, " (s%d: %s)", st, staff.String())
			if side := staff.Side.String(); side != "" {
				fmt.Fprintf(&b, "[%s]", side)
			}
		}
		if side := part.Side.String(); side != "" {
			fmt.Fprintf(&b, " [%s]", side)
		}
		b.WriteString(")")
	}
	return b.String()
}
