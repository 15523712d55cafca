package grid

import (
	"strings"

	"github.com/jsphweid/kerngrid/debug"
	"github.com/jsphweid/kerngrid/humnum"
)

// Staff is the list of voices of one staff in one slice. Voice slots may
// be nil until something is written there.
type Staff struct {
	Voices []*Voice
	Side
}

func NewStaff() *Staff {
	return &Staff{}
}

func (s *Staff) VoiceCount() int {
	if s == nil {
		return 0
	}
	return len(s.Voices)
}

func (s *Staff) Voice(index int) *Voice {
	if s == nil || index < 0 || index >= len(s.Voices) {
		return nil
	}
	return s.Voices[index]
}

func (s *Staff) Push(v *Voice) {
	s.Voices = append(s.Voices, v)
}

func (s *Staff) grow(index int) {
	for len(s.Voices) <= index {
		s.Voices = append(s.Voices, nil)
	}
}

// SetToken stores t in the voice at index, growing the voice list with
// nil slots and replacing any previous occupant.
func (s *Staff) SetToken(index int, t *Token, duration humnum.Num) {
	if index < 0 {
		debug.Log("grid", "negative voice index %d", index)
		return
	}
	s.grow(index)
	s.Voices[index] = &Voice{token: t, duration: duration}
}

func (s *Staff) SetText(index int, text string, duration humnum.Num) {
	s.SetToken(index, NewToken(text), duration)
}

// AppendText adds text to an existing token with spacer between them,
// which is how chord notes share one cell.
func (s *Staff) AppendText(index int, text string, duration humnum.Num, spacer string) {
	v := s.Voice(index)
	if v == nil || v.token == nil {
		s.SetText(index, text, duration)
		return
	}
	v.token.Text += spacer + text
}

// SetNullToken writes the placeholder of typ at index and reports whether
// the cell holds it afterwards. An identical placeholder is left in place.
// A real token in a data slice is never replaced.
func (s *Staff) SetNullToken(index int, typ SliceType, duration humnum.Num) bool {
	null := typ.NullToken()
	if null == "" {
		return false
	}
	if v := s.Voice(index); v != nil && v.token != nil {
		if v.token.Text == null {
			return true
		}
		if typ.IsData() && !v.token.IsNull() {
			debug.Log("grid", "keeping token %q instead of %q", v.token.Text, null)
			return false
		}
		debug.Log("grid", "replacing existing token %q with %q", v.token.Text, null)
	}
	s.SetToken(index, NewToken(null), duration)
	return index >= 0
}

func (s *Staff) String() string {
	fields := make([]string, len(s.Voices))
	for i, v := range s.Voices {
		switch {
		case v == nil:
			fields[i] = "{n}"
		case v.token == nil:
			fields[i] = "{e}"
		default:
			fields[i] = `"` + v.token.Text + `"`
		}
	}
	return strings.Join(fields, " ")
}

// Part is the staves of one part in one slice plus part level sides.
type Part struct {
	Staves []*Staff
	Side
}

func NewPart(staffCount int) *Part {
	p := &Part{Staves: make([]*Staff, staffCount)}
	for i := range p.Staves {
		p.Staves[i] = NewStaff()
	}
	return p
}

func (p *Part) StaffCount() int {
	return len(p.Staves)
}

func (p *Part) Staff(index int) *Staff {
	if index < 0 || index >= len(p.Staves) {
		return nil
	}
	return p.Staves[index]
}
