package grid

import (
	"strings"

	"github.com/jsphweid/kerngrid/debug"
	"github.com/jsphweid/kerngrid/humnum"
	"github.com/jsphweid/kerngrid/model"
	"golang.org/x/exp/slices"
)

// Measure is the ordered list of slices between two barlines. Slices are
// kept in non-decreasing timestamp order.
type Measure struct {
	Slices     []*Slice
	Number     int
	Timestamp  humnum.Num
	Duration   humnum.Num
	TimeSigDur humnum.Num
	Style      model.MeasureStyle
}

func NewMeasure() *Measure {
	return &Measure{}
}

func (m *Measure) Len() int    { return len(m.Slices) }
func (m *Measure) Empty() bool { return len(m.Slices) == 0 }

func (m *Measure) Front() *Slice {
	if m.Empty() {
		return nil
	}
	return m.Slices[0]
}

func (m *Measure) Back() *Slice {
	if m.Empty() {
		return nil
	}
	return m.Slices[len(m.Slices)-1]
}

func (m *Measure) PushBack(s ...*Slice) {
	m.Slices = append(m.Slices, s...)
}

func (m *Measure) PushFront(s *Slice) {
	m.Slices = slices.Insert(m.Slices, 0, s)
}

func (m *Measure) Insert(index int, s ...*Slice) {
	m.Slices = slices.Insert(m.Slices, index, s...)
}

func (m *Measure) RemoveAt(index int) *Slice {
	s := m.Slices[index]
	m.Slices = slices.Delete(m.Slices, index, index+1)
	return s
}

func (m *Measure) IndexOf(s *Slice) int {
	return slices.Index(m.Slices, s)
}

func (m *Measure) IsDouble() bool           { return m.Style == model.Double }
func (m *Measure) IsFinal() bool            { return m.Style == model.Final }
func (m *Measure) IsRepeatBackward() bool   { return m.Style == model.RepeatBackward }
func (m *Measure) IsRepeatForward() bool    { return m.Style == model.RepeatForward }
func (m *Measure) IsRepeatBoth() bool       { return m.Style == model.RepeatBoth }
func (m *Measure) IsInvisibleBarline() bool { return m.Style == model.Invisible }

func shapedSlice(timestamp humnum.Num, typ SliceType, shape []int) *Slice {
	s := &Slice{Timestamp: timestamp, Type: typ}
	s.InitializePartStaves(shape)
	return s
}

func (m *Measure) write(s *Slice, text string, part, staff, voice int, duration humnum.Num) {
	if err := s.AddToken(text, part, staff, voice); err != nil {
		debug.Log("grid", "measure %d: %v", m.Number, err)
		return
	}
	s.Parts[part].Staves[staff].Voices[voice].SetDuration(duration)
}

// AddDataToken puts text in the note slice at timestamp, creating the
// slice when needed. shape gives the staff count of every part.
func (m *Measure) AddDataToken(text string, timestamp humnum.Num, part, staff, voice int, duration humnum.Num, shape []int) *Slice {
	create := func() *Slice {
		s := shapedSlice(timestamp, Notes, shape)
		m.write(s, text, part, staff, voice, duration)
		return s
	}

	if m.Empty() || m.Back().Timestamp.Less(timestamp) {
		s := create()
		m.PushBack(s)
		return s
	}

	for i, s := range m.Slices {
		if s.Timestamp.Equal(timestamp) && s.IsGrace() {
			continue
		}
		if !s.IsData() {
			continue
		}
		if s.Timestamp.Equal(timestamp) {
			m.write(s, text, part, staff, voice, duration)
			return s
		}
		if s.Timestamp.Greater(timestamp) {
			n := create()
			m.Insert(i, n)
			return n
		}
	}

	s := create()
	m.PushBack(s)
	return s
}

// AddGraceToken puts a grace note on the graceNumber-th line of the grace
// run that ends the measure at timestamp, counting back from the last line.
// Missing lines are added at the start of the run.
func (m *Measure) AddGraceToken(text string, timestamp humnum.Num, part, staff, voice int, shape []int, graceNumber int) *Slice {
	if graceNumber < 1 {
		debug.Log("grid", "grace number %d has to be larger than 0", graceNumber)
		return nil
	}
	if !m.Empty() && timestamp.Less(m.Back().Timestamp) {
		debug.Log("grid", "grace note at %v precedes slice at %v", timestamp, m.Back().Timestamp)
		return nil
	}
	create := func() *Slice {
		s := shapedSlice(timestamp, GraceNotes, shape)
		m.write(s, text, part, staff, voice, humnum.Zero)
		return s
	}

	counter := 0
	for i := len(m.Slices) - 1; i >= 0; i-- {
		s := m.Slices[i]
		if s.Timestamp.Equal(timestamp) {
			if s.IsLayout() {
				continue
			}
			if s.IsGrace() {
				counter++
				if counter == graceNumber {
					m.write(s, text, part, staff, voice, humnum.Zero)
					return s
				}
				continue
			}
		}
		n := create()
		m.Insert(i+1, n)
		return n
	}

	s := create()
	m.PushFront(s)
	return s
}

// addInterpretation places text in a slice of typ at timestamp. A new
// slice goes before the note slice of the same instant and after the
// grace lines already there.
func (m *Measure) addInterpretation(typ SliceType, text string, timestamp humnum.Num, part, staff, voice int, shape []int) *Slice {
	create := func() *Slice {
		s := shapedSlice(timestamp, typ, shape)
		m.write(s, text, part, staff, voice, humnum.Zero)
		return s
	}

	if m.Empty() || m.Back().Timestamp.Less(timestamp) {
		s := create()
		m.PushBack(s)
		return s
	}

	for i, s := range m.Slices {
		switch {
		case s.Timestamp.Equal(timestamp) && s.Type == typ:
			m.write(s, text, part, staff, voice, humnum.Zero)
			return s
		case s.Timestamp.Equal(timestamp) && s.IsNote(), s.Timestamp.Greater(timestamp):
			n := create()
			m.Insert(i, n)
			return n
		}
	}

	s := create()
	m.PushBack(s)
	return s
}

// AddInterpretationToken places text on an interpretation line of typ,
// for the kinds without a helper of their own.
func (m *Measure) AddInterpretationToken(typ SliceType, text string, timestamp humnum.Num, part, staff, voice int, shape []int) *Slice {
	if !typ.IsInterpretation() {
		debug.Log("grid", "%v is not an interpretation line", typ)
		return nil
	}
	return m.addInterpretation(typ, text, timestamp, part, staff, voice, shape)
}

func (m *Measure) AddTempoToken(text string, timestamp humnum.Num, part, staff, voice int, shape []int) *Slice {
	return m.addInterpretation(Tempos, text, timestamp, part, staff, voice, shape)
}

func (m *Measure) AddTimeSigToken(text string, timestamp humnum.Num, part, staff, voice int, shape []int) *Slice {
	return m.addInterpretation(TimeSigs, text, timestamp, part, staff, voice, shape)
}

func (m *Measure) AddMeterSigToken(text string, timestamp humnum.Num, part, staff, voice int, shape []int) *Slice {
	return m.addInterpretation(MeterSigs, text, timestamp, part, staff, voice, shape)
}

func (m *Measure) AddKeySigToken(text string, timestamp humnum.Num, part, staff, voice int, shape []int) *Slice {
	return m.addInterpretation(KeySigs, text, timestamp, part, staff, voice, shape)
}

func (m *Measure) AddTransposeToken(text string, timestamp humnum.Num, part, staff, voice int, shape []int) *Slice {
	return m.addInterpretation(Transpositions, text, timestamp, part, staff, voice, shape)
}

func (m *Measure) AddClefToken(text string, timestamp humnum.Num, part, staff, voice int, shape []int) *Slice {
	return m.addInterpretation(Clefs, text, timestamp, part, staff, voice, shape)
}

// addLabel writes on the last staff of the part, which is the leftmost
// column of the part in the output.
func (m *Measure) addLabel(typ SliceType, text string, timestamp humnum.Num, part, voice int, shape []int) *Slice {
	staff := 0
	if part >= 0 && part < len(shape) && shape[part] > 0 {
		staff = shape[part] - 1
	}
	create := func() *Slice {
		s := shapedSlice(timestamp, typ, shape)
		m.write(s, text, part, staff, voice, humnum.Zero)
		return s
	}

	if m.Empty() || m.Back().Timestamp.Less(timestamp) {
		s := create()
		m.PushBack(s)
		return s
	}
	for _, s := range m.Slices {
		if s.Timestamp.Equal(timestamp) && s.Type == typ {
			m.write(s, text, part, staff, voice, humnum.Zero)
			return s
		}
	}
	for i, s := range m.Slices {
		if s.Timestamp.GreaterEq(timestamp) {
			n := create()
			m.Insert(i, n)
			return n
		}
	}
	s := create()
	m.PushBack(s)
	return s
}

func (m *Measure) AddLabelToken(text string, timestamp humnum.Num, part, voice int, shape []int) *Slice {
	return m.addLabel(Labels, text, timestamp, part, voice, shape)
}

func (m *Measure) AddLabelAbbrToken(text string, timestamp humnum.Num, part, voice int, shape []int) *Slice {
	return m.addLabel(LabelAbbrs, text, timestamp, part, voice, shape)
}

// AddGlobalComment inserts a "!!" line before the first slice at
// timestamp. The same comment is not repeated at one instant.
func (m *Measure) AddGlobalComment(text string, timestamp humnum.Num) *Slice {
	create := func() *Slice {
		s := NewSlice(timestamp, GlobalComments, 1)
		m.write(s, text, 0, 0, 0, humnum.Zero)
		return s
	}

	if m.Empty() || m.Back().Timestamp.Less(timestamp) {
		s := create()
		m.PushBack(s)
		return s
	}
	for i, s := range m.Slices {
		if s.Timestamp.Equal(timestamp) {
			if s.IsGlobalComment() {
				if existing, ok := s.firstText(); ok && existing == text {
					return nil
				}
			}
			n := create()
			m.Insert(i, n)
			return n
		}
		if s.Timestamp.Greater(timestamp) {
			n := create()
			m.Insert(i, n)
			return n
		}
	}
	return nil
}

// AddLayoutParameter attaches a local layout comment for part above
// slice. An unused cell in the layout lines already above the slice is
// reused before a new layout line is made.
func (m *Measure) AddLayoutParameter(slice *Slice, part int, text string) {
	index := m.IndexOf(slice)
	if index < 0 {
		debug.Log("grid", "measure %d: layout target slice not found", m.Number)
		return
	}

	i := index - 1
	for ; i >= 0; i-- {
		prev := m.Slices[i]
		if !prev.IsLayout() {
			break
		}
		st := prev.Staff(part, 0)
		if st == nil {
			continue
		}
		if st.VoiceCount() == 0 {
			st.Push(&Voice{})
		}
		if v := st.Voices[0]; v.token == nil || v.token.Text == "!" {
			v.SetToken(newTrackToken(text, part, 0))
			return
		}
	}

	n := &Slice{Timestamp: slice.Timestamp, Type: Layouts}
	n.InitializeBySlice(slice)
	m.Insert(i+1, n)
	st := n.Staff(part, 0)
	if st == nil {
		debug.Log("grid", "measure %d: no staff for layout in part %d", m.Number, part)
		return
	}
	if st.VoiceCount() == 0 {
		st.Push(&Voice{})
	}
	st.Voices[0].SetToken(newTrackToken(text, part, 0))
}

// AddDynamicsLayoutParameters is AddLayoutParameter for the dynamics
// column of the part.
func (m *Measure) AddDynamicsLayoutParameters(slice *Slice, part int, text string) {
	index := m.IndexOf(slice)
	if index < 0 {
		debug.Log("grid", "measure %d: dynamics layout target slice not found", m.Number)
		return
	}

	i := index - 1
	for ; i >= 0; i-- {
		prev := m.Slices[i]
		if !prev.IsLayout() {
			break
		}
		p := prev.Part(part)
		if p == nil {
			continue
		}
		if d := p.Dynamics(); d == nil || d.Text == "!" {
			p.SetDynamics(newTrackToken(text, part, -1))
			return
		}
	}

	n := &Slice{Timestamp: slice.Timestamp, Type: Layouts}
	n.InitializeBySlice(slice)
	m.Insert(i+1, n)
	p := n.Part(part)
	if p == nil {
		debug.Log("grid", "measure %d: no part %d for dynamics layout", m.Number, part)
		return
	}
	p.SetDynamics(newTrackToken(text, part, -1))
}

// Transfer writes the measure to doc. A note slice before the closing
// barline that still has no duration gets the rest of the measure. When
// addBar is set an opening barline precedes the first data, layout or
// manipulator line.
func (m *Measure) Transfer(doc *Document, c Counts, recip bool, addBar bool, startBar int) {
	if len(m.Slices) >= 2 && m.Back().IsMeasure() {
		i := len(m.Slices) - 2
		for i > 0 && !m.Slices[i].IsData() {
			i--
		}
		s := m.Slices[i]
		if s.IsData() && s.Duration.IsZero() {
			s.Duration = m.Timestamp.Add(m.Duration).Sub(s.Timestamp)
		}
	}

	foundData := false
	addedBar := false
	for _, s := range m.Slices {
		if s.IsInvalid() {
			continue
		}
		if s.IsData() || s.IsLayout() || s.IsManipulator() {
			foundData = true
		}
		if foundData && addBar && !addedBar && !m.Duration.IsZero() {
			doc.appendInitialBarline(startBar)
			addedBar = true
		}
		doc.appendSlice(s, s.Transfer(c, recip))
	}
}

func (m *Measure) dataTokens(fn func(t *Token) bool) bool {
	for _, s := range m.Slices {
		if !s.IsData() {
			continue
		}
		for _, part := range s.Parts {
			for _, staff := range part.Staves {
				for _, v := range staff.Voices {
					if !fn(v.Token()) {
						return false
					}
				}
			}
		}
	}
	return true
}

// IsInvisible is true when every note of the measure is an invisible rest.
func (m *Measure) IsInvisible() bool {
	return m.dataTokens(func(t *Token) bool {
		return t != nil && strings.Contains(t.Text, "yy")
	})
}

// IsSingleChordMeasure is true when every data cell holds a chord.
func (m *Measure) IsSingleChordMeasure() bool {
	return m.dataTokens(func(t *Token) bool {
		return t != nil && strings.Contains(t.Text, " ")
	})
}

// IsMonophonicMeasure is true when the first data line has exactly one
// visible voice and the other voices hold invisible rests.
func (m *Measure) IsMonophonicMeasure() bool {
	for _, s := range m.Slices {
		if !s.IsData() {
			continue
		}
		visible, invisible := 0, 0
		for _, part := range s.Parts {
			for _, staff := range part.Staves {
				for _, v := range staff.Voices {
					t := v.Token()
					if t == nil {
						return false
					}
					if strings.Contains(t.Text, "yy") {
						invisible++
					} else {
						visible++
					}
				}
			}
		}
		return visible == 1 && invisible > 0
	}
	return false
}

func (m *Measure) FirstSpinedSlice() *Slice {
	for _, s := range m.Slices {
		if s.HasSpines() {
			return s
		}
	}
	return nil
}

func (m *Measure) LastSpinedSlice() *Slice {
	for i := len(m.Slices) - 1; i >= 0; i-- {
		s := m.Slices[i]
		if s.IsGlobalLayout() || s.IsGlobalComment() || s.IsReferenceRecord() {
			continue
		}
		return s
	}
	return nil
}

func (m *Measure) String() string {
	var b strings.Builder
	for _, s := range m.Slices {
		b.WriteString(s.String())
		b.WriteString("\n")
	}
	return b.String()
}
