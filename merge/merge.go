package merge

import (
	"errors"
	"fmt"
	"strings"

	"github.com/jsphweid/kerngrid/debug"
	"github.com/jsphweid/kerngrid/grid"
	"github.com/jsphweid/kerngrid/humnum"
	"github.com/jsphweid/kerngrid/kern"
	"github.com/jsphweid/kerngrid/model"
	"golang.org/x/exp/slices"
)

type Options struct {
	grid.Options

	// RemoveIncipit drops an invisible incipit measure and the range and
	// melody measures that may follow it.
	RemoveIncipit bool
}

type addToken func(m *grid.Measure, text string, timestamp humnum.Num, part, staff, voice int, shape []int) *grid.Slice

// interpretation adds text on a line of its own type.
func interpretation(typ grid.SliceType) addToken {
	return func(m *grid.Measure, text string, timestamp humnum.Num, part, staff, voice int, shape []int) *grid.Slice {
		return m.AddInterpretationToken(typ, text, timestamp, part, staff, voice, shape)
	}
}

// attributeOrder is the order of the interpretation lines written before
// the notes of an instant.
var attributeOrder = []struct {
	kind model.EventKind
	add  addToken
}{
	{model.Stria, interpretation(grid.Stria)},
	{model.Clef, (*grid.Measure).AddClefToken},
	{model.Transpose, (*grid.Measure).AddTransposeToken},
	{model.KeySig, (*grid.Measure).AddKeySigToken},
	{model.KeyDesignation, interpretation(grid.KeyDesignations)},
	{model.TimeSig, (*grid.Measure).AddTimeSigToken},
	{model.Mensuration, (*grid.Measure).AddMeterSigToken},
	{model.Ottava, interpretation(grid.Ottavas)},
}

type partEvent struct {
	part int
	model.Event
}

type stitcher struct {
	g     *grid.Grid
	shape []int
}

// Stitch merges the parts of score into one grid, instant by instant.
// Events without a sequence number are numbered in reading order first.
func Stitch(score *model.Score, opts Options) (*grid.Grid, error) {
	if err := score.Validate(); err != nil {
		return nil, err
	}
	score.Stamp(&model.Sequencer{})

	st := &stitcher{g: grid.New(opts.Options)}
	for _, p := range score.Parts {
		st.shape = append(st.shape, p.Staves())
	}

	for mi := 0; mi < score.MeasureCount(); mi++ {
		if err := st.measure(score, mi); err != nil {
			return nil, err
		}
	}

	g := st.g
	g.MoveBreaksToEndOfPreviousMeasure()
	for p, part := range score.Parts {
		if isDummyName(part.Name) {
			continue
		}
		g.SetPartName(p, part.Name)
	}
	g.FoldLeadingMeasure()
	g.RemoveRedundantClefChanges()
	if opts.RemoveIncipit {
		g.RemoveIncipit()
	}
	g.ExpandLocalCommentLayers()
	return g, nil
}

// Convert stitches and serializes score, with its references as header
// records. RDF records, which explain signifiers, go below the data.
func Convert(score *model.Score, opts Options) (*grid.Document, error) {
	g, err := Stitch(score, opts)
	if err != nil {
		return nil, err
	}
	doc, err := g.Transfer()
	if err != nil {
		return nil, errors.New(fmt.Sprintf("could not serialize grid: %v", err))
	}
	for _, ref := range score.References {
		if strings.HasPrefix(ref.Key, "RDF") {
			doc.AddFooterRecord(ref.Key, ref.Value)
			continue
		}
		doc.AddHeaderRecord(ref.Key, ref.Value)
	}
	return doc, nil
}

func isDummyName(name string) bool {
	return name == "" ||
		strings.Contains(name, "MusicXML") ||
		strings.HasPrefix(name, "Part_") ||
		strings.Contains(name, "Unnamed")
}

func (st *stitcher) measure(score *model.Score, mi int) error {
	first := score.Parts[0].Measures[mi]
	m := st.g.AddMeasureToBack()
	m.Number = first.Number
	m.Timestamp = first.Timestamp
	m.Duration = first.Duration
	m.Style = first.Style
	m.TimeSigDur = first.TimeSigDur
	for p := 1; p < len(score.Parts) && !m.TimeSigDur.IsPositive(); p++ {
		m.TimeSigDur = score.Parts[p].Measures[mi].TimeSigDur
	}
	if !m.TimeSigDur.IsPositive() && len(st.g.Measures) > 1 {
		m.TimeSigDur = st.g.Measures[len(st.g.Measures)-2].TimeSigDur
	}

	events := make([][]model.Event, len(score.Parts))
	for p, part := range score.Parts {
		pm := part.Measures[mi]
		if !pm.Duration.Equal(m.Duration) {
			debug.Log("merge", "measure %d: part %d lasts %v, part 1 lasts %v", m.Number, p+1, pm.Duration, m.Duration)
		}
		for _, e := range pm.Events {
			if e.Start.Less(m.Timestamp) {
				return errors.New(fmt.Sprintf("part %d measure %d: %v event at %v starts before the measure at %v",
					p+1, m.Number, e.Kind, e.Start, m.Timestamp))
			}
		}
		events[p] = append([]model.Event{}, pm.Events...)
		slices.SortStableFunc(events[p], func(a, b model.Event) bool {
			if !a.Start.Equal(b.Start) {
				return a.Start.Less(b.Start)
			}
			return a.Sequence < b.Sequence
		})
	}

	sounding := make([][]bool, len(score.Parts))
	for p := range sounding {
		sounding[p] = make([]bool, st.shape[p])
	}

	cursors := make([]int, len(events))
	for {
		var now humnum.Num
		found := false
		for p, list := range events {
			if cursors[p] >= len(list) {
				continue
			}
			if start := list[cursors[p]].Start; !found || start.Less(now) {
				now = start
				found = true
			}
		}
		if !found {
			break
		}

		var group []partEvent
		for p := len(events) - 1; p >= 0; p-- {
			for cursors[p] < len(events[p]) && events[p][cursors[p]].Start.Equal(now) {
				e := events[p][cursors[p]]
				group = append(group, partEvent{p, e})
				if e.Kind.IsSounding() && e.Staff < len(sounding[p]) {
					sounding[p][e.Staff] = true
				}
				cursors[p]++
			}
		}
		st.now(m, now, group)
	}

	if m.Duration.IsPositive() {
		rest := kern.Recip(m.Duration) + "ryy"
		for p, staves := range sounding {
			for s, used := range staves {
				if !used {
					m.AddDataToken(rest, m.Timestamp, p, s, 0, m.Duration, st.shape)
				}
			}
		}
	}
	return nil
}

// now writes the events of one instant: grace lines leading into it,
// interpretation lines, the note line with its side columns, and grace
// lines trailing the notes.
func (st *stitcher) now(m *grid.Measure, now humnum.Num, group []partEvent) {
	var pre, mid, post, sounding, other []partEvent
	attributes := make(map[model.EventKind][]partEvent)

	type state struct{ attribute, sounding bool }
	seen := make(map[int]*state)
	for _, e := range group {
		s := seen[e.part]
		if s == nil {
			s = &state{}
			seen[e.part] = s
		}
		switch {
		case e.Kind == model.Grace:
			switch {
			case s.sounding:
				post = append(post, e)
			case s.attribute:
				mid = append(mid, e)
			default:
				pre = append(pre, e)
			}
		case e.Kind.IsSounding():
			s.sounding = true
			sounding = append(sounding, e)
		case isAttribute(e.Kind):
			s.attribute = true
			attributes[e.Kind] = append(attributes[e.Kind], e)
		default:
			other = append(other, e)
		}
	}

	st.graceLines(m, now, pre)
	for _, a := range attributeOrder {
		for _, e := range attributes[a.kind] {
			a.add(m, e.Token, now, e.part, e.Staff, 0, st.shape)
		}
	}
	st.graceLines(m, now, mid)

	var sides []partEvent
	for _, e := range other {
		switch e.Kind {
		case model.Tempo:
			m.AddTempoToken(e.Token, now, e.part, e.Staff, 0, st.shape)
		case model.Label:
			m.AddLabelToken(e.Token, now, e.part, 0, st.shape)
		case model.LabelAbbr:
			m.AddLabelAbbrToken(e.Token, now, e.part, 0, st.shape)
		case model.PageBreak:
			m.AddGlobalComment("!!pagebreak:original", now)
		case model.SystemBreak:
			m.AddGlobalComment("!!linebreak:original", now)
		default:
			sides = append(sides, e)
		}
	}

	var data *grid.Slice
	type cell struct{ part, staff, voice int }
	written := make(map[cell]bool)
	for _, e := range sounding {
		c := cell{e.part, e.Staff, e.Voice}
		if written[c] && data != nil {
			data.Staff(e.part, e.Staff).AppendText(e.Voice, e.Token, e.Duration, " ")
		} else {
			data = m.AddDataToken(e.Token, now, e.part, e.Staff, e.Voice, e.Duration, st.shape)
			written[c] = true
		}
		st.verses(data, e)
	}

	if len(sides) > 0 {
		if data == nil {
			data = dataSliceAt(m, now, st.shape)
		}
		for _, e := range sides {
			st.side(m, data, e)
		}
	}

	st.graceLines(m, now, post)
}

func isAttribute(kind model.EventKind) bool {
	for _, a := range attributeOrder {
		if a.kind == kind {
			return true
		}
	}
	return false
}

// graceLines writes graces as lines of their own. The graces of every
// voice are aligned on the last line, which leads into what follows.
func (st *stitcher) graceLines(m *grid.Measure, now humnum.Num, graces []partEvent) {
	type voice struct{ part, staff, voice int }
	var order []voice
	byVoice := make(map[voice][]partEvent)
	for _, e := range graces {
		v := voice{e.part, e.Staff, e.Voice}
		if _, ok := byVoice[v]; !ok {
			order = append(order, v)
		}
		byVoice[v] = append(byVoice[v], e)
	}

	for _, v := range order {
		list := byVoice[v]
		for i := len(list) - 1; i >= 0; i-- {
			if m.AddGraceToken(list[i].Token, now, v.part, v.staff, v.voice, st.shape, len(list)-i) == nil {
				debug.Log("merge", "grace note %q at %v was dropped", list[i].Token, now)
			}
		}
	}
}

// dataSliceAt finds the note line at now, or adds an empty one for side
// columns that have no note of their own.
func dataSliceAt(m *grid.Measure, now humnum.Num, shape []int) *grid.Slice {
	for i := m.Len() - 1; i >= 0; i-- {
		s := m.Slices[i]
		if s.Timestamp.Less(now) {
			break
		}
		if s.IsNote() && s.Timestamp.Equal(now) {
			return s
		}
	}
	s := &grid.Slice{Timestamp: now, Type: grid.Notes}
	s.InitializePartStaves(shape)
	m.PushBack(s)
	return s
}

func (st *stitcher) verses(data *grid.Slice, e partEvent) {
	staff := data.Staff(e.part, e.Staff)
	if staff == nil || len(e.Verses) == 0 {
		return
	}
	count := 0
	for i, text := range e.Verses {
		if text == "" {
			continue
		}
		staff.SetVerse(i, grid.NewToken(text))
		count = i + 1
	}
	st.g.ReportVerseCount(e.part, e.Staff, count)
}

func (st *stitcher) side(m *grid.Measure, data *grid.Slice, e partEvent) {
	part := data.Part(e.part)
	if part == nil {
		debug.Log("merge", "%v at %v: no part %d", e.Kind, data.Timestamp, e.part+1)
		return
	}
	switch e.Kind {
	case model.Harmony:
		part.SetHarmony(grid.NewToken(e.Token))
		st.g.SetHarmonyPresent(e.part)
	case model.FiguredBass:
		part.SetFiguredBass(grid.NewToken(e.Token))
		st.g.SetFiguredBassPresent(e.part)
	case model.Dynamic:
		part.SetDynamics(grid.NewToken(e.Token))
		st.g.SetDynamicsPresent(e.part)
		if layout := kern.DynamicLayout(e.Placement); layout != "" {
			m.AddDynamicsLayoutParameters(data, e.part, layout)
		}
	case model.Text:
		m.AddLayoutParameter(data, e.part, kern.TextLayout(e.Token, e.Placement))
	default:
		debug.Log("merge", "unhandled %v event at %v", e.Kind, data.Timestamp)
	}
}
