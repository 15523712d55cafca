package musicxml

import (
	"errors"
	"fmt"
	"math"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/jsphweid/kerngrid/debug"
	"github.com/jsphweid/kerngrid/humnum"
	"github.com/jsphweid/kerngrid/kern"
	"github.com/jsphweid/kerngrid/model"
)

var typeRecip = map[string]string{
	"long":    "00",
	"breve":   "0",
	"whole":   "1",
	"half":    "2",
	"quarter": "4",
	"eighth":  "8",
	"16th":    "16",
	"32nd":    "32",
	"64th":    "64",
	"128th":   "128",
}

var typeQuarters = map[string]float64{
	"breve":   8,
	"whole":   4,
	"half":    2,
	"quarter": 1,
	"eighth":  0.5,
	"16th":    0.25,
	"32nd":    0.125,
}

func IsMusicXMLPath(path string) bool {
	ext := strings.ToLower(filepath.Ext(path))
	return ext == ".musicxml" || ext == ".xml"
}

// ToScore converts a decoded document. Parts keep the order of the file.
func ToScore(doc *Document) (*model.Score, error) {
	if len(doc.Parts) == 0 {
		return nil, errors.New("musicxml score has no parts")
	}
	score := &model.Score{References: references(doc)}

	info := make(map[string]ScorePart)
	for _, sp := range doc.PartList {
		info[sp.ID] = sp
	}
	editorial := false
	for i, p := range doc.Parts {
		pc := newPartConverter(info[p.ID], i == 0)
		part, err := pc.convert(p)
		if err != nil {
			return nil, errors.New(fmt.Sprintf("part %s: %s", p.ID, err.Error()))
		}
		score.Parts = append(score.Parts, part)
		editorial = editorial || pc.editorial
	}
	if editorial {
		score.References = append(score.References, model.Reference{Key: "RDF**kern", Value: "i = editorial accidental"})
	}
	return score, nil
}

func references(doc *Document) []model.Reference {
	var res []model.Reference
	add := func(key, value string) {
		value = strings.TrimSpace(value)
		if value != "" {
			res = append(res, model.Reference{Key: key, Value: value})
		}
	}
	for _, c := range doc.Identification.Creators {
		switch c.Type {
		case "composer":
			add("COM", c.Name)
		case "lyricist":
			add("LYR", c.Name)
		case "arranger":
			add("LAR", c.Name)
		}
	}
	title := doc.Work.Title
	if title == "" {
		title = doc.MovementTitle
	}
	add("OTL", title)
	add("OPS", doc.Work.Number)
	add("YEC", doc.Identification.Rights)
	return res
}

type partConverter struct {
	info       ScorePart
	first      bool
	divisions  int
	staves     int
	timeSigDur humnum.Num
	voices     map[int]map[string]int
	shifts     map[int]OctaveShift
	editorial  bool
}

func newPartConverter(info ScorePart, first bool) *partConverter {
	return &partConverter{
		info:      info,
		first:     first,
		divisions: 1,
		staves:    1,
		voices:    make(map[int]map[string]int),
		shifts:    make(map[int]OctaveShift),
	}
}

// measureState is the reading position inside one measure.
type measureState struct {
	start     humnum.Num
	cursor    humnum.Num
	lastStart humnum.Num
	end       humnum.Num
	events    []model.Event
}

func (ms *measureState) add(e model.Event) {
	ms.events = append(ms.events, e)
}

func (pc *partConverter) convert(p Part) (model.Part, error) {
	if len(p.Measures) == 0 {
		return model.Part{}, errors.New("part has no measures")
	}
	for _, m := range p.Measures {
		for _, el := range m.Elements {
			if a, ok := el.(*Attributes); ok && a.Staves > pc.staves {
				pc.staves = a.Staves
			}
		}
	}

	part := model.Part{
		Name:         strings.TrimSpace(pc.info.Name),
		Abbreviation: strings.TrimSpace(pc.info.Abbreviation),
		StaffCount:   pc.staves,
	}
	ts := humnum.Zero
	for i := range p.Measures {
		m := &p.Measures[i]
		ms := &measureState{start: ts, cursor: ts, lastStart: ts, end: ts}
		if i == 0 && part.Abbreviation != "" {
			ms.add(model.Event{Kind: model.LabelAbbr, Token: "*I'" + part.Abbreviation, Start: ts})
		}

		style := model.Plain
		for _, el := range m.Elements {
			switch el := el.(type) {
			case *Attributes:
				pc.attributes(ms, el)
			case *Note:
				pc.note(ms, el)
			case *Backup:
				ms.cursor = humnum.Max(ms.start, ms.cursor.Sub(pc.duration(el.Duration)))
			case *Forward:
				ms.cursor = ms.cursor.Add(pc.duration(el.Duration))
				ms.end = humnum.Max(ms.end, ms.cursor)
			case *Direction:
				pc.direction(ms, el)
			case *Sound:
				if bpm, err := strconv.ParseFloat(el.Tempo, 64); err == nil && bpm > 0 {
					ms.add(model.Event{Kind: model.Tempo, Token: kern.Tempo(bpm), Start: ms.cursor})
				}
			case *Harmony:
				pc.harmony(ms, el)
			case *FiguredBass:
				pc.figuredBass(ms, el)
			case *Barline:
				if el.Location == "left" {
					if el.Repeat.Direction == "forward" {
						if i == 0 {
							debug.Log("musicxml", "forward repeat at the start of part %s has no barline to sit on", p.ID)
						} else {
							prev := &part.Measures[i-1]
							prev.Style = prev.Style.WithForwardRepeat()
						}
					}
					continue
				}
				style = model.StyleFromMusicXML(el.BarStyle, el.Repeat.Direction)
			case *Print:
				if !pc.first {
					continue
				}
				if el.NewPage == "yes" {
					ms.add(model.Event{Kind: model.PageBreak, Start: ms.start})
				} else if el.NewSystem == "yes" {
					ms.add(model.Event{Kind: model.SystemBreak, Start: ms.start})
				}
			}
		}

		dur := ms.end.Sub(ms.start)
		if !dur.IsPositive() {
			dur = pc.timeSigDur
		}
		part.Measures = append(part.Measures, model.Measure{
			Number:     m.MeasureNumber(i + 1),
			Timestamp:  ts,
			Duration:   dur,
			TimeSigDur: pc.timeSigDur,
			Style:      style,
			Events:     ms.events,
		})
		ts = ts.Add(dur)
	}
	return part, nil
}

func (pc *partConverter) duration(divisions int) humnum.Num {
	return humnum.New(divisions, pc.divisions)
}

func (pc *partConverter) staff(number int) int {
	if number < 1 || number > pc.staves {
		return 0
	}
	return number - 1
}

// targets lists the staves an attribute applies to. Attributes without
// a number apply to every staff.
func (pc *partConverter) targets(number int) []int {
	if number >= 1 && number <= pc.staves {
		return []int{number - 1}
	}
	res := make([]int, pc.staves)
	for i := range res {
		res[i] = i
	}
	return res
}

// voice numbers the voices of each staff in order of appearance.
func (pc *partConverter) voice(staff int, id string) int {
	ids := pc.voices[staff]
	if ids == nil {
		ids = make(map[string]int)
		pc.voices[staff] = ids
	}
	if v, ok := ids[id]; ok {
		return v
	}
	ids[id] = len(ids)
	return ids[id]
}

func (pc *partConverter) attributes(ms *measureState, a *Attributes) {
	if a.Divisions > 0 {
		pc.divisions = a.Divisions
	}
	at := ms.cursor
	for _, c := range a.Clefs {
		ms.add(model.Event{Kind: model.Clef, Token: kern.Clef(c.Sign, c.Line, c.OctaveChange), Start: at, Staff: pc.staff(c.Number)})
	}
	if a.Transpose != nil {
		for _, s := range pc.targets(0) {
			ms.add(model.Event{Kind: model.Transpose, Token: kern.Transpose(a.Transpose.Diatonic, a.Transpose.Chromatic), Start: at, Staff: s})
		}
	}
	for _, k := range a.Keys {
		for _, s := range pc.targets(k.Number) {
			ms.add(model.Event{Kind: model.KeySig, Token: kern.KeySig(k.Fifths), Start: at, Staff: s})
			if k.Mode != "" {
				if token := kern.KeyDesignation(k.Fifths, k.Mode); token != "" {
					ms.add(model.Event{Kind: model.KeyDesignation, Token: token, Start: at, Staff: s})
				}
			}
		}
	}
	for _, t := range a.Times {
		beats := t.BeatCount()
		if beats <= 0 || t.BeatType <= 0 {
			debug.Log("musicxml", "unreadable time signature %q/%d", t.Beats, t.BeatType)
			continue
		}
		pc.timeSigDur = kern.TimeSigDuration(beats, t.BeatType)
		for _, s := range pc.targets(t.Number) {
			ms.add(model.Event{Kind: model.TimeSig, Token: kern.TimeSig(beats, t.BeatType), Start: at, Staff: s})
			if token := kern.Mensuration(t.Symbol); token != "" {
				ms.add(model.Event{Kind: model.Mensuration, Token: token, Start: at, Staff: s})
			}
		}
	}
	for _, d := range a.StaffDetails {
		if d.Lines <= 0 {
			continue
		}
		for _, s := range pc.targets(d.Number) {
			ms.add(model.Event{Kind: model.Stria, Token: kern.Stria(d.Lines), Start: at, Staff: s})
		}
	}
}

func (pc *partConverter) note(ms *measureState, n *Note) {
	staff := pc.staff(n.Staff)
	voice := pc.voice(staff, n.Voice)
	start := ms.cursor
	if n.Chord != nil {
		start = ms.lastStart
	}

	if n.Grace != nil {
		token := graceRecip(n) + notePitch(n) + "q"
		if n.Grace.Slash != "yes" {
			token += "q"
		}
		if n.Chord != nil && len(ms.events) > 0 {
			last := &ms.events[len(ms.events)-1]
			if last.Kind == model.Grace && last.Staff == staff && last.Voice == voice {
				last.Token += " " + token
				return
			}
		}
		ms.add(model.Event{Kind: model.Grace, Token: token, Start: start, Staff: staff, Voice: voice})
		return
	}

	if n.Duration <= 0 {
		debug.Log("musicxml", "skipping note without duration at %v", start)
		return
	}
	dur := pc.duration(n.Duration)
	e := model.Event{Start: start, Duration: dur, Staff: staff, Voice: voice}
	if n.Rest != nil {
		e.Kind = model.Rest
		e.Token = kern.Rest(dur)
		if n.PrintObject == "no" {
			e.Token += "yy"
		}
	} else {
		e.Kind = model.Note
		pitch := notePitch(n)
		if n.Accidental.IsEditorial() {
			pc.editorial = true
			if !strings.ContainsAny(pitch, "#-") {
				pitch += "n"
			}
			pitch += "i"
		}
		e.Token = tie(kern.Recip(dur)+pitch, n.Ties)
	}
	e.Verses = verses(n.Lyrics)
	ms.add(e)

	if n.Chord == nil {
		ms.lastStart = start
		ms.cursor = start.Add(dur)
	}
	ms.end = humnum.Max(ms.end, start.Add(dur))
}

func notePitch(n *Note) string {
	switch {
	case n.Pitch != nil:
		return kern.Pitch(n.Pitch.Step, int(math.Round(n.Pitch.Alter)), n.Pitch.Octave)
	case n.Unpitched != nil:
		return kern.Pitch(n.Unpitched.Step, 0, n.Unpitched.Octave)
	}
	return "r"
}

func graceRecip(n *Note) string {
	recip, ok := typeRecip[n.Type]
	if !ok {
		recip = "8"
	}
	return recip + strings.Repeat(".", len(n.Dots))
}

func tie(token string, ties []Tie) string {
	var start, stop bool
	for _, t := range ties {
		switch t.Type {
		case "start":
			start = true
		case "stop":
			stop = true
		}
	}
	switch {
	case start && stop:
		return token + "_"
	case start:
		return "[" + token
	case stop:
		return token + "]"
	}
	return token
}

func verses(lyrics []Lyric) []string {
	var res []string
	for i, l := range lyrics {
		if strings.TrimSpace(l.Text) == "" {
			continue
		}
		index := i
		if n, err := strconv.Atoi(l.Number); err == nil && n > 0 {
			index = n - 1
		}
		for len(res) <= index {
			res = append(res, "")
		}
		res[index] = kern.Syllable(l.Text, l.Syllabic)
	}
	return res
}

func (pc *partConverter) direction(ms *measureState, d *Direction) {
	at := ms.cursor.Add(pc.duration(d.Offset))
	if at.Less(ms.start) {
		at = ms.start
	}
	staff := pc.staff(d.Staff)

	tempo := false
	if d.Sound != nil {
		if bpm, err := strconv.ParseFloat(d.Sound.Tempo, 64); err == nil && bpm > 0 {
			ms.add(model.Event{Kind: model.Tempo, Token: kern.Tempo(bpm), Start: at, Staff: staff})
			tempo = true
		}
	}

	for _, t := range d.Types {
		var words []string
		for _, w := range t.Words {
			if w = strings.TrimSpace(w); w != "" {
				words = append(words, w)
			}
		}
		if len(words) > 0 {
			ms.add(model.Event{Kind: model.Text, Token: strings.Join(words, " "), Start: at, Staff: staff, Placement: d.Placement})
		}
		if t.Dynamics != nil {
			if token := t.Dynamics.String(); token != "" {
				ms.add(model.Event{Kind: model.Dynamic, Token: token, Start: at, Staff: staff, Placement: d.Placement})
			}
		}
		if t.Metronome != nil && !tempo {
			if bpm := metronomeTempo(t.Metronome); bpm > 0 {
				ms.add(model.Event{Kind: model.Tempo, Token: kern.Tempo(bpm), Start: at, Staff: staff})
				tempo = true
			}
		}
		if t.OctaveShift != nil {
			if token := pc.octaveShift(staff, *t.OctaveShift); token != "" {
				ms.add(model.Event{Kind: model.Ottava, Token: token, Start: at, Staff: staff})
			}
		}
	}
}

// metronomeTempo converts a metronome mark to quarter notes per minute.
func metronomeTempo(m *Metronome) float64 {
	perMinute, err := strconv.ParseFloat(strings.TrimSpace(m.PerMinute), 64)
	if err != nil {
		return 0
	}
	unit, ok := typeQuarters[m.BeatUnit]
	if !ok {
		return 0
	}
	for range m.BeatUnitDot {
		unit *= 1.5
	}
	return perMinute * unit
}

// octaveShift tracks the open shift of each staff, since a stop carries
// neither the size nor the direction of the line it ends.
func (pc *partConverter) octaveShift(staff int, s OctaveShift) string {
	if s.Type == "stop" {
		open, ok := pc.shifts[staff]
		if !ok {
			return ""
		}
		delete(pc.shifts, staff)
		return kern.Ottava(shiftSize(open), open.Type == "down", true)
	}
	if s.Type != "up" && s.Type != "down" {
		return ""
	}
	pc.shifts[staff] = s
	// "down" shifts the written notes down, which draws the line above
	return kern.Ottava(shiftSize(s), s.Type == "down", false)
}

func shiftSize(s OctaveShift) int {
	if s.Size == 15 {
		return 15
	}
	return 8
}

func (pc *partConverter) harmony(ms *measureState, h *Harmony) {
	if h.Root.Step == "" {
		return
	}
	kind := h.Kind.Text
	if kind == "" {
		kind = strings.TrimSpace(h.Kind.Value)
	}
	token := kern.Harmony(h.Root.Step, int(math.Round(h.Root.Alter)), kind, h.Bass.Step, int(math.Round(h.Bass.Alter)))
	at := ms.cursor.Add(pc.duration(h.Offset))
	ms.add(model.Event{Kind: model.Harmony, Token: token, Start: at, Staff: pc.staff(h.Staff)})
}

var figureAccidentals = map[string]string{
	"sharp":        "#",
	"flat":         "-",
	"natural":      "n",
	"double-sharp": "##",
	"flat-flat":    "--",
	"slash":        "/",
}

func figureAccidental(text string) string {
	if a, ok := figureAccidentals[text]; ok {
		return a
	}
	return text
}

func (pc *partConverter) figuredBass(ms *measureState, f *FiguredBass) {
	var figures []string
	for _, fig := range f.Figures {
		text := figureAccidental(fig.Prefix) + fig.Number + figureAccidental(fig.Suffix)
		if text != "" {
			figures = append(figures, text)
		}
	}
	if len(figures) == 0 {
		return
	}
	ms.add(model.Event{Kind: model.FiguredBass, Token: strings.Join(figures, " "), Start: ms.cursor})
}
