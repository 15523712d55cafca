package grid

import (
	"fmt"
	"strings"

	"github.com/jsphweid/kerngrid/constants"
	"github.com/jsphweid/kerngrid/debug"
	"github.com/jsphweid/kerngrid/humnum"
	"golang.org/x/exp/slices"
)

type Options struct {
	// Recip adds a **recip spine with the duration of every line.
	Recip bool

	// MusicXMLBarlines numbers barlines by measure index instead of by
	// metric position.
	MusicXMLBarlines bool

	// InvisibleRests fills timing gaps in the first voice of each staff.
	InvisibleRests bool
}

// Grid is the whole score as measures of slices, plus the per part and
// per staff column counts used when writing it out.
type Grid struct {
	Measures []*Measure
	Options

	verseCounts   [][]int
	harmonyCounts []int
	dynamics      []bool
	figuredBass   []bool
	partNames     []string
	pickup        bool

	all []*Slice
}

func New(opts Options) *Grid {
	return &Grid{Options: opts}
}

func (g *Grid) AddMeasureToBack() *Measure {
	m := NewMeasure()
	g.Measures = append(g.Measures, m)
	return m
}

func (g *Grid) DeleteMeasure(index int) {
	if index < 0 || index >= len(g.Measures) {
		return
	}
	g.Measures = slices.Delete(g.Measures, index, index+1)
}

func (g *Grid) Empty() bool {
	return len(g.Measures) == 0
}

// PartCount is the number of parts in the first slice of the score.
func (g *Grid) PartCount() int {
	if len(g.Measures) == 0 || g.Measures[0].Empty() {
		return 0
	}
	return g.Measures[0].Front().PartCount()
}

func (g *Grid) StaffCount(part int) int {
	if len(g.Measures) == 0 || g.Measures[0].Empty() {
		return 0
	}
	p := g.Measures[0].Front().Part(part)
	if p == nil {
		return 0
	}
	return p.StaffCount()
}

func growTo[T any](list []T, size int) []T {
	for len(list) < size {
		var zero T
		list = append(list, zero)
	}
	return list
}

func validPart(part int) bool {
	if part < 0 || part >= constants.MaxPartCount {
		debug.Log("grid", "part index %d out of range", part)
		return false
	}
	return true
}

// VerseCount is the number of verse columns after the staff, or after
// the part when staff is -1.
func (g *Grid) VerseCount(part, staff int) int {
	if part < 0 || part >= len(g.verseCounts) {
		return 0
	}
	slot := staff + 1
	if slot < 0 || slot >= len(g.verseCounts[part]) {
		return 0
	}
	return g.verseCounts[part][slot]
}

// ReportVerseCount raises the verse count of a staff to count.
func (g *Grid) ReportVerseCount(part, staff, count int) {
	if count <= 0 || !validPart(part) || staff < -1 {
		return
	}
	g.verseCounts = growTo(g.verseCounts, part+1)
	g.verseCounts[part] = growTo(g.verseCounts[part], staff+2)
	if count > g.verseCounts[part][staff+1] {
		g.verseCounts[part][staff+1] = count
	}
}

func (g *Grid) SetVerseCount(part, staff, count int) {
	if !validPart(part) || staff < -1 {
		return
	}
	g.verseCounts = growTo(g.verseCounts, part+1)
	g.verseCounts[part] = growTo(g.verseCounts[part], staff+2)
	g.verseCounts[part][staff+1] = count
}

func (g *Grid) HarmonyCount(part int) int {
	if part < 0 || part >= len(g.harmonyCounts) {
		return 0
	}
	return g.harmonyCounts[part]
}

func (g *Grid) SetHarmonyCount(part, count int) {
	if !validPart(part) {
		return
	}
	g.harmonyCounts = growTo(g.harmonyCounts, part+1)
	g.harmonyCounts[part] = count
}

func (g *Grid) SetHarmonyPresent(part int) {
	if g.HarmonyCount(part) == 0 {
		g.SetHarmonyCount(part, 1)
	}
}

func (g *Grid) HasDynamics(part int) bool {
	return part >= 0 && part < len(g.dynamics) && g.dynamics[part]
}

func (g *Grid) SetDynamicsPresent(part int) {
	if !validPart(part) {
		return
	}
	g.dynamics = growTo(g.dynamics, part+1)
	g.dynamics[part] = true
}

func (g *Grid) HasFiguredBass(part int) bool {
	return part >= 0 && part < len(g.figuredBass) && g.figuredBass[part]
}

func (g *Grid) SetFiguredBassPresent(part int) {
	if !validPart(part) {
		return
	}
	g.figuredBass = growTo(g.figuredBass, part+1)
	g.figuredBass[part] = true
}

func (g *Grid) SetPartName(part int, name string) {
	if !validPart(part) {
		return
	}
	g.partNames = growTo(g.partNames, part+1)
	g.partNames[part] = name
}

func (g *Grid) PartName(part int) string {
	if part < 0 || part >= len(g.partNames) {
		return ""
	}
	return g.partNames[part]
}

func (g *Grid) hasPartNames() bool {
	for _, name := range g.partNames {
		if name != "" {
			return true
		}
	}
	return false
}

// HasPickup is set by the barline numbering when the first measure is
// shorter than its time signature.
func (g *Grid) HasPickup() bool {
	return g.pickup
}

// buildSingleList flattens the measures and sets every slice duration to
// the gap before the next slice.
func (g *Grid) buildSingleList() bool {
	g.all = g.all[:0]
	for _, m := range g.Measures {
		g.all = append(g.all, m.Slices...)
	}
	for i := 0; i < len(g.all)-1; i++ {
		g.all[i].Duration = g.all[i+1].Timestamp.Sub(g.all[i].Timestamp)
	}
	return len(g.all) > 0
}

// calculateGridDurations gives the last slice the duration of its first
// sounding voice.
func (g *Grid) calculateGridDurations() {
	if len(g.all) == 0 {
		return
	}
	last := g.all[len(g.all)-1]
	last.Duration = humnum.Zero
	if !last.IsNote() {
		return
	}
	for _, part := range last.Parts {
		for _, staff := range part.Staves {
			for _, v := range staff.Voices {
				if v != nil && v.Duration().IsPositive() {
					last.Duration = v.Duration()
					return
				}
			}
		}
	}
}

// RemoveRedundantClefChanges blanks clef changes that repeat the clef
// already in force on a staff, and drops clef lines left with nothing.
func (g *Grid) RemoveRedundantClefChanges() {
	var current [][]string
	for _, m := range g.Measures {
		for _, s := range m.Slices {
			if !s.IsClef() {
				continue
			}
			allEmpty := true
			duplicate := false
			for p, part := range s.Parts {
				for st, staff := range part.Staves {
					v := staff.Voice(0)
					t := v.Token()
					if t == nil || t.Text == "*" {
						continue
					}
					if !strings.HasPrefix(t.Text, "*clef") {
						allEmpty = false
						continue
					}
					current = growTo(current, p+1)
					if st >= len(current[p]) {
						current[p] = growTo(current[p], st+1)
						current[p][st] = t.Text
						allEmpty = false
						continue
					}
					if current[p][st] == t.Text {
						duplicate = true
						v.SetText("*")
					} else {
						current[p][st] = t.Text
						allEmpty = false
					}
				}
			}
			if duplicate && allEmpty {
				s.Invalidate()
			}
		}
	}
}

// RemoveIncipit drops an invisible opening measure. When it was followed
// by a measure of single chords (a range display) that goes too, and a
// following one voice measure becomes a "!!incipit:" global comment.
// Non-data lines of removed measures move to the next measure.
func (g *Grid) RemoveIncipit() {
	if len(g.Measures) == 0 || !g.Measures[0].IsInvisible() {
		return
	}
	g.DeleteMeasure(0)

	if len(g.Measures) == 0 || !g.Measures[0].IsSingleChordMeasure() {
		return
	}
	ranges := g.Measures[0]
	g.DeleteMeasure(0)
	if len(g.Measures) == 0 {
		return
	}
	transferNonDataSlices(g.Measures[0], ranges)

	first := g.Measures[0]
	if !first.IsMonophonicMeasure() || len(g.Measures) < 2 {
		return
	}
	melody := extractMelody(first)
	g.DeleteMeasure(0)
	transferNonDataSlices(g.Measures[0], first)
	insertMelodyString(g.Measures[0], melody)
}

func transferNonDataSlices(output, input *Measure) {
	for i := len(input.Slices) - 1; i >= 0; i-- {
		if input.Slices[i].IsData() {
			continue
		}
		output.PushFront(input.Slices[i])
	}
	input.Slices = nil
}

func extractMelody(m *Measure) string {
	part, staff, voice := -1, -1, -1
search:
	for _, s := range m.Slices {
		if !s.IsData() {
			continue
		}
		for p, pt := range s.Parts {
			for st, staffp := range pt.Staves {
				for v, vc := range staffp.Voices {
					t := vc.Token()
					if t == nil || strings.Contains(t.Text, "yy") {
						continue
					}
					part, staff, voice = p, st, v
					break search
				}
			}
		}
	}

	output := "!!incipit:"
	if part < 0 {
		return output
	}
	for _, s := range m.Slices {
		if !s.IsData() {
			continue
		}
		t := s.Staff(part, staff).Voice(voice).Token()
		if t == nil || t.Text == "." {
			continue
		}
		output += " " + t.Text
	}
	return output
}

func insertMelodyString(m *Measure, melody string) {
	for i, s := range m.Slices {
		if !s.IsData() {
			continue
		}
		c := NewSlice(s.Timestamp, GlobalComments, 1)
		c.AddToken(melody, 0, 0, 0)
		m.Insert(i, c)
		return
	}
}

// ExpandLocalCommentLayers gives every local layout line the voice
// counts of the next data, barline or manipulator line, so that layout
// parameters stay attached across spine splits.
func (g *Grid) ExpandLocalCommentLayers() {
	g.buildSingleList()
	var target *Slice
	for i := len(g.all) - 1; i >= 0; i-- {
		s := g.all[i]
		if s.IsData() || s.IsMeasure() || s.IsManipulator() {
			target = s
		}
		if !s.IsLocalLayout() || target == nil {
			continue
		}
		matchLayers(s, target)
	}
}

func matchLayers(output, input *Slice) {
	if len(output.Parts) != len(input.Parts) {
		return
	}
	for p, ipart := range input.Parts {
		opart := output.Parts[p]
		if len(ipart.Staves) != len(opart.Staves) {
			continue
		}
		for st, istaff := range ipart.Staves {
			ostaff := opart.Staves[st]
			for ostaff.VoiceCount() < istaff.VoiceCount() {
				ostaff.Push(NewVoice("!", humnum.Zero))
			}
		}
	}
}

// FoldLeadingMeasure moves the content of a zero length first measure
// into the second one. Scores of two measures or fewer are left alone.
func (g *Grid) FoldLeadingMeasure() {
	if len(g.Measures) <= 2 || !g.Measures[0].Duration.IsZero() {
		return
	}
	first, next := g.Measures[0], g.Measures[1]
	next.Slices = append(append([]*Slice{}, first.Slices...), next.Slices...)
	first.Slices = nil
	g.DeleteMeasure(0)
}

// MoveBreaksToEndOfPreviousMeasure keeps page and system breaks that
// start a measure from landing after its barline.
func (g *Grid) MoveBreaksToEndOfPreviousMeasure() {
	for i := 1; i < len(g.Measures); i++ {
		m, last := g.Measures[i], g.Measures[i-1]
		if m.Empty() {
			return
		}
		start := m.Front().Timestamp
		for j, s := range m.Slices {
			if s.Timestamp.Greater(start) {
				break
			}
			if !s.IsGlobalComment() {
				continue
			}
			text, _ := s.firstText()
			if text == "!!linebreak:original" || text == "!!pagebreak:original" {
				last.PushBack(m.RemoveAt(j))
				break
			}
		}
	}
}

func (g *Grid) String() string {
	var b strings.Builder
	for i, m := range g.Measures {
		fmt.Fprintf(&b, "MEASURE %d ==========\n", i)
		b.WriteString(m.String())
	}
	return b.String()
}
