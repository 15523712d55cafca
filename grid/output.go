package grid

import (
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"
)

// Document is a serialized grid: reference records above and below the
// spined lines, which are tab separated fields.
type Document struct {
	Header []string
	Lines  [][]string
	Footer []string
}

func (d *Document) AddHeaderRecord(key, value string) {
	d.Header = append(d.Header, "!!!"+key+": "+value)
}

func (d *Document) AddFooterRecord(key, value string) {
	d.Footer = append(d.Footer, "!!!"+key+": "+value)
}

// appendSlice adds the fields of s. Lines without spines keep only their
// first field.
func (d *Document) appendSlice(s *Slice, fields []string) {
	if len(fields) == 0 {
		return
	}
	if !s.HasSpines() {
		fields = fields[:1]
	}
	d.Lines = append(d.Lines, fields)
}

func (d *Document) appendLine(fields ...string) {
	d.Lines = append(d.Lines, fields)
}

// appendInitialBarline writes "=N-" once per column of the last spined
// line.
func (d *Document) appendInitialBarline(startBar int) {
	count := 0
	for i := len(d.Lines) - 1; i >= 0; i-- {
		line := d.Lines[i]
		if len(line) == 0 || strings.HasPrefix(line[0], "!!") {
			continue
		}
		count = len(line)
		break
	}
	if count == 0 {
		return
	}
	if startBar < 1 {
		startBar = 1
	}
	text := "=" + strconv.Itoa(startBar) + "-"
	fields := make([]string, count)
	for i := range fields {
		fields[i] = text
	}
	d.Lines = append(d.Lines, fields)
}

// FieldCounts is the number of fields of every spined line, in order.
func (d *Document) FieldCounts() []int {
	var counts []int
	for _, line := range d.Lines {
		if len(line) == 0 || strings.HasPrefix(line[0], "!!") {
			continue
		}
		counts = append(counts, len(line))
	}
	return counts
}

// CheckSpines follows spine splits, joins and terminations and fails on
// the first spined line whose field count disagrees with the open spines.
func (d *Document) CheckSpines() error {
	open := -1
	for i, fields := range d.Lines {
		if len(fields) == 0 || strings.HasPrefix(fields[0], "!!") {
			continue
		}
		if open < 0 {
			open = len(fields)
		}
		if len(fields) != open {
			return errors.New(fmt.Sprintf("line %d has %d fields, %d spines are open", i+1, len(fields), open))
		}
		next := 0
		for j := 0; j < len(fields); j++ {
			switch f := fields[j]; {
			case f == "*-":
			case f == "*^":
				next += 2
			case strings.HasPrefix(f, "*^"):
				n, err := strconv.Atoi(f[2:])
				if err != nil || n < 2 {
					return errors.New(fmt.Sprintf("line %d: bad split %q", i+1, f))
				}
				next += n
			case f == "*v":
				for j+1 < len(fields) && fields[j+1] == "*v" {
					j++
				}
				next++
			default:
				next++
			}
		}
		open = next
	}
	if open < 0 {
		return errors.New("no spined lines")
	}
	if open != 0 {
		return errors.New(fmt.Sprintf("%d spines are never terminated", open))
	}
	return nil
}

func (d *Document) String() string {
	var b strings.Builder
	for _, record := range d.Header {
		b.WriteString(record)
		b.WriteString("\n")
	}
	for _, line := range d.Lines {
		b.WriteString(strings.Join(line, "\t"))
		b.WriteString("\n")
	}
	for _, record := range d.Footer {
		b.WriteString(record)
		b.WriteString("\n")
	}
	return b.String()
}

func (d *Document) WriteTo(w io.Writer) (int64, error) {
	n, err := io.WriteString(w, d.String())
	return int64(n), err
}

// column identifies the kind of an output column when header lines are
// built.
type column int

const (
	staffColumn column = iota
	staffVerseColumn
	partVerseColumn
	dynamicsColumn
	figuredBassColumn
	harmonyColumn
)

// columnFields lists one field per output column of s, in output order.
// With perVoice unset every staff counts as a single spine.
func (g *Grid) columnFields(s *Slice, perVoice bool, field func(part, staff int, col column) string) []string {
	var line []string
	for p := len(s.Parts) - 1; p >= 0; p-- {
		part := s.Parts[p]
		for st := len(part.Staves) - 1; st >= 0; st-- {
			spines := 1
			if perVoice {
				spines = spineCount(s, p, st)
			}
			for v := 0; v < spines; v++ {
				line = append(line, field(p, st, staffColumn))
			}
			for v := 0; v < g.VerseCount(p, st); v++ {
				line = append(line, field(p, st, staffVerseColumn))
			}
		}
		for v := 0; v < g.VerseCount(p, -1); v++ {
			line = append(line, field(p, -1, partVerseColumn))
		}
		if g.HasDynamics(p) {
			line = append(line, field(p, -1, dynamicsColumn))
		}
		if g.HasFiguredBass(p) {
			line = append(line, field(p, -1, figuredBassColumn))
		}
		for h := 0; h < g.HarmonyCount(p); h++ {
			line = append(line, field(p, -1, harmonyColumn))
		}
	}
	return line
}

func (g *Grid) withRecip(first string, fields []string) []string {
	if !g.Recip {
		return fields
	}
	return append([]string{first}, fields...)
}

// insertHeaders writes the exclusive interpretation line and the part,
// staff and instrument name lines below it, all one column per staff.
func (g *Grid) insertHeaders(doc *Document, first *Slice) {
	exclusive := g.columnFields(first, false, func(p, st int, col column) string {
		switch col {
		case staffColumn:
			return "**kern"
		case dynamicsColumn:
			return "**dynam"
		case figuredBassColumn:
			return "**fb"
		case harmonyColumn:
			return "**mxhm"
		}
		return "**text"
	})
	doc.appendLine(g.withRecip("**recip", exclusive)...)

	parts := g.columnFields(first, false, func(p, st int, col column) string {
		return "*part" + strconv.Itoa(p+1)
	})
	doc.appendLine(g.withRecip("*", parts)...)

	staffNumber := 0
	for _, part := range first.Parts {
		staffNumber += part.StaffCount()
	}
	current := ""
	staves := g.columnFields(first, false, func(p, st int, col column) string {
		switch col {
		case staffColumn:
			current = "*staff" + strconv.Itoa(staffNumber)
			staffNumber--
			return current
		case staffVerseColumn:
			return current
		}
		return "*"
	})
	doc.appendLine(g.withRecip("*", staves)...)

	if !g.hasPartNames() {
		return
	}
	names := g.columnFields(first, false, func(p, st int, col column) string {
		if col == staffColumn && g.PartName(p) != "" {
			return `*I"` + g.PartName(p)
		}
		return "*"
	})
	doc.appendLine(g.withRecip("*", names)...)
}

// insertTerminator ends every spine still open after the last slice.
func (g *Grid) insertTerminator(doc *Document, last *Slice) {
	fields := g.columnFields(last, true, func(int, int, column) string {
		return "*-"
	})
	doc.appendLine(g.withRecip("*-", fields)...)
}

func (g *Grid) firstSpinedSlice() *Slice {
	for _, m := range g.Measures {
		if s := m.FirstSpinedSlice(); s != nil {
			return s
		}
	}
	return nil
}

func (g *Grid) lastSpinedSlice() *Slice {
	for i := len(g.Measures) - 1; i >= 0; i-- {
		if s := g.Measures[i].LastSpinedSlice(); s != nil && s.HasSpines() {
			return s
		}
	}
	return nil
}

// Transfer runs the reconciling passes over the grid and writes it out.
// The grid is consumed: tokens move into the document.
func (g *Grid) Transfer() (*Document, error) {
	if !g.buildSingleList() {
		return nil, errors.New("grid has no slices")
	}
	g.calculateGridDurations()
	g.addNullTokens()
	if g.InvisibleRests {
		g.addInvisibleRestsInFirstTrack()
	}
	g.addMeasureLines()
	g.buildSingleList()
	g.cleanTempos()
	g.addLastMeasure()
	g.manipulatorCheck()
	g.cleanupManipulators()

	first, last := g.firstSpinedSlice(), g.lastSpinedSlice()
	if first == nil || last == nil {
		return nil, errors.New("grid has no spined slices")
	}

	doc := &Document{}
	g.insertHeaders(doc, first)
	addStartBar := !g.pickup && !g.MusicXMLBarlines
	for i, m := range g.Measures {
		m.Transfer(doc, g, g.Recip, i == 0 && addStartBar, g.startBar())
	}
	g.insertTerminator(doc, last)
	return doc, nil
}
