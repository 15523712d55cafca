package grid

import (
	"strconv"
	"strings"

	"github.com/jsphweid/kerngrid/debug"
)

// manipulatorCheck puts a manipulator line between every two spined
// slices whose voice counts differ. The first spined slice is compared
// with one voice per staff, which is what the header lines open with.
func (g *Grid) manipulatorCheck() {
	var last *Slice
	var lastMeasure *Measure
	for _, m := range g.Measures {
		for i := 0; i < len(m.Slices); i++ {
			s := m.Slices[i]
			if !s.HasSpines() {
				continue
			}
			if last == nil {
				if manip := createManipulator(openingShape(s), s); manip != nil {
					m.Insert(i, manip)
					i++
				}
			} else if manip := createManipulator(last, s); manip != nil {
				lastMeasure.Insert(lastMeasure.IndexOf(last)+1, manip)
				if lastMeasure == m {
					i++
				}
			}
			last, lastMeasure = s, m
		}
	}
}

func openingShape(s *Slice) *Slice {
	opening := CloneSliceShape(s.Timestamp, Manipulators, s)
	for _, part := range opening.Parts {
		for _, staff := range part.Staves {
			staff.Push(&Voice{})
		}
	}
	return opening
}

// createManipulator returns the line that turns the spines of s1 into
// those of s2, or nil when nothing changes.
func createManipulator(s1, s2 *Slice) *Slice {
	if s1.PartCount() != s2.PartCount() {
		debug.Log("grid", "part count changes from %d to %d at %v", s1.PartCount(), s2.PartCount(), s2.Timestamp)
		return nil
	}
	needed := false
	for p := range s1.Parts {
		if s1.Parts[p].StaffCount() != s2.Parts[p].StaffCount() {
			debug.Log("grid", "staff count of part %d changes from %d to %d at %v",
				p+1, s1.Parts[p].StaffCount(), s2.Parts[p].StaffCount(), s2.Timestamp)
			return nil
		}
		for st := range s1.Parts[p].Staves {
			if spineCount(s1, p, st) != spineCount(s2, p, st) {
				needed = true
			}
		}
	}
	if !needed {
		return nil
	}

	manip := CloneSliceShape(s2.Timestamp, Manipulators, s2)
	for p, part := range manip.Parts {
		for st, staff := range part.Staves {
			for _, text := range manipulatorTokens(spineCount(s1, p, st), spineCount(s2, p, st)) {
				staff.Push(&Voice{token: newTrackToken(text, p, st)})
			}
		}
	}
	return manip
}

// spineCount is the number of output columns of a staff, which is never
// less than one.
func spineCount(s *Slice, part, staff int) int {
	return max(s.Staff(part, staff).VoiceCount(), 1)
}

// manipulatorTokens is the row of manipulators that turns v1 spines into
// v2 spines.
func manipulatorTokens(v1, v2 int) []string {
	var tokens []string
	repeat := func(text string, n int) {
		for i := 0; i < n; i++ {
			tokens = append(tokens, text)
		}
	}

	switch {
	case v1 == v2:
		repeat("*", v1)
	case v2 == 2*v1:
		repeat("*^", v1)
	case v2 > 2*v1:
		repeat("*^", v1-1)
		extra := v2 - (v1-1)*2
		if extra > 2 {
			tokens = append(tokens, "*^"+strconv.Itoa(extra))
		} else {
			tokens = append(tokens, "*^")
		}
	case v2 > v1:
		grow := v2 - v1
		repeat("*", v1-1)
		if grow == 1 {
			tokens = append(tokens, "*^")
		} else {
			tokens = append(tokens, "*^"+strconv.Itoa(grow+1))
		}
	default:
		shrink := v1 - v2 + 1
		repeat("*", v1-shrink)
		repeat("*v", shrink)
	}
	return tokens
}

// cleanupManipulators rewrites manipulator lines that split a spine in
// more than two, or that merge spines of adjacent staves in one line,
// into several lines.
func (g *Grid) cleanupManipulators() {
	for _, m := range g.Measures {
		for i := 0; i < len(m.Slices); i++ {
			s := m.Slices[i]
			if !s.IsManipulator() {
				continue
			}
			extra := cleanManipulator(s)
			if len(extra) > 0 {
				m.Insert(i, extra...)
				i += len(extra)
			}
		}
	}
}

// cleanManipulator returns the lines to put before curr, in order.
func cleanManipulator(curr *Slice) []*Slice {
	var lines []*Slice
	for {
		if n := expandManipulator(curr); n != nil {
			lines = append(lines, n)
			continue
		}
		if n := contractManipulator(curr); n != nil {
			lines = append(lines, n)
			continue
		}
		return lines
	}
}

// splitCount is N for a "*^N" token, 2 for "*^" and 0 otherwise.
func splitCount(text string) int {
	if !strings.HasPrefix(text, "*^") {
		return 0
	}
	if text == "*^" {
		return 2
	}
	n, err := strconv.Atoi(text[2:])
	if err != nil {
		return 0
	}
	return n
}

// expandManipulator moves one level of splitting out of curr when curr
// splits a spine in three or more.
func expandManipulator(curr *Slice) *Slice {
	found := false
	for _, part := range curr.Parts {
		for _, staff := range part.Staves {
			for _, v := range staff.Voices {
				if splitCount(v.Text()) > 2 {
					found = true
				}
			}
		}
	}
	if !found {
		return nil
	}

	first := CloneSliceShape(curr.Timestamp, Manipulators, curr)
	for p, part := range curr.Parts {
		for st, staff := range part.Staves {
			target := first.Parts[p].Staves[st]
			var voices []*Voice
			for _, v := range staff.Voices {
				manipVoice := func(text string) *Voice {
					return &Voice{token: newTrackToken(text, p, st)}
				}
				switch n := splitCount(v.Text()); {
				case n > 3:
					target.Push(manipVoice("*^"))
					voices = append(voices, manipVoice("*"), manipVoice("*^"+strconv.Itoa(n-1)))
				case n == 3:
					target.Push(manipVoice("*^"))
					voices = append(voices, manipVoice("*"), manipVoice("*^"))
				case n == 2:
					target.Push(manipVoice("*^"))
					voices = append(voices, manipVoice("*"), manipVoice("*"))
				default:
					target.Push(manipVoice("*"))
					voices = append(voices, v)
				}
			}
			staff.Voices = voices
		}
	}
	return first
}

type staffRef struct {
	part, staff int
	*Staff
}

// contractManipulator splits off the merge of the left staff when two
// staves next to each other in the output both merge spines at their
// shared edge.
func contractManipulator(curr *Slice) *Slice {
	var order []staffRef
	for p := len(curr.Parts) - 1; p >= 0; p-- {
		part := curr.Parts[p]
		for st := len(part.Staves) - 1; st >= 0; st-- {
			order = append(order, staffRef{p, st, part.Staves[st]})
		}
	}

	var left *staffRef
	for i := 1; i < len(order); i++ {
		a, b := order[i-1], order[i]
		if a.VoiceCount() == 0 || b.VoiceCount() == 0 {
			continue
		}
		if a.Voices[a.VoiceCount()-1].Text() == "*v" && b.Voices[0].Text() == "*v" {
			left = &order[i-1]
			break
		}
	}
	if left == nil {
		return nil
	}

	first := CloneSliceShape(curr.Timestamp, Manipulators, curr)
	for p, part := range curr.Parts {
		for st, staff := range part.Staves {
			target := first.Parts[p].Staves[st]
			if p != left.part || st != left.staff {
				for range staff.Voices {
					target.Push(&Voice{token: newTrackToken("*", p, st)})
				}
				continue
			}
			merged := 0
			for _, v := range staff.Voices {
				if v.Text() == "*v" {
					merged++
				}
				target.Push(&Voice{token: newTrackToken(v.Text(), p, st)})
			}
			remaining := staff.VoiceCount() - merged + 1
			staff.Voices = staff.Voices[:0]
			for i := 0; i < remaining; i++ {
				staff.Push(&Voice{token: newTrackToken("*", p, st)})
			}
		}
	}
	return first
}
