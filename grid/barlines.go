package grid

import (
	"strconv"

	"github.com/jsphweid/kerngrid/humnum"
	"github.com/jsphweid/kerngrid/model"
)

// MetricBarNumbers numbers the measures by meter. A pickup measure gets
// 0, an empty measure or the first half of a measure split in two gets
// -1 and is written without a number.
func (g *Grid) MetricBarNumbers() []int {
	count := len(g.Measures)
	if count == 0 {
		return nil
	}
	mdur := make([]humnum.Num, count)
	tsdur := make([]humnum.Num, count)
	for i, m := range g.Measures {
		mdur[i] = m.Duration
		if m.TimeSigDur.IsPositive() {
			tsdur[i] = m.TimeSigDur
		} else {
			tsdur[i] = m.Duration
		}
	}

	start := 0
	if mdur[0].IsZero() {
		start = 1
	}
	if start >= count {
		return make([]int, count)
	}

	counter := 0
	g.pickup = !mdur[start].Equal(tsdur[start])
	if !g.pickup {
		counter++
	}

	numbers := make([]int, count)
	for m := 0; m < start; m++ {
		numbers[m] = -1
	}
	for m := start; m < count; m++ {
		if m == start && mdur[m].IsZero() {
			numbers[m] = counter - 1
			continue
		}
		if mdur[m].IsZero() {
			numbers[m] = -1
			continue
		}
		if m < count-1 && tsdur[m].Equal(tsdur[m+1]) && mdur[m].Add(mdur[m+1]).Equal(tsdur[m]) {
			numbers[m] = -1
			continue
		}
		numbers[m] = counter
		counter++
	}
	return numbers
}

// BarStyle is the kern suffix of a barline style.
func BarStyle(style model.MeasureStyle) string {
	switch style {
	case model.Double:
		return "||"
	case model.Final:
		return "="
	case model.RepeatBoth:
		return ":|!|:"
	case model.RepeatBackward:
		return ":|!"
	case model.RepeatForward:
		return "!|:"
	}
	return ""
}

// createBarToken renders the barline closing measure m. Final barlines
// are written "==N", everything else "=N" followed by the style.
func (g *Grid) createBarToken(m, number int, measure *Measure) string {
	style := BarStyle(measure.Style)
	if g.MusicXMLBarlines {
		number = m + 1
	}
	num := ""
	if number > 0 {
		num = strconv.Itoa(number)
	}
	if style == "=" {
		return "==" + num
	}
	return "=" + num + style
}

// addMeasureLines closes every measure but the last with a barline slice
// carrying the number of the measure that follows it.
func (g *Grid) addMeasureLines() {
	numbers := g.MetricBarNumbers()
	for m := 0; m < len(g.Measures)-1; m++ {
		measure, next := g.Measures[m], g.Measures[m+1]
		if next.Empty() {
			continue
		}
		firstSpined := next.FirstSpinedSlice()
		if firstSpined == nil || measure.Empty() || measure.Duration.IsZero() {
			continue
		}
		end := measure.LastSpinedSlice()
		if end == nil {
			continue
		}

		bar := CloneSliceShape(firstSpined.Timestamp, Measures, firstSpined)
		number := measure.Number
		if m < len(numbers)-1 {
			number = numbers[m+1]
			if number > 0 {
				number += g.barOffset()
			}
		}
		text := g.createBarToken(m, number, measure)

		for p, part := range bar.Parts {
			for st, staff := range part.Staves {
				count := min(end.Staff(p, st).VoiceCount(), firstSpined.Staff(p, st).VoiceCount())
				if count < 1 {
					count = 1
				}
				for v := 0; v < count; v++ {
					staff.Push(&Voice{token: newTrackToken(text, p, st)})
				}
			}
		}
		measure.PushBack(bar)
	}
}

// barOffset shifts metric numbers so an excerpt starting at measure N
// is numbered from N.
func (g *Grid) barOffset() int {
	if len(g.Measures) == 0 || g.pickup {
		return 0
	}
	if n := g.Measures[0].Number; n > 1 {
		return n - 1
	}
	return 0
}

// startBar is the number of the opening barline.
func (g *Grid) startBar() int {
	return 1 + g.barOffset()
}

func min(a, b int) int {
	if a < b {
		return a
	}
	return b
}

// addLastMeasure writes the closing barline of the score, one cell per
// staff.
func (g *Grid) addLastMeasure() {
	if len(g.Measures) == 0 {
		return
	}
	measure := g.Measures[len(g.Measures)-1]
	last := measure.LastSpinedSlice()
	if last == nil {
		return
	}
	text := "=" + BarStyle(measure.Style)
	bar := CloneSliceShape(last.Timestamp, Measures, last)
	for p, part := range bar.Parts {
		for st, staff := range part.Staves {
			staff.Push(&Voice{token: newTrackToken(text, p, st)})
		}
	}
	measure.PushBack(bar)
}
