package midi

import (
	"errors"
	"sort"
	"strings"

	"github.com/jsphweid/kerngrid/chord"
	"github.com/jsphweid/kerngrid/debug"
	"github.com/jsphweid/kerngrid/humnum"
	"github.com/jsphweid/kerngrid/kern"
	"github.com/jsphweid/kerngrid/model"
	"gitlab.com/gomidi/midi/v2/smf"
)

type timeSig struct {
	tick       int64
	num, denom int
}

type tempo struct {
	tick int64
	bpm  float64
}

type bar struct {
	start, length int64
	timeSig
}

type track struct {
	name  string
	notes []chord.Note
}

// ToScore turns every track that plays notes into a part of one staff.
// Bars follow the time signatures of the file, 4/4 when there are none.
// Notes crossing a barline are split and tied, overlapping notes go to
// further voices and gaps in the first voice become rests.
func ToScore(s *smf.SMF, title string) (*model.Score, error) {
	resolution, ok := s.TimeFormat.(smf.MetricTicks)
	if !ok || resolution == 0 {
		return nil, errors.New("only metric time formats are supported")
	}
	ppq := int64(resolution)

	var sigs []timeSig
	var tempos []tempo
	var tracks []track
	var lastTick int64
	for _, tr := range s.Tracks {
		t := track{notes: chord.GetNotes(tr)}
		var absTicks int64
		for _, event := range tr {
			absTicks += int64(event.Delta)
			msg := event.Message
			var num, denom, cpt, dsqpq uint8
			var bpm float64
			var name string
			switch {
			case msg.GetMetaTimeSig(&num, &denom, &cpt, &dsqpq):
				sigs = append(sigs, timeSig{absTicks, int(num), int(denom)})
			case msg.GetMetaTempo(&bpm):
				tempos = append(tempos, tempo{absTicks, bpm})
			case msg.GetMetaTrackName(&name):
				if t.name == "" {
					t.name = strings.TrimSpace(name)
				}
			}
		}
		for _, n := range t.notes {
			if n.End > lastTick {
				lastTick = n.End
			}
		}
		if len(t.notes) > 0 {
			tracks = append(tracks, t)
		}
	}
	if len(tracks) == 0 {
		return nil, errors.New("midi file has no notes")
	}

	bars := findBars(sigs, lastTick, ppq)
	score := &model.Score{References: []model.Reference{{Key: "OTL", Value: title}}}
	for i, t := range tracks {
		part := model.Part{Name: t.name, StaffCount: 1}
		part.Measures = trackMeasures(t, bars, ppq)
		if i == 0 {
			addTempos(part.Measures, tempos, ppq)
		}
		score.Parts = append(score.Parts, part)
	}
	return score, nil
}

func ticks(tick, ppq int64) humnum.Num {
	return humnum.New(int(tick), int(ppq))
}

// findBars lays bars over the file. A time signature that does not fall
// on a barline cuts the running bar short.
func findBars(sigs []timeSig, lastTick, ppq int64) []bar {
	sort.SliceStable(sigs, func(i, j int) bool { return sigs[i].tick < sigs[j].tick })
	// the last of several signatures at one tick wins
	var merged []timeSig
	for _, s := range sigs {
		if s.num <= 0 || s.denom <= 0 {
			continue
		}
		if len(merged) > 0 && merged[len(merged)-1].tick == s.tick {
			merged[len(merged)-1] = s
			continue
		}
		merged = append(merged, s)
	}
	if len(merged) == 0 || merged[0].tick > 0 {
		merged = append([]timeSig{{0, 4, 4}}, merged...)
	}

	var bars []bar
	var tick int64
	si := 0
	for tick < lastTick || len(bars) == 0 {
		for si+1 < len(merged) && merged[si+1].tick <= tick {
			si++
		}
		sig := merged[si]
		length := 4 * ppq * int64(sig.num) / int64(sig.denom)
		if length <= 0 {
			length = 4 * ppq
		}
		if si+1 < len(merged) && merged[si+1].tick < tick+length {
			length = merged[si+1].tick - tick
		}
		bars = append(bars, bar{start: tick, length: length, timeSig: sig})
		tick += length
	}
	return bars
}

func trackMeasures(t track, bars []bar, ppq int64) []model.Measure {
	measures := make([]model.Measure, len(bars))
	var last timeSig
	for i, b := range bars {
		m := &measures[i]
		m.Number = i + 1
		m.Timestamp = ticks(b.start, ppq)
		m.Duration = ticks(b.length, ppq)
		m.TimeSigDur = kern.TimeSigDuration(b.num, b.denom)
		if i == 0 {
			m.Events = append(m.Events, model.Event{Kind: model.Clef, Token: clefFor(t.notes), Start: m.Timestamp})
		}
		if i == 0 || b.num != last.num || b.denom != last.denom {
			m.Events = append(m.Events, model.Event{Kind: model.TimeSig, Token: kern.TimeSig(b.num, b.denom), Start: m.Timestamp})
		}
		last = b.timeSig
	}
	if len(bars) > 0 {
		measures[len(measures)-1].Style = model.Final
	}

	voices := chord.AssignVoices(chord.GetChords(t.notes))
	for v, chords := range voices {
		if v > 0 {
			debug.LogEvery(20, "midi", "track %q needs voice %d at tick %d (%s)", t.name, v+1, chords[0].Start, chord.CreateChordKey(chords[0].Keys))
		}
		for i, b := range bars {
			end := b.start + b.length
			cursor := b.start
			for _, c := range chords {
				if c.End <= b.start || c.Start >= end {
					continue
				}
				from, to := max64(c.Start, b.start), min64(c.End, end)
				if v == 0 && from > cursor {
					measures[i].Events = append(measures[i].Events, restEvent(cursor, from, ppq))
				}
				for _, key := range c.Keys {
					measures[i].Events = append(measures[i].Events, model.Event{
						Kind:     model.Note,
						Token:    noteToken(key, ticks(to-from, ppq), from > c.Start, to < c.End),
						Start:    ticks(from, ppq),
						Duration: ticks(to-from, ppq),
						Voice:    v,
					})
				}
				cursor = to
			}
			if v == 0 && cursor < end {
				measures[i].Events = append(measures[i].Events, restEvent(cursor, end, ppq))
			}
		}
	}
	return measures
}

func restEvent(from, to, ppq int64) model.Event {
	dur := ticks(to-from, ppq)
	return model.Event{Kind: model.Rest, Token: kern.Rest(dur), Start: ticks(from, ppq), Duration: dur}
}

// noteToken writes tie marks for a note continued from the previous bar
// or into the next one.
func noteToken(key uint8, dur humnum.Num, continued, continues bool) string {
	token := kern.Recip(dur) + kern.PitchFromKey(key, 0)
	switch {
	case continued && continues:
		return token + "_"
	case continued:
		return token + "]"
	case continues:
		return "[" + token
	}
	return token
}

// clefFor picks a bass clef for tracks that mostly sit below middle C.
func clefFor(notes []chord.Note) string {
	if len(notes) == 0 {
		return kern.Clef("G", 2, 0)
	}
	var sum int
	for _, n := range notes {
		sum += int(n.Key)
	}
	if sum/len(notes) < 60 {
		return kern.Clef("F", 4, 0)
	}
	return kern.Clef("G", 2, 0)
}

func addTempos(measures []model.Measure, tempos []tempo, ppq int64) {
	var last float64
	for _, t := range tempos {
		if t.bpm == last {
			continue
		}
		last = t.bpm
		at := ticks(t.tick, ppq)
		for i := len(measures) - 1; i >= 0; i-- {
			if !measures[i].Timestamp.Greater(at) {
				measures[i].Events = append(measures[i].Events, model.Event{Kind: model.Tempo, Token: kern.Tempo(t.bpm), Start: at})
				break
			}
		}
	}
}

func max64(a, b int64) int64 {
	if a > b {
		return a
	}
	return b
}

func min64(a, b int64) int64 {
	if a < b {
		return a
	}
	return b
}
