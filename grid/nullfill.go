package grid

import (
	"github.com/jsphweid/kerngrid/debug"
	"github.com/jsphweid/kerngrid/humnum"
	"github.com/jsphweid/kerngrid/kern"
)

// addNullTokens fills the cells that sounding notes hold over, then pads
// grace, clef and layout lines, and finally turns the remaining holes in
// note lines into invisible rests.
func (g *Grid) addNullTokens() {
	for i, s := range g.all {
		if !s.IsNote() {
			continue
		}
		for p, part := range s.Parts {
			for st, staff := range part.Staves {
				for v, voice := range staff.Voices {
					if voice == nil || voice.IsNull() {
						continue
					}
					g.extendDurationToken(i, p, st, v)
				}
			}
		}
	}

	g.addNullTokensFor((*Slice).IsGrace, ".")
	g.adjustClefChanges()
	g.addNullTokensFor((*Slice).IsClef, "*")
	g.addNullTokensFor((*Slice).IsLocalLayout, "!")
	g.checkForNullDataHoles()
}

// extendDurationToken writes placeholders into the following slices for
// as long as the token at the given cell is still sounding.
func (g *Grid) extendDurationToken(slicei, parti, staffi, voicei int) {
	if slicei < 0 || slicei >= len(g.all)-1 {
		return
	}
	slice := g.all[slicei]
	if !slice.HasSpines() || slice.IsGrace() {
		return
	}
	voice := slice.Staff(parti, staffi).Voice(voicei)
	t := voice.Token()
	if t == nil || t.Text == "." {
		return
	}

	tokendur := soundingDuration(voice)
	currts := slice.Timestamp
	nextts := g.all[slicei+1].Timestamp
	timeleft := tokendur.Sub(nextts.Sub(currts))
	if timeleft.IsZero() {
		return
	}
	if timeleft.IsNegative() {
		debug.Log("grid", "negative duration %v for %q at %v", timeleft, t.Text, currts)
		return
	}

	for s := slicei + 1; s < len(g.all) && timeleft.IsPositive(); s++ {
		next := g.all[s]
		if !next.HasSpines() {
			continue
		}
		currts = nextts
		nexts := 1
		for s+nexts < len(g.all) && !g.all[s+nexts].HasSpines() {
			nexts++
		}
		if s+nexts < len(g.all) {
			nextts = g.all[s+nexts].Timestamp
		} else {
			nextts = currts.Add(next.Duration)
		}
		slicedur := nextts.Sub(currts)

		part := next.Part(parti)
		if part == nil {
			debug.Log("grid", "slice at %v has no part %d", next.Timestamp, parti)
			return
		}
		if staffi == part.StaffCount() {
			debug.Log("grid", "staff index %d is probably incorrect: increasing staff count for part to %d", staffi, staffi+1)
			part.Staves = append(part.Staves, NewStaff())
		}
		staff := part.Staff(staffi)
		if staff == nil {
			debug.Log("grid", "slice at %v has no staff %d in part %d", next.Timestamp, staffi, parti)
			return
		}

		switch {
		case next.IsGrace():
			next.Duration = humnum.Zero
		case next.IsData():
			if !staff.SetNullToken(voicei, next.Type, slicedur) {
				debug.Log("grid", "%q at %v is cut short by %q", t.Text, slice.Timestamp, staff.Voice(voicei).Text())
				return
			}
			timeleft = timeleft.Sub(slicedur)
		case next.IsInvalid():
		default:
			if staff.Voice(voicei) == nil {
				staff.SetNullToken(voicei, next.Type, slicedur)
			}
		}

		if s+1 == len(g.all)-1 {
			g.all[s+1].Duration = timeleft
		}
	}
}

// soundingDuration is the duration stored with a voice, or the duration
// of its kern text when none was stored.
func soundingDuration(v *Voice) humnum.Num {
	if d := v.Duration(); d.IsPositive() {
		return d
	}
	return kern.Duration(v.Text())
}

// addNullTokensFor pads slices matched by is with null tokens up to the
// voice count of the surrounding note slices, when those agree.
func (g *Grid) addNullTokensFor(is func(*Slice) bool, null string) {
	for i, s := range g.all {
		if !is(s) {
			continue
		}
		var last, next *Slice
		for j := i + 1; j < len(g.all); j++ {
			if g.all[j].IsNote() {
				next = g.all[j]
				break
			}
		}
		if next == nil {
			continue
		}
		for j := i - 1; j >= 0; j-- {
			if g.all[j].IsNote() {
				last = g.all[j]
				break
			}
		}
		if last == nil {
			continue
		}
		fillInNullTokens(s, last, next, null)
	}
}

func fillInNullTokens(slice, last, next *Slice, null string) {
	for p, part := range slice.Parts {
		lastPart := last.Part(p)
		if lastPart == nil {
			continue
		}
		for st := range lastPart.Staves {
			staff := part.Staff(st)
			if staff == nil {
				continue
			}
			v1 := max(lastPart.Staves[st].VoiceCount(), 1)
			v2 := max(next.Staff(p, st).VoiceCount(), 1)
			if v1 != v2 {
				// expanding or contracting around this slice
				continue
			}
			for staff.VoiceCount() < v1 {
				staff.Push(NewVoice(null, humnum.Zero))
			}
		}
	}
}

func max(a, b int) int {
	if a > b {
		return a
	}
	return b
}

// adjustClefChanges moves a clef change at the start of a measure to the
// end of the previous measure.
func (g *Grid) adjustClefChanges() {
	for i := 1; i < len(g.Measures); i++ {
		m := g.Measures[i]
		if m.Empty() {
			debug.Log("grid", "measure %d is empty", i)
			continue
		}
		if !m.Front().IsClef() {
			continue
		}
		g.Measures[i-1].PushBack(m.RemoveAt(0))
	}
}

// checkForNullDataHoles turns nil voices in note slices into invisible
// rests lasting until the voice is used again.
func (g *Grid) checkForNullDataHoles() {
	for i, s := range g.all {
		if !s.IsNote() {
			continue
		}
		for p, part := range s.Parts {
			for st, staff := range part.Staves {
				for v := range staff.Voices {
					if staff.Voices[v] != nil {
						continue
					}
					duration := s.Duration
				scan:
					for q := i + 1; q < len(g.all); q++ {
						later := g.all[q]
						if !later.IsNote() {
							continue
						}
						ls := later.Staff(p, st)
						if ls == nil {
							continue
						}
						if v >= ls.VoiceCount() {
							duration = duration.Add(later.Duration)
							continue
						}
						break scan
					}
					staff.Voices[v] = NewVoice(kern.Recip(duration)+"ryy", duration)
				}
			}
		}
	}
}

// addInvisibleRestsInFirstTrack adds an invisible rest where the first
// voice of a staff stops sounding before its next note.
func (g *Grid) addInvisibleRestsInFirstTrack() {
	if len(g.all) == 0 {
		return
	}
	var nextEvent [][]*Slice
	last := g.all[len(g.all)-1]
	for _, s := range g.all {
		if !s.IsNote() {
			continue
		}
		nextEvent = make([][]*Slice, len(s.Parts))
		for p, part := range s.Parts {
			nextEvent[p] = make([]*Slice, part.StaffCount())
			for st := range nextEvent[p] {
				nextEvent[p][st] = last
			}
		}
		break
	}

	for i := len(g.all) - 1; i >= 0; i-- {
		s := g.all[i]
		if !s.IsNote() {
			continue
		}
		for p, part := range s.Parts {
			for st, staff := range part.Staves {
				if p >= len(nextEvent) || st >= len(nextEvent[p]) {
					continue
				}
				v := staff.Voice(0)
				if v == nil || v.IsNull() {
					continue
				}
				g.addInvisibleRest(nextEvent, i, p, st)
			}
		}
	}
}

func (g *Grid) addInvisibleRest(nextEvent [][]*Slice, index, p, st int) {
	starting := g.all[index]
	ending := nextEvent[p][st]
	defer func() { nextEvent[p][st] = starting }()

	duration := soundingDuration(starting.Staff(p, st).Voice(0))
	gap := ending.Timestamp.Sub(starting.Timestamp).Sub(duration)
	if !gap.IsPositive() {
		return
	}
	target := starting.Timestamp.Add(duration)
	text := kern.Recip(gap) + "ryy"

	for _, s := range g.all[index+1:] {
		if !s.IsNote() || s.Timestamp.Less(target) {
			continue
		}
		if s.Timestamp.Greater(target) {
			debug.Log("grid", "no note slice at %v for an invisible rest", target)
			return
		}
		staff := s.Staff(p, st)
		if staff == nil || staff.VoiceCount() == 0 {
			return
		}
		if staff.Voices[0] == nil {
			staff.Voices[0] = &Voice{}
		}
		staff.Voices[0].SetToken(newTrackToken(text, p, st))
		return
	}
}

// cleanTempos copies the first tempo of a tempo slice into its empty
// cells so every spine carries it.
func (g *Grid) cleanTempos() {
	for _, s := range g.all {
		if !s.IsTempo() {
			continue
		}
		var tempo *Token
	find:
		for _, part := range s.Parts {
			for _, staff := range part.Staves {
				for _, v := range staff.Voices {
					if t := v.Token(); t != nil {
						tempo = t
						break find
					}
				}
			}
		}
		if tempo == nil {
			continue
		}
		for _, part := range s.Parts {
			for _, staff := range part.Staves {
				for v, voice := range staff.Voices {
					if voice == nil {
						staff.Voices[v] = NewVoice(tempo.Text, humnum.Zero)
					} else if voice.IsEmpty() {
						voice.SetText(tempo.Text)
					}
				}
			}
		}
	}
}
