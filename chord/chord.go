package chord

import (
	"fmt"
	"sort"

	"gitlab.com/gomidi/midi/v2/smf"
)

// Note is a sounding key between two absolute tick positions.
type Note struct {
	Key   uint8
	Start int64
	End   int64
}

// Chord is a set of keys that start and stop together.
type Chord struct {
	Keys  []uint8
	Start int64
	End   int64
}

func (c Chord) Length() int64 {
	return c.End - c.Start
}

type reducedEvent struct {
	offset    int64
	isNoteOff bool
	key       uint8
}

func CreateChordKey(notes []uint8) string {
	sort.Slice(notes, func(i, j int) bool {
		return notes[i] < notes[j]
	})
	var res string
	for i, note := range notes {
		res += fmt.Sprintf("%v", note)
		if i < len(notes)-1 {
			res += "-"
		}
	}
	return res
}

// GetNotes pairs the note on and note off messages of a track. A note on
// with velocity 0 is a note off. Keys still held at the end of the track
// stop at the last event.
func GetNotes(track smf.Track) []Note {
	var events []reducedEvent
	var absTicks int64
	for _, event := range track {
		absTicks += int64(event.Delta)
		var channel, key, velocity uint8
		switch {
		case event.Message.GetNoteOn(&channel, &key, &velocity):
			events = append(events, reducedEvent{offset: absTicks, isNoteOff: velocity == 0, key: key})
		case event.Message.GetNoteOff(&channel, &key, &velocity):
			events = append(events, reducedEvent{offset: absTicks, isNoteOff: true, key: key})
		}
	}

	// prioritize smaller offset values then note off
	sort.SliceStable(events, func(i, j int) bool {
		if events[i].offset != events[j].offset {
			return events[i].offset < events[j].offset
		}
		return events[i].isNoteOff && !events[j].isNoteOff
	})

	var notes []Note
	pressed := make(map[uint8]int64)
	for _, evt := range events {
		if evt.isNoteOff {
			start, ok := pressed[evt.key]
			if !ok {
				continue
			}
			delete(pressed, evt.key)
			if evt.offset > start {
				notes = append(notes, Note{Key: evt.key, Start: start, End: evt.offset})
			}
			continue
		}
		if start, ok := pressed[evt.key]; ok && evt.offset > start {
			// retriggered without a note off
			notes = append(notes, Note{Key: evt.key, Start: start, End: evt.offset})
		}
		pressed[evt.key] = evt.offset
	}
	for key, start := range pressed {
		if absTicks > start {
			notes = append(notes, Note{Key: key, Start: start, End: absTicks})
		}
	}

	sort.Slice(notes, func(i, j int) bool {
		if notes[i].Start != notes[j].Start {
			return notes[i].Start < notes[j].Start
		}
		return notes[i].Key < notes[j].Key
	})
	return notes
}

// GetChords groups notes that share both start and end. The result is
// ordered by start, longer chords first.
func GetChords(notes []Note) []Chord {
	type span struct{ start, end int64 }
	byspan := make(map[span][]uint8)
	for _, n := range notes {
		s := span{n.Start, n.End}
		byspan[s] = append(byspan[s], n.Key)
	}

	chords := make([]Chord, 0, len(byspan))
	for s, keys := range byspan {
		sort.Slice(keys, func(i, j int) bool { return keys[i] < keys[j] })
		chords = append(chords, Chord{Keys: keys, Start: s.start, End: s.end})
	}
	sort.Slice(chords, func(i, j int) bool {
		if chords[i].Start != chords[j].Start {
			return chords[i].Start < chords[j].Start
		}
		if chords[i].End != chords[j].End {
			return chords[i].End > chords[j].End
		}
		return chords[i].Keys[0] < chords[j].Keys[0]
	})
	return chords
}

// AssignVoices places every chord in the first voice that is free at its
// start, opening a new voice when none is. Chords must be ordered by
// start.
func AssignVoices(chords []Chord) [][]Chord {
	var voices [][]Chord
	for _, c := range chords {
		placed := false
		for v := range voices {
			last := voices[v][len(voices[v])-1]
			if last.End <= c.Start {
				voices[v] = append(voices[v], c)
				placed = true
				break
			}
		}
		if !placed {
			voices = append(voices, []Chord{c})
		}
	}
	return voices
}
