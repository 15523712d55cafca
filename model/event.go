package model

import (
	"errors"
	"fmt"
	"strings"

	"github.com/jsphweid/kerngrid/humnum"
)

type EventKind int

const (
	Note EventKind = iota
	Rest
	Grace
	Clef
	KeySig
	KeyDesignation
	TimeSig
	Mensuration
	Tempo
	Text
	Dynamic
	Harmony
	FiguredBass
	Transpose
	Stria
	Ottava
	Label
	LabelAbbr
	PageBreak
	SystemBreak
)

var eventKindNames = []string{
	"note",
	"rest",
	"grace",
	"clef",
	"keysig",
	"keydesignation",
	"timesig",
	"mensuration",
	"tempo",
	"text",
	"dynamic",
	"harmony",
	"figuredbass",
	"transpose",
	"stria",
	"ottava",
	"label",
	"labelabbr",
	"pagebreak",
	"systembreak",
}

func (k EventKind) String() string {
	if k < 0 || int(k) >= len(eventKindNames) {
		return fmt.Sprintf("EventKind(%d)", int(k))
	}
	return eventKindNames[k]
}

func (k EventKind) MarshalText() ([]byte, error) {
	return []byte(k.String()), nil
}

func (k *EventKind) UnmarshalText(text []byte) error {
	name := strings.ToLower(strings.TrimSpace(string(text)))
	for i, v := range eventKindNames {
		if v == name {
			*k = EventKind(i)
			return nil
		}
	}
	return errors.New(fmt.Sprintf("unknown event kind %q", string(text)))
}

// IsSounding is true for events that occupy time in a voice.
func (k EventKind) IsSounding() bool {
	return k == Note || k == Rest
}

// IsSide is true for events stored beside the spines of a part rather
// than in a voice.
func (k EventKind) IsSide() bool {
	return k == Dynamic || k == Harmony || k == FiguredBass
}

// Event is a single item on a part's timeline. Start is an absolute
// timestamp in quarter notes. Staff and Voice are zero-based.
type Event struct {
	Kind     EventKind  `yaml:"kind" json:"kind"`
	Token    string     `yaml:"token" json:"token"`
	Start    humnum.Num `yaml:"start" json:"start"`
	Duration humnum.Num `yaml:"duration,omitempty" json:"duration,omitempty"`
	Staff    int        `yaml:"staff,omitempty" json:"staff,omitempty"`
	Voice    int        `yaml:"voice,omitempty" json:"voice,omitempty"`

	// Verses holds lyric syllables by verse number, "" for none.
	Verses []string `yaml:"verses,omitempty" json:"verses,omitempty"`

	// Placement is "above" or "below" for text and dynamics, "" otherwise.
	Placement string `yaml:"placement,omitempty" json:"placement,omitempty"`

	// Sequence orders events that share a timestamp. Front ends fill it
	// from a Sequencer.
	Sequence int `yaml:"-" json:"-"`
}

func (e Event) End() humnum.Num {
	return e.Start.Add(e.Duration)
}

type Sequencer struct {
	next int
}

func (s *Sequencer) Next() int {
	s.next++
	return s.next
}

// Stamp numbers every event that has not been numbered yet, in slice order.
func (s *Sequencer) Stamp(events []Event) {
	for i := range events {
		if events[i].Sequence == 0 {
			events[i].Sequence = s.Next()
		}
	}
}
