package model

import (
	"errors"
	"fmt"

	"github.com/jsphweid/kerngrid/constants"
	"github.com/jsphweid/kerngrid/humnum"
)

type Reference struct {
	Key   string `yaml:"key" json:"key"`
	Value string `yaml:"value" json:"value"`
}

type Measure struct {
	Number     int          `yaml:"number" json:"number"`
	Timestamp  humnum.Num   `yaml:"timestamp" json:"timestamp"`
	Duration   humnum.Num   `yaml:"duration" json:"duration"`
	TimeSigDur humnum.Num   `yaml:"timesig,omitempty" json:"timesig,omitempty"`
	Style      MeasureStyle `yaml:"style,omitempty" json:"style,omitempty"`
	Events     []Event      `yaml:"events" json:"events"`
}

type Part struct {
	Name         string    `yaml:"name,omitempty" json:"name,omitempty"`
	Abbreviation string    `yaml:"abbreviation,omitempty" json:"abbreviation,omitempty"`
	StaffCount   int       `yaml:"staves,omitempty" json:"staves,omitempty"`
	Measures     []Measure `yaml:"measures" json:"measures"`
}

type Score struct {
	Parts      []Part      `yaml:"parts" json:"parts"`
	References []Reference `yaml:"references,omitempty" json:"references,omitempty"`
}

func (p Part) Staves() int {
	if p.StaffCount < 1 {
		return 1
	}
	return p.StaffCount
}

// Validate checks the structural requirements of the merge: at least one
// part, the same number of measures in every part, finite times and
// bounded staff and voice indices.
func (s *Score) Validate() error {
	if len(s.Parts) == 0 {
		return errors.New("score has no parts")
	}
	if len(s.Parts) > constants.MaxPartCount {
		return errors.New(fmt.Sprintf("score has %d parts, at most %d are supported", len(s.Parts), constants.MaxPartCount))
	}
	count := len(s.Parts[0].Measures)
	if count == 0 {
		return errors.New("score has no measures")
	}
	for i, p := range s.Parts {
		if len(p.Measures) != count {
			return errors.New(fmt.Sprintf("part %d has %d measures, expected %d", i+1, len(p.Measures), count))
		}
		if p.StaffCount > constants.MaxStaffCount {
			return errors.New(fmt.Sprintf("part %d has %d staves, at most %d are supported", i+1, p.StaffCount, constants.MaxStaffCount))
		}
		for _, m := range p.Measures {
			if !m.Timestamp.IsFinite() || !m.Duration.IsFinite() || !m.TimeSigDur.IsFinite() {
				return errors.New(fmt.Sprintf("part %d measure %d: timestamp or duration is not finite", i+1, m.Number))
			}
			for _, e := range m.Events {
				if e.Staff < 0 || e.Staff >= p.Staves() {
					return errors.New(fmt.Sprintf("part %d measure %d: staff %d out of range", i+1, m.Number, e.Staff+1))
				}
				if e.Voice < 0 || e.Voice >= constants.MaxVoiceCount {
					return errors.New(fmt.Sprintf("part %d measure %d: voice %d out of range", i+1, m.Number, e.Voice+1))
				}
				if !e.Start.IsFinite() || !e.Duration.IsFinite() {
					return errors.New(fmt.Sprintf("part %d measure %d: %q has a non-finite start or duration", i+1, m.Number, e.Token))
				}
			}
		}
	}
	return nil
}

func (s *Score) MeasureCount() int {
	if len(s.Parts) == 0 {
		return 0
	}
	return len(s.Parts[0].Measures)
}

// Stamp assigns sequence numbers to every event in reading order.
func (s *Score) Stamp(seq *Sequencer) {
	for p := range s.Parts {
		for m := range s.Parts[p].Measures {
			seq.Stamp(s.Parts[p].Measures[m].Events)
		}
	}
}

// SetReference replaces the value of a reference record, or appends it.
func (s *Score) SetReference(key, value string) {
	for i := range s.References {
		if s.References[i].Key == key {
			s.References[i].Value = value
			return
		}
	}
	s.References = append(s.References, Reference{Key: key, Value: value})
}
