package model

import (
	"errors"
	"fmt"
	"strings"
)

type MeasureStyle int

const (
	Plain MeasureStyle = iota
	Double
	Final
	RepeatBackward
	RepeatForward
	RepeatBoth
	Invisible
)

var measureStyleNames = []string{
	"plain",
	"double",
	"final",
	"repeat-backward",
	"repeat-forward",
	"repeat-both",
	"invisible",
}

func (s MeasureStyle) String() string {
	if s < 0 || int(s) >= len(measureStyleNames) {
		return fmt.Sprintf("MeasureStyle(%d)", int(s))
	}
	return measureStyleNames[s]
}

func (s MeasureStyle) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

func (s *MeasureStyle) UnmarshalText(text []byte) error {
	name := strings.ToLower(strings.TrimSpace(string(text)))
	if name == "" {
		*s = Plain
		return nil
	}
	for i, v := range measureStyleNames {
		if v == name {
			*s = MeasureStyle(i)
			return nil
		}
	}
	return errors.New(fmt.Sprintf("unknown measure style %q", string(text)))
}

// WithForwardRepeat returns the style a measure gets when the following
// measure starts with a forward repeat.
func (s MeasureStyle) WithForwardRepeat() MeasureStyle {
	if s == RepeatBackward {
		return RepeatBoth
	}
	return RepeatForward
}

// StyleFromMusicXML maps a <bar-style> and <repeat direction> pair.
func StyleFromMusicXML(barStyle, repeat string) MeasureStyle {
	switch {
	case repeat == "backward":
		return RepeatBackward
	case repeat == "forward":
		return RepeatForward
	case barStyle == "light-light":
		return Double
	case barStyle == "light-heavy":
		return Final
	case barStyle == "none":
		return Invisible
	}
	return Plain
}

// StyleFromMuseData maps a MuseData measure record kind and its flag
// text. Heavy barlines only become repeats when the flags carry the
// matching dots.
func StyleFromMuseData(kind, flags string) MeasureStyle {
	switch kind {
	case "mheavy2":
		if strings.Contains(flags, ":|") {
			return RepeatBackward
		}
		return Final
	case "mheavy3":
		if strings.Contains(flags, "|:") {
			return RepeatForward
		}
	case "mheavy4":
		if strings.Contains(flags, ":|:") || strings.Contains(flags, "|: :|") {
			return RepeatBoth
		}
	case "mdouble":
		return Double
	}
	return Plain
}
