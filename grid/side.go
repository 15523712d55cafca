package grid

import (
	"fmt"
	"strings"
)

// Side holds the columns written after the spines of a staff or a part:
// lyric verses, a harmony label, a dynamic and a figured bass. A nil slot
// is empty; setting nil never disturbs a token that was moved elsewhere.
type Side struct {
	verses      []*Token
	harmony     *Token
	dynamics    *Token
	figuredBass *Token
}

func (s *Side) SetVerse(index int, t *Token) {
	if index < 0 {
		return
	}
	for len(s.verses) <= index {
		s.verses = append(s.verses, nil)
	}
	s.verses[index] = t
}

func (s *Side) Verse(index int) *Token {
	if index < 0 || index >= len(s.verses) {
		return nil
	}
	return s.verses[index]
}

func (s *Side) TakeVerse(index int) *Token {
	t := s.Verse(index)
	if t != nil {
		s.verses[index] = nil
	}
	return t
}

func (s *Side) VerseCount() int {
	return len(s.verses)
}

func (s *Side) SetHarmony(t *Token) { s.harmony = t }
func (s *Side) Harmony() *Token     { return s.harmony }

func (s *Side) TakeHarmony() *Token {
	t := s.harmony
	s.harmony = nil
	return t
}

func (s *Side) HarmonyCount() int {
	if s.harmony == nil {
		return 0
	}
	return 1
}

func (s *Side) SetDynamics(t *Token) { s.dynamics = t }
func (s *Side) Dynamics() *Token     { return s.dynamics }

func (s *Side) TakeDynamics() *Token {
	t := s.dynamics
	s.dynamics = nil
	return t
}

func (s *Side) SetFiguredBass(t *Token) { s.figuredBass = t }
func (s *Side) FiguredBass() *Token     { return s.figuredBass }

func (s *Side) TakeFiguredBass() *Token {
	t := s.figuredBass
	s.figuredBass = nil
	return t
}

func (s *Side) String() string {
	var parts []string
	for i, v := range s.verses {
		if v != nil {
			parts = append(parts, fmt.Sprintf("verse%d=%q", i+1, v.Text))
		}
	}
	if s.harmony != nil {
		parts = append(parts, fmt.Sprintf("harm=%q", s.harmony.Text))
	}
	if s.dynamics != nil {
		parts = append(parts, fmt.Sprintf("dyn=%q", s.dynamics.Text))
	}
	if s.figuredBass != nil {
		parts = append(parts, fmt.Sprintf("fb=%q", s.figuredBass.Text))
	}
	return strings.Join(parts, " ")
}
