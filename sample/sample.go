package sample

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/jsphweid/kerngrid/humnum"
	"github.com/jsphweid/kerngrid/model"
)

// carried are the event kinds that stay in force until replaced, so an
// excerpt needs the latest of each from before its first measure.
var carried = []model.EventKind{
	model.Stria,
	model.Clef,
	model.Transpose,
	model.KeySig,
	model.KeyDesignation,
	model.TimeSig,
	model.Mensuration,
	model.Tempo,
}

// ParseRange reads "3-8", or "5" for a single measure.
func ParseRange(text string) (int, int, error) {
	first, last, found := strings.Cut(strings.TrimSpace(text), "-")
	from, err := strconv.Atoi(strings.TrimSpace(first))
	if err != nil {
		return 0, 0, errors.New(fmt.Sprintf("bad measure range %q", text))
	}
	if !found {
		return from, from, nil
	}
	to, err := strconv.Atoi(strings.TrimSpace(last))
	if err != nil || to < from {
		return 0, 0, errors.New(fmt.Sprintf("bad measure range %q", text))
	}
	return from, to, nil
}

// Measures copies the measures numbered from..to (as numbered in the
// first part) into a new score that starts at time zero. Clefs, keys,
// meters and tempo in force at the start of the excerpt are repeated at
// its start.
func Measures(score *model.Score, from, to int) (*model.Score, error) {
	if err := score.Validate(); err != nil {
		return nil, err
	}
	first, last := -1, -1
	for i, m := range score.Parts[0].Measures {
		if m.Number >= from && m.Number <= to {
			if first < 0 {
				first = i
			}
			last = i
		}
	}
	if first < 0 {
		return nil, errors.New(fmt.Sprintf("score has no measures numbered %d-%d", from, to))
	}

	res := &model.Score{References: append([]model.Reference{}, score.References...)}
	for _, p := range score.Parts {
		res.Parts = append(res.Parts, excerpt(p, first, last))
	}
	return res, nil
}

func excerpt(p model.Part, first, last int) model.Part {
	offset := p.Measures[first].Timestamp
	res := model.Part{Name: p.Name, Abbreviation: p.Abbreviation, StaffCount: p.StaffCount}

	for i := first; i <= last; i++ {
		m := p.Measures[i]
		m.Timestamp = m.Timestamp.Sub(offset)
		m.Events = make([]model.Event, 0, len(p.Measures[i].Events))
		if i == first {
			m.Events = append(m.Events, inForce(p, first, humnum.Zero)...)
		}
		for _, e := range p.Measures[i].Events {
			e.Start = e.Start.Sub(offset)
			e.Sequence = 0
			m.Events = append(m.Events, e)
		}
		res.Measures = append(res.Measures, m)
	}
	return res
}

// inForce collects the last event of each carried kind, per staff,
// before measure index first and not restated at its start.
func inForce(p model.Part, first int, at humnum.Num) []model.Event {
	type key struct {
		kind  model.EventKind
		staff int
	}
	latest := make(map[key]model.Event)
	for i := 0; i < first; i++ {
		for _, e := range p.Measures[i].Events {
			latest[key{e.Kind, e.Staff}] = e
		}
	}
	start := p.Measures[first].Timestamp
	for _, e := range p.Measures[first].Events {
		if e.Start.Equal(start) {
			delete(latest, key{e.Kind, e.Staff})
		}
	}

	var res []model.Event
	for _, kind := range carried {
		for staff := 0; staff < p.Staves(); staff++ {
			e, ok := latest[key{kind, staff}]
			if !ok {
				continue
			}
			e.Start = at
			e.Duration = humnum.Zero
			e.Sequence = 0
			res = append(res, e)
		}
	}
	return res
}
