package merge

import (
	"strings"
	"testing"

	"github.com/jsphweid/kerngrid/grid"
	"github.com/jsphweid/kerngrid/humnum"
	"github.com/jsphweid/kerngrid/model"
	"github.com/stretchr/testify/assert"
)

func ev(kind model.EventKind, token string, start, dur humnum.Num) model.Event {
	return model.Event{Kind: kind, Token: token, Start: start, Duration: dur}
}

func onePart(dur humnum.Num, events ...model.Event) *model.Score {
	return &model.Score{Parts: []model.Part{{
		Name: "Piano",
		Measures: []model.Measure{{
			Number:     1,
			Duration:   dur,
			TimeSigDur: dur,
			Events:     events,
		}},
	}}}
}

func convert(t *testing.T, score *model.Score, opts Options) string {
	doc, err := Convert(score, opts)
	if !assert.Nil(t, err) {
		return ""
	}
	return doc.String()
}

func TestConvertTwoNotes(t *testing.T) {
	score := onePart(humnum.FromInt(2),
		ev(model.Note, "4c", humnum.Zero, humnum.One),
		ev(model.Note, "4d", humnum.One, humnum.One),
	)
	score.Parts[0].Name = ""

	assert.Equal(t, "**kern\n*part1\n*staff1\n=1-\n4c\n4d\n=\n*-\n", convert(t, score, Options{}))
}

func TestConvertMergesParts(t *testing.T) {
	half := humnum.New(1, 2)
	score := &model.Score{Parts: []model.Part{
		{Measures: []model.Measure{{Number: 1, Duration: humnum.One, Events: []model.Event{
			ev(model.Note, "4c", humnum.Zero, humnum.One),
		}}}},
		{Measures: []model.Measure{{Number: 1, Duration: humnum.One, Events: []model.Event{
			ev(model.Note, "8e", humnum.Zero, half),
			ev(model.Note, "8f", half, half),
		}}}},
	}}

	g, err := Stitch(score, Options{})
	assert := assert.New(t)
	assert.Nil(err)
	if assert.Len(g.Measures, 1) {
		assert.Equal(2, g.Measures[0].Len())
	}

	out := convert(t, score, Options{})
	assert.Contains(out, "8e\t4c\n8f\t.\n")
}

func TestConvertChord(t *testing.T) {
	score := onePart(humnum.One,
		ev(model.Note, "4c", humnum.Zero, humnum.One),
		ev(model.Note, "4e", humnum.Zero, humnum.One),
		ev(model.Note, "4g", humnum.Zero, humnum.One),
	)
	assert.Contains(t, convert(t, score, Options{}), "\n4c 4e 4g\n")
}

func TestConvertAttributeOrder(t *testing.T) {
	score := onePart(humnum.FromInt(4),
		ev(model.TimeSig, "*M4/4", humnum.Zero, humnum.Zero),
		ev(model.KeySig, "*k[]", humnum.Zero, humnum.Zero),
		ev(model.Clef, "*clefG2", humnum.Zero, humnum.Zero),
		ev(model.Note, "1c", humnum.Zero, humnum.FromInt(4)),
	)
	score.Parts[0].Name = ""

	assert.Equal(t, "**kern\n*part1\n*staff1\n*clefG2\n*k[]\n*M4/4\n=1-\n1c\n=\n*-\n", convert(t, score, Options{}))
}

func TestConvertGraceNotes(t *testing.T) {
	score := onePart(humnum.One,
		ev(model.Grace, "8cq", humnum.Zero, humnum.Zero),
		ev(model.Grace, "8dq", humnum.Zero, humnum.Zero),
		ev(model.Note, "4e", humnum.Zero, humnum.One),
	)
	score.Parts[0].Name = ""

	assert.Equal(t, "**kern\n*part1\n*staff1\n=1-\n8cq\n8dq\n4e\n=\n*-\n", convert(t, score, Options{}))
}

func TestConvertFillsSilentStaff(t *testing.T) {
	score := onePart(humnum.FromInt(4),
		ev(model.Note, "1c", humnum.Zero, humnum.FromInt(4)),
	)
	score.Parts[0].StaffCount = 2

	out := convert(t, score, Options{})
	assert := assert.New(t)
	assert.Contains(out, "*staff2\t*staff1\n")
	assert.Contains(out, "\n1ryy\t1c\n")
}

func TestConvertSideColumns(t *testing.T) {
	note := ev(model.Note, "4c", humnum.Zero, humnum.One)
	note.Verses = []string{"la"}
	dynamic := ev(model.Dynamic, "p", humnum.Zero, humnum.Zero)
	dynamic.Placement = "above"
	text := ev(model.Text, "dolce", humnum.Zero, humnum.Zero)
	text.Placement = "above"
	score := onePart(humnum.One, note, dynamic, text,
		ev(model.Harmony, "C", humnum.Zero, humnum.Zero),
	)

	out := convert(t, score, Options{})
	assert := assert.New(t)
	assert.True(strings.HasPrefix(out, "**kern\t**text\t**dynam\t**mxhm\n"))
	assert.Contains(out, "*I\"Piano\t*\t*\t*\n")
	assert.Contains(out, "\n4c\tla\tp\tC\n")
	assert.Contains(out, "!LO:TX:a:t=dolce")
	assert.Contains(out, "!LO:DY:a")
}

func TestConvertHarmonyWithoutNote(t *testing.T) {
	score := onePart(humnum.FromInt(2),
		ev(model.Note, "2c", humnum.Zero, humnum.FromInt(2)),
		ev(model.Harmony, "G", humnum.One, humnum.Zero),
	)
	assert.Contains(t, convert(t, score, Options{}), "\n2c\t.\n.\tG\n")
}

func TestConvertTempoAndBreaks(t *testing.T) {
	score := &model.Score{Parts: []model.Part{{Measures: []model.Measure{
		{Number: 1, Duration: humnum.One, Events: []model.Event{
			ev(model.Tempo, "*MM120", humnum.Zero, humnum.Zero),
			ev(model.Note, "4c", humnum.Zero, humnum.One),
		}},
		{Number: 2, Timestamp: humnum.One, Duration: humnum.One, Events: []model.Event{
			ev(model.SystemBreak, "", humnum.One, humnum.Zero),
			ev(model.Note, "4d", humnum.One, humnum.One),
		}},
	}}}}

	out := convert(t, score, Options{})
	assert := assert.New(t)
	assert.Contains(out, "*MM120\n=1-\n4c\n!!linebreak:original\n=2\n4d\n")
}

func TestConvertReferences(t *testing.T) {
	score := onePart(humnum.One, ev(model.Note, "4c", humnum.Zero, humnum.One))
	score.References = []model.Reference{{Key: "COM", Value: "Bach"}}

	assert.True(t, strings.HasPrefix(convert(t, score, Options{}), "!!!COM: Bach\n**kern\n"))
}

func TestConvertWithRecip(t *testing.T) {
	score := onePart(humnum.One, ev(model.Note, "4c", humnum.Zero, humnum.One))
	score.Parts[0].Name = ""
	opts := Options{}
	opts.Recip = true

	assert.Equal(t, "**recip\t**kern\n*\t*part1\n*\t*staff1\n=1-\t=1-\n4\t4c\n=\t=\n*-\t*-\n", convert(t, score, opts))
}

func TestStitchRejectsBadScores(t *testing.T) {
	cases := []struct {
		name  string
		score *model.Score
	}{
		{"no parts", &model.Score{}},
		{"no measures", &model.Score{Parts: []model.Part{{}}}},
		{"uneven measures", &model.Score{Parts: []model.Part{
			{Measures: []model.Measure{{}, {}}},
			{Measures: []model.Measure{{}}},
		}}},
		{"event before measure", &model.Score{Parts: []model.Part{{Measures: []model.Measure{{
			Timestamp: humnum.One,
			Duration:  humnum.One,
			Events:    []model.Event{ev(model.Note, "4c", humnum.Zero, humnum.One)},
		}}}}}},
	}

	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			_, err := Stitch(c.score, Options{})
			assert.NotNil(t, err)
		})
	}
}

func TestIsDummyName(t *testing.T) {
	assert := assert.New(t)
	assert.True(isDummyName("MusicXML Part"))
	assert.True(isDummyName("Part_1"))
	assert.True(isDummyName("Unnamed-001"))
	assert.False(isDummyName("Flute"))
}

// assertSlicesInOrder checks that no slice of a measure comes before an
// earlier one in time.
func assertSlicesInOrder(t *testing.T, g *grid.Grid) {
	for _, m := range g.Measures {
		for i := 1; i < m.Len(); i++ {
			assert.False(t, m.Slices[i].Timestamp.Less(m.Slices[i-1].Timestamp),
				"measure %d: %v slice at %v follows %v slice at %v", m.Number,
				m.Slices[i].Type, m.Slices[i].Timestamp, m.Slices[i-1].Type, m.Slices[i-1].Timestamp)
		}
	}
}

func convertChecked(t *testing.T, score *model.Score) string {
	g, err := Stitch(score, Options{})
	if !assert.Nil(t, err) {
		return ""
	}
	assertSlicesInOrder(t, g)
	doc, err := g.Transfer()
	if !assert.Nil(t, err) {
		return ""
	}
	assert.Nil(t, doc.CheckSpines())
	return doc.String()
}

func TestConvertHoldsTokensForTheirStoredDuration(t *testing.T) {
	half := humnum.New(1, 2)
	score := &model.Score{Parts: []model.Part{
		{Measures: []model.Measure{{Number: 1, Duration: humnum.One, Events: []model.Event{
			ev(model.Note, "A", humnum.Zero, humnum.One),
		}}}},
		{Measures: []model.Measure{{Number: 1, Duration: humnum.One, Events: []model.Event{
			ev(model.Note, "B1", humnum.Zero, half),
			ev(model.Note, "B2", half, half),
		}}}},
	}}

	assert.Contains(t, convertChecked(t, score), "B1\tA\nB2\t.\n")
}

func TestConvertKeepsVoiceOpenWhileItSounds(t *testing.T) {
	second := ev(model.Note, "E", humnum.Zero, humnum.FromInt(2))
	second.Voice = 1
	score := onePart(humnum.FromInt(2),
		ev(model.Note, "C", humnum.Zero, humnum.One),
		second,
		ev(model.Note, "D", humnum.One, humnum.One),
	)

	out := convertChecked(t, score)
	assert := assert.New(t)
	assert.Contains(out, "*^\nC\tE\nD\t.\n*v\t*v\n")
	assert.NotContains(out, "*v\t*v\nD\n")
}

func TestConvertLabelInsideMeasure(t *testing.T) {
	score := onePart(humnum.FromInt(2),
		ev(model.Note, "4c", humnum.Zero, humnum.One),
		ev(model.Clef, "*clefF4", humnum.One, humnum.Zero),
		ev(model.Label, "*>B", humnum.One, humnum.Zero),
		ev(model.Note, "4d", humnum.One, humnum.One),
	)
	score.Parts[0].Name = ""

	out := convertChecked(t, score)
	assert.Contains(t, out, "=1-\n4c\n*>B\n*clefF4\n4d\n")
}

func TestConvertGraceNotesAroundAttributesAndNotes(t *testing.T) {
	score := onePart(humnum.One,
		ev(model.Grace, "8cq", humnum.Zero, humnum.Zero),
		ev(model.Clef, "*clefG2", humnum.Zero, humnum.Zero),
		ev(model.Grace, "8dq", humnum.Zero, humnum.Zero),
		ev(model.Note, "4e", humnum.Zero, humnum.One),
		ev(model.Grace, "8fq", humnum.Zero, humnum.Zero),
	)
	score.Parts[0].Name = ""

	assert.Contains(t, convertChecked(t, score), "8cq\n*clefG2\n8dq\n4e\n8fq\n")
}

func TestConvertAlignsGraceRunsOfTwoParts(t *testing.T) {
	score := &model.Score{Parts: []model.Part{
		{Measures: []model.Measure{{Number: 1, Duration: humnum.One, Events: []model.Event{
			ev(model.Grace, "16gq", humnum.Zero, humnum.Zero),
			ev(model.Grace, "16aq", humnum.Zero, humnum.Zero),
			ev(model.Note, "4b", humnum.Zero, humnum.One),
		}}}},
		{Measures: []model.Measure{{Number: 1, Duration: humnum.One, Events: []model.Event{
			ev(model.Grace, "8dq", humnum.Zero, humnum.Zero),
			ev(model.Note, "4c", humnum.Zero, humnum.One),
		}}}},
	}}

	assert.Contains(t, convertChecked(t, score), "\t16gq\n8dq\t16aq\n4c\t4b\n")
}
