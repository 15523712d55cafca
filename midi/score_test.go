package midi

import (
	"bytes"
	"testing"

	"github.com/jsphweid/kerngrid/humnum"
	"github.com/jsphweid/kerngrid/merge"
	"github.com/jsphweid/kerngrid/model"
	"github.com/stretchr/testify/assert"
	"gitlab.com/gomidi/midi/v2"
	"gitlab.com/gomidi/midi/v2/smf"
)

func note(delta uint32, key uint8) smf.Event {
	return smf.Event{Delta: delta, Message: smf.Message(midi.NoteOn(0, key, 100))}
}

func release(delta uint32, key uint8) smf.Event {
	return smf.Event{Delta: delta, Message: smf.Message(midi.NoteOff(0, key))}
}

func meta(msg smf.Message) smf.Event {
	return smf.Event{Message: msg}
}

func newSMF(tracks ...smf.Track) *smf.SMF {
	s := smf.New()
	s.TimeFormat = smf.MetricTicks(480)
	for _, tr := range tracks {
		tr.Close(0)
		s.Tracks = append(s.Tracks, tr)
	}
	return s
}

func tokens(m model.Measure, kind model.EventKind) []string {
	var res []string
	for _, e := range m.Events {
		if e.Kind == kind {
			res = append(res, e.Token)
		}
	}
	return res
}

func TestFindBars(t *testing.T) {
	cases := []struct {
		name   string
		sigs   []timeSig
		last   int64
		starts []int64
	}{
		{"defaults to common time", nil, 1920 * 2, []int64{0, 1920}},
		{"one empty bar", nil, 0, []int64{0}},
		{"three four", []timeSig{{0, 3, 4}}, 1440 * 2, []int64{0, 1440}},
		{"change on barline", []timeSig{{0, 4, 4}, {1920, 2, 4}}, 1920 + 960*2, []int64{0, 1920, 2880}},
		{"change inside bar", []timeSig{{0, 4, 4}, {960, 3, 8}}, 960 + 720, []int64{0, 960}},
	}

	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			var starts []int64
			for _, b := range findBars(c.sigs, c.last, 480) {
				starts = append(starts, b.start)
			}
			assert.Equal(t, c.starts, starts)
		})
	}
}

func TestNoteToken(t *testing.T) {
	quarter := humnum.One
	assert := assert.New(t)
	assert.Equal("4c", noteToken(60, quarter, false, false))
	assert.Equal("[4c", noteToken(60, quarter, false, true))
	assert.Equal("4c_", noteToken(60, quarter, true, true))
	assert.Equal("4c]", noteToken(60, quarter, true, false))
}

func TestToScore(t *testing.T) {
	conductor := smf.Track{
		meta(smf.MetaMeter(3, 4)),
		meta(smf.MetaTempo(90)),
	}
	piano := smf.Track{
		meta(smf.MetaTrackSequenceName("Piano")),
		note(0, 60),
		release(480, 60),
		note(480, 64),
		release(960, 64),
	}
	score, err := ToScore(newSMF(conductor, piano), "song")

	assert := assert.New(t)
	if !assert.Nil(err) {
		return
	}
	assert.Equal([]model.Reference{{Key: "OTL", Value: "song"}}, score.References)
	if !assert.Len(score.Parts, 1) {
		return
	}
	part := score.Parts[0]
	assert.Equal("Piano", part.Name)
	if !assert.Len(part.Measures, 2) {
		return
	}

	first, second := part.Measures[0], part.Measures[1]
	assert.Equal([]string{"*clefG2"}, tokens(first, model.Clef))
	assert.Equal([]string{"*M3/4"}, tokens(first, model.TimeSig))
	assert.Equal([]string{"*MM90"}, tokens(first, model.Tempo))
	assert.Equal([]string{"4c", "[4e"}, tokens(first, model.Note))
	assert.Equal([]string{"4r"}, tokens(first, model.Rest))
	assert.Empty(tokens(second, model.TimeSig))
	assert.Equal([]string{"4e]"}, tokens(second, model.Note))
	assert.Equal([]string{"2r"}, tokens(second, model.Rest))
	assert.Equal(model.Final, second.Style)
	assert.True(second.Timestamp.EqualInt(3))
}

func TestToScoreOverlappingNotes(t *testing.T) {
	bass := smf.Track{
		note(0, 36),
		note(0, 40),
		release(960, 40),
		release(960, 36),
	}
	score, err := ToScore(newSMF(bass), "bass")

	assert := assert.New(t)
	if !assert.Nil(err) {
		return
	}
	m := score.Parts[0].Measures[0]
	assert.Equal([]string{"*clefF4"}, tokens(m, model.Clef))
	voices := map[int][]string{}
	for _, e := range m.Events {
		if e.Kind == model.Note {
			voices[e.Voice] = append(voices[e.Voice], e.Token)
		}
	}
	assert.Equal([]string{"1CC"}, voices[0])
	assert.Equal([]string{"2EE"}, voices[1])
}

func TestToScoreErrors(t *testing.T) {
	empty := newSMF(smf.Track{meta(smf.MetaTrackSequenceName("nothing"))})
	_, err := ToScore(empty, "empty")
	assert.NotNil(t, err)

	unmetered := newSMF(smf.Track{note(0, 60), release(480, 60)})
	unmetered.TimeFormat = smf.MetricTicks(0)
	_, err = ToScore(unmetered, "unmetered")
	assert.NotNil(t, err)
}

func TestReadRoundTripThroughConvert(t *testing.T) {
	s := newSMF(smf.Track{note(0, 67), release(1920, 67)})
	var buf bytes.Buffer
	_, err := s.WriteTo(&buf)
	assert := assert.New(t)
	if !assert.Nil(err) {
		return
	}

	read, err := Read(&buf)
	if !assert.Nil(err) {
		return
	}
	score, err := ToScore(read, "whole")
	if !assert.Nil(err) {
		return
	}
	doc, err := merge.Convert(score, merge.Options{})
	if assert.Nil(err) {
		assert.Contains(doc.String(), "*clefG2\n*M4/4\n=1-\n1g\n==\n*-\n")
		assert.Nil(doc.CheckSpines())
	}
}

func TestReadRejectsGarbage(t *testing.T) {
	_, err := Read(bytes.NewReader([]byte("not a midi file")))
	assert.NotNil(t, err)
}
