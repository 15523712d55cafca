package musicxml

import (
	"strings"
	"testing"

	"github.com/jsphweid/kerngrid/humnum"
	"github.com/jsphweid/kerngrid/merge"
	"github.com/jsphweid/kerngrid/model"
	"github.com/stretchr/testify/assert"
)

const duet = `<?xml version="1.0" encoding="UTF-8"?>
<score-partwise version="3.1">
  <work><work-title>Test Song</work-title></work>
  <identification><creator type="composer">Anon</creator></identification>
  <part-list>
    <score-part id="P1"><part-name>Flute</part-name><part-abbreviation>Fl.</part-abbreviation></score-part>
    <score-part id="P2"><part-name>Piano</part-name></score-part>
  </part-list>
  <part id="P1">
    <measure number="1">
      <attributes>
        <divisions>2</divisions>
        <key><fifths>1</fifths><mode>major</mode></key>
        <time><beats>2</beats><beat-type>4</beat-type></time>
        <clef><sign>G</sign><line>2</line></clef>
      </attributes>
      <direction placement="below"><direction-type><dynamics><p/></dynamics></direction-type></direction>
      <note><pitch><step>G</step><octave>4</octave></pitch><duration>2</duration><voice>1</voice><type>quarter</type>
        <lyric number="1"><syllabic>begin</syllabic><text>Hel</text></lyric></note>
      <note><pitch><step>F</step><alter>1</alter><octave>4</octave></pitch><duration>1</duration><voice>1</voice><type>eighth</type>
        <lyric number="1"><syllabic>end</syllabic><text>lo</text></lyric></note>
      <note><rest/><duration>1</duration><voice>1</voice><type>eighth</type></note>
      <barline location="right"><bar-style>light-heavy</bar-style></barline>
    </measure>
  </part>
  <part id="P2">
    <measure number="1">
      <attributes>
        <divisions>1</divisions>
        <time><beats>2</beats><beat-type>4</beat-type></time>
        <clef><sign>F</sign><line>4</line></clef>
      </attributes>
      <note><pitch><step>C</step><octave>3</octave></pitch><duration>2</duration><voice>1</voice><type>half</type></note>
      <note><chord/><pitch><step>E</step><octave>3</octave></pitch><duration>2</duration><voice>1</voice><type>half</type></note>
      <backup><duration>2</duration></backup>
      <note><pitch><step>G</step><octave>2</octave></pitch><duration>1</duration><voice>2</voice><type>quarter</type></note>
      <note><pitch><step>A</step><octave>2</octave></pitch><duration>1</duration><voice>2</voice><type>quarter</type></note>
      <barline location="right"><bar-style>light-heavy</bar-style></barline>
    </measure>
  </part>
</score-partwise>`

const repeated = `<score-partwise>
  <part-list><score-part id="P1"><part-name>MusicXML Part</part-name></score-part></part-list>
  <part id="P1">
    <measure number="0" implicit="yes">
      <attributes>
        <divisions>1</divisions>
        <time symbol="common"><beats>4</beats><beat-type>4</beat-type></time>
      </attributes>
      <direction placement="above">
        <direction-type><words>dolce</words></direction-type>
        <direction-type><metronome><beat-unit>quarter</beat-unit><beat-unit-dot/><per-minute>60</per-minute></metronome></direction-type>
      </direction>
      <note><grace slash="yes"/><pitch><step>D</step><octave>5</octave></pitch><voice>1</voice><type>eighth</type></note>
      <note><grace slash="yes"/><chord/><pitch><step>F</step><octave>5</octave></pitch><voice>1</voice><type>eighth</type></note>
      <note><pitch><step>C</step><octave>5</octave></pitch><duration>1</duration><voice>1</voice><type>quarter</type><tie type="start"/></note>
    </measure>
    <measure number="1">
      <print new-system="yes"/>
      <barline location="left"><bar-style>heavy-light</bar-style><repeat direction="forward"/></barline>
      <direction><direction-type><octave-shift type="down" size="8"/></direction-type></direction>
      <note><pitch><step>C</step><octave>5</octave></pitch><duration>4</duration><voice>1</voice><type>whole</type><tie type="stop"/></note>
      <direction><direction-type><octave-shift type="stop"/></direction-type></direction>
      <barline location="right"><bar-style>light-heavy</bar-style><repeat direction="backward"/></barline>
    </measure>
  </part>
</score-partwise>`

func decode(t *testing.T, text string) *model.Score {
	doc, err := Decode(strings.NewReader(text))
	if !assert.Nil(t, err) {
		t.FailNow()
	}
	score, err := ToScore(doc)
	if !assert.Nil(t, err) {
		t.FailNow()
	}
	return score
}

func tokens(m model.Measure, kinds ...model.EventKind) []string {
	var res []string
	for _, e := range m.Events {
		for _, k := range kinds {
			if e.Kind == k {
				res = append(res, e.Token)
			}
		}
	}
	return res
}

func TestToScoreDuet(t *testing.T) {
	score := decode(t, duet)

	assert := assert.New(t)
	assert.Equal([]model.Reference{{Key: "COM", Value: "Anon"}, {Key: "OTL", Value: "Test Song"}}, score.References)
	if !assert.Len(score.Parts, 2) {
		return
	}

	flute := score.Parts[0]
	assert.Equal("Flute", flute.Name)
	assert.Equal("Fl.", flute.Abbreviation)
	m := flute.Measures[0]
	assert.Equal(1, m.Number)
	assert.True(m.Duration.EqualInt(2))
	assert.True(m.TimeSigDur.EqualInt(2))
	assert.Equal(model.Final, m.Style)
	assert.Equal([]string{"*I'Fl.", "*clefG2", "*k[f#]", "*G:", "*M2/4", "p", "4g", "8f#", "8r"}, tokens(m,
		model.LabelAbbr, model.Clef, model.KeySig, model.KeyDesignation, model.TimeSig, model.Dynamic, model.Note, model.Rest))
	for _, e := range m.Events {
		switch e.Token {
		case "p":
			assert.Equal("below", e.Placement)
		case "4g":
			assert.Equal([]string{"Hel-"}, e.Verses)
		case "8f#":
			assert.Equal([]string{"-lo"}, e.Verses)
			assert.True(e.Start.EqualInt(1))
		}
	}

	piano := score.Parts[1]
	var voices [2][]string
	for _, e := range piano.Measures[0].Events {
		if e.Kind == model.Note {
			voices[e.Voice] = append(voices[e.Voice], e.Token)
		}
	}
	assert.Equal([]string{"2C", "2E"}, voices[0])
	assert.Equal([]string{"4GG", "4AA"}, voices[1])
}

func TestDuetConverts(t *testing.T) {
	doc, err := merge.Convert(decode(t, duet), merge.Options{})

	assert := assert.New(t)
	if !assert.Nil(err) {
		return
	}
	out := doc.String()
	assert.True(strings.HasPrefix(out, "!!!COM: Anon\n!!!OTL: Test Song\n**kern\t**kern\t**text\t**dynam\n"))
	assert.Contains(out, "*I\"Piano\t*I\"Flute\t*\t*\n")
	assert.Contains(out, "*I'Fl.")
	assert.Contains(out, "2C 2E")
	assert.Contains(out, "Hel-")
	assert.Contains(out, "-lo")
	assert.Contains(out, "==\t==\t==\t==\n*-\t*-\t*-\t*-\n")
	assert.Nil(doc.CheckSpines())
}

func TestToScoreRepeatsGracesAndTies(t *testing.T) {
	score := decode(t, repeated)

	assert := assert.New(t)
	part := score.Parts[0]
	if !assert.Len(part.Measures, 2) {
		return
	}
	pickup, second := part.Measures[0], part.Measures[1]

	assert.Equal(0, pickup.Number)
	assert.True(pickup.Duration.EqualInt(1))
	assert.True(pickup.TimeSigDur.EqualInt(4))
	assert.Equal(model.RepeatForward, pickup.Style)
	assert.Equal([]string{"*M4/4", "*met(c)"}, tokens(pickup, model.TimeSig, model.Mensuration))
	assert.Equal([]string{"dolce"}, tokens(pickup, model.Text))
	assert.Equal([]string{"*MM90"}, tokens(pickup, model.Tempo))
	assert.Equal([]string{"8ddq 8ffq"}, tokens(pickup, model.Grace))
	assert.Equal([]string{"[4cc"}, tokens(pickup, model.Note))

	assert.Equal(1, second.Number)
	assert.True(second.Timestamp.EqualInt(1))
	assert.Equal(model.RepeatBackward, second.Style)
	assert.Len(tokens(second, model.SystemBreak), 1)
	assert.Equal([]string{"1cc]"}, tokens(second, model.Note))
	assert.Equal([]string{"*8va", "*X8va"}, tokens(second, model.Ottava))

	doc, err := merge.Convert(score, merge.Options{})
	if assert.Nil(err) {
		assert.Nil(doc.CheckSpines())
	}
}

func TestToScoreErrors(t *testing.T) {
	_, err := ToScore(&Document{})
	assert.NotNil(t, err)

	_, err = ToScore(&Document{Parts: []Part{{ID: "P1"}}})
	assert.NotNil(t, err)

	_, err = Decode(strings.NewReader("<score-timewise></score-timewise>"))
	assert.NotNil(t, err)
}

func TestMeasureNumber(t *testing.T) {
	cases := []struct {
		number string
		want   int
	}{
		{"12", 12},
		{"12a", 12},
		{"X3", 3},
		{"", 7},
	}

	for _, c := range cases {
		t.Run(c.number, func(t *testing.T) {
			m := Measure{Number: c.number}
			assert.Equal(t, c.want, m.MeasureNumber(7))
		})
	}
}

func TestBeatCount(t *testing.T) {
	assert := assert.New(t)
	assert.Equal(5, Time{Beats: "3+2"}.BeatCount())
	assert.Equal(6, Time{Beats: "6"}.BeatCount())
	assert.Equal(0, Time{Beats: "x"}.BeatCount())
}

func TestMetronomeTempo(t *testing.T) {
	assert := assert.New(t)
	assert.Equal(120.0, metronomeTempo(&Metronome{BeatUnit: "half", PerMinute: "60"}))
	assert.Equal(0.0, metronomeTempo(&Metronome{BeatUnit: "quarter", PerMinute: "fast"}))
}

func TestTie(t *testing.T) {
	assert := assert.New(t)
	assert.Equal("4c", tie("4c", nil))
	assert.Equal("[4c", tie("4c", []Tie{{Type: "start"}}))
	assert.Equal("4c]", tie("4c", []Tie{{Type: "stop"}}))
	assert.Equal("4c_", tie("4c", []Tie{{Type: "stop"}, {Type: "start"}}))
}

func TestVerses(t *testing.T) {
	verses := verses([]Lyric{{Number: "2", Text: "two"}, {Number: "1", Syllabic: "middle", Text: "one"}})
	assert.Equal(t, []string{"-one-", "two"}, verses)
}

func TestFiguredBass(t *testing.T) {
	text := `<score-partwise><part id="P1"><measure number="1">
  <attributes><divisions>1</divisions></attributes>
  <figured-bass><figure><prefix>sharp</prefix><figure-number>6</figure-number></figure><figure><figure-number>4</figure-number></figure></figured-bass>
  <note><pitch><step>C</step><octave>3</octave></pitch><duration>1</duration><voice>1</voice></note>
</measure></part></score-partwise>`
	score := decode(t, text)

	assert := assert.New(t)
	assert.Equal([]string{"#6 4"}, tokens(score.Parts[0].Measures[0], model.FiguredBass))
	assert.True(score.Parts[0].Measures[0].Duration.Equal(humnum.One))
}

func TestEditorialAccidentals(t *testing.T) {
	text := `<score-partwise><part id="P1"><measure number="1">
  <attributes><divisions>1</divisions><time><beats>3</beats><beat-type>4</beat-type></time></attributes>
  <note><pitch><step>C</step><octave>4</octave></pitch><duration>1</duration><voice>1</voice><accidental editorial="yes">natural</accidental></note>
  <note><pitch><step>F</step><alter>1</alter><octave>4</octave></pitch><duration>1</duration><voice>1</voice><accidental parentheses="yes">sharp</accidental></note>
  <note><pitch><step>G</step><octave>4</octave></pitch><duration>1</duration><voice>1</voice><accidental>natural</accidental></note>
</measure></part></score-partwise>`
	score := decode(t, text)

	assert := assert.New(t)
	assert.Equal([]string{"4cni", "4f#i", "4g"}, tokens(score.Parts[0].Measures[0], model.Note))
	assert.Contains(score.References, model.Reference{Key: "RDF**kern", Value: "i = editorial accidental"})

	doc, err := merge.Convert(score, merge.Options{})
	if assert.Nil(err) {
		out := doc.String()
		assert.True(strings.HasSuffix(out, "*-\n!!!RDF**kern: i = editorial accidental\n"))
		assert.NotContains(out, "**kern\n!!!RDF")
	}
}
