package eventfile

import (
	"bytes"
	"testing"

	"github.com/jsphweid/kerngrid/merge"
	"github.com/jsphweid/kerngrid/model"
	"github.com/stretchr/testify/assert"
)

const chorale = `
references:
  - {key: COM, value: Bach}
parts:
  - name: Bass
    measures:
      - events:
          - {kind: clef, token: "*clefF4", start: 0}
          - {kind: note, token: "2C", start: 0}
          - {kind: note, token: "2D", start: 2}
      - events:
          - {kind: note, token: "1E", start: 4}
        style: final
  - name: Soprano
    measures:
      - number: 1
        duration: 4
        events:
          - {kind: note, token: "2c", start: 0, duration: 2, verses: [Al-]}
          - {kind: note, token: "4d", start: 2, verses: [-le-]}
          - {kind: note, token: "4e", start: 3, verses: [-lu-]}
      - timestamp: 4
        events:
          - {kind: note, token: "1f", start: 4, verses: [-ia]}
        style: final
`

func TestParseFillsMeasures(t *testing.T) {
	score, err := Parse([]byte(chorale))

	assert := assert.New(t)
	if !assert.Nil(err) {
		return
	}
	assert.Equal([]model.Reference{{Key: "COM", Value: "Bach"}}, score.References)

	bass := score.Parts[0]
	assert.Equal(2, bass.Measures[1].Number)
	assert.True(bass.Measures[0].Duration.EqualInt(4))
	assert.True(bass.Measures[1].Timestamp.EqualInt(4))
	assert.True(bass.Measures[1].Duration.EqualInt(4))
	assert.True(bass.Measures[0].Events[1].Duration.EqualInt(2))
	assert.Equal(model.Final, bass.Measures[1].Style)
	assert.Equal(model.Clef, bass.Measures[0].Events[0].Kind)

	soprano := score.Parts[1]
	assert.Equal([]string{"Al-"}, soprano.Measures[0].Events[0].Verses)
	assert.True(soprano.Measures[0].Events[1].Duration.EqualInt(1))
}

func TestParseConverts(t *testing.T) {
	score, err := Parse([]byte(chorale))
	assert := assert.New(t)
	if !assert.Nil(err) {
		return
	}

	doc, err := merge.Convert(score, merge.Options{})
	if !assert.Nil(err) {
		return
	}
	out := doc.String()
	assert.Contains(out, "**kern\t**text\t**kern\n")
	assert.Contains(out, "*I\"Soprano\t*\t*I\"Bass\n")
	assert.Contains(out, "2c\tAl-\t2C\n")
	assert.Contains(out, "4e\t-lu-\t.\n")
}

func TestParseErrors(t *testing.T) {
	cases := []struct {
		name string
		data string
	}{
		{"not yaml", "parts: [\n"},
		{"no parts", "references: []\n"},
		{"bad kind", "parts:\n  - measures:\n      - events:\n          - {kind: trumpet, token: x, start: 0}\n"},
		{"bad rational", "parts:\n  - measures:\n      - events:\n          - {kind: note, token: 4c, start: 1/0x}\n"},
	}

	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			_, err := Parse([]byte(c.data))
			assert.NotNil(t, err)
		})
	}
}

func TestWriteReadsBack(t *testing.T) {
	score, err := Parse([]byte(chorale))
	assert := assert.New(t)
	if !assert.Nil(err) {
		return
	}

	var buf bytes.Buffer
	if !assert.Nil(Write(&buf, score)) {
		return
	}
	assert.Contains(buf.String(), "kind: note")
	assert.Contains(buf.String(), "style: final")

	again, err := Parse(buf.Bytes())
	if assert.Nil(err) {
		assert.Equal(len(score.Parts), len(again.Parts))
		assert.True(again.Parts[1].Measures[0].Events[1].Duration.EqualInt(1))
		assert.Equal("4d", again.Parts[1].Measures[0].Events[1].Token)
	}
}

func TestIsEventPath(t *testing.T) {
	assert := assert.New(t)
	assert.True(IsEventPath("a/score.yaml"))
	assert.True(IsEventPath("score.JSON"))
	assert.False(IsEventPath("score.mid"))
}
