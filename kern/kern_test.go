package kern

import (
	"fmt"
	"testing"

	"github.com/jsphweid/kerngrid/humnum"
	"github.com/stretchr/testify/assert"
)

func TestRecip(t *testing.T) {
	cases := []struct {
		dur  humnum.Num
		want string
	}{
		{humnum.FromInt(1), "4"},
		{humnum.New(1, 2), "8"},
		{humnum.New(3, 4), "8."},
		{humnum.New(7, 4), "4.."},
		{humnum.FromInt(4), "1"},
		{humnum.FromInt(8), "0"},
		{humnum.FromInt(12), "0."},
		{humnum.New(1, 3), "12"},
		{humnum.New(8, 3), "3%2"},
		{humnum.New(5, 3), "12%5"},
		{humnum.Zero, "g"},
	}

	for _, c := range cases {
		name := fmt.Sprintf("recip for %v", c.dur)
		t.Run(name, func(t *testing.T) {
			assert.Equal(t, c.want, Recip(c.dur))
		})
	}
}

func TestDuration(t *testing.T) {
	cases := []struct {
		token string
		want  humnum.Num
	}{
		{"4c", humnum.FromInt(1)},
		{"8.cc#", humnum.New(3, 4)},
		{"4..C", humnum.New(7, 4)},
		{"0r", humnum.FromInt(8)},
		{"3%2e", humnum.New(8, 3)},
		{"2d 2f 2a", humnum.FromInt(2)},
		{"8qc", humnum.Zero},
		{".", humnum.Zero},
		{"[4e", humnum.FromInt(1)},
	}

	for _, c := range cases {
		name := fmt.Sprintf("duration of %q", c.token)
		t.Run(name, func(t *testing.T) {
			assert.True(t, c.want.Equal(Duration(c.token)), "got %v", Duration(c.token))
		})
	}
}

func TestRecipDurationAgree(t *testing.T) {
	assert := assert.New(t)
	for _, d := range []humnum.Num{humnum.New(1, 4), humnum.New(3, 2), humnum.New(8, 3), humnum.FromInt(6)} {
		assert.True(d.Equal(Duration(Recip(d)+"c")), "%v", d)
	}
}

func TestPitch(t *testing.T) {
	assert := assert.New(t)
	assert.Equal("c", Pitch("C", 0, 4))
	assert.Equal("cc#", Pitch("C", 1, 5))
	assert.Equal("B-", Pitch("B", -1, 3))
	assert.Equal("FF", Pitch("F", 0, 2))
	assert.Equal("c", PitchFromKey(60, 0))
	assert.Equal("e-", PitchFromKey(63, -3))
	assert.Equal("d#", PitchFromKey(63, 2))
}

func TestInterpretations(t *testing.T) {
	assert := assert.New(t)
	assert.Equal("*clefG2", Clef("G", 2, 0))
	assert.Equal("*clefGv2", Clef("G", 2, -1))
	assert.Equal("*clefX", Clef("percussion", 0, 0))
	assert.Equal("*k[f#c#]", KeySig(2))
	assert.Equal("*k[b-e-a-]", KeySig(-3))
	assert.Equal("*k[]", KeySig(0))
	assert.Equal("*E-:", KeyDesignation(-3, "major"))
	assert.Equal("*c:", KeyDesignation(-3, "minor"))
	assert.Equal("*M6/8", TimeSig(6, 8))
	assert.True(humnum.New(3, 1).Equal(TimeSigDuration(6, 8)))
	assert.Equal("*met(c|)", Mensuration("cut"))
	assert.Equal("*MM120", Tempo(120))
	assert.Equal("*MM72.5", Tempo(72.5))
	assert.Equal("*ITrd-1c-2", Transpose(-1, -2))
	assert.Equal("*8va", Ottava(8, true, false))
	assert.Equal("*X8ba", Ottava(8, false, true))
}

func TestTextTokens(t *testing.T) {
	assert := assert.New(t)
	assert.Equal("la-", Syllable("la", "begin"))
	assert.Equal("-la", Syllable("la", "end"))
	assert.Equal("!LO:TX:a:t=dolce", TextLayout("dolce", "above"))
	assert.Equal("!LO:TX:t=a&colon;b", TextLayout("a:b", ""))
	assert.Equal("", DynamicLayout("below"))
	assert.Equal("B- minor-seventh/F", Harmony("B", -1, "minor-seventh", "F", 0))
}
