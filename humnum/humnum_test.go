package humnum

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestAddReduces(t *testing.T) {
	assert := assert.New(t)
	sum := New(1, 3).Add(New(1, 6))
	assert.True(sum.Equal(New(1, 2)))
	assert.Equal(1, sum.Numerator())
	assert.Equal(2, sum.Denominator())
}

func TestNewReducesToInteger(t *testing.T) {
	assert := assert.New(t)
	n := New(6, 3)
	assert.Equal(2, n.Numerator())
	assert.Equal(1, n.Denominator())
	assert.True(n.IsInteger())
	assert.Equal("2", n.String())
}

func TestSignLivesInNumerator(t *testing.T) {
	assert := assert.New(t)
	n := New(3, -6)
	assert.Equal(-1, n.Numerator())
	assert.Equal(2, n.Denominator())
	assert.True(n.IsNegative())
}

func TestDivisionByZeroIsNotFinite(t *testing.T) {
	assert := assert.New(t)
	inf := One.Div(Zero)
	assert.False(inf.IsFinite())
	assert.True(inf.IsInfinite())

	nan := Zero.Div(Zero)
	assert.False(nan.IsFinite())
	assert.True(nan.IsNaN())
}

func TestZeroValueIsZero(t *testing.T) {
	assert := assert.New(t)
	var n Num
	assert.True(n.IsZero())
	assert.True(n.IsFinite())
	assert.True(n.Equal(Zero))
	assert.True(n.AddInt(2).EqualInt(2))
	assert.Equal(0.0, n.Float())
}

func TestOrdering(t *testing.T) {
	cases := []struct {
		a, b Num
		want int
	}{
		{New(1, 2), New(2, 3), -1},
		{New(3, 4), New(6, 8), 0},
		{FromInt(2), New(3, 2), 1},
		{New(-1, 4), Zero, -1},
	}

	for _, c := range cases {
		name := fmt.Sprintf("compare %v with %v", c.a, c.b)
		t.Run(name, func(t *testing.T) {
			assert.Equal(t, c.want, c.a.Cmp(c.b))
		})
	}
}

func TestComparisonHelpers(t *testing.T) {
	assert := assert.New(t)
	half, third := New(1, 2), New(1, 3)
	assert.True(third.LessEq(half))
	assert.True(half.LessEq(New(2, 4)))
	assert.True(half.GreaterEq(third))
	assert.False(third.GreaterEq(half))
	assert.True(Min(half, third).Equal(third))
	assert.True(Max(half, third).Equal(half))
	assert.True(New(5, 2).SubInt(2).Equal(half))
}

func TestParse(t *testing.T) {
	assert := assert.New(t)
	n, err := Parse("3/2")
	assert.Nil(err)
	assert.True(n.Equal(New(3, 2)))

	n, err = Parse(" 4 ")
	assert.Nil(err)
	assert.True(n.EqualInt(4))

	for _, text := range []string{"x/2", "1/0", "0/0", "-3/0", ""} {
		_, err = Parse(text)
		assert.NotNil(err, text)
	}
}

func TestUnmarshalRejectsZeroDenominator(t *testing.T) {
	assert := assert.New(t)
	n := New(1, 2)
	assert.NotNil(n.UnmarshalText([]byte("1/0")))
	assert.True(n.Equal(New(1, 2)))
}

func TestTextRoundTrip(t *testing.T) {
	assert := assert.New(t)
	var n Num
	assert.Nil(n.UnmarshalText([]byte("5/10")))
	out, err := n.MarshalText()
	assert.Nil(err)
	assert.Equal("1/2", string(out))
}

func TestFloat(t *testing.T) {
	assert.Equal(t, 0.75, New(3, 4).Float())
}
