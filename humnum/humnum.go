package humnum

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
)

type state uint8

const (
	finite state = iota
	infinite
	nan
)

// Num is an exact rational number used for timestamps and durations
// measured in quarter notes. The zero value is 0.
type Num struct {
	top   int
	bot   int
	state state
}

var Zero = Num{0, 1, finite}
var One = Num{1, 1, finite}

func FromInt(n int) Num {
	return Num{n, 1, finite}
}

// New reduces top/bot. A zero denominator produces a non-finite value
// instead of panicking.
func New(top, bot int) Num {
	if bot == 0 {
		if top == 0 {
			return Num{state: nan}
		}
		if top > 0 {
			return Num{top: 1, state: infinite}
		}
		return Num{top: -1, state: infinite}
	}
	if bot < 0 {
		top = -top
		bot = -bot
	}
	if top == 0 {
		return Zero
	}
	g := gcd(top, bot)
	return Num{top / g, bot / g, finite}
}

// Parse reads "3", "3/2" or "-1/4". A zero denominator is an error.
func Parse(text string) (Num, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return Zero, errors.New("empty rational")
	}
	parts := strings.SplitN(text, "/", 2)
	top, err := strconv.Atoi(strings.TrimSpace(parts[0]))
	if err != nil {
		return Zero, errors.New(fmt.Sprintf("invalid rational %q: %s", text, err.Error()))
	}
	if len(parts) == 1 {
		return FromInt(top), nil
	}
	bot, err := strconv.Atoi(strings.TrimSpace(parts[1]))
	if err != nil {
		return Zero, errors.New(fmt.Sprintf("invalid rational %q: %s", text, err.Error()))
	}
	if bot == 0 {
		return Zero, errors.New(fmt.Sprintf("invalid rational %q: zero denominator", text))
	}
	return New(top, bot), nil
}

func gcd(a, b int) int {
	if a < 0 {
		a = -a
	}
	if b < 0 {
		b = -b
	}
	for b != 0 {
		a, b = b, a%b
	}
	return a
}

func (n Num) den() int {
	if n.bot == 0 {
		return 1
	}
	return n.bot
}

func (n Num) Numerator() int {
	return n.top
}

// Denominator returns 0 for non-finite values.
func (n Num) Denominator() int {
	if n.state != finite {
		return 0
	}
	return n.den()
}

func (n Num) Add(o Num) Num {
	if n.state != finite || o.state != finite {
		return Num{state: nan}
	}
	return New(n.top*o.den()+o.top*n.den(), n.den()*o.den())
}

func (n Num) Sub(o Num) Num {
	return n.Add(o.Neg())
}

func (n Num) Mul(o Num) Num {
	if n.state != finite || o.state != finite {
		return Num{state: nan}
	}
	return New(n.top*o.top, n.den()*o.den())
}

func (n Num) Div(o Num) Num {
	if n.state != finite || o.state != finite {
		return Num{state: nan}
	}
	return New(n.top*o.den(), n.den()*o.top)
}

func (n Num) AddInt(v int) Num { return n.Add(FromInt(v)) }
func (n Num) SubInt(v int) Num { return n.Sub(FromInt(v)) }
func (n Num) MulInt(v int) Num { return n.Mul(FromInt(v)) }
func (n Num) DivInt(v int) Num { return n.Div(FromInt(v)) }

func (n Num) Neg() Num {
	n.top = -n.top
	return n
}

func (n Num) Abs() Num {
	if n.top < 0 {
		return n.Neg()
	}
	return n
}

// Cmp returns -1, 0 or +1. Infinities compare by sign; NaN compares
// equal to everything.
func (n Num) Cmp(o Num) int {
	if n.state == nan || o.state == nan {
		return 0
	}
	var l, r int
	switch {
	case n.state == infinite || o.state == infinite:
		l, r = n.top, o.top
		if n.state != infinite {
			l = 0
		}
		if o.state != infinite {
			r = 0
		}
	default:
		l = n.top * o.den()
		r = o.top * n.den()
	}
	switch {
	case l < r:
		return -1
	case l > r:
		return 1
	}
	return 0
}

func (n Num) Equal(o Num) bool {
	if n.state != o.state {
		return false
	}
	return n.Cmp(o) == 0
}

func (n Num) Less(o Num) bool      { return n.Cmp(o) < 0 }
func (n Num) LessEq(o Num) bool    { return n.Cmp(o) <= 0 }
func (n Num) Greater(o Num) bool   { return n.Cmp(o) > 0 }
func (n Num) GreaterEq(o Num) bool { return n.Cmp(o) >= 0 }
func (n Num) EqualInt(v int) bool  { return n.Equal(FromInt(v)) }

func (n Num) IsZero() bool     { return n.state == finite && n.top == 0 }
func (n Num) IsPositive() bool { return n.state == finite && n.top > 0 }
func (n Num) IsNegative() bool { return n.state == finite && n.top < 0 }
func (n Num) IsInteger() bool  { return n.state == finite && n.den() == 1 }
func (n Num) IsFinite() bool   { return n.state == finite }
func (n Num) IsInfinite() bool { return n.state == infinite }
func (n Num) IsNaN() bool      { return n.state == nan }

// Int truncates toward zero.
func (n Num) Int() int {
	if n.state != finite {
		return 0
	}
	return n.top / n.den()
}

func (n Num) Float() float64 {
	if n.state == finite {
		return float64(n.top) / float64(n.den())
	}
	return float64(n.top) / float64(n.bot)
}

func (n Num) String() string {
	switch n.state {
	case nan:
		return "nan"
	case infinite:
		if n.top < 0 {
			return "-inf"
		}
		return "inf"
	}
	if n.den() == 1 {
		return strconv.Itoa(n.top)
	}
	return strconv.Itoa(n.top) + "/" + strconv.Itoa(n.bot)
}

func (n Num) MarshalText() ([]byte, error) {
	return []byte(n.String()), nil
}

func (n *Num) UnmarshalText(text []byte) error {
	v, err := Parse(string(text))
	if err != nil {
		return err
	}
	*n = v
	return nil
}

func Min(a, b Num) Num {
	if b.Less(a) {
		return b
	}
	return a
}

func Max(a, b Num) Num {
	if b.Greater(a) {
		return b
	}
	return a
}
