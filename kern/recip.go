package kern

import (
	"strconv"
	"strings"

	"github.com/jsphweid/kerngrid/humnum"
)

// Recip renders a duration in quarter notes as a kern rhythm: "4" for a
// quarter, "8." for a dotted eighth, "0" for a breve, "3%2" when no
// dotted power-of-two value fits, "g" for zero.
func Recip(dur humnum.Num) string {
	if dur.IsZero() || !dur.IsFinite() {
		return "g"
	}
	d := dur.DivInt(4)
	if d.EqualInt(2) {
		return "0"
	}
	if d.EqualInt(4) {
		return "00"
	}
	if d.Numerator() == 1 {
		return strconv.Itoa(d.Denominator())
	}

	// n dots multiply the base value by (2^(n+1)-1)/2^n
	for dots := 1; dots <= 3; dots++ {
		scale := humnum.New(1<<dots, (1<<(dots+1))-1)
		base := d.Mul(scale)
		if base.Numerator() == 1 {
			return strconv.Itoa(base.Denominator()) + strings.Repeat(".", dots)
		}
		if base.EqualInt(2) {
			return "0" + strings.Repeat(".", dots)
		}
	}

	return strconv.Itoa(d.Denominator()) + "%" + strconv.Itoa(d.Numerator())
}

// Duration extracts the rhythm of a kern token in quarter notes. Only the
// first chord member is read. Grace notes and tokens without a rhythm
// have zero duration.
func Duration(token string) humnum.Num {
	if i := strings.IndexByte(token, ' '); i >= 0 {
		token = token[:i]
	}
	if strings.ContainsAny(token, "qQ") {
		return humnum.Zero
	}

	start := strings.IndexAny(token, "0123456789")
	if start < 0 {
		return humnum.Zero
	}
	end := start
	for end < len(token) && token[end] >= '0' && token[end] <= '9' {
		end++
	}
	digits := token[start:end]

	var dur humnum.Num
	switch {
	case strings.Trim(digits, "0") == "":
		// "0" is a breve, "00" a long
		dur = humnum.FromInt(8 << (len(digits) - 1))
	default:
		value, _ := strconv.Atoi(digits)
		dur = humnum.New(4, value)
	}

	if end < len(token) && token[end] == '%' {
		numEnd := end + 1
		for numEnd < len(token) && token[numEnd] >= '0' && token[numEnd] <= '9' {
			numEnd++
		}
		if num, err := strconv.Atoi(token[end+1 : numEnd]); err == nil && num > 0 {
			dur = dur.MulInt(num)
		}
		end = numEnd
	}

	dots := 0
	for end < len(token) && token[end] == '.' {
		dots++
		end++
	}
	add := dur
	for i := 0; i < dots; i++ {
		add = add.DivInt(2)
		dur = dur.Add(add)
	}
	return dur
}
