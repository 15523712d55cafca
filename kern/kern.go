package kern

import (
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/jsphweid/kerngrid/humnum"
)

// Pitch renders a diatonic step (C-B), chromatic alteration and
// scientific octave (middle C is 4) as kern pitch text.
func Pitch(step string, alter int, octave int) string {
	step = strings.ToUpper(strings.TrimSpace(step))
	if step == "" {
		return ""
	}
	letter := step[:1]
	var b strings.Builder
	if octave >= 4 {
		l := strings.ToLower(letter)
		for i := 0; i <= octave-4; i++ {
			b.WriteString(l)
		}
	} else {
		for i := 0; i < 4-octave; i++ {
			b.WriteString(letter)
		}
	}
	b.WriteString(Accidental(alter))
	return b.String()
}

func Accidental(alter int) string {
	switch {
	case alter > 0:
		return strings.Repeat("#", alter)
	case alter < 0:
		return strings.Repeat("-", -alter)
	}
	return ""
}

var sharpSpelling = []struct {
	step  string
	alter int
}{
	{"C", 0}, {"C", 1}, {"D", 0}, {"D", 1}, {"E", 0}, {"F", 0},
	{"F", 1}, {"G", 0}, {"G", 1}, {"A", 0}, {"A", 1}, {"B", 0},
}

var flatSpelling = []struct {
	step  string
	alter int
}{
	{"C", 0}, {"D", -1}, {"D", 0}, {"E", -1}, {"E", 0}, {"F", 0},
	{"G", -1}, {"G", 0}, {"A", -1}, {"A", 0}, {"B", -1}, {"B", 0},
}

// PitchFromKey spells a MIDI key number. Flat spellings are used when
// the key signature has flats.
func PitchFromKey(key uint8, fifths int) string {
	pc := int(key) % 12
	octave := int(key)/12 - 1
	spelling := sharpSpelling[pc]
	if fifths < 0 {
		spelling = flatSpelling[pc]
	}
	return Pitch(spelling.step, spelling.alter, octave)
}

func Rest(dur humnum.Num) string {
	return Recip(dur) + "r"
}

// Clef builds "*clefG2" style tokens. octaveChange -1 gives "v", +1 "^".
func Clef(sign string, line int, octaveChange int) string {
	sign = strings.ToUpper(sign)
	switch sign {
	case "PERCUSSION":
		return "*clefX"
	case "TAB":
		return "*clefTAB"
	case "NONE", "":
		return "*clefX"
	}
	var b strings.Builder
	b.WriteString("*clef")
	b.WriteString(sign)
	switch {
	case octaveChange < 0:
		b.WriteString(strings.Repeat("v", -octaveChange))
	case octaveChange > 0:
		b.WriteString(strings.Repeat("^", octaveChange))
	}
	if line > 0 {
		b.WriteString(strconv.Itoa(line))
	}
	return b.String()
}

const sharpOrder = "fcgdaeb"
const flatOrder = "beadgcf"

func KeySig(fifths int) string {
	var b strings.Builder
	b.WriteString("*k[")
	switch {
	case fifths > 0:
		for i := 0; i < fifths && i < 7; i++ {
			b.WriteByte(sharpOrder[i])
			b.WriteByte('#')
		}
	case fifths < 0:
		for i := 0; i < -fifths && i < 7; i++ {
			b.WriteByte(flatOrder[i])
			b.WriteByte('-')
		}
	}
	b.WriteString("]")
	return b.String()
}

var majorTonics = []string{"C-", "G-", "D-", "A-", "E-", "B-", "F", "C", "G", "D", "A", "E", "B", "F#", "C#"}
var minorTonics = []string{"a-", "e-", "b-", "f", "c", "g", "d", "a", "e", "b", "f#", "c#", "g#", "d#", "a#"}

// KeyDesignation returns "*G:" for major keys and "*e:" for minor keys.
// Unknown modes produce an empty string.
func KeyDesignation(fifths int, mode string) string {
	if fifths < -7 || fifths > 7 {
		return ""
	}
	switch strings.ToLower(mode) {
	case "major", "":
		return "*" + majorTonics[fifths+7] + ":"
	case "minor":
		return "*" + minorTonics[fifths+7] + ":"
	}
	return ""
}

func TimeSig(beats, beatType int) string {
	return fmt.Sprintf("*M%d/%d", beats, beatType)
}

// TimeSigDuration is the length of a full measure in quarter notes.
func TimeSigDuration(beats, beatType int) humnum.Num {
	if beatType == 0 {
		return humnum.Zero
	}
	return humnum.New(beats*4, beatType)
}

func Mensuration(symbol string) string {
	switch symbol {
	case "common":
		return "*met(c)"
	case "cut":
		return "*met(c|)"
	}
	return ""
}

func Tempo(bpm float64) string {
	rounded := math.Round(bpm*100) / 100
	return "*MM" + strconv.FormatFloat(rounded, 'f', -1, 64)
}

func Transpose(diatonic, chromatic int) string {
	return fmt.Sprintf("*ITrd%dc%d", diatonic, chromatic)
}

func Stria(lines int) string {
	return "*stria" + strconv.Itoa(lines)
}

// Ottava builds octave-shift interpretations. size is 8 or 15; above is
// true for lines drawn over the staff.
func Ottava(size int, above bool, stop bool) string {
	var b strings.Builder
	b.WriteString("*")
	if stop {
		b.WriteString("X")
	}
	b.WriteString(strconv.Itoa(size))
	switch {
	case above && size == 15:
		b.WriteString("ma")
	case above:
		b.WriteString("va")
	default:
		b.WriteString("ba")
	}
	return b.String()
}

// Syllable adds the hyphenation markers of a **text token.
func Syllable(text string, syllabic string) string {
	text = strings.ReplaceAll(text, "\t", " ")
	switch syllabic {
	case "begin":
		return text + "-"
	case "middle":
		return "-" + text + "-"
	case "end":
		return "-" + text
	}
	return text
}

// Harmony renders a chord symbol for the **mxhm column.
func Harmony(rootStep string, rootAlter int, kind string, bassStep string, bassAlter int) string {
	res := strings.ToUpper(rootStep) + Accidental(rootAlter)
	if kind != "" {
		res += " " + kind
	}
	if bassStep != "" {
		res += "/" + strings.ToUpper(bassStep) + Accidental(bassAlter)
	}
	return res
}

func Placement(placement string) string {
	switch placement {
	case "above":
		return ":a"
	case "below":
		return ":b"
	}
	return ""
}

// TextLayout is the local layout parameter carrying a text direction.
func TextLayout(text string, placement string) string {
	text = strings.ReplaceAll(text, ":", "&colon;")
	text = strings.ReplaceAll(text, "\t", " ")
	return "!LO:TX" + Placement(placement) + ":t=" + text
}

// DynamicLayout marks dynamics drawn above the staff. Dynamics below the
// staff are the default and need no parameter.
func DynamicLayout(placement string) string {
	if placement != "above" {
		return ""
	}
	return "!LO:DY:a"
}
