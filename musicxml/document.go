package musicxml

import (
	"encoding/xml"
	"io"
	"strconv"
	"strings"

	"golang.org/x/net/html/charset"
)

// Document is a partwise MusicXML score.
type Document struct {
	XMLName        xml.Name       `xml:"score-partwise"`
	Work           Work           `xml:"work"`
	MovementTitle  string         `xml:"movement-title"`
	Identification Identification `xml:"identification"`
	PartList       []ScorePart    `xml:"part-list>score-part"`
	Parts          []Part         `xml:"part"`
}

type Work struct {
	Title  string `xml:"work-title"`
	Number string `xml:"work-number"`
}

type Identification struct {
	Creators []Creator `xml:"creator"`
	Rights   string    `xml:"rights"`
}

type Creator struct {
	Type string `xml:"type,attr"`
	Name string `xml:",chardata"`
}

type ScorePart struct {
	ID           string `xml:"id,attr"`
	Name         string `xml:"part-name"`
	Abbreviation string `xml:"part-abbreviation"`
}

type Part struct {
	ID       string    `xml:"id,attr"`
	Measures []Measure `xml:"measure"`
}

// Measure keeps its children in document order, since the musical
// position of each one depends on the notes, backups and forwards
// before it.
type Measure struct {
	Number   string
	Implicit bool
	Elements []any
}

func (m *Measure) UnmarshalXML(d *xml.Decoder, start xml.StartElement) error {
	for _, attr := range start.Attr {
		switch attr.Name.Local {
		case "number":
			m.Number = attr.Value
		case "implicit":
			m.Implicit = attr.Value == "yes"
		}
	}

	for {
		token, err := d.Token()
		if err == io.EOF {
			return nil
		}
		if err != nil {
			return err
		}
		switch t := token.(type) {
		case xml.EndElement:
			if t.Name.Local == start.Name.Local {
				return nil
			}
		case xml.StartElement:
			var el any
			switch t.Name.Local {
			case "attributes":
				el = &Attributes{}
			case "note":
				el = &Note{}
			case "backup":
				el = &Backup{}
			case "forward":
				el = &Forward{}
			case "direction":
				el = &Direction{}
			case "harmony":
				el = &Harmony{}
			case "figured-bass":
				el = &FiguredBass{}
			case "barline":
				el = &Barline{}
			case "print":
				el = &Print{}
			case "sound":
				el = &Sound{}
			default:
				if err := d.Skip(); err != nil {
					return err
				}
				continue
			}
			if err := d.DecodeElement(el, &t); err != nil {
				return err
			}
			m.Elements = append(m.Elements, el)
		}
	}
}

// MeasureNumber is the numeric part of the measure's number attribute,
// or fallback when there is none.
func (m *Measure) MeasureNumber(fallback int) int {
	digits := strings.TrimLeftFunc(m.Number, func(r rune) bool { return r < '0' || r > '9' })
	end := strings.IndexFunc(digits, func(r rune) bool { return r < '0' || r > '9' })
	if end >= 0 {
		digits = digits[:end]
	}
	n, err := strconv.Atoi(digits)
	if err != nil {
		return fallback
	}
	return n
}

type Attributes struct {
	Divisions    int            `xml:"divisions"`
	Keys         []Key          `xml:"key"`
	Times        []Time         `xml:"time"`
	Staves       int            `xml:"staves"`
	Clefs        []Clef         `xml:"clef"`
	Transpose    *Transpose     `xml:"transpose"`
	StaffDetails []StaffDetails `xml:"staff-details"`
}

type Key struct {
	Number int    `xml:"number,attr"`
	Fifths int    `xml:"fifths"`
	Mode   string `xml:"mode"`
}

type Time struct {
	Number   int    `xml:"number,attr"`
	Symbol   string `xml:"symbol,attr"`
	Beats    string `xml:"beats"`
	BeatType int    `xml:"beat-type"`
}

// BeatCount adds up composite signatures such as "3+2".
func (t Time) BeatCount() int {
	var total int
	for _, part := range strings.Split(t.Beats, "+") {
		n, err := strconv.Atoi(strings.TrimSpace(part))
		if err != nil {
			return 0
		}
		total += n
	}
	return total
}

type Clef struct {
	Number       int    `xml:"number,attr"`
	Sign         string `xml:"sign"`
	Line         int    `xml:"line"`
	OctaveChange int    `xml:"clef-octave-change"`
}

type Transpose struct {
	Diatonic  int `xml:"diatonic"`
	Chromatic int `xml:"chromatic"`
}

type StaffDetails struct {
	Number int `xml:"number,attr"`
	Lines  int `xml:"staff-lines"`
}

type Note struct {
	PrintObject string      `xml:"print-object,attr"`
	Grace       *Grace      `xml:"grace"`
	Chord       *struct{}   `xml:"chord"`
	Pitch       *Pitch      `xml:"pitch"`
	Unpitched   *Unpitched  `xml:"unpitched"`
	Rest        *Rest       `xml:"rest"`
	Accidental  *Accidental `xml:"accidental"`
	Duration    int         `xml:"duration"`
	Ties        []Tie       `xml:"tie"`
	Voice       string      `xml:"voice"`
	Type        string      `xml:"type"`
	Dots        []struct{}  `xml:"dot"`
	Staff       int         `xml:"staff"`
	Lyrics      []Lyric     `xml:"lyric"`
}

type Accidental struct {
	Value       string `xml:",chardata"`
	Editorial   string `xml:"editorial,attr"`
	Parentheses string `xml:"parentheses,attr"`
	Bracket     string `xml:"bracket,attr"`
}

// IsEditorial reports an accidental marked as an editorial addition.
func (a *Accidental) IsEditorial() bool {
	return a != nil && (a.Editorial == "yes" || a.Parentheses == "yes" || a.Bracket == "yes")
}

type Grace struct {
	Slash string `xml:"slash,attr"`
}

type Pitch struct {
	Step   string  `xml:"step"`
	Alter  float64 `xml:"alter"`
	Octave int     `xml:"octave"`
}

type Unpitched struct {
	Step   string `xml:"display-step"`
	Octave int    `xml:"display-octave"`
}

type Rest struct {
	Measure string `xml:"measure,attr"`
}

type Tie struct {
	Type string `xml:"type,attr"`
}

type Lyric struct {
	Number   string `xml:"number,attr"`
	Syllabic string `xml:"syllabic"`
	Text     string `xml:"text"`
}

type Backup struct {
	Duration int `xml:"duration"`
}

type Forward struct {
	Duration int `xml:"duration"`
}

type Direction struct {
	Placement string          `xml:"placement,attr"`
	Types     []DirectionType `xml:"direction-type"`
	Offset    int             `xml:"offset"`
	Staff     int             `xml:"staff"`
	Sound     *Sound          `xml:"sound"`
}

type DirectionType struct {
	Words       []string     `xml:"words"`
	Dynamics    *Dynamics    `xml:"dynamics"`
	Metronome   *Metronome   `xml:"metronome"`
	OctaveShift *OctaveShift `xml:"octave-shift"`
}

// Dynamics holds marks such as <p/> or <sfz/>, and free text in
// <other-dynamics>.
type Dynamics struct {
	Marks []struct {
		XMLName xml.Name
		Text    string `xml:",chardata"`
	} `xml:",any"`
}

func (d *Dynamics) String() string {
	var res []string
	for _, m := range d.Marks {
		if m.XMLName.Local == "other-dynamics" {
			res = append(res, strings.TrimSpace(m.Text))
			continue
		}
		res = append(res, m.XMLName.Local)
	}
	return strings.Join(res, " ")
}

type Metronome struct {
	BeatUnit    string     `xml:"beat-unit"`
	BeatUnitDot []struct{} `xml:"beat-unit-dot"`
	PerMinute   string     `xml:"per-minute"`
}

type OctaveShift struct {
	Type string `xml:"type,attr"`
	Size int    `xml:"size,attr"`
}

type Sound struct {
	Tempo string `xml:"tempo,attr"`
}

type Harmony struct {
	Root struct {
		Step  string  `xml:"root-step"`
		Alter float64 `xml:"root-alter"`
	} `xml:"root"`
	Kind struct {
		Text  string `xml:"text,attr"`
		Value string `xml:",chardata"`
	} `xml:"kind"`
	Bass struct {
		Step  string  `xml:"bass-step"`
		Alter float64 `xml:"bass-alter"`
	} `xml:"bass"`
	Offset int `xml:"offset"`
	Staff  int `xml:"staff"`
}

type FiguredBass struct {
	Figures []struct {
		Prefix string `xml:"prefix"`
		Number string `xml:"figure-number"`
		Suffix string `xml:"suffix"`
	} `xml:"figure"`
	Duration int `xml:"duration"`
}

type Barline struct {
	Location string `xml:"location,attr"`
	BarStyle string `xml:"bar-style"`
	Repeat   struct {
		Direction string `xml:"direction,attr"`
	} `xml:"repeat"`
}

type Print struct {
	NewSystem string `xml:"new-system,attr"`
	NewPage   string `xml:"new-page,attr"`
}

func Decode(r io.Reader) (*Document, error) {
	var doc Document
	dec := xml.NewDecoder(r)
	dec.CharsetReader = charset.NewReaderLabel
	err := dec.Decode(&doc)
	if err != nil {
		return nil, err
	}
	return &doc, nil
}
