package grid

import "github.com/jsphweid/kerngrid/humnum"

// Token is one field of an output line. Part and Staff identify the track
// it was written for, -1 when it was created by the grid itself.
type Token struct {
	Text  string
	Part  int
	Staff int
}

func NewToken(text string) *Token {
	return &Token{Text: text, Part: -1, Staff: -1}
}

func newTrackToken(text string, part, staff int) *Token {
	return &Token{Text: text, Part: part, Staff: staff}
}

func (t *Token) String() string {
	if t == nil {
		return ""
	}
	return t.Text
}

// IsNull is true for missing tokens and for the data, interpretation and
// local comment placeholders.
func (t *Token) IsNull() bool {
	if t == nil {
		return true
	}
	switch t.Text {
	case ".", "*", "!":
		return true
	}
	return false
}

// Voice is one cell of a staff. A voice without a token is empty, which
// is not the same as holding a placeholder.
type Voice struct {
	token    *Token
	duration humnum.Num
}

func NewVoice(text string, duration humnum.Num) *Voice {
	return &Voice{token: NewToken(text), duration: duration}
}

func (v *Voice) Token() *Token {
	if v == nil {
		return nil
	}
	return v.token
}

func (v *Voice) Text() string {
	return v.Token().String()
}

func (v *Voice) SetToken(t *Token) {
	v.token = t
}

func (v *Voice) SetText(text string) {
	if v.token == nil {
		v.token = NewToken(text)
		return
	}
	v.token.Text = text
}

// TakeToken moves the token out of the voice, leaving it empty.
func (v *Voice) TakeToken() *Token {
	if v == nil {
		return nil
	}
	t := v.token
	v.token = nil
	return t
}

func (v *Voice) Duration() humnum.Num {
	if v == nil {
		return humnum.Zero
	}
	return v.duration
}

func (v *Voice) SetDuration(d humnum.Num) {
	v.duration = d
}

func (v *Voice) IsNull() bool {
	return v.Token().IsNull()
}

func (v *Voice) IsEmpty() bool {
	return v.Token() == nil
}
