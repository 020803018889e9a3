package twocaptcha

import (
	"encoding/base64"
	"net/url"
	"strconv"
	"time"
)

// TextSolution is the typed answer to an image or text captcha.
type TextSolution struct {
	Text string `json:"text"`
}

func decodeText(variant string, c Content) (TextSolution, error) {
	if c.Kind != ContentString {
		return TextSolution{}, unexpectedContent(variant, c)
	}
	return TextSolution{Text: c.Text}, nil
}

// CharacterSet restricts the characters a worker may type.
type CharacterSet int

const (
	AnyCharacters CharacterSet = iota
	NumbersOnly
	LettersOnly
	NumbersOrLetters
	NumbersAndLetters
)

// ImageCaptcha is a distorted-text image. Workers type what they read.
type ImageCaptcha struct {
	body          []byte
	phrase        bool
	caseSensitive bool
	charset       CharacterSet
	calc          bool
	minLength     int
	maxLength     int
	lang          string
	comment       string
}

func (t *ImageCaptcha) Method() string   { return "base64" }
func (t *ImageCaptcha) TaskType() string { return "ImageToTextTask" }

func (t *ImageCaptcha) Fields() url.Values {
	v := url.Values{}
	v.Set("body", base64.StdEncoding.EncodeToString(t.body))
	setFlag(v, "phrase", t.phrase)
	setFlag(v, "regsense", t.caseSensitive)
	if t.charset != AnyCharacters {
		v.Set("numeric", strconv.Itoa(int(t.charset)))
	}
	setFlag(v, "calc", t.calc)
	if t.minLength > 0 {
		v.Set("min_len", strconv.Itoa(t.minLength))
	}
	if t.maxLength > 0 {
		v.Set("max_len", strconv.Itoa(t.maxLength))
	}
	v.Set("lang", t.lang)
	v.Set("textinstructions", t.comment)
	return v
}

func (t *ImageCaptcha) InitialDelay() time.Duration { return 5 * time.Second }

func (t *ImageCaptcha) Validate() error {
	if len(t.body) == 0 {
		return invalidf("image body is required")
	}
	if t.charset < AnyCharacters || t.charset > NumbersAndLetters {
		return invalidf("unknown character set %d", t.charset)
	}
	if t.minLength < 0 || t.maxLength < 0 || (t.maxLength > 0 && t.minLength > t.maxLength) {
		return invalidf("length bounds [%d, %d] are invalid", t.minLength, t.maxLength)
	}
	return nil
}

func (t *ImageCaptcha) DecodeSolution(c Content) (TextSolution, error) {
	return decodeText("image", c)
}

type ImageCaptchaBuilder struct {
	t ImageCaptcha
}

func NewImageCaptchaBuilder() *ImageCaptchaBuilder { return &ImageCaptchaBuilder{} }

// Body is the raw image (jpg, png or gif).
func (b *ImageCaptchaBuilder) Body(img []byte) *ImageCaptchaBuilder {
	b.t.body = append([]byte(nil), img...)
	return b
}

// Phrase marks answers that contain two or more words.
func (b *ImageCaptchaBuilder) Phrase() *ImageCaptchaBuilder {
	b.t.phrase = true
	return b
}

func (b *ImageCaptchaBuilder) CaseSensitive() *ImageCaptchaBuilder {
	b.t.caseSensitive = true
	return b
}

func (b *ImageCaptchaBuilder) Charset(cs CharacterSet) *ImageCaptchaBuilder {
	b.t.charset = cs
	return b
}

// Calc tells workers the image shows an expression to compute.
func (b *ImageCaptchaBuilder) Calc() *ImageCaptchaBuilder {
	b.t.calc = true
	return b
}

func (b *ImageCaptchaBuilder) Length(lo, hi int) *ImageCaptchaBuilder {
	b.t.minLength, b.t.maxLength = lo, hi
	return b
}

// Lang is an ISO 639-1 language code for the worker pool.
func (b *ImageCaptchaBuilder) Lang(code string) *ImageCaptchaBuilder {
	b.t.lang = code
	return b
}

// Comment is an instruction shown to the worker next to the image.
func (b *ImageCaptchaBuilder) Comment(text string) *ImageCaptchaBuilder {
	b.t.comment = text
	return b
}

func (b *ImageCaptchaBuilder) Build() (*ImageCaptcha, error) {
	t := b.t
	if err := t.Validate(); err != nil {
		return nil, err
	}
	return &t, nil
}

// TextCaptcha is a question answered in plain text.
type TextCaptcha struct {
	question string
	lang     string
}

// NewTextCaptcha builds a TextCaptcha. It is the only variant without a
// builder: a question and an optional language are all it takes.
func NewTextCaptcha(question, lang string) (*TextCaptcha, error) {
	t := &TextCaptcha{question: question, lang: lang}
	if err := t.Validate(); err != nil {
		return nil, err
	}
	return t, nil
}

func (t *TextCaptcha) Method() string   { return "textcaptcha" }
func (t *TextCaptcha) TaskType() string { return "TextCaptchaTask" }

func (t *TextCaptcha) Fields() url.Values {
	v := url.Values{}
	v.Set("textcaptcha", t.question)
	v.Set("lang", t.lang)
	return v
}

func (t *TextCaptcha) InitialDelay() time.Duration { return 5 * time.Second }

func (t *TextCaptcha) Validate() error {
	return requireField("question", t.question)
}

func (t *TextCaptcha) DecodeSolution(c Content) (TextSolution, error) {
	return decodeText("text", c)
}
