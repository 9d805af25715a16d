package codeblock

import (
	"errors"
	"strings"
)

// Surface selects which default language applies when a fence declares none
type Surface int

const (
	SurfaceRender Surface = iota // Read-only rendering of a note
	SurfaceEditor                // Editing a code block
)

const (
	DefaultRenderLanguage = "plaintext"
	DefaultEditorLanguage = "text"
)

// DeckLanguage marks a fence whose body is a flashcard deck
const DeckLanguage = "qa"

// Attribute keys used when a block travels as node attributes
const (
	AttrLanguage = "language"
	AttrMeta     = "meta"
	AttrValue    = "value"
)

// ErrMalformedNode is returned when node attributes lack required fields
var ErrMalformedNode = errors.New("malformed code node")

// Block is one fenced code region of a note
type Block struct {
	language string
	source   string
	meta     string
	flags    Flags
}

// New creates a block from explicit fields
func New(language, meta, source string) *Block {
	b := &Block{
		language: strings.TrimSpace(language),
		source:   source,
	}
	b.SetMeta(meta)
	return b
}

// FromFence creates a block from a fence info string and body.
// The first word of info is the language, the rest is meta.
func FromFence(info, source string) *Block {
	language, meta := SplitInfo(info)
	return New(language, meta, source)
}

// FromAttrs creates a block from rich-document node attributes.
// The value attribute is required; language and meta are optional.
func FromAttrs(attrs map[string]string) (*Block, error) {
	value, ok := attrs[AttrValue]
	if !ok {
		return nil, ErrMalformedNode
	}
	return New(attrs[AttrLanguage], attrs[AttrMeta], value), nil
}

// SplitInfo splits a fence info string into language and meta
func SplitInfo(info string) (language, meta string) {
	info = strings.TrimSpace(info)
	if info == "" {
		return "", ""
	}
	if idx := strings.IndexAny(info, " \t"); idx != -1 {
		return info[:idx], strings.TrimSpace(info[idx+1:])
	}
	return info, ""
}

// Language returns the declared language, possibly empty
func (b *Block) Language() string {
	return b.language
}

// Source returns the raw fence body
func (b *Block) Source() string {
	return b.source
}

// Meta returns the meta string
func (b *Block) Meta() string {
	return b.meta
}

// Flags returns the parsed meta flags
func (b *Block) Flags() Flags {
	return b.flags
}

// IsQuiz reports whether the block renders as a challenge
func (b *Block) IsQuiz() bool {
	return b.flags.Quiz
}

// IsDeck reports whether the block body is a flashcard deck
func (b *Block) IsDeck() bool {
	return strings.EqualFold(b.language, DeckLanguage)
}

// Info returns the fence info string for serialization
func (b *Block) Info() string {
	switch {
	case b.meta == "":
		return b.language
	case b.language == "":
		// A bare meta would be read back as the language.
		return DefaultEditorLanguage + " " + b.meta
	default:
		return b.language + " " + b.meta
	}
}

// DisplayLanguage returns the language shown on the given surface
func (b *Block) DisplayLanguage(s Surface) string {
	if b.language != "" {
		return b.language
	}
	if s == SurfaceEditor {
		return DefaultEditorLanguage
	}
	return DefaultRenderLanguage
}

// Attrs returns the block as node attributes
func (b *Block) Attrs() map[string]string {
	return map[string]string{
		AttrLanguage: b.language,
		AttrMeta:     b.meta,
		AttrValue:    b.source,
	}
}

// SetLanguage changes the declared language
func (b *Block) SetLanguage(language string) {
	b.language = strings.TrimSpace(language)
}

// SetSource replaces the raw body
func (b *Block) SetSource(source string) {
	b.source = source
}

// SetMeta replaces the meta string and re-parses its flags
func (b *Block) SetMeta(meta string) {
	b.meta = strings.TrimSpace(meta)
	b.flags = ParseFlags(b.meta)
}

// SetQuiz switches quiz mode by replacing the whole meta string.
// Other meta tokens are discarded.
func (b *Block) SetQuiz(on bool) {
	if on {
		b.SetMeta(QuizToken)
		return
	}
	b.SetMeta("")
}

// SetQuizPreserving switches quiz mode and keeps every other meta token
func (b *Block) SetQuizPreserving(on bool) {
	b.SetMeta(b.flags.WithQuiz(on).String())
}

// ToggleQuiz flips quiz mode; preserve selects SetQuizPreserving over SetQuiz
func (b *Block) ToggleQuiz(preserve bool) {
	if preserve {
		b.SetQuizPreserving(!b.IsQuiz())
		return
	}
	b.SetQuiz(!b.IsQuiz())
}

// Clone returns an independent copy of the block
func (b *Block) Clone() *Block {
	c := *b
	c.flags.Extra = append([]string(nil), b.flags.Extra...)
	return &c
}
