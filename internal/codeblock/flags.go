package codeblock

import (
	"strings"
)

// QuizToken is the meta token that turns a code block into a quiz
const QuizToken = "quiz"

// Flags is the structured form of a meta string
type Flags struct {
	Quiz  bool
	Extra []string // Unrecognized tokens, in order of appearance
}

// ParseFlags splits meta into tokens and picks out the recognized ones.
// Tokens are separated by whitespace or commas.
func ParseFlags(meta string) Flags {
	var f Flags
	tokens := strings.FieldsFunc(meta, func(r rune) bool {
		return r == ',' || r == ' ' || r == '\t'
	})
	for _, tok := range tokens {
		if strings.EqualFold(tok, QuizToken) {
			f.Quiz = true
			continue
		}
		f.Extra = append(f.Extra, tok)
	}
	return f
}

// WithQuiz returns a copy of f with the quiz flag set to on
func (f Flags) WithQuiz(on bool) Flags {
	return Flags{
		Quiz:  on,
		Extra: append([]string(nil), f.Extra...),
	}
}

// String renders the flags back into a meta string
func (f Flags) String() string {
	tokens := make([]string, 0, len(f.Extra)+1)
	tokens = append(tokens, f.Extra...)
	if f.Quiz {
		tokens = append(tokens, QuizToken)
	}
	return strings.Join(tokens, " ")
}
