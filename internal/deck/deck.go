package deck

import (
	"github.com/gubarz/quizmd/internal/flashcard"
)

// State is the navigable view over one flashcard deck
type State struct {
	content string
	grammar flashcard.Grammar
	pairs   []flashcard.Pair
	count   int
	index   int
	front   bool
}

// New creates a deck from raw deck content
func New(content string, g flashcard.Grammar) *State {
	s := &State{grammar: g}
	s.reset(content)
	return s
}

// Load replaces the deck content. Navigation resets only when the content
// actually changed, so reloading the same note keeps the current card.
func (s *State) Load(content string) bool {
	if content == s.content {
		return false
	}
	s.reset(content)
	return true
}

func (s *State) reset(content string) {
	s.content = content
	s.pairs, s.count = flashcard.Extract(content, s.grammar)
	s.index = 0
	s.front = true
}

// Count returns the number of cards
func (s *State) Count() int {
	return s.count
}

// Index returns the current card index
func (s *State) Index() int {
	return s.index
}

// IsFront reports whether the question side is showing
func (s *State) IsFront() bool {
	return s.front
}

// Navigable reports whether next/previous lead anywhere
func (s *State) Navigable() bool {
	return s.count >= 2
}

// Current returns the card under the cursor, false for an empty deck
func (s *State) Current() (flashcard.Pair, bool) {
	if s.count == 0 {
		return flashcard.Pair{}, false
	}
	return s.pairs[s.index], true
}

// Pairs returns a copy of every card
func (s *State) Pairs() []flashcard.Pair {
	return append([]flashcard.Pair(nil), s.pairs...)
}

// Next moves to the following card, wrapping to the first
func (s *State) Next() {
	if s.count == 0 {
		return
	}
	s.index = (s.index + 1) % s.count
	s.front = true
}

// Previous moves to the preceding card, wrapping to the last
func (s *State) Previous() {
	if s.count == 0 {
		return
	}
	s.index = (s.index - 1 + s.count) % s.count
	s.front = true
}

// Flip turns the current card over
func (s *State) Flip() {
	s.front = !s.front
}
