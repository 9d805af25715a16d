package deck

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gubarz/quizmd/internal/flashcard"
)

const threeCards = "??Q1\n?>A1\n??Q2\n?>A2\n??Q3\n?>A3"

func TestNavigationWraps(t *testing.T) {
	s := New(threeCards, flashcard.Viewer)
	require.Equal(t, 3, s.Count())

	for i := 0; i < 3; i++ {
		s.Next()
	}
	assert.Equal(t, 0, s.Index())

	s.Previous()
	assert.Equal(t, 2, s.Index())

	card, ok := s.Current()
	require.True(t, ok)
	assert.Equal(t, flashcard.Pair{Question: "Q3", Answer: "A3"}, card)
}

func TestNavigationShowsFront(t *testing.T) {
	s := New(threeCards, flashcard.Viewer)
	assert.True(t, s.IsFront())

	s.Flip()
	assert.False(t, s.IsFront())
	assert.Equal(t, 0, s.Index(), "flip does not navigate")

	s.Next()
	assert.True(t, s.IsFront())

	s.Flip()
	s.Previous()
	assert.True(t, s.IsFront())
}

func TestEmptyDeck(t *testing.T) {
	s := New("no markers here", flashcard.Viewer)
	assert.Equal(t, 0, s.Count())
	assert.False(t, s.Navigable())

	s.Next()
	s.Previous()
	assert.Equal(t, 0, s.Index())

	_, ok := s.Current()
	assert.False(t, ok)

	s.Flip()
	assert.False(t, s.IsFront())
}

func TestSingleCardIsNotNavigable(t *testing.T) {
	s := New("??Q\n?>A", flashcard.Viewer)
	assert.Equal(t, 1, s.Count())
	assert.False(t, s.Navigable())

	s.Next()
	assert.Equal(t, 0, s.Index())
}

func TestLoadResetsOnlyOnChange(t *testing.T) {
	s := New(threeCards, flashcard.Viewer)
	s.Next()
	s.Flip()

	assert.False(t, s.Load(threeCards))
	assert.Equal(t, 1, s.Index())
	assert.False(t, s.IsFront())

	assert.True(t, s.Load("??Only\n?>One"))
	assert.Equal(t, 0, s.Index())
	assert.True(t, s.IsFront())
	assert.Equal(t, 1, s.Count())
}

func TestPairsReturnsCopy(t *testing.T) {
	s := New(threeCards, flashcard.Viewer)
	pairs := s.Pairs()
	pairs[0].Question = "changed"

	card, _ := s.Current()
	assert.Equal(t, "Q1", card.Question)
}
