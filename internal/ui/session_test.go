package ui

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gubarz/quizmd/internal/flashcard"
	"github.com/gubarz/quizmd/internal/parser"
	"github.com/gubarz/quizmd/internal/store"
)

// newTestSession writes body to a temp note and opens it
func newTestSession(t *testing.T, body string, opts SessionOptions) *Session {
	t.Helper()
	path := filepath.Join(t.TempDir(), "note.md")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))
	note, err := store.Load(path)
	require.NoError(t, err)
	if opts.Grammar.Name == "" {
		opts.Grammar = flashcard.Viewer
	}
	return NewSession(note, parser.NewParser(), opts)
}

func readNote(t *testing.T, s *Session) string {
	t.Helper()
	data, err := os.ReadFile(s.Note().Path)
	require.NoError(t, err)
	return string(data)
}

func TestSessionGrammar(t *testing.T) {
	s := newTestSession(t, "---\ngrammar: legacy\n---\n```qa\n?>Q\n>A\n```\n", SessionOptions{})
	assert.Equal(t, flashcard.Legacy, s.Grammar())

	pairs, count := s.Document().Decks()[0].Pairs(s.Grammar())
	assert.Equal(t, 1, count)
	assert.Equal(t, "Q", pairs[0].Question)

	s = newTestSession(t, "text\n", SessionOptions{Grammar: flashcard.Legacy})
	assert.Equal(t, flashcard.Legacy, s.Grammar())
}

func TestSessionReadOnly(t *testing.T) {
	body := "```go quiz\nx\n```\n\n:::qa\n??Q\n?>A\n:::\n"
	s := newTestSession(t, body, SessionOptions{Editable: false})
	code := s.Document().CodeNodes()[0]
	deck := s.Document().Decks()[0]

	assert.ErrorIs(t, s.SetCodeSource(code, "y\n"), ErrReadOnly)
	assert.ErrorIs(t, s.CycleLanguage(code), ErrReadOnly)
	assert.ErrorIs(t, s.ToggleQuiz(code), ErrReadOnly)
	assert.ErrorIs(t, s.SetDeckContent(deck, "??Z\n"), ErrReadOnly)

	assert.False(t, s.Dirty())
	assert.Equal(t, body, s.Document().Markdown())
}

func TestSessionEdits(t *testing.T) {
	tests := []struct {
		name     string
		body     string
		opts     SessionOptions
		edit     func(s *Session) error
		expected string
	}{
		{
			name:     "set source",
			body:     "```go\nx\n```\n",
			edit:     func(s *Session) error { return s.SetCodeSource(s.Document().CodeNodes()[0], "y\n") },
			expected: "```go\ny\n```\n",
		},
		{
			name:     "cycle language",
			body:     "```go\nx\n```\n",
			edit:     func(s *Session) error { return s.CycleLanguage(s.Document().CodeNodes()[0]) },
			expected: "```python\nx\n```\n",
		},
		{
			name:     "toggle quiz off discards meta",
			body:     "```go title=a quiz\nx\n```\n",
			edit:     func(s *Session) error { return s.ToggleQuiz(s.Document().CodeNodes()[0]) },
			expected: "```go\nx\n```\n",
		},
		{
			name:     "toggle quiz off preserving meta",
			body:     "```go title=a quiz\nx\n```\n",
			opts:     SessionOptions{PreserveMeta: true},
			edit:     func(s *Session) error { return s.ToggleQuiz(s.Document().CodeNodes()[0]) },
			expected: "```go title=a\nx\n```\n",
		},
		{
			name:     "deck content",
			body:     ":::qa\n??Q\n?>A\n:::\n",
			edit:     func(s *Session) error { return s.SetDeckContent(s.Document().Decks()[0], "??Q2\n?>A2\n") },
			expected: ":::qa\n??Q2\n?>A2\n:::\n",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tt.opts.Editable = true
			s := newTestSession(t, tt.body, tt.opts)
			require.NoError(t, tt.edit(s))
			assert.True(t, s.Dirty())

			require.NoError(t, s.Save())
			assert.False(t, s.Dirty())
			assert.Equal(t, tt.expected, readNote(t, s))
		})
	}
}

func TestSessionSaveKeepsFrontMatter(t *testing.T) {
	s := newTestSession(t, "---\ntitle: T\n---\n```go\nx\n```\n", SessionOptions{Editable: true})
	require.NoError(t, s.SetCodeSource(s.Document().CodeNodes()[0], "y\n"))
	require.NoError(t, s.Save())
	assert.Equal(t, "---\ntitle: T\n---\n```go\ny\n```\n", readNote(t, s))
}

func TestSessionMarkSavedWithPendingEdit(t *testing.T) {
	s := newTestSession(t, "```go\nx\n```\n", SessionOptions{Editable: true})
	code := s.Document().CodeNodes()[0]

	require.NoError(t, s.SetCodeSource(code, "y\n"))
	snap := s.Snapshot()
	require.NoError(t, s.SetCodeSource(code, "z\n"))

	require.NoError(t, store.Save(snap))
	s.MarkSaved(snap)
	assert.True(t, s.Dirty(), "edit made during the write is still unsaved")

	require.NoError(t, s.Save())
	assert.False(t, s.Dirty())
}

func TestSessionReload(t *testing.T) {
	s := newTestSession(t, "```go\nx\n```\n", SessionOptions{Editable: true})

	changed, err := s.Reload()
	require.NoError(t, err)
	assert.False(t, changed)

	require.NoError(t, os.WriteFile(s.Note().Path, []byte("```qa\n??Q\n?>A\n```\n"), 0o644))
	changed, err = s.Reload()
	require.NoError(t, err)
	assert.True(t, changed)
	assert.Len(t, s.Document().Decks(), 1)

	// Unsaved edits win over the disk.
	require.NoError(t, s.SetDeckContent(s.Document().Decks()[0], "??Mine\n"))
	require.NoError(t, os.WriteFile(s.Note().Path, []byte("theirs\n"), 0o644))
	changed, err = s.Reload()
	require.NoError(t, err)
	assert.False(t, changed)
	assert.Equal(t, "```qa\n??Mine\n```\n", s.Document().Markdown())
}

func TestSessionOwnSaveIsNotAChange(t *testing.T) {
	s := newTestSession(t, "```go\nx\n```\n", SessionOptions{Editable: true})
	require.NoError(t, s.SetCodeSource(s.Document().CodeNodes()[0], "y\n"))
	require.NoError(t, s.Save())

	changed, err := s.Reload()
	require.NoError(t, err)
	assert.False(t, changed)
}
