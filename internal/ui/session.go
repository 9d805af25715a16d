package ui

import (
	"errors"
	"fmt"

	"github.com/gubarz/quizmd/internal/codeblock"
	"github.com/gubarz/quizmd/internal/flashcard"
	"github.com/gubarz/quizmd/internal/logger"
	"github.com/gubarz/quizmd/internal/parser"
	"github.com/gubarz/quizmd/internal/store"
)

// ErrReadOnly is returned by edit operations when the user cannot edit
var ErrReadOnly = errors.New("note is read-only")

// SessionOptions carries the settings a session needs from config
type SessionOptions struct {
	Editable     bool
	PreserveMeta bool
	Grammar      flashcard.Grammar
	Logger       *logger.Logger
}

// Session owns one open note: its parsed document, edits and saves
type Session struct {
	note   *store.Note
	doc    *parser.Document
	parser *parser.Parser
	opts   SessionOptions
	dirty  bool
	log    *logger.Logger
}

// NewSession parses note and reports skipped blocks to the log
func NewSession(note *store.Note, p *parser.Parser, opts SessionOptions) *Session {
	log := opts.Logger
	if log == nil {
		log = logger.Discard()
	}
	s := &Session{note: note, parser: p, opts: opts, log: log}
	s.ingest()
	return s
}

func (s *Session) ingest() {
	s.doc = s.parser.Parse(s.note.Body)
	for _, w := range s.doc.Warnings {
		s.log.BlockSkipped(s.note.Path, w)
	}
	if s.note.MetaErr != nil {
		s.log.Warn("front matter ignored", "path", s.note.Path, "error", s.note.MetaErr)
	}
	s.log.NoteLoaded(s.note.Path, len(s.doc.Blocks), len(s.doc.Warnings))
}

// Note returns the open note
func (s *Session) Note() *store.Note {
	return s.note
}

// Document returns the parsed body
func (s *Session) Document() *parser.Document {
	return s.doc
}

// Editable reports whether edit operations are allowed
func (s *Session) Editable() bool {
	return s.opts.Editable
}

// Dirty reports whether the document has unsaved edits
func (s *Session) Dirty() bool {
	return s.dirty
}

// Grammar returns the flashcard grammar: the note's front matter wins
// over the configured one
func (s *Session) Grammar() flashcard.Grammar {
	return parser.GrammarFor(s.note, s.opts.Grammar)
}

// ============================================================================
// Edits
// ============================================================================

// SetCodeSource replaces a code block's body
func (s *Session) SetCodeSource(n *parser.CodeNode, source string) error {
	if !s.opts.Editable {
		return ErrReadOnly
	}
	if n.Code.Source() == source {
		return nil
	}
	return s.update(n, codeblock.AttrValue, source)
}

// CycleLanguage moves a code block to the next picker language
func (s *Session) CycleLanguage(n *parser.CodeNode) error {
	if !s.opts.Editable {
		return ErrReadOnly
	}
	return s.update(n, codeblock.AttrLanguage, codeblock.NextLanguage(n.Code.Language()))
}

// update sets one attribute of a code block and marks the session dirty
func (s *Session) update(n *parser.CodeNode, key, value string) error {
	if err := n.Update(map[string]string{key: value}); err != nil {
		return fmt.Errorf("edit code block: %w", err)
	}
	s.dirty = true
	return nil
}

// ToggleQuiz flips a code block between plain and quiz
func (s *Session) ToggleQuiz(n *parser.CodeNode) error {
	if !s.opts.Editable {
		return ErrReadOnly
	}
	n.Code.ToggleQuiz(s.opts.PreserveMeta)
	s.dirty = true
	return nil
}

// SetDeckContent replaces a deck's raw content
func (s *Session) SetDeckContent(n *parser.DeckNode, content string) error {
	if !s.opts.Editable {
		return ErrReadOnly
	}
	if n.Content == content {
		return nil
	}
	n.Content = content
	s.dirty = true
	return nil
}

// ============================================================================
// Persistence
// ============================================================================

// Snapshot returns a copy of the note carrying the current document, ready
// to be written without touching session state
func (s *Session) Snapshot() *store.Note {
	n := *s.note
	n.Body = s.doc.Markdown()
	return &n
}

// MarkSaved records a completed write of snapshot. Edits made while the
// write was in flight keep the session dirty.
func (s *Session) MarkSaved(snapshot *store.Note) {
	s.note.Body = snapshot.Body
	s.note.ModTime = snapshot.ModTime
	if s.doc.Markdown() == snapshot.Body {
		s.dirty = false
	}
}

// Save writes the document synchronously
func (s *Session) Save() error {
	snap := s.Snapshot()
	if err := store.Save(snap); err != nil {
		return fmt.Errorf("save %s: %w", s.note.Path, err)
	}
	s.MarkSaved(snap)
	return nil
}

// Reload re-reads the note from disk. It returns false when the file still
// matches what the session last read or wrote, and leaves unsaved edits alone.
func (s *Session) Reload() (bool, error) {
	changed, err := store.Changed(s.note)
	if err != nil || !changed {
		return false, err
	}
	if s.dirty {
		s.log.Warn("external change ignored, unsaved edits pending", "path", s.note.Path)
		return false, nil
	}
	loaded, err := store.Load(s.note.Path)
	if err != nil {
		return false, err
	}
	s.note = loaded
	s.ingest()
	s.log.NoteReloaded(s.note.Path)
	return true, nil
}
