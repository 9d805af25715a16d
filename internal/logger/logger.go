package logger

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/charmbracelet/log"
)

// Logger wraps charm/log for structured logging
type Logger struct {
	*log.Logger
}

// New creates a new logger with the given output
func New(w io.Writer) *Logger {
	l := log.NewWithOptions(w, log.Options{
		ReportTimestamp: true,
		TimeFormat:      time.DateTime,
	})
	return &Logger{Logger: l}
}

// NewWithLevel creates a logger with a specific level
func NewWithLevel(w io.Writer, level log.Level) *Logger {
	l := log.NewWithOptions(w, log.Options{
		ReportTimestamp: true,
		TimeFormat:      time.DateTime,
		Level:           level,
	})
	return &Logger{Logger: l}
}

// NewFileLogger creates a logger that appends to a file. The TUI owns the
// terminal, so interactive sessions log here instead of stderr.
func NewFileLogger(path string, level log.Level) (*Logger, func(), error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, nil, fmt.Errorf("create log directory: %w", err)
	}
	f, err := os.OpenFile(path, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
	if err != nil {
		return nil, nil, err
	}

	cleanup := func() {
		f.Close()
	}
	return NewWithLevel(f, level), cleanup, nil
}

// Discard returns a logger that discards all output
func Discard() *Logger {
	return New(io.Discard)
}

// ParseLevel maps a config string to a level, defaulting to info
func ParseLevel(s string) log.Level {
	level, err := log.ParseLevel(strings.ToLower(strings.TrimSpace(s)))
	if err != nil {
		return log.InfoLevel
	}
	return level
}

// NoteLoaded logs a successful note ingestion
func (l *Logger) NoteLoaded(path string, blocks, skipped int) {
	l.Info("note loaded",
		"path", path,
		"blocks", blocks,
		"skipped", skipped)
}

// NoteSaved logs a write of the note back to disk
func (l *Logger) NoteSaved(path string, bytes int, duration time.Duration) {
	l.Info("note saved",
		"path", path,
		"bytes", bytes,
		"duration", duration.Round(time.Millisecond))
}

// NoteReloaded logs a reload triggered by an external change
func (l *Logger) NoteReloaded(path string) {
	l.Debug("note reloaded", "path", path)
}

// BlockSkipped logs a node that fell back to plain text
func (l *Logger) BlockSkipped(path string, err error) {
	l.Warn("block rendered as text",
		"path", path,
		"error", err)
}

// SaveError logs a failed write
func (l *Logger) SaveError(path string, err error) {
	l.Error("save failed",
		"path", path,
		"error", err)
}

// WatchError logs a file watcher failure
func (l *Logger) WatchError(path string, err error) {
	l.Error("watch failed",
		"path", path,
		"error", err)
}

// ConfigLoaded logs the effective configuration
func (l *Logger) ConfigLoaded(file string, editable bool, grammar string) {
	l.Debug("config loaded",
		"file", file,
		"editable", editable,
		"grammar", grammar)
}
