package store

import (
	"bytes"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// ErrNotFound is returned by Load when the note file does not exist
var ErrNotFound = errors.New("note not found")

// ErrFrontMatter is wrapped by Note.MetaErr when the YAML header is invalid
var ErrFrontMatter = errors.New("invalid front matter")

// FrontMatter is the optional YAML header of a note
type FrontMatter struct {
	Title   string   `yaml:"title,omitempty"`
	Tags    []string `yaml:"tags,omitempty"`
	Grammar string   `yaml:"grammar,omitempty"` // Overrides the configured flashcard grammar
}

// Note is a markdown file split into front matter and body
type Note struct {
	Path    string
	Meta    FrontMatter
	MetaErr error // Set when a header was present but did not parse
	Body    string
	ModTime time.Time

	header string // Front matter block exactly as read, delimiters included
	mode   fs.FileMode
}

// New creates an empty note that has not been saved yet
func New(path string) *Note {
	return &Note{Path: path, mode: 0o644}
}

// Load reads and splits a note file
func Load(path string) (*Note, error) {
	data, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, path)
	}
	if err != nil {
		return nil, fmt.Errorf("read note %s: %w", path, err)
	}
	info, err := os.Stat(path)
	if err != nil {
		return nil, fmt.Errorf("stat note %s: %w", path, err)
	}

	n := Split(string(data))
	n.Path = path
	n.ModTime = info.ModTime()
	n.mode = info.Mode().Perm()
	return n, nil
}

// Split separates a leading "---" YAML block from the body. An unparsable
// header stays in front of the body untouched and MetaErr is set.
func Split(content string) *Note {
	n := &Note{Body: content, mode: 0o644}

	first, rest, ok := cutLine(content)
	if !ok || strings.TrimRight(first, "\r") != "---" {
		return n
	}

	offset := len(content) - len(rest)
	for rest != "" {
		line, tail, _ := cutLine(rest)
		trimmed := strings.TrimRight(line, "\r")
		if trimmed == "---" || trimmed == "..." {
			yamlText := content[offset : len(content)-len(rest)]
			var meta FrontMatter
			if err := yaml.Unmarshal([]byte(yamlText), &meta); err != nil {
				n.MetaErr = fmt.Errorf("%w: %v", ErrFrontMatter, err)
				return n
			}
			end := len(content) - len(tail)
			n.Meta = meta
			n.header = content[:end]
			n.Body = content[end:]
			return n
		}
		rest = tail
	}
	// No closing delimiter: the whole file is body.
	return n
}

// Title returns the front matter title, falling back to the file name
func (n *Note) Title() string {
	if n.Meta.Title != "" {
		return n.Meta.Title
	}
	if n.Path == "" {
		return "untitled"
	}
	base := filepath.Base(n.Path)
	return strings.TrimSuffix(base, filepath.Ext(base))
}

// String joins the original header and the current body
func (n *Note) String() string {
	return n.header + n.Body
}

// Save writes the note atomically: temp file in the same directory, then rename
func Save(n *Note) error {
	if n.Path == "" {
		return fmt.Errorf("save note: empty path")
	}
	dir := filepath.Dir(n.Path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create note directory: %w", err)
	}

	tmp, err := os.CreateTemp(dir, "."+filepath.Base(n.Path)+".*.tmp")
	if err != nil {
		return fmt.Errorf("create temp: %w", err)
	}
	tmpPath := tmp.Name()
	if _, err := tmp.WriteString(n.String()); err != nil {
		_ = tmp.Close()
		_ = os.Remove(tmpPath)
		return fmt.Errorf("write temp: %w", err)
	}
	mode := n.mode
	if mode == 0 {
		mode = 0o644
	}
	_ = tmp.Chmod(mode)
	if err := tmp.Close(); err != nil {
		_ = os.Remove(tmpPath)
		return fmt.Errorf("close temp: %w", err)
	}
	if err := os.Rename(tmpPath, n.Path); err != nil {
		_ = os.Remove(tmpPath)
		return fmt.Errorf("rename: %w", err)
	}

	if info, err := os.Stat(n.Path); err == nil {
		n.ModTime = info.ModTime()
	}
	return nil
}

// Changed reports whether the file on disk differs from the note
func Changed(n *Note) (bool, error) {
	data, err := os.ReadFile(n.Path)
	if err != nil {
		return false, fmt.Errorf("read note %s: %w", n.Path, err)
	}
	return !bytes.Equal(data, []byte(n.String())), nil
}

func cutLine(s string) (line, rest string, found bool) {
	if i := strings.IndexByte(s, '\n'); i >= 0 {
		return s[:i], s[i+1:], true
	}
	return s, "", false
}
