package store

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSplit(t *testing.T) {
	tests := []struct {
		name    string
		content string
		meta    FrontMatter
		body    string
		metaErr bool
	}{
		{
			name:    "no header",
			content: "# Title\n\ntext\n",
			body:    "# Title\n\ntext\n",
		},
		{
			name:    "header with title and grammar",
			content: "---\ntitle: Go basics\ngrammar: legacy\ntags: [go, quiz]\n---\nbody\n",
			meta:    FrontMatter{Title: "Go basics", Grammar: "legacy", Tags: []string{"go", "quiz"}},
			body:    "body\n",
		},
		{
			name:    "dots close the header",
			content: "---\ntitle: x\n...\nbody",
			meta:    FrontMatter{Title: "x"},
			body:    "body",
		},
		{
			name:    "crlf delimiters",
			content: "---\r\ntitle: x\r\n---\r\nbody\r\n",
			meta:    FrontMatter{Title: "x"},
			body:    "body\r\n",
		},
		{
			name:    "unclosed header is body",
			content: "---\ntitle: x\nbody\n",
			body:    "---\ntitle: x\nbody\n",
		},
		{
			name:    "invalid yaml stays in body",
			content: "---\ntitle: [unclosed\n---\nbody\n",
			body:    "---\ntitle: [unclosed\n---\nbody\n",
			metaErr: true,
		},
		{
			name:    "thematic break later in file",
			content: "text\n---\nmore\n",
			body:    "text\n---\nmore\n",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			n := Split(tt.content)
			assert.Equal(t, tt.meta, n.Meta)
			assert.Equal(t, tt.body, n.Body)
			assert.Equal(t, tt.content, n.String())
			if tt.metaErr {
				assert.ErrorIs(t, n.MetaErr, ErrFrontMatter)
			} else {
				assert.NoError(t, n.MetaErr)
			}
		})
	}
}

func TestTitle(t *testing.T) {
	assert.Equal(t, "untitled", New("").Title())
	assert.Equal(t, "algorithms", New("/notes/algorithms.md").Title())

	n := Split("---\ntitle: Sorting\n---\n")
	n.Path = "/notes/algorithms.md"
	assert.Equal(t, "Sorting", n.Title())
}

func TestLoadMissing(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "missing.md"))
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestSaveLoad(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "note.md")

	n := New(path)
	n.Body = "```go quiz\nx\n```\n"
	require.NoError(t, Save(n))
	assert.False(t, n.ModTime.IsZero())

	loaded, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, n.Body, loaded.Body)

	changed, err := Changed(loaded)
	require.NoError(t, err)
	assert.False(t, changed)

	// No temp files are left behind.
	entries, err := os.ReadDir(filepath.Dir(path))
	require.NoError(t, err)
	assert.Len(t, entries, 1)
}

func TestSaveKeepsHeaderAndMode(t *testing.T) {
	path := filepath.Join(t.TempDir(), "note.md")
	require.NoError(t, os.WriteFile(path, []byte("---\ntitle: Keep\n---\nold\n"), 0o600))

	n, err := Load(path)
	require.NoError(t, err)
	n.Body = "new\n"
	require.NoError(t, Save(n))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "---\ntitle: Keep\n---\nnew\n", string(data))

	info, err := os.Stat(path)
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0o600), info.Mode().Perm())
}

func TestChangedDetectsExternalWrite(t *testing.T) {
	path := filepath.Join(t.TempDir(), "note.md")
	require.NoError(t, os.WriteFile(path, []byte("a\n"), 0o644))

	n, err := Load(path)
	require.NoError(t, err)
	require.NoError(t, os.WriteFile(path, []byte("b\n"), 0o644))

	changed, err := Changed(n)
	require.NoError(t, err)
	assert.True(t, changed)
}

func TestWatch(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "note.md")
	require.NoError(t, os.WriteFile(path, []byte("a\n"), 0o644))

	w, err := Watch(path)
	require.NoError(t, err)
	defer w.Close()

	// Writes to siblings are ignored.
	require.NoError(t, os.WriteFile(filepath.Join(dir, "other.md"), []byte("x"), 0o644))
	select {
	case <-w.Changes():
		t.Fatal("change reported for another file")
	case <-time.After(200 * time.Millisecond):
	}

	n, err := Load(path)
	require.NoError(t, err)
	n.Body = "b\n"
	require.NoError(t, Save(n))

	select {
	case <-w.Changes():
	case <-time.After(5 * time.Second):
		t.Fatal("no change reported for atomic save")
	}
}
