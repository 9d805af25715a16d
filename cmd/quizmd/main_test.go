package main

import (
	"bytes"
	"encoding/json"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const cliNote = "---\ntitle: CLI\n---\n" +
	"```go quiz\nfmt.Println(1)\n```\n\n" +
	":::qa\n??Q1\n?>A1\n:::\n"

func writeNote(t *testing.T) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "cli.md")
	require.NoError(t, os.WriteFile(path, []byte(cliNote), 0o644))
	return path
}

func execute(t *testing.T, stdin string, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	rootCmd.SetArgs(args)
	rootCmd.SetIn(strings.NewReader(stdin))
	rootCmd.SetOut(&out)
	rootCmd.SetErr(io.Discard)
	err := rootCmd.Execute()
	return out.String(), err
}

func TestCheckCommand(t *testing.T) {
	path := writeNote(t)

	tests := []struct {
		name    string
		answer  string
		index   string
		output  string
		wantErr bool
	}{
		{name: "correct", answer: "  fmt.Println(1)\n\n", index: "0", output: "correct\n"},
		{name: "wrong", answer: "fmt.Println(2)", index: "0", output: "wrong\n", wantErr: true},
		{name: "empty", answer: "  \n", index: "0", output: "idle\n", wantErr: true},
		{name: "not a quiz", answer: "x", index: "2", wantErr: true},
		{name: "out of range", answer: "x", index: "9", wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out, err := execute(t, tt.answer, "check", path, "--index", tt.index)
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
			assert.Equal(t, tt.output, out)
		})
	}
}

func TestCardsCommand(t *testing.T) {
	path := writeNote(t)
	out, err := execute(t, "", "cards", path, "--format", "json", "--output", "print")
	require.NoError(t, err)

	var export []noteCards
	require.NoError(t, json.Unmarshal([]byte(out), &export))
	require.Len(t, export, 1)
	assert.Equal(t, "CLI", export[0].Title)
	assert.Equal(t, "Q1", export[0].Cards[0].Question)
	assert.Equal(t, "A1", export[0].Cards[0].Answer)
}

func TestBlocksCommand(t *testing.T) {
	path := writeNote(t)
	out, err := execute(t, "", "blocks", path, "--format", "yaml", "--output", "print")
	require.NoError(t, err)
	assert.Contains(t, out, "kind: quiz-code")
	assert.Contains(t, out, "kind: flashcard-deck")
}

func TestRenderCommandHidesSolution(t *testing.T) {
	path := writeNote(t)
	out, err := execute(t, "", "render", path, "--format", "html", "--output", "print")
	require.NoError(t, err)
	assert.Contains(t, out, "<title>CLI</title>")
	assert.Contains(t, out, `<details class="quiz">`)

	out, err = execute(t, "", "render", path, "--format", "terminal", "--output", "print")
	require.NoError(t, err)
	assert.Contains(t, out, "solution hidden")
	assert.NotContains(t, out, "Println")
}
