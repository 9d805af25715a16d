package render

import (
	"bytes"
	"strings"
	"testing"

	"github.com/alecthomas/chroma/v2/styles"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gubarz/quizmd/internal/flashcard"
	"github.com/gubarz/quizmd/internal/parser"
	"github.com/gubarz/quizmd/internal/store"
)

const sample = "# Notes\n\n<script>alert(1)</script>\n\n" +
	"```go\nfmt.Println(\"hi\")\n```\n\n" +
	"```python quiz\nsecret_solution()\n```\n\n" +
	":::qa\n??What is 2+2?\n?>4\n??Capital of <France>?\n?>Paris\n:::\n"

func testOptions() Options {
	return Options{
		HighlightStyle: "dracula",
		MarkdownStyle:  "notty",
		Width:          80,
		Grammar:        flashcard.Viewer,
	}
}

// noteFile parses content as the note x.md
func noteFile(content string) *parser.File {
	note := store.Split(content)
	note.Path = "x.md"
	return parser.NewParser().ParseNote(note)
}

func TestHTMLRender(t *testing.T) {
	out, err := NewHTML(testOptions()).Render(noteFile(sample))
	require.NoError(t, err)

	tests := []struct {
		name     string
		contains string
	}{
		{name: "prose heading", contains: "<h1"},
		{name: "code wrapper", contains: `class="code-block"`},
		{name: "language attribute", contains: `data-language="go"`},
		{name: "language class", contains: `class="language-go"`},
		{name: "quiz collapsed", contains: `<details class="quiz">`},
		{name: "quiz meta", contains: `data-meta="quiz"`},
		{name: "source attribute", contains: `data-value="secret_solution()`},
		{name: "deck section", contains: `data-count="2"`},
		{name: "card label", contains: "Question 1"},
		{name: "answer label", contains: "Answer 2"},
		{name: "escaped card text", contains: "Capital of &lt;France&gt;?"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Contains(t, out, tt.contains)
		})
	}

	assert.NotContains(t, out, "<script")
	assert.NotContains(t, out, "<France>")
}

func TestHTMLPage(t *testing.T) {
	page, err := NewHTML(testOptions()).Page(noteFile("---\ntitle: Go & <Rust>\n---\n```go\nx := 1\n```\n"))
	require.NoError(t, err)

	assert.True(t, strings.HasPrefix(page, "<!DOCTYPE html>"))
	assert.Contains(t, page, "<title>Go &amp; &lt;Rust&gt;</title>")
	assert.Contains(t, page, ".chroma")
	assert.Contains(t, page, ".flashcard")
}

func TestHTMLEmptyDeck(t *testing.T) {
	out, err := NewHTML(testOptions()).Render(noteFile("```qa\n```\n"))
	require.NoError(t, err)
	assert.Contains(t, out, `data-count="0"`)
	assert.NotContains(t, out, "Question 1")
}

func TestTerminalRender(t *testing.T) {
	out := NewTerminal(testOptions()).Render(noteFile(sample))

	assert.Contains(t, out, "Notes")
	assert.Contains(t, out, "Println")
	assert.Contains(t, out, "quiz · python · solution hidden")
	assert.NotContains(t, out, "secret_solution")
	assert.Contains(t, out, "flashcards · 2")
	assert.Contains(t, out, "Question 2")
	assert.Contains(t, out, "Paris")
}

func TestRenderUsesNoteGrammar(t *testing.T) {
	f := noteFile("---\ngrammar: legacy\n---\n```qa\n?>Legacy question\n>Legacy answer\n```\n")

	out, err := NewHTML(testOptions()).Render(f)
	require.NoError(t, err)
	assert.Contains(t, out, `data-count="1"`)
	assert.Contains(t, out, `<span class="question">Legacy question</span>`)
	assert.Contains(t, out, `<p class="answer">Legacy answer</p>`)

	lines := strings.Split(NewTerminal(testOptions()).Render(f), "\n")
	question := -1
	for i, line := range lines {
		if strings.Contains(line, "Question 1") {
			question = i
		}
	}
	require.GreaterOrEqual(t, question, 0)
	require.Less(t, question+1, len(lines))
	assert.Contains(t, lines[question+1], "Legacy question")
}

func TestTerminalMarkdownEmpty(t *testing.T) {
	r := NewTerminal(testOptions())
	assert.Equal(t, "", r.Markdown("  \n"))
}

func TestTerminalBadStyleFallsBack(t *testing.T) {
	opts := testOptions()
	opts.MarkdownStyle = "no-such-style"
	r := NewTerminal(opts)
	assert.Contains(t, r.Markdown("plain *text*"), "plain")
}

func TestHighlighter(t *testing.T) {
	h := NewHighlighter("no-such-style")
	assert.Equal(t, styles.Fallback.Name, h.StyleName())

	out, err := h.HTML("x := 1", "golang")
	require.NoError(t, err)
	assert.Contains(t, out, "<span")

	out, err = h.HTML("<b>", "no-such-language")
	require.NoError(t, err)
	assert.Contains(t, out, "&lt;b&gt;")

	var css bytes.Buffer
	require.NoError(t, h.WriteCSS(&css))
	assert.Contains(t, css.String(), ".chroma")

	assert.Contains(t, h.Terminal("line1\nline2", "text"), "line1\nline2")
}
