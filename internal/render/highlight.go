package render

import (
	"bytes"
	"io"
	"strings"

	"github.com/alecthomas/chroma/v2"
	chromahtml "github.com/alecthomas/chroma/v2/formatters/html"
	"github.com/alecthomas/chroma/v2/lexers"
	"github.com/alecthomas/chroma/v2/styles"
	"github.com/charmbracelet/lipgloss"

	"github.com/gubarz/quizmd/internal/codeblock"
)

// Highlighter colors code with a chroma style
type Highlighter struct {
	style *chroma.Style
	html  *chromahtml.Formatter
}

// NewHighlighter creates a highlighter for the named chroma style
func NewHighlighter(styleName string) *Highlighter {
	style := styles.Get(styleName)
	if style == nil {
		style = styles.Fallback
	}
	return &Highlighter{
		style: style,
		html:  chromahtml.New(chromahtml.WithClasses(true), chromahtml.PreventSurroundingPre(true)),
	}
}

// StyleName returns the chroma style in use
func (h *Highlighter) StyleName() string {
	return h.style.Name
}

// lexerFor maps a block language to a chroma lexer; unknown languages get
// the plain-text lexer
func lexerFor(language string) chroma.Lexer {
	lexer := lexers.Get(codeblock.HighlighterLanguage(language))
	if lexer == nil {
		lexer = lexers.Fallback
	}
	return chroma.Coalesce(lexer)
}

// HTML returns the source as classed <span> tokens, without the <pre>
func (h *Highlighter) HTML(source, language string) (string, error) {
	iterator, err := lexerFor(language).Tokenise(nil, source)
	if err != nil {
		return "", err
	}
	var buf bytes.Buffer
	if err := h.html.Format(&buf, h.style, iterator); err != nil {
		return "", err
	}
	return buf.String(), nil
}

// WriteCSS writes the stylesheet matching the classes HTML emits
func (h *Highlighter) WriteCSS(w io.Writer) error {
	return h.html.WriteCSS(w, h.style)
}

// Terminal returns the source colored for a terminal. Tokenizer failures
// fall back to the plain source.
func (h *Highlighter) Terminal(source, language string) string {
	iterator, err := lexerFor(language).Tokenise(nil, source)
	if err != nil {
		return source
	}

	var result strings.Builder
	for _, token := range iterator.Tokens() {
		result.WriteString(h.formatToken(token.Value, h.style.Get(token.Type)))
	}
	return result.String()
}

// formatToken converts a chroma style entry to lipgloss. Newlines are
// written bare so styles do not pad across line breaks.
func (h *Highlighter) formatToken(value string, entry chroma.StyleEntry) string {
	style := lipgloss.NewStyle()
	if entry.Colour.IsSet() {
		style = style.Foreground(lipgloss.Color(entry.Colour.String()))
	}
	if entry.Bold == chroma.Yes {
		style = style.Bold(true)
	}
	if entry.Italic == chroma.Yes {
		style = style.Italic(true)
	}

	parts := strings.Split(value, "\n")
	for i, part := range parts {
		if part != "" {
			parts[i] = style.Render(part)
		}
	}
	return strings.Join(parts, "\n")
}
