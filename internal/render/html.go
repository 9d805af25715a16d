package render

import (
	"bytes"
	"fmt"
	"html"
	"regexp"
	"strings"

	"github.com/microcosm-cc/bluemonday"
	"github.com/yuin/goldmark"
	emoji "github.com/yuin/goldmark-emoji"
	"github.com/yuin/goldmark/extension"

	"github.com/gubarz/quizmd/internal/codeblock"
	"github.com/gubarz/quizmd/internal/flashcard"
	"github.com/gubarz/quizmd/internal/parser"
)

// Options configures the renderers
type Options struct {
	HighlightStyle string            // chroma style name
	MarkdownStyle  string            // glamour style name, or "auto"
	Width          int               // Terminal word wrap; 0 means 80
	Grammar        flashcard.Grammar // Used when a note's front matter names none
}

// HTMLRenderer renders documents to sanitized HTML
type HTMLRenderer struct {
	md        goldmark.Markdown
	highlight *Highlighter
	policy    *bluemonday.Policy
	grammar   flashcard.Grammar
}

// NewHTML creates an HTML renderer
func NewHTML(opts Options) *HTMLRenderer {
	return &HTMLRenderer{
		md: goldmark.New(
			goldmark.WithExtensions(extension.GFM, emoji.Emoji),
		),
		highlight: NewHighlighter(opts.HighlightStyle),
		policy:    Policy(),
		grammar:   opts.Grammar,
	}
}

var classPattern = regexp.MustCompile(`^[\w\- ]+$`)

// Policy returns the sanitizer for rendered notes: user-generated content
// plus the block wrappers and data attributes the renderer emits
func Policy() *bluemonday.Policy {
	return bluemonday.UGCPolicy().
		AllowElements("details", "summary", "section", "span", "div").
		AllowAttrs("class").Matching(classPattern).OnElements("pre", "code", "span", "div", "section", "details", "p").
		AllowAttrs("data-language", "data-meta", "data-value").OnElements("pre", "div").
		AllowAttrs("data-count").OnElements("section")
}

// Render returns the note body as sanitized HTML
func (r *HTMLRenderer) Render(f *parser.File) (string, error) {
	g := f.Grammar(r.grammar)
	var buf bytes.Buffer
	for _, block := range f.Doc.Blocks {
		var err error
		switch b := block.(type) {
		case *parser.TextBlock:
			err = r.md.Convert([]byte(b.Source), &buf)
		case *parser.CodeNode:
			r.writeCode(&buf, b.Code)
		case *parser.DeckNode:
			r.writeDeck(&buf, b, g)
		}
		if err != nil {
			return "", fmt.Errorf("render %s block: %w", block.Kind(), err)
		}
	}
	return r.policy.Sanitize(buf.String()), nil
}

// Page wraps the rendered body in a standalone HTML document titled after
// the note, with the highlighter stylesheet
func (r *HTMLRenderer) Page(f *parser.File) (string, error) {
	body, err := r.Render(f)
	if err != nil {
		return "", err
	}

	var css bytes.Buffer
	if err := r.highlight.WriteCSS(&css); err != nil {
		return "", fmt.Errorf("write stylesheet: %w", err)
	}

	var page strings.Builder
	page.WriteString("<!DOCTYPE html>\n<html>\n<head>\n<meta charset=\"utf-8\">\n")
	fmt.Fprintf(&page, "<title>%s</title>\n", html.EscapeString(f.Note.Title()))
	page.WriteString("<style>\n")
	page.WriteString(css.String())
	page.WriteString(pageCSS)
	page.WriteString("</style>\n</head>\n<body>\n")
	page.WriteString(body)
	page.WriteString("</body>\n</html>\n")
	return page.String(), nil
}

const pageCSS = `.code-block .badge { font-size: 0.75em; opacity: 0.7; }
.quiz summary, .flashcard summary { cursor: pointer; }
.flashcard { border: 1px solid #ccc; border-radius: 6px; margin: 0.5em 0; padding: 0.5em; }
`

func (r *HTMLRenderer) writeCode(buf *bytes.Buffer, code *codeblock.Block) {
	display := code.DisplayLanguage(codeblock.SurfaceRender)
	tokens, err := r.highlight.HTML(code.Source(), code.Language())
	if err != nil {
		// Unhighlighted is still correct output.
		tokens = html.EscapeString(code.Source())
	}

	class := "code-block"
	if code.IsQuiz() {
		class = "code-block quiz"
	}
	fmt.Fprintf(buf, `<div class="%s" data-language="%s" data-meta="%s">`,
		class, html.EscapeString(display), html.EscapeString(code.Meta()))
	buf.WriteString("\n")

	if code.IsQuiz() {
		// The solution stays collapsed until the reader opens it.
		fmt.Fprintf(buf, "<details class=\"quiz\"><summary>Quiz <span class=\"badge\">%s</span></summary>\n", html.EscapeString(display))
	} else {
		fmt.Fprintf(buf, "<span class=\"badge\">%s</span>\n", html.EscapeString(display))
	}

	fmt.Fprintf(buf, `<pre class="chroma"%s><code class="language-%s">`,
		dataAttrs(code), html.EscapeString(codeblock.HighlighterLanguage(code.Language())))
	buf.WriteString(tokens)
	buf.WriteString("</code></pre>\n")

	if code.IsQuiz() {
		buf.WriteString("</details>\n")
	}
	buf.WriteString("</div>\n")
}

// dataAttrs renders the block's node attributes as data-* attributes
func dataAttrs(code *codeblock.Block) string {
	attrs := code.Attrs()
	var b strings.Builder
	for _, key := range []string{codeblock.AttrLanguage, codeblock.AttrMeta, codeblock.AttrValue} {
		fmt.Fprintf(&b, ` data-%s="%s"`, key, html.EscapeString(attrs[key]))
	}
	return b.String()
}

func (r *HTMLRenderer) writeDeck(buf *bytes.Buffer, deck *parser.DeckNode, g flashcard.Grammar) {
	pairs, count := deck.Pairs(g)
	fmt.Fprintf(buf, "<section class=\"flashcards\" data-count=\"%d\">\n", count)
	for i, card := range pairs {
		buf.WriteString("<div class=\"flashcard\"><details>\n")
		fmt.Fprintf(buf, "<summary><strong>Question %d</strong><br><span class=\"question\">%s</span></summary>\n",
			i+1, escapeMultiline(card.Question))
		fmt.Fprintf(buf, "<p><strong>Answer %d</strong></p>\n", i+1)
		fmt.Fprintf(buf, "<p class=\"answer\">%s</p>\n", escapeMultiline(card.Answer))
		buf.WriteString("</details></div>\n")
	}
	buf.WriteString("</section>\n")
}

func escapeMultiline(s string) string {
	return strings.ReplaceAll(html.EscapeString(s), "\n", "<br>")
}
