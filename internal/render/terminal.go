package render

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/glamour"
	"github.com/charmbracelet/lipgloss"

	"github.com/gubarz/quizmd/internal/codeblock"
	"github.com/gubarz/quizmd/internal/flashcard"
	"github.com/gubarz/quizmd/internal/parser"
)

// TerminalRenderer renders documents for a terminal
type TerminalRenderer struct {
	glamour   *glamour.TermRenderer
	highlight *Highlighter
	grammar   flashcard.Grammar
	width     int

	badge lipgloss.Style
	frame lipgloss.Style
}

// NewTerminal creates a terminal renderer. A glamour setup failure is not
// fatal: text blocks are then printed as-is.
func NewTerminal(opts Options) *TerminalRenderer {
	width := opts.Width
	if width <= 0 {
		width = 80
	}

	styleOpt := glamour.WithStandardStyle(opts.MarkdownStyle)
	if opts.MarkdownStyle == "" || opts.MarkdownStyle == "auto" {
		styleOpt = glamour.WithAutoStyle()
	}
	// On error tr is nil and Markdown falls back to plain text.
	tr, _ := glamour.NewTermRenderer(styleOpt, glamour.WithWordWrap(width))

	return &TerminalRenderer{
		glamour:   tr,
		highlight: NewHighlighter(opts.HighlightStyle),
		grammar:   opts.Grammar,
		width:     width,
		badge:     lipgloss.NewStyle().Faint(true).Italic(true),
		frame:     lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).Padding(0, 1),
	}
}

// Markdown renders prose. Empty input renders as empty.
func (r *TerminalRenderer) Markdown(text string) string {
	if strings.TrimSpace(text) == "" {
		return ""
	}
	if r.glamour == nil {
		return text
	}
	rendered, err := r.glamour.Render(text)
	if err != nil {
		// Fallback to plain text if rendering fails
		return text
	}
	return strings.Trim(rendered, "\n")
}

// Code renders a highlighted listing with its language badge
func (r *TerminalRenderer) Code(code *codeblock.Block) string {
	badge := r.badge.Render(code.DisplayLanguage(codeblock.SurfaceRender))
	body := r.highlight.Terminal(strings.TrimRight(code.Source(), "\n"), code.Language())
	return badge + "\n" + r.frame.Render(body)
}

// Highlight colors source without any chrome
func (r *TerminalRenderer) Highlight(source, language string) string {
	return r.highlight.Terminal(source, language)
}

// Render renders a whole document non-interactively: quiz solutions are
// hidden and every card of a deck is listed
func (r *TerminalRenderer) Render(f *parser.File) string {
	g := f.Grammar(r.grammar)
	var parts []string
	for _, block := range f.Doc.Blocks {
		switch b := block.(type) {
		case *parser.TextBlock:
			if s := r.Markdown(b.Source); s != "" {
				parts = append(parts, s)
			}
		case *parser.CodeNode:
			if b.Code.IsQuiz() {
				parts = append(parts, r.badge.Render(fmt.Sprintf("quiz · %s · solution hidden",
					b.Code.DisplayLanguage(codeblock.SurfaceRender))))
				continue
			}
			parts = append(parts, r.Code(b.Code))
		case *parser.DeckNode:
			parts = append(parts, r.Deck(b, g))
		}
	}
	return strings.Join(parts, "\n\n") + "\n"
}

// Deck lists every card of a deck read with grammar g
func (r *TerminalRenderer) Deck(deck *parser.DeckNode, g flashcard.Grammar) string {
	pairs, count := deck.Pairs(g)
	if count == 0 {
		return r.badge.Render("flashcards · empty")
	}
	var b strings.Builder
	b.WriteString(r.badge.Render(fmt.Sprintf("flashcards · %d", count)))
	for i, card := range pairs {
		fmt.Fprintf(&b, "\nQuestion %d\n  %s\nAnswer %d\n  %s", i+1, indent(card.Question), i+1, indent(card.Answer))
	}
	return r.frame.Render(b.String())
}

func indent(s string) string {
	return strings.ReplaceAll(s, "\n", "\n  ")
}
