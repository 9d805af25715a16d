package parser

import (
	"errors"
	"fmt"
	"strings"

	"github.com/gubarz/quizmd/internal/codeblock"
	"github.com/gubarz/quizmd/internal/flashcard"
)

// ErrMalformedNode marks a block the adapter could not map and left as text
var ErrMalformedNode = codeblock.ErrMalformedNode

// BlockError reports a skipped block; the document still renders
type BlockError struct {
	Offset int    // Byte offset of the node in the note body
	Reason string // What was wrong with it
	Err    error
}

func (e *BlockError) Error() string {
	return fmt.Sprintf("block at offset %d rendered as text: %s: %v", e.Offset, e.Reason, e.Err)
}

func (e *BlockError) Unwrap() error {
	return e.Err
}

// BlockKind tags the variants of Block
type BlockKind int

const (
	KindText BlockKind = iota
	KindCode
	KindQuiz
	KindDeck
)

// String implements fmt.Stringer
func (k BlockKind) String() string {
	switch k {
	case KindCode:
		return "code"
	case KindQuiz:
		return "quiz-code"
	case KindDeck:
		return "flashcard-deck"
	default:
		return "text"
	}
}

// Block is one entry of an ingested note: TextBlock, CodeNode or DeckNode
type Block interface {
	Kind() BlockKind
	Markdown() string
}

// TextBlock is note source the adapter does not interpret
type TextBlock struct {
	Source string
}

// Kind implements Block
func (b *TextBlock) Kind() BlockKind { return KindText }

// Markdown implements Block
func (b *TextBlock) Markdown() string { return b.Source }

// CodeNode is a fenced code block, plain or quiz
type CodeNode struct {
	Code *codeblock.Block

	fence    string           // Opening fence as written, e.g. ``` or ~~~~
	raw      string           // Original markdown of the whole fence
	pristine *codeblock.Block // Snapshot taken at ingestion
}

// NewCodeNode creates a code node that has no source markdown yet
func NewCodeNode(code *codeblock.Block) *CodeNode {
	return &CodeNode{Code: code, fence: "```"}
}

// Kind implements Block; quiz mode is derived from the block's meta
func (n *CodeNode) Kind() BlockKind {
	if n.Code.IsQuiz() {
		return KindQuiz
	}
	return KindCode
}

// Markdown implements Block. Untouched nodes keep their original text.
func (n *CodeNode) Markdown() string {
	if n.raw != "" && sameBlock(n.Code, n.pristine) {
		return n.raw
	}
	return renderFence(n.fence, n.Code.Info(), n.Code.Source())
}

// Update applies edited node attributes over the current ones and rebuilds
// the block from the result
func (n *CodeNode) Update(attrs map[string]string) error {
	merged := n.Code.Attrs()
	for k, v := range attrs {
		merged[k] = v
	}
	code, err := codeblock.FromAttrs(merged)
	if err != nil {
		return err
	}
	n.Code = code
	return nil
}

// Modified reports whether the node changed since ingestion
func (n *CodeNode) Modified() bool {
	return n.raw == "" || !sameBlock(n.Code, n.pristine)
}

// DeckStyle records how a deck was written in the note
type DeckStyle int

const (
	DeckFence     DeckStyle = iota // ```qa fence
	DeckDirective                  // :::qa container directive
)

// DeckNode is a flashcard deck container
type DeckNode struct {
	Style   DeckStyle
	Content string
	Meta    string

	fence    string
	raw      string
	original string
}

// Kind implements Block
func (n *DeckNode) Kind() BlockKind { return KindDeck }

// Markdown implements Block
func (n *DeckNode) Markdown() string {
	if n.raw != "" && n.Content == n.original {
		return n.raw
	}
	if n.Style == DeckDirective {
		colons := n.fence
		if colons == "" {
			colons = ":::"
		}
		return colons + codeblock.DeckLanguage + "\n" + withNewline(n.Content) + colons + "\n"
	}
	info := codeblock.DeckLanguage
	if n.Meta != "" {
		info += " " + n.Meta
	}
	return renderFence(n.fence, info, n.Content)
}

// Pairs extracts the deck's cards with the given grammar
func (n *DeckNode) Pairs(g flashcard.Grammar) ([]flashcard.Pair, int) {
	return flashcard.Extract(n.Content, g)
}

// Document is an ingested note body
type Document struct {
	Revision string  // Changes on every ingestion
	Blocks   []Block // In source order
	Warnings []error // One *BlockError per skipped node
}

// Markdown serializes the whole document back into note source
func (d *Document) Markdown() string {
	var b strings.Builder
	for _, block := range d.Blocks {
		b.WriteString(block.Markdown())
	}
	return b.String()
}

// CodeNodes returns the code nodes in source order
func (d *Document) CodeNodes() []*CodeNode {
	var nodes []*CodeNode
	for _, block := range d.Blocks {
		if n, ok := block.(*CodeNode); ok {
			nodes = append(nodes, n)
		}
	}
	return nodes
}

// Decks returns the deck nodes in source order
func (d *Document) Decks() []*DeckNode {
	var nodes []*DeckNode
	for _, block := range d.Blocks {
		if n, ok := block.(*DeckNode); ok {
			nodes = append(nodes, n)
		}
	}
	return nodes
}

// Skipped reports whether any node fell back to plain text
func (d *Document) Skipped() bool {
	for _, w := range d.Warnings {
		if errors.Is(w, ErrMalformedNode) {
			return true
		}
	}
	return false
}

func sameBlock(a, b *codeblock.Block) bool {
	if a == nil || b == nil {
		return false
	}
	return a.Language() == b.Language() && a.Meta() == b.Meta() && a.Source() == b.Source()
}

// renderFence writes a fenced block, lengthening the fence when the body
// contains a line that would close it early
func renderFence(fence, info, body string) string {
	if fence == "" {
		fence = "```"
	}
	char := fence[0]
	length := len(fence)
	for _, line := range strings.Split(body, "\n") {
		trimmed := strings.TrimLeft(line, " ")
		if len(line)-len(trimmed) > 3 {
			continue
		}
		run := 0
		for run < len(trimmed) && trimmed[run] == char {
			run++
		}
		if run >= length {
			length = run + 1
		}
	}
	fence = strings.Repeat(string(char), length)

	var b strings.Builder
	b.WriteString(fence)
	b.WriteString(info)
	b.WriteString("\n")
	b.WriteString(withNewline(body))
	b.WriteString(fence)
	b.WriteString("\n")
	return b.String()
}

func withNewline(s string) string {
	if s == "" || strings.HasSuffix(s, "\n") {
		return s
	}
	return s + "\n"
}
