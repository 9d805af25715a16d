package ui

import (
	"fmt"
	"strings"

	"github.com/sahilm/fuzzy"

	"github.com/gubarz/quizmd/internal/codeblock"
	"github.com/gubarz/quizmd/internal/parser"
)

// ============================================================================
// Block Item
// ============================================================================

// blockItem is an interactive block of the document with display metadata
type blockItem struct {
	index int // Position in Document.Blocks
	block parser.Block
	label string
}

// newBlockItem builds the label used for listing and fuzzy search
func newBlockItem(index int, block parser.Block) blockItem {
	var label string
	switch b := block.(type) {
	case *parser.CodeNode:
		label = fmt.Sprintf("%s %s %s", b.Kind(), b.Code.DisplayLanguage(codeblock.SurfaceRender), firstLine(strings.TrimSpace(b.Code.Source())))
	case *parser.DeckNode:
		label = fmt.Sprintf("%s %s", b.Kind(), firstLine(strings.TrimSpace(b.Content)))
	default:
		label = block.Kind().String()
	}
	return blockItem{index: index, block: block, label: label}
}

// interactiveItems lists the code and deck blocks of a document
func interactiveItems(doc *parser.Document) []blockItem {
	var items []blockItem
	for i, block := range doc.Blocks {
		if block.Kind() == parser.KindText {
			continue
		}
		items = append(items, newBlockItem(i, block))
	}
	return items
}

// itemSource adapts blockItems to fuzzy.Source
type itemSource []blockItem

func (s itemSource) String(i int) string { return s[i].label }

func (s itemSource) Len() int { return len(s) }

// fuzzyFilter returns the item positions matching query, best match first.
// An empty query matches everything in document order.
func fuzzyFilter(items []blockItem, query string) []int {
	query = strings.TrimSpace(query)
	if query == "" {
		all := make([]int, len(items))
		for i := range items {
			all[i] = i
		}
		return all
	}
	matches := fuzzy.FindFrom(query, itemSource(items))
	out := make([]int, len(matches))
	for i, m := range matches {
		out[i] = m.Index
	}
	return out
}

// firstLine returns the first line of a string
func firstLine(s string) string {
	if idx := strings.IndexByte(s, '\n'); idx >= 0 {
		return s[:idx]
	}
	return s
}
