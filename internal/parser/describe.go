package parser

import (
	"github.com/gubarz/quizmd/internal/codeblock"
	"github.com/gubarz/quizmd/internal/flashcard"
)

// Descriptor is the serializable view of one non-text block
type Descriptor struct {
	Index    int              `json:"index" yaml:"index"`
	Kind     string           `json:"kind" yaml:"kind"`
	Language string           `json:"language,omitempty" yaml:"language,omitempty"`
	Display  string           `json:"display_language,omitempty" yaml:"display_language,omitempty"`
	Meta     string           `json:"meta,omitempty" yaml:"meta,omitempty"`
	Source   string           `json:"source,omitempty" yaml:"source,omitempty"`
	Style    string           `json:"style,omitempty" yaml:"style,omitempty"`
	Count    int              `json:"count,omitempty" yaml:"count,omitempty"`
	Cards    []flashcard.Pair `json:"cards,omitempty" yaml:"cards,omitempty"`
}

// Describe lists the code and deck blocks of a document. Index is the
// block's position in Document.Blocks.
func Describe(doc *Document, g flashcard.Grammar) []Descriptor {
	out := make([]Descriptor, 0)
	for i, block := range doc.Blocks {
		switch n := block.(type) {
		case *CodeNode:
			out = append(out, Descriptor{
				Index:    i,
				Kind:     n.Kind().String(),
				Language: n.Code.Language(),
				Display:  n.Code.DisplayLanguage(codeblock.SurfaceRender),
				Meta:     n.Code.Meta(),
				Source:   n.Code.Source(),
			})
		case *DeckNode:
			pairs, count := n.Pairs(g)
			style := "fence"
			if n.Style == DeckDirective {
				style = "directive"
			}
			out = append(out, Descriptor{
				Index: i,
				Kind:  n.Kind().String(),
				Style: style,
				Count: count,
				Cards: pairs,
			})
		}
	}
	return out
}
