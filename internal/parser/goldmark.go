package parser

import (
	"bytes"
	"strings"

	"github.com/yuin/goldmark/ast"
	gmparser "github.com/yuin/goldmark/parser"
	"github.com/yuin/goldmark/text"
	"github.com/yuin/goldmark/util"

	"github.com/gubarz/quizmd/internal/codeblock"
)

// ============================================================================
// Parser assembly
// ============================================================================

// newMarkdownParser builds goldmark's CommonMark parser with the fenced code
// parser wrapped for span tracking and the :::qa directive added
func newMarkdownParser() gmparser.Parser {
	var blocks []util.PrioritizedValue
	for _, v := range gmparser.DefaultBlockParsers() {
		if bp, ok := v.Value.(gmparser.BlockParser); ok && bytes.IndexByte(bp.Trigger(), '`') >= 0 {
			v = util.Prioritized(&fenceSpanParser{BlockParser: bp}, v.Priority)
		}
		blocks = append(blocks, v)
	}
	blocks = append(blocks, util.Prioritized(&directiveParser{}, 750))

	return gmparser.NewParser(
		gmparser.WithBlockParsers(blocks...),
		gmparser.WithInlineParsers(gmparser.DefaultInlineParsers()...),
		gmparser.WithParagraphTransformers(gmparser.DefaultParagraphTransformers()...),
	)
}

// ============================================================================
// Source spans
// ============================================================================

type span struct {
	start, stop int
}

var spanKey = gmparser.NewContextKey()

func spansOf(pc gmparser.Context) map[ast.Node]*span {
	if m, ok := pc.Get(spanKey).(map[ast.Node]*span); ok {
		return m
	}
	m := make(map[ast.Node]*span)
	pc.Set(spanKey, m)
	return m
}

func openSpan(pc gmparser.Context, n ast.Node, seg text.Segment) {
	spansOf(pc)[n] = &span{start: seg.Start, stop: seg.Stop}
}

func extendSpan(pc gmparser.Context, n ast.Node, seg text.Segment) {
	if sp, ok := spansOf(pc)[n]; ok && seg.Stop > sp.stop {
		sp.stop = seg.Stop
	}
}

// fenceSpanParser delegates to goldmark's fenced code parser and records
// the bytes every fence covers
type fenceSpanParser struct {
	gmparser.BlockParser
}

func (p *fenceSpanParser) Open(parent ast.Node, reader text.Reader, pc gmparser.Context) (ast.Node, gmparser.State) {
	_, seg := reader.PeekLine()
	node, state := p.BlockParser.Open(parent, reader, pc)
	if node != nil {
		openSpan(pc, node, seg)
	}
	return node, state
}

func (p *fenceSpanParser) Continue(node ast.Node, reader text.Reader, pc gmparser.Context) gmparser.State {
	line, seg := reader.PeekLine()
	state := p.BlockParser.Continue(node, reader, pc)
	if line != nil {
		extendSpan(pc, node, seg)
	}
	return state
}

// ============================================================================
// :::qa container directive
// ============================================================================

// KindDirective is the node kind of a container directive
var KindDirective = ast.NewNodeKind("Directive")

// Directive is a raw container block opened by ":::name" and closed by ":::"
type Directive struct {
	ast.BaseBlock
	Name   string
	Colons int
}

// Kind implements ast.Node
func (n *Directive) Kind() ast.NodeKind {
	return KindDirective
}

// IsRaw implements ast.Node
func (n *Directive) IsRaw() bool {
	return true
}

// Dump implements ast.Node
func (n *Directive) Dump(source []byte, level int) {
	ast.DumpHelper(n, source, level, map[string]string{"Name": n.Name}, nil)
}

type directiveParser struct{}

func (p *directiveParser) Trigger() []byte {
	return []byte{':'}
}

func (p *directiveParser) Open(parent ast.Node, reader text.Reader, pc gmparser.Context) (ast.Node, gmparser.State) {
	line, seg := reader.PeekLine()
	pos := pc.BlockOffset()
	if pos < 0 || pos >= len(line) {
		return nil, gmparser.NoChildren
	}
	colons, name := parseDirectiveOpen(line[pos:])
	if colons == 0 || !strings.EqualFold(name, codeblock.DeckLanguage) {
		return nil, gmparser.NoChildren
	}
	node := &Directive{Name: strings.ToLower(name), Colons: colons}
	openSpan(pc, node, seg)
	return node, gmparser.NoChildren
}

func (p *directiveParser) Continue(node ast.Node, reader text.Reader, pc gmparser.Context) gmparser.State {
	line, seg := reader.PeekLine()
	if line == nil {
		return gmparser.Close
	}
	extendSpan(pc, node, seg)
	d := node.(*Directive)
	if isDirectiveClose(line, d.Colons) {
		reader.Advance(seg.Len() - trailingNewline(line))
		return gmparser.Close
	}
	node.Lines().Append(seg)
	reader.Advance(seg.Len() - trailingNewline(line))
	return gmparser.Continue | gmparser.NoChildren
}

func (p *directiveParser) Close(node ast.Node, reader text.Reader, pc gmparser.Context) {}

func (p *directiveParser) CanInterruptParagraph() bool {
	return true
}

func (p *directiveParser) CanAcceptIndentedLine() bool {
	return false
}

// parseDirectiveOpen matches ":::name" with an optional {attrs} suffix and
// returns the colon count and the name; colons is 0 on no match
func parseDirectiveOpen(line []byte) (int, string) {
	s := strings.TrimSpace(string(line))
	colons := 0
	for colons < len(s) && s[colons] == ':' {
		colons++
	}
	if colons < 3 {
		return 0, ""
	}
	rest := strings.TrimSpace(s[colons:])
	if i := strings.IndexByte(rest, '{'); i >= 0 {
		if !strings.HasSuffix(rest, "}") {
			return 0, ""
		}
		rest = strings.TrimSpace(rest[:i])
	}
	if rest == "" || strings.ContainsAny(rest, " \t:") {
		return 0, ""
	}
	return colons, rest
}

func isDirectiveClose(line []byte, colons int) bool {
	s := strings.TrimSpace(string(line))
	if len(line)-len(bytes.TrimLeft(line, " ")) > 3 {
		return false
	}
	return len(s) >= colons && strings.Trim(s, ":") == ""
}

func trailingNewline(line []byte) int {
	if len(line) > 0 && line[len(line)-1] == '\n' {
		return 1
	}
	return 0
}
