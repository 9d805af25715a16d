package parser

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"unicode/utf8"

	"github.com/google/uuid"
	"github.com/yuin/goldmark/ast"
	gmparser "github.com/yuin/goldmark/parser"
	"github.com/yuin/goldmark/text"

	"github.com/gubarz/quizmd/internal/codeblock"
	"github.com/gubarz/quizmd/internal/flashcard"
	"github.com/gubarz/quizmd/internal/store"
)

// File is one parsed note on disk
type File struct {
	Note *store.Note
	Doc  *Document
}

// Parser turns note bodies into documents of typed blocks
type Parser struct {
	md gmparser.Parser
}

// NewParser creates a new parser
func NewParser() *Parser {
	return &Parser{md: newMarkdownParser()}
}

// ParseDirectory recursively parses all markdown files
func (p *Parser) ParseDirectory(dir string) ([]*File, error) {
	var files []*File
	err := filepath.Walk(dir, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return err
		}
		if info.IsDir() {
			return nil
		}
		if strings.HasSuffix(strings.ToLower(path), ".md") {
			f, err := p.ParseFile(path)
			if err != nil {
				return err
			}
			files = append(files, f)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return files, nil
}

// ParseFile loads and parses a single markdown file
func (p *Parser) ParseFile(path string) (*File, error) {
	note, err := store.Load(path)
	if err != nil {
		return nil, err
	}
	return p.ParseNote(note), nil
}

// ParseNote parses an already loaded note
func (p *Parser) ParseNote(note *store.Note) *File {
	return &File{Note: note, Doc: p.Parse(note.Body)}
}

// Grammar returns the flashcard grammar for the file's decks
func (f *File) Grammar(fallback flashcard.Grammar) flashcard.Grammar {
	return GrammarFor(f.Note, fallback)
}

// Parse ingests a note body. It never fails: nodes that cannot be mapped
// stay in the surrounding text and are reported in Document.Warnings.
func (p *Parser) Parse(body string) *Document {
	source := []byte(body)
	pc := gmparser.NewContext()
	root := p.md.Parse(text.NewReader(source), gmparser.WithContext(pc))
	spans := spansOf(pc)

	doc := &Document{Revision: uuid.NewString()}
	cursor := 0
	for n := root.FirstChild(); n != nil; n = n.NextSibling() {
		if n.Kind() != ast.KindFencedCodeBlock && n.Kind() != KindDirective {
			continue
		}

		sp, ok := spans[n]
		if !ok {
			doc.Warnings = append(doc.Warnings, &BlockError{Offset: cursor, Reason: "no source position", Err: ErrMalformedNode})
			continue
		}
		start, stop := snapToLines(source, sp.start, sp.stop)
		if start < cursor {
			doc.Warnings = append(doc.Warnings, &BlockError{Offset: start, Reason: "overlaps previous block", Err: ErrMalformedNode})
			continue
		}

		raw := string(source[start:stop])
		var block Block
		var err error
		switch node := n.(type) {
		case *ast.FencedCodeBlock:
			block, err = fencedBlock(node, source, raw)
		case *Directive:
			block = directiveBlock(node, source, raw)
		}
		if err != nil {
			doc.Warnings = append(doc.Warnings, &BlockError{Offset: start, Reason: err.Error(), Err: ErrMalformedNode})
			continue
		}

		if start > cursor {
			doc.Blocks = append(doc.Blocks, &TextBlock{Source: string(source[cursor:start])})
		}
		doc.Blocks = append(doc.Blocks, block)
		cursor = stop
	}
	if cursor < len(source) {
		doc.Blocks = append(doc.Blocks, &TextBlock{Source: string(source[cursor:])})
	}
	return doc
}

func fencedBlock(node *ast.FencedCodeBlock, source []byte, raw string) (Block, error) {
	var info string
	if node.Info != nil {
		info = string(node.Info.Segment.Value(source))
	}
	if !utf8.ValidString(info) {
		return nil, fmt.Errorf("info string is not valid UTF-8")
	}
	body := linesOf(node, source)
	fence := openingFence(raw)

	code := codeblock.FromFence(info, body)
	if code.IsDeck() {
		return &DeckNode{
			Style:    DeckFence,
			Content:  body,
			Meta:     code.Meta(),
			fence:    fence,
			raw:      raw,
			original: body,
		}, nil
	}

	return &CodeNode{
		Code:     code,
		fence:    fence,
		raw:      raw,
		pristine: code.Clone(),
	}, nil
}

func directiveBlock(node *Directive, source []byte, raw string) Block {
	body := linesOf(node, source)
	return &DeckNode{
		Style:    DeckDirective,
		Content:  body,
		fence:    strings.Repeat(":", node.Colons),
		raw:      raw,
		original: body,
	}
}

func linesOf(n ast.Node, source []byte) string {
	var b bytes.Buffer
	lines := n.Lines()
	for i := 0; i < lines.Len(); i++ {
		seg := lines.At(i)
		b.Write(seg.Value(source))
	}
	return b.String()
}

// openingFence returns the run of fence characters on the first line
func openingFence(raw string) string {
	line := strings.TrimLeft(raw, " ")
	if line == "" || (line[0] != '`' && line[0] != '~') {
		return "```"
	}
	i := 0
	for i < len(line) && line[i] == line[0] {
		i++
	}
	return line[:i]
}

// snapToLines widens a byte span to whole lines including the final newline
func snapToLines(source []byte, start, stop int) (int, int) {
	if start > len(source) {
		start = len(source)
	}
	if stop > len(source) {
		stop = len(source)
	}
	start = bytes.LastIndexByte(source[:start], '\n') + 1
	if stop > 0 && source[stop-1] != '\n' {
		if i := bytes.IndexByte(source[stop:], '\n'); i >= 0 {
			stop += i + 1
		} else {
			stop = len(source)
		}
	}
	if stop < start {
		stop = start
	}
	return start, stop
}

// GrammarFor returns the flashcard grammar a note asks for in its front
// matter, or fallback when it names none or an unknown one
func GrammarFor(note *store.Note, fallback flashcard.Grammar) flashcard.Grammar {
	if note == nil || note.Meta.Grammar == "" {
		return fallback
	}
	if g, ok := flashcard.GrammarByName(note.Meta.Grammar); ok {
		return g
	}
	return fallback
}
