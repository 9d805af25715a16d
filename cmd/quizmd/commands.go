package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/gubarz/quizmd/internal/config"
	"github.com/gubarz/quizmd/internal/flashcard"
	"github.com/gubarz/quizmd/internal/output"
	"github.com/gubarz/quizmd/internal/parser"
	"github.com/gubarz/quizmd/internal/quiz"
	"github.com/gubarz/quizmd/internal/render"
)

var renderCmd = &cobra.Command{
	Use:   "render [note.md]",
	Short: "Render a note to HTML or the terminal",
	Long: `Renders a note without opening the viewer.

Quiz solutions stay hidden in both formats. HTML output is a standalone,
sanitized page with the highlighter stylesheet inlined.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runRender,
}

var cardsCmd = &cobra.Command{
	Use:   "cards [path]",
	Short: "Export flashcards from a note or a directory of notes",
	Args:  cobra.MaximumNArgs(1),
	RunE:  runCards,
}

var blocksCmd = &cobra.Command{
	Use:   "blocks [note.md]",
	Short: "List the code and flashcard blocks of a note",
	Args:  cobra.MaximumNArgs(1),
	RunE:  runBlocks,
}

var checkCmd = &cobra.Command{
	Use:   "check [note.md]",
	Short: "Check an answer read from stdin against a quiz block",
	Long: `Reads an answer from stdin and compares it with the quiz block at --index.

Exits non-zero when the answer is wrong or empty.

Usage:
  quizmd check notes.md --index 3 < answer.go`,
	Args: cobra.MaximumNArgs(1),
	RunE: runCheck,
}

func init() {
	renderCmd.Flags().StringP("format", "f", "terminal", "Output format: terminal, html")
	renderCmd.Flags().IntP("width", "w", 80, "Wrap width for terminal output")

	cardsCmd.Flags().StringP("format", "f", "yaml", "Output format: yaml, json")

	blocksCmd.Flags().StringP("format", "f", "json", "Output format: json, yaml")

	checkCmd.Flags().IntP("index", "i", -1, "Block index as listed by the blocks command")
	checkCmd.MarkFlagRequired("index")
}

// loadFile parses the note named by args
func loadFile(args []string) (*parser.File, error) {
	path, err := notePath(args)
	if err != nil {
		return nil, err
	}
	return parser.NewParser().ParseFile(path)
}

// emit writes text using the configured output mode
func emit(cmd *cobra.Command, text string) error {
	mode, err := output.ParseMode(config.GetOutput())
	if err != nil {
		return err
	}
	return output.New(cmd.OutOrStdout()).Emit(text, mode)
}

// encode serializes v as yaml or json
func encode(v interface{}, format string) (string, error) {
	switch strings.ToLower(format) {
	case "yaml", "yml":
		out, err := yaml.Marshal(v)
		return string(out), err
	case "json":
		out, err := json.MarshalIndent(v, "", "  ")
		return string(out), err
	default:
		return "", fmt.Errorf("unsupported format: %s (supported: yaml, json)", format)
	}
}

func runRender(cmd *cobra.Command, args []string) error {
	if err := applyFlags(cmd); err != nil {
		return err
	}
	f, err := loadFile(args)
	if err != nil {
		return err
	}
	opts := renderOptions()
	opts.Width, _ = cmd.Flags().GetInt("width")

	format, _ := cmd.Flags().GetString("format")
	switch format {
	case "html":
		page, err := render.NewHTML(opts).Page(f)
		if err != nil {
			return err
		}
		return emit(cmd, page)
	case "terminal":
		return emit(cmd, render.NewTerminal(opts).Render(f))
	default:
		return fmt.Errorf("unsupported format: %s (supported: terminal, html)", format)
	}
}

// noteCards is the export record for one note's flashcards
type noteCards struct {
	Path  string           `json:"path" yaml:"path"`
	Title string           `json:"title" yaml:"title"`
	Cards []flashcard.Pair `json:"cards" yaml:"cards"`
}

func runCards(cmd *cobra.Command, args []string) error {
	if err := applyFlags(cmd); err != nil {
		return err
	}
	path := "."
	if len(args) > 0 {
		path = args[0]
	} else if config.GetPath() != "" {
		path = config.GetPath()
	}
	absPath, err := filepath.Abs(path)
	if err != nil {
		return fmt.Errorf("error resolving path: %w", err)
	}
	info, err := os.Stat(absPath)
	if err != nil {
		return fmt.Errorf("path error: %w", err)
	}

	p := parser.NewParser()
	var files []*parser.File
	if info.IsDir() {
		files, err = p.ParseDirectory(absPath)
	} else {
		var f *parser.File
		f, err = p.ParseFile(absPath)
		files = []*parser.File{f}
	}
	if err != nil {
		return fmt.Errorf("parse error: %w", err)
	}

	var export []noteCards
	for _, f := range files {
		g := f.Grammar(configGrammar())
		var cards []flashcard.Pair
		for _, d := range f.Doc.Decks() {
			pairs, _ := d.Pairs(g)
			cards = append(cards, pairs...)
		}
		if len(cards) == 0 {
			continue
		}
		export = append(export, noteCards{Path: f.Note.Path, Title: f.Note.Title(), Cards: cards})
	}
	if len(export) == 0 {
		return fmt.Errorf("no flashcards found in %s", absPath)
	}

	format, _ := cmd.Flags().GetString("format")
	text, err := encode(export, format)
	if err != nil {
		return err
	}
	return emit(cmd, text)
}

func runBlocks(cmd *cobra.Command, args []string) error {
	if err := applyFlags(cmd); err != nil {
		return err
	}
	f, err := loadFile(args)
	if err != nil {
		return err
	}
	for _, w := range f.Doc.Warnings {
		fmt.Fprintf(cmd.ErrOrStderr(), "Warning: %v\n", w)
	}
	format, _ := cmd.Flags().GetString("format")
	text, err := encode(parser.Describe(f.Doc, f.Grammar(configGrammar())), format)
	if err != nil {
		return err
	}
	return emit(cmd, text)
}

// errWrongAnswer makes check exit non-zero without a usage dump
var errWrongAnswer = errors.New("answer does not match")

func runCheck(cmd *cobra.Command, args []string) error {
	if err := applyFlags(cmd); err != nil {
		return err
	}
	f, err := loadFile(args)
	if err != nil {
		return err
	}
	index, _ := cmd.Flags().GetInt("index")
	if index < 0 || index >= len(f.Doc.Blocks) {
		return fmt.Errorf("no block at index %d (note has %d blocks)", index, len(f.Doc.Blocks))
	}
	code, ok := f.Doc.Blocks[index].(*parser.CodeNode)
	if !ok || !code.Code.IsQuiz() {
		return fmt.Errorf("block %d is a %s block, not a quiz", index, f.Doc.Blocks[index].Kind())
	}

	answer, err := io.ReadAll(cmd.InOrStdin())
	if err != nil {
		return fmt.Errorf("read answer: %w", err)
	}

	verdict := quiz.Evaluate(string(answer), code.Code.Source())
	fmt.Fprintln(cmd.OutOrStdout(), verdict)
	if verdict != quiz.Correct {
		return errWrongAnswer
	}
	return nil
}
