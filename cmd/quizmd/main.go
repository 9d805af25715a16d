package main

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/gubarz/quizmd/internal/config"
	"github.com/gubarz/quizmd/internal/flashcard"
	"github.com/gubarz/quizmd/internal/logger"
	"github.com/gubarz/quizmd/internal/output"
	"github.com/gubarz/quizmd/internal/parser"
	"github.com/gubarz/quizmd/internal/render"
	"github.com/gubarz/quizmd/internal/store"
	"github.com/gubarz/quizmd/internal/ui"
)

var version = "0.1.0"

var rootCmd = &cobra.Command{
	Use:   "quizmd [note.md]",
	Short: "Markdown notes with code quizzes and flashcards",
	Long: `Open a Markdown note as an interactive study sheet.

Code blocks tagged "quiz" hide their solution until you type it back.
Blocks in the "qa" language, or :::qa directives, become flashcard decks.
Edits made in the viewer are written back to the Markdown file.`,
	Args:         cobra.MaximumNArgs(1),
	SilenceUsage: true,
	RunE:         runNote,
}

func init() {
	cobra.OnInitialize(initConfig)

	rootCmd.AddCommand(renderCmd, cardsCmd, blocksCmd, checkCmd)

	rootCmd.PersistentFlags().Bool("readonly", false, "Open notes without allowing edits")
	rootCmd.PersistentFlags().StringP("grammar", "g", "", "Flashcard grammar: viewer, legacy")
	rootCmd.PersistentFlags().String("log-level", "", "Log level: debug, info, warn, error")
	rootCmd.PersistentFlags().StringP("output", "o", "", "Output mode: print, copy")

	viper.BindPFlag("output", rootCmd.PersistentFlags().Lookup("output"))
}

func initConfig() {
	if err := config.Init(); err != nil {
		fmt.Fprintf(os.Stderr, "Error loading config: %v\n", err)
	}
}

// applyFlags copies persistent flags over the loaded config
func applyFlags(cmd *cobra.Command) error {
	if ro, _ := cmd.Flags().GetBool("readonly"); ro {
		config.SetEditable(false)
	}
	if g, _ := cmd.Flags().GetString("grammar"); g != "" {
		if _, ok := flashcard.GrammarByName(g); !ok {
			return fmt.Errorf("unknown grammar %q (supported: viewer, legacy)", g)
		}
		config.SetGrammar(g)
	}
	if l, _ := cmd.Flags().GetString("log-level"); l != "" {
		config.SetLogLevel(l)
	}
	if o, _ := cmd.Flags().GetString("output"); o != "" {
		config.SetOutput(o)
	}
	return nil
}

// configGrammar returns the configured grammar, falling back to viewer
func configGrammar() flashcard.Grammar {
	g, _ := flashcard.GrammarByName(config.GetGrammar())
	return g
}

// renderOptions collects the render settings from config
func renderOptions() render.Options {
	return render.Options{
		HighlightStyle: config.GetHighlightStyle(),
		MarkdownStyle:  config.GetMarkdownStyle(),
		Grammar:        configGrammar(),
	}
}

// notePath resolves the note argument, falling back to the configured path
func notePath(args []string) (string, error) {
	path := config.GetPath()
	if len(args) > 0 {
		path = args[0]
	}
	if path == "" {
		return "", errors.New("no note given: pass a path or set path in the config file")
	}
	return filepath.Abs(path)
}

func runNote(cmd *cobra.Command, args []string) error {
	if err := applyFlags(cmd); err != nil {
		return err
	}
	path, err := notePath(args)
	if err != nil {
		return err
	}

	log, closeLog, err := logger.NewFileLogger(config.GetLogFile(), logger.ParseLevel(config.GetLogLevel()))
	if err != nil {
		fmt.Fprintf(os.Stderr, "Warning: logging disabled: %v\n", err)
		log, closeLog = logger.Discard(), func() {}
	}
	defer closeLog()
	log.ConfigLoaded(config.ConfigFile(), config.GetEditable(), config.GetGrammar())

	note, err := store.Load(path)
	if errors.Is(err, store.ErrNotFound) && config.GetEditable() {
		// Start a new note; the first save creates the file.
		note = store.New(path)
	} else if err != nil {
		return err
	}

	session := ui.NewSession(note, parser.NewParser(), ui.SessionOptions{
		Editable:     config.GetEditable(),
		PreserveMeta: config.GetPreserveMeta(),
		Grammar:      configGrammar(),
		Logger:       log,
	})

	var watcher *store.Watcher
	if config.GetWatch() {
		watcher, err = store.Watch(path)
		if err != nil {
			log.WatchError(path, err)
		} else {
			defer watcher.Close()
		}
	}

	return ui.Run(session, ui.OptionsFromConfig(renderOptions()), output.New(os.Stdout), log, watcher)
}

func main() {
	rootCmd.Version = version
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
