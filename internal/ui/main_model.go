package ui

import (
	"fmt"
	"os"
	"os/exec"
	"runtime"
	"strings"
	"sync"
	"time"

	"github.com/charmbracelet/bubbles/textarea"
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/gubarz/quizmd/internal/config"
	"github.com/gubarz/quizmd/internal/deck"
	"github.com/gubarz/quizmd/internal/logger"
	"github.com/gubarz/quizmd/internal/output"
	"github.com/gubarz/quizmd/internal/parser"
	"github.com/gubarz/quizmd/internal/render"
	"github.com/gubarz/quizmd/internal/store"
)

// ============================================================================
// String Builder Pool - reduces GC pressure from rendering
// ============================================================================

var builderPool = sync.Pool{
	New: func() interface{} {
		return &strings.Builder{}
	},
}

func getBuilder() *strings.Builder {
	b := builderPool.Get().(*strings.Builder)
	b.Reset()
	return b
}

func putBuilder(b *strings.Builder) {
	if b.Cap() < 64*1024 { // Don't pool huge builders
		builderPool.Put(b)
	}
}

// ============================================================================
// Messages
// ============================================================================

// saveTickMsg fires when the autosave debounce for edit seq expires
type saveTickMsg struct {
	seq int
}

// savedMsg reports a finished write
type savedMsg struct {
	snapshot *store.Note
	err      error
	took     time.Duration
}

// fileChangedMsg reports an external change to the note
type fileChangedMsg struct{}

// watchErrMsg reports a watcher failure
type watchErrMsg struct {
	err error
}

// editorClosedMsg is sent when the external editor exits
type editorClosedMsg struct {
	err error
}

// scheduleSave returns a command that fires after the debounce delay
func scheduleSave(seq int, delay time.Duration) tea.Cmd {
	return tea.Tick(delay, func(t time.Time) tea.Msg {
		return saveTickMsg{seq: seq}
	})
}

// saveNote writes a snapshot off the update loop
func saveNote(snap *store.Note) tea.Cmd {
	return func() tea.Msg {
		start := time.Now()
		err := store.Save(snap)
		return savedMsg{snapshot: snap, err: err, took: time.Since(start)}
	}
}

// waitForChange blocks until the watcher reports something
func waitForChange(w *store.Watcher) tea.Cmd {
	if w == nil {
		return nil
	}
	return func() tea.Msg {
		select {
		case <-w.Changes():
			return fileChangedMsg{}
		case err := <-w.Errors():
			return watchErrMsg{err: err}
		}
	}
}

// ============================================================================
// Main Model
// ============================================================================

// uiPhase represents which phase the TUI is in
type uiPhase int

const (
	phaseBrowse uiPhase = iota // Moving between blocks
	phaseFilter                // Fuzzy-finding a block
	phaseQuiz                  // Answering a quiz block
	phaseDeck                  // Studying a flashcard deck
	phaseEdit                  // Editing a code block or deck
)

// Options configures the TUI
type Options struct {
	Autosave      bool
	AutosaveDelay time.Duration
	Editor        string
	Render        render.Options
}

// mainModel is the Bubble Tea model for one open note
type mainModel struct {
	width    int
	height   int
	quitting bool
	phase    uiPhase

	session *Session
	opts    Options
	term    *render.TerminalRenderer
	out     *output.Writer
	log     *logger.Logger
	watcher *store.Watcher

	// Browse state
	items    []blockItem
	cursor   int
	viewport viewport.Model
	lines    map[int]int    // Block index -> first content line
	text     map[int]string // Rendered text blocks by block index

	// Filter state
	filterInput textinput.Model
	filtered    []int
	filterPos   int

	// Per-block interaction state, keyed by block index
	quizzes map[int]*quizState
	decks   map[int]*deck.State

	answer textarea.Model
	editor textarea.Model

	saveSeq     int
	saving      bool // A save command is writing a snapshot
	status      string
	statusErr   bool
	confirmQuit bool
}

// newMainModel creates a new mainModel for the session
func newMainModel(session *Session, opts Options, out *output.Writer, log *logger.Logger) mainModel {
	if log == nil {
		log = logger.Discard()
	}
	if out == nil {
		out = output.New(nil)
	}
	if opts.AutosaveDelay <= 0 {
		opts.AutosaveDelay = 800 * time.Millisecond
	}

	ti := textinput.New()
	ti.Placeholder = "Type to find a block..."
	ti.CharLimit = 256
	ti.Width = 50

	m := mainModel{
		session:     session,
		opts:        opts,
		term:        render.NewTerminal(opts.Render),
		out:         out,
		log:         log,
		viewport:    viewport.New(80, 20),
		lines:       make(map[int]int),
		text:        make(map[int]string),
		filterInput: ti,
		quizzes:     make(map[int]*quizState),
		decks:       make(map[int]*deck.State),
		answer:      newTextArea("Type the code from memory..."),
		editor:      newTextArea(""),
	}
	m.items = interactiveItems(session.Document())
	m.refresh(true)
	return m
}

func newTextArea(placeholder string) textarea.Model {
	ta := textarea.New()
	ta.Placeholder = placeholder
	ta.CharLimit = 0
	ta.MaxHeight = 0
	ta.ShowLineNumbers = false
	ta.SetWidth(72)
	ta.SetHeight(8)
	return ta
}

// Init implements tea.Model
func (m mainModel) Init() tea.Cmd {
	return waitForChange(m.watcher)
}

// Update implements tea.Model
func (m mainModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.resize(msg.Width, msg.Height)
		return m, nil

	case saveTickMsg:
		// A tick during a write is picked up again once the write lands.
		if msg.seq != m.saveSeq || m.saving || !m.session.Dirty() {
			return m, nil
		}
		m.saving = true
		return m, saveNote(m.session.Snapshot())

	case savedMsg:
		m.saving = false
		if msg.err != nil {
			m.log.SaveError(m.session.Note().Path, msg.err)
			m.setError("save failed: " + msg.err.Error())
			return m, nil
		}
		m.session.MarkSaved(msg.snapshot)
		m.log.NoteSaved(msg.snapshot.Path, len(msg.snapshot.String()), msg.took)
		m.setStatus("saved")
		if m.session.Dirty() && m.opts.Autosave {
			return m, scheduleSave(m.saveSeq, m.opts.AutosaveDelay)
		}
		return m, nil

	case fileChangedMsg:
		m.reload()
		return m, waitForChange(m.watcher)

	case editorClosedMsg:
		if msg.err != nil {
			m.setError("editor: " + msg.err.Error())
		}
		m.reload()
		return m, nil

	case watchErrMsg:
		m.log.WatchError(m.session.Note().Path, msg.err)
		return m, waitForChange(m.watcher)
	}

	// Dispatch based on phase
	switch m.phase {
	case phaseFilter:
		return m.updateFilter(msg)
	case phaseQuiz:
		return m.updateQuiz(msg)
	case phaseDeck:
		return m.updateDeck(msg)
	case phaseEdit:
		return m.updateEdit(msg)
	default:
		return m.updateBrowse(msg)
	}
}

// resize lays the widgets out for a new terminal size
func (m *mainModel) resize(width, height int) {
	widthChanged := width != m.width
	m.width = width
	m.height = height

	m.viewport.Width = width
	m.viewport.Height = maxInt(height-4, 3) // title + divider, divider + footer
	m.filterInput.Width = width - 4
	m.answer.SetWidth(maxInt(m.contentWidth()-4, 10))
	m.editor.SetWidth(maxInt(m.contentWidth()-4, 10))

	if widthChanged {
		ro := m.opts.Render
		ro.Width = m.contentWidth()
		m.term = render.NewTerminal(ro)
		m.text = make(map[int]string)
	}
	m.refresh(true)
}

// contentWidth is the width blocks are wrapped to
func (m mainModel) contentWidth() int {
	if m.width <= 0 {
		return 80
	}
	return maxInt(m.width-2, 20)
}

// reload re-reads the note after an external change
func (m *mainModel) reload() {
	before := m.session.Grammar()
	changed, err := m.session.Reload()
	if err != nil {
		m.log.WatchError(m.session.Note().Path, err)
		m.setError("reload failed: " + err.Error())
		return
	}
	if !changed {
		return
	}
	if m.session.Grammar() != before {
		m.decks = make(map[int]*deck.State)
	}
	// Block indexes now point into a different document.
	m.quizzes = make(map[int]*quizState)
	m.answer.Reset()
	m.text = make(map[int]string)
	m.items = interactiveItems(m.session.Document())
	m.cursor = clamp(m.cursor, 0, maxInt(len(m.items)-1, 0))
	if m.phase != phaseBrowse {
		// The block being worked on may be gone.
		m.answer.Blur()
		m.editor.Blur()
		m.phase = phaseBrowse
	}
	m.setStatus("reloaded from disk")
	m.refresh(false)
}

// markEdited records a document edit and schedules the debounced save
func (m *mainModel) markEdited() tea.Cmd {
	m.saveSeq++
	if item, ok := m.current(); ok {
		m.items[m.cursor] = newBlockItem(item.index, item.block)
	}
	if !m.opts.Autosave {
		return nil
	}
	return scheduleSave(m.saveSeq, m.opts.AutosaveDelay)
}

func (m *mainModel) setStatus(s string) {
	m.status = s
	m.statusErr = false
}

func (m *mainModel) setError(s string) {
	m.status = s
	m.statusErr = true
}

// current returns the selected interactive block
func (m mainModel) current() (blockItem, bool) {
	if m.cursor < 0 || m.cursor >= len(m.items) {
		return blockItem{}, false
	}
	return m.items[m.cursor], true
}

// ============================================================================
// Browse Phase
// ============================================================================

// updateBrowse handles updates while moving between blocks
func (m mainModel) updateBrowse(msg tea.Msg) (tea.Model, tea.Cmd) {
	key, ok := msg.(tea.KeyMsg)
	if !ok {
		var cmd tea.Cmd
		m.viewport, cmd = m.viewport.Update(msg)
		return m, cmd
	}

	if key.String() != "q" && key.String() != "esc" {
		m.confirmQuit = false
	}

	switch key.String() {
	case "ctrl+c":
		m.quitting = true
		return m, tea.Quit
	case "q", "esc":
		if m.session.Dirty() && !m.opts.Autosave && !m.confirmQuit {
			m.confirmQuit = true
			m.setError("unsaved edits: ctrl+s to save, q again to discard")
			return m, nil
		}
		m.quitting = true
		return m, tea.Quit
	case "tab", "down", "j":
		m.moveCursor(1)
	case "shift+tab", "up", "k":
		m.moveCursor(-1)
	case "home", "g":
		m.cursor = 0
		m.refresh(true)
	case "end", "G":
		m.cursor = maxInt(len(m.items)-1, 0)
		m.refresh(true)
	case "enter", " ":
		cmd := m.activate()
		return m, cmd
	case "e":
		cmd := m.startEdit()
		return m, cmd
	case "y":
		m.yank()
	case "/":
		m.filterInput.SetValue("")
		m.filtered = fuzzyFilter(m.items, "")
		m.filterPos = 0
		m.phase = phaseFilter
		cmd := m.filterInput.Focus()
		return m, cmd
	case "ctrl+s":
		if m.saving {
			m.setStatus("save in progress")
			return m, nil
		}
		if err := m.session.Save(); err != nil {
			m.log.SaveError(m.session.Note().Path, err)
			m.setError(err.Error())
		} else {
			m.setStatus("saved")
		}
	case "ctrl+o":
		cmd := m.openExternal()
		return m, cmd
	default:
		var cmd tea.Cmd
		m.viewport, cmd = m.viewport.Update(msg)
		return m, cmd
	}
	return m, nil
}

// moveCursor moves the cursor by delta, clamping to valid range
func (m *mainModel) moveCursor(delta int) {
	if len(m.items) == 0 {
		return
	}
	m.cursor = clamp(m.cursor+delta, 0, len(m.items)-1)
	m.setStatus("")
	m.refresh(true)
}

// activate opens the selected block's interactive surface
func (m *mainModel) activate() tea.Cmd {
	item, ok := m.current()
	if !ok {
		return nil
	}
	if code, ok := item.block.(*parser.CodeNode); ok {
		if !code.Code.IsQuiz() {
			m.setStatus("plain code block: y copies it")
			return nil
		}
		st := m.quizFor(item.index, code)
		m.answer.SetValue(st.attempt.Answer())
		m.phase = phaseQuiz
		m.refresh(true)
		return m.answer.Focus()
	}
	if d, ok := item.block.(*parser.DeckNode); ok {
		m.deckFor(item.index, d)
		m.phase = phaseDeck
		m.refresh(true)
	}
	return nil
}

// yank copies the selected block, or the current card of a deck
func (m *mainModel) yank() {
	item, ok := m.current()
	if !ok {
		return
	}
	var text string
	if code, ok := item.block.(*parser.CodeNode); ok {
		text = code.Code.Source()
	}
	if d, ok := item.block.(*parser.DeckNode); ok {
		text = d.Content
		if st, ok := m.decks[item.index]; ok {
			if card, ok := st.Current(); ok {
				text = card.Question + "\n\n" + card.Answer
			}
		}
	}
	if err := m.out.Copy(text); err != nil {
		m.setError("copy failed: " + err.Error())
		return
	}
	m.setStatus("copied to clipboard")
}

// openExternal hands the note to an external editor
func (m *mainModel) openExternal() tea.Cmd {
	if !m.session.Editable() {
		m.setError(ErrReadOnly.Error())
		return nil
	}
	if m.session.Dirty() {
		if err := m.session.Save(); err != nil {
			m.setError(err.Error())
			return nil
		}
	}
	path := m.session.Note().Path
	if m.opts.Editor != "" {
		return tea.ExecProcess(exec.Command(m.opts.Editor, path), func(err error) tea.Msg {
			return editorClosedMsg{err: err}
		})
	}
	openFileInViewer(path)
	return nil
}

// openFileInViewer opens the file with the system default application
func openFileInViewer(filePath string) {
	var cmd *exec.Cmd
	switch runtime.GOOS {
	case "darwin":
		cmd = exec.Command("open", filePath)
	case "windows":
		cmd = exec.Command("cmd", "/c", "start", "", filePath)
	default: // linux, freebsd, etc.
		cmd = exec.Command("xdg-open", filePath)
	}
	_ = cmd.Start()
}

// ============================================================================
// Filter Phase
// ============================================================================

// updateFilter handles the fuzzy block finder
func (m mainModel) updateFilter(msg tea.Msg) (tea.Model, tea.Cmd) {
	if key, ok := msg.(tea.KeyMsg); ok {
		switch key.String() {
		case "ctrl+c":
			m.quitting = true
			return m, tea.Quit
		case "esc":
			m.filterInput.Blur()
			m.phase = phaseBrowse
			return m, nil
		case "enter":
			if m.filterPos < len(m.filtered) {
				m.cursor = m.filtered[m.filterPos]
			}
			m.filterInput.Blur()
			m.phase = phaseBrowse
			m.refresh(true)
			return m, nil
		case "up", "ctrl+p":
			m.filterPos = clamp(m.filterPos-1, 0, maxInt(len(m.filtered)-1, 0))
			return m, nil
		case "down", "ctrl+n":
			m.filterPos = clamp(m.filterPos+1, 0, maxInt(len(m.filtered)-1, 0))
			return m, nil
		}
	}

	prev := m.filterInput.Value()
	var cmd tea.Cmd
	m.filterInput, cmd = m.filterInput.Update(msg)
	if m.filterInput.Value() != prev {
		m.filtered = fuzzyFilter(m.items, m.filterInput.Value())
		m.filterPos = 0
	}
	return m, cmd
}

// ============================================================================
// View
// ============================================================================

// View implements tea.Model
func (m mainModel) View() string {
	if m.quitting {
		return ""
	}
	width := maxInt(m.width, 40)

	b := getBuilder()
	defer putBuilder(b)
	b.WriteString(m.renderTitle(width))
	b.WriteString("\n")
	b.WriteString(styles.Divider.Render(strings.Repeat("─", width)))
	b.WriteString("\n")

	if m.phase == phaseFilter {
		b.WriteString(m.renderFilterList(m.viewport.Height))
	} else {
		b.WriteString(m.viewport.View())
	}
	b.WriteString("\n")
	b.WriteString(styles.Divider.Render(strings.Repeat("─", width)))
	b.WriteString("\n")
	b.WriteString(m.renderFooter())
	return b.String()
}

// renderTitle shows the note title, path and save state
func (m mainModel) renderTitle(width int) string {
	note := m.session.Note()
	title := truncateString(note.Title(), width/2)
	path := truncateString(note.Path, maxInt(width-len(title)-6, 10))
	state := ""
	switch {
	case !m.session.Editable():
		state = styles.Dim.Render(" [read-only]")
	case m.session.Dirty():
		state = styles.Cursor.Render(" ●")
	}
	return styles.Header.Render(title) + "  " + styles.Path.Render(path) + state
}

// renderFilterList renders the fuzzy finder matches and input
func (m mainModel) renderFilterList(height int) string {
	b := getBuilder()
	defer putBuilder(b)

	listHeight := maxInt(height-1, 1)
	offset := 0
	start, end := scrollWindow(m.filterPos, len(m.filtered), listHeight, &offset)
	lines := 0
	for i := start; i < end; i++ {
		item := m.items[m.filtered[i]]
		label := truncateString(item.label, maxInt(m.width-4, 20))
		if i == m.filterPos {
			b.WriteString(styles.Cursor.Render("▶ ") + styles.WithSelection(styles.Text).Render(label))
		} else {
			b.WriteString("  " + styles.Text.Render(label))
		}
		b.WriteString("\n")
		lines++
	}
	for ; lines < listHeight; lines++ {
		b.WriteString("\n")
	}
	b.WriteString(m.filterInput.View())
	return b.String()
}

// renderFooter shows status and the keys of the current phase
func (m mainModel) renderFooter() string {
	var help string
	switch m.phase {
	case phaseFilter:
		help = fmt.Sprintf("%d/%d • enter jump • esc cancel", len(m.filtered), len(m.items))
	case phaseQuiz:
		help = "ctrl+s check • esc back"
	case phaseDeck:
		help = "space flip • esc back"
		if item, ok := m.current(); ok {
			if st, ok := m.decks[item.index]; ok && st.Navigable() {
				help = "space flip • ←/→ cards • esc back"
			}
		}
	case phaseEdit:
		help = "ctrl+l language • ctrl+t quiz • esc done"
		if item, ok := m.current(); ok {
			if _, isDeck := item.block.(*parser.DeckNode); isDeck {
				help = "esc done"
			}
		}
	default:
		help = fmt.Sprintf("%d blocks • tab next • enter open • y copy • / find • q quit", len(m.items))
		if m.session.Editable() {
			help = fmt.Sprintf("%d blocks • tab next • enter open • e edit • y copy • / find • ctrl+o editor • q quit", len(m.items))
		}
	}

	if m.status == "" {
		return styles.Status.Render(help)
	}
	status := styles.Status.Render(m.status)
	if m.statusErr {
		status = styles.Error.Render(m.status)
	}
	return status + styles.Dim.Render("  •  ") + styles.Status.Render(help)
}

// ============================================================================
// Run TUI
// ============================================================================

// getTTY returns file handles for TUI input/output
// Uses /dev/tty to bypass shell pipes and command substitution
func getTTY() (in *os.File, out *os.File, cleanup func()) {
	var closers []func()

	// Check if stdout is a terminal
	// If not (e.g., piped or captured by $()), use /dev/tty
	if fileInfo, _ := os.Stdout.Stat(); (fileInfo.Mode() & os.ModeCharDevice) == 0 {
		out, err := os.OpenFile("/dev/tty", os.O_WRONLY, 0)
		if err != nil {
			out = os.Stderr // Last resort fallback
		} else {
			closers = append(closers, func() { out.Close() })
		}

		in, err := os.OpenFile("/dev/tty", os.O_RDONLY, 0)
		if err != nil {
			in = os.Stdin
		} else {
			closers = append(closers, func() { in.Close() })
		}

		// Tell lipgloss to use the TTY for color detection
		lipgloss.SetDefaultRenderer(lipgloss.NewRenderer(out))

		return in, out, func() {
			for _, c := range closers {
				c()
			}
		}
	}

	// stdout IS a terminal - use normal stdin/stdout
	return os.Stdin, os.Stdout, func() {}
}

// Run launches the Bubble Tea interface for one note. Pending edits are
// flushed on exit when autosave is on.
func Run(session *Session, opts Options, out *output.Writer, log *logger.Logger, watcher *store.Watcher) error {
	ttyIn, ttyOut, cleanup := getTTY()
	RefreshStyles() // Refresh after getTTY sets up the renderer

	m := newMainModel(session, opts, out, log)
	m.watcher = watcher

	p := tea.NewProgram(m, tea.WithAltScreen(), tea.WithOutput(ttyOut), tea.WithInput(ttyIn))
	finalModel, err := p.Run()
	cleanup()
	if err != nil {
		return err
	}

	result := finalModel.(mainModel)
	if result.session.Dirty() && result.opts.Autosave {
		return result.session.Save()
	}
	return nil
}

// OptionsFromConfig builds TUI options from the loaded configuration
func OptionsFromConfig(r render.Options) Options {
	return Options{
		Autosave:      config.GetAutosave(),
		AutosaveDelay: config.GetAutosaveDelay(),
		Editor:        config.GetEditor(),
		Render:        r,
	}
}

// ============================================================================
// Helpers
// ============================================================================

// clamp restricts v to the range [minV, maxV]
func clamp(v, minV, maxV int) int {
	if v < minV {
		return minV
	}
	if v > maxV {
		return maxV
	}
	return v
}

// maxInt returns the larger of a and b
func maxInt(a, b int) int {
	if a > b {
		return a
	}
	return b
}

// countLines counts the number of lines in a string
func countLines(s string) int {
	if s == "" {
		return 0
	}
	return strings.Count(s, "\n") + 1
}

// scrollWindow calculates the visible range for a scrollable list
func scrollWindow(cursor, total, height int, offset *int) (start, end int) {
	if cursor < *offset {
		*offset = cursor
	}
	if cursor >= *offset+height {
		*offset = cursor - height + 1
	}
	maxOffset := max(0, total-height)
	*offset = clamp(*offset, 0, maxOffset)

	start = *offset
	end = min(start+height, total)
	return
}

// truncateString truncates a string to maxLen with ellipsis
func truncateString(s string, maxLen int) string {
	if maxLen <= 3 || len(s) <= maxLen {
		return s
	}
	return s[:maxLen-3] + "..."
}
