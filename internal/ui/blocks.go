package ui

import (
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/gubarz/quizmd/internal/codeblock"
	"github.com/gubarz/quizmd/internal/deck"
	"github.com/gubarz/quizmd/internal/parser"
	"github.com/gubarz/quizmd/internal/quiz"
)

// quizState is the attempt for one quiz block and the source it targets
type quizState struct {
	attempt *quiz.Attempt
	source  string
}

// quizFor returns the attempt for a block. A changed solution starts a
// fresh attempt.
func (m *mainModel) quizFor(index int, n *parser.CodeNode) *quizState {
	st, ok := m.quizzes[index]
	if !ok || st.source != n.Code.Source() {
		st = &quizState{attempt: quiz.NewAttempt(n.Code.Source()), source: n.Code.Source()}
		m.quizzes[index] = st
	}
	return st
}

// deckFor returns the navigation state for a deck block
func (m *mainModel) deckFor(index int, n *parser.DeckNode) *deck.State {
	st, ok := m.decks[index]
	if !ok {
		st = deck.New(n.Content, m.session.Grammar())
		m.decks[index] = st
		return st
	}
	st.Load(n.Content)
	return st
}

// ============================================================================
// Quiz Phase
// ============================================================================

// updateQuiz handles typing an answer into a quiz block
func (m mainModel) updateQuiz(msg tea.Msg) (tea.Model, tea.Cmd) {
	item, ok := m.current()
	code, isCode := item.block.(*parser.CodeNode)
	if !ok || !isCode {
		m.phase = phaseBrowse
		return m, nil
	}
	st := m.quizFor(item.index, code)

	if key, ok := msg.(tea.KeyMsg); ok {
		switch key.String() {
		case "ctrl+c":
			m.quitting = true
			return m, tea.Quit
		case "esc":
			m.answer.Blur()
			m.phase = phaseBrowse
			m.refresh(true)
			return m, nil
		case "ctrl+s":
			switch st.attempt.Check() {
			case quiz.Correct:
				m.setStatus("correct")
			case quiz.Wrong:
				m.setError("not quite, keep going")
			default:
				m.setStatus("type an answer first")
			}
			m.refresh(false)
			return m, nil
		}
	}

	var cmd tea.Cmd
	m.answer, cmd = m.answer.Update(msg)
	if m.answer.Value() != st.attempt.Answer() {
		st.attempt.Edit(m.answer.Value())
		m.setStatus("")
	}
	m.refresh(false)
	return m, cmd
}

// ============================================================================
// Deck Phase
// ============================================================================

// updateDeck handles studying a flashcard deck
func (m mainModel) updateDeck(msg tea.Msg) (tea.Model, tea.Cmd) {
	key, ok := msg.(tea.KeyMsg)
	if !ok {
		return m, nil
	}
	item, ok := m.current()
	n, isDeck := item.block.(*parser.DeckNode)
	if !ok || !isDeck {
		m.phase = phaseBrowse
		return m, nil
	}
	st := m.deckFor(item.index, n)

	switch key.String() {
	case "ctrl+c":
		m.quitting = true
		return m, tea.Quit
	case "esc", "q":
		m.phase = phaseBrowse
	case " ", "enter", "f":
		st.Flip()
	case "right", "l", "n":
		if st.Navigable() {
			st.Next()
		}
	case "left", "h", "p":
		if st.Navigable() {
			st.Previous()
		}
	case "y":
		m.yank()
	}
	m.refresh(false)
	return m, nil
}

// ============================================================================
// Edit Phase
// ============================================================================

// startEdit opens the selected block in the inline editor
func (m *mainModel) startEdit() tea.Cmd {
	if !m.session.Editable() {
		m.setError(ErrReadOnly.Error())
		return nil
	}
	item, ok := m.current()
	if !ok {
		return nil
	}
	switch b := item.block.(type) {
	case *parser.CodeNode:
		m.editor.SetValue(strings.TrimSuffix(b.Code.Source(), "\n"))
	case *parser.DeckNode:
		m.editor.SetValue(strings.TrimSuffix(b.Content, "\n"))
	default:
		return nil
	}
	m.phase = phaseEdit
	m.setStatus("")
	m.refresh(true)
	return m.editor.Focus()
}

// updateEdit handles inline edits of a code block or deck
func (m mainModel) updateEdit(msg tea.Msg) (tea.Model, tea.Cmd) {
	item, ok := m.current()
	if !ok {
		m.phase = phaseBrowse
		return m, nil
	}

	if key, ok := msg.(tea.KeyMsg); ok {
		switch key.String() {
		case "ctrl+c":
			m.quitting = true
			return m, tea.Quit
		case "esc":
			m.editor.Blur()
			m.phase = phaseBrowse
			m.refresh(true)
			return m, nil
		case "ctrl+l", "ctrl+t":
			code, isCode := item.block.(*parser.CodeNode)
			if !isCode {
				return m, nil
			}
			var err error
			if key.String() == "ctrl+l" {
				err = m.session.CycleLanguage(code)
			} else {
				err = m.session.ToggleQuiz(code)
			}
			if err != nil {
				m.setError(err.Error())
				return m, nil
			}
			m.setStatus(fmt.Sprintf("%s · %s", code.Kind(), code.Code.DisplayLanguage(codeblock.SurfaceEditor)))
			cmd := m.markEdited()
			m.refresh(false)
			return m, cmd
		}
	}

	var cmd tea.Cmd
	m.editor, cmd = m.editor.Update(msg)

	var err error
	body := m.editor.Value()
	if body != "" {
		body += "\n"
	}
	switch b := item.block.(type) {
	case *parser.CodeNode:
		if body == b.Code.Source() {
			return m, cmd
		}
		err = m.session.SetCodeSource(b, body)
	case *parser.DeckNode:
		if body == b.Content {
			return m, cmd
		}
		err = m.session.SetDeckContent(b, body)
	}
	if err != nil {
		m.setError(err.Error())
		return m, cmd
	}
	save := m.markEdited()
	m.refresh(false)
	return m, tea.Batch(cmd, save)
}

// ============================================================================
// Block Rendering
// ============================================================================

// refresh rebuilds the viewport content. With follow set the viewport
// scrolls to keep the selected block in view.
func (m *mainModel) refresh(follow bool) {
	selected := -1
	if item, ok := m.current(); ok {
		selected = item.index
	}

	b := getBuilder()
	defer putBuilder(b)

	line := 0
	for i, block := range m.session.Document().Blocks {
		var rendered string
		switch n := block.(type) {
		case *parser.TextBlock:
			cached, ok := m.text[i]
			if !ok {
				cached = m.term.Markdown(n.Source)
				m.text[i] = cached
			}
			rendered = cached
		case *parser.CodeNode:
			rendered = m.renderCode(i, n, i == selected)
		case *parser.DeckNode:
			rendered = m.renderDeck(i, n, i == selected)
		}
		if rendered == "" {
			continue
		}
		if line > 0 {
			b.WriteString("\n\n")
			line += 1
		}
		m.lines[i] = line
		b.WriteString(rendered)
		line += countLines(rendered)
	}
	if len(m.items) == 0 && line == 0 {
		b.WriteString(styles.Dim.Render("empty note"))
	}

	m.viewport.SetContent(b.String())
	if follow && selected >= 0 {
		top := m.lines[selected]
		if top < m.viewport.YOffset || top >= m.viewport.YOffset+m.viewport.Height {
			m.viewport.SetYOffset(maxInt(top-1, 0))
		}
	}
}

// renderCode draws a code block. Quiz solutions are never shown.
func (m *mainModel) renderCode(index int, n *parser.CodeNode, selected bool) string {
	lang := n.Code.DisplayLanguage(codeblock.SurfaceRender)
	width := maxInt(m.contentWidth()-2, 10)
	frame := styles.Block
	if selected {
		frame = styles.Active
	}

	if selected && m.phase == phaseEdit {
		badge := styles.Badge.Render(fmt.Sprintf("editing %s · %s", n.Kind(), n.Code.DisplayLanguage(codeblock.SurfaceEditor)))
		return badge + "\n" + styles.Active.Width(width).Render(m.editor.View())
	}

	if !n.Code.IsQuiz() {
		body := m.term.Highlight(strings.TrimRight(n.Code.Source(), "\n"), n.Code.Language())
		return styles.Badge.Render(lang) + "\n" + frame.Width(width).Render(body)
	}

	st := m.quizFor(index, n)
	verdict := st.attempt.Verdict()
	badge := styles.Badge.Render(fmt.Sprintf("quiz · %s · %s", lang, verdict))
	if verdict != quiz.Idle {
		frame = styles.ForVerdict(verdict)
	}

	var body string
	switch {
	case selected && m.phase == phaseQuiz:
		body = m.answer.View()
	case st.attempt.Answer() != "":
		body = m.term.Highlight(strings.TrimRight(st.attempt.Answer(), "\n"), n.Code.Language())
	default:
		body = styles.Dim.Render(fmt.Sprintf("%d lines hidden · enter to answer", countLines(strings.TrimRight(n.Code.Source(), "\n"))))
	}
	return badge + "\n" + frame.Width(width).Render(body)
}

// renderDeck draws the current card of a deck
func (m *mainModel) renderDeck(index int, n *parser.DeckNode, selected bool) string {
	width := maxInt(m.contentWidth()-2, 10)
	frame := styles.Block
	if selected {
		frame = styles.Active
	}

	if selected && m.phase == phaseEdit {
		return styles.Badge.Render("editing flashcards") + "\n" + styles.Active.Width(width).Render(m.editor.View())
	}

	st := m.deckFor(index, n)
	card, ok := st.Current()
	if !ok {
		return styles.Badge.Render("flashcards") + "\n" + frame.Width(width).Render(styles.Dim.Render("no cards"))
	}

	badge := styles.Badge.Render(fmt.Sprintf("flashcards · %d/%d", st.Index()+1, st.Count()))
	var body string
	if st.IsFront() {
		body = styles.Header.Render(fmt.Sprintf("Question %d", st.Index()+1)) + "\n" + m.term.Markdown(card.Question)
	} else {
		body = styles.Header.Render(fmt.Sprintf("Answer %d", st.Index()+1)) + "\n" + m.term.Markdown(card.Answer)
	}
	if selected && m.phase == phaseDeck {
		hint := "space flip"
		if st.Navigable() {
			hint = "← prev · space flip · next →"
		}
		body += "\n" + styles.Dim.Render(hint)
	}
	return badge + "\n" + frame.Width(width).Render(body)
}
