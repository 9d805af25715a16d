package ui

import (
	"github.com/charmbracelet/lipgloss"

	"github.com/gubarz/quizmd/internal/config"
	"github.com/gubarz/quizmd/internal/quiz"
)

// StyleManager encapsulates all TUI styles and provides methods for style operations
type StyleManager struct {
	// Document styles
	Header lipgloss.Style
	Text   lipgloss.Style
	Code   lipgloss.Style
	Path   lipgloss.Style
	Badge  lipgloss.Style
	Cursor lipgloss.Style
	Dim    lipgloss.Style

	// Interactive block frames
	Block    lipgloss.Style
	Active   lipgloss.Style
	Idle     lipgloss.Style
	Correct  lipgloss.Style
	Wrong    lipgloss.Style
	Selected lipgloss.Style

	// Chrome styles
	Border  lipgloss.Style
	Divider lipgloss.Style
	Status  lipgloss.Style
	Error   lipgloss.Style

	// Colors for direct access
	SelectedBg lipgloss.Color
}

// DefaultStyles returns a StyleManager with default styles
func DefaultStyles() *StyleManager {
	frame := lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).Padding(0, 1)
	return &StyleManager{
		Header:     lipgloss.NewStyle().Bold(true),
		Text:       lipgloss.NewStyle(),
		Code:       lipgloss.NewStyle(),
		Path:       lipgloss.NewStyle(),
		Badge:      lipgloss.NewStyle().Italic(true).Foreground(lipgloss.Color("241")),
		Cursor:     lipgloss.NewStyle().Foreground(lipgloss.Color("212")),
		Dim:        lipgloss.NewStyle().Foreground(lipgloss.Color("241")),
		Block:      frame.BorderForeground(lipgloss.Color("240")),
		Active:     frame.BorderForeground(lipgloss.Color("212")),
		Idle:       frame.BorderForeground(lipgloss.Color("240")),
		Correct:    frame.BorderForeground(lipgloss.Color("42")),
		Wrong:      frame.BorderForeground(lipgloss.Color("196")),
		Selected:   lipgloss.NewStyle().Background(lipgloss.Color("236")),
		Border:     lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).BorderForeground(lipgloss.Color("240")),
		Divider:    lipgloss.NewStyle().Foreground(lipgloss.Color("240")),
		Status:     lipgloss.NewStyle().Foreground(lipgloss.Color("241")),
		Error:      lipgloss.NewStyle().Foreground(lipgloss.Color("196")),
		SelectedBg: lipgloss.Color("236"),
	}
}

// LoadFromConfig updates styles based on configuration
func (s *StyleManager) LoadFromConfig() {
	headerColor := parseANSIColor(config.GetColorHeader())
	textColor := parseANSIColor(config.GetColorText())
	codeColor := parseANSIColor(config.GetColorCode())
	pathColor := parseANSIColor(config.GetColorPath())
	borderColor := lipgloss.Color(config.GetColorBorder())
	cursorColor := lipgloss.Color(config.GetColorCursor())
	selectedBg := lipgloss.Color(config.GetColorSelected())
	dimColor := lipgloss.Color(config.GetColorDim())
	correctColor := parseANSIColor(config.GetColorCorrect())
	wrongColor := parseANSIColor(config.GetColorWrong())

	s.Header = lipgloss.NewStyle().Bold(true).Foreground(headerColor)
	s.Text = lipgloss.NewStyle().Foreground(textColor)
	s.Code = lipgloss.NewStyle().Foreground(codeColor)
	s.Path = lipgloss.NewStyle().Foreground(pathColor)
	s.Badge = lipgloss.NewStyle().Italic(true).Foreground(dimColor)
	s.Cursor = lipgloss.NewStyle().Foreground(cursorColor)
	s.Dim = lipgloss.NewStyle().Foreground(dimColor)

	frame := lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).Padding(0, 1)
	s.Block = frame.BorderForeground(borderColor)
	s.Active = frame.BorderForeground(cursorColor)
	s.Idle = frame.BorderForeground(borderColor)
	s.Correct = frame.BorderForeground(correctColor)
	s.Wrong = frame.BorderForeground(wrongColor)
	s.Selected = lipgloss.NewStyle().Background(selectedBg)

	s.Border = lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).BorderForeground(borderColor)
	s.Divider = lipgloss.NewStyle().Foreground(borderColor)
	s.Status = lipgloss.NewStyle().Foreground(dimColor)
	s.Error = lipgloss.NewStyle().Foreground(wrongColor)
	s.SelectedBg = selectedBg
}

// ForVerdict returns the answer frame for a quiz verdict
func (s *StyleManager) ForVerdict(v quiz.Verdict) lipgloss.Style {
	switch v {
	case quiz.Correct:
		return s.Correct
	case quiz.Wrong:
		return s.Wrong
	default:
		return s.Idle
	}
}

// WithSelection returns a copy of the given style with the selected background applied
func (s *StyleManager) WithSelection(style lipgloss.Style) lipgloss.Style {
	return style.Background(s.SelectedBg)
}

// parseANSIColor converts ANSI color codes to lipgloss colors
func parseANSIColor(code string) lipgloss.Color {
	ansiToLipgloss := map[string]string{
		"30": "0", "31": "1", "32": "2", "33": "3",
		"34": "4", "35": "5", "36": "6", "37": "7",
		"90": "8", "91": "9", "92": "10", "93": "11",
		"94": "12", "95": "13", "96": "14", "97": "15",
	}
	if mapped, ok := ansiToLipgloss[code]; ok {
		return lipgloss.Color(mapped)
	}
	return lipgloss.Color(code)
}

// Global style manager instance
var styles = DefaultStyles()

// RefreshStyles updates the global styles from config
func RefreshStyles() {
	styles.LoadFromConfig()
}
