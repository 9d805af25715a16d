package output

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/atotto/clipboard"
)

// ============================================================================
// Clipboard Interface
// ============================================================================

// Clipboard defines the interface for clipboard operations
type Clipboard interface {
	Copy(text string) error
}

// systemClipboard implements Clipboard with the platform clipboard tools
type systemClipboard struct{}

// Copy copies text to the system clipboard
func (c *systemClipboard) Copy(text string) error {
	if clipboard.Unsupported {
		return ErrNoClipboard
	}
	return clipboard.WriteAll(text)
}

// ErrNoClipboard is returned when no clipboard tool is available
var ErrNoClipboard = fmt.Errorf("no clipboard tool found (install wl-copy, xclip, xsel or pbcopy)")

// ============================================================================
// Output Handling
// ============================================================================

// Mode represents how a result leaves the program
type Mode string

const (
	ModePrint Mode = "print"
	ModeCopy  Mode = "copy"
)

// ParseMode validates a mode name; empty means print
func ParseMode(s string) (Mode, error) {
	switch Mode(strings.ToLower(strings.TrimSpace(s))) {
	case "", ModePrint:
		return ModePrint, nil
	case ModeCopy:
		return ModeCopy, nil
	default:
		return "", fmt.Errorf("unknown output mode %q (supported: print, copy)", s)
	}
}

// Writer sends results to stdout or the clipboard
type Writer struct {
	out       io.Writer
	clipboard Clipboard
}

// New creates a writer printing to out
func New(out io.Writer) *Writer {
	if out == nil {
		out = os.Stdout
	}
	return &Writer{
		out:       out,
		clipboard: &systemClipboard{},
	}
}

// WithClipboard sets a custom clipboard implementation (useful for testing)
func (w *Writer) WithClipboard(c Clipboard) *Writer {
	w.clipboard = c
	return w
}

// Copy puts text on the clipboard
func (w *Writer) Copy(text string) error {
	return w.clipboard.Copy(text)
}

// Emit handles text with an explicit mode
func (w *Writer) Emit(text string, mode Mode) error {
	switch mode {
	case ModeCopy:
		return w.clipboard.Copy(text)
	default: // print
		_, err := io.WriteString(w.out, text)
		if err == nil && !strings.HasSuffix(text, "\n") {
			_, err = io.WriteString(w.out, "\n")
		}
		return err
	}
}
