package tui

import (
	"errors"

	"github.com/atotto/clipboard"
	tea "github.com/charmbracelet/bubbletea"
)

// PasteMsg carries clipboard read results to the TUI model.
type PasteMsg struct {
	Text string
	Err  error
}

// ClipboardWriteMsg carries clipboard write results to the TUI model.
type ClipboardWriteMsg struct {
	Err error
}

// Clipboard is the system clipboard port. Tests swap it for a fake.
type Clipboard interface {
	ReadAll() (string, error)
	WriteAll(text string) error
}

type systemClipboard struct{}

func (systemClipboard) ReadAll() (string, error) {
	if clipboard.Unsupported {
		return "", errClipboardUnsupported
	}
	return clipboard.ReadAll()
}

func (systemClipboard) WriteAll(text string) error {
	if clipboard.Unsupported {
		return errClipboardUnsupported
	}
	return clipboard.WriteAll(text)
}

var errClipboardUnsupported = errors.New("clipboard not available")

// SystemClipboard uses xclip/xsel/wl-clipboard, pbcopy or the Windows API.
var SystemClipboard Clipboard = systemClipboard{}

// ReadClipboardCmd returns a Bubble Tea Cmd that reads the clipboard and
// delivers the contents as a PasteMsg.
func ReadClipboardCmd(cb Clipboard) tea.Cmd {
	return func() tea.Msg {
		text, err := cb.ReadAll()
		return PasteMsg{Text: text, Err: err}
	}
}

// WriteClipboardCmd returns a Bubble Tea Cmd that writes text to the
// clipboard and delivers a ClipboardWriteMsg on completion.
func WriteClipboardCmd(cb Clipboard, text string) tea.Cmd {
	return func() tea.Msg {
		return ClipboardWriteMsg{Err: cb.WriteAll(text)}
	}
}
