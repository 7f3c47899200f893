package tui

import (
	"bytes"
	"strings"

	"github.com/alecthomas/chroma/v2/quick"
	"github.com/charmbracelet/lipgloss"
	zone "github.com/lrstanley/bubblezone"
	"github.com/mattn/go-runewidth"

	"github.com/batalabs/winkb/internal/app"
)

const zoneAdminToggle = "term:admin"

var terminalHeader = []string{
	"Windows PowerShell",
	"Copyright (C) Microsoft Corporation. All rights reserved.",
	"",
	"Try the new cross-platform PowerShell https://aka.ms/pscore6",
	"",
}

// WrapWords splits s into lines that fit within width, breaking at word
// boundaries. Words longer than width are hard-broken.
func WrapWords(s string, width int) []string {
	if width < 10 {
		width = 10
	}
	parts := strings.Fields(s)
	if len(parts) == 0 {
		return []string{""}
	}
	lines := make([]string, 0, 8)
	cur := ""
	for _, word := range parts {
		next := word
		if cur != "" {
			next = cur + " " + word
		}
		if runewidth.StringWidth(next) <= width {
			cur = next
			continue
		}
		if cur != "" {
			lines = append(lines, cur)
		}
		for runewidth.StringWidth(word) > width {
			head := runewidth.Truncate(word, width, "")
			lines = append(lines, head)
			word = word[len(head):]
		}
		cur = word
	}
	if cur != "" {
		lines = append(lines, cur)
	}
	return lines
}

// TruncateToWidth truncates s to fit within maxWidth visible columns,
// marking the cut with an ellipsis.
func TruncateToWidth(s string, maxWidth int) string {
	if maxWidth <= 0 {
		return ""
	}
	return runewidth.Truncate(s, maxWidth, "…")
}

// oneLine flattens newlines and tabs for single-row previews.
func oneLine(s string) string {
	return strings.NewReplacer("\r\n", " ⏎ ", "\n", " ⏎ ", "\t", "⇥").Replace(s)
}

// highlightCommand colours a generated PowerShell command with Chroma.
// Error comments are shown in the error colour instead.
func highlightCommand(cmd string) string {
	if strings.HasPrefix(cmd, "# Error:") {
		return ErrorLineStyle.Render(cmd)
	}
	var out bytes.Buffer
	if err := quick.Highlight(&out, cmd, "powershell", "terminal256", "dracula"); err != nil {
		return OutputStyle.Render(cmd)
	}
	return strings.TrimSuffix(out.String(), "\n")
}

// renderLine styles one transcript line, wrapping plain lines to width.
func renderLine(l app.Line, width int) []string {
	if l.Kind == app.LineOutput {
		return strings.Split(highlightCommand(l.Text), "\n")
	}
	style := OutputStyle
	switch l.Kind {
	case app.LineError:
		style = ErrorLineStyle
	case app.LineInfo:
		style = InfoLineStyle
	}
	var out []string
	for _, raw := range strings.Split(l.Text, "\n") {
		for _, w := range WrapWords(raw, width) {
			out = append(out, style.Render(w))
		}
	}
	return out
}

// terminalView renders the PowerShell transcript window.
type terminalView struct {
	state    *app.State
	width    int
	height   int // rows for the body, title bar excluded
	thinking string
}

func (v terminalView) titleBar() string {
	title, style, who := "Windows PowerShell", TermTitleStyle, "User"
	if v.state.Admin {
		title, style, who = "Administrator: Windows PowerShell", AdminTitleStyle, "Admin"
	}
	toggle := zone.Mark(zoneAdminToggle, "["+who+"]")
	gap := max(v.width-lipgloss.Width(title)-lipgloss.Width(toggle)-2, 1)
	return style.Render(title + strings.Repeat(" ", gap) + toggle)
}

func (v terminalView) render() string {
	body := make([]string, 0, len(v.state.Transcript)+8)
	for _, h := range terminalHeader {
		body = append(body, FooterMeta.Render(h))
	}
	for _, l := range v.state.Transcript {
		body = append(body, renderLine(l, v.width)...)
	}
	prompt := PromptStyle.Render("PS "+v.state.Path()+">") + " " +
		InputStyle.Render(oneLine(v.state.Input())) + CursorStyle.Render("█")
	body = append(body, prompt)
	if v.thinking != "" {
		body = append(body, ThinkingStyle.Render(v.thinking+" Thinking..."))
	}

	if v.height > 0 && len(body) > v.height {
		body = body[len(body)-v.height:]
	}
	return v.titleBar() + "\n" + strings.Join(body, "\n")
}
