package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
	zone "github.com/lrstanley/bubblezone"

	"github.com/batalabs/winkb/internal/app"
	"github.com/batalabs/winkb/internal/config"
	"github.com/batalabs/winkb/internal/keyboard"
)

const (
	nanoZonePrefix   = "nano:"
	zoneSecCancel    = "sec:cancel"
	zoneRestore      = "bar:restore"
	zoneMinimize     = "bar:minimize"
	minimizedBarText = "⌨  Keyboard"
)

func nanoZoneID(i int) string { return fmt.Sprintf("%s%d", nanoZonePrefix, i) }

// titleBar is the strip above the keyboard. Notices show on the right.
func titleBar(s *app.State, theme Theme, width int) string {
	left := FooterHead.Render("Windows 11 Keyboard")
	if s.Admin {
		left += " " + ErrorLineStyle.Render("[Admin]")
	}
	if s.Listening {
		left += " " + ThinkingStyle.Render("● Listening")
	}
	right := zone.Mark(zoneMinimize, FooterMeta.Render("[_]"))
	if s.Notice.Text != "" {
		right = NoticeStyle.Render(s.Notice.Text) + " " + right
	}
	gap := max(width-lipgloss.Width(left)-lipgloss.Width(right), 1)
	return lipgloss.NewStyle().Background(theme.Bar).Render(left + strings.Repeat(" ", gap) + right)
}

// minimizedBar is the single row shown while minimised.
func minimizedBar(s *app.State) string {
	line := zone.Mark(zoneRestore, FooterHead.Render(minimizedBarText)) + "  " +
		FooterMeta.Render("ctrl+n restore")
	if s.Notice.Text != "" {
		line += "  " + NoticeStyle.Render(s.Notice.Text)
	}
	return line
}

// inputPreview echoes the routed buffer above the keys.
func inputPreview(s *app.State, width int) string {
	label, text := "Input", s.Input()
	if s.Open(keyboard.PanelAI) {
		label, text = "Prompt", s.Prompt
	}
	text = TruncateToWidth(oneLine(text), max(width-len(label)-3, 1))
	return FooterMeta.Render(label+": ") + InputStyle.Render(text) + CursorStyle.Render("█")
}

// aiPanel shows the prompt being typed and the generating state.
func aiPanel(s *app.State, spin string, width int) string {
	var b strings.Builder
	b.WriteString(FooterHead.Render("✦ AI Command Generator"))
	b.WriteString(FooterMeta.Render("  (" + s.Settings.AI.Provider + " · " + s.Settings.AI.Model + keySource(s.Settings) + ")"))
	b.WriteString("\n")
	b.WriteString(FooterMeta.Render("  Describe the command, then press Enter."))
	b.WriteString("\n\n")
	for i, line := range WrapWords(s.Prompt, max(width-6, 10)) {
		prefix := "  > "
		if i > 0 {
			prefix = "    "
		}
		b.WriteString(PromptStyle.Render(prefix) + InputStyle.Render(line))
		b.WriteString("\n")
	}
	if s.Generating {
		b.WriteString(ThinkingStyle.Render("  " + spin + " Generating..."))
	} else {
		b.WriteString(CursorStyle.Render("    █"))
	}
	b.WriteString("\n")
	return b.String()
}

// keySource notes where the API key comes from when it is not saved.
func keySource(s config.Settings) string {
	switch config.ResolveAPIKeySource(s) {
	case "env":
		return " · key from env"
	case "":
		return " · no API key"
	}
	return ""
}

// nanoBar renders the shortcut bar. Short labels are used when narrow and
// the function-key alternatives are added when wide.
func nanoBar(width int) string {
	short, wide := width < 100, width >= 160
	cells := make([]string, 0, len(keyboard.NanoShortcuts))
	for i, sc := range keyboard.NanoShortcuts {
		label := sc.Label
		switch {
		case short:
			label = sc.Short
		case wide && sc.Desc != sc.Code:
			label += " (" + sc.Desc + ")"
		}
		cell := CompletionSelStyle.Render(sc.Code) + " " + CompletionStyle.Render(label) + " "
		cells = append(cells, zone.Mark(nanoZoneID(i), cell))
	}
	// Two rows, like the nano footer.
	half := (len(cells) + 1) / 2
	return lipgloss.JoinHorizontal(lipgloss.Top, cells[:half]...) + "\n" +
		lipgloss.JoinHorizontal(lipgloss.Top, cells[half:]...)
}

// securityScreen is the Ctrl+Alt+Del overlay.
func securityScreen(width int) string {
	var b strings.Builder
	for _, item := range []string{"Lock", "Switch user", "Sign out", "Change a password", "Task Manager"} {
		b.WriteString(item)
		b.WriteString("\n")
	}
	b.WriteString("\n")
	b.WriteString(zone.Mark(zoneSecCancel, CompletionSelStyle.Render(" Cancel ")))
	return SecurityScreenStyle.Width(max(width-2, 20)).Render(b.String())
}

// overlay frames a panel body with the theme border.
func overlay(body string, theme Theme, width int) string {
	return OverlayStyle.BorderForeground(theme.Accent).Width(max(width-4, 36)).Render(strings.TrimRight(body, "\n"))
}
