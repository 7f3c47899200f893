package tui

import (
	"math"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	zone "github.com/lrstanley/bubblezone"
	"github.com/mattn/go-runewidth"

	"github.com/batalabs/winkb/internal/keyboard"
)

const (
	keyZonePrefix = "key:"
	baseKeyUnit   = 5
	minKeyUnit    = 3
)

var iconGlyphs = map[keyboard.Icon]string{
	keyboard.IconBackspace:  "⌫",
	keyboard.IconEnter:      "⏎ Enter",
	keyboard.IconWindows:    "⊞",
	keyboard.IconAI:         "✦ AI",
	keyboard.IconMic:        "Mic",
	keyboard.IconArrowUp:    "↑",
	keyboard.IconArrowDown:  "↓",
	keyboard.IconArrowLeft:  "←",
	keyboard.IconArrowRight: "→",
	keyboard.IconCopy:       "Copy",
	keyboard.IconPaste:      "Pst",
	keyboard.IconCut:        "Cut",
	keyboard.IconSelectAll:  "All",
	keyboard.IconClipboard:  "Clip",
	keyboard.IconCharMap:    "Ω",
	keyboard.IconNano:       "Nano",
	keyboard.IconSettings:   "⚙",
	keyboard.IconLeftClick:  "LMB",
	keyboard.IconRightClick: "RMB",
	keyboard.IconClear:      "Clr",
	keyboard.IconPowerShell: "PS>",
}

func keyZoneID(id string) string { return keyZonePrefix + id }

// keyCap returns the text printed on k under mods.
func keyCap(k keyboard.Key, mods keyboard.Modifiers) string {
	if mods.Fn && k.FnLabel != "" {
		return k.FnLabel
	}
	if k.Label.Kind == keyboard.LabelIcon {
		return iconGlyphs[k.Label.Icon]
	}
	if k.ID == "Space" {
		return ""
	}
	if k.Kind == keyboard.KindNormal {
		if s := keyboard.Resolve(k, mods); s != "" {
			return s
		}
	}
	return k.Label.Text
}

// keyActive reports whether k shows as latched.
func keyActive(k keyboard.Key, mods keyboard.Modifiers, listening bool) bool {
	switch k.ID {
	case "ShiftLeft", "ShiftRight":
		return mods.Shift
	case "ControlLeft", "ControlRight":
		return mods.Ctrl
	case "AltLeft", "AltRight":
		return mods.Alt
	case "Win":
		return mods.Win
	case "CapsLock":
		return mods.CapsLock
	case "Fn":
		return mods.Fn
	case "Mic":
		return listening
	}
	return false
}

// keyUnit picks the width of a standard key so the widest row fits.
func keyUnit(layout *keyboard.Layout, width int, scale float64) int {
	if scale <= 0 {
		scale = 1
	}
	unit := int(math.Round(baseKeyUnit * scale))
	widest := 0.0
	for _, row := range layout.Rows() {
		w := 0.0
		for _, k := range row {
			w += k.RelWidth()
		}
		widest = math.Max(widest, w)
	}
	if width > 0 && widest > 0 {
		if fit := int(float64(width-2) / widest); fit < unit {
			unit = fit
		}
	}
	return max(unit, minKeyUnit)
}

type keyboardView struct {
	layout    *keyboard.Layout
	mods      keyboard.Modifiers
	listening bool
	held      string // key under the pointer
	flash     string // physical key highlight
	theme     Theme
	opacity   float64
	unit      int
}

func (v keyboardView) render() string {
	rows := v.layout.Rows()
	out := make([]string, 0, len(rows))
	for _, row := range rows {
		cells := make([]string, 0, len(row))
		for _, k := range row {
			cells = append(cells, zone.Mark(keyZoneID(k.ID), v.renderKey(k)))
		}
		out = append(out, lipgloss.JoinHorizontal(lipgloss.Top, cells...))
	}
	return lipgloss.JoinVertical(lipgloss.Left, out...)
}

func (v keyboardView) renderKey(k keyboard.Key) string {
	w := max(int(math.Round(k.RelWidth()*float64(v.unit))), 3)
	inner := w - 2

	label := runewidth.Truncate(keyCap(k, v.mods), inner, "")
	style := lipgloss.NewStyle().
		Width(inner).
		Align(lipgloss.Center).
		Border(lipgloss.RoundedBorder()).
		BorderForeground(v.theme.borderColor(v.opacity)).
		Foreground(v.theme.Key)

	switch {
	case k.ID == v.held || k.ID == v.flash:
		style = style.Reverse(true).BorderForeground(v.theme.Accent)
	case keyActive(k, v.mods, v.listening):
		style = style.Foreground(v.theme.Accent).Bold(true).BorderForeground(v.theme.Accent)
	case k.Kind == keyboard.KindSpecial || k.Kind == keyboard.KindAction:
		style = style.Foreground(v.theme.Muted)
	}
	return style.Render(label)
}

// keyAt returns the ID of the key whose zone contains the mouse event.
func keyAt(layout *keyboard.Layout, msg tea.MouseMsg) (string, bool) {
	for _, k := range layout.Keys() {
		if z := zone.Get(keyZoneID(k.ID)); z != nil && z.InBounds(msg) {
			return k.ID, true
		}
	}
	return "", false
}
