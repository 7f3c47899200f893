package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
	zone "github.com/lrstanley/bubblezone"

	"github.com/batalabs/winkb/internal/keyboard"
)

const (
	charZonePrefix = "char:"
	charColumns    = 8
)

// CharMapPicker is a grid of special characters. Enter or a click inserts
// the highlighted character.
type CharMapPicker struct {
	chars       []string
	selectedIdx int
	active      bool
}

func NewCharMapPicker() *CharMapPicker {
	return &CharMapPicker{chars: keyboard.SpecialChars, active: true}
}

func (p *CharMapPicker) IsActive() bool {
	return p != nil && p.active
}

func (p *CharMapPicker) Dismiss() {
	p.active = false
}

func (p *CharMapPicker) MoveUp() {
	if p.selectedIdx-charColumns >= 0 {
		p.selectedIdx -= charColumns
	}
}

func (p *CharMapPicker) MoveDown() {
	if p.selectedIdx+charColumns < len(p.chars) {
		p.selectedIdx += charColumns
	}
}

func (p *CharMapPicker) MoveLeft() {
	if p.selectedIdx > 0 {
		p.selectedIdx--
	}
}

func (p *CharMapPicker) MoveRight() {
	if p.selectedIdx < len(p.chars)-1 {
		p.selectedIdx++
	}
}

// Selected returns the highlighted character.
func (p *CharMapPicker) Selected() string {
	if p.selectedIdx < 0 || p.selectedIdx >= len(p.chars) {
		return ""
	}
	return p.chars[p.selectedIdx]
}

func charZoneID(i int) string { return fmt.Sprintf("%s%d", charZonePrefix, i) }

func (p *CharMapPicker) View(width int) string {
	var b strings.Builder
	b.WriteString(FooterHead.Render("Character Map"))
	b.WriteString("\n")
	b.WriteString(FooterMeta.Render("  Arrows=navigate  Enter=insert  Esc=close"))
	b.WriteString("\n\n")

	rows := make([]string, 0, len(p.chars)/charColumns+1)
	for start := 0; start < len(p.chars); start += charColumns {
		end := min(start+charColumns, len(p.chars))
		cells := make([]string, 0, charColumns)
		for i := start; i < end; i++ {
			cell := fmt.Sprintf(" %s ", p.chars[i])
			if i == p.selectedIdx {
				cell = CompletionSelStyle.Render(cell)
			} else {
				cell = CompletionStyle.Render(cell)
			}
			cells = append(cells, zone.Mark(charZoneID(i), cell))
		}
		rows = append(rows, "  "+lipgloss.JoinHorizontal(lipgloss.Top, cells...))
	}
	b.WriteString(strings.Join(rows, "\n"))
	b.WriteString("\n")
	return b.String()
}
