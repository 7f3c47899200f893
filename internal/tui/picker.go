package tui

import (
	"fmt"
	"slices"
	"strings"

	zone "github.com/lrstanley/bubblezone"
)

const clipZonePrefix = "clip:"

// clipEntry is a clipboard history item and its position in the history.
type clipEntry struct {
	Index int
	Text  string
}

// ClipboardPicker is an interactive clipboard history overlay.
type ClipboardPicker struct {
	entries     []clipEntry
	filtered    []clipEntry
	selectedIdx int
	filter      string
	active      bool
}

// NewClipboardPicker creates a picker over items, newest first.
func NewClipboardPicker(items []string) *ClipboardPicker {
	entries := newClipEntries(items)
	return &ClipboardPicker{
		entries:  entries,
		filtered: entries,
		active:   true,
	}
}

func newClipEntries(items []string) []clipEntry {
	entries := make([]clipEntry, len(items))
	for i, it := range items {
		entries[i] = clipEntry{Index: i, Text: it}
	}
	return entries
}

// Refresh replaces the entries with the current history. The filter is
// kept and the highlight stays on the same text while it is listed.
func (p *ClipboardPicker) Refresh(items []string) {
	same := len(items) == len(p.entries) && !slices.ContainsFunc(p.entries, func(e clipEntry) bool {
		return items[e.Index] != e.Text
	})
	if same {
		return
	}
	cur, hadSel := p.Selected()
	p.entries = newClipEntries(items)
	p.applyFilter()
	if hadSel {
		if i := slices.IndexFunc(p.filtered, func(e clipEntry) bool { return e.Text == cur }); i >= 0 {
			p.selectedIdx = i
		}
	}
}

// IsActive reports whether the picker is currently shown.
func (p *ClipboardPicker) IsActive() bool {
	return p != nil && p.active
}

// Dismiss closes the picker.
func (p *ClipboardPicker) Dismiss() {
	p.active = false
}

// Selected returns the text of the highlighted entry.
func (p *ClipboardPicker) Selected() (string, bool) {
	if len(p.filtered) == 0 {
		return "", false
	}
	return p.filtered[p.selectedIdx].Text, true
}

// entryAt returns the text of the listed entry whose row zone contains msg.
func (p *ClipboardPicker) entryAt(hit func(id string) bool) (string, bool) {
	for _, e := range p.filtered {
		if hit(clipZoneID(e.Index)) {
			return e.Text, true
		}
	}
	return "", false
}

func (p *ClipboardPicker) MoveUp() {
	if p.selectedIdx > 0 {
		p.selectedIdx--
	}
}

func (p *ClipboardPicker) MoveDown() {
	if p.selectedIdx < len(p.filtered)-1 {
		p.selectedIdx++
	}
}

// AppendFilter adds a rune to the filter.
func (p *ClipboardPicker) AppendFilter(r rune) {
	p.filter += string(r)
	p.applyFilter()
}

// BackspaceFilter removes the last rune from the filter.
func (p *ClipboardPicker) BackspaceFilter() {
	if len(p.filter) > 0 {
		runes := []rune(p.filter)
		p.filter = string(runes[:len(runes)-1])
		p.applyFilter()
	}
}

func (p *ClipboardPicker) applyFilter() {
	if p.filter == "" {
		p.filtered = p.entries
	} else {
		lower := strings.ToLower(p.filter)
		p.filtered = nil
		for _, e := range p.entries {
			if strings.Contains(strings.ToLower(e.Text), lower) {
				p.filtered = append(p.filtered, e)
			}
		}
	}
	p.selectedIdx = 0
}

func clipZoneID(index int) string { return fmt.Sprintf("%s%d", clipZonePrefix, index) }

// View renders the picker as a string. Each row is a click zone carrying
// the history index.
func (p *ClipboardPicker) View(width int) string {
	if width < 40 {
		width = 40
	}

	var b strings.Builder
	b.WriteString(FooterHead.Render("Clipboard History"))
	b.WriteString("\n")
	b.WriteString(FooterMeta.Render("  Filter: " + p.filter))
	b.WriteString(CursorStyle.Render("█"))
	b.WriteString("\n\n")

	if len(p.entries) == 0 {
		b.WriteString(FooterMeta.Render("  Clipboard history is empty."))
		b.WriteString("\n")
	} else if len(p.filtered) == 0 {
		b.WriteString(FooterMeta.Render("  No matching entries."))
		b.WriteString("\n")
	} else {
		const maxVisible = 10
		start := 0
		if p.selectedIdx >= maxVisible {
			start = p.selectedIdx - maxVisible + 1
		}
		end := min(start+maxVisible, len(p.filtered))

		for i := start; i < end; i++ {
			e := p.filtered[i]
			indicator := "  "
			if i == p.selectedIdx {
				indicator = "> "
			}
			line := TruncateToWidth(fmt.Sprintf("%s%2d  %s", indicator, e.Index+1, oneLine(e.Text)), width-2)
			if i == p.selectedIdx {
				line = CompletionSelStyle.Render(line)
			} else {
				line = FooterMeta.Render(line)
			}
			b.WriteString(zone.Mark(clipZoneID(e.Index), line))
			b.WriteString("\n")
		}

		if len(p.filtered) > maxVisible {
			b.WriteString(FooterMeta.Render(fmt.Sprintf("  ... %d total", len(p.filtered))))
			b.WriteString("\n")
		}
	}

	b.WriteString("\n")
	b.WriteString(FooterMeta.Render("  Enter=paste  Esc=close"))
	b.WriteString("\n")
	return b.String()
}
