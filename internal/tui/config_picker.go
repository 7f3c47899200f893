package tui

import (
	"fmt"
	"strings"

	"github.com/batalabs/winkb/internal/config"
)

type configPickerMode int

const (
	configPickerGroups configPickerMode = iota
	configPickerKeys
	configPickerEdit
)

// boolSettings toggle on Enter instead of opening the editor.
var boolSettings = map[string]bool{
	"display.high_contrast":      true,
	"display.show_bar":           true,
	"display.show_input_preview": true,
	"input.click_sound":          true,
}

// cycleSettings step through a fixed set of values on Enter.
var cycleSettings = map[string][]string{
	"display.theme":        config.Themes,
	"display.window_layer": config.WindowLayers,
	"ai.provider":          config.KnownProviders,
}

// ConfigPicker is the settings panel: groups, then keys, then an editor.
type ConfigPicker struct {
	groups   []config.SettingGroup
	groupIdx int
	keyIdx   int
	mode     configPickerMode
	active   bool
	err      string

	editKey string
	editBuf string
}

func NewConfigPicker(s config.Settings) *ConfigPicker {
	return &ConfigPicker{
		groups: s.Grouped(),
		active: true,
		mode:   configPickerGroups,
	}
}

func (p *ConfigPicker) IsActive() bool { return p != nil && p.active }
func (p *ConfigPicker) Dismiss()       { p.active = false }

// Editing reports whether the value editor is open.
func (p *ConfigPicker) Editing() bool { return p.mode == configPickerEdit }

// SetError shows a validation error until the next action.
func (p *ConfigPicker) SetError(msg string) { p.err = msg }

func (p *ConfigPicker) Refresh(s config.Settings) {
	p.groups = s.Grouped()
	if p.groupIdx >= len(p.groups) {
		p.groupIdx = max(0, len(p.groups)-1)
	}
	if g := p.selectedGroup(); g != nil && p.keyIdx >= len(g.Entries) {
		p.keyIdx = max(0, len(g.Entries)-1)
	}
}

func (p *ConfigPicker) FocusGroup(group string) {
	group = strings.ToLower(strings.TrimSpace(group))
	for i, g := range p.groups {
		if strings.ToLower(g.Name) == group {
			p.groupIdx = i
			p.mode = configPickerKeys
			p.keyIdx = 0
			return
		}
	}
}

func (p *ConfigPicker) selectedGroup() *config.SettingGroup {
	if len(p.groups) == 0 || p.groupIdx < 0 || p.groupIdx >= len(p.groups) {
		return nil
	}
	return &p.groups[p.groupIdx]
}

func (p *ConfigPicker) selectedEntry() *config.SettingEntry {
	g := p.selectedGroup()
	if g == nil || len(g.Entries) == 0 || p.keyIdx < 0 || p.keyIdx >= len(g.Entries) {
		return nil
	}
	return &g.Entries[p.keyIdx]
}

func (p *ConfigPicker) MoveUp() {
	p.err = ""
	switch p.mode {
	case configPickerGroups:
		if p.groupIdx > 0 {
			p.groupIdx--
		}
	case configPickerKeys:
		if p.keyIdx > 0 {
			p.keyIdx--
		}
	}
}

func (p *ConfigPicker) MoveDown() {
	p.err = ""
	switch p.mode {
	case configPickerGroups:
		if p.groupIdx < len(p.groups)-1 {
			p.groupIdx++
		}
	case configPickerKeys:
		g := p.selectedGroup()
		if g != nil && p.keyIdx < len(g.Entries)-1 {
			p.keyIdx++
		}
	}
}

func (p *ConfigPicker) EnterGroup() {
	if p.mode == configPickerGroups {
		p.mode = configPickerKeys
		p.keyIdx = 0
	}
}

// Back leaves the current level. It reports false at the top level, where
// the caller closes the panel.
func (p *ConfigPicker) Back() bool {
	p.err = ""
	switch p.mode {
	case configPickerEdit:
		p.mode = configPickerKeys
		p.editKey = ""
		p.editBuf = ""
	case configPickerKeys:
		p.mode = configPickerGroups
		p.keyIdx = 0
	default:
		return false
	}
	return true
}

// Activate acts on the highlighted key. Booleans and enums return the next
// value to set immediately. Other keys open the editor prefilled with the
// current value, except the API key which starts empty.
func (p *ConfigPicker) Activate(s config.Settings) (key, value string, ok bool) {
	p.err = ""
	e := p.selectedEntry()
	if p.mode != configPickerKeys || e == nil {
		return "", "", false
	}
	raw := s.Get(e.Key)
	if boolSettings[e.Key] {
		b, _ := config.ParseBoolish(raw)
		return e.Key, fmt.Sprint(!b), true
	}
	if values, found := cycleSettings[e.Key]; found {
		return e.Key, nextValue(values, raw), true
	}
	if e.Key == "ai.api_key" {
		raw = ""
	}
	p.StartEdit(e.Key, raw)
	return "", "", false
}

func nextValue(values []string, cur string) string {
	for i, v := range values {
		if v == cur {
			return values[(i+1)%len(values)]
		}
	}
	return values[0]
}

func (p *ConfigPicker) StartEdit(key, initial string) {
	p.mode = configPickerEdit
	p.editKey = key
	p.editBuf = initial
}

func (p *ConfigPicker) AppendEdit(r rune) {
	p.editBuf += string(r)
}

func (p *ConfigPicker) BackspaceEdit() {
	if len(p.editBuf) == 0 {
		return
	}
	rs := []rune(p.editBuf)
	p.editBuf = string(rs[:len(rs)-1])
}

func (p *ConfigPicker) CommitEdit() (key, value string, ok bool) {
	if p.mode != configPickerEdit {
		return "", "", false
	}
	key = p.editKey
	value = p.editBuf
	p.mode = configPickerKeys
	p.editKey = ""
	p.editBuf = ""
	return key, value, true
}

func (p *ConfigPicker) View(width int) string {
	if width < 40 {
		width = 40
	}
	var b strings.Builder
	b.WriteString(FooterHead.Render("Settings"))
	b.WriteString("\n")

	switch p.mode {
	case configPickerGroups:
		b.WriteString(FooterMeta.Render("  Enter=select group  Ctrl+S=save  Esc=close"))
		b.WriteString("\n\n")
		for i, g := range p.groups {
			line := fmt.Sprintf("  %s", g.Name)
			if i == p.groupIdx {
				line = "> " + g.Name
				b.WriteString(CompletionSelStyle.Render(line))
			} else {
				b.WriteString(FooterMeta.Render(line))
			}
			b.WriteString("\n")
		}
	case configPickerKeys:
		g := p.selectedGroup()
		groupLabel := "group"
		if g != nil {
			groupLabel = g.Name
		}
		b.WriteString(FooterMeta.Render("  Group: " + groupLabel + "  Enter=edit/toggle  Ctrl+S=save  Esc=back"))
		b.WriteString("\n\n")
		if g == nil || len(g.Entries) == 0 {
			b.WriteString(FooterMeta.Render("  No entries."))
			b.WriteString("\n")
			return b.String()
		}
		for i, e := range g.Entries {
			line := TruncateToWidth(fmt.Sprintf("  %-28s %s", e.Key, e.Value), width-2)
			if i == p.keyIdx {
				line = TruncateToWidth(fmt.Sprintf("> %-28s %s", e.Key, e.Value), width-2)
				b.WriteString(CompletionSelStyle.Render(line))
			} else {
				b.WriteString(FooterMeta.Render(line))
			}
			b.WriteString("\n")
		}
	case configPickerEdit:
		b.WriteString(FooterMeta.Render("  Edit " + p.editKey + "  Enter=apply  Esc=cancel"))
		b.WriteString("\n\n")
		b.WriteString(FooterMeta.Render("  Value: " + p.editBuf))
		b.WriteString(CursorStyle.Render("█"))
		b.WriteString("\n")
	}

	if p.err != "" {
		b.WriteString("\n")
		b.WriteString(ErrorLineStyle.Render("  " + p.err))
		b.WriteString("\n")
	}
	return b.String()
}
