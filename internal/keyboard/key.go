// Package keyboard holds the virtual keyboard core: the key layout, the
// modifier state machine, the key dispatch resolver, the undo history of the
// main input buffer, clipboard history and press-and-hold key repeat.
package keyboard

// Kind classifies how a key press is interpreted.
type Kind int

const (
	KindNormal   Kind = iota // produces a character
	KindModifier             // Shift, Ctrl, Alt, Win
	KindToggle               // CapsLock, Fn, Mic
	KindAction               // Enter, Backspace, Clear, clipboard actions
	KindSpecial              // opens panels (AI, CharMap, Settings, ...)
)

func (k Kind) String() string {
	switch k {
	case KindNormal:
		return "normal"
	case KindModifier:
		return "modifier"
	case KindToggle:
		return "toggle"
	case KindAction:
		return "action"
	case KindSpecial:
		return "special"
	default:
		return "unknown"
	}
}

// Icon identifies a pictographic key label.
type Icon int

const (
	IconNone Icon = iota
	IconBackspace
	IconEnter
	IconWindows
	IconAI
	IconMic
	IconArrowUp
	IconArrowDown
	IconArrowLeft
	IconArrowRight
	IconCopy
	IconPaste
	IconCut
	IconSelectAll
	IconClipboard
	IconCharMap
	IconNano
	IconSettings
	IconLeftClick
	IconRightClick
	IconClear
	IconPowerShell
)

// LabelKind discriminates the Label variant.
type LabelKind uint8

const (
	LabelText LabelKind = iota
	LabelIcon
)

// Label is either a plain text glyph or an icon.
type Label struct {
	Kind LabelKind
	Text string
	Icon Icon
}

// Text returns a text label.
func Text(s string) Label { return Label{Kind: LabelText, Text: s} }

// IconLabel returns an icon label.
func IconLabel(i Icon) Label { return Label{Kind: LabelIcon, Icon: i} }

// Glyph returns the text of a text label. Icon labels have no glyph.
func (l Label) Glyph() (string, bool) {
	if l.Kind != LabelText {
		return "", false
	}
	return l.Text, true
}

// Key describes one key of the layout. Keys are immutable once the layout
// is built.
type Key struct {
	ID      string
	Kind    Kind
	Label   Label
	Shifted string // glyph typed while Shift is held
	FnLabel string // label shown while Fn is active
	FnID    string // identity emitted while Fn is active
	Width   float64
}

// HasFnLayer reports whether the key changes identity under Fn.
func (k Key) HasFnLayer() bool { return k.FnID != "" }

// RelWidth returns the key width relative to a standard key.
func (k Key) RelWidth() float64 {
	if k.Width <= 0 {
		return 1
	}
	return k.Width
}
