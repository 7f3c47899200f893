package keyboard

// Layout is the fixed key table. Build it once with NewLayout or
// DefaultLayout; it is never mutated afterwards.
type Layout struct {
	rows [][]Key
	byID map[string]Key
}

// NewLayout indexes rows by key ID. Later duplicates win.
func NewLayout(rows [][]Key) *Layout {
	l := &Layout{rows: rows, byID: make(map[string]Key)}
	for _, row := range rows {
		for _, k := range row {
			l.byID[k.ID] = k
		}
	}
	return l
}

// Rows returns the key rows in display order.
func (l *Layout) Rows() [][]Key { return l.rows }

// Lookup returns the key with the given ID.
func (l *Layout) Lookup(id string) (Key, bool) {
	k, ok := l.byID[id]
	return k, ok
}

// Keys returns every key in row order.
func (l *Layout) Keys() []Key {
	var out []Key
	for _, row := range l.rows {
		out = append(out, row...)
	}
	return out
}

func letter(id, glyph string) Key {
	return Key{ID: id, Kind: KindNormal, Label: Text(glyph)}
}

func symbol(id, glyph, shifted string) Key {
	return Key{ID: id, Kind: KindNormal, Label: Text(glyph), Shifted: shifted}
}

func digit(id, glyph, shifted, fn string) Key {
	return Key{ID: id, Kind: KindNormal, Label: Text(glyph), Shifted: shifted, FnLabel: fn, FnID: fn}
}

// DefaultLayout returns the Windows 11 style five-row layout.
func DefaultLayout() *Layout {
	return NewLayout([][]Key{
		{
			{ID: "Esc", Kind: KindAction, Label: Text("Esc"), Width: 1},
			digit("Digit1", "1", "!", "F1"),
			digit("Digit2", "2", "@", "F2"),
			digit("Digit3", "3", "#", "F3"),
			digit("Digit4", "4", "$", "F4"),
			digit("Digit5", "5", "%", "F5"),
			digit("Digit6", "6", "^", "F6"),
			digit("Digit7", "7", "&", "F7"),
			digit("Digit8", "8", "*", "F8"),
			digit("Digit9", "9", "(", "F9"),
			digit("Digit0", "0", ")", "F10"),
			digit("Minus", "-", "_", "F11"),
			digit("Equal", "=", "+", "F12"),
			{ID: "Backspace", Kind: KindAction, Label: IconLabel(IconBackspace), Width: 2},
			{ID: "CAD", Kind: KindSpecial, Label: Text("CAD"), Shifted: "Del", Width: 1},
		},
		{
			{ID: "Tab", Kind: KindAction, Label: Text("Tab"), Width: 2},
			letter("KeyQ", "q"),
			letter("KeyW", "w"),
			letter("KeyE", "e"),
			letter("KeyR", "r"),
			letter("KeyT", "t"),
			letter("KeyY", "y"),
			letter("KeyU", "u"),
			letter("KeyI", "i"),
			letter("KeyO", "o"),
			letter("KeyP", "p"),
			symbol("BracketLeft", "[", "{"),
			symbol("BracketRight", "]", "}"),
			{ID: "Backslash", Kind: KindNormal, Label: Text(`\`), Shifted: "|", Width: 1.5},
		},
		{
			{ID: "CapsLock", Kind: KindToggle, Label: Text("Caps"), Width: 2},
			letter("KeyA", "a"),
			letter("KeyS", "s"),
			letter("KeyD", "d"),
			letter("KeyF", "f"),
			letter("KeyG", "g"),
			letter("KeyH", "h"),
			letter("KeyJ", "j"),
			letter("KeyK", "k"),
			letter("KeyL", "l"),
			symbol("Semicolon", ";", ":"),
			symbol("Quote", "'", `"`),
			{ID: "Enter", Kind: KindAction, Label: IconLabel(IconEnter), Width: 2.5},
		},
		{
			{ID: "ShiftLeft", Kind: KindModifier, Label: Text("Shift"), Width: 2.25},
			letter("KeyZ", "z"),
			letter("KeyX", "x"),
			letter("KeyC", "c"),
			letter("KeyV", "v"),
			letter("KeyB", "b"),
			letter("KeyN", "n"),
			letter("KeyM", "m"),
			symbol("Comma", ",", "<"),
			symbol("Period", ".", ">"),
			symbol("Slash", "/", "?"),
			{ID: "Cut", Kind: KindAction, Label: IconLabel(IconCut), Width: 0.9},
			{ID: "Copy", Kind: KindAction, Label: IconLabel(IconCopy), Width: 0.9},
			{ID: "Paste", Kind: KindAction, Label: IconLabel(IconPaste), Width: 0.9},
			{ID: "SelectAll", Kind: KindAction, Label: IconLabel(IconSelectAll), Width: 0.9},
			{ID: "ArrowUp", Kind: KindNormal, Label: IconLabel(IconArrowUp), Width: 0.9},
			{ID: "ShiftRight", Kind: KindModifier, Label: Text("Shift"), Width: 1},
			{ID: "AI", Kind: KindSpecial, Label: IconLabel(IconAI), Width: 1.25},
		},
		{
			{ID: "Fn", Kind: KindToggle, Label: Text("Fn"), Width: 1},
			{ID: "ControlLeft", Kind: KindModifier, Label: Text("Ctrl"), Width: 1.1},
			{ID: "Win", Kind: KindModifier, Label: IconLabel(IconWindows), Width: 1.1},
			{ID: "AltLeft", Kind: KindModifier, Label: Text("Alt"), Width: 1.1},
			{ID: "Space", Kind: KindNormal, Label: Text(" "), Width: 2.2},
			{ID: "Mic", Kind: KindToggle, Label: IconLabel(IconMic), Width: 0.9},
			{ID: "Clipboard", Kind: KindSpecial, Label: IconLabel(IconClipboard), Width: 0.9},
			{ID: "CharMap", Kind: KindSpecial, Label: IconLabel(IconCharMap), Width: 0.9},
			{ID: "Nano", Kind: KindSpecial, Label: IconLabel(IconNano), Width: 0.9},
			{ID: "Settings", Kind: KindSpecial, Label: IconLabel(IconSettings), Width: 0.9},
			{ID: "LeftClick", Kind: KindAction, Label: IconLabel(IconLeftClick), Width: 0.9},
			{ID: "RightClick", Kind: KindAction, Label: IconLabel(IconRightClick), Width: 0.9},
			{ID: "ArrowLeft", Kind: KindNormal, Label: IconLabel(IconArrowLeft), Width: 0.9},
			{ID: "ArrowDown", Kind: KindNormal, Label: IconLabel(IconArrowDown), Width: 0.9},
			{ID: "ArrowRight", Kind: KindNormal, Label: IconLabel(IconArrowRight), Width: 0.9},
			{ID: "Clear", Kind: KindAction, Label: IconLabel(IconClear), Width: 0.9},
			{ID: "PSAdmin", Kind: KindSpecial, Label: IconLabel(IconPowerShell), Width: 1},
		},
	})
}

// SpecialChars is the character map offered by the symbol picker.
var SpecialChars = []string{
	"©", "®", "™", "€", "£", "¥", "¢", "$",
	"°", "±", "÷", "×", "µ", "π", "∞", "√",
	"←", "↑", "→", "↓", "↔", "⇒", "⇐", "⇔",
	"•", "§", "¶", "†", "‡", "…", "·", "—",
	"∀", "∃", "∅", "∈", "∉", "⊂", "⊃", "∪",
	"∩", "∧", "∨", "¬", "≈", "≠", "≤", "≥",
	"α", "β", "γ", "δ", "ε", "θ", "λ", "Ω",
	"☺", "♥", "♦", "♣", "♠", "♪", "♫", "☼",
}

// NanoShortcut is one entry of the nano shortcut bar. Desc is the
// function-key alternative.
type NanoShortcut struct {
	Label string
	Code  string
	Desc  string
	Short string
}

// NanoShortcuts lists the shortcut bar entries. Pressing one inserts Code.
var NanoShortcuts = []NanoShortcut{
	{Label: "Get Help", Code: "^G", Desc: "F1", Short: "Help"},
	{Label: "Write Out", Code: "^O", Desc: "F3", Short: "Save"},
	{Label: "Read File", Code: "^R", Desc: "F5", Short: "Read"},
	{Label: "Where Is", Code: "^W", Desc: "F6", Short: "Find"},
	{Label: "Replace", Code: `^\`, Desc: "F4", Short: "Repl"},
	{Label: "Cut", Code: "^K", Desc: "F9", Short: "Cut"},
	{Label: "Paste (Uncut)", Code: "^U", Desc: "F10", Short: "Paste"},
	{Label: "Justify", Code: "^J", Desc: "F4", Short: "Just"},
	{Label: "To Line", Code: "^_", Desc: "F7", Short: "GoTo"},
	{Label: "Mark", Code: "M-A", Desc: "M-A", Short: "Mark"},
	{Label: "Prev", Code: "M-U", Desc: "M-U", Short: "Undo"},
	{Label: "Next", Code: "M-E", Desc: "M-E", Short: "Redo"},
	{Label: "Exit", Code: "^X", Desc: "F2", Short: "Exit"},
}
