package keyboard

import (
	"strings"
	"unicode"
)

var namedKeys = map[string]string{
	"backspace": "Backspace",
	"enter":     "Enter",
	"esc":       "Esc",
	"escape":    "Esc",
	"tab":       "Tab",
	"space":     "Space",
	" ":         "Space",
	"up":        "ArrowUp",
	"down":      "ArrowDown",
	"left":      "ArrowLeft",
	"right":     "ArrowRight",
	"shift":     "ShiftLeft",
	"ctrl":      "ControlLeft",
	"alt":       "AltLeft",
	"delete":    "Clear",
}

// KeyIDForName maps a physical key name (as reported by the terminal, e.g.
// "enter", "backspace", "up") to a layout key ID.
func KeyIDForName(name string) (string, bool) {
	id, ok := namedKeys[strings.ToLower(name)]
	return id, ok
}

// KeyIDForRune maps a typed character to the layout key that produces it,
// either as its primary or its shifted glyph.
func (l *Layout) KeyIDForRune(r rune) (string, bool) {
	if r == ' ' {
		return "Space", true
	}
	if r < unicode.MaxASCII && unicode.IsLetter(r) {
		return "Key" + strings.ToUpper(string(r)), true
	}
	if r >= '0' && r <= '9' {
		return "Digit" + string(r), true
	}
	s := string(r)
	for _, k := range l.Keys() {
		if k.Kind != KindNormal {
			continue
		}
		if g, ok := k.Label.Glyph(); ok && g == s {
			return k.ID, true
		}
		if k.Shifted == s {
			return k.ID, true
		}
	}
	return "", false
}
