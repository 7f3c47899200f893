package keyboard

import (
	"strings"
	"unicode"
)

// Route names the buffer a text effect applies to.
type Route int

const (
	RouteMain Route = iota
	RoutePrompt
)

// Panel identifies a floating panel.
type Panel int

const (
	PanelAI Panel = iota
	PanelCharMap
	PanelNano
	PanelSecurity
	PanelClipboard
	PanelSettings
	PanelTerminal
)

var panelNames = map[Panel]string{
	PanelAI:        "ai",
	PanelCharMap:   "charmap",
	PanelNano:      "nano",
	PanelSecurity:  "security",
	PanelClipboard: "clipboard",
	PanelSettings:  "settings",
	PanelTerminal:  "terminal",
}

func (p Panel) String() string {
	if s, ok := panelNames[p]; ok {
		return s
	}
	return "unknown"
}

// EffectKind enumerates the side effects a key press resolves to.
type EffectKind int

const (
	EffectAppend EffectKind = iota
	EffectBackspace
	EffectClear
	EffectSubmit
	EffectEscape
	EffectCopy
	EffectPaste
	EffectCut
	EffectSelectAll
	EffectUndo
	EffectToggleListening
	EffectOpenPanel
	EffectTogglePanel
	EffectClosePanel
	EffectAdmin
	EffectNotify
)

// Effect is one resolved side effect. Route applies to buffer effects, Text
// to Append and Notify, Panel to the panel effects.
type Effect struct {
	Kind  EffectKind
	Route Route
	Text  string
	Panel Panel
}

// Context is the panel state the resolver needs.
type Context struct {
	AIOpen bool
}

func (c Context) route() Route {
	if c.AIOpen {
		return RoutePrompt
	}
	return RouteMain
}

var arrowGlyphs = map[string]string{
	"ArrowUp":    "↑",
	"ArrowDown":  "↓",
	"ArrowLeft":  "←",
	"ArrowRight": "→",
}

var ctrlShortcuts = map[string]EffectKind{
	"KeyZ": EffectUndo,
	"KeyC": EffectCopy,
	"KeyV": EffectPaste,
	"KeyX": EffectCut,
	"KeyA": EffectSelectAll,
}

// Dispatch resolves a key press against the modifier state and panel
// context. It mutates mods and returns the effects to apply in order. The
// first matching rule wins.
func Dispatch(k Key, mods *Modifiers, ctx Context) []Effect {
	route := ctx.route()

	if mods.Fn && k.HasFnLayer() {
		if k.Kind == KindNormal {
			mods.consumeTransient()
		}
		return []Effect{{Kind: EffectAppend, Route: route, Text: "[" + k.FnID + "]"}}
	}

	switch k.Kind {
	case KindModifier:
		mods.Press(k)
		return nil
	case KindToggle:
		if k.ID == "Mic" {
			return []Effect{{Kind: EffectToggleListening}}
		}
		mods.Press(k)
		return nil
	case KindSpecial:
		return dispatchSpecial(k)
	case KindAction:
		return dispatchAction(k, route)
	case KindNormal:
		return dispatchNormal(k, mods, route)
	}
	return nil
}

func dispatchSpecial(k Key) []Effect {
	switch k.ID {
	case "PSAdmin":
		return []Effect{{Kind: EffectAdmin}}
	case "AI":
		return []Effect{{Kind: EffectOpenPanel, Panel: PanelAI}}
	case "CharMap":
		return []Effect{
			{Kind: EffectOpenPanel, Panel: PanelCharMap},
			{Kind: EffectClosePanel, Panel: PanelNano},
		}
	case "Nano":
		return []Effect{
			{Kind: EffectOpenPanel, Panel: PanelNano},
			{Kind: EffectClosePanel, Panel: PanelCharMap},
		}
	case "CAD":
		return []Effect{{Kind: EffectOpenPanel, Panel: PanelSecurity}}
	case "Clipboard":
		return []Effect{{Kind: EffectTogglePanel, Panel: PanelClipboard}}
	case "Settings":
		return []Effect{{Kind: EffectOpenPanel, Panel: PanelSettings}}
	}
	return nil
}

func dispatchAction(k Key, route Route) []Effect {
	switch k.ID {
	case "Backspace":
		return []Effect{{Kind: EffectBackspace, Route: route}}
	case "Clear":
		return []Effect{{Kind: EffectClear, Route: route}}
	case "Enter":
		return []Effect{{Kind: EffectSubmit, Route: route}}
	case "Esc":
		return []Effect{{Kind: EffectEscape}}
	case "Tab":
		return []Effect{{Kind: EffectAppend, Route: route, Text: "\t"}}
	case "Copy":
		return []Effect{{Kind: EffectCopy, Route: route}}
	case "Paste":
		return []Effect{{Kind: EffectPaste, Route: route}}
	case "Cut":
		return []Effect{{Kind: EffectCut, Route: route}}
	case "SelectAll":
		return []Effect{{Kind: EffectSelectAll, Route: route}}
	case "LeftClick":
		return []Effect{{Kind: EffectNotify, Text: "Left Click"}}
	case "RightClick":
		return []Effect{{Kind: EffectNotify, Text: "Right Click"}}
	}
	return nil
}

func dispatchNormal(k Key, mods *Modifiers, route Route) []Effect {
	defer mods.consumeTransient()

	if mods.Ctrl {
		mods.Ctrl = false
		if kind, ok := ctrlShortcuts[k.ID]; ok {
			return []Effect{{Kind: kind, Route: route}}
		}
		return nil
	}

	if g, ok := arrowGlyphs[k.ID]; ok {
		return []Effect{{Kind: EffectAppend, Route: route, Text: g}}
	}

	text := Resolve(k, *mods)
	if text == "" {
		return nil
	}
	return []Effect{{Kind: EffectAppend, Route: route, Text: text}}
}

// Resolve returns the glyph a Normal key types under mods. Single letters
// are upper case iff Shift XOR CapsLock; keys with a Shifted glyph use it
// while Shift is held; icon keys type nothing.
func Resolve(k Key, mods Modifiers) string {
	glyph, ok := k.Label.Glyph()
	if !ok {
		return ""
	}
	if isLetter(glyph) {
		if mods.Upper() {
			return strings.ToUpper(glyph)
		}
		return strings.ToLower(glyph)
	}
	if k.Shifted != "" && mods.Shift {
		return k.Shifted
	}
	return glyph
}

func isLetter(s string) bool {
	r := []rune(s)
	return len(r) == 1 && r[0] < unicode.MaxASCII && unicode.IsLetter(r[0])
}
