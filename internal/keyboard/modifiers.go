package keyboard

// Modifiers is the latched modifier state. CapsLock and Fn persist until
// toggled again. Shift and Alt clear after a Normal key. Ctrl clears once a
// Normal key consumes it. Win is a plain toggle with no typing effect.
type Modifiers struct {
	CapsLock bool
	Shift    bool
	Ctrl     bool
	Alt      bool
	Win      bool
	Fn       bool
}

// Upper reports whether letters resolve to upper case.
func (m Modifiers) Upper() bool { return m.Shift != m.CapsLock }

// Press applies a Modifier or Toggle key. It reports whether the key changed
// modifier state; Mic and non-modifier keys return false.
func (m *Modifiers) Press(k Key) bool {
	switch k.Kind {
	case KindModifier:
		switch k.ID {
		case "ShiftLeft", "ShiftRight":
			m.Shift = !m.Shift
		case "ControlLeft", "ControlRight":
			m.Ctrl = !m.Ctrl
		case "AltLeft", "AltRight":
			m.Alt = !m.Alt
		case "Win":
			m.Win = !m.Win
		default:
			return false
		}
		return true
	case KindToggle:
		switch k.ID {
		case "CapsLock":
			m.CapsLock = !m.CapsLock
		case "Fn":
			m.Fn = !m.Fn
		default:
			return false
		}
		return true
	}
	return false
}

// consumeTransient clears the one-shot modifiers after a Normal key.
func (m *Modifiers) consumeTransient() {
	m.Shift = false
	m.Alt = false
}
