package keyboard

// MaxClipboard bounds the clipboard history.
const MaxClipboard = 20

// ClipboardHistory keeps copied text most recent first, without duplicates.
type ClipboardHistory struct {
	items []string
}

// Add records s at the front. Re-adding an existing entry moves it to the
// front. Empty strings are ignored.
func (c *ClipboardHistory) Add(s string) {
	if s == "" {
		return
	}
	next := make([]string, 0, len(c.items)+1)
	next = append(next, s)
	for _, it := range c.items {
		if it != s {
			next = append(next, it)
		}
	}
	if len(next) > MaxClipboard {
		next = next[:MaxClipboard]
	}
	c.items = next
}

// Items returns a copy of the entries, most recent first.
func (c *ClipboardHistory) Items() []string {
	return append([]string(nil), c.items...)
}

// Front returns the most recent entry.
func (c *ClipboardHistory) Front() (string, bool) {
	if len(c.items) == 0 {
		return "", false
	}
	return c.items[0], true
}

// Len returns the number of entries.
func (c *ClipboardHistory) Len() int { return len(c.items) }

