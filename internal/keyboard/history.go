package keyboard

// MaxHistory bounds the undo history of the main buffer.
const MaxHistory = 50

// History is the main input buffer with linear undo. It starts as [""] at
// index 0. There is no redo: a push after an undo discards the undone tail.
type History struct {
	entries []string
	index   int
}

// NewHistory returns an empty buffer.
func NewHistory() *History {
	return &History{entries: []string{""}}
}

// Value returns the current buffer contents.
func (h *History) Value() string { return h.entries[h.index] }

// Len returns the number of history entries.
func (h *History) Len() int { return len(h.entries) }

// Index returns the cursor position.
func (h *History) Index() int { return h.index }

// Push records v as the new value. Pushing the current value is a no-op.
func (h *History) Push(v string) {
	if v == h.Value() {
		return
	}
	h.entries = append(h.entries[:h.index+1], v)
	if over := len(h.entries) - MaxHistory; over > 0 {
		h.entries = append([]string(nil), h.entries[over:]...)
	}
	h.index = len(h.entries) - 1
}

// Undo steps back one entry. It reports false and leaves the buffer alone
// at the origin.
func (h *History) Undo() bool {
	if h.index == 0 {
		return false
	}
	h.index--
	return true
}

