package keyboard

import (
	"testing"

	"github.com/stretchr/testify/require"
	"pgregory.net/rapid"
)

func TestHistory_UndoReverts(t *testing.T) {
	h := NewHistory()
	buf := ""
	for _, r := range "hello" {
		buf += string(r)
		h.Push(buf)
	}
	require.Equal(t, "hello", h.Value())
	require.True(t, h.Undo())
	require.Equal(t, "hell", h.Value())
}

func TestHistory_PushSameValueIsNoop(t *testing.T) {
	h := NewHistory()
	h.Push("")
	require.Equal(t, 1, h.Len())
	h.Push("x")
	h.Push("x")
	require.Equal(t, 2, h.Len())
}

func TestHistory_UndoAtOrigin(t *testing.T) {
	h := NewHistory()
	require.False(t, h.Undo())
	require.Equal(t, "", h.Value())
	require.Equal(t, 0, h.Index())
}

func TestHistory_PushAfterUndoTruncates(t *testing.T) {
	h := NewHistory()
	h.Push("a")
	h.Push("ab")
	h.Push("abc")
	h.Undo()
	h.Undo()
	h.Push("x")
	require.Equal(t, []string{"", "a", "x"}, h.entries)
	require.True(t, h.Undo())
	require.Equal(t, "a", h.Value())
}

func TestHistory_Bounded(t *testing.T) {
	h := NewHistory()
	for i := 0; i < 200; i++ {
		h.Push(string(rune('a' + i%26)) + string(rune('0'+i%10)) + string(rune(i)))
	}
	require.Equal(t, MaxHistory, h.Len())
	require.Equal(t, MaxHistory-1, h.Index())
}

func TestHistory_UndoProperty(t *testing.T) {
	rapid.Check(t, func(rt *rapid.T) {
		h := NewHistory()
		values := []string{""}
		n := rapid.IntRange(0, 80).Draw(rt, "pushes")
		for i := 0; i < n; i++ {
			v := rapid.StringMatching(`[a-c]{0,3}`).Draw(rt, "v")
			if v == values[len(values)-1] {
				continue
			}
			h.Push(v)
			values = append(values, v)
		}
		if h.Len() > MaxHistory {
			rt.Fatalf("history grew to %d", h.Len())
		}
		if len(values) > MaxHistory {
			values = values[len(values)-MaxHistory:]
		}

		k := rapid.IntRange(0, len(values)+2).Draw(rt, "undos")
		for i := 0; i < k; i++ {
			ok := h.Undo()
			want := len(values) - 1 - (i + 1)
			if want < 0 {
				if ok {
					rt.Fatalf("undo past origin succeeded")
				}
				continue
			}
			if h.Value() != values[want] {
				rt.Fatalf("after %d undos got %q want %q", i+1, h.Value(), values[want])
			}
		}
	})
}
