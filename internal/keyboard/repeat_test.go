package keyboard

import (
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"pgregory.net/rapid"
)

type fakeTimer struct {
	at      time.Duration
	f       func()
	stopped bool
}

func (t *fakeTimer) Stop() bool {
	was := !t.stopped
	t.stopped = true
	return was
}

// fakeClock runs timers synchronously as time is advanced.
type fakeClock struct {
	mu     sync.Mutex
	now    time.Duration
	timers []*fakeTimer
}

func (c *fakeClock) AfterFunc(d time.Duration, f func()) Timer {
	c.mu.Lock()
	defer c.mu.Unlock()
	t := &fakeTimer{at: c.now + d, f: f}
	c.timers = append(c.timers, t)
	return t
}

func (c *fakeClock) next(limit time.Duration) *fakeTimer {
	c.mu.Lock()
	defer c.mu.Unlock()
	var best *fakeTimer
	idx := -1
	for i, t := range c.timers {
		if t.stopped || t.at > limit {
			continue
		}
		if best == nil || t.at < best.at {
			best, idx = t, i
		}
	}
	if best != nil {
		c.timers = append(c.timers[:idx], c.timers[idx+1:]...)
		c.now = best.at
	}
	return best
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	limit := c.now + d
	c.mu.Unlock()
	for {
		t := c.next(limit)
		if t == nil {
			break
		}
		t.f()
	}
	c.mu.Lock()
	c.now = limit
	c.mu.Unlock()
}

type tickLog struct {
	mu    sync.Mutex
	ticks []Tick
}

func (l *tickLog) fire(t Tick) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.ticks = append(l.ticks, t)
}

func (l *tickLog) count() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.ticks)
}

func TestRepeatable(t *testing.T) {
	l := DefaultLayout()
	tests := []struct {
		id   string
		want bool
	}{
		{"KeyA", true},
		{"Space", true},
		{"ArrowLeft", true},
		{"Backspace", true},
		{"Enter", true},
		{"Tab", true},
		{"Copy", false},
		{"Paste", false},
		{"Esc", false},
		{"Clear", false},
		{"ShiftLeft", false},
		{"AI", false},
	}
	for _, tt := range tests {
		t.Run(tt.id, func(t *testing.T) {
			require.Equal(t, tt.want, Repeatable(mustKey(t, l, tt.id)))
		})
	}
}

func TestRepeater_ReleaseBeforeDelay(t *testing.T) {
	clock := &fakeClock{}
	log := &tickLog{}
	r := NewRepeater(clock, log.fire)

	r.Press(mustKey(t, DefaultLayout(), "KeyA"))
	clock.Advance(499 * time.Millisecond)
	r.Release()
	clock.Advance(2 * time.Second)

	require.Equal(t, 1, log.count())
	require.True(t, log.ticks[0].Initial)
}

func TestRepeater_HoldFiresEveryInterval(t *testing.T) {
	clock := &fakeClock{}
	log := &tickLog{}
	r := NewRepeater(clock, log.fire)

	gen := r.Press(mustKey(t, DefaultLayout(), "Backspace"))
	clock.Advance(RepeatDelay + 3*RepeatInterval)
	require.Equal(t, 4, log.count())
	require.True(t, r.Live(gen))

	r.Release()
	require.False(t, r.Live(gen))
	clock.Advance(time.Second)
	require.Equal(t, 4, log.count())
}

func TestRepeater_NonRepeatableFiresOnce(t *testing.T) {
	clock := &fakeClock{}
	log := &tickLog{}
	r := NewRepeater(clock, log.fire)

	r.Press(mustKey(t, DefaultLayout(), "Copy"))
	clock.Advance(2 * time.Second)
	require.Equal(t, 1, log.count())
}

func TestRepeater_NewPressCancelsStale(t *testing.T) {
	clock := &fakeClock{}
	log := &tickLog{}
	r := NewRepeater(clock, log.fire)
	l := DefaultLayout()

	first := r.Press(mustKey(t, l, "KeyA"))
	clock.Advance(300 * time.Millisecond)
	second := r.Press(mustKey(t, l, "KeyB"))
	require.False(t, r.Live(first))
	require.True(t, r.Live(second))

	clock.Advance(RepeatDelay + RepeatInterval)
	for _, tk := range log.ticks[2:] {
		require.Equal(t, "KeyB", tk.KeyID)
	}
	require.Equal(t, 3, log.count())
}

func TestRepeater_HoldProperty(t *testing.T) {
	l := DefaultLayout()
	rapid.Check(t, func(rt *rapid.T) {
		n := rapid.IntRange(0, 40).Draw(rt, "n")
		clock := &fakeClock{}
		log := &tickLog{}
		r := NewRepeater(clock, log.fire)

		k, _ := l.Lookup("KeyK")
		r.Press(k)
		clock.Advance(RepeatDelay + time.Duration(n)*RepeatInterval)
		r.Release()
		clock.Advance(time.Second)

		if got := log.count(); got != 1+n {
			rt.Fatalf("held %d intervals, got %d activations", n, got)
		}
	})
}
