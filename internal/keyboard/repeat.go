package keyboard

import (
	"sync"
	"time"
)

const (
	RepeatDelay    = 500 * time.Millisecond
	RepeatInterval = 50 * time.Millisecond
)

var (
	repeatIDs   = map[string]bool{"Backspace": true, "Enter": true, "Tab": true}
	noRepeatIDs = map[string]bool{"Copy": true, "Paste": true, "Esc": true, "Clear": true}
)

// Repeatable reports whether holding k auto-repeats.
func Repeatable(k Key) bool {
	if noRepeatIDs[k.ID] {
		return false
	}
	return k.Kind == KindNormal || repeatIDs[k.ID]
}

// Timer is a cancellable pending callback.
type Timer interface {
	Stop() bool
}

// Scheduler arms callbacks. Tests inject a fake clock.
type Scheduler interface {
	AfterFunc(d time.Duration, f func()) Timer
}

type wallScheduler struct{}

func (wallScheduler) AfterFunc(d time.Duration, f func()) Timer { return time.AfterFunc(d, f) }

// WallClock schedules on real timers.
var WallClock Scheduler = wallScheduler{}

// Tick is one key activation produced by the repeater. Initial is set for
// the activation fired by Press itself.
type Tick struct {
	KeyID   string
	Gen     uint64
	Initial bool
}

// Repeater drives press-and-hold repeat for one key at a time. Every press
// and release bumps the generation so a tick that raced with a release can
// be rejected with Live.
type Repeater struct {
	sched Scheduler
	fire  func(Tick)

	mu     sync.Mutex
	gen    uint64
	keyID  string
	active bool
	timer  Timer
}

// NewRepeater returns a repeater that reports activations to fire. fire is
// called from timer goroutines and must not block.
func NewRepeater(sched Scheduler, fire func(Tick)) *Repeater {
	if sched == nil {
		sched = WallClock
	}
	return &Repeater{sched: sched, fire: fire}
}

// Press cancels any previous key, fires one activation and, when the key
// repeats, arms the delay timer.
func (r *Repeater) Press(k Key) uint64 {
	r.mu.Lock()
	r.cancelLocked()
	r.gen++
	gen := r.gen
	r.keyID = k.ID
	r.active = true
	if Repeatable(k) {
		r.timer = r.sched.AfterFunc(RepeatDelay, func() { r.startInterval(gen) })
	}
	r.mu.Unlock()

	r.fire(Tick{KeyID: k.ID, Gen: gen, Initial: true})
	return gen
}

func (r *Repeater) startInterval(gen uint64) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if !r.liveLocked(gen) {
		return
	}
	r.timer = r.sched.AfterFunc(RepeatInterval, func() { r.tick(gen) })
}

func (r *Repeater) tick(gen uint64) {
	r.mu.Lock()
	if !r.liveLocked(gen) {
		r.mu.Unlock()
		return
	}
	id := r.keyID
	r.timer = r.sched.AfterFunc(RepeatInterval, func() { r.tick(gen) })
	r.mu.Unlock()

	r.fire(Tick{KeyID: id, Gen: gen})
}

// Release stops repeating and invalidates the current generation. A tick
// already past its Live check when Release runs is rejected by Live.
func (r *Repeater) Release() {
	r.mu.Lock()
	defer r.mu.Unlock()
	if !r.active {
		return
	}
	r.cancelLocked()
	r.gen++
}

// Stop releases the key on teardown.
func (r *Repeater) Stop() { r.Release() }

// Live reports whether gen belongs to the key still held.
func (r *Repeater) Live(gen uint64) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.liveLocked(gen)
}

// Held returns the ID of the key being held, if any.
func (r *Repeater) Held() (string, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.keyID, r.active
}

func (r *Repeater) liveLocked(gen uint64) bool {
	return r.active && gen == r.gen
}

func (r *Repeater) cancelLocked() {
	if r.timer != nil {
		r.timer.Stop()
		r.timer = nil
	}
	r.active = false
	r.keyID = ""
}
