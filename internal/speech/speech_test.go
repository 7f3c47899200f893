package speech

import (
	"bufio"
	"context"
	"errors"
	"runtime"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

// scripted returns one step per call. A step emits its transcripts and
// then returns its error.
type scripted struct {
	steps []step
	calls int
	// cancel is invoked once the script runs out.
	cancel context.CancelFunc
}

type step struct {
	say []string
	err error
}

func (s *scripted) Run(ctx context.Context, onFinal func(string)) error {
	if s.calls >= len(s.steps) {
		s.calls++
		s.cancel()
		<-ctx.Done()
		return ctx.Err()
	}
	st := s.steps[s.calls]
	s.calls++
	for _, t := range st.say {
		onFinal(t)
	}
	return st.err
}

func newTestListener(r Recognizer, heard *[]string) (*Listener, *[]time.Duration) {
	l := NewListener(r, func(s string) { *heard = append(*heard, s) }, nil)
	var waits []time.Duration
	l.sleep = func(_ context.Context, d time.Duration) bool {
		waits = append(waits, d)
		return true
	}
	return l, &waits
}

func TestRetryPolicy_Backoff(t *testing.T) {
	p := RetryPolicy{Initial: 500 * time.Millisecond, Max: 3 * time.Second, Multiplier: 2, MaxAttempts: 5}
	require.Equal(t, 500*time.Millisecond, p.Backoff(0))
	require.Equal(t, 500*time.Millisecond, p.Backoff(1))
	require.Equal(t, time.Second, p.Backoff(2))
	require.Equal(t, 2*time.Second, p.Backoff(3))
	require.Equal(t, 3*time.Second, p.Backoff(4))
	require.Equal(t, 3*time.Second, p.Backoff(40))
}

func TestListener_restartsAfterUnexpectedEnd(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	rec := &scripted{cancel: cancel, steps: []step{
		{say: []string{"hello"}},
		{say: []string{"world"}},
	}}
	var heard []string
	l, waits := newTestListener(rec, &heard)

	require.NoError(t, l.Run(ctx))
	require.Equal(t, []string{"hello", "world"}, heard)
	require.Equal(t, 3, rec.calls)
	require.Empty(t, *waits)
}

func TestListener_startFailureBacksOff(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	startErr := &RecognitionError{Kind: KindStartFailed, Err: errors.New("busy")}
	rec := &scripted{cancel: cancel, steps: []step{
		{err: startErr},
		{err: startErr},
		{say: []string{"ok"}},
	}}
	var heard []string
	l, waits := newTestListener(rec, &heard)

	require.NoError(t, l.Run(ctx))
	require.Equal(t, []string{"ok"}, heard)
	require.Equal(t, []time.Duration{500 * time.Millisecond, time.Second}, *waits)
}

func TestListener_startFailureGivesUp(t *testing.T) {
	startErr := &RecognitionError{Kind: KindStartFailed, Err: errors.New("no device")}
	steps := make([]step, 10)
	for i := range steps {
		steps[i] = step{err: startErr}
	}
	rec := &scripted{steps: steps, cancel: func() {}}
	var heard []string
	l, waits := newTestListener(rec, &heard)

	err := l.Run(context.Background())
	require.Equal(t, KindStartFailed, KindOf(err))
	require.Len(t, *waits, DefaultRetryPolicy.MaxAttempts)
	require.Equal(t, DefaultRetryPolicy.MaxAttempts+1, rec.calls)
}

func TestListener_fatalKindsStop(t *testing.T) {
	for _, kind := range []ErrorKind{KindPermissionDenied, KindNetwork, KindOther} {
		t.Run(string(kind), func(t *testing.T) {
			rec := &scripted{cancel: func() {}, steps: []step{
				{say: []string{"partial"}, err: &RecognitionError{Kind: kind}},
				{say: []string{"never"}},
			}}
			var heard []string
			l, _ := newTestListener(rec, &heard)

			err := l.Run(context.Background())
			require.Equal(t, kind, KindOf(err))
			require.Equal(t, []string{"partial"}, heard)
			require.Equal(t, 1, rec.calls)
		})
	}
}

func TestListener_silentEndsAreBounded(t *testing.T) {
	steps := make([]step, 10)
	rec := &scripted{steps: steps, cancel: func() {}}
	var heard []string
	l, _ := newTestListener(rec, &heard)

	err := l.Run(context.Background())
	require.Equal(t, KindStartFailed, KindOf(err))
	require.Equal(t, DefaultRetryPolicy.MaxAttempts+1, rec.calls)
}

func TestListener_cancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	rec := &scripted{cancel: cancel, steps: []step{{say: []string{"x"}}}}
	var heard []string
	l, _ := newTestListener(rec, &heard)

	require.NoError(t, l.Run(ctx))
	require.Zero(t, rec.calls)
}

func TestKindOf(t *testing.T) {
	require.Equal(t, KindOther, KindOf(errors.New("plain")))
	wrapped := errors.Join(errors.New("ctx"), &RecognitionError{Kind: KindNetwork})
	require.Equal(t, KindNetwork, KindOf(wrapped))
}

func TestNewCommandRecognizer(t *testing.T) {
	c := NewCommandRecognizer("  whisper-stream  --lang en ")
	require.Equal(t, "whisper-stream", c.Name)
	require.Equal(t, []string{"--lang", "en"}, c.Args)

	empty := NewCommandRecognizer("")
	err := empty.Run(context.Background(), func(string) {})
	require.Equal(t, KindStartFailed, KindOf(err))
}

func TestCommandRecognizer_Run(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("uses sh")
	}

	t.Run("lines become transcripts", func(t *testing.T) {
		c := &CommandRecognizer{Name: "sh", Args: []string{"-c", `printf 'dir\n\n  whoami  \n'`}}
		var got []string
		require.NoError(t, c.Run(context.Background(), func(s string) { got = append(got, s) }))
		require.Equal(t, []string{"dir", "whoami"}, got)
	})

	tests := []struct {
		script string
		want   ErrorKind
	}{
		{"echo denied >&2; exit 77", KindPermissionDenied},
		{"exit 69", KindNetwork},
		{"exit 3", KindOther},
	}
	for _, tt := range tests {
		t.Run(string(tt.want), func(t *testing.T) {
			c := &CommandRecognizer{Name: "sh", Args: []string{"-c", tt.script}}
			err := c.Run(context.Background(), func(string) {})
			require.Equal(t, tt.want, KindOf(err))
		})
	}

	t.Run("oversized line stops the recognizer", func(t *testing.T) {
		script := `head -c 2000000 /dev/zero | tr '\0' a; echo; exec sleep 30`
		c := &CommandRecognizer{Name: "sh", Args: []string{"-c", script}}
		done := make(chan error, 1)
		go func() { done <- c.Run(context.Background(), func(string) {}) }()

		select {
		case err := <-done:
			require.Equal(t, KindOther, KindOf(err))
			require.ErrorIs(t, err, bufio.ErrTooLong)
		case <-time.After(10 * time.Second):
			t.Fatal("recognizer kept running after an unreadable line")
		}
	})

	t.Run("missing binary", func(t *testing.T) {
		c := &CommandRecognizer{Name: "winkb-no-such-recognizer"}
		err := c.Run(context.Background(), func(string) {})
		require.Equal(t, KindStartFailed, KindOf(err))
	})
}
