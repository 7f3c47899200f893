// Package speech runs continuous voice recognition and feeds final
// transcripts back to the keyboard.
package speech

import (
	"context"
	"errors"
	"fmt"
	"math"
	"time"

	"github.com/batalabs/winkb/internal/config"
)

// ErrorKind classifies recognition failures.
type ErrorKind string

const (
	KindPermissionDenied ErrorKind = "permission-denied"
	KindNetwork          ErrorKind = "network"
	KindStartFailed      ErrorKind = "start-failed"
	KindOther            ErrorKind = "other"
)

// RecognitionError is returned by a Recognizer when a session fails.
type RecognitionError struct {
	Kind ErrorKind
	Err  error
}

func (e *RecognitionError) Error() string {
	if e.Err == nil {
		return "speech: " + string(e.Kind)
	}
	return fmt.Sprintf("speech: %s: %v", e.Kind, e.Err)
}

func (e *RecognitionError) Unwrap() error { return e.Err }

// KindOf returns the kind of err, or KindOther when err is not a
// *RecognitionError.
func KindOf(err error) ErrorKind {
	var re *RecognitionError
	if errors.As(err, &re) {
		return re.Kind
	}
	return KindOther
}

// Recognizer runs one recognition session. onFinal is called for every
// final transcript. A nil return means the session ended on its own.
type Recognizer interface {
	Run(ctx context.Context, onFinal func(string)) error
}

// RetryPolicy bounds restarts after start failures.
type RetryPolicy struct {
	Initial     time.Duration
	Max         time.Duration
	Multiplier  float64
	MaxAttempts int
}

// DefaultRetryPolicy starts at 500ms and gives up after five attempts.
var DefaultRetryPolicy = RetryPolicy{
	Initial:     500 * time.Millisecond,
	Max:         8 * time.Second,
	Multiplier:  2,
	MaxAttempts: 5,
}

// Backoff returns the wait before retry attempt n (1-based).
func (p RetryPolicy) Backoff(n int) time.Duration {
	if n < 1 {
		n = 1
	}
	d := time.Duration(float64(p.Initial) * math.Pow(p.Multiplier, float64(n-1)))
	if d > p.Max || d < 0 {
		d = p.Max
	}
	return d
}

// Listener keeps a Recognizer running until its context is cancelled or a
// fatal error occurs.
type Listener struct {
	Recognizer Recognizer
	Policy     RetryPolicy
	OnFinal    func(string)
	Log        *config.Logger

	sleep func(ctx context.Context, d time.Duration) bool
}

// NewListener returns a listener with the default retry policy.
func NewListener(r Recognizer, onFinal func(string), log *config.Logger) *Listener {
	return &Listener{
		Recognizer: r,
		Policy:     DefaultRetryPolicy,
		OnFinal:    onFinal,
		Log:        log,
		sleep:      sleepWithContext,
	}
}

// Run blocks until ctx is cancelled (returns nil) or recognition fails
// for good. Sessions that end on their own are restarted immediately.
// Start failures are retried with backoff. Sessions that end without
// producing a transcript count as failed attempts so a recognizer that
// exits at once cannot spin forever.
func (l *Listener) Run(ctx context.Context) error {
	sleep := l.sleep
	if sleep == nil {
		sleep = sleepWithContext
	}
	attempts := 0

	for {
		if ctx.Err() != nil {
			return nil
		}

		heard := false
		err := l.Recognizer.Run(ctx, func(text string) {
			heard = true
			if l.OnFinal != nil {
				l.OnFinal(text)
			}
		})
		if ctx.Err() != nil {
			return nil
		}
		if heard {
			attempts = 0
		}

		if err == nil {
			if heard {
				continue
			}
			attempts++
			if attempts > l.Policy.MaxAttempts {
				return &RecognitionError{Kind: KindStartFailed, Err: errors.New("recognizer keeps ending without input")}
			}
			l.Log.Printf("speech: session ended, restarting (%d/%d)", attempts, l.Policy.MaxAttempts)
			continue
		}

		switch KindOf(err) {
		case KindStartFailed:
			attempts++
			if attempts > l.Policy.MaxAttempts {
				l.Log.Printf("speech: giving up after %d start failures: %v", attempts-1, err)
				return err
			}
			wait := l.Policy.Backoff(attempts)
			l.Log.Printf("speech: start failed, retrying in %s (%d/%d): %v", wait, attempts, l.Policy.MaxAttempts, err)
			if !sleep(ctx, wait) {
				return nil
			}
		default:
			l.Log.Printf("speech: stopped: %v", err)
			return err
		}
	}
}

func sleepWithContext(ctx context.Context, d time.Duration) bool {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-t.C:
		return true
	case <-ctx.Done():
		return false
	}
}
