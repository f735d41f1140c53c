package cancel

import (
	"errors"
	"sync/atomic"
)

// ErrCanceled is returned by operations that stopped because cancellation
// was requested. It is a terminal state, not a failure: callers should
// report "canceled" rather than an error message.
var ErrCanceled = errors.New("canceled")

// Token is a shared cancellation flag. One side requests cancellation
// (typically a signal handler or UI), the worker polls it at safe points.
// The flag is monotonic: once set it is never cleared for the lifetime of
// the run, so a single atomic bool is sufficient.
type Token struct {
	requested atomic.Bool
}

// New returns a fresh, un-canceled token.
func New() *Token {
	return &Token{}
}

// Request asks the worker to stop at its next check point.
// Safe to call multiple times and from any goroutine.
func (t *Token) Request() {
	if t == nil {
		return
	}
	t.requested.Store(true)
}

// Requested reports whether cancellation has been asked for.
// A nil token never cancels, so callers may pass nil to disable
// cancellation entirely.
func (t *Token) Requested() bool {
	return t != nil && t.requested.Load()
}

// Err returns ErrCanceled if cancellation has been requested, nil otherwise.
// Convenient for the common "bail out between steps" pattern.
func (t *Token) Err() error {
	if t.Requested() {
		return ErrCanceled
	}
	return nil
}
