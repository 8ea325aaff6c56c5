// Package timeout bounds calls to external dependencies. Every engine
// operation runs under a deadline so a slow store surfaces as ErrTimeout
// instead of hanging the caller.
package timeout

import (
	"context"
	"errors"
	"time"
)

// ErrTimeout is returned when an operation exceeds its configured deadline.
// It is retriable by the caller; the engine never retries internally.
var ErrTimeout = errors.New("operation timed out")

// Guard derives a context bounded by d. A non-positive d leaves the parent
// untouched.
func Guard(ctx context.Context, d time.Duration) (context.Context, context.CancelFunc) {
	if d <= 0 {
		return ctx, func() {}
	}
	return context.WithTimeout(ctx, d)
}

// Map translates a deadline expiry into ErrTimeout and leaves every other
// error untouched.
func Map(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return ErrTimeout
	}
	return err
}
