// Package retry provides a bounded retry wrapper for transient failures of
// model and store calls.
package retry

import (
	"context"
	"time"
)

const (
	// DefaultAttempts is the number of retries after the first failure.
	DefaultAttempts = 2
	// DefaultBackoff is the delay before the first retry; it doubles on
	// each subsequent one.
	DefaultBackoff = 500 * time.Millisecond
)

// Do runs fn, retrying up to attempts additional times while transient
// classifies the error as retryable. Permanent errors return immediately.
func Do(ctx context.Context, attempts int, backoff time.Duration, transient func(error) bool, fn func() error) error {
	var err error
	for i := 0; ; i++ {
		err = fn()
		if err == nil {
			return nil
		}
		if i >= attempts || !transient(err) {
			return err
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(backoff):
		}
		backoff *= 2
	}
}
