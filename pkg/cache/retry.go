package cache

import (
	"context"
	"errors"
	"time"
)

// ErrNetwork marks failures reaching a remote cache or store.
var ErrNetwork = errors.New("network error")

// RetryAttempts is how many times RetryWithBackoff calls fn.
const RetryAttempts = 3

// RetryDelay is the wait before the first retry. It doubles after each
// attempt.
var RetryDelay = time.Second

type retryable struct{ err error }

func (e retryable) Error() string { return e.err.Error() }
func (e retryable) Unwrap() error { return e.err }

// Retryable marks err as transient. Retryable(nil) is nil.
func Retryable(err error) error {
	if err == nil {
		return nil
	}
	return retryable{err}
}

// IsRetryable reports whether err was marked by Retryable.
func IsRetryable(err error) bool {
	return errors.As(err, new(retryable))
}

// RetryWithBackoff calls fn until it succeeds, returns an error not marked
// Retryable, or RetryAttempts calls have failed. The last error is returned.
func RetryWithBackoff(ctx context.Context, fn func() error) error {
	delay := RetryDelay
	var err error
	for attempt := 1; ; attempt++ {
		if err = fn(); err == nil || !IsRetryable(err) || attempt == RetryAttempts {
			return err
		}
		t := time.NewTimer(delay)
		select {
		case <-ctx.Done():
			t.Stop()
			return ctx.Err()
		case <-t.C:
		}
		delay *= 2
	}
}
