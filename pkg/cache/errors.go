package cache

import (
	"context"
	"errors"
	"time"
)

// ErrBackend is returned when the cache backend cannot be reached.
var ErrBackend = errors.New("cache backend unavailable")

// RetryableError marks a transient failure worth another attempt.
type RetryableError struct{ Err error }

func (e *RetryableError) Error() string { return e.Err.Error() }
func (e *RetryableError) Unwrap() error { return e.Err }

// Retryable marks err as transient. A nil err stays nil.
func Retryable(err error) error {
	if err == nil {
		return nil
	}
	return &RetryableError{Err: err}
}

// IsRetryable reports whether err was marked with [Retryable].
func IsRetryable(err error) bool {
	var re *RetryableError
	return errors.As(err, &re)
}

// RetryAttempts is the number of calls [RetryWithBackoff] makes at most.
const RetryAttempts = 3

// RetryDelay is the wait before the first retry. It doubles on every attempt.
var RetryDelay = 100 * time.Millisecond

// RetryWithBackoff calls fn until it succeeds, fails with an error not
// marked [Retryable], or RetryAttempts calls were made. The last error is
// returned unwrapped from its retry mark.
func RetryWithBackoff(ctx context.Context, fn func() error) error {
	delay := RetryDelay
	var err error
	for attempt := range RetryAttempts {
		if attempt > 0 {
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(delay):
				delay *= 2
			}
		}
		if err = fn(); !IsRetryable(err) {
			return err
		}
	}
	return errors.Unwrap(err)
}
