package retry

import (
	"context"
	"errors"
	"fmt"
	"time"
)

const (
	DefaultAttempts = 4
	DefaultDelay    = 100 * time.Millisecond
)

// Policy describes a bounded retry loop with a fixed delay between attempts.
type Policy struct {
	Attempts int
	Delay    time.Duration
	// Linear multiplies Delay by the number of attempts made so far.
	Linear bool
	// Retryable reports whether an error may be retried. Nil means every error is retryable.
	Retryable func(error) bool
	// Sleep waits between attempts and must return early with ctx.Err() on cancellation.
	Sleep func(ctx context.Context, d time.Duration) error
}

func DefaultPolicy() Policy {
	return Policy{
		Attempts: DefaultAttempts,
		Delay:    DefaultDelay,
	}
}

// Failure is returned when every attempt failed with a retryable error.
type Failure struct {
	Attempts int
	Err      error
}

func (f *Failure) Error() string {
	return fmt.Sprintf("failed after %d attempts: %v", f.Attempts, f.Err)
}

func (f *Failure) Unwrap() error {
	return f.Err
}

// Do runs op until it succeeds, returns a non-retryable error or the attempts are exhausted.
// Cancellation of ctx stops the loop and is returned as is.
func Do[T any](ctx context.Context, p Policy, op func(ctx context.Context) (T, error)) (T, error) {
	var zero T
	attempts := p.Attempts
	if attempts < 1 {
		attempts = 1
	}
	sleep := p.Sleep
	if sleep == nil {
		sleep = Sleep
	}
	var lastErr error
	for i := 0; i < attempts; i++ {
		if i > 0 {
			delay := p.Delay
			if p.Linear {
				delay *= time.Duration(i)
			}
			if err := sleep(ctx, delay); err != nil {
				return zero, err
			}
		}
		if err := ctx.Err(); err != nil {
			return zero, err
		}
		res, err := op(ctx)
		if err == nil {
			return res, nil
		}
		if isCancellation(ctx, err) {
			return zero, err
		}
		if p.Retryable != nil && !p.Retryable(err) {
			return zero, err
		}
		lastErr = err
	}
	return zero, &Failure{Attempts: attempts, Err: lastErr}
}

func isCancellation(ctx context.Context, err error) bool {
	return ctx.Err() != nil && (errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded))
}

// Sleep waits for d or until ctx is done.
func Sleep(ctx context.Context, d time.Duration) error {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}
