// Package retry provides the retry policy shared by catalog search and
// recommendations.
package retry

import (
	"context"
	"time"

	"github.com/justestif/moodtune/internal/apperr"
)

const (
	// DefaultMaxAttempts is the attempt cap per operation, first try included.
	DefaultMaxAttempts = 5

	// DefaultBaseDelay is the step of the default linear backoff.
	DefaultBaseDelay = time.Second
)

// Policy decides how often and how patiently an operation is retried.
type Policy struct {
	MaxAttempts int
	Backoff     func(attempt int) time.Duration
	IsTransient func(err error) bool

	// Observer, if set, is called before each backoff sleep.
	Observer func(op string, attempt int, delay time.Duration, err error)
}

// DefaultPolicy returns 5 attempts with a 1s, 2s, 3s, 4s backoff, retrying
// only transient network errors.
func DefaultPolicy() Policy {
	return Policy{
		MaxAttempts: DefaultMaxAttempts,
		Backoff:     Linear(DefaultBaseDelay),
		IsTransient: apperr.IsTransient,
	}
}

// Linear returns a backoff that waits base*(attempt+1) after the given
// zero-based attempt.
func Linear(base time.Duration) func(int) time.Duration {
	return func(attempt int) time.Duration {
		return base * time.Duration(attempt+1)
	}
}

// Exponential returns a backoff that waits base*2^attempt, capped at max.
func Exponential(base, max time.Duration) func(int) time.Duration {
	return func(attempt int) time.Duration {
		if attempt >= 30 {
			return max
		}
		d := base * time.Duration(1<<attempt)
		if d > max || d <= 0 {
			return max
		}
		return d
	}
}

// WithObserver returns a copy of p that also reports retries to fn. An
// observer already set on p keeps being called first.
func (p Policy) WithObserver(fn func(op string, attempt int, delay time.Duration, err error)) Policy {
	prev := p.Observer
	if prev == nil {
		p.Observer = fn
		return p
	}
	p.Observer = func(op string, attempt int, delay time.Duration, err error) {
		prev(op, attempt, delay, err)
		fn(op, attempt, delay, err)
	}
	return p
}

// Do runs fn until it succeeds, fails with a non-transient error, or the
// attempt cap is reached. The last error is returned unchanged.
func (p Policy) Do(ctx context.Context, op string, fn func(context.Context) error) error {
	attempts := p.MaxAttempts
	if attempts <= 0 {
		attempts = 1
	}
	isTransient := p.IsTransient
	if isTransient == nil {
		isTransient = apperr.IsTransient
	}

	var err error
	for attempt := 0; attempt < attempts; attempt++ {
		if err = ctx.Err(); err != nil {
			return err
		}

		err = fn(ctx)
		if err == nil {
			return nil
		}
		if !isTransient(err) || attempt == attempts-1 {
			return err
		}

		var delay time.Duration
		if p.Backoff != nil {
			delay = p.Backoff(attempt)
		}
		if p.Observer != nil {
			p.Observer(op, attempt+1, delay, err)
		}
		if err := sleepWithContext(ctx, delay); err != nil {
			return err
		}
	}
	return err
}

// Value is Do for operations that produce a result.
func Value[T any](ctx context.Context, p Policy, op string, fn func(context.Context) (T, error)) (T, error) {
	var out T
	err := p.Do(ctx, op, func(ctx context.Context) error {
		v, err := fn(ctx)
		if err != nil {
			return err
		}
		out = v
		return nil
	})
	return out, err
}

func sleepWithContext(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return nil
	}
	timer := time.NewTimer(d)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
