// Package retrypolicy provides a single retry-with-fallback policy object
// shared by every external dependency: the terminology source, the
// completion backends, and the extraction service each get a Policy instead
// of ad-hoc retry loops.
package retrypolicy

import (
	"context"
	"time"
)

// Policy bounds retries of an external call. MaxAttempts counts the first
// attempt (1 = no retries). Delay is multiplied by Backoff after each
// failed attempt.
type Policy struct {
	MaxAttempts int
	Delay       time.Duration
	Backoff     float64
}

// Default is the policy used when a caller passes the zero value.
var Default = Policy{MaxAttempts: 2, Delay: time.Second, Backoff: 2.0}

func (p Policy) normalized() Policy {
	if p.MaxAttempts <= 0 {
		p = Default
	}
	if p.Backoff < 1 {
		p.Backoff = 1
	}
	return p
}

// Do runs op up to MaxAttempts times, sleeping between attempts. The last
// error is returned; ctx cancellation aborts the wait and returns ctx.Err().
func (p Policy) Do(ctx context.Context, op func(ctx context.Context) error) error {
	p = p.normalized()

	var err error
	delay := p.Delay
	for attempt := 1; attempt <= p.MaxAttempts; attempt++ {
		if err = op(ctx); err == nil {
			return nil
		}
		if attempt == p.MaxAttempts {
			break
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(delay):
		}
		delay = time.Duration(float64(delay) * p.Backoff)
	}
	return err
}

// DoValue is Do for operations returning a value.
func DoValue[T any](ctx context.Context, p Policy, op func(ctx context.Context) (T, error)) (T, error) {
	var result T
	err := p.Do(ctx, func(ctx context.Context) error {
		var opErr error
		result, opErr = op(ctx)
		return opErr
	})
	return result, err
}

// DoValueOr is DoValue with a fallback producer: when every attempt fails
// the fallback result is returned together with the causing error, letting
// callers degrade while still logging an attributable cause.
func DoValueOr[T any](ctx context.Context, p Policy, op func(ctx context.Context) (T, error), fallback func() T) (T, error) {
	result, err := DoValue(ctx, p, op)
	if err != nil {
		return fallback(), err
	}
	return result, nil
}
