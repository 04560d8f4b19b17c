package retry

import (
	"context"
	"time"

	"github.com/cenkalti/backoff/v4"
)

// maxAttempts is the total try budget shared by transport operations and the
// whole-run wrapper.
const maxAttempts = 3

// Policy returns the shared schedule: delays start at 4s, double each
// attempt, and never exceed 60s.
func Policy() backoff.BackOff {
	b := backoff.NewExponentialBackOff()
	b.InitialInterval = 4 * time.Second
	b.RandomizationFactor = 0
	b.Multiplier = 2
	b.MaxInterval = 60 * time.Second
	b.MaxElapsedTime = 0
	return backoff.WithMaxRetries(b, maxAttempts-1)
}

// Do runs op under Policy, stopping between attempts if ctx is done.
func Do(ctx context.Context, op backoff.Operation) error {
	return DoWith(ctx, Policy(), op)
}

// DoWith runs op under an explicit schedule; tests pass a zero-delay one.
func DoWith(ctx context.Context, b backoff.BackOff, op backoff.Operation) error {
	return backoff.Retry(op, backoff.WithContext(b, ctx))
}
