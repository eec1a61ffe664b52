package transport

import (
	"context"
	"time"

	"github.com/cenkalti/backoff/v4"

	"github.com/moh-tz/hfrsync/pkg/constants"
)

// Policy bounds a retry loop.
type Policy struct {
	// Attempts is the total number of tries, including the first.
	Attempts int
	// Backoff is the wait before the second attempt. Zero retries immediately.
	Backoff time.Duration
	// MaxBackoff caps the exponential growth of the wait.
	MaxBackoff time.Duration
}

// DefaultPolicy returns a policy with the given ceiling and the default waits.
func DefaultPolicy(attempts int) Policy {
	return Policy{
		Attempts:   attempts,
		Backoff:    constants.RetryBackoff,
		MaxBackoff: constants.MaxRetryBackoff,
	}
}

// NotifyFunc is called after every failed attempt. next is the wait before
// the following attempt, or zero when the ceiling has been reached.
type NotifyFunc func(attempt int, err error, next time.Duration)

// Permanent marks err as not worth retrying.
func Permanent(err error) error {
	return backoff.Permanent(err)
}

func (p Policy) backOff(ctx context.Context) backoff.BackOff {
	var b backoff.BackOff = &backoff.ZeroBackOff{}
	if p.Backoff > 0 {
		exp := backoff.NewExponentialBackOff()
		exp.InitialInterval = p.Backoff
		exp.MaxInterval = p.MaxBackoff
		if exp.MaxInterval < p.Backoff {
			exp.MaxInterval = p.Backoff
		}
		exp.MaxElapsedTime = 0
		b = exp
	}
	attempts := p.Attempts
	if attempts < 1 {
		attempts = 1
	}
	return backoff.WithContext(backoff.WithMaxRetries(b, uint64(attempts-1)), ctx)
}

// Retry runs op until it succeeds, returns a Permanent error, the context
// ends, or the policy's attempt ceiling is reached. It returns the number of
// attempts made and the last error.
func Retry(ctx context.Context, p Policy, op func(ctx context.Context) error, notify NotifyFunc) (int, error) {
	attempt := 0
	err := backoff.RetryNotify(
		func() error {
			attempt++
			return op(ctx)
		},
		p.backOff(ctx),
		func(err error, next time.Duration) {
			if notify != nil {
				notify(attempt, err, next)
			}
		},
	)
	if err != nil && notify != nil {
		notify(attempt, err, 0)
	}
	return attempt, err
}
