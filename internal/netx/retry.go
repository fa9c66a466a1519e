package netx

import (
	"context"
	"time"

	"github.com/sethvargo/go-retry"
)

// Policy bounds retries of one network operation. Attempts is the number of
// extra tries after the first; zero means the call is made exactly once.
type Policy struct {
	Attempts  int
	BaseDelay time.Duration
}

// Do runs fn under p with exponential backoff. Only errors accepted by
// Retryable are retried; the last error is returned unchanged.
func (p Policy) Do(ctx context.Context, fn func(ctx context.Context) error) error {
	base := p.BaseDelay
	if base <= 0 {
		base = 100 * time.Millisecond
	}
	attempts := p.Attempts
	if attempts < 0 {
		attempts = 0
	}

	b := retry.WithMaxRetries(uint64(attempts), retry.NewExponential(base))

	return retry.Do(ctx, b, func(ctx context.Context) error {
		err := fn(ctx)
		if Retryable(err) {
			return retry.RetryableError(err)
		}
		return err
	})
}
