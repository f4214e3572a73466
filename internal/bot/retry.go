package bot

import (
	"context"
	"log/slog"
	"time"

	"github.com/sethvargo/go-retry"
)

const minDelay = time.Millisecond

// RetryPolicy controls how failed sends are retried with exponential backoff.
type RetryPolicy struct {
	MaxAttempts       int
	PerAttemptTimeout time.Duration
	InitialDelay      time.Duration
	MaxDelay          time.Duration
}

// DefaultRetryPolicy returns a RetryPolicy with sensible defaults:
// 4 attempts, 2m per attempt, 1s initial delay doubling up to 30s.
func DefaultRetryPolicy() *RetryPolicy {
	return &RetryPolicy{
		MaxAttempts:       4,
		PerAttemptTimeout: 2 * time.Minute,
		InitialDelay:      1 * time.Second,
		MaxDelay:          30 * time.Second,
	}
}

// NewRetryPolicy builds a policy from a retry count, which excludes the
// first attempt.
func NewRetryPolicy(retries int, perAttempt time.Duration) *RetryPolicy {
	p := DefaultRetryPolicy()
	if retries < 0 {
		retries = 0
	}
	p.MaxAttempts = retries + 1
	p.PerAttemptTimeout = perAttempt
	return p
}

func (p *RetryPolicy) backoff() retry.Backoff {
	base := p.InitialDelay
	if base < minDelay {
		base = minDelay
	}
	b := retry.NewExponential(base)
	if p.MaxDelay > 0 {
		b = retry.WithCappedDuration(p.MaxDelay, b)
	}
	attempts := p.MaxAttempts
	if attempts < 1 {
		attempts = 1
	}
	return retry.WithMaxRetries(uint64(attempts-1), b)
}

// Execute runs fn until it succeeds, MaxAttempts is reached or ctx is done.
// Every error is retried except one caused by ctx itself. The last error
// is returned unwrapped.
func (p *RetryPolicy) Execute(ctx context.Context, logger *slog.Logger, fn func(ctx context.Context) error) error {
	attempt := 0
	return retry.Do(ctx, p.backoff(), func(ctx context.Context) error {
		attempt++
		err := fn(ctx)
		if err == nil {
			return nil
		}
		if ctx.Err() != nil {
			return err
		}
		if attempt < p.MaxAttempts {
			logger.Debug("retrying send", "attempt", attempt, "max_attempts", p.MaxAttempts, "error", err)
		}
		return retry.RetryableError(err)
	})
}
