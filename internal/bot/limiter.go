package bot

import (
	"context"

	"golang.org/x/sync/semaphore"
)

// Limiter caps the number of in-flight exchanges across every bot that
// shares it. A nil Limiter imposes no limit.
type Limiter struct {
	sem *semaphore.Weighted
}

// NewLimiter allows up to n concurrent exchanges. n below one is treated
// as one.
func NewLimiter(n int64) *Limiter {
	if n < 1 {
		n = 1
	}
	return &Limiter{sem: semaphore.NewWeighted(n)}
}

// Acquire blocks until a slot is free or ctx is done.
func (l *Limiter) Acquire(ctx context.Context) error {
	if l == nil {
		return nil
	}
	return l.sem.Acquire(ctx, 1)
}

// Release returns a slot taken by Acquire.
func (l *Limiter) Release() {
	if l == nil {
		return
	}
	l.sem.Release(1)
}
