package fetcher

import (
	"context"
	"sync"
	"time"
)

// Limiter enforces a minimum delay between outgoing requests. The delay
// is shared by every worker using the same Fetcher and grows when a
// remote answers 429, so one rate-limited source slows the whole run
// down instead of hammering on.
type Limiter struct {
	mu    sync.Mutex
	delay time.Duration
	max   time.Duration
	next  time.Time
}

// NewLimiter builds a limiter starting at min delay, never exceeding max.
func NewLimiter(min, max time.Duration) *Limiter {
	if min <= 0 {
		min = time.Second
	}
	if max < min {
		max = min
	}
	return &Limiter{delay: min, max: max}
}

// Wait blocks until the caller may issue the next request. Each caller
// reserves its own slot, so concurrent workers queue up behind each
// other rather than firing simultaneously.
func (l *Limiter) Wait(ctx context.Context) error {
	l.mu.Lock()
	now := time.Now()
	slot := l.next
	if slot.Before(now) {
		slot = now
	}
	l.next = slot.Add(l.delay)
	l.mu.Unlock()

	wait := time.Until(slot)
	if wait <= 0 {
		return nil
	}

	timer := time.NewTimer(wait)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

// Raise doubles the inter-request delay, capped at max. Called on 429.
func (l *Limiter) Raise() {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.delay *= 2
	if l.delay > l.max {
		l.delay = l.max
	}
}

// Delay returns the current inter-request delay.
func (l *Limiter) Delay() time.Duration {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.delay
}
