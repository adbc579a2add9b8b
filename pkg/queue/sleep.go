package queue

import (
	"context"
	"time"
)

// Sleeper is the suspension primitive for backoffs and inter-request
// delays. Injected so tests can observe sleeps instead of waiting.
type Sleeper interface {
	Sleep(ctx context.Context, d time.Duration) error
}

// clockSleeper sleeps on the wall clock, honoring cancellation.
type clockSleeper struct{}

func (clockSleeper) Sleep(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-time.After(d):
		return nil
	}
}
