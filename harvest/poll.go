package harvest

import (
	"context"
	"time"
)

// Clock abstracts time so waits can be driven by tests.
type Clock interface {
	Now() time.Time
	After(d time.Duration) <-chan time.Time
}

// SystemClock is the wall clock.
type SystemClock struct{}

func (SystemClock) Now() time.Time                         { return time.Now() }
func (SystemClock) After(d time.Duration) <-chan time.Time { return time.After(d) }

// defaultPollInterval is used when a non-positive interval is given.
const defaultPollInterval = 100 * time.Millisecond

// Poll evaluates cond immediately and then every interval until it returns
// true (nil), the bound elapses (ErrPollTimeout) or ctx is done (ctx.Err()).
// The condition gets one last evaluation at the bound, so ErrPollTimeout is
// never returned before bound has passed on clock.
func Poll(ctx context.Context, clock Clock, interval, bound time.Duration, cond func(context.Context) bool) error {
	if interval <= 0 {
		interval = defaultPollInterval
	}
	deadline := clock.Now().Add(bound)

	for {
		if cond(ctx) {
			return nil
		}

		now := clock.Now()
		if !now.Before(deadline) {
			return ErrPollTimeout
		}

		wait := interval
		if remaining := deadline.Sub(now); remaining < wait {
			wait = remaining
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-clock.After(wait):
		}
	}
}
