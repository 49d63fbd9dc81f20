package harvest

import (
	"context"
	"math/rand"
	"time"
)

// Pacer spaces out page interactions: a fixed settle delay after every UI
// mutation and randomized pauses between combinations and sections.
type Pacer struct {
	clock  Clock
	rng    *rand.Rand
	settle time.Duration
}

// NewPacer creates a Pacer. A nil rng is seeded from the clock.
func NewPacer(clock Clock, rng *rand.Rand, settle time.Duration) *Pacer {
	if rng == nil {
		rng = rand.New(rand.NewSource(clock.Now().UnixNano()))
	}
	return &Pacer{clock: clock, rng: rng, settle: settle}
}

// Jitter picks a duration uniformly in [min, max].
func (p *Pacer) Jitter(min, max time.Duration) time.Duration {
	if max <= min {
		return min
	}
	return min + time.Duration(p.rng.Int63n(int64(max-min)+1))
}

// Settle waits the fixed settle delay.
func (p *Pacer) Settle(ctx context.Context) error {
	return p.Wait(ctx, p.settle)
}

// Wait blocks for d on the pacer's clock or until ctx is done.
func (p *Pacer) Wait(ctx context.Context, d time.Duration) error {
	if err := ctx.Err(); err != nil || d <= 0 {
		return err
	}
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-p.clock.After(d):
		return nil
	}
}
