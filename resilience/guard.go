package resilience

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/slok/goresilience"
)

// Guard runs calls against a breaker under a time budget.
type Guard struct {
	breaker *Breaker
	runner  goresilience.Runner
}

// NewGuard binds a guard to the breaker. maxCallDuration bounds every call;
// the breaker's MaxCallDuration is used when it is zero.
func NewGuard(b *Breaker, maxCallDuration time.Duration) *Guard {
	if maxCallDuration <= 0 {
		maxCallDuration = b.Config().MaxCallDuration
	}
	runner := goresilience.RunnerChain(
		timeBudget(maxCallDuration),
	)
	return &Guard{breaker: b, runner: runner}
}

// Breaker exposes the circuit the guard reports to.
func (g *Guard) Breaker() *Breaker {
	return g.breaker
}

// Execute calls fn unless the circuit is open.
//
// Errors returned by fn and time budget overruns count as failures. When the
// budget runs out the context handed to fn is cancelled and whatever fn
// produces afterwards must be ignored by the caller. A call abandoned by its
// own caller does not count either way.
func (g *Guard) Execute(ctx context.Context, fn func(ctx context.Context) error) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	permit, err := g.breaker.Allow()
	if err != nil {
		return fmt.Errorf("circuit %s: %w", g.breaker.Name(), err)
	}

	err = g.runner.Run(ctx, fn)
	switch {
	case err == nil:
		g.breaker.Record(permit, false)
		return nil
	case ctx.Err() != nil:
		g.breaker.Release(permit)
		return ctx.Err()
	default:
		g.breaker.Record(permit, true)
		if errors.Is(err, context.DeadlineExceeded) {
			err = ErrTimeout
		}
		return fmt.Errorf("circuit %s: %w", g.breaker.Name(), err)
	}
}
