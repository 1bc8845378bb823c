package resilience

import (
	"context"
	"errors"
	"time"

	"github.com/slok/goresilience"
)

// timeBudget bounds every call to d. The call runs in its own goroutine and
// reports on a buffered channel, so a call abandoned after the budget can
// always finish and exit once it observes its cancelled context.
func timeBudget(d time.Duration) goresilience.Middleware {
	return func(next goresilience.Runner) goresilience.Runner {
		next = goresilience.SanitizeRunner(next)
		return goresilience.RunnerFunc(func(ctx context.Context, f goresilience.Func) error {
			ctx, cancel := context.WithTimeout(ctx, d)
			defer cancel()

			result := make(chan error, 1)
			go func() {
				result <- next.Run(ctx, f)
			}()

			select {
			case err := <-result:
				return err
			case <-ctx.Done():
				if errors.Is(ctx.Err(), context.DeadlineExceeded) {
					return ErrTimeout
				}
				return ctx.Err()
			}
		})
	}
}
