// internal/poller/runner.go
package poller

import (
	"context"
	"time"
)

// Run polls once immediately, then on every tick, handing each result to
// handle on the calling goroutine. No overlap. No retries.
// Returns ctx.Err() when the context ends.
func (p *Poller) Run(ctx context.Context, handle func(PollResult)) error {
	ticker := time.NewTicker(p.cfg.Interval)
	defer ticker.Stop()

	for {
		if err := ctx.Err(); err != nil {
			return err
		}

		handle(p.PollOnce(ctx))

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
		}
	}
}
