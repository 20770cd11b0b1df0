// internal/poller/types.go
package poller

import (
	"context"
	"time"

	"github.com/tamzrod/bk1785/internal/psu"
)

// Source is the one read the poller needs.
// *psu.Dispatcher satisfies it.
type Source interface {
	ReadState(ctx context.Context) (psu.Telemetry, error)
}

// PollResult is a snapshot produced by one poll cycle.
type PollResult struct {
	At      time.Time
	Elapsed time.Duration

	// Telemetry is valid only when Err is nil.
	Telemetry psu.Telemetry
	Err       error // non-nil means the poll cycle failed
}
