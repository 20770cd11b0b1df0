// internal/status/snapshot.go
package status

import (
	"errors"
	"time"
)

// Snapshot represents exactly what the writer is allowed to deliver.
// It contains no logic and no memory of the past beyond current state.
type Snapshot struct {
	Health         uint16
	LastErrorCode  uint16
	SecondsInError uint16
}

// Tracker folds poll outcomes into a Snapshot.
// Not safe for concurrent use; the monitor loop owns it.
type Tracker struct {
	snap       Snapshot
	errorSince time.Time
}

func NewTracker() *Tracker {
	return &Tracker{snap: Snapshot{Health: HealthUnknown}}
}

// Snapshot returns the current state without observing anything.
func (t *Tracker) Snapshot() Snapshot { return t.snap }

// Observe records one poll outcome at time at.
func (t *Tracker) Observe(at time.Time, err error) Snapshot {
	if err == nil {
		// Recovery / OK
		t.snap = Snapshot{Health: HealthOK}
		t.errorSince = time.Time{}
		return t.snap
	}

	if t.snap.Health != HealthError {
		t.errorSince = at
	}
	t.snap.Health = HealthError
	t.snap.LastErrorCode = ErrorCode(err)

	secs := at.Sub(t.errorSince) / time.Second
	if secs > MaxSecondsInError {
		secs = MaxSecondsInError
	}
	if secs < 0 {
		secs = 0
	}
	t.snap.SecondsInError = uint16(secs)

	return t.snap
}

// ErrorCode extracts a best-effort uint16 code from an error without assuming concrete types.
// If the error does not expose a code, returns 1 (generic error).
func ErrorCode(err error) uint16 {
	if err == nil {
		return 0
	}

	type coder interface{ Code() uint16 }

	var c coder
	if errors.As(err, &c) {
		return c.Code()
	}

	return 1
}
