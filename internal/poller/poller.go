// internal/poller/poller.go
package poller

import (
	"context"
	"errors"
	"time"
)

// Config is the minimal runtime config the poller needs.
type Config struct {
	Interval time.Duration
}

// Poller is a dumb, clock-driven reader.
type Poller struct {
	cfg Config
	src Source
	now func() time.Time
}

// New creates a poller with immutable config.
func New(cfg Config, src Source) (*Poller, error) {
	if src == nil {
		return nil, errors.New("poller: source required")
	}
	if cfg.Interval <= 0 {
		return nil, errors.New("poller: interval must be > 0")
	}
	return &Poller{cfg: cfg, src: src, now: time.Now}, nil
}

// PollOnce performs exactly one read_state exchange.
// Telemetry is committed only on success.
func (p *Poller) PollOnce(ctx context.Context) PollResult {
	start := p.now()
	res := PollResult{At: start}

	tel, err := p.src.ReadState(ctx)
	res.Elapsed = p.now().Sub(start)
	if err != nil {
		res.Err = err
		return res
	}

	res.Telemetry = tel
	return res
}
