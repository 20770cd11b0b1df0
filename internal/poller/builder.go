// internal/poller/builder.go
package poller

import (
	"time"

	cfg "github.com/tamzrod/bk1785/internal/config"
)

// Build constructs a Poller from the normalized monitor section.
// The source owns the serial link; the poller never opens or closes it.
func Build(m cfg.MonitorConfig, src Source) (*Poller, error) {
	return New(
		Config{Interval: time.Duration(m.IntervalMs) * time.Millisecond},
		src,
	)
}
