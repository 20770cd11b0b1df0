// internal/writer/types.go
package writer

import (
	"time"

	"github.com/tamzrod/bk1785/internal/poller"
)

// Target is one Modbus TCP register block destination.
type Target struct {
	Endpoint    string
	UnitID      uint8
	BaseAddress uint16
	Timeout     time.Duration
}

// Plan is the fully-built write plan for one PSU.
type Plan struct {
	DeviceName string
	Targets    []Target
}

// Writer mirrors poll results into targets.
type Writer interface {
	Write(res poller.PollResult) error
}
