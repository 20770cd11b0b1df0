// internal/writer/status_writer.go
package writer

import (
	"errors"
	"fmt"
	"strings"

	"github.com/tamzrod/bk1785/internal/psu"
	"github.com/tamzrod/bk1785/internal/status"
)

// blockWriter owns one target's register block.
// It delivers snapshots verbatim; health logic lives in status.Tracker.
type blockWriter struct {
	target Target
	cli    endpointClient

	needFull bool
	last     status.Snapshot
	lastTel  []uint16 // nil until the first good poll
	nameRegs []uint16
}

func newBlockWriter(t Target, cli endpointClient, nameRegs []uint16) *blockWriter {
	return &blockWriter{
		target:   t,
		cli:      cli,
		needFull: true, // full re-assert on first write
		last: status.Snapshot{
			Health: status.HealthUnknown,
		},
		nameRegs: nameRegs,
	}
}

// Write delivers a snapshot and, when tel is non-nil, the telemetry run.
// On any write failure, the next call will re-assert the full block.
func (bw *blockWriter) Write(s status.Snapshot, tel *psu.Telemetry) error {
	if bw.cli == nil {
		return fmt.Errorf("block writer: missing client for endpoint %s", bw.target.Endpoint)
	}

	var telRegs []uint16
	if tel != nil {
		telRegs = status.EncodeTelemetry(*tel)
	}

	// ------------------------------------------------------------
	// Full block write (identity re-assert)
	// ------------------------------------------------------------
	if bw.needFull {
		if telRegs == nil {
			telRegs = bw.lastTel
		}

		regs := status.Encode(s, nil, bw.nameRegs)
		copy(regs[status.TelemetryStart:], telRegs)

		if err := bw.write(0, regs); err != nil {
			bw.needFull = true
			return fmt.Errorf("block writer: ep=%s full block write failed: %w", bw.target.Endpoint, err)
		}

		bw.needFull = false
		bw.last = s
		bw.lastTel = telRegs
		return nil
	}

	var errs []string

	// Slot 0: health_code
	if bw.last.Health != s.Health {
		if err := bw.write(status.SlotHealthCode, []uint16{s.Health}); err != nil {
			errs = append(errs, fmt.Sprintf("slot0 health write failed: %v", err))
		} else {
			bw.last.Health = s.Health
		}
	}

	// Slot 1: last_error_code
	if bw.last.LastErrorCode != s.LastErrorCode {
		if err := bw.write(status.SlotLastErrorCode, []uint16{s.LastErrorCode}); err != nil {
			errs = append(errs, fmt.Sprintf("slot1 last_error write failed: %v", err))
		} else {
			bw.last.LastErrorCode = s.LastErrorCode
		}
	}

	// Slot 2: seconds_in_error
	if bw.last.SecondsInError != s.SecondsInError {
		if err := bw.write(status.SlotSecondsInError, []uint16{s.SecondsInError}); err != nil {
			errs = append(errs, fmt.Sprintf("slot2 seconds write failed: %v", err))
		} else {
			bw.last.SecondsInError = s.SecondsInError
		}
	}

	// Slots 3–10: telemetry, one write for the whole run
	if telRegs != nil && !equalRegs(bw.lastTel, telRegs) {
		if err := bw.write(status.TelemetryStart, telRegs); err != nil {
			errs = append(errs, fmt.Sprintf("telemetry write failed: %v", err))
		} else {
			bw.lastTel = telRegs
		}
	}

	if len(errs) > 0 {
		// Any partial failure introduces doubt; re-assert on next call.
		bw.needFull = true
		return errors.New("block writer: ep=" + bw.target.Endpoint + ": " + strings.Join(errs, " | "))
	}

	return nil
}

func (bw *blockWriter) write(slot int, regs []uint16) error {
	return bw.cli.WriteRegisters(bw.target.UnitID, bw.target.BaseAddress+uint16(slot), regs)
}

func equalRegs(a, b []uint16) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}
