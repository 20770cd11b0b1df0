// internal/writer/writer.go
package writer

import (
	"errors"
	"strings"

	"github.com/tamzrod/bk1785/internal/poller"
	"github.com/tamzrod/bk1785/internal/psu"
	"github.com/tamzrod/bk1785/internal/status"
	wmodbus "github.com/tamzrod/bk1785/internal/writer/modbus"
)

// endpointClient is the exact contract the writer uses.
// IMPORTANT: There must be NO other version of this interface anywhere.
type endpointClient interface {
	WriteRegisters(unitID uint8, addr uint16, regs []uint16) error
}

type modbusWriter struct {
	tracker *status.Tracker
	blocks  []*blockWriter
}

// New builds a writer with one block writer per plan target.
// Targets whose endpoint has no client fail on every Write.
func New(plan Plan, clients map[string]*wmodbus.EndpointClient) Writer {
	// only present keys: a nil *EndpointClient must not become a non-nil interface
	eps := make(map[string]endpointClient, len(clients))
	for ep, c := range clients {
		if c != nil {
			eps[ep] = c
		}
	}
	return newWriter(plan, eps)
}

func newWriter(plan Plan, clients map[string]endpointClient) *modbusWriter {
	w := &modbusWriter{tracker: status.NewTracker()}

	nameRegs := status.EncodeDeviceName(plan.DeviceName)
	for _, t := range plan.Targets {
		w.blocks = append(w.blocks, newBlockWriter(t, clients[t.Endpoint], nameRegs))
	}

	return w
}

// Write folds res into the health snapshot and delivers it to every target.
// A failed poll updates health only; telemetry slots keep their last value.
func (w *modbusWriter) Write(res poller.PollResult) error {
	snap := w.tracker.Observe(res.At, res.Err)

	var tel *psu.Telemetry
	if res.Err == nil {
		tel = &res.Telemetry
	}

	var errs []string
	for _, b := range w.blocks {
		if err := b.Write(snap, tel); err != nil {
			errs = append(errs, err.Error())
		}
	}

	if len(errs) > 0 {
		return errors.New(strings.Join(errs, " | "))
	}

	return nil
}
