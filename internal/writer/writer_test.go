// internal/writer/writer_test.go
package writer

import (
	"errors"
	"testing"
	"time"

	cfg "github.com/tamzrod/bk1785/internal/config"
	"github.com/tamzrod/bk1785/internal/poller"
	"github.com/tamzrod/bk1785/internal/psu"
	"github.com/tamzrod/bk1785/internal/status"
	wmodbus "github.com/tamzrod/bk1785/internal/writer/modbus"
)

// ---- fake endpoint client ----

type fakeEndpointClient struct {
	writes []writeCall
	fail   error
}

type writeCall struct {
	unitID uint8
	addr   uint16
	regs   []uint16
}

func (f *fakeEndpointClient) WriteRegisters(unitID uint8, addr uint16, regs []uint16) error {
	if f.fail != nil {
		return f.fail
	}
	f.writes = append(f.writes, writeCall{
		unitID: unitID,
		addr:   addr,
		regs:   append([]uint16(nil), regs...),
	})
	return nil
}

func (f *fakeEndpointClient) last() writeCall {
	return f.writes[len(f.writes)-1]
}

// ---- helpers ----

var t0 = time.Unix(1000, 0)

func okResult(at time.Time, mV uint32) poller.PollResult {
	return poller.PollResult{
		At:        at,
		Telemetry: psu.Telemetry{PresentVoltage: mV, PresentCurrent: 250, OutputVoltage: mV},
	}
}

func onePlan() Plan {
	return Plan{
		DeviceName: "DEV-01",
		Targets: []Target{
			{Endpoint: "ep1", UnitID: 7, BaseAddress: 100},
		},
	}
}

// ---- tests ----

func TestWriter_FirstWriteIsFullBlock(t *testing.T) {
	fake := &fakeEndpointClient{}
	w := newWriter(onePlan(), map[string]endpointClient{"ep1": fake})

	if err := w.Write(okResult(t0, 0x0001_0002)); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if len(fake.writes) != 1 {
		t.Fatalf("expected 1 write, got %d", len(fake.writes))
	}

	c := fake.last()
	if c.unitID != 7 || c.addr != 100 {
		t.Fatalf("unexpected destination unit=%d addr=%d", c.unitID, c.addr)
	}
	if len(c.regs) != status.SlotsPerDevice {
		t.Fatalf("expected full block (%d regs), got %d", status.SlotsPerDevice, len(c.regs))
	}
	if c.regs[status.SlotHealthCode] != status.HealthOK {
		t.Fatalf("health: got=%d", c.regs[status.SlotHealthCode])
	}
	if c.regs[status.SlotPresentVoltage] != 0x0001 || c.regs[status.SlotPresentVoltage+1] != 0x0002 {
		t.Fatalf("voltage regs: %v", c.regs[status.SlotPresentVoltage:status.SlotPresentVoltage+2])
	}

	// Verify device name encoding EXACTLY
	expectedNameRegs := status.EncodeDeviceName("DEV-01")
	for i := 0; i < status.SlotDeviceNameSlots; i++ {
		slot := status.SlotDeviceNameStart + i
		if c.regs[slot] != expectedNameRegs[i] {
			t.Fatalf("device name slot %d mismatch: got=%d want=%d", slot, c.regs[slot], expectedNameRegs[i])
		}
	}
}

func TestWriter_IncrementalAfterFull(t *testing.T) {
	fake := &fakeEndpointClient{}
	w := newWriter(onePlan(), map[string]endpointClient{"ep1": fake})

	_ = w.Write(okResult(t0, 5000))

	// same telemetry, same health: nothing to deliver
	if err := w.Write(okResult(t0.Add(time.Second), 5000)); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(fake.writes) != 1 {
		t.Fatalf("expected no incremental writes, got %d total", len(fake.writes))
	}

	// new voltage: telemetry run only
	if err := w.Write(okResult(t0.Add(2*time.Second), 6000)); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	c := fake.last()
	if c.addr != 100+status.TelemetryStart || len(c.regs) != status.TelemetrySlots {
		t.Fatalf("expected telemetry run write, got addr=%d len=%d", c.addr, len(c.regs))
	}
}

func TestWriter_ErrorUpdatesHealthOnly(t *testing.T) {
	fake := &fakeEndpointClient{}
	w := newWriter(onePlan(), map[string]endpointClient{"ep1": fake})

	_ = w.Write(okResult(t0, 5000))
	fake.writes = nil

	res := poller.PollResult{At: t0.Add(time.Second), Err: &psu.TransportError{Op: "read", Err: errors.New("eof")}}
	if err := w.Write(res); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	// health + last error; seconds_in_error is still 0
	if len(fake.writes) != 2 {
		t.Fatalf("expected 2 writes, got %d", len(fake.writes))
	}
	for _, c := range fake.writes {
		if len(c.regs) != 1 {
			t.Fatalf("expected single-register writes, got %d regs at %d", len(c.regs), c.addr)
		}
		if c.addr >= 100+status.TelemetryStart {
			t.Fatalf("telemetry must not be written on failure (addr=%d)", c.addr)
		}
	}
	if fake.writes[0].regs[0] != status.HealthError {
		t.Fatalf("health: got=%d", fake.writes[0].regs[0])
	}
	if fake.writes[1].regs[0] != psu.CodeTransport {
		t.Fatalf("last error: got=%d", fake.writes[1].regs[0])
	}
}

func TestSecondsInErrorResetOnRecovery(t *testing.T) {
	fake := &fakeEndpointClient{}
	w := newWriter(onePlan(), map[string]endpointClient{"ep1": fake})

	boom := errors.New("x")
	_ = w.Write(poller.PollResult{At: t0, Err: boom})
	_ = w.Write(poller.PollResult{At: t0.Add(3 * time.Second), Err: boom})

	if c := fake.last(); c.addr != 100+status.SlotSecondsInError || c.regs[0] != 3 {
		t.Fatalf("expected seconds_in_error=3, got addr=%d regs=%v", c.addr, c.regs)
	}

	fake.writes = nil
	if err := w.Write(okResult(t0.Add(4*time.Second), 1000)); err != nil {
		t.Fatalf("recovery write failed: %v", err)
	}

	var seconds *writeCall
	for i := range fake.writes {
		if fake.writes[i].addr == 100+status.SlotSecondsInError {
			seconds = &fake.writes[i]
		}
	}
	if seconds == nil || seconds.regs[0] != 0 {
		t.Fatalf("seconds_in_error not reset: %+v", fake.writes)
	}
}

func TestWriter_FailureForcesFullReassert(t *testing.T) {
	fake := &fakeEndpointClient{}
	w := newWriter(onePlan(), map[string]endpointClient{"ep1": fake})

	_ = w.Write(okResult(t0, 1000))

	fake.fail = errors.New("conn reset")
	if err := w.Write(okResult(t0.Add(time.Second), 2000)); err == nil {
		t.Fatalf("expected error")
	}

	fake.fail = nil
	fake.writes = nil
	if err := w.Write(okResult(t0.Add(2*time.Second), 2000)); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(fake.writes) != 1 || len(fake.last().regs) != status.SlotsPerDevice {
		t.Fatalf("expected full re-assert, got %+v", fake.writes)
	}
}

func TestWriter_MissingClient(t *testing.T) {
	w := newWriter(onePlan(), map[string]endpointClient{})

	if err := w.Write(okResult(t0, 1)); err == nil {
		t.Fatalf("expected error for missing client")
	}
}

func TestWriter_FanOutToTargets(t *testing.T) {
	a, b := &fakeEndpointClient{}, &fakeEndpointClient{}
	plan := Plan{
		Targets: []Target{
			{Endpoint: "a", UnitID: 1, BaseAddress: 0},
			{Endpoint: "b", UnitID: 2, BaseAddress: 24},
		},
	}
	w := newWriter(plan, map[string]endpointClient{"a": a, "b": b})

	if err := w.Write(okResult(t0, 1)); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(a.writes) != 1 || len(b.writes) != 1 {
		t.Fatalf("expected one write per target, got a=%d b=%d", len(a.writes), len(b.writes))
	}
	if b.last().addr != 24 || b.last().unitID != 2 {
		t.Fatalf("unexpected target b destination: %+v", b.last())
	}
}

func TestBuildPlan(t *testing.T) {
	m := cfg.MonitorConfig{
		Targets: []cfg.TargetConfig{
			{Endpoint: "127.0.0.1:502", UnitID: 3, BaseAddress: 48, TimeoutMs: 1500},
		},
	}

	plan := BuildPlan(m, "1785B SN1")
	if plan.DeviceName != "1785B SN1" {
		t.Fatalf("device name: got=%q", plan.DeviceName)
	}
	if len(plan.Targets) != 1 {
		t.Fatalf("expected 1 target, got %d", len(plan.Targets))
	}
	tg := plan.Targets[0]
	if tg.UnitID != 3 || tg.BaseAddress != 48 || tg.Timeout != 1500*time.Millisecond {
		t.Fatalf("unexpected target: %+v", tg)
	}

	m.DeviceName = "BENCH-A"
	if got := BuildPlan(m, "1785B SN1").DeviceName; got != "BENCH-A" {
		t.Fatalf("override ignored: got=%q", got)
	}
}

func TestNew_EndpointClientsMap(t *testing.T) {
	var nilClient *wmodbus.EndpointClient

	// a nil entry behaves like a missing one
	w := New(onePlan(), map[string]*wmodbus.EndpointClient{"ep1": nilClient})
	if err := w.Write(okResult(t0, 1)); err == nil {
		t.Fatalf("expected error for nil endpoint client")
	}

	w = New(onePlan(), nil)
	if err := w.Write(okResult(t0, 1)); err == nil {
		t.Fatalf("expected error for missing endpoint client")
	}
}

func TestBuildEndpointClients_NoTargets(t *testing.T) {
	clients, closeAll, err := BuildEndpointClients(Plan{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(clients) != 0 {
		t.Fatalf("expected no clients, got %d", len(clients))
	}
	if err := closeAll(); err != nil {
		t.Fatalf("closeAll: %v", err)
	}
}
