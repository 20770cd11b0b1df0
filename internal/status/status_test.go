// internal/status/status_test.go
package status

import (
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/tamzrod/bk1785/internal/psu"
)

type codedErr struct{ code uint16 }

func (e codedErr) Error() string { return "coded" }
func (e codedErr) Code() uint16  { return e.code }

func TestEncode_Layout(t *testing.T) {
	tel := psu.Telemetry{
		PresentCurrent:   1500,
		PresentVoltage:   0x0001_2345,
		State:            0x01,
		MaxOutputVoltage: 0x0002_0000,
		OutputVoltage:    12000,
	}
	name := EncodeDeviceName("BK1785B")

	regs := Encode(Snapshot{Health: HealthOK, LastErrorCode: 7, SecondsInError: 3}, &tel, name)

	if len(regs) != SlotsPerDevice {
		t.Fatalf("expected %d regs, got %d", SlotsPerDevice, len(regs))
	}

	want := map[int]uint16{
		SlotHealthCode:           HealthOK,
		SlotLastErrorCode:        7,
		SlotSecondsInError:       3,
		SlotPresentVoltage:       0x0001,
		SlotPresentVoltage + 1:   0x2345,
		SlotPresentCurrent:       1500,
		SlotState:                0x01,
		SlotMaxOutputVoltage:     0x0002,
		SlotMaxOutputVoltage + 1: 0x0000,
		SlotOutputVoltage:        0,
		SlotOutputVoltage + 1:    12000,
	}
	for slot, v := range want {
		if regs[slot] != v {
			t.Fatalf("slot %d: got=0x%04X want=0x%04X", slot, regs[slot], v)
		}
	}

	for i := SlotReservedStart; i <= SlotReservedEnd; i++ {
		if regs[i] != 0 {
			t.Fatalf("reserved slot %d not zero: 0x%04X", i, regs[i])
		}
	}

	if regs[SlotDeviceNameStart] != uint16('B')<<8|uint16('K') {
		t.Fatalf("name slot: got=0x%04X", regs[SlotDeviceNameStart])
	}
}

func TestEncode_NoTelemetryLeavesZero(t *testing.T) {
	regs := Encode(Snapshot{Health: HealthError}, nil, nil)

	for i := TelemetryStart; i < TelemetryStart+TelemetrySlots; i++ {
		if regs[i] != 0 {
			t.Fatalf("slot %d expected zero, got 0x%04X", i, regs[i])
		}
	}
	if regs[SlotHealthCode] != HealthError {
		t.Fatalf("health: got=%d", regs[SlotHealthCode])
	}
}

func TestEncodeDeviceName(t *testing.T) {
	regs := EncodeDeviceName("AB\x01")

	if len(regs) != SlotDeviceNameSlots {
		t.Fatalf("expected %d regs, got %d", SlotDeviceNameSlots, len(regs))
	}
	if regs[0] != uint16('A')<<8|uint16('B') {
		t.Fatalf("reg0: got=0x%04X", regs[0])
	}
	if regs[1] != uint16('?')<<8 {
		t.Fatalf("non-printable must become '?': got=0x%04X", regs[1])
	}
	for i := 2; i < len(regs); i++ {
		if regs[i] != 0 {
			t.Fatalf("reg%d expected zero padding", i)
		}
	}

	long := EncodeDeviceName("0123456789ABCDEFXYZ")
	if long[7] != uint16('E')<<8|uint16('F') {
		t.Fatalf("expected truncation at 16 chars, last reg=0x%04X", long[7])
	}
}

func TestDeviceName(t *testing.T) {
	var id psu.Identity
	copy(id.Model[:], "1785B")
	copy(id.Serial[:], "SN01234567")

	if got := DeviceName(id); got != "1785B SN01234567" {
		t.Fatalf("got=%q", got)
	}

	var blank psu.Identity
	if got := DeviceName(blank); got != "" {
		t.Fatalf("blank identity must give empty name, got=%q", got)
	}
}

func TestTracker_Transitions(t *testing.T) {
	tr := NewTracker()
	t0 := time.Unix(1000, 0)

	if s := tr.Snapshot(); s.Health != HealthUnknown {
		t.Fatalf("boot health: got=%d", s.Health)
	}

	s := tr.Observe(t0, codedErr{code: 0xB0})
	if s.Health != HealthError || s.LastErrorCode != 0xB0 || s.SecondsInError != 0 {
		t.Fatalf("first error: %+v", s)
	}

	s = tr.Observe(t0.Add(5*time.Second), fmt.Errorf("wrap: %w", codedErr{code: 3}))
	if s.LastErrorCode != 3 || s.SecondsInError != 5 {
		t.Fatalf("second error: %+v", s)
	}

	s = tr.Observe(t0.Add(6*time.Second), nil)
	if s != (Snapshot{Health: HealthOK}) {
		t.Fatalf("recovery must clear state: %+v", s)
	}

	s = tr.Observe(t0.Add(10*time.Second), errors.New("plain"))
	if s.SecondsInError != 0 || s.LastErrorCode != 1 {
		t.Fatalf("error clock must restart: %+v", s)
	}
}

func TestTracker_Saturates(t *testing.T) {
	tr := NewTracker()
	t0 := time.Unix(0, 0)

	tr.Observe(t0, errors.New("x"))
	s := tr.Observe(t0.Add(100000*time.Second), errors.New("x"))

	if s.SecondsInError != MaxSecondsInError {
		t.Fatalf("expected saturation, got %d", s.SecondsInError)
	}
}

func TestErrorCode(t *testing.T) {
	if ErrorCode(nil) != 0 {
		t.Fatalf("nil must map to 0")
	}
	if ErrorCode(errors.New("x")) != 1 {
		t.Fatalf("uncoded must map to 1")
	}
	if ErrorCode(&psu.TransportError{Op: "read", Err: errors.New("x")}) != 1 {
		t.Fatalf("transport error code must be 1")
	}
}
