// internal/status/encode.go
package status

import (
	"strings"

	"github.com/tamzrod/bk1785/internal/psu"
)

// Encode converts a Snapshot, optional telemetry and the device name into
// a full register block. Layout is locked; no IO.
func Encode(s Snapshot, tel *psu.Telemetry, nameRegs []uint16) []uint16 {
	regs := make([]uint16, SlotsPerDevice)

	// Slots 0–2: live status
	regs[SlotHealthCode] = s.Health
	regs[SlotLastErrorCode] = s.LastErrorCode
	regs[SlotSecondsInError] = s.SecondsInError

	// Slots 3–10: telemetry (zero until the first good poll)
	if tel != nil {
		copy(regs[TelemetryStart:], EncodeTelemetry(*tel))
	}

	// Slots 11–15 are RESERVED → left as zero

	// Device name always lives at the end of the block
	copy(regs[SlotDeviceNameStart:SlotDeviceNameEnd+1], nameRegs)

	return regs
}

// EncodeTelemetry returns the TelemetrySlots registers starting at TelemetryStart.
func EncodeTelemetry(t psu.Telemetry) []uint16 {
	regs := make([]uint16, TelemetrySlots)

	put32(regs, SlotPresentVoltage-TelemetryStart, t.PresentVoltage)
	regs[SlotPresentCurrent-TelemetryStart] = t.PresentCurrent
	regs[SlotState-TelemetryStart] = uint16(t.State)
	put32(regs, SlotMaxOutputVoltage-TelemetryStart, t.MaxOutputVoltage)
	put32(regs, SlotOutputVoltage-TelemetryStart, t.OutputVoltage)

	return regs
}

func put32(regs []uint16, i int, v uint32) {
	regs[i] = uint16(v >> 16)
	regs[i+1] = uint16(v)
}

// DeviceName builds the default block name "<model> <serial>".
func DeviceName(id psu.Identity) string {
	name := strings.TrimSpace(id.ModelString() + " " + id.SerialString())
	if len(name) > DeviceNameMaxChars {
		name = name[:DeviceNameMaxChars]
	}
	return name
}

// EncodeDeviceName packs up to 16 ASCII characters into 8 uint16 registers.
// Each register stores two ASCII bytes in big-endian order.
func EncodeDeviceName(name string) []uint16 {
	out := make([]uint16, SlotDeviceNameSlots)

	b := []byte(name)
	if len(b) > DeviceNameMaxChars {
		b = b[:DeviceNameMaxChars]
	}

	// sanitize to printable ASCII
	for i := 0; i < len(b); i++ {
		if b[i] < 0x20 || b[i] > 0x7E {
			b[i] = '?'
		}
	}

	for i := 0; i < DeviceNameMaxChars; i += 2 {
		var hi, lo byte
		if i < len(b) {
			hi = b[i]
		}
		if i+1 < len(b) {
			lo = b[i+1]
		}
		out[i/2] = uint16(hi)<<8 | uint16(lo)
	}

	return out
}
