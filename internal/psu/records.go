// internal/psu/records.go
package psu

import (
	"bytes"
	"fmt"

	"github.com/tamzrod/bk1785/internal/frame"
)

// Result is a decoded reply. The concrete type depends on the request
// command: Telemetry for CmdRead, Identity for CmdReadProductInfo, Ack
// for everything else.
type Result interface {
	Command() Command
}

// AckDataSize is the number of payload bytes following the status byte.
const AckDataSize = frame.PayloadSize - 1

// Ack is a successful acknowledgement.
// Data is the remainder of the payload, returned verbatim; its meaning
// for echo-style commands is not documented by the device.
type Ack struct {
	Cmd    Command
	Status Status
	Data   [AckDataSize]byte
}

func (a Ack) Command() Command { return a.Cmd }

// ---- FIELD TABLES ----

// field is one fixed-width slot inside a payload.
type field struct {
	offset int
	width  int
}

func (f field) end() int { return f.offset + f.width }

// Read reply layout.
var (
	fieldPresCurrent = field{0, 2}
	fieldPresVoltage = field{2, 4}
	fieldState       = field{6, 1}
	fieldLow         = field{7, 1}
	fieldHigh        = field{8, 1}
	fieldMaxVoltage  = field{9, 4}
	fieldVoltage     = field{13, 4}
	fieldTelReserved = field{17, 5}
)

// ReadProductInfo reply layout.
var (
	fieldModel       = field{0, 5}
	fieldPatchLevel  = field{5, 1}
	fieldVersion     = field{6, 1}
	fieldSerial      = field{7, 10}
	fieldIdnReserved = field{17, 5}
)

// uintField reads a little-endian unsigned integer of f.width bytes.
func uintField(p frame.Payload, f field) uint32 {
	var v uint32
	for i := f.width - 1; i >= 0; i-- {
		v = v<<8 | uint32(p[f.offset+i])
	}
	return v
}

// bytesField copies exactly f.width bytes into dst.
func bytesField(dst []byte, p frame.Payload, f field) {
	copy(dst, p[f.offset:f.end()])
}

// ---- TELEMETRY ----

// State bits of Telemetry.State.
const (
	StateOutput    byte = 1 << 0
	StateHeat      byte = 1 << 1
	StateMode      byte = 3 << 2
	StateFanSpeed  byte = 7 << 4 // 1795 variants only
	StateOperation byte = 1 << 7
)

// Telemetry is the decoded CmdRead reply.
// Values are trusted as reported; there is no validation beyond the checksum.
type Telemetry struct {
	PresentCurrent   uint16 // mA
	PresentVoltage   uint32 // mV
	State            byte
	Low              byte
	High             byte
	MaxOutputVoltage uint32 // mV
	OutputVoltage    uint32 // mV
	Reserved         [5]byte
}

func (Telemetry) Command() Command { return CmdRead }

// DecodeTelemetry interprets p with the Read reply layout.
func DecodeTelemetry(p frame.Payload) Telemetry {
	t := Telemetry{
		PresentCurrent:   uint16(uintField(p, fieldPresCurrent)),
		PresentVoltage:   uintField(p, fieldPresVoltage),
		State:            byte(uintField(p, fieldState)),
		Low:              byte(uintField(p, fieldLow)),
		High:             byte(uintField(p, fieldHigh)),
		MaxOutputVoltage: uintField(p, fieldMaxVoltage),
		OutputVoltage:    uintField(p, fieldVoltage),
	}
	bytesField(t.Reserved[:], p, fieldTelReserved)
	return t
}

func (t Telemetry) OutputOn() bool  { return t.State&StateOutput != 0 }
func (t Telemetry) Heat() bool      { return t.State&StateHeat != 0 }
func (t Telemetry) Mode() byte      { return (t.State & StateMode) >> 2 }
func (t Telemetry) FanSpeed() byte  { return (t.State & StateFanSpeed) >> 4 }
func (t Telemetry) Operation() bool { return t.State&StateOperation != 0 }

// ---- IDENTITY ----

// Identity is the decoded CmdReadProductInfo reply.
// Model and Serial are fixed-width and not NUL-terminated.
type Identity struct {
	Model      [5]byte
	PatchLevel byte
	Version    byte
	Serial     [10]byte
	Reserved   [5]byte
}

func (Identity) Command() Command { return CmdReadProductInfo }

// DecodeIdentity interprets p with the ReadProductInfo reply layout.
func DecodeIdentity(p frame.Payload) Identity {
	var id Identity
	bytesField(id.Model[:], p, fieldModel)
	id.PatchLevel = byte(uintField(p, fieldPatchLevel))
	id.Version = byte(uintField(p, fieldVersion))
	bytesField(id.Serial[:], p, fieldSerial)
	bytesField(id.Reserved[:], p, fieldIdnReserved)
	return id
}

// ModelString is the model code up to the first NUL, spaces trimmed.
func (id Identity) ModelString() string { return fixedText(id.Model[:]) }

// SerialString is the serial number up to the first NUL, spaces trimmed.
func (id Identity) SerialString() string { return fixedText(id.Serial[:]) }

// FirmwareVersion formats the firmware as version.patchlevel.
func (id Identity) FirmwareVersion() string {
	return fmt.Sprintf("%d.%d", id.Version, id.PatchLevel)
}

func fixedText(b []byte) string {
	if i := bytes.IndexByte(b, 0); i >= 0 {
		b = b[:i]
	}
	return string(bytes.TrimSpace(b))
}
