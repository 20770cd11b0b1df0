// internal/frame/frame.go
package frame

import (
	"encoding/binary"
	"errors"
	"fmt"
)

// Wire layout constants.
// These values define the protocol and MUST NOT be configurable.
const (
	// Preamble is the fixed first byte of every frame.
	Preamble byte = 0xAA

	// Size is the total frame length on the wire.
	Size = 26

	// PayloadSize is the command/reply specific body length.
	PayloadSize = 22
)

// ---- BYTE OFFSETS ----

const (
	offPreamble = 0
	offAddress  = 1
	offCommand  = 2
	offPayload  = 3
	offChecksum = Size - 1
)

var ErrPayloadTooLong = errors.New("frame: payload longer than 22 bytes")

// Payload is the fixed-width frame body.
type Payload [PayloadSize]byte

// Frame is one decoded (or to-be-encoded) unit.
// Command holds the request command code, or the reply command byte.
type Frame struct {
	Address byte
	Command byte
	Payload Payload
}

// Reply is the result of decoding a received frame.
// Fields are always populated; the flags say whether to trust them.
type Reply struct {
	Frame

	Preamble byte
	Checksum byte // as received in byte 25

	PreambleValid bool
	ChecksumValid bool
}

// NewPayload zero-pads b into a Payload.
// Inputs longer than PayloadSize are rejected, never truncated.
func NewPayload(b []byte) (Payload, error) {
	var p Payload
	if len(b) > PayloadSize {
		return p, fmt.Errorf("%w: got %d", ErrPayloadTooLong, len(b))
	}
	copy(p[:], b)
	return p, nil
}

// PutUint32 returns a payload carrying v little-endian at offset 0.
func PutUint32(v uint32) Payload {
	var p Payload
	binary.LittleEndian.PutUint32(p[0:4], v)
	return p
}

// Checksum is the unsigned byte sum of b modulo 256.
func Checksum(b []byte) byte {
	var sum byte
	for _, v := range b {
		sum += v
	}
	return sum
}

// Encode serializes f into a wire frame with a fresh checksum.
// No IO. No side effects.
func Encode(f Frame) [Size]byte {
	var raw [Size]byte

	raw[offPreamble] = Preamble
	raw[offAddress] = f.Address
	raw[offCommand] = f.Command
	copy(raw[offPayload:offChecksum], f.Payload[:])
	raw[offChecksum] = Checksum(raw[:offChecksum])

	return raw
}

// Decode parses a wire frame and verifies preamble and checksum.
// It never fails: a bad frame is reported through the flags.
func Decode(raw [Size]byte) Reply {
	r := Reply{
		Preamble: raw[offPreamble],
		Checksum: raw[offChecksum],
	}
	r.Address = raw[offAddress]
	r.Command = raw[offCommand]
	copy(r.Payload[:], raw[offPayload:offChecksum])

	r.PreambleValid = r.Preamble == Preamble
	r.ChecksumValid = Checksum(raw[:offChecksum]) == r.Checksum

	return r
}

// DecodeBytes is Decode for a slice that must be exactly Size bytes long.
func DecodeBytes(b []byte) (Reply, error) {
	if len(b) != Size {
		return Reply{}, fmt.Errorf("frame: length %d, want %d", len(b), Size)
	}
	var raw [Size]byte
	copy(raw[:], b)
	return Decode(raw), nil
}

// WantChecksum recomputes the checksum a reply should have carried.
func (r Reply) WantChecksum() byte {
	raw := Encode(r.Frame)
	raw[offPreamble] = r.Preamble
	return Checksum(raw[:offChecksum])
}
