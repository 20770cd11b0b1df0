// internal/psu/errors.go
package psu

import (
	"errors"
	"fmt"
)

// Sentinels matched by errors.Is against *ProtocolError.
var (
	ErrChecksumMismatch = errors.New("psu: reply checksum mismatch")
	ErrMalformedFrame   = errors.New("psu: malformed reply frame")
	ErrDeviceRejected   = errors.New("psu: device rejected command")
	ErrUnknownStatus    = errors.New("psu: unknown reply status")
)

// Error codes exposed through Code().
// A device rejection reports the raw status byte; an unknown status reports
// CodeUnknownStatus|status so that 0x00 never reads as "no error".
const (
	CodeTransport        uint16 = 1
	CodeMalformedFrame   uint16 = 2
	CodeChecksumMismatch uint16 = 3
	CodeUnknownStatus    uint16 = 0x100
)

// TransportError is a write or read failure on the underlying link.
// It is fatal to the current exchange.
type TransportError struct {
	Op      string // "write" or "read"
	Command Command
	Err     error
}

func (e *TransportError) Error() string {
	return fmt.Sprintf("psu: %s %s: %v", e.Command, e.Op, e.Err)
}

func (e *TransportError) Unwrap() error { return e.Err }

func (e *TransportError) Code() uint16 { return CodeTransport }

// ProtocolErrorKind classifies a ProtocolError.
type ProtocolErrorKind int

const (
	KindChecksumMismatch ProtocolErrorKind = iota + 1
	KindMalformedFrame
	KindDeviceRejected
	KindUnknownStatus
)

func (k ProtocolErrorKind) String() string {
	switch k {
	case KindChecksumMismatch:
		return "checksum mismatch"
	case KindMalformedFrame:
		return "malformed frame"
	case KindDeviceRejected:
		return "device rejected"
	case KindUnknownStatus:
		return "unknown status"
	default:
		return fmt.Sprintf("kind(%d)", int(k))
	}
}

// ProtocolError is a reply that arrived intact on the wire but cannot be
// accepted as success.
type ProtocolError struct {
	Kind    ProtocolErrorKind
	Command Command

	// Status is set for KindDeviceRejected and KindUnknownStatus.
	Status Status

	// Got and Want are set for KindChecksumMismatch (checksum bytes) and
	// KindMalformedFrame (preamble bytes).
	Got  byte
	Want byte
}

func (e *ProtocolError) Error() string {
	switch e.Kind {
	case KindChecksumMismatch:
		return fmt.Sprintf("psu: %s: reply checksum mismatch: got 0x%02X, want 0x%02X", e.Command, e.Got, e.Want)
	case KindMalformedFrame:
		return fmt.Sprintf("psu: %s: malformed reply: preamble 0x%02X, want 0x%02X", e.Command, e.Got, e.Want)
	case KindDeviceRejected:
		return fmt.Sprintf("psu: %s failed: %s (0x%02X)", e.Command, e.Status, byte(e.Status))
	case KindUnknownStatus:
		return fmt.Sprintf("psu: %s failed: unknown status 0x%02X", e.Command, byte(e.Status))
	default:
		return fmt.Sprintf("psu: %s: %s", e.Command, e.Kind)
	}
}

// Is lets errors.Is match the package sentinels by kind.
func (e *ProtocolError) Is(target error) bool {
	switch target {
	case ErrChecksumMismatch:
		return e.Kind == KindChecksumMismatch
	case ErrMalformedFrame:
		return e.Kind == KindMalformedFrame
	case ErrDeviceRejected:
		return e.Kind == KindDeviceRejected
	case ErrUnknownStatus:
		return e.Kind == KindUnknownStatus
	}
	return false
}

func (e *ProtocolError) Code() uint16 {
	switch e.Kind {
	case KindChecksumMismatch:
		return CodeChecksumMismatch
	case KindMalformedFrame:
		return CodeMalformedFrame
	case KindUnknownStatus:
		return CodeUnknownStatus | uint16(e.Status)
	default:
		return uint16(e.Status)
	}
}

// IsProtocolError returns true if err wraps a *ProtocolError.
func IsProtocolError(err error) bool {
	var pe *ProtocolError
	return errors.As(err, &pe)
}

// IsTransportError returns true if err wraps a *TransportError.
func IsTransportError(err error) bool {
	var te *TransportError
	return errors.As(err, &te)
}
