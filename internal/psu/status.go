// internal/psu/status.go
package psu

import "fmt"

// Status is the reply code carried in payload byte 0 of an acknowledgement.
type Status byte

const (
	StatusCommandSuccessful   Status = 0x80
	StatusChecksumIncorrect   Status = 0x90
	StatusParameterIncorrect  Status = 0xA0
	StatusUnrecognizedCommand Status = 0xB0
	StatusInvalidCommand      Status = 0xC0
)

// Known reports whether s is one of the five documented codes.
// Every other byte value is an unknown status.
func (s Status) Known() bool {
	switch s {
	case StatusCommandSuccessful,
		StatusChecksumIncorrect,
		StatusParameterIncorrect,
		StatusUnrecognizedCommand,
		StatusInvalidCommand:
		return true
	}
	return false
}

// Success reports whether the device accepted the command.
func (s Status) Success() bool {
	return s == StatusCommandSuccessful
}

func (s Status) String() string {
	switch s {
	case StatusCommandSuccessful:
		return "command successful"
	case StatusChecksumIncorrect:
		return "checksum incorrect"
	case StatusParameterIncorrect:
		return "parameter incorrect"
	case StatusUnrecognizedCommand:
		return "unrecognized command"
	case StatusInvalidCommand:
		return "invalid command"
	default:
		return fmt.Sprintf("unknown status 0x%02X", byte(s))
	}
}
