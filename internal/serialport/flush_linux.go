// internal/serialport/flush_linux.go
package serialport

import (
	"fmt"

	"golang.org/x/sys/unix"
)

// flushLine discards queued input and output on the tty behind device.
// goburrow/serial keeps its fd private, so this goes through a second fd;
// TCFLSH acts on the terminal, not the descriptor.
func flushLine(device string) error {
	fd, err := unix.Open(device, unix.O_RDWR|unix.O_NOCTTY|unix.O_NONBLOCK, 0)
	if err != nil {
		return fmt.Errorf("serial: flush %s: %w", device, err)
	}
	defer unix.Close(fd)

	if err := unix.IoctlSetInt(fd, unix.TCFLSH, unix.TCIOFLUSH); err != nil {
		return fmt.Errorf("serial: flush %s: %w", device, err)
	}
	return nil
}
