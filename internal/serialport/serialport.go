// internal/serialport/serialport.go
package serialport

import (
	"errors"
	"fmt"
	"io"
	"time"

	gserial "github.com/goburrow/serial"
	bserial "go.bug.st/serial"

	cfg "github.com/tamzrod/bk1785/internal/config"
)

// ErrReadTimeout is returned when a bounded read sees no data in time.
var ErrReadTimeout = errors.New("serial: read timeout")

// Config is the minimal port config. Line settings are fixed at 8N1.
type Config struct {
	Device   string
	Driver   string
	BaudRate int

	// Timeout bounds each read. 0 blocks forever.
	Timeout time.Duration

	// Settle is slept once after the port is configured.
	Settle time.Duration
}

// FromConfig converts the normalized serial section.
func FromConfig(s cfg.SerialConfig) Config {
	c := Config{
		Device:   s.Device,
		Driver:   s.Driver,
		BaudRate: s.BaudRate,
		Timeout:  time.Duration(s.TimeoutMs) * time.Millisecond,
	}
	if s.SettleMs != nil {
		c.Settle = time.Duration(*s.SettleMs) * time.Millisecond
	}
	return c
}

// Open opens and configures the port, then waits for the line to settle.
func Open(c Config) (io.ReadWriteCloser, error) {
	if c.Device == "" {
		return nil, errors.New("serial: device required")
	}

	var (
		p   io.ReadWriteCloser
		err error
	)

	switch c.Driver {
	case "", cfg.DriverGoburrow:
		p, err = openGoburrow(c)
	case cfg.DriverBugst:
		p, err = openBugst(c)
	default:
		return nil, fmt.Errorf("serial: unknown driver %q", c.Driver)
	}
	if err != nil {
		return nil, err
	}

	if c.Settle > 0 {
		time.Sleep(c.Settle)
	}

	return p, nil
}

// ---- goburrow/serial ----

func openGoburrow(c Config) (io.ReadWriteCloser, error) {
	p, err := gserial.Open(&gserial.Config{
		Address:  c.Device,
		BaudRate: c.BaudRate,
		DataBits: 8,
		StopBits: 1,
		Parity:   "N",
		Timeout:  c.Timeout,
	})
	if err != nil {
		return nil, fmt.Errorf("serial: open %s: %w", c.Device, err)
	}

	// discard anything queued before we took the line
	if err := flushLine(c.Device); err != nil {
		p.Close()
		return nil, err
	}
	return p, nil
}

// ---- go.bug.st/serial ----

func openBugst(c Config) (io.ReadWriteCloser, error) {
	p, err := bserial.Open(c.Device, &bserial.Mode{
		BaudRate: c.BaudRate,
		DataBits: 8,
		Parity:   bserial.NoParity,
		StopBits: bserial.OneStopBit,
	})
	if err != nil {
		return nil, fmt.Errorf("serial: open %s: %w", c.Device, err)
	}

	// discard anything queued before we took the line
	if err := p.ResetInputBuffer(); err != nil {
		p.Close()
		return nil, fmt.Errorf("serial: flush %s: %w", c.Device, err)
	}
	if err := p.ResetOutputBuffer(); err != nil {
		p.Close()
		return nil, fmt.Errorf("serial: flush %s: %w", c.Device, err)
	}

	if c.Timeout <= 0 {
		return p, nil
	}

	if err := p.SetReadTimeout(c.Timeout); err != nil {
		p.Close()
		return nil, fmt.Errorf("serial: set read timeout: %w", err)
	}
	return &timeoutPort{ReadWriteCloser: p}, nil
}

// timeoutPort turns the (0, nil) a go.bug.st port returns on timeout into
// ErrReadTimeout, so read-exact loops terminate.
type timeoutPort struct {
	io.ReadWriteCloser
}

func (t *timeoutPort) Read(b []byte) (int, error) {
	n, err := t.ReadWriteCloser.Read(b)
	if n == 0 && err == nil && len(b) > 0 {
		return 0, ErrReadTimeout
	}
	return n, err
}

// List returns the serial ports present on this host.
func List() ([]string, error) {
	ports, err := bserial.GetPortsList()
	if err != nil {
		return nil, fmt.Errorf("serial: list ports: %w", err)
	}
	return ports, nil
}
