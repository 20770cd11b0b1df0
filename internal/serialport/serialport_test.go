// internal/serialport/serialport_test.go
package serialport

import (
	"bytes"
	"errors"
	"io"
	"testing"
	"time"

	cfg "github.com/tamzrod/bk1785/internal/config"
)

func TestFromConfig(t *testing.T) {
	settle := 250
	c := FromConfig(cfg.SerialConfig{
		Device:    "/dev/ttyUSB1",
		Driver:    cfg.DriverBugst,
		BaudRate:  9600,
		TimeoutMs: 1500,
		SettleMs:  &settle,
	})

	if c.Device != "/dev/ttyUSB1" || c.Driver != cfg.DriverBugst || c.BaudRate != 9600 {
		t.Fatalf("unexpected config: %+v", c)
	}
	if c.Timeout != 1500*time.Millisecond {
		t.Fatalf("timeout: got=%v", c.Timeout)
	}
	if c.Settle != 250*time.Millisecond {
		t.Fatalf("settle: got=%v", c.Settle)
	}
}

func TestOpen_RejectsBadInput(t *testing.T) {
	if _, err := Open(Config{}); err == nil {
		t.Fatalf("expected error for empty device")
	}
	if _, err := Open(Config{Device: "/dev/null", Driver: "tarm"}); err == nil {
		t.Fatalf("expected error for unknown driver")
	}
}

// stalledPort mimics a go.bug.st port after its read timeout: (0, nil).
type stalledPort struct {
	data *bytes.Reader
}

func (s *stalledPort) Read(b []byte) (int, error) {
	if s.data.Len() == 0 {
		return 0, nil
	}
	return s.data.Read(b)
}

func (s *stalledPort) Write(b []byte) (int, error) { return len(b), nil }
func (s *stalledPort) Close() error                { return nil }

func TestTimeoutPort_TerminatesReadFull(t *testing.T) {
	p := &timeoutPort{ReadWriteCloser: &stalledPort{data: bytes.NewReader([]byte{1, 2, 3})}}

	buf := make([]byte, 26)
	n, err := io.ReadFull(p, buf)

	if n != 3 {
		t.Fatalf("expected 3 bytes before timeout, got %d", n)
	}
	if !errors.Is(err, ErrReadTimeout) {
		t.Fatalf("expected ErrReadTimeout, got %v", err)
	}
}
