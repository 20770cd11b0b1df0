// internal/serialport/flush_linux_test.go
package serialport

import (
	"os"
	"path/filepath"
	"strconv"
	"testing"
	"time"

	"golang.org/x/sys/unix"
)

// openPTY returns the master fd and slave path of a fresh pseudo-terminal.
func openPTY(t *testing.T) (int, string) {
	t.Helper()

	master, err := unix.Open("/dev/ptmx", unix.O_RDWR|unix.O_NOCTTY, 0)
	if err != nil {
		t.Skipf("no pty available: %v", err)
	}
	t.Cleanup(func() { unix.Close(master) })

	if err := unix.IoctlSetPointerInt(master, unix.TIOCSPTLCK, 0); err != nil {
		t.Skipf("unlockpt: %v", err)
	}
	n, err := unix.IoctlGetUint32(master, unix.TIOCGPTN)
	if err != nil {
		t.Skipf("ptsname: %v", err)
	}
	return master, "/dev/pts/" + strconv.Itoa(int(n))
}

func TestFlushLine_DropsQueuedInput(t *testing.T) {
	master, slave := openPTY(t)

	// keep the slave open so queued bytes stay queued
	hold, err := os.OpenFile(slave, os.O_RDWR|unix.O_NOCTTY, 0)
	if err != nil {
		t.Skipf("open slave: %v", err)
	}
	defer hold.Close()

	// newline-terminated so a canonical-mode read would see it
	if _, err := unix.Write(master, []byte("U\n")); err != nil {
		t.Fatalf("write master: %v", err)
	}
	time.Sleep(50 * time.Millisecond) // line discipline delivers asynchronously

	if err := flushLine(slave); err != nil {
		t.Fatalf("flushLine: %v", err)
	}

	fd := int(hold.Fd()) // Fd() resets blocking mode, so take it once
	if err := unix.SetNonblock(fd, true); err != nil {
		t.Fatalf("nonblock: %v", err)
	}
	buf := make([]byte, 8)
	if n, _ := unix.Read(fd, buf); n > 0 {
		t.Fatalf("stale byte survived flush: % X", buf[:n])
	}
}

func TestFlushLine_RejectsNonTTY(t *testing.T) {
	path := filepath.Join(t.TempDir(), "plain")
	if err := os.WriteFile(path, nil, 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}

	if err := flushLine(path); err == nil {
		t.Fatalf("expected error flushing a regular file")
	}
}
