// internal/psu/transport.go
package psu

import (
	"errors"
	"io"
)

// Transport is the byte-stream link the dispatcher drives.
// Both calls block until the full length is transferred or fail.
type Transport interface {
	WriteExact(b []byte) error
	ReadExact(n int) ([]byte, error)
}

// StreamTransport adapts any io.ReadWriter (serial port, pipe, socket).
// The stream has no framing, so partial reads are accumulated.
type StreamTransport struct {
	rw io.ReadWriter
}

func NewStreamTransport(rw io.ReadWriter) *StreamTransport {
	return &StreamTransport{rw: rw}
}

func (t *StreamTransport) WriteExact(b []byte) error {
	for len(b) > 0 {
		n, err := t.rw.Write(b)
		if err != nil {
			return err
		}
		if n == 0 {
			return io.ErrShortWrite
		}
		b = b[n:]
	}
	return nil
}

func (t *StreamTransport) ReadExact(n int) ([]byte, error) {
	buf := make([]byte, n)
	if _, err := io.ReadFull(t.rw, buf); err != nil {
		if errors.Is(err, io.EOF) {
			return nil, io.ErrUnexpectedEOF
		}
		return nil, err
	}
	return buf, nil
}
