// internal/psu/dispatcher.go
package psu

import (
	"context"
	"encoding/hex"
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/tamzrod/bk1785/internal/frame"
)

// Dispatcher maps operations onto single request/reply exchanges.
// One write, one read, no retries. Exchanges never overlap on the wire.
type Dispatcher struct {
	mu   sync.Mutex
	tr   Transport
	addr byte
	log  *zap.Logger
	obs  Observer
}

// New creates a Dispatcher that exclusively owns tr.
func New(tr Transport, opts ...Option) *Dispatcher {
	if tr == nil {
		panic("psu: transport cannot be nil")
	}

	d := &Dispatcher{
		tr:  tr,
		log: zap.NewNop(),
	}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

// Address returns the device address used for outgoing frames.
func (d *Dispatcher) Address() byte {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.addr
}

// Execute performs one exchange and interprets the reply according to cmd.
// ctx is only consulted before encoding: once the write starts the
// exchange runs to completion or fails with a *TransportError.
func (d *Dispatcher) Execute(ctx context.Context, cmd Command, payload frame.Payload) (Result, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	d.mu.Lock()
	defer d.mu.Unlock()

	start := time.Now()
	res, err := d.exchange(cmd, payload)
	elapsed := time.Since(start)

	if d.obs != nil {
		d.obs.ObserveExchange(cmd, elapsed, err)
	}
	if err != nil {
		d.log.Debug("psu exchange failed",
			zap.Stringer("cmd", cmd),
			zap.Duration("elapsed", elapsed),
			zap.Error(err),
		)
		return nil, err
	}
	return res, nil
}

func (d *Dispatcher) exchange(cmd Command, payload frame.Payload) (Result, error) {
	// ---- encode ----
	req := frame.Encode(frame.Frame{
		Address: d.addr,
		Command: byte(cmd),
		Payload: payload,
	})

	d.log.Debug("psu request",
		zap.Stringer("cmd", cmd),
		zap.Uint8("addr", d.addr),
		zap.String("frame", hex.EncodeToString(req[:])),
	)

	// ---- write ----
	if err := d.tr.WriteExact(req[:]); err != nil {
		return nil, &TransportError{Op: "write", Command: cmd, Err: err}
	}

	// ---- read ----
	raw, err := d.tr.ReadExact(frame.Size)
	if err != nil {
		return nil, &TransportError{Op: "read", Command: cmd, Err: err}
	}
	reply, err := frame.DecodeBytes(raw)
	if err != nil {
		return nil, &TransportError{Op: "read", Command: cmd, Err: err}
	}

	d.log.Debug("psu reply",
		zap.Stringer("cmd", cmd),
		zap.String("frame", hex.EncodeToString(raw)),
		zap.Bool("checksum_ok", reply.ChecksumValid),
	)

	// ---- decode ----
	return interpret(cmd, reply)
}

// interpret branches on the request command. The reply's own command
// byte is not self-describing and is ignored.
func interpret(cmd Command, r frame.Reply) (Result, error) {
	if !r.ChecksumValid {
		return nil, &ProtocolError{
			Kind:    KindChecksumMismatch,
			Command: cmd,
			Got:     r.Checksum,
			Want:    r.WantChecksum(),
		}
	}
	if !r.PreambleValid {
		return nil, &ProtocolError{
			Kind:    KindMalformedFrame,
			Command: cmd,
			Got:     r.Preamble,
			Want:    frame.Preamble,
		}
	}

	switch cmd.replyKind() {
	case replyTelemetry:
		return DecodeTelemetry(r.Payload), nil
	case replyIdentity:
		return DecodeIdentity(r.Payload), nil
	}

	st := Status(r.Payload[0])
	switch {
	case st.Success():
		ack := Ack{Cmd: cmd, Status: st}
		copy(ack.Data[:], r.Payload[1:])
		return ack, nil
	case st.Known():
		return nil, &ProtocolError{Kind: KindDeviceRejected, Command: cmd, Status: st}
	default:
		return nil, &ProtocolError{Kind: KindUnknownStatus, Command: cmd, Status: st}
	}
}

// ---- operations ----

// SendCommand sends any command with a 32-bit little-endian argument.
func (d *Dispatcher) SendCommand(ctx context.Context, cmd Command, arg uint32) (Result, error) {
	return d.Execute(ctx, cmd, frame.PutUint32(arg))
}

func (d *Dispatcher) ack(ctx context.Context, cmd Command, arg uint32) (Ack, error) {
	res, err := d.SendCommand(ctx, cmd, arg)
	if err != nil {
		return Ack{}, err
	}
	a, ok := res.(Ack)
	if !ok {
		return Ack{}, fmt.Errorf("psu: %s: unexpected result %T", cmd, res)
	}
	return a, nil
}

// SetRemoteMode switches between front panel (false) and remote (true) control.
func (d *Dispatcher) SetRemoteMode(ctx context.Context, remote bool) (Ack, error) {
	return d.ack(ctx, CmdSetRemoteMode, boolArg(remote, RemoteControl, FrontPanelControl))
}

// SetOutputPower turns the output on or off.
func (d *Dispatcher) SetOutputPower(ctx context.Context, on bool) (Ack, error) {
	return d.ack(ctx, CmdSetOutputPower, boolArg(on, OutputOn, OutputOff))
}

// SetOutputVoltage sets the output voltage in millivolts.
func (d *Dispatcher) SetOutputVoltage(ctx context.Context, mV uint32) (Ack, error) {
	return d.ack(ctx, CmdSetOutputVoltage, mV)
}

// SetOutputCurrent sets the output current limit in milliamps.
func (d *Dispatcher) SetOutputCurrent(ctx context.Context, mA uint32) (Ack, error) {
	return d.ack(ctx, CmdSetOutputCurrent, mA)
}

// SetMaxOutputVoltage sets the upper voltage limit in millivolts.
func (d *Dispatcher) SetMaxOutputVoltage(ctx context.Context, mV uint32) (Ack, error) {
	return d.ack(ctx, CmdSetMaxOutputVoltage, mV)
}

// SetCommAddr changes the device address. On success the dispatcher
// addresses subsequent frames to the new address.
func (d *Dispatcher) SetCommAddr(ctx context.Context, addr byte) (Ack, error) {
	a, err := d.ack(ctx, CmdSetCommAddr, uint32(addr))
	if err != nil {
		return Ack{}, err
	}

	d.mu.Lock()
	d.addr = addr
	d.mu.Unlock()

	return a, nil
}

// EnableLocalKey enables or disables the front panel keys.
func (d *Dispatcher) EnableLocalKey(ctx context.Context, enable bool) (Ack, error) {
	return d.ack(ctx, CmdEnableLocalKey, boolArg(enable, 1, 0))
}

// RestoreFactoryDefault resets the device configuration.
func (d *Dispatcher) RestoreFactoryDefault(ctx context.Context) (Ack, error) {
	return d.ack(ctx, CmdRestoreFactoryDefault, 0)
}

// EnterCalibMode unlocks calibration with the factory password.
func (d *Dispatcher) EnterCalibMode(ctx context.Context) (Ack, error) {
	return d.ack(ctx, CmdCalibMode, CalibPassword)
}

// ReadState reads live telemetry.
func (d *Dispatcher) ReadState(ctx context.Context) (Telemetry, error) {
	res, err := d.Execute(ctx, CmdRead, frame.Payload{})
	if err != nil {
		return Telemetry{}, err
	}
	return res.(Telemetry), nil
}

// ReadProductInfo reads the model, firmware and serial number.
func (d *Dispatcher) ReadProductInfo(ctx context.Context) (Identity, error) {
	res, err := d.Execute(ctx, CmdReadProductInfo, frame.Payload{})
	if err != nil {
		return Identity{}, err
	}
	return res.(Identity), nil
}

func boolArg(v bool, yes, no uint32) uint32 {
	if v {
		return yes
	}
	return no
}
