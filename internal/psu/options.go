// internal/psu/options.go
package psu

import (
	"time"

	"go.uber.org/zap"
)

// Observer is notified after every exchange, successful or not.
type Observer interface {
	ObserveExchange(cmd Command, elapsed time.Duration, err error)
}

// Option configures a Dispatcher.
type Option func(*Dispatcher)

// WithAddress sets the device address placed in byte 1 of every frame.
// 0 is the default, unaddressed device.
func WithAddress(addr byte) Option {
	return func(d *Dispatcher) {
		d.addr = addr
	}
}

// WithLogger logs exchanges at debug level.
func WithLogger(l *zap.Logger) Option {
	return func(d *Dispatcher) {
		if l != nil {
			d.log = l
		}
	}
}

// WithObserver attaches an exchange observer (metrics).
func WithObserver(o Observer) Option {
	return func(d *Dispatcher) {
		d.obs = o
	}
}
