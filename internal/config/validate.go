// internal/config/validate.go
package config

import (
	"fmt"
	"net"
	"strings"
)

var supportedBaudRates = map[int]bool{
	0:     true, // default
	4800:  true,
	9600:  true,
	19200: true,
	38400: true,
}

// Validate checks configuration correctness.
// It performs declarative validation only.
// It MUST NOT mutate configuration.
func Validate(cfg *Config) error {
	if cfg == nil {
		return fmt.Errorf("config: nil")
	}

	// ------------------------------------------------------------
	// SERIAL
	// ------------------------------------------------------------

	switch cfg.Serial.Driver {
	case "", DriverGoburrow, DriverBugst:
	default:
		return fmt.Errorf("serial.driver %q: must be %q or %q", cfg.Serial.Driver, DriverGoburrow, DriverBugst)
	}

	if !supportedBaudRates[cfg.Serial.BaudRate] {
		return fmt.Errorf("serial.baud_rate %d: unsupported", cfg.Serial.BaudRate)
	}

	if cfg.Serial.TimeoutMs < 0 {
		return fmt.Errorf("serial.timeout_ms %d: must be >= 0", cfg.Serial.TimeoutMs)
	}

	if cfg.Serial.SettleMs != nil && *cfg.Serial.SettleMs < 0 {
		return fmt.Errorf("serial.settle_ms %d: must be >= 0", *cfg.Serial.SettleMs)
	}

	// ------------------------------------------------------------
	// LOGGING
	// ------------------------------------------------------------

	switch strings.ToLower(cfg.Logging.Level) {
	case "", "debug", "info", "warn", "warning", "error":
	default:
		return fmt.Errorf("logging.level %q: unknown level", cfg.Logging.Level)
	}

	switch strings.ToLower(cfg.Logging.Format) {
	case "", "console", "json":
	default:
		return fmt.Errorf("logging.format %q: must be console or json", cfg.Logging.Format)
	}

	// ------------------------------------------------------------
	// MONITOR
	// ------------------------------------------------------------

	if cfg.Monitor.IntervalMs < 0 {
		return fmt.Errorf("monitor.interval_ms %d: must be >= 0", cfg.Monitor.IntervalMs)
	}

	// device_name sanity (ASCII only)
	for i := 0; i < len(cfg.Monitor.DeviceName); i++ {
		if cfg.Monitor.DeviceName[i] > 0x7F {
			return fmt.Errorf("monitor.device_name must contain ASCII characters only")
		}
	}

	if cfg.Monitor.MetricsListen != "" {
		if _, _, err := net.SplitHostPort(cfg.Monitor.MetricsListen); err != nil {
			return fmt.Errorf("monitor.metrics_listen %q: %w", cfg.Monitor.MetricsListen, err)
		}
	}

	// ------------------------------------------------------------
	// REGISTER BLOCK GEOMETRY (per endpoint + unit id)
	// ------------------------------------------------------------

	type span struct {
		start uint32
		end   uint32
		idx   int
	}

	// key = endpoint | unit_id
	spans := make(map[string][]span)

	for i, t := range cfg.Monitor.Targets {
		if t.Endpoint == "" {
			return fmt.Errorf("monitor.targets[%d]: endpoint required", i)
		}
		if _, _, err := net.SplitHostPort(t.Endpoint); err != nil {
			return fmt.Errorf("monitor.targets[%d]: endpoint %q: %w", i, t.Endpoint, err)
		}
		if t.TimeoutMs < 0 {
			return fmt.Errorf("monitor.targets[%d]: timeout_ms must be >= 0", i)
		}

		start := uint32(t.BaseAddress)
		end := start + BlockRegisters - 1
		if end > 0xFFFF {
			return fmt.Errorf(
				"monitor.targets[%d]: base_address %d leaves no room for %d registers",
				i, t.BaseAddress, BlockRegisters,
			)
		}

		key := fmt.Sprintf("%s|%d", t.Endpoint, t.UnitID)

		for _, s := range spans[key] {
			// overlap check (inclusive)
			if !(end < s.start || start > s.end) {
				return fmt.Errorf(
					"register overlap: endpoint=%s unit_id=%d range=%d-%d overlaps with targets[%d] range=%d-%d",
					t.Endpoint, t.UnitID, start, end, s.idx, s.start, s.end,
				)
			}
		}

		spans[key] = append(spans[key], span{start: start, end: end, idx: i})
	}

	return nil
}
