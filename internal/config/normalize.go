// internal/config/normalize.go
package config

// Serial drivers.
const (
	DriverGoburrow = "goburrow"
	DriverBugst    = "bugst"
)

// Defaults match the 1785B factory settings.
const (
	DefaultDevice     = "/dev/ttyUSB0"
	DefaultBaudRate   = 9600
	DefaultSettleMs   = 100
	DefaultIntervalMs = 1000
	DefaultTargetMs   = 2000
	DefaultLogLevel   = "warn"
	DefaultLogFormat  = "console"

	// BlockRegisters is the size of the mirrored register block.
	// Kept in sync with status.SlotsPerDevice.
	BlockRegisters = 24

	// DeviceNameMaxChars is the register block name capacity.
	DeviceNameMaxChars = 16
)

// Normalize applies post-validation normalization.
// It is allowed to mutate configuration.
// It MUST be called only after Validate().
func Normalize(cfg *Config) {
	if cfg == nil {
		return
	}

	// ---- serial ----

	if cfg.Serial.Device == "" {
		cfg.Serial.Device = DefaultDevice
	}
	if cfg.Serial.Driver == "" {
		cfg.Serial.Driver = DriverGoburrow
	}
	if cfg.Serial.BaudRate == 0 {
		cfg.Serial.BaudRate = DefaultBaudRate
	}
	if cfg.Serial.SettleMs == nil {
		v := DefaultSettleMs
		cfg.Serial.SettleMs = &v
	}

	// ---- logging ----

	if cfg.Logging.Level == "" {
		cfg.Logging.Level = DefaultLogLevel
	}
	if cfg.Logging.Format == "" {
		cfg.Logging.Format = DefaultLogFormat
	}

	// ---- monitor ----

	if cfg.Monitor.IntervalMs == 0 {
		cfg.Monitor.IntervalMs = DefaultIntervalMs
	}

	// Truncate device_name (ASCII already validated)
	if len(cfg.Monitor.DeviceName) > DeviceNameMaxChars {
		cfg.Monitor.DeviceName = cfg.Monitor.DeviceName[:DeviceNameMaxChars]
	}

	for i := range cfg.Monitor.Targets {
		t := &cfg.Monitor.Targets[i]
		if t.TimeoutMs == 0 {
			t.TimeoutMs = DefaultTargetMs
		}
	}
}
