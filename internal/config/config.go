// internal/config/config.go
package config

import (
	"errors"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

type Config struct {
	Serial  SerialConfig  `yaml:"serial"`
	Logging LoggingConfig `yaml:"logging"`
	Monitor MonitorConfig `yaml:"monitor"`
}

// ---- SERIAL ----

type SerialConfig struct {
	Device   string `yaml:"device"`
	Driver   string `yaml:"driver"` // goburrow | bugst
	BaudRate int    `yaml:"baud_rate"`
	Address  uint8  `yaml:"address"`

	// TimeoutMs bounds each blocking read. 0 blocks forever.
	TimeoutMs int `yaml:"timeout_ms"`

	// SettleMs is slept once after opening the port. nil => default.
	SettleMs *int `yaml:"settle_ms"`
}

// ---- LOGGING ----

type LoggingConfig struct {
	Level  string        `yaml:"level"`
	Format string        `yaml:"format"` // console | json
	File   LogFileConfig `yaml:"file"`
}

type LogFileConfig struct {
	Filename   string `yaml:"filename"`
	MaxSizeMB  int    `yaml:"max_size_mb"`
	MaxBackups int    `yaml:"max_backups"`
	MaxAgeDays int    `yaml:"max_age_days"`
	Compress   bool   `yaml:"compress"`
}

// ---- MONITOR ----

type MonitorConfig struct {
	IntervalMs    int    `yaml:"interval_ms"`
	MetricsListen string `yaml:"metrics_listen"`

	// DeviceName overrides the name written into the register block.
	// Empty => "<model> <serial>" read from the device.
	DeviceName string `yaml:"device_name"`

	Targets []TargetConfig `yaml:"targets"`
}

// ---- MODBUS TARGET ----

type TargetConfig struct {
	Endpoint    string `yaml:"endpoint"`
	UnitID      uint8  `yaml:"unit_id"`
	BaseAddress uint16 `yaml:"base_address"`
	TimeoutMs   int    `yaml:"timeout_ms"`
}

// Load reads and parses a YAML config file.
// An empty path yields a zero Config; callers apply Normalize for defaults.
func Load(path string) (*Config, error) {
	cfg := &Config{}
	if path == "" {
		return cfg, nil
	}

	b, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("config: %s not found", path)
		}
		return nil, fmt.Errorf("config: read %s: %w", path, err)
	}

	if err := yaml.Unmarshal(b, cfg); err != nil {
		return nil, fmt.Errorf("config: parse %s: %w", path, err)
	}

	return cfg, nil
}
