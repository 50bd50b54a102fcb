// internal/config/config.go
package config

import (
	"bytes"
	"io"
	"os"

	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"
)

type Config struct {
	Sensor  SensorConfig  `yaml:"sensor"`
	Measure MeasureConfig `yaml:"measure"`
	Bringup BringupConfig `yaml:"bringup"`
	Worker  WorkerConfig  `yaml:"worker"`
	Log     LogConfig     `yaml:"log"`
}

// ---- SENSOR ----

type SensorConfig struct {
	Bus         string `yaml:"bus"`      // i2creg name; empty = first bus
	SpeedHz     int64  `yaml:"speed_hz"` // 0 = leave as is
	Address     uint16 `yaml:"address"`  // 0x5A or 0x5B
	WakePin     string `yaml:"wake_pin"` // gpioreg name; empty = nWAKE tied low
	WakeDelayUs uint32 `yaml:"wake_delay_us"`
}

// ---- MEASURE ----

type MeasureConfig struct {
	Mode        string       `yaml:"mode"`
	PeriodMs    int          `yaml:"period_ms"`
	Environment *Environment `yaml:"environment"`
	Baseline    *uint16      `yaml:"baseline"` // restored after start when set
}

type Environment struct {
	DeciPercent int32 `yaml:"deci_percent"`
	DeciC       int32 `yaml:"deci_c"`
}

// ---- BRINGUP ----

type BringupConfig struct {
	Verify   bool `yaml:"verify"`
	PollMs   int  `yaml:"poll_ms"`
	Attempts int  `yaml:"attempts"`
}

// ---- WORKER ----

type WorkerConfig struct {
	RetryBackoffMs int `yaml:"retry_backoff_ms"`
	MaxRetries     int `yaml:"max_retries"`
}

// ---- LOG ----

type LogConfig struct {
	Level       string `yaml:"level"` // debug | info | warn | error
	Development bool   `yaml:"development"`
}

// Default returns the configuration used when no file is given.
func Default() *Config {
	return &Config{
		Sensor:  SensorConfig{Address: 0x5A, WakeDelayUs: 50},
		Measure: MeasureConfig{Mode: "constant_power_1s", PeriodMs: 1000},
		Bringup: BringupConfig{PollMs: 10, Attempts: 3},
		Worker:  WorkerConfig{RetryBackoffMs: 100, MaxRetries: 20},
		Log:     LogConfig{Level: "info"},
	}
}

// Load reads a YAML file over the defaults. Unknown keys are rejected.
func Load(path string) (*Config, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrap(err, "read config")
	}
	return Parse(b)
}

// Parse decodes YAML over the defaults. An empty document yields the
// defaults.
func Parse(b []byte) (*Config, error) {
	cfg := Default()
	dec := yaml.NewDecoder(bytes.NewReader(b))
	dec.KnownFields(true)
	if err := dec.Decode(cfg); err != nil && !errors.Is(err, io.EOF) {
		return nil, errors.Wrap(err, "decode config")
	}
	return cfg, nil
}
