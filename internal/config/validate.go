// internal/config/validate.go
package config

import (
	"github.com/pkg/errors"

	"ccs811-go/drivers/ccs811"
)

// Validate checks configuration correctness.
// It performs declarative validation only.
// It MUST NOT mutate configuration.
func Validate(cfg *Config) error {
	if cfg == nil {
		return errors.New("nil config")
	}

	switch cfg.Sensor.Address {
	case 0, ccs811.AddressDefault, ccs811.AddressAlt:
	default:
		return errors.Errorf("sensor.address 0x%02X: must be 0x5A or 0x5B", cfg.Sensor.Address)
	}
	if cfg.Sensor.SpeedHz < 0 {
		return errors.New("sensor.speed_hz must not be negative")
	}

	if _, ok := ccs811.ParseMeasurementMode(cfg.Measure.Mode); !ok {
		return errors.Errorf("measure.mode %q: unknown mode", cfg.Measure.Mode)
	}
	if cfg.Measure.PeriodMs < 0 {
		return errors.New("measure.period_ms must not be negative")
	}
	if e := cfg.Measure.Environment; e != nil {
		if e.DeciPercent < ccs811.MinHumidityDeciPct || e.DeciPercent > ccs811.MaxHumidityDeciPct {
			return errors.Errorf("measure.environment.deci_percent %d: out of range %d..%d",
				e.DeciPercent, ccs811.MinHumidityDeciPct, ccs811.MaxHumidityDeciPct)
		}
		if e.DeciC < ccs811.MinTemperatureDeciC || e.DeciC > ccs811.MaxTemperatureDeciC {
			return errors.Errorf("measure.environment.deci_c %d: out of range %d..%d",
				e.DeciC, ccs811.MinTemperatureDeciC, ccs811.MaxTemperatureDeciC)
		}
	}

	if cfg.Bringup.PollMs < 0 || cfg.Bringup.Attempts < 0 {
		return errors.New("bringup timings must not be negative")
	}
	if cfg.Worker.RetryBackoffMs < 0 || cfg.Worker.MaxRetries < 0 {
		return errors.New("worker timings must not be negative")
	}

	switch cfg.Log.Level {
	case "", "debug", "info", "warn", "error":
	default:
		return errors.Errorf("log.level %q: unknown level", cfg.Log.Level)
	}
	return nil
}
