// internal/config/normalize.go
package config

import "ccs811-go/x/mathx"

// Normalize applies post-validation normalization.
// It is allowed to mutate configuration.
// It MUST be called only after Validate().
func Normalize(cfg *Config) {
	if cfg == nil {
		return
	}
	if cfg.Sensor.Address == 0 {
		cfg.Sensor.Address = 0x5A
	}
	cfg.Measure.PeriodMs = mathx.ClampDuration(cfg.Measure.PeriodMs, 1000, 250, 3_600_000)
	cfg.Bringup.PollMs = mathx.ClampDuration(cfg.Bringup.PollMs, 10, 1, 1000)
	if cfg.Bringup.Attempts == 0 {
		cfg.Bringup.Attempts = 3
	}
	if cfg.Log.Level == "" {
		cfg.Log.Level = "info"
	}
}
