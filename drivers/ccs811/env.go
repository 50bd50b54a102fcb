package ccs811

import "errors"

var ErrInvalidThresholds = errors.New("ccs811: low threshold must be below high threshold")

// Environment compensation limits, in tenths. ENV_DATA stores temperature
// offset by +25 °C, so -25 °C is the floor.
const (
	MinHumidityDeciPct  = 0
	MaxHumidityDeciPct  = 1000
	MinTemperatureDeciC = -250
	MaxTemperatureDeciC = 850
)

// ClampEnvironment limits humidity and temperature to the range
// SetEnvironment accepts.
func ClampEnvironment(humidityDeciPct, temperatureDeciC int32) (int32, int32) {
	return clampI32(humidityDeciPct, MinHumidityDeciPct, MaxHumidityDeciPct),
		clampI32(temperatureDeciC, MinTemperatureDeciC, MaxTemperatureDeciC)
}

func clampI32(v, lo, hi int32) int32 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

// SetEnvironment writes ENV_DATA for humidity/temperature compensation.
// Inputs are tenths of %RH and tenths of °C, matching the fixed-point
// helpers of the humidity sensor drivers. Out-of-range values are clamped
// with ClampEnvironment.
func (a *App) SetEnvironment(humidityDeciPct, temperatureDeciC int32) error {
	d, err := a.take()
	if err != nil {
		return err
	}
	var buf [4]byte
	h, t := ClampEnvironment(humidityDeciPct, temperatureDeciC)
	encodeEnvironment(buf[:], h, t)
	return d.awaken(func() error {
		return d.writeRegister(regEnvData, buf[:])
	})
}

// Baseline reads the 2-byte algorithm baseline. The value is opaque and only
// meaningful when written back with SetBaseline.
func (a *App) Baseline() ([2]byte, error) {
	var out [2]byte
	d, err := a.take()
	if err != nil {
		return out, err
	}
	err = d.awaken(func() error {
		if err := d.readRegister(regBaseline, d.r[:2]); err != nil {
			return err
		}
		copy(out[:], d.r[:2])
		return nil
	})
	return out, err
}

// SetBaseline restores a baseline previously read with Baseline.
func (a *App) SetBaseline(v [2]byte) error {
	d, err := a.take()
	if err != nil {
		return err
	}
	return d.awaken(func() error {
		return d.writeRegister(regBaseline, v[:])
	})
}

// SetEco2Thresholds configures the eCO2 band used when interrupts are
// enabled in threshold mode. Hysteresis is in ppm (datasheet default 50).
func (a *App) SetEco2Thresholds(low, high uint16, hysteresis uint8) error {
	d, err := a.take()
	if err != nil {
		return err
	}
	if low >= high {
		return ErrInvalidThresholds
	}
	var buf [5]byte
	encodeThresholds(buf[:], low, high, hysteresis)
	return d.awaken(func() error {
		return d.writeRegister(regThresholds, buf[:])
	})
}

// EnableInterrupts asserts nINT on new data, or only on threshold crossings
// when onThreshold is set. The drive mode is unchanged.
func (a *App) EnableInterrupts(onThreshold bool) error {
	d, err := a.take()
	if err != nil {
		return err
	}
	v := d.measMode&measModeDriveMask | measModeInterrupt
	if onThreshold {
		v |= measModeThresh
	}
	return d.awaken(func() error { return d.writeMeasMode(v) })
}

// DisableInterrupts clears both interrupt bits. The drive mode is unchanged.
func (a *App) DisableInterrupts() error {
	d, err := a.take()
	if err != nil {
		return err
	}
	v := d.measMode & measModeDriveMask
	return d.awaken(func() error { return d.writeMeasMode(v) })
}
