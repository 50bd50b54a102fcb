package ccs811

// SetMode writes the drive mode, keeping the interrupt configuration bits of
// the previous MEAS_MODE value. None of the App methods change firmware mode.
func (a *App) SetMode(mode MeasurementMode) error {
	d, err := a.take()
	if err != nil {
		return err
	}
	if !mode.Valid() {
		return ErrInvalidMode
	}
	return d.awaken(func() error {
		return d.writeMeasMode(encodeMeasMode(mode, d.measMode))
	})
}

// Mode returns the cached drive mode. No I/O.
func (a *App) Mode() MeasurementMode {
	if a == nil || a.d == nil {
		return Idle
	}
	return driveModeOf(a.d.measMode)
}

// HasDataReady reports the DATA_READY status bit.
func (a *App) HasDataReady() (bool, error) {
	d, err := a.take()
	if err != nil {
		return false, err
	}
	var st byte
	err = d.awaken(func() error {
		var err error
		st, err = d.readStatus()
		return err
	})
	if err != nil {
		return false, err
	}
	return st&statusDataReady != 0, nil
}

// RawData reads RAW_DATA: sensor current (µA, 0..63) and voltage (ADC
// counts, 0..1023).
func (a *App) RawData() (current uint8, voltage uint16, err error) {
	d, err := a.take()
	if err != nil {
		return 0, 0, err
	}
	err = d.awaken(func() error {
		if err := d.readRegister(regRawData, d.r[:2]); err != nil {
			return err
		}
		current, voltage = decodeRaw(d.r[:2])
		return nil
	})
	if err != nil {
		return 0, 0, err
	}
	return current, voltage, nil
}

// writeMeasMode writes MEAS_MODE and updates the cache once the bus write
// has gone through.
func (d *device) writeMeasMode(v byte) error {
	if err := d.writeRegister1(regMeasMode, v); err != nil {
		return err
	}
	d.measMode = v
	return nil
}
