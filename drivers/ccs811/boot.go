package ccs811

// HasValidApp reports the APP_VALID status bit. Read-only.
func (b *Boot) HasValidApp() (bool, error) {
	d, err := b.take()
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
	return st&statusAppValid != 0, nil
}

// StartApplication moves the chip from boot loader to application firmware.
//
// On success b is consumed and the returned *App shares its bus, address and
// wake pin. On failure the error is a *ModeChangeError wrapping
// ErrNoValidApp, a *BusError, a *PinError or DeviceErrors, and its Dev is b,
// still tagged Boot.
//
// A wake pin release failure after a successful start is reported as a
// failure: the chip may be running the application, but the handle stays
// Boot until a later call (for example AttachApplication) confirms it.
func (b *Boot) StartApplication() (*App, error) {
	d, err := b.take()
	if err != nil {
		return nil, &ModeChangeError{Dev: b, Err: err}
	}
	err = d.awaken(func() error {
		st, err := d.readStatus()
		if err != nil {
			return err
		}
		if st&statusAppValid == 0 {
			return ErrNoValidApp
		}
		if err := d.writeRegister(regAppStart, nil); err != nil {
			return err
		}
		// The boot loader flags a rejected APP_START in STATUS.
		st, err = d.readStatus()
		if err != nil {
			return err
		}
		if st&statusError != 0 {
			return d.readDeviceErrors()
		}
		return nil
	})
	if err != nil {
		return nil, &ModeChangeError{Dev: b, Err: err}
	}
	return b.promote(measModeReset), nil
}

// AttachApplication returns an App handle for a chip that is already running
// its application (FW_MODE set), for example after a host process restart.
// The current MEAS_MODE is read back to seed the mode cache. A chip still in
// its boot loader fails with ErrWrongMode.
func (b *Boot) AttachApplication() (*App, error) {
	d, err := b.take()
	if err != nil {
		return nil, &ModeChangeError{Dev: b, Err: err}
	}
	var meas byte
	err = d.awaken(func() error {
		st, err := d.readStatus()
		if err != nil {
			return err
		}
		if st&statusFWMode == 0 {
			return ErrWrongMode
		}
		if err := d.readRegister(regMeasMode, d.r[:1]); err != nil {
			return err
		}
		meas = d.r[0]
		return nil
	})
	if err != nil {
		return nil, &ModeChangeError{Dev: b, Err: err}
	}
	return b.promote(meas), nil
}

// measModeReset seeds the cache after APP_START: the application resets
// MEAS_MODE to idle with interrupts disabled.
const measModeReset = 0x00

// promote re-tags the shared state as App and invalidates b.
func (b *Boot) promote(meas byte) *App {
	d := b.d
	b.d = nil
	d.mode = ModeApp
	d.measMode = meas
	d.pending = pendingNone
	return &App{d: d}
}
