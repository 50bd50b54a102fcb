package ccs811

// Mode-independent reads. Each is one wake cycle and available on both
// handle types.

// StatusFlags is the raw STATUS register.
type StatusFlags byte

func (s StatusFlags) HasError() bool    { return s&statusError != 0 }
func (s StatusFlags) DataReady() bool   { return s&statusDataReady != 0 }
func (s StatusFlags) AppValid() bool    { return s&statusAppValid != 0 }
func (s StatusFlags) AppVerified() bool { return s&statusAppVerify != 0 }
func (s StatusFlags) AppErased() bool   { return s&statusAppErase != 0 }

// FirmwareMode reports which image the chip says it is running.
func (s StatusFlags) FirmwareMode() FirmwareMode {
	if s&statusFWMode != 0 {
		return ModeApp
	}
	return ModeBoot
}

// Info is a one-shot identification snapshot.
type Info struct {
	HardwareID      byte
	HardwareVersion Version
	BootVersion     Version
	AppVersion      Version
}

func (d *device) readByte(reg byte) (byte, error) {
	var v byte
	err := d.awaken(func() error {
		if err := d.readRegister(reg, d.r[:1]); err != nil {
			return err
		}
		v = d.r[0]
		return nil
	})
	return v, err
}

func (d *device) readVersion(reg byte) (Version, error) {
	var v Version
	err := d.awaken(func() error {
		if err := d.readRegister(reg, d.r[:2]); err != nil {
			return err
		}
		v = decodeFWVersion(d.r[:2])
		return nil
	})
	return v, err
}

// info reads all identification registers in one wake cycle.
func (d *device) info() (Info, error) {
	var in Info
	err := d.awaken(func() error {
		if err := d.readRegister(regHWID, d.r[:1]); err != nil {
			return err
		}
		in.HardwareID = d.r[0]
		if err := d.readRegister(regHWVersion, d.r[:1]); err != nil {
			return err
		}
		in.HardwareVersion = decodeHWVersion(d.r[0])
		if err := d.readRegister(regFWBootVersion, d.r[:2]); err != nil {
			return err
		}
		in.BootVersion = decodeFWVersion(d.r[:2])
		if err := d.readRegister(regFWAppVersion, d.r[:2]); err != nil {
			return err
		}
		in.AppVersion = decodeFWVersion(d.r[:2])
		return nil
	})
	if err != nil {
		return Info{}, err
	}
	return in, nil
}

func (d *device) lastError() (DeviceErrors, error) {
	v, err := d.readByte(regErrorID)
	return decodeErrors(v), err
}

// CheckHardwareID returns ErrUnknownHardware unless id is the CCS811 HW_ID.
func CheckHardwareID(id byte) error {
	if id != HardwareIDValue {
		return ErrUnknownHardware
	}
	return nil
}

// ---- Boot ----

func (b *Boot) Status() (StatusFlags, error) {
	d, err := b.take()
	if err != nil {
		return 0, err
	}
	v, err := d.readByte(regStatus)
	return StatusFlags(v), err
}

func (b *Boot) HardwareID() (byte, error) {
	d, err := b.take()
	if err != nil {
		return 0, err
	}
	return d.readByte(regHWID)
}

func (b *Boot) HardwareVersion() (Version, error) {
	d, err := b.take()
	if err != nil {
		return Version{}, err
	}
	v, err := d.readByte(regHWVersion)
	return decodeHWVersion(v), err
}

func (b *Boot) FirmwareBootVersion() (Version, error) {
	d, err := b.take()
	if err != nil {
		return Version{}, err
	}
	return d.readVersion(regFWBootVersion)
}

func (b *Boot) FirmwareAppVersion() (Version, error) {
	d, err := b.take()
	if err != nil {
		return Version{}, err
	}
	return d.readVersion(regFWAppVersion)
}

// Info reads all identification registers in one wake cycle.
func (b *Boot) Info() (Info, error) {
	d, err := b.take()
	if err != nil {
		return Info{}, err
	}
	return d.info()
}

// LastError reads ERROR_ID. Reading clears it on the chip.
func (b *Boot) LastError() (DeviceErrors, error) {
	d, err := b.take()
	if err != nil {
		return 0, err
	}
	return d.lastError()
}

// ---- App ----

func (a *App) Status() (StatusFlags, error) {
	d, err := a.take()
	if err != nil {
		return 0, err
	}
	v, err := d.readByte(regStatus)
	return StatusFlags(v), err
}

func (a *App) HardwareID() (byte, error) {
	d, err := a.take()
	if err != nil {
		return 0, err
	}
	return d.readByte(regHWID)
}

func (a *App) HardwareVersion() (Version, error) {
	d, err := a.take()
	if err != nil {
		return Version{}, err
	}
	v, err := d.readByte(regHWVersion)
	return decodeHWVersion(v), err
}

func (a *App) FirmwareBootVersion() (Version, error) {
	d, err := a.take()
	if err != nil {
		return Version{}, err
	}
	return d.readVersion(regFWBootVersion)
}

func (a *App) FirmwareAppVersion() (Version, error) {
	d, err := a.take()
	if err != nil {
		return Version{}, err
	}
	return d.readVersion(regFWAppVersion)
}

// Info reads all identification registers in one wake cycle.
func (a *App) Info() (Info, error) {
	d, err := a.take()
	if err != nil {
		return Info{}, err
	}
	return d.info()
}

// LastError reads ERROR_ID. Reading clears it on the chip.
func (a *App) LastError() (DeviceErrors, error) {
	d, err := a.take()
	if err != nil {
		return 0, err
	}
	return d.lastError()
}
