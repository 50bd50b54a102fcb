package ccs811

// Bus primitives. These assume the chip is awake and never touch nWAKE.

func (d *device) readStatus() (byte, error) {
	if err := d.readRegister(regStatus, d.r[:1]); err != nil {
		return 0, err
	}
	return d.r[0], nil
}

// writeRegister writes reg followed by data in one transaction. With no
// data only the register address is sent (command registers).
func (d *device) writeRegister(reg byte, data []byte) error {
	if len(data) > len(d.w)-1 {
		panic("ccs811: register payload too long")
	}
	d.w[0] = reg
	n := copy(d.w[1:], data)
	if err := d.bus.Tx(d.addr, d.w[:1+n], nil); err != nil {
		return &BusError{Reg: reg, Err: err}
	}
	return nil
}

func (d *device) writeRegister1(reg, v byte) error {
	d.w[0] = reg
	d.w[1] = v
	if err := d.bus.Tx(d.addr, d.w[:2], nil); err != nil {
		return &BusError{Reg: reg, Err: err}
	}
	return nil
}

// readRegister writes the register address and reads len(buf) bytes with a
// repeated start.
func (d *device) readRegister(reg byte, buf []byte) error {
	d.w[0] = reg
	if err := d.bus.Tx(d.addr, d.w[:1], buf); err != nil {
		return &BusError{Reg: reg, Err: err}
	}
	return nil
}

// readDeviceErrors reads ERROR_ID and returns it as an error value. A bus
// failure is returned instead when the read itself fails.
func (d *device) readDeviceErrors() error {
	if err := d.readRegister(regErrorID, d.r[:1]); err != nil {
		return err
	}
	return decodeErrors(d.r[0])
}
