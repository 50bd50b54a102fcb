package ccs811

import "errors"

var (
	// Sentinel errors (TinyGo-safe; no fmt).
	ErrNoValidApp      = errors.New("ccs811: no valid application firmware")
	ErrWrongMode       = errors.New("ccs811: operation not valid in current firmware mode")
	ErrHandleConsumed  = errors.New("ccs811: device handle already consumed by a mode change")
	ErrUnknownHardware = errors.New("ccs811: unexpected hardware id")
	ErrInvalidMode     = errors.New("ccs811: invalid measurement mode")
	ErrInvalidAddress  = errors.New("ccs811: address must be 0x5A or 0x5B")

	// ErrPending is not a failure: the chip has not finished yet and the
	// call should be repeated later.
	ErrPending = errors.New("ccs811: pending")
)

// BusError is a transport failure on the I2C bus. Never retried internally.
type BusError struct {
	Reg byte // register addressed by the failed transaction
	Err error
}

func (e *BusError) Error() string {
	return "ccs811: bus error at register 0x" + hex8(e.Reg) + ": " + errString(e.Err)
}

func (e *BusError) Unwrap() error { return e.Err }

// PinError is a failure driving the nWAKE output.
type PinError struct {
	High bool // level being driven when the failure occurred
	Err  error
}

func (e *PinError) Error() string {
	lvl := "low"
	if e.High {
		lvl = "high"
	}
	return "ccs811: wake pin set " + lvl + ": " + errString(e.Err)
}

func (e *PinError) Unwrap() error { return e.Err }

// DeviceErrors is the chip-reported ERROR_ID bitmap. Several causes may be
// reported at once.
type DeviceErrors uint8

const (
	InvalidRegisterWrite DeviceErrors = errWriteRegInvalid // write to an invalid register or command
	InvalidRegisterRead  DeviceErrors = errReadRegInvalid  // read from an invalid register
	InvalidMeasurement   DeviceErrors = errMeasModeInvalid // unsupported MEAS_MODE value
	MaxResistance        DeviceErrors = errMaxResistance   // sensor resistance at maximum range
	HeaterFault          DeviceErrors = errHeaterFault     // heater current out of range
	HeaterSupply         DeviceErrors = errHeaterSupply    // heater voltage not applied correctly

	allDeviceErrors = InvalidRegisterWrite | InvalidRegisterRead | InvalidMeasurement |
		MaxResistance | HeaterFault | HeaterSupply
)

var deviceErrorNames = [...]struct {
	bit  DeviceErrors
	name string
}{
	{InvalidRegisterWrite, "write_reg_invalid"},
	{InvalidRegisterRead, "read_reg_invalid"},
	{InvalidMeasurement, "measmode_invalid"},
	{MaxResistance, "max_resistance"},
	{HeaterFault, "heater_fault"},
	{HeaterSupply, "heater_supply"},
}

func (e DeviceErrors) Has(flag DeviceErrors) bool { return e&flag != 0 }

// Causes lists the set causes in bit order.
func (e DeviceErrors) Causes() []DeviceErrors {
	var out []DeviceErrors
	for _, n := range deviceErrorNames {
		if e.Has(n.bit) {
			out = append(out, n.bit)
		}
	}
	return out
}

func (e DeviceErrors) Error() string {
	s := "ccs811: device error"
	if e == 0 {
		return s + " (unspecified)"
	}
	sep := ": "
	for _, n := range deviceErrorNames {
		if e.Has(n.bit) {
			s += sep + n.name
			sep = ","
		}
	}
	return s
}

// ModeChangeError is returned by transitions that did not happen. Dev is the
// handle the caller passed in, still in its original mode and usable for a
// retry or fallback.
type ModeChangeError struct {
	Dev *Boot
	Err error
}

func (e *ModeChangeError) Error() string { return e.Err.Error() }
func (e *ModeChangeError) Unwrap() error { return e.Err }

func errString(err error) string {
	if err == nil {
		return "<nil>"
	}
	return err.Error()
}

func hex8(b byte) string {
	const digits = "0123456789ABCDEF"
	return string([]byte{digits[b>>4], digits[b&0x0F]})
}
