package errcode

import (
	"errors"

	"ccs811-go/drivers/ccs811"
)

// Code is a stable, caller-facing error identifier.
// It is a string newtype, comparable, allocation-free, and implements error.
type Code string

func (c Code) Error() string { return string(c) }

// Canonical codes (short, stable).
const (
	OK             Code = "ok"
	Busy           Code = "busy"
	Unsupported    Code = "unsupported"
	InvalidParams  Code = "invalid_params"
	InvalidPayload Code = "invalid_payload"
	NotReady       Code = "not_ready"
	Timeout        Code = "timeout"

	BusError       Code = "bus_error"
	PinError       Code = "pin_error"
	DeviceError    Code = "device_error"
	NoValidApp     Code = "no_valid_app"
	WrongMode      Code = "wrong_mode"
	Consumed       Code = "handle_consumed"
	UnknownHW      Code = "unknown_hardware"
	InvalidAddress Code = "invalid_address"

	Error Code = "error" // generic fallback
)

// Optional wrapper when we want to keep context and a cause.
type E struct {
	C   Code
	Op  string
	Msg string
	Err error
}

func (e *E) Error() string {
	if e.Msg != "" {
		return string(e.C) + ": " + e.Msg
	}
	return string(e.C)
}
func (e *E) Unwrap() error { return e.Err }
func (e *E) Code() Code    { return e.C }

// Wrap tags err with the code MapDriverErr assigns it.
func Wrap(op string, err error) error {
	if err == nil {
		return nil
	}
	return &E{C: MapDriverErr(err), Op: op, Msg: err.Error(), Err: err}
}

// Of extracts a Code from an error, defaulting to Error.
func Of(err error) Code {
	if err == nil {
		return OK
	}
	var c Code
	if errors.As(err, &c) {
		return c
	}
	type coder interface{ Code() Code }
	var x coder
	if errors.As(err, &x) {
		return x.Code()
	}
	return Error
}

// MapDriverErr maps ccs811 driver errors to a Code. A ModeChangeError maps to
// the code of its cause.
func MapDriverErr(err error) Code {
	if err == nil {
		return OK
	}
	var (
		be *ccs811.BusError
		pe *ccs811.PinError
		de ccs811.DeviceErrors
	)
	switch {
	case errors.Is(err, ccs811.ErrPending):
		return NotReady
	case errors.Is(err, ccs811.ErrNoValidApp):
		return NoValidApp
	case errors.Is(err, ccs811.ErrWrongMode):
		return WrongMode
	case errors.Is(err, ccs811.ErrHandleConsumed):
		return Consumed
	case errors.Is(err, ccs811.ErrUnknownHardware):
		return UnknownHW
	case errors.Is(err, ccs811.ErrInvalidAddress):
		return InvalidAddress
	case errors.Is(err, ccs811.ErrInvalidMode), errors.Is(err, ccs811.ErrInvalidThresholds):
		return InvalidParams
	case errors.As(err, &be):
		return BusError
	case errors.As(err, &pe):
		return PinError
	case errors.As(err, &de):
		return DeviceError
	}
	return Of(err)
}
