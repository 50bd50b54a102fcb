// Package ccs811 provides a TinyGo-compatible driver for the CCS811 digital
// gas sensor (eCO2/eTVOC) on I2C.
//
// The chip boots into its boot loader. The driver models the two firmware
// modes as two handle types:
//
//	boot, _ := ccs811.New(bus, ccs811.DefaultConfig())
//	app, err := boot.StartApplication()   // *Boot is consumed on success
//	_ = app.SetMode(ccs811.ConstantPower1s)
//	res, err := app.Data()                 // returns ErrPending until ready
//
// Boot-only operations (start, verify, erase) exist only on *Boot and
// measurement operations exist only on *App. A failed transition returns a
// *ModeChangeError whose Dev is the caller's original *Boot, still usable.
// Once a transition succeeds the old *Boot fails every call with
// ErrHandleConsumed.
//
// When a wake pin is configured, every public call drives nWAKE low, waits
// WakeDelayUs, performs its bus exchange and drives nWAKE high again, on all
// exit paths. Multi-step chip operations (verify, erase, result readout) are
// non-blocking: each call is one wake cycle and returns ErrPending until the
// chip reports completion. Retry cadence is the caller's business.
//
// NOTE: I2C.Tx MUST perform a write followed by a repeated-start read when
// both w and r are provided, without releasing the bus.
//
// Concurrency: handles are not safe for concurrent use.
package ccs811

import (
	"errors"

	"tinygo.org/x/drivers"
)

// WakePin drives the active-low nWAKE input.
type WakePin interface {
	SetLow() error
	SetHigh() error
}

// PinFunc adapts an error-less level setter (for example machine.Pin.Set)
// to WakePin.
type PinFunc func(level bool)

func (f PinFunc) SetLow() error  { f(false); return nil }
func (f PinFunc) SetHigh() error { f(true); return nil }

// Delayer blocks for at least us microseconds.
type Delayer interface {
	DelayMicroseconds(us uint32)
}

// DelayFunc adapts a function to Delayer.
type DelayFunc func(us uint32)

func (f DelayFunc) DelayMicroseconds(us uint32) { f(us) }

// Config controls addressing and wake behaviour. Wake and Delay are optional.
type Config struct {
	// Address defaults to AddressDefault if zero.
	Address uint16
	// Wake is the nWAKE output. Nil when nWAKE is tied low. The driver only
	// drives it inside a call; the caller must leave it high (chip asleep)
	// before handing it over, as New does not touch it.
	Wake WakePin
	// Delay is used once per wake cycle after asserting nWAKE.
	Delay Delayer
	// WakeDelayUs is the settle time after nWAKE goes low. DefaultConfig
	// sets 50 µs; zero skips the delay.
	WakeDelayUs uint32
}

// DefaultConfig returns a config for the default address without a wake pin.
func DefaultConfig() Config {
	return Config{
		Address:     AddressDefault,
		WakeDelayUs: 50,
	}
}

// Validate checks the fields New depends on.
func (c Config) Validate() error {
	switch c.Address {
	case 0, AddressDefault, AddressAlt:
	default:
		return ErrInvalidAddress
	}
	return nil
}

// FirmwareMode tags which image the chip is running.
type FirmwareMode uint8

const (
	ModeBoot FirmwareMode = iota
	ModeApp
)

func (m FirmwareMode) String() string {
	if m == ModeApp {
		return "application"
	}
	return "boot"
}

type pendingOp uint8

const (
	pendingNone pendingOp = iota
	pendingVerify
	pendingErase
)

// device is the state shared by the mode handles. Exactly one handle points
// at it at any time.
type device struct {
	bus         drivers.I2C
	addr        uint16
	wake        WakePin
	delay       Delayer
	wakeDelayUs uint32

	mode     FirmwareMode
	measMode byte      // last MEAS_MODE value written or read
	pending  pendingOp // verify/erase issued and not yet complete

	// Fixed buffers to avoid per-call heap allocations.
	w [6]byte
	r [8]byte
}

// Boot is a handle to a chip running its boot loader.
type Boot struct{ d *device }

// App is a handle to a chip running its application firmware.
type App struct{ d *device }

var errNilBus = errors.New("ccs811: nil I2C bus")

// New creates a Boot handle. The I2C bus must already be configured. New
// does not touch the device.
func New(bus drivers.I2C, cfg Config) (*Boot, error) {
	if bus == nil {
		return nil, errNilBus
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	addr := cfg.Address
	if addr == 0 {
		addr = AddressDefault
	}
	return &Boot{d: &device{
		bus:         bus,
		addr:        addr,
		wake:        cfg.Wake,
		delay:       cfg.Delay,
		wakeDelayUs: cfg.WakeDelayUs,
		mode:        ModeBoot,
	}}, nil
}

// Address returns the 7-bit bus address.
func (b *Boot) Address() uint16 {
	if b == nil || b.d == nil {
		return 0
	}
	return b.d.addr
}

// Address returns the 7-bit bus address.
func (a *App) Address() uint16 {
	if a == nil || a.d == nil {
		return 0
	}
	return a.d.addr
}

// take returns the shared state if the handle is live and tagged Boot.
func (b *Boot) take() (*device, error) {
	if b == nil || b.d == nil {
		return nil, ErrHandleConsumed
	}
	if err := b.d.requireMode(ModeBoot); err != nil {
		return nil, err
	}
	return b.d, nil
}

// take returns the shared state if the handle is live and tagged App.
func (a *App) take() (*device, error) {
	if a == nil || a.d == nil {
		return nil, ErrHandleConsumed
	}
	if err := a.d.requireMode(ModeApp); err != nil {
		return nil, err
	}
	return a.d, nil
}

func (d *device) requireMode(m FirmwareMode) error {
	if d.mode != m {
		return ErrWrongMode
	}
	return nil
}
