// Package hostio binds the ccs811 driver to Linux hardware through periph.io:
// an I²C bus from i2creg, an optional nWAKE GPIO from gpioreg and a
// sleeping delay source.
package hostio

import (
	"time"

	"github.com/pkg/errors"
	"go.uber.org/multierr"
	"periph.io/x/conn/v3/gpio"
	"periph.io/x/conn/v3/gpio/gpioreg"
	"periph.io/x/conn/v3/i2c"
	"periph.io/x/conn/v3/i2c/i2creg"
	"periph.io/x/conn/v3/physic"
	"periph.io/x/host/v3"
	"tinygo.org/x/drivers"

	"ccs811-go/drivers/ccs811"
)

// Options selects the host resources.
type Options struct {
	// Bus is an i2creg name ("1", "/dev/i2c-1", "I2C1"). Empty opens the
	// first registered bus.
	Bus string
	// SpeedHz sets the bus clock when non-zero.
	SpeedHz int64
	// WakePin is a gpioreg name for nWAKE. Empty when nWAKE is tied low.
	WakePin string
}

// Host owns the opened bus and pin.
type Host struct {
	bus  i2c.BusCloser
	wake gpio.PinOut
}

// Compile-time check: periph's bus already has the driver's Tx shape.
var _ drivers.I2C = (i2c.Bus)(nil)

var (
	hostInit   = host.Init
	openBus    = i2creg.Open
	lookupWake = func(name string) gpio.PinOut {
		if p := gpioreg.ByName(name); p != nil {
			return p
		}
		return nil
	}
)

// Open initialises periph host drivers and opens the configured resources.
func Open(opts Options) (*Host, error) {
	if _, err := hostInit(); err != nil {
		return nil, errors.Wrap(err, "periph host init")
	}
	bus, err := openBus(opts.Bus)
	if err != nil {
		return nil, errors.Wrapf(err, "open i2c bus %q", opts.Bus)
	}
	if opts.SpeedHz > 0 {
		if err := bus.SetSpeed(physic.Frequency(opts.SpeedHz) * physic.Hertz); err != nil {
			return nil, multierr.Combine(errors.Wrap(err, "set i2c speed"), bus.Close())
		}
	}
	var wake gpio.PinOut
	if opts.WakePin != "" {
		wake = lookupWake(opts.WakePin)
		if wake == nil {
			return nil, multierr.Combine(errors.Errorf("unknown wake pin %q", opts.WakePin), bus.Close())
		}
	}
	return New(bus, wake)
}

// New wraps already-opened resources. wake may be nil. The wake pin is
// driven high so the chip sleeps between calls.
func New(bus i2c.BusCloser, wake gpio.PinOut) (*Host, error) {
	if wake != nil {
		if err := wake.Out(gpio.High); err != nil {
			return nil, multierr.Combine(errors.Wrap(err, "release wake pin"), bus.Close())
		}
	}
	return &Host{bus: bus, wake: wake}, nil
}

// Bus returns the I²C bus as the driver's bus type.
func (h *Host) Bus() drivers.I2C { return h.bus }

// DriverConfig fills the wake and delay fields of cfg for this host.
func (h *Host) DriverConfig(cfg ccs811.Config) ccs811.Config {
	if h.wake != nil {
		cfg.Wake = wakePin{h.wake}
		cfg.Delay = SleepDelay{}
	}
	return cfg
}

// Close releases the wake pin and closes the bus.
func (h *Host) Close() error {
	var err error
	if h.wake != nil {
		err = multierr.Append(err, errors.Wrap(h.wake.Out(gpio.High), "release wake pin"))
	}
	return multierr.Append(err, errors.Wrap(h.bus.Close(), "close i2c bus"))
}

// wakePin drives nWAKE through a periph output.
type wakePin struct{ p gpio.PinOut }

func (w wakePin) SetLow() error  { return w.p.Out(gpio.Low) }
func (w wakePin) SetHigh() error { return w.p.Out(gpio.High) }

// SleepDelay implements ccs811.Delayer with time.Sleep.
type SleepDelay struct{}

func (SleepDelay) DelayMicroseconds(us uint32) {
	time.Sleep(time.Duration(us) * time.Microsecond)
}
