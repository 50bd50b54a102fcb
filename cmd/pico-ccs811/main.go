//go:build rp2040 || rp2350

// Command pico-ccs811 samples a CCS811 on a Raspberry Pi Pico and prints one
// line per result on UART0.
//
// Wiring: SDA GP4, SCL GP5, nWAKE GP6, ADDR low (0x5A).
package main

import (
	"errors"
	"machine"
	"time"

	"github.com/jangala-dev/tinygo-uartx/uartx"

	"ccs811-go/drivers/ccs811"
	"ccs811-go/x/conv"
)

const (
	pinSDA  = machine.GP4
	pinSCL  = machine.GP5
	pinWake = machine.GP6

	pollEvery = 100 * time.Millisecond
	mode      = ccs811.ConstantPower1s
)

var (
	out  = uartx.UART0
	line [96]byte
)

func logLine(b []byte) {
	_, _ = out.Write(append(b, '\r', '\n'))
}

func logErr(prefix string, err error) {
	b := append(line[:0], prefix...)
	b = append(b, ": "...)
	b = append(b, err.Error()...)
	logLine(b)
}

func main() {
	time.Sleep(1500 * time.Millisecond)
	_ = out.Configure(uartx.UARTConfig{
		BaudRate: 115200,
		TX:       machine.UART0_TX_PIN,
		RX:       machine.UART0_RX_PIN,
	})
	logLine(append(line[:0], "[ccs811] boot"...))

	bus := machine.I2C0
	if err := bus.Configure(machine.I2CConfig{
		Frequency: 100 * machine.KHz,
		SDA:       pinSDA,
		SCL:       pinSCL,
	}); err != nil {
		logErr("[ccs811] i2c", err)
		return
	}
	pinWake.Configure(machine.PinConfig{Mode: machine.PinOutput})
	pinWake.High()

	cfg := ccs811.DefaultConfig()
	cfg.Wake = ccs811.PinFunc(pinWake.Set)
	cfg.Delay = ccs811.DelayFunc(func(us uint32) {
		time.Sleep(time.Duration(us) * time.Microsecond)
	})
	boot, err := ccs811.New(bus, cfg)
	if err != nil {
		logErr("[ccs811] config", err)
		return
	}

	app := start(boot)
	for app == nil {
		time.Sleep(time.Second)
		app = start(boot)
	}
	for {
		if err := app.SetMode(mode); err != nil {
			logErr("[ccs811] set mode", err)
			time.Sleep(time.Second)
			continue
		}
		break
	}
	logLine(append(append(line[:0], "[ccs811] mode "...), mode.String()...))

	for {
		res, err := app.Data()
		switch {
		case err == nil:
			b := append(line[:0], "[ccs811]"...)
			b = conv.AppendField(b, "eco2", uint64(res.ECO2))
			b = conv.AppendField(b, "etvoc", uint64(res.ETVOC))
			b = conv.AppendField(b, "ua", uint64(res.RawCurrent))
			b = conv.AppendField(b, "adc", uint64(res.RawVoltage))
			logLine(b)
		case errors.Is(err, ccs811.ErrPending):
		default:
			logErr("[ccs811] data", err)
		}
		time.Sleep(pollEvery)
	}
}

// start returns an App handle, or nil after logging why it could not.
func start(boot *ccs811.Boot) *ccs811.App {
	in, err := boot.Info()
	if err != nil {
		logErr("[ccs811] info", err)
		return nil
	}
	b := append(line[:0], "[ccs811] hw_id=0x"...)
	b = conv.AppendHex8(b, in.HardwareID)
	b = append(b, " fw_app="...)
	b = append(b, in.AppVersion.String()...)
	logLine(b)

	st, err := boot.Status()
	if err != nil {
		logErr("[ccs811] status", err)
		return nil
	}
	if st.FirmwareMode() == ccs811.ModeApp {
		app, err := boot.AttachApplication()
		if err != nil {
			logErr("[ccs811] attach", err)
			return nil
		}
		return app
	}
	// A failed start leaves boot usable for the next attempt.
	app, err := boot.StartApplication()
	if err != nil {
		logErr("[ccs811] start", err)
		return nil
	}
	return app
}
