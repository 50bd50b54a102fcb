// services/hal/adaptor_ccs811_test.go
package hal

import (
	"context"
	"errors"
	"testing"
	"time"

	"ccs811-go/drivers/ccs811"
)

func startedApp(t *testing.T, chip *fakeCCS811) *ccs811.App {
	t.Helper()
	boot, err := ccs811.New(chip, ccs811.DefaultConfig())
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	app, err := boot.StartApplication()
	if err != nil {
		t.Fatalf("StartApplication: %v", err)
	}
	return app
}

func TestCCS811Adaptor_TwoPhase(t *testing.T) {
	chip := newFakeCCS811()
	chip.readyEvery = 2
	ad := NewCCS811Adaptor("ccs0", startedApp(t, chip), CCS811Params{
		Mode:        ccs811.ConstantPower1s,
		Environment: &EnvPayload{DeciPercent: 500, DeciC: 250},
	})

	ctx := context.Background()
	after, err := ad.Trigger(ctx)
	if err != nil {
		t.Fatalf("trigger error: %v", err)
	}
	if after != time.Second {
		t.Fatalf("collect hint = %v, want 1s", after)
	}
	if chip.measMode != 0x10 {
		t.Fatalf("MEAS_MODE = 0x%02X, want 0x10", chip.measMode)
	}
	if chip.env != [4]byte{0x64, 0x00, 0x64, 0x00} {
		t.Fatalf("ENV_DATA = % X", chip.env)
	}

	// First read: DATA_READY clear.
	if _, err := ad.Collect(ctx); !errors.Is(err, ErrNotReady) {
		t.Fatalf("expected ErrNotReady, got: %v", err)
	}
	sample, err := ad.Collect(ctx)
	if err != nil {
		t.Fatalf("collect error: %v", err)
	}
	eco2 := findReadingPayload(t, sample, "eco2")
	etvoc := findReadingPayload(t, sample, "etvoc")
	raw := findReadingPayload(t, sample, "raw")
	if gi(eco2, "ppm") != 400 || gi(etvoc, "ppb") != 12 {
		t.Fatalf("bad data: eco2=%v etvoc=%v", eco2, etvoc)
	}
	if gi(raw, "current_ua") != 4 || gi(raw, "voltage") != 0x234 {
		t.Fatalf("bad raw: %v", raw)
	}

	// Mode and environment are written once.
	n := len(chip.writes)
	if _, err := ad.Trigger(ctx); err != nil {
		t.Fatal(err)
	}
	if len(chip.writes) != n {
		t.Fatalf("re-trigger wrote %d extra registers", len(chip.writes)-n)
	}
}

func TestCCS811Adaptor_IdleRefusesTrigger(t *testing.T) {
	ad := NewCCS811Adaptor("ccs0", startedApp(t, newFakeCCS811()), CCS811Params{})
	if _, err := ad.Trigger(context.Background()); err == nil {
		t.Fatal("expected error for idle mode")
	}
}

func TestCCS811Adaptor_DeviceError(t *testing.T) {
	chip := newFakeCCS811()
	ad := NewCCS811Adaptor("ccs0", startedApp(t, chip), CCS811Params{Mode: ccs811.ConstantPower1s})
	chip.errorID = 0x10

	_, err := ad.Collect(context.Background())
	var de ccs811.DeviceErrors
	if !errors.As(err, &de) || !de.Has(ccs811.HeaterFault) {
		t.Fatalf("err = %v, want HeaterFault", err)
	}
}

func TestCCS811Adaptor_Control(t *testing.T) {
	chip := newFakeCCS811()
	ad := NewCCS811Adaptor("ccs0", startedApp(t, chip), CCS811Params{Mode: ccs811.ConstantPower1s})

	if _, err := ad.Control("set_mode", "pulse_heating_10s"); err != nil {
		t.Fatalf("set_mode: %v", err)
	}
	if chip.measMode != 0x20 {
		t.Fatalf("MEAS_MODE = 0x%02X, want 0x20", chip.measMode)
	}
	if _, err := ad.Control("set_mode", "warp"); !errors.Is(err, ccs811.ErrInvalidMode) {
		t.Fatalf("bad mode: %v", err)
	}

	res, err := ad.Control("baseline", nil)
	if err != nil {
		t.Fatalf("baseline: %v", err)
	}
	if v := gi(res.(map[string]any), "baseline"); v != 0x841F {
		t.Fatalf("baseline = 0x%X", v)
	}
	if _, err := ad.Control("set_baseline", map[string]any{"baseline": 0x1234}); err != nil {
		t.Fatalf("set_baseline: %v", err)
	}
	if chip.baseline != [2]byte{0x12, 0x34} {
		t.Fatalf("baseline register = % X", chip.baseline)
	}

	if _, err := ad.Control("set_environment", map[string]any{"deci_percent": 2000, "deci_c": 0}); err != nil {
		t.Fatalf("set_environment: %v", err)
	}
	if chip.env[0] != 0xC8 { // clamped to 100 %RH
		t.Fatalf("ENV_DATA humidity = 0x%02X", chip.env[0])
	}

	info, err := ad.Control("info", nil)
	if err != nil {
		t.Fatalf("info: %v", err)
	}
	m := info.(map[string]any)
	if m["fw_app"] != "2.0.0" || gi(m, "hw_id") != 0x81 {
		t.Fatalf("info = %v", m)
	}

	if _, err := ad.Control("reset", nil); !errors.Is(err, ErrUnsupported) {
		t.Fatalf("unknown method: %v", err)
	}
}

func TestCCS811Adaptor_EnvironmentClampedOnEveryPath(t *testing.T) {
	chip := newFakeCCS811()
	ad := NewCCS811Adaptor("ccs0", startedApp(t, chip), CCS811Params{Mode: ccs811.ConstantPower1s})

	// 85.0 °C is the ceiling: (850+250)*512/10 = 0xDC00.
	payloads := []any{
		EnvPayload{DeciPercent: 500, DeciC: 1200},
		&EnvPayload{DeciPercent: 500, DeciC: 1200},
		map[string]any{"deci_percent": 500, "deci_c": 1200},
	}
	for _, p := range payloads {
		chip.env = [4]byte{}
		if _, err := ad.Control("set_environment", p); err != nil {
			t.Fatalf("set_environment(%T): %v", p, err)
		}
		if chip.env != [4]byte{0x64, 0x00, 0xDC, 0x00} {
			t.Fatalf("set_environment(%T): ENV_DATA = % X", p, chip.env)
		}
	}

	// -25.0 °C is the floor.
	if _, err := ad.Control("set_environment", map[string]any{"deci_percent": -5, "deci_c": -400}); err != nil {
		t.Fatal(err)
	}
	if chip.env != [4]byte{0x00, 0x00, 0x00, 0x00} {
		t.Fatalf("ENV_DATA = % X", chip.env)
	}
	if _, err := ad.Control("set_environment", (*EnvPayload)(nil)); !errors.Is(err, errInvalidPayload) {
		t.Fatalf("nil payload: %v", err)
	}
}

func TestModePeriod(t *testing.T) {
	cases := map[ccs811.MeasurementMode]time.Duration{
		ccs811.Idle:                    0,
		ccs811.ConstantPower1s:         time.Second,
		ccs811.PulseHeating10s:         10 * time.Second,
		ccs811.LowPowerPulseHeating60s: time.Minute,
		ccs811.ConstantPower250ms:      250 * time.Millisecond,
	}
	for m, want := range cases {
		if got := modePeriod(m); got != want {
			t.Errorf("modePeriod(%v) = %v, want %v", m, got, want)
		}
	}
}
