// services/hal/firmware_test.go
package hal

import (
	"context"
	"errors"
	"testing"
	"time"

	"go.uber.org/zap/zaptest"

	"ccs811-go/drivers/ccs811"
)

func TestRunFirmwareOp_PollsUntilDone(t *testing.T) {
	calls := 0
	step := func() error {
		calls++
		if calls < 3 {
			return ccs811.ErrPending
		}
		return nil
	}
	if err := RunFirmwareOp(context.Background(), step, time.Millisecond); err != nil {
		t.Fatalf("RunFirmwareOp: %v", err)
	}
	if calls != 3 {
		t.Fatalf("calls = %d, want 3", calls)
	}
}

func TestRunFirmwareOp_StopsOnFatal(t *testing.T) {
	want := ccs811.HeaterSupply
	err := RunFirmwareOp(context.Background(), func() error { return want }, time.Millisecond)
	if !errors.Is(err, want) {
		t.Fatalf("err = %v, want %v", err, want)
	}
}

func TestRunFirmwareOp_ContextCancel(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	err := RunFirmwareOp(ctx, func() error { return ccs811.ErrPending }, time.Millisecond)
	if !errors.Is(err, context.DeadlineExceeded) {
		t.Fatalf("err = %v, want deadline exceeded", err)
	}
}

func TestRunFirmwareOp_VerifySequence(t *testing.T) {
	chip := newFakeCCS811()
	chip.verifyPolls = 3
	boot, err := ccs811.New(chip, ccs811.DefaultConfig())
	if err != nil {
		t.Fatal(err)
	}
	if err := RunFirmwareOp(context.Background(), boot.VerifyApplication, time.Millisecond); err != nil {
		t.Fatalf("verify: %v", err)
	}
	if !chip.verified {
		t.Fatal("chip never completed verify")
	}
}

func TestBringup_StartsApplication(t *testing.T) {
	chip := newFakeCCS811()
	boot, _ := ccs811.New(chip, ccs811.DefaultConfig())

	app, err := Bringup(context.Background(), boot, BringupOptions{Verify: true, PollEvery: time.Millisecond}, zaptest.NewLogger(t))
	if err != nil {
		t.Fatalf("Bringup: %v", err)
	}
	if app == nil || !chip.fwMode || chip.startCnt != 1 {
		t.Fatalf("app=%v fwMode=%v starts=%d", app, chip.fwMode, chip.startCnt)
	}
	if _, err := boot.Status(); !errors.Is(err, ccs811.ErrHandleConsumed) {
		t.Fatalf("boot handle still live: %v", err)
	}
}

func TestBringup_AttachesToRunningApp(t *testing.T) {
	chip := newFakeCCS811()
	chip.fwMode = true
	chip.measMode = 0x20
	boot, _ := ccs811.New(chip, ccs811.DefaultConfig())

	app, err := Bringup(context.Background(), boot, BringupOptions{}, zaptest.NewLogger(t))
	if err != nil {
		t.Fatalf("Bringup: %v", err)
	}
	if chip.startCnt != 0 {
		t.Fatal("APP_START issued to a running application")
	}
	if app.Mode() != ccs811.PulseHeating10s {
		t.Fatalf("mode = %v", app.Mode())
	}
}

func TestBringup_NoValidApp(t *testing.T) {
	chip := newFakeCCS811()
	chip.appValid = false
	boot, _ := ccs811.New(chip, ccs811.DefaultConfig())

	_, err := Bringup(context.Background(), boot, BringupOptions{}, zaptest.NewLogger(t))
	if !errors.Is(err, ccs811.ErrNoValidApp) {
		t.Fatalf("err = %v, want ErrNoValidApp", err)
	}
	if chip.startCnt != 0 {
		t.Fatal("APP_START issued without a valid image")
	}
}

func TestBringup_RetriesBusError(t *testing.T) {
	chip := newFakeCCS811()
	chip.nackReg = 0xF4
	boot, _ := ccs811.New(chip, ccs811.DefaultConfig())

	_, err := Bringup(context.Background(), boot, BringupOptions{Attempts: 2, PollEvery: time.Millisecond}, zaptest.NewLogger(t))
	var be *ccs811.BusError
	if !errors.As(err, &be) || be.Reg != 0xF4 {
		t.Fatalf("err = %v, want BusError at APP_START", err)
	}
}
