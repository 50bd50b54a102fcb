// services/hal/firmware.go
package hal

import (
	"context"
	"errors"
	"time"

	"go.uber.org/zap"

	"ccs811-go/drivers/ccs811"
)

// RunFirmwareOp repeats a non-blocking poll step (VerifyApplication,
// EraseApplication, Data) until it stops returning ccs811.ErrPending, then
// returns its final error. The first call is made immediately.
func RunFirmwareOp(ctx context.Context, step func() error, backoff time.Duration) error {
	if backoff <= 0 {
		backoff = 10 * time.Millisecond
	}
	t := time.NewTimer(0)
	defer t.Stop()
	drainTimer(t)
	for {
		err := step()
		if !errors.Is(err, ccs811.ErrPending) {
			return err
		}
		resetTimer(t, backoff)
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-t.C:
		}
	}
}

// BringupOptions controls Bringup.
type BringupOptions struct {
	// Verify runs APP_VERIFY before starting the application.
	Verify bool
	// PollEvery is the retry interval for verify. Default 10 ms.
	PollEvery time.Duration
	// Attempts bounds StartApplication retries after pin or bus failures.
	// Default 3.
	Attempts int
}

// Bringup takes a chip from reset (or an unknown state) to an App handle:
// it checks HW_ID, attaches if the application is already running,
// otherwise optionally verifies and then starts the application.
func Bringup(ctx context.Context, boot *ccs811.Boot, opts BringupOptions, log *zap.Logger) (*ccs811.App, error) {
	if log == nil {
		log = zap.NewNop()
	}
	if opts.Attempts <= 0 {
		opts.Attempts = 3
	}
	in, err := boot.Info()
	if err != nil {
		return nil, err
	}
	if err := ccs811.CheckHardwareID(in.HardwareID); err != nil {
		return nil, err
	}
	log.Info("ccs811 detected",
		zap.Uint16("addr", boot.Address()),
		zap.Stringer("hw_version", in.HardwareVersion),
		zap.Stringer("fw_boot", in.BootVersion),
		zap.Stringer("fw_app", in.AppVersion),
	)

	st, err := boot.Status()
	if err != nil {
		return nil, err
	}
	if st.FirmwareMode() == ccs811.ModeApp {
		log.Info("application already running, attaching")
		return boot.AttachApplication()
	}

	if opts.Verify {
		if err := RunFirmwareOp(ctx, boot.VerifyApplication, opts.PollEvery); err != nil {
			return nil, err
		}
		log.Info("application verified")
	}

	for attempt := 1; ; attempt++ {
		app, err := boot.StartApplication()
		if err == nil {
			log.Info("application started")
			return app, nil
		}
		var mce *ccs811.ModeChangeError
		if !errors.As(err, &mce) || attempt >= opts.Attempts || !retryableStart(mce.Err) {
			return nil, err
		}
		log.Warn("start failed, retrying", zap.Int("attempt", attempt), zap.Error(err))
		boot = mce.Dev
		// A failed nWAKE release can leave the application running.
		if st, serr := boot.Status(); serr == nil && st.FirmwareMode() == ccs811.ModeApp {
			return boot.AttachApplication()
		}
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(opts.PollEvery + 10*time.Millisecond):
		}
	}
}

func retryableStart(err error) bool {
	var be *ccs811.BusError
	var pe *ccs811.PinError
	return errors.As(err, &be) || errors.As(err, &pe)
}
