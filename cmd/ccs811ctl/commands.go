package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/urfave/cli/v2"
	"go.uber.org/multierr"
	"go.uber.org/zap"

	"ccs811-go/drivers/ccs811"
	"ccs811-go/errcode"
	"ccs811-go/internal/config"
	"ccs811-go/internal/hostio"
	"ccs811-go/services/hal"
)

const defaultReadTimeout = 30 * time.Second

// session is the per-command state: config, logger, host resources and a
// fresh Boot handle.
type session struct {
	cfg  *config.Config
	log  *zap.Logger
	host *hostio.Host
	boot *ccs811.Boot
}

func loadConfig(c *cli.Context) (*config.Config, error) {
	cfg := config.Default()
	if p := c.String(flagConfig); p != "" {
		var err error
		if cfg, err = config.Load(p); err != nil {
			return nil, err
		}
	}
	if c.IsSet(flagBus) {
		cfg.Sensor.Bus = c.String(flagBus)
	}
	if c.IsSet(flagAddress) {
		cfg.Sensor.Address = uint16(c.Uint(flagAddress))
	}
	if c.IsSet(flagWakePin) {
		cfg.Sensor.WakePin = c.String(flagWakePin)
	}
	if c.IsSet(flagLogLevel) {
		cfg.Log.Level = c.String(flagLogLevel)
	}
	if c.Bool(flagTrace) {
		cfg.Log.Level = "debug"
	}
	if c.IsSet(flagMode) {
		cfg.Measure.Mode = c.String(flagMode)
	}
	if err := config.Validate(cfg); err != nil {
		return nil, err
	}
	config.Normalize(cfg)
	return cfg, nil
}

// withSession opens the sensor, runs fn and releases everything.
func withSession(c *cli.Context, fn func(ctx context.Context, s *session) error) (err error) {
	cfg, err := loadConfig(c)
	if err != nil {
		return err
	}
	log, err := newLogger(cfg.Log)
	if err != nil {
		return err
	}
	defer func() { _ = log.Sync() }()

	host, err := hostio.Open(hostio.Options{
		Bus:     cfg.Sensor.Bus,
		SpeedHz: cfg.Sensor.SpeedHz,
		WakePin: cfg.Sensor.WakePin,
	})
	if err != nil {
		return err
	}
	defer func() { err = multierr.Append(err, host.Close()) }()

	dcfg := host.DriverConfig(ccs811.Config{
		Address:     cfg.Sensor.Address,
		WakeDelayUs: cfg.Sensor.WakeDelayUs,
	})
	bus := host.Bus()
	if c.Bool(flagTrace) {
		bus = hal.TraceI2C(bus, log.Named("i2c"))
	}
	boot, err := ccs811.New(bus, dcfg)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(c.Context, os.Interrupt, syscall.SIGTERM)
	defer stop()

	s := &session{cfg: cfg, log: log.With(zap.Uint16("addr", boot.Address())), host: host, boot: boot}
	if err := fn(ctx, s); err != nil {
		s.log.Debug("command failed", zap.String("code", string(errcode.MapDriverErr(err))), zap.Error(err))
		return err
	}
	return nil
}

func (s *session) bringup(ctx context.Context) (*ccs811.App, error) {
	return hal.Bringup(ctx, s.boot, hal.BringupOptions{
		Verify:    s.cfg.Bringup.Verify,
		PollEvery: time.Duration(s.cfg.Bringup.PollMs) * time.Millisecond,
		Attempts:  s.cfg.Bringup.Attempts,
	}, s.log)
}

// prepare applies the configured mode, environment and baseline.
func (s *session) prepare(app *ccs811.App) (ccs811.MeasurementMode, error) {
	mode, _ := ccs811.ParseMeasurementMode(s.cfg.Measure.Mode)
	if err := app.SetMode(mode); err != nil {
		return mode, err
	}
	if e := s.cfg.Measure.Environment; e != nil {
		if err := app.SetEnvironment(e.DeciPercent, e.DeciC); err != nil {
			return mode, err
		}
	}
	if bl := s.cfg.Measure.Baseline; bl != nil {
		if err := app.SetBaseline([2]byte{byte(*bl >> 8), byte(*bl)}); err != nil {
			return mode, err
		}
		s.log.Info("baseline restored", zap.Uint16("baseline", *bl))
	}
	return mode, nil
}

func infoAction(c *cli.Context) error {
	return withSession(c, func(ctx context.Context, s *session) error {
		in, err := s.boot.Info()
		if err != nil {
			return err
		}
		fmt.Fprintf(c.App.Writer, "hw_id       0x%02X\n", in.HardwareID)
		fmt.Fprintf(c.App.Writer, "hw_version  %s\n", in.HardwareVersion)
		fmt.Fprintf(c.App.Writer, "fw_boot     %s\n", in.BootVersion)
		fmt.Fprintf(c.App.Writer, "fw_app      %s\n", in.AppVersion)
		return ccs811.CheckHardwareID(in.HardwareID)
	})
}

func statusAction(c *cli.Context) error {
	return withSession(c, func(ctx context.Context, s *session) error {
		st, err := s.boot.Status()
		if err != nil {
			return err
		}
		fmt.Fprintf(c.App.Writer, "status      0x%02X\n", byte(st))
		fmt.Fprintf(c.App.Writer, "fw_mode     %s\n", st.FirmwareMode())
		fmt.Fprintf(c.App.Writer, "app_valid   %t\n", st.AppValid())
		fmt.Fprintf(c.App.Writer, "data_ready  %t\n", st.DataReady())
		fmt.Fprintf(c.App.Writer, "error       %t\n", st.HasError())
		if st.HasError() {
			e, err := s.boot.LastError()
			if err != nil {
				return err
			}
			fmt.Fprintf(c.App.Writer, "error_id    %v\n", e)
		}
		return nil
	})
}

func verifyAction(c *cli.Context) error {
	return withSession(c, func(ctx context.Context, s *session) error {
		poll := time.Duration(s.cfg.Bringup.PollMs) * time.Millisecond
		if err := hal.RunFirmwareOp(ctx, s.boot.VerifyApplication, poll); err != nil {
			return err
		}
		fmt.Fprintln(c.App.Writer, "application verified")
		return nil
	})
}

var errNotConfirmed = errors.New("erase needs --yes")

func eraseAction(c *cli.Context) error {
	if !c.Bool(flagYes) {
		return errNotConfirmed
	}
	return withSession(c, func(ctx context.Context, s *session) error {
		poll := time.Duration(s.cfg.Bringup.PollMs) * time.Millisecond
		if err := hal.RunFirmwareOp(ctx, s.boot.EraseApplication, poll); err != nil {
			return err
		}
		s.log.Warn("application image erased")
		fmt.Fprintln(c.App.Writer, "application erased")
		return nil
	})
}

func startAction(c *cli.Context) error {
	return withSession(c, func(ctx context.Context, s *session) error {
		app, err := s.boot.StartApplication()
		if err != nil {
			return err
		}
		fmt.Fprintf(c.App.Writer, "application running, mode %s\n", app.Mode())
		return nil
	})
}

func readAction(c *cli.Context) error {
	return withSession(c, func(ctx context.Context, s *session) error {
		app, err := s.bringup(ctx)
		if err != nil {
			return err
		}
		mode, err := s.prepare(app)
		if err != nil {
			return err
		}
		if mode == ccs811.Idle {
			return errors.New("mode idle produces no results")
		}
		ctx, cancel := context.WithTimeout(ctx, c.Duration(flagTimeout))
		defer cancel()

		var res ccs811.AlgorithmResult
		step := func() error {
			var err error
			res, err = app.Data()
			return err
		}
		poll := time.Duration(s.cfg.Worker.RetryBackoffMs) * time.Millisecond
		if err := hal.RunFirmwareOp(ctx, step, poll); err != nil {
			return err
		}
		printResult(c, res)
		return nil
	})
}

func watchAction(c *cli.Context) error {
	return withSession(c, func(ctx context.Context, s *session) error {
		app, err := s.bringup(ctx)
		if err != nil {
			return err
		}
		mode, err := s.prepare(app)
		if err != nil {
			return err
		}

		params := hal.CCS811Params{Mode: mode}
		ad := hal.NewCCS811Adaptor("ccs811", app, params)
		period := time.Duration(s.cfg.Measure.PeriodMs) * time.Millisecond
		svc := hal.NewService(hal.WorkerConfig{
			RetryBackoff: time.Duration(s.cfg.Worker.RetryBackoffMs) * time.Millisecond,
			MaxRetries:   s.cfg.Worker.MaxRetries,
		}, []hal.Device{{Adaptor: ad, Period: period}}, func(r hal.Result) {
			if r.Err != nil {
				return
			}
			printSample(c, r.Sample)
		}, s.log)

		s.log.Info("watching", zap.Stringer("mode", mode), zap.Duration("period", period))
		svc.Run(ctx)

		// Run has returned and its worker is stopped, so the handle is ours
		// again. Report the baseline for measure.baseline on the next run.
		res, err := ad.Control("baseline", nil)
		if err != nil {
			return err
		}
		s.log.Info("final baseline", zap.Any("baseline", res))
		return nil
	})
}

func printResult(c *cli.Context, r ccs811.AlgorithmResult) {
	fmt.Fprintf(c.App.Writer, "eco2=%dppm etvoc=%dppb current=%duA voltage=%d\n",
		r.ECO2, r.ETVOC, r.RawCurrent, r.RawVoltage)
}

func printSample(c *cli.Context, s hal.Sample) {
	var ts int64
	out := make(map[string]any, 4)
	for _, rd := range s {
		ts = rd.TsMs
		if m, ok := rd.Payload.(map[string]any); ok {
			for k, v := range m {
				if k != "ts_ms" {
					out[rd.Kind+"."+k] = v
				}
			}
		}
	}
	fmt.Fprintf(c.App.Writer, "%s eco2=%vppm etvoc=%vppb current=%vuA voltage=%v\n",
		time.UnixMilli(ts).Format(time.RFC3339), out["eco2.ppm"], out["etvoc.ppb"],
		out["raw.current_ua"], out["raw.voltage"])
}
