// services/hal/service.go
package hal

import (
	"context"
	"errors"
	"time"

	"go.uber.org/zap"

	"ccs811-go/errcode"
	"ccs811-go/x/mathx"
)

const (
	minPeriod = 250 * time.Millisecond
	maxPeriod = time.Hour
)

// Device is one adaptor with its sampling period.
type Device struct {
	Adaptor Adaptor
	Period  time.Duration
}

// Service schedules periodic measurements for a set of adaptors sharing one
// bus, and forwards results to a sink. All adaptor calls go through a single
// worker goroutine.
type Service struct {
	log    *zap.Logger
	worker *measureWorker
	sink   func(Result)

	adaptors map[string]Adaptor // read-only after NewService
	periods  map[string]time.Duration
	nextDue  map[string]time.Time
	rateQ    chan rateReq
}

type rateReq struct {
	id     string
	period time.Duration
	reply  chan error
}

var errUnknownDevice = errors.New("hal: unknown device")

// NewService builds a service. sink is called from the service goroutine.
func NewService(cfg WorkerConfig, devices []Device, sink func(Result), log *zap.Logger) *Service {
	if log == nil {
		log = zap.NewNop()
	}
	s := &Service{
		log:      log,
		worker:   NewWorker(cfg, log.Named("worker")),
		sink:     sink,
		adaptors: map[string]Adaptor{},
		periods:  map[string]time.Duration{},
		nextDue:  map[string]time.Time{},
		rateQ:    make(chan rateReq),
	}
	now := time.Now()
	for _, d := range devices {
		id := d.Adaptor.ID()
		s.adaptors[id] = d.Adaptor
		s.periods[id] = mathx.ClampDuration(d.Period, time.Second, minPeriod, maxPeriod)
		s.nextDue[id] = now
	}
	return s
}

// Run blocks until ctx is done and the worker has exited.
func (s *Service) Run(ctx context.Context) {
	s.worker.Start(ctx)
	timer := time.NewTimer(time.Hour)
	defer timer.Stop()
	for {
		resetTimerAt(timer, s.earliestDue())
		select {
		case <-ctx.Done():
			<-s.worker.stopped
			s.log.Info("service stopped")
			return
		case r := <-s.rateQ:
			old, ok := s.periods[r.id]
			if !ok {
				r.reply <- errUnknownDevice
				continue
			}
			s.periods[r.id] = mathx.ClampDuration(r.period, old, minPeriod, maxPeriod)
			s.nextDue[r.id] = time.Now()
			r.reply <- nil
		case <-timer.C:
			now := time.Now()
			for id, due := range s.nextDue {
				if now.Before(due) {
					continue
				}
				if !s.worker.Submit(MeasureReq{ID: id, Adaptor: s.adaptors[id]}) {
					s.log.Warn("measure queue full", zap.String("id", id))
				}
				s.nextDue[id] = now.Add(s.periods[id])
			}
		case r := <-s.worker.Results():
			if r.Err != nil {
				s.log.Warn("measurement failed",
					zap.String("id", r.ID),
					zap.String("code", string(errcode.MapDriverErr(r.Err))),
					zap.Error(r.Err))
			}
			if s.sink != nil {
				s.sink(r)
			}
		}
	}
}

// ReadNow asks for an immediate measurement of one device.
func (s *Service) ReadNow(id string) error {
	a, ok := s.adaptors[id]
	if !ok {
		return errUnknownDevice
	}
	if !s.worker.Submit(MeasureReq{ID: id, Adaptor: a, Prio: true}) {
		return errcode.Busy
	}
	return nil
}

// SetRate changes a device's sampling period, clamped to [250ms, 1h].
func (s *Service) SetRate(ctx context.Context, id string, period time.Duration) error {
	r := rateReq{id: id, period: period, reply: make(chan error, 1)}
	select {
	case s.rateQ <- r:
	case <-ctx.Done():
		return ctx.Err()
	}
	return <-r.reply
}

// Control runs an adaptor control method on the worker goroutine.
func (s *Service) Control(ctx context.Context, id, method string, payload any) (any, error) {
	a, ok := s.adaptors[id]
	if !ok {
		return nil, errUnknownDevice
	}
	var (
		res any
		err error
	)
	if derr := s.worker.Do(ctx, func() { res, err = a.Control(method, payload) }); derr != nil {
		return nil, derr
	}
	if err != nil {
		return nil, errcode.Wrap(method, err)
	}
	return res, nil
}

func (s *Service) earliestDue() time.Time {
	var min time.Time
	for _, t := range s.nextDue {
		if min.IsZero() || t.Before(min) {
			min = t
		}
	}
	return min
}
