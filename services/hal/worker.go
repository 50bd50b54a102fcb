// services/hal/worker.go
package hal

import (
	"context"
	"errors"
	"time"

	"go.uber.org/zap"
)

// measureWorker serialises every adaptor call for one bus. Driver handles are
// not safe for concurrent use, so control calls are funnelled through the
// same goroutine via Do.
type measureWorker struct {
	cfg     WorkerConfig
	log     *zap.Logger
	reqQ    chan MeasureReq
	ctrlQ   chan ctrlReq
	results chan Result
	stopped chan struct{}

	pending  map[string]*collectItem
	want     map[string]bool
	collects []*collectItem
	timer    *time.Timer
}

type collectItem struct {
	id      string
	adaptor Adaptor
	due     time.Time
	retries int
}

type ctrlReq struct {
	fn   func()
	done chan struct{}
}

var errWorkerStopped = errors.New("hal: worker stopped")

func NewWorker(cfg WorkerConfig, log *zap.Logger) *measureWorker {
	if cfg.TriggerTimeout <= 0 {
		cfg.TriggerTimeout = 100 * time.Millisecond
	}
	if cfg.CollectTimeout <= 0 {
		cfg.CollectTimeout = 250 * time.Millisecond
	}
	if cfg.RetryBackoff <= 0 {
		cfg.RetryBackoff = 15 * time.Millisecond
	}
	if cfg.MaxRetries <= 0 {
		cfg.MaxRetries = 6
	}
	if cfg.InputQueueSize <= 0 {
		cfg.InputQueueSize = 16
	}
	if cfg.ResultsQueueSz <= 0 {
		cfg.ResultsQueueSz = 16
	}
	if log == nil {
		log = zap.NewNop()
	}
	return &measureWorker{
		cfg:     cfg,
		log:     log,
		reqQ:    make(chan MeasureReq, cfg.InputQueueSize),
		ctrlQ:   make(chan ctrlReq),
		results: make(chan Result, cfg.ResultsQueueSz),
		stopped: make(chan struct{}),
		pending: map[string]*collectItem{},
		want:    map[string]bool{},
		timer:   time.NewTimer(time.Hour),
	}
}

// Results delivers one Result per completed or failed measurement.
func (w *measureWorker) Results() <-chan Result { return w.results }

func (w *measureWorker) Submit(req MeasureReq) bool {
	select {
	case w.reqQ <- req:
		return true
	default:
		if req.Prio {
			select {
			case w.reqQ <- req:
				return true
			case <-time.After(5 * time.Millisecond):
			}
		}
		return false
	}
}

// Do runs fn on the worker goroutine, between measurement steps, and waits
// for it to return.
func (w *measureWorker) Do(ctx context.Context, fn func()) error {
	r := ctrlReq{fn: fn, done: make(chan struct{})}
	select {
	case w.ctrlQ <- r:
	case <-w.stopped:
		return errWorkerStopped
	case <-ctx.Done():
		return ctx.Err()
	}
	<-r.done
	return nil
}

func (w *measureWorker) Start(ctx context.Context) {
	if !w.timer.Stop() {
		drainTimer(w.timer)
	}
	go func() {
		defer close(w.stopped)
		for {
			resetTimerAt(w.timer, w.minDue())
			select {
			case <-ctx.Done():
				return
			case r := <-w.ctrlQ:
				r.fn()
				close(r.done)
			case req := <-w.reqQ:
				w.handleReq(ctx, req)
			case <-w.timer.C:
				w.collectDue(ctx, time.Now())
			}
		}
	}()
}

func (w *measureWorker) handleReq(ctx context.Context, req MeasureReq) {
	if _, ok := w.pending[req.ID]; ok {
		if req.Prio {
			w.want[req.ID] = true
		}
		return
	}
	after, err := w.trigger(ctx, req.Adaptor)
	if err != nil {
		w.log.Warn("trigger failed", zap.String("id", req.ID), zap.Error(err))
		w.emit(Result{ID: req.ID, Err: err})
		return
	}
	it := &collectItem{id: req.ID, adaptor: req.Adaptor, due: time.Now().Add(after)}
	w.pending[req.ID] = it
	w.collects = append(w.collects, it)
}

func (w *measureWorker) collectDue(ctx context.Context, now time.Time) {
	var keep []*collectItem
	for _, it := range w.collects {
		if now.Before(it.due) {
			keep = append(keep, it)
			continue
		}
		cctx, cancel := context.WithTimeout(ctx, w.cfg.CollectTimeout)
		s, err := it.adaptor.Collect(cctx)
		cancel()
		switch {
		case err == nil:
			delete(w.pending, it.id)
			delete(w.want, it.id)
			w.emit(Result{ID: it.id, Sample: s})
		case errors.Is(err, ErrNotReady) && it.retries < w.cfg.MaxRetries:
			it.retries++
			it.due = now.Add(w.cfg.RetryBackoff)
			w.log.Debug("collect not ready", zap.String("id", it.id), zap.Int("retry", it.retries))
			keep = append(keep, it)
		default:
			delete(w.pending, it.id)
			w.log.Warn("collect failed", zap.String("id", it.id), zap.Int("retries", it.retries), zap.Error(err))
			w.emit(Result{ID: it.id, Err: err})
			if w.want[it.id] {
				delete(w.want, it.id)
				after, terr := w.trigger(ctx, it.adaptor)
				if terr == nil {
					it.retries = 0
					it.due = time.Now().Add(after)
					w.pending[it.id] = it
					keep = append(keep, it)
				}
			}
		}
	}
	w.collects = keep
}

func (w *measureWorker) trigger(ctx context.Context, a Adaptor) (time.Duration, error) {
	tctx, cancel := context.WithTimeout(ctx, w.cfg.TriggerTimeout)
	defer cancel()
	return a.Trigger(tctx)
}

func (w *measureWorker) emit(r Result) {
	select {
	case w.results <- r:
	default:
		// Full: drop the oldest.
		select {
		case <-w.results:
		default:
		}
		w.results <- r
	}
}

func (w *measureWorker) minDue() time.Time {
	var min time.Time
	for _, it := range w.collects {
		if min.IsZero() || it.due.Before(min) {
			min = it.due
		}
	}
	return min
}
