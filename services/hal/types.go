// services/hal/types.go
package hal

import (
	"context"
	"time"
)

// Reading is one datum for one capability kind.
type Reading struct {
	Kind    string // e.g. "eco2", "etvoc", "raw"
	Payload any    // JSON-serialisable payload
	TsMs    int64  // producer timestamp
}

// Sample is a batch of readings collected together.
type Sample []Reading

// CapInfo describes one capability's static info document.
type CapInfo struct {
	Kind string
	Info map[string]any
}

// Adaptor owns a concrete device/driver and exposes generic hooks.
// Adaptors must NOT spawn goroutines; the worker owns scheduling.
type Adaptor interface {
	ID() string
	Capabilities() []CapInfo
	// Trigger prepares a measurement and returns the suggested wait until Collect.
	Trigger(ctx context.Context) (collectAfter time.Duration, err error)
	// Collect attempts to fetch a measurement batch; may return ErrNotReady.
	Collect(ctx context.Context) (Sample, error)
	// Control is a pass-through for driver-specific methods.
	// Return (nil, ErrUnsupported) if not implemented for a method.
	Control(method string, payload any) (result any, err error)
}

// WorkerConfig centralises timings and limits.
type WorkerConfig struct {
	TriggerTimeout time.Duration
	CollectTimeout time.Duration
	RetryBackoff   time.Duration
	MaxRetries     int
	InputQueueSize int
	ResultsQueueSz int
}

// MeasureReq asks the worker to trigger/collect for a given adaptor.
type MeasureReq struct {
	ID      string
	Adaptor Adaptor
	Prio    bool // true for read_now
}

// Result emitted by the worker.
type Result struct {
	ID     string
	Sample Sample
	Err    error
}

// ErrNotReady signals the worker to retry Collect after backoff.
var ErrNotReady = errNotReady{}

type errNotReady struct{}

func (errNotReady) Error() string { return "not ready" }

// ErrUnsupported for adaptor Control pass-through.
var ErrUnsupported = errUnsupported{}

type errUnsupported struct{}

func (errUnsupported) Error() string { return "unsupported" }
