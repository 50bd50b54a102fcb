// services/hal/service_test.go
package hal

import (
	"context"
	"errors"
	"testing"
	"time"

	"go.uber.org/zap/zaptest"

	"ccs811-go/drivers/ccs811"
	"ccs811-go/errcode"
)

func TestService_PeriodicSamplesAndControl(t *testing.T) {
	chip := newFakeCCS811()
	ad := NewCCS811Adaptor("ccs0", startedApp(t, chip), CCS811Params{
		Mode:         ccs811.ConstantPower250ms,
		CollectAfter: time.Millisecond,
	})

	results := make(chan Result, 8)
	svc := NewService(WorkerConfig{RetryBackoff: time.Millisecond}, []Device{{Adaptor: ad, Period: 250 * time.Millisecond}},
		func(r Result) { results <- r }, zaptest.NewLogger(t))

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() { svc.Run(ctx); close(done) }()
	defer func() { cancel(); <-done }()

	select {
	case r := <-results:
		if r.Err != nil {
			t.Fatalf("unexpected error: %v", r.Err)
		}
		if gi(findReadingPayload(t, r.Sample, "eco2"), "ppm") != 400 {
			t.Fatalf("bad sample: %v", r.Sample)
		}
	case <-time.After(time.Second):
		t.Fatal("timeout waiting for first sample")
	}

	res, err := svc.Control(ctx, "ccs0", "status", nil)
	if err != nil {
		t.Fatalf("status: %v", err)
	}
	if m := res.(map[string]any); m["fw_mode"] != "application" {
		t.Fatalf("status = %v", m)
	}

	_, err = svc.Control(ctx, "ccs0", "set_mode", "bogus")
	if errcode.Of(err) != errcode.InvalidParams {
		t.Fatalf("code = %q, want invalid_params", errcode.Of(err))
	}

	if err := svc.SetRate(ctx, "ccs0", time.Millisecond); err != nil {
		t.Fatalf("SetRate: %v", err)
	}
	if err := svc.SetRate(ctx, "nope", time.Second); !errors.Is(err, errUnknownDevice) {
		t.Fatalf("SetRate unknown = %v", err)
	}
	if err := svc.ReadNow("nope"); !errors.Is(err, errUnknownDevice) {
		t.Fatalf("ReadNow unknown = %v", err)
	}
}
