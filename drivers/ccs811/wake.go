package ccs811

import "errors"

// awaken runs op with the chip held awake. Without a wake pin op runs
// directly. With one, nWAKE is driven low, the settle delay elapses once,
// op runs, and nWAKE is driven high on every exit path.
//
// Error merge: an op error wins over a release error. A release error after
// op succeeded, or after op returned ErrPending, is returned as *PinError;
// callers must not commit any state transition produced inside op in that
// case. Pending bookkeeping done inside op is kept.
func (d *device) awaken(op func() error) (err error) {
	if d.wake == nil {
		return op()
	}
	if lerr := d.wake.SetLow(); lerr != nil {
		_ = d.wake.SetHigh()
		return &PinError{High: false, Err: lerr}
	}
	defer func() {
		if herr := d.wake.SetHigh(); herr != nil && (err == nil || errors.Is(err, ErrPending)) {
			err = &PinError{High: true, Err: herr}
		}
	}()
	if d.delay != nil && d.wakeDelayUs > 0 {
		d.delay.DelayMicroseconds(d.wakeDelayUs)
	}
	return op()
}
