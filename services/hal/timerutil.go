// services/hal/timerutil.go
package hal

import "time"

// resetTimer safely stops, drains, and resets a timer.
func resetTimer(t *time.Timer, d time.Duration) {
	if !t.Stop() {
		drainTimer(t)
	}
	if d < 0 {
		d = 0
	}
	t.Reset(d)
}

// resetTimerAt arms t for the earliest due time, or parks it for an hour
// when nothing is scheduled.
func resetTimerAt(t *time.Timer, due time.Time) {
	if due.IsZero() {
		resetTimer(t, time.Hour)
		return
	}
	resetTimer(t, time.Until(due))
}

func drainTimer(t *time.Timer) {
	select {
	case <-t.C:
	default:
	}
}
