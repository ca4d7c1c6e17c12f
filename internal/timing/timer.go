// Package timing provides the tick-counted countdown timer shared by every
// protocol controller for grant timeouts, hang timers and beacon cadence,
// adapted from the teacher gateway's network.Timer (itself a port of the
// original project's CTimer) into the spec's remaining-ticks countdown
// model: SetTimeout computes a tick budget, each Clock call subtracts
// elapsed ticks, and HasExpired fires once that budget is exhausted.
package timing

// Timer counts down from timeoutTicks to zero at ticksPerSec resolution.
// Pausing freezes the countdown without resetting remainingTicks.
type Timer struct {
	ticksPerSec   int
	timeoutTicks  int
	remainingTicks int
	running       bool
	everStarted   bool
}

// New creates a timer at the given tick resolution (e.g. 1000 for
// millisecond ticks), optionally pre-arming it with an initial timeout.
func New(ticksPerSec int, secs, msecs int) *Timer {
	t := &Timer{ticksPerSec: ticksPerSec}
	if secs > 0 || msecs > 0 {
		t.SetTimeout(secs, msecs)
	}
	return t
}

// SetTimeout recomputes the tick budget as
// ceil((secs*1000+msecs)*ticksPerSec/1000) + 1, matching the original's
// rounding (always at least one tick beyond the exact duration so a call
// arriving exactly at the boundary is not prematurely expired).
func (t *Timer) SetTimeout(secs, msecs int) {
	totalMS := secs*1000 + msecs
	ticks := (totalMS*t.ticksPerSec + 999) / 1000
	t.timeoutTicks = ticks + 1
}

// IsRunning reports whether the countdown is actively ticking.
func (t *Timer) IsRunning() bool { return t.running }

// Start arms the timer at its current timeout budget and begins counting
// down. Passing secs/msecs > 0 first calls SetTimeout.
func (t *Timer) Start(secs, msecs int) {
	if secs > 0 || msecs > 0 {
		t.SetTimeout(secs, msecs)
	}
	t.remainingTicks = t.timeoutTicks
	t.running = true
	t.everStarted = true
}

// Stop halts the countdown and clears its elapsed state entirely (unlike
// Pause, a stopped timer does not resume where it left off).
func (t *Timer) Stop() {
	t.running = false
	t.everStarted = false
	t.remainingTicks = 0
}

// Pause freezes the countdown in place; Resume continues it from the
// frozen remaining-ticks value without requiring SetTimeout again.
func (t *Timer) Pause() { t.running = false }

// Resume unfreezes a paused timer without resetting remainingTicks.
func (t *Timer) Resume() {
	if t.everStarted {
		t.running = true
	}
}

// HasExpired reports whether the countdown has reached zero after having
// been started; a timer that was never started, or has a zero timeout,
// never reports expired.
func (t *Timer) HasExpired() bool {
	if t.timeoutTicks == 0 || !t.everStarted {
		return false
	}
	return t.remainingTicks <= 0
}

// Clock advances the countdown by the given number of elapsed ticks;
// no-op while paused or stopped.
func (t *Timer) Clock(ticks int) {
	if !t.running {
		return
	}
	t.remainingTicks -= ticks
	if t.remainingTicks <= 0 {
		t.remainingTicks = 0
		t.running = false
	}
}

// RemainingMS returns the remaining countdown converted to milliseconds.
func (t *Timer) RemainingMS() int {
	if !t.everStarted {
		return 0
	}
	if t.remainingTicks <= 0 {
		return 0
	}
	return t.remainingTicks * 1000 / t.ticksPerSec
}
