package policy

import "time"

// Clock abstracts time so retry waits and deadlines can be driven
// deterministically in tests. Policies default to [RealClock].
type Clock interface {
	// Now returns the current time.
	Now() time.Time
	// NewTimer creates a [Timer] firing after d.
	NewTimer(d time.Duration) Timer
}

// Timer abstracts [time.Timer] so fake clocks can hand out timers they
// fire on demand.
type Timer interface {
	// C delivers the firing time.
	C() <-chan time.Time
	// Stop prevents the timer from firing.
	Stop() bool
}

// RealClock is the wall clock. It holds no state.
type RealClock struct{}

// Now returns [time.Now].
func (RealClock) Now() time.Time { return time.Now() }

// NewTimer wraps [time.NewTimer].
func (RealClock) NewTimer(d time.Duration) Timer {
	return &realTimer{inner: time.NewTimer(d)}
}

type realTimer struct {
	inner *time.Timer
}

func (t *realTimer) C() <-chan time.Time { return t.inner.C }
func (t *realTimer) Stop() bool          { return t.inner.Stop() }
