package policy

import (
	"sync"
	"testing"
	"time"
)

// ---------------------------------------------------------------------------
// Test helpers: fake clock and timer for deterministic retry testing
// ---------------------------------------------------------------------------

// testTimer is a timer the test fires by hand.
type testTimer struct {
	ch      chan time.Time
	stopped bool
	mu      sync.Mutex
}

func newTestTimer() *testTimer {
	return &testTimer{ch: make(chan time.Time, 1)}
}

func (t *testTimer) C() <-chan time.Time { return t.ch }

func (t *testTimer) Stop() bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	was := !t.stopped
	t.stopped = true
	return was
}

func (t *testTimer) fire() { t.ch <- time.Now() }

// immediateClock fires every timer at creation and records its duration.
type immediateClock struct {
	mu        sync.Mutex
	durations []time.Duration
}

func (c *immediateClock) Now() time.Time { return time.Now() }

func (c *immediateClock) NewTimer(d time.Duration) Timer {
	c.mu.Lock()
	c.durations = append(c.durations, d)
	c.mu.Unlock()
	t := newTestTimer()
	t.fire()
	return t
}

func (c *immediateClock) getDurations() []time.Duration {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]time.Duration, len(c.durations))
	copy(out, c.durations)
	return out
}

// stuckClock hands out timers that never fire.
type stuckClock struct {
	mu     sync.Mutex
	timers []*testTimer
}

func (c *stuckClock) Now() time.Time { return time.Now() }

func (c *stuckClock) NewTimer(time.Duration) Timer {
	c.mu.Lock()
	defer c.mu.Unlock()
	t := newTestTimer()
	c.timers = append(c.timers, t)
	return t
}

func (c *stuckClock) timerCount() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.timers)
}

// ---------------------------------------------------------------------------
// RealClock
// ---------------------------------------------------------------------------

func TestRealClockTimerFires(t *testing.T) {
	timer := RealClock{}.NewTimer(time.Millisecond)
	select {
	case <-timer.C():
	case <-time.After(time.Second):
		t.Fatal("real timer did not fire within 1s")
	}
}

func TestRealClockTimerStop(t *testing.T) {
	timer := RealClock{}.NewTimer(time.Hour)
	if !timer.Stop() {
		t.Fatal("Stop() = false on an active timer, want true")
	}
}
