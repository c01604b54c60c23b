package schedule

import "sync/atomic"

// Timer recommends TryReseed once interval has elapsed since the last
// reseed notification. Clock is injectable for tests and defaults to
// time.Now's UnixNano in process wiring.
type Timer struct {
	sticky
	intervalNanos int64
	lastReseed    atomic.Int64
	clock         func() int64
}

// NewTimer builds a Timer schedule with the given interval in
// nanoseconds, using clock() for the current time and treating the
// construction instant as the initial last-reseed time.
func NewTimer(intervalNanos int64, clock func() int64) *Timer {
	t := &Timer{intervalNanos: intervalNanos, clock: clock}
	t.lastReseed.Store(clock())
	return t
}

func (t *Timer) Read() Action {
	elapsed := t.clock() - t.lastReseed.Load()
	if elapsed >= t.intervalNanos {
		return t.apply(TryReseed)
	}
	return t.apply(Continue)
}

func (t *Timer) NotifyReseed() {
	t.lastReseed.Store(t.clock())
	t.clear()
}
