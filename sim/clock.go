package sim

import (
	"sync"
	"time"
)

// Clock provides monotonic time for the tick driver.
//
// Implementations must guarantee monotonicity: for two successive calls A and B
// on the same Clock, B.NowNanos() >= A.NowNanos().
type Clock interface {
	// NowNanos returns the current time in nanoseconds since an arbitrary epoch.
	// Only differences are meaningful.
	NowNanos() int64
}

// SystemClock reads the process monotonic clock.
type SystemClock struct {
	start time.Time
}

// NewSystemClock creates a SystemClock anchored at the current instant.
func NewSystemClock() *SystemClock {
	return &SystemClock{start: time.Now()}
}

// NowNanos returns nanoseconds elapsed since the clock was created.
func (c *SystemClock) NowNanos() int64 {
	return int64(time.Since(c.start))
}

// ManualClock is a Clock advanced explicitly, for deterministic tests.
// Safe for concurrent use.
type ManualClock struct {
	mu  sync.Mutex
	now int64
}

// NewManualClock creates a ManualClock reading startNanos.
func NewManualClock(startNanos int64) *ManualClock {
	return &ManualClock{now: startNanos}
}

// NowNanos returns the current manual time.
func (c *ManualClock) NowNanos() int64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

// Advance moves the clock forward by d. Negative durations are ignored.
func (c *ManualClock) Advance(d time.Duration) {
	if d <= 0 {
		return
	}
	c.mu.Lock()
	c.now += int64(d)
	c.mu.Unlock()
}

// DeltaSource turns successive clock readings into per-tick deltas.
type DeltaSource struct {
	clock Clock
	last  int64
}

// NewDeltaSource starts measuring from the clock's current reading.
func NewDeltaSource(c Clock) *DeltaSource {
	return &DeltaSource{clock: c, last: c.NowNanos()}
}

// Next returns the seconds elapsed since the previous call (or construction).
func (d *DeltaSource) Next() float64 {
	now := d.clock.NowNanos()
	delta := now - d.last
	d.last = now
	if delta < 0 {
		return 0
	}
	return time.Duration(delta).Seconds()
}
