package testutil

import "sync"

// BaseTime is 2020-11-23T20:51:10Z in microseconds, a convenient fixed
// starting point for document timestamps.
const BaseTime int64 = 1606164670376000

// ManualClock is a microsecond clock that only moves when told to.
//
// Pass clock.Now to store.WithClock for deterministic timestamps.
//
// Thread-safety: All methods are safe for concurrent use via internal mutex.
type ManualClock struct {
	mu  sync.Mutex
	now int64
}

// NewManualClock creates a clock reading start. Zero means BaseTime.
func NewManualClock(start int64) *ManualClock {
	if start == 0 {
		start = BaseTime
	}
	return &ManualClock{now: start}
}

// Now returns the current reading without advancing.
func (c *ManualClock) Now() int64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

// Advance moves the clock forward by micros and returns the new reading.
func (c *ManualClock) Advance(micros int64) int64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now += micros
	return c.now
}

// Set moves the clock to an absolute reading, forwards or backwards.
func (c *ManualClock) Set(now int64) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = now
}
