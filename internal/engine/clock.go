package engine

import "sync/atomic"

// Clock is the monotonic logical clock that stamps flushes.
//
// Every batch gets a strictly increasing seq from this clock, so traces
// order batches without relying on wall-clock or virtual time.
//
// Thread-safety: Clock is safe for concurrent use (atomic operations),
// although the scheduler only calls Next from the loop.
type Clock struct {
	seq atomic.Int64
}

// NewClock creates a new clock starting at 0.
func NewClock() *Clock {
	return &Clock{}
}

// NewClockAt creates a new clock starting at a specific sequence number.
func NewClockAt(start int64) *Clock {
	c := &Clock{}
	c.seq.Store(start)
	return c
}

// Next returns the next sequence number and increments the clock.
func (c *Clock) Next() int64 {
	return c.seq.Add(1)
}

// Current returns the current sequence number without incrementing.
func (c *Clock) Current() int64 {
	return c.seq.Load()
}
