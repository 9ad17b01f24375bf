// Package loop implements a single-threaded, cooperative event loop driven by
// a virtual clock.
//
// The loop models the browser's macrotask queue: Post schedules work for the
// next tick boundary, AfterFunc and Every schedule timer callbacks. Nothing runs
// until the owner calls RunPending or Advance, which makes every suspension
// point explicit and every ordering deterministic.
//
// Ordering: tasks run by due time, ties broken by scheduling order (a logical
// sequence number, never wall-clock time).
package loop

import (
	"sort"
	"sync"
	"time"
)

// MinInterval is the shortest period accepted by Every.
const MinInterval = time.Millisecond

// Timer is a handle to a scheduled callback.
type Timer struct {
	loop    *Loop
	due     time.Time
	seq     int64
	period  time.Duration
	fn      func()
	stopped bool
}

// Stop cancels the timer. Returns false if it already fired (one-shot) or
// was already stopped.
func (t *Timer) Stop() bool {
	if t == nil || t.loop == nil {
		return false
	}
	return t.loop.stop(t)
}

// Loop is the event loop.
//
// Thread-safety: scheduling methods may be called from any goroutine, but
// RunPending and Advance must be called from exactly one goroutine. Callbacks
// always run without the internal lock held, so they may schedule more work.
type Loop struct {
	mu      sync.Mutex
	clock   *VirtualClock
	seq     int64
	pending []*Timer // sorted by (due, seq)
}

// New creates a loop over the given clock. A nil clock gets a fresh
// VirtualClock.
func New(clock *VirtualClock) *Loop {
	if clock == nil {
		clock = NewVirtualClock()
	}
	return &Loop{clock: clock}
}

// Clock returns the loop's clock.
func (l *Loop) Clock() *VirtualClock {
	return l.clock
}

// Now returns the loop's current time.
func (l *Loop) Now() time.Time {
	return l.clock.Now()
}

// Post schedules fn to run at the next tick boundary, after every callback
// already due.
func (l *Loop) Post(fn func()) *Timer {
	return l.schedule(0, 0, fn)
}

// AfterFunc schedules fn to run once after d.
func (l *Loop) AfterFunc(d time.Duration, fn func()) *Timer {
	if d < 0 {
		d = 0
	}
	return l.schedule(d, 0, fn)
}

// Every schedules fn to run every d until the returned timer is stopped.
func (l *Loop) Every(d time.Duration, fn func()) *Timer {
	if d < MinInterval {
		d = MinInterval
	}
	return l.schedule(d, d, fn)
}

// Pending returns the number of scheduled callbacks.
func (l *Loop) Pending() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.pending)
}

// RunPending runs every callback due at the current time, including callbacks
// posted by those callbacks. Returns the number of callbacks run.
func (l *Loop) RunPending() int {
	return l.runUntil(l.clock.Now())
}

// Advance moves time forward by d, running each callback at its due time.
// Returns the number of callbacks run.
func (l *Loop) Advance(d time.Duration) int {
	if d < 0 {
		d = 0
	}
	return l.runUntil(l.clock.Now().Add(d))
}

func (l *Loop) runUntil(target time.Time) int {
	ran := 0
	for {
		t := l.next(target)
		if t == nil {
			break
		}
		l.clock.Set(t.due)
		t.fn()
		ran++
	}
	l.clock.Set(target)
	return ran
}

// next pops the earliest timer due at or before target, rescheduling
// intervals before their callback runs.
func (l *Loop) next(target time.Time) *Timer {
	l.mu.Lock()
	defer l.mu.Unlock()

	if len(l.pending) == 0 || l.pending[0].due.After(target) {
		return nil
	}
	t := l.pending[0]
	l.pending[0] = nil
	l.pending = l.pending[1:]

	if t.period > 0 {
		fired := *t
		l.seq++
		t.due = t.due.Add(t.period)
		t.seq = l.seq
		l.insert(t)
		return &fired
	}
	t.stopped = true
	return t
}

func (l *Loop) schedule(delay, period time.Duration, fn func()) *Timer {
	l.mu.Lock()
	defer l.mu.Unlock()

	l.seq++
	t := &Timer{
		loop:   l,
		due:    l.clock.Now().Add(delay),
		seq:    l.seq,
		period: period,
		fn:     fn,
	}
	l.insert(t)
	return t
}

func (l *Loop) insert(t *Timer) {
	i := sort.Search(len(l.pending), func(i int) bool {
		p := l.pending[i]
		if p.due.Equal(t.due) {
			return p.seq > t.seq
		}
		return p.due.After(t.due)
	})
	l.pending = append(l.pending, nil)
	copy(l.pending[i+1:], l.pending[i:])
	l.pending[i] = t
}

func (l *Loop) stop(t *Timer) bool {
	l.mu.Lock()
	defer l.mu.Unlock()

	if t.stopped {
		return false
	}
	t.stopped = true
	for i, p := range l.pending {
		if p == t {
			l.pending = append(l.pending[:i], l.pending[i+1:]...)
			return true
		}
	}
	return false
}
