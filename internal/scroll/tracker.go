// Package scroll synthesizes semantic scroll events by polling scroll
// offsets.
//
// One Tracker serves every scroll-family descriptor of an engine. All
// tracked containers share one scroll phase and one polling interval: the
// interval starts on the first touchstart, mousedown or scrollstart seen on
// any tracked container, and stops on touchend, touchcancel, mouseup or
// scrollend. Each tick samples every entry.
package scroll

import (
	"io"
	"log/slog"
	"time"

	"github.com/megant/aktion/internal/dom"
	"github.com/megant/aktion/internal/ir"
	"github.com/megant/aktion/internal/loop"
)

// Native events that start and stop the polling interval.
const (
	StartEvents = "touchstart mousedown scrollstart"
	StopEvents  = "touchend touchcancel mouseup scrollend"
)

// Submitter receives activations. Implemented by engine.Scheduler.
type Submitter interface {
	Submit(d *ir.Descriptor, trigger *dom.Element)
}

// Phase is the shared scroll phase.
type Phase int

const (
	PhaseInactive Phase = iota
	// PhaseActive means the interval runs but no motion was seen yet.
	PhaseActive
	PhaseMoving
	PhaseStopped
)

func (p Phase) String() string {
	switch p {
	case PhaseActive:
		return "active"
	case PhaseMoving:
		return "moving"
	case PhaseStopped:
		return "stopped"
	default:
		return "inactive"
	}
}

// Direction is the sign of the offset change between two samples.
type Direction int

const (
	DirectionUp   Direction = -1
	DirectionNone Direction = 0
	DirectionDown Direction = 1
)

func (d Direction) String() string {
	switch d {
	case DirectionUp:
		return "up"
	case DirectionDown:
		return "down"
	default:
		return "none"
	}
}

// entry is the per-container state of one descriptor.
type entry struct {
	desc      *ir.Descriptor
	source    *dom.Element
	container *dom.Element

	hasOffset    bool
	lastOffset   int
	hasDirection bool
	lastDir      Direction
	halted       bool
}

func (e *entry) reset() {
	e.hasOffset = false
	e.lastOffset = 0
	e.hasDirection = false
	e.lastDir = DirectionNone
	e.halted = false
}

// Tracker is the scroll state machine.
type Tracker struct {
	loop   *loop.Loop
	submit Submitter
	logger *slog.Logger

	phase      Phase
	interval   *loop.Timer
	startEvent string
	entries    []*entry
	containers map[*dom.Element]time.Duration
}

// NewTracker creates a Tracker that polls on l and submits matches to s.
func NewTracker(l *loop.Loop, s Submitter, logger *slog.Logger) *Tracker {
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return &Tracker{
		loop:       l,
		submit:     s,
		logger:     logger,
		containers: make(map[*dom.Element]time.Duration),
	}
}

// Phase returns the shared scroll phase.
func (t *Tracker) Phase() Phase {
	return t.phase
}

// Running reports whether the polling interval is active.
func (t *Tracker) Running() bool {
	return t.interval != nil
}

// Len returns the number of tracked entries.
func (t *Tracker) Len() int {
	return len(t.entries)
}

// Track registers a scroll-family descriptor. Every source element gets an
// entry whose container is its parent; window and document sources poll the
// window. Returns the number of entries added.
func (t *Tracker) Track(d *ir.Descriptor) int {
	sources := d.Source
	if d.SourceSelector == dom.SelectorWindow || d.SourceSelector == dom.SelectorDocument {
		sources = nil
		if len(d.Source) > 0 {
			sources = []*dom.Element{d.Source[0].Document().Window()}
		}
	}

	for _, src := range sources {
		container := src
		if src.Kind() == dom.KindElement {
			container = src.Parent()
		}
		t.entries = append(t.entries, &entry{desc: d, source: src, container: container})
		t.bind(container, d.IntervalTime)
	}
	t.logger.Debug("scroll action tracked", "action", d.Name, "event", d.Event, "entries", len(sources))
	return len(sources)
}

// bind wires the start, stop and scroll listeners of a container once. The
// first descriptor bound to a container decides its polling period.
func (t *Tracker) bind(container *dom.Element, interval time.Duration) {
	if _, ok := t.containers[container]; ok {
		return
	}
	t.containers[container] = interval

	container.On(StartEvents, func(ev *dom.Event) {
		t.Start(ev.Type, t.containers[container])
	})
	container.On(StopEvents, func(*dom.Event) {
		t.Stop()
	})
	container.On("scroll", func(*dom.Event) {
		if t.interval == nil {
			container.Trigger("scrollstart", nil)
		}
	})
}

// Start begins polling every d, remembering the event that started it. It
// is a no-op while polling is already running.
func (t *Tracker) Start(event string, d time.Duration) {
	if t.interval != nil {
		return
	}
	for _, e := range t.entries {
		e.halted = false
	}
	t.phase = PhaseActive
	t.startEvent = event
	t.interval = t.loop.Every(d, t.tick)
	t.logger.Debug("scroll polling started", "event", event, "interval", d)
}

// Stop cancels polling and resets every entry.
func (t *Tracker) Stop() {
	if t.interval == nil {
		return
	}
	t.interval.Stop()
	t.interval = nil
	t.phase = PhaseInactive
	for _, e := range t.entries {
		e.reset()
	}
	t.logger.Debug("scroll polling stopped")
}

// tick samples every entry once.
func (t *Tracker) tick() {
	for _, e := range t.entries {
		if t.interval == nil {
			// a scrollend triggered by an earlier entry stopped polling
			return
		}
		if t.check(e) {
			t.submit.Submit(e.desc, e.source)
		}
	}
}

// check samples one entry and reports whether its condition holds.
func (t *Tracker) check(e *entry) bool {
	if e.halted {
		return false
	}

	m := e.container.Scroll()
	if !m.Measurable() {
		return false
	}
	top := m.Top

	dir := DirectionNone
	if e.hasOffset && e.lastOffset < top {
		dir = DirectionDown
	} else if e.hasOffset && e.lastOffset > top {
		dir = DirectionUp
	}

	phase := t.phase
	stopped := phase > PhaseActive && dir == DirectionNone
	if stopped && ((e.hasDirection && e.lastDir == DirectionNone) || ir.IsEdgeEvent(e.desc.Event)) {
		e.halted = true
		t.phase = PhaseStopped
		t.logger.Debug("scroll stopped", "action", e.desc.Name, "offset", top)
		if t.startEvent == "scrollstart" {
			e.container.Trigger("scrollend", nil)
		}
		return false
	}

	// Elastic overscroll is not a scroll.
	if top < 0 || top+m.Viewport > m.Content {
		return false
	}

	var cond bool
	moving := phase > PhaseActive
	switch e.desc.Event {
	case ir.EventScrollStart:
		cond = phase == PhaseActive && top > 0
	case ir.EventScrollStop:
		cond = moving && dir == DirectionNone
	case ir.EventScroll:
		cond = moving && dir != DirectionNone
	case ir.EventScrollUp:
		cond = moving && dir == DirectionUp
	case ir.EventScrollDown:
		cond = moving && dir == DirectionDown
	case ir.EventScrollDirChange:
		cond = moving && e.hasDirection &&
			((e.lastDir == DirectionUp && dir == DirectionDown) || (e.lastDir == DirectionDown && dir == DirectionUp))
	case ir.EventScrollDirChangeUp:
		cond = moving && e.hasDirection && e.lastDir == DirectionDown && dir == DirectionUp
	case ir.EventScrollDirChangeDown:
		cond = moving && e.hasDirection && e.lastDir == DirectionUp && dir == DirectionDown
	case ir.EventScrollReachedTop:
		cond = moving && !(e.hasDirection && e.lastDir == DirectionDown) && top == 0
	case ir.EventScrollReachedBottom:
		cond = moving && !(e.hasDirection && e.lastDir == DirectionUp) && top+m.Viewport == m.Content
	}

	e.lastDir = dir
	e.hasDirection = true
	e.lastOffset = top
	e.hasOffset = true

	if t.phase == PhaseActive && dir != DirectionNone {
		t.phase = PhaseMoving
	}

	return e.desc.Condition() && cond
}
