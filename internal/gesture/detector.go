// Package gesture turns touch sequences into directional swipe events.
//
// A Detector watches one element. It records where a touch started, derives
// direction flags from every touchmove, and on touchend or touchcancel
// triggers swipeleft, swiperight, swipeup or swipedown on the element for
// each registered descriptor whose direction was crossed. A touch that has
// not moved StillnessTimeout after it started is not a swipe.
package gesture

import (
	"io"
	"log/slog"
	"time"

	"github.com/megant/aktion/internal/dom"
	"github.com/megant/aktion/internal/ir"
	"github.com/megant/aktion/internal/loop"
)

// StillnessTimeout is how long a touch may rest at its start position before
// it stops counting as a swipe.
const StillnessTimeout = 200 * time.Millisecond

// Directions returns the swipe directions delta crosses with threshold.
// The axes are independent, so a diagonal can yield two directions.
func Directions(delta dom.Point, threshold int) []string {
	var dirs []string
	if delta.X < -threshold {
		dirs = append(dirs, ir.EventSwipeLeft)
	} else if delta.X > threshold {
		dirs = append(dirs, ir.EventSwipeRight)
	}
	if delta.Y < -threshold {
		dirs = append(dirs, ir.EventSwipeUp)
	} else if delta.Y > threshold {
		dirs = append(dirs, ir.EventSwipeDown)
	}
	return dirs
}

// Detector detects swipes on one element.
type Detector struct {
	el     *dom.Element
	loop   *loop.Loop
	logger *slog.Logger

	touch touchTracker
	descs []*ir.Descriptor
	// flags holds the directions of the last touchmove, per descriptor
	// threshold.
	flags     map[*ir.Descriptor][]string
	stillness *loop.Timer
}

// NewDetector binds a detector to the touch events of el.
func NewDetector(el *dom.Element, l *loop.Loop, logger *slog.Logger) *Detector {
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	d := &Detector{
		el:     el,
		loop:   l,
		logger: logger,
		flags:  make(map[*ir.Descriptor][]string),
	}
	el.On("touchstart", d.onStart)
	el.On("touchmove", d.onMove)
	el.On("touchend touchcancel", d.onEnd)
	return d
}

// Register adds a swipe descriptor. Its threshold and extra condition are
// applied to every touch from now on.
func (d *Detector) Register(desc *ir.Descriptor) {
	d.descs = append(d.descs, desc)
}

// Element returns the watched element.
func (d *Detector) Element() *dom.Element {
	return d.el
}

// Active reports whether the current touch can still become a swipe.
func (d *Detector) Active() bool {
	return d.touch.active
}

func (d *Detector) onStart(ev *dom.Event) {
	d.touch.start(ev.Point)
	clear(d.flags)

	if d.stillness != nil {
		d.stillness.Stop()
	}
	d.stillness = d.loop.AfterFunc(StillnessTimeout, func() {
		if d.touch.active && d.touch.still() {
			d.touch.active = false
			d.logger.Debug("touch held still, not a swipe", "element", d.el.String())
		}
	})
}

func (d *Detector) onMove(ev *dom.Event) {
	d.touch.update(ev.Point)
	delta := d.touch.getDelta()
	for _, desc := range d.descs {
		d.flags[desc] = Directions(delta, desc.EventThreshold)
	}
}

func (d *Detector) onEnd(*dom.Event) {
	var events []string
	if d.touch.active {
		for _, desc := range d.descs {
			if contains(d.flags[desc], desc.Event) && !contains(events, desc.Event) && desc.Condition() {
				events = append(events, desc.Event)
			}
		}
	}

	d.reset()

	for _, name := range events {
		d.logger.Debug("swipe detected", "element", d.el.String(), "event", name)
		d.el.Trigger(name, nil)
	}
}

func (d *Detector) reset() {
	d.touch.end()
	clear(d.flags)
	if d.stillness != nil {
		d.stillness.Stop()
		d.stillness = nil
	}
}

// Detectors keeps one Detector per element.
type Detectors struct {
	loop      *loop.Loop
	logger    *slog.Logger
	detectors map[*dom.Element]*Detector
}

// NewDetectors creates an empty set.
func NewDetectors(l *loop.Loop, logger *slog.Logger) *Detectors {
	return &Detectors{
		loop:      l,
		logger:    logger,
		detectors: make(map[*dom.Element]*Detector),
	}
}

// Register adds desc to the detector of each of its source elements,
// creating detectors as needed. Returns the number of source elements.
func (s *Detectors) Register(desc *ir.Descriptor) int {
	for _, el := range desc.Source {
		det, ok := s.detectors[el]
		if !ok {
			det = NewDetector(el, s.loop, s.logger)
			s.detectors[el] = det
		}
		det.Register(desc)
	}
	return len(desc.Source)
}

// Get returns the detector of el, or nil.
func (s *Detectors) Get(el *dom.Element) *Detector {
	return s.detectors[el]
}

// Len returns the number of detectors.
func (s *Detectors) Len() int {
	return len(s.detectors)
}

func contains(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}
