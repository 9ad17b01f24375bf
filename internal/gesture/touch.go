package gesture

import "github.com/megant/aktion/internal/dom"

// touchTracker tracks the touch sequence of one element.
type touchTracker struct {
	// active indicates a touch that may still become a swipe.
	active bool

	// startPos is where the touch started.
	startPos dom.Point

	// currentPos is the latest touch position.
	currentPos dom.Point
}

// start begins a new touch.
func (t *touchTracker) start(pos dom.Point) {
	t.active = true
	t.startPos = pos
	t.currentPos = pos
}

// update records the current touch position.
func (t *touchTracker) update(pos dom.Point) {
	t.currentPos = pos
}

// end forgets the touch.
func (t *touchTracker) end() {
	t.active = false
	t.startPos = dom.Point{}
	t.currentPos = dom.Point{}
}

// still reports whether the touch has not left its start position.
func (t *touchTracker) still() bool {
	return t.currentPos == t.startPos
}

// getDelta returns the distance moved from start.
func (t *touchTracker) getDelta() dom.Point {
	return dom.Point{
		X: t.currentPos.X - t.startPos.X,
		Y: t.currentPos.Y - t.startPos.Y,
	}
}
