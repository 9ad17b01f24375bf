package gesture

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/megant/aktion/internal/dom"
	"github.com/megant/aktion/internal/ir"
	"github.com/megant/aktion/internal/loop"
)

type fixture struct {
	loop   *loop.Loop
	doc    *dom.Document
	el     *dom.Element
	swipes []string
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	doc, err := dom.ParseString(`<div id="card"><span id="label">hi</span></div>`)
	require.NoError(t, err)

	f := &fixture{
		loop: loop.New(loop.NewVirtualClock()),
		doc:  doc,
		el:   doc.First("#card"),
	}
	f.el.On("swipeleft swiperight swipeup swipedown", func(ev *dom.Event) {
		f.swipes = append(f.swipes, ev.Type)
	})
	return f
}

func (f *fixture) detector(descs ...*ir.Descriptor) *Detector {
	det := NewDetector(f.el, f.loop, nil)
	for _, d := range descs {
		det.Register(d)
	}
	return det
}

func (f *fixture) touch(typ string, x, y int) {
	f.el.Dispatch(&dom.Event{Type: typ, Point: dom.Point{X: x, Y: y}})
}

func swipe(name, event string, threshold int) *ir.Descriptor {
	return &ir.Descriptor{Name: name, Event: event, EventThreshold: threshold, ExtraCondition: ir.Always}
}

func TestDirections(t *testing.T) {
	tests := []struct {
		name  string
		delta dom.Point
		want  []string
	}{
		{"still", dom.Point{}, nil},
		{"at threshold", dom.Point{X: 10, Y: -10}, nil},
		{"right", dom.Point{X: 11}, []string{ir.EventSwipeRight}},
		{"left", dom.Point{X: -11}, []string{ir.EventSwipeLeft}},
		{"up", dom.Point{Y: -30}, []string{ir.EventSwipeUp}},
		{"down", dom.Point{Y: 30}, []string{ir.EventSwipeDown}},
		{"diagonal", dom.Point{X: -20, Y: 20}, []string{ir.EventSwipeLeft, ir.EventSwipeDown}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Directions(tt.delta, 10))
		})
	}
}

func TestSwipeRight(t *testing.T) {
	f := newFixture(t)
	f.detector(
		swipe("right", ir.EventSwipeRight, 10),
		swipe("left", ir.EventSwipeLeft, 10),
		swipe("up", ir.EventSwipeUp, 10),
		swipe("down", ir.EventSwipeDown, 10),
	)

	f.touch("touchstart", 100, 100)
	f.loop.Advance(50 * time.Millisecond)
	f.touch("touchmove", 108, 101)
	f.loop.Advance(50 * time.Millisecond)
	f.touch("touchmove", 115, 100)
	f.touch("touchend", 115, 100)

	assert.Equal(t, []string{ir.EventSwipeRight}, f.swipes)
}

func TestSwipeBelowThreshold(t *testing.T) {
	f := newFixture(t)
	f.detector(swipe("right", ir.EventSwipeRight, 20))

	f.touch("touchstart", 0, 0)
	f.touch("touchmove", 15, 0)
	f.touch("touchend", 15, 0)

	assert.Empty(t, f.swipes)
}

func TestSwipeStillnessSuppression(t *testing.T) {
	f := newFixture(t)
	det := f.detector(swipe("right", ir.EventSwipeRight, 10))

	f.touch("touchstart", 0, 0)
	f.loop.Advance(StillnessTimeout)
	assert.False(t, det.Active(), "a touch resting at its start is not a swipe")

	f.touch("touchmove", 50, 0)
	f.touch("touchend", 50, 0)
	assert.Empty(t, f.swipes)
}

func TestSwipeMovedBeforeTimeout(t *testing.T) {
	f := newFixture(t)
	det := f.detector(swipe("right", ir.EventSwipeRight, 10))

	f.touch("touchstart", 0, 0)
	f.touch("touchmove", 5, 0)
	f.loop.Advance(time.Second)
	assert.True(t, det.Active(), "moving before the timeout keeps the touch active")

	f.touch("touchmove", 40, 0)
	f.touch("touchcancel", 40, 0)
	assert.Equal(t, []string{ir.EventSwipeRight}, f.swipes)
}

func TestSwipeUsesLastMove(t *testing.T) {
	f := newFixture(t)
	f.detector(swipe("right", ir.EventSwipeRight, 10))

	f.touch("touchstart", 0, 0)
	f.touch("touchmove", 30, 0)
	f.touch("touchmove", 2, 0)
	f.touch("touchend", 2, 0)

	assert.Empty(t, f.swipes, "flags are recomputed on every move")
}

func TestSwipeDiagonalTriggersBothAxes(t *testing.T) {
	f := newFixture(t)
	f.detector(
		swipe("left", ir.EventSwipeLeft, 10),
		swipe("down", ir.EventSwipeDown, 10),
	)

	f.touch("touchstart", 50, 50)
	f.touch("touchmove", 20, 80)
	f.touch("touchend", 20, 80)

	assert.Equal(t, []string{ir.EventSwipeLeft, ir.EventSwipeDown}, f.swipes)
}

func TestSwipePerDescriptorThreshold(t *testing.T) {
	f := newFixture(t)
	f.detector(
		swipe("near", ir.EventSwipeRight, 50),
		swipe("far", ir.EventSwipeLeft, 5),
	)

	f.touch("touchstart", 0, 0)
	f.touch("touchmove", -20, 0)
	f.touch("touchend", -20, 0)

	assert.Equal(t, []string{ir.EventSwipeLeft}, f.swipes)
}

func TestSwipeSameDirectionTriggersOnce(t *testing.T) {
	f := newFixture(t)
	f.detector(
		swipe("a", ir.EventSwipeUp, 10),
		swipe("b", ir.EventSwipeUp, 10),
	)

	f.touch("touchstart", 0, 100)
	f.touch("touchmove", 0, 50)
	f.touch("touchend", 0, 50)

	assert.Equal(t, []string{ir.EventSwipeUp}, f.swipes)
}

func TestSwipeExtraCondition(t *testing.T) {
	f := newFixture(t)
	d := swipe("right", ir.EventSwipeRight, 10)
	d.ExtraCondition = func() bool { return false }
	f.detector(d)

	f.touch("touchstart", 0, 0)
	f.touch("touchmove", 30, 0)
	f.touch("touchend", 30, 0)

	assert.Empty(t, f.swipes)
}

func TestSwipeStateResetsAfterEnd(t *testing.T) {
	f := newFixture(t)
	det := f.detector(swipe("right", ir.EventSwipeRight, 10))

	f.touch("touchstart", 0, 0)
	f.touch("touchmove", 30, 0)
	f.touch("touchend", 30, 0)
	require.Len(t, f.swipes, 1)

	assert.False(t, det.Active())
	assert.Equal(t, 0, f.loop.Pending(), "stillness timer is cancelled")

	// An end without a start is ignored.
	f.touch("touchend", 30, 0)
	assert.Len(t, f.swipes, 1)
}

func TestSwipeFromDescendant(t *testing.T) {
	f := newFixture(t)
	f.detector(swipe("right", ir.EventSwipeRight, 10))
	label := f.doc.First("#label")

	label.Dispatch(&dom.Event{Type: "touchstart", Point: dom.Point{X: 0, Y: 0}})
	label.Dispatch(&dom.Event{Type: "touchmove", Point: dom.Point{X: 20, Y: 0}})
	label.Dispatch(&dom.Event{Type: "touchend", Point: dom.Point{X: 20, Y: 0}})

	assert.Equal(t, []string{ir.EventSwipeRight}, f.swipes)
}

func TestDetectorsOnePerElement(t *testing.T) {
	doc, err := dom.ParseString(`<li class="row"></li><li class="row"></li>`)
	require.NoError(t, err)
	rows := doc.Query(".row")

	set := NewDetectors(loop.New(loop.NewVirtualClock()), nil)
	a := &ir.Descriptor{Name: "a", Event: ir.EventSwipeLeft, Source: rows, ExtraCondition: ir.Always}
	b := &ir.Descriptor{Name: "b", Event: ir.EventSwipeRight, Source: rows[:1], ExtraCondition: ir.Always}

	assert.Equal(t, 2, set.Register(a))
	assert.Equal(t, 1, set.Register(b))
	assert.Equal(t, 2, set.Len())
	require.NotNil(t, set.Get(rows[0]))
	assert.Same(t, rows[0], set.Get(rows[0]).Element())
	assert.Equal(t, 1, rows[0].ListenerCount("touchstart"), "listeners bound once per element")
}
