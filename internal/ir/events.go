package ir

// Synthetic scroll tokens, evaluated by the scroll tracker.
const (
	EventScroll              = "scroll"
	EventScrollStart         = "scroll-start"
	EventScrollStop          = "scroll-stop"
	EventScrollUp            = "scroll-up"
	EventScrollDown          = "scroll-down"
	EventScrollDirChange     = "scroll-dir-change"
	EventScrollDirChangeUp   = "scroll-dir-change-up"
	EventScrollDirChangeDown = "scroll-dir-change-down"
	EventScrollReachedTop    = "scroll-reached-top"
	EventScrollReachedBottom = "scroll-reached-bottom"
)

// Synthetic swipe tokens, emitted by the gesture detector.
const (
	EventSwipeLeft  = "swipeleft"
	EventSwipeRight = "swiperight"
	EventSwipeUp    = "swipeup"
	EventSwipeDown  = "swipedown"
)

// Cross-platform end events. Vendor-prefixed variants are re-triggered under
// these names.
const (
	EventTransitionEnd = "trans-end"
	EventAnimationEnd  = "anim-end"
)

// ScrollEvents lists the scroll-family tokens.
var ScrollEvents = []string{
	EventScroll,
	EventScrollStart,
	EventScrollStop,
	EventScrollUp,
	EventScrollDown,
	EventScrollDirChange,
	EventScrollDirChangeUp,
	EventScrollDirChangeDown,
	EventScrollReachedTop,
	EventScrollReachedBottom,
}

// SwipeEvents lists the swipe-family tokens.
var SwipeEvents = []string{EventSwipeLeft, EventSwipeRight, EventSwipeUp, EventSwipeDown}

// EventFamily routes a descriptor to the component that detects its event.
type EventFamily int

const (
	// FamilyNative events are bound directly as DOM listeners.
	FamilyNative EventFamily = iota
	// FamilyScroll events are synthesized by polling scroll offsets.
	FamilyScroll
	// FamilySwipe events are synthesized from touch sequences.
	FamilySwipe
)

// String returns the family name.
func (f EventFamily) String() string {
	switch f {
	case FamilyScroll:
		return "scroll"
	case FamilySwipe:
		return "swipe"
	default:
		return "native"
	}
}

// FamilyOf classifies an event name.
func FamilyOf(event string) EventFamily {
	for _, e := range ScrollEvents {
		if e == event {
			return FamilyScroll
		}
	}
	for _, e := range SwipeEvents {
		if e == event {
			return FamilySwipe
		}
	}
	return FamilyNative
}

// IsEdgeEvent reports whether event is one of the reached-top/bottom tokens.
func IsEdgeEvent(event string) bool {
	return event == EventScrollReachedTop || event == EventScrollReachedBottom
}
