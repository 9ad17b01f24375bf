package dom

import "strings"

// Point is a page coordinate.
type Point struct {
	X int `yaml:"x" json:"x"`
	Y int `yaml:"y" json:"y"`
}

// Event is a dispatched event. Every event bubbles.
type Event struct {
	Type          string
	Target        *Element
	CurrentTarget *Element
	Data          any
	Point         Point

	stopped bool
}

// StopPropagation prevents the event from reaching further ancestors.
func (e *Event) StopPropagation() {
	e.stopped = true
}

// Stopped reports whether propagation was stopped.
func (e *Event) Stopped() bool {
	return e.stopped
}

// Handler receives dispatched events.
type Handler func(ev *Event)

// splitEvents splits a space-separated event list.
func splitEvents(events string) []string {
	return strings.Fields(events)
}

// On subscribes h to each of the space-separated event names.
func (e *Element) On(events string, h Handler) *Element {
	for _, name := range splitEvents(events) {
		e.listeners[name] = append(e.listeners[name], h)
	}
	return e
}

// Delegate subscribes h on e for events whose target matches selector, so
// elements added later are covered too.
func (e *Element) Delegate(selector, events string, h Handler) *Element {
	return e.On(events, func(ev *Event) {
		if ev.Target != nil && ev.Target.Matches(selector) {
			h(ev)
		}
	})
}

// Trigger dispatches a new event of the given type with e as target.
func (e *Element) Trigger(name string, data any) *Event {
	ev := &Event{Type: name, Data: data}
	e.Dispatch(ev)
	return ev
}

// Dispatch delivers ev with e as target, bubbling to the window.
func (e *Element) Dispatch(ev *Event) {
	ev.Target = e
	e.doc.notify(ev)
	for cur := e; cur != nil && !ev.stopped; cur = cur.Parent() {
		handlers := cur.listeners[ev.Type]
		if len(handlers) == 0 {
			continue
		}
		ev.CurrentTarget = cur
		// copy: handlers may subscribe more listeners while running
		for _, h := range append([]Handler(nil), handlers...) {
			h(ev)
		}
	}
	ev.CurrentTarget = nil
}

// ListenerCount returns the number of handlers bound for an event name.
func (e *Element) ListenerCount(name string) int {
	return len(e.listeners[name])
}
