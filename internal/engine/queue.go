package engine

import (
	"github.com/megant/aktion/internal/dom"
	"github.com/megant/aktion/internal/ir"
)

// Activation is one concrete triggering of a descriptor.
type Activation struct {
	Descriptor *ir.Descriptor
	// Trigger is the element the triggering event targeted.
	Trigger *dom.Element
}

// Name returns the descriptor name the activation is keyed by.
func (a Activation) Name() string {
	return a.Descriptor.Name
}

// activationQueue is an insertion-ordered map from action name to
// activation.
//
// Submitting a name that is already queued replaces its trigger context and
// keeps its position, so each action runs at most once per batch.
type activationQueue struct {
	order   []string
	entries map[string]Activation
}

// newActivationQueue creates an empty queue.
func newActivationQueue() *activationQueue {
	return &activationQueue{
		order:   make([]string, 0, 8),
		entries: make(map[string]Activation),
	}
}

// Put queues a. Returns false if the name was already queued.
func (q *activationQueue) Put(a Activation) bool {
	name := a.Name()
	_, exists := q.entries[name]
	q.entries[name] = a
	if exists {
		return false
	}
	q.order = append(q.order, name)
	return true
}

// Get returns the activation queued under name.
func (q *activationQueue) Get(name string) (Activation, bool) {
	a, ok := q.entries[name]
	return a, ok
}

// Names returns a copy of the queued names in submission order.
func (q *activationQueue) Names() []string {
	return append([]string(nil), q.order...)
}

// Len returns the number of queued activations.
func (q *activationQueue) Len() int {
	return len(q.order)
}
