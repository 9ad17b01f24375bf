package harness

import "github.com/megant/aktion/internal/engine"

// ObservedEvent is one dispatched DOM event, as seen before any listener.
type ObservedEvent struct {
	Type   string `json:"type"`
	Target string `json:"target"`
}

// Canonical implements ir.Canonical.
func (e ObservedEvent) Canonical() any {
	return map[string]any{"type": e.Type, "target": e.Target}
}

// Result is the outcome of a test scenario execution.
type Result struct {
	// Pass indicates overall test success.
	// True if all assertions match.
	Pass bool `json:"pass"`

	// Wired is the number of actions the page declared successfully.
	Wired int `json:"wired"`

	// Batches lists every flush in order. Used for order assertions and
	// golden comparison.
	Batches []engine.Batch `json:"batches"`

	// Events lists every dispatched event in order.
	Events []ObservedEvent `json:"events"`

	// Skipped holds the compile errors of declaring elements that were not
	// wired. They do not fail the scenario.
	Skipped []string `json:"skipped,omitempty"`

	// Errors contains assertion failures.
	// Empty if Pass is true.
	Errors []string `json:"errors,omitempty"`
}

// NewResult creates a new passing result.
func NewResult() *Result {
	return &Result{
		Pass:    true,
		Batches: []engine.Batch{},
		Events:  []ObservedEvent{},
		Errors:  []string{},
	}
}

// AddError adds a validation error and marks the result as failed.
func (r *Result) AddError(err string) {
	r.Errors = append(r.Errors, err)
	r.Pass = false
}

// Executed returns the execution order of every batch, concatenated.
func (r *Result) Executed() []string {
	names := []string{}
	for _, b := range r.Batches {
		names = append(names, b.Order...)
	}
	return names
}

// EventCount returns how often an event type was dispatched.
func (r *Result) EventCount(typ string) int {
	n := 0
	for _, ev := range r.Events {
		if ev.Type == typ {
			n++
		}
	}
	return n
}
