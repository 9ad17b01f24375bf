package engine

import (
	"context"
	"io"
	"log/slog"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/megant/aktion/internal/dom"
	"github.com/megant/aktion/internal/ir"
	"github.com/megant/aktion/internal/loop"
)

// TracerName is the instrumentation name of the scheduler's spans.
const TracerName = "github.com/megant/aktion/internal/engine"

// SchedulerConfig carries the collaborators of a Scheduler. Zero fields get
// defaults: a discarding logger, the global otel tracer, UUIDv7 batch IDs, a
// fresh Clock and no recorder.
type SchedulerConfig struct {
	Logger   *slog.Logger
	Tracer   trace.Tracer
	IDs      BatchIDGenerator
	Clock    *Clock
	Recorder Recorder
}

// Scheduler batches the activations submitted during one loop tick and
// flushes them once, at the next tick boundary.
//
// INVARIANTS:
//   - At most one flush is pending at a time
//   - Submissions before the pending flush runs join its batch
//   - Submissions after a flush started go to a new batch
//   - Deferred callbacks run after every mutation of their batch
type Scheduler struct {
	loop     *loop.Loop
	exec     *Executor
	logger   *slog.Logger
	tracer   trace.Tracer
	ids      BatchIDGenerator
	clock    *Clock
	recorder Recorder

	queue    *activationQueue
	inFlight bool
}

// NewScheduler creates a Scheduler that flushes on l and runs activations
// through exec.
func NewScheduler(l *loop.Loop, exec *Executor, cfg SchedulerConfig) *Scheduler {
	s := &Scheduler{
		loop:     l,
		exec:     exec,
		logger:   cfg.Logger,
		tracer:   cfg.Tracer,
		ids:      cfg.IDs,
		clock:    cfg.Clock,
		recorder: cfg.Recorder,
		queue:    newActivationQueue(),
	}
	if s.logger == nil {
		s.logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	if s.tracer == nil {
		s.tracer = otel.Tracer(TracerName)
	}
	if s.ids == nil {
		s.ids = UUIDv7Generator{}
	}
	if s.clock == nil {
		s.clock = NewClock()
	}
	if s.exec == nil {
		s.exec = NewExecutor(s.logger)
	}
	return s
}

// Submit queues one activation of d triggered by trigger. The first
// submission of a tick posts the flush.
func (s *Scheduler) Submit(d *ir.Descriptor, trigger *dom.Element) {
	if d == nil {
		return
	}
	added := s.queue.Put(Activation{Descriptor: d, Trigger: trigger})
	s.logger.Debug("action submitted",
		"action", d.Name,
		"trigger", describe(trigger),
		"queued", s.queue.Len(),
		"replaced", !added)

	if s.inFlight {
		return
	}
	s.inFlight = true
	s.loop.Post(s.flush)
}

// Pending returns the names waiting for the next flush, in submission order.
func (s *Scheduler) Pending() []string {
	return s.queue.Names()
}

// InFlight reports whether a flush is scheduled.
func (s *Scheduler) InFlight() bool {
	return s.inFlight
}

// Clock returns the logical clock batches are stamped with.
func (s *Scheduler) Clock() *Clock {
	return s.clock
}

// flush runs the pending batch.
func (s *Scheduler) flush() {
	batch := s.queue
	s.queue = newActivationQueue()
	s.inFlight = false

	if batch.Len() == 0 {
		return
	}

	submitted := batch.Names()
	order := ResolveOrder(submitted, func(name string) *ir.Descriptor {
		if a, ok := batch.Get(name); ok {
			return a.Descriptor
		}
		return nil
	})

	b := Batch{
		ID:        s.ids.Generate(),
		Seq:       s.clock.Next(),
		At:        s.loop.Clock().Elapsed(),
		Submitted: submitted,
		Order:     order,
	}

	ctx, span := s.tracer.Start(context.Background(), "aktion.flush",
		trace.WithAttributes(
			attribute.String("aktion.batch.id", b.ID),
			attribute.Int64("aktion.batch.seq", b.Seq),
			attribute.Int("aktion.batch.size", len(order)),
		))
	defer span.End()

	var callbacks []func()
	for _, name := range order {
		a, _ := batch.Get(name)
		_, actionSpan := s.tracer.Start(ctx, "aktion.execute",
			trace.WithAttributes(
				attribute.String("aktion.action.name", name),
				attribute.String("aktion.action.type", string(a.Descriptor.Type)),
			))
		if cb := s.exec.Execute(a.Descriptor, a.Trigger); cb != nil {
			callbacks = append(callbacks, cb)
		}
		actionSpan.End()
	}
	b.Callbacks = len(callbacks)

	s.logger.Info("actions flushed",
		"batch", b.ID,
		"seq", b.Seq,
		"order", order,
		"callbacks", b.Callbacks)
	if s.recorder != nil {
		s.recorder.RecordBatch(b)
	}

	for _, cb := range callbacks {
		cb()
	}
}

// ResolveOrder applies trigger-before/after constraints to names in a single
// left-to-right pass over the original order:
//   - trigger-before X moves the name immediately before X
//   - otherwise trigger-after Y moves it immediately after Y
//
// References to names that are absent, or to the name itself, are ignored.
// Later moves can undo the effect of earlier ones; constraints are not
// iterated to a fixed point.
func ResolveOrder(names []string, lookup func(name string) *ir.Descriptor) []string {
	order := append([]string(nil), names...)
	present := make(map[string]bool, len(names))
	for _, name := range names {
		present[name] = true
	}

	for _, name := range names {
		d := lookup(name)
		if d == nil {
			continue
		}
		switch {
		case d.TriggerBefore != "" && d.TriggerBefore != name && present[d.TriggerBefore]:
			order = remove(order, name)
			order = insertAt(order, indexOf(order, d.TriggerBefore), name)
		case d.TriggerAfter != "" && d.TriggerAfter != name && present[d.TriggerAfter]:
			order = remove(order, name)
			order = insertAt(order, indexOf(order, d.TriggerAfter)+1, name)
		}
	}
	return order
}

func remove(list []string, s string) []string {
	if i := indexOf(list, s); i >= 0 {
		return append(list[:i], list[i+1:]...)
	}
	return list
}

func insertAt(list []string, i int, s string) []string {
	list = append(list, "")
	copy(list[i+1:], list[i:])
	list[i] = s
	return list
}

func describe(el *dom.Element) string {
	if el == nil {
		return "<nil>"
	}
	return el.String()
}
