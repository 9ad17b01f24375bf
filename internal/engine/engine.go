package engine

import (
	"errors"
	"fmt"
	"io"
	"log/slog"

	"go.opentelemetry.io/otel/trace"

	"github.com/megant/aktion/internal/compiler"
	"github.com/megant/aktion/internal/dom"
	"github.com/megant/aktion/internal/gesture"
	"github.com/megant/aktion/internal/ir"
	"github.com/megant/aktion/internal/loop"
	"github.com/megant/aktion/internal/scroll"
)

// Vendor-prefixed end events re-triggered under the cross-platform names.
const (
	TransitionEndEvents = "transitionend webkitTransitionEnd oTransitionEnd MSTransitionEnd"
	AnimationEndEvents  = "animationend webkitAnimationEnd oAnimationEnd MSAnimationEnd"
)

// Engine wires the declaring elements of a document to the scheduler.
//
// Thread-safety model: none. Every method, listener and timer runs on the
// loop the engine was created with.
//
// INVARIANTS:
//   - An element is compiled and wired at most once, however often
//     Activate runs
//   - Descriptors keep declaration order
type Engine struct {
	doc    *dom.Document
	loop   *loop.Loop
	cfg    Config
	logger *slog.Logger

	tracer     trace.Tracer
	ids        BatchIDGenerator
	recorder   Recorder
	predicates *compiler.PredicateRegistry

	factory   *compiler.Factory
	executor  *Executor
	scheduler *Scheduler
	scroll    *scroll.Tracker
	gestures  *gesture.Detectors

	descriptors []*ir.Descriptor
	wired       map[*dom.Element]bool
	normalized  map[*dom.Element]bool
}

// Option configures an Engine.
type Option func(*Engine)

// WithConfig replaces the default Config.
func WithConfig(cfg Config) Option {
	return func(e *Engine) {
		e.cfg = cfg
	}
}

// WithLogger sets the logger used in debug mode. Defaults to slog.Default().
func WithLogger(logger *slog.Logger) Option {
	return func(e *Engine) {
		e.logger = logger
	}
}

// WithTracer sets the tracer flush spans are recorded with.
func WithTracer(t trace.Tracer) Option {
	return func(e *Engine) {
		e.tracer = t
	}
}

// WithBatchGenerator sets the batch ID generator.
//
// Default: UUIDv7Generator. Use FixedGenerator for golden traces.
func WithBatchGenerator(g BatchIDGenerator) Option {
	return func(e *Engine) {
		e.ids = g
	}
}

// WithRecorder adds a recorder of completed flushes.
func WithRecorder(r Recorder) Option {
	return func(e *Engine) {
		if rs, ok := e.recorder.(recorders); ok {
			e.recorder = append(rs, r)
			return
		}
		if e.recorder == nil {
			e.recorder = r
			return
		}
		e.recorder = recorders{e.recorder, r}
	}
}

// WithPredicates sets the registry extra conditions are looked up in.
func WithPredicates(r *compiler.PredicateRegistry) Option {
	return func(e *Engine) {
		e.predicates = r
	}
}

// New creates an Engine for doc running on l. With Config.AutoActivate the
// document is scanned before New returns; elements that fail to compile are
// logged and skipped.
func New(doc *dom.Document, l *loop.Loop, opts ...Option) (*Engine, error) {
	e := &Engine{
		doc:        doc,
		loop:       l,
		cfg:        DefaultConfig(),
		wired:      make(map[*dom.Element]bool),
		normalized: make(map[*dom.Element]bool),
	}
	for _, opt := range opts {
		opt(e)
	}

	switch {
	case !e.cfg.DebugMode:
		e.logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	case e.logger == nil:
		e.logger = slog.Default()
	}
	if e.predicates == nil {
		e.predicates = compiler.NewPredicateRegistry()
	}

	factory, err := compiler.NewFactory(doc,
		compiler.WithPrefix(e.cfg.DataAttributePrefix),
		compiler.WithIOS(e.cfg.IOS),
		compiler.WithPredicates(e.predicates))
	if err != nil {
		return nil, fmt.Errorf("create descriptor factory: %w", err)
	}
	e.factory = factory

	e.executor = NewExecutor(e.logger)
	e.scheduler = NewScheduler(l, e.executor, SchedulerConfig{
		Logger:   e.logger,
		Tracer:   e.tracer,
		IDs:      e.ids,
		Recorder: e.recorder,
	})
	e.scroll = scroll.NewTracker(l, e.scheduler, e.logger)
	e.gestures = gesture.NewDetectors(l, e.logger)

	if e.cfg.AutoActivate {
		if _, err := e.Activate(); err != nil {
			e.logger.Warn("auto activation skipped elements", "error", err)
		}
	}
	return e, nil
}

// Activate scans the document for declaring elements and wires every element
// not wired yet. It returns the number of actions wired by this call and the
// joined compile errors of the elements it skipped.
func (e *Engine) Activate() (int, error) {
	elements := e.factory.Elements()
	if len(elements) == 0 {
		e.logger.Debug("no action elements found", "selector", e.factory.Selector())
		return 0, nil
	}
	e.bindEndEvents()

	var (
		wired int
		errs  []error
		added []*ir.Descriptor
	)
	for _, el := range elements {
		if e.wired[el] {
			continue
		}
		d, err := e.factory.Compile(el)
		if err != nil {
			e.logger.Warn("skipping action element", "element", el.String(), "error", err)
			errs = append(errs, err)
			continue
		}
		e.wired[el] = true
		e.route(d)
		added = append(added, d)
		wired++
	}
	e.descriptors = append(e.descriptors, added...)

	for _, diag := range compiler.Diagnose(e.descriptors) {
		e.logger.Warn("action diagnostic", "action", diag.Name, "message", diag.Message, "level", diag.Level)
	}
	e.logger.Info("actions activated", "wired", wired, "skipped", len(errs), "total", len(e.descriptors))
	return wired, errors.Join(errs...)
}

// route hands a descriptor to the component that detects its event.
func (e *Engine) route(d *ir.Descriptor) {
	e.logger.Debug("action wired", "action", d, "family", d.Family().String())
	switch d.Family() {
	case ir.FamilyScroll:
		e.scroll.Track(d)
	case ir.FamilySwipe:
		e.gestures.Register(d)
		// the detector already checked the extra condition
		e.listen(d, func(ev *dom.Event) {
			e.scheduler.Submit(d, ev.Target)
		})
	default:
		e.listen(d, func(ev *dom.Event) {
			if d.Condition() {
				e.scheduler.Submit(d, ev.Target)
			}
		})
	}
}

// listen binds h for d.Event, delegated from <body> when the descriptor
// names a source selector, and on the resolved sources otherwise.
func (e *Engine) listen(d *ir.Descriptor, h dom.Handler) {
	if d.Delegated() {
		if body := e.doc.Body(); body != nil {
			body.Delegate(d.SourceSelector, d.Event, h)
			return
		}
	}
	for _, src := range d.Source {
		src.On(d.Event, h)
	}
}

// bindEndEvents re-triggers vendor-prefixed transition and animation end
// events as trans-end and anim-end on their target, for the elements that
// declare those events.
func (e *Engine) bindEndEvents() {
	attr := e.factory.AttrName(compiler.AttrEvent)
	for _, pair := range []struct{ event, natives string }{
		{ir.EventTransitionEnd, TransitionEndEvents},
		{ir.EventAnimationEnd, AnimationEndEvents},
	} {
		for _, el := range e.doc.Query(fmt.Sprintf("[%s=%q]", attr, pair.event)) {
			if e.normalized[el] && el.ListenerCount(firstEvent(pair.natives)) > 0 {
				continue
			}
			e.normalized[el] = true
			event := pair.event
			el.On(pair.natives, func(ev *dom.Event) {
				ev.Target.Trigger(event, ev.Data)
			})
		}
	}
}

// Submit queues an activation directly, bypassing event listeners.
func (e *Engine) Submit(d *ir.Descriptor, trigger *dom.Element) {
	e.scheduler.Submit(d, trigger)
}

// Descriptor returns the wired descriptor with the given name.
func (e *Engine) Descriptor(name string) (*ir.Descriptor, bool) {
	for _, d := range e.descriptors {
		if d.Name == name {
			return d, true
		}
	}
	return nil, false
}

// Descriptors returns the wired descriptors in activation order.
func (e *Engine) Descriptors() []*ir.Descriptor {
	return append([]*ir.Descriptor(nil), e.descriptors...)
}

// Document returns the engine's document.
func (e *Engine) Document() *dom.Document { return e.doc }

// Loop returns the loop the engine runs on.
func (e *Engine) Loop() *loop.Loop { return e.loop }

// Config returns the engine settings.
func (e *Engine) Config() Config { return e.cfg }

// Scheduler returns the action scheduler.
func (e *Engine) Scheduler() *Scheduler { return e.scheduler }

// Scroll returns the scroll tracker.
func (e *Engine) Scroll() *scroll.Tracker { return e.scroll }

// Gestures returns the swipe detectors.
func (e *Engine) Gestures() *gesture.Detectors { return e.gestures }

// Predicates returns the predicate registry.
func (e *Engine) Predicates() *compiler.PredicateRegistry { return e.predicates }

func firstEvent(events string) string {
	for i := 0; i < len(events); i++ {
		if events[i] == ' ' {
			return events[:i]
		}
	}
	return events
}
