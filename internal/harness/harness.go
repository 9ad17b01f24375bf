package harness

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"sort"
	"time"

	"go.opentelemetry.io/otel/trace"

	"github.com/megant/aktion/internal/compiler"
	"github.com/megant/aktion/internal/dom"
	"github.com/megant/aktion/internal/engine"
	"github.com/megant/aktion/internal/loop"
)

// Harness is the scenario execution engine.
// Every scenario gets a fresh page, loop and engine. The loop runs on a
// virtual clock and batch IDs come from a fixed generator, so a scenario
// produces the same trace on every run.
type Harness struct {
	doc    *dom.Document
	loop   *loop.Loop
	engine *engine.Engine
	log    *engine.BatchLog
	logger *slog.Logger
}

// RunOption configures a scenario run.
type RunOption func(*runConfig)

type runConfig struct {
	logger *slog.Logger
	tracer trace.Tracer
}

// WithLogger routes engine and harness logs to logger. Engine logs still
// require debug mode in the scenario config.
func WithLogger(logger *slog.Logger) RunOption {
	return func(c *runConfig) {
		c.logger = logger
	}
}

// WithTracer records flush spans on t.
func WithTracer(t trace.Tracer) RunOption {
	return func(c *runConfig) {
		c.tracer = t
	}
}

// Run executes a scenario and returns the result.
//
// Execution flow:
//  1. Parse the page and create a loop on a virtual clock
//  2. Register the scenario's predicates
//  3. Activate the engine; compile errors are recorded, not fatal
//  4. Execute the steps
//  5. Evaluate assertions against the final page and trace
//
// An error is returned only when the scenario cannot be executed: an
// unreadable page or a step whose target does not exist.
func Run(scenario *Scenario, opts ...RunOption) (*Result, error) {
	rc := runConfig{logger: slog.New(slog.NewTextHandler(io.Discard, nil))}
	for _, opt := range opts {
		opt(&rc)
	}

	doc, err := loadPage(scenario)
	if err != nil {
		return nil, err
	}

	result := NewResult()
	doc.Observe(func(ev *dom.Event) {
		result.Events = append(result.Events, ObservedEvent{Type: ev.Type, Target: ev.Target.String()})
	})

	preds := compiler.NewPredicateRegistry()
	names := make([]string, 0, len(scenario.Predicates))
	for name := range scenario.Predicates {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		value := scenario.Predicates[name]
		if err := preds.Register(name, func() bool { return value }); err != nil {
			return nil, fmt.Errorf("register predicate: %w", err)
		}
	}

	cfg := scenario.Config.Apply(engine.DefaultConfig())
	cfg.AutoActivate = false

	h := &Harness{
		doc:    doc,
		loop:   loop.New(loop.NewVirtualClock()),
		log:    &engine.BatchLog{},
		logger: rc.logger,
	}
	engineOpts := []engine.Option{
		engine.WithConfig(cfg),
		engine.WithLogger(rc.logger),
		engine.WithPredicates(preds),
		engine.WithBatchGenerator(engine.NewFixedGenerator(scenario.BatchIDs...)),
		engine.WithRecorder(h.log),
	}
	if rc.tracer != nil {
		engineOpts = append(engineOpts, engine.WithTracer(rc.tracer))
	}
	h.engine, err = engine.New(doc, h.loop, engineOpts...)
	if err != nil {
		return nil, fmt.Errorf("create engine: %w", err)
	}

	wired, err := h.engine.Activate()
	result.Wired = wired
	if err != nil {
		for _, e := range unjoin(err) {
			result.Skipped = append(result.Skipped, e.Error())
		}
	}

	for i, step := range scenario.Steps {
		if err := h.executeStep(step); err != nil {
			return nil, fmt.Errorf("steps[%d]: %w", i, err)
		}
	}
	h.loop.RunPending()
	result.Batches = h.log.Batches()

	actx := &AssertionContext{Doc: doc}
	for _, msg := range EvaluateAssertions(result, scenario.Assertions, actx) {
		result.AddError(msg)
	}

	h.logger.Info("scenario completed",
		"scenario", scenario.Name,
		"pass", result.Pass,
		"wired", result.Wired,
		"batches", len(result.Batches),
	)
	return result, nil
}

func loadPage(s *Scenario) (*dom.Document, error) {
	src := s.HTML
	if s.Page != "" {
		data, err := os.ReadFile(s.PagePath())
		if err != nil {
			return nil, fmt.Errorf("failed to read page: %w", err)
		}
		src = string(data)
	}
	doc, err := dom.ParseString(src)
	if err != nil {
		return nil, fmt.Errorf("failed to parse page: %w", err)
	}
	return doc, nil
}

func (h *Harness) executeStep(step Step) error {
	switch {
	case step.Trigger != nil:
		return h.executeTrigger(step.Trigger)
	case step.Touch != nil:
		return h.executeTouch(step.Touch)
	case step.Scroll != nil:
		return h.executeScroll(step.Scroll)
	default:
		d, err := time.ParseDuration(step.Advance)
		if err != nil {
			return err
		}
		ran := h.loop.Advance(d)
		h.logger.Debug("advanced", "by", d, "ran", ran)
		return nil
	}
}

func (h *Harness) target(selector string) (*dom.Element, error) {
	el := h.doc.First(selector)
	if el == nil {
		return nil, fmt.Errorf("no element matches %q", selector)
	}
	return el, nil
}

// executeTrigger dispatches one event and runs the flush it posted.
func (h *Harness) executeTrigger(s *TriggerStep) error {
	el, err := h.target(s.Target)
	if err != nil {
		return err
	}
	el.Trigger(s.Event, nil)
	h.loop.RunPending()
	h.logger.Debug("event triggered", "target", el.String(), "event", s.Event)
	return nil
}

// executeTouch performs one touch sequence.
func (h *Harness) executeTouch(s *TouchStep) error {
	el, err := h.target(s.Target)
	if err != nil {
		return err
	}

	last := dom.Point{X: s.From[0], Y: s.From[1]}
	el.Dispatch(&dom.Event{Type: "touchstart", Point: last})
	if s.Hold != "" {
		d, err := time.ParseDuration(s.Hold)
		if err != nil {
			return err
		}
		h.loop.Advance(d)
	}
	for _, m := range s.Moves {
		last = dom.Point{X: m[0], Y: m[1]}
		el.Dispatch(&dom.Event{Type: "touchmove", Point: last})
	}

	end := "touchend"
	if s.Cancel {
		end = "touchcancel"
	}
	el.Dispatch(&dom.Event{Type: end, Point: last})
	h.loop.RunPending()
	return nil
}

// executeScroll drives a scroll container through its offsets, one polling
// tick per offset.
func (h *Harness) executeScroll(s *ScrollStep) error {
	el, err := h.target(s.Target)
	if err != nil {
		return err
	}

	interval := DefaultScrollInterval
	if s.Interval != "" {
		if interval, err = time.ParseDuration(s.Interval); err != nil {
			return err
		}
	}
	if s.Viewport != 0 || s.Content != 0 {
		m := el.Scroll()
		m.Viewport, m.Content = s.Viewport, s.Content
		el.SetScroll(m)
	}

	start, stop := s.Start, s.Stop
	if start == "" {
		start = "touchstart"
	}
	if stop == "" {
		stop = "touchend"
	}

	el.Trigger(start, nil)
	for _, off := range s.Offsets {
		el.ScrollTo(off)
		h.loop.Advance(interval)
	}
	if !s.KeepRunning {
		el.Trigger(stop, nil)
	}
	h.loop.RunPending()
	return nil
}

// unjoin splits an errors.Join result into its parts.
func unjoin(err error) []error {
	if j, ok := err.(interface{ Unwrap() []error }); ok {
		return j.Unwrap()
	}
	return []error{err}
}
