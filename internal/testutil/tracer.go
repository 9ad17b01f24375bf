package testutil

import (
	"context"
	"sync"

	"go.opentelemetry.io/otel/trace"
	"go.opentelemetry.io/otel/trace/noop"
)

// RecordedSpan is one span started on a SpanRecorder.
type RecordedSpan struct {
	Name       string
	Attributes map[string]string
}

// SpanRecorder is a trace.Tracer that remembers the spans started on it and
// otherwise behaves like the no-op tracer.
//
// Thread-safety: safe for concurrent use.
type SpanRecorder struct {
	noop.Tracer

	mu    sync.Mutex
	spans []RecordedSpan
}

var _ trace.Tracer = (*SpanRecorder)(nil)

// NewSpanRecorder creates an empty recorder.
func NewSpanRecorder() *SpanRecorder {
	return &SpanRecorder{}
}

// Start implements trace.Tracer.
func (r *SpanRecorder) Start(ctx context.Context, name string, opts ...trace.SpanStartOption) (context.Context, trace.Span) {
	cfg := trace.NewSpanStartConfig(opts...)
	attrs := make(map[string]string, len(cfg.Attributes()))
	for _, kv := range cfg.Attributes() {
		attrs[string(kv.Key)] = kv.Value.Emit()
	}

	r.mu.Lock()
	r.spans = append(r.spans, RecordedSpan{Name: name, Attributes: attrs})
	r.mu.Unlock()

	return r.Tracer.Start(ctx, name, opts...)
}

// Spans returns a copy of the recorded spans in start order.
func (r *SpanRecorder) Spans() []RecordedSpan {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]RecordedSpan(nil), r.spans...)
}

// Named returns the recorded spans with the given name.
func (r *SpanRecorder) Named(name string) []RecordedSpan {
	var out []RecordedSpan
	for _, s := range r.Spans() {
		if s.Name == name {
			out = append(out, s)
		}
	}
	return out
}
