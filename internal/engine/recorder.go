package engine

import (
	"sync"
	"time"
)

// Batch describes one flush.
type Batch struct {
	// ID comes from the engine's BatchIDGenerator.
	ID string
	// Seq is the logical clock stamp; batches of one engine have strictly
	// increasing Seq.
	Seq int64
	// At is the loop time of the flush, relative to loop.Epoch.
	At time.Duration
	// Submitted lists action names in submission order.
	Submitted []string
	// Order lists action names in execution order.
	Order []string
	// Callbacks counts the deferred trigger-event callbacks that ran.
	Callbacks int
}

// Summary returns a canonical-JSON-friendly view of the batch.
func (b Batch) Summary() map[string]any {
	return map[string]any{
		"id":        b.ID,
		"seq":       b.Seq,
		"at_ms":     b.At.Milliseconds(),
		"submitted": append([]string{}, b.Submitted...),
		"order":     append([]string{}, b.Order...),
		"callbacks": b.Callbacks,
	}
}

// Recorder observes completed flushes.
type Recorder interface {
	RecordBatch(b Batch)
}

// BatchLog is a Recorder that keeps every batch in memory.
type BatchLog struct {
	mu      sync.Mutex
	batches []Batch
}

// RecordBatch implements Recorder.
func (l *BatchLog) RecordBatch(b Batch) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.batches = append(l.batches, b)
}

// Batches returns a copy of the recorded batches.
func (l *BatchLog) Batches() []Batch {
	l.mu.Lock()
	defer l.mu.Unlock()
	return append([]Batch(nil), l.batches...)
}

// Executed returns the execution order of every batch, concatenated.
func (l *BatchLog) Executed() []string {
	l.mu.Lock()
	defer l.mu.Unlock()
	var names []string
	for _, b := range l.batches {
		names = append(names, b.Order...)
	}
	return names
}

// Reset forgets recorded batches.
func (l *BatchLog) Reset() {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.batches = nil
}

type recorders []Recorder

func (rs recorders) RecordBatch(b Batch) {
	for _, r := range rs {
		r.RecordBatch(b)
	}
}
