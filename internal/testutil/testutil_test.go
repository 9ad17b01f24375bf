package testutil

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/megant/aktion/internal/dom"
)

func TestPage_ElAndAttr(t *testing.T) {
	p := NewPage(t, `<button id="b" class="x y">go</button>`)

	assert.Equal(t, "button", p.El("#b").Tag())
	assert.Equal(t, "x y", p.Class("#b"))
	assert.Same(t, p.Doc.Window(), p.El(dom.SelectorWindow))
	assert.Same(t, p.Doc.DocumentElement(), p.El(dom.SelectorDocument))
}

func TestPage_ClickRunsPostedTasks(t *testing.T) {
	p := NewPage(t, `<button id="b"></button>`)

	var ran int
	p.El("#b").On("click", func(*dom.Event) {
		p.Loop.Post(func() { ran++ })
	})

	p.Click("#b")
	assert.Equal(t, 1, ran)
	assert.Equal(t, 0, p.Tick(), "nothing left to run")
}

func TestSpanRecorder_RecordsNamesAndAttributes(t *testing.T) {
	r := NewSpanRecorder()

	ctx, span := r.Start(context.Background(), "outer",
		trace.WithAttributes(attribute.String("k", "v"), attribute.Int("n", 3)))
	_, inner := r.Start(ctx, "inner")
	inner.End()
	span.End()

	spans := r.Spans()
	require.Len(t, spans, 2)
	assert.Equal(t, "outer", spans[0].Name)
	assert.Equal(t, map[string]string{"k": "v", "n": "3"}, spans[0].Attributes)
	assert.Len(t, r.Named("inner"), 1)
	assert.Empty(t, r.Named("missing"))
}
