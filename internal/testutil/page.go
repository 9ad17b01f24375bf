package testutil

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/megant/aktion/internal/dom"
	"github.com/megant/aktion/internal/loop"
)

// Page is a parsed document together with the loop it runs on.
//
// The loop uses a virtual clock starting at loop.Epoch, so the same test
// produces the same flush times on every run.
type Page struct {
	t    testing.TB
	Doc  *dom.Document
	Loop *loop.Loop
}

// NewPage parses src and creates a fresh loop. Fails the test on parse errors.
func NewPage(t testing.TB, src string) *Page {
	t.Helper()
	doc, err := dom.ParseString(src)
	require.NoError(t, err, "parse page")
	return &Page{
		t:    t,
		Doc:  doc,
		Loop: loop.New(loop.NewVirtualClock()),
	}
}

// El returns the first element matching selector. Window and document
// selectors return the pseudo-elements. Fails the test when nothing matches.
func (p *Page) El(selector string) *dom.Element {
	p.t.Helper()
	switch selector {
	case dom.SelectorWindow:
		return p.Doc.Window()
	case dom.SelectorDocument:
		return p.Doc.DocumentElement()
	}
	el := p.Doc.First(selector)
	require.NotNil(p.t, el, "no element matches %q", selector)
	return el
}

// Trigger dispatches event on the first element matching selector.
func (p *Page) Trigger(selector, event string) {
	p.t.Helper()
	p.El(selector).Trigger(event, nil)
}

// Click triggers a click and runs the tasks it posted.
func (p *Page) Click(selector string) {
	p.t.Helper()
	p.Trigger(selector, "click")
	p.Tick()
}

// Tick runs every task due now and returns how many ran.
func (p *Page) Tick() int {
	return p.Loop.RunPending()
}

// Attr returns an attribute of the first element matching selector.
func (p *Page) Attr(selector, name string) string {
	p.t.Helper()
	v, _ := p.El(selector).Attr(name)
	return v
}

// Class is Attr(selector, "class").
func (p *Page) Class(selector string) string {
	p.t.Helper()
	return p.Attr(selector, "class")
}
