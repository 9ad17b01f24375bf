package dom

import (
	"bytes"
	"fmt"
	"io"
	"strings"

	"github.com/andybalholm/cascadia"
	"golang.org/x/net/html"
)

// Selector names for the pseudo-elements.
const (
	SelectorWindow   = "window"
	SelectorDocument = "document"
)

// Document is a parsed page plus its runtime state.
type Document struct {
	root      *html.Node
	window    *Element
	document  *Element
	elements  map[*html.Node]*Element
	selectors map[string]cascadia.SelectorGroup
	observers []Handler
}

// Parse reads an HTML page.
func Parse(r io.Reader) (*Document, error) {
	root, err := html.Parse(r)
	if err != nil {
		return nil, fmt.Errorf("parse html: %w", err)
	}
	d := &Document{
		root:      root,
		elements:  make(map[*html.Node]*Element),
		selectors: make(map[string]cascadia.SelectorGroup),
	}
	d.window = newElement(d, nil, KindWindow)
	d.document = newElement(d, nil, KindDocument)
	return d, nil
}

// ParseString parses an HTML page held in a string.
func ParseString(s string) (*Document, error) {
	return Parse(strings.NewReader(s))
}

// Window returns the window pseudo-element.
func (d *Document) Window() *Element {
	return d.window
}

// DocumentElement returns the document pseudo-element.
func (d *Document) DocumentElement() *Element {
	return d.document
}

// Body returns the <body> element. html.Parse always synthesizes one.
func (d *Document) Body() *Element {
	return d.First("body")
}

// Query returns every element matching selector in document order.
// "window" and "document" resolve to the pseudo-elements; an empty or invalid
// selector resolves to nothing.
func (d *Document) Query(selector string) []*Element {
	selector = strings.TrimSpace(selector)
	switch selector {
	case "":
		return nil
	case SelectorWindow:
		return []*Element{d.window}
	case SelectorDocument:
		return []*Element{d.document}
	}
	group, ok := d.compile(selector)
	if !ok {
		return nil
	}
	nodes := cascadia.QueryAll(d.root, group)
	out := make([]*Element, 0, len(nodes))
	for _, n := range nodes {
		out = append(out, d.wrap(n))
	}
	return out
}

// First returns the first element matching selector, or nil.
func (d *Document) First(selector string) *Element {
	if els := d.Query(selector); len(els) > 0 {
		return els[0]
	}
	return nil
}

// Observe registers h to see every dispatched event before any listener.
func (d *Document) Observe(h Handler) {
	d.observers = append(d.observers, h)
}

// HTML renders the current markup, attribute mutations included.
func (d *Document) HTML() (string, error) {
	var buf bytes.Buffer
	if err := html.Render(&buf, d.root); err != nil {
		return "", fmt.Errorf("render html: %w", err)
	}
	return buf.String(), nil
}

func (d *Document) notify(ev *Event) {
	for _, h := range d.observers {
		h(ev)
	}
}

func (d *Document) wrap(n *html.Node) *Element {
	if el, ok := d.elements[n]; ok {
		return el
	}
	el := newElement(d, n, KindElement)
	d.elements[n] = el
	return el
}

// compile parses and caches a selector group. Invalid selectors are cached as
// nil so they are only parsed once.
func (d *Document) compile(selector string) (cascadia.SelectorGroup, bool) {
	if group, ok := d.selectors[selector]; ok {
		return group, group != nil
	}
	group, err := cascadia.ParseGroup(selector)
	if err != nil {
		d.selectors[selector] = nil
		return nil, false
	}
	d.selectors[selector] = group
	return group, true
}
