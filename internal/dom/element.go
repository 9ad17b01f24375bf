package dom

import (
	"strings"

	"golang.org/x/net/html"
)

// Kind distinguishes real elements from the window/document pseudo-elements.
type Kind int

const (
	// KindElement is an element parsed from markup.
	KindElement Kind = iota
	// KindDocument is the document pseudo-element.
	KindDocument
	// KindWindow is the window pseudo-element.
	KindWindow
)

// BooleanProperties are the attributes whose live state is a property rather
// than the serialized attribute value.
var BooleanProperties = []string{"checked", "selected", "disabled"}

// IsBooleanProperty reports whether name is one of BooleanProperties.
func IsBooleanProperty(name string) bool {
	for _, p := range BooleanProperties {
		if p == name {
			return true
		}
	}
	return false
}

// ScrollMetrics describes the vertical scroll state of a container.
type ScrollMetrics struct {
	// Top is the scroll offset in pixels.
	Top int
	// Viewport is the visible height of the container.
	Viewport int
	// Content is the full scrollable height.
	Content int
}

// Measurable reports whether the metrics describe a container with a height.
func (m ScrollMetrics) Measurable() bool {
	return m.Content > 0 && m.Viewport > 0
}

// Element is a node of the document, or one of the pseudo-elements.
type Element struct {
	doc       *Document
	node      *html.Node
	kind      Kind
	props     map[string]bool
	scroll    ScrollMetrics
	listeners map[string][]Handler
}

func newElement(doc *Document, node *html.Node, kind Kind) *Element {
	return &Element{
		doc:       doc,
		node:      node,
		kind:      kind,
		props:     make(map[string]bool),
		listeners: make(map[string][]Handler),
	}
}

// Kind returns the element kind.
func (e *Element) Kind() Kind {
	return e.kind
}

// Document returns the owning document.
func (e *Element) Document() *Document {
	return e.doc
}

// Node returns the underlying html node (nil for pseudo-elements).
func (e *Element) Node() *html.Node {
	return e.node
}

// Tag returns the lower-case tag name, or "window"/"#document".
func (e *Element) Tag() string {
	switch e.kind {
	case KindWindow:
		return "window"
	case KindDocument:
		return "#document"
	}
	return e.node.Data
}

// ID returns the id attribute.
func (e *Element) ID() string {
	id, _ := e.Attr("id")
	return id
}

// String renders a short CSS-like label such as "div#menu.open".
func (e *Element) String() string {
	if e.kind != KindElement {
		return e.Tag()
	}
	var b strings.Builder
	b.WriteString(e.Tag())
	if id := e.ID(); id != "" {
		b.WriteString("#")
		b.WriteString(id)
	}
	if class, ok := e.Attr("class"); ok {
		for _, c := range strings.Fields(class) {
			b.WriteString(".")
			b.WriteString(c)
		}
	}
	return b.String()
}

// Attr returns the attribute value and whether it is present.
func (e *Element) Attr(name string) (string, bool) {
	if e.node == nil {
		return "", false
	}
	for _, a := range e.node.Attr {
		if a.Namespace == "" && a.Key == name {
			return a.Val, true
		}
	}
	return "", false
}

// HasAttr reports whether the attribute is present.
func (e *Element) HasAttr(name string) bool {
	_, ok := e.Attr(name)
	return ok
}

// SetAttr sets an attribute, adding it if absent. No-op on pseudo-elements.
func (e *Element) SetAttr(name, value string) {
	if e.node == nil {
		return
	}
	for i, a := range e.node.Attr {
		if a.Namespace == "" && a.Key == name {
			e.node.Attr[i].Val = value
			return
		}
	}
	e.node.Attr = append(e.node.Attr, html.Attribute{Key: name, Val: value})
}

// RemoveAttr deletes an attribute if present.
func (e *Element) RemoveAttr(name string) {
	if e.node == nil {
		return
	}
	for i, a := range e.node.Attr {
		if a.Namespace == "" && a.Key == name {
			e.node.Attr = append(e.node.Attr[:i], e.node.Attr[i+1:]...)
			return
		}
	}
}

// Property returns a boolean property. Until set explicitly it reflects the
// presence of the attribute of the same name.
func (e *Element) Property(name string) bool {
	if v, ok := e.props[name]; ok {
		return v
	}
	return e.HasAttr(name)
}

// SetProperty sets a boolean property without touching the attribute.
func (e *Element) SetProperty(name string, value bool) {
	e.props[name] = value
}

// Scroll returns the element's scroll metrics.
func (e *Element) Scroll() ScrollMetrics {
	return e.scroll
}

// SetScroll replaces the element's scroll metrics.
func (e *Element) SetScroll(m ScrollMetrics) {
	e.scroll = m
}

// ScrollTo moves the scroll offset, keeping viewport and content heights.
func (e *Element) ScrollTo(top int) {
	e.scroll.Top = top
}

// Parent returns the parent element: element → parent element → document →
// window → nil.
func (e *Element) Parent() *Element {
	switch e.kind {
	case KindWindow:
		return nil
	case KindDocument:
		return e.doc.window
	}
	p := e.node.Parent
	for p != nil && p.Type != html.ElementNode {
		if p.Type == html.DocumentNode {
			return e.doc.document
		}
		p = p.Parent
	}
	if p == nil {
		return e.doc.document
	}
	return e.doc.wrap(p)
}

// Matches reports whether the element matches selector. Pseudo-elements only
// match their own name; invalid selectors match nothing.
func (e *Element) Matches(selector string) bool {
	selector = strings.TrimSpace(selector)
	switch e.kind {
	case KindWindow:
		return selector == SelectorWindow
	case KindDocument:
		return selector == SelectorDocument
	}
	group, ok := e.doc.compile(selector)
	if !ok {
		return false
	}
	return group.Match(e.node)
}
