// Package dom provides a headless document model for declarative actions.
//
// Pages are parsed with golang.org/x/net/html and queried with cascadia
// selectors. On top of the parsed tree the package keeps the runtime state a
// browser would hold outside the markup: event listeners, boolean properties
// (checked, selected, disabled) and scroll metrics.
//
// The package exposes exactly the capabilities the action runtime consumes:
//
//   - element lookup by selector (Document.Query)
//   - event subscription (Element.On)
//   - event dispatch (Element.Trigger, Element.Dispatch)
//   - event delegation (Element.Delegate)
//
// Two pseudo-elements stand in for the browser globals: Document.Window and
// Document.DocumentElement, addressable through the selectors "window" and
// "document". Events bubble from the target through its ancestors to the
// document and finally the window.
//
// Dispatch is synchronous and the model is not safe for concurrent use; it is
// owned by the single goroutine running the event loop.
package dom
