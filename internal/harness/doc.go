// Package harness runs interaction scenarios against aktion pages.
//
// A scenario loads a page, wires its declared actions, drives it through
// DOM events, touch sequences and scroll polling on a virtual clock, and
// validates the final page and flush trace.
//
// # Scenario Format
//
// Scenarios are defined in YAML files with the following structure:
//
//	name: menu_toggle
//	description: "The menu button toggles the menu"
//	page: pages/menu.html          # or html: inline markup
//	config:
//	  prefix: aktion
//	  ios: false
//	predicates:
//	  logged_in: true
//	batch_ids: [open, close]
//	steps:
//	  - trigger: { target: "#menu-button", event: click }
//	  - touch: { target: "#card", from: [0, 0], moves: [[30, 0]] }
//	  - scroll: { target: "#feed", viewport: 100, content: 1000, offsets: [0, 10, 20] }
//	  - advance: 250ms
//	assertions:
//	  - type: attribute
//	    target: "#menu"
//	    name: class
//	    contains: open
//	  - type: order
//	    actions: [open]
//
// # Assertion Types
//
// The following assertion types are supported:
//
//   - attribute: Checks an attribute value (equals), token (contains) or absence
//   - property: Checks a boolean property such as checked
//   - order: Checks the execution order of all batches, concatenated
//   - batch_count: Checks the number of flushes
//   - event_count: Checks how often an event was dispatched
//
// # Deterministic Testing
//
// All scenarios execute on a virtual clock starting at loop.Epoch, with
// batch IDs from engine.FixedGenerator. The same scenario always produces
// byte-identical canonical traces, which RunWithGolden compares against
// testdata/golden/<name>.golden.
package harness
