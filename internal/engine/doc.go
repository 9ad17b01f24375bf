// Package engine implements the aktion runtime: the action scheduler, the
// action executor, and the Engine that wires declaring elements to them.
//
// ARCHITECTURE:
//
// Single-Threaded Event Loop:
// Every listener, timer and flush runs on one loop.Loop. Nothing in this
// package spawns goroutines. This ensures:
// - Deterministic activation order
// - Reproducible flush traces under a virtual clock
// - Simple reasoning about which mutations a callback can observe
//
// Activation Flow:
// 1. A DOM listener, the scroll tracker or a gesture detector calls Submit
// 2. The first submission of a tick posts one flush to the loop
// 3. Later submissions of the same tick join the pending batch
// 4. The flush resolves trigger-before/after constraints in a single pass
// 5. Mutations run in the resolved order
// 6. The batch is closed, then trigger-event callbacks run
//
// Submissions made by those callbacks start a new batch on the next tick.
//
// CRITICAL PATTERNS:
//
// Logical Clock:
// Every flush is stamped with a monotonic seq from Clock.Next().
// Wall-clock time is never used for ordering.
//
// Single-Pass Ordering:
// ResolveOrder walks the submitted names once. Chains of constraints are
// not iterated to a fixed point; that would change the order existing pages
// observe.
package engine
