// Package ir holds the normalized representation of declared actions.
//
// A Descriptor is produced once per declaring element by the compiler and is
// never mutated afterwards; the engine, the scroll tracker and the gesture
// detector only read it. The package also defines the synthetic event tokens
// and the canonical JSON encoding used for flush traces and golden files.
package ir
