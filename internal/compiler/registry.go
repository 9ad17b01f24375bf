package compiler

import (
	"errors"
	"fmt"
	"sort"

	"github.com/megant/aktion/internal/ir"
)

// PredicateRegistry maps extra-condition names to predicates. The host
// populates it before activation.
type PredicateRegistry struct {
	predicates map[string]ir.Predicate
}

// NewPredicateRegistry returns an empty registry.
func NewPredicateRegistry() *PredicateRegistry {
	return &PredicateRegistry{predicates: make(map[string]ir.Predicate)}
}

// Register binds name to p, replacing any previous binding.
func (r *PredicateRegistry) Register(name string, p ir.Predicate) error {
	if name == "" {
		return errors.New("predicate name is required")
	}
	if p == nil {
		return fmt.Errorf("predicate %q is nil", name)
	}
	r.predicates[name] = p
	return nil
}

// MustRegister is Register for static setup; it panics on invalid input.
func (r *PredicateRegistry) MustRegister(name string, p ir.Predicate) {
	if err := r.Register(name, p); err != nil {
		panic(err)
	}
}

// Lookup returns the predicate bound to name.
func (r *PredicateRegistry) Lookup(name string) (ir.Predicate, bool) {
	p, ok := r.predicates[name]
	return p, ok
}

// Names returns the registered names, sorted.
func (r *PredicateRegistry) Names() []string {
	names := make([]string, 0, len(r.predicates))
	for name := range r.predicates {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
