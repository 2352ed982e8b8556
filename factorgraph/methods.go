// File: methods.go
// Role: topology passthrough, factor registration and lookup.
//
// Concurrency:
//   - Factor maps and revision are guarded by mu; the forest has its own lock.
package factorgraph

import (
	"fmt"

	"github.com/katalvlaran/treeprop/forest"
)

// Forest returns the underlying topology. Callers must mutate it only
// through AddVertex/AddEdge so the revision stays accurate.
func (g *Graph[V, U, B]) Forest() *forest.Forest[V] { return g.topology }

// Ops returns the factor algebra.
func (g *Graph[V, U, B]) Ops() Operations[V, U, B] { return g.ops }

// Revision returns a counter incremented by every mutation.
func (g *Graph[V, U, B]) Revision() uint64 {
	g.mu.RLock()
	defer g.mu.RUnlock()

	return g.revision
}

// AddVertex adds v to the topology (idempotent).
func (g *Graph[V, U, B]) AddVertex(v V) error {
	if g.topology.HasVertex(v) {
		return nil
	}
	if err := g.topology.AddVertex(v); err != nil {
		return err
	}
	g.bump()

	return nil
}

// AddEdge adds the undirected edge {a, b} to the topology.
func (g *Graph[V, U, B]) AddEdge(a, b V) error {
	if err := g.topology.AddEdge(a, b); err != nil {
		return fmt.Errorf("factorgraph: AddEdge(%v,%v): %w", a, b, err)
	}
	g.bump()

	return nil
}

func (g *Graph[V, U, B]) bump() {
	g.mu.Lock()
	g.revision++
	g.mu.Unlock()
}

// SetUnary installs f as the unary of v.
//
// Errors:
//   - ErrVertexNotFound: v is not in the topology.
//   - ErrVariableMismatch: f.Variable() != v.
//   - ErrDuplicateFactor: v already has a unary (use TimesEqual to combine).
func (g *Graph[V, U, B]) SetUnary(v V, f U) error {
	if !g.topology.HasVertex(v) {
		return fmt.Errorf("factorgraph: SetUnary(%v): %w", v, ErrVertexNotFound)
	}
	if f.Variable() != v {
		return fmt.Errorf("factorgraph: SetUnary(%v): factor is over %v: %w", v, f.Variable(), ErrVariableMismatch)
	}

	g.mu.Lock()
	defer g.mu.Unlock()
	if _, ok := g.unaries[v]; ok {
		return fmt.Errorf("factorgraph: SetUnary(%v): %w", v, ErrDuplicateFactor)
	}
	g.unaries[v] = f
	g.revision++

	return nil
}

// TimesEqual multiplies f into the unary of v, or installs f if v has none.
func (g *Graph[V, U, B]) TimesEqual(v V, f U) error {
	if !g.topology.HasVertex(v) {
		return fmt.Errorf("factorgraph: TimesEqual(%v): %w", v, ErrVertexNotFound)
	}
	if f.Variable() != v {
		return fmt.Errorf("factorgraph: TimesEqual(%v): factor is over %v: %w", v, f.Variable(), ErrVariableMismatch)
	}

	g.mu.Lock()
	defer g.mu.Unlock()
	if old, ok := g.unaries[v]; ok {
		prod, err := g.ops.PointwiseProduct([]U{old, f})
		if err != nil {
			return fmt.Errorf("factorgraph: TimesEqual(%v): %w", v, err)
		}
		f = prod
	}
	g.unaries[v] = f
	g.revision++

	return nil
}

// Unary returns the unary of v; ok is false when v has none.
//
// Errors:
//   - ErrVertexNotFound: v is not in the topology.
func (g *Graph[V, U, B]) Unary(v V) (f U, ok bool, err error) {
	if !g.topology.HasVertex(v) {
		return f, false, fmt.Errorf("factorgraph: Unary(%v): %w", v, ErrVertexNotFound)
	}

	g.mu.RLock()
	defer g.mu.RUnlock()
	f, ok = g.unaries[v]

	return f, ok, nil
}

// HasUnary reports whether v carries a unary factor.
func (g *Graph[V, U, B]) HasUnary(v V) bool {
	g.mu.RLock()
	defer g.mu.RUnlock()
	_, ok := g.unaries[v]

	return ok
}

// SetBinary installs f on the arc from → to, where from is the marginalized
// endpoint.
//
// Errors:
//   - ErrEdgeNotFound: {from, to} is not an edge.
//   - ErrVariableMismatch: f's endpoints are not (from, to).
//   - ErrDuplicateFactor: the arc already has a binary.
func (g *Graph[V, U, B]) SetBinary(from, to V, f B) error {
	arc := forest.Arc[V]{From: from, To: to}
	if !g.topology.HasEdge(from, to) {
		return fmt.Errorf("factorgraph: SetBinary(%v): %w", arc, ErrEdgeNotFound)
	}
	if f.Marginalized() != from || f.Other() != to {
		return fmt.Errorf("factorgraph: SetBinary(%v): factor is over %v→%v: %w",
			arc, f.Marginalized(), f.Other(), ErrVariableMismatch)
	}

	g.mu.Lock()
	defer g.mu.Unlock()
	if _, ok := g.binaries[arc]; ok {
		return fmt.Errorf("factorgraph: SetBinary(%v): %w", arc, ErrDuplicateFactor)
	}
	g.binaries[arc] = f
	g.revision++

	return nil
}

// Binary returns the binary stored on from → to.
//
// Errors:
//   - ErrEdgeNotFound: {from, to} is not an edge.
//   - ErrMissingFactor: the edge exists but this orientation is unset.
func (g *Graph[V, U, B]) Binary(from, to V) (B, error) {
	arc := forest.Arc[V]{From: from, To: to}
	var zero B
	if !g.topology.HasEdge(from, to) {
		return zero, fmt.Errorf("factorgraph: Binary(%v): %w", arc, ErrEdgeNotFound)
	}

	g.mu.RLock()
	defer g.mu.RUnlock()
	f, ok := g.binaries[arc]
	if !ok {
		return zero, fmt.Errorf("factorgraph: Binary(%v): %w", arc, ErrMissingFactor)
	}

	return f, nil
}

// Validate checks that every edge carries a binary in both orientations.
func (g *Graph[V, U, B]) Validate() error {
	g.mu.RLock()
	defer g.mu.RUnlock()
	for _, arc := range g.topology.Arcs() {
		if _, ok := g.binaries[arc]; !ok {
			return fmt.Errorf("factorgraph: Validate: arc %v: %w", arc, ErrMissingFactor)
		}
	}

	return nil
}
