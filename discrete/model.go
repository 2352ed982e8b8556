// SPDX-License-Identifier: MIT

package discrete

import (
	"fmt"

	"github.com/katalvlaran/treeprop/factorgraph"
	"github.com/katalvlaran/treeprop/matrix"
	"github.com/katalvlaran/treeprop/sumproduct"
)

// Graph is a factor graph over the discrete algebra.
type Graph[V comparable] = factorgraph.Graph[V, *Unary[V], *Binary[V]]

// Engine is a sum-product engine over the discrete algebra.
type Engine[V comparable] = sumproduct.SumProduct[V, *Unary[V], *Binary[V]]

// Model assembles a discrete factor graph: variables with fixed domain sizes,
// unary tables over sites, and binary potentials per edge.
type Model[V comparable] struct {
	graph  *Graph[V]
	ops    *Operations[V]
	states map[V]int
}

// NewModel returns an empty model. The site count is fixed by the first
// unary registered (or by FixSites).
func NewModel[V comparable]() *Model[V] {
	ops := &Operations[V]{}
	g, _ := factorgraph.New[V, *Unary[V], *Binary[V]](ops) // ops is non-nil

	return &Model[V]{graph: g, ops: ops, states: make(map[V]int)}
}

// Graph returns the underlying factor graph.
func (m *Model[V]) Graph() *Graph[V] { return m.graph }

// Ops returns the algebra shared by all factors of the model.
func (m *Model[V]) Ops() *Operations[V] { return m.ops }

// Sites returns the fixed site count (0 until fixed).
func (m *Model[V]) Sites() int { return m.ops.Sites() }

// FixSites pins the site count ahead of any unary.
func (m *Model[V]) FixSites(n int) error { return m.ops.fixSites(n) }

// States returns the domain size of v.
func (m *Model[V]) States(v V) (int, error) {
	n, ok := m.states[v]
	if !ok {
		return 0, fmt.Errorf("discrete: %v: %w", v, ErrUnknownVariable)
	}

	return n, nil
}

// Variables returns the model's variables in insertion order.
func (m *Model[V]) Variables() []V { return m.graph.Forest().Vertices() }

// AddVariable declares v with the given domain size. Re-declaring with the
// same size is a no-op.
func (m *Model[V]) AddVariable(v V, states int) error {
	if states <= 0 {
		return fmt.Errorf("discrete: AddVariable(%v, %d): %w", v, states, ErrInvalidStates)
	}
	if old, ok := m.states[v]; ok {
		if old != states {
			return fmt.Errorf("discrete: AddVariable(%v): %d vs %d states: %w", v, states, old, ErrStateMismatch)
		}
		return nil
	}
	if err := m.graph.AddVertex(v); err != nil {
		return err
	}
	m.states[v] = states

	return nil
}

// SetUnary installs the sites × states table as v's only unary.
func (m *Model[V]) SetUnary(v V, table [][]float64) error {
	u, err := m.unary(v, table)
	if err != nil {
		return err
	}

	return m.graph.SetUnary(v, u)
}

// Observe multiplies the table into v's unary (times-equal), e.g. a
// likelihood on top of a prior.
func (m *Model[V]) Observe(v V, table [][]float64) error {
	u, err := m.unary(v, table)
	if err != nil {
		return err
	}

	return m.graph.TimesEqual(v, u)
}

// ObserveStates clamps v to one observed state per site (times-equal with a
// dirac). A state of -1 marks a site where v is unobserved.
func (m *Model[V]) ObserveStates(v V, states []int) error {
	n, err := m.States(v)
	if err != nil {
		return err
	}
	// Unobserved sites get a flat row instead of a zero row.
	table := make([][]float64, len(states))
	for s, p := range states {
		table[s] = make([]float64, n)
		if p == -1 {
			for k := range table[s] {
				table[s][k] = 1
			}
			continue
		}
		if p < 0 || p >= n {
			return fmt.Errorf("discrete: ObserveStates(%v): site %d state %d: %w", v, s, p, ErrInvalidStates)
		}
		table[s][p] = 1
	}

	return m.Observe(v, table)
}

func (m *Model[V]) unary(v V, table [][]float64) (*Unary[V], error) {
	n, err := m.States(v)
	if err != nil {
		return nil, err
	}
	u, err := NewUnary(v, table)
	if err != nil {
		return nil, err
	}
	if u.states != n {
		return nil, fmt.Errorf("discrete: unary over %v: %d vs %d states: %w", v, u.states, n, ErrStateMismatch)
	}
	if err = m.ops.fixSites(u.sites); err != nil {
		return nil, fmt.Errorf("discrete: unary over %v: %w", v, err)
	}

	return u, nil
}

// AddPotential connects a and b with a potential indexed [a state][b state]
// and registers both orientations.
func (m *Model[V]) AddPotential(a, b V, potential *matrix.Dense) error {
	na, err := m.States(a)
	if err != nil {
		return err
	}
	nb, err := m.States(b)
	if err != nil {
		return err
	}
	if err = matrix.ValidateNotNil(potential); err != nil {
		return fmt.Errorf("discrete: AddPotential(%v,%v): %w: %w", a, b, ErrInvalidTable, err)
	}
	if err = matrix.ValidateShape(potential, na, nb); err != nil {
		return fmt.Errorf("discrete: AddPotential(%v,%v): %w: %w", a, b, ErrStateMismatch, err)
	}
	ab, ba, err := NewBinaryPair(a, b, potential)
	if err != nil {
		return err
	}
	if err = m.graph.AddEdge(a, b); err != nil {
		return err
	}
	if err = m.graph.SetBinary(a, b, ab); err != nil {
		return err
	}

	return m.graph.SetBinary(b, a, ba)
}

// Engine builds a sum-product engine over the current snapshot of the model.
func (m *Model[V]) Engine(opts ...sumproduct.Option) (*Engine[V], error) {
	if m.ops.Sites() == 0 {
		if err := m.ops.fixSites(1); err != nil {
			return nil, err
		}
	}

	return sumproduct.New(m.graph, opts...)
}

// Marginals returns the normalized marginal of every variable, one
// sites × states table each.
func Marginals[V comparable](e *Engine[V]) (map[V][][]float64, error) {
	out := make(map[V][][]float64)
	for _, v := range e.Graph().Forest().Vertices() {
		u, err := e.ComputeMarginal(v)
		if err != nil {
			return nil, err
		}
		out[v] = u.Normalized()
	}

	return out, nil
}
