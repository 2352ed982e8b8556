// SPDX-License-Identifier: MIT

package discrete

import (
	"fmt"
	"math"

	"github.com/katalvlaran/treeprop/matrix"
)

// Binary is the kernel of one arc, indexed by (other state, marginalized
// state) and shared by all sites. Entries are stored as given, next to their
// logs, which Marginalize works with.
type Binary[V comparable] struct {
	marginalized V
	other        V
	nOther       int
	nMarg        int
	values       []float64 // nOther × nMarg, row-major
	logValues    []float64
}

// NewBinary builds the kernel of the arc marginalized → other from a table
// indexed [other state][marginalized state].
func NewBinary[V comparable](marginalized, other V, kernel *matrix.Dense) (*Binary[V], error) {
	if err := matrix.ValidatePotential(kernel); err != nil {
		return nil, fmt.Errorf("discrete: NewBinary(%v→%v): %w: %w", marginalized, other, ErrInvalidTable, err)
	}
	values := make([]float64, len(kernel.RawData()))
	copy(values, kernel.RawData())
	logValues := make([]float64, len(values))
	for i, x := range values {
		logValues[i] = math.Log(x)
	}

	return &Binary[V]{
		marginalized: marginalized,
		other:        other,
		nOther:       kernel.Rows(),
		nMarg:        kernel.Cols(),
		values:       values,
		logValues:    logValues,
	}, nil
}

// NewBinaryPair builds both orientations of the edge {a, b} from one
// potential indexed [a state][b state]. The first result marginalizes a
// (arc a → b, kernel = potentialᵀ), the second marginalizes b
// (arc b → a, kernel = potential).
func NewBinaryPair[V comparable](a, b V, potential *matrix.Dense) (*Binary[V], *Binary[V], error) {
	if err := matrix.ValidateNotNil(potential); err != nil {
		return nil, nil, fmt.Errorf("discrete: NewBinaryPair(%v,%v): %w: %w", a, b, ErrInvalidTable, err)
	}
	ab, err := NewBinary(a, b, potential.Transpose())
	if err != nil {
		return nil, nil, err
	}
	ba, err := NewBinary(b, a, potential)
	if err != nil {
		return nil, nil, err
	}

	return ab, ba, nil
}

// Marginalized returns the variable summed out by this kernel.
func (b *Binary[V]) Marginalized() V { return b.marginalized }

// Other returns the variable the marginalized result lives on.
func (b *Binary[V]) Other() V { return b.other }

// NumOtherStates returns the domain size of Other().
func (b *Binary[V]) NumOtherStates() int { return b.nOther }

// NumMarginalizedStates returns the domain size of Marginalized().
func (b *Binary[V]) NumMarginalizedStates() int { return b.nMarg }

// At returns the kernel entry for (other state, marginalized state).
func (b *Binary[V]) At(other, marg int) float64 { return b.values[other*b.nMarg+marg] }
