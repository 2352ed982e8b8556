// SPDX-License-Identifier: MIT

package discrete

import (
	"fmt"
	"math"
)

// Operations is the scaled discrete algebra. It satisfies
// factorgraph.Operations[V, *Unary[V], *Binary[V]].
//
// The site count is needed for degree-0 marginalization, where no unary
// carries it; it is fixed either at construction or by the first unary a
// Model registers.
type Operations[V comparable] struct {
	sites int
}

// NewOperations returns an algebra for the given site count; sites == 0
// leaves it unset until fixed by a Model.
func NewOperations[V comparable](sites int) (*Operations[V], error) {
	if sites < 0 {
		return nil, ErrInvalidSites
	}

	return &Operations[V]{sites: sites}, nil
}

// Sites returns the fixed site count, or 0 if not yet fixed.
func (o *Operations[V]) Sites() int { return o.sites }

// fixSites sets the site count once; later calls must agree.
func (o *Operations[V]) fixSites(n int) error {
	if n <= 0 {
		return ErrInvalidSites
	}
	if o.sites == 0 {
		o.sites = n
		return nil
	}
	if o.sites != n {
		return fmt.Errorf("discrete: got %d sites, model has %d: %w", n, o.sites, ErrSiteMismatch)
	}

	return nil
}

// PointwiseProduct multiplies unaries over the same variable. All factors
// are combined in one log-space pass and rescaled once, so a zero in any
// factor removes a state before the others' magnitudes are placed.
func (o *Operations[V]) PointwiseProduct(factors []*Unary[V]) (*Unary[V], error) {
	if len(factors) == 0 {
		return nil, ErrEmptyProduct
	}
	first := factors[0]
	for _, f := range factors[1:] {
		if err := compatible(first, f); err != nil {
			return nil, err
		}
	}
	if len(factors) == 1 {
		return first, nil
	}

	return product(factors)
}

// compatible checks that a and b can be multiplied state-wise.
func compatible[V comparable](a, b *Unary[V]) error {
	if a.variable != b.variable {
		return fmt.Errorf("discrete: %v vs %v: %w", a.variable, b.variable, ErrVariableMismatch)
	}
	if a.sites != b.sites {
		return fmt.Errorf("discrete: variable %v: %d vs %d sites: %w", a.variable, a.sites, b.sites, ErrSiteMismatch)
	}
	if a.states != b.states {
		return fmt.Errorf("discrete: variable %v: %d vs %d states: %w", a.variable, a.states, b.states, ErrStateMismatch)
	}

	return nil
}

// product returns ⊙ factors, rescaled. Products are formed in log space,
// since rows holding a wide dynamic range sit above the band and their raw
// product could overflow.
func product[V comparable](factors []*Unary[V]) (*Unary[V], error) {
	first := factors[0]
	values := make([]float64, len(first.values))
	scales := make([]int, first.sites)
	logRow := make([]float64, first.states)
	for s := range scales {
		base := s * first.states
		clear(logRow)
		for _, f := range factors {
			for k := range logRow {
				logRow[k] += math.Log(f.values[base+k])
			}
			scales[s] += f.scales[s]
		}
		scales[s] += fromLog(logRow, values[base:base+first.states])
	}

	return newScaled(first.variable, first.sites, first.states, values, scales)
}

// Marginalize sums b.Marginalized() out of b × Π unaries.
//
// Degrees 0, 1 and 2 run dedicated kernels; higher degrees sum the logs of
// all unaries per state. The path taken affects only speed.
func (o *Operations[V]) Marginalize(b *Binary[V], unaries []*Unary[V]) (*Unary[V], error) {
	if o.sites == 0 {
		return nil, ErrSitesUnset
	}
	for _, u := range unaries {
		if u.variable != b.marginalized {
			return nil, fmt.Errorf("discrete: marginalize %v→%v: unary over %v: %w",
				b.marginalized, b.other, u.variable, ErrVariableMismatch)
		}
		if u.sites != o.sites {
			return nil, fmt.Errorf("discrete: marginalize %v→%v: %d vs %d sites: %w",
				b.marginalized, b.other, u.sites, o.sites, ErrSiteMismatch)
		}
		if u.states != b.nMarg {
			return nil, fmt.Errorf("discrete: marginalize %v→%v: %d vs %d states: %w",
				b.marginalized, b.other, u.states, b.nMarg, ErrStateMismatch)
		}
	}

	switch len(unaries) {
	case 0:
		return o.marginalize0(b)
	case 1:
		return o.marginalize1(b, unaries[0])
	case 2:
		return o.marginalize2(b, unaries[0], unaries[1])
	default:
		return o.marginalizeN(b, unaries)
	}
}

// marginalize0: every site receives the row sums of the kernel.
func (o *Operations[V]) marginalize0(b *Binary[V]) (*Unary[V], error) {
	return o.contract(b, func(_ int, p []float64) int {
		clear(p)
		return 0
	})
}

func (o *Operations[V]) marginalize1(b *Binary[V], u *Unary[V]) (*Unary[V], error) {
	return o.contract(b, func(s int, p []float64) int {
		in := u.values[s*b.nMarg : (s+1)*b.nMarg]
		for m, x := range in {
			p[m] = math.Log(x)
		}
		return u.scales[s]
	})
}

func (o *Operations[V]) marginalize2(b *Binary[V], u1, u2 *Unary[V]) (*Unary[V], error) {
	return o.contract(b, func(s int, p []float64) int {
		in1 := u1.values[s*b.nMarg : (s+1)*b.nMarg]
		in2 := u2.values[s*b.nMarg : (s+1)*b.nMarg]
		for m := range p {
			p[m] = math.Log(in1[m]) + math.Log(in2[m])
		}
		return u1.scales[s] + u2.scales[s]
	})
}

// marginalizeN folds every unary into the log weights directly; reducing
// them to one stored unary first could drop a state that only a later
// factor keeps alive.
func (o *Operations[V]) marginalizeN(b *Binary[V], unaries []*Unary[V]) (*Unary[V], error) {
	return o.contract(b, func(s int, p []float64) int {
		clear(p)
		scale := 0
		for _, u := range unaries {
			in := u.values[s*b.nMarg : (s+1)*b.nMarg]
			for m, x := range in {
				p[m] += math.Log(x)
			}
			scale += u.scales[s]
		}
		return scale
	})
}

// contract computes, per site and other state, log Σ_m B[o,m] · exp(p[m])
// where fill writes the site's log weights over marginalized states into p
// and returns their summed scale. Sums run through logSumExp so kernel
// entries of 1e±300 against unaries of any magnitude neither overflow nor
// drop the small terms.
func (o *Operations[V]) contract(b *Binary[V], fill func(site int, p []float64) int) (*Unary[V], error) {
	values := make([]float64, o.sites*b.nOther)
	scales := make([]int, o.sites)
	p := make([]float64, b.nMarg)
	terms := make([]float64, b.nMarg)
	logOut := make([]float64, b.nOther)
	for s := 0; s < o.sites; s++ {
		scale := fill(s, p)
		for oth := range logOut {
			row := b.logValues[oth*b.nMarg : (oth+1)*b.nMarg]
			for m, lk := range row {
				terms[m] = lk + p[m]
			}
			logOut[oth] = logSumExp(terms)
		}
		scales[s] = scale + fromLog(logOut, values[s*b.nOther:(s+1)*b.nOther])
	}

	return newScaled(b.other, o.sites, b.nOther, values, scales)
}
