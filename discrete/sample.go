// SPDX-License-Identifier: MIT

package discrete

import (
	"errors"
	"math/rand"
)

// ErrRNGNil is returned by Sample when no random source is supplied.
var ErrRNGNil = errors.New("discrete: rng is nil")

// Sample draws one state per site from u's per-site distribution and returns
// the draw as a dirac unary with the same shape. Zero-mass sites yield an
// all-zero row. Exactly one rng.Float64() is consumed per non-zero site, in
// site order.
func Sample[V comparable](rng *rand.Rand, u *Unary[V]) (*Unary[V], error) {
	if rng == nil {
		return nil, ErrRNGNil
	}
	picks := make([]int, u.sites)
	for s := 0; s < u.sites; s++ {
		picks[s] = drawCategorical(rng, u.values[s*u.states:(s+1)*u.states])
	}

	return Dirac(u.variable, u.states, picks)
}

// drawCategorical returns an index with probability weights[i]/Σweights,
// or -1 when the weights sum to zero.
func drawCategorical(rng *rand.Rand, weights []float64) int {
	total := rowSum(weights)
	if total == 0 {
		return -1
	}
	target := rng.Float64() * total
	last := -1
	var cum float64
	for i, w := range weights {
		if w == 0 {
			continue
		}
		last = i
		cum += w
		if target < cum {
			return i
		}
	}

	// Rounding can leave target ≥ cum; fall back to the last state with mass.
	return last
}

// Assignment converts a joint sample of dirac unaries into per-vertex state
// indices, one per site (-1 for zero-mass sites).
func Assignment[V comparable](sample map[V]*Unary[V]) map[V][]int {
	out := make(map[V][]int, len(sample))
	for v, d := range sample {
		out[v] = d.ArgMax()
	}

	return out
}
