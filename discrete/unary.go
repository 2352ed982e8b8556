// SPDX-License-Identifier: MIT

package discrete

import (
	"fmt"
	"math"

	"github.com/katalvlaran/treeprop/matrix"
)

// LogScaleStep is the natural-log width of one scale exponent unit: one
// binary order of magnitude, so rescaling is exact (math.Ldexp).
const LogScaleStep = math.Ln2

// ThresholdLog is the natural log of the rescaling thresholds: per-site raw
// sums are kept inside [exp(-ThresholdLog), exp(ThresholdLog)].
const ThresholdLog = 50.0

// ceilingLog bounds the log of any raw row sum produced from log space.
const ceilingLog = 709.0

var (
	upperThreshold = math.Exp(ThresholdLog)
	lowerThreshold = math.Exp(-ThresholdLog)
)

// Unary is a vertex-tagged, per-site scaled table over one variable.
// A Unary is immutable after construction.
type Unary[V comparable] struct {
	variable V
	sites    int
	states   int
	values   []float64 // sites × states, row-major, rescaled
	scales   []int     // per site, in LogScaleStep units
	logNorm  float64
}

// NewUnary builds a unary over v from an n_sites × n_states table of
// non-negative finite weights. The table is copied.
func NewUnary[V comparable](v V, table [][]float64) (*Unary[V], error) {
	m, err := matrix.NewDenseFrom(table)
	if err != nil {
		return nil, fmt.Errorf("discrete: NewUnary(%v): %w: %w", v, ErrInvalidTable, err)
	}

	return NewUnaryDense(v, m)
}

// NewUnaryDense builds a unary over v from a sites × states Dense table.
func NewUnaryDense[V comparable](v V, m *matrix.Dense) (*Unary[V], error) {
	if err := matrix.ValidatePotential(m); err != nil {
		return nil, fmt.Errorf("discrete: NewUnary(%v): %w: %w", v, ErrInvalidTable, err)
	}
	values := make([]float64, len(m.RawData()))
	copy(values, m.RawData())

	return newScaled(v, m.Rows(), m.Cols(), values, make([]int, m.Rows()))
}

// Dirac builds a one-hot unary: per site, 1 at picks[site] and 0 elsewhere.
// A pick of -1 produces an all-zero row.
func Dirac[V comparable](v V, states int, picks []int) (*Unary[V], error) {
	if states <= 0 || len(picks) == 0 {
		return nil, fmt.Errorf("discrete: Dirac(%v): %w", v, ErrInvalidStates)
	}
	values := make([]float64, len(picks)*states)
	for s, p := range picks {
		if p < -1 || p >= states {
			return nil, fmt.Errorf("discrete: Dirac(%v): site %d state %d: %w", v, s, p, ErrInvalidStates)
		}
		if p >= 0 {
			values[s*states+p] = 1
		}
	}

	return newScaled(v, len(picks), states, values, make([]int, len(picks)))
}

// newScaled takes ownership of values and scales, rescales every site into
// the safe band and accumulates the log-normalization.
//
// Stage 1: per site, shift the row by a power of two so its sum lands in
// [0.5, 1) when it lies outside [lowerThreshold, upperThreshold]. A downward
// shift stops before the smallest non-zero entry would leave the normal
// float64 range, so a row spanning more magnitudes than the band allows
// keeps every entry and sits above the band instead.
// Stage 2: fold the per-site sums into a running product kept as a
// mantissa/exponent pair, so the aggregate never overflows across many sites.
func newScaled[V comparable](v V, sites, states int, values []float64, scales []int) (*Unary[V], error) {
	u := &Unary[V]{variable: v, sites: sites, states: states, values: values, scales: scales}

	acc, accExp := 1.0, 0
	for s := 0; s < sites; s++ {
		row := values[s*states : (s+1)*states]
		sum := rowSum(row)
		if math.IsNaN(sum) || math.IsInf(sum, 0) {
			return nil, fmt.Errorf("discrete: variable %v site %d: %w", v, s, ErrNumericOverflow)
		}
		if sum == 0 {
			acc = 0
			continue
		}
		if sum < lowerThreshold || sum > upperThreshold {
			if k := rescaleShift(row, sum); k != 0 {
				for i := range row {
					row[i] = math.Ldexp(row[i], k)
				}
				scales[s] += k
				sum = rowSum(row)
			}
		}

		// Stage 2
		f, e := math.Frexp(sum)
		acc *= f
		accExp += e - scales[s]
		acc, e = math.Frexp(acc)
		accExp += e
	}

	if acc == 0 {
		u.logNorm = math.Inf(-1)
	} else {
		u.logNorm = math.Log(acc) + float64(accExp)*LogScaleStep
	}

	return u, nil
}

// rescaleShift returns the power of two that moves a row with the given
// positive sum to [0.5, 1), limited so no non-zero entry turns subnormal.
func rescaleShift(row []float64, sum float64) int {
	_, e := math.Frexp(sum)
	k := -e
	if k >= 0 {
		return k
	}
	// Entries lie in [2^(emin-1), 2^emin); the smallest normal is 2^-1022.
	_, emin := math.Frexp(minPositive(row))
	if lo := -1021 - emin; k < lo {
		k = min(lo, 0)
	}

	return k
}

// fromLog fills row with exp(logRow[i] + k·LogScaleStep) and returns k. The
// largest entry is placed just under the overflow ceiling so the row keeps
// as much dynamic range as float64 allows; newScaled then brings it down.
func fromLog(logRow, row []float64) int {
	mx := math.Inf(-1)
	for _, l := range logRow {
		if l > mx {
			mx = l
		}
	}
	if math.IsInf(mx, -1) {
		clear(row)
		return 0
	}

	k := int(math.Floor((ceilingLog - math.Log(float64(len(row))) - mx) / LogScaleStep))
	shift := float64(k) * LogScaleStep
	for i, l := range logRow {
		row[i] = math.Exp(l + shift)
	}

	return k
}

// logSumExp returns log Σ exp(xs); all -Inf gives -Inf.
func logSumExp(xs []float64) float64 {
	mx := math.Inf(-1)
	for _, x := range xs {
		if x > mx {
			mx = x
		}
	}
	if math.IsInf(mx, -1) {
		return mx
	}
	var sum float64
	for _, x := range xs {
		sum += math.Exp(x - mx)
	}

	return mx + math.Log(sum)
}

func rowSum(row []float64) float64 {
	var sum float64
	for _, x := range row {
		sum += x
	}

	return sum
}

func minPositive(row []float64) float64 {
	m := math.Inf(1)
	for _, x := range row {
		if x > 0 && x < m {
			m = x
		}
	}

	return m
}

// Variable returns the vertex this factor is attached to.
func (u *Unary[V]) Variable() V { return u.variable }

// LogNormalization returns Σ_sites log(Σ_states true value).
// Sites with zero mass make it -Inf.
func (u *Unary[V]) LogNormalization() float64 { return u.logNorm }

// NumSites returns the number of sites.
func (u *Unary[V]) NumSites() int { return u.sites }

// NumStates returns the domain size.
func (u *Unary[V]) NumStates() int { return u.states }

// Scale returns the scale exponent of a site, in LogScaleStep units.
func (u *Unary[V]) Scale(site int) int { return u.scales[site] }

// Raw returns the stored (rescaled) value at (site, state).
func (u *Unary[V]) Raw(site, state int) float64 { return u.values[site*u.states+state] }

// LogValue returns log of the true value at (site, state).
func (u *Unary[V]) LogValue(site, state int) float64 {
	return math.Log(u.Raw(site, state)) - float64(u.scales[site])*LogScaleStep
}

// Normalized returns the per-site distributions. Zero-mass sites are
// returned as all-zero rows.
func (u *Unary[V]) Normalized() [][]float64 {
	out := make([][]float64, u.sites)
	for s := 0; s < u.sites; s++ {
		row := make([]float64, u.states)
		copy(row, u.values[s*u.states:(s+1)*u.states])
		if sum := rowSum(row); sum > 0 {
			for i := range row {
				row[i] /= sum
			}
		}
		out[s] = row
	}

	return out
}

// ArgMax returns, per site, the index of the largest value, or -1 for a
// zero-mass site. On a dirac unary this is the sampled state.
func (u *Unary[V]) ArgMax() []int {
	out := make([]int, u.sites)
	for s := 0; s < u.sites; s++ {
		best, bestIdx := 0.0, -1
		for k := 0; k < u.states; k++ {
			if x := u.values[s*u.states+k]; x > best {
				best, bestIdx = x, k
			}
		}
		out[s] = bestIdx
	}

	return out
}

// String implements fmt.Stringer for debugging.
func (u *Unary[V]) String() string {
	return fmt.Sprintf("Unary(%v; sites=%d states=%d logZ=%g)", u.variable, u.sites, u.states, u.logNorm)
}
