// Package testutil holds reference computations and fixtures shared by the
// tests of the engine packages: brute-force enumeration of small discrete
// models, a log-space chain recursion, random tree builders and a chi-square
// goodness-of-fit check.
package testutil

import (
	"errors"
	"math"
	"math/rand"

	"github.com/katalvlaran/treeprop/discrete"
	"github.com/katalvlaran/treeprop/matrix"
)

// ErrTooLarge guards Enumerate against exponential blow-up.
var ErrTooLarge = errors.New("testutil: model too large to enumerate")

// maxAssignments bounds the joint space Enumerate will walk.
const maxAssignments = 1 << 20

// Enumeration is the brute-force answer for a discrete model.
type Enumeration[V comparable] struct {
	LogZ      float64
	Marginals map[V][][]float64 // per vertex: sites × states

	// Joint is the normalized joint distribution of site 0, indexed by
	// Index over the vertices in insertion order.
	Joint  []float64
	States []int
}

// Index returns the Joint cell of an assignment given in vertex order.
func (e *Enumeration[V]) Index(assign []int) int {
	idx, stride := 0, 1
	for i, r := range e.States {
		idx += assign[i] * stride
		stride *= r
	}

	return idx
}

// LogSumExp returns log Σ exp(xs) without overflow; empty or all -Inf → -Inf.
func LogSumExp(xs []float64) float64 {
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

// Enumerate walks every joint assignment of m, site by site, in log space.
func Enumerate[V comparable](m *discrete.Model[V]) (*Enumeration[V], error) {
	g := m.Graph()
	verts := g.Forest().Vertices()
	states := make([]int, len(verts))
	pos := make(map[V]int, len(verts))
	total := 1
	for i, v := range verts {
		n, err := m.States(v)
		if err != nil {
			return nil, err
		}
		states[i] = n
		pos[v] = i
		total *= n
		if total > maxAssignments {
			return nil, ErrTooLarge
		}
	}

	// One orientation per edge; kernel(other=b, marg=a) equals potential[a][b].
	arcs := g.Forest().Arcs()
	type edge struct {
		a, b int
		k    *discrete.Binary[V]
	}
	edges := make([]edge, 0, len(arcs)/2)
	for i := 0; i < len(arcs); i += 2 {
		k, err := g.Binary(arcs[i].From, arcs[i].To)
		if err != nil {
			return nil, err
		}
		edges = append(edges, edge{a: pos[arcs[i].From], b: pos[arcs[i].To], k: k})
	}

	unaries := make([]*discrete.Unary[V], len(verts))
	for i, v := range verts {
		u, ok, err := g.Unary(v)
		if err != nil {
			return nil, err
		}
		if ok {
			unaries[i] = u
		}
	}

	sites := m.Sites()
	if sites == 0 {
		sites = 1
	}
	res := &Enumeration[V]{
		Marginals: make(map[V][][]float64, len(verts)),
		Joint:     make([]float64, total),
		States:    states,
	}
	for i, v := range verts {
		res.Marginals[v] = make([][]float64, sites)
		for s := range res.Marginals[v] {
			res.Marginals[v][s] = make([]float64, states[i])
		}
	}

	logW := make([]float64, total)
	assign := make([]int, len(verts))
	for s := 0; s < sites; s++ {
		for idx := 0; idx < total; idx++ {
			decode(idx, states, assign)
			var lw float64
			for i, u := range unaries {
				if u != nil {
					lw += u.LogValue(s, assign[i])
				}
			}
			for _, e := range edges {
				lw += math.Log(e.k.At(assign[e.b], assign[e.a]))
			}
			logW[idx] = lw
		}
		logZ := LogSumExp(logW)
		res.LogZ += logZ
		for idx := 0; idx < total; idx++ {
			p := math.Exp(logW[idx] - logZ)
			if s == 0 {
				res.Joint[idx] = p
			}
			decode(idx, states, assign)
			for i, v := range verts {
				res.Marginals[v][s][assign[i]] += p
			}
		}
	}

	return res, nil
}

// decode writes the mixed-radix digits of idx into out.
func decode(idx int, radix, out []int) {
	for i, r := range radix {
		out[i] = idx % r
		idx /= r
	}
}

// ChainLogZ computes the log partition function of a homogeneous chain
// x_0 – x_1 – … – x_{n-1} entirely in log space: logUnary[i][k] is the log
// unary of x_i, logPot[j][k] the log potential between consecutive states.
func ChainLogZ(logUnary [][]float64, logPot [][]float64) float64 {
	logPots := make([][][]float64, len(logUnary)-1)
	for i := range logPots {
		logPots[i] = logPot
	}

	return ChainLogZEdges(logUnary, logPots)
}

// ChainLogZEdges is ChainLogZ with one log potential per edge: logPots[i]
// joins x_i (rows) to x_{i+1} (columns).
func ChainLogZEdges(logUnary [][]float64, logPots [][][]float64) float64 {
	alpha := append([]float64(nil), logUnary[0]...)
	for i := 1; i < len(logUnary); i++ {
		terms := make([]float64, len(alpha))
		next := make([]float64, len(logUnary[i]))
		for k := range next {
			for j := range alpha {
				terms[j] = alpha[j] + logPots[i-1][j][k]
			}
			next[k] = LogSumExp(terms) + logUnary[i][k]
		}
		alpha = next
	}

	return LogSumExp(alpha)
}

// RandomTree returns the edges of a uniformly attached random tree on
// vertices 0..n-1: vertex i ≥ 1 hangs off a random earlier vertex.
func RandomTree(rng *rand.Rand, n int) [][2]int {
	edges := make([][2]int, 0, n-1)
	for i := 1; i < n; i++ {
		edges = append(edges, [2]int{rng.Intn(i), i})
	}

	return edges
}

// RandomModel builds a random tree model with n vertices, 2..maxStates
// states each, strictly positive random unaries on every vertex and random
// positive potentials on every edge.
func RandomModel(rng *rand.Rand, n, maxStates, sites int) (*discrete.Model[int], error) {
	m := discrete.NewModel[int]()
	states := make([]int, n)
	for v := 0; v < n; v++ {
		states[v] = 2 + rng.Intn(maxStates-1)
		if err := m.AddVariable(v, states[v]); err != nil {
			return nil, err
		}
		if err := m.SetUnary(v, RandomTable(rng, sites, states[v])); err != nil {
			return nil, err
		}
	}
	for _, e := range RandomTree(rng, n) {
		pot, err := matrix.NewDenseFrom(RandomTable(rng, states[e[0]], states[e[1]]))
		if err != nil {
			return nil, err
		}
		if err = m.AddPotential(e[0], e[1], pot); err != nil {
			return nil, err
		}
	}

	return m, nil
}

// RandomTable returns a rows × cols table with entries in (0.05, 1.05).
func RandomTable(rng *rand.Rand, rows, cols int) [][]float64 {
	out := make([][]float64, rows)
	for i := range out {
		out[i] = make([]float64, cols)
		for j := range out[i] {
			out[i][j] = 0.05 + rng.Float64()
		}
	}

	return out
}

// chiSquareCritical holds the 0.99 quantiles of χ² for df = 1..10.
var chiSquareCritical = []float64{6.635, 9.210, 11.345, 13.277, 15.086, 16.812, 18.475, 20.090, 21.666, 23.209}

// ChiSquareFits reports whether observed counts are consistent with the
// expected probabilities at the 0.01 level (p > 0.01 passes). Categories with zero expected
// probability must have zero observations; categories expecting fewer than
// five counts are pooled into one.
func ChiSquareFits(observed []int, expected []float64) (stat float64, ok bool) {
	n := 0
	for _, c := range observed {
		n += c
	}
	df := -1
	var poolObs, poolExp float64
	for k, p := range expected {
		if p == 0 {
			if observed[k] != 0 {
				return math.Inf(1), false
			}
			continue
		}
		e := p * float64(n)
		if e < 5 {
			poolObs += float64(observed[k])
			poolExp += e
			continue
		}
		d := float64(observed[k]) - e
		stat += d * d / e
		df++
	}
	if poolExp > 0 {
		d := poolObs - poolExp
		stat += d * d / poolExp
		df++
	}
	if df <= 0 {
		return stat, true
	}

	return stat, stat < chiSquareQuantile(df)
}

// chiSquareQuantile returns the 0.99 quantile for df degrees of freedom,
// using the Wilson–Hilferty approximation past the table.
func chiSquareQuantile(df int) float64 {
	if df <= len(chiSquareCritical) {
		return chiSquareCritical[df-1]
	}
	const z = 2.326
	k := float64(df)
	c := 2 / (9 * k)

	return k * math.Pow(1-c+z*math.Sqrt(c), 3)
}
