package sampler_test

import (
	"context"
	"fmt"
	"math/rand"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/katalvlaran/treeprop/discrete"
	"github.com/katalvlaran/treeprop/internal/testutil"
	"github.com/katalvlaran/treeprop/matrix"
	"github.com/katalvlaran/treeprop/sampler"
	"github.com/katalvlaran/treeprop/sumproduct"
)

const draws = 100000

type discreteSampler[V comparable] = sampler.Sampler[V, *discrete.Unary[V], *discrete.Binary[V]]

func dense(t testing.TB, rows [][]float64) *matrix.Dense {
	t.Helper()
	m, err := matrix.NewDenseFrom(rows)
	require.NoError(t, err)

	return m
}

// markovChain is A → B → C with a prior on A and row-stochastic
// transition tables, so forward sampling targets the normalized product.
func markovChain(t testing.TB) *discrete.Model[string] {
	t.Helper()
	m := discrete.NewModel[string]()
	for _, v := range []string{"A", "B", "C"} {
		require.NoError(t, m.AddVariable(v, 2))
	}
	require.NoError(t, m.SetUnary("A", [][]float64{{1, 3}}))
	require.NoError(t, m.AddPotential("A", "B", dense(t, [][]float64{{0.9, 0.1}, {0.3, 0.7}})))
	require.NoError(t, m.AddPotential("B", "C", dense(t, [][]float64{{0.5, 0.5}, {0.2, 0.8}})))

	return m
}

func forward[V comparable](t testing.TB, m *discrete.Model[V], opts ...sampler.Option) *discreteSampler[V] {
	t.Helper()
	s, err := sampler.NewForward(m.Graph(), discrete.Sample[V], opts...)
	require.NoError(t, err)

	return s
}

func posterior[V comparable](t testing.TB, m *discrete.Model[V], opts ...sampler.Option) *discreteSampler[V] {
	t.Helper()
	e, err := m.Engine()
	require.NoError(t, err)
	s, err := sampler.NewPosterior(e, discrete.Sample[V], opts...)
	require.NoError(t, err)

	return s
}

// jointCounts histograms the site-0 assignments of a batch over the cells
// of want.Joint.
func jointCounts[V comparable](t *testing.T, want *testutil.Enumeration[V], verts []V, batch []map[V]*discrete.Unary[V]) []int {
	t.Helper()
	counts := make([]int, len(want.Joint))
	assign := make([]int, len(verts))
	for _, d := range batch {
		picks := discrete.Assignment(d)
		for i, v := range verts {
			assign[i] = picks[v][0]
		}
		counts[want.Index(assign)]++
	}

	return counts
}

func TestForward_MatchesJoint(t *testing.T) {
	m := markovChain(t)
	want, err := testutil.Enumerate(m)
	require.NoError(t, err)

	batch, err := forward(t, m).DrawMany(context.Background(), draws, 17, 4)
	require.NoError(t, err)
	counts := jointCounts(t, want, m.Variables(), batch)

	stat, ok := testutil.ChiSquareFits(counts, want.Joint)
	assert.True(t, ok, "chi-square %.3f counts %v", stat, counts)
}

func TestPosterior_MatchesJoint(t *testing.T) {
	rng := rand.New(rand.NewSource(21))
	m, err := testutil.RandomModel(rng, 4, 3, 2)
	require.NoError(t, err)
	want, err := testutil.Enumerate(m)
	require.NoError(t, err)

	batch, err := posterior(t, m).DrawMany(context.Background(), draws, 99, 8)
	require.NoError(t, err)
	counts := jointCounts(t, want, m.Variables(), batch)
	stat, ok := testutil.ChiSquareFits(counts, want.Joint)
	assert.True(t, ok, "chi-square %.3f", stat)

	// Per-site marginal frequencies on both sites.
	for _, v := range m.Variables() {
		n, err := m.States(v)
		require.NoError(t, err)
		for site := 0; site < 2; site++ {
			freq := make([]float64, n)
			for _, d := range batch {
				freq[d[v].ArgMax()[site]] += 1.0 / draws
			}
			assert.InDeltaSlice(t, want.Marginals[v][site], freq, 0.01, "vertex %d site %d", v, site)
		}
	}
}

func TestPosterior_ObservedAndZeroWeight(t *testing.T) {
	m := discrete.NewModel[string]()
	for _, v := range []string{"A", "B", "C"} {
		require.NoError(t, m.AddVariable(v, 2))
	}
	// A=0 forbids B=1.
	require.NoError(t, m.AddPotential("A", "B", dense(t, [][]float64{{1, 0}, {1, 1}})))
	require.NoError(t, m.AddPotential("B", "C", dense(t, [][]float64{{2, 1}, {1, 2}})))
	require.NoError(t, m.ObserveStates("C", []int{1}))

	batch, err := posterior(t, m).DrawMany(context.Background(), 20000, 3, 0)
	require.NoError(t, err)
	for i, d := range batch {
		picks := discrete.Assignment(d)
		require.Equal(t, 1, picks["C"][0], "draw %d", i)
		require.False(t, picks["A"][0] == 0 && picks["B"][0] == 1, "draw %d", i)
	}
}

func TestDrawMany_IndependentOfWorkers(t *testing.T) {
	rng := rand.New(rand.NewSource(4))
	m, err := testutil.RandomModel(rng, 12, 4, 3)
	require.NoError(t, err)
	s := posterior(t, m)

	one, err := s.DrawMany(context.Background(), 300, 7, 1)
	require.NoError(t, err)
	many, err := s.DrawMany(context.Background(), 300, 7, 16)
	require.NoError(t, err)
	require.Len(t, many, 300)
	for i := range one {
		assert.Equal(t, discrete.Assignment(one[i]), discrete.Assignment(many[i]), "draw %d", i)
	}

	other, err := s.DrawMany(context.Background(), 300, 8, 4)
	require.NoError(t, err)
	differ := false
	for i := range one {
		if fmt.Sprint(discrete.Assignment(one[i])) != fmt.Sprint(discrete.Assignment(other[i])) {
			differ = true
			break
		}
	}
	assert.True(t, differ)
}

func TestDrawMany_Errors(t *testing.T) {
	s := posterior(t, markovChain(t))

	_, err := s.DrawMany(context.Background(), -1, 0, 1)
	assert.ErrorIs(t, err, sampler.ErrInvalidCount)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err = s.DrawMany(ctx, 1000, 0, 2)
	assert.ErrorIs(t, err, context.Canceled)

	empty, err := s.DrawMany(context.Background(), 0, 0, 2)
	require.NoError(t, err)
	assert.Empty(t, empty)
}

func TestForward_Errors(t *testing.T) {
	t.Run("unary off the root", func(t *testing.T) {
		m := markovChain(t)
		require.NoError(t, m.SetUnary("C", [][]float64{{1, 1}}))
		s := forward(t, m)

		_, err := s.SampleAll(sampler.NewRNG(1))
		assert.ErrorIs(t, err, sampler.ErrUnexpectedUnary)
		_, err = s.Sample(sampler.NewRNG(1), "A")
		assert.ErrorIs(t, err, sampler.ErrUnexpectedUnary)
	})

	t.Run("no unary", func(t *testing.T) {
		m := markovChain(t)
		require.NoError(t, m.AddVariable("lonely", 3))
		_, err := forward(t, m).SampleAll(sampler.NewRNG(1))
		assert.ErrorIs(t, err, sampler.ErrMissingRootFactor)
		_, err = forward(t, m).Sample(sampler.NewRNG(1), "B")
		assert.ErrorIs(t, err, sampler.ErrMissingRootFactor)
	})

	_, err := sampler.NewForward[string, *discrete.Unary[string], *discrete.Binary[string]](nil, discrete.Sample[string])
	assert.ErrorIs(t, err, sampler.ErrGraphNil)
	_, err = sampler.NewForward(markovChain(t).Graph(), nil)
	assert.ErrorIs(t, err, sampler.ErrDrawNil)
}

func TestPosterior_Errors(t *testing.T) {
	_, err := sampler.NewPosterior[string, *discrete.Unary[string], *discrete.Binary[string]](nil, discrete.Sample[string])
	assert.ErrorIs(t, err, sampler.ErrEngineNil)

	m := markovChain(t)
	require.NoError(t, m.AddVariable("lonely", 2))
	_, err = posterior(t, m).SampleAll(sampler.NewRNG(1))
	assert.ErrorIs(t, err, sampler.ErrMissingRootFactor)

	m = markovChain(t)
	s := posterior(t, m)
	require.NoError(t, m.ObserveStates("B", []int{0}))
	_, err = s.SampleAll(sampler.NewRNG(1))
	assert.ErrorIs(t, err, sumproduct.ErrStaleGraph)
}

// TestSample_FromAnyRoot roots posterior draws at vertices without a unary
// of their own (B, C): the root is drawn from its full marginal.
func TestSample_FromAnyRoot(t *testing.T) {
	m := markovChain(t)
	s := posterior(t, m)
	for _, root := range []string{"A", "B", "C"} {
		d, err := s.Sample(sampler.NewRNG(5), root)
		require.NoError(t, err)
		assert.Len(t, d, 3, root)
	}
	assert.True(t, s.Posterior())
	assert.False(t, forward(t, m).Posterior())
}

func TestObserver(t *testing.T) {
	obs := &countingObserver{}
	s := forward(t, markovChain(t), sampler.WithObserver(obs))
	_, err := s.DrawMany(context.Background(), 250, 1, 3)
	require.NoError(t, err)
	assert.EqualValues(t, 250, obs.n.Load())
}

func TestNewStream(t *testing.T) {
	assert.Equal(t, sampler.NewRNG(0).Int63(), sampler.NewRNG(sampler.DefaultSeed).Int63())
	assert.Equal(t, sampler.NewStream(0, 3).Int63(), sampler.NewStream(sampler.DefaultSeed, 3).Int63())
	assert.NotEqual(t, sampler.NewStream(9, 0).Int63(), sampler.NewStream(9, 1).Int63())
}

type countingObserver struct{ n atomic.Int64 }

func (o *countingObserver) SampleDrawn(time.Duration) { o.n.Add(1) }

func ExampleSampler_SampleAll() {
	m := discrete.NewModel[string]()
	_ = m.AddVariable("coin", 2)
	_ = m.AddVariable("copy", 2)
	_ = m.SetUnary("coin", [][]float64{{1, 1}})
	same, _ := matrix.NewDenseFrom([][]float64{{1, 0}, {0, 1}})
	_ = m.AddPotential("coin", "copy", same)
	_ = m.ObserveStates("copy", []int{1})

	e, _ := m.Engine()
	s, _ := sampler.NewPosterior(e, discrete.Sample[string])
	draw, _ := s.SampleAll(sampler.NewRNG(42))
	picks := discrete.Assignment(draw)
	fmt.Println(picks["coin"], picks["copy"])
	// Output:
	// [1] [1]
}
