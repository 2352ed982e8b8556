// SPDX-License-Identifier: MIT

package discrete_test

import (
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/katalvlaran/treeprop/discrete"
	"github.com/katalvlaran/treeprop/internal/testutil"
)

func TestSample_Shape(t *testing.T) {
	u := mustUnary(t, "x", [][]float64{{0, 1, 0}, {0, 0, 0}, {5, 0, 0}})
	d, err := discrete.Sample(rand.New(rand.NewSource(1)), u)
	require.NoError(t, err)
	assert.Equal(t, "x", d.Variable())
	assert.Equal(t, 3, d.NumSites())
	assert.Equal(t, 3, d.NumStates())
	assert.Equal(t, []int{1, -1, 0}, d.ArgMax())
	assert.Equal(t, [][]float64{{0, 1, 0}, {0, 0, 0}, {1, 0, 0}}, d.Normalized())

	_, err = discrete.Sample[string](nil, u)
	assert.ErrorIs(t, err, discrete.ErrRNGNil)
}

func TestSample_Deterministic(t *testing.T) {
	u := mustUnary(t, "x", testutil.RandomTable(rand.New(rand.NewSource(2)), 20, 5))
	a, err := discrete.Sample(rand.New(rand.NewSource(42)), u)
	require.NoError(t, err)
	b, err := discrete.Sample(rand.New(rand.NewSource(42)), u)
	require.NoError(t, err)
	assert.Equal(t, a.ArgMax(), b.ArgMax())
}

func TestSample_Frequencies(t *testing.T) {
	const draws = 100000
	u := mustUnary(t, "x", [][]float64{{1e-300, 0, 2e-300, 3e-300, 4e-300}})
	rng := rand.New(rand.NewSource(9))
	counts := make([]int, 5)
	for i := 0; i < draws; i++ {
		d, err := discrete.Sample(rng, u)
		require.NoError(t, err)
		counts[d.ArgMax()[0]]++
	}
	assert.Zero(t, counts[1])
	stat, ok := testutil.ChiSquareFits(counts, []float64{0.1, 0, 0.2, 0.3, 0.4})
	assert.True(t, ok, "chi-square %.3f, counts %v", stat, counts)
}
