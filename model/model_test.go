package model_test

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/katalvlaran/treeprop/discrete"
	"github.com/katalvlaran/treeprop/matrix"
	"github.com/katalvlaran/treeprop/model"
)

func TestLoad_Path(t *testing.T) {
	s, err := model.Load("testdata/path.yaml")
	require.NoError(t, err)
	assert.Len(t, s.Variables, 3)
	assert.Len(t, s.Edges, 2)

	m, err := s.Build()
	require.NoError(t, err)
	assert.Equal(t, []string{"A", "B", "C"}, m.Variables())

	e, err := m.Engine()
	require.NoError(t, err)
	logZ, err := e.LogNormalization()
	require.NoError(t, err)
	assert.InDelta(t, math.Log(9), logZ, 1e-12)

	marg, err := discrete.Marginals(e)
	require.NoError(t, err)
	assert.InDeltaSlice(t, []float64{5.0 / 9, 4.0 / 9}, marg["C"][0], 1e-12)
}

func TestLoad_Missing(t *testing.T) {
	_, err := model.Load("testdata/nope.yaml")
	assert.Error(t, err)
}

func TestParse_Sites(t *testing.T) {
	s, err := model.Parse([]byte(`
sites: 2
variables:
  - name: x
    states: 3
    unary: [[1, 2, 3], [3, 2, 1]]
`))
	require.NoError(t, err)
	m, err := s.Build()
	require.NoError(t, err)
	assert.Equal(t, 2, m.Sites())
}

func TestParse_Invalid(t *testing.T) {
	cases := map[string]struct {
		doc  string
		want error
	}{
		"syntax": {
			doc:  "variables: [",
			want: model.ErrParse,
		},
		"unknown key": {
			doc:  "variables: [{name: a, states: 2}]\nweights: 3\n",
			want: model.ErrParse,
		},
		"no variables": {
			doc:  "sites: 1\n",
			want: model.ErrInvalidSpec,
		},
		"duplicate name": {
			doc:  "variables: [{name: a, states: 2}, {name: a, states: 2}]\n",
			want: model.ErrInvalidSpec,
		},
		"zero states": {
			doc:  "variables: [{name: a, states: 0}]\n",
			want: model.ErrInvalidSpec,
		},
		"negative potential": {
			doc: "variables: [{name: a, states: 1}, {name: b, states: 1}]\n" +
				"edges: [{from: a, to: b, potential: [[-1]]}]\n",
			want: model.ErrInvalidSpec,
		},
		"self loop": {
			doc: "variables: [{name: a, states: 1}]\n" +
				"edges: [{from: a, to: a, potential: [[1]]}]\n",
			want: model.ErrInvalidSpec,
		},
		"bad observation": {
			doc: "variables: [{name: a, states: 2}]\n" +
				"observations: [{variable: a, states: [-2]}]\n",
			want: model.ErrInvalidSpec,
		},
	}
	for name, tc := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := model.Parse([]byte(tc.doc))
			assert.ErrorIs(t, err, tc.want)
		})
	}
}

func TestBuild_CrossReferences(t *testing.T) {
	cases := map[string]struct {
		doc  string
		want error
	}{
		"unknown endpoint": {
			doc: "variables: [{name: a, states: 2}]\n" +
				"edges: [{from: a, to: z, potential: [[1], [1]]}]\n",
			want: discrete.ErrUnknownVariable,
		},
		"potential shape": {
			doc: "variables: [{name: a, states: 2}, {name: b, states: 2}]\n" +
				"edges: [{from: a, to: b, potential: [[1, 1, 1], [1, 1, 1]]}]\n",
			want: matrix.ErrDimensionMismatch,
		},
		"ragged potential": {
			doc: "variables: [{name: a, states: 2}, {name: b, states: 2}]\n" +
				"edges: [{from: a, to: b, potential: [[1, 1], [1]]}]\n",
			want: matrix.ErrRagged,
		},
		"unary sites": {
			doc: "sites: 2\nvariables: [{name: a, states: 2, unary: [[1, 1]]}]\n",
			want: discrete.ErrSiteMismatch,
		},
		"observation range": {
			doc: "variables: [{name: a, states: 2}]\n" +
				"observations: [{variable: a, states: [2]}]\n",
			want: discrete.ErrInvalidStates,
		},
		"observation target": {
			doc:  "variables: [{name: a, states: 2}]\nobservations: [{variable: q, states: [0]}]\n",
			want: discrete.ErrUnknownVariable,
		},
	}
	for name, tc := range cases {
		t.Run(name, func(t *testing.T) {
			s, err := model.Parse([]byte(tc.doc))
			require.NoError(t, err)
			_, err = s.Build()
			assert.ErrorIs(t, err, tc.want)
		})
	}
}
