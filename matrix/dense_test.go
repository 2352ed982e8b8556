// SPDX-License-Identifier: MIT

package matrix_test

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/katalvlaran/treeprop/matrix"
)

// MustDense builds a Dense from a literal or fails the test.
func MustDense(t *testing.T, rows [][]float64) *matrix.Dense {
	t.Helper()
	m, err := matrix.NewDenseFrom(rows)
	require.NoError(t, err)

	return m
}

func TestNewDense_InvalidDimensions(t *testing.T) {
	_, err := matrix.NewDense(0, 3)
	assert.ErrorIs(t, err, matrix.ErrInvalidDimensions)
	_, err = matrix.NewDense(2, -1)
	assert.ErrorIs(t, err, matrix.ErrInvalidDimensions)
	_, err = matrix.NewDenseFrom(nil)
	assert.ErrorIs(t, err, matrix.ErrInvalidDimensions)
}

func TestNewDenseFrom_Ragged(t *testing.T) {
	_, err := matrix.NewDenseFrom([][]float64{{1, 2}, {3}})
	assert.ErrorIs(t, err, matrix.ErrRagged)
}

func TestAtSet(t *testing.T) {
	m, err := matrix.NewDense(2, 3)
	require.NoError(t, err)
	require.NoError(t, m.Set(1, 2, 7.5))

	v, err := m.At(1, 2)
	require.NoError(t, err)
	assert.Equal(t, 7.5, v)

	_, err = m.At(2, 0)
	assert.ErrorIs(t, err, matrix.ErrOutOfRange)
	assert.ErrorIs(t, m.Set(0, 3, 1), matrix.ErrOutOfRange)
	_, err = m.Row(5)
	assert.ErrorIs(t, err, matrix.ErrOutOfRange)
}

func TestTransposeAndClone(t *testing.T) {
	m := MustDense(t, [][]float64{{1, 2, 3}, {4, 5, 6}})
	tr := m.Transpose()
	assert.Equal(t, 3, tr.Rows())
	assert.Equal(t, 2, tr.Cols())
	assert.Equal(t, []float64{1, 4, 2, 5, 3, 6}, tr.RawData())

	c := m.Clone()
	require.NoError(t, c.Set(0, 0, 100))
	v, _ := m.At(0, 0)
	assert.Equal(t, 1.0, v, "clone must not share storage")

	row, err := m.Row(1)
	require.NoError(t, err)
	assert.Equal(t, []float64{4, 5, 6}, row)
	assert.Equal(t, 6.0, m.Max())
	assert.Equal(t, "[1, 2, 3]\n[4, 5, 6]\n", m.String())
}

func TestValidators(t *testing.T) {
	assert.ErrorIs(t, matrix.ValidatePotential(nil), matrix.ErrNilMatrix)

	neg := MustDense(t, [][]float64{{1, -1}})
	assert.ErrorIs(t, matrix.ValidatePotential(neg), matrix.ErrNegative)

	nan := MustDense(t, [][]float64{{1, math.NaN()}})
	assert.ErrorIs(t, matrix.ValidatePotential(nan), matrix.ErrNaNInf)

	inf := MustDense(t, [][]float64{{math.Inf(1)}, {0}})
	assert.ErrorIs(t, matrix.ValidateFinite(inf), matrix.ErrNaNInf)

	ok := MustDense(t, [][]float64{{0, 1e300}, {1e-300, 2}})
	assert.NoError(t, matrix.ValidatePotential(ok))
	assert.NoError(t, matrix.ValidateShape(ok, 2, 2))
	assert.ErrorIs(t, matrix.ValidateShape(ok, 2, 3), matrix.ErrDimensionMismatch)
}
