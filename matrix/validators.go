// SPDX-License-Identifier: MIT
// Package: matrix
//
// Purpose:
//  - Provide a single, canonical source of truth for potential-table checks.
//  - Return sentinel errors wrapped with a validator tag and the offending cell.
//
// Note:
//  - Composite validators follow a fixed sequence: NotNil → Shape → Finite → NonNegative.

package matrix

import (
	"fmt"
	"math"
)

// validatorErrorf wraps an underlying error with the given validator tag.
func validatorErrorf(tag string, err error) error {
	return fmt.Errorf("%s: %w", tag, err)
}

// ValidateNotNil ensures the matrix reference is non-nil.
func ValidateNotNil(m *Dense) error {
	if m == nil {
		return validatorErrorf("ValidateNotNil", ErrNilMatrix)
	}

	return nil
}

// ValidateShape ensures m is exactly rows×cols. Assumes m is not nil.
func ValidateShape(m *Dense, rows, cols int) error {
	if m.r != rows || m.c != cols {
		return validatorErrorf("ValidateShape",
			fmt.Errorf("got %dx%d, want %dx%d: %w", m.r, m.c, rows, cols, ErrDimensionMismatch))
	}

	return nil
}

// ValidateFinite rejects NaN and ±Inf entries. Assumes m is not nil.
// Complexity: O(r*c).
func ValidateFinite(m *Dense) error {
	for idx, v := range m.data {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return validatorErrorf("ValidateFinite", denseErrorf("At", idx/m.c, idx%m.c, ErrNaNInf))
		}
	}

	return nil
}

// ValidateNonNegative rejects entries below zero. Assumes m is not nil.
// Complexity: O(r*c).
func ValidateNonNegative(m *Dense) error {
	for idx, v := range m.data {
		if v < 0 {
			return validatorErrorf("ValidateNonNegative", denseErrorf("At", idx/m.c, idx%m.c, ErrNegative))
		}
	}

	return nil
}

// ValidatePotential runs NotNil → Finite → NonNegative, the full numeric
// policy for a potential table.
func ValidatePotential(m *Dense) error {
	if err := ValidateNotNil(m); err != nil {
		return err
	}
	if err := ValidateFinite(m); err != nil {
		return err
	}

	return ValidateNonNegative(m)
}
