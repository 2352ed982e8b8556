// SPDX-License-Identifier: MIT

// Package matrix provides the dense, row-major potential tables that feed the
// discrete factor representation.
//
// What & Why:
//
//	A binary potential between variables a and b is an n_a × n_b table of
//	non-negative weights; a unary potential over many sites is an
//	n_sites × n_states table. Dense stores either in one flat slice
//	(offset = i*cols + j) so hot loops in package discrete can walk it
//	without bounds-checked accessors, while the public surface stays safe:
//	At/Set return errors instead of panicking.
//
// Numeric policy:
//
//	Potentials must be finite and non-negative. ValidateFinite and
//	ValidateNonNegative are the single source of truth for those checks.
//
// Complexity quicksheet:
//
//	NewDense: O(r*c) zero-init; At/Set: O(1); Clone/Transpose: O(r*c).
package matrix
