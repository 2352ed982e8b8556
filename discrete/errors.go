// SPDX-License-Identifier: MIT

package discrete

import "errors"

var (
	// ErrSiteMismatch indicates factors with different site counts were combined.
	ErrSiteMismatch = errors.New("discrete: site count mismatch")

	// ErrStateMismatch indicates factors with different state counts were combined.
	ErrStateMismatch = errors.New("discrete: state count mismatch")

	// ErrVariableMismatch indicates factors over different variables were combined.
	ErrVariableMismatch = errors.New("discrete: variable mismatch")

	// ErrEmptyProduct indicates PointwiseProduct was called with no factors.
	ErrEmptyProduct = errors.New("discrete: pointwise product of no factors")

	// ErrInvalidTable indicates a potential table that is empty, ragged,
	// non-finite or negative.
	ErrInvalidTable = errors.New("discrete: invalid potential table")

	// ErrNumericOverflow indicates a per-site sum became NaN or +Inf.
	ErrNumericOverflow = errors.New("discrete: non-finite per-site mass")

	// ErrInvalidSites indicates a non-positive site count.
	ErrInvalidSites = errors.New("discrete: site count must be > 0")

	// ErrSitesUnset indicates an operation needed the site count before any
	// unary fixed it.
	ErrSitesUnset = errors.New("discrete: site count not fixed yet")

	// ErrInvalidStates indicates a non-positive state count or an
	// out-of-range state index.
	ErrInvalidStates = errors.New("discrete: invalid state")

	// ErrUnknownVariable indicates a variable that was never added to a Model.
	ErrUnknownVariable = errors.New("discrete: unknown variable")
)
