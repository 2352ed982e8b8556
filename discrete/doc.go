// SPDX-License-Identifier: MIT

// Package discrete is the concrete factor algebra for finite-domain variables,
// vectorized over sites: independent copies of the same tree that share the
// binary potentials but carry their own unary potentials.
//
// Representation:
//
//	A Unary stores an n_sites × n_states table of raw values plus one integer
//	scale exponent per site. The true value at (site, state) is
//
//	    raw[site,state] · exp(-scale[site] · LogScaleStep)
//
//	with LogScaleStep = ln 2, so every rescale is an exact power of two.
//	Every constructor shifts a site whose raw row sum leaves
//	[exp(-ThresholdLog), exp(+ThresholdLog)] back to a sum in [0.5, 1). A
//	downward shift stops before any non-zero entry turns subnormal, so a row
//	spanning e.g. 1e-300 to 1e300 keeps both entries and sits above the band.
//	Long chains of products therefore never underflow to 0 or overflow to
//	+Inf: magnitude lives in the integer exponents, which are tracked exactly.
//
//	A Binary stores the kernel indexed by (other state, marginalized state)
//	as given, together with the log of every entry.
//
// Operations:
//
//	PointwiseProduct  per site: scales add, raw values multiply state-wise
//	                  (summed in log space, placed back once).
//	Marginalize       per site and other state:
//	                  Σ_m B[o,m] · Π_i u_i[site,m], scales add, evaluated
//	                  with log-sum-exp. Degree 0, 1 and 2 are specialised
//	                  inline; higher degrees sum the logs of all unaries.
//	Sample            one categorical draw per site, returned as a one-hot
//	                  (dirac) unary. A site with zero mass yields an all-zero
//	                  row instead of an error.
//
// Model is a builder that fixes the site count at the first unary, checks
// state counts per variable, and derives both orientations of every binary
// potential from a single table by transposition.
package discrete
