// Package sampler draws exact joint samples from a tree-structured factor
// graph, one dirac unary per vertex.
//
// Every component is walked root-first along schedule.Backward(). The root
// is drawn from its own distribution; each later vertex d, reached over the
// arc s → d, is drawn from
//
//	Marginalize(binary(s,d), [dirac(s)])                        (forward)
//	Marginalize(binary(s,d), [dirac(s)]) ⊙ subtree marginal(d, s) (posterior)
//
// Forward mode samples a prior: the only unary of a component sits on its
// root and the binaries act as conditional kernels. Posterior mode samples
// the normalized product of all factors and reads the subtree marginals from
// a completed sum-product engine.
//
// Batches:
//
//	DrawMany fans draws out over an errgroup. Draw i always uses
//	NewStream(seed, i), so a batch is identical for any worker count.
package sampler
