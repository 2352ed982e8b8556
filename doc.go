// Package treeprop is exact inference on tree-structured factor graphs:
// marginals, the log partition function and exact joint samples, computed
// by lazy sum-product message passing.
//
// What is in the box?
//
//	A generic engine over any potential algebra, plus a numerically robust
//	discrete algebra that keeps products of thousands of factors finite:
//		• Topology: undirected forests with connected components
//		• Factor store: vertex-tagged unaries, arc-keyed binaries, revisions
//		• Scheduling: postorder forward/backward arc sequences from any root
//		• Sum-product: cached messages, marginals, subtree marginals, log Z
//		• Discrete factors: per-site tables with exact binary scale exponents
//		• Sampling: prior (forward) and posterior, parallel and reproducible
//
// Packages:
//
//	forest/        undirected topology, arcs, components
//	factorgraph/   factor contracts (Unary, Binary, Operations) and the store
//	schedule/      postorder walker, Forward/Backward, incoming arcs
//	sumproduct/    the message cache and marginal queries
//	discrete/      scaled discrete unaries/binaries and the Model builder
//	matrix/        dense potential tables and validators
//	sampler/       exact joint sampling and deterministic RNG streams
//	model/         YAML model descriptions
//	cmd/treeprop   command-line front end
//
// Quick ASCII example:
//
//	    A───B───C      potential on each edge: [[2,1],[1,2]]
//
//	has Z = 18; observing A = 0 gives Z = 9 and P(B = 0) = 2/3.
package treeprop
