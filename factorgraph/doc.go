// Package factorgraph stores the potentials of a tree-structured factor graph
// on top of a forest topology and defines the two-operation contract that the
// generic sum-product recursion depends on.
//
// Contracts:
//
//   - Unary[V]: an unnormalized non-negative measure over one variable's
//     domain, tagged with the variable it belongs to.
//   - Binary[V]: a kernel between an ordered pair (Marginalized, Other),
//     conceptually indexed by (other state, marginalized state).
//   - Operations[V,U,B]: PointwiseProduct and Marginalize. The generic engine
//     relies only on the product being commutative and associative and on
//     Marginalize being linear in its unary arguments.
//
// Store policy:
//
//   - One unary per vertex; SetUnary refuses to overwrite (ErrDuplicateFactor).
//     TimesEqual is the only way to combine several unaries at one vertex.
//   - One binary per orientation of every edge; both orientations are set
//     separately (SetBinary twice) and must be derived from the same raw
//     potential by the caller.
//   - Every mutation bumps Revision(); derived caches compare revisions to
//     detect that they must be rebuilt.
//
// Errors:
//
//	ErrOperationsNil     – New called with nil Operations
//	ErrVertexNotFound    – vertex not in the topology
//	ErrEdgeNotFound      – ordered pair is not an edge
//	ErrDuplicateFactor   – factor already present for vertex / arc
//	ErrVariableMismatch  – factor tags disagree with the slot it is stored in
//	ErrMissingFactor     – binary orientation absent where required
package factorgraph
