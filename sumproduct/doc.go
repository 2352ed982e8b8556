// Package sumproduct implements the generic sum-product (belief propagation)
// recursion on a tree-structured factor graph, decoupled from the concrete
// potential representation through factorgraph.Operations.
//
// Messages:
//
//	The message on arc s → d is
//
//	    Marginalize(binary(s,d), [messages n → s for n ≠ d] ++ [unary(s)])
//
//	It moves from absent to computed exactly once and is never overwritten.
//	A component with n vertices is complete when it holds 2(n-1) messages.
//
// Laziness:
//
//	A query at vertex v schedules v's component from v (schedule.New) and
//	walks Forward() then Backward(), computing only absent messages. Once a
//	component is complete, later queries short-circuit on the cache size.
//
// Queries:
//
//	ComputeMarginal(v)                  product of all incoming messages and unary(v)
//	ComputeSubtreeMarginal(v, excluded) same, without the message excluded → v
//	LogNormalization()                  Σ over components of log Z_c
//
// Invalidation:
//
//	A SumProduct snapshots factorgraph.Graph.Revision() at construction. Any
//	later mutation of the graph makes every query fail with ErrStaleGraph;
//	build a fresh instance instead of repairing the cache.
//
// Concurrency:
//
//	One mutex serializes all queries, so a single instance can back several
//	goroutines (e.g. parallel posterior samplers). Message computation inside
//	a component stays sequential.
package sumproduct
