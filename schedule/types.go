package schedule

import (
	"errors"

	"github.com/katalvlaran/treeprop/forest"
)

var (
	// ErrForestNil is returned when a nil *forest.Forest is passed in.
	ErrForestNil = errors.New("schedule: forest is nil")

	// ErrRootNotFound indicates that the requested root is not a vertex.
	ErrRootNotFound = errors.New("schedule: root vertex not found")

	// ErrNotATree indicates that the root's component is not acyclic.
	ErrNotATree = errors.New("schedule: component is not a tree")
)

// Schedule is the post-order of one component together with the successor
// of each non-root vertex. A Schedule is immutable once built.
type Schedule[V comparable] struct {
	root      V
	postorder []V       // finish order; root is last
	rank      map[V]int // vertex → index in postorder
	successor map[V]V   // non-root vertex → neighbour with larger rank
}

// Root returns the vertex the schedule was built from.
func (s *Schedule[V]) Root() V { return s.root }

// Len returns the number of vertices in the component.
func (s *Schedule[V]) Len() int { return len(s.postorder) }

// Postorder returns a copy of the post-order traversal.
func (s *Schedule[V]) Postorder() []V {
	out := make([]V, len(s.postorder))
	copy(out, s.postorder)

	return out
}

// Contains reports whether v belongs to the scheduled component.
func (s *Schedule[V]) Contains(v V) bool {
	_, ok := s.rank[v]

	return ok
}

// Successor returns the neighbour of v one step closer to the root.
// The root itself (and vertices outside the component) report false.
func (s *Schedule[V]) Successor(v V) (V, bool) {
	n, ok := s.successor[v]

	return n, ok
}

// Forward returns one arc per non-root vertex, v → successor(v), in
// post-order: leaves → root.
// Complexity: O(V).
func (s *Schedule[V]) Forward() []forest.Arc[V] {
	out := make([]forest.Arc[V], 0, len(s.postorder))
	for _, v := range s.postorder {
		if succ, ok := s.successor[v]; ok {
			out = append(out, forest.Arc[V]{From: v, To: succ})
		}
	}

	return out
}

// Backward returns Forward() reversed in both list order and arc direction:
// root → leaves.
// Complexity: O(V).
func (s *Schedule[V]) Backward() []forest.Arc[V] {
	fwd := s.Forward()
	out := make([]forest.Arc[V], len(fwd))
	for i := range fwd {
		out[len(fwd)-1-i] = fwd[i].Reverse()
	}

	return out
}
