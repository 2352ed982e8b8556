package forest

import (
	"errors"
	"fmt"
	"sync"
)

// Sentinel errors for forest operations.
var (
	// ErrVertexNotFound indicates an operation referenced a non-existent vertex.
	ErrVertexNotFound = errors.New("forest: vertex not found")

	// ErrEdgeNotFound indicates an operation referenced a non-existent edge.
	ErrEdgeNotFound = errors.New("forest: edge not found")

	// ErrLoopNotAllowed indicates a self-loop was attempted.
	ErrLoopNotAllowed = errors.New("forest: self-loop not allowed")

	// ErrMultiEdgeNotAllowed indicates a parallel edge was attempted.
	ErrMultiEdgeNotAllowed = errors.New("forest: multi-edges not allowed")
)

// Arc is one orientation of an undirected edge, read "From → To".
// Arc values are comparable and therefore usable as map keys.
type Arc[V comparable] struct {
	From V
	To   V
}

// Reverse returns the opposite orientation of a.
func (a Arc[V]) Reverse() Arc[V] {
	return Arc[V]{From: a.To, To: a.From}
}

// String implements fmt.Stringer.
func (a Arc[V]) String() string {
	return fmt.Sprintf("%v→%v", a.From, a.To)
}

// Forest is an undirected graph over comparable vertex labels.
//
// order keeps vertices in insertion order; adjacency keeps, per vertex,
// neighbours in insertion order; index answers membership in O(1).
type Forest[V comparable] struct {
	mu sync.RWMutex // guards everything below

	order     []V
	index     map[V]int       // vertex → position in order
	adjacency map[V][]V       // vertex → neighbours (insertion order)
	edges     map[Arc[V]]bool // both orientations of every edge
	edgeCount int
}

// NewForest creates an empty Forest.
// Complexity: O(1)
func NewForest[V comparable]() *Forest[V] {
	return &Forest[V]{
		index:     make(map[V]int),
		adjacency: make(map[V][]V),
		edges:     make(map[Arc[V]]bool),
	}
}
