package factorgraph

import (
	"errors"
	"sync"

	"github.com/katalvlaran/treeprop/forest"
)

// Sentinel errors for factor-store operations.
var (
	// ErrOperationsNil indicates New was called without an Operations value.
	ErrOperationsNil = errors.New("factorgraph: operations are nil")

	// ErrVertexNotFound indicates the vertex is not part of the topology.
	ErrVertexNotFound = errors.New("factorgraph: vertex not found")

	// ErrEdgeNotFound indicates the ordered pair is not an edge.
	ErrEdgeNotFound = errors.New("factorgraph: edge not found")

	// ErrDuplicateFactor indicates an attempt to overwrite a stored factor.
	ErrDuplicateFactor = errors.New("factorgraph: factor already set")

	// ErrVariableMismatch indicates a factor's own variable tags disagree
	// with the vertex or arc it is stored under.
	ErrVariableMismatch = errors.New("factorgraph: factor variable mismatch")

	// ErrMissingFactor indicates a required binary factor is absent.
	ErrMissingFactor = errors.New("factorgraph: factor missing")
)

// Unary is an unnormalized non-negative measure over one variable's domain.
type Unary[V comparable] interface {
	// Variable returns the vertex this factor is attached to.
	Variable() V

	// LogNormalization returns log of the total mass, aggregated over sites
	// for vectorized representations.
	LogNormalization() float64
}

// Binary is a non-negative kernel between an ordered pair of variables.
// Marginalizing it against unaries on Marginalized() yields a unary on Other().
type Binary[V comparable] interface {
	Marginalized() V
	Other() V
}

// Operations is the algebra the generic sum-product recursion runs on.
type Operations[V comparable, U Unary[V], B Binary[V]] interface {
	// PointwiseProduct multiplies unaries over the same variable state by state.
	PointwiseProduct(factors []U) (U, error)

	// Marginalize sums the marginalized variable of b out of
	// b × Π unaries, returning a unary over b.Other().
	Marginalize(b B, unaries []U) (U, error)
}

// Graph is the factor store: a forest plus one unary per vertex and one
// binary per arc.
type Graph[V comparable, U Unary[V], B Binary[V]] struct {
	mu sync.RWMutex // guards unaries, binaries and revision

	topology *forest.Forest[V]
	ops      Operations[V, U, B]
	unaries  map[V]U
	binaries map[forest.Arc[V]]B
	revision uint64
}

// New creates an empty factor graph over a fresh forest.
func New[V comparable, U Unary[V], B Binary[V]](ops Operations[V, U, B]) (*Graph[V, U, B], error) {
	if ops == nil {
		return nil, ErrOperationsNil
	}

	return &Graph[V, U, B]{
		topology: forest.NewForest[V](),
		ops:      ops,
		unaries:  make(map[V]U),
		binaries: make(map[forest.Arc[V]]B),
	}, nil
}
