// Package forest provides the undirected topology underneath a tree-structured
// factor graph: a set of opaque, comparable vertex labels joined by undirected
// edges, with adjacency queries only.
//
// The Forest F = (V,E) enforces a minimal policy:
//
//   - Undirected edges, stored mirrored: adjacency[a] holds b and adjacency[b] holds a.
//   - No self-loops (ErrLoopNotAllowed) and no parallel edges (ErrMultiEdgeNotAllowed).
//   - Acyclicity is NOT enforced on insertion; the schedule package rejects
//     components that are not trees when a traversal is requested.
//
// Determinism:
//
//   - Vertex labels are only comparable, never ordered, so every enumeration
//     (Vertices, Neighbors, Components) follows insertion order.
//
// Concurrency:
//
//   - A single sync.RWMutex guards the vertex catalog and adjacency; mutators
//     take the write lock, queries the read lock.
//
// Core Methods:
//
//	AddVertex(v V) error             // O(1), idempotent
//	AddEdge(a, b V) error            // O(1), adds missing endpoints
//	HasVertex(v V) bool              // O(1)
//	HasEdge(a, b V) bool             // O(1), orientation independent
//	Neighbors(v V) ([]V, error)      // O(d), insertion order
//	Degree(v V) (int, error)         // O(1)
//	Vertices() []V                   // O(V), insertion order
//	Components() [][]V               // O(V+E)
//
// Arc is the directed view of an edge (From → To); it keys binary factors and
// messages in the packages built on top of Forest.
//
// Errors:
//
//	ErrVertexNotFound      – missing vertex
//	ErrEdgeNotFound        – missing edge
//	ErrLoopNotAllowed      – a == b in AddEdge
//	ErrMultiEdgeNotAllowed – edge already present
package forest
