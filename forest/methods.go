// File: methods.go
// Role: vertex & edge lifecycle and adjacency queries.
//
// Determinism:
//   - Vertices() and Neighbors() follow insertion order.
package forest

// AddVertex inserts v if missing (idempotent).
// Complexity: O(1) amortized.
func (f *Forest[V]) AddVertex(v V) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.addVertexLocked(v)

	return nil
}

// addVertexLocked registers v; the caller holds the write lock.
func (f *Forest[V]) addVertexLocked(v V) {
	if _, ok := f.index[v]; ok {
		return // no-op for existing vertex
	}
	f.index[v] = len(f.order)
	f.order = append(f.order, v)
	f.adjacency[v] = nil
}

// AddEdge inserts the undirected edge {a, b}, creating missing endpoints.
//
// Steps:
//  1. Reject a == b (ErrLoopNotAllowed).
//  2. Under the write lock, reject an existing edge (ErrMultiEdgeNotAllowed).
//  3. Register endpoints, mirror adjacency, record both arcs.
//
// Complexity: O(1) amortized.
func (f *Forest[V]) AddEdge(a, b V) error {
	// 1) Loop constraint
	if a == b {
		return ErrLoopNotAllowed
	}

	f.mu.Lock()
	defer f.mu.Unlock()

	// 2) Multi-edge constraint
	if f.edges[Arc[V]{From: a, To: b}] {
		return ErrMultiEdgeNotAllowed
	}

	// 3) Endpoints, mirrored adjacency and arcs
	f.addVertexLocked(a)
	f.addVertexLocked(b)
	f.adjacency[a] = append(f.adjacency[a], b)
	f.adjacency[b] = append(f.adjacency[b], a)
	f.edges[Arc[V]{From: a, To: b}] = true
	f.edges[Arc[V]{From: b, To: a}] = true
	f.edgeCount++

	return nil
}

// HasVertex reports whether v exists.
func (f *Forest[V]) HasVertex(v V) bool {
	f.mu.RLock()
	defer f.mu.RUnlock()
	_, ok := f.index[v]

	return ok
}

// HasEdge reports whether {a, b} is an edge; orientation is irrelevant.
func (f *Forest[V]) HasEdge(a, b V) bool {
	f.mu.RLock()
	defer f.mu.RUnlock()

	return f.edges[Arc[V]{From: a, To: b}]
}

// Neighbors returns the vertices adjacent to v in insertion order.
// The returned slice is a copy and may be modified by the caller.
//
// Errors:
//   - ErrVertexNotFound: v does not exist.
//
// Complexity: O(d).
func (f *Forest[V]) Neighbors(v V) ([]V, error) {
	f.mu.RLock()
	defer f.mu.RUnlock()

	if _, ok := f.index[v]; !ok {
		return nil, ErrVertexNotFound
	}
	nbs := f.adjacency[v]
	out := make([]V, len(nbs))
	copy(out, nbs)

	return out, nil
}

// Degree returns the number of edges incident to v.
func (f *Forest[V]) Degree(v V) (int, error) {
	f.mu.RLock()
	defer f.mu.RUnlock()

	if _, ok := f.index[v]; !ok {
		return 0, ErrVertexNotFound
	}

	return len(f.adjacency[v]), nil
}

// Vertices returns all vertices in insertion order.
// Complexity: O(V).
func (f *Forest[V]) Vertices() []V {
	f.mu.RLock()
	defer f.mu.RUnlock()

	out := make([]V, len(f.order))
	copy(out, f.order)

	return out
}

// VertexCount returns |V|.
func (f *Forest[V]) VertexCount() int {
	f.mu.RLock()
	defer f.mu.RUnlock()

	return len(f.order)
}

// EdgeCount returns |E| counting each undirected edge once.
func (f *Forest[V]) EdgeCount() int {
	f.mu.RLock()
	defer f.mu.RUnlock()

	return f.edgeCount
}

// Arcs returns both orientations of every edge, grouped per edge in the
// order edges were discovered from Vertices().
func (f *Forest[V]) Arcs() []Arc[V] {
	f.mu.RLock()
	defer f.mu.RUnlock()

	out := make([]Arc[V], 0, 2*f.edgeCount)
	for _, v := range f.order {
		for _, n := range f.adjacency[v] {
			// Emit each edge once from its earlier endpoint.
			if f.index[v] < f.index[n] {
				out = append(out, Arc[V]{From: v, To: n}, Arc[V]{From: n, To: v})
			}
		}
	}

	return out
}
