package schedule

import (
	"fmt"

	"github.com/katalvlaran/treeprop/forest"
)

// postorderWalker encapsulates state during the depth-first traversal.
type postorderWalker[V comparable] struct {
	forest  *forest.Forest[V]
	visited map[V]bool
	order   []V
}

// New builds the Schedule of root's connected component.
//
// Steps:
//  1. Validate the forest pointer and the root.
//  2. Depth-first traversal from root, recording finish order.
//  3. Rank vertices by post-order index.
//  4. For every vertex, collect neighbours with a larger rank; more than one
//     means a back edge, i.e. a cycle (ErrNotATree).
func New[V comparable](f *forest.Forest[V], root V) (*Schedule[V], error) {
	// 1. Validate input
	if f == nil {
		return nil, ErrForestNil
	}
	if !f.HasVertex(root) {
		return nil, fmt.Errorf("schedule: root %v: %w", root, ErrRootNotFound)
	}

	// 2. Traverse
	w := &postorderWalker[V]{forest: f, visited: make(map[V]bool)}
	if err := w.traverse(root); err != nil {
		return nil, err
	}

	// 3. Rank
	s := &Schedule[V]{
		root:      root,
		postorder: w.order,
		rank:      make(map[V]int, len(w.order)),
		successor: make(map[V]V, len(w.order)),
	}
	for i, v := range w.order {
		s.rank[v] = i
	}

	// 4. Successors and tree check
	for i, v := range w.order {
		nbs, err := f.Neighbors(v)
		if err != nil {
			return nil, fmt.Errorf("schedule: Neighbors(%v): %w", v, err)
		}
		larger := 0
		for _, n := range nbs {
			if s.rank[n] > i {
				larger++
				s.successor[v] = n
			}
		}
		if larger > 1 {
			return nil, fmt.Errorf("schedule: vertex %v has %d successors: %w", v, larger, ErrNotATree)
		}
	}

	return s, nil
}

// traverse visits id, recursing into unvisited neighbours, then records it.
func (w *postorderWalker[V]) traverse(id V) error {
	w.visited[id] = true

	nbs, err := w.forest.Neighbors(id)
	if err != nil {
		return fmt.Errorf("schedule: Neighbors(%v): %w", id, err)
	}
	for _, nid := range nbs {
		if !w.visited[nid] {
			if err = w.traverse(nid); err != nil {
				return err
			}
		}
	}

	// Record finish order
	w.order = append(w.order, id)

	return nil
}

// Incoming returns the arcs n → v for every neighbour n of v, in neighbour
// insertion order.
func Incoming[V comparable](f *forest.Forest[V], v V) ([]forest.Arc[V], error) {
	return incoming(f, v, nil)
}

// IncomingExcept returns the arcs n → v for every neighbour n of v other
// than excluded. excluded need not be adjacent to v.
func IncomingExcept[V comparable](f *forest.Forest[V], v, excluded V) ([]forest.Arc[V], error) {
	return incoming(f, v, &excluded)
}

func incoming[V comparable](f *forest.Forest[V], v V, excluded *V) ([]forest.Arc[V], error) {
	if f == nil {
		return nil, ErrForestNil
	}
	nbs, err := f.Neighbors(v)
	if err != nil {
		return nil, fmt.Errorf("schedule: Neighbors(%v): %w", v, err)
	}
	out := make([]forest.Arc[V], 0, len(nbs))
	for _, n := range nbs {
		if excluded != nil && n == *excluded {
			continue
		}
		out = append(out, forest.Arc[V]{From: n, To: v})
	}

	return out, nil
}
