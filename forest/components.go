package forest

// Components partitions the vertex set into connected components.
//
// Components are ordered by their earliest vertex in insertion order; members
// of a component appear in breadth-first discovery order starting from that
// vertex. The traversal is iterative so arbitrarily long chains are safe.
//
// Complexity: O(V+E) time, O(V) memory.
func (f *Forest[V]) Components() [][]V {
	f.mu.RLock()
	defer f.mu.RUnlock()

	seen := make(map[V]bool, len(f.order))
	var out [][]V
	var queue []V
	for _, start := range f.order {
		if seen[start] {
			continue
		}
		seen[start] = true
		comp := []V{start}
		queue = append(queue[:0], start)
		for len(queue) > 0 {
			v := queue[0]
			queue = queue[1:]
			for _, n := range f.adjacency[v] {
				if !seen[n] {
					seen[n] = true
					comp = append(comp, n)
					queue = append(queue, n)
				}
			}
		}
		out = append(out, comp)
	}

	return out
}
