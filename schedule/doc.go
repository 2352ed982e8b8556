// Package schedule derives deterministic message-passing orders for one
// connected component of a forest.
//
// What:
//
//   - New(f, root) runs a depth-first traversal restricted to root's
//     component and records the post-order. Every non-root vertex must have
//     exactly one neighbour with a strictly larger post-order index (its
//     successor toward the root); otherwise the component contains a cycle
//     and ErrNotATree is returned.
//   - Forward() lists, in post-order, one arc (v → successor(v)) per non-root
//     vertex: information flows leaves → root.
//   - Backward() lists the same arcs reversed in both order and direction:
//     root → leaves.
//   - Incoming / IncomingExcept enumerate the arcs (n → v) entering v, the
//     query a message computation needs to gather its prerequisites.
//
// Why:
//
//   - Sum-product needs every message on the far side of an arc before the
//     arc itself; Forward() followed by Backward() is such an order.
//   - Exact sampling walks Backward() from a root, drawing each vertex after
//     its predecessor.
//
// Complexity:
//
//   - New:      Time O(V+E) over the component, Memory O(V)
//   - Incoming: Time O(d)
//
// Errors:
//
//   - ErrForestNil        forest pointer is nil
//   - ErrRootNotFound     root vertex not in forest
//   - ErrNotATree         root's component contains a cycle
//   - forest errors       propagated (wrapped) from neighbour lookups
package schedule
