package sumproduct

import (
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"github.com/katalvlaran/treeprop/factorgraph"
	"github.com/katalvlaran/treeprop/forest"
	"github.com/katalvlaran/treeprop/schedule"
)

var (
	// ErrGraphNil is returned when New receives a nil graph.
	ErrGraphNil = errors.New("sumproduct: graph is nil")

	// ErrStaleGraph indicates the graph changed after the engine was built.
	ErrStaleGraph = errors.New("sumproduct: graph modified after construction")

	// ErrMissingMessage indicates a prerequisite message was not cached.
	ErrMissingMessage = errors.New("sumproduct: prerequisite message missing")

	// ErrMessageOverwrite indicates an attempt to recompute a cached message.
	ErrMessageOverwrite = errors.New("sumproduct: message already computed")

	// ErrNoFactors indicates a vertex with neither a unary nor neighbours.
	ErrNoFactors = errors.New("sumproduct: no factors at vertex")
)

// SumProduct owns the message cache for one snapshot of a factor graph.
type SumProduct[V comparable, U factorgraph.Unary[V], B factorgraph.Binary[V]] struct {
	mu sync.Mutex // guards cache and per-component counters

	graph    *factorgraph.Graph[V, U, B]
	revision uint64

	cache     map[forest.Arc[V]]U
	component map[V]int // vertex → component index
	sizes     []int     // vertices per component
	filled    []int     // cached messages per component
	roots     []V       // representative vertex per component

	logger   *slog.Logger
	observer Observer
}

// New builds an engine over g. Both orientations of every edge must carry a
// binary factor.
func New[V comparable, U factorgraph.Unary[V], B factorgraph.Binary[V]](
	g *factorgraph.Graph[V, U, B], opts ...Option,
) (*SumProduct[V, U, B], error) {
	if g == nil {
		return nil, ErrGraphNil
	}
	if err := g.Validate(); err != nil {
		return nil, fmt.Errorf("sumproduct: %w", err)
	}

	o := defaultOptions()
	for _, fn := range opts {
		fn(&o)
	}

	comps := g.Forest().Components()
	sp := &SumProduct[V, U, B]{
		graph:     g,
		revision:  g.Revision(),
		cache:     make(map[forest.Arc[V]]U, 2*g.Forest().EdgeCount()),
		component: make(map[V]int, g.Forest().VertexCount()),
		sizes:     make([]int, len(comps)),
		filled:    make([]int, len(comps)),
		roots:     make([]V, len(comps)),
		logger:    o.logger,
		observer:  o.observer,
	}
	for i, c := range comps {
		sp.sizes[i] = len(c)
		sp.roots[i] = c[0]
		for _, v := range c {
			sp.component[v] = i
		}
	}

	return sp, nil
}

// Graph returns the factor graph this engine was built on.
func (sp *SumProduct[V, U, B]) Graph() *factorgraph.Graph[V, U, B] { return sp.graph }

// ComputeMarginal returns the unnormalized marginal of v: the pointwise
// product of every incoming message and v's unary.
func (sp *SumProduct[V, U, B]) ComputeMarginal(v V) (U, error) {
	sp.mu.Lock()
	defer sp.mu.Unlock()

	return sp.marginalLocked(v, nil)
}

// ComputeSubtreeMarginal is ComputeMarginal without the message
// excluded → v, i.e. the measure of the part of the tree on v's side of the
// edge {v, excluded}.
func (sp *SumProduct[V, U, B]) ComputeSubtreeMarginal(v, excluded V) (U, error) {
	sp.mu.Lock()
	defer sp.mu.Unlock()

	return sp.marginalLocked(v, &excluded)
}

// LogNormalization returns the log partition function: the sum, over
// connected components, of the log-normalization of one vertex marginal.
func (sp *SumProduct[V, U, B]) LogNormalization() (float64, error) {
	sp.mu.Lock()
	defer sp.mu.Unlock()

	var sum float64
	for _, root := range sp.roots {
		m, err := sp.marginalLocked(root, nil)
		if err != nil {
			return 0, err
		}
		sum += m.LogNormalization()
	}

	return sum, nil
}

// Message returns the cached message on from → to, if any.
func (sp *SumProduct[V, U, B]) Message(from, to V) (U, bool) {
	sp.mu.Lock()
	defer sp.mu.Unlock()
	m, ok := sp.cache[forest.Arc[V]{From: from, To: to}]

	return m, ok
}

// CachedMessages returns the number of cached messages across all components.
func (sp *SumProduct[V, U, B]) CachedMessages() int {
	sp.mu.Lock()
	defer sp.mu.Unlock()

	return len(sp.cache)
}

// ComponentComplete reports whether v's component holds all 2(n-1) messages.
func (sp *SumProduct[V, U, B]) ComponentComplete(v V) bool {
	sp.mu.Lock()
	defer sp.mu.Unlock()
	c, ok := sp.component[v]

	return ok && sp.filled[c] == 2*(sp.sizes[c]-1)
}

// marginalLocked gathers incoming messages (minus excluded) and the unary.
func (sp *SumProduct[V, U, B]) marginalLocked(v V, excluded *V) (U, error) {
	var zero U
	if err := sp.ensureLocked(v); err != nil {
		return zero, err
	}

	var in []forest.Arc[V]
	var err error
	if excluded != nil {
		in, err = schedule.IncomingExcept(sp.graph.Forest(), v, *excluded)
	} else {
		in, err = schedule.Incoming(sp.graph.Forest(), v)
	}
	if err != nil {
		return zero, fmt.Errorf("sumproduct: marginal(%v): %w", v, err)
	}

	factors, err := sp.gatherLocked(v, in)
	if err != nil {
		return zero, err
	}
	if len(factors) == 0 {
		return zero, fmt.Errorf("sumproduct: marginal(%v): %w", v, ErrNoFactors)
	}

	return sp.graph.Ops().PointwiseProduct(factors)
}

// gatherLocked collects the cached messages on arcs plus v's own unary.
func (sp *SumProduct[V, U, B]) gatherLocked(v V, arcs []forest.Arc[V]) ([]U, error) {
	factors := make([]U, 0, len(arcs)+1)
	for _, a := range arcs {
		m, ok := sp.cache[a]
		if !ok {
			return nil, fmt.Errorf("sumproduct: arc %v: %w", a, ErrMissingMessage)
		}
		factors = append(factors, m)
	}
	u, ok, err := sp.graph.Unary(v)
	if err != nil {
		return nil, fmt.Errorf("sumproduct: %w", err)
	}
	if ok {
		factors = append(factors, u)
	}

	return factors, nil
}

// ensureLocked makes v's component complete, computing only absent messages.
func (sp *SumProduct[V, U, B]) ensureLocked(root V) error {
	if sp.graph.Revision() != sp.revision {
		return ErrStaleGraph
	}
	c, ok := sp.component[root]
	if !ok {
		return fmt.Errorf("sumproduct: vertex %v: %w", root, factorgraph.ErrVertexNotFound)
	}
	if sp.filled[c] == 2*(sp.sizes[c]-1) {
		return nil
	}

	s, err := schedule.New(sp.graph.Forest(), root)
	if err != nil {
		return fmt.Errorf("sumproduct: %w", err)
	}

	computed := 0
	for _, pass := range [][]forest.Arc[V]{s.Forward(), s.Backward()} {
		for _, arc := range pass {
			if _, done := sp.cache[arc]; done {
				continue
			}
			if err = sp.computeMessageLocked(c, arc); err != nil {
				return err
			}
			computed++
		}
	}

	sp.logger.Debug("sum-product sweep",
		slog.Any("root", root),
		slog.Int("component_size", sp.sizes[c]),
		slog.Int("computed", computed))
	if sp.observer != nil {
		sp.observer.SweepCompleted(computed)
	}

	return nil
}

// computeMessageLocked fills the cache entry for arc s → d.
func (sp *SumProduct[V, U, B]) computeMessageLocked(c int, arc forest.Arc[V]) error {
	if _, ok := sp.cache[arc]; ok {
		return fmt.Errorf("sumproduct: arc %v: %w", arc, ErrMessageOverwrite)
	}

	in, err := schedule.IncomingExcept(sp.graph.Forest(), arc.From, arc.To)
	if err != nil {
		return fmt.Errorf("sumproduct: arc %v: %w", arc, err)
	}
	factors, err := sp.gatherLocked(arc.From, in)
	if err != nil {
		return err
	}
	b, err := sp.graph.Binary(arc.From, arc.To)
	if err != nil {
		return fmt.Errorf("sumproduct: %w", err)
	}
	msg, err := sp.graph.Ops().Marginalize(b, factors)
	if err != nil {
		return fmt.Errorf("sumproduct: marginalize %v: %w", arc, err)
	}

	sp.cache[arc] = msg
	sp.filled[c]++
	if sp.observer != nil {
		sp.observer.MessageComputed()
	}

	return nil
}
