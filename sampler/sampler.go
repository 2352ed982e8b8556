package sampler

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math/rand"
	"runtime"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/katalvlaran/treeprop/factorgraph"
	"github.com/katalvlaran/treeprop/schedule"
	"github.com/katalvlaran/treeprop/sumproduct"
)

var (
	// ErrGraphNil is returned when NewForward receives a nil graph.
	ErrGraphNil = errors.New("sampler: graph is nil")

	// ErrEngineNil is returned when NewPosterior receives a nil engine.
	ErrEngineNil = errors.New("sampler: engine is nil")

	// ErrDrawNil is returned when no DrawFunc is supplied.
	ErrDrawNil = errors.New("sampler: draw function is nil")

	// ErrUnexpectedUnary indicates, in forward mode, a unary on a vertex
	// other than the component root.
	ErrUnexpectedUnary = errors.New("sampler: unary factor off the root")

	// ErrMissingRootFactor indicates a root with nothing to draw from.
	ErrMissingRootFactor = errors.New("sampler: root has no factor")

	// ErrInvalidCount indicates a negative batch size.
	ErrInvalidCount = errors.New("sampler: sample count must be >= 0")
)

// DrawFunc draws one dirac unary from the per-site distribution of u.
type DrawFunc[U any] func(rng *rand.Rand, u U) (U, error)

// Observer receives one call per completed joint sample.
type Observer interface {
	SampleDrawn(elapsed time.Duration)
}

// Option configures a Sampler.
type Option func(*options)

type options struct {
	logger   *slog.Logger
	observer Observer
}

// WithLogger routes debug records about batches to logger.
func WithLogger(logger *slog.Logger) Option {
	return func(o *options) {
		if logger != nil {
			o.logger = logger
		}
	}
}

// WithObserver installs an Observer.
func WithObserver(obs Observer) Option {
	return func(o *options) { o.observer = obs }
}

// Sampler draws joint samples. It is safe for concurrent use as long as each
// goroutine brings its own *rand.Rand.
type Sampler[V comparable, U factorgraph.Unary[V], B factorgraph.Binary[V]] struct {
	graph  *factorgraph.Graph[V, U, B]
	engine *sumproduct.SumProduct[V, U, B] // nil in forward mode
	draw   DrawFunc[U]

	logger   *slog.Logger
	observer Observer
}

// NewForward returns a prior sampler over g.
func NewForward[V comparable, U factorgraph.Unary[V], B factorgraph.Binary[V]](
	g *factorgraph.Graph[V, U, B], draw DrawFunc[U], opts ...Option,
) (*Sampler[V, U, B], error) {
	if g == nil {
		return nil, ErrGraphNil
	}
	if err := g.Validate(); err != nil {
		return nil, fmt.Errorf("sampler: %w", err)
	}

	return newSampler(g, nil, draw, opts)
}

// NewPosterior returns a sampler of the full posterior held by engine.
//
// The root of each component is drawn from its full marginal, so the root
// need not carry a unary of its own; only a root with neither a unary nor
// neighbours fails, with ErrMissingRootFactor.
func NewPosterior[V comparable, U factorgraph.Unary[V], B factorgraph.Binary[V]](
	engine *sumproduct.SumProduct[V, U, B], draw DrawFunc[U], opts ...Option,
) (*Sampler[V, U, B], error) {
	if engine == nil {
		return nil, ErrEngineNil
	}

	return newSampler(engine.Graph(), engine, draw, opts)
}

func newSampler[V comparable, U factorgraph.Unary[V], B factorgraph.Binary[V]](
	g *factorgraph.Graph[V, U, B], engine *sumproduct.SumProduct[V, U, B], draw DrawFunc[U], opts []Option,
) (*Sampler[V, U, B], error) {
	if draw == nil {
		return nil, ErrDrawNil
	}
	o := options{logger: slog.New(slog.DiscardHandler)}
	for _, fn := range opts {
		fn(&o)
	}

	return &Sampler[V, U, B]{graph: g, engine: engine, draw: draw, logger: o.logger, observer: o.observer}, nil
}

// Posterior reports whether s samples the posterior.
func (s *Sampler[V, U, B]) Posterior() bool { return s.engine != nil }

// Sample draws the component containing root, starting at root.
func (s *Sampler[V, U, B]) Sample(rng *rand.Rand, root V) (map[V]U, error) {
	out := make(map[V]U)
	if err := s.sampleComponent(rng, root, out); err != nil {
		return nil, err
	}

	return out, nil
}

// SampleAll draws every component of the graph. Components are visited in
// forest.Components order; forward mode roots each one at its unique
// unary-bearing vertex.
func (s *Sampler[V, U, B]) SampleAll(rng *rand.Rand) (map[V]U, error) {
	start := time.Now()
	out := make(map[V]U, s.graph.Forest().VertexCount())
	for _, comp := range s.graph.Forest().Components() {
		root, err := s.componentRoot(comp)
		if err != nil {
			return nil, err
		}
		if err = s.sampleComponent(rng, root, out); err != nil {
			return nil, err
		}
	}
	if s.observer != nil {
		s.observer.SampleDrawn(time.Since(start))
	}

	return out, nil
}

// DrawMany returns n independent SampleAll draws. Draw i uses
// NewStream(seed, i); workers <= 0 means GOMAXPROCS.
func (s *Sampler[V, U, B]) DrawMany(ctx context.Context, n int, seed int64, workers int) ([]map[V]U, error) {
	if n < 0 {
		return nil, ErrInvalidCount
	}
	if workers <= 0 {
		workers = runtime.GOMAXPROCS(0)
	}

	out := make([]map[V]U, n)
	g, gCtx := errgroup.WithContext(ctx)
	g.SetLimit(workers)
	for i := 0; i < n; i++ {
		if gCtx.Err() != nil {
			break
		}
		g.Go(func() error {
			if err := gCtx.Err(); err != nil {
				return err
			}
			draw, err := s.SampleAll(NewStream(seed, uint64(i)))
			if err != nil {
				return fmt.Errorf("sampler: draw %d: %w", i, err)
			}
			out[i] = draw

			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	s.logger.Debug("batch drawn",
		slog.Int("samples", n),
		slog.Int("workers", workers),
		slog.Bool("posterior", s.Posterior()))

	return out, nil
}

// componentRoot picks the vertex a component is sampled from.
func (s *Sampler[V, U, B]) componentRoot(comp []V) (V, error) {
	if s.Posterior() {
		return comp[0], nil
	}

	var root V
	found := false
	for _, v := range comp {
		if !s.graph.HasUnary(v) {
			continue
		}
		if found {
			return root, fmt.Errorf("sampler: component of %v: %v and %v: %w", comp[0], root, v, ErrUnexpectedUnary)
		}
		root, found = v, true
	}
	if !found {
		return root, fmt.Errorf("sampler: component of %v: %w", comp[0], ErrMissingRootFactor)
	}

	return root, nil
}

// sampleComponent fills out with one dirac per vertex of root's component.
func (s *Sampler[V, U, B]) sampleComponent(rng *rand.Rand, root V, out map[V]U) error {
	sched, err := schedule.New(s.graph.Forest(), root)
	if err != nil {
		return fmt.Errorf("sampler: %w", err)
	}

	// Stage 1: the root.
	dist, err := s.rootDistribution(root)
	if err != nil {
		return err
	}
	if out[root], err = s.draw(rng, dist); err != nil {
		return fmt.Errorf("sampler: draw %v: %w", root, err)
	}

	// Stage 2: every other vertex, parent first.
	for _, arc := range sched.Backward() {
		if dist, err = s.conditional(arc.From, arc.To, out[arc.From]); err != nil {
			return err
		}
		if out[arc.To], err = s.draw(rng, dist); err != nil {
			return fmt.Errorf("sampler: draw %v: %w", arc.To, err)
		}
	}

	return nil
}

func (s *Sampler[V, U, B]) rootDistribution(root V) (U, error) {
	var zero U
	if s.Posterior() {
		m, err := s.engine.ComputeMarginal(root)
		if errors.Is(err, sumproduct.ErrNoFactors) {
			return zero, fmt.Errorf("sampler: root %v: %w: %w", root, ErrMissingRootFactor, err)
		}

		return m, err
	}

	u, ok, err := s.graph.Unary(root)
	if err != nil {
		return zero, fmt.Errorf("sampler: %w", err)
	}
	if !ok {
		return zero, fmt.Errorf("sampler: root %v: %w", root, ErrMissingRootFactor)
	}

	return u, nil
}

// conditional returns the distribution of dst given the draw at src.
func (s *Sampler[V, U, B]) conditional(src, dst V, picked U) (U, error) {
	var zero U
	b, err := s.graph.Binary(src, dst)
	if err != nil {
		return zero, fmt.Errorf("sampler: %w", err)
	}
	ops := s.graph.Ops()
	msg, err := ops.Marginalize(b, []U{picked})
	if err != nil {
		return zero, fmt.Errorf("sampler: marginalize %v→%v: %w", src, dst, err)
	}

	if !s.Posterior() {
		if s.graph.HasUnary(dst) {
			return zero, fmt.Errorf("sampler: vertex %v: %w", dst, ErrUnexpectedUnary)
		}
		return msg, nil
	}

	sub, err := s.engine.ComputeSubtreeMarginal(dst, src)
	switch {
	case errors.Is(err, sumproduct.ErrNoFactors):
		// Leaf without a unary: the message is the whole conditional.
		return msg, nil
	case err != nil:
		return zero, err
	}

	return ops.PointwiseProduct([]U{msg, sub})
}
