// Package telemetry builds the command's logger and metrics.
package telemetry

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// ErrUnknownLogFormat indicates a log format other than text or json.
var ErrUnknownLogFormat = errors.New("telemetry: unknown log format")

// NewLogger returns a slog logger writing to w at the named level
// ("debug", "info", "warn", "error") in "text" or "json" format.
func NewLogger(w io.Writer, level, format string) (*slog.Logger, error) {
	var lvl slog.Level
	if err := lvl.UnmarshalText([]byte(level)); err != nil {
		return nil, fmt.Errorf("telemetry: log level %q: %w", level, err)
	}
	opts := &slog.HandlerOptions{Level: lvl}

	switch strings.ToLower(format) {
	case "text", "":
		return slog.New(slog.NewTextHandler(w, opts)), nil
	case "json":
		return slog.New(slog.NewJSONHandler(w, opts)), nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownLogFormat, format)
	}
}

// Metrics counts engine and sampler events on a private registry. It
// satisfies both sumproduct.Observer and sampler.Observer.
type Metrics struct {
	registry *prometheus.Registry

	messages       prometheus.Counter
	sweeps         prometheus.Counter
	sweepSize      prometheus.Histogram
	samples        prometheus.Counter
	sampleDuration prometheus.Histogram
}

// NewMetrics registers the treeprop metrics on a fresh registry.
func NewMetrics() *Metrics {
	reg := prometheus.NewRegistry()
	f := promauto.With(reg)

	return &Metrics{
		registry: reg,
		messages: f.NewCounter(prometheus.CounterOpts{
			Name: "treeprop_messages_computed_total",
			Help: "Sum-product messages computed and cached",
		}),
		sweeps: f.NewCounter(prometheus.CounterOpts{
			Name: "treeprop_sweeps_total",
			Help: "Scheduling sweeps run by sum-product engines",
		}),
		sweepSize: f.NewHistogram(prometheus.HistogramOpts{
			Name:    "treeprop_sweep_messages",
			Help:    "Messages computed per sweep",
			Buckets: prometheus.ExponentialBuckets(1, 4, 10),
		}),
		samples: f.NewCounter(prometheus.CounterOpts{
			Name: "treeprop_samples_drawn_total",
			Help: "Joint samples drawn",
		}),
		sampleDuration: f.NewHistogram(prometheus.HistogramOpts{
			Name:    "treeprop_sample_duration_seconds",
			Help:    "Wall time of one joint sample",
			Buckets: prometheus.ExponentialBuckets(0.000001, 4, 12), // 1µs to ~4s
		}),
	}
}

// Registry exposes the private registry, e.g. for a custom exporter.
func (m *Metrics) Registry() *prometheus.Registry { return m.registry }

// MessageComputed implements sumproduct.Observer.
func (m *Metrics) MessageComputed() { m.messages.Inc() }

// SweepCompleted implements sumproduct.Observer.
func (m *Metrics) SweepCompleted(computed int) {
	m.sweeps.Inc()
	m.sweepSize.Observe(float64(computed))
}

// SampleDrawn implements sampler.Observer.
func (m *Metrics) SampleDrawn(elapsed time.Duration) {
	m.samples.Inc()
	m.sampleDuration.Observe(elapsed.Seconds())
}

// WriteTextfile writes the registry in the text exposition format, for
// node_exporter's textfile collector.
func (m *Metrics) WriteTextfile(path string) error {
	if err := prometheus.WriteToTextfile(path, m.registry); err != nil {
		return fmt.Errorf("telemetry: write %s: %w", path, err)
	}

	return nil
}
