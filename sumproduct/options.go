package sumproduct

import "log/slog"

// Observer receives engine events; implementations must be cheap and safe
// for concurrent use.
type Observer interface {
	// MessageComputed is called once per newly cached message.
	MessageComputed()

	// SweepCompleted is called after each scheduling sweep with the number
	// of messages it computed. Complete components do not sweep.
	SweepCompleted(computed int)
}

// Option configures a SumProduct.
type Option func(*options)

type options struct {
	logger   *slog.Logger
	observer Observer
}

// defaultOptions returns a discarding logger and no observer.
func defaultOptions() options {
	return options{logger: slog.New(slog.DiscardHandler)}
}

// WithLogger routes debug records about sweeps to logger.
// Passing nil has no effect.
func WithLogger(logger *slog.Logger) Option {
	return func(o *options) {
		if logger != nil {
			o.logger = logger
		}
	}
}

// WithObserver installs an Observer.
func WithObserver(obs Observer) Option {
	return func(o *options) {
		o.observer = obs
	}
}
