package main

import (
	"log/slog"
	"time"

	"github.com/spf13/cobra"

	"github.com/katalvlaran/treeprop/discrete"
	"github.com/katalvlaran/treeprop/sampler"
)

type logzResult struct {
	LogZ float64 `yaml:"log_z"`
}

type marginalResult struct {
	Variable string      `yaml:"variable"`
	Marginal [][]float64 `yaml:"marginal"`
}

func (a *app) logzCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "logz",
		Short: "Print the log partition function",
		Args:  cobra.NoArgs,
		RunE: func(*cobra.Command, []string) error {
			m, err := a.loadModel()
			if err != nil {
				return err
			}
			e, err := a.engine(m)
			if err != nil {
				return err
			}
			logZ, err := e.LogNormalization()
			if err != nil {
				return err
			}

			return a.emit(logzResult{LogZ: logZ})
		},
	}
}

func (a *app) marginalsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "marginals",
		Short: "Print the normalized marginal of every variable, per site",
		Args:  cobra.NoArgs,
		RunE: func(*cobra.Command, []string) error {
			m, err := a.loadModel()
			if err != nil {
				return err
			}
			e, err := a.engine(m)
			if err != nil {
				return err
			}
			marg, err := discrete.Marginals(e)
			if err != nil {
				return err
			}
			out := make([]marginalResult, 0, len(marg))
			for _, v := range m.Variables() {
				out = append(out, marginalResult{Variable: v, Marginal: marg[v]})
			}

			return a.emit(out)
		},
	}
}

func (a *app) sampleCmd() *cobra.Command {
	var (
		samples int
		seed    int64
		workers int
		prior   bool
	)
	cmd := &cobra.Command{
		Use:   "sample",
		Short: "Draw exact joint samples (state index per variable per site)",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			flags := cmd.Flags()
			if flags.Changed("samples") {
				a.cfg.Sampling.Samples = samples
			}
			if flags.Changed("seed") {
				a.cfg.Sampling.Seed = seed
			}
			if flags.Changed("workers") {
				a.cfg.Sampling.Workers = workers
			}
			if err := a.cfg.Validate(); err != nil {
				return err
			}

			m, err := a.loadModel()
			if err != nil {
				return err
			}
			opts := []sampler.Option{sampler.WithLogger(a.logger), sampler.WithObserver(a.metrics)}
			var s *sampler.Sampler[string, *discrete.Unary[string], *discrete.Binary[string]]
			if prior {
				s, err = sampler.NewForward(m.Graph(), discrete.Sample[string], opts...)
			} else {
				var e *discrete.Engine[string]
				if e, err = a.engine(m); err != nil {
					return err
				}
				s, err = sampler.NewPosterior(e, discrete.Sample[string], opts...)
			}
			if err != nil {
				return err
			}

			start := time.Now()
			batch, err := s.DrawMany(cmd.Context(), a.cfg.Sampling.Samples, a.cfg.Sampling.Seed, a.cfg.Sampling.Workers)
			if err != nil {
				return err
			}
			a.logger.Info("sampling finished",
				slog.Int("samples", len(batch)),
				slog.Bool("prior", prior),
				slog.Duration("elapsed", time.Since(start)))

			out := make([]map[string][]int, len(batch))
			for i, d := range batch {
				out[i] = discrete.Assignment(d)
			}

			return a.emit(out)
		},
	}
	f := cmd.Flags()
	f.IntVarP(&samples, "samples", "n", 0, "number of joint samples (default from config)")
	f.Int64Var(&seed, "seed", 0, "RNG seed; 0 selects the default seed")
	f.IntVar(&workers, "workers", 0, "parallel workers; 0 means GOMAXPROCS")
	f.BoolVar(&prior, "prior", false, "forward-sample the prior instead of the posterior")

	return cmd
}
