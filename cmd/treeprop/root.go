package main

import (
	"errors"
	"io"
	"log/slog"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/katalvlaran/treeprop/discrete"
	"github.com/katalvlaran/treeprop/internal/config"
	"github.com/katalvlaran/treeprop/internal/telemetry"
	"github.com/katalvlaran/treeprop/model"
	"github.com/katalvlaran/treeprop/sumproduct"
)

var errMissingModel = errors.New("treeprop: --model is required")

// app carries what every subcommand needs once the root has run.
type app struct {
	out     io.Writer
	errOut  io.Writer
	cfg     config.Config
	logger  *slog.Logger
	metrics *telemetry.Metrics

	configPath string
	modelPath  string
	logLevel   string
	logFormat  string
	textfile   string
}

func newRootCmd(out, errOut io.Writer) *cobra.Command {
	a := &app{out: out, errOut: errOut}

	root := &cobra.Command{
		Use:           "treeprop",
		Short:         "Exact inference and sampling on tree factor graphs",
		SilenceUsage:  true,
		SilenceErrors: false,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			return a.setup(cmd)
		},
		PersistentPostRunE: func(_ *cobra.Command, _ []string) error {
			return a.flushMetrics()
		},
	}
	root.SetOut(out)
	root.SetErr(errOut)

	pf := root.PersistentFlags()
	pf.StringVar(&a.configPath, "config", "", "YAML settings file")
	pf.StringVarP(&a.modelPath, "model", "m", "", "YAML model file (required)")
	pf.StringVar(&a.logLevel, "log-level", "", "debug, info, warn or error")
	pf.StringVar(&a.logFormat, "log-format", "", "text or json")
	pf.StringVar(&a.textfile, "metrics-textfile", "", "write Prometheus metrics to this file on exit")

	root.AddCommand(a.logzCmd(), a.marginalsCmd(), a.sampleCmd())

	return root
}

// setup merges config sources; flags win over file and environment.
func (a *app) setup(cmd *cobra.Command) error {
	cfg, err := config.Load(a.configPath)
	if err != nil {
		return err
	}
	flags := cmd.Flags()
	if flags.Changed("log-level") {
		cfg.Log.Level = a.logLevel
	}
	if flags.Changed("log-format") {
		cfg.Log.Format = a.logFormat
	}
	if flags.Changed("metrics-textfile") {
		cfg.Metrics.Textfile = a.textfile
	}
	if err = cfg.Validate(); err != nil {
		return err
	}
	a.cfg = cfg

	if a.logger, err = telemetry.NewLogger(a.errOut, cfg.Log.Level, cfg.Log.Format); err != nil {
		return err
	}
	a.metrics = telemetry.NewMetrics()

	return nil
}

func (a *app) flushMetrics() error {
	if a.cfg.Metrics.Textfile == "" || a.metrics == nil {
		return nil
	}
	a.logger.Debug("writing metrics", slog.String("path", a.cfg.Metrics.Textfile))

	return a.metrics.WriteTextfile(a.cfg.Metrics.Textfile)
}

// loadModel reads --model and builds the discrete model.
func (a *app) loadModel() (*discrete.Model[string], error) {
	if a.modelPath == "" {
		return nil, errMissingModel
	}
	spec, err := model.Load(a.modelPath)
	if err != nil {
		return nil, err
	}
	m, err := spec.Build()
	if err != nil {
		return nil, err
	}
	a.logger.Info("model loaded",
		slog.String("path", a.modelPath),
		slog.Int("variables", len(spec.Variables)),
		slog.Int("edges", len(spec.Edges)))

	return m, nil
}

// engine builds an instrumented sum-product engine over m.
func (a *app) engine(m *discrete.Model[string]) (*discrete.Engine[string], error) {
	return m.Engine(sumproduct.WithLogger(a.logger), sumproduct.WithObserver(a.metrics))
}

func (a *app) emit(v any) error {
	enc := yaml.NewEncoder(a.out)
	enc.SetIndent(2)
	if err := enc.Encode(v); err != nil {
		return err
	}

	return enc.Close()
}
