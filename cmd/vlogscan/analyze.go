package main

import (
	"errors"
	"fmt"
	"log/slog"
	"slices"
	"time"

	"github.com/spf13/cobra"

	"github.com/crimson-sun/vlogscan/internal/analysis/anomaly"
	"github.com/crimson-sun/vlogscan/internal/analysis/timeseries"
	"github.com/crimson-sun/vlogscan/internal/config"
	"github.com/crimson-sun/vlogscan/internal/engine"
	"github.com/crimson-sun/vlogscan/internal/engine/parser"
	"github.com/crimson-sun/vlogscan/internal/logging"
	"github.com/crimson-sun/vlogscan/internal/metrics"
	"github.com/crimson-sun/vlogscan/internal/output"
	"github.com/crimson-sun/vlogscan/internal/pipeline"
	"github.com/crimson-sun/vlogscan/internal/rules"
	"github.com/crimson-sun/vlogscan/internal/source"
)

func newAnalyzeCmd(f *flags) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "analyze [source...]",
		Short: "Parse, aggregate and run anomaly detection and rules",
		Long: `Analyze reads each source (a file path, an http(s) URL, or "-" for stdin;
stdin when none are given), parses every line, buckets valid events into
time windows, flags anomalous buckets and evaluates suspicious-activity rules.

Exit status is 2 when no line produced a valid timestamped event.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runAnalyze(cmd, f, args)
		},
	}
	addAnalysisFlags(cmd, f)
	return cmd
}

// app holds the components assembled from a resolved config.
type app struct {
	cfg      config.Config
	logger   *slog.Logger
	metrics  *metrics.Metrics
	sources  []source.Source
	output   output.Output
	pipeline *pipeline.Pipeline
}

func newApp(cmd *cobra.Command, f *flags, args []string) (*app, error) {
	cfg, err := loadConfig(cmd, f)
	if err != nil {
		return nil, err
	}
	logger := logging.Init(slices.Contains(cfg.Output.Destinations, "stdout"), logging.ParseLevel(cfg.LogLevel))

	mode, err := parser.ParseMode(cfg.Parser.Mode)
	if err != nil {
		return nil, err
	}
	basis, err := timeseries.ParseBasis(cfg.Analysis.Basis)
	if err != nil {
		return nil, err
	}
	re, err := rules.NewFromConfig(cfg.Rules, rules.WithLogger(logger))
	if err != nil {
		return nil, err
	}
	srcs, err := openSources(args, cfg.Source)
	if err != nil {
		return nil, err
	}
	out, err := buildOutput(cfg.Output, cmd.OutOrStdout(), logger)
	if err != nil {
		return nil, err
	}

	m := metrics.New()
	p := pipeline.New(engine.New(parser.New(mode)), re,
		pipeline.WithOutput(out),
		pipeline.WithLogger(logger),
		pipeline.WithMetrics(m),
		pipeline.WithConcurrency(cfg.Source.Concurrency),
		pipeline.WithTimeSeries(timeseries.Config{Width: cfg.Analysis.BucketWidth, Basis: basis, MaxBuckets: cfg.Analysis.MaxBuckets}),
		pipeline.WithAnomaly(anomaly.Config{Window: cfg.Analysis.RollingWindow, Multiplier: cfg.Analysis.Multiplier}),
	)
	return &app{cfg: cfg, logger: logger, metrics: m, sources: srcs, output: out, pipeline: p}, nil
}

// close flushes outputs and exports metrics when configured.
func (a *app) close() {
	if err := a.output.Close(); err != nil {
		a.logger.Error("failed to close output", "error", err)
	}
	if a.cfg.Metrics.File == "" {
		return
	}
	if err := a.metrics.WriteTextfile(a.cfg.Metrics.File); err != nil {
		a.logger.Error("failed to write metrics", "path", a.cfg.Metrics.File, "error", err)
	}
}

func runAnalyze(cmd *cobra.Command, f *flags, args []string) error {
	start := time.Now()
	a, err := newApp(cmd, f, args)
	if err != nil {
		return err
	}

	a.logger.Info("starting analysis",
		"sources", len(a.sources),
		"mode", a.cfg.Parser.Mode,
		"window", a.cfg.Analysis.BucketWidth,
		"outputs", a.cfg.Output.Destinations,
	)

	report, runErr := a.pipeline.Run(cmd.Context(), a.sources)
	a.close()

	if report != nil {
		printSummary(cmd.ErrOrStderr(), report, time.Since(start))
	}
	switch {
	case errors.Is(runErr, pipeline.ErrNoData):
		return &exitError{code: 2, err: runErr}
	case runErr != nil:
		return fmt.Errorf("analyze: %w", runErr)
	}
	return nil
}
