package vlogscan

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"strings"

	"github.com/crimson-sun/vlogscan/internal/analysis/anomaly"
	"github.com/crimson-sun/vlogscan/internal/analysis/timeseries"
	"github.com/crimson-sun/vlogscan/internal/engine"
	"github.com/crimson-sun/vlogscan/internal/engine/parser"
	"github.com/crimson-sun/vlogscan/internal/model"
	"github.com/crimson-sun/vlogscan/internal/pipeline"
	"github.com/crimson-sun/vlogscan/internal/rules"
	"github.com/crimson-sun/vlogscan/internal/source"
	"github.com/crimson-sun/vlogscan/internal/source/stream"
)

// ErrNoData is returned by Analyze when no input line yielded a valid,
// timestamped event. The accompanying report is still populated.
var ErrNoData = pipeline.ErrNoData

// ErrSpanTooLarge is returned by Analyze when the events span more buckets
// than WithMaxBuckets allows. The report still carries events and findings.
var ErrSpanTooLarge = pipeline.ErrSpanTooLarge

// Input is one named stream of vlog lines. Gzip-compressed readers are
// detected and decoded transparently.
type Input struct {
	Name   string
	Reader io.Reader
}

// Scanner parses and analyzes vlog audit logs.
// Safe for concurrent use.
type Scanner struct {
	engine   *engine.Engine
	pipeline *pipeline.Pipeline
	rules    *rules.Engine
}

// New creates a Scanner. It fails on an unknown parse mode or time basis,
// a non-positive anomaly parameter, or an invalid rules file.
func New(opts ...Option) (*Scanner, error) {
	o := defaultOptions()
	for _, opt := range opts {
		opt(&o)
	}
	logger := o.logger
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}

	mode, err := parser.ParseMode(o.mode)
	if err != nil {
		return nil, fmt.Errorf("vlogscan: %w", err)
	}
	basis, err := timeseries.ParseBasis(o.basis)
	if err != nil {
		return nil, fmt.Errorf("vlogscan: %w", err)
	}
	if o.bucketWidth < 0 {
		return nil, fmt.Errorf("vlogscan: bucket width must be positive, got %d", o.bucketWidth)
	}
	if o.maxBuckets < 0 {
		return nil, fmt.Errorf("vlogscan: max buckets must be positive, got %d", o.maxBuckets)
	}
	if o.rollingWindow < 0 || o.multiplier < 0 {
		return nil, fmt.Errorf("vlogscan: anomaly window and multiplier must be positive")
	}
	anom := anomaly.Config{Window: o.rollingWindow, Multiplier: o.multiplier}

	ruleCfg := rules.DefaultConfig()
	if o.rulesFile != "" {
		if ruleCfg, err = rules.LoadConfig(o.rulesFile); err != nil {
			return nil, fmt.Errorf("vlogscan: %w", err)
		}
	}
	if o.exhaustiveBurst {
		ruleCfg.RapidBurst.Mode = rules.BurstAll
	}
	re, err := rules.NewFromConfig(ruleCfg, rules.WithLogger(logger))
	if err != nil {
		return nil, fmt.Errorf("vlogscan: %w", err)
	}

	eng := engine.New(parser.New(mode))
	p := pipeline.New(eng, re,
		pipeline.WithLogger(logger),
		pipeline.WithConcurrency(o.concurrency),
		pipeline.WithTimeSeries(timeseries.Config{Width: o.bucketWidth, Basis: basis, MaxBuckets: o.maxBuckets}),
		pipeline.WithAnomaly(anom),
	)
	return &Scanner{engine: eng, pipeline: p, rules: re}, nil
}

// ParseLine parses and categorizes a single line. It never fails; a line
// that cannot be parsed comes back with Error set.
func (s *Scanner) ParseLine(text string) Event {
	return eventFromModel(s.engine.Process(model.Line{Text: text}))
}

// ParseLines parses a batch of lines, numbering them from 1.
func (s *Scanner) ParseLines(texts []string) []Event {
	lines := make([]model.Line, len(texts))
	for i, t := range texts {
		lines[i] = model.Line{Number: i + 1, Text: t}
	}
	evs := s.engine.ProcessBatch(lines)
	out := make([]Event, len(evs))
	for i, ev := range evs {
		out[i] = eventFromModel(ev)
	}
	return out
}

// Analyze reads every input, then runs time-series anomaly detection and
// the suspicious-activity rules over the parsed events. Read failures on
// one input are listed in Report.SourceErrors and do not stop the others.
func (s *Scanner) Analyze(ctx context.Context, inputs ...Input) (*Report, error) {
	srcs := make([]source.Source, len(inputs))
	for i, in := range inputs {
		name := in.Name
		if name == "" {
			name = fmt.Sprintf("input-%d", i+1)
		}
		srcs[i] = stream.NewReader(name, in.Reader)
	}
	r, err := s.pipeline.Run(ctx, srcs)
	if r == nil {
		return nil, err
	}
	return reportFromModel(r), err
}

// AnalyzeText is Analyze over a single in-memory block of lines.
func (s *Scanner) AnalyzeText(ctx context.Context, text string) (*Report, error) {
	return s.Analyze(ctx, Input{Name: "text", Reader: strings.NewReader(text)})
}

// Rules lists the enabled rule names in evaluation order.
func (s *Scanner) Rules() []string {
	return s.rules.Names()
}
