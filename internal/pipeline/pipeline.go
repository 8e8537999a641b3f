package pipeline

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/crimson-sun/vlogscan/internal/analysis/anomaly"
	"github.com/crimson-sun/vlogscan/internal/analysis/timeseries"
	"github.com/crimson-sun/vlogscan/internal/metrics"
	"github.com/crimson-sun/vlogscan/internal/model"
	"github.com/crimson-sun/vlogscan/internal/output"
	"github.com/crimson-sun/vlogscan/internal/rules"
	"github.com/crimson-sun/vlogscan/internal/source"
)

// ErrNoData is returned by Run when no input line produced a usable event.
// The report is still returned, with Summary.NoData set.
var ErrNoData = fmt.Errorf("pipeline: %w", timeseries.ErrNoData)

// ErrSpanTooLarge is returned by Run, alongside a report with findings but no
// buckets, when the timestamps span more windows than the bucket limit.
var ErrSpanTooLarge = fmt.Errorf("pipeline: %w", timeseries.ErrSpanTooLarge)

const defaultConcurrency = 4

// Processor turns raw lines into events. *engine.Engine implements it.
type Processor interface {
	ProcessBatch(lines []model.Line) []model.Event
}

// RuleRunner evaluates suspicious-activity rules. *rules.Engine implements it.
type RuleRunner interface {
	Run(ctx context.Context, events []model.Event) ([]model.Finding, error)
}

// Option configures a Pipeline.
type Option func(*Pipeline)

// WithOutput sets where records are written after each run.
func WithOutput(o output.Output) Option {
	return func(p *Pipeline) { p.output = o }
}

// WithMetrics records run metrics into m.
func WithMetrics(m *metrics.Metrics) Option {
	return func(p *Pipeline) { p.metrics = m }
}

// WithLogger sets the pipeline logger. Default: slog.Default().
func WithLogger(l *slog.Logger) Option {
	return func(p *Pipeline) { p.logger = l }
}

// WithConcurrency bounds how many sources are read at once. Default: 4.
func WithConcurrency(n int) Option {
	return func(p *Pipeline) { p.concurrency = n }
}

// WithTimeSeries sets bucket width and time basis.
func WithTimeSeries(cfg timeseries.Config) Option {
	return func(p *Pipeline) { p.series = cfg }
}

// WithAnomaly sets the rolling window and multiplier.
func WithAnomaly(cfg anomaly.Config) Option {
	return func(p *Pipeline) { p.anomaly = cfg }
}

// WithRunID fixes the run ID instead of generating a UUID.
func WithRunID(id string) Option {
	return func(p *Pipeline) { p.runID = id }
}

// Pipeline reads sources, parses lines into events, then runs time-series
// anomaly scoring and the rule engine over the same immutable event set.
type Pipeline struct {
	proc        Processor
	rules       RuleRunner
	output      output.Output
	metrics     *metrics.Metrics
	logger      *slog.Logger
	concurrency int
	series      timeseries.Config
	anomaly     anomaly.Config
	runID       string
}

// New creates a Pipeline from the given components.
func New(proc Processor, rr RuleRunner, opts ...Option) *Pipeline {
	p := &Pipeline{
		proc:        proc,
		rules:       rr,
		logger:      slog.Default(),
		concurrency: defaultConcurrency,
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Parse reads every source and returns the parsed events in timeline order,
// together with per-source read failures.
func (p *Pipeline) Parse(ctx context.Context, sources []source.Source) ([]model.Event, []model.SourceError, error) {
	lines, srcErrs, err := p.readAll(ctx, sources)
	if err != nil {
		return nil, srcErrs, err
	}
	events := p.proc.ProcessBatch(lines)
	SortTimeline(events)
	if p.metrics != nil {
		for _, ev := range events {
			p.metrics.ObserveEvent(ev)
		}
	}
	return events, srcErrs, nil
}

// Run executes one full analysis and writes the report to the configured
// output. It returns ErrNoData (alongside a report) when nothing usable was
// parsed. Rule failures do not fail the run; they are listed in
// Report.RuleErrors.
func (p *Pipeline) Run(ctx context.Context, sources []source.Source) (*model.Report, error) {
	start := time.Now()
	runID := p.runID
	if runID == "" {
		runID = uuid.NewString()
	}
	logger := p.logger.With("run_id", runID)

	events, srcErrs, err := p.Parse(ctx, sources)
	if err != nil {
		return nil, err
	}

	report := &model.Report{
		RunID:        runID,
		Events:       events,
		SourceErrors: srcErrs,
	}

	var runErr error
	if countUsable(events) == 0 {
		logger.Warn("no usable events", "lines", len(events), "sources", len(sources))
		runErr = ErrNoData
	} else if err := p.analyze(ctx, logger, report); err != nil {
		return nil, err
	} else if len(report.AnalysisErrors) > 0 {
		runErr = ErrSpanTooLarge
	}

	report.Summary = Summarize(report, len(sources))
	if p.metrics != nil {
		for _, f := range report.Findings {
			p.metrics.ObserveFinding(f)
		}
		p.metrics.ObserveRun(report.Summary, time.Since(start), time.Now())
	}

	logger.Info("run complete",
		"events", report.Summary.Lines,
		"valid", report.Summary.ValidEvents,
		"buckets", report.Summary.Buckets,
		"anomalous", report.Summary.AnomalousBuckets,
		"findings", len(report.Findings),
		"duration", time.Since(start),
	)

	if p.output != nil {
		if err := output.WriteReport(ctx, p.output, report); err != nil {
			return report, errors.Join(runErr, fmt.Errorf("pipeline output: %w", err))
		}
	}
	return report, runErr
}

// analyze fills Buckets, Findings, RuleErrors and AnalysisErrors. The
// time-series branch and the rule branch run concurrently over the same events.
func (p *Pipeline) analyze(ctx context.Context, logger *slog.Logger, report *model.Report) error {
	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		buckets, err := timeseries.Aggregate(report.Events, p.series)
		if errors.Is(err, timeseries.ErrSpanTooLarge) {
			// Rules still run; the series is left empty.
			logger.Error("time series skipped", "error", err)
			report.AnalysisErrors = append(report.AnalysisErrors, err.Error())
			return nil
		}
		if err != nil {
			return fmt.Errorf("aggregate: %w", err)
		}
		scored, err := anomaly.Detect(buckets, p.anomaly)
		if err != nil {
			return fmt.Errorf("anomaly: %w", err)
		}
		report.Buckets = scored
		return nil
	})

	g.Go(func() error {
		if p.rules == nil {
			return nil
		}
		findings, err := p.rules.Run(gctx, report.Events)
		report.Findings = findings
		for _, re := range ruleErrors(err) {
			logger.Warn("rule failed", "rule", re.Rule, "error", re.Err)
			report.RuleErrors = append(report.RuleErrors, re.Error())
			if p.metrics != nil {
				p.metrics.RuleFailures.WithLabelValues(re.Rule).Inc()
			}
		}
		return gctx.Err()
	})

	return g.Wait()
}

// readAll reads sources concurrently and returns their lines concatenated
// in source order. A failing source is logged and reported; the lines it
// produced before failing are kept.
func (p *Pipeline) readAll(ctx context.Context, sources []source.Source) ([]model.Line, []model.SourceError, error) {
	perSource := make([][]model.Line, len(sources))
	errs := make([]error, len(sources))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(max(1, p.concurrency))
	for i, src := range sources {
		g.Go(func() error {
			lines, err := src.Lines(gctx)
			if ctxErr := gctx.Err(); ctxErr != nil {
				return ctxErr
			}
			perSource[i], errs[i] = lines, err
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, nil, err
	}

	var (
		all     []model.Line
		srcErrs []model.SourceError
	)
	for i, src := range sources {
		if errs[i] != nil {
			p.logger.Error("source failed", "source", src.Name(), "error", errs[i])
			srcErrs = append(srcErrs, model.SourceError{Source: src.Name(), Error: errs[i].Error()})
			if p.metrics != nil {
				p.metrics.SourceErrors.WithLabelValues(src.Name()).Inc()
			}
		}
		if p.metrics != nil {
			p.metrics.LinesRead.WithLabelValues(src.Name()).Add(float64(len(perSource[i])))
		}
		p.logger.Debug("source read", "source", src.Name(), "lines", len(perSource[i]))
		all = append(all, perSource[i]...)
	}
	return all, srcErrs, nil
}

// ruleErrors unpacks the joined error returned by a RuleRunner.
func ruleErrors(err error) []*rules.RuleError {
	if err == nil {
		return nil
	}
	var errs []error
	if joined, ok := err.(interface{ Unwrap() []error }); ok {
		errs = joined.Unwrap()
	} else {
		errs = []error{err}
	}
	var out []*rules.RuleError
	for _, e := range errs {
		var re *rules.RuleError
		if errors.As(e, &re) {
			out = append(out, re)
		} else {
			out = append(out, &rules.RuleError{Rule: "engine", Err: e})
		}
	}
	return out
}

func countUsable(events []model.Event) int {
	n := 0
	for _, ev := range events {
		if ev.Usable() {
			n++
		}
	}
	return n
}
