// Package metrics collects per-run Prometheus metrics on a private registry.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/crimson-sun/vlogscan/internal/model"
)

const namespace = "vlogscan"

// Metrics holds the collectors for one pipeline.
type Metrics struct {
	registry *prometheus.Registry

	LinesRead        *prometheus.CounterVec
	SourceErrors     *prometheus.CounterVec
	Events           *prometheus.CounterVec
	ParseErrors      *prometheus.CounterVec
	RecoveredEvents  prometheus.Counter
	Findings         *prometheus.CounterVec
	RuleFailures     *prometheus.CounterVec
	Buckets          prometheus.Gauge
	AnomalousBuckets prometheus.Gauge
	RunDuration      prometheus.Gauge
	LastRunTimestamp prometheus.Gauge
}

// New creates a Metrics instance registered on a fresh registry.
func New() *Metrics {
	reg := prometheus.NewRegistry()
	f := promauto.With(reg)
	return &Metrics{
		registry: reg,
		LinesRead: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "lines_read_total",
			Help:      "Non-blank input lines read, by source.",
		}, []string{"source"}),
		SourceErrors: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "source_errors_total",
			Help:      "Sources that failed to read, by source.",
		}, []string{"source"}),
		Events: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "events_total",
			Help:      "Parsed events, by category and status.",
		}, []string{"category", "status"}),
		ParseErrors: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "parse_errors_total",
			Help:      "Lines that failed to parse, by error kind.",
		}, []string{"kind"}),
		RecoveredEvents: f.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "recovered_events_total",
			Help:      "Events recovered by the lenient parser after a strict mismatch.",
		}),
		Findings: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "findings_total",
			Help:      "Suspicious-activity findings, by rule and severity.",
		}, []string{"rule", "severity"}),
		RuleFailures: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "rule_failures_total",
			Help:      "Rules that returned an error or panicked.",
		}, []string{"rule"}),
		Buckets: f.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "buckets",
			Help:      "Time buckets in the last run.",
		}),
		AnomalousBuckets: f.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "anomalous_buckets",
			Help:      "Time buckets flagged as anomalous in the last run.",
		}),
		RunDuration: f.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "run_duration_seconds",
			Help:      "Wall time of the last run.",
		}),
		LastRunTimestamp: f.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "last_run_timestamp_seconds",
			Help:      "Unix time the last run finished.",
		}),
	}
}

// Registry exposes the private registry, for HTTP handlers or tests.
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

// ObserveEvent records one parsed event.
func (m *Metrics) ObserveEvent(ev model.Event) {
	m.Events.WithLabelValues(string(ev.Category), ev.Status()).Inc()
	if ev.Err != nil {
		m.ParseErrors.WithLabelValues(string(ev.Err.Kind)).Inc()
	}
	if ev.Mode == model.ModeLenient && ev.Err == nil {
		m.RecoveredEvents.Inc()
	}
}

// ObserveFinding records one finding.
func (m *Metrics) ObserveFinding(f model.Finding) {
	m.Findings.WithLabelValues(f.Rule, string(f.Severity)).Inc()
}

// ObserveRun records run-level gauges.
func (m *Metrics) ObserveRun(s model.Summary, elapsed time.Duration, finished time.Time) {
	m.Buckets.Set(float64(s.Buckets))
	m.AnomalousBuckets.Set(float64(s.AnomalousBuckets))
	m.RunDuration.Set(elapsed.Seconds())
	m.LastRunTimestamp.Set(float64(finished.Unix()))
}

// WriteTextfile writes all metrics in the node-exporter textfile format.
// The write is atomic, so a collector never sees a partial file.
func (m *Metrics) WriteTextfile(path string) error {
	return prometheus.WriteToTextfile(path, m.registry)
}
