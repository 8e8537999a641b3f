package metrics

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/crimson-sun/vlogscan/internal/model"
)

func TestObserveEvent(t *testing.T) {
	m := New()

	m.ObserveEvent(model.Event{Category: model.CategoryUser, Mode: model.ModeStrict})
	m.ObserveEvent(model.Event{Category: model.CategoryNetwork, Mode: model.ModeLenient})
	m.ObserveEvent(model.Event{
		Category: model.CategoryProcess,
		Mode:     model.ModeLenient,
		Err:      &model.ParseError{Kind: model.ErrInvalidTimestamp},
	})

	assert.Equal(t, 1.0, testutil.ToFloat64(m.Events.WithLabelValues("user", "VALID")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.Events.WithLabelValues("process", "ERROR")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.ParseErrors.WithLabelValues("InvalidTimestamp")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.RecoveredEvents), "errored lenient events are not recoveries")
}

func TestObserveFinding(t *testing.T) {
	m := New()
	m.ObserveFinding(model.Finding{Rule: "ip_burst", Severity: model.SeverityMedium})
	m.ObserveFinding(model.Finding{Rule: "ip_burst", Severity: model.SeverityMedium})

	assert.Equal(t, 2.0, testutil.ToFloat64(m.Findings.WithLabelValues("ip_burst", "medium")))
}

func TestRegistriesAreIndependent(t *testing.T) {
	a, b := New(), New()
	a.RecoveredEvents.Inc()

	assert.Equal(t, 1.0, testutil.ToFloat64(a.RecoveredEvents))
	assert.Equal(t, 0.0, testutil.ToFloat64(b.RecoveredEvents))
}

func TestWriteTextfile(t *testing.T) {
	m := New()
	m.LinesRead.WithLabelValues("a.vlog").Add(12)
	m.ObserveRun(model.Summary{Buckets: 4, AnomalousBuckets: 1}, 1500*time.Millisecond, time.Unix(1700000000, 0))

	path := filepath.Join(t.TempDir(), "vlogscan.prom")
	require.NoError(t, m.WriteTextfile(path))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	text := string(data)
	assert.True(t, strings.Contains(text, `vlogscan_lines_read_total{source="a.vlog"} 12`), text)
	assert.Contains(t, text, "vlogscan_anomalous_buckets 1")
	assert.Contains(t, text, "vlogscan_run_duration_seconds 1.5")
}
