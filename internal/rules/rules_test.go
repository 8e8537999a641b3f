package rules

import (
	"context"
	"errors"
	"fmt"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/crimson-sun/vlogscan/internal/model"
)

func userEvent(ts int64, user, path string) model.Event {
	return model.Event{Timestamp: ts, HasTimestamp: true, EventType: "XR-FILE", User: user, Path: path}
}

func connEvent(ts int64, ip string) model.Event {
	return model.Event{Timestamp: ts, HasTimestamp: true, EventType: "XR-CONN", User: model.UnknownUser, IP: ip}
}

func repeat(n int, mk func(i int) model.Event) []model.Event {
	out := make([]model.Event, n)
	for i := range out {
		out[i] = mk(i)
	}
	return out
}

type stubRule struct {
	name     string
	findings []model.Finding
	err      error
	panics   bool
}

func (s stubRule) Name() string { return s.name }

func (s stubRule) Evaluate([]model.Event) ([]model.Finding, error) {
	if s.panics {
		panic("boom")
	}
	return s.findings, s.err
}

func TestRunConcatenatesInRegistrationOrder(t *testing.T) {
	eng := New([]Rule{
		stubRule{name: "b", findings: []model.Finding{{Rule: "b"}}},
		stubRule{name: "a", findings: []model.Finding{{Rule: "a"}, {Rule: "a"}}},
	})

	findings, err := eng.Run(context.Background(), nil)
	require.NoError(t, err)

	got := make([]string, len(findings))
	for i, f := range findings {
		got[i] = f.Rule
	}
	assert.Equal(t, []string{"b", "a", "a"}, got)
}

func TestRunIsolatesFailingRules(t *testing.T) {
	sentinel := errors.New("bad input")
	eng := New([]Rule{
		stubRule{name: "panicky", panics: true},
		stubRule{name: "ok", findings: []model.Finding{{Rule: "ok"}}},
		stubRule{name: "erroring", err: sentinel},
	})

	findings, err := eng.Run(context.Background(), nil)
	require.Error(t, err)
	require.Len(t, findings, 1)
	assert.Equal(t, "ok", findings[0].Rule)

	assert.ErrorIs(t, err, sentinel)
	var re *RuleError
	require.ErrorAs(t, err, &re)
	assert.Equal(t, "panicky", re.Rule)
	assert.Contains(t, err.Error(), "panic: boom")
}

func TestRunCancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	findings, err := New([]Rule{stubRule{name: "x"}}).Run(ctx, nil)
	assert.Empty(t, findings)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestRunSkipsUnusableEvents(t *testing.T) {
	events := repeat(3, func(i int) model.Event { return userEvent(int64(i), "mallory", "/etc/passwd") })
	events[1].Err = &model.ParseError{Kind: model.ErrMalformedUserEvent}

	eng, err := NewFromConfig(DefaultConfig())
	require.NoError(t, err)

	findings, err := eng.Run(context.Background(), events)
	require.NoError(t, err)
	for _, f := range findings {
		assert.NotEqual(t, "sensitive_modification", f.Rule, "error events must not count")
	}
}

func TestDefaultRuleOrder(t *testing.T) {
	eng, err := NewFromConfig(DefaultConfig())
	require.NoError(t, err)
	assert.Equal(t, []string{"sensitive_modification", "rapid_burst", "ip_burst", "volume_threshold"}, eng.Names())
}

func TestRunDoesNotMutateEvents(t *testing.T) {
	events := []model.Event{
		userEvent(30, "bob", "/bin/sh"),
		userEvent(10, "bob", "/bin/ls"),
		userEvent(20, "bob", "/sbin/init"),
	}
	before := fmt.Sprint(events)

	eng, err := NewFromConfig(DefaultConfig())
	require.NoError(t, err)
	_, err = eng.Run(context.Background(), events)
	require.NoError(t, err)

	assert.Equal(t, before, fmt.Sprint(events))
}

func TestSensitiveModificationBoundary(t *testing.T) {
	r := NewSensitiveModification(DefaultConfig().SensitiveModification)

	three := repeat(3, func(i int) model.Event { return userEvent(int64(100+i), "mallory", "/etc/shadow") })
	findings, err := r.Evaluate(three)
	require.NoError(t, err)
	require.Len(t, findings, 1)
	assert.Equal(t, "mallory", findings[0].Subject)
	assert.Equal(t, model.SeverityHigh, findings[0].Severity)
	assert.Equal(t, 3, findings[0].Count)
	assert.Equal(t, int64(102), findings[0].Timestamp)
	assert.Contains(t, findings[0].Detail, "3")

	findings, err = r.Evaluate(three[:2])
	require.NoError(t, err)
	assert.Empty(t, findings)
}

func TestSensitiveModificationMatching(t *testing.T) {
	r := NewSensitiveModification(DefaultConfig().SensitiveModification)

	assert.True(t, r.Matches("/etc/passwd"))
	assert.True(t, r.Matches("/bin/bash"))
	assert.True(t, r.Matches("/sbin/init"))
	assert.False(t, r.Matches("/etc/passwd.bak"))
	assert.False(t, r.Matches("/home/bin/tool"))
	assert.False(t, r.Matches(""))

	legacy := DefaultConfig().SensitiveModification
	legacy.Contains = []string{"/etc/passwd"}
	assert.True(t, NewSensitiveModification(legacy).Matches("/backup/etc/passwd.bak"))
}

func TestSensitiveModificationGroupsByUser(t *testing.T) {
	r := NewSensitiveModification(DefaultConfig().SensitiveModification)
	events := []model.Event{
		userEvent(1, "alice", "/etc/passwd"),
		userEvent(2, "bob", "/etc/passwd"),
		userEvent(3, "alice", "/bin/ls"),
		userEvent(4, "bob", "/tmp/x"),
		userEvent(5, "alice", "/sbin/reboot"),
	}

	findings, err := r.Evaluate(events)
	require.NoError(t, err)
	require.Len(t, findings, 1)
	assert.Equal(t, "alice", findings[0].Subject)
}

func TestRapidBurstFirstMode(t *testing.T) {
	r := NewRapidBurst(DefaultConfig().RapidBurst)
	events := []model.Event{
		userEvent(100, "eve", "/a"),
		userEvent(150, "eve", "/b"),
		userEvent(220, "eve", "/c"),
		userEvent(230, "eve", "/d"),
		userEvent(1000, "eve", "/e"),
	}

	findings, err := r.Evaluate(events)
	require.NoError(t, err)
	require.Len(t, findings, 1)
	assert.Equal(t, "eve", findings[0].Subject)
	assert.Equal(t, int64(220), findings[0].Timestamp)
	assert.Equal(t, model.SeverityMedium, findings[0].Severity)
}

func TestRapidBurstAllMode(t *testing.T) {
	cfg := DefaultConfig().RapidBurst
	cfg.Mode = BurstAll
	r := NewRapidBurst(cfg)
	events := []model.Event{
		userEvent(100, "eve", "/a"),
		userEvent(150, "eve", "/b"),
		userEvent(220, "eve", "/c"),
		userEvent(230, "eve", "/d"),
		userEvent(1000, "eve", "/e"),
	}

	findings, err := r.Evaluate(events)
	require.NoError(t, err)
	require.Len(t, findings, 2)
	assert.Equal(t, int64(220), findings[0].Timestamp)
	assert.Equal(t, int64(230), findings[1].Timestamp)
}

func TestRapidBurstWindowEdge(t *testing.T) {
	r := NewRapidBurst(DefaultConfig().RapidBurst)

	inside := []model.Event{userEvent(0, "u", ""), userEvent(60, "u", ""), userEvent(120, "u", "")}
	findings, err := r.Evaluate(inside)
	require.NoError(t, err)
	assert.Len(t, findings, 1)

	outside := []model.Event{userEvent(0, "u", ""), userEvent(60, "u", ""), userEvent(121, "u", "")}
	findings, err = r.Evaluate(outside)
	require.NoError(t, err)
	assert.Empty(t, findings)
}

func TestRapidBurstIgnoresUnknownUser(t *testing.T) {
	r := NewRapidBurst(DefaultConfig().RapidBurst)
	events := repeat(10, func(i int) model.Event { return connEvent(int64(i), "10.0.0.1") })

	findings, err := r.Evaluate(events)
	require.NoError(t, err)
	assert.Empty(t, findings)
}

func TestUnknownUserOnlyGroupedBySensitiveModification(t *testing.T) {
	events := repeat(3, func(i int) model.Event {
		return userEvent(int64(100+i), model.UnknownUser, "/etc/shadow")
	})
	cfg := DefaultConfig()

	findings, err := NewSensitiveModification(cfg.SensitiveModification).Evaluate(events)
	require.NoError(t, err)
	require.Len(t, findings, 1)
	assert.Equal(t, model.UnknownUser, findings[0].Subject)

	findings, err = NewRapidBurst(cfg.RapidBurst).Evaluate(events)
	require.NoError(t, err)
	assert.Empty(t, findings)
}

func TestRapidBurstExtremeTimestamps(t *testing.T) {
	r := NewRapidBurst(DefaultConfig().RapidBurst)
	events := []model.Event{
		userEvent(math.MinInt64, "u", ""),
		userEvent(0, "u", ""),
		userEvent(math.MaxInt64, "u", ""),
	}

	findings, err := r.Evaluate(events)
	require.NoError(t, err)
	assert.Empty(t, findings)
}

func TestRapidBurstUnsortedInput(t *testing.T) {
	r := NewRapidBurst(DefaultConfig().RapidBurst)
	events := []model.Event{userEvent(500, "z", ""), userEvent(10, "z", ""), userEvent(40, "z", "")}

	findings, err := r.Evaluate(events)
	require.NoError(t, err)
	assert.Empty(t, findings, "sorted span is 490s")
}

func TestIPBurstBoundary(t *testing.T) {
	r := NewIPBurst(DefaultConfig().IPBurst)

	five := repeat(5, func(i int) model.Event { return connEvent(int64(i*10), "192.168.1.20") })
	findings, err := r.Evaluate(five)
	require.NoError(t, err)
	require.Len(t, findings, 1)
	assert.Equal(t, "192.168.1.20", findings[0].Subject)
	assert.Equal(t, 5, findings[0].Count)
	assert.Equal(t, int64(40), findings[0].Timestamp)

	findings, err = r.Evaluate(five[:4])
	require.NoError(t, err)
	assert.Empty(t, findings)
}

func TestVolumeThreshold(t *testing.T) {
	r := NewVolumeThreshold(VolumeConfig{Enabled: true, MaxEvents: 3})

	findings, err := r.Evaluate(repeat(3, func(i int) model.Event { return connEvent(int64(i), "1.1.1.1") }))
	require.NoError(t, err)
	assert.Empty(t, findings)

	findings, err = r.Evaluate(repeat(4, func(i int) model.Event { return connEvent(int64(10-i), "1.1.1.1") }))
	require.NoError(t, err)
	require.Len(t, findings, 1)
	assert.Equal(t, 4, findings[0].Count)
	assert.Equal(t, int64(10), findings[0].Timestamp)
	assert.Empty(t, findings[0].Subject)
}
