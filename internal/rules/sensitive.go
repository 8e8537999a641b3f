package rules

import (
	"fmt"
	"maps"
	"slices"
	"strings"

	"github.com/crimson-sun/vlogscan/internal/model"
)

// SensitiveModification flags users who touch protected system paths at
// least MinCount times.
type SensitiveModification struct {
	cfg   SensitiveConfig
	exact map[string]bool
}

// NewSensitiveModification creates the rule from its config.
func NewSensitiveModification(cfg SensitiveConfig) *SensitiveModification {
	exact := make(map[string]bool, len(cfg.Exact))
	for _, p := range cfg.Exact {
		exact[p] = true
	}
	return &SensitiveModification{cfg: cfg, exact: exact}
}

func (r *SensitiveModification) Name() string { return "sensitive_modification" }

// Matches reports whether path is in the sensitive set.
func (r *SensitiveModification) Matches(path string) bool {
	if path == "" {
		return false
	}
	if r.exact[path] {
		return true
	}
	for _, p := range r.cfg.Prefixes {
		if strings.HasPrefix(path, p) {
			return true
		}
	}
	for _, s := range r.cfg.Contains {
		if strings.Contains(path, s) {
			return true
		}
	}
	return false
}

type tally struct {
	count  int
	lastTS int64
}

func (t *tally) add(ts int64) {
	if t.count == 0 || ts > t.lastTS {
		t.lastTS = ts
	}
	t.count++
}

func (r *SensitiveModification) Evaluate(events []model.Event) ([]model.Finding, error) {
	byUser := make(map[string]*tally)
	for _, ev := range events {
		if !r.Matches(ev.Path) {
			continue
		}
		t := byUser[ev.User]
		if t == nil {
			t = &tally{}
			byUser[ev.User] = t
		}
		t.add(ev.Timestamp)
	}

	var findings []model.Finding
	for _, user := range slices.Sorted(maps.Keys(byUser)) {
		t := byUser[user]
		if t.count < r.cfg.MinCount {
			continue
		}
		findings = append(findings, model.Finding{
			Rule:      r.Name(),
			Subject:   user,
			Timestamp: t.lastTS,
			Detail:    fmt.Sprintf("user %s modified sensitive paths %d times", user, t.count),
			Severity:  model.SeverityHigh,
			Count:     t.count,
		})
	}
	return findings, nil
}
