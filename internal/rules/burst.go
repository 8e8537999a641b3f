package rules

import (
	"fmt"
	"maps"
	"slices"

	"github.com/crimson-sun/vlogscan/internal/model"
)

// RapidBurst flags users that produce BurstSize events within WindowSeconds.
// Events with no user, or with model.UnknownUser, are left out.
// SensitiveModification differs and reports unknown-user writes under the
// "unknown" subject.
type RapidBurst struct {
	cfg RapidBurstConfig
}

// NewRapidBurst creates the rule from its config.
func NewRapidBurst(cfg RapidBurstConfig) *RapidBurst {
	if cfg.Mode == "" {
		cfg.Mode = BurstFirst
	}
	return &RapidBurst{cfg: cfg}
}

func (r *RapidBurst) Name() string { return "rapid_burst" }

func (r *RapidBurst) Evaluate(events []model.Event) ([]model.Finding, error) {
	if r.cfg.BurstSize < 2 {
		return nil, fmt.Errorf("burst size %d is below 2", r.cfg.BurstSize)
	}

	byUser := make(map[string][]int64)
	for _, ev := range events {
		if ev.User == "" || ev.User == model.UnknownUser {
			continue
		}
		byUser[ev.User] = append(byUser[ev.User], ev.Timestamp)
	}

	var findings []model.Finding
	for _, user := range slices.Sorted(maps.Keys(byUser)) {
		ts := byUser[user]
		slices.Sort(ts)
		n := r.cfg.BurstSize
		for i := 0; i+n-1 < len(ts); i++ {
			first, last := ts[i], ts[i+n-1]
			// ts is sorted, so the unsigned difference cannot wrap.
			if uint64(last)-uint64(first) > uint64(r.cfg.WindowSeconds) {
				continue
			}
			findings = append(findings, model.Finding{
				Rule:      r.Name(),
				Subject:   user,
				Timestamp: last,
				Detail:    fmt.Sprintf("user %s performed %d actions in %ds", user, n, last-first),
				Severity:  model.SeverityMedium,
				Count:     n,
			})
			if r.cfg.Mode == BurstFirst {
				break
			}
		}
	}
	return findings, nil
}
