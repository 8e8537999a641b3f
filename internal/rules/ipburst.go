package rules

import (
	"fmt"
	"maps"
	"slices"

	"github.com/crimson-sun/vlogscan/internal/model"
)

// IPBurst flags source addresses with at least MinCount connection events.
type IPBurst struct {
	cfg IPBurstConfig
}

// NewIPBurst creates the rule from its config.
func NewIPBurst(cfg IPBurstConfig) *IPBurst {
	return &IPBurst{cfg: cfg}
}

func (r *IPBurst) Name() string { return "ip_burst" }

func (r *IPBurst) Evaluate(events []model.Event) ([]model.Finding, error) {
	byIP := make(map[string]*tally)
	for _, ev := range events {
		if ev.IP == "" {
			continue
		}
		t := byIP[ev.IP]
		if t == nil {
			t = &tally{}
			byIP[ev.IP] = t
		}
		t.add(ev.Timestamp)
	}

	var findings []model.Finding
	for _, ip := range slices.Sorted(maps.Keys(byIP)) {
		t := byIP[ip]
		if t.count < r.cfg.MinCount {
			continue
		}
		findings = append(findings, model.Finding{
			Rule:      r.Name(),
			Subject:   ip,
			Timestamp: t.lastTS,
			Detail:    fmt.Sprintf("%d connection events from %s", t.count, ip),
			Severity:  model.SeverityMedium,
			Count:     t.count,
		})
	}
	return findings, nil
}
