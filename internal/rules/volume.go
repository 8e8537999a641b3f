package rules

import (
	"fmt"

	"github.com/crimson-sun/vlogscan/internal/model"
)

// VolumeThreshold emits a single run-wide finding when the number of valid
// events exceeds MaxEvents.
type VolumeThreshold struct {
	cfg VolumeConfig
}

// NewVolumeThreshold creates the rule from its config.
func NewVolumeThreshold(cfg VolumeConfig) *VolumeThreshold {
	return &VolumeThreshold{cfg: cfg}
}

func (r *VolumeThreshold) Name() string { return "volume_threshold" }

func (r *VolumeThreshold) Evaluate(events []model.Event) ([]model.Finding, error) {
	if len(events) <= r.cfg.MaxEvents {
		return nil, nil
	}
	var last int64
	for i, ev := range events {
		if i == 0 || ev.Timestamp > last {
			last = ev.Timestamp
		}
	}
	return []model.Finding{{
		Rule:      r.Name(),
		Timestamp: last,
		Detail:    fmt.Sprintf("%d events exceed the volume threshold of %d", len(events), r.cfg.MaxEvents),
		Severity:  model.SeverityMedium,
		Count:     len(events),
	}}, nil
}
