package pipeline

import (
	"github.com/crimson-sun/vlogscan/internal/model"
)

// Summarize derives the run summary from a filled report.
func Summarize(r *model.Report, sources int) model.Summary {
	s := model.Summary{
		RunID:          r.RunID,
		Sources:        sources,
		Lines:          len(r.Events),
		ParseErrors:    map[model.ErrorKind]int{},
		ByCategory:     map[model.Category]int{},
		ByUser:         map[string]int{},
		FindingsByRule: map[string]int{},
		FindingsBySev:  map[model.Severity]int{},
		Buckets:        len(r.Buckets),
	}

	first := true
	for _, ev := range r.Events {
		if ev.Err != nil {
			s.ParseErrors[ev.Err.Kind]++
			continue
		}
		if !ev.HasTimestamp {
			continue
		}
		s.ValidEvents++
		if ev.Mode == model.ModeLenient {
			s.RecoveredEvents++
		}
		s.ByCategory[ev.Category]++
		if ev.User != model.UnknownUser {
			s.ByUser[ev.User]++
		}
		if first || ev.Timestamp < s.FirstTimestamp {
			s.FirstTimestamp = ev.Timestamp
		}
		if first || ev.Timestamp > s.LastTimestamp {
			s.LastTimestamp = ev.Timestamp
		}
		first = false
	}

	for _, b := range r.Buckets {
		if b.IsAnomaly {
			s.AnomalousBuckets++
		}
	}
	for _, f := range r.Findings {
		s.FindingsByRule[f.Rule]++
		s.FindingsBySev[f.Severity]++
	}
	s.NoData = s.ValidEvents == 0
	s.AnalysisErrors = r.AnalysisErrors
	return s
}
