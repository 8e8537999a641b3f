package pipeline

import (
	"sort"

	"github.com/crimson-sun/vlogscan/internal/model"
)

// SortTimeline orders events by timestamp, oldest first. Events without a
// timestamp keep their relative input order after all timed events; ties
// keep input order.
func SortTimeline(events []model.Event) {
	sort.SliceStable(events, func(i, j int) bool {
		a, b := events[i], events[j]
		if a.HasTimestamp != b.HasTimestamp {
			return a.HasTimestamp
		}
		return a.HasTimestamp && a.Timestamp < b.Timestamp
	})
}
