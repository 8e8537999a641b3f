package output

import (
	"fmt"
	"strings"

	"github.com/crimson-sun/vlogscan/internal/model"
)

// Verbosity controls how much of a run reaches an output.
type Verbosity int

const (
	Minimal  Verbosity = iota // findings, anomalous buckets and the summary; no raw text
	Standard                  // every record; raw text only on error events
	Full                      // every record, unmodified
)

func (v Verbosity) String() string {
	switch v {
	case Minimal:
		return "minimal"
	case Full:
		return "full"
	default:
		return "standard"
	}
}

// ParseVerbosity maps "minimal", "standard" or "full" to a Verbosity.
// Empty selects Standard.
func ParseVerbosity(s string) (Verbosity, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "minimal":
		return Minimal, nil
	case "", "standard":
		return Standard, nil
	case "full":
		return Full, nil
	default:
		return Standard, fmt.Errorf("unknown verbosity %q", s)
	}
}

// FormatRecord returns the record as it should be written at verbosity v,
// and false when the record should be skipped entirely. The input record
// and the event it points to are never modified.
func FormatRecord(rec model.Record, v Verbosity) (model.Record, bool) {
	switch rec.Kind {
	case model.KindEvent:
		if v == Minimal || rec.Event == nil {
			return rec, false
		}
		if v == Standard && rec.Event.Err == nil && rec.Event.Raw != "" {
			ev := *rec.Event
			ev.Raw = ""
			rec.Event = &ev
		}
	case model.KindBucket:
		if v == Minimal && (rec.Bucket == nil || !rec.Bucket.IsAnomaly) {
			return rec, false
		}
	}
	return rec, true
}
