package vlogscan

import "github.com/crimson-sun/vlogscan/internal/model"

// Event is one parsed vlog line.
// This is the stable public type; internal representations may evolve
// independently without breaking consumers.
type Event struct {
	ID        string `json:"id,omitempty"`
	Timestamp int64  `json:"timestamp"`        // Unix seconds; zero when HasTime is false
	HasTime   bool   `json:"has_timestamp"`    // False when the line carried no usable ts field
	EventType string `json:"event_type"`       // XR-EXEC, XR-CONN, ... or UNKNOWN
	Action    string `json:"action,omitempty"` // run, write, KILL, ...
	User      string `json:"user"`             // "unknown" when absent
	Path      string `json:"path,omitempty"`   // Target path of user events
	IP        string `json:"ip,omitempty"`     // Remote address of network events
	PID       int    `json:"pid,omitempty"`    // Process ID of process events
	Category  string `json:"category"`         // network, user, file, process
	Mode      string `json:"mode"`             // strict or lenient
	Source    string `json:"source,omitempty"` // Input name
	Line      int    `json:"line,omitempty"`   // 1-based line number in Source
	Raw       string `json:"raw,omitempty"`    // Original line text
	Error     string `json:"error,omitempty"`  // Parse error kind, empty when valid
	Detail    string `json:"error_detail,omitempty"`
}

// Valid reports whether the line parsed without error.
func (e Event) Valid() bool { return e.Error == "" }

// Bucket is one fixed-width time window with its anomaly score.
type Bucket = model.TimeBucket

// Finding is one suspicious-activity rule hit.
type Finding = model.Finding

// Summary aggregates counts over one analysis.
type Summary = model.Summary

// Report is the result of Analyze.
type Report struct {
	RunID          string    `json:"run_id"`
	Events         []Event   `json:"events"`
	Buckets        []Bucket  `json:"buckets"`
	Findings       []Finding `json:"findings"`
	Summary        Summary   `json:"summary"`
	SourceErrors   []string  `json:"source_errors,omitempty"`
	RuleErrors     []string  `json:"rule_errors,omitempty"`
	AnalysisErrors []string  `json:"analysis_errors,omitempty"`
}

func eventFromModel(ev model.Event) Event {
	out := Event{
		ID:        ev.ID,
		Timestamp: ev.Timestamp,
		HasTime:   ev.HasTimestamp,
		EventType: ev.EventType,
		Action:    ev.Action,
		User:      ev.User,
		Path:      ev.Path,
		IP:        ev.IP,
		PID:       ev.PID,
		Category:  string(ev.Category),
		Mode:      string(ev.Mode),
		Source:    ev.Source,
		Line:      ev.Line,
		Raw:       ev.Raw,
	}
	if ev.Err != nil {
		out.Error = string(ev.Err.Kind)
		out.Detail = ev.Err.Detail
	}
	return out
}

func reportFromModel(r *model.Report) *Report {
	out := &Report{
		RunID:          r.RunID,
		Events:         make([]Event, len(r.Events)),
		Buckets:        r.Buckets,
		Findings:       r.Findings,
		Summary:        r.Summary,
		RuleErrors:     r.RuleErrors,
		AnalysisErrors: r.AnalysisErrors,
	}
	for i, ev := range r.Events {
		out.Events[i] = eventFromModel(ev)
	}
	for _, se := range r.SourceErrors {
		out.SourceErrors = append(out.SourceErrors, se.Source+": "+se.Error)
	}
	return out
}
