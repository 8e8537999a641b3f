package model

// SourceError records an I/O failure for one input source.
type SourceError struct {
	Source string `json:"source"`
	Error  string `json:"error"`
}

// Summary aggregates counts over one analysis run.
type Summary struct {
	RunID            string            `json:"run_id"`
	Sources          int               `json:"sources"`
	Lines            int               `json:"lines"`
	ValidEvents      int               `json:"valid_events"`
	RecoveredEvents  int               `json:"recovered_events"` // parsed leniently after strict mismatch
	ParseErrors      map[ErrorKind]int `json:"parse_errors,omitempty"`
	ByCategory       map[Category]int  `json:"by_category,omitempty"`
	ByUser           map[string]int    `json:"by_user,omitempty"`
	FindingsByRule   map[string]int    `json:"findings_by_rule,omitempty"`
	FindingsBySev    map[Severity]int  `json:"findings_by_severity,omitempty"`
	Buckets          int               `json:"buckets"`
	AnomalousBuckets int               `json:"anomalous_buckets"`
	FirstTimestamp   int64             `json:"first_timestamp,omitempty"`
	LastTimestamp    int64             `json:"last_timestamp,omitempty"`
	NoData           bool              `json:"no_data"`
	AnalysisErrors   []string          `json:"analysis_errors,omitempty"`
}

// Report is the complete output of one analysis run.
type Report struct {
	RunID          string        `json:"run_id"`
	Events         []Event       `json:"events"`
	Buckets        []TimeBucket  `json:"buckets"`
	Findings       []Finding     `json:"findings"`
	Summary        Summary       `json:"summary"`
	SourceErrors   []SourceError `json:"source_errors,omitempty"`
	RuleErrors     []string      `json:"rule_errors,omitempty"`
	AnalysisErrors []string      `json:"analysis_errors,omitempty"` // analysis stages that were skipped
}
