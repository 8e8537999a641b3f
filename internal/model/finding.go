package model

// Severity ranks a Finding.
type Severity string

const (
	SeverityLow    Severity = "low"
	SeverityMedium Severity = "medium"
	SeverityHigh   Severity = "high"
)

// Rank orders severities: high > medium > low. Unknown values rank 0.
func (s Severity) Rank() int {
	switch s {
	case SeverityHigh:
		return 3
	case SeverityMedium:
		return 2
	case SeverityLow:
		return 1
	default:
		return 0
	}
}

// Finding is a suspicious-activity detection emitted by one rule.
type Finding struct {
	Rule      string   `json:"rule"`
	Subject   string   `json:"subject,omitempty"` // user or ip; empty for run-wide findings
	Timestamp int64    `json:"timestamp"`         // max timestamp contributing to the finding
	Detail    string   `json:"detail"`
	Severity  Severity `json:"severity"`
	Count     int      `json:"count"` // events backing the finding
}
