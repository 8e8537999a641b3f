package model

// RecordKind tags the payload carried by a Record.
type RecordKind string

const (
	KindEvent   RecordKind = "event"
	KindBucket  RecordKind = "bucket"
	KindFinding RecordKind = "finding"
	KindSummary RecordKind = "summary"
)

// Record is the unit written to outputs. Exactly one payload field is set,
// matching Kind.
type Record struct {
	Kind    RecordKind  `json:"kind"`
	RunID   string      `json:"run_id,omitempty"`
	Event   *Event      `json:"event,omitempty"`
	Bucket  *TimeBucket `json:"bucket,omitempty"`
	Finding *Finding    `json:"finding,omitempty"`
	Summary *Summary    `json:"summary,omitempty"`
}

// Records flattens a report into the order outputs receive it:
// events (timeline order), buckets, findings, then the summary.
func (r *Report) Records() []Record {
	recs := make([]Record, 0, len(r.Events)+len(r.Buckets)+len(r.Findings)+1)
	for i := range r.Events {
		recs = append(recs, Record{Kind: KindEvent, RunID: r.RunID, Event: &r.Events[i]})
	}
	for i := range r.Buckets {
		recs = append(recs, Record{Kind: KindBucket, RunID: r.RunID, Bucket: &r.Buckets[i]})
	}
	for i := range r.Findings {
		recs = append(recs, Record{Kind: KindFinding, RunID: r.RunID, Finding: &r.Findings[i]})
	}
	s := r.Summary
	recs = append(recs, Record{Kind: KindSummary, RunID: r.RunID, Summary: &s})
	return recs
}
