package output

import (
	"context"
	"fmt"
	"testing"

	"github.com/crimson-sun/vlogscan/internal/model"
)

func eventRecord(withErr bool) model.Record {
	ev := model.Event{
		Timestamp:    1000,
		HasTimestamp: true,
		EventType:    "XR-EXEC",
		User:         "alice",
		Path:         "/usr/bin/ls",
		Category:     model.CategoryUser,
		Raw:          "0xAB12[ts:1000]|EVNT:XR-EXEC!@run_usr:alice=>/usr/bin/ls",
	}
	if withErr {
		ev.Err = &model.ParseError{Kind: model.ErrMalformedUserEvent}
	}
	return model.Record{Kind: model.KindEvent, Event: &ev}
}

func TestFormatRecordMinimal(t *testing.T) {
	if _, ok := FormatRecord(eventRecord(false), Minimal); ok {
		t.Fatal("events should be skipped at Minimal")
	}

	calm := model.Record{Kind: model.KindBucket, Bucket: &model.TimeBucket{Count: 1}}
	if _, ok := FormatRecord(calm, Minimal); ok {
		t.Fatal("non-anomalous buckets should be skipped at Minimal")
	}

	spike := model.Record{Kind: model.KindBucket, Bucket: &model.TimeBucket{Count: 10, IsAnomaly: true}}
	if _, ok := FormatRecord(spike, Minimal); !ok {
		t.Fatal("anomalous buckets should be kept at Minimal")
	}

	finding := model.Record{Kind: model.KindFinding, Finding: &model.Finding{Rule: "ip_burst"}}
	if _, ok := FormatRecord(finding, Minimal); !ok {
		t.Fatal("findings should be kept at Minimal")
	}
	summary := model.Record{Kind: model.KindSummary, Summary: &model.Summary{}}
	if _, ok := FormatRecord(summary, Minimal); !ok {
		t.Fatal("summary should be kept at Minimal")
	}
}

func TestFormatRecordStandard(t *testing.T) {
	in := eventRecord(false)
	out, ok := FormatRecord(in, Standard)
	if !ok {
		t.Fatal("events should be kept at Standard")
	}
	if out.Event.Raw != "" {
		t.Fatal("Raw should be stripped from valid events at Standard")
	}
	if in.Event.Raw == "" {
		t.Fatal("input event must not be modified")
	}
	if out.Event.User != "alice" {
		t.Fatal("User should be preserved")
	}

	bad, _ := FormatRecord(eventRecord(true), Standard)
	if bad.Event.Raw == "" {
		t.Fatal("Raw should be kept on error events at Standard")
	}
}

func TestFormatRecordFull(t *testing.T) {
	out, ok := FormatRecord(eventRecord(false), Full)
	if !ok || out.Event.Raw == "" {
		t.Fatal("Full should keep everything")
	}
}

func TestParseVerbosity(t *testing.T) {
	tests := []struct {
		in      string
		want    Verbosity
		wantErr bool
	}{
		{"", Standard, false},
		{"minimal", Minimal, false},
		{"FULL", Full, false},
		{"standard", Standard, false},
		{"loud", Standard, true},
	}
	for _, tt := range tests {
		got, err := ParseVerbosity(tt.in)
		if (err != nil) != tt.wantErr {
			t.Fatalf("ParseVerbosity(%q) error = %v, wantErr %v", tt.in, err, tt.wantErr)
		}
		if got != tt.want {
			t.Fatalf("ParseVerbosity(%q) = %v, want %v", tt.in, got, tt.want)
		}
	}
}

type recorder struct {
	recs   []model.Record
	closed bool
}

func (r *recorder) Write(_ context.Context, rec model.Record) error {
	r.recs = append(r.recs, rec)
	return nil
}

func (r *recorder) Close() error {
	r.closed = true
	return nil
}

func TestWriteReport(t *testing.T) {
	report := &model.Report{
		RunID:    "run-1",
		Events:   []model.Event{{User: "a"}, {User: "b"}},
		Buckets:  []model.TimeBucket{{Count: 2}},
		Findings: []model.Finding{{Rule: "r"}},
	}
	rec := &recorder{}
	if err := WriteReport(context.Background(), rec, report); err != nil {
		t.Fatalf("WriteReport: %v", err)
	}
	kinds := make([]model.RecordKind, len(rec.recs))
	for i, r := range rec.recs {
		kinds[i] = r.Kind
		if r.RunID != "run-1" {
			t.Fatalf("record %d RunID = %q", i, r.RunID)
		}
	}
	want := []model.RecordKind{model.KindEvent, model.KindEvent, model.KindBucket, model.KindFinding, model.KindSummary}
	if fmt.Sprint(kinds) != fmt.Sprint(want) {
		t.Fatalf("kinds = %v, want %v", kinds, want)
	}
}
