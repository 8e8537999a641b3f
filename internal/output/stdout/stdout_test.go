package stdout

import (
	"bytes"
	"context"
	"encoding/json"
	"os"
	"strings"
	"testing"

	"github.com/crimson-sun/vlogscan/internal/model"
	"github.com/crimson-sun/vlogscan/internal/output"
)

func findingRecord() model.Record {
	return model.Record{
		Kind:  model.KindFinding,
		RunID: "run-1",
		Finding: &model.Finding{
			Rule:      "sensitive_modification",
			Subject:   "mallory",
			Timestamp: 1020,
			Detail:    "user mallory modified sensitive paths 3 times",
			Severity:  model.SeverityHigh,
			Count:     3,
		},
	}
}

// captureStdout redirects os.Stdout to capture output.
func captureStdout(fn func()) string {
	old := os.Stdout
	r, w, _ := os.Pipe()
	os.Stdout = w

	fn()

	w.Close()
	os.Stdout = old

	var buf bytes.Buffer
	buf.ReadFrom(r)
	return buf.String()
}

func TestOutputCompactJSON(t *testing.T) {
	result := captureStdout(func() {
		out := New(output.Standard)
		out.Write(context.Background(), findingRecord())
	})

	lines := strings.Split(strings.TrimSpace(result), "\n")
	if len(lines) != 1 {
		t.Fatalf("expected 1 line, got %d: %q", len(lines), result)
	}
	var rec model.Record
	if err := json.Unmarshal([]byte(lines[0]), &rec); err != nil {
		t.Fatalf("invalid JSON: %v", err)
	}
	if rec.Kind != model.KindFinding || rec.Finding == nil || rec.Finding.Subject != "mallory" {
		t.Fatalf("unexpected record: %+v", rec)
	}
}

func TestOutputPrettyJSON(t *testing.T) {
	var buf bytes.Buffer
	out := New(output.Standard, WithPretty(), WithWriter(&buf))
	if err := out.Write(context.Background(), findingRecord()); err != nil {
		t.Fatalf("Write: %v", err)
	}
	if !strings.Contains(buf.String(), "\n  \"kind\": \"finding\"") {
		t.Fatalf("expected indented output, got %q", buf.String())
	}
}

func TestOutputMinimalSkipsEvents(t *testing.T) {
	var buf bytes.Buffer
	out := New(output.Minimal, WithWriter(&buf))
	ev := model.Event{User: "alice", Raw: "raw"}
	if err := out.Write(context.Background(), model.Record{Kind: model.KindEvent, Event: &ev}); err != nil {
		t.Fatalf("Write: %v", err)
	}
	if buf.Len() != 0 {
		t.Fatalf("expected no output, got %q", buf.String())
	}
}

func TestOutputStandardOmitsRawOnValidEvents(t *testing.T) {
	var buf bytes.Buffer
	out := New(output.Standard, WithWriter(&buf))
	ev := model.Event{User: "alice", Raw: "0xAB12[ts:1000]|EVNT:XR-EXEC!@run_usr:alice=>/usr/bin/ls"}
	if err := out.Write(context.Background(), model.Record{Kind: model.KindEvent, Event: &ev}); err != nil {
		t.Fatalf("Write: %v", err)
	}
	if strings.Contains(buf.String(), `"raw"`) {
		t.Fatalf("raw should be omitted, got %q", buf.String())
	}
}
