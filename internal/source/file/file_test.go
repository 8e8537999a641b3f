package file

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/klauspost/compress/gzip"
)

func TestSupported(t *testing.T) {
	tests := []struct {
		path string
		want bool
	}{
		{"audit.vlog", true},
		{"/var/log/AUDIT.LOG", true},
		{"notes.txt", true},
		{"audit.vlog.gz", true},
		{"audit.log.gz", true},
		{"audit.gz", false},
		{"audit.csv", false},
		{"vlog", false},
	}
	for _, tt := range tests {
		if got := Supported(tt.path); got != tt.want {
			t.Errorf("Supported(%q) = %v, want %v", tt.path, got, tt.want)
		}
	}
}

func TestNewRejectsExtension(t *testing.T) {
	_, err := New("report.pdf")
	if !errors.Is(err, ErrUnsupportedExtension) {
		t.Fatalf("expected ErrUnsupportedExtension, got %v", err)
	}
}

func TestLinesPlain(t *testing.T) {
	path := filepath.Join(t.TempDir(), "a.vlog")
	if err := os.WriteFile(path, []byte("0xAB12[ts:1000]|EVNT:XR-EXEC!@run_usr:alice=>/usr/bin/ls\ngarbage line\n"), 0o644); err != nil {
		t.Fatal(err)
	}

	src, err := New(path)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	lines, err := src.Lines(context.Background())
	if err != nil {
		t.Fatalf("Lines: %v", err)
	}
	if len(lines) != 2 {
		t.Fatalf("got %d lines, want 2", len(lines))
	}
	if lines[1].Text != "garbage line" || lines[1].Number != 2 || lines[1].Source != path {
		t.Errorf("unexpected line: %+v", lines[1])
	}
}

func TestLinesGzip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "a.log.gz")
	f, err := os.Create(path)
	if err != nil {
		t.Fatal(err)
	}
	zw := gzip.NewWriter(f)
	zw.Write([]byte("ts:1 EVNT:XR-CONN IP:10.0.0.1\n"))
	zw.Close()
	f.Close()

	src, err := New(path)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	lines, err := src.Lines(context.Background())
	if err != nil {
		t.Fatalf("Lines: %v", err)
	}
	if len(lines) != 1 || lines[0].Text != "ts:1 EVNT:XR-CONN IP:10.0.0.1" {
		t.Fatalf("unexpected lines: %+v", lines)
	}
}

func TestLinesMissingFile(t *testing.T) {
	src, err := New(filepath.Join(t.TempDir(), "gone.vlog"))
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	if _, err := src.Lines(context.Background()); !errors.Is(err, os.ErrNotExist) {
		t.Fatalf("expected os.ErrNotExist, got %v", err)
	}
}
