package stream

import (
	"context"
	"strings"
	"testing"
)

func TestNewReader(t *testing.T) {
	src := NewReader("upload", strings.NewReader("a\nb\n"))
	if src.Name() != "upload" {
		t.Fatalf("Name() = %q", src.Name())
	}
	lines, err := src.Lines(context.Background())
	if err != nil {
		t.Fatalf("Lines: %v", err)
	}
	if len(lines) != 2 || lines[0].Source != "upload" || lines[1].Number != 2 {
		t.Fatalf("unexpected lines: %+v", lines)
	}
}
