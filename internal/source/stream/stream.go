// Package stream adapts arbitrary byte streams, such as stdin or an uploaded
// request body, into line sources.
package stream

import (
	"context"
	"io"
	"os"

	"github.com/crimson-sun/vlogscan/internal/model"
	"github.com/crimson-sun/vlogscan/internal/source"
)

func init() {
	source.Register("stdin", func(string, source.Config) (source.Source, error) {
		return NewReader("stdin", os.Stdin), nil
	})
}

// Source reads lines from an io.Reader. It can be read once.
type Source struct {
	name string
	r    io.Reader
}

// NewReader wraps r as a Source named name.
func NewReader(name string, r io.Reader) *Source {
	return &Source{name: name, r: r}
}

func (s *Source) Name() string { return s.name }

func (s *Source) Lines(ctx context.Context) ([]model.Line, error) {
	return source.ReadLines(ctx, s.name, s.r)
}
