package stdout

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"sync"

	"github.com/crimson-sun/vlogscan/internal/model"
	"github.com/crimson-sun/vlogscan/internal/output"
)

// Option configures a stdout Output.
type Option func(*Output)

// WithPretty indents each JSON record.
func WithPretty() Option {
	return func(o *Output) { o.pretty = true }
}

// WithWriter replaces os.Stdout as the destination.
func WithWriter(w io.Writer) Option {
	return func(o *Output) { o.w = w }
}

// Output writes JSON-encoded records to stdout, one per line unless pretty.
type Output struct {
	mu        sync.Mutex
	w         io.Writer
	enc       *json.Encoder
	verbosity output.Verbosity
	pretty    bool
}

// New creates a stdout Output with verbosity-aware record filtering.
func New(verbosity output.Verbosity, opts ...Option) *Output {
	o := &Output{w: os.Stdout, verbosity: verbosity}
	for _, opt := range opts {
		opt(o)
	}
	o.enc = json.NewEncoder(o.w)
	if o.pretty {
		o.enc.SetIndent("", "  ")
	}
	return o
}

func (o *Output) Write(_ context.Context, rec model.Record) error {
	formatted, ok := output.FormatRecord(rec, o.verbosity)
	if !ok {
		return nil
	}
	o.mu.Lock()
	defer o.mu.Unlock()
	if err := o.enc.Encode(formatted); err != nil {
		return fmt.Errorf("stdout output: %w", err)
	}
	return nil
}

func (o *Output) Close() error {
	return nil
}
