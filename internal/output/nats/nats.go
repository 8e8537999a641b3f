// Package nats publishes analysis records to NATS subjects.
package nats

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"time"

	"github.com/nats-io/nats.go"

	"github.com/crimson-sun/vlogscan/internal/model"
	"github.com/crimson-sun/vlogscan/internal/output"
)

// DefaultPrefix is the subject prefix when none is configured.
const DefaultPrefix = "vlogscan"

// Publisher is the subset of *nats.Conn the output needs.
type Publisher interface {
	PublishMsg(msg *nats.Msg) error
}

// Option configures a NATS Output.
type Option func(*Output)

// WithPrefix sets the subject prefix. Records go to "<prefix>.<kind>".
func WithPrefix(prefix string) Option {
	return func(o *Output) { o.prefix = prefix }
}

// WithVerbosity filters records before publishing. Default: Minimal.
func WithVerbosity(v output.Verbosity) Option {
	return func(o *Output) { o.verbosity = v }
}

// Output publishes each record as a JSON message on "<prefix>.<kind>",
// with the run ID and, for findings, rule and severity in headers.
type Output struct {
	pub       Publisher
	conn      *nats.Conn // set when the output owns the connection
	prefix    string
	verbosity output.Verbosity
}

// New creates an Output over an existing publisher. The caller keeps
// ownership of the connection.
func New(pub Publisher, opts ...Option) *Output {
	o := &Output{pub: pub, prefix: DefaultPrefix, verbosity: output.Minimal}
	for _, opt := range opts {
		opt(o)
	}
	return o
}

// Dial connects to url and returns an Output that closes the connection on
// Close.
func Dial(url string, opts ...Option) (*Output, error) {
	nc, err := nats.Connect(url,
		nats.Name("vlogscan"),
		nats.Timeout(5*time.Second),
	)
	if err != nil {
		return nil, fmt.Errorf("nats output: connect %s: %w", url, err)
	}
	o := New(nc, opts...)
	o.conn = nc
	return o, nil
}

// Subject returns the subject a record of the given kind is published on.
func (o *Output) Subject(kind model.RecordKind) string {
	return o.prefix + "." + string(kind)
}

func (o *Output) Write(ctx context.Context, rec model.Record) error {
	formatted, ok := output.FormatRecord(rec, o.verbosity)
	if !ok {
		return nil
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	data, err := json.Marshal(formatted)
	if err != nil {
		return fmt.Errorf("nats output: marshal: %w", err)
	}

	headers := nats.Header{}
	headers.Set("x-run-id", rec.RunID)
	headers.Set("x-kind", string(rec.Kind))
	if f := rec.Finding; f != nil {
		headers.Set("x-rule", f.Rule)
		headers.Set("x-severity", string(f.Severity))
		headers.Set("x-timestamp", strconv.FormatInt(f.Timestamp, 10))
	}

	msg := &nats.Msg{
		Subject: o.Subject(rec.Kind),
		Data:    data,
		Header:  headers,
	}
	if err := o.pub.PublishMsg(msg); err != nil {
		return fmt.Errorf("nats output: publish %s: %w", msg.Subject, err)
	}
	return nil
}

// Close flushes and closes the connection if the output dialed it.
func (o *Output) Close() error {
	if o.conn == nil {
		return nil
	}
	defer o.conn.Close()
	if err := o.conn.FlushTimeout(5 * time.Second); err != nil {
		return fmt.Errorf("nats output: flush: %w", err)
	}
	return nil
}
