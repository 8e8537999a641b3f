// Package rules flags suspicious actor behavior in a batch of parsed events.
package rules

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"github.com/crimson-sun/vlogscan/internal/model"
)

// Rule inspects the full event set and reports findings. Evaluate must not
// modify the slice; rules share it while running concurrently.
type Rule interface {
	Name() string
	Evaluate(events []model.Event) ([]model.Finding, error)
}

// RuleError reports a rule that failed or panicked. Other rules are unaffected.
type RuleError struct {
	Rule string
	Err  error
}

func (e *RuleError) Error() string {
	return fmt.Sprintf("rule %s: %v", e.Rule, e.Err)
}

func (e *RuleError) Unwrap() error { return e.Err }

// Engine runs a fixed set of rules.
type Engine struct {
	rules  []Rule
	logger *slog.Logger
}

// Option configures an Engine.
type Option func(*Engine)

// WithLogger sets the logger used for rule failures.
func WithLogger(l *slog.Logger) Option {
	return func(e *Engine) { e.logger = l }
}

// New creates an Engine running rules in the given order.
func New(rules []Rule, opts ...Option) *Engine {
	e := &Engine{rules: rules, logger: slog.Default()}
	for _, o := range opts {
		o(e)
	}
	return e
}

// NewFromConfig validates cfg and builds an Engine over its enabled rules.
func NewFromConfig(cfg Config, opts ...Option) (*Engine, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return New(cfg.Rules(), opts...), nil
}

// Names lists the rules in registration order.
func (e *Engine) Names() []string {
	names := make([]string, len(e.rules))
	for i, r := range e.rules {
		names[i] = r.Name()
	}
	return names
}

// Run evaluates every rule concurrently over the usable events and returns
// the findings concatenated in registration order. Failed rules contribute
// no findings; their *RuleError values are joined into the returned error.
func (e *Engine) Run(ctx context.Context, events []model.Event) ([]model.Finding, error) {
	usable := make([]model.Event, 0, len(events))
	for _, ev := range events {
		if ev.Usable() {
			usable = append(usable, ev)
		}
	}

	results := make([][]model.Finding, len(e.rules))
	errs := make([]error, len(e.rules))

	var wg sync.WaitGroup
	for i, r := range e.rules {
		wg.Add(1)
		go func() {
			defer wg.Done()
			results[i], errs[i] = evaluate(ctx, r, usable)
		}()
	}
	wg.Wait()

	var findings []model.Finding
	for i, r := range e.rules {
		if errs[i] != nil {
			e.logger.Warn("rule failed", "rule", r.Name(), "error", errs[i])
			continue
		}
		findings = append(findings, results[i]...)
	}
	return findings, errors.Join(errs...)
}

func evaluate(ctx context.Context, r Rule, events []model.Event) (findings []model.Finding, err error) {
	defer func() {
		if p := recover(); p != nil {
			findings = nil
			err = &RuleError{Rule: r.Name(), Err: fmt.Errorf("panic: %v", p)}
		}
	}()
	if err := ctx.Err(); err != nil {
		return nil, &RuleError{Rule: r.Name(), Err: err}
	}
	findings, err = r.Evaluate(events)
	if err != nil {
		return nil, &RuleError{Rule: r.Name(), Err: err}
	}
	return findings, nil
}
