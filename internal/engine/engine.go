package engine

import (
	"github.com/crimson-sun/vlogscan/internal/engine/categorizer"
	"github.com/crimson-sun/vlogscan/internal/engine/parser"
	"github.com/crimson-sun/vlogscan/internal/model"
)

// Engine orchestrates the parse → categorize step for raw vlog lines.
type Engine struct {
	parser *parser.Parser
}

// New creates an Engine around the given parser.
func New(p *parser.Parser) *Engine {
	return &Engine{parser: p}
}

// Mode reports the parsing discipline the engine was built with.
func (e *Engine) Mode() parser.Mode {
	return e.parser.Mode()
}

// Process parses and categorizes a single line. Lines that fail to parse
// still produce an event carrying the error and the raw text.
func (e *Engine) Process(line model.Line) model.Event {
	return categorizer.Apply(e.parser.Parse(line))
}

// ProcessBatch parses and categorizes lines, preserving input order.
// Returns nil for an empty batch.
func (e *Engine) ProcessBatch(lines []model.Line) []model.Event {
	if len(lines) == 0 {
		return nil
	}
	events := make([]model.Event, 0, len(lines))
	for _, line := range lines {
		events = append(events, e.Process(line))
	}
	return events
}
