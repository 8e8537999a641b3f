package model

import "fmt"

// UnknownUser is the sentinel user for events that carry no usr: field.
const UnknownUser = "unknown"

// UnknownEventType is the sentinel event type when no EVNT: field is found.
const UnknownEventType = "UNKNOWN"

// ParseMode records which parsing discipline produced an Event.
type ParseMode string

const (
	ModeStrict  ParseMode = "strict"
	ModeLenient ParseMode = "lenient"
)

// ErrorKind classifies a line-level parse failure.
type ErrorKind string

const (
	ErrMainPatternMismatch   ErrorKind = "MainPatternMismatch"
	ErrInvalidTimestamp      ErrorKind = "InvalidTimestamp"
	ErrMalformedUserEvent    ErrorKind = "MalformedUserEvent"
	ErrMalformedIP           ErrorKind = "MalformedIP"
	ErrMalformedProcessEvent ErrorKind = "MalformedProcessEvent"
	ErrUnknownEventType      ErrorKind = "UnknownEventType"
	ErrLineTooLong           ErrorKind = "LineTooLong"
)

// ErrorKinds lists every ErrorKind in a stable order.
func ErrorKinds() []ErrorKind {
	return []ErrorKind{
		ErrMainPatternMismatch,
		ErrInvalidTimestamp,
		ErrMalformedUserEvent,
		ErrMalformedIP,
		ErrMalformedProcessEvent,
		ErrUnknownEventType,
		ErrLineTooLong,
	}
}

// ParseError is attached to an Event whose line could not be fully parsed.
// It never aborts processing.
type ParseError struct {
	Kind   ErrorKind `json:"kind"`
	Detail string    `json:"detail,omitempty"`
}

func (e *ParseError) Error() string {
	if e.Detail == "" {
		return string(e.Kind)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Detail)
}

// Event is one parsed vlog record. Events are built once by the parser and
// treated as read-only afterwards; pass them by value.
type Event struct {
	ID           string      `json:"id,omitempty"`
	Timestamp    int64       `json:"timestamp"`
	HasTimestamp bool        `json:"has_timestamp"`
	EventType    string      `json:"event_type"`
	Action       string      `json:"action,omitempty"`
	User         string      `json:"user"`
	Path         string      `json:"path,omitempty"`
	IP           string      `json:"ip,omitempty"`
	PID          int         `json:"pid,omitempty"`
	Category     Category    `json:"category"`
	Mode         ParseMode   `json:"mode"`
	Source       string      `json:"source,omitempty"`
	Line         int         `json:"line,omitempty"`
	Raw          string      `json:"raw,omitempty"`
	Err          *ParseError `json:"error,omitempty"`
}

// Usable reports whether the event can feed aggregation and rules:
// it parsed cleanly and carries a timestamp.
func (e Event) Usable() bool {
	return e.Err == nil && e.HasTimestamp
}

// Status returns "VALID" or "ERROR" for audit listings.
func (e Event) Status() string {
	if e.Err != nil {
		return "ERROR"
	}
	return "VALID"
}
