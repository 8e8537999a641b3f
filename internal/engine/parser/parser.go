package parser

import (
	"fmt"
	"net/netip"
	"regexp"
	"strconv"
	"strings"

	"github.com/crimson-sun/vlogscan/internal/model"
)

// Mode selects the parsing discipline.
type Mode int

const (
	// Fallback tries Strict first and reparses leniently on envelope mismatch.
	Fallback Mode = iota
	// Strict requires the whole line to match the vlog envelope.
	Strict
	// Lenient searches for each field independently anywhere in the line.
	Lenient
)

func (m Mode) String() string {
	switch m {
	case Strict:
		return "strict"
	case Lenient:
		return "lenient"
	default:
		return "fallback"
	}
}

// ParseMode maps a string ("strict", "lenient", "fallback") to a Mode.
func ParseMode(s string) (Mode, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "fallback":
		return Fallback, nil
	case "strict":
		return Strict, nil
	case "lenient":
		return Lenient, nil
	default:
		return Fallback, fmt.Errorf("unknown parse mode %q", s)
	}
}

var (
	envelopeRe = regexp.MustCompile(`^(0x[0-9a-fA-F]+)\[ts:(\d+)\]\|EVNT:([^!]+)!@(.+)$`)
	userDataRe = regexp.MustCompile(`^(\w+)_usr:([^=]+)=>(.+)$`)
	connDataRe = regexp.MustCompile(`^IP:(\d{1,3}(?:\.\d{1,3}){3})$`)
	killDataRe = regexp.MustCompile(`^KILL_proc:pid(\d+)$`)

	looseIDRe     = regexp.MustCompile(`^\s*(0x[0-9a-fA-F]+)`)
	looseTSRe     = regexp.MustCompile(`ts:(\d+)`)
	looseTSAnyRe  = regexp.MustCompile(`ts:([^\]|\s]*)`)
	looseTypeRe   = regexp.MustCompile(`EVNT:([^!\s|]+)`)
	looseUserRe   = regexp.MustCompile(`usr:([^=>\n]+)`)
	looseActionRe = regexp.MustCompile(`(\w+)_usr:`)
	looseIPRe     = regexp.MustCompile(`IP:([0-9.]+)`)
	loosePathRe   = regexp.MustCompile(`=>\s*(.+)`)
	loosePIDRe    = regexp.MustCompile(`\bpid(\d+)`)
)

// userEventTypes share the <action>_usr:<user>=><path> payload grammar.
var userEventTypes = map[string]bool{
	"XR-EXEC": true,
	"XR-LOG":  true,
	"XR-FILE": true,
	"XR-DEL":  true,
}

// Parser turns raw vlog lines into events. A Parser has no mutable state and
// is safe for concurrent use.
type Parser struct {
	mode Mode
}

// New creates a Parser with the given mode.
func New(mode Mode) *Parser {
	return &Parser{mode: mode}
}

// Mode returns the configured parsing discipline.
func (p *Parser) Mode() Mode {
	return p.mode
}

// Parse converts one line into an Event. It never fails: problems are
// recorded on Event.Err and Raw is always preserved.
func (p *Parser) Parse(line model.Line) model.Event {
	text := strings.TrimRight(line.Text, "\r\n")
	var ev model.Event
	switch {
	case line.Truncated:
		// The tail is gone; any fields recovered from the head are unreliable.
		mode := model.ModeStrict
		if p.mode == Lenient {
			mode = model.ModeLenient
		}
		ev = model.Event{
			Raw:       text,
			Mode:      mode,
			User:      model.UnknownUser,
			EventType: model.UnknownEventType,
			Err: &model.ParseError{
				Kind:   model.ErrLineTooLong,
				Detail: fmt.Sprintf("line cut at %d bytes", len(line.Text)),
			},
		}
	case p.mode == Strict:
		ev = parseStrict(text)
	case p.mode == Lenient:
		ev = parseLenient(text)
	default:
		ev = parseStrict(text)
		if ev.Err != nil && ev.Err.Kind == model.ErrMainPatternMismatch {
			ev = parseLenient(text)
		}
	}
	ev.Source = line.Source
	ev.Line = line.Number
	return ev
}

// ParseText is a convenience wrapper for callers without line provenance.
func (p *Parser) ParseText(text string) model.Event {
	return p.Parse(model.Line{Text: text})
}

func parseStrict(text string) model.Event {
	ev := model.Event{
		Raw:       text,
		Mode:      model.ModeStrict,
		User:      model.UnknownUser,
		EventType: model.UnknownEventType,
	}

	m := envelopeRe.FindStringSubmatch(strings.TrimSpace(text))
	if m == nil {
		ev.Err = &model.ParseError{Kind: model.ErrMainPatternMismatch}
		return ev
	}
	ev.ID = m[1]
	ev.EventType = m[3]
	data := m[4]

	ts, err := strconv.ParseInt(m[2], 10, 64)
	if err != nil {
		ev.Err = &model.ParseError{Kind: model.ErrInvalidTimestamp, Detail: m[2]}
	} else {
		ev.Timestamp = ts
		ev.HasTimestamp = true
	}

	// A payload error takes precedence over a timestamp error: it is the
	// more specific diagnosis and the timestamp is unusable either way.
	if perr := parsePayload(&ev, data); perr != nil {
		ev.Err = perr
	}
	return ev
}

func parsePayload(ev *model.Event, data string) *model.ParseError {
	switch {
	case userEventTypes[ev.EventType]:
		m := userDataRe.FindStringSubmatch(data)
		if m == nil {
			return &model.ParseError{Kind: model.ErrMalformedUserEvent, Detail: data}
		}
		ev.Action = m[1]
		ev.User = m[2]
		ev.Path = m[3]
	case ev.EventType == "XR-CONN":
		m := connDataRe.FindStringSubmatch(data)
		if m == nil {
			return &model.ParseError{Kind: model.ErrMalformedIP, Detail: data}
		}
		if _, err := netip.ParseAddr(m[1]); err != nil {
			return &model.ParseError{Kind: model.ErrMalformedIP, Detail: data}
		}
		ev.IP = m[1]
	case ev.EventType == "XR-SHDW":
		m := killDataRe.FindStringSubmatch(data)
		if m == nil {
			return &model.ParseError{Kind: model.ErrMalformedProcessEvent, Detail: data}
		}
		pid, err := strconv.Atoi(m[1])
		if err != nil {
			return &model.ParseError{Kind: model.ErrMalformedProcessEvent, Detail: data}
		}
		ev.PID = pid
	default:
		return &model.ParseError{Kind: model.ErrUnknownEventType, Detail: ev.EventType}
	}
	return nil
}

func parseLenient(text string) model.Event {
	ev := model.Event{
		Raw:       text,
		Mode:      model.ModeLenient,
		User:      model.UnknownUser,
		EventType: model.UnknownEventType,
	}

	if m := looseIDRe.FindStringSubmatch(text); m != nil {
		ev.ID = m[1]
	}
	if m := looseTypeRe.FindStringSubmatch(text); m != nil {
		ev.EventType = strings.TrimSpace(m[1])
	}
	if m := looseUserRe.FindStringSubmatch(text); m != nil {
		if u := strings.TrimSpace(m[1]); u != "" {
			ev.User = u
		}
		if a := looseActionRe.FindStringSubmatch(text); a != nil {
			ev.Action = a[1]
		}
	}
	if m := looseIPRe.FindStringSubmatch(text); m != nil {
		ev.IP = strings.Trim(m[1], ".")
	}
	if m := loosePathRe.FindStringSubmatch(text); m != nil {
		ev.Path = strings.TrimSpace(m[1])
	}
	if m := loosePIDRe.FindStringSubmatch(text); m != nil {
		if pid, err := strconv.Atoi(m[1]); err == nil {
			ev.PID = pid
		}
	}

	m := looseTSRe.FindStringSubmatch(text)
	if m == nil {
		detail := "missing ts field"
		if bad := looseTSAnyRe.FindStringSubmatch(text); bad != nil {
			detail = bad[1]
		}
		ev.Err = &model.ParseError{Kind: model.ErrInvalidTimestamp, Detail: detail}
		return ev
	}
	ts, err := strconv.ParseInt(m[1], 10, 64)
	if err != nil {
		ev.Err = &model.ParseError{Kind: model.ErrInvalidTimestamp, Detail: m[1]}
		return ev
	}
	ev.Timestamp = ts
	ev.HasTimestamp = true
	return ev
}
