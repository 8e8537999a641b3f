package vlogscan

import "log/slog"

type options struct {
	mode            string
	bucketWidth     int64
	basis           string
	rollingWindow   int
	multiplier      float64
	maxBuckets      int
	rulesFile       string
	exhaustiveBurst bool
	concurrency     int
	logger          *slog.Logger
}

// Option configures a Scanner.
type Option func(*options)

// WithMode sets the parse mode: "strict", "lenient" or "fallback".
// Default: "fallback".
func WithMode(mode string) Option {
	return func(o *options) {
		o.mode = mode
	}
}

// WithBucketWidth sets the time-series bucket width in seconds. Default: 60.
func WithBucketWidth(seconds int64) Option {
	return func(o *options) {
		o.bucketWidth = seconds
	}
}

// WithTimeBasis sets how bucket boundaries are aligned: "absolute" aligns
// to the Unix epoch, "relative" to the earliest event. Default: "absolute".
func WithTimeBasis(basis string) Option {
	return func(o *options) {
		o.basis = basis
	}
}

// WithAnomaly sets the rolling-mean window size and the multiplier a bucket
// must exceed to be flagged. Defaults: 5 and 1.5.
func WithAnomaly(window int, multiplier float64) Option {
	return func(o *options) {
		o.rollingWindow = window
		o.multiplier = multiplier
	}
}

// WithMaxBuckets caps the length of the gap-filled time series. Inputs whose
// timestamps span more buckets than this are still parsed and evaluated by
// the rules, but Analyze returns ErrSpanTooLarge and no buckets.
// Default: 1<<20.
func WithMaxBuckets(n int) Option {
	return func(o *options) {
		o.maxBuckets = n
	}
}

// WithRulesFile loads rule thresholds from a YAML file layered over the
// built-in defaults.
func WithRulesFile(path string) Option {
	return func(o *options) {
		o.rulesFile = path
	}
}

// WithExhaustiveBurst makes the rapid-burst rule report every qualifying
// window instead of only the first per user.
func WithExhaustiveBurst(on bool) Option {
	return func(o *options) {
		o.exhaustiveBurst = on
	}
}

// WithConcurrency bounds how many inputs are read at once. Default: 4.
func WithConcurrency(n int) Option {
	return func(o *options) {
		o.concurrency = n
	}
}

// WithLogger sets the logger used for run diagnostics. Default: a logger
// that discards everything.
func WithLogger(l *slog.Logger) Option {
	return func(o *options) {
		o.logger = l
	}
}

func defaultOptions() options {
	return options{
		mode:        "fallback",
		basis:       "absolute",
		concurrency: 4,
	}
}
