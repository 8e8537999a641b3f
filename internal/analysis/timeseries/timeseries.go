// Package timeseries buckets timestamped events into fixed-width windows.
package timeseries

import (
	"errors"
	"fmt"
	"strings"

	"github.com/crimson-sun/vlogscan/internal/model"
)

// ErrNoData is returned when no event has a usable timestamp.
var ErrNoData = errors.New("no usable timestamped events")

// DefaultWidth is the bucket width in seconds.
const DefaultWidth int64 = 60

// Basis decides where bucket boundaries fall.
type Basis string

const (
	// Absolute aligns windows to multiples of the width since the epoch, so
	// the same event always lands in the same window across runs.
	Absolute Basis = "absolute"
	// Relative aligns windows to the earliest observed timestamp.
	Relative Basis = "relative"
)

// ParseBasis maps a string to a Basis. Empty selects Absolute.
func ParseBasis(s string) (Basis, error) {
	switch Basis(strings.ToLower(strings.TrimSpace(s))) {
	case "", Absolute:
		return Absolute, nil
	case Relative:
		return Relative, nil
	default:
		return "", fmt.Errorf("unknown time basis %q", s)
	}
}

// DefaultMaxBuckets bounds the length of the gap-filled series.
const DefaultMaxBuckets = 1 << 20

// ErrSpanTooLarge is returned when the timestamp span would need more
// buckets than Config.MaxBuckets allows.
var ErrSpanTooLarge = errors.New("timestamp span exceeds bucket limit")

// Config controls aggregation.
type Config struct {
	Width      int64 // seconds; zero means DefaultWidth
	Basis      Basis // zero value means Absolute
	MaxBuckets int   // zero means DefaultMaxBuckets
}

// Aggregate counts usable events per window and returns a contiguous,
// gap-filled series covering [min(ts), max(ts)]. Events with a parse error
// or no timestamp are skipped. Input order does not matter.
func Aggregate(events []model.Event, cfg Config) ([]model.TimeBucket, error) {
	width := cfg.Width
	switch {
	case width < 0:
		return nil, fmt.Errorf("bucket width must be positive, got %d", width)
	case width == 0:
		width = DefaultWidth
	}
	maxBuckets := cfg.MaxBuckets
	switch {
	case maxBuckets < 0:
		return nil, fmt.Errorf("max buckets must be positive, got %d", maxBuckets)
	case maxBuckets == 0:
		maxBuckets = DefaultMaxBuckets
	}
	basisKind := cfg.Basis
	if basisKind == "" {
		basisKind = Absolute
	}
	if basisKind != Absolute && basisKind != Relative {
		return nil, fmt.Errorf("unknown time basis %q", cfg.Basis)
	}

	var (
		minTS, maxTS int64
		seen         bool
	)
	for _, ev := range events {
		if !ev.Usable() {
			continue
		}
		if !seen || ev.Timestamp < minTS {
			minTS = ev.Timestamp
		}
		if !seen || ev.Timestamp > maxTS {
			maxTS = ev.Timestamp
		}
		seen = true
	}
	if !seen {
		return nil, ErrNoData
	}

	// Offsets are computed in uint64 so a span wider than int64 cannot wrap.
	var (
		first int64 // absolute window index of bucket 0
		index func(ts int64) uint64
	)
	if basisKind == Relative {
		index = func(ts int64) uint64 { return (uint64(ts) - uint64(minTS)) / uint64(width) }
	} else {
		first = floorDiv(minTS, width)
		index = func(ts int64) uint64 { return uint64(floorDiv(ts, width)) - uint64(first) }
	}
	if span := index(maxTS); span >= uint64(maxBuckets) {
		return nil, fmt.Errorf("%w: %d..%d at width %ds needs more than %d buckets",
			ErrSpanTooLarge, minTS, maxTS, width, maxBuckets)
	}

	buckets := make([]model.TimeBucket, index(maxTS)+1)
	for i := range buckets {
		if basisKind == Relative {
			buckets[i].WindowStart = minTS + int64(i)*width
		} else {
			buckets[i].WindowStart = (first + int64(i)) * width
		}
	}
	for _, ev := range events {
		if !ev.Usable() {
			continue
		}
		buckets[index(ev.Timestamp)].Count++
	}
	return buckets, nil
}

// floorDiv rounds toward negative infinity so pre-epoch timestamps land in
// the window that contains them.
func floorDiv(a, b int64) int64 {
	q := a / b
	if (a%b != 0) && ((a < 0) != (b < 0)) {
		q--
	}
	return q
}
