// Package anomaly scores time buckets against a trailing rolling mean.
package anomaly

import (
	"fmt"

	"gonum.org/v1/gonum/stat"

	"github.com/crimson-sun/vlogscan/internal/model"
)

const (
	// DefaultWindow is the number of trailing buckets, the current one
	// included, averaged into each bucket's rolling mean.
	DefaultWindow = 5

	// DefaultMultiplier is how many times the rolling mean a bucket's count
	// must exceed to be flagged as anomalous.
	DefaultMultiplier = 1.5
)

// Config controls anomaly scoring.
type Config struct {
	Window     int     // trailing buckets in the mean, including the current one
	Multiplier float64 // a bucket is anomalous when Count > RollingMean*Multiplier
}

// Validate rejects non-positive parameters.
func (c Config) Validate() error {
	if c.Window < 1 {
		return fmt.Errorf("rolling window must be at least 1, got %d", c.Window)
	}
	if c.Multiplier <= 0 {
		return fmt.Errorf("anomaly multiplier must be positive, got %g", c.Multiplier)
	}
	return nil
}

func (c Config) withDefaults() Config {
	if c.Window == 0 {
		c.Window = DefaultWindow
	}
	if c.Multiplier == 0 {
		c.Multiplier = DefaultMultiplier
	}
	return c
}

// Detect returns a copy of buckets with RollingMean and IsAnomaly set. The
// mean at position i covers buckets max(0, i-Window+1)..i, so the first
// buckets use a shorter window. The input slice is not modified.
func Detect(buckets []model.TimeBucket, cfg Config) ([]model.TimeBucket, error) {
	cfg = cfg.withDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if len(buckets) == 0 {
		return nil, nil
	}

	counts := make([]float64, len(buckets))
	for i, b := range buckets {
		counts[i] = float64(b.Count)
	}

	out := make([]model.TimeBucket, len(buckets))
	for i, b := range buckets {
		lo := max(0, i-cfg.Window+1)
		mean := stat.Mean(counts[lo:i+1], nil)
		b.RollingMean = mean
		b.IsAnomaly = float64(b.Count) > mean*cfg.Multiplier
		out[i] = b
	}
	return out, nil
}

// Anomalies filters scored buckets down to the flagged ones, in order.
func Anomalies(buckets []model.TimeBucket) []model.TimeBucket {
	var out []model.TimeBucket
	for _, b := range buckets {
		if b.IsAnomaly {
			out = append(out, b)
		}
	}
	return out
}
