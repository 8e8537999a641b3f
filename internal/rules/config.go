package rules

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Burst evaluation modes.
const (
	BurstFirst = "first" // one finding per user, at the earliest qualifying window
	BurstAll   = "all"   // one finding per qualifying window
)

// SensitiveConfig configures the sensitive_modification rule.
type SensitiveConfig struct {
	Enabled  bool     `yaml:"enabled" json:"enabled"`
	MinCount int      `yaml:"min_count" json:"min_count"`
	Exact    []string `yaml:"exact" json:"exact"`
	Prefixes []string `yaml:"prefixes" json:"prefixes"`
	Contains []string `yaml:"contains" json:"contains"` // substring matches, off by default
}

// RapidBurstConfig configures the rapid_burst rule.
type RapidBurstConfig struct {
	Enabled       bool   `yaml:"enabled" json:"enabled"`
	BurstSize     int    `yaml:"burst_size" json:"burst_size"`
	WindowSeconds int64  `yaml:"window_seconds" json:"window_seconds"`
	Mode          string `yaml:"mode" json:"mode"`
}

// IPBurstConfig configures the ip_burst rule.
type IPBurstConfig struct {
	Enabled  bool `yaml:"enabled" json:"enabled"`
	MinCount int  `yaml:"min_count" json:"min_count"`
}

// VolumeConfig configures the volume_threshold rule.
type VolumeConfig struct {
	Enabled   bool `yaml:"enabled" json:"enabled"`
	MaxEvents int  `yaml:"max_events" json:"max_events"`
}

// Config holds every rule's thresholds. The zero value disables all rules;
// start from DefaultConfig.
type Config struct {
	SensitiveModification SensitiveConfig  `yaml:"sensitive_modification" json:"sensitive_modification"`
	RapidBurst            RapidBurstConfig `yaml:"rapid_burst" json:"rapid_burst"`
	IPBurst               IPBurstConfig    `yaml:"ip_burst" json:"ip_burst"`
	VolumeThreshold       VolumeConfig     `yaml:"volume_threshold" json:"volume_threshold"`
}

// DefaultConfig returns the stock thresholds with every rule enabled.
func DefaultConfig() Config {
	return Config{
		SensitiveModification: SensitiveConfig{
			Enabled:  true,
			MinCount: 3,
			Exact:    []string{"/etc/passwd", "/etc/shadow"},
			Prefixes: []string{"/bin/", "/sbin/"},
		},
		RapidBurst: RapidBurstConfig{
			Enabled:       true,
			BurstSize:     3,
			WindowSeconds: 120,
			Mode:          BurstFirst,
		},
		IPBurst: IPBurstConfig{
			Enabled:  true,
			MinCount: 5,
		},
		VolumeThreshold: VolumeConfig{
			Enabled:   true,
			MaxEvents: 1000,
		},
	}
}

// LoadConfig reads a YAML rule file on top of DefaultConfig, so a file only
// needs the keys it changes. The result is validated.
func LoadConfig(path string) (Config, error) {
	cfg := DefaultConfig()
	data, err := os.ReadFile(path)
	if err != nil {
		return cfg, fmt.Errorf("read rules config: %w", err)
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("parse rules config %s: %w", path, err)
	}
	if err := cfg.Validate(); err != nil {
		return cfg, fmt.Errorf("rules config %s: %w", path, err)
	}
	return cfg, nil
}

// ValidationError names the offending field of an invalid Config.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return e.Field + ": " + e.Message
}

// Validate checks thresholds of enabled rules.
func (c Config) Validate() error {
	if s := c.SensitiveModification; s.Enabled {
		if s.MinCount < 1 {
			return &ValidationError{Field: "sensitive_modification.min_count", Message: "must be at least 1"}
		}
		if len(s.Exact)+len(s.Prefixes)+len(s.Contains) == 0 {
			return &ValidationError{Field: "sensitive_modification", Message: "at least one exact, prefix or contains path is required"}
		}
	}
	if r := c.RapidBurst; r.Enabled {
		if r.BurstSize < 2 {
			return &ValidationError{Field: "rapid_burst.burst_size", Message: "must be at least 2"}
		}
		if r.WindowSeconds < 0 {
			return &ValidationError{Field: "rapid_burst.window_seconds", Message: "must not be negative"}
		}
		if r.Mode != "" && r.Mode != BurstFirst && r.Mode != BurstAll {
			return &ValidationError{Field: "rapid_burst.mode", Message: "must be first or all"}
		}
	}
	if c.IPBurst.Enabled && c.IPBurst.MinCount < 1 {
		return &ValidationError{Field: "ip_burst.min_count", Message: "must be at least 1"}
	}
	if c.VolumeThreshold.Enabled && c.VolumeThreshold.MaxEvents < 0 {
		return &ValidationError{Field: "volume_threshold.max_events", Message: "must not be negative"}
	}
	return nil
}

// Rules builds the enabled rules in their fixed registration order.
func (c Config) Rules() []Rule {
	var out []Rule
	if c.SensitiveModification.Enabled {
		out = append(out, NewSensitiveModification(c.SensitiveModification))
	}
	if c.RapidBurst.Enabled {
		out = append(out, NewRapidBurst(c.RapidBurst))
	}
	if c.IPBurst.Enabled {
		out = append(out, NewIPBurst(c.IPBurst))
	}
	if c.VolumeThreshold.Enabled {
		out = append(out, NewVolumeThreshold(c.VolumeThreshold))
	}
	return out
}
