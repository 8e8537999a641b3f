package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/crimson-sun/vlogscan/internal/rules"
)

// Config holds all vlogscan configuration.
type Config struct {
	Source   SourceConfig   `yaml:"source"`
	Parser   ParserConfig   `yaml:"parser"`
	Analysis AnalysisConfig `yaml:"analysis"`
	Rules    rules.Config   `yaml:"rules"`
	Output   OutputConfig   `yaml:"output"`
	Metrics  MetricsConfig  `yaml:"metrics"`
	LogLevel string         `yaml:"log_level"`
}

// SourceConfig controls how inputs are read.
type SourceConfig struct {
	Concurrency int           `yaml:"concurrency"` // sources read in parallel
	Token       string        `yaml:"token"`       // bearer token for http(s) sources
	Timeout     time.Duration `yaml:"timeout"`     // per-request timeout for http(s) sources
}

// ParserConfig selects the parsing discipline.
type ParserConfig struct {
	Mode string `yaml:"mode"` // "fallback", "strict", "lenient"
}

// AnalysisConfig holds time-series and anomaly settings.
type AnalysisConfig struct {
	BucketWidth   int64   `yaml:"bucket_width"` // seconds
	Basis         string  `yaml:"basis"`        // "absolute" or "relative"
	RollingWindow int     `yaml:"rolling_window"`
	Multiplier    float64 `yaml:"multiplier"`
	MaxBuckets    int     `yaml:"max_buckets"` // upper bound on the gap-filled series
}

// OutputConfig holds output destination settings.
type OutputConfig struct {
	Destinations   []string          `yaml:"destinations"` // any of stdout, file, webhook, nats
	Verbosity      string            `yaml:"verbosity"`    // "minimal", "standard", "full"
	Pretty         bool              `yaml:"pretty"`
	FilePath       string            `yaml:"file_path"`
	FileMaxSize    int64             `yaml:"file_max_size"` // bytes; 0 disables rotation
	WebhookURL     string            `yaml:"webhook_url"`
	WebhookHeaders map[string]string `yaml:"webhook_headers"`
	NATSURL        string            `yaml:"nats_url"`
	NATSPrefix     string            `yaml:"nats_prefix"`
	Async          bool              `yaml:"async"` // buffer network outputs behind a goroutine
	AsyncBuffer    int               `yaml:"async_buffer"`
}

// MetricsConfig controls the Prometheus textfile export.
type MetricsConfig struct {
	File string `yaml:"file"` // empty disables the export
}

var (
	validModes        = map[string]bool{"fallback": true, "strict": true, "lenient": true}
	validBases        = map[string]bool{"absolute": true, "relative": true}
	validVerbosities  = map[string]bool{"minimal": true, "standard": true, "full": true}
	validDestinations = map[string]bool{"stdout": true, "file": true, "webhook": true, "nats": true}
)

// Load reads configuration from VLOG_* environment variables with defaults.
func Load() Config {
	rc := rules.DefaultConfig()
	rc.RapidBurst.Mode = getenv("VLOG_BURST_MODE", rc.RapidBurst.Mode)

	return Config{
		Source: SourceConfig{
			Concurrency: getenvInt("VLOG_SOURCE_CONCURRENCY", 4),
			Token:       os.Getenv("VLOG_SOURCE_TOKEN"),
			Timeout:     getenvDuration("VLOG_SOURCE_TIMEOUT", 30*time.Second),
		},
		Parser: ParserConfig{
			Mode: getenv("VLOG_PARSE_MODE", "fallback"),
		},
		Analysis: AnalysisConfig{
			BucketWidth:   int64(getenvInt("VLOG_BUCKET_WIDTH", 60)),
			Basis:         getenv("VLOG_TIME_BASIS", "absolute"),
			RollingWindow: getenvInt("VLOG_ROLLING_WINDOW", 5),
			Multiplier:    getenvFloat("VLOG_ANOMALY_MULTIPLIER", 1.5),
			MaxBuckets:    getenvInt("VLOG_MAX_BUCKETS", 1<<20),
		},
		Rules: rc,
		Output: OutputConfig{
			Destinations: splitList(getenv("VLOG_OUTPUT", "stdout")),
			Verbosity:    getenv("VLOG_VERBOSITY", "standard"),
			Pretty:       getenvBool("VLOG_OUTPUT_PRETTY", false),
			FilePath:     os.Getenv("VLOG_OUTPUT_FILE"),
			FileMaxSize:  int64(getenvInt("VLOG_OUTPUT_FILE_MAX_SIZE", 0)),
			WebhookURL:   os.Getenv("VLOG_WEBHOOK_URL"),
			NATSURL:      os.Getenv("VLOG_NATS_URL"),
			NATSPrefix:   getenv("VLOG_NATS_PREFIX", "vlogscan"),
			Async:        getenvBool("VLOG_OUTPUT_ASYNC", false),
			AsyncBuffer:  getenvInt("VLOG_OUTPUT_ASYNC_BUFFER", 1024),
		},
		Metrics: MetricsConfig{
			File: os.Getenv("VLOG_METRICS_FILE"),
		},
		LogLevel: getenv("VLOG_LOG_LEVEL", "info"),
	}
}

// LoadFile overlays a YAML file on cfg. Keys absent from the file keep
// their current values. A missing rules section keeps the rule defaults.
func LoadFile(cfg Config, path string) (Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return cfg, fmt.Errorf("read config: %w", err)
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("parse config %s: %w", path, err)
	}
	return cfg, nil
}

// Validate checks the config for errors. Returns all problems found.
func (c Config) Validate() error {
	var errs []error

	if c.Source.Concurrency < 1 {
		errs = append(errs, fmt.Errorf("source concurrency must be at least 1, got %d", c.Source.Concurrency))
	}
	if c.Source.Timeout < 0 {
		errs = append(errs, fmt.Errorf("source timeout must not be negative, got %s", c.Source.Timeout))
	}
	if !validModes[c.Parser.Mode] {
		errs = append(errs, fmt.Errorf("parse mode must be fallback, strict or lenient, got %q", c.Parser.Mode))
	}
	if c.Analysis.BucketWidth < 1 {
		errs = append(errs, fmt.Errorf("bucket width must be at least 1 second, got %d", c.Analysis.BucketWidth))
	}
	if !validBases[c.Analysis.Basis] {
		errs = append(errs, fmt.Errorf("time basis must be absolute or relative, got %q", c.Analysis.Basis))
	}
	if c.Analysis.RollingWindow < 1 {
		errs = append(errs, fmt.Errorf("rolling window must be at least 1, got %d", c.Analysis.RollingWindow))
	}
	if c.Analysis.MaxBuckets < 1 {
		errs = append(errs, fmt.Errorf("max buckets must be at least 1, got %d", c.Analysis.MaxBuckets))
	}
	if c.Analysis.Multiplier <= 0 {
		errs = append(errs, fmt.Errorf("anomaly multiplier must be positive, got %g", c.Analysis.Multiplier))
	}
	if err := c.Rules.Validate(); err != nil {
		errs = append(errs, fmt.Errorf("rules: %w", err))
	}

	if !validVerbosities[c.Output.Verbosity] {
		errs = append(errs, fmt.Errorf("verbosity must be minimal, standard or full, got %q", c.Output.Verbosity))
	}
	if len(c.Output.Destinations) == 0 {
		errs = append(errs, errors.New("at least one output destination is required"))
	}
	for _, d := range c.Output.Destinations {
		switch {
		case !validDestinations[d]:
			errs = append(errs, fmt.Errorf("unknown output destination %q", d))
		case d == "file" && c.Output.FilePath == "":
			errs = append(errs, errors.New("file output requires an output file path"))
		case d == "webhook" && c.Output.WebhookURL == "":
			errs = append(errs, errors.New("webhook output requires a webhook URL"))
		case d == "nats" && c.Output.NATSURL == "":
			errs = append(errs, errors.New("nats output requires a NATS URL"))
		}
	}
	if c.Output.FileMaxSize < 0 {
		errs = append(errs, fmt.Errorf("output file max size must not be negative, got %d", c.Output.FileMaxSize))
	}
	if c.Output.Async && c.Output.AsyncBuffer < 1 {
		errs = append(errs, fmt.Errorf("async buffer must be at least 1, got %d", c.Output.AsyncBuffer))
	}

	return errors.Join(errs...)
}

func getenv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getenvInt(key string, fallback int) int {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return fallback
	}
	return n
}

func getenvFloat(key string, fallback float64) float64 {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil {
		return fallback
	}
	return f
}

func getenvBool(key string, fallback bool) bool {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return fallback
	}
	return b
}

func getenvDuration(key string, fallback time.Duration) time.Duration {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return fallback
	}
	return d
}

// splitList splits a comma-separated value, trimming blanks.
func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}
