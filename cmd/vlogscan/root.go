package main

import (
	"fmt"
	"io"
	"slices"

	"github.com/spf13/cobra"

	"github.com/crimson-sun/vlogscan/internal/config"
	"github.com/crimson-sun/vlogscan/internal/rules"
)

// Version is stamped at build time with -ldflags "-X main.Version=...".
var Version = "dev"

// flags holds the command-line overrides shared by analyze and parse.
// Only flags the user actually set are applied on top of the environment
// and config file.
type flags struct {
	configFile      string
	rulesConfig     string
	logLevel        string
	mode            string
	window          int64
	basis           string
	rolling         int
	multiplier      float64
	maxBuckets      int
	exhaustiveBurst bool
	concurrency     int
	token           string
	output          []string
	outputFile      string
	webhookURL      string
	natsURL         string
	metricsFile     string
	verbosity       string
	pretty          bool
	async           bool
}

func newRootCmd(stdout, stderr io.Writer) *cobra.Command {
	f := &flags{}
	root := &cobra.Command{
		Use:   "vlogscan",
		Short: "Parse and analyze vlog audit logs",
		Long: `vlogscan parses vlog audit lines, buckets them into fixed time windows,
flags activity spikes against a rolling mean and runs suspicious-activity
rules over the parsed events. Results are written as NDJSON records.`,
		Version:       Version,
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.SetOut(stdout)
	root.SetErr(stderr)

	pf := root.PersistentFlags()
	pf.StringVar(&f.configFile, "config", "", "YAML config file layered over VLOG_* environment settings")
	pf.StringVar(&f.logLevel, "log-level", "", "log level: debug, info, warn, error")
	pf.StringVar(&f.mode, "mode", "", "parse mode: fallback, strict, lenient")
	pf.IntVar(&f.concurrency, "concurrency", 0, "sources read in parallel")
	pf.StringVar(&f.token, "token", "", "bearer token for http(s) sources")
	pf.StringSliceVarP(&f.output, "output", "o", nil, "output destinations: stdout, file, webhook, nats")
	pf.StringVar(&f.outputFile, "output-file", "", "NDJSON file for the file output")
	pf.StringVar(&f.webhookURL, "webhook-url", "", "endpoint for the webhook output")
	pf.StringVar(&f.natsURL, "nats-url", "", "server URL for the nats output")
	pf.StringVar(&f.verbosity, "verbosity", "", "record verbosity: minimal, standard, full")
	pf.BoolVar(&f.pretty, "pretty", false, "indent JSON written to stdout")
	pf.BoolVar(&f.async, "async", false, "buffer network outputs in the background")
	pf.StringVar(&f.metricsFile, "metrics-file", "", "write Prometheus textfile metrics here after the run")

	root.AddCommand(newAnalyzeCmd(f), newParseCmd(f), newVersionCmd())
	return root
}

// loadConfig resolves configuration in order: environment, --config file,
// --rules-config file, then explicitly set flags.
func loadConfig(cmd *cobra.Command, f *flags) (config.Config, error) {
	cfg := config.Load()
	if f.configFile != "" {
		var err error
		if cfg, err = config.LoadFile(cfg, f.configFile); err != nil {
			return cfg, err
		}
	}
	if f.rulesConfig != "" {
		rc, err := rules.LoadConfig(f.rulesConfig)
		if err != nil {
			return cfg, err
		}
		cfg.Rules = rc
	}

	set := cmd.Flags().Changed
	if set("log-level") {
		cfg.LogLevel = f.logLevel
	}
	if set("mode") {
		cfg.Parser.Mode = f.mode
	}
	if set("window") {
		cfg.Analysis.BucketWidth = f.window
	}
	if set("basis") {
		cfg.Analysis.Basis = f.basis
	}
	if set("rolling") {
		cfg.Analysis.RollingWindow = f.rolling
	}
	if set("multiplier") {
		cfg.Analysis.Multiplier = f.multiplier
	}
	if set("max-buckets") {
		cfg.Analysis.MaxBuckets = f.maxBuckets
	}
	if set("exhaustive-burst") && f.exhaustiveBurst {
		cfg.Rules.RapidBurst.Mode = rules.BurstAll
	}
	if set("concurrency") {
		cfg.Source.Concurrency = f.concurrency
	}
	if set("token") {
		cfg.Source.Token = f.token
	}
	if set("output") {
		cfg.Output.Destinations = f.output
	}
	if set("output-file") {
		cfg.Output.FilePath = f.outputFile
		if !set("output") && !slices.Contains(cfg.Output.Destinations, "file") {
			cfg.Output.Destinations = append(cfg.Output.Destinations, "file")
		}
	}
	if set("webhook-url") {
		cfg.Output.WebhookURL = f.webhookURL
	}
	if set("nats-url") {
		cfg.Output.NATSURL = f.natsURL
	}
	if set("verbosity") {
		cfg.Output.Verbosity = f.verbosity
	}
	if set("pretty") {
		cfg.Output.Pretty = f.pretty
	}
	if set("async") {
		cfg.Output.Async = f.async
	}
	if set("metrics-file") {
		cfg.Metrics.File = f.metricsFile
	}

	if err := cfg.Validate(); err != nil {
		return cfg, fmt.Errorf("invalid configuration:\n%w", err)
	}
	return cfg, nil
}

// addAnalysisFlags registers flags that only matter when events are
// aggregated and evaluated.
func addAnalysisFlags(cmd *cobra.Command, f *flags) {
	fl := cmd.Flags()
	fl.Int64Var(&f.window, "window", 0, "bucket width in seconds")
	fl.StringVar(&f.basis, "basis", "", "bucket alignment: absolute (epoch) or relative (first event)")
	fl.IntVar(&f.rolling, "rolling", 0, "buckets in the rolling mean")
	fl.Float64Var(&f.multiplier, "multiplier", 0, "anomaly threshold as a multiple of the rolling mean")
	fl.IntVar(&f.maxBuckets, "max-buckets", 0, "refuse to build a time series longer than this many buckets")
	fl.StringVar(&f.rulesConfig, "rules-config", "", "YAML file with rule thresholds")
	fl.BoolVar(&f.exhaustiveBurst, "exhaustive-burst", false, "report every rapid-burst window, not only the first per user")
}
