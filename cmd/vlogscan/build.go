package main

import (
	"errors"
	"fmt"
	"io"
	"log/slog"

	"github.com/crimson-sun/vlogscan/internal/config"
	"github.com/crimson-sun/vlogscan/internal/output"
	"github.com/crimson-sun/vlogscan/internal/output/async"
	"github.com/crimson-sun/vlogscan/internal/output/file"
	"github.com/crimson-sun/vlogscan/internal/output/multi"
	natsout "github.com/crimson-sun/vlogscan/internal/output/nats"
	"github.com/crimson-sun/vlogscan/internal/output/stdout"
	"github.com/crimson-sun/vlogscan/internal/output/webhook"
	"github.com/crimson-sun/vlogscan/internal/source"

	// Register source implementations.
	_ "github.com/crimson-sun/vlogscan/internal/source/file"
	_ "github.com/crimson-sun/vlogscan/internal/source/remote"
	_ "github.com/crimson-sun/vlogscan/internal/source/stream"
)

// openSources resolves each argument to a registered source. No arguments
// means stdin.
func openSources(args []string, cfg config.SourceConfig) ([]source.Source, error) {
	if len(args) == 0 {
		args = []string{"-"}
	}
	scfg := source.Config{Token: cfg.Token, Timeout: cfg.Timeout}
	srcs := make([]source.Source, 0, len(args))
	for _, arg := range args {
		src, err := source.Open(source.Kind(arg), arg, scfg)
		if err != nil {
			return nil, err
		}
		srcs = append(srcs, src)
	}
	return srcs, nil
}

// buildOutput creates every configured destination and fans out to them.
// Network destinations are wrapped in an async buffer when cfg.Async is set.
func buildOutput(cfg config.OutputConfig, w io.Writer, logger *slog.Logger) (output.Output, error) {
	verbosity, err := output.ParseVerbosity(cfg.Verbosity)
	if err != nil {
		return nil, err
	}

	var outs []output.Output
	fail := func(err error) (output.Output, error) {
		for _, o := range outs {
			o.Close()
		}
		return nil, err
	}

	for _, dest := range cfg.Destinations {
		var o output.Output
		switch dest {
		case "stdout":
			opts := []stdout.Option{stdout.WithWriter(w)}
			if cfg.Pretty {
				opts = append(opts, stdout.WithPretty())
			}
			o = stdout.New(verbosity, opts...)
		case "file":
			fo, err := file.New(cfg.FilePath, verbosity, file.WithMaxSize(cfg.FileMaxSize))
			if err != nil {
				return fail(fmt.Errorf("file output: %w", err))
			}
			o = fo
		case "webhook":
			o = webhook.New(cfg.WebhookURL,
				webhook.WithHeaders(cfg.WebhookHeaders),
				webhook.WithOnError(func(err error) {
					logger.Warn("webhook delivery failed", "url", cfg.WebhookURL, "error", err)
				}),
			)
		case "nats":
			no, err := natsout.Dial(cfg.NATSURL, natsout.WithPrefix(cfg.NATSPrefix))
			if err != nil {
				return fail(err)
			}
			o = no
		default:
			return fail(fmt.Errorf("unknown output destination %q", dest))
		}

		if cfg.Async && (dest == "webhook" || dest == "nats") {
			o = async.New(o,
				async.WithBufferSize(cfg.AsyncBuffer),
				async.WithOnError(func(err error) {
					logger.Warn("async output write failed", "output", dest, "error", err)
				}),
			)
		}
		outs = append(outs, o)
	}

	switch len(outs) {
	case 0:
		return nil, errors.New("no output destinations configured")
	case 1:
		return outs[0], nil
	default:
		return multi.New(outs...), nil
	}
}
