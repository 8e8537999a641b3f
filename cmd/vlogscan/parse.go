package main

import (
	"fmt"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"github.com/crimson-sun/vlogscan/internal/model"
)

func newParseCmd(f *flags) *cobra.Command {
	return &cobra.Command{
		Use:   "parse [source...]",
		Short: "Parse lines and emit one event record per line",
		Long: `Parse reads each source and writes one event record per non-blank line,
in timeline order, without aggregation or rules. Lines that fail to parse
are emitted with their error so the full audit trail is preserved.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runParse(cmd, f, args)
		},
	}
}

func runParse(cmd *cobra.Command, f *flags, args []string) error {
	start := time.Now()
	a, err := newApp(cmd, f, args)
	if err != nil {
		return err
	}
	defer a.close()

	ctx := cmd.Context()
	events, srcErrs, err := a.pipeline.Parse(ctx, a.sources)
	if err != nil {
		return fmt.Errorf("parse: %w", err)
	}

	valid := 0
	for i := range events {
		if events[i].Usable() {
			valid++
		}
		rec := model.Record{Kind: model.KindEvent, Event: &events[i]}
		if err := a.output.Write(ctx, rec); err != nil {
			return fmt.Errorf("parse: write: %w", err)
		}
	}

	w := cmd.ErrOrStderr()
	for _, se := range srcErrs {
		fmt.Fprintf(w, "source %s failed: %s\n", se.Source, se.Error)
	}
	fmt.Fprintf(w, "parsed %s lines (%s valid, %s errors) in %s\n",
		humanize.Comma(int64(len(events))),
		humanize.Comma(int64(valid)),
		humanize.Comma(int64(len(events)-valid)),
		time.Since(start).Round(time.Millisecond),
	)
	if valid == 0 {
		return &exitError{code: 2, err: fmt.Errorf("no usable events")}
	}
	return nil
}
