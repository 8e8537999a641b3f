package main

import (
	"fmt"
	"io"
	"maps"
	"slices"
	"strings"
	"time"

	"github.com/dustin/go-humanize"

	"github.com/crimson-sun/vlogscan/internal/model"
)

// printSummary writes a short human-readable report to w (stderr), so it
// never mixes with NDJSON records on stdout.
func printSummary(w io.Writer, r *model.Report, elapsed time.Duration) {
	s := r.Summary
	fmt.Fprintf(w, "\nvlogscan run %s\n", r.RunID)
	fmt.Fprintf(w, "  Lines      : %s from %d source(s) in %s\n",
		humanize.Comma(int64(s.Lines)), s.Sources, elapsed.Round(time.Millisecond))
	fmt.Fprintf(w, "  Valid      : %s (%s recovered leniently)\n",
		humanize.Comma(int64(s.ValidEvents)), humanize.Comma(int64(s.RecoveredEvents)))

	if len(s.ParseErrors) > 0 {
		var parts []string
		for _, k := range model.ErrorKinds() {
			if n := s.ParseErrors[k]; n > 0 {
				parts = append(parts, fmt.Sprintf("%s=%s", k, humanize.Comma(int64(n))))
			}
		}
		fmt.Fprintf(w, "  Errors     : %s\n", strings.Join(parts, " "))
	}
	for _, se := range r.SourceErrors {
		fmt.Fprintf(w, "  Source err : %s: %s\n", se.Source, se.Error)
	}

	if s.NoData {
		fmt.Fprintln(w, "  No valid timestamped events; nothing to analyze.")
		return
	}

	for _, e := range s.AnalysisErrors {
		fmt.Fprintf(w, "  Skipped    : %s\n", e)
	}

	first, last := time.Unix(s.FirstTimestamp, 0).UTC(), time.Unix(s.LastTimestamp, 0).UTC()
	fmt.Fprintf(w, "  Span       : %s .. %s (%s)\n",
		first.Format(time.RFC3339), last.Format(time.RFC3339),
		strings.TrimSpace(humanize.RelTime(first, last, "", "")))
	fmt.Fprintf(w, "  Buckets    : %s (%s anomalous)\n",
		humanize.Comma(int64(s.Buckets)), humanize.Comma(int64(s.AnomalousBuckets)))

	if len(r.Findings) == 0 {
		fmt.Fprintln(w, "  Findings   : none")
	} else {
		fmt.Fprintf(w, "  Findings   : %s\n", humanize.Comma(int64(len(r.Findings))))
		for _, rule := range slices.Sorted(maps.Keys(s.FindingsByRule)) {
			fmt.Fprintf(w, "    %-24s %d\n", rule, s.FindingsByRule[rule])
		}
	}
	for _, e := range r.RuleErrors {
		fmt.Fprintf(w, "  Rule error : %s\n", e)
	}
}
