package main

import (
	"fmt"
	"io"
	"text/tabwriter"
)

// maxListedSeeds caps the failing seeds printed per level
const maxListedSeeds = 8

// printReports writes one row per level, true if any board had a violation
func printReports(w io.Writer, reports []levelReport) bool {
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "LEVEL\tBOARDS\tWARNINGS\tVIOLATIONS\tFAILED SEEDS")
	failed := false
	for _, r := range reports {
		seeds := "-"
		if len(r.Failed) > 0 {
			failed = true
			shown := r.Failed
			if len(shown) > maxListedSeeds {
				shown = shown[:maxListedSeeds]
			}
			seeds = fmt.Sprint(shown)
			if len(r.Failed) > maxListedSeeds {
				seeds += fmt.Sprintf(" +%d", len(r.Failed)-maxListedSeeds)
			}
		}
		fmt.Fprintf(tw, "%s\t%d\t%d\t%d\t%s\n", r.Name, r.Boards, r.Warnings, r.Violations, seeds)
	}
	tw.Flush()
	return failed
}
