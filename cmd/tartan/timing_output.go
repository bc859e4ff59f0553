package main

import (
	"fmt"
	"io"

	"tartan/internal/driver"
)

// printTimingSummary writes the phase totals of a run and its slowest files.
func printTimingSummary(out io.Writer, sum driver.TimingSummary) {
	if out == nil || sum.Files == 0 {
		return
	}
	fmt.Fprintf(out, "timings (%d files):\n", sum.Files)
	for _, p := range sum.Phases {
		fmt.Fprintf(out, "  %-20s %7.2f ms\n", p.Name, p.DurationMS)
	}
	fmt.Fprintf(out, "  %-20s %7.2f ms\n", "total", sum.TotalMS)
	if len(sum.Slowest) > 1 {
		fmt.Fprintln(out, "slowest:")
		for _, f := range sum.Slowest {
			fmt.Fprintf(out, "  %7.2f ms  %s\n", f.TotalMS, f.Path)
		}
	}
}
