package driver

import (
	"cmp"
	"slices"

	"tartan/internal/observ"
)

// FileTiming is the total check time of one file.
type FileTiming struct {
	Path    string  `json:"path"`
	TotalMS float64 `json:"total_ms"`
}

// TimingSummary aggregates per-file phase reports of a run.
type TimingSummary struct {
	Files   int                  `json:"files"`
	TotalMS float64              `json:"total_ms"`
	Phases  []observ.PhaseReport `json:"phases"`
	Slowest []FileTiming         `json:"slowest,omitempty"`
}

// SummarizeTimings sums phase durations by name, keeping the order in which
// phases first appear, and lists the top slowest files. Results without a
// timing report (cached or failed loads) are skipped.
func SummarizeTimings(results []*FileResult, top int) TimingSummary {
	var sum TimingSummary
	var merged observ.Report
	files := make([]FileTiming, 0, len(results))
	for _, res := range results {
		if res == nil || res.Timing == nil {
			continue
		}
		sum.Files++
		merged.Merge(*res.Timing)
		files = append(files, FileTiming{Path: res.Path, TotalMS: res.Timing.TotalMS})
	}
	sum.TotalMS = merged.TotalMS
	sum.Phases = merged.Phases
	slices.SortStableFunc(files, func(a, b FileTiming) int {
		return cmp.Compare(b.TotalMS, a.TotalMS)
	})
	if top > 0 && len(files) > top {
		files = files[:top]
	}
	if top > 0 {
		sum.Slowest = files
	}
	return sum
}
