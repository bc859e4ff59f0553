package casefile

import (
	"context"
	"fmt"
	"io"
	"path/filepath"
	"slices"
	"strings"
)

// CheckFunc checks one assembled translation unit and returns the
// rendered diagnostics, one output line per element.
type CheckFunc func(ctx context.Context, name string, src []byte) ([]string, error)

// RunnerConfig configures case execution.
type RunnerConfig struct {
	// Check runs the checker over one case.
	Check CheckFunc

	// Output receives TAP lines.
	Output io.Writer

	// Verbose adds "#" comment lines naming the template and input.
	Verbose bool

	// Filter limits execution to the given case indices (empty = all).
	Filter []int
}

// RunResult contains the outcome of running a case file.
type RunResult struct {
	Total   int
	Skipped int
	Passed  int
	Failed  int
}

// Add accumulates other into r.
func (r *RunResult) Add(other RunResult) {
	r.Total += other.Total
	r.Skipped += other.Skipped
	r.Passed += other.Passed
	r.Failed += other.Failed
}

// Runner checks the cases of a file and reports in TAP form.
type Runner struct {
	config    RunnerConfig
	templates *Registry
}

// NewRunner creates a runner resolving templates from templates; nil
// selects the built-in ones.
func NewRunner(templates *Registry, config RunnerConfig) *Runner {
	if templates == nil {
		templates = NewRegistry()
	}
	if config.Output == nil {
		config.Output = io.Discard
	}
	return &Runner{
		config:    config,
		templates: templates,
	}
}

// Run checks every case of f. The returned error covers an unknown
// template, a missing CheckFunc and cancellation; failing cases are
// reported in the result.
func (r *Runner) Run(ctx context.Context, f *File) (RunResult, error) {
	if r.config.Check == nil {
		return RunResult{}, fmt.Errorf("casefile: runner has no check function")
	}
	tpl, ok := r.templates.Lookup(f.Template)
	if !ok {
		return RunResult{}, fmt.Errorf("%s: unknown template %q (known: %s)",
			f.Path, f.Template, strings.Join(r.templates.Names(), ", "))
	}

	out := r.config.Output
	result := RunResult{Total: len(f.Cases)}
	fmt.Fprintf(out, "1..%d\n", len(f.Cases))
	if r.config.Verbose {
		fmt.Fprintf(out, "# reading input from %s\n", f.Path)
		fmt.Fprintf(out, "# using template %s\n", tpl.Name)
	}

	base := filepath.Base(f.Path)
	for i := range f.Cases {
		if err := ctx.Err(); err != nil {
			return result, err
		}
		c := &f.Cases[i]
		if !r.selected(c.Index) {
			fmt.Fprintf(out, "ok %d %s # SKIP filtered\n", i+1, c.Name)
			result.Skipped++
			continue
		}
		output, err := r.config.Check(ctx, c.FileName(base), []byte(c.Source(tpl)))
		if err != nil {
			return result, fmt.Errorf("%s: %w", c.Name, err)
		}
		if r.report(c, output) {
			fmt.Fprintf(out, "ok %d %s\n", i+1, c.Name)
			result.Passed++
		} else {
			fmt.Fprintf(out, "not ok %d %s\n", i+1, c.Name)
			result.Failed++
		}
	}
	return result, nil
}

// report compares output with the expectation of c and writes TAP
// comments explaining a failure.
func (r *Runner) report(c *Case, output []string) bool {
	out := r.config.Output
	if c.NoError() {
		if len(output) == 0 {
			return true
		}
		fmt.Fprintln(out, "# Error: checker error when none was expected.")
		writeTAPLines(out, output)
		return false
	}
	missing := c.Nonmatching(output)
	if len(missing) == 0 {
		return true
	}
	for _, line := range missing {
		fmt.Fprintf(out, "# Non-matching line: %s\n", line)
	}
	fmt.Fprintln(out, "# Error: expected checker error was not seen.")
	fmt.Fprintln(out, "# Expected:")
	writeTAPLines(out, c.Expected)
	fmt.Fprintln(out, "# Actual:")
	writeTAPLines(out, output)
	return false
}

func (r *Runner) selected(idx int) bool {
	return len(r.config.Filter) == 0 || slices.Contains(r.config.Filter, idx)
}

func writeTAPLines(w io.Writer, lines []string) {
	for _, line := range lines {
		fmt.Fprintf(w, "#     %s\n", line)
	}
}
