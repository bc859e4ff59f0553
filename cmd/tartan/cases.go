package main

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"tartan/internal/casefile"
	"tartan/internal/ctypes"
	"tartan/internal/diagfmt"
	"tartan/internal/driver"
)

var casesCmd = &cobra.Command{
	Use:   "cases [flags] <cases.c>...",
	Short: "Run section-based test case files and report TAP",
	Long: `Each section of a case file is a comment with the expected diagnostic
lines (or "No error") followed by a block of code. The block is wrapped in
the file's template, checked, and compared with the expectation.`,
	Args: cobra.MinimumNArgs(1),
	RunE: runCases,
}

func init() {
	casesCmd.Flags().BoolP("verbose", "v", false, "print the template and input of every file")
	casesCmd.Flags().IntSlice("filter", nil, "run only the sections with these indices (0-based, as in case names)")
	casesCmd.Flags().String("target", "", "data model of the checked code (lp64|ilp32|llp64)")
}

func runCases(cmd *cobra.Command, args []string) error {
	defer dumpTraceOnPanic()

	verbose, err := cmd.Flags().GetBool("verbose")
	if err != nil {
		return fmt.Errorf("failed to get verbose flag: %w", err)
	}
	filter, err := cmd.Flags().GetIntSlice("filter")
	if err != nil {
		return fmt.Errorf("failed to get filter flag: %w", err)
	}
	quiet, err := cmd.Root().PersistentFlags().GetBool("quiet")
	if err != nil {
		return fmt.Errorf("failed to get quiet flag: %w", err)
	}
	opts, err := casesOptions(cmd, args[0])
	if err != nil {
		return err
	}

	check := func(ctx context.Context, name string, src []byte) ([]string, error) {
		res, err := driver.CheckSource(ctx, name, src, opts)
		if err != nil {
			return nil, err
		}
		return diagfmt.PrettyLines(res.Bag, res.FileSet, diagfmt.PrettyOpts{ShowCodes: true}), nil
	}
	runner := casefile.NewRunner(nil, casefile.RunnerConfig{
		Check:   check,
		Output:  cmd.OutOrStdout(),
		Verbose: verbose,
		Filter:  filter,
	})

	var total casefile.RunResult
	for _, path := range args {
		data, err := os.ReadFile(path)
		if err != nil {
			return &exitError{code: exitUsage, err: fmt.Errorf("failed to read %s: %w", path, err)}
		}
		f, err := casefile.Parse(path, data)
		if err != nil {
			return &exitError{code: exitUsage, err: err}
		}
		res, err := runner.Run(cmd.Context(), f)
		total.Add(res)
		if err != nil {
			return fmt.Errorf("%s: %w", path, err)
		}
	}

	if !quiet {
		fmt.Fprintf(cmd.ErrOrStderr(), "%d passed, %d failed, %d skipped (%d cases)\n",
			total.Passed, total.Failed, total.Skipped, total.Total)
	}
	if total.Failed > 0 {
		return &exitError{code: exitDiagnostics}
	}
	return nil
}

// casesOptions applies the target, functions and typedefs of tartan.toml;
// limits and warning policy stay at their defaults so expectations do not
// depend on the project.
func casesOptions(cmd *cobra.Command, start string) (driver.CheckOptions, error) {
	var opts driver.CheckOptions
	configPath, err := cmd.Root().PersistentFlags().GetString("config")
	if err != nil {
		return opts, fmt.Errorf("failed to get config flag: %w", err)
	}
	manifest, _, err := loadProjectManifest(configPath, start)
	if err != nil {
		return opts, &exitError{code: exitUsage, err: err}
	}
	targetName := ""
	if manifest != nil {
		cfg := &manifest.Config
		targetName = cfg.Check.Target
		if opts.Table, err = cfg.functionTable(manifest.Path); err != nil {
			return opts, &exitError{code: exitUsage, err: err}
		}
		opts.Typedefs = cfg.typedefs()
	}
	if cmd.Flags().Changed("target") {
		if targetName, err = cmd.Flags().GetString("target"); err != nil {
			return opts, fmt.Errorf("failed to get target flag: %w", err)
		}
	}
	if opts.Target, err = ctypes.ParseTarget(targetName); err != nil {
		return opts, &exitError{code: exitUsage, err: err}
	}
	return opts, nil
}
