package main

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"tartan/internal/ctypes"
	"tartan/internal/diag"
	"tartan/internal/diagfmt"
	"tartan/internal/driver"
	"tartan/internal/version"
)

const informationURI = "https://gitlab.freedesktop.org/tartan/tartan"

var checkCmd = &cobra.Command{
	Use:   "check [flags] [file.c|directory]...",
	Short: "Check GVariant format strings in C sources",
	Long: `Check every call to a recognised GVariant function in the given files
or directories (default: the current directory). Directories are walked
for files matching the include patterns.`,
	RunE: runCheck,
}

func init() {
	addCheckFlags(checkCmd.Flags())
}

func addCheckFlags(f *pflag.FlagSet) {
	f.String("format", "pretty", "output format (pretty|short|json|sarif)")
	f.String("target", "", "data model of the checked code (lp64|ilp32|llp64)")
	f.StringArrayP("define", "D", nil, "define a macro (NAME or NAME=VALUE)")
	f.Int("max-depth", 0, "maximum nesting of a format string (0 = default)")
	f.Bool("no-warnings", false, "ignore warnings in diagnostics")
	f.Bool("warnings-as-errors", false, "treat warnings as errors")
	f.String("charset", "", "input file encoding (default utf-8)")
	f.Int("jobs", 0, "max parallel workers (0=auto)")
	f.StringSlice("include", nil, "glob patterns of files to check inside directories")
	f.StringSlice("exclude", nil, "glob patterns of files and directories to skip")
	f.String("path-mode", "auto", "how paths are printed (auto|absolute|relative|basename)")
	f.Bool("with-notes", false, "include diagnostic notes in output")
	f.Bool("suggest", false, "include fix suggestions in output")
	f.Bool("preview", false, "show before/after lines for fix suggestions")
	f.Bool("codes", true, "append diagnostic IDs to pretty output")
	f.Int("context", 0, "source lines shown above each diagnostic")
	f.Bool("cache", false, "reuse results from the on-disk cache")
	f.String("cache-dir", "", "cache directory (default $XDG_CACHE_HOME/tartan)")
	f.Bool("clear-cache", false, "empty the cache before checking")
	f.String("ui", "auto", "progress UI (auto|on|off)")
	f.Bool("watch", false, "re-check when files change")
}

// outputSettings controls how results are rendered.
type outputSettings struct {
	format   string
	pathMode diagfmt.PathMode
	color    bool
	notes    bool
	fixes    bool
	preview  bool
	codes    bool
	context  int
	quiet    bool
}

func runCheck(cmd *cobra.Command, args []string) error {
	defer dumpTraceOnPanic()

	paths := args
	if len(paths) == 0 {
		paths = []string{"."}
	}

	configPath, err := cmd.Root().PersistentFlags().GetString("config")
	if err != nil {
		return fmt.Errorf("failed to get config flag: %w", err)
	}
	manifest, _, err := loadProjectManifest(configPath, paths[0])
	if err != nil {
		return &exitError{code: exitUsage, err: err}
	}

	opts, err := buildCheckOptions(cmd, manifest)
	if err != nil {
		return err
	}
	out, err := buildOutputSettings(cmd, manifest)
	if err != nil {
		return err
	}
	if err := attachCache(cmd, &opts); err != nil {
		return err
	}

	watch, err := cmd.Flags().GetBool("watch")
	if err != nil {
		return fmt.Errorf("failed to get watch flag: %w", err)
	}
	if watch {
		return runWatch(cmd, paths, opts, out)
	}

	files, err := driver.ExpandPaths(paths, &opts)
	if err != nil {
		return &exitError{code: exitUsage, err: err}
	}
	if len(files) == 0 {
		return usageError("no input files matched %s", strings.Join(paths, ", "))
	}

	uiFlag, err := cmd.Flags().GetString("ui")
	if err != nil {
		return fmt.Errorf("failed to get ui flag: %w", err)
	}
	mode, err := readUIMode(uiFlag)
	if err != nil {
		return &exitError{code: exitUsage, err: err}
	}

	var results []*driver.FileResult
	if shouldUseTUI(mode, len(files)) && out.format == "pretty" {
		results, err = runCheckWithUI(cmd.Context(), "checking", files, opts)
	} else {
		results, err = driver.CheckFiles(cmd.Context(), files, opts)
	}
	if err != nil {
		return fmt.Errorf("check failed: %w", err)
	}

	if err := writeResults(cmd.OutOrStdout(), cmd.ErrOrStderr(), results, out); err != nil {
		return err
	}
	if opts.EnableTimings {
		printTimingSummary(cmd.ErrOrStderr(), driver.SummarizeTimings(results, 5))
	}
	if anyErrors(results) {
		return &exitError{code: exitDiagnostics}
	}
	return nil
}

func runWatch(cmd *cobra.Command, paths []string, opts driver.CheckOptions, out outputSettings) error {
	stdout, stderr := cmd.OutOrStdout(), cmd.ErrOrStderr()
	err := driver.Watch(cmd.Context(), paths, opts, driver.DefaultDebounce, func(results []*driver.FileResult, err error) error {
		if err != nil {
			fmt.Fprintf(stderr, "tartan: %v\n", err)
			return nil
		}
		if !out.quiet {
			fmt.Fprintf(stderr, "-- checked %d file(s)\n", len(results))
		}
		if err := writeResults(stdout, stderr, results, out); err != nil {
			return err
		}
		if opts.EnableTimings {
			printTimingSummary(stderr, driver.SummarizeTimings(results, 5))
		}
		return nil
	})
	if err != nil && cmd.Context().Err() == nil {
		return err
	}
	return nil
}

// buildCheckOptions merges tartan.toml with the command line. Flags win
// only when set explicitly.
func buildCheckOptions(cmd *cobra.Command, manifest *projectManifest) (driver.CheckOptions, error) {
	var (
		cfg     projectConfig
		cfgPath string
		opts    driver.CheckOptions
	)
	if manifest != nil {
		cfg = manifest.Config
		cfgPath = manifest.Path
		opts.BaseDir = manifest.Root
	} else if wd, err := os.Getwd(); err == nil {
		opts.BaseDir = wd
	}
	flags := cmd.Flags()
	root := cmd.Root().PersistentFlags()

	targetName := cfg.Check.Target
	if flags.Changed("target") {
		v, err := flags.GetString("target")
		if err != nil {
			return opts, fmt.Errorf("failed to get target flag: %w", err)
		}
		targetName = v
	}
	target, err := ctypes.ParseTarget(targetName)
	if err != nil {
		return opts, &exitError{code: exitUsage, err: err}
	}
	opts.Target = target

	table, err := cfg.functionTable(cfgPath)
	if err != nil {
		return opts, &exitError{code: exitUsage, err: err}
	}
	opts.Table = table
	opts.Typedefs = cfg.typedefs()

	defines, err := flags.GetStringArray("define")
	if err != nil {
		return opts, fmt.Errorf("failed to get define flag: %w", err)
	}
	opts.Defines = append(append([]string(nil), cfg.Check.Defines...), defines...)

	opts.MaxDepth = cfg.Check.MaxDepth
	if flags.Changed("max-depth") {
		if opts.MaxDepth, err = flags.GetInt("max-depth"); err != nil {
			return opts, fmt.Errorf("failed to get max-depth flag: %w", err)
		}
	}
	if opts.MaxDiagnostics, err = root.GetInt("max-diagnostics"); err != nil {
		return opts, fmt.Errorf("failed to get max-diagnostics flag: %w", err)
	}
	if !root.Changed("max-diagnostics") && cfg.Check.MaxDiagnostics != 0 {
		opts.MaxDiagnostics = cfg.Check.MaxDiagnostics
	}

	opts.IgnoreWarnings = cfg.Check.NoWarnings
	if flags.Changed("no-warnings") {
		if opts.IgnoreWarnings, err = flags.GetBool("no-warnings"); err != nil {
			return opts, fmt.Errorf("failed to get no-warnings flag: %w", err)
		}
	}
	opts.WarningsAsErrors = cfg.Check.WarningsAsErrors
	if flags.Changed("warnings-as-errors") {
		if opts.WarningsAsErrors, err = flags.GetBool("warnings-as-errors"); err != nil {
			return opts, fmt.Errorf("failed to get warnings-as-errors flag: %w", err)
		}
	}
	if opts.IgnoreWarnings && opts.WarningsAsErrors {
		return opts, usageError("no-warnings and warnings-as-errors cannot be used together")
	}

	opts.Charset = cfg.Check.Charset
	if flags.Changed("charset") {
		if opts.Charset, err = flags.GetString("charset"); err != nil {
			return opts, fmt.Errorf("failed to get charset flag: %w", err)
		}
	}
	opts.Jobs = cfg.Check.Jobs
	if flags.Changed("jobs") {
		if opts.Jobs, err = flags.GetInt("jobs"); err != nil {
			return opts, fmt.Errorf("failed to get jobs flag: %w", err)
		}
	}

	opts.Include = cfg.Files.Include
	if flags.Changed("include") {
		if opts.Include, err = flags.GetStringSlice("include"); err != nil {
			return opts, fmt.Errorf("failed to get include flag: %w", err)
		}
	}
	opts.Exclude = cfg.Files.Exclude
	if flags.Changed("exclude") {
		if opts.Exclude, err = flags.GetStringSlice("exclude"); err != nil {
			return opts, fmt.Errorf("failed to get exclude flag: %w", err)
		}
	}

	if opts.EnableTimings, err = root.GetBool("timings"); err != nil {
		return opts, fmt.Errorf("failed to get timings flag: %w", err)
	}
	return opts, nil
}

func buildOutputSettings(cmd *cobra.Command, manifest *projectManifest) (outputSettings, error) {
	var out outputSettings
	flags := cmd.Flags()
	var err error

	out.format = "pretty"
	if manifest != nil && manifest.Config.Check.Format != "" {
		out.format = manifest.Config.Check.Format
	}
	if flags.Changed("format") {
		if out.format, err = flags.GetString("format"); err != nil {
			return out, fmt.Errorf("failed to get format flag: %w", err)
		}
	}
	switch out.format {
	case "pretty", "short", "json", "sarif":
	default:
		return out, usageError("unknown format: %s (expected pretty|short|json|sarif)", out.format)
	}

	pathMode, err := flags.GetString("path-mode")
	if err != nil {
		return out, fmt.Errorf("failed to get path-mode flag: %w", err)
	}
	if out.pathMode, err = diagfmt.ParsePathMode(pathMode); err != nil {
		return out, &exitError{code: exitUsage, err: err}
	}
	if out.notes, err = flags.GetBool("with-notes"); err != nil {
		return out, fmt.Errorf("failed to get with-notes flag: %w", err)
	}
	if out.fixes, err = flags.GetBool("suggest"); err != nil {
		return out, fmt.Errorf("failed to get suggest flag: %w", err)
	}
	if out.preview, err = flags.GetBool("preview"); err != nil {
		return out, fmt.Errorf("failed to get preview flag: %w", err)
	}
	out.fixes = out.fixes || out.preview
	if out.codes, err = flags.GetBool("codes"); err != nil {
		return out, fmt.Errorf("failed to get codes flag: %w", err)
	}
	if out.context, err = flags.GetInt("context"); err != nil {
		return out, fmt.Errorf("failed to get context flag: %w", err)
	}
	if out.quiet, err = cmd.Root().PersistentFlags().GetBool("quiet"); err != nil {
		return out, fmt.Errorf("failed to get quiet flag: %w", err)
	}
	if out.color, err = useColor(cmd); err != nil {
		return out, err
	}
	return out, nil
}

func attachCache(cmd *cobra.Command, opts *driver.CheckOptions) error {
	flags := cmd.Flags()
	enabled, err := flags.GetBool("cache")
	if err != nil {
		return fmt.Errorf("failed to get cache flag: %w", err)
	}
	drop, err := flags.GetBool("clear-cache")
	if err != nil {
		return fmt.Errorf("failed to get clear-cache flag: %w", err)
	}
	if !enabled && !drop {
		return nil
	}
	dir, err := flags.GetString("cache-dir")
	if err != nil {
		return fmt.Errorf("failed to get cache-dir flag: %w", err)
	}
	var cache *driver.DiskCache
	if dir != "" {
		cache, err = driver.OpenDiskCacheAt(dir)
	} else {
		cache, err = driver.OpenDiskCache("tartan")
	}
	if err != nil {
		return fmt.Errorf("open cache: %w", err)
	}
	if drop {
		if err := cache.DropAll(); err != nil {
			return fmt.Errorf("clear cache: %w", err)
		}
	}
	if enabled {
		opts.Cache = cache
	}
	return nil
}

func units(results []*driver.FileResult) []diagfmt.Unit {
	out := make([]diagfmt.Unit, 0, len(results))
	for _, r := range results {
		if r == nil {
			continue
		}
		out = append(out, diagfmt.Unit{Path: r.Path, Bag: r.Bag, FileSet: r.FileSet, Cached: r.Cached})
	}
	return out
}

// writeResults renders results to stdout; the pretty summary line goes
// to stderr like a compiler's.
func writeResults(stdout, stderr io.Writer, results []*driver.FileResult, out outputSettings) error {
	switch out.format {
	case "json":
		return diagfmt.JSONRun(stdout, units(results), diagfmt.JSONOpts{
			IncludePositions: true,
			PathMode:         out.pathMode,
			IncludeNotes:     out.notes,
			IncludeFixes:     out.fixes,
			IncludePreviews:  out.preview,
		})
	case "sarif":
		return diagfmt.SarifRun(stdout, units(results), diagfmt.SarifRunMeta{
			ToolName:       "tartan",
			ToolVersion:    version.Version,
			InformationURI: informationURI,
			InvocationArgs: os.Args,
			PathMode:       out.pathMode,
		})
	case "short":
		for _, r := range results {
			if r == nil || r.Bag.Len() == 0 {
				continue
			}
			if text := diag.FormatShortDiagnostics(r.Bag.Items(), r.FileSet, out.notes); text != "" {
				fmt.Fprintln(stdout, text)
			}
		}
		return nil
	default:
		opts := diagfmt.PrettyOpts{
			Color:       out.color,
			Context:     int8(min(max(out.context, 0), 127)),
			PathMode:    out.pathMode,
			ShowNotes:   out.notes,
			ShowFixes:   out.fixes,
			ShowPreview: out.preview,
			ShowCodes:   out.codes,
		}
		nerr, nwarn, dropped := 0, 0, 0
		for _, r := range results {
			if r == nil {
				continue
			}
			diagfmt.Pretty(stdout, r.Bag, r.FileSet, opts)
			nerr += r.Bag.Count(diag.SevError)
			nwarn += r.Bag.Count(diag.SevWarning)
			dropped += r.Bag.Dropped()
		}
		if !out.quiet {
			if line := summaryLine(nerr, nwarn, dropped); line != "" {
				fmt.Fprintln(stderr, line)
			}
		}
		return nil
	}
}

// summaryLine mimics clang: "2 warnings and 1 error generated."
func summaryLine(errors, warnings, dropped int) string {
	var parts []string
	if warnings > 0 {
		parts = append(parts, plural(warnings, "warning"))
	}
	if errors > 0 {
		parts = append(parts, plural(errors, "error"))
	}
	if len(parts) == 0 {
		return ""
	}
	line := strings.Join(parts, " and ") + " generated."
	if dropped > 0 {
		line += fmt.Sprintf(" (%d more not shown)", dropped)
	}
	return line
}

func plural(n int, word string) string {
	if n == 1 {
		return "1 " + word
	}
	return fmt.Sprintf("%d %ss", n, word)
}

func anyErrors(results []*driver.FileResult) bool {
	for _, r := range results {
		if r != nil && r.Bag.HasErrors() {
			return true
		}
	}
	return false
}
