package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"golang.org/x/term"

	"tartan/internal/version"
)

// Exit codes.
const (
	exitOK          = 0
	exitDiagnostics = 1
	exitUsage       = 2
)

// exitError carries a process exit code out of a command. A nil err
// means the command already reported what went wrong.
type exitError struct {
	code int
	err  error
}

func (e *exitError) Error() string {
	if e.err == nil {
		return fmt.Sprintf("exit status %d", e.code)
	}
	return e.err.Error()
}

func (e *exitError) Unwrap() error { return e.err }

func usageError(format string, args ...any) error {
	return &exitError{code: exitUsage, err: fmt.Errorf(format, args...)}
}

var (
	traceCleanup   func()
	profileCleanup func()
)

var rootCmd = &cobra.Command{
	Use:   "tartan",
	Short: "Static checker for GVariant format strings",
	Long: `Tartan checks calls to g_variant_new(), g_variant_get() and friends:
the format string is parsed and every variadic argument is compared
against the C type the format expects.`,
	SilenceErrors: true,
	SilenceUsage:  true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		cleanup, err := setupTracing(cmd)
		if err != nil {
			return &exitError{code: exitUsage, err: err}
		}
		traceCleanup = cleanup
		if profileCleanup, err = setupProfiling(cmd); err != nil {
			return &exitError{code: exitUsage, err: err}
		}
		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		runCleanups()
	},
}

// runCleanups stops profiling and flushes the tracer. PersistentPostRun
// does not run when a command fails, so main calls it again.
func runCleanups() {
	if profileCleanup != nil {
		profileCleanup()
		profileCleanup = nil
	}
	if traceCleanup != nil {
		traceCleanup()
		traceCleanup = nil
	}
}

func init() {
	rootCmd.AddCommand(checkCmd)
	rootCmd.AddCommand(casesCmd)
	rootCmd.AddCommand(funcsCmd)
	rootCmd.AddCommand(versionCmd)
	addRootFlags(rootCmd.PersistentFlags())
}

// addRootFlags registers the global flags.
func addRootFlags(f *pflag.FlagSet) {
	// Глобальные флаги
	f.String("color", "auto", "colorize output (auto|on|off)")
	f.Bool("quiet", false, "suppress non-essential output")
	f.Bool("timings", false, "show timing information")
	f.Int("max-diagnostics", 100, "maximum number of diagnostics per file (0 = unlimited)")
	f.String("config", "", "path to tartan.toml (default: search upwards from the first input)")

	f.String("trace", "", "write trace events to file (- for stderr)")
	f.String("trace-level", "off", "trace level (off|error|phase|detail|debug)")
	f.String("trace-format", "auto", "trace output format (auto|text|ndjson|chrome)")
	f.String("trace-mode", "stream", "trace storage mode (stream|ring|both)")
	f.Int("trace-ring-size", 4096, "ring buffer capacity for trace-mode ring|both")
	f.Duration("trace-heartbeat", 0, "emit heartbeat trace events at this interval (0 = off)")

	f.String("cpu-profile", "", "write a CPU profile to file")
	f.String("mem-profile", "", "write a heap profile to file on exit")
	f.String("runtime-trace", "", "write a Go runtime trace to file")
}

func main() {
	rootCmd.Version = version.Version

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	err := rootCmd.ExecuteContext(ctx)
	stop()
	runCleanups()
	os.Exit(exitCode(err))
}

// exitCode reports err on stderr and maps it to a process exit code.
func exitCode(err error) int {
	if err == nil {
		return exitOK
	}
	var ee *exitError
	if errors.As(err, &ee) {
		if ee.err != nil {
			fmt.Fprintf(os.Stderr, "tartan: %v\n", ee.err)
		}
		return ee.code
	}
	fmt.Fprintf(os.Stderr, "tartan: %v\n", err)
	return exitUsage
}

// isTerminal проверяет, является ли файл терминалом
func isTerminal(f *os.File) bool {
	return term.IsTerminal(int(f.Fd()))
}

func useColor(cmd *cobra.Command) (bool, error) {
	colorFlag, err := cmd.Root().PersistentFlags().GetString("color")
	if err != nil {
		return false, err
	}
	switch colorFlag {
	case "on":
		return true, nil
	case "off":
		return false, nil
	case "auto", "":
		return isTerminal(os.Stdout), nil
	default:
		return false, usageError("invalid --color value %q (expected auto|on|off)", colorFlag)
	}
}
