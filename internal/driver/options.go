package driver

import (
	"tartan/internal/ctypes"
	"tartan/internal/gvariant"
	"tartan/internal/parser"
)

// DefaultIncludes are the patterns matched when walking a directory.
var DefaultIncludes = []string{"*.c", "*.h"}

// CheckOptions configure a check run.
type CheckOptions struct {
	// Target selects the data model; the zero value means LP64.
	Target ctypes.Target
	// Table lists the recognised functions; nil selects the GLib defaults.
	Table *gvariant.Table
	// Typedefs are appended to the GLib prelude.
	Typedefs []parser.Typedef
	// Defines are -D style macro definitions ("NAME" or "NAME=VALUE").
	Defines []string

	MaxDiagnostics   int
	MaxDepth         int
	IgnoreWarnings   bool
	WarningsAsErrors bool

	// Charset is the input encoding; empty means UTF-8.
	Charset string
	// BaseDir is the directory diagnostic paths are rendered against.
	BaseDir string

	// Include and Exclude are glob patterns matched against file base
	// names and slash-separated relative paths while walking directories.
	Include []string
	Exclude []string

	// Jobs bounds the number of files checked at once; 0 means GOMAXPROCS.
	Jobs int

	// Cache stores per-file results between runs; nil disables it.
	Cache *DiskCache
	// Progress receives per-file events.
	Progress ProgressSink
	// EnableTimings records a phase report per file.
	EnableTimings bool
}

func (o *CheckOptions) table() *gvariant.Table {
	if o.Table == nil {
		return gvariant.DefaultTable()
	}
	return o.Table
}

func (o *CheckOptions) target() ctypes.Target {
	if o.Target.Name == "" {
		return ctypes.LP64
	}
	return o.Target
}

func (o *CheckOptions) includes() []string {
	if len(o.Include) == 0 {
		return DefaultIncludes
	}
	return o.Include
}
