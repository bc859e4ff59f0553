// Package diag defines the diagnostic model shared by the lexer, the C front
// end and the GVariant checker.
//
// # Data model
//
// Diagnostic is the central record:
//
//   - Severity: Info, Warning or Error (severity.go).
//   - Code: compact numeric identifier with a stable string form (codes.go).
//   - Message: rendered, human oriented text.
//   - Primary: the source.Span the finding is anchored to.
//   - Notes: optional secondary spans with extra context.
//   - Fixes: optional text edits that would resolve the finding.
//
// # Emitting diagnostics
//
// Producers talk to a Reporter. ReportBuilder (ReportError, ReportWarning,
// ReportInfo) accumulates notes and fixes before Emit. BagReporter stores
// into a bounded Bag; DedupReporter drops repeated findings; FilterReporter
// drops or promotes warnings according to CLI policy.
//
// Package diag does no IO. Rendering lives in internal/diagfmt, except for the
// single-line short format in short.go which golden tests also use.
package diag
