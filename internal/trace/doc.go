// Package trace records what tartan spends its time on.
//
// Spans bracket the driver, each pass over a file, each file and, at the
// debug level, each checked call. Point events mark single decisions made
// inside a span, such as the grammar production chosen for a format
// character.
//
//	tartan check --trace=- --trace-level=detail src/
//
// Tracers:
//
//   - Nop: disabled tracing, zero cost
//   - StreamTracer: writes every event as it happens
//   - RingTracer: keeps the last N events for a dump on failure
//   - MultiTracer: fans out to several tracers
//
// Tracers travel through the pipeline in a context:
//
//	ctx = trace.WithTracer(ctx, tracer)
//	span := trace.Begin(trace.FromContext(ctx), trace.ScopePass, "parse", parentID)
//	defer span.End("")
package trace
