// Package pipeline composes the validation, cleaning, and transformation
// engines into one instrumented run.
//
// A Runner executes the enabled stages in order on a single table, wraps
// each stage in an OpenTelemetry span (pipeline.validate, pipeline.clean,
// pipeline.transform), records run and stage metrics, and returns the
// processed table together with a RunReport that embeds every stage's own
// report. Runs are independent: each gets a fresh UUID, its own engine
// instances, and its own report, so callers may execute many runs
// concurrently.
//
// Structural validation findings are data, not errors: a failing rule set
// never stops the run. Only configuration faults and canceled contexts
// abort, and cancellation is honored between stages, never inside one.
package pipeline
