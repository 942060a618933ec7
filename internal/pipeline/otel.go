package pipeline

import (
	"context"
	"log/slog"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"

	"tableprep/internal/infrastructure"
)

const TracerName = "tableprep.pipeline"

// Stage names. Span names derive from them as "pipeline.<stage>".
const (
	StageValidate  = "validate"
	StageClean     = "clean"
	StageTransform = "transform"
)

// Tracer provides OpenTelemetry instrumentation for pipeline runs. It works
// against the global providers, so it degrades to no-ops when telemetry is
// disabled.
type Tracer struct {
	tracer  trace.Tracer
	metrics *infrastructure.PipelineMetrics
}

// NewTracer creates a pipeline tracer on the global tracer and meter.
func NewTracer(logger *slog.Logger) *Tracer {
	metrics, err := infrastructure.CreatePipelineMetrics(otel.Meter(infrastructure.MeterName))
	if err != nil {
		if logger != nil {
			logger.Warn("pipeline metrics unavailable", slog.String("error", err.Error()))
		}
		metrics = nil
	}
	return &Tracer{
		tracer:  otel.Tracer(TracerName),
		metrics: metrics,
	}
}

// TraceRun opens the span covering a whole pipeline run.
func (t *Tracer) TraceRun(ctx context.Context, runID, source string, rowsIn int) (context.Context, trace.Span) {
	ctx, span := t.tracer.Start(ctx, "pipeline.run",
		trace.WithSpanKind(trace.SpanKindInternal),
		trace.WithAttributes(
			attribute.String("run.id", runID),
			attribute.String("run.source", source),
			attribute.Int("run.rows_in", rowsIn),
		),
	)

	if t.metrics != nil {
		t.metrics.RunsTotal.Add(ctx, 1)
		t.metrics.ActiveRuns.Add(ctx, 1)
	}

	return ctx, span
}

// RecordRunCompletion closes out a run: span attributes and status, the run
// duration histogram, the active-run gauge, and the processed-row counter.
func (t *Tracer) RecordRunCompletion(ctx context.Context, span trace.Span, report *RunReport, err error) {
	status := "success"
	if err != nil {
		status = "failure"
	}

	span.SetAttributes(
		attribute.String("run.status", status),
		attribute.Int("run.rows_out", report.RowsOut),
		attribute.Float64("run.duration_seconds", report.Duration.Seconds()),
	)

	if t.metrics != nil {
		t.metrics.RunDuration.Record(ctx, report.Duration.Seconds(),
			metric.WithAttributes(attribute.String("status", status)))
		t.metrics.ActiveRuns.Add(ctx, -1)
		if report.RowsIn > 0 {
			t.metrics.RowsProcessed.Add(ctx, int64(report.RowsIn))
		}
		if err != nil {
			t.metrics.RunErrors.Add(ctx, 1)
		}
	}

	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return
	}
	span.SetStatus(codes.Ok, "pipeline run completed")
}

// TraceStage opens the span for one stage execution.
func (t *Tracer) TraceStage(ctx context.Context, runID, stage string) (context.Context, trace.Span) {
	ctx, span := t.tracer.Start(ctx, "pipeline."+stage,
		trace.WithSpanKind(trace.SpanKindInternal),
		trace.WithAttributes(
			attribute.String("run.id", runID),
			attribute.String("stage.name", stage),
		),
	)

	if t.metrics != nil {
		t.metrics.StagesTotal.Add(ctx, 1,
			metric.WithAttributes(attribute.String("stage", stage)))
	}

	return ctx, span
}

// RecordStageCompletion records a stage's duration and status on its span
// and in the stage histogram.
func (t *Tracer) RecordStageCompletion(ctx context.Context, span trace.Span, stage string, duration time.Duration, success bool) {
	status := "success"
	if !success {
		status = "failure"
	}

	span.SetAttributes(
		attribute.String("stage.status", status),
		attribute.Float64("stage.duration_seconds", duration.Seconds()),
	)

	if t.metrics != nil {
		t.metrics.StageDuration.Record(ctx, duration.Seconds(),
			metric.WithAttributes(
				attribute.String("stage", stage),
				attribute.String("status", status),
			))
	}

	if success {
		span.SetStatus(codes.Ok, "stage completed")
	} else {
		span.SetStatus(codes.Error, "stage failed")
	}
}
