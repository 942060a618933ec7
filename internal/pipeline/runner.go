package pipeline

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel/attribute"

	"tableprep/internal/cleaning"
	"tableprep/internal/dataset"
	"tableprep/internal/transform"
	"tableprep/internal/validation"
)

// RunConfig selects which stages run and carries each engine's
// configuration. The zero value runs nothing; DefaultRunConfig enables all
// three stages with engine defaults.
type RunConfig struct {
	Source string

	ValidationEnabled bool
	CleaningEnabled   bool
	TransformEnabled  bool

	Rules        []validation.Rule
	Cleaning     cleaning.Config
	Transform    transform.Config
	TargetColumn string
}

// DefaultRunConfig returns a configuration running all three stages with
// the engines' own defaults and no validation rules.
func DefaultRunConfig() RunConfig {
	return RunConfig{
		ValidationEnabled: true,
		CleaningEnabled:   true,
		TransformEnabled:  true,
		Cleaning:          cleaning.DefaultConfig(),
		Transform:         transform.DefaultConfig(),
	}
}

// Runner executes pipeline runs. It is stateless across runs and safe for
// concurrent use; engines are built per run from the run's configuration.
type Runner struct {
	logger    *slog.Logger
	tracer    *Tracer
	validator *validation.Validator
}

// NewRunner creates a runner. A nil logger falls back to slog.Default().
func NewRunner(logger *slog.Logger) *Runner {
	if logger == nil {
		logger = slog.Default()
	}
	return &Runner{
		logger:    logger,
		tracer:    NewTracer(logger),
		validator: validation.NewValidator(logger),
	}
}

// Run executes the enabled stages in order on the table and returns the
// processed table plus the consolidated report. The input table is never
// mutated. Rule violations are recorded in the report, not returned as
// errors; only configuration faults and cancellation abort the run.
func (r *Runner) Run(ctx context.Context, tbl *dataset.Table, cfg RunConfig) (*dataset.Table, *RunReport, error) {
	if tbl == nil {
		return nil, nil, fmt.Errorf("pipeline run: nil table")
	}

	start := time.Now()
	report := &RunReport{
		RunID:             uuid.New().String(),
		Source:            cfg.Source,
		ValidationEnabled: cfg.ValidationEnabled,
		CleaningEnabled:   cfg.CleaningEnabled,
		TransformEnabled:  cfg.TransformEnabled,
		RowsIn:            tbl.RowCount(),
	}

	ctx, span := r.tracer.TraceRun(ctx, report.RunID, cfg.Source, report.RowsIn)
	defer span.End()

	out, err := r.execute(ctx, tbl, cfg, report)
	if out != nil {
		report.RowsOut = out.RowCount()
	}
	report.Duration = time.Since(start)
	r.tracer.RecordRunCompletion(ctx, span, report, err)
	if err != nil {
		return nil, nil, err
	}

	r.logger.InfoContext(ctx, "pipeline run complete",
		slog.String("run_id", report.RunID),
		slog.String("source", report.Source),
		slog.Int("rows_in", report.RowsIn),
		slog.Int("rows_out", report.RowsOut),
		slog.Int("warnings", len(report.Warnings)),
		slog.Duration("duration", report.Duration))

	return out, report, nil
}

// execute runs the stages. Cancellation is checked between stages only: a
// started stage always finishes.
func (r *Runner) execute(ctx context.Context, tbl *dataset.Table, cfg RunConfig, report *RunReport) (*dataset.Table, error) {
	current := tbl

	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("pipeline run: %w", err)
	}
	if cfg.ValidationEnabled {
		r.runValidation(ctx, current, cfg, report)
	}

	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("pipeline run: %w", err)
	}
	if cfg.CleaningEnabled {
		cleaned, err := r.runCleaning(ctx, current, cfg, report)
		if err != nil {
			return nil, err
		}
		current = cleaned
	}

	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("pipeline run: %w", err)
	}
	if cfg.TransformEnabled {
		transformed, err := r.runTransform(ctx, current, cfg, report)
		if err != nil {
			return nil, err
		}
		current = transformed
	}

	return current, nil
}

func (r *Runner) runValidation(ctx context.Context, tbl *dataset.Table, cfg RunConfig, report *RunReport) {
	stageCtx, span := r.tracer.TraceStage(ctx, report.RunID, StageValidate)
	defer span.End()
	stageStart := time.Now()

	result := r.validator.Validate(stageCtx, tbl, cfg.Rules)
	report.Validation = result

	span.SetAttributes(
		attribute.Int("validation.rules_evaluated", result.RulesEvaluated),
		attribute.Int("validation.error_violations", len(result.Errors)),
		attribute.Int("validation.warning_violations", len(result.Warnings)),
		attribute.Int("validation.invalid_rows", result.InvalidRows),
	)
	r.tracer.RecordStageCompletion(stageCtx, span, StageValidate, time.Since(stageStart), true)

	if !result.IsValid() {
		report.Warnings = append(report.Warnings,
			fmt.Sprintf("validation found %d error violations", len(result.Errors)))
	}
}

func (r *Runner) runCleaning(ctx context.Context, tbl *dataset.Table, cfg RunConfig, report *RunReport) (*dataset.Table, error) {
	stageCtx, span := r.tracer.TraceStage(ctx, report.RunID, StageClean)
	defer span.End()
	stageStart := time.Now()

	engine := cleaning.NewEngine(r.logger, cfg.Cleaning)
	cleaned, cleanReport, err := engine.Clean(stageCtx, tbl)
	if err != nil {
		r.tracer.RecordStageCompletion(stageCtx, span, StageClean, time.Since(stageStart), false)
		return nil, fmt.Errorf("pipeline clean: %w", err)
	}
	report.Cleaning = cleanReport

	span.SetAttributes(
		attribute.Int("clean.rows_before", cleanReport.RowsBefore),
		attribute.Int("clean.rows_after", cleanReport.RowsAfter),
		attribute.Int("clean.duplicates_removed", cleanReport.DuplicatesRemoved),
		attribute.Int("clean.nulls_handled", cleanReport.NullsHandled),
		attribute.Float64("clean.retention_rate", cleanReport.RetentionRate),
	)
	r.tracer.RecordStageCompletion(stageCtx, span, StageClean, time.Since(stageStart), true)

	for _, w := range cleanReport.Warnings {
		report.Warnings = append(report.Warnings, "clean: "+w)
	}
	return cleaned, nil
}

func (r *Runner) runTransform(ctx context.Context, tbl *dataset.Table, cfg RunConfig, report *RunReport) (*dataset.Table, error) {
	stageCtx, span := r.tracer.TraceStage(ctx, report.RunID, StageTransform)
	defer span.End()
	stageStart := time.Now()

	engine := transform.NewEngine(r.logger, cfg.Transform)
	transformed, transformResult, err := engine.FitTransform(stageCtx, tbl, cfg.TargetColumn)
	if err != nil {
		r.tracer.RecordStageCompletion(stageCtx, span, StageTransform, time.Since(stageStart), false)
		return nil, fmt.Errorf("pipeline transform: %w", err)
	}
	report.Transform = transformResult

	span.SetAttributes(
		attribute.Int("transform.columns_added", len(transformResult.ColumnsAdded)),
		attribute.Int("transform.columns_dropped", len(transformResult.ColumnsDropped)),
		attribute.Int("transform.scaled_columns", len(transformResult.ScaleParams)),
		attribute.Int("transform.encoded_columns", len(transformResult.EncodeParams)),
	)
	r.tracer.RecordStageCompletion(stageCtx, span, StageTransform, time.Since(stageStart), true)

	for _, w := range transformResult.Warnings {
		report.Warnings = append(report.Warnings, "transform: "+w)
	}
	return transformed, nil
}
