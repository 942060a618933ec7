package transform

import (
	"context"
	"fmt"
	"log/slog"
	"math"
	"sort"
	"time"

	"tableprep/internal/dataset"
)

// Engine applies the transformation stages. It is safe to reuse across
// runs and holds no learned state of its own: fitted parameters live in
// the Result returned by FitTransform.
type Engine struct {
	logger *slog.Logger
	config Config
}

// NewEngine creates a transformation engine. A nil logger falls back to
// slog.Default(); empty method names and zero limits are filled from
// DefaultConfig.
func NewEngine(logger *slog.Logger, config Config) *Engine {
	if logger == nil {
		logger = slog.Default()
	}
	return &Engine{logger: logger, config: config.withDefaults()}
}

// Config returns the effective configuration.
func (e *Engine) Config() Config {
	return e.config
}

// FitTransform learns transformation parameters from the table and applies
// them in one pass. targetColumn names the prediction target: it is never
// encoded, and TARGET encoding computes its per-category means from it.
// Pass "" when there is no target. The input table is never mutated.
func (e *Engine) FitTransform(ctx context.Context, tbl *dataset.Table, targetColumn string) (*dataset.Table, *Result, error) {
	if tbl == nil {
		return nil, nil, fmt.Errorf("fit transform: nil table")
	}
	if err := e.config.Validate(); err != nil {
		return nil, nil, fmt.Errorf("fit transform: %w", err)
	}

	start := time.Now()
	result := NewResult()
	out := tbl.Clone()

	e.replaceInfinities(out, result)

	var dateSources []string
	if e.config.ExtractDateFeatures {
		dateSources = e.dateSourceColumns(out)
		e.extractDateFeatures(out, dateSources, e.config.DateFeatures, result)
		if len(dateSources) > 0 {
			result.DateColumns = dateSources
			result.DateFeatures = append([]string(nil), e.config.DateFeatures...)
		}
	}

	e.encodeColumns(ctx, out, targetColumn, dateSources, result)
	e.scaleColumns(out, result)

	result.Duration = time.Since(start)
	e.logger.InfoContext(ctx, "transformation complete",
		slog.Int("columns_scaled", len(result.ScaleParams)),
		slog.Int("columns_encoded", len(result.EncodeParams)),
		slog.Int("date_columns", len(result.DateColumns)),
		slog.Int("columns_added", len(result.ColumnsAdded)),
		slog.Duration("duration", result.Duration))

	return out, result, nil
}

// Transform replays a previously fitted transformation on new data using
// only the captured state in prior: the same date columns and features,
// the same encoding mappings (unseen categories map to null, or to
// all-false one-hot rows), the same scaling statistics. Columns named in
// prior but absent from the table are skipped; columns the fit never saw
// pass through untouched.
func (e *Engine) Transform(ctx context.Context, tbl *dataset.Table, prior *Result) (*dataset.Table, error) {
	if tbl == nil {
		return nil, fmt.Errorf("transform: nil table")
	}
	if prior == nil {
		return nil, fmt.Errorf("transform: nil prior result")
	}

	out := tbl.Clone()
	e.replaceInfinities(out, nil)

	for _, name := range prior.DateColumns {
		if !out.HasColumn(name) {
			e.logger.DebugContext(ctx, "date column missing at replay", slog.String("column", name))
			continue
		}
		e.extractDateFeatures(out, []string{name}, prior.DateFeatures, nil)
	}

	for _, name := range sortedKeys(prior.EncodeParams) {
		col, ok := out.Column(name)
		if !ok {
			e.logger.DebugContext(ctx, "encoded column missing at replay", slog.String("column", name))
			continue
		}
		if err := replayEncoding(out, col, prior.EncodeParams[name]); err != nil {
			e.logger.WarnContext(ctx, "encoding replay failed",
				slog.String("column", name),
				slog.String("error", err.Error()))
		}
	}

	for _, name := range sortedKeys(prior.ScaleParams) {
		col, ok := out.Column(name)
		if !ok {
			e.logger.DebugContext(ctx, "scaled column missing at replay", slog.String("column", name))
			continue
		}
		applyScale(col, prior.ScaleParams[name])
	}

	return out, nil
}

// InverseTransformColumn reverses a column's scaling using its captured
// parameters, returning a new slice. Columns with no captured parameters
// come back unchanged; NaN elements pass through.
func (e *Engine) InverseTransformColumn(values []float64, column string, prior *Result) ([]float64, error) {
	out := make([]float64, len(values))
	copy(out, values)
	if prior == nil {
		return out, nil
	}
	params, ok := prior.ScaleParams[column]
	if !ok {
		return out, nil
	}
	for i, y := range out {
		if math.IsNaN(y) {
			continue
		}
		out[i] = inverseValue(y, params)
	}
	return out, nil
}

// replaceInfinities applies the infinity policy. ±Inf can only live in
// float cells, so only those are inspected. A nil result skips counting,
// which replay uses.
func (e *Engine) replaceInfinities(tbl *dataset.Table, result *Result) {
	for _, col := range tbl.Columns() {
		count := 0
		for i, cell := range col.Values {
			f, isFloat := cell.(float64)
			if !isFloat || !math.IsInf(f, 0) {
				continue
			}
			if e.config.InfinityPolicy == InfinityClamp {
				if math.IsInf(f, 1) {
					col.Values[i] = e.config.InfinityClampValue
				} else {
					col.Values[i] = -e.config.InfinityClampValue
				}
			} else {
				col.Values[i] = nil
			}
			count++
		}
		if result != nil && count > 0 {
			result.InfinityReplaced[col.Name] = count
		}
	}
}

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for key := range m {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	return keys
}
