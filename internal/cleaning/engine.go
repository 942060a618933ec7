package cleaning

import (
	"context"
	"fmt"
	"log/slog"
	"math"
	"strings"
	"time"

	"tableprep/internal/dataset"
	"tableprep/internal/stats"
)

// Engine cleans tables according to its configuration. An Engine is safe to
// reuse across runs: it holds no per-run state.
type Engine struct {
	logger *slog.Logger
	config Config
}

// NewEngine creates a cleaning engine. A nil logger falls back to
// slog.Default(); empty method names and zero thresholds are filled from
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

// Clean runs the cleaning stages in fixed order: text normalization,
// duplicate removal, high-null column drop, null handling, outlier handling,
// retention check. The input table is never mutated. Data problems surface
// in the report; the error return covers invalid configuration and a nil
// table only.
func (e *Engine) Clean(ctx context.Context, tbl *dataset.Table) (*dataset.Table, *Report, error) {
	if tbl == nil {
		return nil, nil, fmt.Errorf("clean: nil table")
	}
	if err := e.config.Validate(); err != nil {
		return nil, nil, fmt.Errorf("clean: %w", err)
	}

	start := time.Now()
	report := &Report{
		RowsBefore:       tbl.RowCount(),
		ColumnsBefore:    tbl.ColumnCount(),
		OutliersByColumn: make(map[string]int),
	}
	out := tbl.Clone()

	if e.config.NormalizeText {
		e.normalizeText(out)
	}
	if e.config.RemoveDuplicates {
		out = e.removeDuplicates(out, report)
	}
	e.dropHighNullColumns(out, report)
	out = e.handleNulls(out, report)
	out = e.handleOutliers(out, report)

	report.RowsAfter = out.RowCount()
	report.ColumnsAfter = out.ColumnCount()
	if report.RowsBefore == 0 {
		report.RetentionRate = 1.0
	} else {
		report.RetentionRate = float64(report.RowsAfter) / float64(report.RowsBefore)
	}
	report.MeetsRetentionRequirement = report.RetentionRate >= e.config.MinRetentionRate
	if !report.MeetsRetentionRequirement {
		report.Warnings = append(report.Warnings,
			fmt.Sprintf("retention rate %.2f below required minimum %.2f", report.RetentionRate, e.config.MinRetentionRate))
	}
	report.Duration = time.Since(start)

	e.logger.InfoContext(ctx, "cleaning complete",
		slog.Int("rows_before", report.RowsBefore),
		slog.Int("rows_after", report.RowsAfter),
		slog.Int("duplicates_removed", report.DuplicatesRemoved),
		slog.Int("nulls_handled", report.NullsHandled),
		slog.Float64("retention_rate", report.RetentionRate),
		slog.Duration("duration", report.Duration))

	return out, report, nil
}

// normalizeText trims whitespace (and optionally lower-cases) every cell of
// text-typed columns. Sentinels like "n/a" that surface after trimming
// become nulls.
func (e *Engine) normalizeText(tbl *dataset.Table) {
	for _, col := range tbl.Columns() {
		if col.DetectType() != dataset.TypeString {
			continue
		}
		for i, cell := range col.Values {
			s, ok := cell.(string)
			if !ok {
				continue
			}
			s = strings.TrimSpace(s)
			if e.config.LowercaseText {
				s = strings.ToLower(s)
			}
			if dataset.IsNullToken(s) {
				col.Values[i] = nil
				continue
			}
			col.Values[i] = s
		}
	}
}

// removeDuplicates drops rows that duplicate another row across the
// configured column subset, keeping the first occurrence (or the last when
// KeepLast is set). Found always equals removed: there is no detect-only
// mode for duplicates.
func (e *Engine) removeDuplicates(tbl *dataset.Table, report *Report) *dataset.Table {
	n := tbl.RowCount()
	if n == 0 {
		return tbl
	}
	subset := e.config.DuplicateSubset
	for _, name := range subset {
		if !tbl.HasColumn(name) {
			report.Warnings = append(report.Warnings, fmt.Sprintf("duplicate subset column %q not found", name))
		}
	}

	keep := make([]bool, n)
	seen := make(map[string]struct{}, n)
	if e.config.KeepLast {
		for i := n - 1; i >= 0; i-- {
			key := tbl.RowKey(i, subset)
			if _, dup := seen[key]; !dup {
				seen[key] = struct{}{}
				keep[i] = true
			}
		}
	} else {
		for i := 0; i < n; i++ {
			key := tbl.RowKey(i, subset)
			if _, dup := seen[key]; !dup {
				seen[key] = struct{}{}
				keep[i] = true
			}
		}
	}

	rows := make([]int, 0, n)
	for i, kept := range keep {
		if kept {
			rows = append(rows, i)
		}
	}
	removed := n - len(rows)
	report.DuplicatesFound = removed
	report.DuplicatesRemoved = removed
	if removed == 0 {
		return tbl
	}
	return tbl.SelectRows(rows)
}

// dropHighNullColumns removes columns whose null fraction is strictly above
// the threshold, unless the column is required.
func (e *Engine) dropHighNullColumns(tbl *dataset.Table, report *Report) {
	n := tbl.RowCount()
	if n == 0 {
		return
	}
	required := make(map[string]struct{}, len(e.config.RequiredColumns))
	for _, name := range e.config.RequiredColumns {
		required[name] = struct{}{}
	}
	for _, col := range tbl.Columns() {
		if _, keep := required[col.Name]; keep {
			continue
		}
		fraction := float64(col.NullCount()) / float64(n)
		if fraction <= e.config.NullColumnThreshold {
			continue
		}
		tbl.DropColumn(col.Name)
		report.DroppedColumns = append(report.DroppedColumns, col.Name)
		report.Warnings = append(report.Warnings,
			fmt.Sprintf("dropped column %q: %.0f%% null exceeds threshold %.0f%%", col.Name, fraction*100, e.config.NullColumnThreshold*100))
	}
}

// handleNulls counts remaining nulls and applies the configured strategy.
// NullsHandled counts resolved values, except for DROP where it is the
// number of rows removed.
func (e *Engine) handleNulls(tbl *dataset.Table, report *Report) *dataset.Table {
	for _, col := range tbl.Columns() {
		report.NullsFound += col.NullCount()
	}
	if report.NullsFound == 0 {
		return tbl
	}

	switch e.config.NullStrategy {
	case NullDrop:
		return e.dropNullRows(tbl, report)
	case NullFillZero:
		e.fillZero(tbl, report)
	case NullFillMean:
		e.fillCenter(tbl, report, stats.Mean)
	case NullFillMedian:
		e.fillCenter(tbl, report, stats.Median)
	case NullFillMode:
		e.fillMode(tbl, report)
	case NullFillForward:
		report.NullsHandled += fillDirectional(tbl, true)
	case NullFillBackward:
		report.NullsHandled += fillDirectional(tbl, false)
	case NullFillInterpolate:
		e.fillInterpolate(tbl, report)
	}
	return tbl
}

func (e *Engine) dropNullRows(tbl *dataset.Table, report *Report) *dataset.Table {
	n := tbl.RowCount()
	hasNull := make([]bool, n)
	for _, col := range tbl.Columns() {
		for i, cell := range col.Values {
			if dataset.IsNull(cell) {
				hasNull[i] = true
			}
		}
	}
	rows := make([]int, 0, n)
	for i, bad := range hasNull {
		if !bad {
			rows = append(rows, i)
		}
	}
	removed := n - len(rows)
	report.NullsHandled += removed
	if removed == 0 {
		return tbl
	}
	return tbl.SelectRows(rows)
}

// fillZero writes each column type's zero value: 0 for numeric, "" for
// text, false for boolean. Date and unknown columns keep their nulls.
func (e *Engine) fillZero(tbl *dataset.Table, report *Report) {
	for _, col := range tbl.Columns() {
		ct := col.DetectType()
		var zero any
		switch {
		case ct == dataset.TypeInteger:
			zero = int64(0)
		case ct == dataset.TypeFloat:
			zero = 0.0
		case ct == dataset.TypeString:
			zero = ""
		case ct == dataset.TypeBoolean:
			zero = false
		default:
			continue
		}
		for i, cell := range col.Values {
			if dataset.IsNull(cell) {
				col.Values[i] = zero
				report.NullsHandled++
			}
		}
	}
}

// fillCenter imputes numeric columns with the given center statistic and
// fills remaining text gaps with the empty string. Boolean, date, and
// unknown columns keep their nulls.
func (e *Engine) fillCenter(tbl *dataset.Table, report *Report, center func([]float64) float64) {
	for _, col := range tbl.Columns() {
		ct := col.DetectType()
		switch {
		case ct.IsNumeric():
			values, ok := col.Float64s()
			valid := make([]float64, 0, len(values))
			for i, v := range values {
				if ok[i] {
					valid = append(valid, v)
				}
			}
			if len(valid) == 0 {
				continue
			}
			fill := center(valid)
			for i, cell := range col.Values {
				if dataset.IsNull(cell) {
					col.Values[i] = fill
					report.NullsHandled++
				}
			}
		case ct == dataset.TypeString:
			for i, cell := range col.Values {
				if dataset.IsNull(cell) {
					col.Values[i] = ""
					report.NullsHandled++
				}
			}
		}
	}
}

// fillMode imputes every column with its most frequent non-null value,
// breaking ties in favor of the value seen first.
func (e *Engine) fillMode(tbl *dataset.Table, report *Report) {
	for _, col := range tbl.Columns() {
		counts := make(map[string]int)
		values := make(map[string]any)
		var order []string
		for _, cell := range col.Values {
			if dataset.IsNull(cell) {
				continue
			}
			key := dataset.CellKey(cell)
			if _, seen := counts[key]; !seen {
				order = append(order, key)
				values[key] = cell
			}
			counts[key]++
		}
		if len(order) == 0 {
			continue
		}
		best := order[0]
		for _, key := range order[1:] {
			if counts[key] > counts[best] {
				best = key
			}
		}
		mode := values[best]
		for i, cell := range col.Values {
			if dataset.IsNull(cell) {
				col.Values[i] = mode
				report.NullsHandled++
			}
		}
	}
}

// fillDirectional carries the nearest prior (forward) or following
// (backward) non-null value into each null. Gaps before the first or after
// the last non-null value stay null.
func fillDirectional(tbl *dataset.Table, forward bool) int {
	filled := 0
	for _, col := range tbl.Columns() {
		var carry any
		have := false
		if forward {
			for i, cell := range col.Values {
				if !dataset.IsNull(cell) {
					carry, have = cell, true
					continue
				}
				if have {
					col.Values[i] = carry
					filled++
				}
			}
		} else {
			for i := len(col.Values) - 1; i >= 0; i-- {
				if !dataset.IsNull(col.Values[i]) {
					carry, have = col.Values[i], true
					continue
				}
				if have {
					col.Values[i] = carry
					filled++
				}
			}
		}
	}
	return filled
}

// fillInterpolate linearly interpolates interior numeric gaps, then forward-
// and backward-fills whatever remains in every column.
func (e *Engine) fillInterpolate(tbl *dataset.Table, report *Report) {
	for _, col := range tbl.Columns() {
		if col.DetectType().IsNumeric() {
			report.NullsHandled += interpolateColumn(col)
		}
	}
	report.NullsHandled += fillDirectional(tbl, true)
	report.NullsHandled += fillDirectional(tbl, false)
}

func interpolateColumn(col *dataset.Column) int {
	filled := 0
	n := len(col.Values)
	values, ok := col.Float64s()
	i := 0
	for i < n {
		if ok[i] {
			i++
			continue
		}
		j := i
		for j < n && !ok[j] {
			j++
		}
		// A gap is interpolable only with valid values on both sides.
		if i > 0 && j < n {
			lo, hi := values[i-1], values[j]
			span := float64(j - (i - 1))
			for k := i; k < j; k++ {
				if dataset.IsNull(col.Values[k]) {
					frac := float64(k-(i-1)) / span
					col.Values[k] = lo + (hi-lo)*frac
					filled++
				}
			}
		}
		i = j
	}
	return filled
}

// handleOutliers flags outliers in every numeric column by the configured
// method. Counts are always recorded; rows are removed (as the union of
// per-column flags) only when RemoveOutliers is set.
func (e *Engine) handleOutliers(tbl *dataset.Table, report *Report) *dataset.Table {
	n := tbl.RowCount()
	if n == 0 {
		return tbl
	}
	flagged := make([]bool, n)
	for _, col := range tbl.Columns() {
		if !col.DetectType().IsNumeric() {
			continue
		}
		values, ok := col.Float64s()
		valid := make([]float64, 0, n)
		for i, v := range values {
			if ok[i] {
				valid = append(valid, v)
			}
		}
		if len(valid) == 0 {
			continue
		}

		count := 0
		switch e.config.OutlierMethod {
		case OutlierIQR:
			q1, q3 := stats.Quartiles(valid)
			iqr := q3 - q1
			lower := q1 - e.config.IQRFactor*iqr
			upper := q3 + e.config.IQRFactor*iqr
			for i, v := range values {
				if ok[i] && (v < lower || v > upper) {
					flagged[i] = true
					count++
				}
			}
		default:
			mean := stats.Mean(valid)
			std := stats.SampleStdDev(valid)
			if std > 0 {
				for i, v := range values {
					if ok[i] && math.Abs(v-mean)/std > e.config.ZScoreThreshold {
						flagged[i] = true
						count++
					}
				}
			}
		}
		report.OutliersByColumn[col.Name] = count
	}

	if !e.config.RemoveOutliers {
		return tbl
	}
	rows := make([]int, 0, n)
	for i, bad := range flagged {
		if !bad {
			rows = append(rows, i)
		}
	}
	removed := n - len(rows)
	report.OutlierRowsRemoved = removed
	if removed == 0 {
		return tbl
	}
	return tbl.SelectRows(rows)
}
