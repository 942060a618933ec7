package transform

import (
	"context"
	"fmt"
	"log/slog"
	"sort"

	"tableprep/internal/dataset"
)

// encodeColumns fits the configured encoding on each candidate column,
// applies it in place, and captures the learned mapping in the result.
func (e *Engine) encodeColumns(ctx context.Context, tbl *dataset.Table, targetColumn string, dateSources []string, result *Result) {
	if e.config.EncodingMethod == EncodeNone {
		return
	}

	var target *dataset.Column
	if e.config.EncodingMethod == EncodeTarget {
		col, ok := tbl.Column(targetColumn)
		if !ok || !col.DetectType().IsNumeric() {
			e.logger.DebugContext(ctx, "target encoding skipped: no numeric target column",
				slog.String("target_column", targetColumn))
			return
		}
		target = col
	}

	for _, col := range e.encodeCandidates(tbl, targetColumn, dateSources, result) {
		switch e.config.EncodingMethod {
		case EncodeLabel:
			e.labelEncode(col, result, false)
		case EncodeOrdinal:
			e.labelEncode(col, result, true)
		case EncodeOneHot:
			e.oneHotEncode(tbl, col, result)
		case EncodeFrequency:
			e.frequencyEncode(col, result)
		case EncodeTarget:
			e.targetEncode(col, target, result)
		}
	}
}

// encodeCandidates resolves which columns get encoded: the configured list
// when present, otherwise every string column. The target column is never
// encoded, and auto-selection also skips date source columns, which
// feature extraction already consumed.
func (e *Engine) encodeCandidates(tbl *dataset.Table, targetColumn string, dateSources []string, result *Result) []*dataset.Column {
	if len(e.config.EncodeColumns) > 0 {
		cols := make([]*dataset.Column, 0, len(e.config.EncodeColumns))
		for _, name := range e.config.EncodeColumns {
			if name == targetColumn {
				continue
			}
			col, ok := tbl.Column(name)
			if !ok {
				result.Warnings = append(result.Warnings, fmt.Sprintf("encode column %q not found", name))
				continue
			}
			cols = append(cols, col)
		}
		return cols
	}

	skip := make(map[string]struct{}, len(dateSources)+1)
	skip[targetColumn] = struct{}{}
	for _, name := range dateSources {
		skip[name] = struct{}{}
	}
	var cols []*dataset.Column
	for _, col := range tbl.Columns() {
		if _, skipped := skip[col.Name]; skipped {
			continue
		}
		if col.DetectType() == dataset.TypeString {
			cols = append(cols, col)
		}
	}
	return cols
}

// labelEncode assigns integer codes: first-seen order for LABEL, sorted
// category order for ORDINAL.
func (e *Engine) labelEncode(col *dataset.Column, result *Result, ordinal bool) {
	keys := distinctKeys(col)
	if ordinal {
		sort.Strings(keys)
	}
	mapping := make(map[string]int64, len(keys))
	for i, key := range keys {
		mapping[key] = int64(i)
	}
	applyLabelMapping(col, mapping)

	method := EncodeLabel
	if ordinal {
		method = EncodeOrdinal
	}
	result.EncodeParams[col.Name] = EncodeParams{Method: method, Mapping: mapping}
}

// oneHotEncode expands the column into one boolean column per category in
// sorted order and drops the source. Columns with more categories than
// MaxCategories fall back to label encoding with a warning.
func (e *Engine) oneHotEncode(tbl *dataset.Table, col *dataset.Column, result *Result) {
	keys := distinctKeys(col)
	if len(keys) > e.config.MaxCategories {
		result.Warnings = append(result.Warnings,
			fmt.Sprintf("column %q has %d categories, above the one-hot limit %d: falling back to label encoding",
				col.Name, len(keys), e.config.MaxCategories))
		e.labelEncode(col, result, false)
		return
	}
	sort.Strings(keys)

	if err := applyOneHot(tbl, col.Name, keys, result); err != nil {
		result.Warnings = append(result.Warnings, fmt.Sprintf("one-hot encode %q: %v", col.Name, err))
		return
	}
	result.ColumnsDropped = append(result.ColumnsDropped, col.Name)
	result.EncodeParams[col.Name] = EncodeParams{Method: EncodeOneHot, Categories: keys}
}

// frequencyEncode maps each value to its share of the column's non-null
// cells.
func (e *Engine) frequencyEncode(col *dataset.Column, result *Result) {
	counts := make(map[string]int)
	total := 0
	for _, cell := range col.Values {
		if dataset.IsNull(cell) {
			continue
		}
		counts[dataset.AsString(cell)]++
		total++
	}
	frequencies := make(map[string]float64, len(counts))
	for key, n := range counts {
		frequencies[key] = float64(n) / float64(total)
	}
	applyFrequencies(col, frequencies)
	result.EncodeParams[col.Name] = EncodeParams{Method: EncodeFrequency, Frequencies: frequencies}
}

// targetEncode maps each category to the mean of the target column within
// it. Categories whose every target cell is null get no mean and encode to
// null.
func (e *Engine) targetEncode(col, target *dataset.Column, result *Result) {
	sums := make(map[string]float64)
	counts := make(map[string]int)
	for i, cell := range col.Values {
		if dataset.IsNull(cell) {
			continue
		}
		value, numeric := dataset.AsFloat(target.Values[i])
		if !numeric {
			continue
		}
		key := dataset.AsString(cell)
		sums[key] += value
		counts[key]++
	}
	means := make(map[string]float64, len(counts))
	for key, n := range counts {
		means[key] = sums[key] / float64(n)
	}
	applyTargetMeans(col, means)
	result.EncodeParams[col.Name] = EncodeParams{Method: EncodeTarget, TargetMeans: means}
}

// replayEncoding applies a captured encoding to one column of new data.
// Unseen categories become null, or all-false rows for one-hot.
func replayEncoding(tbl *dataset.Table, col *dataset.Column, params EncodeParams) error {
	switch params.Method {
	case EncodeLabel, EncodeOrdinal:
		applyLabelMapping(col, params.Mapping)
	case EncodeOneHot:
		return applyOneHot(tbl, col.Name, params.Categories, nil)
	case EncodeFrequency:
		applyFrequencies(col, params.Frequencies)
	case EncodeTarget:
		applyTargetMeans(col, params.TargetMeans)
	}
	return nil
}

func applyLabelMapping(col *dataset.Column, mapping map[string]int64) {
	for i, cell := range col.Values {
		if dataset.IsNull(cell) {
			continue
		}
		if code, seen := mapping[dataset.AsString(cell)]; seen {
			col.Values[i] = code
		} else {
			col.Values[i] = nil
		}
	}
}

func applyOneHot(tbl *dataset.Table, name string, categories []string, result *Result) error {
	col, ok := tbl.Column(name)
	if !ok {
		return fmt.Errorf("column %q not found", name)
	}
	for _, category := range categories {
		values := make([]any, len(col.Values))
		for i, cell := range col.Values {
			values[i] = !dataset.IsNull(cell) && dataset.AsString(cell) == category
		}
		categoryName := name + "_" + category
		if err := tbl.AddColumn(dataset.NewColumn(categoryName, values)); err != nil {
			return err
		}
		if result != nil {
			result.ColumnsAdded = append(result.ColumnsAdded, categoryName)
		}
	}
	tbl.DropColumn(name)
	return nil
}

func applyFrequencies(col *dataset.Column, frequencies map[string]float64) {
	for i, cell := range col.Values {
		if dataset.IsNull(cell) {
			continue
		}
		if f, seen := frequencies[dataset.AsString(cell)]; seen {
			col.Values[i] = f
		} else {
			col.Values[i] = nil
		}
	}
}

func applyTargetMeans(col *dataset.Column, means map[string]float64) {
	for i, cell := range col.Values {
		if dataset.IsNull(cell) {
			continue
		}
		if mean, seen := means[dataset.AsString(cell)]; seen {
			col.Values[i] = mean
		} else {
			col.Values[i] = nil
		}
	}
}

func distinctKeys(col *dataset.Column) []string {
	seen := make(map[string]struct{})
	var keys []string
	for _, cell := range col.Values {
		if dataset.IsNull(cell) {
			continue
		}
		key := dataset.AsString(cell)
		if _, dup := seen[key]; !dup {
			seen[key] = struct{}{}
			keys = append(keys, key)
		}
	}
	return keys
}
