package transform

import (
	"fmt"
	"math"

	"tableprep/internal/dataset"
	"tableprep/internal/stats"
)

// scaleColumns fits the configured scaling on each target column, applies
// it in place, and captures the statistics in the result. Scaled columns
// become float columns; nulls stay null.
func (e *Engine) scaleColumns(tbl *dataset.Table, result *Result) {
	if e.config.ScalingMethod == ScaleNone {
		return
	}
	for _, col := range e.scaleTargets(tbl, result) {
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

		params := ScaleParams{Method: e.config.ScalingMethod}
		switch e.config.ScalingMethod {
		case ScaleMinMax:
			params.Min, params.Max = stats.MinMax(valid)
		case ScaleStandard:
			params.Mean = stats.Mean(valid)
			params.Std = stats.SampleStdDev(valid)
		case ScaleRobust:
			params.Median = stats.Median(valid)
			q1, q3 := stats.Quartiles(valid)
			params.IQR = q3 - q1
		case ScaleMaxAbs:
			params.MaxAbs = stats.MaxAbs(valid)
		}
		applyScale(col, params)
		result.ScaleParams[col.Name] = params
	}
}

// scaleTargets resolves which columns get scaled: the configured list when
// present, otherwise every column numeric at this stage, which includes
// freshly encoded codes and numeric calendar features.
func (e *Engine) scaleTargets(tbl *dataset.Table, result *Result) []*dataset.Column {
	if len(e.config.ScaleColumns) > 0 {
		cols := make([]*dataset.Column, 0, len(e.config.ScaleColumns))
		for _, name := range e.config.ScaleColumns {
			col, ok := tbl.Column(name)
			if !ok {
				result.Warnings = append(result.Warnings, fmt.Sprintf("scale column %q not found", name))
				continue
			}
			cols = append(cols, col)
		}
		return cols
	}
	var cols []*dataset.Column
	for _, col := range tbl.Columns() {
		if col.DetectType().IsNumeric() {
			cols = append(cols, col)
		}
	}
	return cols
}

// applyScale rewrites the column in place with captured parameters.
func applyScale(col *dataset.Column, params ScaleParams) {
	values, ok := col.Float64s()
	for i := range col.Values {
		if !ok[i] {
			continue
		}
		col.Values[i] = scaleValue(values[i], params)
	}
}

func scaleValue(x float64, p ScaleParams) float64 {
	switch p.Method {
	case ScaleMinMax:
		span := p.Max - p.Min
		if span == 0 {
			return 0
		}
		return (x - p.Min) / span
	case ScaleStandard:
		if p.Std == 0 {
			return 0
		}
		return (x - p.Mean) / p.Std
	case ScaleRobust:
		if p.IQR == 0 {
			return 0
		}
		return (x - p.Median) / p.IQR
	case ScaleMaxAbs:
		if p.MaxAbs == 0 {
			return 0
		}
		return x / p.MaxAbs
	case ScaleLog:
		return math.Log1p(math.Max(x, 0))
	case ScaleSqrt:
		return math.Sqrt(math.Max(x, 0))
	default:
		return x
	}
}

func inverseValue(y float64, p ScaleParams) float64 {
	switch p.Method {
	case ScaleMinMax:
		return y*(p.Max-p.Min) + p.Min
	case ScaleStandard:
		return y*p.Std + p.Mean
	case ScaleRobust:
		return y*p.IQR + p.Median
	case ScaleMaxAbs:
		return y * p.MaxAbs
	case ScaleLog:
		return math.Expm1(y)
	case ScaleSqrt:
		return y * y
	default:
		return y
	}
}
