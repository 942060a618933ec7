package transform

import (
	"fmt"
	"time"

	"tableprep/internal/dataset"
)

const dateSampleSize = 10

// dateSourceColumns resolves which columns feed feature extraction: the
// configured list when present, otherwise every column that is date-typed
// or whose leading non-null values all parse as dates.
func (e *Engine) dateSourceColumns(tbl *dataset.Table) []string {
	if len(e.config.DateColumns) > 0 {
		names := make([]string, 0, len(e.config.DateColumns))
		for _, name := range e.config.DateColumns {
			if tbl.HasColumn(name) {
				names = append(names, name)
			}
		}
		return names
	}
	var names []string
	for _, col := range tbl.Columns() {
		if isDateLike(col) {
			names = append(names, col.Name)
		}
	}
	return names
}

func isDateLike(col *dataset.Column) bool {
	switch col.DetectType() {
	case dataset.TypeDate, dataset.TypeDatetime:
		return true
	case dataset.TypeString:
	default:
		return false
	}
	sampled := 0
	for _, cell := range col.Values {
		if dataset.IsNull(cell) {
			continue
		}
		s, isText := cell.(string)
		if !isText {
			return false
		}
		if _, parsed := dataset.ParseDate(s); !parsed {
			return false
		}
		sampled++
		if sampled == dateSampleSize {
			break
		}
	}
	return sampled > 0
}

// extractDateFeatures appends one {column}_{feature} column per source and
// requested feature. Rows whose source cell is null or unparseable get a
// null feature. A nil result skips the bookkeeping, which replay uses.
func (e *Engine) extractDateFeatures(tbl *dataset.Table, sources, features []string, result *Result) {
	for _, name := range sources {
		col, ok := tbl.Column(name)
		if !ok {
			continue
		}
		for _, feature := range features {
			values := make([]any, len(col.Values))
			for i, cell := range col.Values {
				if t, parsed := cellTime(cell); parsed {
					values[i] = dateFeatureValue(t, feature)
				}
			}
			featureName := name + "_" + feature
			if err := tbl.AddColumn(dataset.NewColumn(featureName, values)); err != nil {
				if result != nil {
					result.Warnings = append(result.Warnings, fmt.Sprintf("date feature %s: %v", featureName, err))
				}
				continue
			}
			if result != nil {
				result.ColumnsAdded = append(result.ColumnsAdded, featureName)
			}
		}
	}
}

func cellTime(cell any) (time.Time, bool) {
	switch x := cell.(type) {
	case time.Time:
		return x, true
	case string:
		return dataset.ParseDate(x)
	default:
		return time.Time{}, false
	}
}

func dateFeatureValue(t time.Time, feature string) any {
	switch feature {
	case FeatureYear:
		return int64(t.Year())
	case FeatureMonth:
		return int64(t.Month())
	case FeatureDay:
		return int64(t.Day())
	case FeatureDayOfWeek:
		// Monday is 0, Sunday is 6.
		return int64((int(t.Weekday()) + 6) % 7)
	case FeatureQuarter:
		return int64((int(t.Month())-1)/3 + 1)
	case FeatureWeekOfYear:
		_, week := t.ISOWeek()
		return int64(week)
	case FeatureHour:
		return int64(t.Hour())
	case FeatureIsWeekend:
		day := t.Weekday()
		return day == time.Saturday || day == time.Sunday
	case FeatureIsMonthStart:
		return t.Day() == 1
	case FeatureIsMonthEnd:
		return t.AddDate(0, 0, 1).Day() == 1
	default:
		return nil
	}
}
