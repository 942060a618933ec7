package dataset

import (
	"math"
	"strconv"
	"strings"
	"time"
)

var nan = math.NaN()

// ColumnType classifies a column by the most specific type shared by its
// non-null cells.
type ColumnType string

const (
	TypeString   ColumnType = "string"
	TypeInteger  ColumnType = "integer"
	TypeFloat    ColumnType = "float"
	TypeBoolean  ColumnType = "boolean"
	TypeDate     ColumnType = "date"
	TypeDatetime ColumnType = "datetime"
	TypeUnknown  ColumnType = "unknown"
)

// IsNumeric reports whether the type carries numeric cells.
func (ct ColumnType) IsNumeric() bool {
	return ct == TypeInteger || ct == TypeFloat
}

// detectSampleSize caps how many non-null cells type detection inspects.
const detectSampleSize = 1000

// DetectType infers the column's type from its non-null cells, sampling the
// first detectSampleSize of them. An all-null column is TypeUnknown. Mixed
// numeric cells yield TypeFloat; any other mix degrades to TypeString.
func (c *Column) DetectType() ColumnType {
	var ints, floats, bools, times, strs, seen int
	clock := false
	for _, v := range c.Values {
		if IsNull(v) {
			continue
		}
		seen++
		switch x := v.(type) {
		case int64:
			ints++
		case float64:
			floats++
		case bool:
			bools++
		case time.Time:
			times++
			if hasClock(x) {
				clock = true
			}
		default:
			strs++
		}
		if seen >= detectSampleSize {
			break
		}
	}
	switch {
	case seen == 0:
		return TypeUnknown
	case bools == seen:
		return TypeBoolean
	case times == seen:
		if clock {
			return TypeDatetime
		}
		return TypeDate
	case ints == seen:
		return TypeInteger
	case ints+floats == seen:
		return TypeFloat
	default:
		return TypeString
	}
}

func hasClock(t time.Time) bool {
	h, m, s := t.Clock()
	return h != 0 || m != 0 || s != 0 || t.Nanosecond() != 0
}

// IsNull reports whether a cell is null.
func IsNull(v any) bool {
	return v == nil
}

// AsFloat returns the numeric value of a cell. Only int64 and float64 cells
// are numeric.
func AsFloat(v any) (float64, bool) {
	switch x := v.(type) {
	case int64:
		return float64(x), true
	case float64:
		return x, true
	default:
		return 0, false
	}
}

// AsString renders a cell as text. Nulls render as the empty string; dates
// without a clock component use the short form.
func AsString(v any) string {
	switch x := v.(type) {
	case nil:
		return ""
	case string:
		return x
	case int64:
		return strconv.FormatInt(x, 10)
	case float64:
		return strconv.FormatFloat(x, 'f', -1, 64)
	case bool:
		return strconv.FormatBool(x)
	case time.Time:
		if hasClock(x) {
			return x.Format("2006-01-02 15:04:05")
		}
		return x.Format("2006-01-02")
	default:
		return ""
	}
}

var nullTokens = map[string]struct{}{
	"":     {},
	"na":   {},
	"n/a":  {},
	"null": {},
	"none": {},
	"nan":  {},
	"-":    {},
}

// IsNullToken reports whether trimmed, lower-cased text is one of the
// sentinels treated as null on ingest and during text normalization.
func IsNullToken(s string) bool {
	_, ok := nullTokens[strings.ToLower(strings.TrimSpace(s))]
	return ok
}

// dateLayouts are tried in order; ISO forms first, then day-first and
// month-first slash forms.
var dateLayouts = []string{
	"2006-01-02",
	"2006-01-02 15:04:05",
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006/01/02",
	"02/01/2006",
	"01/02/2006",
	"02-01-2006",
}

// ParseDate parses text as a date or datetime using the supported layouts.
func ParseDate(s string) (time.Time, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, false
	}
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}

// ParseInt parses text as an integer, tolerating thousands separators.
func ParseInt(s string) (int64, bool) {
	s = strings.ReplaceAll(strings.TrimSpace(s), ",", "")
	if s == "" {
		return 0, false
	}
	i, err := strconv.ParseInt(s, 10, 64)
	if err != nil {
		return 0, false
	}
	return i, true
}

// ParseNumber parses text as a float, tolerating thousands separators.
func ParseNumber(s string) (float64, bool) {
	s = strings.ReplaceAll(strings.TrimSpace(s), ",", "")
	if s == "" {
		return 0, false
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil || math.IsInf(f, 0) {
		return 0, false
	}
	return f, true
}

// ParseBool parses "true"/"false" in any case.
func ParseBool(s string) (bool, bool) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "true":
		return true, true
	case "false":
		return false, true
	default:
		return false, false
	}
}

// CoerceCell converts a raw text cell into its most specific typed value:
// null token, integer, float, boolean, date, then plain text.
func CoerceCell(raw string) any {
	s := strings.TrimSpace(raw)
	if IsNullToken(s) {
		return nil
	}
	if i, ok := ParseInt(s); ok {
		return i
	}
	if f, ok := ParseNumber(s); ok {
		return f
	}
	if b, ok := ParseBool(s); ok {
		return b
	}
	if t, ok := ParseDate(s); ok {
		return t
	}
	return s
}
