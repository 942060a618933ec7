package validation

import (
	"context"
	"fmt"
	"log/slog"
	"math"
	"regexp"
	"sort"
	"time"

	"tableprep/internal/dataset"
)

// Validator evaluates rule sets against tables.
type Validator struct {
	logger *slog.Logger
}

// NewValidator creates a validator. A nil logger falls back to slog.Default().
func NewValidator(logger *slog.Logger) *Validator {
	if logger == nil {
		logger = slog.Default()
	}
	return &Validator{logger: logger}
}

// Validate evaluates the rules in declaration order and never mutates the
// table. Evaluation is total: a panicking predicate, an invalid pattern, or
// an unknown rule type becomes a synthetic ERROR violation instead of
// aborting the run.
func (v *Validator) Validate(ctx context.Context, tbl *dataset.Table, rules []Rule) *Result {
	if tbl == nil {
		tbl, _ = dataset.New()
	}

	result := &Result{
		TotalRows:   tbl.RowCount(),
		Errors:      []Violation{},
		Warnings:    []Violation{},
		ColumnTypes: make(map[string]dataset.ColumnType, tbl.ColumnCount()),
	}
	for _, col := range tbl.Columns() {
		result.ColumnTypes[col.Name] = col.DetectType()
	}

	invalid := make(map[int]struct{})
	for _, rule := range rules {
		violations := v.evaluate(ctx, tbl, rule)
		result.RulesEvaluated++
		if len(violations) > 0 {
			result.RulesFailed++
		}
		for _, viol := range violations {
			viol.RowIndices = normalizeRows(viol.RowIndices, tbl.RowCount())
			viol.AffectedRows = len(viol.RowIndices)
			for _, row := range viol.RowIndices {
				invalid[row] = struct{}{}
			}
			if len(viol.RowIndices) > maxViolationRows {
				viol.RowIndices = viol.RowIndices[:maxViolationRows]
			}
			if len(viol.Samples) > maxViolationSamples {
				viol.Samples = viol.Samples[:maxViolationSamples]
			}
			if viol.Severity == SeverityError {
				result.Errors = append(result.Errors, viol)
			} else {
				result.Warnings = append(result.Warnings, viol)
			}
		}
	}

	result.InvalidRows = len(invalid)
	result.ValidRows = result.TotalRows - result.InvalidRows

	v.logger.InfoContext(ctx, "validation complete",
		slog.Int("rules_evaluated", result.RulesEvaluated),
		slog.Int("rules_failed", result.RulesFailed),
		slog.Int("error_violations", len(result.Errors)),
		slog.Int("warning_violations", len(result.Warnings)),
		slog.Int("invalid_rows", result.InvalidRows))

	return result
}

func (v *Validator) evaluate(ctx context.Context, tbl *dataset.Table, rule Rule) (violations []Violation) {
	defer func() {
		if r := recover(); r != nil {
			v.logger.WarnContext(ctx, "rule evaluation panicked",
				slog.String("rule", rule.Name),
				slog.String("rule_type", string(rule.Type)),
				slog.Any("panic", r))
			violations = []Violation{{
				RuleName: rule.Name,
				RuleType: rule.Type,
				Column:   rule.Column,
				Severity: SeverityError,
				Message:  fmt.Sprintf("rule evaluation failed: %v", r),
			}}
		}
	}()

	switch rule.Type {
	case RuleTypeRequired:
		return v.evaluateRequired(tbl, rule)
	case RuleTypeDataType:
		return v.evaluateDataType(tbl, rule)
	case RuleTypeRange:
		return v.evaluateRange(tbl, rule)
	case RuleTypePattern:
		return v.evaluatePattern(tbl, rule)
	case RuleTypeUnique:
		return v.evaluateUnique(tbl, rule)
	case RuleTypeCustom:
		return v.evaluateCustom(tbl, rule)
	default:
		return []Violation{{
			RuleName: rule.Name,
			RuleType: rule.Type,
			Column:   rule.Column,
			Severity: SeverityError,
			Message:  fmt.Sprintf("unknown rule type %q", rule.Type),
		}}
	}
}

func (v *Validator) evaluateRequired(tbl *dataset.Table, rule Rule) []Violation {
	names := rule.Columns
	if rule.Column != "" {
		names = append([]string{rule.Column}, names...)
	}
	var out []Violation
	for _, name := range names {
		if tbl.HasColumn(name) {
			continue
		}
		out = append(out, Violation{
			RuleName: rule.Name,
			RuleType: RuleTypeRequired,
			Column:   name,
			Severity: rule.severity(),
			Message:  messageOr(rule, fmt.Sprintf("required column %q is missing", name)),
		})
	}
	return out
}

// acceptedTypes maps a declared expectation to the detected types that
// satisfy it without coercion.
func acceptedTypes(expected string) []dataset.ColumnType {
	switch expected {
	case ExpectString:
		return []dataset.ColumnType{dataset.TypeString}
	case ExpectInteger:
		return []dataset.ColumnType{dataset.TypeInteger}
	case ExpectFloat:
		return []dataset.ColumnType{dataset.TypeFloat, dataset.TypeInteger}
	case ExpectNumeric:
		return []dataset.ColumnType{dataset.TypeInteger, dataset.TypeFloat}
	case ExpectDate:
		return []dataset.ColumnType{dataset.TypeDate}
	case ExpectDatetime:
		return []dataset.ColumnType{dataset.TypeDatetime, dataset.TypeDate}
	case ExpectBoolean:
		return []dataset.ColumnType{dataset.TypeBoolean}
	default:
		return nil
	}
}

func (v *Validator) evaluateDataType(tbl *dataset.Table, rule Rule) []Violation {
	col, ok := tbl.Column(rule.Column)
	if !ok {
		return []Violation{missingColumn(rule)}
	}
	accepted := acceptedTypes(rule.ExpectedType)
	if accepted == nil {
		return []Violation{{
			RuleName: rule.Name,
			RuleType: RuleTypeDataType,
			Column:   rule.Column,
			Severity: SeverityError,
			Message:  fmt.Sprintf("unknown expected type %q", rule.ExpectedType),
		}}
	}
	detected := col.DetectType()
	if detected == dataset.TypeUnknown {
		// An all-null column cannot contradict a type expectation.
		return nil
	}
	for _, t := range accepted {
		if detected == t {
			return nil
		}
	}

	// Detected type mismatches; the column still passes when every non-null
	// value coerces to the expected type.
	var rows []int
	var samples []any
	for i, cell := range col.Values {
		if dataset.IsNull(cell) {
			continue
		}
		if cellCoercible(cell, rule.ExpectedType) {
			continue
		}
		rows = append(rows, i)
		if len(samples) < maxViolationSamples {
			samples = append(samples, cell)
		}
	}
	if len(rows) == 0 {
		return nil
	}
	return []Violation{{
		RuleName:   rule.Name,
		RuleType:   RuleTypeDataType,
		Column:     rule.Column,
		Severity:   rule.severity(),
		Message:    messageOr(rule, fmt.Sprintf("column %q is %s, expected %s", rule.Column, detected, rule.ExpectedType)),
		RowIndices: rows,
		Samples:    samples,
	}}
}

// cellCoercible reports whether a single non-null cell converts cleanly to
// the expected type. Text coercion exists only for numeric and date
// expectations; string and boolean expectations require matching cell types.
func cellCoercible(cell any, expected string) bool {
	switch expected {
	case ExpectString:
		_, ok := cell.(string)
		return ok
	case ExpectBoolean:
		_, ok := cell.(bool)
		return ok
	case ExpectInteger:
		switch x := cell.(type) {
		case int64:
			return true
		case float64:
			return x == math.Trunc(x) && !math.IsInf(x, 0) && !math.IsNaN(x)
		case string:
			_, ok := dataset.ParseInt(x)
			return ok
		default:
			return false
		}
	case ExpectFloat, ExpectNumeric:
		switch x := cell.(type) {
		case int64, float64:
			return true
		case string:
			_, ok := dataset.ParseNumber(x)
			return ok
		default:
			return false
		}
	case ExpectDate, ExpectDatetime:
		switch x := cell.(type) {
		case time.Time:
			return true
		case string:
			_, ok := dataset.ParseDate(x)
			return ok
		default:
			return false
		}
	default:
		return false
	}
}

func (v *Validator) evaluateRange(tbl *dataset.Table, rule Rule) []Violation {
	col, ok := tbl.Column(rule.Column)
	if !ok {
		return []Violation{missingColumn(rule)}
	}
	var rows []int
	var samples []any
	for i, cell := range col.Values {
		f, numeric := dataset.AsFloat(cell)
		if !numeric {
			continue
		}
		below := rule.Min != nil && f < *rule.Min
		above := rule.Max != nil && f > *rule.Max
		if !below && !above {
			continue
		}
		rows = append(rows, i)
		if len(samples) < maxViolationSamples {
			samples = append(samples, cell)
		}
	}
	if len(rows) == 0 {
		return nil
	}
	return []Violation{{
		RuleName:   rule.Name,
		RuleType:   RuleTypeRange,
		Column:     rule.Column,
		Severity:   rule.severity(),
		Message:    messageOr(rule, fmt.Sprintf("column %q has %d values out of range", rule.Column, len(rows))),
		RowIndices: rows,
		Samples:    samples,
	}}
}

func (v *Validator) evaluatePattern(tbl *dataset.Table, rule Rule) []Violation {
	col, ok := tbl.Column(rule.Column)
	if !ok {
		return []Violation{missingColumn(rule)}
	}
	// Anchored at the start only, so a pattern matches a prefix of the text.
	re, err := regexp.Compile("^(?:" + rule.Pattern + ")")
	if err != nil {
		return []Violation{{
			RuleName: rule.Name,
			RuleType: RuleTypePattern,
			Column:   rule.Column,
			Severity: SeverityError,
			Message:  fmt.Sprintf("invalid pattern %q: %v", rule.Pattern, err),
		}}
	}
	var rows []int
	var samples []any
	for i, cell := range col.Values {
		if dataset.IsNull(cell) {
			continue
		}
		if re.MatchString(dataset.AsString(cell)) {
			continue
		}
		rows = append(rows, i)
		if len(samples) < maxViolationSamples {
			samples = append(samples, cell)
		}
	}
	if len(rows) == 0 {
		return nil
	}
	return []Violation{{
		RuleName:   rule.Name,
		RuleType:   RuleTypePattern,
		Column:     rule.Column,
		Severity:   rule.severity(),
		Message:    messageOr(rule, fmt.Sprintf("column %q has %d values not matching pattern", rule.Column, len(rows))),
		RowIndices: rows,
		Samples:    samples,
	}}
}

func (v *Validator) evaluateUnique(tbl *dataset.Table, rule Rule) []Violation {
	col, ok := tbl.Column(rule.Column)
	if !ok {
		return []Violation{missingColumn(rule)}
	}
	groups := make(map[string][]int)
	order := make([]string, 0, len(col.Values))
	for i, cell := range col.Values {
		key := dataset.CellKey(cell)
		if _, seen := groups[key]; !seen {
			order = append(order, key)
		}
		groups[key] = append(groups[key], i)
	}

	// Every member of a duplicate group is affected, not just the repeats.
	var rows []int
	var samples []any
	duplicates := 0
	for _, key := range order {
		members := groups[key]
		if len(members) < 2 {
			continue
		}
		duplicates++
		rows = append(rows, members...)
		if len(samples) < maxViolationSamples {
			samples = append(samples, col.Values[members[0]])
		}
	}
	if duplicates == 0 {
		return nil
	}
	return []Violation{{
		RuleName:   rule.Name,
		RuleType:   RuleTypeUnique,
		Column:     rule.Column,
		Severity:   rule.severity(),
		Message:    messageOr(rule, fmt.Sprintf("column %q has %d duplicated values", rule.Column, duplicates)),
		RowIndices: rows,
		Samples:    samples,
	}}
}

func (v *Validator) evaluateCustom(tbl *dataset.Table, rule Rule) []Violation {
	if rule.Check == nil {
		return []Violation{{
			RuleName: rule.Name,
			RuleType: RuleTypeCustom,
			Column:   rule.Column,
			Severity: SeverityError,
			Message:  "custom rule has no check function",
		}}
	}
	ok, rows, message := rule.Check(tbl, rule)
	if ok {
		return nil
	}
	if message == "" {
		message = fmt.Sprintf("custom rule %q failed", rule.Name)
	}
	var samples []any
	if col, found := tbl.Column(rule.Column); found {
		for _, row := range rows {
			if len(samples) >= maxViolationSamples {
				break
			}
			if row < 0 || row >= len(col.Values) {
				continue
			}
			samples = append(samples, col.Values[row])
		}
	}
	return []Violation{{
		RuleName:   rule.Name,
		RuleType:   RuleTypeCustom,
		Column:     rule.Column,
		Severity:   rule.severity(),
		Message:    messageOr(rule, message),
		RowIndices: rows,
		Samples:    samples,
	}}
}

func missingColumn(rule Rule) Violation {
	return Violation{
		RuleName: rule.Name,
		RuleType: rule.Type,
		Column:   rule.Column,
		Severity: SeverityWarning,
		Message:  fmt.Sprintf("column %q not found", rule.Column),
	}
}

func messageOr(rule Rule, fallback string) string {
	if rule.Message != "" {
		return rule.Message
	}
	return fallback
}

// normalizeRows sorts, deduplicates, and drops out-of-range indices.
func normalizeRows(rows []int, rowCount int) []int {
	if len(rows) == 0 {
		return nil
	}
	seen := make(map[int]struct{}, len(rows))
	out := make([]int, 0, len(rows))
	for _, r := range rows {
		if r < 0 || r >= rowCount {
			continue
		}
		if _, dup := seen[r]; dup {
			continue
		}
		seen[r] = struct{}{}
		out = append(out, r)
	}
	if len(out) == 0 {
		return nil
	}
	sort.Ints(out)
	return out
}
