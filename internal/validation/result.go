package validation

import (
	"tableprep/internal/dataset"
)

// Caps on what a single violation stores. The affected-row count and the
// invalid-row union are computed from the full index sets before these apply.
const (
	maxViolationRows    = 100
	maxViolationSamples = 5
)

// Violation is one rule failure. It is immutable after the validator
// returns it.
type Violation struct {
	RuleName     string   `json:"rule_name"`
	RuleType     RuleType `json:"rule_type"`
	Column       string   `json:"column,omitempty"`
	Severity     Severity `json:"severity"`
	Message      string   `json:"message"`
	AffectedRows int      `json:"affected_rows"`
	RowIndices   []int    `json:"row_indices,omitempty"`
	Samples      []any    `json:"samples,omitempty"`
}

// Result is the outcome of one validation run. Violations are partitioned by
// severity: ERROR into Errors, WARNING and INFO into Warnings.
type Result struct {
	TotalRows      int                           `json:"total_rows"`
	ValidRows      int                           `json:"valid_rows"`
	InvalidRows    int                           `json:"invalid_rows"`
	Errors         []Violation                   `json:"errors"`
	Warnings       []Violation                   `json:"warnings"`
	ColumnTypes    map[string]dataset.ColumnType `json:"column_types"`
	RulesEvaluated int                           `json:"rules_evaluated"`
	RulesFailed    int                           `json:"rules_failed"`
}

// IsValid reports whether the run produced no ERROR-severity violations.
// Warnings and infos never block validity.
func (r *Result) IsValid() bool {
	return len(r.Errors) == 0
}

// Violations returns all violations, errors first, in evaluation order
// within each partition.
func (r *Result) Violations() []Violation {
	out := make([]Violation, 0, len(r.Errors)+len(r.Warnings))
	out = append(out, r.Errors...)
	out = append(out, r.Warnings...)
	return out
}
