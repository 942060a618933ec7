package validation

import (
	"fmt"

	"github.com/go-playground/validator/v10"

	"tableprep/internal/dataset"
)

// RuleType discriminates the rule variants handled by the evaluator.
type RuleType string

const (
	RuleTypeRequired RuleType = "REQUIRED"
	RuleTypeDataType RuleType = "TYPE"
	RuleTypeRange    RuleType = "RANGE"
	RuleTypePattern  RuleType = "PATTERN"
	RuleTypeUnique   RuleType = "UNIQUE"
	RuleTypeCustom   RuleType = "CUSTOM"
)

// Severity ranks a violation. Only ERROR violations make a result invalid.
type Severity string

const (
	SeverityError   Severity = "ERROR"
	SeverityWarning Severity = "WARNING"
	SeverityInfo    Severity = "INFO"
)

// Expected type names accepted by TYPE rules. "numeric" accepts integer or
// float; "float" also accepts integer; "datetime" also accepts date.
const (
	ExpectString   = "string"
	ExpectInteger  = "integer"
	ExpectFloat    = "float"
	ExpectNumeric  = "numeric"
	ExpectDate     = "date"
	ExpectDatetime = "datetime"
	ExpectBoolean  = "boolean"
)

// CheckFunc is a caller-supplied predicate for CUSTOM rules. It reports
// whether the table passes, the offending row indices when it does not, and
// an optional message.
type CheckFunc func(tbl *dataset.Table, rule Rule) (ok bool, rows []int, message string)

// Rule is one declarative validation rule. Rules are immutable during a
// validation run; severity defaults to ERROR when empty.
type Rule struct {
	Name         string    `json:"name" validate:"required"`
	Type         RuleType  `json:"rule_type" validate:"required,oneof=REQUIRED TYPE RANGE PATTERN UNIQUE CUSTOM"`
	Column       string    `json:"column,omitempty"`
	Columns      []string  `json:"columns,omitempty"`
	ExpectedType string    `json:"expected_type,omitempty" validate:"omitempty,oneof=string integer float numeric date datetime boolean"`
	Min          *float64  `json:"min,omitempty"`
	Max          *float64  `json:"max,omitempty"`
	Pattern      string    `json:"pattern,omitempty"`
	Severity     Severity  `json:"severity,omitempty" validate:"omitempty,oneof=ERROR WARNING INFO"`
	Message      string    `json:"message,omitempty"`
	Check        CheckFunc `json:"-"`
}

var ruleValidate = validator.New()

// ValidateDefinition checks that the rule is well formed: struct constraints
// plus the cross-field requirements of each rule type. Evaluation itself
// never fails on a bad definition; this is for callers that build rules from
// external configuration.
func (r Rule) ValidateDefinition() error {
	if err := ruleValidate.Struct(r); err != nil {
		return fmt.Errorf("rule %q: %w", r.Name, err)
	}
	switch r.Type {
	case RuleTypeRequired:
		if r.Column == "" && len(r.Columns) == 0 {
			return fmt.Errorf("rule %q: REQUIRED needs a column", r.Name)
		}
	case RuleTypeDataType:
		if r.Column == "" {
			return fmt.Errorf("rule %q: TYPE needs a column", r.Name)
		}
		if r.ExpectedType == "" {
			return fmt.Errorf("rule %q: TYPE needs an expected type", r.Name)
		}
	case RuleTypeRange:
		if r.Column == "" {
			return fmt.Errorf("rule %q: RANGE needs a column", r.Name)
		}
		if r.Min == nil && r.Max == nil {
			return fmt.Errorf("rule %q: RANGE needs at least one bound", r.Name)
		}
		if r.Min != nil && r.Max != nil && *r.Min > *r.Max {
			return fmt.Errorf("rule %q: RANGE min %v exceeds max %v", r.Name, *r.Min, *r.Max)
		}
	case RuleTypePattern:
		if r.Column == "" || r.Pattern == "" {
			return fmt.Errorf("rule %q: PATTERN needs a column and a pattern", r.Name)
		}
	case RuleTypeUnique:
		if r.Column == "" {
			return fmt.Errorf("rule %q: UNIQUE needs a column", r.Name)
		}
	case RuleTypeCustom:
		if r.Check == nil {
			return fmt.Errorf("rule %q: CUSTOM needs a check function", r.Name)
		}
	}
	return nil
}

// severity returns the effective severity, defaulting to ERROR.
func (r Rule) severity() Severity {
	if r.Severity == "" {
		return SeverityError
	}
	return r.Severity
}

// RuleSet accumulates rules through fluent appenders. The appenders are
// conveniences over Add and introduce no semantics of their own.
type RuleSet struct {
	rules []Rule
}

// NewRuleSet creates an empty rule set.
func NewRuleSet() *RuleSet {
	return &RuleSet{}
}

// Add appends a fully specified rule.
func (rs *RuleSet) Add(rule Rule) *RuleSet {
	rs.rules = append(rs.rules, rule)
	return rs
}

// RequireColumns appends one REQUIRED rule per named column.
func (rs *RuleSet) RequireColumns(names ...string) *RuleSet {
	for _, name := range names {
		rs.rules = append(rs.rules, Rule{
			Name:   "required_" + name,
			Type:   RuleTypeRequired,
			Column: name,
		})
	}
	return rs
}

// WithType appends a TYPE rule expecting the named column to hold the given
// expected type.
func (rs *RuleSet) WithType(column, expectedType string) *RuleSet {
	rs.rules = append(rs.rules, Rule{
		Name:         "type_" + column,
		Type:         RuleTypeDataType,
		Column:       column,
		ExpectedType: expectedType,
	})
	return rs
}

// WithRange appends a RANGE rule. Either bound may be nil.
func (rs *RuleSet) WithRange(column string, min, max *float64) *RuleSet {
	rs.rules = append(rs.rules, Rule{
		Name:   "range_" + column,
		Type:   RuleTypeRange,
		Column: column,
		Min:    min,
		Max:    max,
	})
	return rs
}

// WithPattern appends a PATTERN rule. Patterns match from the start of the
// cell's text form.
func (rs *RuleSet) WithPattern(column, pattern string) *RuleSet {
	rs.rules = append(rs.rules, Rule{
		Name:    "pattern_" + column,
		Type:    RuleTypePattern,
		Column:  column,
		Pattern: pattern,
	})
	return rs
}

// WithUnique appends a UNIQUE rule for the named column.
func (rs *RuleSet) WithUnique(column string) *RuleSet {
	rs.rules = append(rs.rules, Rule{
		Name:   "unique_" + column,
		Type:   RuleTypeUnique,
		Column: column,
	})
	return rs
}

// WithCustom appends a CUSTOM rule backed by the given predicate.
func (rs *RuleSet) WithCustom(name, column string, check CheckFunc) *RuleSet {
	rs.rules = append(rs.rules, Rule{
		Name:   name,
		Type:   RuleTypeCustom,
		Column: column,
		Check:  check,
	})
	return rs
}

// Rules returns the accumulated rules in declaration order without
// validating them.
func (rs *RuleSet) Rules() []Rule {
	out := make([]Rule, len(rs.rules))
	copy(out, rs.rules)
	return out
}

// Build validates every rule definition and returns the rules in declaration
// order.
func (rs *RuleSet) Build() ([]Rule, error) {
	for _, rule := range rs.rules {
		if err := rule.ValidateDefinition(); err != nil {
			return nil, err
		}
	}
	return rs.Rules(), nil
}
