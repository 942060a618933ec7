// Package validation implements the declarative schema validator for tabular
// datasets.
//
// A caller declares a list of rules (required columns, type expectations,
// numeric ranges, text patterns, uniqueness, custom predicates) and runs them
// against a dataset.Table. Validation never mutates the table and never
// fails: every rule failure, including a panicking custom predicate or an
// invalid pattern, is captured as a Violation in the Result.
//
// Rules are evaluated in declaration order. Each violation records the full
// affected-row count but stores at most 100 row indices and 5 sample values.
// A result is valid when no ERROR-severity violations exist; WARNING and
// INFO violations never block.
//
//	rules, err := validation.NewRuleSet().
//	    RequireColumns("fecha", "total").
//	    WithType("total", "numeric").
//	    WithUnique("order_id").
//	    Build()
//	result := validator.Validate(ctx, tbl, rules)
//	if !result.IsValid() { ... }
package validation
