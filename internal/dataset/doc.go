// Package dataset defines the in-memory tabular data model shared by the
// validation, cleaning, and transformation engines.
//
// A Table is an ordered collection of named, equal-length columns. Cells are
// dynamically typed: nil (null), string, int64, float64, bool, or time.Time.
// Row order is significant and preserved by every operation except explicit
// row selection; column order is preserved except where columns are added or
// removed.
//
// # Components
//
// 1. Table/Column: construction, lookup, row selection, cloning
// 2. Type detection: per-column ColumnType inference over non-null cells
// 3. Coercion: best-effort parsing of raw text cells into typed values
//
// Typical construction from parsed input:
//
//	tbl, err := dataset.New(
//	    dataset.NewColumn("product", []any{"a", "b", "c"}),
//	    dataset.NewColumn("total", []any{int64(10), int64(20), nil}),
//	)
//
// The engines mutate column values in place; a Table is owned by exactly one
// pipeline run at a time. Use Clone before handing a table to code that must
// not observe later mutations.
package dataset
