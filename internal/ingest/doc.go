// Package ingest loads CSV and Excel files into typed tables.
//
// Cells are parsed into nulls, integers, floats, booleans, dates, or
// trimmed strings; each load also profiles the table into a Report with
// per-column detected types, null counts, and sample values. The engines
// downstream never touch files themselves.
package ingest
