// Package exporter writes pipeline outputs to disk.
//
// CSVWriter is the single entry point: WriteTable streams a typed table to
// CSV with a UTF-8 BOM for Excel compatibility, WriteCSV and
// CreateStreamWriter cover raw record output, and WriteJSON renders any
// report as indented JSON. Relative paths resolve against the writer's
// base directory.
package exporter
