package exporter

import (
	"fmt"

	"tableprep/internal/dataset"
)

// WriteTable streams a table to a CSV file with a UTF-8 BOM and a header
// row. Rows are written one at a time, so table size is bounded by memory
// the table already occupies, not by the export.
func (w *CSVWriter) WriteTable(filePath string, tbl *dataset.Table) error {
	if tbl == nil {
		return fmt.Errorf("write table: nil table")
	}

	stream, err := w.CreateStreamWriter(filePath, tbl.ColumnNames())
	if err != nil {
		return fmt.Errorf("write table: %w", err)
	}

	columns := tbl.Columns()
	for i := 0; i < tbl.RowCount(); i++ {
		if err := stream.WriteRecord(recordFromRow(columns, i)); err != nil {
			stream.Close()
			return fmt.Errorf("write table row %d: %w", i, err)
		}
	}
	return stream.Close()
}
