package exporter

import (
	"tableprep/internal/dataset"
)

// recordFromRow renders one table row as CSV fields. Nulls become empty
// fields; floats keep full precision so scaled values survive a round
// trip through the file.
func recordFromRow(columns []*dataset.Column, row int) []string {
	record := make([]string, len(columns))
	for j, col := range columns {
		record[j] = dataset.AsString(col.Values[row])
	}
	return record
}

// TableRecords renders a whole table as CSV records, headers excluded.
func TableRecords(tbl *dataset.Table) [][]string {
	columns := tbl.Columns()
	records := make([][]string, tbl.RowCount())
	for i := range records {
		records[i] = recordFromRow(columns, i)
	}
	return records
}
