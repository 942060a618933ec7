package ingest

import (
	"tableprep/internal/dataset"
)

const (
	FormatCSV   = "csv"
	FormatExcel = "excel"
)

const maxSampleValues = 5

// ColumnProfile summarizes one loaded column.
type ColumnProfile struct {
	Name         string   `json:"name"`
	DetectedType string   `json:"detected_type"`
	NullCount    int      `json:"null_count"`
	NonNullCount int      `json:"non_null_count"`
	SampleValues []string `json:"sample_values,omitempty"`
}

// Report profiles a loaded file: shape, per-column detected types, null
// counts, and up to five distinct sample values per column.
type Report struct {
	Source      string          `json:"source"`
	Format      string          `json:"format"`
	RowCount    int             `json:"row_count"`
	ColumnCount int             `json:"column_count"`
	Columns     []ColumnProfile `json:"columns"`
}

// NewReport profiles a freshly loaded table.
func NewReport(source, format string, tbl *dataset.Table) *Report {
	report := &Report{
		Source:      source,
		Format:      format,
		RowCount:    tbl.RowCount(),
		ColumnCount: tbl.ColumnCount(),
	}
	for _, col := range tbl.Columns() {
		profile := ColumnProfile{
			Name:         col.Name,
			DetectedType: string(col.DetectType()),
			NullCount:    col.NullCount(),
		}
		profile.NonNullCount = len(col.Values) - profile.NullCount

		seen := make(map[string]struct{}, maxSampleValues)
		for _, cell := range col.Values {
			if len(seen) == maxSampleValues {
				break
			}
			if dataset.IsNull(cell) {
				continue
			}
			s := dataset.AsString(cell)
			if _, dup := seen[s]; dup {
				continue
			}
			seen[s] = struct{}{}
			profile.SampleValues = append(profile.SampleValues, s)
		}
		report.Columns = append(report.Columns, profile)
	}
	return report
}
