package ingest

import (
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"tableprep/internal/dataset"
)

// CSVOptions controls CSV parsing.
type CSVOptions struct {
	Delimiter rune // field separator, comma when zero
	Comment   rune // lines starting with this rune are skipped when set
}

// ReadCSV loads a CSV file into a typed table. The first row is the
// header; a UTF-8 BOM is tolerated; short rows are padded with nulls.
func ReadCSV(path string, opts CSVOptions) (*dataset.Table, *Report, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, nil, fmt.Errorf("open csv: %w", err)
	}
	defer file.Close()

	reader := csv.NewReader(file)
	if opts.Delimiter != 0 {
		reader.Comma = opts.Delimiter
	}
	if opts.Comment != 0 {
		reader.Comment = opts.Comment
	}
	reader.FieldsPerRecord = -1

	records, err := reader.ReadAll()
	if err != nil {
		return nil, nil, fmt.Errorf("read csv records: %w", err)
	}
	if len(records) == 0 {
		return nil, nil, fmt.Errorf("empty csv file %s", path)
	}
	if len(records[0]) > 0 {
		records[0][0] = strings.TrimPrefix(records[0][0], "\uFEFF")
	}

	tbl, err := tableFromRecords(records)
	if err != nil {
		return nil, nil, fmt.Errorf("read csv %s: %w", path, err)
	}
	return tbl, NewReport(path, FormatCSV, tbl), nil
}

// ReadFile dispatches on the file extension: .csv goes to ReadCSV with
// default options, .xlsx and .xlsm go to ReadExcel with the first sheet.
func ReadFile(path string) (*dataset.Table, *Report, error) {
	ext := strings.ToLower(filepath.Ext(path))
	switch ext {
	case ".csv":
		return ReadCSV(path, CSVOptions{})
	case ".xlsx", ".xlsm":
		return ReadExcel(path, "")
	default:
		return nil, nil, fmt.Errorf("unsupported file type %q", ext)
	}
}

// tableFromRecords builds a typed table from raw text records. The first
// record is the header.
func tableFromRecords(records [][]string) (*dataset.Table, error) {
	header := uniqueHeaders(records[0])
	rows := records[1:]

	columns := make([]*dataset.Column, len(header))
	for j, name := range header {
		values := make([]any, len(rows))
		for i, row := range rows {
			if j < len(row) {
				values[i] = dataset.CoerceCell(row[j])
			}
		}
		columns[j] = dataset.NewColumn(name, values)
	}
	return dataset.New(columns...)
}

// uniqueHeaders fills blank header cells and suffixes repeated names so
// every column gets a distinct, addressable name.
func uniqueHeaders(raw []string) []string {
	names := make([]string, len(raw))
	used := make(map[string]bool, len(raw))
	for i, name := range raw {
		name = strings.TrimSpace(name)
		if name == "" {
			name = fmt.Sprintf("column_%d", i+1)
		}
		candidate := name
		for n := 2; used[candidate]; n++ {
			candidate = fmt.Sprintf("%s_%d", name, n)
		}
		used[candidate] = true
		names[i] = candidate
	}
	return names
}
