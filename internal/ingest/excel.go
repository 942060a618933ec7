package ingest

import (
	"fmt"

	"github.com/xuri/excelize/v2"

	"tableprep/internal/dataset"
)

// ReadExcel loads one worksheet into a typed table. An empty sheet name
// selects the workbook's first sheet. Ragged rows, which excelize produces
// for trailing empty cells, are padded with nulls.
func ReadExcel(path, sheet string) (*dataset.Table, *Report, error) {
	f, err := excelize.OpenFile(path)
	if err != nil {
		return nil, nil, fmt.Errorf("open excel: %w", err)
	}
	defer f.Close()

	if sheet == "" {
		sheets := f.GetSheetList()
		if len(sheets) == 0 {
			return nil, nil, fmt.Errorf("no sheets in %s", path)
		}
		sheet = sheets[0]
	}

	rows, err := f.GetRows(sheet)
	if err != nil {
		return nil, nil, fmt.Errorf("read sheet %q: %w", sheet, err)
	}
	if len(rows) == 0 {
		return nil, nil, fmt.Errorf("sheet %q of %s is empty", sheet, path)
	}

	tbl, err := tableFromRecords(rows)
	if err != nil {
		return nil, nil, fmt.Errorf("read excel %s: %w", path, err)
	}
	return tbl, NewReport(path, FormatExcel, tbl), nil
}
