package ingest

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestReadCSV(t *testing.T) {
	path := writeFile(t, "input.csv",
		"\uFEFFid,name,price,when\n"+
			"1,widget,9.99,2024-01-15\n"+
			"2,,10.50,2024-01-16\n"+
			"3,gadget,,\n")

	tbl, report, err := ReadCSV(path, CSVOptions{})
	require.NoError(t, err)

	assert.Equal(t, 3, tbl.RowCount())
	// The BOM must not leak into the first column name.
	assert.Equal(t, []string{"id", "name", "price", "when"}, tbl.ColumnNames())

	id, _ := tbl.Column("id")
	assert.Equal(t, []any{int64(1), int64(2), int64(3)}, id.Values)

	name, _ := tbl.Column("name")
	assert.Equal(t, []any{"widget", nil, "gadget"}, name.Values)

	price, _ := tbl.Column("price")
	assert.Equal(t, []any{9.99, 10.5, nil}, price.Values)

	when, _ := tbl.Column("when")
	assert.Equal(t, time.Date(2024, 1, 15, 0, 0, 0, 0, time.UTC), when.Values[0])
	assert.Nil(t, when.Values[2])

	require.Len(t, report.Columns, 4)
	assert.Equal(t, FormatCSV, report.Format)
	assert.Equal(t, 3, report.RowCount)
	assert.Equal(t, 4, report.ColumnCount)

	profiles := make(map[string]ColumnProfile, len(report.Columns))
	for _, p := range report.Columns {
		profiles[p.Name] = p
	}
	assert.Equal(t, "integer", profiles["id"].DetectedType)
	assert.Equal(t, 0, profiles["id"].NullCount)
	assert.Equal(t, "string", profiles["name"].DetectedType)
	assert.Equal(t, 1, profiles["name"].NullCount)
	assert.Equal(t, 2, profiles["name"].NonNullCount)
	assert.Equal(t, "float", profiles["price"].DetectedType)
	assert.Equal(t, "date", profiles["when"].DetectedType)
	assert.Equal(t, []string{"widget", "gadget"}, profiles["name"].SampleValues)
}

func TestReadCSVCustomDelimiter(t *testing.T) {
	path := writeFile(t, "semi.csv", "a;b\n1;2\n")

	tbl, _, err := ReadCSV(path, CSVOptions{Delimiter: ';'})
	require.NoError(t, err)

	assert.Equal(t, []string{"a", "b"}, tbl.ColumnNames())
	a, _ := tbl.Column("a")
	assert.Equal(t, []any{int64(1)}, a.Values)
}

func TestReadCSVPadsShortRows(t *testing.T) {
	path := writeFile(t, "ragged.csv", "a,b,c\n1,2,3\n4\n")

	tbl, _, err := ReadCSV(path, CSVOptions{})
	require.NoError(t, err)

	c, _ := tbl.Column("c")
	assert.Equal(t, []any{int64(3), nil}, c.Values)
}

func TestReadCSVNullTokens(t *testing.T) {
	path := writeFile(t, "nulls.csv", "v\nNA\nn/a\nnull\n-\n7\n")

	tbl, report, err := ReadCSV(path, CSVOptions{})
	require.NoError(t, err)

	v, _ := tbl.Column("v")
	assert.Equal(t, []any{nil, nil, nil, nil, int64(7)}, v.Values)
	assert.Equal(t, 4, report.Columns[0].NullCount)
}

func TestReadCSVDeduplicatesHeaders(t *testing.T) {
	path := writeFile(t, "dup.csv", "x,x,,x\n1,2,3,4\n")

	tbl, _, err := ReadCSV(path, CSVOptions{})
	require.NoError(t, err)

	assert.Equal(t, []string{"x", "x_2", "column_3", "x_3"}, tbl.ColumnNames())
}

func TestReadCSVEmptyFile(t *testing.T) {
	path := writeFile(t, "empty.csv", "")

	_, _, err := ReadCSV(path, CSVOptions{})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "empty csv")
}

func TestReadCSVMissingFile(t *testing.T) {
	_, _, err := ReadCSV(filepath.Join(t.TempDir(), "nope.csv"), CSVOptions{})
	require.Error(t, err)
}

func TestReadFileDispatch(t *testing.T) {
	path := writeFile(t, "data.csv", "a\n1\n")

	tbl, report, err := ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, 1, tbl.RowCount())
	assert.Equal(t, FormatCSV, report.Format)

	_, _, err = ReadFile(filepath.Join(t.TempDir(), "data.parquet"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unsupported file type")
}
