package exporter

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"tableprep/internal/dataset"
)

func buildTable(t *testing.T, cols ...*dataset.Column) *dataset.Table {
	t.Helper()
	tbl, err := dataset.New(cols...)
	require.NoError(t, err)
	return tbl
}

func TestWriteTable(t *testing.T) {
	dir := t.TempDir()
	writer := NewCSVWriter(dir, testLogger())

	tbl := buildTable(t,
		dataset.NewColumn("id", []any{int64(1), int64(2), int64(3)}),
		dataset.NewColumn("score", []any{0.5, nil, 0.1 + 0.2}),
		dataset.NewColumn("name", []any{"widget", "gadget", nil}),
		dataset.NewColumn("seen", []any{
			time.Date(2024, 1, 15, 0, 0, 0, 0, time.UTC),
			time.Date(2024, 1, 16, 9, 30, 0, 0, time.UTC),
			nil,
		}),
	)

	require.NoError(t, writer.WriteTable("table.csv", tbl))

	records := readRecords(t, filepath.Join(dir, "table.csv"), true)
	require.Len(t, records, 4)
	assert.Equal(t, []string{"id", "score", "name", "seen"}, records[0])
	assert.Equal(t, []string{"1", "0.5", "widget", "2024-01-15"}, records[1])
	assert.Equal(t, []string{"2", "", "gadget", "2024-01-16 09:30:00"}, records[2])
	// Floats keep full precision so scaled values round trip.
	assert.Equal(t, []string{"3", "0.30000000000000004", "", ""}, records[3])
}

func TestWriteTableNil(t *testing.T) {
	writer := NewCSVWriter(t.TempDir(), testLogger())

	err := writer.WriteTable("table.csv", nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "nil table")
}

func TestWriteTableNoRows(t *testing.T) {
	dir := t.TempDir()
	writer := NewCSVWriter(dir, testLogger())

	tbl := buildTable(t,
		dataset.NewColumn("id", nil),
		dataset.NewColumn("name", nil),
	)

	require.NoError(t, writer.WriteTable("empty.csv", tbl))

	records := readRecords(t, filepath.Join(dir, "empty.csv"), true)
	assert.Equal(t, [][]string{{"id", "name"}}, records)
}

func TestTableRecords(t *testing.T) {
	tbl := buildTable(t,
		dataset.NewColumn("flag", []any{true, false}),
		dataset.NewColumn("count", []any{int64(10), nil}),
	)

	records := TableRecords(tbl)
	assert.Equal(t, [][]string{
		{"true", "10"},
		{"false", ""},
	}, records)
}
