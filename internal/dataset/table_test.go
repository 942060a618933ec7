package dataset

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNew(t *testing.T) {
	tests := []struct {
		name    string
		columns []*Column
		wantErr bool
		rows    int
	}{
		{
			name: "two equal columns",
			columns: []*Column{
				NewColumn("a", []any{int64(1), int64(2)}),
				NewColumn("b", []any{"x", "y"}),
			},
			rows: 2,
		},
		{
			name:    "empty table",
			columns: nil,
			rows:    0,
		},
		{
			name: "length mismatch",
			columns: []*Column{
				NewColumn("a", []any{int64(1), int64(2)}),
				NewColumn("b", []any{"x"}),
			},
			wantErr: true,
		},
		{
			name: "duplicate name",
			columns: []*Column{
				NewColumn("a", []any{int64(1)}),
				NewColumn("a", []any{int64(2)}),
			},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tbl, err := New(tt.columns...)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.rows, tbl.RowCount())
			assert.Equal(t, len(tt.columns), tbl.ColumnCount())
		})
	}
}

func TestTable_ColumnLookup(t *testing.T) {
	tbl, err := New(
		NewColumn("product", []any{"a", "b"}),
		NewColumn("total", []any{int64(1), int64(2)}),
	)
	require.NoError(t, err)

	col, ok := tbl.Column("total")
	require.True(t, ok)
	assert.Equal(t, "total", col.Name)

	_, ok = tbl.Column("missing")
	assert.False(t, ok)
	assert.True(t, tbl.HasColumn("product"))
	assert.Equal(t, []string{"product", "total"}, tbl.ColumnNames())
}

func TestTable_AddColumn(t *testing.T) {
	tbl, err := New(NewColumn("a", []any{int64(1), int64(2)}))
	require.NoError(t, err)

	assert.Error(t, tbl.AddColumn(NewColumn("b", []any{int64(1)})))
	assert.Error(t, tbl.AddColumn(NewColumn("a", []any{int64(3), int64(4)})))
	require.NoError(t, tbl.AddColumn(NewColumn("b", []any{int64(3), int64(4)})))
	assert.Equal(t, 2, tbl.ColumnCount())
}

func TestTable_DropColumn(t *testing.T) {
	tbl, err := New(
		NewColumn("a", []any{int64(1)}),
		NewColumn("b", []any{int64(2)}),
		NewColumn("c", []any{int64(3)}),
	)
	require.NoError(t, err)

	assert.True(t, tbl.DropColumn("b"))
	assert.False(t, tbl.DropColumn("b"))
	assert.Equal(t, []string{"a", "c"}, tbl.ColumnNames())

	// Index stays consistent after the shift.
	col, ok := tbl.Column("c")
	require.True(t, ok)
	assert.Equal(t, int64(3), col.Values[0])
}

func TestTable_SelectRows(t *testing.T) {
	tbl, err := New(
		NewColumn("a", []any{int64(10), int64(20), int64(30)}),
		NewColumn("b", []any{"x", "y", "z"}),
	)
	require.NoError(t, err)

	sub := tbl.SelectRows([]int{2, 0})
	assert.Equal(t, 2, sub.RowCount())
	col, _ := sub.Column("a")
	assert.Equal(t, []any{int64(30), int64(10)}, col.Values)
	col, _ = sub.Column("b")
	assert.Equal(t, []any{"z", "x"}, col.Values)

	// Source table is untouched.
	assert.Equal(t, 3, tbl.RowCount())
}

func TestTable_Clone(t *testing.T) {
	tbl, err := New(NewColumn("a", []any{int64(1), int64(2)}))
	require.NoError(t, err)

	clone := tbl.Clone()
	col, _ := clone.Column("a")
	col.Values[0] = int64(99)

	orig, _ := tbl.Column("a")
	assert.Equal(t, int64(1), orig.Values[0])
}

func TestTable_RowKey(t *testing.T) {
	tbl, err := New(
		NewColumn("a", []any{int64(1), "1", int64(1)}),
		NewColumn("b", []any{"x", "x", "y"}),
	)
	require.NoError(t, err)

	// Same typed values produce the same key; text "1" differs from int 1.
	assert.NotEqual(t, tbl.RowKey(0, nil), tbl.RowKey(1, nil))
	assert.NotEqual(t, tbl.RowKey(0, nil), tbl.RowKey(2, nil))
	assert.Equal(t, tbl.RowKey(0, []string{"a"}), tbl.RowKey(2, []string{"a"}))
}

func TestCellKey(t *testing.T) {
	tests := []struct {
		name string
		a    any
		b    any
		same bool
	}{
		{name: "nulls group", a: nil, b: nil, same: true},
		{name: "int and integral float group", a: int64(3), b: float64(3), same: true},
		{name: "int and text differ", a: int64(1), b: "1", same: false},
		{name: "bools differ", a: true, b: false, same: false},
		{name: "times group", a: time.Date(2024, 1, 15, 0, 0, 0, 0, time.UTC), b: time.Date(2024, 1, 15, 0, 0, 0, 0, time.UTC), same: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if tt.same {
				assert.Equal(t, CellKey(tt.a), CellKey(tt.b))
			} else {
				assert.NotEqual(t, CellKey(tt.a), CellKey(tt.b))
			}
		})
	}
}

func TestColumn_NullCount(t *testing.T) {
	col := NewColumn("a", []any{int64(1), nil, "x", nil})
	assert.Equal(t, 2, col.NullCount())
}

func TestColumn_Float64s(t *testing.T) {
	col := NewColumn("a", []any{int64(1), 2.5, nil, "x", true})
	values, ok := col.Float64s()

	require.Len(t, values, 5)
	assert.Equal(t, 1.0, values[0])
	assert.Equal(t, 2.5, values[1])
	assert.Equal(t, []bool{true, true, false, false, false}, ok)
}
