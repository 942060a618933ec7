package dataset

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

// Column is a named, fixed-length sequence of scalar cells. A nil cell is a
// null. Non-null cells hold string, int64, float64, bool, or time.Time.
type Column struct {
	Name   string `json:"name"`
	Values []any  `json:"values"`
}

// NewColumn creates a column over the given cells. The slice is used directly,
// not copied.
func NewColumn(name string, values []any) *Column {
	return &Column{Name: name, Values: values}
}

// NullCount returns the number of null cells in the column.
func (c *Column) NullCount() int {
	count := 0
	for _, v := range c.Values {
		if IsNull(v) {
			count++
		}
	}
	return count
}

// Float64s returns the column as float64 values aligned with rows, plus a
// validity mask. Null and non-numeric cells yield NaN and false.
func (c *Column) Float64s() ([]float64, []bool) {
	out := make([]float64, len(c.Values))
	ok := make([]bool, len(c.Values))
	for i, v := range c.Values {
		f, valid := AsFloat(v)
		if valid {
			out[i] = f
			ok[i] = true
		} else {
			out[i] = nan
		}
	}
	return out, ok
}

// Table is an ordered set of named columns sharing one row count.
type Table struct {
	columns []*Column
	index   map[string]int
}

// New creates a table from the given columns. All columns must have unique
// names and identical lengths.
func New(columns ...*Column) (*Table, error) {
	t := &Table{index: make(map[string]int, len(columns))}
	for _, col := range columns {
		if err := t.AddColumn(col); err != nil {
			return nil, err
		}
	}
	return t, nil
}

// RowCount returns the number of rows. A table with no columns has zero rows.
func (t *Table) RowCount() int {
	if len(t.columns) == 0 {
		return 0
	}
	return len(t.columns[0].Values)
}

// ColumnCount returns the number of columns.
func (t *Table) ColumnCount() int {
	return len(t.columns)
}

// Columns returns the columns in order. The returned slice is a copy; the
// columns themselves are shared.
func (t *Table) Columns() []*Column {
	cols := make([]*Column, len(t.columns))
	copy(cols, t.columns)
	return cols
}

// ColumnNames returns the column names in order.
func (t *Table) ColumnNames() []string {
	names := make([]string, len(t.columns))
	for i, col := range t.columns {
		names[i] = col.Name
	}
	return names
}

// Column returns the named column, or false when absent.
func (t *Table) Column(name string) (*Column, bool) {
	i, ok := t.index[name]
	if !ok {
		return nil, false
	}
	return t.columns[i], true
}

// HasColumn reports whether the named column exists.
func (t *Table) HasColumn(name string) bool {
	_, ok := t.index[name]
	return ok
}

// AddColumn appends a column. The column length must match the table's row
// count unless the table is empty.
func (t *Table) AddColumn(col *Column) error {
	if col == nil {
		return fmt.Errorf("add column: nil column")
	}
	if _, exists := t.index[col.Name]; exists {
		return fmt.Errorf("add column: duplicate column %q", col.Name)
	}
	if len(t.columns) > 0 && len(col.Values) != t.RowCount() {
		return fmt.Errorf("add column %q: has %d values, want %d", col.Name, len(col.Values), t.RowCount())
	}
	t.index[col.Name] = len(t.columns)
	t.columns = append(t.columns, col)
	return nil
}

// DropColumn removes the named column, reporting whether it existed.
func (t *Table) DropColumn(name string) bool {
	i, ok := t.index[name]
	if !ok {
		return false
	}
	t.columns = append(t.columns[:i], t.columns[i+1:]...)
	delete(t.index, name)
	for j := i; j < len(t.columns); j++ {
		t.index[t.columns[j].Name] = j
	}
	return true
}

// SelectRows returns a new table containing the given row indices in order.
// Indices may repeat; each must be within range.
func (t *Table) SelectRows(rows []int) *Table {
	out := &Table{
		columns: make([]*Column, 0, len(t.columns)),
		index:   make(map[string]int, len(t.columns)),
	}
	for _, col := range t.columns {
		values := make([]any, len(rows))
		for j, r := range rows {
			values[j] = col.Values[r]
		}
		out.index[col.Name] = len(out.columns)
		out.columns = append(out.columns, &Column{Name: col.Name, Values: values})
	}
	return out
}

// Clone returns a deep copy of the table. Cell values are scalars and are
// copied by value.
func (t *Table) Clone() *Table {
	out := &Table{
		columns: make([]*Column, 0, len(t.columns)),
		index:   make(map[string]int, len(t.columns)),
	}
	for _, col := range t.columns {
		values := make([]any, len(col.Values))
		copy(values, col.Values)
		out.index[col.Name] = len(out.columns)
		out.columns = append(out.columns, &Column{Name: col.Name, Values: values})
	}
	return out
}

// RowKey returns a fingerprint of one row across the given column subset
// (all columns when subset is empty). Cells of different types never collide
// even when their text forms match.
func (t *Table) RowKey(row int, subset []string) string {
	var b strings.Builder
	if len(subset) == 0 {
		for _, col := range t.columns {
			b.WriteString(CellKey(col.Values[row]))
			b.WriteByte(0x1f)
		}
		return b.String()
	}
	for _, name := range subset {
		if col, ok := t.Column(name); ok {
			b.WriteString(CellKey(col.Values[row]))
		}
		b.WriteByte(0x1f)
	}
	return b.String()
}

// CellKey returns a type-discriminating string form of a cell, suitable for
// equality grouping. Nulls share one key.
func CellKey(v any) string {
	switch x := v.(type) {
	case nil:
		return "_"
	case string:
		return "s:" + x
	case int64:
		return "i:" + strconv.FormatInt(x, 10)
	case float64:
		// Integral floats group with ints so 3 and 3.0 count as duplicates.
		if x == float64(int64(x)) {
			return "i:" + strconv.FormatInt(int64(x), 10)
		}
		return "f:" + strconv.FormatFloat(x, 'g', -1, 64)
	case bool:
		if x {
			return "b:1"
		}
		return "b:0"
	case time.Time:
		return "t:" + x.Format(time.RFC3339Nano)
	default:
		return fmt.Sprintf("v:%v", x)
	}
}
