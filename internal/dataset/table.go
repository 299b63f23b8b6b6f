package dataset

import (
	"slices"

	"github.com/tphakala/birdstrike/internal/errors"
)

// Row is one record; cell i belongs to column i of its table
type Row []Value

// Table is an ordered-column, row-oriented in-memory table. Stages never mutate a
// table they received; they build a new one, possibly sharing unchanged rows.
type Table struct {
	Name    string
	Columns []string
	Rows    []Row
}

// New returns an empty table with the given columns
func New(name string, columns []string) *Table {
	return &Table{Name: name, Columns: slices.Clone(columns)}
}

// Len returns the number of rows
func (t *Table) Len() int {
	return len(t.Rows)
}

// ColumnIndex returns the position of the named column, or -1
func (t *Table) ColumnIndex(name string) int {
	return slices.Index(t.Columns, name)
}

// Column returns the position of the named column, or a SchemaError attributed to component.
func (t *Table) Column(component, name string) (int, error) {
	idx := t.ColumnIndex(name)
	if idx < 0 {
		return -1, errors.SchemaError(component, t.Name, name)
	}
	return idx, nil
}

// Cell returns the value of column col in row r, or null when the row is short.
func (t *Table) Cell(r, col int) Value {
	row := t.Rows[r]
	if col < 0 || col >= len(row) {
		return Null()
	}
	return row[col]
}

// Append adds a row; short rows are padded with nulls.
func (t *Table) Append(row Row) {
	if len(row) < len(t.Columns) {
		padded := make(Row, len(t.Columns))
		copy(padded, row)
		row = padded
	}
	t.Rows = append(t.Rows, row)
}

// Filter returns a new table with the rows keep accepts, in order.
func (t *Table) Filter(keep func(Row) bool) *Table {
	out := New(t.Name, t.Columns)
	out.Rows = make([]Row, 0, len(t.Rows))
	for _, row := range t.Rows {
		if keep(row) {
			out.Rows = append(out.Rows, row)
		}
	}
	return out
}

// WithColumns returns a copy of the table whose columns are renamed to columns.
// The caller guarantees len(columns) == len(t.Columns).
func (t *Table) WithColumns(columns []string) *Table {
	return &Table{Name: t.Name, Columns: slices.Clone(columns), Rows: t.Rows}
}

// DropColumns returns a new table without the named columns. Unknown names are ignored.
func (t *Table) DropColumns(names ...string) *Table {
	keep := make([]int, 0, len(t.Columns))
	var columns []string
	for i, c := range t.Columns {
		if slices.Contains(names, c) {
			continue
		}
		keep = append(keep, i)
		columns = append(columns, c)
	}

	out := New(t.Name, columns)
	out.Rows = make([]Row, len(t.Rows))
	for r := range t.Rows {
		row := make(Row, len(keep))
		for i, src := range keep {
			row[i] = t.Cell(r, src)
		}
		out.Rows[r] = row
	}
	return out
}

// Records returns the table as one column-name → value map per row, for encoders
// that want named fields.
func (t *Table) Records() []map[string]any {
	out := make([]map[string]any, len(t.Rows))
	for r := range t.Rows {
		rec := make(map[string]any, len(t.Columns))
		for c, name := range t.Columns {
			rec[name] = t.Cell(r, c).Interface()
		}
		out[r] = rec
	}
	return out
}
