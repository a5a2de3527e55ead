// Package table materializes raw query payloads into typed columns.
//
// The service returns rows as JSON arrays whose cells carry raw values: numbers,
// integer codes for discrete fields and ISO timestamps. A Materializer casts each
// column according to the field it was selected from, straight into Arrow
// arrays. A column that cannot be cast is left raw, so one malformed column
// never loses a whole result.
//
// Typed columns hold one Arrow array per appended page. Tables built on a
// non-Go allocator must be released with Table.Release.
package table

import (
	"errors"
	"fmt"
	"slices"

	"github.com/apache/arrow-go/v18/arrow"
)

// ErrMaterialization is wrapped by MaterializationError and by payload shape errors.
var ErrMaterialization = errors.New("materialization failed")

// ColumnType is the representation chosen for a column.
type ColumnType string

const (
	// ColumnRaw holds cells as decoded from JSON, numbers as json.Number.
	ColumnRaw ColumnType = "raw"
	// ColumnNumber is backed by float64 arrays.
	ColumnNumber ColumnType = "number"
	// ColumnBoolean is backed by boolean arrays.
	ColumnBoolean ColumnType = "boolean"
	// ColumnTimestamp is backed by microsecond UTC timestamp arrays.
	ColumnTimestamp ColumnType = "timestamp"
	// ColumnString is backed by string arrays, including decoded discrete values.
	ColumnString ColumnType = "string"
)

// Column is a named column. Typed columns keep their cells in Arrow arrays,
// one chunk per appended page; raw columns keep the decoded JSON cells.
type Column struct {
	Name string
	Type ColumnType

	chunks []arrow.Array
	raw    []any
}

// NewRawColumn creates a raw column over values. Nil cells are nulls.
func NewRawColumn(name string, values []any) *Column {
	return &Column{Name: name, Type: ColumnRaw, raw: values}
}

// newArrowColumn wraps arr, taking over the caller's reference.
func newArrowColumn(name string, typ ColumnType, arr arrow.Array) *Column {
	return &Column{Name: name, Type: typ, chunks: []arrow.Array{arr}}
}

// Len returns the number of cells.
func (c *Column) Len() int {
	if c.Type == ColumnRaw {
		return len(c.raw)
	}
	n := 0
	for _, arr := range c.chunks {
		n += arr.Len()
	}
	return n
}

// Value returns cell i: float64, bool, time.Time (UTC) or string for typed
// columns, the decoded JSON value for raw columns, nil for nulls.
func (c *Column) Value(i int) any {
	if c.Type == ColumnRaw {
		return c.raw[i]
	}
	j := i
	for _, arr := range c.chunks {
		if j < arr.Len() {
			return arrayValue(arr, j)
		}
		j -= arr.Len()
	}
	panic(fmt.Sprintf("table: row %d out of range [0:%d] in column %q", i, c.Len(), c.Name))
}

// Values returns every cell, as Value would.
func (c *Column) Values() []any {
	if c.Type == ColumnRaw {
		return slices.Clone(c.raw)
	}
	out := make([]any, 0, c.Len())
	for _, arr := range c.chunks {
		for j := 0; j < arr.Len(); j++ {
			out = append(out, arrayValue(arr, j))
		}
	}
	return out
}

// Chunks returns the Arrow arrays backing a typed column, one per page.
// Raw columns have none. The arrays remain owned by the column.
func (c *Column) Chunks() []arrow.Array {
	return slices.Clone(c.chunks)
}

// Release drops the column's references to its Arrow arrays.
func (c *Column) Release() {
	for _, arr := range c.chunks {
		arr.Release()
	}
	c.chunks = nil
}

func (c *Column) clone() *Column {
	for _, arr := range c.chunks {
		arr.Retain()
	}
	return &Column{
		Name:   c.Name,
		Type:   c.Type,
		chunks: slices.Clone(c.chunks),
		raw:    slices.Clone(c.raw),
	}
}

func (c *Column) append(o *Column) {
	switch {
	case o.Len() == 0:
	case c.Len() == 0:
		c.Release()
		adopted := o.clone()
		c.Type, c.chunks, c.raw = adopted.Type, adopted.chunks, adopted.raw
	case c.Type != o.Type:
		raw := append(c.Values(), o.Values()...)
		c.Release()
		c.Type, c.raw = ColumnRaw, raw
	case c.Type == ColumnRaw:
		c.raw = append(c.raw, o.raw...)
	default:
		for _, arr := range o.chunks {
			arr.Retain()
		}
		c.chunks = append(c.chunks, o.chunks...)
	}
}

// Table is an ordered set of columns with aligned rows.
type Table struct {
	Columns []*Column

	// Truncated is set when a paged query stopped early and the table holds
	// only the rows received before the failure.
	Truncated bool
}

// NumRows returns the number of rows.
func (t *Table) NumRows() int {
	if t == nil || len(t.Columns) == 0 {
		return 0
	}
	return t.Columns[0].Len()
}

// Column returns the first column with the given name, or nil.
func (t *Table) Column(name string) *Column {
	for _, c := range t.Columns {
		if c.Name == name {
			return c
		}
	}
	return nil
}

// Names returns the column names in order.
func (t *Table) Names() []string {
	names := make([]string, len(t.Columns))
	for i, c := range t.Columns {
		names[i] = c.Name
	}
	return names
}

// Row returns the cells of row i.
func (t *Table) Row(i int) []any {
	row := make([]any, len(t.Columns))
	for j, c := range t.Columns {
		row[j] = c.Value(i)
	}
	return row
}

// Release releases the Arrow arrays of every column.
func (t *Table) Release() {
	if t == nil {
		return
	}
	for _, c := range t.Columns {
		c.Release()
	}
}

// Append adds the rows of other after the rows of t.
//
// Both tables must have the same column names in the same order. Arrow chunks
// of other are shared, not copied; other may be released afterwards. When a
// column was cast differently in the two tables it degrades to ColumnRaw.
// An empty t adopts the columns of other.
func (t *Table) Append(other *Table) error {
	if other == nil || len(other.Columns) == 0 {
		return nil
	}
	if len(t.Columns) == 0 {
		for _, c := range other.Columns {
			t.Columns = append(t.Columns, c.clone())
		}
		t.Truncated = t.Truncated || other.Truncated
		return nil
	}
	if len(t.Columns) != len(other.Columns) {
		return fmt.Errorf("%w: cannot append %d columns to %d", ErrMaterialization, len(other.Columns), len(t.Columns))
	}
	for i, c := range t.Columns {
		if c.Name != other.Columns[i].Name {
			return fmt.Errorf("%w: column %d is %q, appended column is %q", ErrMaterialization, i, c.Name, other.Columns[i].Name)
		}
	}

	for i, c := range t.Columns {
		c.append(other.Columns[i])
	}
	t.Truncated = t.Truncated || other.Truncated
	return nil
}
