package table

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/apache/arrow-go/v18/arrow"
	"github.com/apache/arrow-go/v18/arrow/array"
	"github.com/apache/arrow-go/v18/arrow/memory"
)

// timestampType is the Arrow type of ColumnTimestamp.
var timestampType = &arrow.TimestampType{Unit: arrow.Microsecond, TimeZone: "UTC"}

// Schema returns the Arrow schema matching the column types.
// Raw columns are exported as UTF-8 JSON text.
func (t *Table) Schema() *arrow.Schema {
	fields := make([]arrow.Field, len(t.Columns))
	for i, c := range t.Columns {
		fields[i] = arrow.Field{Name: c.Name, Type: arrowType(c.Type), Nullable: true}
	}
	return arrow.NewSchema(fields, nil)
}

func arrowType(typ ColumnType) arrow.DataType {
	switch typ {
	case ColumnNumber:
		return arrow.PrimitiveTypes.Float64
	case ColumnBoolean:
		return arrow.FixedWidthTypes.Boolean
	case ColumnTimestamp:
		return timestampType
	default:
		return arrow.BinaryTypes.String
	}
}

// Record converts the table to a single Arrow record batch. Typed columns
// with several page chunks are concatenated.
// The caller must release the returned record.
func (t *Table) Record(mem memory.Allocator) (arrow.RecordBatch, error) {
	if mem == nil {
		mem = memory.DefaultAllocator
	}
	cols := make([]arrow.Array, 0, len(t.Columns))
	defer func() {
		for _, arr := range cols {
			arr.Release()
		}
	}()

	for _, c := range t.Columns {
		arr, err := c.array(mem)
		if err != nil {
			return nil, fmt.Errorf("column %q: %w", c.Name, err)
		}
		cols = append(cols, arr)
	}
	return array.NewRecordBatch(t.Schema(), cols, int64(t.NumRows())), nil
}

// array returns the column as one Arrow array. The caller owns the result.
func (c *Column) array(mem memory.Allocator) (arrow.Array, error) {
	if c.Type == ColumnRaw {
		return buildArray(array.NewStringBuilder(mem), c.raw, func(b *array.StringBuilder, v any) error {
			s, err := cellText(v)
			if err != nil {
				return err
			}
			b.Append(s)
			return nil
		})
	}

	switch len(c.chunks) {
	case 0:
		b := array.NewBuilder(mem, arrowType(c.Type))
		defer b.Release()
		return b.NewArray(), nil
	case 1:
		c.chunks[0].Retain()
		return c.chunks[0], nil
	default:
		return array.Concatenate(c.chunks, mem)
	}
}

// NewColumn builds a typed column from Go values: float64 for ColumnNumber,
// bool for ColumnBoolean, time.Time for ColumnTimestamp and string for
// ColumnString. ColumnRaw accepts anything. Nil cells are nulls.
func NewColumn(name string, typ ColumnType, values []any, mem memory.Allocator) (*Column, error) {
	if mem == nil {
		mem = memory.DefaultAllocator
	}
	var (
		arr arrow.Array
		err error
	)
	switch typ {
	case ColumnRaw:
		return NewRawColumn(name, values), nil
	case ColumnNumber:
		arr, err = buildArray(array.NewFloat64Builder(mem), values, func(b *array.Float64Builder, v any) error {
			f, ok := v.(float64)
			if !ok {
				return fmt.Errorf("expected float64, got %T", v)
			}
			b.Append(f)
			return nil
		})
	case ColumnBoolean:
		arr, err = buildArray(array.NewBooleanBuilder(mem), values, func(b *array.BooleanBuilder, v any) error {
			bv, ok := v.(bool)
			if !ok {
				return fmt.Errorf("expected bool, got %T", v)
			}
			b.Append(bv)
			return nil
		})
	case ColumnTimestamp:
		arr, err = buildArray(array.NewTimestampBuilder(mem, timestampType), values, func(b *array.TimestampBuilder, v any) error {
			ts, ok := v.(time.Time)
			if !ok {
				return fmt.Errorf("expected time.Time, got %T", v)
			}
			return appendTime(b, ts)
		})
	case ColumnString:
		arr, err = buildArray(array.NewStringBuilder(mem), values, func(b *array.StringBuilder, v any) error {
			s, ok := v.(string)
			if !ok {
				return fmt.Errorf("expected string, got %T", v)
			}
			b.Append(s)
			return nil
		})
	default:
		return nil, fmt.Errorf("unknown column type %q", typ)
	}
	if err != nil {
		return nil, fmt.Errorf("column %q: %w", name, err)
	}
	return newArrowColumn(name, typ, arr), nil
}

// buildArray appends every cell with appendCell, nil cells as nulls, and
// releases the builder. The first failing cell aborts.
func buildArray[B array.Builder](b B, cells []any, appendCell func(B, any) error) (arrow.Array, error) {
	defer b.Release()
	b.Reserve(len(cells))
	for i, v := range cells {
		if v == nil {
			b.AppendNull()
			continue
		}
		if err := appendCell(b, v); err != nil {
			return nil, fmt.Errorf("row %d: %w", i, err)
		}
	}
	return b.NewArray(), nil
}

func appendTime(b *array.TimestampBuilder, t time.Time) error {
	ts, err := arrow.TimestampFromTime(t, timestampType.Unit)
	if err != nil {
		return err
	}
	b.Append(ts)
	return nil
}

// arrayValue returns element i of a typed column chunk as a Go value.
func arrayValue(arr arrow.Array, i int) any {
	if arr.IsNull(i) {
		return nil
	}
	switch a := arr.(type) {
	case *array.Float64:
		return a.Value(i)
	case *array.Boolean:
		return a.Value(i)
	case *array.Timestamp:
		return a.Value(i).ToTime(timestampType.Unit)
	case *array.String:
		return a.Value(i)
	default:
		return arr.GetOneForMarshal(i)
	}
}

// cellText renders a raw cell as text. Strings are kept verbatim;
// anything else is rendered as JSON.
func cellText(v any) (string, error) {
	switch v := v.(type) {
	case string:
		return v, nil
	case json.Number:
		return v.String(), nil
	}
	data, err := json.Marshal(v)
	if err != nil {
		return "", err
	}
	return string(data), nil
}
