package table

import (
	"context"
	"fmt"
	"log/slog"
	"sort"

	"github.com/apache/arrow-go/v18/arrow"
	"github.com/apache/arrow-go/v18/arrow/array"
	"github.com/apache/arrow-go/v18/arrow/memory"

	"github.com/hugr-lab/emsquery/catalog"
	"github.com/hugr-lab/emsquery/internal/metrics"
	"github.com/hugr-lab/emsquery/internal/recovery"
	"github.com/hugr-lab/emsquery/query"
)

// Materializer casts row payloads into typed tables backed by Arrow arrays.
//
// Discrete columns are decoded through the code cache. When a column holds a
// code missing from the cached table, the table is refetched in full once per
// field and call; codes still missing after that leave the column raw.
//
// A Materializer shares the cache's restriction: it is not safe for concurrent use.
type Materializer struct {
	codes  *catalog.CodeCache
	mem    memory.Allocator
	logger *slog.Logger
}

// NewMaterializer creates a materializer. A nil allocator uses
// memory.DefaultAllocator and a nil logger uses slog.Default().
func NewMaterializer(codes *catalog.CodeCache, mem memory.Allocator, logger *slog.Logger) *Materializer {
	if mem == nil {
		mem = memory.DefaultAllocator
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Materializer{codes: codes, mem: mem, logger: logger}
}

// Materialize builds a table from a payload.
//
// columns lists the selected fields, index-aligned with the header. With
// query.FormatDisplay, or for header columns beyond the field list, cells are
// kept raw. Per-column cast failures are logged and leave the column raw; the
// only error returned is a row whose width differs from the header.
func (m *Materializer) Materialize(ctx context.Context, p *Payload, columns []catalog.Field, format query.Format) (*Table, error) {
	names := p.Names()
	for r, row := range p.Rows {
		if len(row) != len(names) {
			return nil, fmt.Errorf("%w: row %d has %d cells, header has %d", ErrMaterialization, r, len(row), len(names))
		}
	}

	t := &Table{Columns: make([]*Column, len(names))}
	for i, name := range names {
		var cells []any
		if len(p.Rows) > 0 {
			cells = make([]any, len(p.Rows))
			for r, row := range p.Rows {
				cells[r] = row[i]
			}
		}
		t.Columns[i] = NewRawColumn(name, cells)
	}
	if len(p.Rows) == 0 || format == query.FormatDisplay {
		return t, nil
	}

	refreshed := make(map[string]bool)
	n := min(len(names), len(columns))
	for i := 0; i < n; i++ {
		col, field := t.Columns[i], columns[i]
		converted, err := recovery.RecoverToValue(m.logger, "materialize "+col.Name, func() (*Column, error) {
			return m.castColumn(ctx, col, field, refreshed)
		})
		if err != nil {
			merr := &MaterializationError{Column: col.Name, Type: field.Type, Err: err}
			m.logger.Warn("Column left unconverted", "column", col.Name, "type", field.Type, "error", merr)
			metrics.ColumnFailures.WithLabelValues(string(field.Type)).Inc()
			continue
		}
		t.Columns[i] = converted
	}
	return t, nil
}

// castColumn casts the raw cells of col into a new Arrow-backed column.
// Fields of an unknown type are returned unchanged.
func (m *Materializer) castColumn(ctx context.Context, col *Column, field catalog.Field, refreshed map[string]bool) (*Column, error) {
	var (
		typ ColumnType
		arr arrow.Array
		err error
	)
	switch field.Type {
	case catalog.TypeNumber:
		typ = ColumnNumber
		arr, err = castNumbers(m.mem, col.raw)
	case catalog.TypeBoolean:
		typ = ColumnBoolean
		arr, err = castBooleans(m.mem, col.raw)
	case catalog.TypeDateTime:
		typ = ColumnTimestamp
		arr, err = castTimestamps(m.mem, col.raw)
	case catalog.TypeString:
		typ = ColumnString
		arr, err = castStrings(m.mem, col.raw)
	case catalog.TypeDiscrete:
		typ = ColumnString
		arr, err = m.decodeDiscrete(ctx, col.raw, field, refreshed)
	default:
		return col, nil
	}
	if err != nil {
		return nil, err
	}
	return newArrowColumn(col.Name, typ, arr), nil
}

// decodeDiscrete replaces integer codes by their values from the code cache.
func (m *Materializer) decodeDiscrete(ctx context.Context, cells []any, field catalog.Field, refreshed map[string]bool) (arrow.Array, error) {
	if m.codes == nil {
		return nil, fmt.Errorf("no code cache for discrete field %s", field.ID)
	}

	codes := make([]int, len(cells))
	distinct := make(map[int]struct{})
	for i, v := range cells {
		if v == nil {
			continue
		}
		code, err := toCode(v)
		if err != nil {
			return nil, fmt.Errorf("row %d: %w", i, err)
		}
		codes[i] = code
		distinct[code] = struct{}{}
	}

	table, err := m.codes.Lookup(ctx, field.ID)
	if err != nil {
		return nil, err
	}
	if len(missingCodes(table, distinct)) > 0 && !refreshed[field.ID] {
		refreshed[field.ID] = true
		m.logger.Debug("Discrete code table is stale, refetching", "field", field.ID)
		if table, err = m.codes.Refresh(ctx, field.ID); err != nil {
			return nil, err
		}
	}
	if missing := missingCodes(table, distinct); len(missing) > 0 {
		return nil, fmt.Errorf("%w: codes %v in field %s", catalog.ErrValueNotFound, missing, field.ID)
	}

	b := array.NewStringBuilder(m.mem)
	defer b.Release()
	b.Reserve(len(cells))
	for i, v := range cells {
		if v == nil {
			b.AppendNull()
			continue
		}
		b.Append(table[codes[i]])
	}
	return b.NewArray(), nil
}

func missingCodes(table map[int]string, codes map[int]struct{}) []int {
	var missing []int
	for c := range codes {
		if _, ok := table[c]; !ok {
			missing = append(missing, c)
		}
	}
	sort.Ints(missing)
	return missing
}
