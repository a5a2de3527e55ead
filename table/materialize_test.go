package table

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/apache/arrow-go/v18/arrow/array"
	"github.com/apache/arrow-go/v18/arrow/memory"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hugr-lab/emsquery/catalog"
	"github.com/hugr-lab/emsquery/query"
)

// scriptedLister returns one table per call; the last is repeated.
type scriptedLister struct {
	tables [][]catalog.ValueEntry
	calls  int
}

func (l *scriptedLister) ListAllValues(ctx context.Context, fieldID string) ([]catalog.ValueEntry, error) {
	i := min(l.calls, len(l.tables)-1)
	l.calls++
	return l.tables[i], nil
}

var (
	fieldAltitude = catalog.Field{ID: "f-alt", Type: catalog.TypeNumber, Name: "Pressure Altitude"}
	fieldValid    = catalog.Field{ID: "f-valid", Type: catalog.TypeBoolean, Name: "Takeoff Valid"}
	fieldDate     = catalog.Field{ID: "f-date", Type: catalog.TypeDateTime, Name: "Flight Date"}
	fieldAirport  = catalog.Field{ID: "f-apt", Type: catalog.TypeDiscrete, Name: "Takeoff Airport"}
	fieldTail     = catalog.Field{ID: "f-tail", Type: catalog.TypeString, Name: "Tail Number"}
)

func payload(t *testing.T, raw string) *Payload {
	t.Helper()
	p, err := DecodePayload([]byte(raw))
	require.NoError(t, err)
	return p
}

func TestMaterializeTypes(t *testing.T) {
	lister := &scriptedLister{tables: [][]catalog.ValueEntry{{{Key: 1, Value: "KSEA"}, {Key: 2, Value: "KPDX"}}}}
	m := NewMaterializer(catalog.NewCodeCache(lister), nil, nil)

	p := payload(t, `{
		"header": [{"name": "Altitude"}, {"name": "Valid"}, {"name": "Date"}, {"name": "Airport"}, {"name": "Tail"}],
		"rows": [
			[1200.5, true, "2016-01-02T03:04:05", 1, "N100"],
			[900, false, "2016-01-03T00:00:00Z", 2, 42],
			[null, null, null, null, null]
		]
	}`)
	cols := []catalog.Field{fieldAltitude, fieldValid, fieldDate, fieldAirport, fieldTail}

	tbl, err := m.Materialize(context.Background(), p, cols, query.FormatNone)
	require.NoError(t, err)
	require.Equal(t, 3, tbl.NumRows())
	assert.Equal(t, []string{"Altitude", "Valid", "Date", "Airport", "Tail"}, tbl.Names())

	assert.Equal(t, ColumnNumber, tbl.Columns[0].Type)
	assert.Equal(t, []any{1200.5, 900.0, nil}, tbl.Columns[0].Values())

	assert.Equal(t, ColumnBoolean, tbl.Columns[1].Type)
	assert.Equal(t, []any{true, false, nil}, tbl.Columns[1].Values())

	assert.Equal(t, ColumnTimestamp, tbl.Columns[2].Type)
	ts := tbl.Columns[2].Value(0).(time.Time)
	assert.True(t, ts.Equal(time.Date(2016, 1, 2, 3, 4, 5, 0, time.UTC)))
	assert.Equal(t, time.UTC, ts.Location())

	assert.Equal(t, ColumnString, tbl.Columns[3].Type)
	assert.Equal(t, []any{"KSEA", "KPDX", nil}, tbl.Columns[3].Values())

	assert.Equal(t, ColumnString, tbl.Columns[4].Type)
	assert.Equal(t, []any{"N100", "42", nil}, tbl.Columns[4].Values())
}

func TestMaterializeEmptyRows(t *testing.T) {
	m := NewMaterializer(nil, nil, nil)
	p := payload(t, `{"header": [{"name": "A"}, {"name": "B"}], "rows": []}`)

	tbl, err := m.Materialize(context.Background(), p, []catalog.Field{fieldAltitude, fieldValid}, query.FormatNone)
	require.NoError(t, err)
	assert.Equal(t, []string{"A", "B"}, tbl.Names())
	assert.Equal(t, 0, tbl.NumRows())
}

func TestMaterializeDisplayFormat(t *testing.T) {
	m := NewMaterializer(nil, nil, nil)
	p := payload(t, `{"header": [{"name": "Altitude"}], "rows": [["1,200 ft"]]}`)

	tbl, err := m.Materialize(context.Background(), p, []catalog.Field{fieldAltitude}, query.FormatDisplay)
	require.NoError(t, err)
	assert.Equal(t, ColumnRaw, tbl.Columns[0].Type)
	assert.Equal(t, []any{"1,200 ft"}, tbl.Columns[0].Values())
}

func TestMaterializeColumnFailureLeavesRaw(t *testing.T) {
	m := NewMaterializer(nil, nil, nil)
	p := payload(t, `{"header": [{"name": "Altitude"}, {"name": "Valid"}], "rows": [["high", true]]}`)

	tbl, err := m.Materialize(context.Background(), p, []catalog.Field{fieldAltitude, fieldValid}, query.FormatNone)
	require.NoError(t, err)
	assert.Equal(t, ColumnRaw, tbl.Columns[0].Type)
	assert.Equal(t, []any{"high"}, tbl.Columns[0].Values())
	assert.Equal(t, ColumnBoolean, tbl.Columns[1].Type)
}

func TestMaterializeExtraHeaderColumnsStayRaw(t *testing.T) {
	m := NewMaterializer(nil, nil, nil)
	p := payload(t, `{"header": [{"name": "Altitude"}, {"name": "Count"}], "rows": [[1, 2]]}`)

	tbl, err := m.Materialize(context.Background(), p, []catalog.Field{fieldAltitude}, query.FormatNone)
	require.NoError(t, err)
	assert.Equal(t, ColumnNumber, tbl.Columns[0].Type)
	assert.Equal(t, ColumnRaw, tbl.Columns[1].Type)
	assert.Equal(t, json.Number("2"), tbl.Columns[1].Value(0))
}

func TestMaterializeRowWidthMismatch(t *testing.T) {
	m := NewMaterializer(nil, nil, nil)
	p := payload(t, `{"header": [{"name": "A"}, {"name": "B"}], "rows": [[1]]}`)

	_, err := m.Materialize(context.Background(), p, nil, query.FormatNone)
	require.ErrorIs(t, err, ErrMaterialization)
}

func TestMaterializeStaleCodeCache(t *testing.T) {
	lister := &scriptedLister{tables: [][]catalog.ValueEntry{
		{{Key: 1, Value: "KSEA"}},
		{{Key: 1, Value: "KSEA"}, {Key: 2, Value: "KPDX"}},
	}}
	codes := catalog.NewCodeCache(lister)
	_, err := codes.Lookup(context.Background(), fieldAirport.ID)
	require.NoError(t, err)
	require.Equal(t, 1, lister.calls)

	m := NewMaterializer(codes, nil, nil)
	p := payload(t, `{"header": [{"name": "Airport"}], "rows": [[1], [2], [2]]}`)

	tbl, err := m.Materialize(context.Background(), p, []catalog.Field{fieldAirport}, query.FormatNone)
	require.NoError(t, err)
	assert.Equal(t, 2, lister.calls, "expected exactly one refetch")
	assert.Equal(t, ColumnString, tbl.Columns[0].Type)
	assert.Equal(t, []any{"KSEA", "KPDX", "KPDX"}, tbl.Columns[0].Values())
}

func TestMaterializeUnknownCodeRefetchesOnce(t *testing.T) {
	lister := &scriptedLister{tables: [][]catalog.ValueEntry{{{Key: 1, Value: "KSEA"}}}}
	m := NewMaterializer(catalog.NewCodeCache(lister), nil, nil)

	// the same field selected twice must not trigger a second refetch
	p := payload(t, `{"header": [{"name": "Airport"}, {"name": "Airport 2"}], "rows": [[1, 9], [8, 1]]}`)
	tbl, err := m.Materialize(context.Background(), p, []catalog.Field{fieldAirport, fieldAirport}, query.FormatNone)
	require.NoError(t, err)

	assert.Equal(t, 2, lister.calls, "initial fetch plus a single refetch")
	assert.Equal(t, ColumnRaw, tbl.Columns[0].Type)
	assert.Equal(t, ColumnRaw, tbl.Columns[1].Type)
	assert.Equal(t, json.Number("9"), tbl.Columns[1].Value(0))

	// a later call may refresh again
	_, err = m.Materialize(context.Background(), p, []catalog.Field{fieldAirport}, query.FormatNone)
	require.NoError(t, err)
	assert.Equal(t, 3, lister.calls)
}

func TestMaterializeBuildsArrowArrays(t *testing.T) {
	mem := memory.NewCheckedAllocator(memory.NewGoAllocator())
	defer mem.AssertSize(t, 0)

	lister := &scriptedLister{tables: [][]catalog.ValueEntry{{{Key: 1, Value: "KSEA"}}}}
	m := NewMaterializer(catalog.NewCodeCache(lister), mem, nil)
	p := payload(t, `{
		"header": [{"name": "Altitude"}, {"name": "Airport"}, {"name": "Valid"}],
		"rows": [[1200, 1, true], [null, 1, "maybe"]]
	}`)

	tbl, err := m.Materialize(context.Background(), p, []catalog.Field{fieldAltitude, fieldAirport, fieldValid}, query.FormatNone)
	require.NoError(t, err)
	defer tbl.Release()

	alt := tbl.Columns[0].Chunks()
	require.Len(t, alt, 1)
	nums, ok := alt[0].(*array.Float64)
	require.True(t, ok, "expected a float64 array, got %T", alt[0])
	assert.Equal(t, 1200.0, nums.Value(0))
	assert.True(t, nums.IsNull(1))

	apt := tbl.Columns[1].Chunks()
	require.Len(t, apt, 1)
	assert.Equal(t, "KSEA", apt[0].(*array.String).Value(1))

	// the failed boolean cast must not leak its partial builder
	assert.Equal(t, ColumnRaw, tbl.Columns[2].Type)
	assert.Empty(t, tbl.Columns[2].Chunks())
	assert.Equal(t, []any{true, "maybe"}, tbl.Columns[2].Values())
}
