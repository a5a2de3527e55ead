package emsquery

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hugr-lab/emsquery/table"
	"github.com/hugr-lab/emsquery/transport"
)

// pagedSource serves total rows through the async routes. Row i holds i.
func pagedSource(total int, failAt int) func(call transport.Call) (any, error) {
	return func(call transport.Call) (any, error) {
		switch call.Route {
		case transport.RouteOpenAsync:
			return map[string]any{
				"id":     "q-1",
				"header": []map[string]any{{"name": "Pressure Altitude", "type": "number"}},
			}, nil
		case transport.RouteReadAsync:
			first, last := call.Args[3].(int), call.Args[4].(int)
			if failAt >= 0 && first >= failAt {
				return nil, errBoom
			}
			rows := [][]any{}
			for i := first; i <= last && i < total; i++ {
				rows = append(rows, []any{i})
			}
			return map[string]any{"header": []any{}, "rows": rows}, nil
		case transport.RouteCloseAsync:
			return map[string]any{}, nil
		}
		return nil, errBoom
	}
}

func TestAsyncRunPagination(t *testing.T) {
	api := &fakeAPI{handle: pagedSource(60000, -1)}
	q := newTestClient(t, api).NewQuery()
	ctx := context.Background()
	require.NoError(t, q.Select(ctx, "pressure altitude"))

	result, err := q.Run(ctx)
	require.NoError(t, err)

	reads := api.routeCalls(transport.RouteReadAsync)
	require.Len(t, reads, 3)
	windows := [][2]int{{0, 24999}, {25000, 49999}, {50000, 74999}}
	for i, c := range reads {
		assert.Equal(t, "q-1", c.Args[2])
		assert.Equal(t, windows[i][0], c.Args[3], "page %d start", i)
		assert.Equal(t, windows[i][1], c.Args[4], "page %d end", i)
	}

	require.Equal(t, 60000, result.NumRows())
	assert.False(t, result.Truncated)
	col := result.Columns[0]
	assert.Equal(t, "Pressure Altitude", col.Name)
	assert.Equal(t, table.ColumnNumber, col.Type)
	for _, i := range []int{0, 24999, 25000, 59999} {
		assert.Equal(t, float64(i), col.Value(i))
	}

	assert.Len(t, api.routeCalls(transport.RouteCloseAsync), 1)
	assert.Empty(t, api.routeCalls(transport.RouteQuery))
}

func TestAsyncRunPartialResult(t *testing.T) {
	api := &fakeAPI{handle: pagedSource(100, 20)}
	q := newTestClient(t, api).NewQuery()
	ctx := context.Background()
	require.NoError(t, q.Select(ctx, "pressure altitude"))

	result, err := q.AsyncRun(ctx, 10)
	require.NoError(t, err)
	assert.True(t, result.Truncated)
	assert.Equal(t, 20, result.NumRows())
	assert.Len(t, api.routeCalls(transport.RouteReadAsync), 3)
	assert.Len(t, api.routeCalls(transport.RouteCloseAsync), 1)
}

func TestAsyncRunFirstPageFails(t *testing.T) {
	api := &fakeAPI{handle: pagedSource(100, 0)}
	q := newTestClient(t, api).NewQuery()

	result, err := q.AsyncRun(context.Background(), 10)
	require.NoError(t, err)
	assert.True(t, result.Truncated)
	assert.Equal(t, 0, result.NumRows())
	assert.Equal(t, []string{"Pressure Altitude"}, result.Names())
}

func TestAsyncRunOpenWithoutHeader(t *testing.T) {
	api := &fakeAPI{handle: func(call transport.Call) (any, error) {
		switch call.Route {
		case transport.RouteOpenAsync:
			return map[string]any{"id": "q-1"}, nil
		case transport.RouteReadAsync:
			return map[string]any{
				"header": []map[string]any{{"name": "Pressure Altitude"}},
				"rows":   [][]any{{100}, {200}},
			}, nil
		}
		return map[string]any{}, nil
	}}
	q := newTestClient(t, api).NewQuery()
	ctx := context.Background()
	require.NoError(t, q.Select(ctx, "pressure altitude"))

	result, err := q.AsyncRun(ctx, 10)
	require.NoError(t, err)
	assert.False(t, result.Truncated)
	assert.Equal(t, []string{"Pressure Altitude"}, result.Names())
	assert.Equal(t, []any{100.0, 200.0}, result.Columns[0].Values())
}

func TestAsyncRunPagePanicKeepsRows(t *testing.T) {
	source := pagedSource(100, -1)
	api := &fakeAPI{handle: func(call transport.Call) (any, error) {
		if call.Route == transport.RouteReadAsync && call.Args[3].(int) >= 10 {
			panic("corrupt page")
		}
		return source(call)
	}}
	q := newTestClient(t, api).NewQuery()
	ctx := context.Background()
	require.NoError(t, q.Select(ctx, "pressure altitude"))

	result, err := q.AsyncRun(ctx, 10)
	require.NoError(t, err)
	assert.True(t, result.Truncated)
	assert.Equal(t, 10, result.NumRows())
	assert.Len(t, api.routeCalls(transport.RouteCloseAsync), 1)
}

func TestAsyncRunClosePanicIgnored(t *testing.T) {
	source := pagedSource(5, -1)
	api := &fakeAPI{handle: func(call transport.Call) (any, error) {
		if call.Route == transport.RouteCloseAsync {
			panic("close failed")
		}
		return source(call)
	}}
	q := newTestClient(t, api).NewQuery()

	result, err := q.AsyncRun(context.Background(), 10)
	require.NoError(t, err)
	assert.False(t, result.Truncated)
	assert.Equal(t, 5, result.NumRows())
}

func TestAsyncRunMissingQueryID(t *testing.T) {
	api := &fakeAPI{handle: func(call transport.Call) (any, error) {
		return map[string]any{"header": []any{}}, nil
	}}
	q := newTestClient(t, api).NewQuery()

	_, err := q.AsyncRun(context.Background(), 10)
	require.ErrorIs(t, err, ErrMissingQueryID)
	assert.Empty(t, api.routeCalls(transport.RouteReadAsync))
}

func TestAsyncRunOpenFails(t *testing.T) {
	api := &fakeAPI{handle: func(call transport.Call) (any, error) { return nil, errBoom }}
	q := newTestClient(t, api).NewQuery()

	_, err := q.AsyncRun(context.Background(), 10)
	require.ErrorIs(t, err, errBoom)
}

func TestRunChoosesSimpleQuery(t *testing.T) {
	api := &fakeAPI{handle: func(call transport.Call) (any, error) {
		require.Equal(t, transport.RouteQuery, call.Route)
		return map[string]any{
			"header": []map[string]any{{"name": "Takeoff Airport"}},
			"rows":   [][]any{{1}, {2}},
		}, nil
	}}
	q := newTestClient(t, api).NewQuery()
	ctx := context.Background()
	require.NoError(t, q.Select(ctx, "takeoff airport"))
	require.NoError(t, q.Top(SimpleQueryRowLimit))

	result, err := q.Run(ctx)
	require.NoError(t, err)
	assert.Equal(t, []any{"KSEA", "KPDX"}, result.Columns[0].Values())

	calls := api.routeCalls(transport.RouteQuery)
	require.Len(t, calls, 1)
	assert.Equal(t, []any{"1", DefaultDatabaseID}, calls[0].Args)
	assert.Same(t, q.Descriptor(), calls[0].Body)
}

func TestRunLargeTopIsPaged(t *testing.T) {
	api := &fakeAPI{handle: pagedSource(5, -1)}
	q := newTestClient(t, api).NewQuery()
	require.NoError(t, q.Top(SimpleQueryRowLimit+1))

	_, err := q.Run(context.Background())
	require.NoError(t, err)
	assert.Len(t, api.routeCalls(transport.RouteOpenAsync), 1)
	assert.Empty(t, api.routeCalls(transport.RouteQuery))
}

func TestSimpleRunRaw(t *testing.T) {
	api := &fakeAPI{handle: func(call transport.Call) (any, error) {
		return map[string]any{"header": []map[string]any{{"name": "A"}}, "rows": [][]any{{7}}}, nil
	}}
	q := newTestClient(t, api).NewQuery()

	p, err := q.SimpleRunRaw(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []string{"A"}, p.Names())
	assert.Len(t, p.Rows, 1)
}
