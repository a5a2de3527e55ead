package emsquery

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"slices"

	"github.com/hugr-lab/emsquery/catalog"
	"github.com/hugr-lab/emsquery/filter"
	"github.com/hugr-lab/emsquery/query"
)

// FltQuery builds and runs a query against the flights database.
//
// Builder methods resolve field names through the client's directory and
// mutate one query.Descriptor. Nothing is sent to the query endpoints until
// one of the run methods is called. A method that fails leaves the
// descriptor unchanged.
type FltQuery struct {
	client  *Client
	desc    *query.Descriptor
	columns []catalog.Field
}

// Reset discards the descriptor and the selected columns.
func (q *FltQuery) Reset() {
	q.desc = query.New()
	q.columns = nil
}

// Select appends every field matching the keywords, without aggregation.
func (q *FltQuery) Select(ctx context.Context, keywords ...string) error {
	return q.SelectAggregate(ctx, query.AggregateNone, keywords...)
}

// SelectAggregate appends every field matching the keywords with the given
// aggregate. The aggregate is validated before any lookup.
func (q *FltQuery) SelectAggregate(ctx context.Context, aggregate query.Aggregate, keywords ...string) error {
	agg, err := query.ParseAggregate(string(aggregate))
	if err != nil {
		return err
	}
	fields, err := q.client.directory.SearchFields(ctx, keywords...)
	if err != nil {
		return fmt.Errorf("select: %w", err)
	}
	for _, f := range fields {
		q.desc.Select = append(q.desc.Select, query.SelectItem{FieldID: f.ID, Aggregate: agg})
		q.columns = append(q.columns, f)
	}
	return nil
}

// GroupBy appends every field matching the keywords to the group clause.
func (q *FltQuery) GroupBy(ctx context.Context, keywords ...string) error {
	fields, err := q.client.directory.SearchFields(ctx, keywords...)
	if err != nil {
		return fmt.Errorf("group by: %w", err)
	}
	for _, f := range fields {
		q.desc.GroupBy = append(q.desc.GroupBy, query.GroupItem{FieldID: f.ID})
	}
	return nil
}

// OrderBy sorts by the first field matching keyword.
func (q *FltQuery) OrderBy(ctx context.Context, keyword string, order query.Order) error {
	o, err := query.ParseOrder(string(order))
	if err != nil {
		return err
	}
	fields, err := q.client.directory.SearchFields(ctx, keyword)
	if err != nil {
		return fmt.Errorf("order by: %w", err)
	}
	if len(fields) == 0 {
		return fmt.Errorf("order by: %w: %q", catalog.ErrFieldNotFound, keyword)
	}
	q.desc.OrderBy = append(q.desc.OrderBy, query.OrderItem{
		FieldID:   fields[0].ID,
		Order:     o,
		Aggregate: query.AggregateNone,
	})
	return nil
}

// Filter translates expr and adds it to the conjunction of filters.
func (q *FltQuery) Filter(ctx context.Context, expr string) error {
	f, err := filter.Translate(ctx, expr, q.client.directory)
	if err != nil {
		return err
	}
	q.desc.AddFilter(f)
	return nil
}

// Distinct sets whether duplicate rows are removed. The default is true.
func (q *FltQuery) Distinct(distinct bool) {
	q.desc.Distinct = distinct
}

// Top limits the number of rows returned.
func (q *FltQuery) Top(n int) error {
	if err := query.ValidateTop(n); err != nil {
		return err
	}
	q.desc.Top = &n
	return nil
}

// ReadableOutput asks the service for display-formatted values.
// Display-formatted results are not cast.
func (q *FltQuery) ReadableOutput(readable bool) {
	if readable {
		q.desc.Format = query.FormatDisplay
		return
	}
	q.desc.Format = query.FormatNone
}

// Descriptor returns the live descriptor.
func (q *FltQuery) Descriptor() *query.Descriptor {
	return q.desc
}

// Columns returns the selected fields, aligned with the select clause.
func (q *FltQuery) Columns() []catalog.Field {
	return slices.Clone(q.columns)
}

// JSON returns the wire encoding of the descriptor.
func (q *FltQuery) JSON() ([]byte, error) {
	return json.Marshal(q.desc)
}

// SaveMetadata writes the client's resolved metadata to a file.
func (q *FltQuery) SaveMetadata(path string) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := q.client.SaveMetadata(f); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

// LoadMetadata seeds the client's metadata from a file written by SaveMetadata.
func (q *FltQuery) LoadMetadata(path string) error {
	f, err := os.Open(path)
	if err != nil {
		return err
	}
	defer f.Close()
	return q.client.LoadMetadata(f)
}
