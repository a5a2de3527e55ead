package emsquery

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cast"

	"github.com/hugr-lab/emsquery/internal/metrics"
	"github.com/hugr-lab/emsquery/internal/recovery"
	"github.com/hugr-lab/emsquery/internal/reqcontext"
	"github.com/hugr-lab/emsquery/table"
	"github.com/hugr-lab/emsquery/transport"
)

// asyncHandle is the open response of a paged query.
type asyncHandle struct {
	ID     any                  `json:"id"`
	Header []table.HeaderColumn `json:"header"`
}

// Run executes the query. A row limit of at most SimpleQueryRowLimit runs as
// a single-shot query; anything else is paged with the configured page size.
//
// The result's typed columns are Arrow arrays from the configured allocator;
// release the table when done with it.
func (q *FltQuery) Run(ctx context.Context) (*table.Table, error) {
	if n, ok := q.desc.Limit(); ok && n <= SimpleQueryRowLimit {
		return q.SimpleRun(ctx)
	}
	return q.AsyncRun(ctx, q.client.cfg.PageSize)
}

// SimpleRun executes the query in a single request and casts the result.
// The service truncates results larger than SimpleQueryRowLimit rows.
func (q *FltQuery) SimpleRun(ctx context.Context) (*table.Table, error) {
	p, err := q.SimpleRunRaw(ctx)
	if err != nil {
		return nil, err
	}
	return q.client.materializer.Materialize(ctx, p, q.columns, q.desc.Format)
}

// SimpleRunRaw executes the query in a single request and returns the
// payload as received.
func (q *FltQuery) SimpleRunRaw(ctx context.Context) (*table.Payload, error) {
	cfg := q.client.cfg
	q.client.logger.Debug("Sending query", "system_id", cfg.SystemID, "database_id", cfg.DatabaseID)

	resp, err := q.client.requester.Request(ctx, transport.Post(transport.RouteQuery, q.desc, cfg.SystemID, cfg.DatabaseID))
	if err != nil {
		return nil, fmt.Errorf("query: %w", err)
	}
	p, err := table.DecodePayload(resp.Body)
	if err != nil {
		return nil, err
	}
	q.client.logger.Debug("Query completed", "rows", len(p.Rows))
	return p, nil
}

// AsyncRun executes the query as a paged query, reading pageSize rows per
// request until a page comes back short.
//
// Pages are read strictly in order. When reading or casting a page fails the
// rows received so far are returned with Truncated set and a nil error. An
// open response without a query id aborts the run with ErrMissingQueryID.
func (q *FltQuery) AsyncRun(ctx context.Context, pageSize int) (*table.Table, error) {
	if pageSize <= 0 {
		pageSize = DefaultPageSize
	}
	cfg := q.client.cfg
	logger := q.client.logger

	resp, err := q.client.requester.Request(ctx, transport.Post(transport.RouteOpenAsync, q.desc, cfg.SystemID, cfg.DatabaseID))
	if err != nil {
		return nil, fmt.Errorf("open async query: %w", err)
	}
	var h asyncHandle
	if err := resp.Decode(&h); err != nil {
		return nil, err
	}
	id, err := cast.ToStringE(h.ID)
	if h.ID == nil || err != nil || id == "" {
		return nil, ErrMissingQueryID
	}
	logger.Info("Async query opened", "query_id", id, "page_size", pageSize)
	ctx = reqcontext.WithCorrelationID(ctx, id)

	defer q.closeAsync(ctx, id)

	result := &table.Table{}
	for _, hc := range h.Header {
		result.Columns = append(result.Columns, table.NewRawColumn(hc.Name, nil))
	}

	start := time.Now()
	for page := 0; ; page++ {
		first, last := pageSize*page, pageSize*(page+1)-1
		rows, err := q.readPage(ctx, id, h.Header, first, last, result)
		if err != nil {
			logger.Warn("Async page failed, returning rows received so far",
				"query_id", id,
				"page", page,
				"rows", result.NumRows(),
				"error", err,
			)
			metrics.AsyncPages.WithLabelValues("failed").Inc()
			result.Truncated = true
			break
		}
		metrics.AsyncPages.WithLabelValues("ok").Inc()
		logger.Debug("Async page received", "query_id", id, "page", page, "rows", result.NumRows())

		if rows < pageSize {
			break
		}
	}

	logger.Info("Async query completed",
		"query_id", id,
		"rows", result.NumRows(),
		"truncated", result.Truncated,
		"duration", time.Since(start),
	)
	return result, nil
}

// readPage fetches rows [first, last], casts them and appends them to result.
// It returns the number of rows in the page. A panic while handling the page
// is reported as an error so the rows received so far are kept.
func (q *FltQuery) readPage(ctx context.Context, id string, header []table.HeaderColumn, first, last int, result *table.Table) (rows int, err error) {
	err = recovery.RecoverToError(q.client.logger, "read async page", func() error {
		cfg := q.client.cfg
		resp, err := q.client.requester.Request(ctx, transport.Get(transport.RouteReadAsync, cfg.SystemID, cfg.DatabaseID, id, first, last))
		if err != nil {
			return err
		}
		p, err := table.DecodePayload(resp.Body)
		if err != nil {
			return err
		}
		// pages may omit or abbreviate the header; an open response without
		// one leaves the page's own header in place
		if len(header) > 0 {
			p.Header = header
		}

		t, err := q.client.materializer.Materialize(ctx, p, q.columns, q.desc.Format)
		if err != nil {
			return err
		}
		defer t.Release()
		if err := result.Append(t); err != nil {
			return err
		}
		rows = len(p.Rows)
		return nil
	})
	return rows, err
}

// closeAsync releases the server-side query. Failures are logged only.
func (q *FltQuery) closeAsync(ctx context.Context, id string) {
	logger := q.client.logger
	recovery.Recover(logger, "close async query", func() {
		cfg := q.client.cfg
		_, err := q.client.requester.Request(context.WithoutCancel(ctx), transport.Delete(transport.RouteCloseAsync, cfg.SystemID, cfg.DatabaseID, id))
		if err != nil {
			logger.Warn("Failed to close async query", "query_id", id, "error", err)
			return
		}
		logger.Debug("Async query closed", "query_id", id)
	})
}
