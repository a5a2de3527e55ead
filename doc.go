// Package emsquery queries flight data from an EMS (Event Measurement System)
// analytics service.
//
// The package turns a sequence of builder calls into a query descriptor, runs
// it either as a single request or as a paged asynchronous query, and casts
// the returned rows into a typed table:
//   - Field names are resolved through the service's field directory
//   - Conditional expressions are translated into predicate trees
//   - Discrete codes are decoded through a per-field code cache
//   - Results convert to Apache Arrow records
//
// # Quick Start
//
//	client, err := emsquery.NewClient(emsquery.ClientConfig{
//	    User:     "analyst",
//	    Password: os.Getenv("EMS_PASSWORD"),
//	    SystemID: "1",
//	})
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	q := client.NewQuery()
//	if err := q.Select(ctx, "flight date (exact)", "takeoff airport iata code"); err != nil {
//	    log.Fatal(err)
//	}
//	if err := q.Filter(ctx, "'takeoff airport iata code' in ['KSEA', 'KPDX']"); err != nil {
//	    log.Fatal(err)
//	}
//	if err := q.Top(5000); err != nil {
//	    log.Fatal(err)
//	}
//
//	result, err := q.Run(ctx)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer result.Release()
//
// # Execution
//
// Run sends a single request when the row limit is at most
// SimpleQueryRowLimit. Otherwise the query is opened as an asynchronous query
// and read in windows of ClientConfig.PageSize rows, strictly in order, until
// a short page arrives. A failing page stops the loop: the rows read so far
// are returned with Table.Truncated set.
//
// Typed result columns are Arrow arrays, one chunk per page, allocated from
// ClientConfig.Allocator. Table.Record concatenates them into one record batch.
//
// # Errors
//
// Builder methods fail before any query request:
//   - query.ErrConfiguration for an unknown aggregate, order or row limit
//   - filter.ErrTranslation for an expression that cannot be translated
//
// Requests that fail after the transport's re-authentication attempts wrap
// transport.ErrRemoteRequest. Columns that cannot be cast are kept raw and
// reported in the log.
package emsquery
