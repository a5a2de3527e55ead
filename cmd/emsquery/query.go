package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/hugr-lab/emsquery/query"
)

type queryOptions struct {
	selects   []string
	aggregate string
	filters   []string
	groupBy   []string
	orderBy   []string
	top       int
	format    string
	all       bool
	output    string
	out       string
	showJSON  bool
}

func newQueryCmd() *cobra.Command {
	var opts queryOptions

	cmd := &cobra.Command{
		Use:   "query",
		Short: "Run a flight query",
		Example: `  emsquery query --select "flight date (exact)" --select "takeoff airport iata code" \
    --filter "'takeoff airport iata code' == 'KSEA'" --top 100`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runQuery(cmd, opts)
		},
	}

	f := cmd.Flags()
	f.StringArrayVarP(&opts.selects, "select", "s", nil, "field keyword to select (repeatable)")
	f.StringVar(&opts.aggregate, "aggregate", string(query.AggregateNone), "aggregate applied to selected fields")
	f.StringArrayVarP(&opts.filters, "filter", "f", nil, "filter expression (repeatable, combined with and)")
	f.StringArrayVar(&opts.groupBy, "group-by", nil, "field keyword to group by (repeatable)")
	f.StringArrayVar(&opts.orderBy, "order-by", nil, "field keyword to sort by, optionally suffixed with :asc or :desc (repeatable)")
	f.IntVar(&opts.top, "top", 0, "maximum number of rows")
	f.StringVar(&opts.format, "format", string(query.FormatNone), "value format: none, display")
	f.BoolVar(&opts.all, "all", false, "keep duplicate rows")
	f.StringVarP(&opts.output, "output", "o", "table", "output format: table, csv, arrow")
	f.StringVar(&opts.out, "out", "", "output file (default stdout)")
	f.BoolVar(&opts.showJSON, "json", false, "print the query descriptor instead of running it")
	_ = cmd.MarkFlagRequired("select")

	return cmd
}

func runQuery(cmd *cobra.Command, opts queryOptions) error {
	ctx := cmd.Context()
	format, err := query.ParseFormat(opts.format)
	if err != nil {
		return err
	}
	client, err := newClient()
	if err != nil {
		return err
	}

	q := client.NewQuery()
	if err := q.SelectAggregate(ctx, query.Aggregate(opts.aggregate), opts.selects...); err != nil {
		return err
	}
	for _, expr := range opts.filters {
		if err := q.Filter(ctx, expr); err != nil {
			return err
		}
	}
	if len(opts.groupBy) > 0 {
		if err := q.GroupBy(ctx, opts.groupBy...); err != nil {
			return err
		}
	}
	for _, s := range opts.orderBy {
		field, order := parseOrder(s)
		if err := q.OrderBy(ctx, field, order); err != nil {
			return err
		}
	}
	if opts.top > 0 {
		if err := q.Top(opts.top); err != nil {
			return err
		}
	}
	q.Distinct(!opts.all)
	q.ReadableOutput(format == query.FormatDisplay)

	if opts.showJSON {
		data, err := q.JSON()
		if err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), string(data))
		return saveMetadata(client)
	}

	result, err := q.Run(ctx)
	if err != nil {
		return err
	}
	defer result.Release()
	if result.Truncated {
		fmt.Fprintf(cmd.ErrOrStderr(), "warning: query stopped early, %d rows received\n", result.NumRows())
	}

	w := cmd.OutOrStdout()
	if opts.out != "" {
		file, err := os.Create(opts.out)
		if err != nil {
			return err
		}
		defer file.Close()
		w = file
	}
	if err := writeTable(w, opts.output, result, client.Allocator()); err != nil {
		return err
	}
	return saveMetadata(client)
}
