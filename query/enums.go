package query

import "fmt"

// Aggregate is the aggregation applied to a selected field.
type Aggregate string

const (
	AggregateNone  Aggregate = "none"
	AggregateAvg   Aggregate = "avg"
	AggregateCount Aggregate = "count"
	AggregateMax   Aggregate = "max"
	AggregateMin   Aggregate = "min"
	AggregateStdev Aggregate = "stdev"
	AggregateSum   Aggregate = "sum"
	AggregateVar   Aggregate = "var"
)

var aggregates = map[Aggregate]bool{
	AggregateNone:  true,
	AggregateAvg:   true,
	AggregateCount: true,
	AggregateMax:   true,
	AggregateMin:   true,
	AggregateStdev: true,
	AggregateSum:   true,
	AggregateVar:   true,
}

// ParseAggregate validates an aggregate keyword.
func ParseAggregate(s string) (Aggregate, error) {
	a := Aggregate(s)
	if !aggregates[a] {
		return "", &ConfigurationError{
			Setting: "aggregate",
			Value:   s,
			Allowed: "none, avg, count, max, min, stdev, sum, var",
		}
	}
	return a, nil
}

// Order is a sort direction.
type Order string

const (
	OrderAsc  Order = "asc"
	OrderDesc Order = "desc"
)

// ParseOrder validates a sort direction keyword.
func ParseOrder(s string) (Order, error) {
	switch o := Order(s); o {
	case OrderAsc, OrderDesc:
		return o, nil
	default:
		return "", &ConfigurationError{Setting: "order", Value: s, Allowed: "asc, desc"}
	}
}

// Format selects how the service renders cell values.
type Format string

const (
	// FormatNone returns raw values: numbers, codes for discrete fields and
	// ISO timestamps.
	FormatNone Format = "none"

	// FormatDisplay returns the service's human-readable rendering.
	FormatDisplay Format = "display"
)

// ParseFormat validates a format keyword.
func ParseFormat(s string) (Format, error) {
	switch f := Format(s); f {
	case FormatNone, FormatDisplay:
		return f, nil
	default:
		return "", &ConfigurationError{Setting: "format", Value: s, Allowed: "none, display"}
	}
}

func (a Aggregate) String() string { return string(a) }
func (o Order) String() string     { return string(o) }

// ValidateTop checks a row limit.
func ValidateTop(n int) error {
	if n <= 0 {
		return &ConfigurationError{Setting: "top", Value: fmt.Sprint(n), Allowed: "a positive integer"}
	}
	return nil
}
