// Package metrics exposes Prometheus instrumentation for the query engine.
// Collectors register with the default registry; serving them is up to the caller.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// TransportRequests counts API calls by route and HTTP status ("error" on network failure).
	TransportRequests = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "emsquery_transport_requests_total",
			Help: "Total number of EMS API requests",
		},
		[]string{"route", "status"},
	)
	// TransportDuration is the latency of API calls.
	TransportDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "emsquery_transport_request_duration_seconds",
			Help:    "EMS API request latency in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"route"},
	)
	// TransportReconnects counts silent re-authentications.
	TransportReconnects = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "emsquery_transport_reconnects_total",
			Help: "Total number of re-authentications after a failed request",
		},
	)
	// AsyncPages counts async-query pages by outcome (ok, failed).
	AsyncPages = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "emsquery_async_pages_total",
			Help: "Total number of async query pages requested",
		},
		[]string{"outcome"},
	)
	// ColumnFailures counts columns left unconverted, by declared field type.
	ColumnFailures = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "emsquery_materialize_column_failures_total",
			Help: "Total number of result columns that could not be cast",
		},
		[]string{"type"},
	)
)
