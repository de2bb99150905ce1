package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// HTTP metrics, populated by the metrics middleware.
var (
	HTTPRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "distro_http_requests_total",
			Help: "Total HTTP requests by method, path and status",
		},
		[]string{"method", "path", "status"},
	)

	HTTPRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "distro_http_request_duration_seconds",
			Help:    "HTTP request duration in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "path"},
	)
)

// Business metrics.
var (
	SalesRecordedTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "distro_sales_recorded_total",
			Help: "Total sales recorded via billing",
		},
	)

	DayClosesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "distro_day_closes_total",
			Help: "Day close (load-out) attempts by trigger and outcome",
		},
		[]string{"trigger", "outcome"},
	)

	StockAssignmentsTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "distro_stock_assignments_total",
			Help: "Stock assignment operations",
		},
	)
)
