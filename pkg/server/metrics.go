package server

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	requestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "vast_admin_mcp_http_requests_total",
			Help: "Total number of HTTP API requests",
		},
		[]string{"method", "path", "status"},
	)

	requestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "vast_admin_mcp_http_request_duration_seconds",
			Help:    "HTTP API request duration in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "path"},
	)

	inFlight = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "vast_admin_mcp_http_requests_in_flight",
			Help: "Number of HTTP API requests being served",
		},
	)

	rateLimitRejects = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "vast_admin_mcp_http_rate_limit_rejects_total",
			Help: "Total number of requests rejected by the rate limiter",
		},
	)
)
