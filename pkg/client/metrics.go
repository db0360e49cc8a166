package client

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	apiCallsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "vast_admin_mcp_api_calls_total",
			Help: "Total number of upstream API calls",
		},
		[]string{"method", "status"}, // status: success or error
	)

	apiCallDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "vast_admin_mcp_api_call_duration_seconds",
			Help:    "Duration of upstream API calls including pagination in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method"},
	)

	apiPagesTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "vast_admin_mcp_api_pages_total",
			Help: "Total number of pages fetched from paginating endpoints",
		},
	)

	apiRetriesTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "vast_admin_mcp_api_retries_total",
			Help: "Total number of retried upstream requests",
		},
	)

	accessDeniedTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "vast_admin_mcp_access_denied_total",
			Help: "Total number of calls rejected by the API whitelist",
		},
		[]string{"reason"}, // endpoint or method
	)

	clusterResolutionsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "vast_admin_mcp_cluster_resolutions_total",
			Help: "Total number of cluster identifier resolutions",
		},
		[]string{"source"}, // config, cache, query or error
	)
)
