package fanout

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	clustersTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "vast_admin_mcp_fanout_clusters_total",
			Help: "Total number of per-cluster runs in fan-out passes",
		},
		[]string{"status"}, // success, skipped or unresolved
	)

	runDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "vast_admin_mcp_fanout_duration_seconds",
			Help:    "Duration of a fan-out pass across clusters in seconds",
			Buckets: prometheus.DefBuckets,
		},
	)
)
