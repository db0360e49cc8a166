package executor

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	commandsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "vast_admin_mcp_commands_total",
			Help: "Total number of list command executions per cluster",
		},
		[]string{"status"}, // success, error or not_found
	)

	stageDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "vast_admin_mcp_pipeline_stage_duration_seconds",
			Help:    "Duration of each command pipeline stage in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"stage"},
	)

	degradationsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "vast_admin_mcp_degradations_total",
			Help: "Total number of failures degraded to empty or pass-through results",
		},
		[]string{"stage"}, // fetch_raw, per_row_fetch, transform or jq
	)
)
