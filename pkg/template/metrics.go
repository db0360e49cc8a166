package template

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	templateLoadDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "vast_admin_mcp_template_load_duration_seconds",
			Help:    "Duration of template document loading and validation in seconds",
			Buckets: prometheus.DefBuckets,
		},
	)

	templateLoadTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "vast_admin_mcp_template_load_total",
			Help: "Total number of template loads",
		},
		[]string{"status"}, // success or error
	)
)
