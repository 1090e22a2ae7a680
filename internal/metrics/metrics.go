// Package metrics provides Prometheus metrics for the project panel.
package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	projectionRebuilds = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "rtree_projection_rebuilds_total",
			Help: "Total number of visible projection rebuilds",
		},
	)

	projectionRebuildDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "rtree_projection_rebuild_seconds",
			Help:    "Time to rebuild the visible projection",
			Buckets: prometheus.ExponentialBuckets(0.0001, 4, 8),
		},
	)

	visibleEntries = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "rtree_visible_entries",
			Help: "Number of entries in the current visible projection",
		},
	)

	taskFailures = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "rtree_task_failures_total",
			Help: "Asynchronous panel operations that failed",
		},
		[]string{"op"},
	)
)

// Handler returns the Prometheus metrics HTTP handler.
func Handler() http.Handler {
	return promhttp.Handler()
}

// RecordRebuild records one projection rebuild.
func RecordRebuild(duration time.Duration, visible int) {
	projectionRebuilds.Inc()
	projectionRebuildDuration.Observe(duration.Seconds())
	visibleEntries.Set(float64(visible))
}

// RecordTaskFailure counts a failed asynchronous operation.
func RecordTaskFailure(op string) {
	taskFailures.WithLabelValues(op).Inc()
}
