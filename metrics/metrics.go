// metrics/metrics.go
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	// Sync pass metrics
	SyncRunsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "cragbook_sync_runs_total",
			Help: "Total number of route sync apply passes by trigger and outcome",
		},
		[]string{"trigger", "outcome"},
	)

	SyncPreviewsTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "cragbook_sync_previews_total",
			Help: "Total number of route sync previews computed",
		},
	)

	SyncDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "cragbook_sync_duration_seconds",
			Help:    "Duration of route sync passes in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"phase"},
	)

	// Catalog mutation metrics
	RoutesAdded = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "cragbook_routes_added_total",
			Help: "Total number of routes inserted by sync",
		},
	)

	RoutesArchived = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "cragbook_routes_archived_total",
			Help: "Total number of routes archived by sync",
		},
	)

	RoutesUpdated = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "cragbook_routes_updated_total",
			Help: "Total number of routes whose mutable fields were rewritten by sync",
		},
	)

	// Feed metrics
	FeedRowsRejected = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "cragbook_feed_rows_rejected_total",
			Help: "Total number of feed rows skipped by the parser, by reason",
		},
		[]string{"reason"},
	)

	FeedFetchDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "cragbook_feed_fetch_duration_seconds",
			Help:    "Route feed fetch duration in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"source"},
	)
)

func init() {
	prometheus.MustRegister(SyncRunsTotal)
	prometheus.MustRegister(SyncPreviewsTotal)
	prometheus.MustRegister(SyncDuration)
	prometheus.MustRegister(RoutesAdded)
	prometheus.MustRegister(RoutesArchived)
	prometheus.MustRegister(RoutesUpdated)
	prometheus.MustRegister(FeedRowsRejected)
	prometheus.MustRegister(FeedFetchDuration)
}

// Handler returns the Prometheus HTTP handler
func Handler() http.Handler {
	return promhttp.Handler()
}
