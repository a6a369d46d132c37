package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	RefreshesTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "parkpulse_refreshes_total",
		Help: "Total number of successfully published snapshots",
	})
	RefreshFailuresTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "parkpulse_refresh_failures_total",
		Help: "Total number of rejected refresh attempts",
	})
	RefreshDurationMs = prometheus.NewHistogram(prometheus.HistogramOpts{
		Name:    "parkpulse_refresh_duration_ms",
		Help:    "Snapshot build and publish duration in milliseconds",
		Buckets: []float64{1, 5, 10, 20, 50, 100, 200, 500, 1000, 5000},
	})
	DroppedRecordsTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "parkpulse_dropped_records_total",
		Help: "Total feed records dropped during ingest and index build",
	})
	PublishedBays = prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "parkpulse_published_bays",
		Help: "Number of bays in the currently published snapshot",
	})
	NearbyQueriesTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "parkpulse_nearby_queries_total",
		Help: "Total number of nearby searches served",
	})
	NearbyDurationMs = prometheus.NewHistogram(prometheus.HistogramOpts{
		Name:    "parkpulse_nearby_duration_ms",
		Help:    "Nearby search duration in milliseconds",
		Buckets: []float64{1, 5, 10, 20, 50, 100, 200, 500},
	})
	NearbyTruncatedTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "parkpulse_nearby_truncated_total",
		Help: "Total nearby searches whose result was capped",
	})
)

func init() {
	prometheus.MustRegister(RefreshesTotal)
	prometheus.MustRegister(RefreshFailuresTotal)
	prometheus.MustRegister(RefreshDurationMs)
	prometheus.MustRegister(DroppedRecordsTotal)
	prometheus.MustRegister(PublishedBays)
	prometheus.MustRegister(NearbyQueriesTotal)
	prometheus.MustRegister(NearbyDurationMs)
	prometheus.MustRegister(NearbyTruncatedTotal)
}

// Handler exposes the registered metrics for scraping.
func Handler() http.Handler { return promhttp.Handler() }
