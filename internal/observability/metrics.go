// Package observability exposes the server's Prometheus metrics.
package observability

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

var (
	syncPagesFetched = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: "geo2max",
		Subsystem: "sync",
		Name:      "pages_fetched_total",
		Help:      "Number of remote activity pages fetched across all syncs.",
	})
	syncActivitiesInserted = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: "geo2max",
		Subsystem: "sync",
		Name:      "activities_inserted_total",
		Help:      "Number of new activities written to the store.",
	})
	syncErrors = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: "geo2max",
		Subsystem: "sync",
		Name:      "errors_total",
		Help:      "Number of syncs aborted by a remote or store failure.",
	})
	lastSyncGauge = prometheus.NewGauge(prometheus.GaugeOpts{
		Namespace: "geo2max",
		Subsystem: "sync",
		Name:      "last_success_timestamp_seconds",
		Help:      "Unix timestamp of the most recent successful sync.",
	})
	queryDuration = prometheus.NewHistogram(prometheus.HistogramOpts{
		Namespace: "geo2max",
		Subsystem: "query",
		Name:      "duration_seconds",
		Help:      "Latency of activity page queries.",
		Buckets:   prometheus.DefBuckets,
	})
)

func init() {
	prometheus.MustRegister(
		syncPagesFetched,
		syncActivitiesInserted,
		syncErrors,
		lastSyncGauge,
		queryDuration,
	)
}

// RecordPageFetched counts one remote page fetch.
func RecordPageFetched() {
	syncPagesFetched.Inc()
}

// RecordActivitiesInserted counts new activities written by one sync.
func RecordActivitiesInserted(n int) {
	if n > 0 {
		syncActivitiesInserted.Add(float64(n))
	}
}

// RecordSyncError counts an aborted sync.
func RecordSyncError() {
	syncErrors.Inc()
}

// RecordSyncCompleted updates the last-success watermark.
func RecordSyncCompleted(ts time.Time) {
	if ts.IsZero() {
		return
	}
	lastSyncGauge.Set(float64(ts.Unix()))
}

// ObserveQueryDuration records one query's latency.
func ObserveQueryDuration(d time.Duration) {
	queryDuration.Observe(d.Seconds())
}
