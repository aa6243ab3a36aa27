package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	queryTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "bitcoinwatch",
		Subsystem: "query",
		Name:      "operations_total",
		Help:      "Count of query operations.",
	}, []string{"operation"})
	queryDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: "bitcoinwatch",
		Subsystem: "query",
		Name:      "operation_duration_seconds",
		Help:      "Duration of query operations.",
		Buckets:   prometheus.DefBuckets,
	}, []string{"operation"})
	queryItems = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: "bitcoinwatch",
		Subsystem: "query",
		Name:      "items_per_request",
		Help:      "Number of identifiers per query after filtering.",
		Buckets:   prometheus.ExponentialBuckets(1, 2, 10),
	}, []string{"operation"})
)

// Query tracks metrics for chain state lookups.
type Query struct{}

// NewQuery constructs a Query metrics collector.
func NewQuery() *Query {
	return &Query{}
}

// Observe records one query operation.
func (m Query) Observe(operation string, items int, started time.Time) {
	queryTotal.WithLabelValues(operation).Inc()
	queryDuration.WithLabelValues(operation).Observe(time.Since(started).Seconds())
	queryItems.WithLabelValues(operation).Observe(float64(items))
}
