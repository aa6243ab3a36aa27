package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	archiveRequestsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "bitcoinwatch",
		Subsystem: "clickhouse_archive",
		Name:      "operations_total",
		Help:      "Count of archive repository operations.",
	}, []string{"operation", "status"})
	archiveRequestDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: "bitcoinwatch",
		Subsystem: "clickhouse_archive",
		Name:      "operation_duration_seconds",
		Help:      "Duration of archive repository operations.",
		Buckets:   []float64{.005, .01, .025, .05, .1, .25, .5, 1, 2.5, 5, 10, 15, 20, 30},
	}, []string{"operation", "status"})
)

// Archive tracks metrics for the ClickHouse journal.
type Archive struct{}

// NewArchive constructs an Archive metrics collector.
func NewArchive() *Archive {
	return &Archive{}
}

// Observe records duration and status of an archive operation.
func (m Archive) Observe(operation string, err error, started time.Time) {
	status := "success"
	if err != nil {
		status = "error"
	}

	archiveRequestsTotal.WithLabelValues(operation, status).Inc()
	archiveRequestDuration.WithLabelValues(operation, status).Observe(time.Since(started).Seconds())
}
