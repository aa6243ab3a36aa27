package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	ingestLatestHeightTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "bitcoinwatch",
		Subsystem: "ingest",
		Name:      "latest_height_total",
		Help:      "Count of latest-height polls against the node.",
	}, []string{"status"})
	ingestLatestHeightDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: "bitcoinwatch",
		Subsystem: "ingest",
		Name:      "latest_height_duration_seconds",
		Help:      "Duration of latest-height polls.",
		Buckets:   prometheus.DefBuckets,
	}, []string{"status"})

	ingestApplyTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "bitcoinwatch",
		Subsystem: "ingest",
		Name:      "apply_total",
		Help:      "Count of block events applied to the chain state.",
	}, []string{"status"})
	ingestApplyDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: "bitcoinwatch",
		Subsystem: "ingest",
		Name:      "apply_duration_seconds",
		Help:      "Duration of applying one block event.",
		Buckets:   prometheus.DefBuckets,
	}, []string{"status"})
	ingestChainHeight = promauto.NewGauge(prometheus.GaugeOpts{
		Namespace: "bitcoinwatch",
		Subsystem: "ingest",
		Name:      "chain_height",
		Help:      "Height of the last applied block.",
	})

	ingestReorgsTotal = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "bitcoinwatch",
		Subsystem: "ingest",
		Name:      "reorgs_total",
		Help:      "Count of resolved chain reorganizations.",
	})
	ingestReorgDepth = promauto.NewHistogram(prometheus.HistogramOpts{
		Namespace: "bitcoinwatch",
		Subsystem: "ingest",
		Name:      "reorg_depth",
		Help:      "Number of blocks rolled back per reorganization.",
		Buckets:   prometheus.ExponentialBuckets(1, 2, 8),
	})

	ingestGapsTotal = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "bitcoinwatch",
		Subsystem: "ingest",
		Name:      "gaps_total",
		Help:      "Count of detected chain discontinuities.",
	})
)

// Ingest tracks metrics for the ingestion pipeline.
type Ingest struct{}

// NewIngest constructs an Ingest metrics collector.
func NewIngest() *Ingest {
	return &Ingest{}
}

// ObserveLatestHeight records a latest-height poll outcome and duration.
func (m Ingest) ObserveLatestHeight(err error, started time.Time) {
	status := "success"
	if err != nil {
		status = "error"
	}
	ingestLatestHeightTotal.WithLabelValues(status).Inc()
	ingestLatestHeightDuration.WithLabelValues(status).Observe(time.Since(started).Seconds())
}

// ObserveApply records a block apply outcome and duration.
func (m Ingest) ObserveApply(err error, height uint64, started time.Time) {
	status := "success"
	if err != nil {
		status = "error"
	}
	ingestApplyTotal.WithLabelValues(status).Inc()
	ingestApplyDuration.WithLabelValues(status).Observe(time.Since(started).Seconds())
	if err == nil {
		ingestChainHeight.Set(float64(height))
	}
}

// ObserveReorg records a resolved reorganization and its depth.
func (m Ingest) ObserveReorg(depth int) {
	ingestReorgsTotal.Inc()
	ingestReorgDepth.Observe(float64(depth))
}

// ObserveGap records a detected chain discontinuity.
func (m Ingest) ObserveGap() {
	ingestGapsTotal.Inc()
}
