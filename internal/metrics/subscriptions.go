package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	subscriptionSweepsTotal = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "bitcoinwatch",
		Subsystem: "subscriptions",
		Name:      "sweeps_total",
		Help:      "Count of expiry sweeps over the watch registry.",
	})
	subscriptionSweepDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Namespace: "bitcoinwatch",
		Subsystem: "subscriptions",
		Name:      "sweep_duration_seconds",
		Help:      "Duration of one expiry sweep.",
		Buckets:   prometheus.DefBuckets,
	})
	subscriptionExpiredTotal = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "bitcoinwatch",
		Subsystem: "subscriptions",
		Name:      "expired_watches_total",
		Help:      "Count of watches removed by expiry sweeps.",
	})
	subscriptionWatchCount = promauto.NewGauge(prometheus.GaugeOpts{
		Namespace: "bitcoinwatch",
		Subsystem: "subscriptions",
		Name:      "active_watches",
		Help:      "Number of active watches across all connections.",
	})
)

// Subscriptions tracks metrics for the watch registry.
type Subscriptions struct{}

// NewSubscriptions constructs a Subscriptions metrics collector.
func NewSubscriptions() *Subscriptions {
	return &Subscriptions{}
}

// ObserveSweep records one expiry sweep.
func (m Subscriptions) ObserveSweep(removed int, started time.Time) {
	subscriptionSweepsTotal.Inc()
	subscriptionSweepDuration.Observe(time.Since(started).Seconds())
	subscriptionExpiredTotal.Add(float64(removed))
}

// SetWatchCount records the current number of active watches.
func (m Subscriptions) SetWatchCount(n int) {
	subscriptionWatchCount.Set(float64(n))
}
