package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	dispatchRoundsTotal = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "bitcoinwatch",
		Subsystem: "dispatcher",
		Name:      "rounds_total",
		Help:      "Count of dispatch rounds.",
	})
	dispatchRoundDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Namespace: "bitcoinwatch",
		Subsystem: "dispatcher",
		Name:      "round_duration_seconds",
		Help:      "Duration of a full dispatch round.",
		Buckets:   prometheus.DefBuckets,
	})
	dispatchRoundConnections = promauto.NewHistogram(prometheus.HistogramOpts{
		Namespace: "bitcoinwatch",
		Subsystem: "dispatcher",
		Name:      "round_connections",
		Help:      "Connections visited per dispatch round.",
		Buckets:   prometheus.ExponentialBuckets(1, 2, 10),
	})

	dispatchPushesTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "bitcoinwatch",
		Subsystem: "dispatcher",
		Name:      "pushes_total",
		Help:      "Count of push deliveries.",
	}, []string{"status"})
	dispatchPushItems = promauto.NewHistogram(prometheus.HistogramOpts{
		Namespace: "bitcoinwatch",
		Subsystem: "dispatcher",
		Name:      "push_items",
		Help:      "Changed items per push message.",
		Buckets:   prometheus.ExponentialBuckets(1, 2, 10),
	})

	dispatchDroppedTotal = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "bitcoinwatch",
		Subsystem: "dispatcher",
		Name:      "dropped_connections_total",
		Help:      "Count of connections dropped after a failed delivery.",
	})
)

// Dispatcher tracks metrics for push notification dispatch.
type Dispatcher struct{}

// NewDispatcher constructs a Dispatcher metrics collector.
func NewDispatcher() *Dispatcher {
	return &Dispatcher{}
}

// ObserveRound records one dispatch round.
func (m Dispatcher) ObserveRound(connections int, started time.Time) {
	dispatchRoundsTotal.Inc()
	dispatchRoundDuration.Observe(time.Since(started).Seconds())
	dispatchRoundConnections.Observe(float64(connections))
}

// ObservePush records one push delivery.
func (m Dispatcher) ObservePush(err error, items int) {
	status := "success"
	if err != nil {
		status = "error"
	}
	dispatchPushesTotal.WithLabelValues(status).Inc()
	dispatchPushItems.Observe(float64(items))
}

// ObserveDroppedConnection records a connection dropped by dispatch.
func (m Dispatcher) ObserveDroppedConnection() {
	dispatchDroppedTotal.Inc()
}
