package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	httpRequestsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "bitcoinwatch",
		Subsystem: "http",
		Name:      "requests_total",
		Help:      "Count of API requests.",
	}, []string{"operation", "status"})
	httpRequestDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: "bitcoinwatch",
		Subsystem: "http",
		Name:      "request_duration_seconds",
		Help:      "Duration of API requests.",
		Buckets:   prometheus.DefBuckets,
	}, []string{"operation", "status"})
	websocketClients = promauto.NewGauge(prometheus.GaugeOpts{
		Namespace: "bitcoinwatch",
		Subsystem: "http",
		Name:      "websocket_clients",
		Help:      "Number of connected websocket clients.",
	})
)

// HTTP tracks metrics for the API server.
type HTTP struct{}

// NewHTTP constructs an HTTP metrics collector.
func NewHTTP() *HTTP {
	return &HTTP{}
}

// Observe records one API request.
func (m HTTP) Observe(operation string, err error, started time.Time) {
	status := "success"
	if err != nil {
		status = "error"
	}
	httpRequestsTotal.WithLabelValues(operation, status).Inc()
	httpRequestDuration.WithLabelValues(operation, status).Observe(time.Since(started).Seconds())
}

// SetWebsocketClients records the current websocket client count.
func (m HTTP) SetWebsocketClients(count int) {
	websocketClients.Set(float64(count))
}
