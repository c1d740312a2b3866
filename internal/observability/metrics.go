// Package observability groups the Prometheus instruments for the service.
package observability

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics groups all Prometheus instruments used by the responder.
type Metrics struct {
	Turns            *prometheus.CounterVec
	EvalFallthroughs *prometheus.CounterVec
	StoreErrors      *prometheus.CounterVec
	WSMessages       *prometheus.CounterVec
	ActiveWSClients  prometheus.Gauge
	TurnLatency      prometheus.Histogram
}

func NewMetrics(namespace string) *Metrics {
	return &Metrics{
		Turns: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "turns_total",
			Help:      "Answered turns by resolved intent.",
		}, []string{"intent"}),
		EvalFallthroughs: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "eval_fallthroughs_total",
			Help:      "Arithmetic rule matches that failed evaluation and fell through.",
		}, []string{"stage"}),
		StoreErrors: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "store_errors_total",
			Help:      "Conversation store failures by operation.",
		}, []string{"op"}),
		WSMessages: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "ws_messages_total",
			Help:      "WebSocket messages by direction and type.",
		}, []string{"direction", "type"}),
		ActiveWSClients: promauto.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "active_ws_clients",
			Help:      "Number of connected websocket chat clients.",
		}),
		TurnLatency: promauto.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "turn_latency_ms",
			Help:      "Latency of response generation in milliseconds.",
			Buckets:   []float64{0.1, 0.25, 0.5, 1, 2.5, 5, 10, 25, 50},
		}),
	}
}

func (m *Metrics) ObserveTurnLatency(d time.Duration) {
	m.TurnLatency.Observe(float64(d.Microseconds()) / 1000.0)
}

func MetricsHandler() http.Handler {
	return promhttp.Handler()
}
