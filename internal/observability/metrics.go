package observability

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics groups all Prometheus instruments used by the service.
type Metrics struct {
	GrantsMinted   *prometheus.CounterVec
	UpstreamErrors *prometheus.CounterVec
	GrantsSwept    prometheus.Counter
	MintLatency    prometheus.Histogram
}

func NewMetrics(namespace string) *Metrics {
	return &Metrics{
		GrantsMinted: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "grants_minted_total",
			Help:      "Realtime session grants minted, by model.",
		}, []string{"model"}),
		UpstreamErrors: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "upstream_errors_total",
			Help:      "Session-creation failures, by kind (transport or decode).",
		}, []string{"kind"}),
		GrantsSwept: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "grants_swept_total",
			Help:      "Expired grants flipped by the janitor.",
		}),
		MintLatency: promauto.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "mint_latency_ms",
			Help:      "Latency of the upstream session-creation call in milliseconds.",
			Buckets:   []float64{50, 100, 200, 400, 700, 1000, 2000, 5000},
		}),
	}
}

func (m *Metrics) ObserveMintLatency(d time.Duration) {
	m.MintLatency.Observe(float64(d.Milliseconds()))
}

func MetricsHandler() http.Handler {
	return promhttp.Handler()
}
