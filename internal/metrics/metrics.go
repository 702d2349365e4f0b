package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics holds all Prometheus metrics for the polling pipeline.
type Metrics struct {
	CyclesTotal      prometheus.Counter
	CycleErrors      prometheus.Counter
	SignalsDetected  *prometheus.CounterVec // labels: ticker, kind
	SignalsRecorded  *prometheus.CounterVec // labels: ticker, kind
	NotifyFailures   prometheus.Counter
	FetchDuration    prometheus.Histogram
	PricesUpserted   prometheus.Counter

	registry *prometheus.Registry
}

// New registers and returns all metrics on a private registry.
func New() *Metrics {
	m := &Metrics{
		CyclesTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "crosswatch_poll_cycles_total",
			Help: "Total per-ticker poll cycles executed",
		}),
		CycleErrors: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "crosswatch_poll_cycle_errors_total",
			Help: "Total per-ticker poll cycles that failed",
		}),
		SignalsDetected: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "crosswatch_signals_detected_total",
			Help: "Total crossover signals produced by detection (including already-recorded ones)",
		}, []string{"ticker", "kind"}),
		SignalsRecorded: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "crosswatch_signals_recorded_total",
			Help: "Total new crossover signals inserted into the ledger",
		}, []string{"ticker", "kind"}),
		NotifyFailures: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "crosswatch_notification_failures_total",
			Help: "Total failed notification deliveries across all sinks",
		}),
		FetchDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "crosswatch_fetch_duration_seconds",
			Help:    "Market data fetch latency",
			Buckets: prometheus.DefBuckets,
		}),
		PricesUpserted: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "crosswatch_prices_upserted_total",
			Help: "Total price rows written to the store",
		}),
		registry: prometheus.NewRegistry(),
	}

	m.registry.MustRegister(
		m.CyclesTotal, m.CycleErrors,
		m.SignalsDetected, m.SignalsRecorded,
		m.NotifyFailures, m.FetchDuration, m.PricesUpserted,
	)
	return m
}

// Handler returns the HTTP handler serving the /metrics endpoint.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}
