package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Registry holds all Prometheus metrics for the screener.
// A nil *Registry is valid and records nothing.
// ⭐ SSOT: 메트릭 정의는 여기서만
type Registry struct {
	reg *prometheus.Registry

	FetchRequests *prometheus.CounterVec
	FetchDuration *prometheus.HistogramVec
	BreakerState  *prometheus.GaugeVec

	BatchRuns     *prometheus.CounterVec
	BatchSymbols  *prometheus.CounterVec
	BatchDuration *prometheus.HistogramVec
	ResultCount   *prometheus.GaugeVec
}

// New creates a registry with every screener metric registered
func New() *Registry {
	r := &Registry{
		reg: prometheus.NewRegistry(),

		FetchRequests: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "screener_fetch_requests_total",
				Help: "Data source requests by endpoint and status",
			},
			[]string{"endpoint", "status"},
		),

		FetchDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "screener_fetch_duration_seconds",
				Help:    "Data source request latency in seconds",
				Buckets: []float64{0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30},
			},
			[]string{"endpoint"},
		),

		BreakerState: prometheus.NewGaugeVec(
			prometheus.GaugeOpts{
				Name: "screener_breaker_state",
				Help: "Circuit breaker state (0=closed, 1=half-open, 2=open)",
			},
			[]string{"name"},
		),

		BatchRuns: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "screener_batch_runs_total",
				Help: "Batch runs by screener and outcome",
			},
			[]string{"screener", "outcome"},
		),

		BatchSymbols: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "screener_batch_symbols_total",
				Help: "Symbols processed by screener and result (kept or drop reason)",
			},
			[]string{"screener", "result"},
		),

		BatchDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "screener_batch_duration_seconds",
				Help:    "Batch wall time in seconds",
				Buckets: []float64{1, 5, 15, 30, 60, 120, 300, 600, 1800},
			},
			[]string{"screener"},
		),

		ResultCount: prometheus.NewGaugeVec(
			prometheus.GaugeOpts{
				Name: "screener_results",
				Help: "Result rows of the latest run per screener",
			},
			[]string{"screener"},
		),
	}

	r.reg.MustRegister(
		r.FetchRequests,
		r.FetchDuration,
		r.BreakerState,
		r.BatchRuns,
		r.BatchSymbols,
		r.BatchDuration,
		r.ResultCount,
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	return r
}

// Gatherer exposes the underlying registry (tests, custom exporters)
func (r *Registry) Gatherer() prometheus.Gatherer {
	return r.reg
}

// Handler serves the registry in the Prometheus text format
func (r *Registry) Handler() http.Handler {
	if r == nil {
		return http.NotFoundHandler()
	}
	return promhttp.HandlerFor(r.reg, promhttp.HandlerOpts{})
}

// ObserveFetch records one data source request
func (r *Registry) ObserveFetch(endpoint string, err error, elapsed time.Duration) {
	if r == nil {
		return
	}
	status := "ok"
	if err != nil {
		status = "error"
	}
	r.FetchRequests.WithLabelValues(endpoint, status).Inc()
	r.FetchDuration.WithLabelValues(endpoint).Observe(elapsed.Seconds())
}

// SetBreakerState records a circuit breaker transition
func (r *Registry) SetBreakerState(name string, state int) {
	if r == nil {
		return
	}
	r.BreakerState.WithLabelValues(name).Set(float64(state))
}

// ObserveSymbol records a kept symbol ("kept") or a drop reason
func (r *Registry) ObserveSymbol(screener, result string) {
	if r == nil {
		return
	}
	r.BatchSymbols.WithLabelValues(screener, result).Inc()
}

// ObserveRun records a finished batch
func (r *Registry) ObserveRun(screener, outcome string, results int, elapsed time.Duration) {
	if r == nil {
		return
	}
	r.BatchRuns.WithLabelValues(screener, outcome).Inc()
	r.BatchDuration.WithLabelValues(screener).Observe(elapsed.Seconds())
	r.ResultCount.WithLabelValues(screener).Set(float64(results))
}
