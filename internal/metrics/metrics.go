package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Registry holds all Prometheus metrics.
type Registry struct {
	*prometheus.Registry

	runsTotal          *prometheus.CounterVec
	runDuration        prometheus.Histogram
	tradesRecorded     prometheus.Counter
	sweepRunsTotal     *prometheus.CounterVec
	sweepWorkersActive prometheus.Gauge
	feedRequestsTotal  *prometheus.CounterVec
}

// NewRegistry creates a new metrics registry with all metrics registered.
func NewRegistry() *Registry {
	reg := prometheus.NewRegistry()

	// Register Go runtime metrics
	reg.MustRegister(collectors.NewGoCollector())
	reg.MustRegister(collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))

	r := &Registry{
		Registry: reg,

		runsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "prism_runs_total",
				Help: "Total number of simulation runs",
			},
			[]string{"strategy", "status"},
		),

		runDuration: prometheus.NewHistogram(
			prometheus.HistogramOpts{
				Name:    "prism_run_duration_seconds",
				Help:    "Simulation run duration in seconds",
				Buckets: prometheus.DefBuckets,
			},
		),

		tradesRecorded: prometheus.NewCounter(
			prometheus.CounterOpts{
				Name: "prism_trades_recorded_total",
				Help: "Total number of trades appended to the ledger",
			},
		),

		sweepRunsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "prism_sweep_runs_total",
				Help: "Total number of parameter sweep combinations evaluated",
			},
			[]string{"status"},
		),

		sweepWorkersActive: prometheus.NewGauge(
			prometheus.GaugeOpts{
				Name: "prism_sweep_workers_active",
				Help: "Number of sweep workers currently running",
			},
		),

		feedRequestsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "prism_feed_requests_total",
				Help: "Total number of market data fetches",
			},
			[]string{"provider", "status"},
		),
	}

	reg.MustRegister(r.runsTotal)
	reg.MustRegister(r.runDuration)
	reg.MustRegister(r.tradesRecorded)
	reg.MustRegister(r.sweepRunsTotal)
	reg.MustRegister(r.sweepWorkersActive)
	reg.MustRegister(r.feedRequestsTotal)

	return r
}

// RecordRun records a simulation run completion.
func (r *Registry) RecordRun(strategy, status string, duration float64) {
	r.runsTotal.WithLabelValues(strategy, status).Inc()
	r.runDuration.Observe(duration)
}

// AddTrades records trades appended to the ledger.
func (r *Registry) AddTrades(n int) {
	r.tradesRecorded.Add(float64(n))
}

// RecordSweepRun records one evaluated sweep combination.
func (r *Registry) RecordSweepRun(status string) {
	r.sweepRunsTotal.WithLabelValues(status).Inc()
}

// SweepWorkerStart marks a sweep worker as active.
func (r *Registry) SweepWorkerStart() {
	r.sweepWorkersActive.Inc()
}

// SweepWorkerStop marks a sweep worker as done.
func (r *Registry) SweepWorkerStop() {
	r.sweepWorkersActive.Dec()
}

// RecordFeedRequest records a market data fetch.
func (r *Registry) RecordFeedRequest(provider, status string) {
	r.feedRequestsTotal.WithLabelValues(provider, status).Inc()
}

// Handler returns an HTTP handler exposing the registry.
func (r *Registry) Handler() http.Handler {
	return promhttp.HandlerFor(r.Registry, promhttp.HandlerOpts{})
}
