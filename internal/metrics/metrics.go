package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
)

// Registry holds all Prometheus metrics.
type Registry struct {
	*prometheus.Registry

	// HTTP metrics
	httpRequestsTotal    *prometheus.CounterVec
	httpRequestDuration  *prometheus.HistogramVec
	httpRequestsInFlight prometheus.Gauge

	// Business metrics
	runsTotal       *prometheus.CounterVec
	runDuration     prometheus.Histogram
	fundsEvaluated  prometheus.Gauge
	fundErrors      *prometheus.CounterVec
	signalsTotal    *prometheus.CounterVec
	collectorErrors *prometheus.CounterVec
	goldReturn      prometheus.Gauge
}

// NewRegistry creates a new metrics registry with all metrics registered.
func NewRegistry() *Registry {
	reg := prometheus.NewRegistry()

	// Register Go runtime metrics
	reg.MustRegister(collectors.NewGoCollector())
	reg.MustRegister(collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))

	r := &Registry{
		Registry: reg,

		httpRequestsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "http_requests_total",
				Help: "Total number of HTTP requests",
			},
			[]string{"method", "path", "status"},
		),

		httpRequestDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "http_request_duration_seconds",
				Help:    "HTTP request duration in seconds",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"method", "path"},
		),

		httpRequestsInFlight: prometheus.NewGauge(
			prometheus.GaugeOpts{
				Name: "http_requests_in_flight",
				Help: "Number of HTTP requests currently in flight",
			},
		),
	}

	reg.MustRegister(r.httpRequestsTotal)
	reg.MustRegister(r.httpRequestDuration)
	reg.MustRegister(r.httpRequestsInFlight)

	// Business metrics
	r.runsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "goldgap_runs_total",
			Help: "Total number of valuation runs",
		},
		[]string{"status"},
	)
	r.runDuration = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "goldgap_run_duration_seconds",
			Help:    "Valuation run duration in seconds",
			Buckets: prometheus.DefBuckets,
		},
	)
	r.fundsEvaluated = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "goldgap_funds_evaluated",
			Help: "Number of funds evaluated in the latest run",
		},
	)
	r.fundErrors = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "goldgap_fund_errors_total",
			Help: "Total number of per-fund evaluation errors",
		},
		[]string{"reason"},
	)
	r.signalsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "goldgap_signals_total",
			Help: "Total number of signals generated",
		},
		[]string{"action"},
	)
	r.collectorErrors = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "goldgap_collector_errors_total",
			Help: "Total number of collector fetch errors",
		},
		[]string{"collector"},
	)
	r.goldReturn = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "goldgap_gold_return",
			Help: "Gold return since T-2 close in the latest run",
		},
	)

	reg.MustRegister(r.runsTotal)
	reg.MustRegister(r.runDuration)
	reg.MustRegister(r.fundsEvaluated)
	reg.MustRegister(r.fundErrors)
	reg.MustRegister(r.signalsTotal)
	reg.MustRegister(r.collectorErrors)
	reg.MustRegister(r.goldReturn)

	return r
}

// RecordRequest records metrics for an HTTP request.
func (r *Registry) RecordRequest(method, path string, status int, duration float64) {
	statusStr := statusToString(status)
	r.httpRequestsTotal.WithLabelValues(method, path, statusStr).Inc()
	r.httpRequestDuration.WithLabelValues(method, path).Observe(duration)
}

// InFlightInc increments in-flight requests.
func (r *Registry) InFlightInc() {
	r.httpRequestsInFlight.Inc()
}

// InFlightDec decrements in-flight requests.
func (r *Registry) InFlightDec() {
	r.httpRequestsInFlight.Dec()
}

// RecordRun records a completed or failed valuation run.
func (r *Registry) RecordRun(status string, duration float64) {
	r.runsTotal.WithLabelValues(status).Inc()
	r.runDuration.Observe(duration)
}

// RecordSignal records a generated signal.
func (r *Registry) RecordSignal(action string) {
	r.signalsTotal.WithLabelValues(action).Inc()
}

// RecordFundError records a per-fund evaluation error.
func (r *Registry) RecordFundError(reason string) {
	r.fundErrors.WithLabelValues(reason).Inc()
}

// RecordCollectorError records a collector fetch failure.
func (r *Registry) RecordCollectorError(collector string) {
	r.collectorErrors.WithLabelValues(collector).Inc()
}

// SetFundsEvaluated sets the fund count of the latest run.
func (r *Registry) SetFundsEvaluated(count int) {
	r.fundsEvaluated.Set(float64(count))
}

// SetGoldReturn sets the gold return of the latest run.
func (r *Registry) SetGoldReturn(v float64) {
	r.goldReturn.Set(v)
}

func statusToString(status int) string {
	switch {
	case status >= 500:
		return "5xx"
	case status >= 400:
		return "4xx"
	case status >= 300:
		return "3xx"
	case status >= 200:
		return "2xx"
	default:
		return "1xx"
	}
}
