package middleware

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/bryanwahyu/visiai/internal/domain/providers"
)

// Metrics holds all Prometheus metrics for VisiAI
type Metrics struct {
	registry *prometheus.Registry

	// HTTP
	RequestsTotal    *prometheus.CounterVec
	RequestDuration  *prometheus.HistogramVec
	RequestsInFlight prometheus.Gauge

	// Analysis pipeline
	AnalysesTotal     *prometheus.CounterVec
	AnalysisDuration  prometheus.Histogram
	ProviderFallbacks *prometheus.CounterVec
}

// NewMetrics creates the collectors on their own registry.
func NewMetrics() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),

		RequestsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "visiai_http_requests_total",
				Help: "Total number of HTTP requests by method and status",
			},
			[]string{"method", "status"},
		),

		RequestDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "visiai_http_request_duration_seconds",
				Help:    "Duration of HTTP requests in seconds",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"method"},
		),

		RequestsInFlight: prometheus.NewGauge(
			prometheus.GaugeOpts{
				Name: "visiai_http_requests_in_flight",
				Help: "Number of HTTP requests currently being served",
			},
		),

		AnalysesTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "visiai_analyses_total",
				Help: "Total number of page analyses by status",
			},
			[]string{"status"},
		),

		// analyses wait on providers with 30-60s timeouts
		AnalysisDuration: prometheus.NewHistogram(
			prometheus.HistogramOpts{
				Name:    "visiai_analysis_duration_seconds",
				Help:    "Duration of a full page analysis in seconds",
				Buckets: []float64{0.5, 1, 2.5, 5, 10, 20, 30, 45, 60, 90, 120},
			},
		),

		ProviderFallbacks: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "visiai_provider_fallbacks_total",
				Help: "Provider results that were defaulted or synthesized",
			},
			[]string{"provider", "source"},
		),
	}

	m.registry.MustRegister(
		m.RequestsTotal,
		m.RequestDuration,
		m.RequestsInFlight,
		m.AnalysesTotal,
		m.AnalysisDuration,
		m.ProviderFallbacks,
		prometheus.NewGoCollector(),
		prometheus.NewProcessCollector(prometheus.ProcessCollectorOpts{}),
	)
	return m
}

// ObserveAnalysis records one finished analysis.
func (m *Metrics) ObserveAnalysis(status string, d time.Duration) {
	m.AnalysesTotal.WithLabelValues(status).Inc()
	m.AnalysisDuration.Observe(d.Seconds())
}

// ProviderFallback counts a provider result that did not come from live data.
func (m *Metrics) ProviderFallback(provider string, source providers.Source) {
	m.ProviderFallbacks.WithLabelValues(provider, string(source)).Inc()
}

// Middleware tracks request metrics
func (m *Metrics) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		m.RequestsInFlight.Inc()
		defer m.RequestsInFlight.Dec()

		wrapped := wrap(w)
		next.ServeHTTP(wrapped, r)

		m.RequestsTotal.WithLabelValues(r.Method, strconv.Itoa(wrapped.statusCode)).Inc()
		m.RequestDuration.WithLabelValues(r.Method).Observe(time.Since(start).Seconds())
	})
}

// Handler exposes the registry in the Prometheus text format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}
