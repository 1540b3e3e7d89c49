package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "scamguard"

// Metrics holds the service collectors on a private registry.
type Metrics struct {
	registry      *prometheus.Registry
	analyses      *prometheus.CounterVec
	freeformPaths *prometheus.CounterVec
	generation    *prometheus.HistogramVec
	generatorErrs *prometheus.CounterVec
	httpRequests  *prometheus.CounterVec
}

// New registers the collectors, plus Go runtime and process collectors.
func New() *Metrics {
	reg := prometheus.NewRegistry()

	m := &Metrics{
		registry: reg,
		analyses: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "analyses_total",
			Help:      "Completed analyses by channel and risk level.",
		}, []string{"channel", "tier"}),
		freeformPaths: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "freeform_path_total",
			Help:      "Free-form analyses by producing path and fallback reason.",
		}, []string{"path", "reason"}),
		generation: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "generator_latency_seconds",
			Help:      "Latency of generative model calls.",
			Buckets:   []float64{0.25, 0.5, 1, 2, 5, 10, 20, 30},
		}, []string{"provider"}),
		generatorErrs: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "generator_errors_total",
			Help:      "Failed generative model calls.",
		}, []string{"provider"}),
		httpRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "http_requests_total",
			Help:      "HTTP requests by route pattern and status code.",
		}, []string{"route", "code"}),
	}

	reg.MustRegister(
		m.analyses,
		m.freeformPaths,
		m.generation,
		m.generatorErrs,
		m.httpRequests,
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return m
}

func (m *Metrics) ObserveAnalysis(channel, tier string) {
	m.analyses.WithLabelValues(channel, tier).Inc()
}

func (m *Metrics) ObserveFreeformPath(path, reason string) {
	if reason == "" {
		reason = "none"
	}
	m.freeformPaths.WithLabelValues(path, reason).Inc()
}

func (m *Metrics) ObserveGeneration(provider string, elapsed time.Duration, err error) {
	m.generation.WithLabelValues(provider).Observe(elapsed.Seconds())
	if err != nil {
		m.generatorErrs.WithLabelValues(provider).Inc()
	}
}

// ObserveRequest counts a served HTTP request.
func (m *Metrics) ObserveRequest(route, code string) {
	m.httpRequests.WithLabelValues(route, code).Inc()
}

// Registry exposes the registry for tests and extra collectors.
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

// Handler serves the registry in the Prometheus exposition format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{Registry: m.registry})
}
