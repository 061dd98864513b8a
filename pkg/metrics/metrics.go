package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics holds the process collectors on a private registry.
// All methods are safe on a nil receiver so tests can skip wiring it.
type Metrics struct {
	reg *prometheus.Registry

	requestCount    *prometheus.CounterVec
	requestDuration *prometheus.HistogramVec
	translateCalls  *prometheus.CounterVec
	inferDuration   prometheus.Histogram
	advisorCalls    *prometheus.CounterVec
}

func New() *Metrics {
	m := &Metrics{
		reg: prometheus.NewRegistry(),
		requestCount: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "http_requests_total",
				Help: "Total number of HTTP requests",
			}, []string{"path", "method", "status"},
		),
		requestDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "http_request_duration_seconds",
				Help:    "Duration of HTTP requests in seconds",
				Buckets: prometheus.DefBuckets,
			}, []string{"path"},
		),
		translateCalls: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "translate_calls_total",
				Help: "Translation gateway calls by route and outcome",
			}, []string{"route", "outcome"},
		),
		inferDuration: prometheus.NewHistogram(
			prometheus.HistogramOpts{
				Name:    "classifier_inference_duration_seconds",
				Help:    "Duration of disease classifier inference",
				Buckets: []float64{.05, .1, .25, .5, 1, 2.5, 5, 10},
			},
		),
		advisorCalls: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "advisor_calls_total",
				Help: "Conversational advisor calls by provider and outcome",
			}, []string{"provider", "outcome"},
		),
	}
	m.reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		m.requestCount, m.requestDuration, m.translateCalls, m.inferDuration, m.advisorCalls,
	)
	return m
}

func (m *Metrics) Handler() http.Handler {
	if m == nil {
		return http.NotFoundHandler()
	}
	return promhttp.HandlerFor(m.reg, promhttp.HandlerOpts{})
}

func (m *Metrics) Registry() *prometheus.Registry {
	if m == nil {
		return nil
	}
	return m.reg
}

func (m *Metrics) ObserveRequest(path, method, status string, d time.Duration) {
	if m == nil {
		return
	}
	m.requestCount.WithLabelValues(path, method, status).Inc()
	m.requestDuration.WithLabelValues(path).Observe(d.Seconds())
}

// ObserveTranslate records one gateway call; outcome is "ok" or "degraded".
func (m *Metrics) ObserveTranslate(route, outcome string) {
	if m == nil {
		return
	}
	m.translateCalls.WithLabelValues(route, outcome).Inc()
}

func (m *Metrics) ObserveInference(d time.Duration) {
	if m == nil {
		return
	}
	m.inferDuration.Observe(d.Seconds())
}

func (m *Metrics) ObserveAdvisor(provider, outcome string) {
	if m == nil {
		return
	}
	m.advisorCalls.WithLabelValues(provider, outcome).Inc()
}
