package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "invoice_ocr"

// Metrics holds the service collectors on a private registry
type Metrics struct {
	registry *prometheus.Registry

	requestOps      *prometheus.CounterVec
	requestDuration *prometheus.HistogramVec
	providerOps     *prometheus.CounterVec
	providerLatency *prometheus.HistogramVec
	acquisitionOps  *prometheus.CounterVec
	ocrConfidence   *prometheus.HistogramVec
}

// New registers the collectors, plus Go runtime and process collectors
func New() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		requestOps: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "extraction_request_ops_total",
				Help:      "The total number of extraction requests by terminal outcome.",
			},
			[]string{"source", "engine", "outcome"},
		),
		requestDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "extraction_request_duration_seconds",
				Help:      "Time from acceptance to terminal state.",
				Buckets:   []float64{0.5, 1, 2, 5, 10, 20, 30, 60, 120},
			},
			[]string{"source", "engine"},
		),
		providerOps: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "provider_call_ops_total",
				Help:      "The total number of extraction provider calls.",
			},
			[]string{"engine", "model", "status"},
		),
		providerLatency: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "provider_call_duration_seconds",
				Help:      "Latency of extraction provider calls.",
				Buckets:   []float64{0.5, 1, 2, 5, 10, 20, 30, 60},
			},
			[]string{"engine"},
		),
		acquisitionOps: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "acquisition_ops_total",
				Help:      "The total number of input acquisitions by source and status.",
			},
			[]string{"source", "status"},
		),
		ocrConfidence: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "acquisition_confidence",
				Help:      "Confidence of acquired text, 0 to 1.",
				Buckets:   []float64{0.1, 0.3, 0.5, 0.7, 0.8, 0.9, 0.95, 1},
			},
			[]string{"source"},
		),
	}

	m.registry.MustRegister(
		m.requestOps,
		m.requestDuration,
		m.providerOps,
		m.providerLatency,
		m.acquisitionOps,
		m.ocrConfidence,
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return m
}

// Handler serves the registry in the Prometheus exposition format
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{Registry: m.registry})
}

// ObserveRequest records a finished request
func (m *Metrics) ObserveRequest(source, engine, outcome string, elapsed time.Duration) {
	m.requestOps.WithLabelValues(source, engine, outcome).Inc()
	m.requestDuration.WithLabelValues(source, engine).Observe(elapsed.Seconds())
}

// ObserveProviderCall records one extraction provider call
func (m *Metrics) ObserveProviderCall(engine, model string, elapsed time.Duration, err error) {
	status := "ok"
	if err != nil {
		status = "error"
	}
	m.providerOps.WithLabelValues(engine, model, status).Inc()
	m.providerLatency.WithLabelValues(engine).Observe(elapsed.Seconds())
}

// ObserveAcquisition records an acquisition attempt and, on success, its confidence
func (m *Metrics) ObserveAcquisition(source string, confidence float64, err error) {
	if err != nil {
		m.acquisitionOps.WithLabelValues(source, "error").Inc()
		return
	}
	m.acquisitionOps.WithLabelValues(source, "ok").Inc()
	m.ocrConfidence.WithLabelValues(source).Observe(confidence)
}
