package pipeline

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics holds the Prometheus collectors for document processing. A nil
// *Metrics is valid and records nothing.
type Metrics struct {
	registry  *prometheus.Registry
	documents *prometheus.CounterVec
	duration  prometheus.Histogram
	headings  prometheus.Counter
}

// NewMetrics registers the collectors on a private registry. queueDepth,
// when non-nil, backs the queue depth gauge.
func NewMetrics(queueDepth func() float64) *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		documents: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "docoutline",
			Name:      "documents_total",
			Help:      "Documents processed, by final status.",
		}, []string{"status"}),
		duration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: "docoutline",
			Name:      "build_duration_seconds",
			Help:      "Time spent inferring one document outline.",
			Buckets:   []float64{.001, .005, .01, .05, .1, .25, .5, 1, 2.5, 5, 10, 30},
		}),
		headings: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "docoutline",
			Name:      "headings_total",
			Help:      "Outline entries emitted across all documents.",
		}),
	}
	m.registry.MustRegister(m.documents, m.duration, m.headings)
	if queueDepth != nil {
		m.registry.MustRegister(prometheus.NewGaugeFunc(prometheus.GaugeOpts{
			Namespace: "docoutline",
			Name:      "queue_depth",
			Help:      "Jobs waiting for a worker.",
		}, queueDepth))
	}
	return m
}

// ObserveBuild records a successful outline build.
func (m *Metrics) ObserveBuild(d time.Duration, headings int) {
	if m == nil {
		return
	}
	m.duration.Observe(d.Seconds())
	m.headings.Add(float64(headings))
}

// ObserveStatus counts a document reaching a final status.
func (m *Metrics) ObserveStatus(status JobStatus) {
	if m == nil {
		return
	}
	m.documents.WithLabelValues(string(status)).Inc()
}

// Registry exposes the private registry.
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

// Handler serves the registry in the Prometheus exposition format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}
