// Package metrics holds the Prometheus instrumentation for parsing and
// encoding.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

const namespace = "altimeter"

// Metrics is the process-wide instance used by the scan driver and encoders.
var Metrics = newMetrics()

// Registry is the registry Metrics is registered with and /metrics serves.
var Registry = prometheus.NewRegistry()

func init() {
	Metrics.MustRegister(Registry)
}

// AltimeterMetrics holds the collectors for one process.
type AltimeterMetrics struct {
	resourcesParsed  *prometheus.CounterVec
	parseDuration    *prometheus.HistogramVec
	resourcesEncoded *prometheus.CounterVec
	linksEncoded     *prometheus.CounterVec
	encodeDuration   *prometheus.HistogramVec
}

func newMetrics() *AltimeterMetrics {
	return &AltimeterMetrics{
		resourcesParsed: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: "parse",
				Name:      "resources_total",
				Help:      "Resources parsed from scanner output by type and result.",
			},
			[]string{"resource_type", "result"}, // "success" or "error"
		),
		parseDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Subsystem: "parse",
				Name:      "duration_seconds",
				Help:      "Time to parse one resource in seconds.",
				Buckets:   prometheus.ExponentialBuckets(0.00001, 2, 12), // 10µs to ~20ms
			},
			[]string{"result"},
		),
		resourcesEncoded: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: "encode",
				Name:      "resources_total",
				Help:      "Resources encoded by graph format.",
			},
			[]string{"format"}, // "rdf" or "lpg"
		),
		linksEncoded: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: "encode",
				Name:      "links_total",
				Help:      "Links encoded by graph format and link type.",
			},
			[]string{"format", "link_type"},
		),
		encodeDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Subsystem: "encode",
				Name:      "duration_seconds",
				Help:      "Time to encode one batch in seconds.",
				Buckets:   prometheus.ExponentialBuckets(0.0001, 2, 14), // 100µs to ~1.6s
			},
			[]string{"format"},
		),
	}
}

// MustRegister registers every collector with r.
func (m *AltimeterMetrics) MustRegister(r prometheus.Registerer) {
	r.MustRegister(
		m.resourcesParsed,
		m.parseDuration,
		m.resourcesEncoded,
		m.linksEncoded,
		m.encodeDuration,
	)
}

// ObserveParse records the outcome of parsing one resource.
func (m *AltimeterMetrics) ObserveParse(resourceType string, durationSeconds float64, err error) {
	result := "success"
	if err != nil {
		result = "error"
	}
	m.resourcesParsed.WithLabelValues(resourceType, result).Inc()
	m.parseDuration.WithLabelValues(result).Observe(durationSeconds)
}

// ObserveEncode records one encoded batch.
func (m *AltimeterMetrics) ObserveEncode(format string, resources int, links map[string]int, durationSeconds float64) {
	m.resourcesEncoded.WithLabelValues(format).Add(float64(resources))
	for linkType, n := range links {
		m.linksEncoded.WithLabelValues(format, linkType).Add(float64(n))
	}
	m.encodeDuration.WithLabelValues(format).Observe(durationSeconds)
}
