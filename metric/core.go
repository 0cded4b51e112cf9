package metric

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Metrics contains the Transformer-level Prometheus instruments shared by
// every Source/Sink pair in a pipeline run.
type Metrics struct {
	RecordsRead     *prometheus.CounterVec
	RecordsWritten  *prometheus.CounterVec
	RecordsDropped  *prometheus.CounterVec
	PipelineLatency *prometheus.HistogramVec
	ValidationIssue *prometheus.CounterVec
	CliqueSize      prometheus.Histogram
}

// NewMetrics creates a new Metrics instance with all kgx pipeline metrics.
func NewMetrics() *Metrics {
	return &Metrics{
		RecordsRead: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "kgx",
				Subsystem: "pipeline",
				Name:      "records_read_total",
				Help:      "Total records read from a Source, by record kind (node|edge).",
			},
			[]string{"kind", "format"},
		),
		RecordsWritten: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "kgx",
				Subsystem: "pipeline",
				Name:      "records_written_total",
				Help:      "Total records handed to a Sink, by record kind.",
			},
			[]string{"kind", "format"},
		),
		RecordsDropped: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "kgx",
				Subsystem: "pipeline",
				Name:      "records_dropped_total",
				Help:      "Records dropped by a filter or a per-record parse failure, by error_type.",
			},
			[]string{"kind", "error_type"},
		),
		PipelineLatency: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: "kgx",
				Subsystem: "pipeline",
				Name:      "record_duration_seconds",
				Help:      "Time spent normalizing and writing a single record.",
				Buckets:   prometheus.DefBuckets,
			},
			[]string{"kind"},
		),
		ValidationIssue: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "kgx",
				Subsystem: "validate",
				Name:      "issues_total",
				Help:      "Aggregated validation issues, by level and error_type.",
			},
			[]string{"level", "error_type"},
		),
		CliqueSize: prometheus.NewHistogram(
			prometheus.HistogramOpts{
				Namespace: "kgx",
				Subsystem: "merge",
				Name:      "clique_size",
				Help:      "Size (node count) of resolved same-as cliques.",
				Buckets:   []float64{1, 2, 3, 5, 10, 25, 50, 100},
			},
		),
	}
}

// RecordRead increments the read counter for a record kind/format pair.
func (m *Metrics) RecordRead(kind, format string) {
	m.RecordsRead.WithLabelValues(kind, format).Inc()
}

// RecordWritten increments the written counter for a record kind/format pair.
func (m *Metrics) RecordWritten(kind, format string) {
	m.RecordsWritten.WithLabelValues(kind, format).Inc()
}

// RecordDropped increments the dropped counter for a record kind/error type.
func (m *Metrics) RecordDropped(kind, errorType string) {
	m.RecordsDropped.WithLabelValues(kind, errorType).Inc()
}

// ObserveLatency records the processing duration for one record.
func (m *Metrics) ObserveLatency(kind string, d time.Duration) {
	m.PipelineLatency.WithLabelValues(kind).Observe(d.Seconds())
}

// RecordValidationIssue increments the aggregated validation counter.
func (m *Metrics) RecordValidationIssue(level, errorType string) {
	m.ValidationIssue.WithLabelValues(level, errorType).Inc()
}

// ObserveCliqueSize records the size of a resolved clique.
func (m *Metrics) ObserveCliqueSize(size int) {
	m.CliqueSize.Observe(float64(size))
}
