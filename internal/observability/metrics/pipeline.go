// Package metrics provides pipeline metrics for observability
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// PipelineMetrics contains Prometheus metrics for one pipeline run
type PipelineMetrics struct {
	registry *prometheus.Registry

	rowsLoadedTotal  *prometheus.CounterVec
	rowsDroppedTotal *prometheus.CounterVec
	rowsMergedGauge  prometheus.Gauge
	stageDuration    *prometheus.HistogramVec
	errorsTotal      *prometheus.CounterVec
	lastRunTimestamp prometheus.Gauge

	// collectors is a slice of all collectors for easier iteration
	collectors []prometheus.Collector
}

// NewPipelineMetrics creates and registers new pipeline metrics
func NewPipelineMetrics(registry *prometheus.Registry) (*PipelineMetrics, error) {
	m := &PipelineMetrics{registry: registry}
	m.initMetrics()
	if err := registry.Register(m); err != nil {
		return nil, err
	}
	return m, nil
}

// initMetrics initializes all Prometheus metrics
func (m *PipelineMetrics) initMetrics() {
	m.rowsLoadedTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "birdstrike_rows_loaded_total",
			Help: "Rows read from each input table",
		},
		[]string{"table"},
	)

	m.rowsDroppedTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "birdstrike_rows_dropped_total",
			Help: "Rows removed during cleaning",
		},
		[]string{"table", "reason"}, // reason: missing_value, duplicate_key
	)

	m.rowsMergedGauge = prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "birdstrike_rows_merged",
		Help: "Rows in the merged output table",
	})

	m.stageDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "birdstrike_stage_duration_seconds",
			Help:    "Time taken by each pipeline stage",
			Buckets: prometheus.ExponentialBuckets(BucketStart1ms, BucketFactor2, BucketCount15),
		},
		[]string{"stage"},
	)

	m.errorsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "birdstrike_errors_total",
			Help: "Failed pipeline stages by error category",
		},
		[]string{"stage", "category"},
	)

	m.lastRunTimestamp = prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "birdstrike_last_run_timestamp_seconds",
		Help: "Unix time the last run finished recording metrics",
	})

	m.collectors = []prometheus.Collector{
		m.rowsLoadedTotal,
		m.rowsDroppedTotal,
		m.rowsMergedGauge,
		m.stageDuration,
		m.errorsTotal,
		m.lastRunTimestamp,
	}
}

// Describe implements the Collector interface
func (m *PipelineMetrics) Describe(ch chan<- *prometheus.Desc) {
	for _, c := range m.collectors {
		c.Describe(ch)
	}
}

// Collect implements the Collector interface
func (m *PipelineMetrics) Collect(ch chan<- prometheus.Metric) {
	for _, c := range m.collectors {
		c.Collect(ch)
	}
}

// RecordLoaded records the rows read from an input table
func (m *PipelineMetrics) RecordLoaded(table string, rows int) {
	m.rowsLoadedTotal.WithLabelValues(table).Add(float64(rows))
}

// RecordDropped records rows removed from a table during cleaning
func (m *PipelineMetrics) RecordDropped(table, reason string, rows int) {
	m.rowsDroppedTotal.WithLabelValues(table, reason).Add(float64(rows))
}

// RecordMerged records the row count of the final table
func (m *PipelineMetrics) RecordMerged(rows int) {
	m.rowsMergedGauge.Set(float64(rows))
	m.lastRunTimestamp.Set(float64(time.Now().Unix()))
}

// RecordStageDuration records how long a stage took
func (m *PipelineMetrics) RecordStageDuration(stage string, seconds float64) {
	m.stageDuration.WithLabelValues(stage).Observe(seconds)
}

// RecordError records a failed stage
func (m *PipelineMetrics) RecordError(stage, category string) {
	m.errorsTotal.WithLabelValues(stage, category).Inc()
}
