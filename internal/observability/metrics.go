// Package observability provides metrics for birdstrike runs.
package observability

import (
	"fmt"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/tphakala/birdstrike/internal/logger"
	"github.com/tphakala/birdstrike/internal/observability/metrics"
)

// Metrics holds all the metric collectors for a run.
type Metrics struct {
	registry *prometheus.Registry
	Pipeline *metrics.PipelineMetrics
}

// NewMetrics creates a private registry and initializes all metric collectors.
func NewMetrics() (*Metrics, error) {
	registry := prometheus.NewRegistry()

	pipelineMetrics, err := metrics.NewPipelineMetrics(registry)
	if err != nil {
		return nil, fmt.Errorf("failed to create pipeline metrics: %w", err)
	}

	return &Metrics{
		registry: registry,
		Pipeline: pipelineMetrics,
	}, nil
}

// Registry returns the registry holding every collector
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

// WriteTextfile writes all metrics to path in the text exposition format read by
// the node_exporter textfile collector. The file is replaced atomically.
func (m *Metrics) WriteTextfile(path string) error {
	if err := prometheus.WriteToTextfile(path, m.registry); err != nil {
		return fmt.Errorf("failed to write metrics to %s: %w", path, err)
	}
	logger.Global().Module("metrics").Info("metrics written", logger.String("path", path))
	return nil
}
