// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package metrics records engine measurements in Prometheus collectors.
package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "unified_search"

// Metrics implements the engine's recorder over Prometheus collectors.
type Metrics struct {
	ProviderCalls    *prometheus.CounterVec
	ProviderDuration *prometheus.HistogramVec

	Operations        *prometheus.CounterVec
	OperationDuration *prometheus.HistogramVec

	registry *prometheus.Registry
}

// New registers the collectors on a fresh registry. Each Metrics value owns
// its registry, so tests and multiple servers do not collide.
func New() *Metrics {
	reg := prometheus.NewRegistry()
	f := promauto.With(reg)
	return &Metrics{
		ProviderCalls: f.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "provider_calls_total",
				Help:      "Provider calls by category, provider and outcome status.",
			},
			[]string{"category", "provider", "status"},
		),
		ProviderDuration: f.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "provider_call_duration_seconds",
				Help:      "Provider call duration in seconds.",
				Buckets:   []float64{0.1, 0.25, 0.5, 1, 2, 5, 10, 30},
			},
			[]string{"category", "provider"},
		),
		Operations: f.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "operations_total",
				Help:      "Engine operations by name and outcome.",
			},
			[]string{"operation", "status"},
		),
		OperationDuration: f.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "operation_duration_seconds",
				Help:      "Engine operation duration in seconds.",
				Buckets:   []float64{0.1, 0.5, 1, 2, 5, 10, 30, 60},
			},
			[]string{"operation"},
		),
		registry: reg,
	}
}

// ObserveProvider records one provider call.
func (m *Metrics) ObserveProvider(category, provider, status string, d time.Duration) {
	m.ProviderCalls.WithLabelValues(category, provider, status).Inc()
	m.ProviderDuration.WithLabelValues(category, provider).Observe(d.Seconds())
}

// ObserveOperation records one facade operation.
func (m *Metrics) ObserveOperation(operation string, success bool, d time.Duration) {
	status := "success"
	if !success {
		status = "failure"
	}
	m.Operations.WithLabelValues(operation, status).Inc()
	m.OperationDuration.WithLabelValues(operation).Observe(d.Seconds())
}

// Registry returns the registry holding the collectors.
func (m *Metrics) Registry() *prometheus.Registry { return m.registry }

// Handler serves the collectors in the Prometheus exposition format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{Registry: m.registry})
}
