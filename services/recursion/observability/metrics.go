// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

// Package observability provides Prometheus metrics for the recursion
// service.
//
// # Description
//
// This package implements Prometheus metrics for monitoring dispatch
// operations. Metrics include:
//   - Request counters (by algorithm, mode, status)
//   - Latency histograms (engine execution duration)
//   - Active dispatch gauge
//   - Error counters (by kind)
//   - Batch size histogram
//
// # Integration
//
// Metrics are exposed via the /metrics endpoint. Use with Prometheus +
// Grafana for dashboards and alerting. The per-request record store in the
// metrics package is separate: it backs the JSON /v1/metrics API.
//
// # Thread Safety
//
// All metric operations are thread-safe via Prometheus's internal locking.
package observability

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Namespace for all metrics
const metricsNamespace = "recursionlab"

// Subsystem for dispatch metrics
const dispatchSubsystem = "dispatch"

// DispatchMetrics holds all Prometheus metrics for dispatch operations.
//
// All operations are thread-safe. A nil *DispatchMetrics is valid and
// records nothing, so tests can construct a Dispatcher without touching the
// default registry.
type DispatchMetrics struct {
	// RequestsTotal counts dispatches by algorithm, mode and outcome.
	// Labels: algorithm (fibonacci, tree_traversal, pathfinding),
	// mode (naive, optimized), status (success, error)
	RequestsTotal *prometheus.CounterVec

	// DurationSeconds measures engine execution duration.
	// Labels: algorithm, mode
	DurationSeconds *prometheus.HistogramVec

	// ActiveDispatches tracks dispatches currently executing in the engine.
	ActiveDispatches prometheus.Gauge

	// ErrorsTotal counts failures by kind.
	// Labels: kind (invalid_input, depth_exceeded, internal)
	ErrorsTotal *prometheus.CounterVec

	// BatchSize observes the size of DispatchBatch submissions.
	BatchSize prometheus.Histogram
}

var (
	defaultMetrics *DispatchMetrics
	initOnce       sync.Once
)

// InitMetrics registers the dispatch metrics with the default registry and
// returns them. Safe to call more than once; registration happens once per
// process.
func InitMetrics() *DispatchMetrics {
	initOnce.Do(func() {
		defaultMetrics = &DispatchMetrics{
			RequestsTotal: promauto.NewCounterVec(
				prometheus.CounterOpts{
					Namespace: metricsNamespace,
					Subsystem: dispatchSubsystem,
					Name:      "requests_total",
					Help:      "Total dispatches by algorithm, mode and status",
				},
				[]string{"algorithm", "mode", "status"},
			),
			DurationSeconds: promauto.NewHistogramVec(
				prometheus.HistogramOpts{
					Namespace: metricsNamespace,
					Subsystem: dispatchSubsystem,
					Name:      "duration_seconds",
					Help:      "Engine execution duration by algorithm and mode",
					Buckets:   prometheus.ExponentialBuckets(0.0001, 4, 10),
				},
				[]string{"algorithm", "mode"},
			),
			ActiveDispatches: promauto.NewGauge(
				prometheus.GaugeOpts{
					Namespace: metricsNamespace,
					Subsystem: dispatchSubsystem,
					Name:      "active",
					Help:      "Dispatches currently executing in the engine",
				},
			),
			ErrorsTotal: promauto.NewCounterVec(
				prometheus.CounterOpts{
					Namespace: metricsNamespace,
					Subsystem: dispatchSubsystem,
					Name:      "errors_total",
					Help:      "Dispatch failures by kind",
				},
				[]string{"kind"},
			),
			BatchSize: promauto.NewHistogram(
				prometheus.HistogramOpts{
					Namespace: metricsNamespace,
					Subsystem: dispatchSubsystem,
					Name:      "batch_size",
					Help:      "Size of batch dispatch submissions",
					Buckets:   prometheus.ExponentialBuckets(1, 2, 10),
				},
			),
		}
	})
	return defaultMetrics
}

// ObserveRequest records one completed dispatch.
func (m *DispatchMetrics) ObserveRequest(algorithm, mode, status string, seconds float64) {
	if m == nil {
		return
	}
	m.RequestsTotal.WithLabelValues(algorithm, mode, status).Inc()
	m.DurationSeconds.WithLabelValues(algorithm, mode).Observe(seconds)
}

// ObserveError records one failure by kind.
func (m *DispatchMetrics) ObserveError(kind string) {
	if m == nil {
		return
	}
	m.ErrorsTotal.WithLabelValues(kind).Inc()
}

// ObserveBatch records one batch submission.
func (m *DispatchMetrics) ObserveBatch(size int) {
	if m == nil {
		return
	}
	m.BatchSize.Observe(float64(size))
}

// IncActive marks a dispatch entering the engine.
func (m *DispatchMetrics) IncActive() {
	if m == nil {
		return
	}
	m.ActiveDispatches.Inc()
}

// DecActive marks a dispatch leaving the engine.
func (m *DispatchMetrics) DecActive() {
	if m == nil {
		return
	}
	m.ActiveDispatches.Dec()
}
