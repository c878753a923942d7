// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

package dispatcher

import (
	"context"
	"math/big"
	"sync"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/AleutianAI/recursionlab/services/recursion/config"
	"github.com/AleutianAI/recursionlab/services/recursion/engine"
	"github.com/AleutianAI/recursionlab/services/recursion/metrics"
	"github.com/AleutianAI/recursionlab/services/recursion/observability"
)

func newTestDispatcher() *Dispatcher {
	return New(engine.NewEngine(), metrics.NewStore(), config.Default().Dispatcher, nil)
}

// newUnregisteredMetrics builds DispatchMetrics outside the default
// registry so tests can read counters without cross-test interference.
func newUnregisteredMetrics() *observability.DispatchMetrics {
	return &observability.DispatchMetrics{
		RequestsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{Name: "test_requests_total"},
			[]string{"algorithm", "mode", "status"}),
		DurationSeconds: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{Name: "test_duration_seconds"},
			[]string{"algorithm", "mode"}),
		ActiveDispatches: prometheus.NewGauge(
			prometheus.GaugeOpts{Name: "test_active"}),
		ErrorsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{Name: "test_errors_total"},
			[]string{"kind"}),
		BatchSize: prometheus.NewHistogram(
			prometheus.HistogramOpts{Name: "test_batch_size"}),
	}
}

// =============================================================================
// Validation Tests
// =============================================================================

func TestDispatch_RejectsNonPositiveDepth(t *testing.T) {
	d := newTestDispatcher()

	res := d.Dispatch(context.Background(), AlgorithmFibonacci, -1, true)
	assert.False(t, res.Success)
	assert.Contains(t, res.Error, "depth must be positive")
	// Rejected before the engine: no record, but the failure counter moves.
	assert.Equal(t, 0, d.Store().Len())
	assert.Equal(t, uint64(1), d.Stats().FailedDispatches)
}

func TestDispatch_RejectsUnoptimizedDepthTooHigh(t *testing.T) {
	d := newTestDispatcher()

	res := d.Dispatch(context.Background(), AlgorithmFibonacci, 20000, false)
	assert.False(t, res.Success)
	assert.Contains(t, res.Error, "unoptimized recursion depth too high")
	assert.Equal(t, 0, d.Store().Len(), "validation failures must not produce a metric record")

	// The same depth is fine when optimized.
	res = d.Dispatch(context.Background(), AlgorithmFibonacci, 20000, true)
	assert.True(t, res.Success)

	// Pathfinding is not depth-sensitive even when unoptimized: the grid
	// is clamped instead. A small clamp keeps the exhaustive search cheap.
	small := New(engine.NewEngine(), metrics.NewStore(),
		config.DispatcherConfig{MaxGridSize: 5}, nil)
	res = small.Dispatch(context.Background(), AlgorithmPathfinding, 20000, false)
	assert.True(t, res.Success)
}

func TestDispatch_RejectsUnknownAlgorithm(t *testing.T) {
	d := newTestDispatcher()

	res := d.Dispatch(context.Background(), Algorithm("quicksort"), 10, true)
	assert.False(t, res.Success)
	assert.Contains(t, res.Error, "unknown algorithm")
	assert.Equal(t, 0, d.Store().Len())
}

// =============================================================================
// Execution Tests
// =============================================================================

func TestDispatch_FibonacciSuccess(t *testing.T) {
	d := newTestDispatcher()

	res := d.Dispatch(context.Background(), AlgorithmFibonacci, 10, true)
	require.True(t, res.Success, "error: %s", res.Error)

	value, ok := res.Value.(*big.Int)
	require.True(t, ok, "fibonacci value type = %T", res.Value)
	assert.Equal(t, int64(55), value.Int64())
	assert.Equal(t, 10, res.RequestedDepth)
	assert.NotZero(t, res.RequestID)

	require.Equal(t, 1, d.Store().Len())
	rec := d.Store().Recent(1)[0]
	assert.True(t, rec.Success)
	assert.Equal(t, "fibonacci", rec.Algorithm)
}

func TestDispatch_NaiveFibonacciCeilingRecorded(t *testing.T) {
	d := newTestDispatcher()

	res := d.Dispatch(context.Background(), AlgorithmFibonacci, 36, false)
	assert.False(t, res.Success)
	assert.Contains(t, res.Error, "recursion depth")

	// Depth-exceeded failures are charged a metric record.
	require.Equal(t, 1, d.Store().Len())
	assert.False(t, d.Store().Recent(1)[0].Success)
	assert.Equal(t, uint64(1), d.Stats().FailedDispatches)
}

func TestDispatch_TreeTraversal(t *testing.T) {
	d := newTestDispatcher()

	res := d.Dispatch(context.Background(), AlgorithmTreeTraversal, 100, true)
	require.True(t, res.Success)
	seq, ok := res.Value.([]string)
	require.True(t, ok, "traversal value type = %T", res.Value)
	assert.Len(t, seq, 101)

	// Beyond the naive ceiling the tree still generates, but traversal fails.
	res = d.Dispatch(context.Background(), AlgorithmTreeTraversal, 1500, false)
	assert.False(t, res.Success)
	assert.Equal(t, 2, d.Store().Len())

	// The iterative variant has no such limit.
	res = d.Dispatch(context.Background(), AlgorithmTreeTraversal, 1500, true)
	assert.True(t, res.Success)
}

func TestDispatch_PathfindingClampsGrid(t *testing.T) {
	d := newTestDispatcher()

	res := d.Dispatch(context.Background(), AlgorithmPathfinding, 5, false)
	require.True(t, res.Success, "error: %s", res.Error)
	path, ok := res.Value.([]engine.Cell)
	require.True(t, ok, "pathfinding value type = %T", res.Value)
	// 5x5 grid, (0,0) to (4,4): 8 moves plus the start cell.
	assert.Len(t, path, 9)

	// Requested depth far above the clamp still targets the 20x20 corner;
	// BFS handles it, and the grid never exceeds the configured maximum.
	res = d.Dispatch(context.Background(), AlgorithmPathfinding, 500, true)
	require.True(t, res.Success)
	path = res.Value.([]engine.Cell)
	require.NotEmpty(t, path)
	last := path[len(path)-1]
	assert.Equal(t, engine.Cell{X: 19, Y: 19}, last)
}

// =============================================================================
// Request Id / Counter Tests
// =============================================================================

func TestDispatch_RequestIDsMonotonic(t *testing.T) {
	d := newTestDispatcher()

	first := d.Dispatch(context.Background(), AlgorithmFibonacci, 5, true)
	second := d.Dispatch(context.Background(), AlgorithmFibonacci, 5, true)
	assert.Equal(t, uint64(1), first.RequestID)
	assert.Equal(t, uint64(2), second.RequestID)

	// Clear must not reset the sequence.
	d.ClearMetrics()
	third := d.Dispatch(context.Background(), AlgorithmFibonacci, 5, true)
	assert.Equal(t, uint64(3), third.RequestID)
}

func TestStats_CountsAndErrorRate(t *testing.T) {
	d := newTestDispatcher()

	// 3 successes, 1 failed-but-recorded (naive ceiling).
	for i := 0; i < 3; i++ {
		require.True(t, d.Dispatch(context.Background(), AlgorithmFibonacci, 10, true).Success)
	}
	require.False(t, d.Dispatch(context.Background(), AlgorithmFibonacci, 36, false).Success)

	stats := d.Stats()
	assert.Equal(t, 4, stats.TotalRequests)
	assert.Equal(t, 3, stats.SuccessfulRequests)
	assert.Equal(t, 1, stats.FailedRequests)
	assert.InDelta(t, 25.0, stats.ErrorRate, 1e-9)
	assert.Equal(t, uint64(4), stats.TotalDispatches)
	assert.Equal(t, uint64(1), stats.FailedDispatches)
}

func TestClearMetrics_KeepsCounters(t *testing.T) {
	d := newTestDispatcher()
	d.Dispatch(context.Background(), AlgorithmFibonacci, 10, true)
	d.Dispatch(context.Background(), AlgorithmFibonacci, -1, true)

	d.ClearMetrics()

	assert.Equal(t, 0, d.Store().Len())
	assert.Empty(t, d.Store().Recent(10))
	stats := d.Stats()
	assert.Equal(t, uint64(2), stats.TotalDispatches, "counters survive clear")
	assert.Equal(t, uint64(1), stats.FailedDispatches)
}

// =============================================================================
// Worker Gate Tests
// =============================================================================

func TestDispatch_NaiveWorkerGateCapsParallelism(t *testing.T) {
	// Two gate slots, far more concurrent naive calls than slots. Each call
	// is CPU-bound long enough that an unbounded dispatcher would overlap
	// them all.
	d := New(engine.NewEngine(), metrics.NewStore(),
		config.DispatcherConfig{MaxWorkers: 2}, nil)

	var wg sync.WaitGroup
	for i := 0; i < 16; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			res := d.Dispatch(context.Background(), AlgorithmFibonacci, 28, false)
			assert.True(t, res.Success, res.Error)
		}()
	}
	wg.Wait()

	assert.LessOrEqual(t, d.PeakInFlight(), int64(2),
		"naive calls must not overlap beyond the worker gate size")
	assert.Equal(t, int64(0), d.InFlight())
	assert.Equal(t, 16, d.Store().Len())
}

// =============================================================================
// Batch Tests
// =============================================================================

func TestDispatchBatch_OrderAndConcurrencyCap(t *testing.T) {
	d := newTestDispatcher()

	requests := make([]Request, 100)
	for i := range requests {
		requests[i] = Request{
			Algorithm: AlgorithmFibonacci,
			Depth:     i%40 + 1,
			Optimized: true,
		}
	}

	results := d.DispatchBatch(context.Background(), requests)
	require.Len(t, results, 100)

	for i, res := range results {
		require.True(t, res.Success, "request %d failed: %s", i, res.Error)
		assert.Equal(t, requests[i].Depth, res.RequestedDepth,
			"results must come back in submission order")
	}

	assert.LessOrEqual(t, d.PeakInFlight(), int64(50),
		"batch must never exceed 50 simultaneously in-flight engine calls")
	assert.Equal(t, int64(0), d.InFlight())
	assert.Equal(t, 100, d.Store().Len())
}

func TestDispatchBatch_RequestIDsFollowSubmissionOrder(t *testing.T) {
	d := newTestDispatcher()

	requests := make([]Request, 20)
	for i := range requests {
		requests[i] = Request{Algorithm: AlgorithmFibonacci, Depth: 5, Optimized: true}
	}
	results := d.DispatchBatch(context.Background(), requests)

	for i := 1; i < len(results); i++ {
		assert.Equal(t, results[i-1].RequestID+1, results[i].RequestID)
	}
}

func TestDispatchBatch_MixedOutcomes(t *testing.T) {
	d := newTestDispatcher()

	requests := []Request{
		{Algorithm: AlgorithmFibonacci, Depth: 10, Optimized: true},
		{Algorithm: AlgorithmFibonacci, Depth: 36, Optimized: false},
		{Algorithm: AlgorithmFibonacci, Depth: 20000, Optimized: false},
		{Algorithm: AlgorithmTreeTraversal, Depth: 50, Optimized: false},
	}
	results := d.DispatchBatch(context.Background(), requests)

	assert.True(t, results[0].Success)
	assert.False(t, results[1].Success)
	assert.False(t, results[2].Success)
	assert.True(t, results[3].Success)

	// Records: success, depth-exceeded, (no record for validation), success.
	assert.Equal(t, 3, d.Store().Len())
}

func TestDispatchBatch_Empty(t *testing.T) {
	d := newTestDispatcher()
	results := d.DispatchBatch(context.Background(), nil)
	assert.Empty(t, results)
}

func TestDispatchBatch_CancelledContext(t *testing.T) {
	d := newTestDispatcher()
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	results := d.DispatchBatch(ctx, []Request{
		{Algorithm: AlgorithmFibonacci, Depth: 10, Optimized: true},
	})
	require.Len(t, results, 1)
	assert.False(t, results[0].Success)
}

func TestDispatchBatch_CancelledAcquireCountsAsInternalError(t *testing.T) {
	obs := newUnregisteredMetrics()
	d := New(engine.NewEngine(), metrics.NewStore(), config.Default().Dispatcher, obs)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	results := d.DispatchBatch(ctx, []Request{
		{Algorithm: AlgorithmFibonacci, Depth: 10, Optimized: true},
	})
	require.Len(t, results, 1)
	assert.False(t, results[0].Success)

	// A request abandoned while waiting for a slot is charged to the same
	// error counter as the other dispatcher-internal failures.
	assert.Equal(t, 1.0,
		testutil.ToFloat64(obs.ErrorsTotal.WithLabelValues("internal")))
	assert.Equal(t, uint64(1), d.Stats().FailedDispatches)
}
