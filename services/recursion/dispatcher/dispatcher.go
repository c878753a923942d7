// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

// Package dispatcher accepts (algorithm, depth, optimized) requests,
// validates them, runs the recursion engine under bounded concurrency, and
// feeds the metric record store.
//
// # Ownership Model
//
// The Dispatcher does not own the engine or the record store; both are
// injected at construction so callers control their lifecycle (and tests
// can inspect them). The Dispatcher owns only its request/error counters,
// the request-id sequence, and the in-flight accounting.
//
// # Concurrency
//
// Any number of Dispatch calls may run in parallel. Naive (CPU-bound)
// engine executions pass through a worker gate of at most min(NumCPU, 4)
// slots so exponential recursion cannot monopolize the scheduler.
// DispatchBatch additionally caps simultaneously in-flight dispatches
// (default 50) with a counting semaphore; excess requests wait for a slot.
//
// # Error Model
//
// Every Dispatch returns a Result; failures never panic and never corrupt
// shared state. Requests rejected at validation never reach the engine and
// produce no metric record. Requests that reach the engine produce exactly
// one record, success or failure.
package dispatcher

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"runtime"
	"sync/atomic"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"golang.org/x/sync/semaphore"

	"github.com/AleutianAI/recursionlab/services/recursion/config"
	"github.com/AleutianAI/recursionlab/services/recursion/engine"
	"github.com/AleutianAI/recursionlab/services/recursion/metrics"
	"github.com/AleutianAI/recursionlab/services/recursion/observability"
)

var dispatchTracer = otel.Tracer("recursionlab.dispatcher")

// =============================================================================
// Algorithms
// =============================================================================

// Algorithm selects which engine routine a request runs.
type Algorithm string

const (
	AlgorithmFibonacci     Algorithm = "fibonacci"
	AlgorithmTreeTraversal Algorithm = "tree_traversal"
	AlgorithmPathfinding   Algorithm = "pathfinding"
)

// ParseAlgorithm maps a wire name to an Algorithm.
func ParseAlgorithm(s string) (Algorithm, error) {
	switch Algorithm(s) {
	case AlgorithmFibonacci, AlgorithmTreeTraversal, AlgorithmPathfinding:
		return Algorithm(s), nil
	}
	return "", fmt.Errorf("unknown algorithm %q: %w", s, engine.ErrInvalidInput)
}

// depthSensitive reports whether the unoptimized depth ceiling applies.
// Pathfinding is exempt: its grid size is clamped instead.
func (a Algorithm) depthSensitive() bool {
	return a == AlgorithmFibonacci || a == AlgorithmTreeTraversal
}

// =============================================================================
// Request / Result
// =============================================================================

// Request is one dispatch submission.
type Request struct {
	Algorithm Algorithm `json:"algorithm"`
	Depth     int       `json:"depth"`
	Optimized bool      `json:"optimized"`
}

// Result is the tagged outcome of one dispatch. Exactly one of Value or
// Error is meaningful, selected by Success.
type Result struct {
	Success bool `json:"success"`

	// Value is the algorithm result: *big.Int for fibonacci, []string for
	// tree traversal, []engine.Cell for pathfinding.
	Value any `json:"result,omitempty"`

	Error string `json:"error,omitempty"`

	// ExecutionTime is wall-clock seconds spent in the engine (zero for
	// requests rejected before execution).
	ExecutionTime float64 `json:"execution_time"`

	// MemoryPeak is bytes allocated during the call, measured by the
	// per-call allocation session. Zero on failure.
	MemoryPeak uint64 `json:"memory_peak,omitempty"`

	RequestedDepth int    `json:"requested_depth"`
	RequestID      uint64 `json:"request_id"`
}

// Stats combines the record-store aggregate with the dispatch counters.
type Stats struct {
	TotalRequests      int     `json:"total_requests"`
	SuccessfulRequests int     `json:"successful_requests"`
	FailedRequests     int     `json:"failed_requests"`
	ErrorRate          float64 `json:"error_rate"`
	AvgExecutionTime   float64 `json:"avg_execution_time"`
	MaxExecutionTime   float64 `json:"max_execution_time"`
	TotalDispatches    uint64  `json:"total_dispatches"`
	FailedDispatches   uint64  `json:"failed_dispatches"`
}

// =============================================================================
// Dispatcher
// =============================================================================

// Dispatcher routes requests into the engine. Construct with New.
type Dispatcher struct {
	engine *engine.Engine
	store  *metrics.Store
	cfg    config.DispatcherConfig
	obs    *observability.DispatchMetrics

	// workers gates naive (CPU-bound) engine execution.
	workers chan struct{}

	// sem caps simultaneously in-flight dispatches within DispatchBatch.
	sem *semaphore.Weighted

	requestID      atomic.Uint64
	totalRequests  atomic.Uint64
	failedRequests atomic.Uint64

	inFlight     atomic.Int64
	peakInFlight atomic.Int64
}

// New returns a Dispatcher over eng and store. Non-positive cfg limits fall
// back to defaults. obs may be nil (no Prometheus reporting).
func New(eng *engine.Engine, store *metrics.Store, cfg config.DispatcherConfig, obs *observability.DispatchMetrics) *Dispatcher {
	if cfg.MaxConcurrent <= 0 {
		cfg.MaxConcurrent = 50
	}
	if cfg.MaxWorkers <= 0 {
		cfg.MaxWorkers = min(runtime.NumCPU(), 4)
	}
	if cfg.UnoptimizedDepthCeiling <= 0 {
		cfg.UnoptimizedDepthCeiling = 10000
	}
	if cfg.MaxGridSize <= 0 {
		cfg.MaxGridSize = 20
	}
	return &Dispatcher{
		engine:  eng,
		store:   store,
		cfg:     cfg,
		obs:     obs,
		workers: make(chan struct{}, cfg.MaxWorkers),
		sem:     semaphore.NewWeighted(int64(cfg.MaxConcurrent)),
	}
}

// Dispatch validates, executes, measures, and records one request.
//
// The request id is assigned exactly once at entry, monotonically across
// the process lifetime (Clear never resets it). At most one execution
// attempt is made; no error kind is retried.
func (d *Dispatcher) Dispatch(ctx context.Context, alg Algorithm, depth int, optimized bool) Result {
	return d.dispatch(ctx, d.requestID.Add(1), alg, depth, optimized)
}

// dispatch runs one request under a pre-assigned id. DispatchBatch assigns
// ids for all members up front so id order always equals submission order,
// then calls here from its workers.
func (d *Dispatcher) dispatch(ctx context.Context, requestID uint64, alg Algorithm, depth int, optimized bool) Result {
	d.totalRequests.Add(1)

	ctx, span := dispatchTracer.Start(ctx, "dispatcher.Dispatch",
		trace.WithAttributes(
			attribute.String("algorithm", string(alg)),
			attribute.Int("depth", depth),
			attribute.Bool("optimized", optimized),
			attribute.Int64("request_id", int64(requestID)),
		),
	)
	defer span.End()

	slog.Info("dispatching request",
		"request_id", requestID,
		"algorithm", alg,
		"depth", depth,
		"optimized", optimized,
	)

	start := time.Now()

	// Pre-engine validation: rejected requests never produce a record.
	if depth <= 0 {
		return d.reject(span, requestID, depth, "depth must be positive")
	}
	if !optimized && alg.depthSensitive() && depth > d.cfg.UnoptimizedDepthCeiling {
		return d.reject(span, requestID, depth, "unoptimized recursion depth too high")
	}
	if _, err := ParseAlgorithm(string(alg)); err != nil {
		return d.reject(span, requestID, depth, err.Error())
	}

	// CPU-bound naive execution goes through the worker gate so it cannot
	// monopolize the scheduler.
	if !optimized {
		select {
		case d.workers <- struct{}{}:
			defer func() { <-d.workers }()
		case <-ctx.Done():
			d.failedRequests.Add(1)
			d.obs.ObserveError("internal")
			span.SetStatus(codes.Error, "cancelled before execution")
			return Result{
				Success:        false,
				Error:          fmt.Sprintf("dispatch cancelled before execution: %v", ctx.Err()),
				ExecutionTime:  time.Since(start).Seconds(),
				RequestedDepth: depth,
				RequestID:      requestID,
			}
		}
	}

	d.obs.IncActive()
	d.trackInFlight()
	session := startAllocSession()
	value, err := d.invoke(alg, depth, optimized)
	execTime := time.Since(start)
	peakMem := session.AllocatedBytes()
	d.inFlight.Add(-1)
	d.obs.DecActive()

	mode := "naive"
	if optimized {
		mode = "optimized"
	}

	if err == nil {
		d.store.Record(metrics.Record{
			Timestamp:       time.Now(),
			RequestedDepth:  depth,
			ExecutionTime:   execTime,
			PeakMemoryBytes: peakMem,
			Algorithm:       string(alg),
			Success:         true,
		})
		d.obs.ObserveRequest(string(alg), mode, "success", execTime.Seconds())
		span.SetStatus(codes.Ok, "")
		slog.Info("request succeeded",
			"request_id", requestID,
			"execution_time", execTime,
			"memory_peak", peakMem,
		)
		return Result{
			Success:        true,
			Value:          value,
			ExecutionTime:  execTime.Seconds(),
			MemoryPeak:     peakMem,
			RequestedDepth: depth,
			RequestID:      requestID,
		}
	}

	// The engine was reached, so the failure is charged a record.
	d.failedRequests.Add(1)
	span.RecordError(err)
	span.SetStatus(codes.Error, err.Error())

	kind := "internal"
	msg := "internal error during execution"
	switch {
	case errors.Is(err, engine.ErrDepthExceeded):
		kind = "depth_exceeded"
		msg = err.Error()
	case errors.Is(err, engine.ErrInvalidInput):
		kind = "invalid_input"
		msg = err.Error()
	}
	d.obs.ObserveError(kind)
	d.obs.ObserveRequest(string(alg), mode, "error", execTime.Seconds())
	d.store.Record(metrics.Record{
		Timestamp:      time.Now(),
		RequestedDepth: depth,
		ExecutionTime:  execTime,
		Algorithm:      string(alg),
		Success:        false,
	})
	slog.Error("request failed",
		"request_id", requestID,
		"algorithm", alg,
		"error", err,
	)
	return Result{
		Success:        false,
		Error:          msg,
		ExecutionTime:  execTime.Seconds(),
		RequestedDepth: depth,
		RequestID:      requestID,
	}
}

// reject finishes a request that failed pre-engine validation.
func (d *Dispatcher) reject(span trace.Span, requestID uint64, depth int, msg string) Result {
	d.failedRequests.Add(1)
	d.obs.ObserveError("invalid_input")
	span.SetStatus(codes.Error, msg)
	slog.Warn("request rejected", "request_id", requestID, "reason", msg)
	return Result{
		Success:        false,
		Error:          msg,
		RequestedDepth: depth,
		RequestID:      requestID,
	}
}

// invoke runs the engine routine for one validated request.
func (d *Dispatcher) invoke(alg Algorithm, depth int, optimized bool) (any, error) {
	switch alg {
	case AlgorithmFibonacci:
		if optimized {
			v, err := d.engine.FibIterative(depth)
			return v, err
		}
		v, err := d.engine.FibNaive(depth)
		return v, err

	case AlgorithmTreeTraversal:
		tree := engine.GenerateTree(depth)
		if optimized {
			return d.engine.TraverseIterative(tree), nil
		}
		v, err := d.engine.TraverseNaive(tree)
		return v, err

	case AlgorithmPathfinding:
		// Grid size and target are clamped regardless of requested depth.
		size := min(depth, d.cfg.MaxGridSize)
		grid := engine.GenerateGrid(size)
		target := engine.Cell{X: size - 1, Y: size - 1}
		if optimized {
			return d.engine.FindPathBFS(grid, engine.Cell{}, target), nil
		}
		v, err := d.engine.FindPathNaive(grid, engine.Cell{}, target)
		return v, err
	}
	return nil, fmt.Errorf("unknown algorithm %q: %w", alg, engine.ErrInvalidInput)
}

// trackInFlight bumps the in-flight counter and folds the new value into
// the high-water mark.
func (d *Dispatcher) trackInFlight() {
	cur := d.inFlight.Add(1)
	for {
		peak := d.peakInFlight.Load()
		if cur <= peak || d.peakInFlight.CompareAndSwap(peak, cur) {
			return
		}
	}
}

// InFlight reports dispatches currently executing in the engine.
func (d *Dispatcher) InFlight() int64 {
	return d.inFlight.Load()
}

// PeakInFlight reports the high-water mark of simultaneous engine
// executions over the process lifetime.
func (d *Dispatcher) PeakInFlight() int64 {
	return d.peakInFlight.Load()
}

// Stats combines the store aggregate with the dispatch counters.
func (d *Dispatcher) Stats() Stats {
	agg := d.store.Aggregate()
	return Stats{
		TotalRequests:      agg.TotalRecords,
		SuccessfulRequests: agg.SuccessfulRecords,
		FailedRequests:     agg.FailedRecords,
		ErrorRate:          agg.ErrorRate,
		AvgExecutionTime:   agg.AvgExecutionTime.Seconds(),
		MaxExecutionTime:   agg.MaxExecutionTime.Seconds(),
		TotalDispatches:    d.totalRequests.Load(),
		FailedDispatches:   d.failedRequests.Load(),
	}
}

// Store exposes the injected record store for read paths.
func (d *Dispatcher) Store() *metrics.Store {
	return d.store
}

// ClearMetrics empties the record store and the engine memoization cache.
// Dispatch counters and request-id sequencing are deliberately untouched.
func (d *Dispatcher) ClearMetrics() {
	d.store.Clear()
	d.engine.ClearCache()
	slog.Info("metrics cleared")
}
