// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

package engine

import (
	"math/big"
	"sync"
)

// =============================================================================
// Depth Ceilings
// =============================================================================

const (
	// stackSafetyMargin is subtracted from the configured stack budget so
	// the engine aborts before the runtime has to grow the stack into
	// pathological territory.
	stackSafetyMargin = 50

	// DefaultStackBudget is the assumed safe number of recursive frames.
	// Go goroutine stacks grow dynamically, so this is a policy limit for
	// demonstration parity, not a hard platform constant.
	DefaultStackBudget = 10000

	// DefaultMaxSafeDepth is the default recursion guard for the naive
	// Fibonacci descent: stack budget minus the safety margin.
	DefaultMaxSafeDepth = DefaultStackBudget - stackSafetyMargin

	// DefaultNaiveFibCeiling rejects naive Fibonacci arguments before
	// execution. Beyond n=35 the exponential blowup makes the naive
	// variant impractical.
	DefaultNaiveFibCeiling = 35

	// DefaultTraversalCeiling bounds naive tree traversal depth. This
	// exists purely to demonstrate stack-overflow risk.
	DefaultTraversalCeiling = 1000

	// DefaultPathfindingCeiling bounds naive pathfinding recursion depth.
	DefaultPathfindingCeiling = 1000

	// memoSafetyCeiling bounds the memoized Fibonacci descent. The memo
	// makes the recursion linear, so this only guards against misuse.
	memoSafetyCeiling = 1000

	// maxInt64FibIndex is the largest n for which F(n) fits in int64
	// (F(92) = 7540113804746346429). The naive descent accumulates in
	// int64, so its ceiling must never exceed this.
	maxInt64FibIndex = 92
)

// =============================================================================
// Engine
// =============================================================================

// Engine executes the naive and optimized algorithm variants.
//
// The zero value is not usable; construct with NewEngine. The Engine owns
// exactly one piece of mutable state, the Fibonacci memoization cache, which
// is guarded by an internal mutex and cleared via ClearCache. Everything
// else is pure computation over caller-owned inputs.
type Engine struct {
	maxSafeDepth     int
	naiveFibCeiling  int
	traversalCeiling int
	pathCeiling      int

	mu   sync.Mutex
	memo map[int]*big.Int
}

// Option configures an Engine at construction.
type Option func(*Engine)

// WithMaxSafeDepth overrides the naive Fibonacci recursion guard.
func WithMaxSafeDepth(depth int) Option {
	return func(e *Engine) {
		if depth > 0 {
			e.maxSafeDepth = depth
		}
	}
}

// WithNaiveFibCeiling overrides the pre-execution naive Fibonacci ceiling.
// Values above 92 are clamped: the naive descent accumulates in int64 and
// F(93) no longer fits.
func WithNaiveFibCeiling(n int) Option {
	return func(e *Engine) {
		if n <= 0 {
			return
		}
		if n > maxInt64FibIndex {
			n = maxInt64FibIndex
		}
		e.naiveFibCeiling = n
	}
}

// WithTraversalCeiling overrides the naive traversal depth ceiling.
func WithTraversalCeiling(depth int) Option {
	return func(e *Engine) {
		if depth > 0 {
			e.traversalCeiling = depth
		}
	}
}

// WithPathfindingCeiling overrides the naive pathfinding depth ceiling.
func WithPathfindingCeiling(depth int) Option {
	return func(e *Engine) {
		if depth > 0 {
			e.pathCeiling = depth
		}
	}
}

// NewEngine returns an Engine with default ceilings, adjusted by opts.
func NewEngine(opts ...Option) *Engine {
	e := &Engine{
		maxSafeDepth:     DefaultMaxSafeDepth,
		naiveFibCeiling:  DefaultNaiveFibCeiling,
		traversalCeiling: DefaultTraversalCeiling,
		pathCeiling:      DefaultPathfindingCeiling,
		memo:             make(map[int]*big.Int),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// ClearCache empties the Fibonacci memoization cache. Metrics storage is
// owned by the caller (the engine only feeds it) and is not touched here.
func (e *Engine) ClearCache() {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.memo = make(map[int]*big.Int)
}

// CacheSize reports the number of memoized Fibonacci entries.
func (e *Engine) CacheSize() int {
	e.mu.Lock()
	defer e.mu.Unlock()
	return len(e.memo)
}
