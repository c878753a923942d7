// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

// Package engine provides the recursion engine: naive and optimized
// implementations of three classic recursive algorithms (Fibonacci, tree
// traversal, grid pathfinding).
//
// The naive variants are deliberately written as direct recursive descent to
// demonstrate stack depth and execution time blowup under load. Each naive
// variant carries its own depth ceiling and aborts with DepthExceededError
// rather than exhausting the goroutine stack.
//
// # Error Model
//
// All engine operations return explicit errors; recursion failures never
// panic. Callers distinguish failure classes with errors.Is:
//
//	_, err := eng.FibNaive(40)
//	if errors.Is(err, engine.ErrDepthExceeded) { ... }
//
// # Thread Safety
//
// All operations are safe for concurrent use. The only shared state is the
// Fibonacci memoization cache, which is mutex-guarded.
package engine

import (
	"errors"
	"fmt"
)

// Sentinel errors for engine operations.
var (
	// ErrInvalidInput is returned for arguments outside an algorithm's
	// domain (e.g. a negative Fibonacci index). Requests rejected with
	// this error never start executing.
	ErrInvalidInput = errors.New("invalid input")

	// ErrDepthExceeded is the class of all recursion-depth failures.
	// Concrete failures are DepthExceededError values that unwrap to
	// this sentinel.
	ErrDepthExceeded = errors.New("recursion depth exceeded")
)

// DepthExceededError reports that a naive recursive variant hit its
// configured safety ceiling. It unwraps to ErrDepthExceeded.
type DepthExceededError struct {
	// Op names the failing operation, e.g. "fibonacci_naive".
	Op string

	// Depth is the recursion depth (or requested argument, for the
	// pre-execution Fibonacci ceiling) at which the limit was hit.
	Depth int

	// Limit is the configured ceiling that was exceeded.
	Limit int
}

func (e *DepthExceededError) Error() string {
	return fmt.Sprintf("%s: recursion depth %d exceeds safe limit %d", e.Op, e.Depth, e.Limit)
}

// Unwrap lets errors.Is(err, ErrDepthExceeded) match.
func (e *DepthExceededError) Unwrap() error {
	return ErrDepthExceeded
}
