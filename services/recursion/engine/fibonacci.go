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
	"fmt"
	"math/big"
)

// =============================================================================
// Fibonacci Variants
// =============================================================================

// FibNaive computes F(n) by direct double recursion.
//
// Description:
//
//	Implements fib(n) = fib(n-1) + fib(n-2) with fib(0)=0, fib(1)=1, exactly
//	as the textbook definition, to demonstrate O(2^n) time cost. The depth of
//	each descent is tracked explicitly (never via runtime stack introspection)
//	and compared against the engine's max safe depth.
//
// Inputs:
//   - n: Fibonacci index. Must be >= 0 and <= the naive ceiling (default 35).
//
// Outputs:
//   - *big.Int: F(n). Values up to the ceiling fit in int64; big.Int keeps
//     the return type uniform across all Fibonacci variants.
//   - error: ErrInvalidInput for n < 0; DepthExceededError for n above the
//     ceiling or a descent past the max safe depth.
//
// Limitations:
//   - Arguments above the ceiling are rejected before execution: the
//     exponential blowup makes them impractical and risks stack exhaustion.
func (e *Engine) FibNaive(n int) (*big.Int, error) {
	if n < 0 {
		return nil, fmt.Errorf("fibonacci not defined for negative numbers: %w", ErrInvalidInput)
	}
	if n > e.naiveFibCeiling {
		return nil, &DepthExceededError{Op: "fibonacci_naive", Depth: n, Limit: e.naiveFibCeiling}
	}
	v, err := e.fibNaive(n, 0)
	if err != nil {
		return nil, err
	}
	return big.NewInt(v), nil
}

// fibNaive is the recursive descent. The ceiling on n is clamped to
// maxInt64FibIndex at construction, so the int64 accumulation cannot
// overflow.
func (e *Engine) fibNaive(n, depth int) (int64, error) {
	if depth > e.maxSafeDepth {
		return 0, &DepthExceededError{Op: "fibonacci_naive", Depth: depth, Limit: e.maxSafeDepth}
	}
	if n <= 1 {
		return int64(n), nil
	}
	a, err := e.fibNaive(n-1, depth+1)
	if err != nil {
		return 0, err
	}
	b, err := e.fibNaive(n-2, depth+1)
	if err != nil {
		return 0, err
	}
	return a + b, nil
}

// FibIterative computes F(n) in O(n) time and O(1) extra space.
//
// No recursion, no depth limit. Uses big.Int so large indices never silently
// overflow. Returns ErrInvalidInput for n < 0.
func (e *Engine) FibIterative(n int) (*big.Int, error) {
	if n < 0 {
		return nil, fmt.Errorf("fibonacci not defined for negative numbers: %w", ErrInvalidInput)
	}
	if n <= 1 {
		return big.NewInt(int64(n)), nil
	}
	a := big.NewInt(0)
	b := big.NewInt(1)
	for i := 2; i <= n; i++ {
		a.Add(a, b)
		a, b = b, a
	}
	return b, nil
}

// FibMemoized computes F(n) recursively with memoization.
//
// The memo cache is shared engine state: concurrent callers serialize on the
// engine mutex for the whole descent, and cached values persist until
// ClearCache. The depth guard only protects against misuse, since the memo
// makes each descent linear. Returns ErrInvalidInput for n < 0.
func (e *Engine) FibMemoized(n int) (*big.Int, error) {
	if n < 0 {
		return nil, fmt.Errorf("fibonacci not defined for negative numbers: %w", ErrInvalidInput)
	}
	e.mu.Lock()
	defer e.mu.Unlock()
	v, err := e.fibMemo(n, 0)
	if err != nil {
		return nil, err
	}
	// Copy so callers can't mutate cached values.
	return new(big.Int).Set(v), nil
}

// fibMemo runs under the engine mutex.
func (e *Engine) fibMemo(n, depth int) (*big.Int, error) {
	if depth > memoSafetyCeiling {
		return nil, &DepthExceededError{Op: "fibonacci_memoized", Depth: depth, Limit: memoSafetyCeiling}
	}
	if v, ok := e.memo[n]; ok {
		return v, nil
	}
	if n <= 1 {
		return big.NewInt(int64(n)), nil
	}
	a, err := e.fibMemo(n-1, depth+1)
	if err != nil {
		return nil, err
	}
	b, err := e.fibMemo(n-2, depth+1)
	if err != nil {
		return nil, err
	}
	v := new(big.Int).Add(a, b)
	e.memo[n] = v
	return v, nil
}
