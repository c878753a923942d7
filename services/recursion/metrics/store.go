// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

// Package metrics provides the per-request metric record store for the
// recursion service.
//
// The store is an append-only in-memory sequence: one Record per request
// that reached the engine, inserted in completion order. It exists so the
// demo can compare naive and optimized runs without requiring external
// infrastructure; aggregate Prometheus metrics live in the observability
// package instead.
//
// # Thread Safety
//
// Store is safe for concurrent use. Appends, clears, and reads are mutually
// exclusive at the granularity of a single operation: no reader ever
// observes a half-applied append or clear.
package metrics

import (
	"sync"
	"time"
)

// Record captures the outcome of one dispatched request. Records are
// immutable after creation.
type Record struct {
	Timestamp       time.Time     `json:"timestamp"`
	RequestedDepth  int           `json:"requested_depth"`
	ExecutionTime   time.Duration `json:"execution_time"`
	PeakMemoryBytes uint64        `json:"peak_memory_bytes"`
	Algorithm       string        `json:"algorithm"`
	Success         bool          `json:"success"`
}

// Aggregate holds derived statistics over a store snapshot. Execution-time
// figures cover successful records only.
type Aggregate struct {
	TotalRecords      int           `json:"total_records"`
	SuccessfulRecords int           `json:"successful_records"`
	FailedRecords     int           `json:"failed_records"`
	ErrorRate         float64       `json:"error_rate"`
	AvgExecutionTime  time.Duration `json:"avg_execution_time"`
	MaxExecutionTime  time.Duration `json:"max_execution_time"`
}

// Store is the process-wide metric record sequence. Construct with NewStore.
type Store struct {
	mu      sync.RWMutex
	records []Record
}

// NewStore returns an empty Store.
func NewStore() *Store {
	return &Store{records: make([]Record, 0)}
}

// Record appends rec. Insertion order is completion order.
func (s *Store) Record(rec Record) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.records = append(s.records, rec)
}

// Recent returns the last n records in completion order, newest-last, or
// fewer if the store holds less. The result is a copy.
func (s *Store) Recent(n int) []Record {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if n < 0 {
		n = 0
	}
	if n > len(s.records) {
		n = len(s.records)
	}
	out := make([]Record, n)
	copy(out, s.records[len(s.records)-n:])
	return out
}

// Len reports the number of stored records.
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.records)
}

// Clear atomically empties the store.
func (s *Store) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.records = s.records[:0]
}

// Aggregate derives statistics over a consistent snapshot of the store.
func (s *Store) Aggregate() Aggregate {
	s.mu.RLock()
	defer s.mu.RUnlock()

	agg := Aggregate{TotalRecords: len(s.records)}
	var totalExec time.Duration
	for _, rec := range s.records {
		if !rec.Success {
			agg.FailedRecords++
			continue
		}
		agg.SuccessfulRecords++
		totalExec += rec.ExecutionTime
		if rec.ExecutionTime > agg.MaxExecutionTime {
			agg.MaxExecutionTime = rec.ExecutionTime
		}
	}
	if agg.TotalRecords > 0 {
		agg.ErrorRate = float64(agg.FailedRecords) / float64(agg.TotalRecords) * 100
	}
	if agg.SuccessfulRecords > 0 {
		agg.AvgExecutionTime = totalExec / time.Duration(agg.SuccessfulRecords)
	}
	return agg
}
