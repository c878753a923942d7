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
	"runtime/metrics"
)

// heapAllocsMetric is the cumulative bytes allocated to the heap since
// process start. Monotonic, so a before/after delta gives bytes allocated
// during a window.
const heapAllocsMetric = "/gc/heap/allocs:bytes"

// allocSession samples heap allocation around a single engine call.
//
// Go has no per-goroutine allocation tracing, so the signal is the
// process-wide cumulative allocation delta: a coarser proxy than true
// per-call peak tracking. Concurrent calls each hold their own session
// (sessions are never shared), but their windows overlap on the shared
// counter, so attribution under heavy concurrency is approximate. The
// delta is still a comparably meaningful memory signal for naive vs
// optimized comparisons.
type allocSession struct {
	start uint64
}

func startAllocSession() allocSession {
	return allocSession{start: readHeapAllocs()}
}

// AllocatedBytes returns bytes allocated since the session started.
func (s allocSession) AllocatedBytes() uint64 {
	cur := readHeapAllocs()
	if cur < s.start {
		return 0
	}
	return cur - s.start
}

func readHeapAllocs() uint64 {
	sample := []metrics.Sample{{Name: heapAllocsMetric}}
	metrics.Read(sample)
	if sample[0].Value.Kind() != metrics.KindUint64 {
		return 0
	}
	return sample[0].Value.Uint64()
}
