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
	"fmt"
	"log/slog"

	"golang.org/x/sync/errgroup"
)

// DispatchBatch dispatches requests concurrently under the admission
// semaphore (default 50 simultaneously in-flight); excess requests wait
// for a slot to free before starting. The call returns once every request
// has completed, with results in submission order regardless of
// completion order. There is no partial-result delivery: consumers that
// need incremental results should call Dispatch per item.
func (d *Dispatcher) DispatchBatch(ctx context.Context, requests []Request) []Result {
	results := make([]Result, len(requests))
	if len(requests) == 0 {
		return results
	}

	d.obs.ObserveBatch(len(requests))
	slog.Info("dispatching batch", "size", len(requests))

	// Ids are assigned before any worker starts: id order must equal
	// submission order even though execution order depends on admission.
	ids := make([]uint64, len(requests))
	for i := range requests {
		ids[i] = d.requestID.Add(1)
	}

	g, ctx := errgroup.WithContext(ctx)
	for i, req := range requests {
		i, req := i, req
		g.Go(func() error {
			if err := d.sem.Acquire(ctx, 1); err != nil {
				d.totalRequests.Add(1)
				d.failedRequests.Add(1)
				d.obs.ObserveError("internal")
				results[i] = Result{
					Success:        false,
					Error:          fmt.Sprintf("batch cancelled while waiting for a slot: %v", err),
					RequestedDepth: req.Depth,
					RequestID:      ids[i],
				}
				return nil
			}
			defer d.sem.Release(1)
			results[i] = d.dispatch(ctx, ids[i], req.Algorithm, req.Depth, req.Optimized)
			return nil
		})
	}
	// Workers never return errors; Wait is just the completion barrier.
	_ = g.Wait()
	return results
}
