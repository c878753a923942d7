// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

// Package handlers provides gin handlers for the recursion service API.
package handlers

import (
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/otel"

	"github.com/AleutianAI/recursionlab/services/recursion/datatypes"
	"github.com/AleutianAI/recursionlab/services/recursion/dispatcher"
)

var handlerTracer = otel.Tracer("recursionlab.handlers")

// Compute handles POST /v1/compute/:algorithm.
//
// The algorithm comes from the path, depth and optimized from the JSON
// body. Dispatch failures (invalid depth, depth exceeded) come back as a
// 200 with success=false, mirroring the dispatch contract; only a
// malformed body or unknown algorithm is a 400.
func Compute(d *dispatcher.Dispatcher) gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx, span := handlerTracer.Start(c.Request.Context(), "handlers.Compute")
		defer span.End()

		alg, err := dispatcher.ParseAlgorithm(c.Param("algorithm"))
		if err != nil {
			c.JSON(http.StatusBadRequest, datatypes.ErrorResponse{Error: err.Error()})
			return
		}

		var req datatypes.ComputeRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			slog.Warn("malformed compute request", "error", err)
			c.JSON(http.StatusBadRequest, datatypes.ErrorResponse{Error: err.Error()})
			return
		}

		start := time.Now()
		result := d.Dispatch(ctx, alg, req.Depth, req.IsOptimized())

		c.JSON(http.StatusOK, datatypes.ComputeResponse{
			Result:              result,
			TotalProcessingTime: time.Since(start).Seconds(),
			ServerTimestamp:     time.Now().Format(time.RFC3339),
		})
	}
}

// ComputeBatch handles POST /v1/compute/batch.
//
// The whole batch is dispatched under the admission cap and the response
// preserves submission order. The call blocks until every member has
// completed; there is no partial delivery.
func ComputeBatch(d *dispatcher.Dispatcher) gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx, span := handlerTracer.Start(c.Request.Context(), "handlers.ComputeBatch")
		defer span.End()

		var req datatypes.BatchComputeRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			slog.Warn("malformed batch request", "error", err)
			c.JSON(http.StatusBadRequest, datatypes.ErrorResponse{Error: err.Error()})
			return
		}
		if len(req.Requests) > datatypes.MaxBatchRequests {
			c.JSON(http.StatusBadRequest, datatypes.ErrorResponse{
				Error: fmt.Sprintf("batch size %d exceeds the maximum of %d",
					len(req.Requests), datatypes.MaxBatchRequests),
			})
			return
		}

		requests := make([]dispatcher.Request, len(req.Requests))
		for i, item := range req.Requests {
			alg, err := dispatcher.ParseAlgorithm(item.Algorithm)
			if err != nil {
				c.JSON(http.StatusBadRequest, datatypes.ErrorResponse{Error: err.Error()})
				return
			}
			requests[i] = dispatcher.Request{
				Algorithm: alg,
				Depth:     item.Depth,
				Optimized: item.IsOptimized(),
			}
		}

		results := d.DispatchBatch(ctx, requests)
		c.JSON(http.StatusOK, gin.H{"results": results})
	}
}
