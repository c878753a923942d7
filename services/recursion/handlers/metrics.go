// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/AleutianAI/recursionlab/services/recursion/dispatcher"
)

// recentMetricsWindow is how many records GET /v1/metrics returns.
const recentMetricsWindow = 100

// GetMetrics handles GET /v1/metrics: the most recent per-request records
// plus the total stored count.
func GetMetrics(d *dispatcher.Dispatcher) gin.HandlerFunc {
	return func(c *gin.Context) {
		store := d.Store()
		c.JSON(http.StatusOK, gin.H{
			"recursion_metrics": store.Recent(recentMetricsWindow),
			"total_requests":    store.Len(),
		})
	}
}

// GetStats handles GET /v1/stats: aggregate statistics over the record
// store combined with the dispatch counters.
func GetStats(d *dispatcher.Dispatcher) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.JSON(http.StatusOK, d.Stats())
	}
}

// ClearMetrics handles POST /v1/metrics/clear: empties the record store
// and the engine memoization cache. Dispatch counters and request-id
// sequencing are untouched.
func ClearMetrics(d *dispatcher.Dispatcher) gin.HandlerFunc {
	return func(c *gin.Context) {
		d.ClearMetrics()
		c.JSON(http.StatusOK, gin.H{"message": "Metrics cleared"})
	}
}
