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
	"runtime"

	"github.com/gin-gonic/gin"

	"github.com/AleutianAI/recursionlab/services/recursion/dispatcher"
)

// SystemInfo handles GET /v1/system-info: runtime-level telemetry about
// the host process (the Go analog of the usual process inspection).
func SystemInfo(d *dispatcher.Dispatcher) gin.HandlerFunc {
	return func(c *gin.Context) {
		var mem runtime.MemStats
		runtime.ReadMemStats(&mem)

		c.JSON(http.StatusOK, gin.H{
			"system": gin.H{
				"cpu_count":  runtime.NumCPU(),
				"gomaxprocs": runtime.GOMAXPROCS(0),
			},
			"process": gin.H{
				"goroutine_count":  runtime.NumGoroutine(),
				"heap_alloc":       mem.HeapAlloc,
				"heap_sys":         mem.HeapSys,
				"total_alloc":      mem.TotalAlloc,
				"gc_cycles":        mem.NumGC,
				"dispatches_in_flight": d.InFlight(),
				"peak_in_flight":       d.PeakInFlight(),
			},
			"runtime": gin.H{
				"go_version": runtime.Version(),
				"go_os":      runtime.GOOS,
				"go_arch":    runtime.GOARCH,
			},
		})
	}
}
