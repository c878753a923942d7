// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

package routes

import (
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/AleutianAI/recursionlab/services/recursion/dispatcher"
	"github.com/AleutianAI/recursionlab/services/recursion/handlers"
)

func SetupRoutes(router *gin.Engine, d *dispatcher.Dispatcher) {
	router.GET("/health", handlers.HealthCheck)
	router.GET("/", handlers.Root)
	router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	// API version 1 group
	v1 := router.Group("/v1")
	{
		v1.POST("/compute/:algorithm", handlers.Compute(d))
		v1.POST("/compute/batch", handlers.ComputeBatch(d))
		v1.GET("/compute/ws", handlers.ComputeWebSocket(d))
		v1.GET("/metrics", handlers.GetMetrics(d))
		v1.GET("/stats", handlers.GetStats(d))
		v1.POST("/metrics/clear", handlers.ClearMetrics(d))
		v1.GET("/system-info", handlers.SystemInfo(d))
	}
}
