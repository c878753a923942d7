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
)

// HealthCheck handles GET /health.
func HealthCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

// Root handles GET /: a small index of the API surface.
func Root(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"message": "Recursive Algorithms API",
		"endpoints": []string{
			"/v1/compute/{algorithm}",
			"/v1/compute/batch",
			"/v1/compute/ws",
			"/v1/metrics",
			"/v1/stats",
			"/v1/system-info",
		},
	})
}
