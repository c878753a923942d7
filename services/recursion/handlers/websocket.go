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
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/gorilla/websocket"

	"github.com/AleutianAI/recursionlab/services/recursion/datatypes"
	"github.com/AleutianAI/recursionlab/services/recursion/dispatcher"
)

// Progress notification cadence for WebSocket computations.
const (
	progressSteps    = 5
	progressInterval = 300 * time.Millisecond
)

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool {
		return true
	},
}

func sendJSON(ws *websocket.Conn, v any) error {
	err := ws.WriteJSON(v)
	if err != nil {
		slog.Warn("failed to write WebSocket JSON", "error", err)
	}
	return err
}

// ComputeWebSocket handles GET /v1/compute/ws.
//
// Each connection gets a session id on connect, then loops: read one
// compute request, emit periodic progress frames, dispatch, emit the
// result frame. Malformed frames get an error frame and the loop
// continues; a read failure ends the session.
func ComputeWebSocket(d *dispatcher.Dispatcher) gin.HandlerFunc {
	return func(c *gin.Context) {
		ws, err := upgrader.Upgrade(c.Writer, c.Request, nil)
		if err != nil {
			slog.Error("failed to upgrade the websocket", "error", err)
			return
		}
		defer ws.Close()

		sessionID := uuid.New().String()
		slog.Info("websocket session started", "sessionID", sessionID)

		if err := sendJSON(ws, datatypes.WSSession{
			Action:    "session_created",
			SessionID: sessionID,
		}); err != nil {
			return
		}

		for {
			var req datatypes.WSComputeRequest
			if err := ws.ReadJSON(&req); err != nil {
				slog.Info("websocket client disconnected", "sessionID", sessionID, "error", err.Error())
				return
			}

			if err := req.Validate(); err != nil {
				if sendJSON(ws, datatypes.WSError{
					Type:    "error",
					Message: "missing algorithm or depth",
				}) != nil {
					return
				}
				continue
			}

			alg, err := dispatcher.ParseAlgorithm(req.Algorithm)
			if err != nil {
				if sendJSON(ws, datatypes.WSError{Type: "error", Message: err.Error()}) != nil {
					return
				}
				continue
			}

			// Periodic status ticks belong to this transport layer; the
			// dispatcher itself has no incremental delivery.
			for i := 0; i < progressSteps; i++ {
				if sendJSON(ws, datatypes.WSProgress{
					Type:  "progress",
					Value: i * 100 / progressSteps,
					Stage: fmt.Sprintf("Processing %d/%d", i+1, progressSteps),
				}) != nil {
					return
				}
				time.Sleep(progressInterval)
			}

			result := d.Dispatch(c.Request.Context(), alg, req.Depth, req.IsOptimized())
			if sendJSON(ws, datatypes.WSResult{Type: "result", Data: result}) != nil {
				return
			}
		}
	}
}
