// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

// Package datatypes provides request and response types for the recursion
// service HTTP and WebSocket surfaces.
package datatypes

import (
	"github.com/go-playground/validator/v10"

	"github.com/AleutianAI/recursionlab/services/recursion/dispatcher"
)

// MaxBatchRequests caps a single batch submission, enforced by the batch
// handler. Larger loads should be split client-side; the dispatcher still
// admits only 50 at a time.
const MaxBatchRequests = 500

// computeValidate is the validator instance for compute datatypes, used on
// the WebSocket path where gin binding does not apply.
var computeValidate *validator.Validate

func init() {
	computeValidate = validator.New()
}

// =============================================================================
// HTTP Requests
// =============================================================================

// ComputeRequest is the body of POST /v1/compute/:algorithm.
type ComputeRequest struct {
	// Depth is the algorithm argument: Fibonacci index, tree depth, or
	// requested grid size. The dispatcher rejects non-positive values.
	Depth int `json:"depth" binding:"required"`

	// Optimized selects the iterative/memoized variant. Defaults to true
	// when omitted, matching the single-request dispatch contract.
	Optimized *bool `json:"optimized"`
}

// IsOptimized resolves the default.
func (r *ComputeRequest) IsOptimized() bool {
	return r.Optimized == nil || *r.Optimized
}

// BatchItem is one member of a batch submission.
type BatchItem struct {
	Algorithm string `json:"algorithm" binding:"required" validate:"required"`
	Depth     int    `json:"depth" binding:"required" validate:"required"`
	Optimized *bool  `json:"optimized"`
}

// IsOptimized resolves the default.
func (r *BatchItem) IsOptimized() bool {
	return r.Optimized == nil || *r.Optimized
}

// BatchComputeRequest is the body of POST /v1/compute/batch.
type BatchComputeRequest struct {
	Requests []BatchItem `json:"requests" binding:"required,min=1,dive"`
}

// =============================================================================
// HTTP Responses
// =============================================================================

// ComputeResponse wraps a dispatch result with transport-level timing.
type ComputeResponse struct {
	dispatcher.Result

	// TotalProcessingTime is seconds spent in the handler, including
	// dispatch queueing, as opposed to engine execution time.
	TotalProcessingTime float64 `json:"total_processing_time"`

	// ServerTimestamp is the completion time in RFC 3339.
	ServerTimestamp string `json:"server_timestamp"`
}

// ErrorResponse is the generic failure body for malformed requests.
type ErrorResponse struct {
	Error string `json:"error"`
}

// =============================================================================
// WebSocket Frames
// =============================================================================

// WSComputeRequest is one computation request over the WebSocket.
type WSComputeRequest struct {
	Algorithm string `json:"algorithm" validate:"required"`
	Depth     int    `json:"depth" validate:"required"`
	Optimized *bool  `json:"optimized"`
}

// IsOptimized resolves the default.
func (r *WSComputeRequest) IsOptimized() bool {
	return r.Optimized == nil || *r.Optimized
}

// Validate checks the frame the way gin binding would for HTTP bodies.
func (r *WSComputeRequest) Validate() error {
	return computeValidate.Struct(r)
}

// WSProgress is a periodic progress notification.
type WSProgress struct {
	Type  string `json:"type"` // always "progress"
	Value int    `json:"value"`
	Stage string `json:"stage"`
}

// WSResult carries the final dispatch result.
type WSResult struct {
	Type string            `json:"type"` // always "result"
	Data dispatcher.Result `json:"data"`
}

// WSError reports a malformed or failed frame.
type WSError struct {
	Type    string `json:"type"` // always "error"
	Message string `json:"message"`
}

// WSSession announces the session id on connect.
type WSSession struct {
	Action    string `json:"action"` // always "session_created"
	SessionID string `json:"sessionId"`
}
