// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

package main

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"
	"golang.org/x/time/rate"

	"github.com/AleutianAI/recursionlab/pkg/logging"
)

// requestTimeout bounds a single compute request. Naive depths near the
// ceiling can run for several seconds under load.
const requestTimeout = 30 * time.Second

// errorKeyLimit truncates error strings when grouping failures, so one
// pathological message doesn't blow up the report.
const errorKeyLimit = 100

// StressConfig describes one load test run.
type StressConfig struct {
	BaseURL     string
	Requests    int
	Algorithm   string
	DepthMin    int
	DepthMax    int
	Optimized   bool
	Concurrency int

	// RPS limits the request rate. Zero means unlimited.
	RPS float64
}

// requestOutcome is the client-side view of one compute call.
type requestOutcome struct {
	Success       bool
	ExecutionTime float64
	Error         string
	Depth         int
}

// Analysis summarizes a completed stress run.
type Analysis struct {
	TotalRequests     int            `json:"total_requests"`
	Successful        int            `json:"successful"`
	Failed            int            `json:"failed"`
	SuccessRate       float64        `json:"success_rate"`
	TotalTime         float64        `json:"total_time"`
	RequestsPerSecond float64        `json:"requests_per_second"`
	AvgExecutionTime  float64        `json:"avg_execution_time"`
	MaxExecutionTime  float64        `json:"max_execution_time"`
	MinExecutionTime  float64        `json:"min_execution_time"`
	CommonErrors      map[string]int `json:"common_errors"`
}

// StressTester drives concurrent load against the compute endpoints.
type StressTester struct {
	client *http.Client
	logger *logging.Logger
}

func NewStressTester(logger *logging.Logger) *StressTester {
	return &StressTester{
		client: &http.Client{Timeout: requestTimeout},
		logger: logger,
	}
}

// Run sends cfg.Requests compute calls, sweeping depth cyclically over
// [DepthMin, DepthMax], and returns the aggregate analysis. Outcomes
// keep their submission index, so per-request results line up with the
// depth sweep.
func (s *StressTester) Run(ctx context.Context, cfg StressConfig) (*Analysis, error) {
	if cfg.Requests <= 0 {
		return nil, fmt.Errorf("requests must be positive, got %d", cfg.Requests)
	}
	if cfg.DepthMax < cfg.DepthMin {
		return nil, fmt.Errorf("depth range [%d, %d] is inverted", cfg.DepthMin, cfg.DepthMax)
	}
	if cfg.Concurrency <= 0 {
		cfg.Concurrency = 50
	}

	limiter := rate.NewLimiter(rate.Inf, 1)
	if cfg.RPS > 0 {
		limiter = rate.NewLimiter(rate.Limit(cfg.RPS), 1)
	}

	runID := uuid.New().String()
	s.logger.Info("starting stress run",
		"run_id", runID,
		"requests", cfg.Requests,
		"algorithm", cfg.Algorithm,
		"optimized", cfg.Optimized,
		"concurrency", cfg.Concurrency,
	)

	outcomes := make([]requestOutcome, cfg.Requests)
	depthSpan := cfg.DepthMax - cfg.DepthMin + 1

	start := time.Now()
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(cfg.Concurrency)

	for i := 0; i < cfg.Requests; i++ {
		i := i
		g.Go(func() error {
			if err := limiter.Wait(gctx); err != nil {
				outcomes[i] = requestOutcome{Error: err.Error()}
				return nil
			}
			depth := cfg.DepthMin + i%depthSpan
			outcomes[i] = s.makeRequest(gctx, cfg, depth)
			return nil
		})
	}
	_ = g.Wait()
	totalTime := time.Since(start).Seconds()

	analysis := analyze(outcomes, totalTime)
	s.logger.Info("stress run finished",
		"run_id", runID,
		"successful", analysis.Successful,
		"failed", analysis.Failed,
		"rps", analysis.RequestsPerSecond,
	)
	return analysis, nil
}

func (s *StressTester) makeRequest(ctx context.Context, cfg StressConfig, depth int) requestOutcome {
	outcome := requestOutcome{Depth: depth}
	start := time.Now()

	body, _ := json.Marshal(map[string]any{
		"depth":     depth,
		"optimized": cfg.Optimized,
	})
	url := fmt.Sprintf("%s/v1/compute/%s", strings.TrimRight(cfg.BaseURL, "/"), cfg.Algorithm)

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		outcome.Error = err.Error()
		outcome.ExecutionTime = time.Since(start).Seconds()
		return outcome
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := s.client.Do(req)
	if err != nil {
		outcome.Error = err.Error()
		outcome.ExecutionTime = time.Since(start).Seconds()
		return outcome
	}
	defer resp.Body.Close()

	var parsed struct {
		Success bool   `json:"success"`
		Error   string `json:"error"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&parsed); err != nil {
		outcome.Error = fmt.Sprintf("decode response: %v", err)
		outcome.ExecutionTime = time.Since(start).Seconds()
		return outcome
	}

	outcome.ExecutionTime = time.Since(start).Seconds()
	outcome.Success = parsed.Success
	if !parsed.Success {
		outcome.Error = parsed.Error
		if outcome.Error == "" {
			outcome.Error = fmt.Sprintf("HTTP %d", resp.StatusCode)
		}
	}
	return outcome
}

func analyze(outcomes []requestOutcome, totalTime float64) *Analysis {
	analysis := &Analysis{
		TotalRequests: len(outcomes),
		TotalTime:     totalTime,
		CommonErrors:  make(map[string]int),
	}
	if totalTime > 0 {
		analysis.RequestsPerSecond = float64(len(outcomes)) / totalTime
	}

	errorCounts := make(map[string]int)
	var sum float64
	for _, o := range outcomes {
		if !o.Success {
			analysis.Failed++
			key := o.Error
			if len(key) > errorKeyLimit {
				key = key[:errorKeyLimit]
			}
			errorCounts[key]++
			continue
		}
		analysis.Successful++
		sum += o.ExecutionTime
		if o.ExecutionTime > analysis.MaxExecutionTime {
			analysis.MaxExecutionTime = o.ExecutionTime
		}
		if analysis.MinExecutionTime == 0 || o.ExecutionTime < analysis.MinExecutionTime {
			analysis.MinExecutionTime = o.ExecutionTime
		}
	}
	if analysis.Successful > 0 {
		analysis.AvgExecutionTime = sum / float64(analysis.Successful)
	}
	if analysis.TotalRequests > 0 {
		analysis.SuccessRate = float64(analysis.Successful) / float64(analysis.TotalRequests) * 100
	}

	analysis.CommonErrors = topErrors(errorCounts, 5)
	return analysis
}

// topErrors keeps the n most frequent error strings.
func topErrors(counts map[string]int, n int) map[string]int {
	type kv struct {
		key   string
		count int
	}
	sorted := make([]kv, 0, len(counts))
	for k, c := range counts {
		sorted = append(sorted, kv{k, c})
	}
	sort.Slice(sorted, func(i, j int) bool {
		if sorted[i].count != sorted[j].count {
			return sorted[i].count > sorted[j].count
		}
		return sorted[i].key < sorted[j].key
	})
	if len(sorted) > n {
		sorted = sorted[:n]
	}

	top := make(map[string]int, len(sorted))
	for _, e := range sorted {
		top[e.key] = e.count
	}
	return top
}

func printAnalysis(w io.Writer, a *Analysis) {
	banner := strings.Repeat("=", 60)
	fmt.Fprintln(w, banner)
	fmt.Fprintln(w, "STRESS TEST RESULTS")
	fmt.Fprintln(w, banner)
	fmt.Fprintf(w, "Total Requests: %d\n", a.TotalRequests)
	fmt.Fprintf(w, "Successful: %d\n", a.Successful)
	fmt.Fprintf(w, "Failed: %d\n", a.Failed)
	fmt.Fprintf(w, "Success Rate: %.2f%%\n", a.SuccessRate)
	fmt.Fprintf(w, "Total Time: %.2fs\n", a.TotalTime)
	fmt.Fprintf(w, "Requests/Second: %.2f\n", a.RequestsPerSecond)
	fmt.Fprintf(w, "Avg Execution Time: %.4fs\n", a.AvgExecutionTime)
	fmt.Fprintf(w, "Max Execution Time: %.4fs\n", a.MaxExecutionTime)
	fmt.Fprintf(w, "Min Execution Time: %.4fs\n", a.MinExecutionTime)
	if len(a.CommonErrors) > 0 {
		fmt.Fprintf(w, "Top Errors: %v\n", a.CommonErrors)
	}
	fmt.Fprintln(w, banner)
}

func runStress(cmd *cobra.Command, args []string) {
	logger := logging.Default()
	tester := NewStressTester(logger)

	analysis, err := tester.Run(cmd.Context(), StressConfig{
		BaseURL:     serverURL,
		Requests:    stressRequests,
		Algorithm:   stressAlgorithm,
		DepthMin:    stressDepthMin,
		DepthMax:    stressDepthMax,
		Optimized:   stressOptimized,
		Concurrency: stressConcurrency,
		RPS:         stressRPS,
	})
	if err != nil {
		logger.Error("stress run failed", "error", err)
		os.Exit(1)
	}
	printAnalysis(os.Stdout, analysis)
}
