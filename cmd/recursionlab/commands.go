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
	"github.com/spf13/cobra"
)

// --- Global Command Variables ---
var (
	serverURL string

	stressRequests    int
	stressAlgorithm   string
	stressDepthMin    int
	stressDepthMax    int
	stressOptimized   bool
	stressConcurrency int
	stressRPS         float64

	rootCmd = &cobra.Command{
		Use:   "recursionlab",
		Short: "A cli to exercise and inspect the recursion service",
		Long: `Recursionlab is a tool for driving load against the recursion
				service and inspecting its execution metrics.`,
	}

	// --- Load generation ---
	stressCmd = &cobra.Command{
		Use:   "stress",
		Short: "Run a load test against the compute endpoints",
		Run:   runStress, // Defined in stress.go
	}

	// --- Service inspection ---
	healthCmd = &cobra.Command{
		Use:   "health",
		Short: "Check whether the recursion service is reachable",
		Run:   runHealth, // Defined in inspect.go
	}
	statsCmd = &cobra.Command{
		Use:   "stats",
		Short: "Print aggregate execution statistics from the service",
		Run:   runStats, // Defined in inspect.go
	}
	clearMetricsCmd = &cobra.Command{
		Use:   "clear-metrics",
		Short: "Clear the service's stored execution records",
		Run:   runClearMetrics, // Defined in inspect.go
	}
)

func init() {
	rootCmd.PersistentFlags().StringVar(&serverURL, "server",
		"http://localhost:12280", "Base URL of the recursion service")

	stressCmd.Flags().IntVar(&stressRequests, "requests", 1000, "Number of requests to send")
	stressCmd.Flags().StringVar(&stressAlgorithm, "algorithm", "fibonacci",
		"Algorithm to exercise (fibonacci, tree_traversal, pathfinding)")
	stressCmd.Flags().IntVar(&stressDepthMin, "depth-min", 30, "Lower bound of the depth sweep")
	stressCmd.Flags().IntVar(&stressDepthMax, "depth-max", 35, "Upper bound of the depth sweep")
	stressCmd.Flags().BoolVar(&stressOptimized, "optimized", false, "Request the optimized variant")
	stressCmd.Flags().IntVar(&stressConcurrency, "concurrency", 50, "Maximum in-flight requests")
	stressCmd.Flags().Float64Var(&stressRPS, "rps", 0, "Request rate limit (0 = unlimited)")

	rootCmd.AddCommand(stressCmd)
	rootCmd.AddCommand(healthCmd)
	rootCmd.AddCommand(statsCmd)
	rootCmd.AddCommand(clearMetricsCmd)
}
