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
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/AleutianAI/recursionlab/pkg/logging"
)

var inspectClient = &http.Client{Timeout: 10 * time.Second}

func serviceURL(path string) string {
	return strings.TrimRight(serverURL, "/") + path
}

func runHealth(cmd *cobra.Command, args []string) {
	logger := logging.Default()

	resp, err := inspectClient.Get(serviceURL("/health"))
	if err != nil {
		logger.Error("service unreachable", "server", serverURL, "error", err)
		os.Exit(1)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		logger.Error("service unhealthy", "status", resp.StatusCode)
		os.Exit(1)
	}
	fmt.Println("ok")
}

func runStats(cmd *cobra.Command, args []string) {
	logger := logging.Default()

	resp, err := inspectClient.Get(serviceURL("/v1/stats"))
	if err != nil {
		logger.Error("failed to fetch stats", "error", err)
		os.Exit(1)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		logger.Error("failed to read stats response", "error", err)
		os.Exit(1)
	}

	// Re-indent for the terminal.
	var pretty map[string]any
	if err := json.Unmarshal(body, &pretty); err != nil {
		logger.Error("stats response is not JSON", "error", err)
		os.Exit(1)
	}
	out, _ := json.MarshalIndent(pretty, "", "  ")
	fmt.Println(string(out))
}

func runClearMetrics(cmd *cobra.Command, args []string) {
	logger := logging.Default()

	resp, err := inspectClient.Post(serviceURL("/v1/metrics/clear"), "application/json", nil)
	if err != nil {
		logger.Error("failed to clear metrics", "error", err)
		os.Exit(1)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		logger.Error("clear metrics rejected", "status", resp.StatusCode)
		os.Exit(1)
	}
	fmt.Println("metrics cleared")
}
