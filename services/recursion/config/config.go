// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

// Package config provides configuration loading for the recursion service.
//
// Configuration resolves in three layers: built-in defaults, an optional
// YAML file, then environment variable overrides. A missing file is not an
// error; the defaults describe a fully working local deployment.
package config

import (
	"fmt"
	"os"
	"runtime"
	"strconv"

	"gopkg.in/yaml.v3"
)

// MaxYAMLFileSize is the maximum allowed config file size (1MB).
// Prevents memory issues from large files.
const MaxYAMLFileSize = 1024 * 1024

// Engine limits. Zero values fall back to the engine package defaults.
type EngineConfig struct {
	// MaxSafeDepth guards the naive Fibonacci descent.
	MaxSafeDepth int `yaml:"max_safe_depth"`

	// NaiveFibCeiling rejects naive Fibonacci arguments above it.
	NaiveFibCeiling int `yaml:"naive_fib_ceiling"`

	// TraversalCeiling bounds naive tree traversal depth.
	TraversalCeiling int `yaml:"traversal_ceiling"`

	// PathfindingCeiling bounds naive pathfinding recursion depth.
	PathfindingCeiling int `yaml:"pathfinding_ceiling"`
}

// Dispatcher limits.
type DispatcherConfig struct {
	// MaxConcurrent caps simultaneously in-flight dispatches in a batch.
	MaxConcurrent int `yaml:"max_concurrent"`

	// MaxWorkers caps the CPU-bound worker gate for naive execution.
	// Zero means min(NumCPU, 4).
	MaxWorkers int `yaml:"max_workers"`

	// UnoptimizedDepthCeiling rejects naive fibonacci/tree_traversal
	// requests with depth above it before they reach the engine.
	UnoptimizedDepthCeiling int `yaml:"unoptimized_depth_ceiling"`

	// MaxGridSize clamps pathfinding grid sizes.
	MaxGridSize int `yaml:"max_grid_size"`
}

// Config is the root service configuration.
type Config struct {
	// Port the HTTP server listens on.
	Port string `yaml:"port"`

	// OTELEndpoint is the OTLP collector address. Empty disables tracing
	// export.
	OTELEndpoint string `yaml:"otel_endpoint"`

	Engine     EngineConfig     `yaml:"engine"`
	Dispatcher DispatcherConfig `yaml:"dispatcher"`
}

// Default returns the built-in configuration.
func Default() *Config {
	return &Config{
		Port: "12280",
		Dispatcher: DispatcherConfig{
			MaxConcurrent:           50,
			MaxWorkers:              minInt(runtime.NumCPU(), 4),
			UnoptimizedDepthCeiling: 10000,
			MaxGridSize:             20,
		},
	}
}

// Load resolves configuration: defaults, then the YAML file at path (if
// path is non-empty and the file exists), then environment overrides.
func Load(path string) (*Config, error) {
	cfg := Default()

	if path != "" {
		if err := loadFile(cfg, path); err != nil {
			return nil, err
		}
	}
	applyEnv(cfg)
	return cfg, nil
}

func loadFile(cfg *Config, path string) error {
	info, err := os.Stat(path)
	if os.IsNotExist(err) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("stat config file: %w", err)
	}
	if info.Size() > MaxYAMLFileSize {
		return fmt.Errorf("config file %s exceeds %d bytes", path, MaxYAMLFileSize)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read config file: %w", err)
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return fmt.Errorf("parse config file %s: %w", path, err)
	}
	return nil
}

// applyEnv overlays RECURSIONLAB_* environment variables.
func applyEnv(cfg *Config) {
	if v := os.Getenv("RECURSIONLAB_PORT"); v != "" {
		cfg.Port = v
	}
	if v := os.Getenv("OTEL_EXPORTER_OTLP_ENDPOINT"); v != "" {
		cfg.OTELEndpoint = v
	}
	envInt("RECURSIONLAB_MAX_CONCURRENT", &cfg.Dispatcher.MaxConcurrent)
	envInt("RECURSIONLAB_MAX_WORKERS", &cfg.Dispatcher.MaxWorkers)
	envInt("RECURSIONLAB_UNOPTIMIZED_DEPTH_CEILING", &cfg.Dispatcher.UnoptimizedDepthCeiling)
	envInt("RECURSIONLAB_MAX_GRID_SIZE", &cfg.Dispatcher.MaxGridSize)
	envInt("RECURSIONLAB_MAX_SAFE_DEPTH", &cfg.Engine.MaxSafeDepth)
	envInt("RECURSIONLAB_NAIVE_FIB_CEILING", &cfg.Engine.NaiveFibCeiling)
	envInt("RECURSIONLAB_TRAVERSAL_CEILING", &cfg.Engine.TraversalCeiling)
	envInt("RECURSIONLAB_PATHFINDING_CEILING", &cfg.Engine.PathfindingCeiling)
}

func envInt(key string, dst *int) {
	v := os.Getenv(key)
	if v == "" {
		return
	}
	n, err := strconv.Atoi(v)
	if err != nil || n <= 0 {
		return
	}
	*dst = n
}

func minInt(a, b int) int {
	if a < b {
		return a
	}
	return b
}
