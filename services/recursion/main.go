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
	"context"
	"log"
	"log/slog"
	"os"
	"time"

	"github.com/gin-gonic/gin"
	"google.golang.org/grpc/credentials/insecure"

	"github.com/AleutianAI/recursionlab/services/recursion/config"
	"github.com/AleutianAI/recursionlab/services/recursion/dispatcher"
	"github.com/AleutianAI/recursionlab/services/recursion/engine"
	"github.com/AleutianAI/recursionlab/services/recursion/metrics"
	"github.com/AleutianAI/recursionlab/services/recursion/observability"
	"github.com/AleutianAI/recursionlab/services/recursion/routes"

	// --- OpenTelemetry imports ---
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace/otlptracegrpc"
	"go.opentelemetry.io/otel/propagation"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	semconv "go.opentelemetry.io/otel/semconv/v1.21.0"
	"google.golang.org/grpc"
)

func initTracer(endpoint string) (func(context.Context), error) {
	ctx := context.Background()

	if endpoint == "" {
		endpoint = "recursionlab-otel-collector:4317"
	}
	conn, err := grpc.NewClient(endpoint,
		grpc.WithTransportCredentials(insecure.NewCredentials()))
	if err != nil {
		return nil, err
	}
	traceExporter, err := otlptracegrpc.New(ctx, otlptracegrpc.WithGRPCConn(conn))
	if err != nil {
		return nil, err
	}
	res, err := resource.New(ctx,
		resource.WithAttributes(semconv.ServiceNameKey.String("recursion-service")))
	if err != nil {
		return nil, err
	}
	bsp := sdktrace.NewBatchSpanProcessor(traceExporter)
	traceProvider := sdktrace.NewTracerProvider(
		sdktrace.WithSampler(sdktrace.AlwaysSample()),
		sdktrace.WithResource(res),
		sdktrace.WithSpanProcessor(bsp))
	otel.SetTracerProvider(traceProvider)
	otel.SetTextMapPropagator(propagation.NewCompositeTextMapPropagator(propagation.
		TraceContext{}, propagation.Baggage{}))

	return func(ctx context.Context) {
		ctx, cancel := context.WithTimeout(ctx, time.Second*5)
		defer cancel()
		if err := traceExporter.Shutdown(ctx); err != nil {
			slog.Error("failed to shutdown OTLP exporter", "error", err)
		}
	}, nil
}

func engineOptions(cfg config.EngineConfig) []engine.Option {
	var opts []engine.Option
	if cfg.MaxSafeDepth > 0 {
		opts = append(opts, engine.WithMaxSafeDepth(cfg.MaxSafeDepth))
	}
	if cfg.NaiveFibCeiling > 0 {
		opts = append(opts, engine.WithNaiveFibCeiling(cfg.NaiveFibCeiling))
	}
	if cfg.TraversalCeiling > 0 {
		opts = append(opts, engine.WithTraversalCeiling(cfg.TraversalCeiling))
	}
	if cfg.PathfindingCeiling > 0 {
		opts = append(opts, engine.WithPathfindingCeiling(cfg.PathfindingCeiling))
	}
	return opts
}

func main() {
	logger := slog.New(slog.NewJSONHandler(os.Stdout, nil))
	slog.SetDefault(logger)

	cfg, err := config.Load(os.Getenv("RECURSIONLAB_CONFIG"))
	if err != nil {
		log.Fatalf("failed to load configuration: %v", err)
	}

	// --- Init the tracer ---
	cleanup, err := initTracer(cfg.OTELEndpoint)
	if err != nil {
		log.Fatalf("failed to setup the OTLP tracer: %v", err)
	}
	defer cleanup(context.Background())

	eng := engine.NewEngine(engineOptions(cfg.Engine)...)
	store := metrics.NewStore()
	obs := observability.InitMetrics()
	disp := dispatcher.New(eng, store, cfg.Dispatcher, obs)

	router := gin.Default()
	router.Use(otelgin.Middleware("recursion-service"))

	routes.SetupRoutes(router, disp)

	slog.Info("starting the recursion server", "port", cfg.Port)
	if err := router.Run(":" + cfg.Port); err != nil {
		log.Fatalf("Failed to start server: %v", err)
	}
}
