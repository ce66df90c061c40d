/*
Copyright (C) 2026 Friends Incode

SPDX-License-Identifier: AGPL-3.0-or-later
*/

package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/friendsincode/audioengine/internal/api"
	"github.com/friendsincode/audioengine/internal/cache"
	"github.com/friendsincode/audioengine/internal/config"
	"github.com/friendsincode/audioengine/internal/db"
	"github.com/friendsincode/audioengine/internal/eventbus"
	"github.com/friendsincode/audioengine/internal/repository"
	"github.com/friendsincode/audioengine/internal/settings"
	"github.com/friendsincode/audioengine/internal/storage"
	"github.com/friendsincode/audioengine/internal/telemetry"
	"github.com/friendsincode/audioengine/internal/version"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the audio engine's HTTP/WS façade",
	RunE:  runServe,
}

func init() {
	rootCmd.AddCommand(serveCmd)
}

func runServe(cmd *cobra.Command, args []string) error {
	if err := loadConfig(); err != nil {
		fmt.Fprintf(os.Stderr, "config error: %v\n", err)
		return err
	}

	logger.Info().Str("version", version.Version).Msg("audio engine starting")

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	updateChecker := version.NewChecker(logger)
	updateChecker.Start(ctx)
	defer updateChecker.Stop()

	tracerProvider, err := telemetry.InitTracer(ctx, telemetry.TracerConfig{
		ServiceName:    "audioengine",
		ServiceVersion: version.Version,
		OTLPEndpoint:   cfg.OTLPEndpoint,
		Enabled:        cfg.TracingEnabled,
		SampleRate:     cfg.TracingSampleRate,
	}, logger)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to initialize tracer")
	}
	defer func() {
		if err := tracerProvider.Shutdown(context.Background()); err != nil {
			logger.Error().Err(err).Msg("tracer shutdown failed")
		}
	}()

	catalog, err := buildCatalog(cfg)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to build catalog backend")
	}

	store, closeStore, err := buildSettingsStore(ctx, cfg, logger)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to build settings store")
	}
	defer closeStore()

	a := api.New(catalog, store, []byte(cfg.JWTSigningKey), logger)

	if !cfg.EventBusDisabled {
		natsCfg := eventbus.DefaultNATSConfig()
		natsCfg.URL = cfg.NATSURL
		natsCfg.StreamName = cfg.NATSStreamName
		clusterBus, err := eventbus.NewNATSBus(natsCfg, cfg.InstanceID, logger)
		if err != nil {
			logger.Warn().Err(err).Msg("cluster event bus unavailable, running single-instance")
		} else {
			a.SetClusterBus(clusterBus)
			defer clusterBus.Close()
		}
	}

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)
	r.Use(telemetry.MetricsMiddleware)
	r.Use(telemetry.TracingMiddleware("audioengine"))
	a.Routes(r)

	httpServer := &http.Server{
		Addr:         fmt.Sprintf("%s:%d", cfg.HTTPBind, cfg.HTTPPort),
		Handler:      r,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 0, // WebSocket connections hold writes open indefinitely
	}

	metricsMux := http.NewServeMux()
	metricsMux.Handle("/metrics", telemetry.Handler())
	metricsServer := &http.Server{Addr: cfg.MetricsBind, Handler: metricsMux}

	go func() {
		logger.Info().Str("addr", httpServer.Addr).Msg("HTTP server listening")
		if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal().Err(err).Msg("http server error")
		}
	}()

	go func() {
		logger.Info().Str("addr", metricsServer.Addr).Msg("metrics server listening")
		if err := metricsServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error().Err(err).Msg("metrics server error")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info().Msg("shutting down")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	a.Shutdown(shutdownCtx)

	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		logger.Error().Err(err).Msg("http server graceful shutdown failed")
	}
	if err := metricsServer.Shutdown(shutdownCtx); err != nil {
		logger.Error().Err(err).Msg("metrics server graceful shutdown failed")
	}

	logger.Info().Msg("audio engine stopped")
	return nil
}

func buildCatalog(cfg *config.Config) (repository.Catalog, error) {
	switch cfg.CatalogMode {
	case "http":
		return repository.NewHTTPCatalog(cfg.CatalogBaseURL), nil
	case "memory":
		return repository.NewMemoryCatalog(cfg.StreamBaseURL), nil
	default:
		return nil, fmt.Errorf("unsupported catalog mode %q", cfg.CatalogMode)
	}
}

// buildSettingsStore wires the structured store (temp-queue snapshots) to
// S3 when ObjectStorageURL is set, otherwise to the relational DB selected
// by DBBackend, and layers a Redis-backed KV cache in front for the smaller
// settings blobs, falling back to an in-memory KV when Redis is unreachable.
// A structured backend whose setup fails is returned as an error; there is
// no in-memory structured fallback.
func buildSettingsStore(ctx context.Context, cfg *config.Config, logger zerolog.Logger) (*settings.Store, func(), error) {
	structured, closeFn, err := buildStructuredStore(ctx, cfg, logger)
	if err != nil {
		return nil, nil, err
	}

	cacheCfg := cache.DefaultConfig()
	cacheCfg.RedisAddr = cfg.RedisAddr
	cacheCfg.RedisPassword = cfg.RedisPassword
	cacheCfg.RedisDB = cfg.RedisDB
	c, err := cache.New(cacheCfg, logger)
	if err != nil || !c.IsAvailable() {
		logger.Warn().Err(err).Msg("settings cache unavailable, falling back to in-memory KV")
		return settings.New(settings.NewMemoryKV(), structured), closeFn, nil
	}
	return settings.New(settings.NewRedisKV(c), structured), closeFn, nil
}

func buildStructuredStore(ctx context.Context, cfg *config.Config, logger zerolog.Logger) (settings.StructuredStore, func(), error) {
	if cfg.ObjectStorageURL != "" {
		objects, err := storage.NewS3Store(ctx, storage.S3Config{
			AccessKeyID:     cfg.S3AccessKeyID,
			SecretAccessKey: cfg.S3SecretAccessKey,
			Region:          cfg.S3Region,
			Bucket:          cfg.S3Bucket,
			Endpoint:        cfg.S3Endpoint,
			PublicBaseURL:   cfg.S3PublicBaseURL,
			UsePathStyle:    cfg.S3UsePathStyle,
		}, logger)
		if err != nil {
			return nil, nil, fmt.Errorf("connect object storage: %w", err)
		}
		return settings.NewS3StructuredStore(objects), func() {}, nil
	}

	gormDB, err := db.Connect(cfg)
	if err != nil {
		return nil, nil, fmt.Errorf("connect database: %w", err)
	}
	return settings.NewGormStore(gormDB), func() { _ = db.Close(gormDB) }, nil
}
