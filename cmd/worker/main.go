// Package main provides the entrypoint for the WeatherVibe refresh worker.
package main

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"

	"github.com/weathervibe/weathervibe/internal/cache"
	"github.com/weathervibe/weathervibe/internal/city"
	"github.com/weathervibe/weathervibe/internal/config"
	"github.com/weathervibe/weathervibe/internal/database"
	"github.com/weathervibe/weathervibe/internal/provider/resilience"
	"github.com/weathervibe/weathervibe/internal/telemetry"
	"github.com/weathervibe/weathervibe/internal/weather"
	"github.com/weathervibe/weathervibe/internal/weather/openweathermap"
	"github.com/weathervibe/weathervibe/internal/worker"
)

// Version and BuildTime are set at compile time via ldflags
var (
	Version   = "dev"
	BuildTime = "unknown"
)

func main() {
	const serviceName = "weathervibe-worker"

	log := zerolog.New(os.Stdout).
		With().
		Timestamp().
		Str("service", serviceName).
		Str("version", Version).
		Logger()

	log.Info().
		Str("build_time", BuildTime).
		Msg("starting WeatherVibe worker")

	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load configuration")
	}

	// Create context for graceful shutdown
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	tp, err := telemetry.Init(ctx, telemetry.Config{
		ServiceName:    serviceName,
		ServiceVersion: Version,
		Environment:    cfg.Env,
		OTLPEndpoint:   cfg.OTelEndpoint,
		Enabled:        cfg.OTelEnabled,
		SampleRatio:    cfg.OTelSampleRatio,
	})
	if err != nil {
		log.Fatal().Err(err).Msg("failed to initialize telemetry")
	}
	defer func() {
		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer shutdownCancel()
		if shutdownErr := tp.Shutdown(shutdownCtx); shutdownErr != nil {
			log.Error().Err(shutdownErr).Msg("failed to shutdown telemetry")
		}
	}()
	instruments, err := telemetry.NewInstruments(tp.Meter)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to initialize instruments")
	}

	// Saved cities are the work list, so the worker needs the real store.
	var cities worker.CitySource = city.NewService(city.NewInMemoryRepository(), log)
	if cfg.Storage == config.StoragePostgres {
		pool, dbErr := database.Connect(ctx, database.ConfigFromEnv())
		if dbErr != nil {
			log.Fatal().Err(dbErr).Msg("failed to connect to database")
		}
		defer pool.Close()
		cities = city.NewService(city.NewPostgresRepository(pool), log)
	} else {
		log.Warn().Msg("using in-memory storage - only health_check jobs do useful work")
	}

	var shared cache.Cache
	if cfg.RedisURL != "" {
		client, redisErr := cache.NewRedisClientFromURL(ctx, cfg.RedisURL)
		if redisErr != nil {
			log.Fatal().Err(redisErr).Msg("failed to connect to redis")
		}
		defer func() { _ = client.Close() }()
		shared = cache.NewRedisCache(client, "weathervibe:")
	} else {
		log.Warn().Msg("REDIS_URL not set - refreshed weather stays in this process")
	}

	registry := resilience.NewRegistry()
	owmHTTP := resilience.DefaultClientConfig(openweathermap.ProviderName)
	owmHTTP.Observer = instruments
	weatherService := weather.NewService(weather.ServiceConfig{
		Provider: openweathermap.NewClient(openweathermap.ClientConfig{
			APIKey:     cfg.OpenWeatherMapAPIKey,
			HTTPClient: registry.NewClient(owmHTTP),
			Logger:     log,
		}),
		Logger: log,
		Shared: shared,
	})

	refreshCfg := worker.DefaultRefreshConfig()
	refreshCfg.Interval = cfg.RefreshInterval
	job := worker.NewRefreshJob(worker.RefreshJobConfig{
		Config:  refreshCfg,
		Logger:  log,
		Cities:  cities,
		Weather: weatherService,
	})

	scheduler := worker.NewScheduler(job, log)
	if err := scheduler.Start(ctx); err != nil {
		log.Fatal().Err(err).Msg("failed to start scheduler")
	}
	defer scheduler.Stop()

	if cfg.PubSubProjectID != "" {
		handler, psErr := worker.NewPubSubHandler(ctx, worker.PubSubConfig{
			ProjectID:        cfg.PubSubProjectID,
			SubscriptionName: cfg.WorkerSubscription,
			RefreshJob:       job,
			Logger:           log,
		})
		if psErr != nil {
			log.Fatal().Err(psErr).Msg("failed to create pubsub handler")
		}
		defer func() { _ = handler.Close() }()

		go func() {
			if err := handler.Start(ctx); err != nil && !errors.Is(err, context.Canceled) {
				log.Error().Err(err).Msg("pubsub handler stopped")
			}
		}()
	}

	// Worker also exposes health endpoint for Cloud Run
	mux := http.NewServeMux()
	mux.HandleFunc("/health", func(w http.ResponseWriter, _ *http.Request) {
		status := http.StatusOK
		if !scheduler.Running() {
			status = http.StatusServiceUnavailable
		}
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		_ = json.NewEncoder(w).Encode(map[string]any{
			"version":   Version,
			"scheduler": scheduler.Running(),
			"refresh":   job.MetricsSnapshot(),
			"provider":  registry.Overall(),
		})
	})

	server := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      mux,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
	}

	go func() {
		log.Info().Str("addr", server.Addr).Msg("health server listening")
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Error().Err(err).Msg("health server error")
		}
	}()

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("shutting down worker")
	cancel()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer shutdownCancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("health server forced to shutdown")
	}

	log.Info().Msg("worker stopped")
}
