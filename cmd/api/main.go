// Package main provides the entrypoint for the WeatherVibe API server.
package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog"

	"github.com/weathervibe/weathervibe/internal/alert"
	"github.com/weathervibe/weathervibe/internal/api"
	"github.com/weathervibe/weathervibe/internal/api/handler"
	"github.com/weathervibe/weathervibe/internal/api/middleware"
	"github.com/weathervibe/weathervibe/internal/auth"
	"github.com/weathervibe/weathervibe/internal/cache"
	"github.com/weathervibe/weathervibe/internal/chat"
	"github.com/weathervibe/weathervibe/internal/chat/openai"
	"github.com/weathervibe/weathervibe/internal/city"
	"github.com/weathervibe/weathervibe/internal/config"
	"github.com/weathervibe/weathervibe/internal/dashboard"
	"github.com/weathervibe/weathervibe/internal/database"
	"github.com/weathervibe/weathervibe/internal/featureflags"
	"github.com/weathervibe/weathervibe/internal/provider/resilience"
	"github.com/weathervibe/weathervibe/internal/telemetry"
	"github.com/weathervibe/weathervibe/internal/weather"
	"github.com/weathervibe/weathervibe/internal/weather/openweathermap"
)

// Version and BuildTime are set at compile time via ldflags.
var (
	Version   = "dev"
	BuildTime = "unknown"
)

// repositories groups the storage used by the services.
type repositories struct {
	cities city.Repository
	chat   chat.Repository
	alerts alert.Repository
	flags  featureflags.Repository
}

func main() {
	const serviceName = "weathervibe-api"

	// Setup structured logging
	log := zerolog.New(os.Stdout).
		With().
		Timestamp().
		Str("service", serviceName).
		Str("version", Version).
		Logger()

	log.Info().
		Str("build_time", BuildTime).
		Msg("starting WeatherVibe API")

	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load configuration")
	}

	// Initialize OpenTelemetry
	ctx := context.Background()
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
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if shutdownErr := tp.Shutdown(shutdownCtx); shutdownErr != nil {
			log.Error().Err(shutdownErr).Msg("failed to shutdown telemetry")
		}
	}()

	if cfg.OTelEnabled {
		log.Info().
			Str("otlp_endpoint", cfg.OTelEndpoint).
			Msg("OpenTelemetry initialized")
	}

	metrics, err := middleware.NewMetrics()
	if err != nil {
		log.Fatal().Err(err).Msg("failed to initialize metrics")
	}
	instruments, err := telemetry.NewInstruments(tp.Meter)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to initialize instruments")
	}

	var checks []handler.ReadinessCheck

	// Storage
	repos := repositories{
		cities: city.NewInMemoryRepository(),
		chat:   chat.NewInMemoryRepository(),
		alerts: alert.NewInMemoryRepository(),
		flags:  featureflags.NewInMemoryRepository(),
	}
	if cfg.Storage == config.StoragePostgres {
		pool := connectDatabase(ctx, log)
		defer pool.Close()
		repos = repositories{
			cities: city.NewPostgresRepository(pool),
			chat:   chat.NewPostgresRepository(pool),
			alerts: alert.NewPostgresRepository(pool),
			flags:  featureflags.NewPostgresRepository(pool),
		}
		checks = append(checks, handler.ReadinessCheck{Name: "database", Ping: pool.Ping})
	} else {
		log.Warn().Msg("using in-memory storage - data is lost on restart")
	}

	// Redis is shared with the worker: it warms weather, the API reads it.
	var shared cache.Cache
	if cfg.RedisURL != "" {
		client, redisErr := cache.NewRedisClientFromURL(ctx, cfg.RedisURL)
		if redisErr != nil {
			log.Fatal().Err(redisErr).Msg("failed to connect to redis")
		}
		defer func() { _ = client.Close() }()
		rc := cache.NewRedisCache(client, "weathervibe:")
		shared = rc
		checks = append(checks, handler.ReadinessCheck{Name: "redis", Ping: rc.Ping})
		log.Info().Msg("redis cache connected")
	}

	// Providers share one registry so /ops/status sees every breaker.
	registry := resilience.NewRegistry()

	owmHTTP := resilience.DefaultClientConfig(openweathermap.ProviderName)
	owmHTTP.Observer = instruments
	if cfg.OpenWeatherMapAPIKey == "" {
		log.Warn().Msg("OPENWEATHERMAP_API_KEY not set - weather requests will fail")
	}
	weatherService := weather.NewService(weather.ServiceConfig{
		Provider: openweathermap.NewClient(openweathermap.ClientConfig{
			APIKey:     cfg.OpenWeatherMapAPIKey,
			HTTPClient: registry.NewClient(owmHTTP),
			Logger:     log,
		}),
		Logger:      log,
		Suggestions: shared,
		Shared:      shared,
	})

	ffService := featureflags.NewService(featureflags.ServiceConfig{
		Repository:   repos.flags,
		Logger:       log,
		CacheTTL:     1 * time.Minute,
		DefaultFlags: featureflags.DefaultFlags(),
	})

	dashboardService := dashboard.NewService(dashboard.ServiceConfig{
		Weather: weatherService,
		Flags:   ffService,
		Logger:  log,
		Metrics: instruments,
	})

	openaiHTTP := resilience.DefaultClientConfig(openai.ProviderName)
	openaiHTTP.Timeout = 30 * time.Second
	openaiHTTP.Observer = instruments
	if cfg.OpenAIAPIKey == "" {
		log.Warn().Msg("OPENAI_API_KEY not set - the assistant will answer with the fallback reply")
	}
	chatService := chat.NewService(chat.ServiceConfig{
		Completer: openai.NewClient(openai.ClientConfig{
			APIKey:     cfg.OpenAIAPIKey,
			Model:      cfg.OpenAIModel,
			HTTPClient: registry.NewClient(openaiHTTP),
			Logger:     log,
		}),
		Repository: repos.chat,
		Flags:      ffService,
		Logger:     log,
	})

	var publisher alert.Publisher = alert.NewLogPublisher(log)
	if cfg.PubSubProjectID != "" {
		pub, pubErr := alert.NewPubSubPublisher(ctx, alert.PubSubPublisherConfig{
			ProjectID: cfg.PubSubProjectID,
			Topic:     cfg.AlertsTopic,
			Logger:    log,
		})
		if pubErr != nil {
			log.Fatal().Err(pubErr).Msg("failed to create alert publisher")
		}
		defer func() { _ = pub.Close() }()
		publisher = pub
		log.Info().Str("topic", cfg.AlertsTopic).Msg("alerts publish to pubsub")
	}
	alertService := alert.NewService(alert.ServiceConfig{
		Repository: repos.alerts,
		Publisher:  publisher,
		Flags:      ffService,
		Logger:     log,
		Metrics:    instruments,
	})

	secret := cfg.JWTSecret
	if secret == "" {
		secret = "local-dev-signing-key-change-in-production"
		log.Warn().Msg("using default JWT secret - not secure for production")
	}
	verifier := auth.NewVerifier(auth.Config{
		SigningKey: secret,
		Issuer:     cfg.JWTIssuer,
		Audience:   cfg.JWTAudience,
	})
	if cfg.Development() {
		logDevelopmentToken(log, verifier)
	}

	router := api.NewRouter(api.RouterConfig{
		Logger:      log,
		ServiceName: serviceName,
		Metrics:     metrics,
		RequireTLS:  cfg.RequireTLS,
		Ops: handler.OpsConfig{
			Version:    Version,
			BuildTime:  BuildTime,
			Registry:   registry,
			Checks:     checks,
			Flags:      ffService,
			CacheStats: func() any { return weatherService.CacheStats() },
		},
		Tokens:    verifier,
		AdminIDs:  cfg.AdminUserIDs,
		Dashboard: dashboardService,
		Media:     dashboardService,
		Suggester: weatherService,
		Cities:    city.NewService(repos.cities, log),
		Chat:      chatService,
		Alerts:    alertService,
		Flags:     ffService,
		AssetsDir: cfg.AssetsDir,
	})

	// Create HTTP server
	server := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 45 * time.Second, // the assistant may take up to 30s
		IdleTimeout:  60 * time.Second,
	}

	// Start server in goroutine
	go func() {
		log.Info().
			Str("addr", server.Addr).
			Msg("server listening")

		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("server error")
		}
	}()

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("shutting down server")

	// Graceful shutdown with timeout
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("server forced to shutdown")
		return
	}

	log.Info().Msg("server stopped")
}

func connectDatabase(ctx context.Context, log zerolog.Logger) *pgxpool.Pool {
	dbConfig := database.ConfigFromEnv()
	pool, err := database.Connect(ctx, dbConfig)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to connect to database")
	}
	if err := database.EnsureSchema(ctx, pool); err != nil {
		pool.Close()
		log.Fatal().Err(err).Msg("failed to apply database schema")
	}
	log.Info().
		Str("host", dbConfig.Host).
		Int("port", dbConfig.Port).
		Str("database", dbConfig.Database).
		Msg("database connected")
	return pool
}

func logDevelopmentToken(log zerolog.Logger, verifier *auth.Verifier) {
	token, expiresAt, err := verifier.GenerateAccessToken("usr_dev")
	if err != nil {
		log.Error().Err(err).Msg("failed to issue development token")
		return
	}
	log.Info().
		Str("user_id", "usr_dev").
		Str("token", token).
		Time("expires_at", expiresAt).
		Msg("development access token")
}
