// Package api provides the HTTP API for WeatherVibe.
package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/rs/zerolog"

	"github.com/weathervibe/weathervibe/internal/api/handler"
	"github.com/weathervibe/weathervibe/internal/api/middleware"
)

// assetsMaxAge is the Cache-Control max-age for decorative media, one day.
const assetsMaxAge = "86400"

// RouterConfig holds configuration for the router.
type RouterConfig struct {
	Logger      zerolog.Logger
	ServiceName string
	Metrics     *middleware.Metrics
	RequireTLS  bool

	// Ops configures /ops/health, /ops/ready and /ops/status.
	Ops handler.OpsConfig

	Tokens    middleware.TokenValidator
	AdminIDs  []string
	Dashboard handler.Dashboard
	Media     handler.MediaResolver
	Suggester handler.CitySuggester
	Cities    handler.CityService
	Chat      handler.ChatService
	Alerts    handler.AlertService
	Flags     handler.FlagService

	// AssetsDir is served at /assets/. Empty disables static assets.
	AssetsDir string
}

// NewRouter creates a new chi router with all API routes configured.
func NewRouter(cfg RouterConfig) *chi.Mux {
	r := chi.NewRouter()

	serviceName := cfg.ServiceName
	if serviceName == "" {
		serviceName = "weathervibe-api"
	}

	// Global middleware - order matters
	r.Use(middleware.RequestID)            // Generate/propagate request ID first
	r.Use(middleware.Tracing(serviceName)) // Distributed tracing
	if cfg.Metrics != nil {
		r.Use(cfg.Metrics.Middleware()) // HTTP metrics
	}
	r.Use(middleware.Logger(cfg.Logger))   // Structured logging
	r.Use(middleware.Recovery(cfg.Logger)) // Panic recovery
	r.Use(chimiddleware.RealIP)            // Real IP extraction
	r.Use(middleware.SecurityHeaders)      // Security headers (HSTS, CSP, etc.)
	r.Use(middleware.RequireTLS(cfg.RequireTLS))

	opsHandler := handler.NewOpsHandler(cfg.Ops)
	weatherHandler := handler.NewWeatherHandler(cfg.Dashboard, cfg.Suggester, cfg.Logger)
	mediaHandler := handler.NewMediaHandler(cfg.Media)
	cityHandler := handler.NewCityHandler(cfg.Cities, cfg.Logger)
	chatHandler := handler.NewChatHandler(cfg.Chat, cfg.Logger)
	alertHandler := handler.NewAlertHandler(cfg.Alerts, cfg.Logger)
	featureFlagsHandler := handler.NewFeatureFlagsHandler(cfg.Flags, cfg.Logger)

	authMiddleware := middleware.Auth(cfg.Tokens)
	standardRateLimit := middleware.RateLimitByIP(middleware.StandardRateLimit) // 100 req/min
	userRateLimit := middleware.RateLimitByUser(middleware.StandardRateLimit)   // 100 req/min per user
	chatRateLimit := middleware.RateLimitByUser(middleware.ChatRateLimit)       // 30 req/min per user
	alertRateLimit := middleware.RateLimitByUser(middleware.AlertRateLimit)     // 10 req/min per user

	if cfg.AssetsDir != "" {
		assets := http.StripPrefix("/assets/", http.FileServer(http.Dir(cfg.AssetsDir)))
		r.With(middleware.StaticAssets(assetsMaxAge)).Handle("/assets/*", assets)
	}

	r.Route("/v1", func(r chi.Router) {
		r.Use(middleware.ContentTypeJSON)
		r.Use(middleware.RequireJSON)

		// Ops endpoints (public)
		r.Route("/ops", func(r chi.Router) {
			r.Get("/health", opsHandler.HealthCheck)
			r.Get("/ready", opsHandler.ReadinessCheck)
			// Status endpoint requires authentication
			r.With(authMiddleware).Get("/status", opsHandler.SystemStatus)
		})

		// Dashboard endpoints (public)
		r.Group(func(r chi.Router) {
			r.Use(standardRateLimit)
			r.Get("/weather/current", weatherHandler.Current)
			r.Get("/weather/forecast", weatherHandler.Forecast)
			r.Get("/geo/suggestions", weatherHandler.Suggestions)
			r.Get("/media/resolve", mediaHandler.Resolve)
		})

		// Saved cities (authenticated)
		r.Route("/me/cities", func(r chi.Router) {
			r.Use(authMiddleware)
			r.Use(userRateLimit)
			r.Get("/", cityHandler.List)
			r.Post("/", cityHandler.Save)
			r.Delete("/{cityId}", cityHandler.Delete)
		})

		// Assistant (authenticated) - calls a paid upstream
		r.Route("/chat", func(r chi.Router) {
			r.Use(authMiddleware)
			r.With(chatRateLimit).Post("/", chatHandler.Ask)
			r.With(userRateLimit).Get("/history", chatHandler.History)
		})

		// Alerts (authenticated) - submissions fan out to SMS and email
		r.Route("/alerts", func(r chi.Router) {
			r.Use(authMiddleware)
			r.With(userRateLimit).Get("/", alertHandler.List)
			r.With(alertRateLimit).Post("/", alertHandler.Submit)
			r.With(alertRateLimit).Post("/emergency", alertHandler.Emergency)
		})

		// Admin endpoints (authenticated) - for internal operations
		r.Route("/admin", func(r chi.Router) {
			r.Use(authMiddleware)
			r.Use(middleware.RequireAdmin(cfg.AdminIDs))
			r.Use(standardRateLimit)

			// Feature flags management
			r.Route("/feature-flags", func(r chi.Router) {
				r.Get("/", featureFlagsHandler.ListFeatureFlags)
				r.Put("/", featureFlagsHandler.UpsertFeatureFlags)
				r.Post("/invalidate", featureFlagsHandler.InvalidateCache)
			})
		})
	})

	return r
}
