// Package config loads process configuration from the environment.
package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Storage backends.
const (
	StorageMemory   = "memory"
	StoragePostgres = "postgres"
)

// Config is the configuration shared by the API and the worker.
type Config struct {
	Env  string
	Port string

	// Storage selects the repositories: "postgres" or "memory".
	Storage string

	// RedisURL enables the shared Redis cache when set.
	RedisURL string

	OpenWeatherMapAPIKey string
	OpenAIAPIKey         string
	OpenAIModel          string

	JWTSecret   string
	JWTIssuer   string
	JWTAudience string

	// AdminUserIDs may call the /admin endpoints.
	AdminUserIDs []string
	RequireTLS   bool
	AssetsDir    string

	PubSubProjectID    string
	AlertsTopic        string
	WorkerSubscription string
	RefreshInterval    time.Duration

	OTelEnabled     bool
	OTelEndpoint    string
	OTelSampleRatio float64
}

// Load reads a .env file if one exists, then the environment.
func Load() (*Config, error) {
	// A missing .env is normal outside local development.
	_ = godotenv.Load()

	cfg := &Config{
		Env:                  getenvDefault("APP_ENV", "development"),
		Port:                 getenvDefault("APP_PORT", "8080"),
		Storage:              strings.ToLower(getenvDefault("STORAGE", StorageMemory)),
		RedisURL:             os.Getenv("REDIS_URL"),
		OpenWeatherMapAPIKey: os.Getenv("OPENWEATHERMAP_API_KEY"),
		OpenAIAPIKey:         os.Getenv("OPENAI_API_KEY"),
		OpenAIModel:          os.Getenv("OPENAI_MODEL"),
		JWTSecret:            os.Getenv("JWT_SECRET"),
		JWTIssuer:            getenvDefault("JWT_ISSUER", "https://id.weathervibe.app"),
		JWTAudience:          getenvDefault("JWT_AUDIENCE", "weathervibe-api"),
		AdminUserIDs:         getenvList("ADMIN_USER_IDS"),
		RequireTLS:           getenvBool("REQUIRE_TLS", false),
		AssetsDir:            getenvDefault("ASSETS_DIR", "./assets"),
		PubSubProjectID:      os.Getenv("PUBSUB_PROJECT_ID"),
		AlertsTopic:          getenvDefault("PUBSUB_ALERTS_TOPIC", "weather-alerts"),
		WorkerSubscription:   getenvDefault("PUBSUB_WORKER_SUBSCRIPTION", "worker-jobs"),
		OTelEnabled:          getenvBool("OTEL_ENABLED", false),
		OTelEndpoint:         getenvDefault("OTEL_EXPORTER_OTLP_ENDPOINT", "localhost:4317"),
	}

	interval, err := time.ParseDuration(getenvDefault("REFRESH_INTERVAL", "15m"))
	if err != nil {
		return nil, fmt.Errorf("invalid REFRESH_INTERVAL: %w", err)
	}
	cfg.RefreshInterval = interval

	ratio, err := strconv.ParseFloat(getenvDefault("OTEL_SAMPLE_RATIO", "1"), 64)
	if err != nil {
		return nil, fmt.Errorf("invalid OTEL_SAMPLE_RATIO: %w", err)
	}
	cfg.OTelSampleRatio = ratio

	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Development reports whether APP_ENV is development.
func (c *Config) Development() bool {
	return c.Env == "development"
}

func (c *Config) validate() error {
	switch c.Storage {
	case StorageMemory, StoragePostgres:
	default:
		return fmt.Errorf("invalid STORAGE %q: want %s or %s", c.Storage, StorageMemory, StoragePostgres)
	}
	if c.JWTSecret == "" && !c.Development() {
		return fmt.Errorf("JWT_SECRET is required when APP_ENV=%s", c.Env)
	}
	return nil
}

func getenvDefault(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func getenvBool(key string, def bool) bool {
	if v := os.Getenv(key); v != "" {
		b, err := strconv.ParseBool(v)
		if err == nil {
			return b
		}
	}
	return def
}

// getenvList splits a comma-separated variable, dropping blanks.
func getenvList(key string) []string {
	var out []string
	for _, part := range strings.Split(os.Getenv(key), ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
