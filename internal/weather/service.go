package weather

import (
	"context"
	"errors"
	"fmt"
	"math"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/sync/singleflight"

	"github.com/weathervibe/weathervibe/internal/cache"
)

// Provider is an upstream weather and geocoding source.
type Provider interface {
	GetCurrentWeather(ctx context.Context, q Query) (*Observation, error)
	GetForecast(ctx context.Context, q Query) (*Forecast, error)
	SearchPlaces(ctx context.Context, text string, limit int) ([]Place, error)
	Name() string
}

// Suggestion limits.
const (
	MinSuggestionQuery = 2
	MaxSuggestions     = 5
)

// ServiceConfig holds configuration for the weather service.
type ServiceConfig struct {
	Provider Provider
	Logger   zerolog.Logger

	// CacheTTL is how long observations and forecasts are served from
	// memory. Default 10 minutes.
	CacheTTL time.Duration

	// CacheGridSize groups coordinate lookups into cells of this many
	// degrees. Default 0.1.
	CacheGridSize float64

	// StaleIfErrorTTL is how long an expired entry may still be served when
	// the provider is down. Default 1 hour.
	StaleIfErrorTTL time.Duration

	// Suggestions caches geocoding results. Defaults to an in-memory cache.
	Suggestions cache.Cache

	// SuggestionTTL defaults to 24 hours.
	SuggestionTTL time.Duration

	// Shared is an optional second cache tier for observations and
	// forecasts, shared with other processes such as the refresh worker.
	Shared cache.Cache
}

// Service serves weather data with caching in front of a Provider.
type Service struct {
	provider        Provider
	logger          zerolog.Logger
	cacheTTL        time.Duration
	cacheGridSize   float64
	staleIfErrorTTL time.Duration
	suggestions     cache.Cache
	suggestionTTL   time.Duration
	shared          cache.Cache

	group singleflight.Group

	mu sync.RWMutex
	// The cache maps are created once and never reassigned; s.mu guards
	// their contents.
	weatherCache    map[string]*cached[*Observation]
	forecastCache   map[string]*cached[*Forecast]
	lastCleanup     time.Time
	cleanupInterval time.Duration
}

type cached[T any] struct {
	value     T
	fetchedAt time.Time
	expiresAt time.Time
}

// NewService creates a weather service.
func NewService(cfg ServiceConfig) *Service {
	if cfg.CacheTTL == 0 {
		cfg.CacheTTL = 10 * time.Minute
	}
	if cfg.CacheGridSize == 0 {
		cfg.CacheGridSize = 0.1
	}
	if cfg.StaleIfErrorTTL == 0 {
		cfg.StaleIfErrorTTL = time.Hour
	}
	if cfg.Suggestions == nil {
		cfg.Suggestions = cache.NewMemoryCache()
	}
	if cfg.SuggestionTTL == 0 {
		cfg.SuggestionTTL = 24 * time.Hour
	}

	return &Service{
		provider:        cfg.Provider,
		logger:          cfg.Logger,
		cacheTTL:        cfg.CacheTTL,
		cacheGridSize:   cfg.CacheGridSize,
		staleIfErrorTTL: cfg.StaleIfErrorTTL,
		suggestions:     cfg.Suggestions,
		suggestionTTL:   cfg.SuggestionTTL,
		shared:          cfg.Shared,
		weatherCache:    make(map[string]*cached[*Observation]),
		forecastCache:   make(map[string]*cached[*Forecast]),
		cleanupInterval: 5 * time.Minute,
	}
}

// ProviderName returns the upstream provider's name.
func (s *Service) ProviderName() string {
	return s.provider.Name()
}

// GetCurrentWeather returns current conditions, from cache when fresh.
func (s *Service) GetCurrentWeather(ctx context.Context, q Query) (*Observation, error) {
	if err := q.Validate(); err != nil {
		return nil, err
	}

	key := s.cacheKey(q)
	if obs, ok := fresh(s, s.weatherCache, key); ok {
		return obs, nil
	}
	var obs *Observation
	if s.readShared(ctx, "weather:"+key, &obs) {
		store(s, s.weatherCache, key, obs)
		return obs, nil
	}
	return s.fetchWeather(ctx, q, key)
}

// GetForecast returns the 5-day forecast, from cache when fresh.
func (s *Service) GetForecast(ctx context.Context, q Query) (*Forecast, error) {
	if err := q.Validate(); err != nil {
		return nil, err
	}

	key := s.cacheKey(q)
	if f, ok := fresh(s, s.forecastCache, key); ok {
		return f, nil
	}
	var shared *Forecast
	if s.readShared(ctx, "forecast:"+key, &shared) {
		store(s, s.forecastCache, key, shared)
		return shared, nil
	}

	v, err, _ := s.group.Do("forecast:"+key, func() (any, error) {
		return s.load(ctx, q, key, "forecast", func() (any, error) {
			f, err := s.provider.GetForecast(ctx, q)
			if err != nil {
				return nil, err
			}
			store(s, s.forecastCache, key, f)
			s.writeShared(ctx, "forecast:"+key, f)
			return f, nil
		}, func() (any, bool) {
			return stale(s, s.forecastCache, key)
		})
	})
	if err != nil {
		return nil, err
	}
	return v.(*Forecast), nil
}

// Refresh fetches current conditions for q regardless of cache freshness.
// The background worker uses it to keep saved cities warm.
func (s *Service) Refresh(ctx context.Context, q Query) (*Observation, error) {
	if err := q.Validate(); err != nil {
		return nil, err
	}
	return s.fetchWeather(ctx, q, s.cacheKey(q))
}

func (s *Service) fetchWeather(ctx context.Context, q Query, key string) (*Observation, error) {
	v, err, _ := s.group.Do("weather:"+key, func() (any, error) {
		return s.load(ctx, q, key, "weather", func() (any, error) {
			obs, err := s.provider.GetCurrentWeather(ctx, q)
			if err != nil {
				return nil, err
			}
			store(s, s.weatherCache, key, obs)
			s.writeShared(ctx, "weather:"+key, obs)
			return obs, nil
		}, func() (any, bool) {
			return stale(s, s.weatherCache, key)
		})
	})
	if err != nil {
		return nil, err
	}
	return v.(*Observation), nil
}

// load calls fetch and on failure falls back to stale data. Not-found is
// never masked by stale data.
func (s *Service) load(ctx context.Context, q Query, key, kind string, fetch func() (any, error), fallback func() (any, bool)) (any, error) {
	s.logger.Debug().
		Str("query", q.String()).
		Str("kind", kind).
		Str("provider", s.provider.Name()).
		Msg("fetching from provider")

	v, err := fetch()
	if err == nil {
		return v, nil
	}

	if errors.Is(err, ErrCityNotFound) {
		return nil, err
	}

	s.logger.Error().Err(err).
		Str("query", q.String()).
		Str("kind", kind).
		Msg("provider request failed")

	if v, ok := fallback(); ok {
		s.logger.Warn().
			Str("cache_key", key).
			Str("kind", kind).
			Msg("serving stale data due to provider error")
		return v, nil
	}

	if ctx.Err() != nil {
		return nil, ctx.Err()
	}
	if errors.Is(err, ErrMalformedPayload) || errors.Is(err, ErrProviderUnavailable) {
		return nil, err
	}
	return nil, fmt.Errorf("%w: %w", ErrProviderUnavailable, err)
}

// readShared reports whether key was found in the shared tier. Read
// errors count as a miss.
func (s *Service) readShared(ctx context.Context, key string, dest any) bool {
	if s.shared == nil {
		return false
	}
	ok, err := s.shared.Get(ctx, key, dest)
	if err != nil {
		s.logger.Warn().Err(err).Str("cache_key", key).Msg("shared cache read failed")
		return false
	}
	return ok
}

func (s *Service) writeShared(ctx context.Context, key string, value any) {
	if s.shared == nil {
		return
	}
	if err := s.shared.Set(ctx, key, value, s.cacheTTL); err != nil {
		s.logger.Warn().Err(err).Str("cache_key", key).Msg("shared cache write failed")
	}
}

func fresh[T any](s *Service, m map[string]*cached[T], key string) (T, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if c, ok := m[key]; ok && time.Now().Before(c.expiresAt) {
		return c.value, true
	}
	var zero T
	return zero, false
}

func stale[T any](s *Service, m map[string]*cached[T], key string) (any, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if c, ok := m[key]; ok && time.Now().Before(c.fetchedAt.Add(s.staleIfErrorTTL)) {
		return c.value, true
	}
	return nil, false
}

func store[T any](s *Service, m map[string]*cached[T], key string, v T) {
	s.mu.Lock()
	defer s.mu.Unlock()
	now := time.Now()
	m[key] = &cached[T]{value: v, fetchedAt: now, expiresAt: now.Add(s.cacheTTL)}
	s.cleanupIfNeeded(now)
}

// SuggestCities returns up to MaxSuggestions "Name, CC" labels for a
// partial city name. Queries shorter than MinSuggestionQuery return nothing.
func (s *Service) SuggestCities(ctx context.Context, text string) ([]string, error) {
	text = strings.TrimSpace(text)
	if len([]rune(text)) < MinSuggestionQuery {
		return []string{}, nil
	}

	key := "suggest:" + strings.ToLower(text)
	var labels []string
	if ok, err := s.suggestions.Get(ctx, key, &labels); err != nil {
		s.logger.Warn().Err(err).Str("cache_key", key).Msg("suggestion cache read failed")
	} else if ok {
		return labels, nil
	}

	places, err := s.provider.SearchPlaces(ctx, text, MaxSuggestions)
	if err != nil {
		s.logger.Error().Err(err).Str("query", text).Msg("geocoding request failed")
		if errors.Is(err, ErrMalformedPayload) || errors.Is(err, ErrProviderUnavailable) {
			return nil, err
		}
		return nil, fmt.Errorf("%w: %w", ErrProviderUnavailable, err)
	}

	labels = make([]string, 0, len(places))
	seen := make(map[string]bool, len(places))
	for _, p := range places {
		label := p.Label()
		if label == "" || seen[label] {
			continue
		}
		seen[label] = true
		labels = append(labels, label)
	}

	if err := s.suggestions.Set(ctx, key, labels, s.suggestionTTL); err != nil {
		s.logger.Warn().Err(err).Str("cache_key", key).Msg("suggestion cache write failed")
	}
	return labels, nil
}

// cacheKey groups city lookups by normalized name and coordinate lookups
// by grid cell.
func (s *Service) cacheKey(q Query) string {
	if q.ByCity() {
		return "city:" + strings.ToLower(strings.Join(strings.Fields(q.City), " "))
	}
	gridLat := math.Floor(*q.Lat/s.cacheGridSize) * s.cacheGridSize
	gridLon := math.Floor(*q.Lon/s.cacheGridSize) * s.cacheGridSize
	return fmt.Sprintf("geo:%.2f:%.2f", gridLat, gridLon)
}

// cleanupIfNeeded drops entries too old to serve even as stale data.
// Callers hold s.mu.
func (s *Service) cleanupIfNeeded(now time.Time) {
	if now.Sub(s.lastCleanup) < s.cleanupInterval {
		return
	}
	s.lastCleanup = now

	expired := 0
	for key, c := range s.weatherCache {
		if now.After(c.fetchedAt.Add(s.staleIfErrorTTL)) {
			delete(s.weatherCache, key)
			expired++
		}
	}
	for key, c := range s.forecastCache {
		if now.After(c.fetchedAt.Add(s.staleIfErrorTTL)) {
			delete(s.forecastCache, key)
			expired++
		}
	}

	if expired > 0 {
		s.logger.Debug().Int("expired_entries", expired).Msg("cleaned up weather cache")
	}
}

// InvalidateCache clears cached observations and forecasts.
func (s *Service) InvalidateCache() {
	s.mu.Lock()
	defer s.mu.Unlock()
	clear(s.weatherCache)
	clear(s.forecastCache)
}

// CacheStats describes the in-memory caches.
type CacheStats struct {
	WeatherEntries       int    `json:"weatherEntries"`
	WeatherFreshEntries  int    `json:"weatherFreshEntries"`
	ForecastEntries      int    `json:"forecastEntries"`
	ForecastFreshEntries int    `json:"forecastFreshEntries"`
	Provider             string `json:"provider"`
}

// CacheStats returns cache statistics.
func (s *Service) CacheStats() CacheStats {
	s.mu.RLock()
	defer s.mu.RUnlock()

	now := time.Now()
	stats := CacheStats{
		WeatherEntries:  len(s.weatherCache),
		ForecastEntries: len(s.forecastCache),
		Provider:        s.provider.Name(),
	}
	for _, c := range s.weatherCache {
		if now.Before(c.expiresAt) {
			stats.WeatherFreshEntries++
		}
	}
	for _, c := range s.forecastCache {
		if now.Before(c.expiresAt) {
			stats.ForecastFreshEntries++
		}
	}
	return stats
}
