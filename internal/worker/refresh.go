package worker

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/weathervibe/weathervibe/internal/weather"
)

// CitySource lists the cities to keep warm.
type CitySource interface {
	ListAllNames(ctx context.Context) ([]string, error)
}

// WeatherRefresher fetches fresh weather into the cache.
type WeatherRefresher interface {
	Refresh(ctx context.Context, q weather.Query) (*weather.Observation, error)
	GetForecast(ctx context.Context, q weather.Query) (*weather.Forecast, error)
}

// RefreshJob refreshes cached weather for saved cities.
type RefreshJob struct {
	config  RefreshConfig
	logger  zerolog.Logger
	cities  CitySource
	weather WeatherRefresher

	metrics *RefreshMetrics
}

// RefreshMetrics tracks refresh job statistics.
type RefreshMetrics struct {
	mu sync.RWMutex

	TotalRuns        int64
	CitiesRefreshed  int64
	FailedRefreshes  int64
	ForecastRefresh  int64
	LastRunAt        time.Time
	LastRunDuration  time.Duration
	TotalRunDuration time.Duration
}

// RefreshJobConfig holds configuration for creating a RefreshJob.
type RefreshJobConfig struct {
	Config  RefreshConfig
	Logger  zerolog.Logger
	Cities  CitySource
	Weather WeatherRefresher
}

// NewRefreshJob creates a new refresh job.
func NewRefreshJob(cfg RefreshJobConfig) *RefreshJob {
	return &RefreshJob{
		config:  cfg.Config.withDefaults(),
		logger:  cfg.Logger,
		cities:  cfg.Cities,
		weather: cfg.Weather,
		metrics: &RefreshMetrics{},
	}
}

// RefreshResult contains the result of a refresh run.
type RefreshResult struct {
	StartTime   time.Time
	EndTime     time.Time
	Duration    time.Duration
	TotalCities int
	Successful  int
	Failed      int
	Errors      []RefreshError
}

// RefreshError records a failed city.
type RefreshError struct {
	City  string
	Kind  string
	Error string
}

// Run refreshes every saved city.
func (j *RefreshJob) Run(ctx context.Context) (*RefreshResult, error) {
	names, err := j.cities.ListAllNames(ctx)
	if err != nil {
		return nil, fmt.Errorf("listing cities: %w", err)
	}
	return j.RunCities(ctx, names), nil
}

// RunCities refreshes the named cities with a bounded worker pool.
func (j *RefreshJob) RunCities(ctx context.Context, names []string) *RefreshResult {
	startTime := time.Now()
	result := &RefreshResult{
		StartTime:   startTime,
		TotalCities: len(names),
	}

	j.logger.Info().
		Int("total_cities", result.TotalCities).
		Int("concurrency", j.config.Concurrency).
		Msg("starting weather refresh job")

	cityChan := make(chan string, len(names))
	resultsChan := make(chan cityResult, len(names))

	var wg sync.WaitGroup
	for i := 0; i < j.config.Concurrency; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			j.refreshWorker(ctx, cityChan, resultsChan)
		}()
	}

	for _, name := range names {
		cityChan <- name
	}
	close(cityChan)

	go func() {
		wg.Wait()
		close(resultsChan)
	}()

	for cr := range resultsChan {
		if cr.success {
			result.Successful++
		} else {
			result.Failed++
		}
		result.Errors = append(result.Errors, cr.errors...)
	}

	result.EndTime = time.Now()
	result.Duration = result.EndTime.Sub(startTime)
	j.updateMetrics(result)

	j.logger.Info().
		Dur("duration", result.Duration).
		Int("successful", result.Successful).
		Int("failed", result.Failed).
		Msg("weather refresh job completed")

	return result
}

// HealthCheck refreshes the configured health-check city.
func (j *RefreshJob) HealthCheck(ctx context.Context) error {
	result := j.RunCities(ctx, []string{j.config.HealthCheckCity})
	if result.Failed > 0 {
		return fmt.Errorf("health check failed: %s", result.Errors[0].Error)
	}
	return nil
}

type cityResult struct {
	city    string
	success bool
	errors  []RefreshError
}

func (j *RefreshJob) refreshWorker(ctx context.Context, cities <-chan string, results chan<- cityResult) {
	for city := range cities {
		if ctx.Err() != nil {
			results <- cityResult{city: city, errors: []RefreshError{{City: city, Kind: "weather", Error: ctx.Err().Error()}}}
			continue
		}
		results <- j.refreshCity(ctx, city)
	}
}

func (j *RefreshJob) refreshCity(ctx context.Context, city string) cityResult {
	result := cityResult{city: city, success: true}

	cityCtx, cancel := context.WithTimeout(ctx, j.config.Timeout)
	defer cancel()

	q := weather.CityQuery(city)
	if _, err := j.weather.Refresh(cityCtx, q); err != nil {
		result.success = false
		result.errors = append(result.errors, RefreshError{City: city, Kind: "weather", Error: err.Error()})
		j.logger.Warn().Err(err).Str("city", city).Msg("weather refresh failed")
		return result
	}

	if j.config.RefreshForecast {
		if _, err := j.weather.GetForecast(cityCtx, q); err != nil {
			// Forecast failures are non-fatal; current conditions are what
			// the dashboard opens with.
			result.errors = append(result.errors, RefreshError{City: city, Kind: "forecast", Error: err.Error()})
		} else {
			j.metrics.mu.Lock()
			j.metrics.ForecastRefresh++
			j.metrics.mu.Unlock()
		}
	}

	return result
}

func (j *RefreshJob) updateMetrics(result *RefreshResult) {
	j.metrics.mu.Lock()
	defer j.metrics.mu.Unlock()

	j.metrics.TotalRuns++
	j.metrics.CitiesRefreshed += int64(result.Successful)
	j.metrics.FailedRefreshes += int64(result.Failed)
	j.metrics.LastRunAt = result.EndTime
	j.metrics.LastRunDuration = result.Duration
	j.metrics.TotalRunDuration += result.Duration
}

// GetMetrics returns a copy of the current metrics.
func (j *RefreshJob) GetMetrics() RefreshMetrics {
	j.metrics.mu.RLock()
	defer j.metrics.mu.RUnlock()

	return RefreshMetrics{
		TotalRuns:        j.metrics.TotalRuns,
		CitiesRefreshed:  j.metrics.CitiesRefreshed,
		FailedRefreshes:  j.metrics.FailedRefreshes,
		ForecastRefresh:  j.metrics.ForecastRefresh,
		LastRunAt:        j.metrics.LastRunAt,
		LastRunDuration:  j.metrics.LastRunDuration,
		TotalRunDuration: j.metrics.TotalRunDuration,
	}
}

// MetricsSnapshot returns the current metrics as a map.
func (j *RefreshJob) MetricsSnapshot() map[string]interface{} {
	m := j.GetMetrics()
	return map[string]interface{}{
		"total_runs":         m.TotalRuns,
		"cities_refreshed":   m.CitiesRefreshed,
		"failed_refreshes":   m.FailedRefreshes,
		"forecast_refreshes": m.ForecastRefresh,
		"last_run_at":        m.LastRunAt,
		"last_run_duration":  m.LastRunDuration.String(),
		"total_run_duration": m.TotalRunDuration.String(),
	}
}
