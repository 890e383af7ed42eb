package worker_test

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/weathervibe/weathervibe/internal/weather"
	"github.com/weathervibe/weathervibe/internal/worker"
)

type staticCities struct {
	names []string
	err   error
}

func (s staticCities) ListAllNames(context.Context) ([]string, error) {
	return s.names, s.err
}

type fakeWeather struct {
	mu        sync.Mutex
	refreshed []string
	forecasts int
	failCity  string
	forecastE error
	inFlight  atomic.Int32
	maxFlight atomic.Int32
	delay     time.Duration
}

func (f *fakeWeather) Refresh(ctx context.Context, q weather.Query) (*weather.Observation, error) {
	n := f.inFlight.Add(1)
	defer f.inFlight.Add(-1)
	for {
		m := f.maxFlight.Load()
		if n <= m || f.maxFlight.CompareAndSwap(m, n) {
			break
		}
	}
	if f.delay > 0 {
		select {
		case <-time.After(f.delay):
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}

	f.mu.Lock()
	defer f.mu.Unlock()
	if q.City == f.failCity {
		return nil, weather.ErrCityNotFound
	}
	f.refreshed = append(f.refreshed, q.City)
	return &weather.Observation{City: q.City}, nil
}

func (f *fakeWeather) GetForecast(_ context.Context, q weather.Query) (*weather.Forecast, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.forecastE != nil {
		return nil, f.forecastE
	}
	f.forecasts++
	return &weather.Forecast{City: q.City}, nil
}

func newJob(cities worker.CitySource, w worker.WeatherRefresher, cfg worker.RefreshConfig) *worker.RefreshJob {
	return worker.NewRefreshJob(worker.RefreshJobConfig{
		Config:  cfg,
		Logger:  zerolog.Nop(),
		Cities:  cities,
		Weather: w,
	})
}

func TestDefaultRefreshConfig(t *testing.T) {
	cfg := worker.DefaultRefreshConfig()

	assert.Equal(t, 3, cfg.Concurrency)
	assert.Equal(t, 30*time.Second, cfg.Timeout)
	assert.Equal(t, 15*time.Minute, cfg.Interval)
	assert.True(t, cfg.RefreshForecast)
	assert.Equal(t, "London", cfg.HealthCheckCity)
}

func TestRefreshJob_Run(t *testing.T) {
	w := &fakeWeather{}
	job := newJob(staticCities{names: []string{"Paris", "Oslo", "Lima"}}, w, worker.DefaultRefreshConfig())

	result, err := job.Run(context.Background())
	require.NoError(t, err)

	assert.Equal(t, 3, result.TotalCities)
	assert.Equal(t, 3, result.Successful)
	assert.Equal(t, 0, result.Failed)
	assert.ElementsMatch(t, []string{"Paris", "Oslo", "Lima"}, w.refreshed)
	assert.Equal(t, 3, w.forecasts)
}

func TestRefreshJob_Run_ListError(t *testing.T) {
	job := newJob(staticCities{err: errors.New("db down")}, &fakeWeather{}, worker.DefaultRefreshConfig())

	_, err := job.Run(context.Background())
	assert.Error(t, err)
}

func TestRefreshJob_Run_PartialFailure(t *testing.T) {
	w := &fakeWeather{failCity: "Atlantis", forecastE: errors.New("timeout")}
	job := newJob(staticCities{names: []string{"Paris", "Atlantis"}}, w, worker.DefaultRefreshConfig())

	result, err := job.Run(context.Background())
	require.NoError(t, err)

	assert.Equal(t, 1, result.Successful)
	assert.Equal(t, 1, result.Failed)
	// One weather failure plus one non-fatal forecast failure.
	assert.Len(t, result.Errors, 2)
}

func TestRefreshJob_Run_BoundedConcurrency(t *testing.T) {
	names := make([]string, 12)
	for i := range names {
		names[i] = string(rune('A' + i))
	}
	w := &fakeWeather{delay: 20 * time.Millisecond}
	cfg := worker.DefaultRefreshConfig()
	cfg.Concurrency = 3
	job := newJob(staticCities{names: names}, w, cfg)

	result, err := job.Run(context.Background())
	require.NoError(t, err)

	assert.Equal(t, 12, result.Successful)
	assert.LessOrEqual(t, w.maxFlight.Load(), int32(3))
}

func TestRefreshJob_Run_ContextCancellation(t *testing.T) {
	names := make([]string, 50)
	for i := range names {
		names[i] = "city"
	}
	w := &fakeWeather{delay: 50 * time.Millisecond}
	cfg := worker.DefaultRefreshConfig()
	cfg.Concurrency = 1
	job := newJob(staticCities{names: names}, w, cfg)

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Millisecond)
	defer cancel()

	result, err := job.Run(ctx)
	require.NoError(t, err)

	assert.Equal(t, 50, result.Successful+result.Failed)
	assert.Greater(t, result.Failed, 40)
}

func TestRefreshJob_HealthCheck(t *testing.T) {
	w := &fakeWeather{}
	job := newJob(staticCities{}, w, worker.RefreshConfig{HealthCheckCity: "Reykjavik"})

	require.NoError(t, job.HealthCheck(context.Background()))
	assert.Equal(t, []string{"Reykjavik"}, w.refreshed)

	failing := newJob(staticCities{}, &fakeWeather{failCity: "London"}, worker.RefreshConfig{})
	assert.Error(t, failing.HealthCheck(context.Background()))
}

func TestRefreshJob_Metrics(t *testing.T) {
	job := newJob(staticCities{names: []string{"Paris"}}, &fakeWeather{}, worker.DefaultRefreshConfig())

	_, err := job.Run(context.Background())
	require.NoError(t, err)

	metrics := job.GetMetrics()
	assert.Equal(t, int64(1), metrics.TotalRuns)
	assert.Equal(t, int64(1), metrics.CitiesRefreshed)
	assert.Equal(t, int64(1), metrics.ForecastRefresh)
	assert.NotZero(t, metrics.LastRunAt)

	snapshot := job.MetricsSnapshot()
	assert.Contains(t, snapshot, "total_runs")
	assert.Contains(t, snapshot, "cities_refreshed")
	assert.Contains(t, snapshot, "last_run_duration")
}

func TestRefreshJob_SchedulerRunsImmediately(t *testing.T) {
	w := &fakeWeather{}
	cfg := worker.DefaultRefreshConfig()
	cfg.Interval = time.Hour
	job := newJob(staticCities{names: []string{"Paris"}}, w, cfg)

	s := worker.NewScheduler(job, zerolog.Nop())
	require.NoError(t, s.Start(context.Background()))
	defer s.Stop()

	assert.True(t, s.Running())
	assert.Eventually(t, func() bool {
		return job.GetMetrics().TotalRuns == 1
	}, 2*time.Second, 10*time.Millisecond)
}
