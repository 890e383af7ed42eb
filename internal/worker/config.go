// Package worker keeps the weather cache warm for saved cities.
package worker

import (
	"time"
)

// RefreshConfig holds configuration for the refresh job.
type RefreshConfig struct {
	// Concurrency is the number of cities refreshed at once.
	// Default: 3
	Concurrency int

	// Timeout bounds the refresh of a single city.
	// Default: 30 seconds
	Timeout time.Duration

	// Interval is how often the scheduler runs the job.
	// Default: 15 minutes
	Interval time.Duration

	// RefreshForecast also warms the forecast cache.
	// Default: true
	RefreshForecast bool

	// HealthCheckCity is refreshed by health_check jobs.
	// Default: London
	HealthCheckCity string
}

// DefaultRefreshConfig returns the default refresh configuration.
func DefaultRefreshConfig() RefreshConfig {
	return RefreshConfig{
		Concurrency:     3,
		Timeout:         30 * time.Second,
		Interval:        15 * time.Minute,
		RefreshForecast: true,
		HealthCheckCity: "London",
	}
}

// withDefaults fills zero fields from DefaultRefreshConfig.
func (c RefreshConfig) withDefaults() RefreshConfig {
	d := DefaultRefreshConfig()
	if c.Concurrency <= 0 {
		c.Concurrency = d.Concurrency
	}
	if c.Timeout <= 0 {
		c.Timeout = d.Timeout
	}
	if c.Interval <= 0 {
		c.Interval = d.Interval
	}
	if c.HealthCheckCity == "" {
		c.HealthCheckCity = d.HealthCheckCity
	}
	return c
}
