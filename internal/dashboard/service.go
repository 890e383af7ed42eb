// Package dashboard combines weather observations with the media that
// decorates them.
package dashboard

import (
	"context"
	"time"

	"github.com/rs/zerolog"

	"github.com/weathervibe/weathervibe/internal/featureflags"
	"github.com/weathervibe/weathervibe/internal/media"
	"github.com/weathervibe/weathervibe/internal/weather"
)

// WeatherSource is the subset of the weather service the dashboard reads.
type WeatherSource interface {
	GetCurrentWeather(ctx context.Context, q weather.Query) (*weather.Observation, error)
	GetForecast(ctx context.Context, q weather.Query) (*weather.Forecast, error)
}

// FlagChecker reports whether a feature flag is enabled.
type FlagChecker interface {
	IsEnabled(ctx context.Context, key string) bool
}

// ResolutionRecorder counts resolved media sets.
type ResolutionRecorder interface {
	RecordResolution(ctx context.Context, category, bucket string)
}

// View is the current-conditions panel.
type View struct {
	Observation     *weather.Observation
	Media           media.Set
	Recommendations []string
	LocalTime       time.Time
}

// Day is one entry of the forecast strip.
type Day struct {
	Entry weather.ForecastEntry
	Media media.Set
}

// ForecastView is the day-by-day strip.
type ForecastView struct {
	Forecast *weather.Forecast
	Days     []Day
}

// ServiceConfig holds configuration for the dashboard service.
type ServiceConfig struct {
	Weather  WeatherSource
	Resolver *media.Resolver
	Flags    FlagChecker
	Logger   zerolog.Logger
	Metrics  ResolutionRecorder

	// DefaultBucket is used when a reading has no usable sun times.
	// Default media.BucketDay.
	DefaultBucket media.TimeBucket

	Now func() time.Time
}

// Service builds dashboard views.
type Service struct {
	weather       WeatherSource
	resolver      *media.Resolver
	flags         FlagChecker
	logger        zerolog.Logger
	metrics       ResolutionRecorder
	defaultBucket media.TimeBucket
	now           func() time.Time
}

// NewService creates a dashboard service. A nil Resolver uses media.Default().
func NewService(cfg ServiceConfig) *Service {
	if cfg.Resolver == nil {
		cfg.Resolver = media.Default()
	}
	if cfg.DefaultBucket == "" {
		cfg.DefaultBucket = media.BucketDay
	}
	if cfg.Now == nil {
		cfg.Now = time.Now
	}

	return &Service{
		weather:       cfg.Weather,
		resolver:      cfg.Resolver,
		flags:         cfg.Flags,
		logger:        cfg.Logger,
		metrics:       cfg.Metrics,
		defaultBucket: cfg.DefaultBucket,
		now:           cfg.Now,
	}
}

// Current returns current conditions for q with media and recommendations.
func (s *Service) Current(ctx context.Context, q weather.Query) (*View, error) {
	obs, err := s.weather.GetCurrentWeather(ctx, q)
	if err != nil {
		return nil, err
	}

	// A cached or stale observation can be an hour old; the scene follows the
	// clock so it turns to evening on time.
	now := s.now()
	at := obs.ObservedAt
	if now.After(at) {
		at = now
	}

	set := s.resolve(obs.ConditionText, at, obs.Sunrise, obs.Sunset)
	set = s.applyFlags(ctx, set)

	s.logger.Debug().
		Str("query", q.String()).
		Str("category", string(set.Category)).
		Str("bucket", string(set.Bucket)).
		Msg("resolved dashboard media")

	return &View{
		Observation:     obs,
		Media:           set,
		Recommendations: weather.Recommendations(obs),
		LocalTime:       obs.LocalTime(now),
	}, nil
}

// Forecast returns the daily strip for q. Each day is resolved at its own
// time against the city's sunrise and sunset moved onto that day.
func (s *Service) Forecast(ctx context.Context, q weather.Query) (*ForecastView, error) {
	f, err := s.weather.GetForecast(ctx, q)
	if err != nil {
		return nil, err
	}

	loc := weather.FixedZone(f.TimezoneOffset)
	daily := f.Daily()
	days := make([]Day, 0, len(daily))
	for _, entry := range daily {
		sunrise, sunset := AlignSunTimes(entry.Time, f.Sunrise, f.Sunset, loc)
		set := s.resolve(entry.ConditionText, entry.Time, sunrise, sunset)
		days = append(days, Day{Entry: entry, Media: s.applyFlags(ctx, set)})
	}

	return &ForecastView{Forecast: f, Days: days}, nil
}

// Resolve exposes the resolver for ad-hoc lookups.
func (s *Service) Resolve(ctx context.Context, reading media.Reading) media.Set {
	return s.applyFlags(ctx, s.resolve(reading.Condition, reading.ObservedAt, reading.Sunrise, reading.Sunset))
}

func (s *Service) resolve(condition string, at, sunrise, sunset time.Time) media.Set {
	if sunrise.IsZero() || sunset.IsZero() || !sunrise.Before(sunset) {
		return s.resolver.ResolveInBucket(condition, s.defaultBucket)
	}
	return s.resolver.Resolve(media.Reading{
		Condition:  condition,
		ObservedAt: at,
		Sunrise:    sunrise,
		Sunset:     sunset,
	})
}

func (s *Service) applyFlags(ctx context.Context, set media.Set) media.Set {
	if s.metrics != nil {
		s.metrics.RecordResolution(ctx, string(set.Category), string(set.Bucket))
	}
	if s.flags == nil {
		return set
	}
	if s.flags.IsEnabled(ctx, featureflags.FlagDisableAmbientAudio) {
		set.Audio = ""
	}
	if s.flags.IsEnabled(ctx, featureflags.FlagDisableVideoBackgrounds) {
		set.Video = ""
	}
	return set
}

// AlignSunTimes moves sunrise and sunset by whole days so they fall on the
// local calendar day of at. Zero inputs are returned unchanged.
func AlignSunTimes(at, sunrise, sunset time.Time, loc *time.Location) (time.Time, time.Time) {
	if sunrise.IsZero() || sunset.IsZero() {
		return sunrise, sunset
	}
	days := dayNumber(at.In(loc)) - dayNumber(sunrise.In(loc))
	if days == 0 {
		return sunrise, sunset
	}
	shift := time.Duration(days) * 24 * time.Hour
	return sunrise.Add(shift), sunset.Add(shift)
}

func dayNumber(t time.Time) int {
	y, m, d := t.Date()
	return int(time.Date(y, m, d, 0, 0, 0, 0, time.UTC).Unix() / 86400)
}
