// Package openweathermap implements weather.Provider on the OpenWeatherMap
// current weather, 5-day forecast and direct geocoding APIs.
package openweathermap

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/rs/zerolog"

	"github.com/weathervibe/weathervibe/internal/provider/resilience"
	"github.com/weathervibe/weathervibe/internal/weather"
)

const (
	// ProviderName identifies this weather provider.
	ProviderName = "openweathermap"

	// DefaultBaseURL is the OpenWeatherMap data API base URL.
	DefaultBaseURL = "https://api.openweathermap.org/data/2.5"

	// DefaultGeoURL is the OpenWeatherMap geocoding API base URL.
	DefaultGeoURL = "https://api.openweathermap.org/geo/1.0"
)

// ClientConfig holds configuration for the OpenWeatherMap client.
type ClientConfig struct {
	// APIKey is the OpenWeatherMap API key (required).
	APIKey string

	BaseURL string
	GeoURL  string

	// HTTPClient defaults to a resilient client named ProviderName.
	HTTPClient *resilience.Client

	Logger zerolog.Logger
}

// Client is an OpenWeatherMap API client.
type Client struct {
	apiKey     string
	baseURL    string
	geoURL     string
	httpClient *resilience.Client
	logger     zerolog.Logger
}

var _ weather.Provider = (*Client)(nil)

// NewClient creates a new OpenWeatherMap client.
func NewClient(cfg ClientConfig) *Client {
	if cfg.BaseURL == "" {
		cfg.BaseURL = DefaultBaseURL
	}
	if cfg.GeoURL == "" {
		cfg.GeoURL = DefaultGeoURL
	}
	if cfg.HTTPClient == nil {
		cfg.HTTPClient = resilience.NewClient(resilience.DefaultClientConfig(ProviderName))
	}

	return &Client{
		apiKey:     cfg.APIKey,
		baseURL:    cfg.BaseURL,
		geoURL:     cfg.GeoURL,
		httpClient: cfg.HTTPClient,
		logger:     cfg.Logger,
	}
}

// Name returns the provider name.
func (c *Client) Name() string {
	return ProviderName
}

// GetCurrentWeather fetches current conditions.
func (c *Client) GetCurrentWeather(ctx context.Context, q weather.Query) (*weather.Observation, error) {
	var resp currentWeatherResponse
	if err := c.get(ctx, c.baseURL+"/weather", c.locationParams(q), &resp); err != nil {
		return nil, err
	}
	if len(resp.Weather) == 0 {
		return nil, fmt.Errorf("%w: no weather conditions", weather.ErrMalformedPayload)
	}
	return toObservation(&resp), nil
}

// GetForecast fetches the 5-day forecast in 3-hour steps.
func (c *Client) GetForecast(ctx context.Context, q weather.Query) (*weather.Forecast, error) {
	var resp forecastResponse
	if err := c.get(ctx, c.baseURL+"/forecast", c.locationParams(q), &resp); err != nil {
		return nil, err
	}
	if len(resp.List) == 0 {
		return nil, fmt.Errorf("%w: empty forecast", weather.ErrMalformedPayload)
	}
	return toForecast(&resp), nil
}

// SearchPlaces resolves a partial place name with the direct geocoding API.
func (c *Client) SearchPlaces(ctx context.Context, text string, limit int) ([]weather.Place, error) {
	params := url.Values{}
	params.Set("q", text)
	params.Set("limit", strconv.Itoa(limit))

	var resp []geoResponse
	if err := c.get(ctx, c.geoURL+"/direct", params, &resp); err != nil {
		if errors.Is(err, weather.ErrCityNotFound) {
			return []weather.Place{}, nil
		}
		return nil, err
	}

	places := make([]weather.Place, 0, len(resp))
	for _, g := range resp {
		places = append(places, weather.Place{
			Name:    g.Name,
			Country: g.Country,
			State:   g.State,
			Lat:     g.Lat,
			Lon:     g.Lon,
		})
	}
	return places, nil
}

func (c *Client) locationParams(q weather.Query) url.Values {
	params := url.Values{}
	if q.ByCity() {
		params.Set("q", q.City)
	} else {
		params.Set("lat", strconv.FormatFloat(*q.Lat, 'f', 6, 64))
		params.Set("lon", strconv.FormatFloat(*q.Lon, 'f', 6, 64))
	}
	params.Set("units", "metric")
	return params
}

// get performs a GET and decodes the JSON body into dest, mapping failures
// to the weather error kinds.
func (c *Client) get(ctx context.Context, endpoint string, params url.Values, dest any) error {
	params.Set("appid", c.apiKey)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint+"?"+params.Encode(), http.NoBody)
	if err != nil {
		return fmt.Errorf("creating request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %w", weather.ErrProviderUnavailable, err)
	}
	defer resp.Body.Close()

	c.logger.Debug().
		Str("endpoint", endpoint).
		Int("status", resp.StatusCode).
		Msg("openweathermap response")

	switch {
	case resp.StatusCode == http.StatusNotFound:
		return weather.ErrCityNotFound
	case resp.StatusCode == http.StatusBadRequest:
		// OWM answers 400 "Nothing to geocode" for unusable names.
		return weather.ErrCityNotFound
	case resp.StatusCode >= http.StatusInternalServerError,
		resp.StatusCode == http.StatusTooManyRequests,
		resp.StatusCode == http.StatusUnauthorized:
		return fmt.Errorf("%w: unexpected status code: %d", weather.ErrProviderUnavailable, resp.StatusCode)
	case resp.StatusCode != http.StatusOK:
		return fmt.Errorf("%w: unexpected status code: %d", weather.ErrMalformedPayload, resp.StatusCode)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, 4<<20))
	if err != nil {
		return fmt.Errorf("%w: reading response: %w", weather.ErrProviderUnavailable, err)
	}
	if err := json.Unmarshal(body, dest); err != nil {
		return fmt.Errorf("%w: decoding response: %w", weather.ErrMalformedPayload, err)
	}
	return nil
}

func toObservation(resp *currentWeatherResponse) *weather.Observation {
	obs := &weather.Observation{
		City:           resp.Name,
		Country:        resp.Sys.Country,
		Lat:            resp.Coord.Lat,
		Lon:            resp.Coord.Lon,
		Temperature:    resp.Main.Temp,
		FeelsLike:      resp.Main.FeelsLike,
		TempMin:        resp.Main.TempMin,
		TempMax:        resp.Main.TempMax,
		Humidity:       resp.Main.Humidity,
		Pressure:       resp.Main.Pressure,
		WindSpeed:      resp.Wind.Speed,
		WindDirection:  resp.Wind.Deg,
		WindGust:       resp.Wind.Gust,
		CloudCover:     resp.Clouds.All,
		Visibility:     float64(resp.Visibility),
		TimezoneOffset: resp.Timezone,
		Sunrise:        unixOrZero(resp.Sys.Sunrise),
		Sunset:         unixOrZero(resp.Sys.Sunset),
		ObservedAt:     time.Unix(resp.Dt, 0).UTC(),
		FetchedAt:      time.Now().UTC(),
	}

	w := resp.Weather[0]
	obs.Condition = mapCondition(w.Main)
	obs.ConditionText = w.Main
	obs.Description = w.Description
	obs.Icon = w.Icon

	return obs
}

func toForecast(resp *forecastResponse) *weather.Forecast {
	f := &weather.Forecast{
		City:           resp.City.Name,
		Country:        resp.City.Country,
		Lat:            resp.City.Coord.Lat,
		Lon:            resp.City.Coord.Lon,
		Sunrise:        unixOrZero(resp.City.Sunrise),
		Sunset:         unixOrZero(resp.City.Sunset),
		TimezoneOffset: resp.City.Timezone,
		Entries:        make([]weather.ForecastEntry, 0, len(resp.List)),
		FetchedAt:      time.Now().UTC(),
	}

	for _, item := range resp.List {
		entry := weather.ForecastEntry{
			Time:          time.Unix(item.Dt, 0).UTC(),
			Temperature:   item.Main.Temp,
			FeelsLike:     item.Main.FeelsLike,
			TempMin:       item.Main.TempMin,
			TempMax:       item.Main.TempMax,
			Humidity:      item.Main.Humidity,
			WindSpeed:     item.Wind.Speed,
			WindDirection: item.Wind.Deg,
			CloudCover:    item.Clouds.All,
			PrecipProb:    item.Pop,
			Condition:     weather.ConditionUnknown,
		}
		if len(item.Weather) > 0 {
			entry.Condition = mapCondition(item.Weather[0].Main)
			entry.ConditionText = item.Weather[0].Main
			entry.Description = item.Weather[0].Description
			entry.Icon = item.Weather[0].Icon
		}
		f.Entries = append(f.Entries, entry)
	}

	return f
}

func unixOrZero(sec int64) time.Time {
	if sec == 0 {
		return time.Time{}
	}
	return time.Unix(sec, 0).UTC()
}

// mapCondition maps an OpenWeatherMap condition group to a domain condition.
func mapCondition(group string) weather.Condition {
	switch group {
	case "Clear":
		return weather.ConditionClear
	case "Clouds":
		return weather.ConditionClouds
	case "Rain":
		return weather.ConditionRain
	case "Drizzle":
		return weather.ConditionDrizzle
	case "Thunderstorm":
		return weather.ConditionThunderstorm
	case "Snow":
		return weather.ConditionSnow
	case "Mist":
		return weather.ConditionMist
	case "Fog":
		return weather.ConditionFog
	case "Haze", "Smoke", "Dust", "Sand", "Ash", "Squall", "Tornado":
		return weather.ConditionHaze
	default:
		return weather.ConditionUnknown
	}
}

type conditionJSON struct {
	ID          int    `json:"id"`
	Main        string `json:"main"`
	Description string `json:"description"`
	Icon        string `json:"icon"`
}

type mainJSON struct {
	Temp      float64 `json:"temp"`
	FeelsLike float64 `json:"feels_like"`
	TempMin   float64 `json:"temp_min"`
	TempMax   float64 `json:"temp_max"`
	Pressure  float64 `json:"pressure"`
	Humidity  float64 `json:"humidity"`
}

type windJSON struct {
	Speed float64 `json:"speed"`
	Deg   float64 `json:"deg"`
	Gust  float64 `json:"gust"`
}

type coordJSON struct {
	Lat float64 `json:"lat"`
	Lon float64 `json:"lon"`
}

type currentWeatherResponse struct {
	Coord      coordJSON       `json:"coord"`
	Weather    []conditionJSON `json:"weather"`
	Main       mainJSON        `json:"main"`
	Visibility int             `json:"visibility"`
	Wind       windJSON        `json:"wind"`
	Clouds     struct {
		All float64 `json:"all"`
	} `json:"clouds"`
	Dt  int64 `json:"dt"`
	Sys struct {
		Country string `json:"country"`
		Sunrise int64  `json:"sunrise"`
		Sunset  int64  `json:"sunset"`
	} `json:"sys"`
	Timezone int    `json:"timezone"`
	Name     string `json:"name"`
}

type forecastResponse struct {
	List []struct {
		Dt      int64           `json:"dt"`
		Main    mainJSON        `json:"main"`
		Weather []conditionJSON `json:"weather"`
		Clouds  struct {
			All float64 `json:"all"`
		} `json:"clouds"`
		Wind windJSON `json:"wind"`
		Pop  float64  `json:"pop"`
	} `json:"list"`
	City struct {
		Name     string    `json:"name"`
		Country  string    `json:"country"`
		Coord    coordJSON `json:"coord"`
		Timezone int       `json:"timezone"`
		Sunrise  int64     `json:"sunrise"`
		Sunset   int64     `json:"sunset"`
	} `json:"city"`
}

type geoResponse struct {
	Name    string  `json:"name"`
	Country string  `json:"country"`
	State   string  `json:"state"`
	Lat     float64 `json:"lat"`
	Lon     float64 `json:"lon"`
}
