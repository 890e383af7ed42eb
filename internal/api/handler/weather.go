package handler

import (
	"context"
	"net/http"

	"github.com/rs/zerolog"

	"github.com/weathervibe/weathervibe/internal/api/models"
	"github.com/weathervibe/weathervibe/internal/api/response"
	"github.com/weathervibe/weathervibe/internal/dashboard"
	"github.com/weathervibe/weathervibe/internal/weather"
)

// Dashboard builds the current and forecast panels.
type Dashboard interface {
	Current(ctx context.Context, q weather.Query) (*dashboard.View, error)
	Forecast(ctx context.Context, q weather.Query) (*dashboard.ForecastView, error)
}

// CitySuggester completes partial city names.
type CitySuggester interface {
	SuggestCities(ctx context.Context, text string) ([]string, error)
}

// WeatherHandler handles weather and geocoding endpoints.
type WeatherHandler struct {
	dashboard Dashboard
	suggester CitySuggester
	logger    zerolog.Logger
}

// NewWeatherHandler creates a new WeatherHandler.
func NewWeatherHandler(d Dashboard, s CitySuggester, logger zerolog.Logger) *WeatherHandler {
	return &WeatherHandler{dashboard: d, suggester: s, logger: logger}
}

// Current handles GET /v1/weather/current?city= or ?lat=&lon=.
func (h *WeatherHandler) Current(w http.ResponseWriter, r *http.Request) {
	q, err := parseWeatherQuery(r)
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}

	view, err := h.dashboard.Current(r.Context(), q)
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}

	response.JSON(w, r, http.StatusOK, currentResponse(view))
}

// Forecast handles GET /v1/weather/forecast?city= or ?lat=&lon=.
func (h *WeatherHandler) Forecast(w http.ResponseWriter, r *http.Request) {
	q, err := parseWeatherQuery(r)
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}

	fv, err := h.dashboard.Forecast(r.Context(), q)
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}

	f := fv.Forecast
	resp := models.ForecastResponse{
		Location: models.Location{City: f.City, Country: f.Country, Lat: f.Lat, Lon: f.Lon},
		Days:     make([]models.ForecastDay, 0, len(fv.Days)),
	}
	for _, d := range fv.Days {
		e := d.Entry
		resp.Days = append(resp.Days, models.ForecastDay{
			Time:          models.Timestamp(e.Time),
			Temperature:   temperature(e.Temperature),
			Condition:     string(e.Condition),
			ConditionText: e.ConditionText,
			Description:   e.Description,
			Icon:          e.Icon,
			PrecipProb:    e.PrecipProb,
			Media:         models.NewMedia(d.Media),
		})
	}
	response.JSON(w, r, http.StatusOK, resp)
}

// Suggestions handles GET /v1/geo/suggestions?q=.
func (h *WeatherHandler) Suggestions(w http.ResponseWriter, r *http.Request) {
	labels, err := h.suggester.SuggestCities(r.Context(), r.URL.Query().Get("q"))
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}
	response.JSON(w, r, http.StatusOK, models.SuggestionsResponse{Suggestions: labels})
}

func currentResponse(view *dashboard.View) models.CurrentWeatherResponse {
	obs := view.Observation
	resp := models.CurrentWeatherResponse{
		Location:        models.Location{City: obs.City, Country: obs.Country, Lat: obs.Lat, Lon: obs.Lon},
		Temperature:     temperature(obs.Temperature),
		FeelsLike:       temperature(obs.FeelsLike),
		Humidity:        obs.Humidity,
		Pressure:        obs.Pressure,
		WindSpeed:       obs.WindSpeed,
		WindDirection:   obs.WindDirection,
		CloudCover:      obs.CloudCover,
		Visibility:      obs.Visibility,
		Condition:       string(obs.Condition),
		ConditionText:   obs.ConditionText,
		Description:     obs.Description,
		Icon:            obs.Icon,
		LocalTime:       view.LocalTime.Format("15:04"),
		ObservedAt:      models.Timestamp(obs.ObservedAt),
		Media:           models.NewMedia(view.Media),
		Recommendations: view.Recommendations,
	}
	if obs.HasSunTimes() {
		sunrise, sunset := models.Timestamp(obs.Sunrise), models.Timestamp(obs.Sunset)
		resp.Sunrise, resp.Sunset = &sunrise, &sunset
	}
	if resp.Recommendations == nil {
		resp.Recommendations = []string{}
	}
	return resp
}

func temperature(c float64) models.Temperature {
	o := weather.Observation{Temperature: c}
	return models.Temperature{Celsius: o.TemperatureCelsius(), Fahrenheit: o.TemperatureFahrenheit()}
}
