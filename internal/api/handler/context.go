// Package handler provides HTTP handlers for the WeatherVibe API.
package handler

import (
	"context"
	"net/http"
	"strconv"
	"strings"

	"github.com/weathervibe/weathervibe/internal/api/middleware"
	"github.com/weathervibe/weathervibe/internal/validation"
	"github.com/weathervibe/weathervibe/internal/weather"
)

// GetUserID retrieves the authenticated user ID from the context.
// This is a convenience wrapper around middleware.GetUserID.
func GetUserID(ctx context.Context) string {
	return middleware.GetUserID(ctx)
}

// parseLimit reads an optional positive "limit" query parameter. Zero means
// the caller's default.
func parseLimit(r *http.Request) (int, error) {
	raw := r.URL.Query().Get("limit")
	if raw == "" {
		return 0, nil
	}
	n, err := strconv.Atoi(raw)
	if err != nil || n < 1 {
		return 0, validation.NewError("limit", "must be a positive integer")
	}
	return n, nil
}

// parseWeatherQuery reads ?city= or ?lat=&lon=.
func parseWeatherQuery(r *http.Request) (weather.Query, error) {
	q := r.URL.Query()
	city := strings.TrimSpace(q.Get("city"))
	rawLat, rawLon := q.Get("lat"), q.Get("lon")

	if rawLat == "" && rawLon == "" {
		return weather.CityQuery(city), nil
	}

	lat, err := parseFloat("lat", rawLat)
	if err != nil {
		return weather.Query{}, err
	}
	lon, err := parseFloat("lon", rawLon)
	if err != nil {
		return weather.Query{}, err
	}
	return weather.Query{City: city, Lat: &lat, Lon: &lon}, nil
}

func parseFloat(field, raw string) (float64, error) {
	if raw == "" {
		return 0, validation.NewError(field, "is required")
	}
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return 0, validation.NewError(field, "must be a number")
	}
	return v, nil
}

