package handler

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/weathervibe/weathervibe/internal/validation"
)

func TestParseLimit(t *testing.T) {
	tests := []struct {
		query   string
		want    int
		wantErr bool
	}{
		{"", 0, false},
		{"?limit=5", 5, false},
		{"?limit=0", 0, true},
		{"?limit=-2", 0, true},
		{"?limit=ten", 0, true},
	}

	for _, tt := range tests {
		t.Run(tt.query, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/v1/alerts"+tt.query, http.NoBody)
			got, err := parseLimit(req)
			if tt.wantErr {
				var verr *validation.Error
				require.True(t, errors.As(err, &verr))
				assert.Equal(t, "limit", verr.Fields[0].Field)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestParseWeatherQuery(t *testing.T) {
	t.Run("city is trimmed", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/v1/weather/current?city=%20Oslo%20", http.NoBody)
		q, err := parseWeatherQuery(req)
		require.NoError(t, err)
		assert.Equal(t, "Oslo", q.City)
		assert.Nil(t, q.Lat)
		assert.Nil(t, q.Lon)
	})

	t.Run("coordinates", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/v1/weather/current?lat=59.91&lon=10.75", http.NoBody)
		q, err := parseWeatherQuery(req)
		require.NoError(t, err)
		require.NotNil(t, q.Lat)
		require.NotNil(t, q.Lon)
		assert.InDelta(t, 59.91, *q.Lat, 1e-9)
		assert.InDelta(t, 10.75, *q.Lon, 1e-9)
	})

	t.Run("lon without lat", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/v1/weather/current?lon=10.75", http.NoBody)
		_, err := parseWeatherQuery(req)
		var verr *validation.Error
		require.True(t, errors.As(err, &verr))
		assert.Equal(t, "lat", verr.Fields[0].Field)
	})

	t.Run("not a number", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/v1/weather/current?lat=59.91&lon=east", http.NoBody)
		_, err := parseWeatherQuery(req)
		var verr *validation.Error
		require.True(t, errors.As(err, &verr))
		assert.Equal(t, "lon", verr.Fields[0].Field)
		assert.Equal(t, "must be a number", verr.Fields[0].Message)
	})
}
