package worker

import (
	"context"
	"sync"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"

	"github.com/weathervibe/weathervibe/internal/weather"
)

type recordingWeather struct {
	mu     sync.Mutex
	cities []string
	fail   bool
}

func (r *recordingWeather) Refresh(_ context.Context, q weather.Query) (*weather.Observation, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.cities = append(r.cities, q.City)
	if r.fail {
		return nil, weather.ErrProviderUnavailable
	}
	return &weather.Observation{}, nil
}

func (r *recordingWeather) GetForecast(context.Context, weather.Query) (*weather.Forecast, error) {
	return &weather.Forecast{}, nil
}

type names []string

func (n names) ListAllNames(context.Context) ([]string, error) { return n, nil }

func newTestJob(w WeatherRefresher) *RefreshJob {
	return NewRefreshJob(RefreshJobConfig{
		Config:  RefreshConfig{RefreshForecast: false},
		Logger:  zerolog.Nop(),
		Cities:  names{"Paris", "Rome"},
		Weather: w,
	})
}

func TestHandleJob(t *testing.T) {
	tests := []struct {
		name       string
		data       string
		fail       bool
		wantAck    bool
		wantCities []string
	}{
		{"refresh all", `{"job_type":"weather_refresh","refresh_all":true}`, false, true, []string{"Paris", "Rome"}},
		{"refresh one", `{"job_type":"weather_refresh","city":"Lima"}`, false, true, []string{"Lima"}},
		{"health check", `{"job_type":"health_check"}`, false, true, []string{"London"}},
		{"health check failing", `{"job_type":"health_check"}`, true, false, []string{"London"}},
		{"refresh failing", `{"job_type":"weather_refresh"}`, true, false, []string{"Paris", "Rome"}},
		{"unknown job", `{"job_type":"provider_refresh"}`, false, true, nil},
		{"garbage", `not json`, false, true, nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := &recordingWeather{fail: tt.fail}
			ack := handleJob(context.Background(), newTestJob(w), zerolog.Nop(), []byte(tt.data))

			assert.Equal(t, tt.wantAck, ack)
			assert.ElementsMatch(t, tt.wantCities, w.cities)
		})
	}
}
