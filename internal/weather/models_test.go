package weather_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/weathervibe/weathervibe/internal/weather"
)

func TestQuery_Validate(t *testing.T) {
	lat, lon := 48.85, 2.35
	bad := 95.0

	tests := []struct {
		name    string
		query   weather.Query
		wantErr error
	}{
		{"city", weather.CityQuery("Paris"), nil},
		{"coordinates", weather.CoordQuery(lat, lon), nil},
		{"empty", weather.Query{}, weather.ErrInvalidQuery},
		{"blank city", weather.CityQuery("   "), weather.ErrInvalidQuery},
		{"both", weather.Query{City: "Paris", Lat: &lat, Lon: &lon}, weather.ErrInvalidQuery},
		{"only lat", weather.Query{Lat: &lat}, weather.ErrInvalidQuery},
		{"lat out of range", weather.Query{Lat: &bad, Lon: &lon}, weather.ErrInvalidCoordinates},
		{"city too long", weather.CityQuery(string(make([]byte, 101))), weather.ErrInvalidQuery},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.query.Validate()
			if tt.wantErr == nil {
				assert.NoError(t, err)
				return
			}
			assert.ErrorIs(t, err, tt.wantErr)
		})
	}
}

func TestObservation_Fahrenheit(t *testing.T) {
	tests := []struct {
		celsius float64
		wantC   int
		wantF   int
	}{
		{0, 0, 32},
		{100, 100, 212},
		{-40, -40, -40},
		{21.6, 22, 72},
		{12.4, 12, 54},
	}

	for _, tt := range tests {
		obs := &weather.Observation{Temperature: tt.celsius}
		assert.Equal(t, tt.wantC, obs.TemperatureCelsius())
		assert.Equal(t, tt.wantF, obs.TemperatureFahrenheit())
	}
}

func TestObservation_HasSunTimes(t *testing.T) {
	rise := time.Date(2024, 6, 1, 4, 43, 0, 0, time.UTC)
	set := time.Date(2024, 6, 1, 20, 10, 0, 0, time.UTC)

	assert.True(t, (&weather.Observation{Sunrise: rise, Sunset: set}).HasSunTimes())
	assert.False(t, (&weather.Observation{Sunrise: set, Sunset: rise}).HasSunTimes())
	assert.False(t, (&weather.Observation{}).HasSunTimes())
}

func TestObservation_LocalTime(t *testing.T) {
	obs := &weather.Observation{TimezoneOffset: -5 * 3600}
	local := obs.LocalTime(time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC))

	assert.Equal(t, 7, local.Hour())
	assert.Equal(t, "UTC-05:00", local.Location().String())
	assert.Equal(t, "UTC+05:30", weather.FixedZone(5*3600+1800).String())
}

func TestForecast_Daily(t *testing.T) {
	f := &weather.Forecast{}
	for i := 0; i < 40; i++ {
		f.Entries = append(f.Entries, weather.ForecastEntry{Temperature: float64(i)})
	}

	daily := f.Daily()
	assert.Len(t, daily, 5)
	for i, d := range daily {
		assert.Equal(t, float64(i*8), d.Temperature)
	}

	assert.Empty(t, (&weather.Forecast{}).Daily())
}

func TestPlace_Label(t *testing.T) {
	assert.Equal(t, "Berlin, DE", weather.Place{Name: "Berlin", Country: "DE"}.Label())
	assert.Equal(t, "Berlin", weather.Place{Name: "Berlin"}.Label())
}

func TestRecommendations(t *testing.T) {
	tests := []struct {
		name string
		obs  *weather.Observation
		want []string
	}{
		{"mild and clear", &weather.Observation{Temperature: 20, Condition: weather.ConditionClear}, nil},
		{"cold", &weather.Observation{Temperature: 5, Condition: weather.ConditionClouds}, []string{"Wear warm clothes"}},
		{"hot", &weather.Observation{Temperature: 34, Condition: weather.ConditionClear}, []string{"Stay hydrated"}},
		{"cold rain", &weather.Observation{Temperature: 9, Condition: weather.ConditionRain}, []string{"Wear warm clothes", "Carry an umbrella"}},
		{"drizzle", &weather.Observation{Temperature: 18, Condition: weather.ConditionDrizzle}, []string{"Carry an umbrella"}},
		{"snow", &weather.Observation{Temperature: -2, Condition: weather.ConditionSnow}, []string{"Wear warm clothes", "Wear a jacket"}},
		{"storm", &weather.Observation{Temperature: 22, Condition: weather.ConditionThunderstorm}, []string{"Stay indoors"}},
		{"nil", nil, nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, weather.Recommendations(tt.obs))
		})
	}
}
