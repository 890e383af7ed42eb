package models

import (
	"github.com/weathervibe/weathervibe/internal/media"
)

// Media is the background, video loop and ambient audio picked for a reading.
// Video and Audio are empty when switched off by a feature flag.
type Media struct {
	Background string `json:"background"`
	Video      string `json:"video,omitempty"`
	Audio      string `json:"audio,omitempty"`
	Category   string `json:"category"`
	TimeBucket string `json:"timeBucket"`
}

// NewMedia converts a resolved media set.
func NewMedia(s media.Set) Media {
	return Media{
		Background: s.Background,
		Video:      s.Video,
		Audio:      s.Audio,
		Category:   string(s.Category),
		TimeBucket: string(s.Bucket),
	}
}

// Temperature is a reading in both units, rounded to whole degrees.
type Temperature struct {
	Celsius    int `json:"celsius"`
	Fahrenheit int `json:"fahrenheit"`
}

// Location identifies where a reading was taken.
type Location struct {
	City    string  `json:"city"`
	Country string  `json:"country,omitempty"`
	Lat     float64 `json:"lat"`
	Lon     float64 `json:"lon"`
}

// CurrentWeatherResponse is the current-conditions panel.
type CurrentWeatherResponse struct {
	Location        Location    `json:"location"`
	Temperature     Temperature `json:"temperature"`
	FeelsLike       Temperature `json:"feelsLike"`
	Humidity        float64     `json:"humidity"`
	Pressure        float64     `json:"pressure"`
	WindSpeed       float64     `json:"windSpeed"`
	WindDirection   float64     `json:"windDirection"`
	CloudCover      float64     `json:"cloudCover"`
	Visibility      float64     `json:"visibility"`
	Condition       string      `json:"condition"`
	ConditionText   string      `json:"conditionText"`
	Description     string      `json:"description"`
	Icon            string      `json:"icon,omitempty"`
	Sunrise         *Timestamp  `json:"sunrise,omitempty"`
	Sunset          *Timestamp  `json:"sunset,omitempty"`
	LocalTime       string      `json:"localTime"`
	ObservedAt      Timestamp   `json:"observedAt"`
	Media           Media       `json:"media"`
	Recommendations []string    `json:"recommendations"`
}

// ForecastDay is one day of the forecast strip.
type ForecastDay struct {
	Time          Timestamp   `json:"time"`
	Temperature   Temperature `json:"temperature"`
	Condition     string      `json:"condition"`
	ConditionText string      `json:"conditionText"`
	Description   string      `json:"description"`
	Icon          string      `json:"icon,omitempty"`
	PrecipProb    float64     `json:"precipProbability"`
	Media         Media       `json:"media"`
}

// ForecastResponse is the day-by-day forecast strip.
type ForecastResponse struct {
	Location Location      `json:"location"`
	Days     []ForecastDay `json:"days"`
}

// SuggestionsResponse lists "Name, CC" labels for the search box.
type SuggestionsResponse struct {
	Suggestions []string `json:"suggestions"`
}
