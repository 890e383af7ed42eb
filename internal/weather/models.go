package weather

import (
	"errors"
	"fmt"
	"math"
	"strings"
	"time"
)

// Error kinds returned by providers and the service. Provider clients wrap
// them, so callers should use errors.Is.
var (
	ErrProviderUnavailable = errors.New("weather provider unavailable")
	ErrCityNotFound        = errors.New("city not found")
	ErrMalformedPayload    = errors.New("malformed weather payload")
	ErrInvalidQuery        = errors.New("invalid weather query")
	ErrInvalidCoordinates  = errors.New("invalid coordinates")
)

// Query selects a location by city name or by coordinates.
type Query struct {
	City string
	Lat  *float64
	Lon  *float64
}

// CityQuery returns a query by city name.
func CityQuery(city string) Query {
	return Query{City: city}
}

// CoordQuery returns a query by coordinates.
func CoordQuery(lat, lon float64) Query {
	return Query{Lat: &lat, Lon: &lon}
}

// ByCity reports whether the query names a city.
func (q Query) ByCity() bool {
	return strings.TrimSpace(q.City) != ""
}

// Validate requires exactly one of a city name or a full coordinate pair.
func (q Query) Validate() error {
	hasCoords := q.Lat != nil || q.Lon != nil
	switch {
	case q.ByCity() && hasCoords:
		return fmt.Errorf("%w: use either city or lat/lon", ErrInvalidQuery)
	case q.ByCity():
		if len(q.City) > 100 {
			return fmt.Errorf("%w: city name too long", ErrInvalidQuery)
		}
		return nil
	case q.Lat == nil || q.Lon == nil:
		return fmt.Errorf("%w: city or lat/lon required", ErrInvalidQuery)
	default:
		return validateCoordinates(*q.Lat, *q.Lon)
	}
}

func (q Query) String() string {
	if q.ByCity() {
		return q.City
	}
	if q.Lat != nil && q.Lon != nil {
		return fmt.Sprintf("%.4f,%.4f", *q.Lat, *q.Lon)
	}
	return ""
}

// Observation is the current weather at a place.
type Observation struct {
	City    string
	Country string
	Lat     float64
	Lon     float64

	// Temperatures in Celsius
	Temperature float64
	FeelsLike   float64
	TempMin     float64
	TempMax     float64

	Humidity float64 // percent
	Pressure float64 // hPa

	WindSpeed     float64 // m/s
	WindDirection float64 // degrees
	WindGust      float64 // m/s, 0 if not reported

	CloudCover float64 // percent
	Visibility float64 // meters

	Condition Condition
	// ConditionText is the provider's condition group, e.g. "Rain". It is
	// what media resolution classifies.
	ConditionText string
	Description   string
	Icon          string

	Sunrise time.Time
	Sunset  time.Time

	// TimezoneOffset is the location's UTC offset in seconds.
	TimezoneOffset int

	ObservedAt time.Time
	FetchedAt  time.Time
}

// TemperatureCelsius returns the temperature rounded to whole degrees.
func (o *Observation) TemperatureCelsius() int {
	return int(math.Round(o.Temperature))
}

// TemperatureFahrenheit converts the rounded Celsius value, matching what the
// dashboard displays next to it.
func (o *Observation) TemperatureFahrenheit() int {
	return CelsiusToFahrenheit(float64(o.TemperatureCelsius()))
}

// CelsiusToFahrenheit converts and rounds to whole degrees.
func CelsiusToFahrenheit(c float64) int {
	return int(math.Round(c*9/5 + 32))
}

// HasSunTimes reports whether sunrise and sunset are usable. They are not
// during polar day or night, when the provider reports zero.
func (o *Observation) HasSunTimes() bool {
	return !o.Sunrise.IsZero() && !o.Sunset.IsZero() && o.Sunrise.Before(o.Sunset)
}

// Location returns the observation's fixed-offset time zone.
func (o *Observation) Location() *time.Location {
	return FixedZone(o.TimezoneOffset)
}

// LocalTime returns t in the observation's time zone.
func (o *Observation) LocalTime(t time.Time) time.Time {
	return t.In(o.Location())
}

// FixedZone returns a zone for a UTC offset in seconds.
func FixedZone(offsetSeconds int) *time.Location {
	sign := "+"
	off := offsetSeconds
	if off < 0 {
		sign = "-"
		off = -off
	}
	return time.FixedZone(fmt.Sprintf("UTC%s%02d:%02d", sign, off/3600, (off%3600)/60), offsetSeconds)
}

// Condition is the normalized provider condition group.
type Condition string

const (
	ConditionClear        Condition = "CLEAR"
	ConditionClouds       Condition = "CLOUDS"
	ConditionRain         Condition = "RAIN"
	ConditionDrizzle      Condition = "DRIZZLE"
	ConditionThunderstorm Condition = "THUNDERSTORM"
	ConditionSnow         Condition = "SNOW"
	ConditionMist         Condition = "MIST"
	ConditionFog          Condition = "FOG"
	ConditionHaze         Condition = "HAZE"
	ConditionUnknown      Condition = "UNKNOWN"
)

// Forecast is a 5-day forecast in 3-hour steps.
type Forecast struct {
	City    string
	Country string
	Lat     float64
	Lon     float64

	Sunrise        time.Time
	Sunset         time.Time
	TimezoneOffset int

	Entries   []ForecastEntry
	FetchedAt time.Time
}

// ForecastEntry is one 3-hour step.
type ForecastEntry struct {
	Time          time.Time
	Temperature   float64
	FeelsLike     float64
	TempMin       float64
	TempMax       float64
	Humidity      float64
	WindSpeed     float64
	WindDirection float64
	CloudCover    float64
	PrecipProb    float64 // 0-1
	Condition     Condition
	ConditionText string
	Description   string
	Icon          string
}

// entriesPerDay is the number of 3-hour steps in 24 hours.
const entriesPerDay = 8

// Daily samples one entry per 24 hours, starting with the first.
func (f *Forecast) Daily() []ForecastEntry {
	days := make([]ForecastEntry, 0, len(f.Entries)/entriesPerDay+1)
	for i := 0; i < len(f.Entries); i += entriesPerDay {
		days = append(days, f.Entries[i])
	}
	return days
}

// Place is a geocoding match.
type Place struct {
	Name    string  `json:"name"`
	Country string  `json:"country"`
	State   string  `json:"state,omitempty"`
	Lat     float64 `json:"lat"`
	Lon     float64 `json:"lon"`
}

// Label formats the place the way the search box shows it.
func (p Place) Label() string {
	if p.Country == "" {
		return p.Name
	}
	return p.Name + ", " + p.Country
}

func validateCoordinates(lat, lon float64) error {
	if lat < -90 || lat > 90 || lon < -180 || lon > 180 {
		return ErrInvalidCoordinates
	}
	return nil
}
