package media

import (
	"fmt"
	"time"
)

// TimeBucket is the part of the day a reading falls in.
type TimeBucket string

const (
	BucketDay     TimeBucket = "day"
	BucketEvening TimeBucket = "evening"
	BucketNight   TimeBucket = "night"
)

// Buckets lists every time bucket.
var Buckets = []TimeBucket{BucketDay, BucketEvening, BucketNight}

// Category is the coarse weather classification used to pick media.
type Category string

const (
	CategoryClear        Category = "clear"
	CategoryCloudy       Category = "cloudy"
	CategoryRain         Category = "rain"
	CategorySnow         Category = "snow"
	CategoryThunderstorm Category = "thunderstorm"
	CategoryHaze         Category = "haze"
	CategoryFog          Category = "fog"
	CategoryWindy        Category = "windy"
)

// Categories lists every category.
var Categories = []Category{
	CategoryClear,
	CategoryCloudy,
	CategoryRain,
	CategorySnow,
	CategoryThunderstorm,
	CategoryHaze,
	CategoryFog,
	CategoryWindy,
}

// ParseTimeBucket converts a string to a TimeBucket.
func ParseTimeBucket(s string) (TimeBucket, error) {
	for _, b := range Buckets {
		if string(b) == s {
			return b, nil
		}
	}
	return "", fmt.Errorf("unknown time bucket %q", s)
}

// ParseCategory converts a string to a Category.
func ParseCategory(s string) (Category, error) {
	for _, c := range Categories {
		if string(c) == s {
			return c, nil
		}
	}
	return "", fmt.Errorf("unknown category %q", s)
}

func (b TimeBucket) valid() bool {
	_, err := ParseTimeBucket(string(b))
	return err == nil
}

func (c Category) valid() bool {
	_, err := ParseCategory(string(c))
	return err == nil
}

// Reading is the part of a weather observation the resolver looks at.
type Reading struct {
	// Condition is the provider's free-form condition text, e.g. "light snow".
	Condition string

	// ObservedAt is the observation instant. Zero means now.
	ObservedAt time.Time

	Sunrise time.Time
	Sunset  time.Time
}

// Visual is the background image and video loop for a scene.
type Visual struct {
	Background string `json:"background"`
	Video      string `json:"video"`
}

// Set is a resolved media triple together with the classification that produced it.
type Set struct {
	Background string     `json:"background"`
	Video      string     `json:"video"`
	Audio      string     `json:"audio"`
	Category   Category   `json:"category"`
	Bucket     TimeBucket `json:"bucket"`
}
