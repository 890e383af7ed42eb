package media

import (
	"strings"
	"time"
)

// Transition window at each end of the day.
const transitionWindow = time.Hour

// keywords are tested in order and the first hit wins. Specific phenomena
// come before generic ones so "thunderstorm with rain" is a thunderstorm and
// "windy with cloud cover" is windy.
var keywords = []struct {
	substr   string
	category Category
}{
	{"thunderstorm", CategoryThunderstorm},
	{"snow", CategorySnow},
	{"rain", CategoryRain},
	{"fog", CategoryFog},
	{"haze", CategoryHaze},
	{"wind", CategoryWindy},
	{"cloud", CategoryCloudy},
	{"clear", CategoryClear},
}

// Classify maps free-form condition text to a Category. Matching is a
// case-insensitive substring test. Text that matches nothing is clear.
func Classify(condition string) Category {
	text := strings.ToLower(condition)
	for _, k := range keywords {
		if strings.Contains(text, k.substr) {
			return k.category
		}
	}
	return CategoryClear
}

// BucketFor returns the time bucket of at relative to the given sun times.
//
//	evening: [sunset-1h, sunset)
//	day:     [sunrise+1h, sunset-1h)
//	night:   everything else
func BucketFor(at, sunrise, sunset time.Time) TimeBucket {
	eveningStart := sunset.Add(-transitionWindow)
	dayStart := sunrise.Add(transitionWindow)

	switch {
	case !at.Before(eveningStart) && at.Before(sunset):
		return BucketEvening
	case !at.Before(dayStart) && at.Before(eveningStart):
		return BucketDay
	default:
		return BucketNight
	}
}
