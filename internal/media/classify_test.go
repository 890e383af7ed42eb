package media_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/weathervibe/weathervibe/internal/media"
)

func TestClassify(t *testing.T) {
	tests := []struct {
		condition string
		want      media.Category
	}{
		{"Clear", media.CategoryClear},
		{"clear sky", media.CategoryClear},
		{"Clouds", media.CategoryCloudy},
		{"overcast clouds", media.CategoryCloudy},
		{"Rain", media.CategoryRain},
		{"light rain", media.CategoryRain},
		{"LIGHT SNOW", media.CategorySnow},
		{"Thunderstorm", media.CategoryThunderstorm},
		{"thunderstorm with heavy rain", media.CategoryThunderstorm},
		{"rain and snow", media.CategorySnow},
		{"Haze", media.CategoryHaze},
		{"Fog", media.CategoryFog},
		{"freezing fog and haze", media.CategoryFog},
		{"windy", media.CategoryWindy},
		{"windy with cloud cover", media.CategoryWindy},
		{"", media.CategoryClear},
		{"Mist", media.CategoryClear},
		{"Tornado", media.CategoryClear},
		{"Thunder", media.CategoryClear},
	}

	for _, tt := range tests {
		t.Run(tt.condition, func(t *testing.T) {
			assert.Equal(t, tt.want, media.Classify(tt.condition))
		})
	}
}

func TestClassify_PriorityIsDeterministic(t *testing.T) {
	first := media.Classify("windy with cloud cover")
	for i := 0; i < 20; i++ {
		assert.Equal(t, first, media.Classify("windy with cloud cover"))
	}
	assert.Equal(t, media.CategoryWindy, first)

	// Word order in the text does not change the outcome.
	assert.Equal(t, media.CategoryWindy, media.Classify("cloud cover, windy"))
}

func TestBucketFor_Boundaries(t *testing.T) {
	tests := []struct {
		name string
		at   time.Time
		want media.TimeBucket
	}{
		{"midnight", at(0, 0), media.BucketNight},
		{"sunrise", at(6, 0), media.BucketNight},
		{"just before day starts", at(6, 59), media.BucketNight},
		{"day starts one hour after sunrise", at(7, 0), media.BucketDay},
		{"noon", at(12, 0), media.BucketDay},
		{"just before evening", at(16, 59), media.BucketDay},
		{"evening starts one hour before sunset", at(17, 0), media.BucketEvening},
		{"just before sunset", at(17, 59), media.BucketEvening},
		{"sunset", at(18, 0), media.BucketNight},
		{"late night", at(23, 30), media.BucketNight},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, media.BucketFor(tt.at, sunrise, sunset))
		})
	}
}

func TestBucketFor_TotalAndExclusive(t *testing.T) {
	counts := map[media.TimeBucket]int{}
	start := at(0, 0)

	for minute := 0; minute < 24*60; minute++ {
		now := start.Add(time.Duration(minute) * time.Minute)
		bucket := media.BucketFor(now, sunrise, sunset)

		switch {
		case !now.Before(sunset.Add(-time.Hour)) && now.Before(sunset):
			assert.Equal(t, media.BucketEvening, bucket, now)
		case !now.Before(sunrise.Add(time.Hour)) && now.Before(sunset.Add(-time.Hour)):
			assert.Equal(t, media.BucketDay, bucket, now)
		default:
			assert.Equal(t, media.BucketNight, bucket, now)
		}
		counts[bucket]++
	}

	assert.Equal(t, 10*60, counts[media.BucketDay])
	assert.Equal(t, 60, counts[media.BucketEvening])
	assert.Equal(t, 13*60, counts[media.BucketNight])
}

func TestParse(t *testing.T) {
	b, err := media.ParseTimeBucket("evening")
	assert.NoError(t, err)
	assert.Equal(t, media.BucketEvening, b)

	_, err = media.ParseTimeBucket("morning")
	assert.Error(t, err)

	c, err := media.ParseCategory("fog")
	assert.NoError(t, err)
	assert.Equal(t, media.CategoryFog, c)

	_, err = media.ParseCategory("sunny")
	assert.Error(t, err)
}
