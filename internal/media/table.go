package media

import (
	"errors"
	"fmt"
)

// ErrInvalidTable is returned when a media table fails validation.
var ErrInvalidTable = errors.New("invalid media table")

// DefaultCategory is the fallback row of every table.
const DefaultCategory = CategoryClear

// Table maps categories and time buckets to asset paths. Audio does not
// depend on the time of day.
type Table struct {
	Visuals map[Category]map[TimeBucket]Visual
	Audio   map[Category]string
}

// Validate checks that every key is known, every entry has non-empty paths
// and the default row is complete. Other rows may be partial; their missing
// buckets resolve through the default row.
func (t Table) Validate() error {
	var errs []error

	for cat, row := range t.Visuals {
		if !cat.valid() {
			errs = append(errs, fmt.Errorf("unknown category %q", cat))
			continue
		}
		for bucket, v := range row {
			if !bucket.valid() {
				errs = append(errs, fmt.Errorf("%s: unknown time bucket %q", cat, bucket))
				continue
			}
			if v.Background == "" || v.Video == "" {
				errs = append(errs, fmt.Errorf("%s/%s: empty asset path", cat, bucket))
			}
		}
	}

	for cat, path := range t.Audio {
		if !cat.valid() {
			errs = append(errs, fmt.Errorf("audio: unknown category %q", cat))
			continue
		}
		if path == "" {
			errs = append(errs, fmt.Errorf("audio %s: empty asset path", cat))
		}
	}

	for _, bucket := range Buckets {
		if _, ok := t.Visuals[DefaultCategory][bucket]; !ok {
			errs = append(errs, fmt.Errorf("default row missing %s/%s", DefaultCategory, bucket))
		}
	}
	if _, ok := t.Audio[DefaultCategory]; !ok {
		errs = append(errs, fmt.Errorf("default audio missing for %s", DefaultCategory))
	}

	if len(errs) > 0 {
		return fmt.Errorf("%w: %w", ErrInvalidTable, errors.Join(errs...))
	}
	return nil
}

// Missing lists the category/bucket pairs that fall back to the default row.
func (t Table) Missing() []string {
	var missing []string
	for _, cat := range Categories {
		for _, bucket := range Buckets {
			if _, ok := t.Visuals[cat][bucket]; !ok {
				missing = append(missing, string(cat)+"/"+string(bucket))
			}
		}
	}
	return missing
}

func (t Table) clone() Table {
	out := Table{
		Visuals: make(map[Category]map[TimeBucket]Visual, len(t.Visuals)),
		Audio:   make(map[Category]string, len(t.Audio)),
	}
	for cat, row := range t.Visuals {
		out.Visuals[cat] = make(map[TimeBucket]Visual, len(row))
		for bucket, v := range row {
			out.Visuals[cat][bucket] = v
		}
	}
	for cat, path := range t.Audio {
		out.Audio[cat] = path
	}
	return out
}

func scene(background, video string) Visual {
	return Visual{Background: "images/" + background, Video: "videos/" + video}
}

// DefaultTable returns the asset table served from the static asset tree.
// Haze, fog and windy have no evening sky of their own and reuse the night one.
func DefaultTable() Table {
	return Table{
		Visuals: map[Category]map[TimeBucket]Visual{
			CategoryClear: {
				BucketDay:     scene("clear-sky-day.jpg", "clear-morning-cat.mp4"),
				BucketEvening: scene("clear-sky-evening.jpg", "clear-evening-cat.mp4"),
				BucketNight:   scene("clear-sky-night.jpg", "clear-night-cat.mp4"),
			},
			CategoryCloudy: {
				BucketDay:     scene("cloudy-sky-day.jpg", "cloudy-morning-cat.mp4"),
				BucketEvening: scene("cloudy-sky-evening.jpg", "cloudy-evening-cat.mp4"),
				BucketNight:   scene("cloudy-sky-night.jpg", "cloudy-night-cat.mp4"),
			},
			CategoryRain: {
				BucketDay:     scene("rainy-sky-day.jpg", "rain-morning-cat.mp4"),
				BucketEvening: scene("rainy-sky-evening.jpg", "rain-evening-cat.mp4"),
				BucketNight:   scene("rainy-sky-night.jpg", "rain-night-cat.mp4"),
			},
			CategorySnow: {
				BucketDay:     scene("snowy-sky-day.jpg", "snowy-morning-cat.mp4"),
				BucketEvening: scene("snowy-sky-evening.jpg", "snowy-evening-cat.mp4"),
				BucketNight:   scene("snowy-sky-night.jpg", "snowy-night-cat.mp4"),
			},
			CategoryThunderstorm: {
				BucketDay:     scene("thunderstorm-sky-day.jpg", "thunderstorm-morning-cat.mp4"),
				BucketEvening: scene("thunderstorm-sky-evening.jpg", "thunderstorm-evening-cat.mp4"),
				BucketNight:   scene("thunderstorm-sky-night.jpg", "thunderstorm-night-cat.mp4"),
			},
			CategoryHaze: {
				BucketDay:     scene("hazy-sky-day.jpg", "foggy-morning-cat.mp4"),
				BucketEvening: scene("hazy-sky-night.jpg", "foggy-evening-cat.mp4"),
				BucketNight:   scene("hazy-sky-night.jpg", "foggy-night-cat.mp4"),
			},
			CategoryFog: {
				BucketDay:     scene("foggy-sky-day.jpg", "foggy-morning-cat.mp4"),
				BucketEvening: scene("foggy-sky-night.jpg", "foggy-evening-cat.mp4"),
				BucketNight:   scene("foggy-sky-night.jpg", "foggy-night-cat.mp4"),
			},
			CategoryWindy: {
				BucketDay:     scene("windy-sky-day.jpg", "windy-morning-cat.mp4"),
				BucketEvening: scene("windy-sky-night.jpg", "windy-evening-cat.mp4"),
				BucketNight:   scene("windy-sky-night.jpg", "windy-night-cat.mp4"),
			},
		},
		Audio: map[Category]string{
			CategoryClear:        "music/sunny.mp3",
			CategoryCloudy:       "music/cloudy.mp3",
			CategoryRain:         "music/rain.mp3",
			CategorySnow:         "music/snow.mp3",
			CategoryThunderstorm: "music/thunderstorm.mp3",
			CategoryHaze:         "music/hazy.mp3",
			CategoryFog:          "music/foggy.mp3",
			CategoryWindy:        "music/windy.mp3",
		},
	}
}
