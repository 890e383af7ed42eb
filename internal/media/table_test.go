package media_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/weathervibe/weathervibe/internal/media"
)

func TestDefaultTable_Valid(t *testing.T) {
	require.NoError(t, media.DefaultTable().Validate())
}

func TestDefaultTable_EveryCategoryHasAudio(t *testing.T) {
	table := media.DefaultTable()
	for _, cat := range media.Categories {
		assert.NotEmpty(t, table.Audio[cat], cat)
	}
}

func TestDefaultTable_Complete(t *testing.T) {
	assert.Empty(t, media.DefaultTable().Missing())
}

func TestTable_Missing(t *testing.T) {
	table := media.DefaultTable()
	delete(table.Visuals[media.CategoryHaze], media.BucketEvening)
	delete(table.Visuals, media.CategoryWindy)

	assert.ElementsMatch(t, []string{
		"haze/evening",
		"windy/day",
		"windy/evening",
		"windy/night",
	}, table.Missing())
}

func TestTable_Validate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*media.Table)
	}{
		{
			name: "default row missing a bucket",
			mutate: func(tb *media.Table) {
				delete(tb.Visuals[media.CategoryClear], media.BucketNight)
			},
		},
		{
			name: "default audio missing",
			mutate: func(tb *media.Table) {
				delete(tb.Audio, media.CategoryClear)
			},
		},
		{
			name: "empty background",
			mutate: func(tb *media.Table) {
				tb.Visuals[media.CategoryRain][media.BucketDay] = media.Visual{Video: "videos/rain.mp4"}
			},
		},
		{
			name: "unknown category",
			mutate: func(tb *media.Table) {
				tb.Visuals["sunny"] = map[media.TimeBucket]media.Visual{
					media.BucketDay: {Background: "a.jpg", Video: "a.mp4"},
				}
			},
		},
		{
			name: "unknown bucket",
			mutate: func(tb *media.Table) {
				tb.Visuals[media.CategoryRain]["morning"] = media.Visual{Background: "a.jpg", Video: "a.mp4"}
			},
		},
		{
			name: "empty audio path",
			mutate: func(tb *media.Table) {
				tb.Audio[media.CategoryFog] = ""
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			table := media.DefaultTable()
			tt.mutate(&table)

			err := table.Validate()
			require.Error(t, err)
			assert.ErrorIs(t, err, media.ErrInvalidTable)

			_, err = media.NewResolver(table)
			assert.ErrorIs(t, err, media.ErrInvalidTable)
		})
	}
}

func TestTable_PartialRowsAllowed(t *testing.T) {
	table := media.Table{
		Visuals: map[media.Category]map[media.TimeBucket]media.Visual{
			media.CategoryClear: {
				media.BucketDay:     {Background: "d.jpg", Video: "d.mp4"},
				media.BucketEvening: {Background: "e.jpg", Video: "e.mp4"},
				media.BucketNight:   {Background: "n.jpg", Video: "n.mp4"},
			},
		},
		Audio: map[media.Category]string{media.CategoryClear: "c.mp3"},
	}

	r, err := media.NewResolver(table)
	require.NoError(t, err)

	set := r.ResolveInBucket("heavy rain", media.BucketNight)
	assert.Equal(t, media.CategoryRain, set.Category)
	assert.Equal(t, "n.jpg", set.Background)
	assert.Equal(t, "c.mp3", set.Audio)
}
