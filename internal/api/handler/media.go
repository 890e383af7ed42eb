package handler

import (
	"context"
	"net/http"
	"strconv"
	"time"

	"github.com/weathervibe/weathervibe/internal/api/models"
	"github.com/weathervibe/weathervibe/internal/api/response"
	"github.com/weathervibe/weathervibe/internal/media"
	"github.com/weathervibe/weathervibe/internal/validation"
)

// MediaResolver picks media for a single reading.
type MediaResolver interface {
	Resolve(ctx context.Context, reading media.Reading) media.Set
}

// MediaHandler exposes the media resolver.
type MediaHandler struct {
	resolver MediaResolver
}

// NewMediaHandler creates a new MediaHandler.
func NewMediaHandler(resolver MediaResolver) *MediaHandler {
	return &MediaHandler{resolver: resolver}
}

// Resolve handles GET /v1/media/resolve?condition=&sunrise=&sunset=&at=.
// Instants are Unix epoch seconds. at defaults to now; without sunrise and
// sunset the reading is resolved in the day bucket.
func (h *MediaHandler) Resolve(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()

	reading := media.Reading{Condition: q.Get("condition")}
	var fields []validation.FieldError
	for _, p := range []struct {
		name string
		dst  *time.Time
	}{
		{"sunrise", &reading.Sunrise},
		{"sunset", &reading.Sunset},
		{"at", &reading.ObservedAt},
	} {
		raw := q.Get(p.name)
		if raw == "" {
			continue
		}
		secs, err := strconv.ParseInt(raw, 10, 64)
		if err != nil {
			fields = append(fields, validation.FieldError{Field: p.name, Message: "must be Unix seconds"})
			continue
		}
		*p.dst = time.Unix(secs, 0).UTC()
	}
	if !reading.Sunrise.IsZero() && !reading.Sunset.IsZero() && !reading.Sunrise.Before(reading.Sunset) {
		fields = append(fields, validation.FieldError{Field: "sunset", Message: "must be after sunrise"})
	}
	if len(fields) > 0 {
		response.Validation(w, r, &validation.Error{Fields: fields})
		return
	}

	response.JSON(w, r, http.StatusOK, models.NewMedia(h.resolver.Resolve(r.Context(), reading)))
}
