package handler

import (
	"context"
	"net/http"
	"sort"

	"github.com/rs/zerolog"

	"github.com/weathervibe/weathervibe/internal/api/models"
	"github.com/weathervibe/weathervibe/internal/api/response"
	"github.com/weathervibe/weathervibe/internal/featureflags"
	"github.com/weathervibe/weathervibe/internal/validation"
)

// FlagService reads and updates feature flags.
type FlagService interface {
	GetAllFlags(ctx context.Context) map[string]*featureflags.Flag
	SetFlags(ctx context.Context, flags []*featureflags.Flag, reason string) error
	InvalidateCache()
}

// FeatureFlagsHandler handles feature flag endpoints.
type FeatureFlagsHandler struct {
	service FlagService
	logger  zerolog.Logger
}

// NewFeatureFlagsHandler creates a new FeatureFlagsHandler.
func NewFeatureFlagsHandler(service FlagService, logger zerolog.Logger) *FeatureFlagsHandler {
	return &FeatureFlagsHandler{service: service, logger: logger}
}

// ListFeatureFlags handles GET /v1/admin/feature-flags - list all feature flags.
func (h *FeatureFlagsHandler) ListFeatureFlags(w http.ResponseWriter, r *http.Request) {
	all := h.service.GetAllFlags(r.Context())
	flags := make([]*featureflags.Flag, 0, len(all))
	for _, f := range all {
		flags = append(flags, f)
	}
	sort.Slice(flags, func(i, j int) bool { return flags[i].Key < flags[j].Key })

	response.JSON(w, r, http.StatusOK, models.FeatureFlagsResponse{Flags: flags})
}

// UpsertFeatureFlags handles PUT /v1/admin/feature-flags - update feature flags.
func (h *FeatureFlagsHandler) UpsertFeatureFlags(w http.ResponseWriter, r *http.Request) {
	var req models.FeatureFlagsUpdateRequest
	if err := response.Decode(r, &req); err != nil {
		response.BadRequest(w, r, err.Error(), nil)
		return
	}
	if err := validation.Struct(req); err != nil {
		writeError(w, r, h.logger, err)
		return
	}

	flags := make([]*featureflags.Flag, 0, len(req.Flags))
	for _, u := range req.Flags {
		flags = append(flags, &featureflags.Flag{Key: u.Key, Value: u.Value})
	}
	if err := h.service.SetFlags(r.Context(), flags, req.Reason); err != nil {
		writeError(w, r, h.logger, err)
		return
	}

	h.logger.Info().
		Str("user_id", GetUserID(r.Context())).
		Int("count", len(flags)).
		Msg("feature flags changed by admin")

	response.NoContent(w, r)
}

// InvalidateCache handles POST /v1/admin/feature-flags/invalidate - drop cached flag values.
func (h *FeatureFlagsHandler) InvalidateCache(w http.ResponseWriter, r *http.Request) {
	h.service.InvalidateCache()
	response.NoContent(w, r)
}
