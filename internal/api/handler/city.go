package handler

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"

	"github.com/weathervibe/weathervibe/internal/api/models"
	"github.com/weathervibe/weathervibe/internal/api/response"
	"github.com/weathervibe/weathervibe/internal/city"
)

// CityService manages saved cities.
type CityService interface {
	Save(ctx context.Context, userID string, input city.SaveInput) (*city.City, error)
	List(ctx context.Context, userID string, limit int) ([]*city.City, error)
	Delete(ctx context.Context, userID, cityID string) error
}

// CityHandler handles saved-city endpoints.
type CityHandler struct {
	service CityService
	logger  zerolog.Logger
}

// NewCityHandler creates a new CityHandler.
func NewCityHandler(service CityService, logger zerolog.Logger) *CityHandler {
	return &CityHandler{service: service, logger: logger}
}

// List handles GET /v1/me/cities.
func (h *CityHandler) List(w http.ResponseWriter, r *http.Request) {
	limit, err := parseLimit(r)
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}

	cities, err := h.service.List(r.Context(), GetUserID(r.Context()), limit)
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}

	response.JSON(w, r, http.StatusOK, models.CityListResponse{
		Items: cities,
		Meta:  models.PagedResponseMeta{Limit: limit, Count: len(cities)},
	})
}

// Save handles POST /v1/me/cities.
func (h *CityHandler) Save(w http.ResponseWriter, r *http.Request) {
	var input city.SaveInput
	if err := response.Decode(r, &input); err != nil {
		response.BadRequest(w, r, err.Error(), nil)
		return
	}

	c, err := h.service.Save(r.Context(), GetUserID(r.Context()), input)
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}

	response.Created(w, r, "/v1/me/cities/"+c.ID, c)
}

// Delete handles DELETE /v1/me/cities/{cityId}.
func (h *CityHandler) Delete(w http.ResponseWriter, r *http.Request) {
	cityID := chi.URLParam(r, "cityId")
	if err := h.service.Delete(r.Context(), GetUserID(r.Context()), cityID); err != nil {
		writeError(w, r, h.logger, err)
		return
	}
	response.NoContent(w, r)
}
