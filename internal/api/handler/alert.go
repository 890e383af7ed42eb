package handler

import (
	"context"
	"net/http"

	"github.com/rs/zerolog"

	"github.com/weathervibe/weathervibe/internal/alert"
	"github.com/weathervibe/weathervibe/internal/api/models"
	"github.com/weathervibe/weathervibe/internal/api/response"
)

// AlertService records and publishes alerts.
type AlertService interface {
	Submit(ctx context.Context, userID string, req alert.Request) (*alert.Alert, error)
	SubmitEmergency(ctx context.Context, userID string, req alert.EmergencyRequest) (*alert.Alert, error)
	List(ctx context.Context, userID string, limit int) ([]*alert.Alert, error)
}

// AlertHandler handles alert endpoints.
type AlertHandler struct {
	service AlertService
	logger  zerolog.Logger
}

// NewAlertHandler creates a new AlertHandler.
func NewAlertHandler(service AlertService, logger zerolog.Logger) *AlertHandler {
	return &AlertHandler{service: service, logger: logger}
}

// Submit handles POST /v1/alerts. The alert is accepted once it has been
// handed to the notifier; delivery happens asynchronously.
func (h *AlertHandler) Submit(w http.ResponseWriter, r *http.Request) {
	var req alert.Request
	if err := response.Decode(r, &req); err != nil {
		response.BadRequest(w, r, err.Error(), nil)
		return
	}

	a, err := h.service.Submit(r.Context(), GetUserID(r.Context()), req)
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}
	response.Accepted(w, r, "", a)
}

// Emergency handles POST /v1/alerts/emergency.
func (h *AlertHandler) Emergency(w http.ResponseWriter, r *http.Request) {
	var req alert.EmergencyRequest
	if err := response.Decode(r, &req); err != nil {
		response.BadRequest(w, r, err.Error(), nil)
		return
	}

	a, err := h.service.SubmitEmergency(r.Context(), GetUserID(r.Context()), req)
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}
	response.Accepted(w, r, "", a)
}

// List handles GET /v1/alerts.
func (h *AlertHandler) List(w http.ResponseWriter, r *http.Request) {
	limit, err := parseLimit(r)
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}

	alerts, err := h.service.List(r.Context(), GetUserID(r.Context()), limit)
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}

	response.JSON(w, r, http.StatusOK, models.AlertListResponse{
		Items: alerts,
		Meta:  models.PagedResponseMeta{Limit: limit, Count: len(alerts)},
	})
}
