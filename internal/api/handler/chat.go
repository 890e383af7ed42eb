package handler

import (
	"context"
	"errors"
	"net/http"

	"github.com/rs/zerolog"

	"github.com/weathervibe/weathervibe/internal/api/models"
	"github.com/weathervibe/weathervibe/internal/api/response"
	"github.com/weathervibe/weathervibe/internal/chat"
)

// ChatService answers questions and keeps transcripts.
type ChatService interface {
	Ask(ctx context.Context, userID, message string) (*chat.Message, error)
	History(ctx context.Context, userID string, limit int) ([]*chat.Message, error)
}

// ChatHandler handles assistant endpoints.
type ChatHandler struct {
	service ChatService
	logger  zerolog.Logger
}

// NewChatHandler creates a new ChatHandler.
func NewChatHandler(service ChatService, logger zerolog.Logger) *ChatHandler {
	return &ChatHandler{service: service, logger: logger}
}

// Ask handles POST /v1/chat. A failing assistant is not an API error: the
// client gets the fallback reply with available set to false.
func (h *ChatHandler) Ask(w http.ResponseWriter, r *http.Request) {
	var input chat.AskInput
	if err := response.Decode(r, &input); err != nil {
		response.BadRequest(w, r, err.Error(), nil)
		return
	}

	msg, err := h.service.Ask(r.Context(), GetUserID(r.Context()), input.Message)
	switch {
	case errors.Is(err, chat.ErrAssistantUnavailable):
		response.JSON(w, r, http.StatusOK, models.ChatResponse{Reply: chat.FallbackReply})
		return
	case err != nil:
		writeError(w, r, h.logger, err)
		return
	}

	response.JSON(w, r, http.StatusOK, models.ChatResponse{
		Reply:     msg.Content,
		Message:   msg,
		Available: true,
	})
}

// History handles GET /v1/chat/history.
func (h *ChatHandler) History(w http.ResponseWriter, r *http.Request) {
	limit, err := parseLimit(r)
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}

	msgs, err := h.service.History(r.Context(), GetUserID(r.Context()), limit)
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}

	response.JSON(w, r, http.StatusOK, models.ChatHistoryResponse{
		Items: msgs,
		Meta:  models.PagedResponseMeta{Limit: limit, Count: len(msgs)},
	})
}
