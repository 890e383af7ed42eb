package models

import "github.com/weathervibe/weathervibe/internal/chat"

// ChatResponse is the assistant's answer to one question.
type ChatResponse struct {
	Reply     string        `json:"reply"`
	Message   *chat.Message `json:"message,omitempty"`
	Available bool          `json:"available"`
}

// ChatHistoryResponse is a user's transcript, oldest first.
type ChatHistoryResponse struct {
	Items []*chat.Message   `json:"items"`
	Meta  PagedResponseMeta `json:"meta"`
}
