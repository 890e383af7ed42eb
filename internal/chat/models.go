// Package chat runs the weather assistant and keeps each user's transcript.
package chat

import (
	"errors"
	"time"
)

// Errors.
var (
	ErrAssistantUnavailable = errors.New("assistant unavailable")
	ErrAssistantDisabled    = errors.New("assistant disabled")
)

// FallbackReply is shown when the assistant cannot answer.
const FallbackReply = "Sorry, something went wrong."

// SystemPrompt primes every completion.
const SystemPrompt = "You are a helpful weather assistant."

// Role is the author of a message.
type Role string

const (
	RoleSystem    Role = "system"
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

// Message is one entry in a user's transcript.
type Message struct {
	ID        string    `json:"id"`
	UserID    string    `json:"-"`
	Role      Role      `json:"role"`
	Content   string    `json:"content"`
	CreatedAt time.Time `json:"createdAt"`
}

// Turn is a message as sent to the completion backend.
type Turn struct {
	Role    Role
	Content string
}

// AskInput is a question for the assistant.
type AskInput struct {
	Message string `json:"message" validate:"required,min=1,max=2000"`
}
