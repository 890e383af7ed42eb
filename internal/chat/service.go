package chat

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/weathervibe/weathervibe/internal/featureflags"
	"github.com/weathervibe/weathervibe/internal/validation"
)

// Completer produces the assistant's next message.
type Completer interface {
	Complete(ctx context.Context, turns []Turn) (string, error)
}

// FlagChecker reports whether a feature flag is enabled.
type FlagChecker interface {
	IsEnabled(ctx context.Context, key string) bool
}

// History limits.
const (
	DefaultHistoryLimit = 50
	MaxHistoryLimit     = 200
)

// ServiceConfig holds configuration for the chat service.
type ServiceConfig struct {
	Completer  Completer
	Repository Repository
	Flags      FlagChecker
	Logger     zerolog.Logger

	// ContextMessages is how many earlier messages are sent with each
	// question. Default 10.
	ContextMessages int
}

// Service answers questions and records the conversation.
type Service struct {
	completer       Completer
	repo            Repository
	flags           FlagChecker
	logger          zerolog.Logger
	contextMessages int
	now             func() time.Time
}

// NewService creates a chat service.
func NewService(cfg ServiceConfig) *Service {
	if cfg.ContextMessages == 0 {
		cfg.ContextMessages = 10
	}
	return &Service{
		completer:       cfg.Completer,
		repo:            cfg.Repository,
		flags:           cfg.Flags,
		logger:          cfg.Logger,
		contextMessages: cfg.ContextMessages,
		now:             time.Now,
	}
}

// Ask sends a question to the assistant and returns its reply. The question
// is recorded even when the assistant fails; the reply only on success.
func (s *Service) Ask(ctx context.Context, userID, message string) (*Message, error) {
	message = strings.TrimSpace(message)
	if err := validation.Struct(AskInput{Message: message}); err != nil {
		return nil, err
	}
	if s.flags != nil && s.flags.IsEnabled(ctx, featureflags.FlagDisableChatAssistant) {
		return nil, ErrAssistantDisabled
	}

	previous, err := s.repo.History(ctx, userID, s.contextMessages)
	if err != nil {
		return nil, fmt.Errorf("loading history: %w", err)
	}

	question := s.newMessage(userID, RoleUser, message)
	if err := s.repo.Append(ctx, question); err != nil {
		return nil, fmt.Errorf("storing question: %w", err)
	}

	turns := make([]Turn, 0, len(previous)+2)
	turns = append(turns, Turn{Role: RoleSystem, Content: SystemPrompt})
	for _, m := range previous {
		turns = append(turns, Turn{Role: m.Role, Content: m.Content})
	}
	turns = append(turns, Turn{Role: RoleUser, Content: message})

	start := time.Now()
	answer, err := s.completer.Complete(ctx, turns)
	if err != nil {
		s.logger.Error().Err(err).
			Str("user_id", userID).
			Dur("duration", time.Since(start)).
			Msg("assistant completion failed")
		if errors.Is(err, ErrAssistantUnavailable) {
			return nil, err
		}
		return nil, fmt.Errorf("%w: %w", ErrAssistantUnavailable, err)
	}

	reply := s.newMessage(userID, RoleAssistant, strings.TrimSpace(answer))
	if err := s.repo.Append(ctx, reply); err != nil {
		return nil, fmt.Errorf("storing reply: %w", err)
	}

	s.logger.Debug().
		Str("user_id", userID).
		Dur("duration", time.Since(start)).
		Msg("assistant replied")

	return reply, nil
}

// History returns a user's transcript, oldest first.
func (s *Service) History(ctx context.Context, userID string, limit int) ([]*Message, error) {
	if limit <= 0 {
		limit = DefaultHistoryLimit
	}
	if limit > MaxHistoryLimit {
		limit = MaxHistoryLimit
	}

	msgs, err := s.repo.History(ctx, userID, limit)
	if err != nil {
		return nil, err
	}
	if msgs == nil {
		msgs = []*Message{}
	}
	return msgs, nil
}

func (s *Service) newMessage(userID string, role Role, content string) *Message {
	return &Message{
		ID:        "msg_" + uuid.New().String()[:22],
		UserID:    userID,
		Role:      role,
		Content:   content,
		CreatedAt: s.now().UTC(),
	}
}
