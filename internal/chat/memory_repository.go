package chat

import (
	"context"
	"sync"
)

// InMemoryRepository is an in-memory implementation of Repository.
type InMemoryRepository struct {
	mu       sync.RWMutex
	messages map[string][]*Message
}

// NewInMemoryRepository creates a new in-memory chat repository.
func NewInMemoryRepository() *InMemoryRepository {
	return &InMemoryRepository{
		messages: make(map[string][]*Message),
	}
}

// Append stores messages in order.
func (r *InMemoryRepository) Append(_ context.Context, msgs ...*Message) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, m := range msgs {
		cpy := *m
		r.messages[m.UserID] = append(r.messages[m.UserID], &cpy)
	}
	return nil
}

// History returns a user's most recent messages, oldest first.
func (r *InMemoryRepository) History(_ context.Context, userID string, limit int) ([]*Message, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	all := r.messages[userID]
	if limit > 0 && len(all) > limit {
		all = all[len(all)-limit:]
	}

	out := make([]*Message, 0, len(all))
	for _, m := range all {
		cpy := *m
		out = append(out, &cpy)
	}
	return out, nil
}

var _ Repository = (*InMemoryRepository)(nil)
