package chat

import "context"

// Repository persists chat transcripts.
type Repository interface {
	// Append stores messages in order.
	Append(ctx context.Context, msgs ...*Message) error

	// History returns a user's most recent messages, oldest first.
	History(ctx context.Context, userID string, limit int) ([]*Message, error)
}
