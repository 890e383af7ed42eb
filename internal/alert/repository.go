package alert

import "context"

// Repository persists alerts.
type Repository interface {
	Create(ctx context.Context, a *Alert) error

	// UpdateStatus returns ErrAlertNotFound for unknown IDs.
	UpdateStatus(ctx context.Context, id string, status Status) error

	// List returns a user's alerts, newest first.
	List(ctx context.Context, userID string, limit int) ([]*Alert, error)
}
