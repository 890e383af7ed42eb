package alert

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"
)

// PostgresRepository is a PostgreSQL implementation of Repository.
type PostgresRepository struct {
	pool *pgxpool.Pool
}

// NewPostgresRepository creates a new PostgreSQL alert repository.
func NewPostgresRepository(pool *pgxpool.Pool) *PostgresRepository {
	return &PostgresRepository{pool: pool}
}

// Create stores an alert.
func (r *PostgresRepository) Create(ctx context.Context, a *Alert) error {
	query := `
		INSERT INTO alerts (id, user_id, channel, recipient, subject, message, emergency, status, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
	`

	_, err := r.pool.Exec(ctx, query,
		a.ID,
		a.UserID,
		string(a.Channel),
		a.To,
		a.Subject,
		a.Message,
		a.Emergency,
		string(a.Status),
		a.CreatedAt,
	)
	return err
}

// UpdateStatus sets an alert's status.
func (r *PostgresRepository) UpdateStatus(ctx context.Context, id string, status Status) error {
	result, err := r.pool.Exec(ctx, `UPDATE alerts SET status = $2 WHERE id = $1`, id, string(status))
	if err != nil {
		return err
	}
	if result.RowsAffected() == 0 {
		return ErrAlertNotFound
	}
	return nil
}

// List returns a user's alerts, newest first.
func (r *PostgresRepository) List(ctx context.Context, userID string, limit int) ([]*Alert, error) {
	query := `
		SELECT id, user_id, channel, recipient, subject, message, emergency, status, created_at
		FROM alerts
		WHERE user_id = $1
		ORDER BY created_at DESC, id DESC
		LIMIT $2
	`

	rows, err := r.pool.Query(ctx, query, userID, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []*Alert
	for rows.Next() {
		var a Alert
		var channel, status string
		if err := rows.Scan(
			&a.ID,
			&a.UserID,
			&channel,
			&a.To,
			&a.Subject,
			&a.Message,
			&a.Emergency,
			&status,
			&a.CreatedAt,
		); err != nil {
			return nil, err
		}
		a.Channel = Channel(channel)
		a.Status = Status(status)
		out = append(out, &a)
	}

	return out, rows.Err()
}

var _ Repository = (*PostgresRepository)(nil)
