package city

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

// uniqueViolation is the PostgreSQL error code for unique_violation. The
// cities table has a unique index on (user_id, lower(name)).
const uniqueViolation = "23505"

// PostgresRepository is a PostgreSQL implementation of Repository.
type PostgresRepository struct {
	pool *pgxpool.Pool
}

// NewPostgresRepository creates a new PostgreSQL city repository.
func NewPostgresRepository(pool *pgxpool.Pool) *PostgresRepository {
	return &PostgresRepository{pool: pool}
}

// Create stores a city.
func (r *PostgresRepository) Create(ctx context.Context, c *City) error {
	query := `
		INSERT INTO cities (id, user_id, name, country, lat, lon, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`

	_, err := r.pool.Exec(ctx, query,
		c.ID,
		c.UserID,
		c.Name,
		c.Country,
		c.Lat,
		c.Lon,
		c.CreatedAt,
	)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
			return ErrCityExists
		}
		return err
	}
	return nil
}

// GetByUserAndID retrieves a city by user ID and city ID.
func (r *PostgresRepository) GetByUserAndID(ctx context.Context, userID, cityID string) (*City, error) {
	query := `
		SELECT id, user_id, name, country, lat, lon, created_at
		FROM cities
		WHERE id = $1 AND user_id = $2
	`

	c, err := scanCity(r.pool.QueryRow(ctx, query, cityID, userID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrCityNotFound
		}
		return nil, err
	}
	return c, nil
}

// List returns a user's cities, newest first.
func (r *PostgresRepository) List(ctx context.Context, userID string, limit int) ([]*City, error) {
	query := `
		SELECT id, user_id, name, country, lat, lon, created_at
		FROM cities
		WHERE user_id = $1
		ORDER BY created_at DESC, id DESC
		LIMIT $2
	`

	rows, err := r.pool.Query(ctx, query, userID, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var cities []*City
	for rows.Next() {
		c, err := scanCity(rows)
		if err != nil {
			return nil, err
		}
		cities = append(cities, c)
	}

	return cities, rows.Err()
}

// Delete deletes a city by ID.
func (r *PostgresRepository) Delete(ctx context.Context, id string) error {
	result, err := r.pool.Exec(ctx, `DELETE FROM cities WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if result.RowsAffected() == 0 {
		return ErrCityNotFound
	}
	return nil
}

// ListAllNames returns distinct city names across all users.
func (r *PostgresRepository) ListAllNames(ctx context.Context) ([]string, error) {
	query := `
		SELECT DISTINCT ON (lower(name)) name
		FROM cities
		ORDER BY lower(name), created_at
	`

	rows, err := r.pool.Query(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var names []string
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, err
		}
		names = append(names, name)
	}

	return names, rows.Err()
}

func scanCity(row pgx.Row) (*City, error) {
	var c City
	var country *string
	err := row.Scan(
		&c.ID,
		&c.UserID,
		&c.Name,
		&country,
		&c.Lat,
		&c.Lon,
		&c.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	if country != nil {
		c.Country = *country
	}
	return &c, nil
}

// Ensure PostgresRepository implements Repository interface.
var _ Repository = (*PostgresRepository)(nil)
