package city

import "context"

// Repository defines persistence for saved cities.
type Repository interface {
	// Create stores a city. Returns ErrCityExists if the user already saved
	// a city with the same name, ignoring case.
	Create(ctx context.Context, c *City) error

	// GetByUserAndID returns ErrCityNotFound if the city doesn't exist or
	// belongs to another user.
	GetByUserAndID(ctx context.Context, userID, cityID string) (*City, error)

	// List returns a user's cities, newest first.
	List(ctx context.Context, userID string, limit int) ([]*City, error)

	// Delete removes a city by ID.
	Delete(ctx context.Context, id string) error

	// ListAllNames returns every distinct saved city name.
	ListAllNames(ctx context.Context) ([]string, error)
}
