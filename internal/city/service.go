package city

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/weathervibe/weathervibe/internal/validation"
)

// List limits.
const (
	DefaultListLimit = 50
	MaxListLimit     = 100
)

// Service provides saved-city operations.
type Service struct {
	repo   Repository
	logger zerolog.Logger
	now    func() time.Time
}

// NewService creates a new city service.
func NewService(repo Repository, logger zerolog.Logger) *Service {
	return &Service{repo: repo, logger: logger, now: time.Now}
}

// Save stores a city for a user.
func (s *Service) Save(ctx context.Context, userID string, input SaveInput) (*City, error) {
	input.Name = strings.Join(strings.Fields(input.Name), " ")
	input.Country = strings.ToUpper(strings.TrimSpace(input.Country))
	if err := validation.Struct(input); err != nil {
		return nil, err
	}
	switch {
	case input.Lat != nil && input.Lon == nil:
		return nil, validation.NewError("lon", "is required")
	case input.Lon != nil && input.Lat == nil:
		return nil, validation.NewError("lat", "is required")
	}

	c := &City{
		ID:        "cty_" + uuid.New().String()[:22],
		UserID:    userID,
		Name:      input.Name,
		Country:   input.Country,
		Lat:       input.Lat,
		Lon:       input.Lon,
		CreatedAt: s.now().UTC(),
	}

	if err := s.repo.Create(ctx, c); err != nil {
		return nil, err
	}

	s.logger.Info().
		Str("user_id", userID).
		Str("city_id", c.ID).
		Msg("city saved")

	return c, nil
}

// List returns a user's saved cities, newest first.
func (s *Service) List(ctx context.Context, userID string, limit int) ([]*City, error) {
	if limit <= 0 {
		limit = DefaultListLimit
	}
	if limit > MaxListLimit {
		limit = MaxListLimit
	}

	cities, err := s.repo.List(ctx, userID, limit)
	if err != nil {
		return nil, err
	}
	if cities == nil {
		cities = []*City{}
	}
	return cities, nil
}

// Delete removes a user's city. Cities owned by other users report
// ErrCityNotFound.
func (s *Service) Delete(ctx context.Context, userID, cityID string) error {
	if _, err := s.repo.GetByUserAndID(ctx, userID, cityID); err != nil {
		return err
	}
	return s.repo.Delete(ctx, cityID)
}

// ListAllNames returns every distinct saved city name for cache warming.
func (s *Service) ListAllNames(ctx context.Context) ([]string, error) {
	return s.repo.ListAllNames(ctx)
}
