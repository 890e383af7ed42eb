package city

import (
	"context"
	"sort"
	"strings"
	"sync"
)

// InMemoryRepository is an in-memory implementation of Repository.
// This is intended for testing and local development.
type InMemoryRepository struct {
	mu     sync.RWMutex
	cities map[string]*City
}

// NewInMemoryRepository creates a new in-memory city repository.
func NewInMemoryRepository() *InMemoryRepository {
	return &InMemoryRepository{
		cities: make(map[string]*City),
	}
}

// Create stores a city.
func (r *InMemoryRepository) Create(_ context.Context, c *City) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, existing := range r.cities {
		if existing.UserID == c.UserID && strings.EqualFold(existing.Name, c.Name) {
			return ErrCityExists
		}
	}

	cpy := *c
	r.cities[c.ID] = &cpy
	return nil
}

// GetByUserAndID retrieves a city by user ID and city ID.
func (r *InMemoryRepository) GetByUserAndID(_ context.Context, userID, cityID string) (*City, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	c, ok := r.cities[cityID]
	if !ok || c.UserID != userID {
		return nil, ErrCityNotFound
	}

	cpy := *c
	return &cpy, nil
}

// List returns a user's cities, newest first.
func (r *InMemoryRepository) List(_ context.Context, userID string, limit int) ([]*City, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var cities []*City
	for _, c := range r.cities {
		if c.UserID == userID {
			cpy := *c
			cities = append(cities, &cpy)
		}
	}

	sort.Slice(cities, func(i, j int) bool {
		if cities[i].CreatedAt.Equal(cities[j].CreatedAt) {
			return cities[i].ID > cities[j].ID
		}
		return cities[i].CreatedAt.After(cities[j].CreatedAt)
	})

	if limit > 0 && len(cities) > limit {
		cities = cities[:limit]
	}
	return cities, nil
}

// Delete deletes a city by ID.
func (r *InMemoryRepository) Delete(_ context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.cities[id]; !ok {
		return ErrCityNotFound
	}
	delete(r.cities, id)
	return nil
}

// ListAllNames returns distinct city names across all users.
func (r *InMemoryRepository) ListAllNames(_ context.Context) ([]string, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	seen := make(map[string]bool)
	var names []string
	for _, c := range r.cities {
		key := strings.ToLower(c.Name)
		if seen[key] {
			continue
		}
		seen[key] = true
		names = append(names, c.Name)
	}
	sort.Strings(names)
	return names, nil
}

// Ensure InMemoryRepository implements Repository interface.
var _ Repository = (*InMemoryRepository)(nil)
