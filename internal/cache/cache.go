// Package cache is the shared key/value cache used for data that can be
// recomputed from an upstream provider, such as geocoding suggestions.
package cache

import (
	"context"
	"time"
)

// Cache stores JSON-encodable values with a TTL.
type Cache interface {
	// Get decodes the value at key into dest. It reports false on a miss.
	Get(ctx context.Context, key string, dest any) (bool, error)

	// Set stores value at key for ttl.
	Set(ctx context.Context, key string, value any, ttl time.Duration) error

	Delete(ctx context.Context, key string) error
}
