package cache

import (
	"context"
	"time"
)

// Store is a key-value cache with expiration, backed by Redis in
// deployments and by the in-memory store in development and tests
type Store interface {
	Get(ctx context.Context, key string) (string, bool, error)
	Set(ctx context.Context, key, value string, expiration time.Duration) error
	Delete(ctx context.Context, key string) error
}
