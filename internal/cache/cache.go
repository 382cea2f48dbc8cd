// Package cache provides the lookup cache shared by the timezone and prayer-time
// services: a key -> (value, expiry) store with capacity eviction.
package cache

import (
	"context"
	"errors"
	"time"
)

// ErrMiss is returned by Get when the key is absent or expired.
var ErrMiss = errors.New("cache: miss")

// Store is implemented by every cache backend. Values are JSON encoded.
type Store interface {
	Get(ctx context.Context, key string, dst any) error
	Set(ctx context.Context, key string, value any, ttl time.Duration) error
	Purge(ctx context.Context) error
}
