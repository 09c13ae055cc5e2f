// Package repository internal/domain/repository/kv_store.go
package repository

import (
	"context"
	"errors"
	"time"
)

// ErrNotFound is returned by a KeyValueStore when a key is absent
var ErrNotFound = errors.New("key not found")

// KeyValueStore is the opaque persisted store behind the rate and config caches
type KeyValueStore interface {
	// Get returns the value stored under key, or ErrNotFound
	Get(ctx context.Context, key string) ([]byte, error)

	// Set stores value under key, overwriting any prior value.
	// A positive ttl lets the store evict the key after that long; zero keeps it.
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error

	// Delete removes key; deleting a missing key is not an error
	Delete(ctx context.Context, key string) error
}
