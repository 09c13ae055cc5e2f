package service

import (
	"context"
	"errors"
	"fmt"
	"time"
)

// Origin says where a fetched value came from
type Origin string

const (
	OriginLive  Origin = "live"
	OriginCache Origin = "cache"
)

// Fetched is a value together with its origin and write time (epoch ms)
type Fetched[T any] struct {
	Data      T
	Origin    Origin
	Timestamp int64
}

// FetchWithFallback tries live first and caches the result under key. When live
// fails it serves the cached entry if it is not older than maxAge, and fails
// otherwise.
func FetchWithFallback[T any](
	ctx context.Context,
	store *RateStore,
	key string,
	maxAge time.Duration,
	live func(context.Context) (T, error),
) (Fetched[T], error) {
	data, liveErr := live(ctx)
	if liveErr == nil {
		if err := store.Save(ctx, key, data, maxAge); err != nil {
			store.logger.Warn("Failed to cache live data", map[string]interface{}{
				"key":   key,
				"error": err.Error(),
			})
		}
		return Fetched[T]{Data: data, Origin: OriginLive, Timestamp: store.NowMillis()}, nil
	}

	entry, cacheErr := LoadEntry[T](ctx, store, key)
	if cacheErr != nil {
		return Fetched[T]{}, errors.Join(liveErr, cacheErr)
	}
	if entry == nil {
		return Fetched[T]{}, fmt.Errorf("%w; no cached %s", liveErr, key)
	}
	if store.IsExpired(entry.Timestamp, maxAge) {
		return Fetched[T]{}, fmt.Errorf("%w; cached %s expired", liveErr, key)
	}

	store.logger.Warn("Live fetch failed, using cached data", map[string]interface{}{
		"key":       key,
		"timestamp": entry.Timestamp,
		"error":     liveErr.Error(),
	})

	return Fetched[T]{Data: entry.Data, Origin: OriginCache, Timestamp: entry.Timestamp}, nil
}
