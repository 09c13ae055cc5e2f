package cache

import (
	"context"
	"sync"
	"time"

	"github.com/damon-houk/currency-widget/internal/domain/repository"
)

// entry is one stored value with its optional eviction time
type entry struct {
	value     []byte
	expiresAt time.Time // zero means no TTL
}

// MemoryStore is a thread-safe in-memory KeyValueStore
type MemoryStore struct {
	entries map[string]entry
	mutex   sync.RWMutex
	now     func() time.Time
}

// NewMemoryStore creates an empty in-memory store
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		entries: make(map[string]entry),
		now:     time.Now,
	}
}

// Get returns the value for key if present and not evicted
func (s *MemoryStore) Get(_ context.Context, key string) ([]byte, error) {
	s.mutex.RLock()
	defer s.mutex.RUnlock()

	e, exists := s.entries[key]
	if !exists || s.expired(e) {
		return nil, repository.ErrNotFound
	}

	out := make([]byte, len(e.value))
	copy(out, e.value)
	return out, nil
}

// Set stores value under key
func (s *MemoryStore) Set(_ context.Context, key string, value []byte, ttl time.Duration) error {
	s.mutex.Lock()
	defer s.mutex.Unlock()

	e := entry{value: make([]byte, len(value))}
	copy(e.value, value)
	if ttl > 0 {
		e.expiresAt = s.now().Add(ttl)
	}

	s.entries[key] = e
	return nil
}

// Delete removes key
func (s *MemoryStore) Delete(_ context.Context, key string) error {
	s.mutex.Lock()
	defer s.mutex.Unlock()

	delete(s.entries, key)
	return nil
}

// Clear clears all entries from the store
func (s *MemoryStore) Clear() {
	s.mutex.Lock()
	defer s.mutex.Unlock()

	s.entries = make(map[string]entry)
}

// Size returns the number of items in the store, evicted or not
func (s *MemoryStore) Size() int {
	s.mutex.RLock()
	defer s.mutex.RUnlock()

	return len(s.entries)
}

// CleanExpired removes evicted entries and returns how many were dropped
func (s *MemoryStore) CleanExpired() int {
	s.mutex.Lock()
	defer s.mutex.Unlock()

	count := 0
	for key, e := range s.entries {
		if s.expired(e) {
			delete(s.entries, key)
			count++
		}
	}

	return count
}

func (s *MemoryStore) expired(e entry) bool {
	return !e.expiresAt.IsZero() && s.now().After(e.expiresAt)
}
