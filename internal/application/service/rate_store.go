// Package service internal/application/service/rate_store.go
package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/damon-houk/currency-widget/internal/domain/conversion"
	"github.com/damon-houk/currency-widget/internal/domain/entity"
	"github.com/damon-houk/currency-widget/internal/domain/repository"
	"github.com/damon-houk/currency-widget/internal/infrastructure/logger"
)

// Cache keys
const (
	KeyExchangeRates  = "exchangeRates"
	KeyFiatRates      = "fiatRates"
	KeyCryptoRates    = "cryptoRates"
	KeyCurrencyConfig = "currencyConfig"
)

// Default freshness windows
const (
	DefaultRateCacheDuration   = time.Hour
	DefaultConfigCacheDuration = 7 * 24 * time.Hour
)

// RateStore owns the live rate snapshot and reads/writes timestamped cache
// entries. Entries outlive their freshness window in the backing store so a
// caller can still inspect them; staleness is decided with IsExpired.
type RateStore struct {
	store     repository.KeyValueStore
	retention time.Duration
	now       func() time.Time
	logger    logger.Logger

	mutex    sync.RWMutex
	snapshot entity.RateSnapshot
}

// NewRateStore creates a rate store over store. retention is the store-level
// TTL of every entry; zero keeps entries forever.
func NewRateStore(store repository.KeyValueStore, retention time.Duration, log logger.Logger) *RateStore {
	if log == nil {
		log = logger.GetDefaultLogger()
	}

	return &RateStore{
		store:     store,
		retention: retention,
		now:       time.Now,
		logger:    log,
	}
}

// NowMillis returns the store clock as epoch milliseconds
func (s *RateStore) NowMillis() int64 {
	return s.now().UnixMilli()
}

// IsExpired reports whether an entry written at timestamp is older than maxAge
func (s *RateStore) IsExpired(timestamp int64, maxAge time.Duration) bool {
	return s.NowMillis()-timestamp > maxAge.Milliseconds()
}

// Save writes data under key stamped with the current time, replacing any prior entry
func (s *RateStore) Save(ctx context.Context, key string, data interface{}, maxAge time.Duration) error {
	now := s.NowMillis()
	entry := entity.CachedEntry[interface{}]{
		Timestamp: now,
		Data:      data,
	}
	if maxAge > 0 {
		expires := now + maxAge.Milliseconds()
		entry.ExpirationTime = &expires
	}

	payload, err := json.Marshal(entry)
	if err != nil {
		return fmt.Errorf("failed to marshal cache entry %s: %w", key, err)
	}

	ttl := s.retention
	if ttl > 0 && ttl < maxAge {
		ttl = maxAge
	}

	if err := s.store.Set(ctx, key, payload, ttl); err != nil {
		return fmt.Errorf("failed to save cache entry %s: %w", key, err)
	}

	s.logger.Debug("Saved cache entry", map[string]interface{}{
		"key":       key,
		"timestamp": now,
	})

	return nil
}

// LoadEntry returns the entry cached under key, or nil when there is none.
// An entry that no longer decodes is treated as missing.
func LoadEntry[T any](ctx context.Context, s *RateStore, key string) (*entity.CachedEntry[T], error) {
	payload, err := s.store.Get(ctx, key)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read cache entry %s: %w", key, err)
	}

	var entry entity.CachedEntry[T]
	if err := json.Unmarshal(payload, &entry); err != nil {
		s.logger.Warn("Ignoring undecodable cache entry", map[string]interface{}{
			"key":   key,
			"error": err.Error(),
		})
		return nil, nil
	}

	return &entry, nil
}

// Snapshot returns a copy of the live rates
func (s *RateStore) Snapshot() entity.RateSnapshot {
	s.mutex.RLock()
	defer s.mutex.RUnlock()
	return s.snapshot.Clone()
}

// SetSnapshot replaces the live rates
func (s *RateStore) SetSnapshot(snapshot entity.RateSnapshot) {
	snapshot = snapshot.Clone()

	s.mutex.Lock()
	defer s.mutex.Unlock()
	s.snapshot = snapshot
}

// SetFiat replaces the fiat half of the live rates
func (s *RateStore) SetFiat(rates entity.FiatRates) {
	clone := entity.RateSnapshot{FiatRates: rates}.Clone()

	s.mutex.Lock()
	defer s.mutex.Unlock()
	s.snapshot.FiatRates = clone.FiatRates
}

// SetCrypto replaces the crypto half of the live rates; BTC is forced to 1
func (s *RateStore) SetCrypto(quote entity.CryptoQuote) {
	clone := entity.RateSnapshot{CryptoRates: quote.Rates}.Clone()
	if clone.CryptoRates == nil {
		clone.CryptoRates = make(entity.CryptoRates)
	}
	clone.CryptoRates[entity.BTC] = 1

	s.mutex.Lock()
	defer s.mutex.Unlock()
	s.snapshot.CryptoRates = clone.CryptoRates
	s.snapshot.BTCToUSD = quote.BTCToUSD
}

// Context returns a conversion context over the current rates
func (s *RateStore) Context(fallback conversion.FallbackPolicy) conversion.ConversionContext {
	return conversion.NewContext(s.Snapshot(), fallback)
}
