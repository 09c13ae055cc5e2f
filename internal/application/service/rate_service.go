// Package service internal/application/service/rate_service.go
package service

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/damon-houk/currency-widget/internal/domain/entity"
	domainservice "github.com/damon-houk/currency-widget/internal/domain/service"
	"github.com/damon-houk/currency-widget/internal/infrastructure/logger"
	"github.com/damon-houk/currency-widget/internal/infrastructure/metrics"
	"golang.org/x/sync/singleflight"
)

// ErrNoRateData means neither source produced live or fresh cached rates
var ErrNoRateData = errors.New("no exchange rate data available")

// RateServiceConfig tunes the rate service
type RateServiceConfig struct {
	// CacheDuration is how long a cached sub-snapshot may stand in for a failed fetch
	CacheDuration time.Duration
	// CryptoCodes limits which crypto rates are kept; empty keeps every crypto entry
	CryptoCodes []entity.CurrencyCode
}

// SourceStatus describes the last refresh of one source
type SourceStatus struct {
	Origin    Origin `json:"origin,omitempty"`
	Timestamp int64  `json:"timestamp,omitempty"`
	Error     string `json:"error,omitempty"`
}

// RateStatus describes the last refresh of both sources
type RateStatus struct {
	Fiat   SourceStatus `json:"fiat"`
	Crypto SourceStatus `json:"crypto"`
}

// RateService keeps the RateStore filled from the fiat and crypto sources
type RateService struct {
	store         *RateStore
	fiat          domainservice.FiatRateSource
	crypto        domainservice.CryptoRateSource
	cacheDuration time.Duration
	cryptoCodes   []entity.CurrencyCode
	metrics       *metrics.Collector
	logger        logger.Logger

	group    singleflight.Group
	statusMu sync.RWMutex
	status   RateStatus
}

// NewRateService creates a new rate service
func NewRateService(
	store *RateStore,
	fiat domainservice.FiatRateSource,
	crypto domainservice.CryptoRateSource,
	cfg RateServiceConfig,
	collector *metrics.Collector,
	log logger.Logger,
) *RateService {
	if log == nil {
		log = logger.GetDefaultLogger()
	}
	if cfg.CacheDuration <= 0 {
		cfg.CacheDuration = DefaultRateCacheDuration
	}

	return &RateService{
		store:         store,
		fiat:          fiat,
		crypto:        crypto,
		cacheDuration: cfg.CacheDuration,
		cryptoCodes:   cfg.CryptoCodes,
		metrics:       collector,
		logger:        log,
	}
}

// Store returns the rate store this service fills
func (s *RateService) Store() *RateStore {
	return s.store
}

// Status returns how the last refresh went per source
func (s *RateService) Status() RateStatus {
	s.statusMu.RLock()
	defer s.statusMu.RUnlock()
	return s.status
}

// Initialize seeds the store from a fresh combined snapshot, if one is cached,
// and then refreshes from the sources.
func (s *RateService) Initialize(ctx context.Context) (entity.RateSnapshot, error) {
	entry, err := LoadEntry[entity.RateSnapshot](ctx, s.store, KeyExchangeRates)
	if err != nil {
		s.logger.Warn("Failed to read cached exchange rates", map[string]interface{}{
			"error": err.Error(),
		})
	}

	if entry != nil && !s.store.IsExpired(entry.Timestamp, s.cacheDuration) && entry.Data.Validate() == nil {
		s.store.SetSnapshot(entry.Data)

		cached := SourceStatus{Origin: OriginCache, Timestamp: entry.Timestamp}
		s.setStatus(RateStatus{Fiat: cached, Crypto: cached})

		s.logger.Info("Loaded cached exchange rates", map[string]interface{}{
			"timestamp":    entry.Timestamp,
			"fiat_count":   len(entry.Data.FiatRates),
			"crypto_count": len(entry.Data.CryptoRates),
		})
	}

	return s.Refresh(ctx)
}

// Refresh fetches both sources, falling back per source to a fresh cached
// sub-snapshot. A source that fails entirely leaves its half of the store as
// it was. ErrNoRateData is returned only when the store ends up empty.
// Concurrent calls share one refresh.
func (s *RateService) Refresh(ctx context.Context) (entity.RateSnapshot, error) {
	v, err, shared := s.group.Do("refresh", func() (interface{}, error) {
		return s.refresh(ctx)
	})
	if shared {
		s.logger.Debug("Joined in-flight rate refresh", nil)
	}

	snapshot, _ := v.(entity.RateSnapshot)
	return snapshot, err
}

func (s *RateService) refresh(ctx context.Context) (entity.RateSnapshot, error) {
	start := time.Now()

	var (
		wg        sync.WaitGroup
		fiat      Fetched[entity.FiatRates]
		fiatErr   error
		crypto    Fetched[entity.CryptoQuote]
		cryptoErr error
	)

	wg.Add(2)
	go func() {
		defer wg.Done()
		fiat, fiatErr = FetchWithFallback(ctx, s.store, KeyFiatRates, s.cacheDuration, s.fetchFiat)
	}()
	go func() {
		defer wg.Done()
		crypto, cryptoErr = FetchWithFallback(ctx, s.store, KeyCryptoRates, s.cacheDuration, s.fetchCrypto)
	}()
	wg.Wait()

	status := s.Status()

	if fiatErr == nil {
		s.store.SetFiat(fiat.Data)
		status.Fiat = SourceStatus{Origin: fiat.Origin, Timestamp: fiat.Timestamp}
		s.metrics.ObserveRateFetch("fiat", string(fiat.Origin))
	} else {
		status.Fiat.Error = fiatErr.Error()
		s.metrics.ObserveRateFetch("fiat", metrics.OutcomeFailed)
		s.logger.Error("Failed to refresh fiat rates", map[string]interface{}{
			"error": fiatErr.Error(),
		})
	}

	if cryptoErr == nil {
		s.store.SetCrypto(crypto.Data)
		status.Crypto = SourceStatus{Origin: crypto.Origin, Timestamp: crypto.Timestamp}
		s.metrics.ObserveRateFetch("crypto", string(crypto.Origin))
	} else {
		status.Crypto.Error = cryptoErr.Error()
		s.metrics.ObserveRateFetch("crypto", metrics.OutcomeFailed)
		s.logger.Error("Failed to refresh crypto rates", map[string]interface{}{
			"error": cryptoErr.Error(),
		})
	}

	s.setStatus(status)

	snapshot := s.store.Snapshot()

	if fiatErr == nil && cryptoErr == nil && fiat.Origin == OriginLive && crypto.Origin == OriginLive {
		if err := s.store.Save(ctx, KeyExchangeRates, snapshot, s.cacheDuration); err != nil {
			s.logger.Warn("Failed to cache combined exchange rates", map[string]interface{}{
				"error": err.Error(),
			})
		}
	}

	s.metrics.ObserveRefresh(time.Since(start))

	if snapshot.Empty() {
		return snapshot, fmt.Errorf("%w: %w", ErrNoRateData, errors.Join(fiatErr, cryptoErr))
	}

	s.logger.Info("Exchange rates refreshed", map[string]interface{}{
		"fiat_origin":   string(status.Fiat.Origin),
		"crypto_origin": string(status.Crypto.Origin),
		"fiat_count":    len(snapshot.FiatRates),
		"crypto_count":  len(snapshot.CryptoRates),
		"duration_ms":   time.Since(start).Milliseconds(),
	})

	return snapshot, nil
}

func (s *RateService) fetchFiat(ctx context.Context) (entity.FiatRates, error) {
	rates, err := s.fiat.FetchFiatRates(ctx)
	if err != nil {
		return nil, err
	}
	if len(rates) == 0 {
		return nil, fmt.Errorf("fiat source returned no rates")
	}
	if err := rates.Validate(); err != nil {
		return nil, err
	}
	return rates, nil
}

func (s *RateService) fetchCrypto(ctx context.Context) (entity.CryptoQuote, error) {
	quote, err := s.crypto.FetchCryptoRates(ctx, s.cryptoCodes)
	if err != nil {
		return entity.CryptoQuote{}, err
	}
	if err := quote.Validate(); err != nil {
		return entity.CryptoQuote{}, err
	}
	return quote, nil
}

func (s *RateService) setStatus(status RateStatus) {
	s.statusMu.Lock()
	defer s.statusMu.Unlock()
	s.status = status
}

// Run refreshes every interval until ctx is cancelled
func (s *RateService) Run(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	s.logger.Info("Starting rate refresh loop", map[string]interface{}{
		"interval": interval.String(),
	})

	for {
		select {
		case <-ctx.Done():
			s.logger.Info("Stopping rate refresh loop", nil)
			return
		case <-ticker.C:
			if _, err := s.Refresh(ctx); err != nil {
				s.logger.Error("Scheduled rate refresh failed", map[string]interface{}{
					"error": err.Error(),
				})
			}
		}
	}
}
