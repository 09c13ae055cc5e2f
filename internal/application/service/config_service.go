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
)

// ErrConfigLoad means the currency metadata could not be loaded from cache or resource
var ErrConfigLoad = errors.New("failed to load currency configuration")

// CurrencyConfigService loads the currency metadata and resolves it into a Catalog
type CurrencyConfigService struct {
	store         *RateStore
	source        domainservice.CurrencyConfigSource
	cacheDuration time.Duration
	logger        logger.Logger

	mutex   sync.RWMutex
	catalog *entity.Catalog
}

// NewCurrencyConfigService creates a new currency config service
func NewCurrencyConfigService(store *RateStore, source domainservice.CurrencyConfigSource, cacheDuration time.Duration, log logger.Logger) *CurrencyConfigService {
	if log == nil {
		log = logger.GetDefaultLogger()
	}
	if cacheDuration <= 0 {
		cacheDuration = DefaultConfigCacheDuration
	}

	return &CurrencyConfigService{
		store:         store,
		source:        source,
		cacheDuration: cacheDuration,
		logger:        log,
	}
}

// Load returns the catalog from a fresh cached document, or from the bundled
// resource which is then cached.
func (s *CurrencyConfigService) Load(ctx context.Context) (*entity.Catalog, error) {
	entry, err := LoadEntry[entity.CurrencyConfig](ctx, s.store, KeyCurrencyConfig)
	if err != nil {
		s.logger.Warn("Failed to read cached currency config", map[string]interface{}{
			"error": err.Error(),
		})
	}

	if entry != nil && !s.store.IsExpired(entry.Timestamp, s.cacheDuration) {
		catalog, err := entity.NewCatalog(&entry.Data)
		if err == nil {
			s.logger.Debug("Using cached currency config", map[string]interface{}{
				"timestamp":  entry.Timestamp,
				"currencies": catalog.Len(),
			})
			s.setCatalog(catalog)
			return catalog, nil
		}

		s.logger.Warn("Cached currency config is invalid", map[string]interface{}{
			"error": err.Error(),
		})
	}

	cfg, err := s.source.LoadCurrencyConfig(ctx)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrConfigLoad, err)
	}

	catalog, err := entity.NewCatalog(cfg)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrConfigLoad, err)
	}

	if err := s.store.Save(ctx, KeyCurrencyConfig, cfg, s.cacheDuration); err != nil {
		s.logger.Warn("Failed to cache currency config", map[string]interface{}{
			"error": err.Error(),
		})
	}

	s.logger.Info("Loaded currency config", map[string]interface{}{
		"fiat":   len(cfg.Fiat),
		"crypto": len(cfg.Crypto),
	})

	s.setCatalog(catalog)
	return catalog, nil
}

// Catalog returns the last loaded catalog, or nil before Load succeeds
func (s *CurrencyConfigService) Catalog() *entity.Catalog {
	s.mutex.RLock()
	defer s.mutex.RUnlock()
	return s.catalog
}

func (s *CurrencyConfigService) setCatalog(catalog *entity.Catalog) {
	s.mutex.Lock()
	defer s.mutex.Unlock()
	s.catalog = catalog
}
