// Package app builds the service graph shared by the server and the CLI.
package app

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"time"

	"github.com/damon-houk/currency-widget/internal/application/service"
	"github.com/damon-houk/currency-widget/internal/config"
	"github.com/damon-houk/currency-widget/internal/domain/entity"
	"github.com/damon-houk/currency-widget/internal/domain/repository"
	"github.com/damon-houk/currency-widget/internal/infrastructure/api"
	"github.com/damon-houk/currency-widget/internal/infrastructure/cache"
	"github.com/damon-houk/currency-widget/internal/infrastructure/db"
	"github.com/damon-houk/currency-widget/internal/infrastructure/handler"
	"github.com/damon-houk/currency-widget/internal/infrastructure/logger"
	"github.com/damon-houk/currency-widget/internal/infrastructure/metrics"
	"github.com/damon-houk/currency-widget/internal/infrastructure/middleware"
	"github.com/damon-houk/currency-widget/internal/infrastructure/resource"
	"github.com/go-chi/cors"
	"github.com/gorilla/mux"
)

// App holds the wired services
type App struct {
	Config     *config.Config
	Logger     logger.Logger
	Metrics    *metrics.Collector
	Catalog    *entity.Catalog
	RateStore  *service.RateStore
	Rates      *service.RateService
	Widget     *service.WidgetService
	Conversion *service.ConversionService

	closers []func() error
}

// New opens the configured store and builds every service on top of it.
// The currency catalog is loaded before New returns; rates are not.
func New(ctx context.Context, cfg *config.Config, log logger.Logger) (*App, error) {
	if log == nil {
		log = logger.GetDefaultLogger()
	}

	a := &App{
		Config:  cfg,
		Logger:  log,
		Metrics: metrics.New(),
	}

	kv, err := a.openStore(ctx)
	if err != nil {
		return nil, err
	}

	a.RateStore = service.NewRateStore(kv, cfg.Store.Retention, log.WithField("component", "rate_store"))

	configs := service.NewCurrencyConfigService(
		a.RateStore,
		resource.NewCurrencyConfigLoader(cfg.Currencies.File),
		cfg.Currencies.CacheDuration,
		log.WithField("component", "currency_config"),
	)
	a.Catalog, err = configs.Load(ctx)
	if err != nil {
		a.Close()
		return nil, err
	}

	clientCfg := api.ClientConfig{
		Timeout:           cfg.Rates.RequestTimeout,
		RequestsPerSecond: cfg.Rates.RequestsPerSecond,
		Burst:             cfg.Rates.Burst,
		BreakerFailures:   cfg.Rates.BreakerFailures,
		BreakerTimeout:    cfg.Rates.BreakerTimeout,
	}

	a.Rates = service.NewRateService(
		a.RateStore,
		api.NewFiatRateClient(cfg.Rates.FiatURL, nil, clientCfg, log),
		api.NewCryptoRateClient(cfg.Rates.CryptoURL, nil, clientCfg, log),
		service.RateServiceConfig{
			CacheDuration: cfg.Rates.CacheDuration,
			CryptoCodes:   a.Catalog.Codes(entity.Crypto),
		},
		a.Metrics,
		log.WithField("component", "rate_service"),
	)

	a.Widget = service.NewWidgetService(a.Rates, a.Catalog, db.NewPreferencesRepository(kv), log.WithField("component", "widget"))
	a.Conversion = service.NewConversionService(a.RateStore, log.WithField("component", "conversion"))

	return a, nil
}

func (a *App) openStore(ctx context.Context) (repository.KeyValueStore, error) {
	storeCfg := a.Config.Store

	switch storeCfg.Driver {
	case config.DriverBadger:
		if storeCfg.BadgerPath != "" {
			if err := os.MkdirAll(storeCfg.BadgerPath, 0o755); err != nil {
				return nil, fmt.Errorf("failed to create database directory: %w", err)
			}
		}
		badgerDB, err := db.OpenBadger(storeCfg.BadgerPath)
		if err != nil {
			return nil, err
		}
		a.closers = append(a.closers, badgerDB.Close)
		a.Logger.Info("Using Badger store", map[string]interface{}{"path": storeCfg.BadgerPath})
		return db.NewBadgerStore(badgerDB), nil

	case config.DriverRedis:
		client, err := db.OpenRedis(ctx, storeCfg.RedisAddr, storeCfg.RedisPassword, storeCfg.RedisDB)
		if err != nil {
			return nil, err
		}
		a.closers = append(a.closers, client.Close)
		a.Logger.Info("Using Redis store", map[string]interface{}{"addr": storeCfg.RedisAddr, "db": storeCfg.RedisDB})
		return db.NewRedisStore(client, "currency-widget"), nil

	case config.DriverMemory:
		a.Logger.Info("Using in-memory store", nil)
		return cache.NewMemoryStore(), nil

	default:
		return nil, fmt.Errorf("unknown store driver %q", storeCfg.Driver)
	}
}

// Router returns the HTTP API with request IDs, logging, metrics and CORS applied
func (a *App) Router() http.Handler {
	router := mux.NewRouter()
	router.Use(middleware.RequestIDMiddleware)
	router.Use(middleware.LoggingMiddleware(a.Logger))
	router.Use(middleware.MetricsMiddleware(a.Metrics))

	router.Handle("/metrics", a.Metrics.Handler()).Methods(http.MethodGet)

	handler.NewConversionHandler(a.Conversion, a.Logger).RegisterRoutes(router)
	handler.NewRateHandler(a.Rates, a.Logger).RegisterRoutes(router)
	handler.NewWidgetHandler(a.Widget, a.Logger).RegisterRoutes(router)

	// wraps the router so preflight requests are answered before route matching
	return cors.Handler(cors.Options{
		AllowedOrigins: a.Config.Server.AllowedOrigins,
		AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodDelete, http.MethodOptions},
		AllowedHeaders: []string{"Accept", "Content-Type", "Accept-Language", middleware.RequestIDHeader},
		ExposedHeaders: []string{middleware.RequestIDHeader},
		MaxAge:         300,
	})(router)
}

// LoadRates seeds the rate store from the cache and the sources. A failure is
// logged and returned but leaves the app usable with whatever was loaded.
func (a *App) LoadRates(ctx context.Context) error {
	snapshot, err := a.Rates.Initialize(ctx)
	if err != nil {
		a.Logger.Warn("Starting without complete rate data", map[string]interface{}{
			"error": err.Error(),
		})
		return err
	}

	a.Logger.Info("Rates loaded", map[string]interface{}{
		"fiat_count":   len(snapshot.FiatRates),
		"crypto_count": len(snapshot.CryptoRates),
	})
	return nil
}

// Serve runs the HTTP server and the periodic refresh until ctx is cancelled
func (a *App) Serve(ctx context.Context) error {
	server := &http.Server{
		Addr:              a.Config.Server.Addr,
		Handler:           a.Router(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	go a.Rates.Run(ctx, a.Config.Rates.RefreshInterval)

	errCh := make(chan error, 1)
	go func() {
		a.Logger.Info("Server listening", map[string]interface{}{"addr": server.Addr})
		errCh <- server.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	a.Logger.Info("Shutting down server", nil)
	timeout := a.Config.Server.ShutdownTimeout
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	shutdownCtx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	return server.Shutdown(shutdownCtx)
}

// Close releases the store
func (a *App) Close() error {
	var errs []error
	for i := len(a.closers) - 1; i >= 0; i-- {
		if err := a.closers[i](); err != nil {
			errs = append(errs, err)
		}
	}
	a.closers = nil
	return errors.Join(errs...)
}
