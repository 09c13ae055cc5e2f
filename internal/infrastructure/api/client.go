package api

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/damon-houk/currency-widget/internal/infrastructure/logger"
	"github.com/eapache/go-resiliency/breaker"
	"golang.org/x/time/rate"
)

const userAgent = "currency-widget/1.0"

// ErrSourceOpen is returned while a source's circuit breaker is open
var ErrSourceOpen = errors.New("rate source temporarily disabled after repeated failures")

// ClientConfig tunes one rate source client
type ClientConfig struct {
	Timeout           time.Duration
	RequestsPerSecond float64
	Burst             int
	BreakerFailures   int
	BreakerTimeout    time.Duration
}

// DefaultClientConfig returns the settings used when none are configured
func DefaultClientConfig() ClientConfig {
	return ClientConfig{
		Timeout:           10 * time.Second,
		RequestsPerSecond: 1,
		Burst:             2,
		BreakerFailures:   3,
		BreakerTimeout:    30 * time.Second,
	}
}

// Client performs paced, breaker-guarded JSON GETs against one rate source
type Client struct {
	name        string
	httpClient  *http.Client
	rateLimiter *rate.Limiter
	breaker     *breaker.Breaker
	logger      logger.Logger
}

// NewClient creates a client for the source called name
func NewClient(name string, httpClient *http.Client, cfg ClientConfig, log logger.Logger) *Client {
	defaults := DefaultClientConfig()
	if cfg.Timeout <= 0 {
		cfg.Timeout = defaults.Timeout
	}
	if cfg.RequestsPerSecond <= 0 {
		cfg.RequestsPerSecond = defaults.RequestsPerSecond
	}
	if cfg.Burst <= 0 {
		cfg.Burst = defaults.Burst
	}
	if cfg.BreakerFailures <= 0 {
		cfg.BreakerFailures = defaults.BreakerFailures
	}
	if cfg.BreakerTimeout <= 0 {
		cfg.BreakerTimeout = defaults.BreakerTimeout
	}

	if httpClient == nil {
		httpClient = &http.Client{
			Timeout: cfg.Timeout,
		}
	}
	if log == nil {
		log = logger.GetDefaultLogger()
	}

	return &Client{
		name:        name,
		httpClient:  httpClient,
		rateLimiter: rate.NewLimiter(rate.Limit(cfg.RequestsPerSecond), cfg.Burst),
		breaker:     breaker.New(cfg.BreakerFailures, 1, cfg.BreakerTimeout),
		logger:      log.WithField("source", name),
	}
}

// GetJSON fetches url and decodes the JSON body into v
func (c *Client) GetJSON(ctx context.Context, url string, v interface{}) error {
	if err := c.rateLimiter.Wait(ctx); err != nil {
		return fmt.Errorf("%s: rate limiter: %w", c.name, err)
	}

	err := c.breaker.Run(func() error {
		return c.do(ctx, url, v)
	})

	if errors.Is(err, breaker.ErrBreakerOpen) {
		c.logger.Warn("Rate source circuit open, skipping request", nil)
		return fmt.Errorf("%s: %w", c.name, ErrSourceOpen)
	}

	return err
}

func (c *Client) do(ctx context.Context, url string, v interface{}) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}

	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", userAgent)

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("failed to execute request: %w", err)
	}

	defer func() {
		if closeErr := resp.Body.Close(); closeErr != nil {
			c.logger.Warn("Error closing response body", map[string]interface{}{
				"error": closeErr.Error(),
			})
		}
	}()

	c.logger.Debug("Rate source responded", map[string]interface{}{
		"status":      resp.StatusCode,
		"duration_ms": time.Since(start).Milliseconds(),
	})

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return fmt.Errorf("API returned error status: %d, body: %s", resp.StatusCode, body)
	}

	if err := json.NewDecoder(resp.Body).Decode(v); err != nil {
		return fmt.Errorf("failed to decode response: %w", err)
	}

	return nil
}
