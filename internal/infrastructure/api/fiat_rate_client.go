package api

import (
	"context"
	"fmt"
	"net/http"

	"github.com/damon-houk/currency-widget/internal/domain/entity"
	"github.com/damon-houk/currency-widget/internal/infrastructure/logger"
)

// DefaultFiatURL returns fiat rates with USD as the base currency
const DefaultFiatURL = "https://api.exchangerate-api.com/v4/latest/USD"

// fiatResponse is the subset of the fiat source payload we read
type fiatResponse struct {
	Base  string             `json:"base"`
	Rates map[string]float64 `json:"rates"`
}

// FiatRateClient implements service.FiatRateSource
type FiatRateClient struct {
	client *Client
	url    string
	logger logger.Logger
}

// NewFiatRateClient creates a fiat source client; an empty url uses DefaultFiatURL
func NewFiatRateClient(url string, httpClient *http.Client, cfg ClientConfig, log logger.Logger) *FiatRateClient {
	if url == "" {
		url = DefaultFiatURL
	}
	if log == nil {
		log = logger.GetDefaultLogger()
	}

	return &FiatRateClient{
		client: NewClient("fiat", httpClient, cfg, log),
		url:    url,
		logger: log,
	}
}

// FetchFiatRates returns units of each currency per 1 USD
func (c *FiatRateClient) FetchFiatRates(ctx context.Context) (entity.FiatRates, error) {
	var resp fiatResponse
	if err := c.client.GetJSON(ctx, c.url, &resp); err != nil {
		return nil, fmt.Errorf("failed to fetch fiat rates: %w", err)
	}

	if resp.Base != "" && resp.Base != string(entity.USD) {
		return nil, fmt.Errorf("fiat rates are based on %s, expected USD", resp.Base)
	}

	rates := make(entity.FiatRates, len(resp.Rates))
	for code, value := range resp.Rates {
		if value <= 0 {
			c.logger.Warn("Dropping non-positive fiat rate", map[string]interface{}{
				"currency": code,
				"rate":     value,
			})
			continue
		}
		rates[entity.CurrencyCode(code)] = value
	}

	if len(rates) == 0 {
		return nil, fmt.Errorf("fiat source returned no rates")
	}

	rates[entity.USD] = 1

	return rates, nil
}
