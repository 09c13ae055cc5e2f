package api

import (
	"context"
	"fmt"
	"net/http"
	"strings"

	"github.com/damon-houk/currency-widget/internal/domain/entity"
	"github.com/damon-houk/currency-widget/internal/infrastructure/logger"
)

// DefaultCryptoURL lists every rate as units per 1 BTC
const DefaultCryptoURL = "https://api.coingecko.com/api/v3/exchange_rates"

// cryptoResponse mirrors {"rates": {"eth": {"value": 20.1, "type": "crypto"}, "usd": {...}}}
type cryptoResponse struct {
	Rates map[string]struct {
		Name  string  `json:"name"`
		Unit  string  `json:"unit"`
		Value float64 `json:"value"`
		Type  string  `json:"type"`
	} `json:"rates"`
}

// CryptoRateClient implements service.CryptoRateSource
type CryptoRateClient struct {
	client *Client
	url    string
	logger logger.Logger
}

// NewCryptoRateClient creates a crypto source client; an empty url uses DefaultCryptoURL
func NewCryptoRateClient(url string, httpClient *http.Client, cfg ClientConfig, log logger.Logger) *CryptoRateClient {
	if url == "" {
		url = DefaultCryptoURL
	}
	if log == nil {
		log = logger.GetDefaultLogger()
	}

	return &CryptoRateClient{
		client: NewClient("crypto", httpClient, cfg, log),
		url:    url,
		logger: log,
	}
}

// FetchCryptoRates returns, for each requested code, the BTC value of one unit
// (the reciprocal of the reported units-per-BTC) and USD per 1 BTC as the pivot.
// With no codes requested every entry typed "crypto" is kept.
func (c *CryptoRateClient) FetchCryptoRates(ctx context.Context, codes []entity.CurrencyCode) (entity.CryptoQuote, error) {
	var resp cryptoResponse
	if err := c.client.GetJSON(ctx, c.url, &resp); err != nil {
		return entity.CryptoQuote{}, fmt.Errorf("failed to fetch crypto rates: %w", err)
	}

	usd, ok := resp.Rates["usd"]
	if !ok || usd.Value <= 0 {
		return entity.CryptoQuote{}, fmt.Errorf("crypto source returned no usable usd rate")
	}

	wanted := make(map[entity.CurrencyCode]bool, len(codes))
	for _, code := range codes {
		wanted[code] = true
	}

	quote := entity.CryptoQuote{
		Rates:    make(entity.CryptoRates),
		BTCToUSD: usd.Value,
	}

	for ticker, r := range resp.Rates {
		code := entity.CurrencyCode(strings.ToUpper(ticker))
		if len(wanted) > 0 && !wanted[code] {
			continue
		}
		if len(wanted) == 0 && r.Type != "crypto" {
			continue
		}
		if r.Value <= 0 {
			c.logger.Warn("Dropping non-positive crypto rate", map[string]interface{}{
				"currency": code,
				"rate":     r.Value,
			})
			continue
		}
		quote.Rates[code] = 1 / r.Value
	}

	quote.Rates[entity.BTC] = 1

	return quote, nil
}
