package api

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/damon-houk/currency-widget/internal/domain/entity"
	"github.com/damon-houk/currency-widget/internal/infrastructure/logger"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const coingeckoSample = `{
	"rates": {
		"btc": {"name": "Bitcoin", "unit": "BTC", "value": 1, "type": "crypto"},
		"eth": {"name": "Ether", "unit": "ETH", "value": 20, "type": "crypto"},
		"ltc": {"name": "Litecoin", "unit": "LTC", "value": 800, "type": "crypto"},
		"usd": {"name": "US Dollar", "unit": "$", "value": 50000, "type": "fiat"},
		"eur": {"name": "Euro", "unit": "€", "value": 46000, "type": "fiat"}
	}
}`

func newCryptoServer(t *testing.T, body string) *httptest.Server {
	t.Helper()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(body))
	}))
	t.Cleanup(server.Close)
	return server
}

func TestFetchCryptoRates(t *testing.T) {
	server := newCryptoServer(t, coingeckoSample)
	client := NewCryptoRateClient(server.URL, nil, testClientConfig(), logger.Nop())

	quote, err := client.FetchCryptoRates(context.Background(), []entity.CurrencyCode{"BTC", "ETH"})
	require.NoError(t, err)

	assert.Equal(t, 50000.0, quote.BTCToUSD)
	assert.Equal(t, 1.0, quote.Rates["BTC"])
	assert.InDelta(t, 0.05, quote.Rates["ETH"], 1e-12)
	assert.NotContains(t, quote.Rates, entity.CurrencyCode("LTC"))
	assert.NotContains(t, quote.Rates, entity.CurrencyCode("USD"))
	assert.NoError(t, quote.Validate())
}

func TestFetchCryptoRatesAllCrypto(t *testing.T) {
	server := newCryptoServer(t, coingeckoSample)
	client := NewCryptoRateClient(server.URL, nil, testClientConfig(), logger.Nop())

	quote, err := client.FetchCryptoRates(context.Background(), nil)
	require.NoError(t, err)

	assert.Len(t, quote.Rates, 3)
	assert.InDelta(t, 1.0/800, quote.Rates["LTC"], 1e-15)
	assert.NotContains(t, quote.Rates, entity.CurrencyCode("EUR"))
}

func TestFetchCryptoRatesForcesBTC(t *testing.T) {
	server := newCryptoServer(t, `{"rates": {"usd": {"value": 60000}, "eth": {"value": 25}}}`)
	client := NewCryptoRateClient(server.URL, nil, testClientConfig(), logger.Nop())

	quote, err := client.FetchCryptoRates(context.Background(), []entity.CurrencyCode{"BTC", "ETH"})
	require.NoError(t, err)
	assert.Equal(t, 1.0, quote.Rates["BTC"])
}

func TestFetchCryptoRatesMissingUSD(t *testing.T) {
	server := newCryptoServer(t, `{"rates": {"eth": {"value": 20}}}`)
	client := NewCryptoRateClient(server.URL, nil, testClientConfig(), logger.Nop())

	_, err := client.FetchCryptoRates(context.Background(), []entity.CurrencyCode{"ETH"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "usd")
}
