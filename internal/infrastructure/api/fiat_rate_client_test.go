// internal/infrastructure/api/fiat_rate_client_test.go
package api

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/damon-houk/currency-widget/internal/domain/entity"
	"github.com/damon-houk/currency-widget/internal/infrastructure/logger"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testClientConfig() ClientConfig {
	return ClientConfig{
		Timeout:           time.Second,
		RequestsPerSecond: 1000,
		Burst:             100,
		BreakerFailures:   2,
		BreakerTimeout:    time.Minute,
	}
}

func TestFetchFiatRates(t *testing.T) {
	// Setup a mock server
	mockServer := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "application/json", r.Header.Get("Accept"))

		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		w.Write([]byte(`{
			"base": "USD",
			"date": "2024-05-01",
			"rates": {"USD": 1, "EUR": 0.92, "TWD": 32.5, "BAD": 0}
		}`))
	}))
	defer mockServer.Close()

	client := NewFiatRateClient(mockServer.URL, nil, testClientConfig(), logger.Nop())

	rates, err := client.FetchFiatRates(context.Background())
	require.NoError(t, err)

	assert.Equal(t, 1.0, rates["USD"])
	assert.Equal(t, 0.92, rates["EUR"])
	assert.Equal(t, 32.5, rates["TWD"])
	assert.NotContains(t, rates, entity.CurrencyCode("BAD"))
}

func TestFetchFiatRatesErrors(t *testing.T) {
	t.Run("Non-200 status", func(t *testing.T) {
		mockServer := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusServiceUnavailable)
		}))
		defer mockServer.Close()

		client := NewFiatRateClient(mockServer.URL, nil, testClientConfig(), logger.Nop())
		_, err := client.FetchFiatRates(context.Background())

		require.Error(t, err)
		assert.Contains(t, err.Error(), "API returned error status: 503")
	})

	t.Run("Wrong base currency", func(t *testing.T) {
		mockServer := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Write([]byte(`{"base": "EUR", "rates": {"USD": 1.08}}`))
		}))
		defer mockServer.Close()

		client := NewFiatRateClient(mockServer.URL, nil, testClientConfig(), logger.Nop())
		_, err := client.FetchFiatRates(context.Background())

		require.Error(t, err)
		assert.Contains(t, err.Error(), "expected USD")
	})

	t.Run("Malformed body", func(t *testing.T) {
		mockServer := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Write([]byte(`not json`))
		}))
		defer mockServer.Close()

		client := NewFiatRateClient(mockServer.URL, nil, testClientConfig(), logger.Nop())
		_, err := client.FetchFiatRates(context.Background())

		require.Error(t, err)
		assert.Contains(t, err.Error(), "failed to decode response")
	})
}

func TestClientBreakerOpens(t *testing.T) {
	calls := 0
	mockServer := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer mockServer.Close()

	client := NewFiatRateClient(mockServer.URL, nil, testClientConfig(), logger.Nop())
	ctx := context.Background()

	// Two failures open the breaker
	_, err := client.FetchFiatRates(ctx)
	require.Error(t, err)
	_, err = client.FetchFiatRates(ctx)
	require.Error(t, err)

	_, err = client.FetchFiatRates(ctx)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrSourceOpen)
	assert.Equal(t, 2, calls)
}
