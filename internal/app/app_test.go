package app

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"

	"github.com/damon-houk/currency-widget/internal/application/service"
	"github.com/damon-houk/currency-widget/internal/config"
	"github.com/damon-houk/currency-widget/internal/infrastructure/logger"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const (
	fiatBody   = `{"base":"USD","rates":{"USD":1,"EUR":0.92,"TWD":32.5}}`
	cryptoBody = `{"rates":{"btc":{"value":1,"type":"crypto"},"eth":{"value":20,"type":"crypto"},"usd":{"value":50000,"type":"fiat"}}}`
)

func newSource(t *testing.T, body string, status int) *httptest.Server {
	t.Helper()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		io.WriteString(w, body)
	}))
	t.Cleanup(server.Close)
	return server
}

func testConfig(t *testing.T, driver string) *config.Config {
	t.Helper()

	cfg := config.Default()
	cfg.Store.Driver = driver
	cfg.Store.BadgerPath = filepath.Join(t.TempDir(), "badger")
	cfg.Server.AllowedOrigins = []string{"chrome-extension://*"}
	cfg.Rates.FiatURL = newSource(t, fiatBody, http.StatusOK).URL
	cfg.Rates.CryptoURL = newSource(t, cryptoBody, http.StatusOK).URL
	cfg.Rates.RequestsPerSecond = 1000
	cfg.Rates.Burst = 100
	return cfg
}

func newTestApp(t *testing.T, cfg *config.Config) *App {
	t.Helper()

	a, err := New(context.Background(), cfg, logger.Nop())
	require.NoError(t, err)
	t.Cleanup(func() { a.Close() })
	return a
}

func TestNewLoadsCatalogAndRates(t *testing.T) {
	for _, driver := range []string{config.DriverMemory, config.DriverBadger} {
		t.Run(driver, func(t *testing.T) {
			a := newTestApp(t, testConfig(t, driver))

			assert.Greater(t, a.Catalog.Len(), 0)
			require.NoError(t, a.LoadRates(context.Background()))

			snapshot := a.RateStore.Snapshot()
			assert.Equal(t, 32.5, snapshot.FiatRates["TWD"])
			assert.Equal(t, 0.05, snapshot.CryptoRates["ETH"])
			assert.Equal(t, 50000.0, snapshot.BTCToUSD)
		})
	}
}

func TestLoadRatesReportsUnavailableSources(t *testing.T) {
	cfg := testConfig(t, config.DriverMemory)
	cfg.Rates.FiatURL = newSource(t, "", http.StatusServiceUnavailable).URL
	cfg.Rates.CryptoURL = newSource(t, "", http.StatusServiceUnavailable).URL

	a := newTestApp(t, cfg)
	assert.Error(t, a.LoadRates(context.Background()))

	// the widget reports the missing rates instead of listing unconverted amounts
	view := a.Widget.Start(context.Background(), "en")
	assert.Empty(t, view.Rows)
	assert.ErrorIs(t, view.Err(), service.ErrNoRateData)
}

func TestRouter(t *testing.T) {
	a := newTestApp(t, testConfig(t, config.DriverMemory))
	require.NoError(t, a.LoadRates(context.Background()))
	a.Widget.Start(context.Background(), "zh-TW")

	server := httptest.NewServer(a.Router())
	t.Cleanup(server.Close)

	t.Run("Convert", func(t *testing.T) {
		resp, err := http.Get(server.URL + "/convert?amount=1&from=btc&to=usd")
		require.NoError(t, err)
		defer resp.Body.Close()

		assert.Equal(t, http.StatusOK, resp.StatusCode)
		assert.NotEmpty(t, resp.Header.Get("X-Request-ID"))

		var body struct {
			Result    float64 `json:"result"`
			Formatted string  `json:"formatted"`
		}
		require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
		assert.Equal(t, 50000.0, body.Result)
		assert.Equal(t, "50,000.00", body.Formatted)
	})

	t.Run("Health", func(t *testing.T) {
		resp, err := http.Get(server.URL + "/healthz")
		require.NoError(t, err)
		resp.Body.Close()
		assert.Equal(t, http.StatusOK, resp.StatusCode)
	})

	t.Run("Metrics", func(t *testing.T) {
		resp, err := http.Get(server.URL + "/metrics")
		require.NoError(t, err)
		defer resp.Body.Close()

		body, err := io.ReadAll(resp.Body)
		require.NoError(t, err)
		assert.Contains(t, string(body), "fxw_rate_fetch_total")
		assert.Contains(t, string(body), `route="/convert"`)
	})

	t.Run("CORS preflight", func(t *testing.T) {
		req, err := http.NewRequest(http.MethodOptions, server.URL+"/widget/amount", nil)
		require.NoError(t, err)
		req.Header.Set("Origin", "chrome-extension://abcdef")
		req.Header.Set("Access-Control-Request-Method", http.MethodPut)

		resp, err := http.DefaultClient.Do(req)
		require.NoError(t, err)
		resp.Body.Close()

		assert.Equal(t, "chrome-extension://abcdef", resp.Header.Get("Access-Control-Allow-Origin"))
	})

	t.Run("CORS rejects other origins", func(t *testing.T) {
		req, err := http.NewRequest(http.MethodGet, server.URL+"/widget", nil)
		require.NoError(t, err)
		req.Header.Set("Origin", "https://evil.example")

		resp, err := http.DefaultClient.Do(req)
		require.NoError(t, err)
		resp.Body.Close()

		assert.Empty(t, resp.Header.Get("Access-Control-Allow-Origin"))
	})
}

func TestServeStopsOnCancel(t *testing.T) {
	cfg := testConfig(t, config.DriverMemory)
	cfg.Server.Addr = "127.0.0.1:0"
	a := newTestApp(t, cfg)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- a.Serve(ctx) }()

	cancel()
	assert.NoError(t, <-done)
}

func TestCloseIsIdempotent(t *testing.T) {
	a := newTestApp(t, testConfig(t, config.DriverBadger))
	assert.NoError(t, a.Close())
	assert.NoError(t, a.Close())
}
