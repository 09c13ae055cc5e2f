package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/damon-houk/currency-widget/internal/domain/entity"
	"github.com/damon-houk/currency-widget/internal/mocks"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func TestFetchWithFallback(t *testing.T) {
	ctx := context.Background()
	liveRates := entity.FiatRates{"USD": 1, "EUR": 0.9}
	errOffline := errors.New("offline")

	live := func(context.Context) (entity.FiatRates, error) { return liveRates, nil }
	failing := func(context.Context) (entity.FiatRates, error) { return nil, errOffline }

	t.Run("Live success is cached", func(t *testing.T) {
		store, _ := newTestRateStore(t)

		got, err := FetchWithFallback(ctx, store, KeyFiatRates, time.Hour, live)
		require.NoError(t, err)
		assert.Equal(t, OriginLive, got.Origin)
		assert.Equal(t, liveRates, got.Data)
		assert.Equal(t, testNow.UnixMilli(), got.Timestamp)

		entry, err := LoadEntry[entity.FiatRates](ctx, store, KeyFiatRates)
		require.NoError(t, err)
		require.NotNil(t, entry)
		assert.Equal(t, liveRates, entry.Data)
	})

	t.Run("Failure served from fresh cache", func(t *testing.T) {
		store, clock := newTestRateStore(t)
		_, err := FetchWithFallback(ctx, store, KeyFiatRates, time.Hour, live)
		require.NoError(t, err)

		clock.Advance(30 * time.Minute)

		got, err := FetchWithFallback(ctx, store, KeyFiatRates, time.Hour, failing)
		require.NoError(t, err)
		assert.Equal(t, OriginCache, got.Origin)
		assert.Equal(t, liveRates, got.Data)
		assert.Equal(t, testNow.UnixMilli(), got.Timestamp)
	})

	t.Run("Failure with expired cache", func(t *testing.T) {
		store, clock := newTestRateStore(t)
		_, err := FetchWithFallback(ctx, store, KeyFiatRates, time.Hour, live)
		require.NoError(t, err)

		clock.Advance(time.Hour + time.Millisecond)

		_, err = FetchWithFallback(ctx, store, KeyFiatRates, time.Hour, failing)
		require.Error(t, err)
		assert.ErrorIs(t, err, errOffline)
		assert.Contains(t, err.Error(), "expired")
	})

	t.Run("Failure with empty cache", func(t *testing.T) {
		store, _ := newTestRateStore(t)

		_, err := FetchWithFallback(ctx, store, KeyFiatRates, time.Hour, failing)
		require.Error(t, err)
		assert.ErrorIs(t, err, errOffline)
		assert.Contains(t, err.Error(), "no cached")
	})

	t.Run("Cache fallback is logged", func(t *testing.T) {
		store, _ := newTestRateStore(t)
		log := new(mocks.MockLogger)
		log.On("Debug", "Saved cache entry", mock.Anything).Return()
		log.On("Warn", "Live fetch failed, using cached data", mock.MatchedBy(func(fields map[string]interface{}) bool {
			return fields["key"] == KeyFiatRates && fields["error"] == errOffline.Error()
		})).Return().Once()
		store.logger = log

		_, err := FetchWithFallback(ctx, store, KeyFiatRates, time.Hour, live)
		require.NoError(t, err)
		_, err = FetchWithFallback(ctx, store, KeyFiatRates, time.Hour, failing)
		require.NoError(t, err)

		log.AssertExpectations(t)
	})
}
