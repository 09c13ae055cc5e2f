package db

import (
	"context"
	"testing"
	"time"

	"github.com/damon-houk/currency-widget/internal/domain/repository"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestBadgerStore(t *testing.T) *BadgerStore {
	t.Helper()

	badgerDB, err := OpenBadger("")
	require.NoError(t, err)
	t.Cleanup(func() { badgerDB.Close() })

	return NewBadgerStore(badgerDB)
}

func TestBadgerStore(t *testing.T) {
	store := newTestBadgerStore(t)
	ctx := context.Background()

	t.Run("Missing key", func(t *testing.T) {
		_, err := store.Get(ctx, "exchangeRates")
		assert.ErrorIs(t, err, repository.ErrNotFound)
	})

	t.Run("Set then get", func(t *testing.T) {
		require.NoError(t, store.Set(ctx, "exchangeRates", []byte(`{"timestamp":1}`), 0))

		value, err := store.Get(ctx, "exchangeRates")
		require.NoError(t, err)
		assert.Equal(t, `{"timestamp":1}`, string(value))
	})

	t.Run("Overwrite", func(t *testing.T) {
		require.NoError(t, store.Set(ctx, "exchangeRates", []byte(`{"timestamp":2}`), 0))

		value, err := store.Get(ctx, "exchangeRates")
		require.NoError(t, err)
		assert.Equal(t, `{"timestamp":2}`, string(value))
	})

	t.Run("Set with TTL", func(t *testing.T) {
		require.NoError(t, store.Set(ctx, "fiatRates", []byte("x"), time.Hour))

		value, err := store.Get(ctx, "fiatRates")
		require.NoError(t, err)
		assert.Equal(t, "x", string(value))
	})

	t.Run("Delete", func(t *testing.T) {
		require.NoError(t, store.Delete(ctx, "exchangeRates"))

		_, err := store.Get(ctx, "exchangeRates")
		assert.ErrorIs(t, err, repository.ErrNotFound)
	})
}
