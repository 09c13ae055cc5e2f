package db

import (
	"context"
	"testing"

	"github.com/damon-houk/currency-widget/internal/domain/entity"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPreferencesRepository(t *testing.T) {
	repo := NewPreferencesRepository(newTestBadgerStore(t))
	ctx := context.Background()

	t.Run("Defaults when nothing saved", func(t *testing.T) {
		prefs, err := repo.Load(ctx)
		require.NoError(t, err)
		assert.Equal(t, entity.DefaultCurrencyOrder, prefs.CurrencyOrder)
		assert.Equal(t, entity.CurrencyCode("USD"), prefs.LastEditedCurrency)
		assert.Equal(t, 100.0, prefs.LastEditedAmount)
		assert.Equal(t, "", prefs.UserLanguage)
	})

	t.Run("Saved values win", func(t *testing.T) {
		require.NoError(t, repo.SaveOrder(ctx, []entity.CurrencyCode{"TWD", "BTC"}))
		require.NoError(t, repo.SaveLastInput(ctx, "TWD", 2500))
		require.NoError(t, repo.SaveLanguage(ctx, "zh-TW"))

		prefs, err := repo.Load(ctx)
		require.NoError(t, err)
		assert.Equal(t, []entity.CurrencyCode{"TWD", "BTC"}, prefs.CurrencyOrder)
		assert.Equal(t, entity.CurrencyCode("TWD"), prefs.LastEditedCurrency)
		assert.Equal(t, 2500.0, prefs.LastEditedAmount)
		assert.Equal(t, "zh-TW", prefs.UserLanguage)
	})

	t.Run("Empty order falls back to defaults", func(t *testing.T) {
		require.NoError(t, repo.SaveOrder(ctx, nil))

		prefs, err := repo.Load(ctx)
		require.NoError(t, err)
		assert.Equal(t, entity.DefaultCurrencyOrder, prefs.CurrencyOrder)
	})

	t.Run("Defaults are not shared", func(t *testing.T) {
		prefs := entity.DefaultPreferences()
		prefs.CurrencyOrder[0] = "XXX"
		assert.Equal(t, entity.CurrencyCode("USD"), entity.DefaultCurrencyOrder[0])
	})
}
