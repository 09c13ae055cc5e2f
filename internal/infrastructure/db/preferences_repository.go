package db

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/damon-houk/currency-widget/internal/domain/entity"
	"github.com/damon-houk/currency-widget/internal/domain/repository"
)

// Keys under which preferences are persisted
const (
	keyCurrencyOrder      = "currencyOrder"
	keyLastEditedCurrency = "lastEditedCurrency"
	keyLastEditedAmount   = "lastEditedAmount"
	keyUserLanguage       = "userLanguage"
)

// KVPreferencesRepository stores each preference as its own JSON value
type KVPreferencesRepository struct {
	store repository.KeyValueStore
}

// NewPreferencesRepository creates a preferences repository over store
func NewPreferencesRepository(store repository.KeyValueStore) *KVPreferencesRepository {
	return &KVPreferencesRepository{store: store}
}

// Load returns saved preferences with defaults for anything unset
func (r *KVPreferencesRepository) Load(ctx context.Context) (entity.Preferences, error) {
	prefs := entity.DefaultPreferences()

	var order []entity.CurrencyCode
	found, err := r.get(ctx, keyCurrencyOrder, &order)
	if err != nil {
		return prefs, err
	}
	if found && len(order) > 0 {
		prefs.CurrencyOrder = order
	}

	var currency entity.CurrencyCode
	if found, err = r.get(ctx, keyLastEditedCurrency, &currency); err != nil {
		return prefs, err
	}
	if found && currency != "" {
		prefs.LastEditedCurrency = currency
	}

	var amount float64
	if found, err = r.get(ctx, keyLastEditedAmount, &amount); err != nil {
		return prefs, err
	}
	if found && amount != 0 {
		prefs.LastEditedAmount = amount
	}

	var lang string
	if _, err = r.get(ctx, keyUserLanguage, &lang); err != nil {
		return prefs, err
	}
	prefs.UserLanguage = lang

	return prefs, nil
}

// SaveOrder stores the currency order
func (r *KVPreferencesRepository) SaveOrder(ctx context.Context, order []entity.CurrencyCode) error {
	return r.put(ctx, keyCurrencyOrder, order)
}

// SaveLastInput stores the last edited currency and amount
func (r *KVPreferencesRepository) SaveLastInput(ctx context.Context, currency entity.CurrencyCode, amount float64) error {
	if err := r.put(ctx, keyLastEditedCurrency, currency); err != nil {
		return err
	}
	return r.put(ctx, keyLastEditedAmount, amount)
}

// SaveLanguage stores the language choice
func (r *KVPreferencesRepository) SaveLanguage(ctx context.Context, lang string) error {
	return r.put(ctx, keyUserLanguage, lang)
}

func (r *KVPreferencesRepository) get(ctx context.Context, key string, out interface{}) (bool, error) {
	data, err := r.store.Get(ctx, key)
	if errors.Is(err, repository.ErrNotFound) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("failed to load %s: %w", key, err)
	}

	if err := json.Unmarshal(data, out); err != nil {
		return false, fmt.Errorf("failed to decode %s: %w", key, err)
	}
	return true, nil
}

func (r *KVPreferencesRepository) put(ctx context.Context, key string, value interface{}) error {
	data, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("failed to encode %s: %w", key, err)
	}

	if err := r.store.Set(ctx, key, data, 0); err != nil {
		return fmt.Errorf("failed to save %s: %w", key, err)
	}
	return nil
}
