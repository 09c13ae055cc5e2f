package repository

import (
	"context"

	"github.com/damon-houk/currency-widget/internal/domain/entity"
)

// PreferencesRepository persists the widget state between sessions
type PreferencesRepository interface {
	// Load returns the saved preferences, filling unset fields with defaults
	Load(ctx context.Context) (entity.Preferences, error)

	// SaveOrder stores the ordered list of currencies shown in the widget
	SaveOrder(ctx context.Context, order []entity.CurrencyCode) error

	// SaveLastInput stores the last edited currency and amount
	SaveLastInput(ctx context.Context, currency entity.CurrencyCode, amount float64) error

	// SaveLanguage stores the user's language choice
	SaveLanguage(ctx context.Context, lang string) error
}
