package service

import (
	"context"

	"github.com/damon-houk/currency-widget/internal/domain/entity"
)

// FiatRateSource fetches fiat rates quoted as units per 1 USD
type FiatRateSource interface {
	FetchFiatRates(ctx context.Context) (entity.FiatRates, error)
}

// CryptoRateSource fetches crypto rates against BTC plus the BTC/USD pivot
type CryptoRateSource interface {
	// FetchCryptoRates returns rates for the requested codes only; BTC is always 1
	FetchCryptoRates(ctx context.Context, codes []entity.CurrencyCode) (entity.CryptoQuote, error)
}

// CurrencyConfigSource loads the bundled currency metadata document
type CurrencyConfigSource interface {
	LoadCurrencyConfig(ctx context.Context) (*entity.CurrencyConfig, error)
}
