// Package conversion converts amounts between fiat and crypto currencies.
//
// Fiat rates are units per 1 USD and crypto rates are BTC per 1 unit, so every
// route passes through USD, BTC or both. The functions here are pure: they read
// only the ConversionContext they are given and never round.
package conversion

import (
	"errors"
	"fmt"

	"github.com/damon-houk/currency-widget/internal/domain/entity"
)

// ErrUnavailableRate means one side of a conversion has no known rate
var ErrUnavailableRate = errors.New("exchange rate not available")

// FallbackPolicy picks what Convert returns when a rate is unavailable
type FallbackPolicy int

const (
	// FallbackAmount returns the input amount unchanged
	FallbackAmount FallbackPolicy = iota
	// FallbackZero returns 0
	FallbackZero
)

// ConversionContext is the rate data a conversion runs against
type ConversionContext struct {
	Snapshot entity.RateSnapshot
	Fallback FallbackPolicy
}

// NewContext builds a context over snapshot with the given fallback
func NewContext(snapshot entity.RateSnapshot, fallback FallbackPolicy) ConversionContext {
	return ConversionContext{Snapshot: snapshot, Fallback: fallback}
}

// Kind reports how code is quoted in the current snapshot
func (c ConversionContext) Kind(code entity.CurrencyCode) (entity.CurrencyKind, bool) {
	if _, ok := c.Snapshot.FiatRates[code]; ok {
		return entity.Fiat, true
	}
	if _, ok := c.Snapshot.CryptoRates[code]; ok && c.Snapshot.HasCrypto() {
		return entity.Crypto, true
	}
	return "", false
}

// Available reports whether code can take part in a conversion
func (c ConversionContext) Available(code entity.CurrencyCode) bool {
	_, ok := c.Kind(code)
	return ok
}

// Convert converts amount from one currency to another. Identical codes return
// amount untouched; an unavailable rate yields the context's fallback value.
func (c ConversionContext) Convert(amount float64, from, to entity.CurrencyCode) float64 {
	result, err := c.TryConvert(amount, from, to)
	if err != nil {
		if c.Fallback == FallbackZero {
			return 0
		}
		return amount
	}
	return result
}

// TryConvert is Convert with an explicit ErrUnavailableRate instead of a fallback value
func (c ConversionContext) TryConvert(amount float64, from, to entity.CurrencyCode) (float64, error) {
	if from == to {
		return amount, nil
	}

	fromKind, ok := c.Kind(from)
	if !ok {
		return 0, fmt.Errorf("%w for %s", ErrUnavailableRate, from)
	}
	toKind, ok := c.Kind(to)
	if !ok {
		return 0, fmt.Errorf("%w for %s", ErrUnavailableRate, to)
	}

	fiat := c.Snapshot.FiatRates
	crypto := c.Snapshot.CryptoRates
	btcToUSD := c.Snapshot.BTCToUSD

	switch {
	case fromKind == entity.Fiat && toKind == entity.Fiat:
		return amount / fiat[from] * fiat[to], nil

	case fromKind == entity.Fiat && toKind == entity.Crypto:
		usd := amount / fiat[from]
		btc := usd / btcToUSD
		return btc / crypto[to], nil

	case fromKind == entity.Crypto && toKind == entity.Fiat:
		btc := amount * crypto[from]
		usd := btc * btcToUSD
		return usd * fiat[to], nil

	default:
		return amount * crypto[from] / crypto[to], nil
	}
}
