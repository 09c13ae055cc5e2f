package entity

import (
	"fmt"
	"math"
)

// Pivot currencies
const (
	USD CurrencyCode = "USD"
	BTC CurrencyCode = "BTC"
)

// FiatRates maps a fiat code to units of that currency per 1 USD
type FiatRates map[CurrencyCode]float64

// CryptoRates maps a crypto code to its stored BTC multiplier; BTC itself is 1
type CryptoRates map[CurrencyCode]float64

// CryptoQuote is what one crypto fetch yields
type CryptoQuote struct {
	Rates    CryptoRates `json:"cryptoRates"`
	BTCToUSD float64     `json:"btcToUsd"`
}

// RateSnapshot holds the latest fiat-to-USD and crypto-to-BTC rates plus the BTC/USD pivot
type RateSnapshot struct {
	FiatRates   FiatRates   `json:"fiatRates"`
	CryptoRates CryptoRates `json:"cryptoRates"`
	BTCToUSD    float64     `json:"btcToUsd"`
}

// Validate checks the positivity invariant on every rate
func (r FiatRates) Validate() error {
	for code, rate := range r {
		if !validRate(rate) {
			return fmt.Errorf("invalid fiat rate for %s: %v", code, rate)
		}
	}
	return nil
}

// Validate checks the positivity invariant and that BTC is exactly 1
func (q CryptoQuote) Validate() error {
	if !validRate(q.BTCToUSD) {
		return fmt.Errorf("invalid BTC/USD rate: %v", q.BTCToUSD)
	}
	for code, rate := range q.Rates {
		if !validRate(rate) {
			return fmt.Errorf("invalid crypto rate for %s: %v", code, rate)
		}
	}
	if q.Rates[BTC] != 1 {
		return fmt.Errorf("crypto rate for BTC must be 1, got %v", q.Rates[BTC])
	}
	return nil
}

// Validate checks the snapshot invariants, including that no code appears in both maps
func (s RateSnapshot) Validate() error {
	if err := s.FiatRates.Validate(); err != nil {
		return err
	}
	if len(s.CryptoRates) > 0 {
		if err := s.Crypto().Validate(); err != nil {
			return err
		}
	}
	for code := range s.FiatRates {
		if _, dup := s.CryptoRates[code]; dup {
			return fmt.Errorf("currency %s has both a fiat and a crypto rate", code)
		}
	}
	return nil
}

// Crypto returns the crypto half of the snapshot
func (s RateSnapshot) Crypto() CryptoQuote {
	return CryptoQuote{Rates: s.CryptoRates, BTCToUSD: s.BTCToUSD}
}

// HasFiat reports whether fiat rates are present
func (s RateSnapshot) HasFiat() bool {
	return len(s.FiatRates) > 0
}

// HasCrypto reports whether crypto rates and a usable pivot are present
func (s RateSnapshot) HasCrypto() bool {
	return len(s.CryptoRates) > 0 && validRate(s.BTCToUSD)
}

// Empty reports whether the snapshot carries no rate data at all
func (s RateSnapshot) Empty() bool {
	return !s.HasFiat() && !s.HasCrypto()
}

// Clone returns a deep copy
func (s RateSnapshot) Clone() RateSnapshot {
	out := RateSnapshot{BTCToUSD: s.BTCToUSD}
	if s.FiatRates != nil {
		out.FiatRates = make(FiatRates, len(s.FiatRates))
		for k, v := range s.FiatRates {
			out.FiatRates[k] = v
		}
	}
	if s.CryptoRates != nil {
		out.CryptoRates = make(CryptoRates, len(s.CryptoRates))
		for k, v := range s.CryptoRates {
			out.CryptoRates[k] = v
		}
	}
	return out
}

func validRate(rate float64) bool {
	return rate > 0 && !math.IsInf(rate, 0) && !math.IsNaN(rate)
}
