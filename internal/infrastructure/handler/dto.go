package handler

import (
	"github.com/damon-houk/currency-widget/internal/application/service"
	"github.com/damon-houk/currency-widget/internal/domain/entity"
)

// ConvertResponse represents the response for the conversion endpoint
type ConvertResponse struct {
	Amount    float64 `json:"amount"`
	From      string  `json:"from"`
	FromKind  string  `json:"from_kind,omitempty"`
	To        string  `json:"to"`
	ToKind    string  `json:"to_kind,omitempty"`
	Result    float64 `json:"result"`
	Formatted string  `json:"formatted"`
}

// FormatInputRequest is a raw keystroke string to format
type FormatInputRequest struct {
	Input string `json:"input"`
}

// FormatResponse carries a formatted value and, when it parses, the number it holds
type FormatResponse struct {
	Formatted string   `json:"formatted"`
	Value     *float64 `json:"value,omitempty"`
}

// RatesResponse represents the current rate snapshot
type RatesResponse struct {
	FiatRates   entity.FiatRates   `json:"fiat_rates"`
	CryptoRates entity.CryptoRates `json:"crypto_rates"`
	BTCToUSD    float64            `json:"btc_to_usd"`
	Status      service.RateStatus `json:"status"`
}

// CurrencyResponse is one catalog entry
type CurrencyResponse struct {
	Code     string `json:"code"`
	Kind     string `json:"kind"`
	Symbol   string `json:"symbol"`
	Name     string `json:"name"`
	Selected bool   `json:"selected"`
}

// EditAmountRequest is a keystroke in one widget row
type EditAmountRequest struct {
	Currency string `json:"currency"`
	Input    string `json:"input"`
}

// BlurRequest is the text left in a row when editing ends
type BlurRequest struct {
	Input string `json:"input"`
}

// AddCurrencyRequest adds a currency to the widget
type AddCurrencyRequest struct {
	Currency string `json:"currency"`
}

// ReorderRequest replaces the widget order
type ReorderRequest struct {
	Order []string `json:"order"`
}

// LanguageRequest switches the display language
type LanguageRequest struct {
	Language string `json:"language"`
}

// HealthResponse reports whether rates are loaded
type HealthResponse struct {
	Status    string `json:"status"`
	HasFiat   bool   `json:"has_fiat"`
	HasCrypto bool   `json:"has_crypto"`
}
