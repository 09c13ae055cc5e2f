// Package service internal/application/service/conversion_service.go
package service

import (
	"context"
	"fmt"
	"strings"

	"github.com/damon-houk/currency-widget/internal/domain/conversion"
	"github.com/damon-houk/currency-widget/internal/domain/entity"
	"github.com/damon-houk/currency-widget/internal/domain/format"
	"github.com/damon-houk/currency-widget/internal/infrastructure/logger"
	"github.com/damon-houk/currency-widget/internal/infrastructure/middleware"
)

// ConversionResult is a single conversion with its rendered value
type ConversionResult struct {
	Amount    float64             `json:"amount"`
	From      entity.CurrencyCode `json:"from"`
	FromKind  entity.CurrencyKind `json:"from_kind"`
	To        entity.CurrencyCode `json:"to"`
	ToKind    entity.CurrencyKind `json:"to_kind"`
	Result    float64             `json:"result"`
	Formatted string              `json:"formatted"`
}

// ConversionService answers one-off conversions. Unlike the widget it reports
// an unavailable rate as conversion.ErrUnavailableRate.
type ConversionService struct {
	store  *RateStore
	logger logger.Logger
}

// NewConversionService creates a new conversion service
func NewConversionService(store *RateStore, log logger.Logger) *ConversionService {
	if log == nil {
		log = logger.GetDefaultLogger()
	}

	return &ConversionService{
		store:  store,
		logger: log,
	}
}

// NormalizeCode upper-cases and trims a user supplied currency code
func NormalizeCode(code string) entity.CurrencyCode {
	return entity.CurrencyCode(strings.ToUpper(strings.TrimSpace(code)))
}

// Convert converts amount between two currencies against the current rates
func (s *ConversionService) Convert(ctx context.Context, amount float64, from, to entity.CurrencyCode) (*ConversionResult, error) {
	requestID := middleware.GetRequestID(ctx)

	s.logger.Debug("Converting amount", map[string]interface{}{
		"request_id": requestID,
		"amount":     amount,
		"from":       from,
		"to":         to,
	})

	rates := s.store.Context(conversion.FallbackZero)

	result, err := rates.TryConvert(amount, from, to)
	if err != nil {
		s.logger.Warn("Conversion unavailable", map[string]interface{}{
			"request_id": requestID,
			"from":       from,
			"to":         to,
			"error":      err.Error(),
		})
		return nil, fmt.Errorf("failed to convert %s to %s: %w", from, to, err)
	}

	fromKind, _ := rates.Kind(from)
	toKind, _ := rates.Kind(to)

	s.logger.Info("Conversion completed", map[string]interface{}{
		"request_id": requestID,
		"amount":     amount,
		"from":       from,
		"to":         to,
		"result":     result,
	})

	return &ConversionResult{
		Amount:    amount,
		From:      from,
		FromKind:  fromKind,
		To:        to,
		ToKind:    toKind,
		Result:    result,
		Formatted: format.FormatConversionResult(result),
	}, nil
}
