// internal/mocks/mocks.go
package mocks

import (
	"context"
	"time"

	"github.com/damon-houk/currency-widget/internal/domain/entity"
	"github.com/damon-houk/currency-widget/internal/infrastructure/logger"
	"github.com/stretchr/testify/mock"
)

// MockFiatRateSource mocks the FiatRateSource interface
type MockFiatRateSource struct {
	mock.Mock
}

func (m *MockFiatRateSource) FetchFiatRates(ctx context.Context) (entity.FiatRates, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(entity.FiatRates), args.Error(1)
}

// MockCryptoRateSource mocks the CryptoRateSource interface
type MockCryptoRateSource struct {
	mock.Mock
}

func (m *MockCryptoRateSource) FetchCryptoRates(ctx context.Context, codes []entity.CurrencyCode) (entity.CryptoQuote, error) {
	args := m.Called(ctx, codes)
	return args.Get(0).(entity.CryptoQuote), args.Error(1)
}

// MockCurrencyConfigSource mocks the CurrencyConfigSource interface
type MockCurrencyConfigSource struct {
	mock.Mock
}

func (m *MockCurrencyConfigSource) LoadCurrencyConfig(ctx context.Context) (*entity.CurrencyConfig, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entity.CurrencyConfig), args.Error(1)
}

// MockKeyValueStore mocks the KeyValueStore interface
type MockKeyValueStore struct {
	mock.Mock
}

func (m *MockKeyValueStore) Get(ctx context.Context, key string) ([]byte, error) {
	args := m.Called(ctx, key)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]byte), args.Error(1)
}

func (m *MockKeyValueStore) Set(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	args := m.Called(ctx, key, value, ttl)
	return args.Error(0)
}

func (m *MockKeyValueStore) Delete(ctx context.Context, key string) error {
	args := m.Called(ctx, key)
	return args.Error(0)
}

// MockPreferencesRepository mocks the PreferencesRepository interface
type MockPreferencesRepository struct {
	mock.Mock
}

func (m *MockPreferencesRepository) Load(ctx context.Context) (entity.Preferences, error) {
	args := m.Called(ctx)
	return args.Get(0).(entity.Preferences), args.Error(1)
}

func (m *MockPreferencesRepository) SaveOrder(ctx context.Context, order []entity.CurrencyCode) error {
	args := m.Called(ctx, order)
	return args.Error(0)
}

func (m *MockPreferencesRepository) SaveLastInput(ctx context.Context, currency entity.CurrencyCode, amount float64) error {
	args := m.Called(ctx, currency, amount)
	return args.Error(0)
}

func (m *MockPreferencesRepository) SaveLanguage(ctx context.Context, lang string) error {
	args := m.Called(ctx, lang)
	return args.Error(0)
}

// MockLogger mocks the logger interface
type MockLogger struct {
	mock.Mock
}

func (m *MockLogger) Debug(msg string, fields map[string]interface{}) {
	m.Called(msg, fields)
}

func (m *MockLogger) Info(msg string, fields map[string]interface{}) {
	m.Called(msg, fields)
}

func (m *MockLogger) Warn(msg string, fields map[string]interface{}) {
	m.Called(msg, fields)
}

func (m *MockLogger) Error(msg string, fields map[string]interface{}) {
	m.Called(msg, fields)
}

func (m *MockLogger) Fatal(msg string, fields map[string]interface{}) {
	m.Called(msg, fields)
}

func (m *MockLogger) WithField(key string, value interface{}) logger.Logger {
	m.Called(key, value)
	return m
}

func (m *MockLogger) WithFields(fields map[string]interface{}) logger.Logger {
	m.Called(fields)
	return m
}
