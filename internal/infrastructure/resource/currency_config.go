// Package resource holds the currency metadata document shipped with the binary
package resource

import (
	"bytes"
	"context"
	_ "embed"
	"encoding/json"
	"fmt"
	"os"

	"github.com/damon-houk/currency-widget/internal/domain/entity"
)

//go:embed currency_config.json
var bundledCurrencyConfig []byte

// CurrencyConfigLoader implements service.CurrencyConfigSource. It reads the
// bundled document unless an override file is configured.
type CurrencyConfigLoader struct {
	path string
}

// NewCurrencyConfigLoader creates a loader; an empty path uses the bundled document
func NewCurrencyConfigLoader(path string) *CurrencyConfigLoader {
	return &CurrencyConfigLoader{path: path}
}

// LoadCurrencyConfig decodes and validates the currency metadata document
func (l *CurrencyConfigLoader) LoadCurrencyConfig(ctx context.Context) (*entity.CurrencyConfig, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	data := bundledCurrencyConfig
	if l.path != "" {
		var err error
		data, err = os.ReadFile(l.path)
		if err != nil {
			return nil, fmt.Errorf("failed to read currency config %s: %w", l.path, err)
		}
	}

	return ParseCurrencyConfig(data)
}

// ParseCurrencyConfig decodes a currency metadata document. Unknown fields are rejected.
func ParseCurrencyConfig(data []byte) (*entity.CurrencyConfig, error) {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.DisallowUnknownFields()

	var cfg entity.CurrencyConfig
	if err := dec.Decode(&cfg); err != nil {
		return nil, fmt.Errorf("failed to decode currency config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}
