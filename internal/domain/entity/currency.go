package entity

import (
	"fmt"
	"sort"
	"strings"
)

// CurrencyCode is an uppercase fiat ISO code ("USD") or crypto ticker ("BTC")
type CurrencyCode string

// CurrencyKind tells fiat and crypto currencies apart
type CurrencyKind string

const (
	// Fiat is government-issued currency, quoted against USD
	Fiat CurrencyKind = "fiat"
	// Crypto is a crypto asset, quoted against BTC
	Crypto CurrencyKind = "crypto"
)

// DefaultLanguage is used when a name is missing in the requested language
const DefaultLanguage = "en"

// CurrencyInfo is one entry of the bundled currency metadata document
type CurrencyInfo struct {
	Symbol string            `json:"symbol"`
	Names  map[string]string `json:"names"`
	Extra  map[string]string `json:"extra,omitempty"`
}

// CurrencyConfig is the metadata document keyed by "fiat" and "crypto"
type CurrencyConfig struct {
	Fiat   map[CurrencyCode]CurrencyInfo `json:"fiat"`
	Crypto map[CurrencyCode]CurrencyInfo `json:"crypto"`
}

// Validate checks that the document is usable and that no code is both fiat and crypto
func (c *CurrencyConfig) Validate() error {
	if len(c.Fiat) == 0 && len(c.Crypto) == 0 {
		return fmt.Errorf("currency config has no currencies")
	}

	for code := range c.Fiat {
		if _, dup := c.Crypto[code]; dup {
			return fmt.Errorf("currency %s is listed as both fiat and crypto", code)
		}
	}

	return nil
}

// Currency is the resolved variant of a catalog entry
type Currency struct {
	Code   CurrencyCode
	Kind   CurrencyKind
	Symbol string
	Names  map[string]string
	Extra  map[string]string
}

// Name returns the display name in lang, falling back to English and then to the code
func (c Currency) Name(lang string) string {
	if name, ok := c.Names[lang]; ok && name != "" {
		return name
	}
	if name, ok := c.Names[DefaultLanguage]; ok && name != "" {
		return name
	}
	return string(c.Code)
}

// Catalog is a single lookup table over fiat and crypto metadata
type Catalog struct {
	currencies map[CurrencyCode]Currency
}

// NewCatalog resolves a validated config into a catalog
func NewCatalog(cfg *CurrencyConfig) (*Catalog, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	currencies := make(map[CurrencyCode]Currency, len(cfg.Fiat)+len(cfg.Crypto))
	for code, info := range cfg.Fiat {
		currencies[code] = newCurrency(code, Fiat, info)
	}
	for code, info := range cfg.Crypto {
		currencies[code] = newCurrency(code, Crypto, info)
	}

	return &Catalog{currencies: currencies}, nil
}

func newCurrency(code CurrencyCode, kind CurrencyKind, info CurrencyInfo) Currency {
	return Currency{
		Code:   code,
		Kind:   kind,
		Symbol: info.Symbol,
		Names:  info.Names,
		Extra:  info.Extra,
	}
}

// Lookup returns the catalog entry for code
func (c *Catalog) Lookup(code CurrencyCode) (Currency, bool) {
	cur, ok := c.currencies[code]
	return cur, ok
}

// Contains reports whether code is a known currency
func (c *Catalog) Contains(code CurrencyCode) bool {
	_, ok := c.currencies[code]
	return ok
}

// Kind returns the kind of code
func (c *Catalog) Kind(code CurrencyCode) (CurrencyKind, bool) {
	cur, ok := c.currencies[code]
	return cur.Kind, ok
}

// Symbol returns the display symbol, or the code itself when none is configured
func (c *Catalog) Symbol(code CurrencyCode) string {
	if cur, ok := c.currencies[code]; ok && cur.Symbol != "" {
		return cur.Symbol
	}
	return string(code)
}

// Name returns the display name of code in lang
func (c *Catalog) Name(code CurrencyCode, lang string) string {
	cur, ok := c.currencies[code]
	if !ok {
		return string(code)
	}
	return cur.Name(lang)
}

// Codes returns every code of the given kind, sorted
func (c *Catalog) Codes(kind CurrencyKind) []CurrencyCode {
	var codes []CurrencyCode
	for code, cur := range c.currencies {
		if cur.Kind == kind {
			codes = append(codes, code)
		}
	}
	sort.Slice(codes, func(i, j int) bool { return codes[i] < codes[j] })
	return codes
}

// Search returns the currencies whose "CODE name" contains term, case-insensitively,
// ordered by code. An empty term matches everything.
func (c *Catalog) Search(term, lang string) []Currency {
	term = strings.ToLower(strings.TrimSpace(term))

	var result []Currency
	for code, cur := range c.currencies {
		haystack := strings.ToLower(string(code) + " " + cur.Name(lang))
		if term == "" || strings.Contains(haystack, term) {
			result = append(result, cur)
		}
	}

	sort.Slice(result, func(i, j int) bool { return result[i].Code < result[j].Code })
	return result
}

// Len returns the number of currencies in the catalog
func (c *Catalog) Len() int {
	return len(c.currencies)
}
