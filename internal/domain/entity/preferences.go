package entity

// Preferences is the per-user widget state kept between sessions
type Preferences struct {
	CurrencyOrder      []CurrencyCode `json:"currencyOrder"`
	LastEditedCurrency CurrencyCode   `json:"lastEditedCurrency"`
	LastEditedAmount   float64        `json:"lastEditedAmount"`
	UserLanguage       string         `json:"userLanguage,omitempty"`
}

// Defaults used when nothing has been saved yet
var (
	DefaultCurrencyOrder = []CurrencyCode{"USD", "EUR", "JPY", "TWD", "BTC", "ETH"}
)

const (
	DefaultLastEditedCurrency CurrencyCode = "USD"
	DefaultLastEditedAmount   float64      = 100
)

// DefaultPreferences returns a fresh copy of the default state
func DefaultPreferences() Preferences {
	order := make([]CurrencyCode, len(DefaultCurrencyOrder))
	copy(order, DefaultCurrencyOrder)

	return Preferences{
		CurrencyOrder:      order,
		LastEditedCurrency: DefaultLastEditedCurrency,
		LastEditedAmount:   DefaultLastEditedAmount,
	}
}
