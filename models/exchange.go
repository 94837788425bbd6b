package models

// Currency is an ISO 4217 code tracked by the rate service
type Currency string

const (
	CurrencyUSD Currency = "USD"
	CurrencyGBP Currency = "GBP"
	CurrencyEUR Currency = "EUR"
	CurrencyCAD Currency = "CAD"
	CurrencyAUD Currency = "AUD"
)

// ExchangeRates is the payload served by /api/exchange-rates.
// Rates are units of currency per one unit of Base.
type ExchangeRates struct {
	Success     bool                 `json:"success"`
	Base        Currency             `json:"base"`
	Rates       map[Currency]float64 `json:"rates"`
	LastUpdated string               `json:"lastUpdated"`
	Source      string               `json:"source"`
	Error       string               `json:"error,omitempty"`
}

// Conversion is the result of a currency conversion request
type Conversion struct {
	Amount    float64  `json:"amount"`
	From      Currency `json:"from"`
	To        Currency `json:"to"`
	Result    float64  `json:"result"`
	Rate      float64  `json:"rate"`
	Formatted string   `json:"formatted"`
	Source    string   `json:"source"`
}

// CurrencyDetection reports the preferred currency for a client
type CurrencyDetection struct {
	Currency Currency `json:"currency"`
	Symbol   string   `json:"symbol"`
	Country  string   `json:"country,omitempty"`
	Method   string   `json:"method"` // "preference", "geoip", "accept-language", "default"
}
