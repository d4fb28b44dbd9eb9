package domain

// Currency represents a supported currency in the domain.
// Currencies are created once when the registry is seeded and never mutated.
type Currency struct {
	ID   int64  `json:"id"`
	Code string `json:"code"` // ISO 4217 code, unique (e.g., "USD")
	Name string `json:"name"` // e.g., "US Dollar"
}

// DefaultCurrencies is the initial registry content seeded on an empty database.
var DefaultCurrencies = []Currency{
	{Code: "USD", Name: "US Dollar"},
	{Code: "EUR", Name: "Euro"},
	{Code: "JPY", Name: "Japanese Yen"},
	{Code: "GBP", Name: "British Pound"},
	{Code: "TWD", Name: "New Taiwan Dollar"},
	{Code: "CNY", Name: "Chinese Yuan"},
	{Code: "HKD", Name: "Hong Kong Dollar"},
	{Code: "KRW", Name: "South Korean Won"},
	{Code: "SGD", Name: "Singapore Dollar"},
	{Code: "AUD", Name: "Australian Dollar"},
	{Code: "CAD", Name: "Canadian Dollar"},
	{Code: "CHF", Name: "Swiss Franc"},
}
