package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// RatePrecision is the number of fractional digits persisted for a rate (DECIMAL(18,6)).
const RatePrecision = 6

// RateObservation is one entry of the append-only exchange rate log.
// Once committed it is never updated or deleted.
type RateObservation struct {
	ID               int64           `json:"id"`
	BaseCurrencyID   int64           `json:"baseCurrencyId"`
	TargetCurrencyID int64           `json:"targetCurrencyId"`
	Rate             decimal.Decimal `json:"rate"`
	RetrievedAt      time.Time       `json:"retrievedAt"` // UTC
}

// Newer reports whether o supersedes other as the latest observation of a pair.
// Later RetrievedAt wins; identical timestamps fall back to the higher ID.
func (o RateObservation) Newer(other RateObservation) bool {
	if o.RetrievedAt.Equal(other.RetrievedAt) {
		return o.ID > other.ID
	}
	return o.RetrievedAt.After(other.RetrievedAt)
}

// LatestRate is the most recent observation for an ordered currency pair,
// bundled with both currency records.
type LatestRate struct {
	From        Currency
	To          Currency
	Rate        decimal.Decimal
	RetrievedAt time.Time
}

// Conversion is the result of converting an amount with the latest rate.
type Conversion struct {
	LatestRate
	Amount          decimal.Decimal
	ConvertedAmount decimal.Decimal
}

// BaseRates holds the latest rate per target currency for one base currency.
type BaseRates struct {
	Base       Currency
	Rates      map[string]decimal.Decimal
	LastUpdate *time.Time // nil when no observation exists for the base
}
