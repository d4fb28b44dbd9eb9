package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// ExchangeRateLog is the persisted form of one rate observation.
// Rows are append-only.
type ExchangeRateLog struct {
	ID               int64           `json:"id"`               // Monotonic, assigned by the store
	BaseCurrencyID   int64           `json:"baseCurrencyId"`   // FK -> Currency.ID
	TargetCurrencyID int64           `json:"targetCurrencyId"` // FK -> Currency.ID
	Rate             decimal.Decimal `json:"rate"`             // Six fractional digits
	RetrievedAt      time.Time       `json:"retrievedAt"`      // UTC
}
