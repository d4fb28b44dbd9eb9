package utils

import (
	"github.com/SscSPs/currency_conversion_app/internal/core/domain"
	"github.com/shopspring/decimal"
)

// RoundRate rounds a rate to the stored precision (6 fractional digits).
// Example: 0.9123456 returns 0.912346
func RoundRate(rate decimal.Decimal) decimal.Decimal {
	return rate.Round(domain.RatePrecision)
}

