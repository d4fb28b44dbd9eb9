package ports

import (
	"context"

	"github.com/shopspring/decimal"
)

// RateSource fetches the current rates quoted against a base currency.
type RateSource interface {
	// FetchRates returns rates keyed by target currency code. Provider failures
	// produce an empty map; an error is returned only when ctx is done.
	FetchRates(ctx context.Context, baseCode string) (map[string]decimal.Decimal, error)

	// Probe performs one request without retry and reports the number of rates returned.
	Probe(ctx context.Context, baseCode string) (int, error)
}
