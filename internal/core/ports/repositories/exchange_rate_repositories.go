package repositories

import (
	"context"
	"time"

	"github.com/SscSPs/currency_conversion_app/internal/core/domain"
)

// RateLogReader defines read operations over the exchange rate log.
type RateLogReader interface {
	// FindLatestRate returns the newest observation for the ordered pair.
	// It returns apperrors.ErrNotFound when the pair was never observed.
	FindLatestRate(ctx context.Context, baseCurrencyID, targetCurrencyID int64) (*domain.RateObservation, error)

	// FindLatestRatesForBase returns the newest observation per target currency for a base.
	FindLatestRatesForBase(ctx context.Context, baseCurrencyID int64) ([]domain.RateObservation, error)

	// HasAnyData reports whether at least one observation exists.
	HasAnyData(ctx context.Context) (bool, error)

	// CountObservations returns the total number of observations.
	CountObservations(ctx context.Context) (int64, error)

	// FindMostRecentTimestamp returns the greatest RetrievedAt, or nil for an empty log.
	FindMostRecentTimestamp(ctx context.Context) (*time.Time, error)
}

// RateLogBatch stages observations of one synchronization pass.
// Nothing is visible to readers until Commit succeeds.
type RateLogBatch interface {
	Append(obs domain.RateObservation)
	Len() int
	Commit(ctx context.Context) error
}

// RateLogWriter defines write operations over the exchange rate log.
type RateLogWriter interface {
	// NewBatch starts staging observations for atomic insertion.
	NewBatch() RateLogBatch
}

// RateLogRepositoryFacade combines all rate log repository interfaces
type RateLogRepositoryFacade interface {
	RateLogReader
	RateLogWriter
}

// Pinger is implemented by stores that can report their reachability.
type Pinger interface {
	Ping(ctx context.Context) error
}
