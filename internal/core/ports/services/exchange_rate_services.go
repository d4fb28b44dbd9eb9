package services

import (
	"context"

	"github.com/SscSPs/currency_conversion_app/internal/core/domain"
	"github.com/shopspring/decimal"
)

// ExchangeRateReaderSvc answers queries over the exchange rate log.
type ExchangeRateReaderSvc interface {
	// GetLatestRate returns the newest rate for an ordered currency pair.
	GetLatestRate(ctx context.Context, fromCode, toCode string) (*domain.LatestRate, error)

	// Convert multiplies amount by the newest rate for the pair.
	Convert(ctx context.Context, fromCode, toCode string, amount decimal.Decimal) (*domain.Conversion, error)

	// GetRatesForBase returns the newest rate per target for a base currency.
	GetRatesForBase(ctx context.Context, baseCode string) (*domain.BaseRates, error)

	// GetSyncStatus describes the freshness and completeness of the log.
	GetSyncStatus(ctx context.Context) (*domain.SyncStatus, error)
}

// ExchangeRateSvcFacade combines all exchange rate-related service interfaces
type ExchangeRateSvcFacade interface {
	ExchangeRateReaderSvc
}

// SyncSvc runs synchronization passes.
type SyncSvc interface {
	// RunPass runs one pass, waiting for any pass already in progress.
	RunPass(ctx context.Context) (*domain.SyncPassResult, error)

	// TryRunPass runs one pass unless another is running, in which case it
	// returns apperrors.ErrSyncInProgress.
	TryRunPass(ctx context.Context) (*domain.SyncPassResult, error)
}

// HealthSvc checks the application's dependencies.
type HealthSvc interface {
	Check(ctx context.Context) domain.HealthReport
}
