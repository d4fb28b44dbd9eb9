package repositories

import (
	"context"

	"github.com/SscSPs/currency_conversion_app/internal/core/domain"
)

// CurrencyReader defines read operations for currency data
type CurrencyReader interface {
	// FindCurrencyByCode retrieves a specific currency by its exact code.
	// It returns apperrors.ErrNotFound when no currency has that code.
	FindCurrencyByCode(ctx context.Context, currencyCode string) (*domain.Currency, error)

	// ListCurrencies retrieves all currencies ordered by id.
	ListCurrencies(ctx context.Context) ([]domain.Currency, error)

	// CountCurrencies returns the number of registered currencies.
	CountCurrencies(ctx context.Context) (int, error)
}

// CurrencyWriter defines write operations for currency data
type CurrencyWriter interface {
	// SaveCurrencies persists currencies, skipping codes that already exist.
	// It returns the number of rows inserted.
	SaveCurrencies(ctx context.Context, currencies []domain.Currency) (int, error)
}

// CurrencyRepositoryFacade combines all currency-related repository interfaces
type CurrencyRepositoryFacade interface {
	CurrencyReader
	CurrencyWriter
}
