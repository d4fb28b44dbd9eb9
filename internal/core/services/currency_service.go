package services

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/SscSPs/currency_conversion_app/internal/core/domain"
	portsrepo "github.com/SscSPs/currency_conversion_app/internal/core/ports/repositories"
	portssvc "github.com/SscSPs/currency_conversion_app/internal/core/ports/services"
)

type currencyService struct {
	BaseService
	currencyRepo portsrepo.CurrencyRepositoryFacade
	seed         []domain.Currency
}

// CurrencyServiceOption configures the currency service
type CurrencyServiceOption func(*currencyService)

// WithSeedCurrencies replaces the default registry content used by SeedCurrencies.
func WithSeedCurrencies(seed []domain.Currency) CurrencyServiceOption {
	return func(s *currencyService) {
		s.seed = seed
	}
}

// NewCurrencyService creates the currency registry service.
func NewCurrencyService(currencyRepo portsrepo.CurrencyRepositoryFacade, options ...CurrencyServiceOption) portssvc.CurrencySvcFacade {
	svc := &currencyService{
		currencyRepo: currencyRepo,
		seed:         domain.DefaultCurrencies,
	}
	for _, option := range options {
		option(svc)
	}
	return svc
}

var _ portssvc.CurrencySvcFacade = (*currencyService)(nil)

func (s *currencyService) GetCurrencyByCode(ctx context.Context, currencyCode string) (*domain.Currency, error) {
	currency, err := s.currencyRepo.FindCurrencyByCode(ctx, currencyCode)
	if err != nil {
		return nil, fmt.Errorf("failed to get currency by code %s: %w", currencyCode, err)
	}
	return currency, nil
}

func (s *currencyService) ListCurrencies(ctx context.Context) ([]domain.Currency, error) {
	currencies, err := s.currencyRepo.ListCurrencies(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list currencies: %w", err)
	}
	if currencies == nil {
		return []domain.Currency{}, nil
	}
	return currencies, nil
}

// SeedCurrencies inserts the initial registry when no currency exists yet.
// It is a no-op on a non-empty registry.
func (s *currencyService) SeedCurrencies(ctx context.Context) (int, error) {
	count, err := s.currencyRepo.CountCurrencies(ctx)
	if err != nil {
		return 0, fmt.Errorf("failed to count currencies: %w", err)
	}
	if count > 0 {
		s.LogDebug(ctx, "Currency registry already seeded", slog.Int("count", count))
		return 0, nil
	}

	inserted, err := s.currencyRepo.SaveCurrencies(ctx, s.seed)
	if err != nil {
		return 0, fmt.Errorf("failed to seed currencies: %w", err)
	}
	s.LogInfo(ctx, "Seeded currency registry", slog.Int("inserted", inserted))
	return inserted, nil
}
