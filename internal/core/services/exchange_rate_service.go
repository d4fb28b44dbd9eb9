package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/SscSPs/currency_conversion_app/internal/apperrors"
	"github.com/SscSPs/currency_conversion_app/internal/core/domain"
	portsrepo "github.com/SscSPs/currency_conversion_app/internal/core/ports/repositories"
	portssvc "github.com/SscSPs/currency_conversion_app/internal/core/ports/services"
	"github.com/shopspring/decimal"
)

// exchangeRateService answers read-only queries over the rate log.
type exchangeRateService struct {
	BaseService
	currencyRepo portsrepo.CurrencyReader
	rateRepo     portsrepo.RateLogReader
	now          func() time.Time
}

// NewExchangeRateService creates the query service.
func NewExchangeRateService(currencyRepo portsrepo.CurrencyReader, rateRepo portsrepo.RateLogReader) portssvc.ExchangeRateSvcFacade {
	return newExchangeRateService(currencyRepo, rateRepo, time.Now)
}

func newExchangeRateService(currencyRepo portsrepo.CurrencyReader, rateRepo portsrepo.RateLogReader, now func() time.Time) *exchangeRateService {
	return &exchangeRateService{
		currencyRepo: currencyRepo,
		rateRepo:     rateRepo,
		now:          now,
	}
}

var _ portssvc.ExchangeRateSvcFacade = (*exchangeRateService)(nil)

// lookupCurrency resolves an exact code, reporting unknown codes as ErrUnknownCurrency.
func (s *exchangeRateService) lookupCurrency(ctx context.Context, code string) (*domain.Currency, error) {
	currency, err := s.currencyRepo.FindCurrencyByCode(ctx, code)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			return nil, fmt.Errorf("%w: %s", apperrors.ErrUnknownCurrency, code)
		}
		return nil, fmt.Errorf("failed to look up currency %s: %w", code, err)
	}
	return currency, nil
}

// GetLatestRate returns the newest observation for the exact ordered pair.
// Rates are never inverted: a missing TWD->USD observation is not derived from USD->TWD.
func (s *exchangeRateService) GetLatestRate(ctx context.Context, fromCode, toCode string) (*domain.LatestRate, error) {
	from, err := s.lookupCurrency(ctx, fromCode)
	if err != nil {
		return nil, err
	}
	to, err := s.lookupCurrency(ctx, toCode)
	if err != nil {
		return nil, err
	}

	obs, err := s.rateRepo.FindLatestRate(ctx, from.ID, to.ID)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			return nil, fmt.Errorf("%w: no exchange rate for %s->%s", apperrors.ErrNotFound, fromCode, toCode)
		}
		return nil, fmt.Errorf("failed to get latest rate %s->%s: %w", fromCode, toCode, err)
	}

	return &domain.LatestRate{
		From:        *from,
		To:          *to,
		Rate:        obs.Rate,
		RetrievedAt: obs.RetrievedAt,
	}, nil
}

// Convert multiplies amount by the latest rate using exact decimal arithmetic.
func (s *exchangeRateService) Convert(ctx context.Context, fromCode, toCode string, amount decimal.Decimal) (*domain.Conversion, error) {
	latest, err := s.GetLatestRate(ctx, fromCode, toCode)
	if err != nil {
		return nil, err
	}
	return &domain.Conversion{
		LatestRate:      *latest,
		Amount:          amount,
		ConvertedAmount: amount.Mul(latest.Rate),
	}, nil
}

// GetRatesForBase returns the latest rate per target code for baseCode.
func (s *exchangeRateService) GetRatesForBase(ctx context.Context, baseCode string) (*domain.BaseRates, error) {
	base, err := s.lookupCurrency(ctx, baseCode)
	if err != nil {
		return nil, err
	}

	observations, err := s.rateRepo.FindLatestRatesForBase(ctx, base.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to get rates for base %s: %w", baseCode, err)
	}

	result := &domain.BaseRates{
		Base:  *base,
		Rates: make(map[string]decimal.Decimal, len(observations)),
	}
	if len(observations) == 0 {
		return result, nil
	}

	currencies, err := s.currencyRepo.ListCurrencies(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list currencies: %w", err)
	}
	codes := make(map[int64]string, len(currencies))
	for _, c := range currencies {
		codes[c.ID] = c.Code
	}

	for _, obs := range observations {
		code, ok := codes[obs.TargetCurrencyID]
		if !ok {
			continue
		}
		result.Rates[code] = obs.Rate
		if result.LastUpdate == nil || obs.RetrievedAt.After(*result.LastUpdate) {
			ts := obs.RetrievedAt
			result.LastUpdate = &ts
		}
	}
	return result, nil
}

// GetSyncStatus reports how complete and how fresh the rate log is.
func (s *exchangeRateService) GetSyncStatus(ctx context.Context) (*domain.SyncStatus, error) {
	total, err := s.rateRepo.CountObservations(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to count observations: %w", err)
	}
	last, err := s.rateRepo.FindMostRecentTimestamp(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to get last sync time: %w", err)
	}
	n, err := s.currencyRepo.CountCurrencies(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to count currencies: %w", err)
	}

	expected := int64(domain.ExpectedPairs(n))
	status := &domain.SyncStatus{
		TotalRecords:        total,
		LastSyncTime:        last,
		SupportedCurrencies: n,
		ExpectedRecords:     expected,
	}
	if expected > 0 {
		status.DataCompleteness = float64(total) / float64(expected) * 100
	}
	if last != nil {
		age := s.now().Sub(*last)
		status.DataAge = &age
	}
	return status, nil
}
