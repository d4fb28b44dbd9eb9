package services

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/SscSPs/currency_conversion_app/internal/apperrors"
	"github.com/SscSPs/currency_conversion_app/internal/core/domain"
	"github.com/SscSPs/currency_conversion_app/internal/core/ports"
	portsrepo "github.com/SscSPs/currency_conversion_app/internal/core/ports/repositories"
	portssvc "github.com/SscSPs/currency_conversion_app/internal/core/ports/services"
	"github.com/SscSPs/currency_conversion_app/internal/platform/telemetry"
	"github.com/SscSPs/currency_conversion_app/internal/utils"
)

// syncService refreshes the rate log for every ordered currency pair.
// Passes are serialized: at most one runs at a time.
type syncService struct {
	BaseService
	currencyRepo portsrepo.CurrencyReader
	rateRepo     portsrepo.RateLogWriter
	source       ports.RateSource
	metrics      *telemetry.SyncMetrics
	now          func() time.Time

	mu sync.Mutex
}

// SyncServiceOption configures the sync service
type SyncServiceOption func(*syncService)

// WithSyncMetrics records pass outcomes.
func WithSyncMetrics(m *telemetry.SyncMetrics) SyncServiceOption {
	return func(s *syncService) {
		s.metrics = m
	}
}

// WithSyncClock overrides the clock used for pass timestamps.
func WithSyncClock(now func() time.Time) SyncServiceOption {
	return func(s *syncService) {
		s.now = now
	}
}

// NewSyncService creates the synchronization orchestrator.
func NewSyncService(currencyRepo portsrepo.CurrencyReader, rateRepo portsrepo.RateLogWriter, source ports.RateSource, options ...SyncServiceOption) portssvc.SyncSvc {
	svc := &syncService{
		currencyRepo: currencyRepo,
		rateRepo:     rateRepo,
		source:       source,
		now:          time.Now,
	}
	for _, option := range options {
		option(svc)
	}
	return svc
}

var _ portssvc.SyncSvc = (*syncService)(nil)

// RunPass waits for any running pass, then runs a new one.
func (s *syncService) RunPass(ctx context.Context) (*domain.SyncPassResult, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.runPass(ctx)
}

// TryRunPass runs a pass unless one is already in progress.
func (s *syncService) TryRunPass(ctx context.Context) (*domain.SyncPassResult, error) {
	if !s.mu.TryLock() {
		return nil, apperrors.ErrSyncInProgress
	}
	defer s.mu.Unlock()
	return s.runPass(ctx)
}

func (s *syncService) runPass(ctx context.Context) (_ *domain.SyncPassResult, err error) {
	// Every observation of the pass shares this timestamp.
	startedAt := s.now().UTC()
	result := &domain.SyncPassResult{StartedAt: startedAt}
	defer func() {
		result.Duration = s.now().Sub(startedAt)
		failed := result.TotalPairs - result.SuccessCount
		s.metrics.ObservePass(err == nil, startedAt, result.Duration, result.SuccessCount, failed)
	}()

	currencies, err := s.currencyRepo.ListCurrencies(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list currencies: %w", err)
	}

	s.LogInfo(ctx, "Sync pass started", slog.Int("currencies", len(currencies)))

	batch := s.rateRepo.NewBatch()
	for _, base := range currencies {
		rates, fetchErr := s.source.FetchRates(ctx, base.Code)
		if fetchErr != nil {
			if ctxErr := ctx.Err(); ctxErr != nil {
				return nil, fmt.Errorf("sync pass cancelled: %w", ctxErr)
			}
			s.LogError(ctx, fetchErr, "Fetching rates failed", slog.String("base", base.Code))
			result.TotalPairs += len(currencies) - 1
			result.Errors = append(result.Errors, fmt.Sprintf("failed to fetch rates for %s: %v", base.Code, fetchErr))
			continue
		}

		for _, target := range currencies {
			if target.ID == base.ID {
				continue
			}
			result.TotalPairs++

			rate, ok := rates[target.Code]
			if !ok {
				result.Errors = append(result.Errors, fmt.Sprintf("no rate for %s->%s", base.Code, target.Code))
				continue
			}
			rate = utils.RoundRate(rate)
			if !rate.IsPositive() {
				result.Errors = append(result.Errors, fmt.Sprintf("invalid rate %s for %s->%s", rate.String(), base.Code, target.Code))
				continue
			}

			batch.Append(domain.RateObservation{
				BaseCurrencyID:   base.ID,
				TargetCurrencyID: target.ID,
				Rate:             rate,
				RetrievedAt:      startedAt,
			})
			result.SuccessCount++
		}
	}

	if err = batch.Commit(ctx); err != nil {
		s.LogError(ctx, err, "Committing sync pass failed", slog.Int("staged", batch.Len()))
		return nil, fmt.Errorf("failed to commit sync pass: %w", err)
	}

	s.LogInfo(ctx, "Sync pass completed",
		slog.Int("success_count", result.SuccessCount),
		slog.Int("total_pairs", result.TotalPairs),
		slog.Int("errors", len(result.Errors)),
		slog.Duration("duration", s.now().Sub(startedAt)),
	)
	return result, nil
}
