package services_test

import (
	"context"
	"sync"
	"time"

	"github.com/SscSPs/currency_conversion_app/internal/core/domain"
	portsrepo "github.com/SscSPs/currency_conversion_app/internal/core/ports/repositories"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/mock"
)

// --- Mock CurrencyRepository ---
type MockCurrencyRepository struct {
	mock.Mock
}

func (m *MockCurrencyRepository) FindCurrencyByCode(ctx context.Context, code string) (*domain.Currency, error) {
	args := m.Called(ctx, code)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Currency), args.Error(1)
}

func (m *MockCurrencyRepository) ListCurrencies(ctx context.Context) ([]domain.Currency, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.Currency), args.Error(1)
}

func (m *MockCurrencyRepository) CountCurrencies(ctx context.Context) (int, error) {
	args := m.Called(ctx)
	return args.Int(0), args.Error(1)
}

func (m *MockCurrencyRepository) SaveCurrencies(ctx context.Context, currencies []domain.Currency) (int, error) {
	args := m.Called(ctx, currencies)
	return args.Int(0), args.Error(1)
}

// --- Mock RateLogRepository ---
type MockRateLogRepository struct {
	mock.Mock
}

func (m *MockRateLogRepository) FindLatestRate(ctx context.Context, baseID, targetID int64) (*domain.RateObservation, error) {
	args := m.Called(ctx, baseID, targetID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.RateObservation), args.Error(1)
}

func (m *MockRateLogRepository) FindLatestRatesForBase(ctx context.Context, baseID int64) ([]domain.RateObservation, error) {
	args := m.Called(ctx, baseID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.RateObservation), args.Error(1)
}

func (m *MockRateLogRepository) HasAnyData(ctx context.Context) (bool, error) {
	args := m.Called(ctx)
	return args.Bool(0), args.Error(1)
}

func (m *MockRateLogRepository) CountObservations(ctx context.Context) (int64, error) {
	args := m.Called(ctx)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockRateLogRepository) FindMostRecentTimestamp(ctx context.Context) (*time.Time, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*time.Time), args.Error(1)
}

func (m *MockRateLogRepository) NewBatch() portsrepo.RateLogBatch {
	args := m.Called()
	return args.Get(0).(portsrepo.RateLogBatch)
}

// fakeBatch records staged observations; commitErr makes Commit fail.
type fakeBatch struct {
	mu        sync.Mutex
	staged    []domain.RateObservation
	committed []domain.RateObservation
	commits   int
	commitErr error
}

func (b *fakeBatch) Append(obs domain.RateObservation) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.staged = append(b.staged, obs)
}

func (b *fakeBatch) Len() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.staged)
}

func (b *fakeBatch) Commit(context.Context) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.commits++
	if b.commitErr != nil {
		return b.commitErr
	}
	b.committed = append(b.committed, b.staged...)
	b.staged = nil
	return nil
}

// --- Mock RateSource ---
type MockRateSource struct {
	mock.Mock
}

func (m *MockRateSource) FetchRates(ctx context.Context, baseCode string) (map[string]decimal.Decimal, error) {
	args := m.Called(ctx, baseCode)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(map[string]decimal.Decimal), args.Error(1)
}

func (m *MockRateSource) Probe(ctx context.Context, baseCode string) (int, error) {
	args := m.Called(ctx, baseCode)
	return args.Int(0), args.Error(1)
}

// --- Mock SyncSvc ---
type MockSyncService struct {
	mock.Mock
}

func (m *MockSyncService) RunPass(ctx context.Context) (*domain.SyncPassResult, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.SyncPassResult), args.Error(1)
}

func (m *MockSyncService) TryRunPass(ctx context.Context) (*domain.SyncPassResult, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.SyncPassResult), args.Error(1)
}

// --- Mock Pinger ---
type MockPinger struct {
	mock.Mock
}

func (m *MockPinger) Ping(ctx context.Context) error {
	return m.Called(ctx).Error(0)
}
