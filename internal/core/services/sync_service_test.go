package services_test

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/SscSPs/currency_conversion_app/internal/apperrors"
	"github.com/SscSPs/currency_conversion_app/internal/core/domain"
	portssvc "github.com/SscSPs/currency_conversion_app/internal/core/ports/services"
	"github.com/SscSPs/currency_conversion_app/internal/core/services"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/suite"
)

type SyncServiceTestSuite struct {
	suite.Suite
	mockCurrencyRepo *MockCurrencyRepository
	mockRateRepo     *MockRateLogRepository
	mockSource       *MockRateSource
	batch            *fakeBatch
	service          portssvc.SyncSvc
	ctx              context.Context
	passTime         time.Time
	currencies       []domain.Currency
}

func (suite *SyncServiceTestSuite) SetupTest() {
	suite.mockCurrencyRepo = new(MockCurrencyRepository)
	suite.mockRateRepo = new(MockRateLogRepository)
	suite.mockSource = new(MockRateSource)
	suite.batch = &fakeBatch{}
	suite.ctx = context.Background()
	suite.passTime = time.Date(2024, 6, 1, 2, 0, 0, 0, time.UTC)

	suite.currencies = []domain.Currency{
		{ID: 1, Code: "USD"},
		{ID: 2, Code: "TWD"},
		{ID: 3, Code: "EUR"},
	}
	suite.mockRateRepo.On("NewBatch").Return(suite.batch)
	suite.service = services.NewSyncService(suite.mockCurrencyRepo, suite.mockRateRepo, suite.mockSource,
		services.WithSyncClock(func() time.Time { return suite.passTime }))
}

// allRates returns a full mapping for base excluding base itself.
func (suite *SyncServiceTestSuite) allRates(base string) map[string]decimal.Decimal {
	rates := map[string]decimal.Decimal{}
	for _, c := range suite.currencies {
		if c.Code != base {
			rates[c.Code] = decimal.RequireFromString("1.2345678")
		}
	}
	return rates
}

func (suite *SyncServiceTestSuite) TestRunPass_AllPairsSucceed() {
	suite.mockCurrencyRepo.On("ListCurrencies", mock.Anything).Return(suite.currencies, nil).Once()
	for _, c := range suite.currencies {
		suite.mockSource.On("FetchRates", mock.Anything, c.Code).Return(suite.allRates(c.Code), nil).Once()
	}

	result, err := suite.service.RunPass(suite.ctx)

	suite.Require().NoError(err)
	suite.Equal(6, result.SuccessCount)
	suite.Equal(6, result.TotalPairs)
	suite.Empty(result.Errors)
	suite.Equal(100.0, result.SuccessRate())
	suite.Equal(1, suite.batch.commits)
	suite.Require().Len(suite.batch.committed, 6)
	for _, obs := range suite.batch.committed {
		suite.NotEqual(obs.BaseCurrencyID, obs.TargetCurrencyID)
		suite.Equal(suite.passTime, obs.RetrievedAt)
		suite.Equal("1.234568", obs.Rate.String())
	}
}

func (suite *SyncServiceTestSuite) TestRunPass_EmptyBaseRecordsErrorsAndContinues() {
	suite.mockCurrencyRepo.On("ListCurrencies", mock.Anything).Return(suite.currencies, nil).Once()
	suite.mockSource.On("FetchRates", mock.Anything, "USD").Return(suite.allRates("USD"), nil).Once()
	suite.mockSource.On("FetchRates", mock.Anything, "TWD").Return(map[string]decimal.Decimal{}, nil).Once()
	suite.mockSource.On("FetchRates", mock.Anything, "EUR").Return(suite.allRates("EUR"), nil).Once()

	result, err := suite.service.RunPass(suite.ctx)

	suite.Require().NoError(err)
	suite.Equal(4, result.SuccessCount)
	suite.Equal(6, result.TotalPairs)
	suite.Len(result.Errors, 2)
	suite.Contains(result.Errors, "no rate for TWD->USD")
	suite.Contains(result.Errors, "no rate for TWD->EUR")
	suite.Len(suite.batch.committed, 4)
	suite.mockSource.AssertExpectations(suite.T())
}

func (suite *SyncServiceTestSuite) TestRunPass_BaseFetchErrorDoesNotAbort() {
	suite.mockCurrencyRepo.On("ListCurrencies", mock.Anything).Return(suite.currencies, nil).Once()
	suite.mockSource.On("FetchRates", mock.Anything, "USD").Return(nil, errors.New("connection reset")).Once()
	suite.mockSource.On("FetchRates", mock.Anything, "TWD").Return(suite.allRates("TWD"), nil).Once()
	suite.mockSource.On("FetchRates", mock.Anything, "EUR").Return(suite.allRates("EUR"), nil).Once()

	result, err := suite.service.RunPass(suite.ctx)

	suite.Require().NoError(err)
	suite.Equal(4, result.SuccessCount)
	suite.Equal(6, result.TotalPairs)
	suite.Len(result.Errors, 1)
}

func (suite *SyncServiceTestSuite) TestRunPass_NonPositiveRateIsRejected() {
	suite.currencies = suite.currencies[:2]
	suite.mockCurrencyRepo.On("ListCurrencies", mock.Anything).Return(suite.currencies, nil).Once()
	suite.mockSource.On("FetchRates", mock.Anything, "USD").Return(map[string]decimal.Decimal{"TWD": decimal.Zero}, nil).Once()
	suite.mockSource.On("FetchRates", mock.Anything, "TWD").Return(map[string]decimal.Decimal{"USD": decimal.RequireFromString("0.031")}, nil).Once()

	result, err := suite.service.RunPass(suite.ctx)

	suite.Require().NoError(err)
	suite.Equal(1, result.SuccessCount)
	suite.Equal(2, result.TotalPairs)
	suite.Len(result.Errors, 1)
}

func (suite *SyncServiceTestSuite) TestRunPass_CommitFailureIsFatal() {
	suite.batch.commitErr = errors.New("disk full")
	suite.mockCurrencyRepo.On("ListCurrencies", mock.Anything).Return(suite.currencies, nil).Once()
	for _, c := range suite.currencies {
		suite.mockSource.On("FetchRates", mock.Anything, c.Code).Return(suite.allRates(c.Code), nil).Once()
	}

	result, err := suite.service.RunPass(suite.ctx)

	suite.Nil(result)
	suite.Require().Error(err)
	suite.Contains(err.Error(), "disk full")
	suite.Empty(suite.batch.committed)
}

func (suite *SyncServiceTestSuite) TestRunPass_ListCurrenciesFailure() {
	suite.mockCurrencyRepo.On("ListCurrencies", mock.Anything).Return(nil, errors.New("db down")).Once()

	result, err := suite.service.RunPass(suite.ctx)

	suite.Nil(result)
	suite.Error(err)
	suite.mockSource.AssertNotCalled(suite.T(), "FetchRates", mock.Anything, mock.Anything)
}

func (suite *SyncServiceTestSuite) TestTryRunPass_RejectsConcurrentPass() {
	started := make(chan struct{})
	release := make(chan struct{})
	var once sync.Once

	suite.mockCurrencyRepo.On("ListCurrencies", mock.Anything).Return(suite.currencies[:1], nil)
	suite.mockSource.On("FetchRates", mock.Anything, "USD").
		Run(func(mock.Arguments) {
			once.Do(func() { close(started) })
			<-release
		}).
		Return(map[string]decimal.Decimal{}, nil)

	done := make(chan error, 1)
	go func() {
		_, err := suite.service.RunPass(suite.ctx)
		done <- err
	}()

	<-started
	_, err := suite.service.TryRunPass(suite.ctx)
	suite.ErrorIs(err, apperrors.ErrSyncInProgress)

	close(release)
	suite.NoError(<-done)

	// With the first pass finished the guard is free again.
	result, err := suite.service.TryRunPass(suite.ctx)
	suite.Require().NoError(err)
	suite.Zero(result.TotalPairs)
}

func TestSyncServiceTestSuite(t *testing.T) {
	suite.Run(t, new(SyncServiceTestSuite))
}
