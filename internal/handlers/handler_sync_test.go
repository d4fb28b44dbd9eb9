package handlers_test

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"sync"
	"testing"

	"github.com/SscSPs/currency_conversion_app/internal/core/domain"
	portssvc "github.com/SscSPs/currency_conversion_app/internal/core/ports/services"
	"github.com/SscSPs/currency_conversion_app/internal/core/services"
	"github.com/SscSPs/currency_conversion_app/internal/handlers"
	"github.com/SscSPs/currency_conversion_app/internal/middleware"
	"github.com/SscSPs/currency_conversion_app/internal/platform/config"
	boltrepo "github.com/SscSPs/currency_conversion_app/internal/repositories/database/bolt"
	"github.com/SscSPs/currency_conversion_app/pkg/database"
	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// cancellingSource serves fixed rates and fires onFirstFetch once, after the first base.
// Like the real client it reports a cancelled context as an error.
type cancellingSource struct {
	once         sync.Once
	onFirstFetch func()
}

func (s *cancellingSource) FetchRates(ctx context.Context, base string) (map[string]decimal.Decimal, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	rates := map[string]decimal.Decimal{
		"USD": decimal.NewFromInt(1),
		"EUR": decimal.RequireFromString("0.9"),
		"TWD": decimal.NewFromInt(30),
	}
	delete(rates, base)
	s.once.Do(s.onFirstFetch)
	return rates, nil
}

func (s *cancellingSource) Probe(ctx context.Context, base string) (int, error) {
	return 2, nil
}

func TestSyncNowCommitsWhenCallerDisconnects(t *testing.T) {
	gin.SetMode(gin.TestMode)
	ctx := context.Background()

	db, err := database.NewBoltDB(filepath.Join(t.TempDir(), "rates.db"))
	require.NoError(t, err)
	t.Cleanup(func() { database.CloseBoltDB(db) })

	repos, err := boltrepo.NewRepositoryProvider(db)
	require.NoError(t, err)
	_, err = repos.CurrencyRepo.SaveCurrencies(ctx, []domain.Currency{
		{Code: "USD", Name: "US Dollar"},
		{Code: "EUR", Name: "Euro"},
		{Code: "TWD", Name: "New Taiwan Dollar"},
	})
	require.NoError(t, err)

	reqCtx, cancel := context.WithCancel(ctx)
	defer cancel()
	source := &cancellingSource{onFirstFetch: cancel}

	container := &portssvc.ServiceContainer{
		Currency:     services.NewCurrencyService(repos.CurrencyRepo),
		ExchangeRate: services.NewExchangeRateService(repos.CurrencyRepo, repos.RateLogRepo),
		Sync:         services.NewSyncService(repos.CurrencyRepo, repos.RateLogRepo, source),
		Health:       services.NewHealthService(repos.Store, source),
	}
	cfg := &config.Config{
		IsProduction: true,
		AuthScheme:   middleware.AuthSchemeNone,
		RateLimit:    "1000-M",
	}

	r := gin.New()
	r.Use(middleware.StructuredLoggingMiddleware(slog.New(slog.NewTextHandler(io.Discard, nil))))
	require.NoError(t, handlers.RegisterRoutes(r, cfg, container, nil))

	req := httptest.NewRequest(http.MethodPost, "/api/v1/exchange-rates/sync-now", nil).WithContext(reqCtx)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Error(t, reqCtx.Err())

	committed, err := repos.RateLogRepo.CountObservations(ctx)
	require.NoError(t, err)
	assert.EqualValues(t, 6, committed)
}
