package services

import (
	"github.com/SscSPs/currency_conversion_app/internal/core/ports"
	portsrepo "github.com/SscSPs/currency_conversion_app/internal/core/ports/repositories"
	portssvc "github.com/SscSPs/currency_conversion_app/internal/core/ports/services"
	"github.com/SscSPs/currency_conversion_app/internal/platform/config"
	"github.com/SscSPs/currency_conversion_app/internal/platform/telemetry"
)

// NewServiceContainer creates a new service container with properly initialized dependencies
func NewServiceContainer(repos portsrepo.RepositoryProvider, source ports.RateSource, metrics *telemetry.SyncMetrics) *portssvc.ServiceContainer {
	return &portssvc.ServiceContainer{
		Currency:     NewCurrencyService(repos.CurrencyRepo),
		ExchangeRate: NewExchangeRateService(repos.CurrencyRepo, repos.RateLogRepo),
		Sync:         NewSyncService(repos.CurrencyRepo, repos.RateLogRepo, source, WithSyncMetrics(metrics)),
		Health:       NewHealthService(repos.Store, source),
	}
}

// NewSchedulerFromConfig builds the daily sync loop around the container's sync service.
func NewSchedulerFromConfig(cfg *config.Config, container *portssvc.ServiceContainer, repos portsrepo.RepositoryProvider) *Scheduler {
	return NewScheduler(container.Sync, repos.RateLogRepo,
		WithDailyTime(cfg.SyncDailyTime),
		WithFallbackInterval(cfg.SyncFallbackInterval),
	)
}
