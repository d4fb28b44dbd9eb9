package services

import (
	"context"
	"fmt"
	"time"

	"github.com/SscSPs/currency_conversion_app/internal/core/domain"
	"github.com/SscSPs/currency_conversion_app/internal/core/ports"
	portsrepo "github.com/SscSPs/currency_conversion_app/internal/core/ports/repositories"
	portssvc "github.com/SscSPs/currency_conversion_app/internal/core/ports/services"
)

const (
	healthCheckTimeout = 10 * time.Second
	healthProbeBase    = "USD"
)

type healthService struct {
	BaseService
	store  portsrepo.Pinger
	source ports.RateSource
}

// NewHealthService checks the store and the upstream rate provider.
func NewHealthService(store portsrepo.Pinger, source ports.RateSource) portssvc.HealthSvc {
	return &healthService{store: store, source: source}
}

var _ portssvc.HealthSvc = (*healthService)(nil)

func (s *healthService) Check(ctx context.Context) domain.HealthReport {
	ctx, cancel := context.WithTimeout(ctx, healthCheckTimeout)
	defer cancel()

	var report domain.HealthReport
	report.Add("database", s.checkStore(ctx))
	report.Add("external_api", s.checkSource(ctx))
	return report
}

func (s *healthService) checkStore(ctx context.Context) domain.ComponentHealth {
	if err := s.store.Ping(ctx); err != nil {
		s.LogError(ctx, err, "Store health check failed")
		return domain.ComponentHealth{Status: domain.HealthUnhealthy, Description: "store unreachable"}
	}
	return domain.ComponentHealth{Status: domain.HealthHealthy, Description: "store reachable"}
}

func (s *healthService) checkSource(ctx context.Context) domain.ComponentHealth {
	n, err := s.source.Probe(ctx, healthProbeBase)
	if err != nil {
		s.LogError(ctx, err, "External API health check failed")
		return domain.ComponentHealth{Status: domain.HealthUnhealthy, Description: "external API unreachable"}
	}
	if n == 0 {
		s.LogWarn(ctx, "External API responded without rates")
		return domain.ComponentHealth{Status: domain.HealthDegraded, Description: "external API returned no rates"}
	}
	return domain.ComponentHealth{Status: domain.HealthHealthy, Description: fmt.Sprintf("external API returned %d rates", n)}
}
