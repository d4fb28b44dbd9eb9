package services_test

import (
	"context"
	"errors"
	"testing"

	"github.com/SscSPs/currency_conversion_app/internal/core/domain"
	"github.com/SscSPs/currency_conversion_app/internal/core/services"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
)

func TestHealthService_Check(t *testing.T) {
	tests := []struct {
		name      string
		pingErr   error
		probeN    int
		probeErr  error
		want      domain.HealthStatus
		wantStore domain.HealthStatus
		wantAPI   domain.HealthStatus
	}{
		{name: "all healthy", probeN: 40, want: domain.HealthHealthy, wantStore: domain.HealthHealthy, wantAPI: domain.HealthHealthy},
		{name: "api without rates", probeN: 0, want: domain.HealthDegraded, wantStore: domain.HealthHealthy, wantAPI: domain.HealthDegraded},
		{name: "api down", probeErr: errors.New("timeout"), want: domain.HealthUnhealthy, wantStore: domain.HealthHealthy, wantAPI: domain.HealthUnhealthy},
		{name: "store down", pingErr: errors.New("refused"), probeN: 5, want: domain.HealthUnhealthy, wantStore: domain.HealthUnhealthy, wantAPI: domain.HealthHealthy},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			pinger := new(MockPinger)
			pinger.On("Ping", mock.Anything).Return(tt.pingErr)
			source := new(MockRateSource)
			source.On("Probe", mock.Anything, "USD").Return(tt.probeN, tt.probeErr)

			report := services.NewHealthService(pinger, source).Check(context.Background())

			assert.Equal(t, tt.want, report.Status)
			assert.Equal(t, tt.wantStore, report.Components["database"].Status)
			assert.Equal(t, tt.wantAPI, report.Components["external_api"].Status)
		})
	}
}
