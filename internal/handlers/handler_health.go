package handlers

import (
	"net/http"

	"github.com/SscSPs/currency_conversion_app/internal/core/domain"
	portssvc "github.com/SscSPs/currency_conversion_app/internal/core/ports/services"
	"github.com/gin-gonic/gin"
)

// healthHandler reports dependency health.
type healthHandler struct {
	healthService portssvc.HealthSvc
}

func registerHealthRoutes(r gin.IRouter, healthService portssvc.HealthSvc) {
	h := &healthHandler{healthService: healthService}
	r.GET("/health", h.getHealth)
}

// getHealth godoc
// @Summary Health check
// @Description Checks the rate store and the upstream rate provider. Degraded is still served with 200.
// @Tags health
// @Produce  json
// @Success 200 {object} domain.HealthReport
// @Failure 503 {object} domain.HealthReport
// @Router /health [get]
func (h *healthHandler) getHealth(c *gin.Context) {
	report := h.healthService.Check(c.Request.Context())

	status := http.StatusOK
	if report.Status == domain.HealthUnhealthy {
		status = http.StatusServiceUnavailable
	}
	c.JSON(status, report)
}
