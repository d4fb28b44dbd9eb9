package handlers

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	portssvc "github.com/SscSPs/currency_conversion_app/internal/core/ports/services"
	"github.com/SscSPs/currency_conversion_app/internal/dto"
	"github.com/SscSPs/currency_conversion_app/internal/middleware"
	"github.com/gin-gonic/gin"
)

// exchangeRateHandler handles HTTP requests related to exchange rates.
type exchangeRateHandler struct {
	exchangeRateService portssvc.ExchangeRateSvcFacade
	syncService         portssvc.SyncSvc
}

// newExchangeRateHandler creates a new exchangeRateHandler.
func newExchangeRateHandler(ers portssvc.ExchangeRateSvcFacade, ss portssvc.SyncSvc) *exchangeRateHandler {
	return &exchangeRateHandler{
		exchangeRateService: ers,
		syncService:         ss,
	}
}

// registerExchangeRateRoutes registers routes related to exchange rates.
func registerExchangeRateRoutes(rg *gin.RouterGroup, exchangeRateService portssvc.ExchangeRateSvcFacade, syncService portssvc.SyncSvc) {
	h := newExchangeRateHandler(exchangeRateService, syncService)

	exchangeRates := rg.Group("/exchange-rates")
	{
		exchangeRates.GET("", h.getLatestRate)
		exchangeRates.POST("/convert", h.convert)
		exchangeRates.GET("/rates", h.getRatesForBase)
		exchangeRates.GET("/status", h.getSyncStatus)
		exchangeRates.POST("/sync-now", h.syncNow)
	}
}

// getLatestRate godoc
// @Summary Get the latest exchange rate
// @Description Retrieves the most recent stored rate for an ordered currency pair. Rates are never inverted.
// @Tags exchange rates
// @Produce  json
// @Param   from query string true "From Currency Code"
// @Param   to   query string true "To Currency Code"
// @Success 200 {object} dto.LatestRateResponse
// @Failure 400 {object} map[string]string "Missing or unknown currency code"
// @Failure 401 {object} map[string]string "Unauthorized"
// @Failure 404 {object} map[string]string "No rate stored for the pair"
// @Failure 500 {object} map[string]string "Failed to retrieve exchange rate"
// @Security ApiKeyAuth
// @Security BearerAuth
// @Router /exchange-rates [get]
func (h *exchangeRateHandler) getLatestRate(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	fromCode := c.Query("from")
	toCode := c.Query("to")

	if fromCode == "" || toCode == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Query parameters 'from' and 'to' are required"})
		return
	}

	logger.Debug("Received request to get latest rate", slog.String("from_code", fromCode), slog.String("to_code", toCode))

	rate, err := h.exchangeRateService.GetLatestRate(c.Request.Context(), fromCode, toCode)
	if err != nil {
		respondError(c, err, "Failed to retrieve exchange rate")
		return
	}

	c.JSON(http.StatusOK, dto.ToLatestRateResponse(rate))
}

// convert godoc
// @Summary Convert an amount
// @Description Multiplies the amount by the latest stored rate for the pair
// @Tags exchange rates
// @Accept  json
// @Produce  json
// @Param   conversion body dto.ConvertRequest true "Conversion details"
// @Success 200 {object} dto.ConversionResponse
// @Failure 400 {object} map[string]string "Invalid input or unknown currency code"
// @Failure 401 {object} map[string]string "Unauthorized"
// @Failure 404 {object} map[string]string "No rate stored for the pair"
// @Failure 500 {object} map[string]string "Failed to convert amount"
// @Security ApiKeyAuth
// @Security BearerAuth
// @Router /exchange-rates/convert [post]
func (h *exchangeRateHandler) convert(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	var req dto.ConvertRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		logger.Warn("Failed to bind JSON for Convert", slog.String("error", err.Error()))
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request format: " + err.Error()})
		return
	}

	conversion, err := h.exchangeRateService.Convert(c.Request.Context(), req.From, req.To, *req.Amount)
	if err != nil {
		respondError(c, err, "Failed to convert amount")
		return
	}

	c.JSON(http.StatusOK, dto.ToConversionResponse(conversion))
}

// getRatesForBase godoc
// @Summary Get all latest rates for a base currency
// @Description Retrieves the most recent rate per target currency. An empty map means nothing is stored yet.
// @Tags exchange rates
// @Produce  json
// @Param   baseCurrency query string true "Base Currency Code"
// @Success 200 {object} dto.BaseRatesResponse
// @Failure 400 {object} map[string]string "Missing or unknown currency code"
// @Failure 401 {object} map[string]string "Unauthorized"
// @Failure 500 {object} map[string]string "Failed to retrieve exchange rates"
// @Security ApiKeyAuth
// @Security BearerAuth
// @Router /exchange-rates/rates [get]
func (h *exchangeRateHandler) getRatesForBase(c *gin.Context) {
	baseCode := c.Query("baseCurrency")
	if baseCode == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Query parameter 'baseCurrency' is required"})
		return
	}

	rates, err := h.exchangeRateService.GetRatesForBase(c.Request.Context(), baseCode)
	if err != nil {
		respondError(c, err, "Failed to retrieve exchange rates")
		return
	}

	c.JSON(http.StatusOK, dto.ToBaseRatesResponse(rates, time.Now()))
}

// getSyncStatus godoc
// @Summary Get synchronization status
// @Description Reports how many observations are stored, how fresh they are and how complete the pair matrix is
// @Tags exchange rates
// @Produce  json
// @Success 200 {object} dto.SyncStatusResponse
// @Failure 401 {object} map[string]string "Unauthorized"
// @Failure 500 {object} map[string]string "Failed to retrieve sync status"
// @Security ApiKeyAuth
// @Security BearerAuth
// @Router /exchange-rates/status [get]
func (h *exchangeRateHandler) getSyncStatus(c *gin.Context) {
	status, err := h.exchangeRateService.GetSyncStatus(c.Request.Context())
	if err != nil {
		respondError(c, err, "Failed to retrieve sync status")
		return
	}

	c.JSON(http.StatusOK, dto.ToSyncStatusResponse(status))
}

// syncNow godoc
// @Summary Run a synchronization pass now
// @Description Fetches rates for every supported base currency and stores them. Fails with 409 while another pass is running. The pass completes even if the caller disconnects.
// @Tags exchange rates
// @Produce  json
// @Success 200 {object} dto.SyncNowResponse
// @Failure 401 {object} map[string]string "Unauthorized"
// @Failure 409 {object} map[string]string "Synchronization already running"
// @Failure 500 {object} map[string]string "Synchronization failed"
// @Security ApiKeyAuth
// @Security BearerAuth
// @Router /exchange-rates/sync-now [post]
func (h *exchangeRateHandler) syncNow(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	requestedBy, _ := middleware.GetSubjectFromCtx(c.Request.Context())
	logger.Info("Manual synchronization requested", slog.String("requested_by", requestedBy))

	// The pass outlives a caller that disconnects so fetched rates are still committed.
	result, err := h.syncService.TryRunPass(context.WithoutCancel(c.Request.Context()))
	if err != nil {
		respondError(c, err, "Synchronization failed")
		return
	}

	logger.Info("Manual synchronization completed",
		slog.Int("success_count", result.SuccessCount),
		slog.Int("total_pairs", result.TotalPairs),
		slog.Duration("duration", result.Duration),
	)
	c.JSON(http.StatusOK, dto.ToSyncNowResponse(result))
}
