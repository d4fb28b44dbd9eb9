package dto

import (
	"time"

	"github.com/SscSPs/currency_conversion_app/internal/core/domain"
	"github.com/shopspring/decimal"
)

// maxReportedErrors caps the error list returned by a manual sync.
const maxReportedErrors = 10

// ConvertRequest defines the body of a conversion request.
type ConvertRequest struct {
	From   string           `json:"from" binding:"required"`
	To     string           `json:"to" binding:"required"`
	Amount *decimal.Decimal `json:"amount" binding:"required"`
}

// LatestRateResponse is the newest rate for an ordered currency pair.
type LatestRateResponse struct {
	From      string          `json:"from"`
	To        string          `json:"to"`
	Rate      decimal.Decimal `json:"rate"`
	Timestamp time.Time       `json:"timestamp"`
}

// ConversionResponse is the result of a conversion.
type ConversionResponse struct {
	From            string          `json:"from"`
	To              string          `json:"to"`
	Amount          decimal.Decimal `json:"amount"`
	ConvertedAmount decimal.Decimal `json:"convertedAmount"`
	Rate            decimal.Decimal `json:"rate"`
	Timestamp       time.Time       `json:"timestamp"`
}

// BaseRatesResponse lists the newest rate per target for one base currency.
// DataAge is in seconds.
type BaseRatesResponse struct {
	BaseCurrency string                     `json:"baseCurrency"`
	Rates        map[string]decimal.Decimal `json:"rates"`
	LastUpdate   *time.Time                 `json:"lastUpdate"`
	DataAge      *float64                   `json:"dataAge"`
}

// SyncStatusResponse describes freshness and completeness of the stored rates.
type SyncStatusResponse struct {
	TotalRecords        int64      `json:"totalRecords"`
	LastSyncTime        *time.Time `json:"lastSyncTime"`
	SupportedCurrencies int        `json:"supportedCurrencies"`
	ExpectedRecords     int64      `json:"expectedRecords"`
	DataCompleteness    float64    `json:"dataCompleteness"`
	DataAge             *float64   `json:"dataAge"` // seconds
}

// SyncDetails carries the statistics of a manual sync pass.
type SyncDetails struct {
	SyncTime     time.Time `json:"syncTime"`
	Duration     float64   `json:"duration"` // seconds
	SuccessCount int       `json:"successCount"`
	TotalPairs   int       `json:"totalPairs"`
	SuccessRate  float64   `json:"successRate"`
	Errors       []string  `json:"errors"`
}

// SyncNowResponse is returned by the manual sync trigger.
type SyncNowResponse struct {
	Success bool        `json:"success"`
	Message string      `json:"message"`
	Details SyncDetails `json:"details"`
}

// ToLatestRateResponse converts a domain.LatestRate to LatestRateResponse DTO
func ToLatestRateResponse(rate *domain.LatestRate) LatestRateResponse {
	return LatestRateResponse{
		From:      rate.From.Code,
		To:        rate.To.Code,
		Rate:      rate.Rate,
		Timestamp: rate.RetrievedAt,
	}
}

// ToConversionResponse converts a domain.Conversion to ConversionResponse DTO
func ToConversionResponse(conv *domain.Conversion) ConversionResponse {
	return ConversionResponse{
		From:            conv.From.Code,
		To:              conv.To.Code,
		Amount:          conv.Amount,
		ConvertedAmount: conv.ConvertedAmount,
		Rate:            conv.Rate,
		Timestamp:       conv.RetrievedAt,
	}
}

// ToBaseRatesResponse converts a domain.BaseRates to BaseRatesResponse DTO.
// The data age is measured against now.
func ToBaseRatesResponse(rates *domain.BaseRates, now time.Time) BaseRatesResponse {
	res := BaseRatesResponse{
		BaseCurrency: rates.Base.Code,
		Rates:        rates.Rates,
		LastUpdate:   rates.LastUpdate,
	}
	if res.Rates == nil {
		res.Rates = map[string]decimal.Decimal{}
	}
	if rates.LastUpdate != nil {
		age := now.Sub(*rates.LastUpdate).Seconds()
		res.DataAge = &age
	}
	return res
}

// ToSyncStatusResponse converts a domain.SyncStatus to SyncStatusResponse DTO
func ToSyncStatusResponse(status *domain.SyncStatus) SyncStatusResponse {
	res := SyncStatusResponse{
		TotalRecords:        status.TotalRecords,
		LastSyncTime:        status.LastSyncTime,
		SupportedCurrencies: status.SupportedCurrencies,
		ExpectedRecords:     status.ExpectedRecords,
		DataCompleteness:    status.DataCompleteness,
	}
	if status.DataAge != nil {
		age := status.DataAge.Seconds()
		res.DataAge = &age
	}
	return res
}

// ToSyncNowResponse converts a domain.SyncPassResult to SyncNowResponse DTO
func ToSyncNowResponse(result *domain.SyncPassResult) SyncNowResponse {
	errs := result.FirstErrors(maxReportedErrors)
	if errs == nil {
		errs = []string{}
	}
	return SyncNowResponse{
		Success: true,
		Message: "Exchange rate synchronization completed",
		Details: SyncDetails{
			SyncTime:     result.StartedAt,
			Duration:     result.Duration.Seconds(),
			SuccessCount: result.SuccessCount,
			TotalPairs:   result.TotalPairs,
			SuccessRate:  result.SuccessRate(),
			Errors:       errs,
		},
	}
}
