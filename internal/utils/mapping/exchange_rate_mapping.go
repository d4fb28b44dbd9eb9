package mapping

import (
	"github.com/SscSPs/currency_conversion_app/internal/core/domain"
	"github.com/SscSPs/currency_conversion_app/internal/models"
	"github.com/SscSPs/currency_conversion_app/internal/utils"
)

// ToModelExchangeRateLog converts a domain RateObservation to its persisted form.
// The rate is rounded to the stored precision.
func ToModelExchangeRateLog(d domain.RateObservation) models.ExchangeRateLog {
	return models.ExchangeRateLog{
		ID:               d.ID,
		BaseCurrencyID:   d.BaseCurrencyID,
		TargetCurrencyID: d.TargetCurrencyID,
		Rate:             utils.RoundRate(d.Rate),
		RetrievedAt:      d.RetrievedAt.UTC(),
	}
}

// ToDomainRateObservation converts a persisted log row to a domain RateObservation
func ToDomainRateObservation(m models.ExchangeRateLog) domain.RateObservation {
	return domain.RateObservation{
		ID:               m.ID,
		BaseCurrencyID:   m.BaseCurrencyID,
		TargetCurrencyID: m.TargetCurrencyID,
		Rate:             m.Rate,
		RetrievedAt:      m.RetrievedAt.UTC(),
	}
}

// ToDomainRateObservationSlice converts persisted log rows to domain observations
func ToDomainRateObservationSlice(ms []models.ExchangeRateLog) []domain.RateObservation {
	ds := make([]domain.RateObservation, len(ms))
	for i, m := range ms {
		ds[i] = ToDomainRateObservation(m)
	}
	return ds
}
