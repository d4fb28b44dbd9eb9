package ratesource

import (
	"encoding/json"
	"fmt"

	"github.com/shopspring/decimal"
)

// exchangeRateHostParser reads {"base":"USD","rates":{"TWD":30.1,...}}.
type exchangeRateHostParser struct{}

// Failures are reported with HTTP 200 as {"success":false,"error":{...}}.
type exchangeRateHostResponse struct {
	Success *bool                      `json:"success"`
	Error   json.RawMessage            `json:"error"`
	Base    string                     `json:"base"`
	Rates   map[string]json.RawMessage `json:"rates"`
}

func (exchangeRateHostParser) Provider() Provider { return ProviderExchangeRateHost }

func (exchangeRateHostParser) DefaultBaseURL() string { return "https://api.exchangerate.host" }

func (exchangeRateHostParser) RequestPath(string) string { return "/latest" }

func (exchangeRateHostParser) QueryParams(baseCode, apiKey string) map[string]string {
	params := map[string]string{"base": baseCode}
	if apiKey != "" {
		params["access_key"] = apiKey
	}
	return params
}

func (exchangeRateHostParser) Parse(_ string, body []byte) (map[string]decimal.Decimal, error) {
	var resp exchangeRateHostResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, fmt.Errorf("%w: %v", errMalformedPayload, err)
	}
	if resp.Success != nil && !*resp.Success {
		return nil, fmt.Errorf("%w: provider error %s", errMalformedPayload, string(resp.Error))
	}
	if resp.Rates == nil {
		return nil, fmt.Errorf("%w: rates missing", errMalformedPayload)
	}

	rates := make(map[string]decimal.Decimal, len(resp.Rates))
	for code, value := range resp.Rates {
		var rate decimal.Decimal
		if err := json.Unmarshal(value, &rate); err != nil {
			continue
		}
		rates[code] = rate
	}
	return rates, nil
}
