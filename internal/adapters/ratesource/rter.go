package ratesource

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
)

// rterParser reads the flat "capi.php" object, keyed by concatenated
// base+target codes, e.g. {"USDTWD":{"Exrate":30.1,"UTC":"..."}}.
// The payload always lists every pair, so only keys starting with the
// requested base are kept.
type rterParser struct{}

type rterQuote struct {
	Exrate *decimal.Decimal `json:"Exrate"`
}

func (rterParser) Provider() Provider { return ProviderRter }

func (rterParser) DefaultBaseURL() string { return "https://tw.rter.info" }

func (rterParser) RequestPath(string) string { return "/capi.php" }

func (rterParser) QueryParams(string, string) map[string]string { return nil }

func (rterParser) Parse(baseCode string, body []byte) (map[string]decimal.Decimal, error) {
	var raw map[string]json.RawMessage
	if err := json.Unmarshal(body, &raw); err != nil {
		return nil, fmt.Errorf("%w: %v", errMalformedPayload, err)
	}
	if raw == nil {
		return nil, fmt.Errorf("%w: null body", errMalformedPayload)
	}

	rates := make(map[string]decimal.Decimal)
	for key, value := range raw {
		if !strings.HasPrefix(key, baseCode) {
			continue
		}
		target := key[len(baseCode):]
		if target == "" {
			continue
		}

		var quote rterQuote
		if err := json.Unmarshal(value, &quote); err != nil || quote.Exrate == nil {
			continue
		}
		rates[target] = *quote.Exrate
	}
	return rates, nil
}
