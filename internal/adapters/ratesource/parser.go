package ratesource

import (
	"errors"
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
)

// Provider identifies an upstream rate API.
type Provider int

const (
	ProviderRter Provider = iota
	ProviderExchangeRateHost
)

func (p Provider) String() string {
	switch p {
	case ProviderRter:
		return "rter"
	case ProviderExchangeRateHost:
		return "exchangeratehost"
	default:
		return fmt.Sprintf("Provider(%d)", int(p))
	}
}

// ParseProvider maps a configuration value to a Provider.
func ParseProvider(name string) (Provider, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "rter", "":
		return ProviderRter, nil
	case "exchangeratehost", "exchangerate.host":
		return ProviderExchangeRateHost, nil
	default:
		return 0, fmt.Errorf("unknown rate provider %q", name)
	}
}

// errMalformedPayload marks a response body that could not be decoded.
var errMalformedPayload = errors.New("malformed rate payload")

// PayloadParser knows the request shape and response format of one provider.
type PayloadParser interface {
	Provider() Provider
	DefaultBaseURL() string
	RequestPath(baseCode string) string
	QueryParams(baseCode, apiKey string) map[string]string
	// Parse decodes a response body into rates keyed by target code.
	// Entries that cannot be read are skipped.
	Parse(baseCode string, body []byte) (map[string]decimal.Decimal, error)
}

// NewParser returns the parser for provider.
func NewParser(provider Provider) (PayloadParser, error) {
	switch provider {
	case ProviderRter:
		return rterParser{}, nil
	case ProviderExchangeRateHost:
		return exchangeRateHostParser{}, nil
	default:
		return nil, fmt.Errorf("no parser for %s", provider)
	}
}
