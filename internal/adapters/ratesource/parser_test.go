package ratesource

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRterParser_KeepsOnlyRequestedBase(t *testing.T) {
	body := []byte(`{
		"USD":{"Exrate":1,"UTC":"2024-01-01 00:00:00"},
		"USDTWD":{"Exrate":30.123456,"UTC":"2024-01-01 00:00:00"},
		"USDJPY":{"Exrate":141.5,"UTC":"2024-01-01 00:00:00"},
		"EURUSD":{"Exrate":1.1,"UTC":"2024-01-01 00:00:00"},
		"USDXXX":{"UTC":"2024-01-01 00:00:00"},
		"USDBAD":"not an object"
	}`)

	rates, err := rterParser{}.Parse("USD", body)
	require.NoError(t, err)

	assert.Len(t, rates, 2)
	assert.Equal(t, "30.123456", rates["TWD"].String())
	assert.Equal(t, "141.5", rates["JPY"].String())
	assert.NotContains(t, rates, "")
	assert.NotContains(t, rates, "XXX")
}

func TestRterParser_MalformedBody(t *testing.T) {
	_, err := rterParser{}.Parse("USD", []byte(`[1,2,3]`))
	assert.ErrorIs(t, err, errMalformedPayload)
}

func TestRterParser_NullBody(t *testing.T) {
	_, err := rterParser{}.Parse("USD", []byte(`null`))
	assert.ErrorIs(t, err, errMalformedPayload)
}

func TestExchangeRateHostParser_ErrorPayloads(t *testing.T) {
	tests := []struct {
		name string
		body string
	}{
		{"provider error", `{"success":false,"error":{"code":101,"type":"missing_access_key"}}`},
		{"rates missing", `{"base":"USD"}`},
		{"null body", `null`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := exchangeRateHostParser{}.Parse("USD", []byte(tt.body))
			assert.ErrorIs(t, err, errMalformedPayload)
		})
	}
}

func TestExchangeRateHostParser_EmptyRatesIsNotAnError(t *testing.T) {
	rates, err := exchangeRateHostParser{}.Parse("USD", []byte(`{"success":true,"base":"USD","rates":{}}`))
	require.NoError(t, err)
	assert.Empty(t, rates)
}

func TestExchangeRateHostParser(t *testing.T) {
	body := []byte(`{"base":"EUR","rates":{"USD":1.08,"TWD":"34.5","BAD":{"x":1}}}`)

	rates, err := exchangeRateHostParser{}.Parse("EUR", body)
	require.NoError(t, err)

	assert.Len(t, rates, 2)
	assert.Equal(t, "1.08", rates["USD"].String())
	assert.Equal(t, "34.5", rates["TWD"].String())
}

func TestExchangeRateHostParser_QueryParams(t *testing.T) {
	p := exchangeRateHostParser{}
	assert.Equal(t, map[string]string{"base": "USD"}, p.QueryParams("USD", ""))
	assert.Equal(t, map[string]string{"base": "USD", "access_key": "k"}, p.QueryParams("USD", "k"))
	assert.Equal(t, "/latest", p.RequestPath("USD"))
}

func TestParseProvider(t *testing.T) {
	tests := []struct {
		in      string
		want    Provider
		wantErr bool
	}{
		{in: "rter", want: ProviderRter},
		{in: "", want: ProviderRter},
		{in: "ExchangeRateHost", want: ProviderExchangeRateHost},
		{in: "fixer", wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseProvider(tt.in)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)

			parser, err := NewParser(got)
			require.NoError(t, err)
			assert.Equal(t, got, parser.Provider())
		})
	}
}
