package cli_test

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/SscSPs/currency_conversion_app/internal/cli"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newServer(t *testing.T, handler http.HandlerFunc) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	return srv
}

func writeJSON(w http.ResponseWriter, status int, body string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_, _ = io.WriteString(w, body)
}

func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	cmd := cli.NewRootCommand()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(io.Discard)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), err
}

func TestConvertCommand(t *testing.T) {
	srv := newServer(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/api/v1/exchange-rates/convert", r.URL.Path)
		assert.Equal(t, "secret", r.Header.Get("X-Api-Key"))

		var body map[string]any
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.Equal(t, "USD", body["from"])
		assert.Equal(t, "TWD", body["to"])

		writeJSON(w, http.StatusOK, `{"from":"USD","to":"TWD","amount":"100","convertedAmount":"3000","rate":"30","timestamp":"2024-05-01T02:00:00Z"}`)
	})

	out, err := execute(t, "convert", "--api", srv.URL, "--api-key", "secret", "--from", "USD", "--to", "TWD", "--amount", "100")

	require.NoError(t, err)
	assert.Equal(t, "100 USD = 3000 TWD (rate 30)\n", out)
}

func TestConvertCommandInvalidAmount(t *testing.T) {
	_, err := execute(t, "convert", "--api", "http://127.0.0.1:1", "--from", "USD", "--to", "TWD", "--amount", "ten")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid amount")
}

func TestConvertCommandAPIError(t *testing.T) {
	srv := newServer(t, func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusBadRequest, `{"error":"unknown currency: XXX"}`)
	})

	_, err := execute(t, "convert", "--api", srv.URL, "--from", "XXX", "--to", "TWD", "--amount", "1")

	require.Error(t, err)
	assert.Contains(t, err.Error(), "api error (400): unknown currency: XXX")
}

func TestRatesCommandSortsTargets(t *testing.T) {
	srv := newServer(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/v1/exchange-rates/rates", r.URL.Path)
		assert.Equal(t, "EUR", r.URL.Query().Get("baseCurrency"))
		writeJSON(w, http.StatusOK, `{"baseCurrency":"EUR","rates":{"USD":"1.08","JPY":"162.5"},"lastUpdate":"2024-05-01T02:00:00Z","dataAge":60}`)
	})

	out, err := execute(t, "rates", "--api", srv.URL, "--base", "EUR")

	require.NoError(t, err)
	assert.Equal(t, "Rates for EUR (last update 2024-05-01T02:00:00Z)\nJPY\t162.5\nUSD\t1.08\n", out)
}

func TestRatesCommandEmpty(t *testing.T) {
	srv := newServer(t, func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, `{"baseCurrency":"USD","rates":{},"lastUpdate":null,"dataAge":null}`)
	})

	out, err := execute(t, "rates", "--api", srv.URL)

	require.NoError(t, err)
	assert.Equal(t, "No rates stored for USD\n", out)
}

func TestStatusCommand(t *testing.T) {
	srv := newServer(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "Bearer tok", r.Header.Get("Authorization"))
		writeJSON(w, http.StatusOK, `{"totalRecords":66,"lastSyncTime":"2024-05-01T02:00:00Z","supportedCurrencies":12,"expectedRecords":132,"dataCompleteness":50,"dataAge":5400}`)
	})

	out, err := execute(t, "status", "--api", srv.URL, "--token", "tok")

	require.NoError(t, err)
	assert.Contains(t, out, "Currencies:    12\n")
	assert.Contains(t, out, "Records:       66 / 132 (50.0%)\n")
	assert.Contains(t, out, "Data age:      1h30m0s\n")
}

func TestSyncCommand(t *testing.T) {
	srv := newServer(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		writeJSON(w, http.StatusOK, `{"success":true,"message":"Exchange rate synchronization completed","details":{"syncTime":"2024-05-01T02:00:00Z","duration":2.5,"successCount":131,"totalPairs":132,"successRate":99.24,"errors":["no rate for USD->KRW"]}}`)
	})

	out, err := execute(t, "sync", "--api", srv.URL)

	require.NoError(t, err)
	assert.Equal(t, "Exchange rate synchronization completed: 131/132 pairs stored (99.2%) in 2.5s\n  - no rate for USD->KRW\n", out)
}

func TestSyncCommandConflict(t *testing.T) {
	srv := newServer(t, func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusConflict, `{"error":"sync already in progress"}`)
	})

	_, err := execute(t, "sync", "--api", srv.URL)

	require.Error(t, err)
	assert.Contains(t, err.Error(), "409")
}
