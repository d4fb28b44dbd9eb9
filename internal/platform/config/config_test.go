package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadConfig_Defaults(t *testing.T) {
	t.Setenv("PGSQL_URL", "postgres://localhost/fx")
	t.Setenv("AUTH_API_KEY", "k")

	cfg, err := LoadConfig()
	require.NoError(t, err)

	assert.Equal(t, "8080", cfg.Port)
	assert.Equal(t, StoreDriverPostgres, cfg.StoreDriver)
	assert.Equal(t, "02:00", cfg.SyncDailyTime)
	assert.Equal(t, time.Hour, cfg.SyncFallbackInterval)
	assert.Equal(t, "rter", cfg.ExternalAPIProvider)
	assert.Equal(t, 30*time.Second, cfg.ExternalAPITimeout)
	assert.Equal(t, 3, cfg.ExternalAPIMaxAttempts)
	assert.Equal(t, time.Second, cfg.ExternalAPIRetryDelay)
	assert.Equal(t, "ApiKey", cfg.AuthScheme)
	assert.Equal(t, "100-M", cfg.RateLimit)
	assert.True(t, cfg.MetricsEnabled)
	assert.Empty(t, cfg.CORSAllowedOrigins)
}

func TestLoadConfig_BoltDoesNotNeedDatabaseURL(t *testing.T) {
	t.Setenv("PGSQL_URL", "")
	t.Setenv("STORE_DRIVER", "bolt")
	t.Setenv("BOLT_PATH", "/tmp/rates.db")
	t.Setenv("CORS_ALLOWED_ORIGINS", "http://a.example, http://b.example")

	cfg, err := LoadConfig()
	require.NoError(t, err)
	assert.Equal(t, StoreDriverBolt, cfg.StoreDriver)
	assert.Equal(t, []string{"http://a.example", "http://b.example"}, cfg.CORSAllowedOrigins)
}

func TestLoadConfig_Invalid(t *testing.T) {
	tests := []struct {
		name string
		env  map[string]string
	}{
		{name: "postgres without url", env: map[string]string{"PGSQL_URL": ""}},
		{name: "unknown store", env: map[string]string{"STORE_DRIVER": "sqlite"}},
		{name: "unknown provider", env: map[string]string{"EXTERNAL_API_PROVIDER": "fixer"}},
		{name: "jwt without secret", env: map[string]string{"AUTH_SCHEME": "Jwt", "JWT_SECRET": ""}},
		{name: "zero attempts", env: map[string]string{"EXTERNAL_API_MAX_ATTEMPTS": "0"}},
		{name: "bad timeout", env: map[string]string{"EXTERNAL_API_TIMEOUT": "soon"}},
		{name: "no auth in production", env: map[string]string{"AUTH_SCHEME": "None", "IS_PRODUCTION": "true"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Setenv("PGSQL_URL", "postgres://localhost/fx")
			for k, v := range tt.env {
				t.Setenv(k, v)
			}
			_, err := LoadConfig()
			assert.Error(t, err)
		})
	}
}
