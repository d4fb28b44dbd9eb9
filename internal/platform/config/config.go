package config

import (
	"fmt"
	"log/slog"
	"regexp"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Supported STORE_DRIVER values.
const (
	StoreDriverPostgres = "postgres"
	StoreDriverBolt     = "bolt"
)

var dailyTimePattern = regexp.MustCompile(`^([01]\d|2[0-3]):[0-5]\d$`)

// Config holds application configuration.
type Config struct {
	DatabaseURL   string `validate:"required_if=StoreDriver postgres"`
	Port          string `validate:"required,numeric"`
	IsProduction  bool
	EnableDBCheck bool

	StoreDriver string `validate:"oneof=postgres bolt"`
	BoltPath    string `validate:"required_if=StoreDriver bolt"`

	SyncDailyTime        string
	SyncFallbackInterval time.Duration `validate:"gt=0"`

	ExternalAPIProvider    string        `validate:"oneof=rter exchangeratehost"`
	ExternalAPIBaseURL     string        `validate:"omitempty,url"`
	ExternalAPIKey         string
	ExternalAPITimeout     time.Duration `validate:"gt=0"`
	ExternalAPIMaxAttempts int           `validate:"min=1,max=10"`
	ExternalAPIRetryDelay  time.Duration `validate:"gte=0"`

	AuthScheme string `validate:"oneof=ApiKey Jwt None"`
	AuthAPIKey string
	JWTSecret  string `validate:"required_if=AuthScheme Jwt"`

	RateLimit          string `validate:"required"`
	CORSAllowedOrigins []string
	MetricsEnabled     bool
}

// LoadConfig loads configuration from environment variables and .env file if present.
func LoadConfig() (*Config, error) {
	// Attempt to load .env file, ignore error if it doesn't exist
	_ = godotenv.Load()

	viper.SetDefault("PGSQL_URL", "")
	viper.SetDefault("PORT", "8080")
	viper.SetDefault("IS_PRODUCTION", false)
	viper.SetDefault("ENABLE_DB_CHECK", false)
	viper.SetDefault("STORE_DRIVER", StoreDriverPostgres)
	viper.SetDefault("BOLT_PATH", "data/rates.db")
	viper.SetDefault("SYNC_DAILY_TIME", "02:00")
	viper.SetDefault("SYNC_FALLBACK_INTERVAL", "1h")
	viper.SetDefault("EXTERNAL_API_PROVIDER", "rter")
	viper.SetDefault("EXTERNAL_API_BASE_URL", "")
	viper.SetDefault("EXTERNAL_API_KEY", "")
	viper.SetDefault("EXTERNAL_API_TIMEOUT", "30s")
	viper.SetDefault("EXTERNAL_API_MAX_ATTEMPTS", 3)
	viper.SetDefault("EXTERNAL_API_RETRY_DELAY", "1s")
	viper.SetDefault("AUTH_SCHEME", "ApiKey")
	viper.SetDefault("AUTH_API_KEY", "")
	viper.SetDefault("JWT_SECRET", "")
	viper.SetDefault("RATE_LIMIT", "100-M")
	viper.SetDefault("CORS_ALLOWED_ORIGINS", "")
	viper.SetDefault("METRICS_ENABLED", true)

	viper.AutomaticEnv()

	cfg := &Config{
		DatabaseURL:            viper.GetString("PGSQL_URL"),
		Port:                   viper.GetString("PORT"),
		IsProduction:           viper.GetBool("IS_PRODUCTION"),
		EnableDBCheck:          viper.GetBool("ENABLE_DB_CHECK"),
		StoreDriver:            strings.ToLower(viper.GetString("STORE_DRIVER")),
		BoltPath:               viper.GetString("BOLT_PATH"),
		SyncDailyTime:          viper.GetString("SYNC_DAILY_TIME"),
		ExternalAPIProvider:    strings.ToLower(viper.GetString("EXTERNAL_API_PROVIDER")),
		ExternalAPIBaseURL:     viper.GetString("EXTERNAL_API_BASE_URL"),
		ExternalAPIKey:         viper.GetString("EXTERNAL_API_KEY"),
		ExternalAPIMaxAttempts: viper.GetInt("EXTERNAL_API_MAX_ATTEMPTS"),
		AuthScheme:             viper.GetString("AUTH_SCHEME"),
		AuthAPIKey:             viper.GetString("AUTH_API_KEY"),
		JWTSecret:              viper.GetString("JWT_SECRET"),
		RateLimit:              viper.GetString("RATE_LIMIT"),
		CORSAllowedOrigins:     splitList(viper.GetString("CORS_ALLOWED_ORIGINS")),
		MetricsEnabled:         viper.GetBool("METRICS_ENABLED"),
	}

	var err error
	if cfg.SyncFallbackInterval, err = parseDuration("SYNC_FALLBACK_INTERVAL"); err != nil {
		return nil, err
	}
	if cfg.ExternalAPITimeout, err = parseDuration("EXTERNAL_API_TIMEOUT"); err != nil {
		return nil, err
	}
	if cfg.ExternalAPIRetryDelay, err = parseDuration("EXTERNAL_API_RETRY_DELAY"); err != nil {
		return nil, err
	}

	if err := validator.New().Struct(cfg); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	if cfg.AuthScheme == "None" && cfg.IsProduction {
		return nil, fmt.Errorf("AUTH_SCHEME None is not allowed in production")
	}

	// An unparseable daily time is tolerated; the scheduler then waits 24h between passes.
	if !dailyTimePattern.MatchString(cfg.SyncDailyTime) {
		slog.Warn("SYNC_DAILY_TIME is not in HH:mm format, passes will run every 24h",
			slog.String("value", cfg.SyncDailyTime))
	}
	if cfg.AuthScheme == "ApiKey" && cfg.AuthAPIKey == "" {
		slog.Warn("AUTH_API_KEY not set, all /api/v1 requests will be rejected")
	}

	return cfg, nil
}

func parseDuration(key string) (time.Duration, error) {
	raw := viper.GetString(key)
	d, err := time.ParseDuration(raw)
	if err != nil {
		return 0, fmt.Errorf("invalid value for %s (%q): %w", key, raw, err)
	}
	return d, nil
}

func splitList(raw string) []string {
	var out []string
	for _, part := range strings.Split(raw, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
