package ratesource

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/SscSPs/currency_conversion_app/internal/core/ports"
	"github.com/SscSPs/currency_conversion_app/internal/middleware"
	"github.com/SscSPs/currency_conversion_app/internal/platform/telemetry"
	"github.com/go-resty/resty/v2"
	"github.com/sethvargo/go-retry"
	"github.com/shopspring/decimal"
)

const (
	defaultTimeout     = 30 * time.Second
	defaultMaxAttempts = 3
	defaultRetryDelay  = time.Second
)

// Client fetches rates from one provider, retrying failed attempts with a
// linearly growing delay (attempt n waits n*retryDelay).
type Client struct {
	http        *resty.Client
	parser      PayloadParser
	apiKey      string
	maxAttempts int
	retryDelay  time.Duration
	metrics     *telemetry.SyncMetrics
}

var _ ports.RateSource = (*Client)(nil)

// Option configures a Client.
type Option func(*Client)

// WithBaseURL overrides the provider's default endpoint.
func WithBaseURL(url string) Option {
	return func(c *Client) {
		if url != "" {
			c.http.SetBaseURL(url)
		}
	}
}

// WithAPIKey sets the key sent to providers that accept one.
func WithAPIKey(key string) Option {
	return func(c *Client) { c.apiKey = key }
}

// WithTimeout bounds every single request.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) {
		if d > 0 {
			c.http.SetTimeout(d)
		}
	}
}

// WithRetry sets the attempt budget and the base delay between attempts.
func WithRetry(maxAttempts int, retryDelay time.Duration) Option {
	return func(c *Client) {
		if maxAttempts > 0 {
			c.maxAttempts = maxAttempts
		}
		if retryDelay >= 0 {
			c.retryDelay = retryDelay
		}
	}
}

// WithMetrics records every provider request.
func WithMetrics(m *telemetry.SyncMetrics) Option {
	return func(c *Client) { c.metrics = m }
}

// NewClient creates a Client for the given parser.
func NewClient(parser PayloadParser, opts ...Option) *Client {
	c := &Client{
		http: resty.New().
			SetBaseURL(parser.DefaultBaseURL()).
			SetTimeout(defaultTimeout).
			SetHeader("Accept", "application/json"),
		parser:      parser,
		maxAttempts: defaultMaxAttempts,
		retryDelay:  defaultRetryDelay,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// FetchRates returns the rates quoted against baseCode. When every attempt
// fails it logs the last error and returns an empty map; only ctx
// cancellation is reported as an error.
func (c *Client) FetchRates(ctx context.Context, baseCode string) (map[string]decimal.Decimal, error) {
	logger := middleware.GetLoggerFromCtx(ctx).With(
		slog.String("provider", c.parser.Provider().String()),
		slog.String("base", baseCode),
	)

	var rates map[string]decimal.Decimal
	attempt := 0
	err := retry.Do(ctx, c.backoff(), func(ctx context.Context) error {
		attempt++
		fetched, err := c.fetchOnce(ctx, baseCode)
		if err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			logger.Warn("Rate fetch attempt failed",
				slog.Int("attempt", attempt),
				slog.Int("max_attempts", c.maxAttempts),
				slog.String("error", err.Error()))
			return retry.RetryableError(err)
		}
		rates = fetched
		return nil
	})

	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return nil, ctxErr
		}
		logger.Error("Rate fetch failed after all attempts",
			slog.Int("attempts", attempt),
			slog.String("error", err.Error()))
		return map[string]decimal.Decimal{}, nil
	}

	logger.Debug("Fetched rates", slog.Int("count", len(rates)), slog.Int("attempts", attempt))
	return rates, nil
}

// Probe performs a single request without retrying.
func (c *Client) Probe(ctx context.Context, baseCode string) (int, error) {
	rates, err := c.fetchOnce(ctx, baseCode)
	if err != nil {
		return 0, err
	}
	return len(rates), nil
}

func (c *Client) backoff() retry.Backoff {
	attempt := 0
	linear := retry.BackoffFunc(func() (time.Duration, bool) {
		attempt++
		return time.Duration(attempt) * c.retryDelay, false
	})
	return retry.WithMaxRetries(uint64(c.maxAttempts-1), linear)
}

func (c *Client) fetchOnce(ctx context.Context, baseCode string) (rates map[string]decimal.Decimal, err error) {
	defer func() { c.metrics.ObserveFetch(c.parser.Provider().String(), err == nil) }()

	resp, err := c.http.R().
		SetContext(ctx).
		SetQueryParams(c.parser.QueryParams(baseCode, c.apiKey)).
		Get(c.parser.RequestPath(baseCode))
	if err != nil {
		return nil, fmt.Errorf("request failed: %w", err)
	}
	if resp.IsError() {
		return nil, fmt.Errorf("unexpected status %d", resp.StatusCode())
	}
	if len(resp.Body()) == 0 {
		return nil, fmt.Errorf("empty response body")
	}

	return c.parser.Parse(baseCode, resp.Body())
}
