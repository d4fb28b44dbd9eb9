package cli

import (
	"context"
	"fmt"
	"time"

	"github.com/SscSPs/currency_conversion_app/internal/middleware"
	"github.com/go-resty/resty/v2"
	"github.com/spf13/viper"
)

const defaultTimeout = 60 * time.Second

// apiClient talks to the conversion service HTTP API.
type apiClient struct {
	http *resty.Client
}

type errorResponse struct {
	Error string `json:"error"`
}

func newAPIClient(v *viper.Viper) *apiClient {
	c := resty.New().
		SetBaseURL(v.GetString("api")).
		SetTimeout(v.GetDuration("timeout")).
		SetHeader("Accept", "application/json")

	if key := v.GetString("api-key"); key != "" {
		c.SetHeader(middleware.APIKeyHeader, key)
	}
	if token := v.GetString("token"); token != "" {
		c.SetAuthToken(token)
	}
	return &apiClient{http: c}
}

// do sends one request and decodes a 2xx body into out.
func (c *apiClient) do(ctx context.Context, method, path string, query map[string]string, body, out any) error {
	var apiErr errorResponse
	req := c.http.R().
		SetContext(ctx).
		SetQueryParams(query).
		SetResult(out).
		SetError(&apiErr)
	if body != nil {
		req.SetBody(body)
	}

	resp, err := req.Execute(method, path)
	if err != nil {
		return fmt.Errorf("request to %s failed: %w", path, err)
	}
	if resp.IsError() {
		msg := apiErr.Error
		if msg == "" {
			msg = resp.Status()
		}
		return fmt.Errorf("api error (%d): %s", resp.StatusCode(), msg)
	}
	return nil
}
