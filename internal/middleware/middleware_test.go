package middleware_test

import (
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/SscSPs/currency_conversion_app/internal/middleware"
	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newEngine(handlers ...gin.HandlerFunc) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(middleware.StructuredLoggingMiddleware(slog.New(slog.NewTextHandler(io.Discard, nil))))
	r.Use(handlers...)
	r.GET("/whoami", func(c *gin.Context) {
		subject, _ := middleware.GetSubjectFromCtx(c.Request.Context())
		c.String(http.StatusOK, subject)
	})
	return r
}

func serve(r *gin.Engine, header, value string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, "/whoami", nil)
	if header != "" {
		req.Header.Set(header, value)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func signToken(t *testing.T, secret string, method jwt.SigningMethod, claims jwt.RegisteredClaims) string {
	t.Helper()
	signed, err := jwt.NewWithClaims(method, claims).SignedString([]byte(secret))
	require.NoError(t, err)
	return signed
}

func TestAPIKeyAuth(t *testing.T) {
	r := newEngine(middleware.APIKeyAuth("s3cret"))

	tests := []struct {
		name   string
		key    string
		status int
	}{
		{"missing", "", http.StatusUnauthorized},
		{"wrong", "nope", http.StatusUnauthorized},
		{"valid", "s3cret", http.StatusOK},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			header := ""
			if tt.key != "" {
				header = middleware.APIKeyHeader
			}
			w := serve(r, header, tt.key)
			assert.Equal(t, tt.status, w.Code)
		})
	}
}

func TestAPIKeyAuthRejectsEverythingWhenUnset(t *testing.T) {
	r := newEngine(middleware.APIKeyAuth(""))
	w := serve(r, middleware.APIKeyHeader, "anything")
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestJWTAuth(t *testing.T) {
	const secret = "jwt-secret"
	r := newEngine(middleware.AuthMiddleware(secret))
	future := jwt.NewNumericDate(time.Now().Add(time.Hour))

	t.Run("valid token sets subject", func(t *testing.T) {
		token := signToken(t, secret, jwt.SigningMethodHS256, jwt.RegisteredClaims{Subject: "reporting", ExpiresAt: future})
		w := serve(r, "Authorization", "Bearer "+token)
		assert.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, "reporting", w.Body.String())
	})

	t.Run("missing subject is anonymous", func(t *testing.T) {
		token := signToken(t, secret, jwt.SigningMethodHS256, jwt.RegisteredClaims{ExpiresAt: future})
		w := serve(r, "Authorization", "Bearer "+token)
		assert.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, "anonymous", w.Body.String())
	})

	t.Run("expired", func(t *testing.T) {
		token := signToken(t, secret, jwt.SigningMethodHS256, jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(-time.Minute)),
		})
		w := serve(r, "Authorization", "Bearer "+token)
		assert.Equal(t, http.StatusUnauthorized, w.Code)
		assert.Contains(t, w.Body.String(), "expired")
	})

	t.Run("other HMAC algorithm", func(t *testing.T) {
		token := signToken(t, secret, jwt.SigningMethodHS512, jwt.RegisteredClaims{ExpiresAt: future})
		w := serve(r, "Authorization", "Bearer "+token)
		assert.Equal(t, http.StatusUnauthorized, w.Code)
	})

	t.Run("bad header format", func(t *testing.T) {
		w := serve(r, "Authorization", "Token abc")
		assert.Equal(t, http.StatusUnauthorized, w.Code)
	})
}

func TestNewAuthMiddlewareNone(t *testing.T) {
	r := newEngine(middleware.NewAuthMiddleware(middleware.AuthSchemeNone, "", ""))
	w := serve(r, "", "")
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestRateLimit(t *testing.T) {
	l, err := middleware.NewRateLimiter("2-M")
	require.NoError(t, err)
	r := newEngine(middleware.RateLimit(l), middleware.NewAuthMiddleware(middleware.AuthSchemeNone, "", ""))

	assert.Equal(t, http.StatusOK, serve(r, "", "").Code)
	w := serve(r, "", "")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "2", w.Header().Get("X-RateLimit-Limit"))
	assert.Equal(t, "0", w.Header().Get("X-RateLimit-Remaining"))
	assert.Equal(t, http.StatusTooManyRequests, serve(r, "", "").Code)
}

func TestNewRateLimiterInvalid(t *testing.T) {
	_, err := middleware.NewRateLimiter("lots")
	assert.Error(t, err)
}

func TestRequestIDPropagated(t *testing.T) {
	r := newEngine()
	w := serve(r, "X-Request-ID", "req-123")
	assert.Equal(t, "req-123", w.Header().Get("X-Request-ID"))

	w = serve(r, "", "")
	assert.NotEmpty(t, w.Header().Get("X-Request-ID"))
}
