package middleware

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
)

// Supported values for the AUTH_SCHEME setting.
const (
	AuthSchemeAPIKey = "ApiKey"
	AuthSchemeJWT    = "Jwt"
	AuthSchemeNone   = "None"
)

// NewAuthMiddleware returns the authentication middleware for the configured scheme.
// An unrecognised scheme falls back to API key authentication.
func NewAuthMiddleware(scheme, apiKey, jwtSecret string) gin.HandlerFunc {
	switch scheme {
	case AuthSchemeJWT:
		return AuthMiddleware(jwtSecret)
	case AuthSchemeNone:
		return func(c *gin.Context) { c.Next() }
	default:
		return APIKeyAuth(apiKey)
	}
}

// AuthMiddleware creates a Gin middleware handler that validates HS256 JWT bearer tokens.
func AuthMiddleware(jwtSecret string) gin.HandlerFunc {
	return func(c *gin.Context) {
		logger := GetLoggerFromCtx(c.Request.Context())

		authHeader := c.GetHeader("Authorization")
		if authHeader == "" {
			logger.Warn("Authorization header missing")
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Authorization header required"})
			return
		}

		parts := strings.Split(authHeader, " ")
		if len(parts) != 2 || strings.ToLower(parts[0]) != "bearer" {
			logger.Warn("Authorization header format invalid")
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Authorization header format must be Bearer {token}"})
			return
		}

		token, err := jwt.ParseWithClaims(parts[1], &jwt.RegisteredClaims{}, func(token *jwt.Token) (interface{}, error) {
			if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
				return nil, errors.New("unexpected signing method")
			}
			return []byte(jwtSecret), nil
		}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))

		if err != nil {
			logger.Warn("Invalid token", slog.String("error", err.Error()))
			msg := "Invalid token"
			if errors.Is(err, jwt.ErrTokenExpired) {
				msg = "Token has expired"
			} else if errors.Is(err, jwt.ErrTokenNotValidYet) {
				msg = "Token not valid yet"
			}
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": msg})
			return
		}

		claims, ok := token.Claims.(*jwt.RegisteredClaims)
		if !ok || !token.Valid {
			logger.Warn("Invalid token claims or token is not valid")
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Invalid token"})
			return
		}

		subject := claims.Subject
		if subject == "" {
			subject = "anonymous"
		}
		authenticate(c, subject, "jwt")
		c.Next()
	}
}

// authenticate stores the caller in the request context and enriches the request logger.
func authenticate(c *gin.Context, subject, method string) {
	ctx := c.Request.Context()
	enriched := GetLoggerFromCtx(ctx).With(slog.String("subject", subject), slog.String("auth_method", method))
	ctx = context.WithValue(ctx, subjectCtxKey, subject)
	ctx = WithLogger(ctx, enriched)
	c.Request = c.Request.WithContext(ctx)
	c.Set("authMethod", method)
}
