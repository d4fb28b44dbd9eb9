package middleware

import (
	"crypto/subtle"
	"net/http"

	"github.com/gin-gonic/gin"
)

// APIKeyHeader carries the shared API key.
const APIKeyHeader = "X-Api-Key"

// APIKeyAuth is a middleware that authenticates requests using a single shared API key.
func APIKeyAuth(apiKey string) gin.HandlerFunc {
	expected := []byte(apiKey)
	return func(c *gin.Context) {
		logger := GetLoggerFromCtx(c.Request.Context())

		provided := c.GetHeader(APIKeyHeader)
		if provided == "" {
			logger.Warn("API key missing")
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "API key required"})
			return
		}

		if len(expected) == 0 || subtle.ConstantTimeCompare([]byte(provided), expected) != 1 {
			logger.Warn("Invalid API key")
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Invalid API key"})
			return
		}

		authenticate(c, "api-key", "api_key")
		c.Next()
	}
}
