// Package middleware provides HTTP middleware for the study orchestration
// core's API: request size limiting and structured request logging.
package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// Request size limits balance robustness against oversized payloads (a
// malformed device-interaction body, a huge custom_data blob at session
// creation) with normal usability.
const (
	// MaxRequestBodySize is the default maximum request body size.
	MaxRequestBodySize int64 = 10 * 1024 * 1024 // 10 MB

	// MaxJSONPayloadSize is the cap JSONSizeLimiter applies to structured API
	// bodies on routes it is mounted on.
	MaxJSONPayloadSize int64 = 2 * 1024 * 1024 // 2 MB
)

// RequestSizeLimiter rejects requests whose Content-Length exceeds maxSize
// and wraps the body in a hard LimitReader in case Content-Length lies.
func RequestSizeLimiter(maxSize int64) gin.HandlerFunc {
	return func(c *gin.Context) {
		if c.Request.Method == http.MethodGet || c.Request.Method == http.MethodHead || c.Request.Method == http.MethodOptions {
			c.Next()
			return
		}

		if c.Request.ContentLength > maxSize {
			c.AbortWithStatusJSON(http.StatusRequestEntityTooLarge, gin.H{
				"error":       "request entity too large",
				"max_size_mb": float64(maxSize) / (1024 * 1024),
			})
			return
		}

		c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, maxSize)
		c.Next()
	}
}

// JSONSizeLimiter limits JSON payload size for the REST API endpoints.
func JSONSizeLimiter() gin.HandlerFunc {
	return RequestSizeLimiter(MaxJSONPayloadSize)
}

// DefaultSizeLimiter uses the default max request body size.
func DefaultSizeLimiter() gin.HandlerFunc {
	return RequestSizeLimiter(MaxRequestBodySize)
}
