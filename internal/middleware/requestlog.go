package middleware

import (
	"bytes"
	"encoding/json"
	"io"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/shine-lab/orchestration-core/internal/logging"
)

var sensitiveFields = []string{"password", "token", "secret", "apiKey", "api_key"}

// redact masks sensitive fields before a request body reaches the log,
// recursing into nested objects.
func redact(data map[string]interface{}) map[string]interface{} {
	redacted := make(map[string]interface{}, len(data))
	for key, value := range data {
		isSensitive := false
		for _, field := range sensitiveFields {
			if key == field {
				isSensitive = true
				break
			}
		}
		switch {
		case isSensitive:
			redacted[key] = "[REDACTED]"
		case isNestedObject(value):
			redacted[key] = redact(value.(map[string]interface{}))
		default:
			redacted[key] = value
		}
	}
	return redacted
}

func isNestedObject(value interface{}) bool {
	_, ok := value.(map[string]interface{})
	return ok
}

// RequestLogger logs every API request with method, path, status, latency
// and (redacted) request body at info level (warn when the request recorded
// errors), grounded on the teacher's
// audit middleware shape but emitting structured zerolog lines instead of
// a persisted audit table — request/response traffic isn't part of a
// study session's append-only event log (§4.6).
func RequestLogger() gin.HandlerFunc {
	logger := logging.HTTP()
	return func(c *gin.Context) {
		start := time.Now()

		var body map[string]interface{}
		if c.Request.Body != nil {
			raw, _ := io.ReadAll(c.Request.Body)
			c.Request.Body = io.NopCloser(bytes.NewBuffer(raw))
			if len(raw) > 0 && len(raw) < 10240 {
				if json.Unmarshal(raw, &body) == nil {
					body = redact(body)
				}
			}
		}

		c.Next()

		event := logger.Info()
		if len(c.Errors) > 0 {
			event = logger.Warn()
		}
		event.
			Str("method", c.Request.Method).
			Str("path", c.Request.URL.Path).
			Int("status", c.Writer.Status()).
			Dur("duration", time.Since(start)).
			Str("client_ip", c.ClientIP()).
			Interface("body", body).
			Msg("request handled")
	}
}
