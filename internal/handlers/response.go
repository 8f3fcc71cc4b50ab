// Package handlers implements the REST and WebSocket surface of §6: session
// lifecycle endpoints, the game-data read, and the event-bus upgrade.
package handlers

import (
	"github.com/gin-gonic/gin"

	"github.com/shine-lab/orchestration-core/internal/apperr"
)

// ErrorResponse is the JSON body of every non-2xx response.
type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message,omitempty"`
}

// writeAppError maps an apperr.Error (or any other error) to its §7 status
// code and body, attaching any extra fields (e.g. Conflict's
// existingSessionId) at the top level of the response.
func writeAppError(c *gin.Context, err error) {
	status := apperr.HTTPStatus(err)
	body := gin.H{"error": err.Error()}
	if appErr, ok := apperr.As(err); ok {
		body["error"] = appErr.Message
		for k, v := range appErr.Fields {
			body[k] = v
		}
	}
	c.JSON(status, body)
}
