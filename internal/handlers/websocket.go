package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/shine-lab/orchestration-core/internal/eventbus"
	"github.com/shine-lab/orchestration-core/internal/logging"
)

// EventBusHandler upgrades the per-session WebSocket connection that
// carries every inbound/outbound event of §4.7.
type EventBusHandler struct {
	hub *eventbus.Hub
}

// NewEventBusHandler builds an EventBusHandler.
func NewEventBusHandler(hub *eventbus.Hub) *EventBusHandler {
	return &EventBusHandler{hub: hub}
}

// RegisterRoutes registers the event-bus upgrade endpoint.
func (h *EventBusHandler) RegisterRoutes(router gin.IRouter) {
	router.GET("/events", h.Connect)
}

// Connect handles GET /events?session_id=… and blocks for the connection's
// lifetime, same shape as the teacher's websocket upgrade handler.
func (h *EventBusHandler) Connect(c *gin.Context) {
	sessionID := c.Query("session_id")
	if sessionID == "" {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "missing-fields", Message: "session_id is required"})
		return
	}
	if err := h.hub.Serve(c.Writer, c.Request, sessionID); err != nil {
		logging.EventBus().Warn().Err(err).Str("session_id", sessionID).Msg("websocket upgrade failed")
	}
}
