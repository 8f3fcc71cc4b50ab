package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/shine-lab/orchestration-core/internal/apperr"
	"github.com/shine-lab/orchestration-core/internal/models"
	"github.com/shine-lab/orchestration-core/internal/scheduler"
	"github.com/shine-lab/orchestration-core/internal/session"
	"github.com/shine-lab/orchestration-core/internal/store"
)

// SessionHandler implements the session lifecycle endpoints of §6.
type SessionHandler struct {
	manager *session.Manager
	store   *store.Store
}

// NewSessionHandler builds a SessionHandler.
func NewSessionHandler(manager *session.Manager, st *store.Store) *SessionHandler {
	return &SessionHandler{manager: manager, store: st}
}

// RegisterRoutes registers the session endpoints.
func (h *SessionHandler) RegisterRoutes(router gin.IRouter) {
	router.POST("/session", h.CreateSession)
	router.POST("/session/verify", h.VerifySession)
	router.POST("/session/complete", h.CompleteSession)
}

type createSessionRequest struct {
	SessionID  string             `json:"session_id"`
	CustomData models.CustomData  `json:"custom_data"`
	UserAgent  string             `json:"userAgent"`
	ScreenSize string             `json:"screenSize"`
}

// CreateSession handles POST /session (§6).
func (h *SessionHandler) CreateSession(c *gin.Context) {
	var req createSessionRequest
	if err := c.ShouldBindJSON(&req); err != nil || req.SessionID == "" {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "missing-fields", Message: "session_id and custom_data are required"})
		return
	}

	if err := h.manager.Create(c.Request.Context(), req.SessionID, req.CustomData, req.UserAgent, req.ScreenSize); err != nil {
		writeAppError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true, "session_id": req.SessionID})
}

type verifySessionRequest struct {
	SessionID string `json:"session_id"`
}

// VerifySession handles POST /session/verify (§6).
func (h *SessionHandler) VerifySession(c *gin.Context) {
	var req verifySessionRequest
	if err := c.ShouldBindJSON(&req); err != nil || req.SessionID == "" {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "missing-fields", Message: "session_id is required"})
		return
	}

	result, err := h.manager.Verify(c.Request.Context(), req.SessionID)
	if err != nil {
		writeAppError(c, err)
		return
	}
	if !result.Valid {
		c.JSON(http.StatusNotFound, ErrorResponse{Error: "not-found", Message: "session not found"})
		return
	}

	body := gin.H{"valid": true}
	if !result.Completed {
		if scenario, group, ok := h.currentScenarioAndGroup(c, req.SessionID); ok {
			body["currentScenario"] = scenario
			body["experimentGroup"] = group
		}
	}
	c.JSON(http.StatusOK, body)
}

// currentScenarioAndGroup resolves the response's optional enrichment
// fields: currentScenario is the session's current task id, experimentGroup
// is pulled from the participant's custom_data if present (§6's Open
// Question: the spec names these fields without defining their source;
// resolved here against the task timeline and custom_data respectively).
func (h *SessionHandler) currentScenarioAndGroup(c *gin.Context, sessionID string) (string, interface{}, bool) {
	tasks, err := h.store.GetTasks(c.Request.Context(), sessionID)
	if err != nil {
		return "", nil, false
	}
	current, ok := scheduler.CurrentTask(tasks, time.Now())
	if !ok {
		return "", nil, false
	}
	sess, err := h.store.GetSession(c.Request.Context(), sessionID)
	if err != nil {
		return current.TaskID, nil, true
	}
	group := sess.CustomData["experimentGroup"]
	return current.TaskID, group, true
}

// CompleteSession handles POST /session/complete (§6).
func (h *SessionHandler) CompleteSession(c *gin.Context) {
	var req verifySessionRequest
	if err := c.ShouldBindJSON(&req); err != nil || req.SessionID == "" {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "missing-fields", Message: "session_id is required"})
		return
	}

	if err := h.manager.Complete(c.Request.Context(), req.SessionID); err != nil {
		if appErr, ok := apperr.As(err); ok && appErr.Kind == apperr.KindNotFound {
			c.JSON(http.StatusNotFound, ErrorResponse{Error: "not-found", Message: appErr.Message})
			return
		}
		writeAppError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true})
}
