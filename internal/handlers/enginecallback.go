package handlers

import (
	"io"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"

	"github.com/shine-lab/orchestration-core/internal/config"
	"github.com/shine-lab/orchestration-core/internal/explainengine"
	"github.com/shine-lab/orchestration-core/internal/logging"
)

var callbackUpgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool { return true },
}

// connSetter and inboundHandler are the subset of the websocket-transport
// explanation engine's exported surface this handler needs; the concrete
// type stays unexported to the explainengine package.
type connSetter interface {
	SetConn(conn *websocket.Conn)
}

type inboundHandler interface {
	HandleInbound(raw []byte) error
}

// EngineCallbackHandler accepts the inbound connection an external
// websocket-transport explanation engine dials in with, authenticated by a
// shared bcrypt-hashed API key rather than the reverse (§4.7).
type EngineCallbackHandler struct {
	auth   *explainengine.CallbackAuthenticator
	engine explainengine.Engine
	hash   string
}

// NewEngineCallbackHandler builds an EngineCallbackHandler. No-ops its
// route registration if the engine isn't a websocket-transport one.
func NewEngineCallbackHandler(engine explainengine.Engine, explain *config.Explanation) *EngineCallbackHandler {
	hash := ""
	if explain != nil {
		hash = explain.CallbackAPIKeyHash
	}
	return &EngineCallbackHandler{
		auth:   explainengine.NewCallbackAuthenticator(),
		engine: engine,
		hash:   hash,
	}
}

// RegisterRoutes registers the callback endpoint when the active engine
// accepts an inbound connection.
func (h *EngineCallbackHandler) RegisterRoutes(router gin.IRouter) {
	if _, ok := h.engine.(connSetter); !ok {
		return
	}
	router.GET("/engine/callback", h.Connect)
}

// Connect authenticates the caller's API key (query param "key") against
// the configured hash, then upgrades and hands the connection to the
// websocket-transport engine.
func (h *EngineCallbackHandler) Connect(c *gin.Context) {
	key := c.Query("key")
	if h.hash == "" || !h.auth.VerifyAPIKey(h.hash, key) {
		c.JSON(http.StatusUnauthorized, ErrorResponse{Error: "unauthorized"})
		return
	}

	setter, ok := h.engine.(connSetter)
	if !ok {
		c.JSON(http.StatusNotFound, ErrorResponse{Error: "not-found"})
		return
	}

	conn, err := callbackUpgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		return
	}
	setter.SetConn(conn)

	ih, _ := h.engine.(inboundHandler)
	for {
		_, raw, err := conn.ReadMessage()
		if err != nil {
			if err != io.EOF {
				logging.ExplainEngine().Warn().Err(err).Msg("engine callback connection closed")
			}
			return
		}
		if ih != nil {
			if err := ih.HandleInbound(raw); err != nil {
				logging.ExplainEngine().Warn().Err(err).Msg("engine callback frame handling failed")
			}
		}
	}
}
