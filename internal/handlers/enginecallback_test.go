package handlers

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"

	"github.com/shine-lab/orchestration-core/internal/config"
	"github.com/shine-lab/orchestration-core/internal/eventlog"
	"github.com/shine-lab/orchestration-core/internal/explainengine"
)

// restStubEngine stands in for the REST-transport engine: it never accepts
// an inbound callback connection.
type restStubEngine struct{}

func (restStubEngine) Kind() string { return "rest" }
func (restStubEngine) NotifyLog(ctx context.Context, meta eventlog.Metadata) (*explainengine.Result, error) {
	return nil, nil
}
func (restStubEngine) FromRuleKey(key string) (explainengine.Result, bool) {
	return explainengine.Result{}, false
}
func (restStubEngine) RequestExplanation(ctx context.Context, sessionID string, userMessage *string) (explainengine.Result, bool, error) {
	return explainengine.Result{}, false, nil
}

// wsStubEngine stands in for the websocket-transport engine: it accepts an
// inbound callback connection.
type wsStubEngine struct {
	restStubEngine
	conn *websocket.Conn
}

func (e *wsStubEngine) Kind() string { return "websocket" }
func (e *wsStubEngine) SetConn(conn *websocket.Conn) { e.conn = conn }
func (e *wsStubEngine) HandleInbound(raw []byte) error { return nil }

func TestEngineCallbackRegisterRoutes_NoOpsForNonWebSocketEngine(t *testing.T) {
	gin.SetMode(gin.TestMode)

	h := NewEngineCallbackHandler(restStubEngine{}, &config.Explanation{})

	router := gin.New()
	h.RegisterRoutes(router)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/engine/callback", nil)
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestEngineCallbackRegisterRoutes_RegistersForWebSocketEngine(t *testing.T) {
	gin.SetMode(gin.TestMode)

	h := NewEngineCallbackHandler(&wsStubEngine{}, &config.Explanation{CallbackAPIKeyHash: "anything"})

	router := gin.New()
	h.RegisterRoutes(router)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/engine/callback", nil)
	router.ServeHTTP(w, req)

	// Reaches Connect (not a blanket 404 from an unregistered route); it
	// then rejects for lacking a valid key.
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestEngineCallbackConnect_RejectsWithoutConfiguredHash(t *testing.T) {
	gin.SetMode(gin.TestMode)

	h := NewEngineCallbackHandler(&wsStubEngine{}, &config.Explanation{})

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest(http.MethodGet, "/engine/callback?key=whatever", nil)

	h.Connect(c)

	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestEngineCallbackConnect_RejectsWrongKey(t *testing.T) {
	gin.SetMode(gin.TestMode)

	auth := explainengine.NewCallbackAuthenticator()
	hash, err := auth.HashAPIKey("correct-key")
	assert.NoError(t, err)

	h := NewEngineCallbackHandler(&wsStubEngine{}, &config.Explanation{CallbackAPIKeyHash: hash})

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest(http.MethodGet, "/engine/callback?key=wrong-key", nil)

	h.Connect(c)

	assert.Equal(t, http.StatusUnauthorized, w.Code)
}
