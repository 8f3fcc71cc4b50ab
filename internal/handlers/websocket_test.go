package handlers

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
)

func TestEventBusConnect_MissingSessionID(t *testing.T) {
	gin.SetMode(gin.TestMode)

	h := NewEventBusHandler(nil)

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest(http.MethodGet, "/events", nil)

	h.Connect(c)

	assert.Equal(t, http.StatusBadRequest, w.Code)
}
