package handlers

import (
	"bytes"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
)

func TestCreateSession_MissingSessionID(t *testing.T) {
	gin.SetMode(gin.TestMode)

	h := &SessionHandler{}

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest(http.MethodPost, "/session", bytes.NewReader([]byte(`{"custom_data":{}}`)))
	c.Request.Header.Set("Content-Type", "application/json")

	h.CreateSession(c)

	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestCreateSession_MalformedBody(t *testing.T) {
	gin.SetMode(gin.TestMode)

	h := &SessionHandler{}

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest(http.MethodPost, "/session", strings.NewReader("not-json"))
	c.Request.Header.Set("Content-Type", "application/json")

	h.CreateSession(c)

	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestVerifySession_MissingSessionID(t *testing.T) {
	gin.SetMode(gin.TestMode)

	h := &SessionHandler{}

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest(http.MethodPost, "/session/verify", bytes.NewReader([]byte(`{}`)))
	c.Request.Header.Set("Content-Type", "application/json")

	h.VerifySession(c)

	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestCompleteSession_MissingSessionID(t *testing.T) {
	gin.SetMode(gin.TestMode)

	h := &SessionHandler{}

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest(http.MethodPost, "/session/complete", bytes.NewReader([]byte(`{}`)))
	c.Request.Header.Set("Content-Type", "application/json")

	h.CompleteSession(c)

	assert.Equal(t, http.StatusBadRequest, w.Code)
}
