package middleware

import (
	"bytes"
	"net/http"
	"net/http/httptest"
	"testing"

	"mergington/pkg/logger"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newEngine(handlers ...gin.HandlerFunc) *gin.Engine {
	gin.SetMode(gin.TestMode)
	engine := gin.New()
	engine.Use(handlers...)
	engine.GET("/echo", func(c *gin.Context) {
		c.String(http.StatusOK, c.GetString("request_id"))
	})
	return engine
}

func TestRequestID_Generated(t *testing.T) {
	engine := newEngine(RequestID())

	rr := httptest.NewRecorder()
	engine.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/echo", nil))

	id := rr.Header().Get(RequestIDHeader)
	_, err := uuid.Parse(id)
	require.NoError(t, err)
	assert.Equal(t, id, rr.Body.String())
}

func TestRequestID_Propagated(t *testing.T) {
	engine := newEngine(RequestID())
	incoming := uuid.NewString()

	req := httptest.NewRequest(http.MethodGet, "/echo", nil)
	req.Header.Set(RequestIDHeader, incoming)
	rr := httptest.NewRecorder()
	engine.ServeHTTP(rr, req)

	assert.Equal(t, incoming, rr.Header().Get(RequestIDHeader))
}

func TestRequestID_RejectsGarbage(t *testing.T) {
	engine := newEngine(RequestID())

	req := httptest.NewRequest(http.MethodGet, "/echo", nil)
	req.Header.Set(RequestIDHeader, "not a uuid\n")
	rr := httptest.NewRecorder()
	engine.ServeHTTP(rr, req)

	assert.NotEqual(t, "not a uuid\n", rr.Header().Get(RequestIDHeader))
}

func TestRequestLogger(t *testing.T) {
	var buf bytes.Buffer
	engine := newEngine(RequestID(), RequestLogger(logger.NewWithWriter(&buf, "info")))

	rr := httptest.NewRecorder()
	engine.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/echo?x=1", nil))

	assert.Contains(t, buf.String(), "HTTP Request")
	assert.Contains(t, buf.String(), "/echo")
	assert.Contains(t, buf.String(), rr.Header().Get(RequestIDHeader))
}
