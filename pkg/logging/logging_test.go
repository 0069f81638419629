package logging

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func TestNew(t *testing.T) {
	logger, err := New("debug")
	require.NoError(t, err)
	assert.True(t, logger.Core().Enabled(zapcore.DebugLevel))

	logger, err = New("warn")
	require.NoError(t, err)
	assert.False(t, logger.Core().Enabled(zapcore.InfoLevel))

	_, err = New("loud")
	assert.Error(t, err)
}

func newObservedRouter() (*gin.Engine, *observer.ObservedLogs) {
	gin.SetMode(gin.TestMode)
	core, logs := observer.New(zapcore.DebugLevel)

	r := gin.New()
	r.Use(Middleware(zap.New(core)))
	r.GET("/items/:id", func(c *gin.Context) {
		c.Status(http.StatusNoContent)
	})
	r.GET("/teapot", func(c *gin.Context) {
		c.Status(http.StatusTeapot)
	})
	return r, logs
}

func TestMiddlewareLogsRequest(t *testing.T) {
	r, logs := newObservedRouter()

	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/items/3", nil))

	require.Equal(t, 1, logs.Len())
	entry := logs.All()[0]
	assert.Equal(t, zapcore.InfoLevel, entry.Level)

	fields := entry.ContextMap()
	assert.Equal(t, "GET", fields["method"])
	assert.Equal(t, "/items/3", fields["path"])
	assert.Equal(t, "/items/:id", fields["route"])
	assert.EqualValues(t, http.StatusNoContent, fields["status"])
	assert.NotEmpty(t, fields["request_id"])
	assert.Equal(t, fields["request_id"], rec.Header().Get(RequestIDHeader))
}

func TestMiddlewareKeepsIncomingRequestID(t *testing.T) {
	r, logs := newObservedRouter()

	req := httptest.NewRequest(http.MethodGet, "/teapot", nil)
	req.Header.Set(RequestIDHeader, "abc-123")
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)

	assert.Equal(t, "abc-123", rec.Header().Get(RequestIDHeader))
	require.Equal(t, 1, logs.Len())
	assert.Equal(t, zapcore.WarnLevel, logs.All()[0].Level)
	assert.Equal(t, "abc-123", logs.All()[0].ContextMap()["request_id"])
}
