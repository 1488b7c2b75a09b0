package middleware

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
)

type stubSchema struct {
	calls atomic.Int32
	err   error
}

func (s *stubSchema) Ensure(ctx context.Context) error {
	s.calls.Add(1)
	return s.err
}

func newTestRouter(mw ...gin.HandlerFunc) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(mw...)
	r.GET("/ping", func(c *gin.Context) { c.String(http.StatusOK, "pong") })
	return r
}

func TestEnsureSchema(t *testing.T) {
	ok := &stubSchema{}
	w := httptest.NewRecorder()
	newTestRouter(EnsureSchema(ok)).ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/ping", nil))
	assert.Equal(t, http.StatusOK, w.Code)
	assert.EqualValues(t, 1, ok.calls.Load())

	failing := &stubSchema{err: errors.New("connection refused")}
	w = httptest.NewRecorder()
	newTestRouter(EnsureSchema(failing)).ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/ping", nil))
	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
	assert.Contains(t, w.Body.String(), "Database unavailable")
}

func TestRequestID(t *testing.T) {
	r := newTestRouter(RequestID(), AccessLog())

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/ping", nil))
	assert.NotEmpty(t, w.Header().Get(RequestIDHeader))

	req := httptest.NewRequest(http.MethodGet, "/ping", nil)
	req.Header.Set(RequestIDHeader, "abc-123")
	w = httptest.NewRecorder()
	r.ServeHTTP(w, req)
	assert.Equal(t, "abc-123", w.Header().Get(RequestIDHeader))
}
