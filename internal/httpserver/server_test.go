// internal/httpserver/server_test.go
package httpserver

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
)

func serve(s *Server, path string) *httptest.ResponseRecorder {
	rec := httptest.NewRecorder()
	s.srv.Handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, path, nil))
	return rec
}

func TestRoutes(t *testing.T) {
	gin.SetMode(gin.TestMode)

	ready := false
	metrics := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte("bk1785_up 1\n"))
	})
	s := New(":0", metrics, func() bool { return ready })

	assert.Equal(t, http.StatusOK, serve(s, "/healthz").Code)
	assert.Equal(t, http.StatusServiceUnavailable, serve(s, "/readyz").Code)

	ready = true
	assert.Equal(t, http.StatusOK, serve(s, "/readyz").Code)

	rec := serve(s, "/metrics")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "bk1785_up 1\n", rec.Body.String())
}

func TestRoutes_NoMetricsHandler(t *testing.T) {
	gin.SetMode(gin.TestMode)

	s := New(":0", nil, nil)

	assert.Equal(t, http.StatusOK, serve(s, "/readyz").Code)
	assert.Equal(t, http.StatusNotFound, serve(s, "/metrics").Code)
}
