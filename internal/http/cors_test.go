package http

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
)

func TestNewCORSMiddleware(t *testing.T) {
	assert.Nil(t, newCORSMiddleware(false, []string{"https://app.example.com"}, discardLogger()))
	assert.Nil(t, newCORSMiddleware(true, nil, discardLogger()))
	assert.NotNil(t, newCORSMiddleware(true, []string{"https://app.example.com"}, discardLogger()))
}

func TestCORSIntegration(t *testing.T) {
	newRouter := func(enabled bool, origins ...string) *gin.Engine {
		router := gin.New()
		if middleware := newCORSMiddleware(enabled, origins, discardLogger()); middleware != nil {
			router.Use(middleware)
		}
		router.PUT("/v1/values/*key", func(c *gin.Context) {
			c.Status(http.StatusCreated)
		})
		return router
	}

	preflight := func(router *gin.Engine, origin string) *httptest.ResponseRecorder {
		w := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodOptions, "/v1/values/users/alice", nil)
		req.Header.Set("Origin", origin)
		req.Header.Set("Access-Control-Request-Method", http.MethodPut)
		router.ServeHTTP(w, req)
		return w
	}

	t.Run("Preflight allowed", func(t *testing.T) {
		w := preflight(newRouter(true, "https://app.example.com"), "https://app.example.com")

		assert.Equal(t, http.StatusNoContent, w.Code)
		assert.Equal(t, "https://app.example.com", w.Header().Get("Access-Control-Allow-Origin"))
		assert.Contains(t, w.Header().Get("Access-Control-Allow-Methods"), http.MethodPut)
		assert.Empty(t, w.Header().Get("Access-Control-Allow-Credentials"))
	})

	t.Run("Preflight from unknown origin rejected", func(t *testing.T) {
		w := preflight(newRouter(true, "https://app.example.com"), "https://evil.example.com")

		assert.Equal(t, http.StatusForbidden, w.Code)
		assert.Empty(t, w.Header().Get("Access-Control-Allow-Origin"))
	})

	t.Run("Wildcard", func(t *testing.T) {
		w := preflight(newRouter(true, "*"), "https://anything.example.com")

		assert.Equal(t, http.StatusNoContent, w.Code)
		assert.Equal(t, "*", w.Header().Get("Access-Control-Allow-Origin"))
	})

	t.Run("No headers when disabled", func(t *testing.T) {
		w := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodPut, "/v1/values/users/alice", nil)
		req.Header.Set("Origin", "https://app.example.com")
		newRouter(false, "https://app.example.com").ServeHTTP(w, req)

		assert.Equal(t, http.StatusCreated, w.Code)
		assert.Empty(t, w.Header().Get("Access-Control-Allow-Origin"))
	})
}
