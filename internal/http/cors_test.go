package http

import (
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func corsRouter(t *testing.T, enabled bool, origins string) *gin.Engine {
	t.Helper()
	router := gin.New()
	if middleware := createCORSMiddleware(enabled, origins, slog.New(slog.NewTextHandler(io.Discard, nil))); middleware != nil {
		router.Use(middleware)
	}
	router.GET("/v1/keys", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"data": []string{}})
	})
	router.POST("/v1/keys", func(c *gin.Context) {
		c.JSON(http.StatusCreated, gin.H{})
	})
	return router
}

func TestCreateCORSMiddleware(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	t.Run("Success_DisabledIsNil", func(t *testing.T) {
		assert.Nil(t, createCORSMiddleware(false, "https://ops.example.com", logger))
	})

	t.Run("Success_NoOriginsIsNil", func(t *testing.T) {
		assert.Nil(t, createCORSMiddleware(true, " , ", logger))
	})

	t.Run("Success_ListedOrigin", func(t *testing.T) {
		router := corsRouter(t, true, "https://ops.example.com, https://console.example.com")

		w := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodGet, "/v1/keys", nil)
		req.Header.Set("Origin", "https://console.example.com")
		router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, "https://console.example.com", w.Header().Get("Access-Control-Allow-Origin"))
		assert.Equal(t, "true", w.Header().Get("Access-Control-Allow-Credentials"))
	})

	t.Run("Error_UnlistedOriginForbidden", func(t *testing.T) {
		router := corsRouter(t, true, "https://ops.example.com")

		w := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodGet, "/v1/keys", nil)
		req.Header.Set("Origin", "https://evil.example.com")
		router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusForbidden, w.Code)
		assert.Empty(t, w.Header().Get("Access-Control-Allow-Origin"))
	})

	t.Run("Success_WildcardDropsCredentials", func(t *testing.T) {
		router := corsRouter(t, true, "*")

		w := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodGet, "/v1/keys", nil)
		req.Header.Set("Origin", "https://anywhere.example.com")
		router.ServeHTTP(w, req)

		assert.Equal(t, "*", w.Header().Get("Access-Control-Allow-Origin"))
		assert.Empty(t, w.Header().Get("Access-Control-Allow-Credentials"))
	})

	t.Run("Success_Preflight", func(t *testing.T) {
		router := corsRouter(t, true, "https://ops.example.com")

		w := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodOptions, "/v1/keys", nil)
		req.Header.Set("Origin", "https://ops.example.com")
		req.Header.Set("Access-Control-Request-Method", http.MethodPost)
		router.ServeHTTP(w, req)

		require.Equal(t, http.StatusNoContent, w.Code)
		assert.Contains(t, w.Header().Get("Access-Control-Allow-Methods"), http.MethodPost)
	})
}

func TestParseOrigins(t *testing.T) {
	assert.Equal(t,
		[]string{"https://ops.example.com", "https://console.example.com"},
		parseOrigins(" https://ops.example.com ,,https://console.example.com "),
	)
	assert.Nil(t, parseOrigins(""))
}
