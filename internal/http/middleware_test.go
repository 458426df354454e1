package http

import (
	"bytes"
	"encoding/json"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-contrib/requestid"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCustomLoggerMiddleware(t *testing.T) {
	tests := []struct {
		name   string
		status int
		level  string
	}{
		{name: "Success_InfoOnOK", status: http.StatusOK, level: "INFO"},
		{name: "Success_WarnOnClientError", status: http.StatusNotFound, level: "WARN"},
		{name: "Success_ErrorOnServerError", status: http.StatusBadGateway, level: "ERROR"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var buf bytes.Buffer
			logger := slog.New(slog.NewJSONHandler(&buf, nil))

			router := gin.New()
			router.Use(requestid.New(requestid.WithGenerator(func() string { return "req-1" })))
			router.Use(CustomLoggerMiddleware(logger))
			router.GET("/v1/keys/:id", func(c *gin.Context) {
				c.Status(tt.status)
			})

			w := httptest.NewRecorder()
			router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/v1/keys/abc", nil))
			require.Equal(t, tt.status, w.Code)

			var entry map[string]any
			require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
			assert.Equal(t, tt.level, entry["level"])
			assert.Equal(t, "req-1", entry["request_id"])
			assert.Equal(t, "/v1/keys/abc", entry["path"])
			assert.EqualValues(t, tt.status, entry["status"])
		})
	}

	t.Run("Success_RecoveredPanicLoggedAsError", func(t *testing.T) {
		var buf bytes.Buffer
		logger := slog.New(slog.NewJSONHandler(&buf, nil))

		router := gin.New()
		router.Use(CustomLoggerMiddleware(logger))
		router.Use(gin.Recovery())
		router.GET("/panic", func(c *gin.Context) {
			panic("boom")
		})

		w := httptest.NewRecorder()
		router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/panic", nil))

		assert.Equal(t, http.StatusInternalServerError, w.Code)
		assert.Contains(t, buf.String(), `"level":"ERROR"`)
	})
}
