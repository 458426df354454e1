package httputil

import (
	"bytes"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "github.com/allisson/signatrust/internal/errors"
)

func record(t *testing.T, write func(c *gin.Context)) (int, ErrorResponse) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	write(c)

	var body ErrorResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	return w.Code, body
}

func TestHandleErrorGin(t *testing.T) {
	tests := []struct {
		name    string
		err     error
		status  int
		code    string
		message string
	}{
		{
			name:    "Error_NotFound",
			err:     apperrors.Wrap(apperrors.ErrNotFound, "data key release-pgp"),
			status:  http.StatusNotFound,
			code:    "not_found",
			message: "The requested resource was not found",
		},
		{
			name:    "Error_Conflict",
			err:     apperrors.Wrap(apperrors.ErrConflict, "name release-pgp"),
			status:  http.StatusConflict,
			code:    "conflict",
			message: "A conflict occurred with existing data",
		},
		{
			name:    "Error_InvalidInputKeepsText",
			err:     apperrors.Wrap(apperrors.ErrInvalidInput, "expire_at must follow create_at"),
			status:  http.StatusUnprocessableEntity,
			code:    "invalid_input",
			message: "expire_at must follow create_at: invalid input",
		},
		{
			name:   "Error_Unauthorized",
			err:    apperrors.ErrUnauthorized,
			status: http.StatusUnauthorized,
			code:   "unauthorized",
		},
		{
			name:   "Error_Forbidden",
			err:    apperrors.ErrForbidden,
			status: http.StatusForbidden,
			code:   "forbidden",
		},
		{
			name:    "Error_UnavailableHidesDetail",
			err:     apperrors.Wrap(apperrors.ErrUnavailable, "kms decrypt: connection reset"),
			status:  http.StatusServiceUnavailable,
			code:    "unavailable",
			message: "A dependency is temporarily unavailable",
		},
		{
			name:    "Error_UnknownIsInternal",
			err:     errors.New("pq: password authentication failed"),
			status:  http.StatusInternalServerError,
			code:    "internal_error",
			message: "An internal error occurred",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			status, body := record(t, func(c *gin.Context) { HandleErrorGin(c, tt.err, nil) })

			assert.Equal(t, tt.status, status)
			assert.Equal(t, tt.code, body.Error)
			if tt.message != "" {
				assert.Equal(t, tt.message, body.Message)
			}
		})
	}

	t.Run("Success_NilWritesNothing", func(t *testing.T) {
		w := httptest.NewRecorder()
		c, _ := gin.CreateTestContext(w)

		HandleErrorGin(c, nil, nil)

		assert.Empty(t, w.Body.String())
	})

	t.Run("Success_LogsStatusAndCode", func(t *testing.T) {
		var buf bytes.Buffer
		logger := slog.New(slog.NewJSONHandler(&buf, nil))

		record(t, func(c *gin.Context) { HandleErrorGin(c, apperrors.ErrForbidden, logger) })

		var entry map[string]any
		require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
		assert.Equal(t, "ERROR", entry["level"])
		assert.EqualValues(t, http.StatusForbidden, entry["status_code"])
		assert.Equal(t, "forbidden", entry["error_code"])
	})
}

func TestRequestShapeErrors(t *testing.T) {
	t.Run("Error_BadRequest", func(t *testing.T) {
		status, body := record(t, func(c *gin.Context) {
			HandleBadRequestGin(c, errors.New("unexpected EOF"), nil)
		})

		assert.Equal(t, http.StatusBadRequest, status)
		assert.Equal(t, ErrorResponse{Error: CodeBadRequest, Message: "unexpected EOF"}, body)
	})

	t.Run("Error_Validation", func(t *testing.T) {
		status, body := record(t, func(c *gin.Context) {
			HandleValidationErrorGin(c, errors.New("name: cannot be blank."), nil)
		})

		assert.Equal(t, http.StatusUnprocessableEntity, status)
		assert.Equal(t, CodeValidationError, body.Error)
		assert.Equal(t, "name: cannot be blank.", body.Message)
	})
}
