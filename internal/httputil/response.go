// Package httputil holds the JSON error envelope and paging helpers shared by the control plane handlers.
package httputil

import (
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	apperrors "github.com/allisson/signatrust/internal/errors"
)

// ErrorResponse is the body of every failed control plane request.
type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message,omitempty"`
}

// Error codes written by the request-shape handlers.
const (
	CodeBadRequest      = "bad_request"
	CodeValidationError = "validation_error"
)

type errorMapping struct {
	status int
	// message replaces the error text; empty means the error text is safe to return.
	message string
}

var errorMappings = map[string]errorMapping{
	apperrors.KindNotFound:     {http.StatusNotFound, "The requested resource was not found"},
	apperrors.KindConflict:     {http.StatusConflict, "A conflict occurred with existing data"},
	apperrors.KindInvalidInput: {http.StatusUnprocessableEntity, ""},
	apperrors.KindUnauthorized: {http.StatusUnauthorized, "Authentication is required"},
	apperrors.KindForbidden:    {http.StatusForbidden, "You don't have permission to access this resource"},
	apperrors.KindUnavailable:  {http.StatusServiceUnavailable, "A dependency is temporarily unavailable"},
	apperrors.KindInternal:     {http.StatusInternalServerError, "An internal error occurred"},
}

// HandleErrorGin writes the response for a use case error, choosing the status from the
// error's kind. Only invalid input errors expose their text to the client.
func HandleErrorGin(c *gin.Context, err error, logger *slog.Logger) {
	if err == nil {
		return
	}

	kind := apperrors.Kind(err)
	mapping := errorMappings[kind]
	message := mapping.message
	if message == "" {
		message = err.Error()
	}

	writeError(c, logger, slog.LevelError, mapping.status, ErrorResponse{Error: kind, Message: message}, err)
}

// HandleBadRequestGin writes a 400 for a body or parameter that could not be decoded.
func HandleBadRequestGin(c *gin.Context, err error, logger *slog.Logger) {
	writeError(c, logger, slog.LevelWarn, http.StatusBadRequest,
		ErrorResponse{Error: CodeBadRequest, Message: err.Error()}, err)
}

// HandleValidationErrorGin writes a 422 for a decoded request that failed validation.
func HandleValidationErrorGin(c *gin.Context, err error, logger *slog.Logger) {
	writeError(c, logger, slog.LevelWarn, http.StatusUnprocessableEntity,
		ErrorResponse{Error: CodeValidationError, Message: err.Error()}, err)
}

func writeError(
	c *gin.Context,
	logger *slog.Logger,
	level slog.Level,
	status int,
	body ErrorResponse,
	err error,
) {
	if logger != nil {
		logger.Log(c, level, "request failed",
			slog.Int("status_code", status),
			slog.String("error_code", body.Error),
			slog.Any("error", err),
		)
	}
	c.JSON(status, body)
}
