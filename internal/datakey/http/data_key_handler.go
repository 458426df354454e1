// Package http provides the gin handlers of the data key control plane.
package http

import (
	"fmt"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	authHTTP "github.com/allisson/signatrust/internal/auth/http"
	"github.com/allisson/signatrust/internal/datakey/http/dto"
	dataKeyUseCase "github.com/allisson/signatrust/internal/datakey/usecase"
	"github.com/allisson/signatrust/internal/httputil"
	customValidation "github.com/allisson/signatrust/internal/validation"
)

// DataKeyHandler handles data key management requests.
type DataKeyHandler struct {
	dataKeyUseCase dataKeyUseCase.DataKeyUseCase
	logger         *slog.Logger
}

// NewDataKeyHandler creates a new data key handler.
func NewDataKeyHandler(useCase dataKeyUseCase.DataKeyUseCase, logger *slog.Logger) *DataKeyHandler {
	return &DataKeyHandler{
		dataKeyUseCase: useCase,
		logger:         logger,
	}
}

// RegisterRoutes mounts the handlers on group.
func (h *DataKeyHandler) RegisterRoutes(group *gin.RouterGroup) {
	group.GET("", h.ListHandler)
	group.POST("", h.CreateHandler)
	group.POST("/import", h.ImportHandler)
	group.GET("/:id", h.GetHandler)
	group.DELETE("/:id", h.DeleteHandler)
	group.GET("/:id/export", h.ExportHandler)
	group.POST("/:id/enable", h.EnableHandler)
	group.POST("/:id/disable", h.DisableHandler)
}

// ListHandler lists live data keys.
// GET /v1/keys?offset=0&limit=50 - Returns 200 OK with a page of keys.
func (h *DataKeyHandler) ListHandler(c *gin.Context) {
	page, err := httputil.ParsePage(c)
	if err != nil {
		httputil.HandleBadRequestGin(c, err, h.logger)
		return
	}

	dataKeys, err := h.dataKeyUseCase.List(c.Request.Context())
	if err != nil {
		httputil.HandleErrorGin(c, err, h.logger)
		return
	}

	c.JSON(http.StatusOK, dto.MapDataKeysToListResponse(dataKeys, page))
}

// CreateHandler generates a new data key.
// POST /v1/keys - Returns 201 Created, 409 on a duplicate name, 422 on invalid input.
func (h *DataKeyHandler) CreateHandler(c *gin.Context) {
	var req dto.CreateDataKeyRequest

	if err := c.ShouldBindJSON(&req); err != nil {
		httputil.HandleBadRequestGin(c, err, h.logger)
		return
	}

	if err := req.Validate(); err != nil {
		httputil.HandleValidationErrorGin(c, customValidation.WrapValidationError(err), h.logger)
		return
	}

	input, err := req.ToInput(h.subject(c))
	if err != nil {
		httputil.HandleValidationErrorGin(c, err, h.logger)
		return
	}

	dataKey, err := h.dataKeyUseCase.Create(c.Request.Context(), input)
	if err != nil {
		httputil.HandleErrorGin(c, err, h.logger)
		return
	}

	c.JSON(http.StatusCreated, dto.MapDataKeyToResponse(dataKey))
}

// ImportHandler stores externally generated key material.
// POST /v1/keys/import - Returns 201 Created.
func (h *DataKeyHandler) ImportHandler(c *gin.Context) {
	var req dto.ImportDataKeyRequest

	if err := c.ShouldBindJSON(&req); err != nil {
		httputil.HandleBadRequestGin(c, err, h.logger)
		return
	}

	if err := req.Validate(); err != nil {
		httputil.HandleValidationErrorGin(c, customValidation.WrapValidationError(err), h.logger)
		return
	}

	input, err := req.ToInput(h.subject(c))
	if err != nil {
		httputil.HandleValidationErrorGin(c, err, h.logger)
		return
	}

	dataKey, err := h.dataKeyUseCase.Import(c.Request.Context(), input)
	if err != nil {
		httputil.HandleErrorGin(c, err, h.logger)
		return
	}

	c.JSON(http.StatusCreated, dto.MapDataKeyToResponse(dataKey))
}

// GetHandler returns one data key.
func (h *DataKeyHandler) GetHandler(c *gin.Context) {
	id, ok := h.parseID(c)
	if !ok {
		return
	}

	dataKey, err := h.dataKeyUseCase.Get(c.Request.Context(), id)
	if err != nil {
		httputil.HandleErrorGin(c, err, h.logger)
		return
	}

	c.JSON(http.StatusOK, dto.MapDataKeyToResponse(dataKey))
}

// DeleteHandler soft deletes a data key.
// DELETE /v1/keys/:id - Returns 204 No Content.
func (h *DataKeyHandler) DeleteHandler(c *gin.Context) {
	id, ok := h.parseID(c)
	if !ok {
		return
	}

	if err := h.dataKeyUseCase.Delete(c.Request.Context(), id); err != nil {
		httputil.HandleErrorGin(c, err, h.logger)
		return
	}

	c.Data(http.StatusNoContent, "application/json", nil)
}

// ExportHandler returns the public key and certificate of a data key.
func (h *DataKeyHandler) ExportHandler(c *gin.Context) {
	id, ok := h.parseID(c)
	if !ok {
		return
	}

	exported, err := h.dataKeyUseCase.Export(c.Request.Context(), id)
	if err != nil {
		httputil.HandleErrorGin(c, err, h.logger)
		return
	}

	c.JSON(http.StatusOK, dto.MapExportKeyToResponse(exported))
}

// EnableHandler marks a data key usable for signing.
func (h *DataKeyHandler) EnableHandler(c *gin.Context) {
	id, ok := h.parseID(c)
	if !ok {
		return
	}

	if err := h.dataKeyUseCase.Enable(c.Request.Context(), id); err != nil {
		httputil.HandleErrorGin(c, err, h.logger)
		return
	}

	c.Data(http.StatusNoContent, "application/json", nil)
}

// DisableHandler stops new signers from loading a data key. Signers that already
// cached it keep using it until restart.
func (h *DataKeyHandler) DisableHandler(c *gin.Context) {
	id, ok := h.parseID(c)
	if !ok {
		return
	}

	if err := h.dataKeyUseCase.Disable(c.Request.Context(), id); err != nil {
		httputil.HandleErrorGin(c, err, h.logger)
		return
	}

	c.Data(http.StatusNoContent, "application/json", nil)
}

func (h *DataKeyHandler) parseID(c *gin.Context) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		httputil.HandleValidationErrorGin(c,
			fmt.Errorf("invalid data key ID format: must be a valid UUID"),
			h.logger)
		return uuid.Nil, false
	}
	return id, true
}

func (h *DataKeyHandler) subject(c *gin.Context) string {
	if subject, ok := authHTTP.GetSubject(c.Request.Context()); ok {
		return subject
	}
	return authHTTP.AdminSubject
}
