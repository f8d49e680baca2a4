package handler

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/timmy/tmimport/internal/domain"
	"github.com/timmy/tmimport/internal/logger"
)

// ImportQueue is the queue surface the handlers drive.
type ImportQueue interface {
	Submit(ctx context.Context, projectID, documentID string) (bool, error)
	Drain(ctx context.Context) (int, error)
	Snapshot(ctx context.Context) (*domain.QueueRecord, error)
	Reset(ctx context.Context) (*domain.QueueRecord, error)
}

// ImportHandler accepts import requests from the provider callback and operators.
type ImportHandler struct {
	queue ImportQueue
}

// NewImportHandler creates a new import handler
func NewImportHandler(queue ImportQueue) *ImportHandler {
	return &ImportHandler{queue: queue}
}

// CreateImportRequest represents the import API request.
type CreateImportRequest struct {
	ProjectID  string `json:"project_id" binding:"required"`
	DocumentID string `json:"document_id" binding:"required"`
}

// Callback handles GET /import?projectid=&documentid=.
// Returns {"success": bool}; success is true when the request was queued.
// Parameters:
//   - c: Gin request context.
// Returns: none (writes JSON response).
func (h *ImportHandler) Callback(c *gin.Context) {
	ctx := c.Request.Context()
	req := newImportRequest(c.Query("projectid"), c.Query("documentid"))
	if err := req.Validate(); err != nil {
		logger.CtxWarn(ctx, "Import callback rejected: projectid=%q, documentid=%q: %v", req.ProjectID, req.DocumentID, err)
		c.JSON(http.StatusBadRequest, gin.H{"success": false})
		return
	}

	if _, err := h.queue.Submit(ctx, req.ProjectID, req.DocumentID); err != nil {
		logger.FromContext(ctx).WithError(err).Errorf("Failed to queue document %s", req.DocumentID)
		c.JSON(statusFor(err), gin.H{"success": false})
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true})
}

// Create handles POST /api/v1/imports.
// Parameters:
//   - c: Gin request context.
// Returns: none (writes JSON response).
func (h *ImportHandler) Create(c *gin.Context) {
	var req CreateImportRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error": "Invalid request: " + err.Error(),
		})
		return
	}

	importReq := newImportRequest(req.ProjectID, req.DocumentID)
	if err := importReq.Validate(); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error": "Invalid request: " + err.Error(),
		})
		return
	}

	running, err := h.queue.Submit(c.Request.Context(), importReq.ProjectID, importReq.DocumentID)
	if err != nil {
		c.JSON(statusFor(err), gin.H{
			"error": "Failed to queue import: " + err.Error(),
		})
		return
	}

	c.JSON(http.StatusAccepted, gin.H{
		"queued":     true,
		"run_active": running,
	})
}

// statusFor maps pipeline error classes onto HTTP status codes
func statusFor(err error) int {
	switch {
	case errors.Is(err, domain.ErrInvalidRequest):
		return http.StatusBadRequest
	case errors.Is(err, domain.ErrStorage):
		return http.StatusServiceUnavailable
	case errors.Is(err, domain.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, domain.ErrInvalidConfiguration):
		return http.StatusUnprocessableEntity
	default:
		return http.StatusInternalServerError
	}
}

func newImportRequest(projectID, documentID string) domain.ImportRequest {
	return domain.ImportRequest{
		ProjectID:  strings.TrimSpace(projectID),
		DocumentID: strings.TrimSpace(documentID),
	}
}
