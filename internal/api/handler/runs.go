package handler

import (
	"context"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/timmy/tmimport/internal/domain"
)

// RunLister reads import run history.
type RunLister interface {
	ListRecent(ctx context.Context, documentID string, limit int) ([]domain.ImportRun, error)
	GetByID(ctx context.Context, id string) (*domain.ImportRun, error)
}

// RunHandler handles import run history endpoints
type RunHandler struct {
	runs RunLister
}

// NewRunHandler creates a new run handler
func NewRunHandler(runs RunLister) *RunHandler {
	return &RunHandler{runs: runs}
}

// ListRuns handles GET /api/v1/runs?limit=&document_id=.
// Parameters:
//   - c: Gin request context.
// Returns: none (writes JSON response).
func (h *RunHandler) ListRuns(c *gin.Context) {
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "20"))
	if limit <= 0 || limit > 200 {
		limit = 20
	}

	runs, err := h.runs.ListRecent(c.Request.Context(), c.Query("document_id"), limit)
	if err != nil {
		c.JSON(statusFor(err), gin.H{
			"error": "Failed to list runs: " + err.Error(),
		})
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"runs":  runs,
		"total": len(runs),
	})
}

// GetRun handles GET /api/v1/runs/:id.
func (h *RunHandler) GetRun(c *gin.Context) {
	run, err := h.runs.GetByID(c.Request.Context(), c.Param("id"))
	if err != nil {
		c.JSON(statusFor(err), gin.H{
			"error": "Run not found",
		})
		return
	}
	c.JSON(http.StatusOK, run)
}
