package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// QueueHandler exposes the persisted import queue to operators.
type QueueHandler struct {
	queue ImportQueue
}

// NewQueueHandler creates a new queue handler
func NewQueueHandler(queue ImportQueue) *QueueHandler {
	return &QueueHandler{queue: queue}
}

// Status handles GET /api/v1/queue.
func (h *QueueHandler) Status(c *gin.Context) {
	rec, err := h.queue.Snapshot(c.Request.Context())
	if err != nil {
		c.JSON(statusFor(err), gin.H{
			"error": "Failed to read queue: " + err.Error(),
		})
		return
	}
	c.JSON(http.StatusOK, rec)
}

// Reset handles POST /api/v1/queue/reset.
func (h *QueueHandler) Reset(c *gin.Context) {
	rec, err := h.queue.Reset(c.Request.Context())
	if err != nil {
		c.JSON(statusFor(err), gin.H{
			"error": "Failed to reset queue: " + err.Error(),
		})
		return
	}
	c.JSON(http.StatusOK, rec)
}

// Drain handles POST /api/v1/queue/drain. The queue is drained synchronously.
func (h *QueueHandler) Drain(c *gin.Context) {
	n, err := h.queue.Drain(c.Request.Context())
	if err != nil {
		c.JSON(statusFor(err), gin.H{
			"error":     "Failed to drain queue: " + err.Error(),
			"processed": n,
		})
		return
	}
	c.JSON(http.StatusOK, gin.H{"processed": n})
}
