package handler

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/timmy/tmimport/internal/domain"
	"github.com/timmy/tmimport/internal/locale"
)

// LocaleLister reads the translated locales of an item.
type LocaleLister interface {
	ListLocales(ctx context.Context, itemType domain.ItemType, itemID string) ([]string, error)
}

// TranslationHandler answers translation state and locale mapping queries.
type TranslationHandler struct {
	states LocaleLister
	mapper *locale.Mapper
}

// NewTranslationHandler creates a new translation handler
func NewTranslationHandler(states LocaleLister, mapper *locale.Mapper) *TranslationHandler {
	return &TranslationHandler{states: states, mapper: mapper}
}

// GetTranslations handles GET /api/v1/translations/:item_type/:item_id.
func (h *TranslationHandler) GetTranslations(c *gin.Context) {
	itemType, err := domain.ParseItemType(c.Param("item_type"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error": err.Error(),
		})
		return
	}
	itemID := c.Param("item_id")

	locales, err := h.states.ListLocales(c.Request.Context(), itemType, itemID)
	if err != nil {
		c.JSON(statusFor(err), gin.H{
			"error": "Failed to read translation state: " + err.Error(),
		})
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"item_type": itemType,
		"item_id":   itemID,
		"locales":   locales,
	})
}

// MapLocalesRequest represents the locale mapping request.
type MapLocalesRequest struct {
	Source  string   `json:"source" binding:"required"`
	Targets []string `json:"targets"`
}

// MapLocales handles POST /api/v1/locales/map.
func (h *TranslationHandler) MapLocales(c *gin.Context) {
	var req MapLocalesRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error": "Invalid request: " + err.Error(),
		})
		return
	}

	source, targets := h.mapper.ToProvider(req.Source, req.Targets)
	c.JSON(http.StatusOK, gin.H{
		"source":  source,
		"targets": targets,
	})
}
