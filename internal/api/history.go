package api

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/lalith-99/sheetcrm/internal/history"
	"github.com/lalith-99/sheetcrm/internal/middleware"
	"github.com/lalith-99/sheetcrm/internal/models"
	"go.uber.org/zap"
)

type HistoryHandler struct {
	history *history.Logger
	logger  *zap.Logger
}

func NewHistoryHandler(h *history.Logger, logger *zap.Logger) *HistoryHandler {
	return &HistoryHandler{history: h, logger: logger}
}

type noteRequest struct {
	Content string `json:"content" binding:"required"`
}

// List handles GET /v1/{companies|contacts}/:id/history
func (h *HistoryHandler) List(kind models.EntityKind) gin.HandlerFunc {
	return func(c *gin.Context) {
		entries, err := h.history.List(c.Request.Context(), kind, c.Param("id"))
		if err != nil {
			respondError(c, h.logger, "failed to load history", err)
			return
		}
		c.JSON(http.StatusOK, entries)
	}
}

// AddNote handles POST /v1/{companies|contacts}/:id/history
func (h *HistoryHandler) AddNote(kind models.EntityKind) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req noteRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			badRequest(c, err)
			return
		}
		if rejectBlank(c, "content", req.Content) {
			return
		}
		content := strings.TrimSpace(req.Content)

		entry, err := h.history.AddNote(c.Request.Context(), kind, c.Param("id"), middleware.GetEmail(c), content)
		if err != nil {
			respondError(c, h.logger, "failed to add note", err)
			return
		}
		c.JSON(http.StatusCreated, entry)
	}
}
