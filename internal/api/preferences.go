package api

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/lalith-99/sheetcrm/internal/middleware"
	"github.com/lalith-99/sheetcrm/internal/models"
	"github.com/lalith-99/sheetcrm/internal/repository"
	"go.uber.org/zap"
)

type PreferencesHandler struct {
	repo   repository.PreferencesRepository
	logger *zap.Logger
}

func NewPreferencesHandler(repo repository.PreferencesRepository, logger *zap.Logger) *PreferencesHandler {
	return &PreferencesHandler{repo: repo, logger: logger}
}

type preferencesRequest struct {
	DisplayName string `json:"display_name"`
}

// Get handles GET /v1/preferences. A user without a row gets empty
// preferences, not a 404.
func (h *PreferencesHandler) Get(c *gin.Context) {
	email := middleware.GetEmail(c)
	prefs, err := h.repo.Get(c.Request.Context(), email)
	if err != nil {
		respondError(c, h.logger, "failed to load preferences", err)
		return
	}
	if prefs == nil {
		prefs = &models.UserPreferences{Email: email, DisplayName: middleware.GetName(c)}
	}
	c.JSON(http.StatusOK, prefs)
}

// Put handles PUT /v1/preferences
func (h *PreferencesHandler) Put(c *gin.Context) {
	var req preferencesRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}
	prefs, err := h.repo.Save(c.Request.Context(), models.UserPreferences{
		Email:       middleware.GetEmail(c),
		DisplayName: strings.TrimSpace(req.DisplayName),
	})
	if err != nil {
		respondError(c, h.logger, "failed to save preferences", err)
		return
	}
	c.JSON(http.StatusOK, prefs)
}
