package api

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/lalith-99/sheetcrm/internal/models"
	"github.com/lalith-99/sheetcrm/internal/repository"
	"go.uber.org/zap"
)

// BootstrapHandler returns everything the main screen draws on first load
// in one response.
type BootstrapHandler struct {
	loader repository.SnapshotLoader
	types  models.ActivityTypes
	logger *zap.Logger
}

func NewBootstrapHandler(loader repository.SnapshotLoader, types models.ActivityTypes, logger *zap.Logger) *BootstrapHandler {
	return &BootstrapHandler{loader: loader, types: types, logger: logger}
}

type bootstrapResponse struct {
	*repository.Snapshot
	ActivityTypes models.ActivityTypes `json:"activity_types"`
}

// Get handles GET /v1/bootstrap
func (h *BootstrapHandler) Get(c *gin.Context) {
	snap, err := h.loader.LoadAll(c.Request.Context())
	if err != nil {
		respondError(c, h.logger, "failed to load data", err)
		return
	}
	c.JSON(http.StatusOK, bootstrapResponse{Snapshot: snap, ActivityTypes: h.types})
}
