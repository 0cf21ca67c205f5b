package api

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/lalith-99/sheetcrm/internal/middleware"
	"go.uber.org/zap"
)

// health answers 200 while check passes. A nil check means the backend has
// nothing to ping.
func health(check func(context.Context) error, logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		if check != nil {
			ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
			defer cancel()
			if err := check(ctx); err != nil {
				logger.Warn("health check failed", zap.Error(err))
				c.JSON(http.StatusServiceUnavailable, gin.H{"status": "unavailable"})
				return
			}
		}
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	}
}

// refresh drops cached sheet data so rows edited directly in the
// spreadsheet show up before the cache TTL runs out.
func refresh(drop func(), logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		if drop != nil {
			drop()
		}
		logger.Info("sheet cache dropped", zap.String("user", middleware.GetEmail(c)))
		c.Status(http.StatusNoContent)
	}
}
