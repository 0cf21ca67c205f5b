package api

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/lalith-99/sheetcrm/internal/activity"
	"github.com/lalith-99/sheetcrm/internal/ai"
	"github.com/lalith-99/sheetcrm/internal/customfield"
	"github.com/lalith-99/sheetcrm/internal/repository"
	"go.uber.org/zap"
)

// respondError maps domain errors to status codes. Anything unrecognised is
// logged and answered with the generic msg so storage details never reach
// the client.
func respondError(c *gin.Context, logger *zap.Logger, msg string, err error) {
	var verr *activity.ValidationError
	if errors.As(err, &verr) {
		c.JSON(http.StatusBadRequest, gin.H{"error": verr.Error(), "problems": verr.Problems})
		return
	}
	var perr *ai.ProviderError
	if errors.As(err, &perr) {
		logger.Warn(msg, zap.Error(err))
		c.JSON(http.StatusBadGateway, gin.H{"error": perr.Error()})
		return
	}

	switch {
	case errors.Is(err, customfield.ErrInvalidDefinition), errors.Is(err, customfield.ErrMissingRequired):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	case errors.Is(err, repository.ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "not found"})
	case errors.Is(err, customfield.ErrDuplicateKey), errors.Is(err, activity.ErrInvalidTransition):
		c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
	case errors.Is(err, ai.ErrConsentRequired):
		c.JSON(http.StatusForbidden, gin.H{"error": err.Error()})
	case errors.Is(err, ai.ErrNotConfigured):
		c.JSON(http.StatusPreconditionFailed, gin.H{"error": err.Error()})
	default:
		logger.Error(msg, zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": msg})
	}
}

func badRequest(c *gin.Context, err error) {
	c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
}

func notFound(c *gin.Context, what string) {
	c.JSON(http.StatusNotFound, gin.H{"error": what + " not found"})
}

// rejectBlank answers 400 when v is empty after trimming. binding:"required"
// lets whitespace through, and rows without a name are unreadable.
func rejectBlank(c *gin.Context, field, v string) bool {
	if strings.TrimSpace(v) != "" {
		return false
	}
	c.JSON(http.StatusBadRequest, gin.H{"error": field + " must not be blank"})
	return true
}
