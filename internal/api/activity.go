package api

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/lalith-99/sheetcrm/internal/activity"
	"github.com/lalith-99/sheetcrm/internal/middleware"
	"github.com/lalith-99/sheetcrm/internal/models"
	"go.uber.org/zap"
)

// ActivityHandler exposes the activity service. Validation, history and
// change events all happen in the service; handlers only translate.
type ActivityHandler struct {
	svc    *activity.Service
	logger *zap.Logger
}

func NewActivityHandler(svc *activity.Service, logger *zap.Logger) *ActivityHandler {
	return &ActivityHandler{svc: svc, logger: logger}
}

// No binding tags: the service reports every invalid field at once.
type activityRequest struct {
	Type      string                `json:"type"`
	Title     string                `json:"title"`
	Date      string                `json:"date"`
	Notes     string                `json:"notes"`
	CompanyID string                `json:"company_id"`
	ContactID string                `json:"contact_id"`
	Status    models.ActivityStatus `json:"status"`
}

type linkQuery struct {
	CompanyID string `form:"company_id"`
	ContactID string `form:"contact_id"`
}

// Types handles GET /v1/activities/types
func (h *ActivityHandler) Types(c *gin.Context) {
	c.JSON(http.StatusOK, h.svc.Types())
}

// List handles GET /v1/activities?type=&status=&date_from=&date_to=
func (h *ActivityHandler) List(c *gin.Context) {
	var f activity.Filters
	if err := c.ShouldBindQuery(&f); err != nil {
		badRequest(c, err)
		return
	}
	all, err := h.svc.List(c.Request.Context())
	if err != nil {
		respondError(c, h.logger, "failed to list activities", err)
		return
	}
	c.JSON(http.StatusOK, activity.ApplyFilters(all, f))
}

// CompanyActivities handles GET /v1/companies/:id/activities
func (h *ActivityHandler) CompanyActivities(c *gin.Context) {
	var f activity.Filters
	if err := c.ShouldBindQuery(&f); err != nil {
		badRequest(c, err)
		return
	}
	list, err := h.svc.CompanyActivities(c.Request.Context(), c.Param("id"), f)
	if err != nil {
		respondError(c, h.logger, "failed to list company activities", err)
		return
	}
	c.JSON(http.StatusOK, list)
}

// ContactActivities handles GET /v1/contacts/:id/activities
func (h *ActivityHandler) ContactActivities(c *gin.Context) {
	var f activity.Filters
	if err := c.ShouldBindQuery(&f); err != nil {
		badRequest(c, err)
		return
	}
	list, err := h.svc.ContactActivities(c.Request.Context(), c.Param("id"), f)
	if err != nil {
		respondError(c, h.logger, "failed to list contact activities", err)
		return
	}
	c.JSON(http.StatusOK, list)
}

// Upcoming handles GET /v1/activities/upcoming?company_id=&contact_id=
func (h *ActivityHandler) Upcoming(c *gin.Context) {
	var q linkQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		badRequest(c, err)
		return
	}
	list, err := h.svc.Upcoming(c.Request.Context(), q.CompanyID, q.ContactID)
	if err != nil {
		respondError(c, h.logger, "failed to list upcoming activities", err)
		return
	}
	c.JSON(http.StatusOK, list)
}

// Overdue handles GET /v1/activities/overdue
func (h *ActivityHandler) Overdue(c *gin.Context) {
	list, err := h.svc.Overdue(c.Request.Context())
	if err != nil {
		respondError(c, h.logger, "failed to list overdue activities", err)
		return
	}
	c.JSON(http.StatusOK, list)
}

// Stats handles GET /v1/activities/stats?company_id=&contact_id=
func (h *ActivityHandler) Stats(c *gin.Context) {
	var q linkQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		badRequest(c, err)
		return
	}
	stats, err := h.svc.Stats(c.Request.Context(), q.CompanyID, q.ContactID)
	if err != nil {
		respondError(c, h.logger, "failed to compute activity stats", err)
		return
	}
	c.JSON(http.StatusOK, stats)
}

// Get handles GET /v1/activities/:id
func (h *ActivityHandler) Get(c *gin.Context) {
	a, err := h.svc.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, h.logger, "failed to get activity", err)
		return
	}
	c.JSON(http.StatusOK, a)
}

// Create handles POST /v1/activities
func (h *ActivityHandler) Create(c *gin.Context) {
	var req activityRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}

	a, err := h.svc.Create(c.Request.Context(), middleware.GetEmail(c), models.Activity{
		Type:      req.Type,
		Title:     req.Title,
		Date:      req.Date,
		Notes:     req.Notes,
		CompanyID: req.CompanyID,
		ContactID: req.ContactID,
		Status:    req.Status,
	})
	if err != nil {
		respondError(c, h.logger, "failed to create activity", err)
		return
	}
	c.JSON(http.StatusCreated, a)
}

// Update handles PATCH /v1/activities/:id. Fields absent from the body
// keep their stored value.
func (h *ActivityHandler) Update(c *gin.Context) {
	var p activity.Patch
	if err := c.ShouldBindJSON(&p); err != nil {
		badRequest(c, err)
		return
	}
	a, err := h.svc.Update(c.Request.Context(), middleware.GetEmail(c), c.Param("id"), p)
	if err != nil {
		respondError(c, h.logger, "failed to update activity", err)
		return
	}
	c.JSON(http.StatusOK, a)
}

// Complete handles POST /v1/activities/:id/complete
func (h *ActivityHandler) Complete(c *gin.Context) {
	a, err := h.svc.Complete(c.Request.Context(), middleware.GetEmail(c), c.Param("id"))
	if err != nil {
		respondError(c, h.logger, "failed to complete activity", err)
		return
	}
	c.JSON(http.StatusOK, a)
}

// Cancel handles POST /v1/activities/:id/cancel
func (h *ActivityHandler) Cancel(c *gin.Context) {
	a, err := h.svc.Cancel(c.Request.Context(), middleware.GetEmail(c), c.Param("id"))
	if err != nil {
		respondError(c, h.logger, "failed to cancel activity", err)
		return
	}
	c.JSON(http.StatusOK, a)
}

// Delete handles DELETE /v1/activities/:id
func (h *ActivityHandler) Delete(c *gin.Context) {
	if err := h.svc.Delete(c.Request.Context(), middleware.GetEmail(c), c.Param("id")); err != nil {
		respondError(c, h.logger, "failed to delete activity", err)
		return
	}
	c.Status(http.StatusNoContent)
}
