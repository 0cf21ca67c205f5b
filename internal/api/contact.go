package api

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/lalith-99/sheetcrm/internal/models"
	"github.com/lalith-99/sheetcrm/internal/realtime"
	"github.com/lalith-99/sheetcrm/internal/repository"
	"go.uber.org/zap"
)

type ContactHandler struct {
	repo      repository.ContactRepository
	publisher Publisher
	logger    *zap.Logger
}

func NewContactHandler(repo repository.ContactRepository, publisher Publisher, logger *zap.Logger) *ContactHandler {
	return &ContactHandler{repo: repo, publisher: publisher, logger: logger}
}

type contactRequest struct {
	CompanyID string `json:"company_id"`
	Name      string `json:"name" binding:"required"`
	Position  string `json:"position"`
	Email     string `json:"email" binding:"omitempty,email"`
	Phone     string `json:"phone"`
}

func (r contactRequest) toModel(id string) models.Contact {
	return models.Contact{
		ID:        id,
		CompanyID: r.CompanyID,
		Name:      strings.TrimSpace(r.Name),
		Position:  r.Position,
		Email:     strings.TrimSpace(r.Email),
		Phone:     r.Phone,
	}
}

// List handles GET /v1/contacts and GET /v1/contacts?company_id=...
func (h *ContactHandler) List(c *gin.Context) {
	var (
		contacts []models.Contact
		err      error
	)
	if companyID := c.Query("company_id"); companyID != "" {
		contacts, err = h.repo.ListByCompany(c.Request.Context(), companyID)
	} else {
		contacts, err = h.repo.List(c.Request.Context())
	}
	if err != nil {
		respondError(c, h.logger, "failed to list contacts", err)
		return
	}
	c.JSON(http.StatusOK, contacts)
}

// Get handles GET /v1/contacts/:id
func (h *ContactHandler) Get(c *gin.Context) {
	contact, err := h.repo.GetByID(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, h.logger, "failed to get contact", err)
		return
	}
	if contact == nil {
		notFound(c, "contact")
		return
	}
	c.JSON(http.StatusOK, contact)
}

// Create handles POST /v1/contacts
func (h *ContactHandler) Create(c *gin.Context) {
	var req contactRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}
	if rejectBlank(c, "name", req.Name) {
		return
	}

	contact, err := h.repo.Create(c.Request.Context(), req.toModel(""))
	if err != nil {
		respondError(c, h.logger, "failed to create contact", err)
		return
	}
	h.publisher.Publish(realtime.Event{Entity: "contact", Action: "created", ID: contact.ID})
	c.JSON(http.StatusCreated, contact)
}

// Update handles PUT /v1/contacts/:id
func (h *ContactHandler) Update(c *gin.Context) {
	var req contactRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}
	if rejectBlank(c, "name", req.Name) {
		return
	}

	contact := req.toModel(c.Param("id"))
	if err := h.repo.Update(c.Request.Context(), contact); err != nil {
		respondError(c, h.logger, "failed to update contact", err)
		return
	}
	h.publisher.Publish(realtime.Event{Entity: "contact", Action: "updated", ID: contact.ID})
	c.JSON(http.StatusOK, contact)
}

// Delete handles DELETE /v1/contacts/:id
func (h *ContactHandler) Delete(c *gin.Context) {
	id := c.Param("id")
	if err := h.repo.Delete(c.Request.Context(), id); err != nil {
		respondError(c, h.logger, "failed to delete contact", err)
		return
	}
	h.publisher.Publish(realtime.Event{Entity: "contact", Action: "deleted", ID: id})
	c.Status(http.StatusNoContent)
}
