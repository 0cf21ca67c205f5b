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

// Publisher receives a change event after every successful write.
type Publisher interface {
	Publish(e realtime.Event)
}

type CompanyHandler struct {
	repo      repository.CompanyRepository
	publisher Publisher
	logger    *zap.Logger
}

func NewCompanyHandler(repo repository.CompanyRepository, publisher Publisher, logger *zap.Logger) *CompanyHandler {
	return &CompanyHandler{repo: repo, publisher: publisher, logger: logger}
}

type companyRequest struct {
	Name     string `json:"name" binding:"required"`
	Industry string `json:"industry"`
	Notes    string `json:"notes"`
	Website  string `json:"website"`
	Phone    string `json:"phone"`
	City     string `json:"city"`
	Country  string `json:"country"`
	Domain   string `json:"domain"`
}

func (r companyRequest) toModel(id string) models.Company {
	return models.Company{
		ID:       id,
		Name:     strings.TrimSpace(r.Name),
		Industry: r.Industry,
		Notes:    r.Notes,
		Website:  r.Website,
		Phone:    r.Phone,
		City:     r.City,
		Country:  r.Country,
		Domain:   strings.ToLower(strings.TrimSpace(r.Domain)),
	}
}

// List handles GET /v1/companies
func (h *CompanyHandler) List(c *gin.Context) {
	companies, err := h.repo.List(c.Request.Context())
	if err != nil {
		respondError(c, h.logger, "failed to list companies", err)
		return
	}
	c.JSON(http.StatusOK, companies)
}

// Get handles GET /v1/companies/:id
func (h *CompanyHandler) Get(c *gin.Context) {
	company, err := h.repo.GetByID(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, h.logger, "failed to get company", err)
		return
	}
	if company == nil {
		notFound(c, "company")
		return
	}
	c.JSON(http.StatusOK, company)
}

// Match handles GET /v1/companies/match?email=bob@acme.io
//
// Inbound leads are attached to the company whose domain equals the part
// of the address after '@'. No match is a 404.
func (h *CompanyHandler) Match(c *gin.Context) {
	email := c.Query("email")
	at := strings.LastIndexByte(email, '@')
	if at < 0 || at == len(email)-1 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "email query parameter must be an address"})
		return
	}

	company, err := h.repo.FindByDomain(c.Request.Context(), email[at+1:])
	if err != nil {
		respondError(c, h.logger, "failed to match company", err)
		return
	}
	if company == nil {
		notFound(c, "company")
		return
	}
	c.JSON(http.StatusOK, company)
}

// Create handles POST /v1/companies
func (h *CompanyHandler) Create(c *gin.Context) {
	var req companyRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}
	if rejectBlank(c, "name", req.Name) {
		return
	}

	company, err := h.repo.Create(c.Request.Context(), req.toModel(""))
	if err != nil {
		respondError(c, h.logger, "failed to create company", err)
		return
	}
	h.publisher.Publish(realtime.Event{Entity: "company", Action: "created", ID: company.ID})
	c.JSON(http.StatusCreated, company)
}

// Update handles PUT /v1/companies/:id
func (h *CompanyHandler) Update(c *gin.Context) {
	var req companyRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}
	if rejectBlank(c, "name", req.Name) {
		return
	}

	company := req.toModel(c.Param("id"))
	if err := h.repo.Update(c.Request.Context(), company); err != nil {
		respondError(c, h.logger, "failed to update company", err)
		return
	}
	h.publisher.Publish(realtime.Event{Entity: "company", Action: "updated", ID: company.ID})
	c.JSON(http.StatusOK, company)
}

// Delete handles DELETE /v1/companies/:id
func (h *CompanyHandler) Delete(c *gin.Context) {
	id := c.Param("id")
	if err := h.repo.Delete(c.Request.Context(), id); err != nil {
		respondError(c, h.logger, "failed to delete company", err)
		return
	}
	h.publisher.Publish(realtime.Event{Entity: "company", Action: "deleted", ID: id})
	c.Status(http.StatusNoContent)
}
