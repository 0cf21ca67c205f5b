package api

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/lalith-99/sheetcrm/internal/activity"
	"github.com/lalith-99/sheetcrm/internal/ai"
	"github.com/lalith-99/sheetcrm/internal/history"
	"github.com/lalith-99/sheetcrm/internal/middleware"
	"github.com/lalith-99/sheetcrm/internal/models"
	"github.com/lalith-99/sheetcrm/internal/repository"
	"go.uber.org/zap"
)

// AIHandler gathers the records a prompt needs and hands them to the ai
// service. Nothing is generated without the user's stored consent.
type AIHandler struct {
	svc        *ai.Service
	companies  repository.CompanyRepository
	contacts   repository.ContactRepository
	activities *activity.Service
	history    *history.Logger
	logger     *zap.Logger
}

func NewAIHandler(
	svc *ai.Service,
	companies repository.CompanyRepository,
	contacts repository.ContactRepository,
	activities *activity.Service,
	history *history.Logger,
	logger *zap.Logger,
) *AIHandler {
	return &AIHandler{
		svc:        svc,
		companies:  companies,
		contacts:   contacts,
		activities: activities,
		history:    history,
		logger:     logger,
	}
}

// settingsResponse never carries the API key back to the browser.
type settingsResponse struct {
	Provider   string `json:"provider"`
	Model      string `json:"model"`
	Consent    bool   `json:"consent"`
	HasKey     bool   `json:"has_key"`
	Configured bool   `json:"configured"`
}

// An empty api_key or model falls back to the server default.
type settingsRequest struct {
	Provider string `json:"provider" binding:"omitempty,oneof=openai anthropic gemini"`
	APIKey   string `json:"api_key"`
	Model    string `json:"model"`
	Consent  bool   `json:"consent"`
}

type companyPrompt struct {
	CompanyID string `json:"company_id" binding:"required"`
}

type emailPrompt struct {
	ContactID string `json:"contact_id" binding:"required"`
	Purpose   string `json:"purpose" binding:"required"`
	Tone      string `json:"tone"`
}

// GetSettings handles GET /v1/ai/settings
func (h *AIHandler) GetSettings(c *gin.Context) {
	s, err := h.svc.Settings(c.Request.Context(), middleware.GetEmail(c))
	if err != nil {
		respondError(c, h.logger, "failed to load ai settings", err)
		return
	}
	c.JSON(http.StatusOK, settingsResponse{
		Provider:   s.Provider,
		Model:      s.Model,
		Consent:    s.Consent,
		HasKey:     s.APIKey != "",
		Configured: s.Configured(),
	})
}

// PutSettings handles PUT /v1/ai/settings
func (h *AIHandler) PutSettings(c *gin.Context) {
	var req settingsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}
	err := h.svc.SaveSettings(c.Request.Context(), middleware.GetEmail(c), ai.Settings{
		Provider: req.Provider,
		APIKey:   req.APIKey,
		Model:    req.Model,
		Consent:  req.Consent,
	})
	if err != nil {
		respondError(c, h.logger, "failed to save ai settings", err)
		return
	}
	h.GetSettings(c)
}

func (h *AIHandler) companyContext(ctx context.Context, companyID string) (*ai.CompanyContext, error) {
	company, err := h.companies.GetByID(ctx, companyID)
	if err != nil {
		return nil, err
	}
	if company == nil {
		return nil, repository.ErrNotFound
	}
	contacts, err := h.contacts.ListByCompany(ctx, companyID)
	if err != nil {
		return nil, err
	}
	acts, err := h.activities.CompanyActivities(ctx, companyID, activity.Filters{})
	if err != nil {
		return nil, err
	}
	feed, err := h.history.List(ctx, models.KindCompany, companyID)
	if err != nil {
		return nil, err
	}
	return &ai.CompanyContext{
		Company:    *company,
		Contacts:   contacts,
		Activities: acts,
		History:    feed,
		Types:      h.activities.Types(),
	}, nil
}

// Summary handles POST /v1/ai/summary
func (h *AIHandler) Summary(c *gin.Context) {
	var req companyPrompt
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}
	cc, err := h.companyContext(c.Request.Context(), req.CompanyID)
	if err != nil {
		respondError(c, h.logger, "failed to load company", err)
		return
	}
	res, err := h.svc.SummarizeCompany(c.Request.Context(), middleware.GetEmail(c), *cc)
	if err != nil {
		respondError(c, h.logger, "failed to generate summary", err)
		return
	}
	c.JSON(http.StatusOK, res)
}

// NextSteps handles POST /v1/ai/next-steps
func (h *AIHandler) NextSteps(c *gin.Context) {
	var req companyPrompt
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}
	cc, err := h.companyContext(c.Request.Context(), req.CompanyID)
	if err != nil {
		respondError(c, h.logger, "failed to load company", err)
		return
	}
	res, err := h.svc.SuggestNextSteps(c.Request.Context(), middleware.GetEmail(c), *cc)
	if err != nil {
		respondError(c, h.logger, "failed to suggest next steps", err)
		return
	}
	c.JSON(http.StatusOK, res)
}

// Email handles POST /v1/ai/email
func (h *AIHandler) Email(c *gin.Context) {
	var req emailPrompt
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}
	ctx := c.Request.Context()
	contact, err := h.contacts.GetByID(ctx, req.ContactID)
	if err != nil {
		respondError(c, h.logger, "failed to load contact", err)
		return
	}
	if contact == nil {
		notFound(c, "contact")
		return
	}
	var company *models.Company
	if contact.CompanyID != "" {
		if company, err = h.companies.GetByID(ctx, contact.CompanyID); err != nil {
			respondError(c, h.logger, "failed to load company", err)
			return
		}
	}

	sender := middleware.GetName(c)
	if sender == "" {
		sender = middleware.GetEmail(c)
	}
	res, err := h.svc.DraftEmail(ctx, middleware.GetEmail(c), ai.EmailRequest{
		Contact: *contact,
		Company: company,
		Purpose: req.Purpose,
		Tone:    req.Tone,
		Sender:  sender,
	})
	if err != nil {
		respondError(c, h.logger, "failed to draft email", err)
		return
	}
	c.JSON(http.StatusOK, res)
}
