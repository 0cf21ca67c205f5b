package api

import (
	"bytes"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/lalith-99/sheetcrm/internal/customfield"
	"github.com/lalith-99/sheetcrm/internal/models"
	"github.com/lalith-99/sheetcrm/internal/realtime"
	"go.uber.org/zap"
)

type CustomFieldHandler struct {
	svc       *customfield.Service
	publisher Publisher
	logger    *zap.Logger
}

func NewCustomFieldHandler(svc *customfield.Service, publisher Publisher, logger *zap.Logger) *CustomFieldHandler {
	return &CustomFieldHandler{svc: svc, publisher: publisher, logger: logger}
}

type definitionRequest struct {
	EntityType  models.EntityKind `json:"entity_type" binding:"required"`
	Key         string            `json:"key"`
	Label       string            `json:"label" binding:"required"`
	FieldType   models.FieldType  `json:"field_type" binding:"required"`
	OptionsJSON string            `json:"options_json"`
	Required    bool              `json:"required"`
	Order       float64           `json:"order"`
}

// ListDefinitions handles GET /v1/custom-fields. With ?kind= only the
// enabled fields shown for that kind are returned; without it, every
// definition including disabled ones.
func (h *CustomFieldHandler) ListDefinitions(c *gin.Context) {
	var (
		defs []models.CustomFieldDefinition
		err  error
	)
	if kind := models.EntityKind(c.Query("kind")); kind != "" {
		if !kind.Valid() {
			c.JSON(http.StatusBadRequest, gin.H{"error": "kind must be company or contact"})
			return
		}
		defs, err = h.svc.Definitions(c.Request.Context(), kind)
	} else {
		defs, err = h.svc.AllDefinitions(c.Request.Context())
	}
	if err != nil {
		respondError(c, h.logger, "failed to list custom fields", err)
		return
	}
	c.JSON(http.StatusOK, defs)
}

// CreateDefinition handles POST /v1/custom-fields
func (h *CustomFieldHandler) CreateDefinition(c *gin.Context) {
	var req definitionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}
	def, err := h.svc.CreateDefinition(c.Request.Context(), models.CustomFieldDefinition{
		EntityType:  req.EntityType,
		Key:         req.Key,
		Label:       req.Label,
		FieldType:   req.FieldType,
		OptionsJSON: req.OptionsJSON,
		Required:    req.Required,
		Order:       req.Order,
	})
	if err != nil {
		respondError(c, h.logger, "failed to create custom field", err)
		return
	}
	h.publisher.Publish(realtime.Event{Entity: "custom_field", Action: "created", ID: def.ID})
	c.JSON(http.StatusCreated, def)
}

// UpdateDefinition handles PATCH /v1/custom-fields/:id
func (h *CustomFieldHandler) UpdateDefinition(c *gin.Context) {
	var p customfield.DefinitionPatch
	if err := c.ShouldBindJSON(&p); err != nil {
		badRequest(c, err)
		return
	}
	def, err := h.svc.UpdateDefinition(c.Request.Context(), c.Param("id"), p)
	if err != nil {
		respondError(c, h.logger, "failed to update custom field", err)
		return
	}
	h.publisher.Publish(realtime.Event{Entity: "custom_field", Action: "updated", ID: def.ID})
	c.JSON(http.StatusOK, def)
}

// DisableDefinition handles DELETE /v1/custom-fields/:id. Definitions are
// only disabled so stored values survive.
func (h *CustomFieldHandler) DisableDefinition(c *gin.Context) {
	def, err := h.svc.DisableDefinition(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, h.logger, "failed to disable custom field", err)
		return
	}
	h.publisher.Publish(realtime.Event{Entity: "custom_field", Action: "updated", ID: def.ID})
	c.JSON(http.StatusOK, def)
}

// Values handles GET /v1/{companies|contacts}/:id/custom-fields
func (h *CustomFieldHandler) Values(kind models.EntityKind) gin.HandlerFunc {
	return func(c *gin.Context) {
		values, err := h.svc.Values(c.Request.Context(), kind, c.Param("id"))
		if err != nil {
			respondError(c, h.logger, "failed to load custom values", err)
			return
		}
		c.JSON(http.StatusOK, values)
	}
}

// SaveValues handles PUT /v1/{companies|contacts}/:id/custom-fields with a
// JSON object that replaces every stored value.
func (h *CustomFieldHandler) SaveValues(kind models.EntityKind) gin.HandlerFunc {
	return func(c *gin.Context) {
		var values map[string]any
		if err := c.ShouldBindJSON(&values); err != nil {
			badRequest(c, err)
			return
		}
		id := c.Param("id")
		if err := h.svc.SaveValues(c.Request.Context(), kind, id, values); err != nil {
			respondError(c, h.logger, "failed to save custom values", err)
			return
		}
		h.publisher.Publish(realtime.Event{Entity: string(kind), Action: "updated", ID: id})
		c.JSON(http.StatusOK, values)
	}
}

// SubmitForm handles POST /v1/{companies|contacts}/:id/custom-fields/form
// with the urlencoded fields of the rendered form.
func (h *CustomFieldHandler) SubmitForm(kind models.EntityKind) gin.HandlerFunc {
	return func(c *gin.Context) {
		if err := c.Request.ParseForm(); err != nil {
			badRequest(c, err)
			return
		}
		id := c.Param("id")
		values, err := h.svc.SaveForm(c.Request.Context(), kind, id, c.Request.PostForm)
		if err != nil {
			respondError(c, h.logger, "failed to save custom values", err)
			return
		}
		h.publisher.Publish(realtime.Event{Entity: string(kind), Action: "updated", ID: id})
		c.JSON(http.StatusOK, values)
	}
}

// Form handles GET /v1/{companies|contacts}/:id/custom-fields/form and
// returns the HTML fragment of inputs, prefilled with stored values.
func (h *CustomFieldHandler) Form(kind models.EntityKind) gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx := c.Request.Context()
		defs, err := h.svc.Definitions(ctx, kind)
		if err != nil {
			respondError(c, h.logger, "failed to list custom fields", err)
			return
		}
		values, err := h.svc.Values(ctx, kind, c.Param("id"))
		if err != nil {
			respondError(c, h.logger, "failed to load custom values", err)
			return
		}

		var buf bytes.Buffer
		if err := customfield.WriteHTML(&buf, customfield.Render(defs, values)); err != nil {
			respondError(c, h.logger, "failed to render custom fields", err)
			return
		}
		c.Data(http.StatusOK, "text/html; charset=utf-8", buf.Bytes())
	}
}

// Details handles GET /v1/{companies|contacts}/:id/custom-fields/details.
// ?yes= overrides the word shown for checked boxes.
func (h *CustomFieldHandler) Details(kind models.EntityKind) gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx := c.Request.Context()
		defs, err := h.svc.Definitions(ctx, kind)
		if err != nil {
			respondError(c, h.logger, "failed to list custom fields", err)
			return
		}
		values, err := h.svc.Values(ctx, kind, c.Param("id"))
		if err != nil {
			respondError(c, h.logger, "failed to load custom values", err)
			return
		}

		labels := customfield.DefaultLabels
		if yes := c.Query("yes"); yes != "" {
			labels.Yes = yes
		}
		c.JSON(http.StatusOK, customfield.Details(defs, values, labels))
	}
}
