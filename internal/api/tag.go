package api

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/lalith-99/sheetcrm/internal/middleware"
	"github.com/lalith-99/sheetcrm/internal/models"
	"github.com/lalith-99/sheetcrm/internal/realtime"
	"github.com/lalith-99/sheetcrm/internal/repository"
	"go.uber.org/zap"
)

// TagHandler serves company tags and contact tags. Every route is
// registered once per kind.
type TagHandler struct {
	repo      repository.TagRepository
	publisher Publisher
	logger    *zap.Logger
}

func NewTagHandler(repo repository.TagRepository, publisher Publisher, logger *zap.Logger) *TagHandler {
	return &TagHandler{repo: repo, publisher: publisher, logger: logger}
}

type tagRequest struct {
	Name        string `json:"name" binding:"required"`
	Color       string `json:"color"`
	Description string `json:"description"`
}

func (h *TagHandler) changed(kind models.EntityKind, action, id string) {
	h.publisher.Publish(realtime.Event{Entity: string(kind) + "_tag", Action: action, ID: id})
}

func (h *TagHandler) find(c *gin.Context, kind models.EntityKind, id string) (*models.Tag, bool) {
	tags, err := h.repo.ListTags(c.Request.Context(), kind)
	if err != nil {
		respondError(c, h.logger, "failed to load tags", err)
		return nil, false
	}
	for i := range tags {
		if tags[i].ID == id {
			return &tags[i], true
		}
	}
	notFound(c, "tag")
	return nil, false
}

// List handles GET /v1/tags/{company|contact}
func (h *TagHandler) List(kind models.EntityKind) gin.HandlerFunc {
	return func(c *gin.Context) {
		tags, err := h.repo.ListTags(c.Request.Context(), kind)
		if err != nil {
			respondError(c, h.logger, "failed to list tags", err)
			return
		}
		c.JSON(http.StatusOK, tags)
	}
}

// Create handles POST /v1/tags/{company|contact}
func (h *TagHandler) Create(kind models.EntityKind) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req tagRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			badRequest(c, err)
			return
		}
		if rejectBlank(c, "name", req.Name) {
			return
		}
		tag, err := h.repo.CreateTag(c.Request.Context(), models.Tag{
			Kind:        kind,
			Name:        strings.TrimSpace(req.Name),
			Color:       req.Color,
			Description: req.Description,
			CreatedBy:   middleware.GetEmail(c),
		})
		if err != nil {
			respondError(c, h.logger, "failed to create tag", err)
			return
		}
		h.changed(kind, "created", tag.ID)
		c.JSON(http.StatusCreated, tag)
	}
}

// Update handles PUT /v1/tags/{company|contact}/:id
func (h *TagHandler) Update(kind models.EntityKind) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req tagRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			badRequest(c, err)
			return
		}
		if rejectBlank(c, "name", req.Name) {
			return
		}
		tag, ok := h.find(c, kind, c.Param("id"))
		if !ok {
			return
		}
		tag.Name = strings.TrimSpace(req.Name)
		tag.Color = req.Color
		tag.Description = req.Description
		if err := h.repo.UpdateTag(c.Request.Context(), *tag); err != nil {
			respondError(c, h.logger, "failed to update tag", err)
			return
		}
		h.changed(kind, "updated", tag.ID)
		c.JSON(http.StatusOK, tag)
	}
}

// Delete handles DELETE /v1/tags/{company|contact}/:id. The tag's
// relations go with it.
func (h *TagHandler) Delete(kind models.EntityKind) gin.HandlerFunc {
	return func(c *gin.Context) {
		id := c.Param("id")
		if err := h.repo.DeleteTag(c.Request.Context(), kind, id); err != nil {
			respondError(c, h.logger, "failed to delete tag", err)
			return
		}
		h.changed(kind, "deleted", id)
		c.Status(http.StatusNoContent)
	}
}

// EntityTags handles GET /v1/{companies|contacts}/:id/tags
func (h *TagHandler) EntityTags(kind models.EntityKind) gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx := c.Request.Context()
		relations, err := h.repo.ListRelations(ctx, kind)
		if err != nil {
			respondError(c, h.logger, "failed to load tag relations", err)
			return
		}
		tags, err := h.repo.ListTags(ctx, kind)
		if err != nil {
			respondError(c, h.logger, "failed to list tags", err)
			return
		}

		attached := make(map[string]bool)
		for _, rel := range relations {
			if rel.EntityID == c.Param("id") {
				attached[rel.TagID] = true
			}
		}
		out := make([]models.Tag, 0, len(attached))
		for _, t := range tags {
			if attached[t.ID] {
				out = append(out, t)
			}
		}
		c.JSON(http.StatusOK, out)
	}
}

// Attach handles PUT /v1/{companies|contacts}/:id/tags/:tag_id
func (h *TagHandler) Attach(kind models.EntityKind) gin.HandlerFunc {
	return func(c *gin.Context) {
		if _, ok := h.find(c, kind, c.Param("tag_id")); !ok {
			return
		}
		rel := models.TagRelation{Kind: kind, EntityID: c.Param("id"), TagID: c.Param("tag_id")}
		if err := h.repo.Attach(c.Request.Context(), rel); err != nil {
			respondError(c, h.logger, "failed to attach tag", err)
			return
		}
		h.changed(kind, "attached", rel.EntityID)
		c.Status(http.StatusNoContent)
	}
}

// Detach handles DELETE /v1/{companies|contacts}/:id/tags/:tag_id
func (h *TagHandler) Detach(kind models.EntityKind) gin.HandlerFunc {
	return func(c *gin.Context) {
		rel := models.TagRelation{Kind: kind, EntityID: c.Param("id"), TagID: c.Param("tag_id")}
		if err := h.repo.Detach(c.Request.Context(), rel); err != nil {
			respondError(c, h.logger, "failed to detach tag", err)
			return
		}
		h.changed(kind, "detached", rel.EntityID)
		c.Status(http.StatusNoContent)
	}
}
