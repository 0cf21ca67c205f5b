package api

import (
	"context"

	"github.com/gin-gonic/gin"
	"github.com/lalith-99/sheetcrm/internal/activity"
	"github.com/lalith-99/sheetcrm/internal/ai"
	"github.com/lalith-99/sheetcrm/internal/customfield"
	"github.com/lalith-99/sheetcrm/internal/history"
	"github.com/lalith-99/sheetcrm/internal/middleware"
	"github.com/lalith-99/sheetcrm/internal/models"
	"github.com/lalith-99/sheetcrm/internal/realtime"
	"github.com/lalith-99/sheetcrm/internal/repository"
	"go.uber.org/zap"
)

// Deps is everything the router hands out to handlers.
type Deps struct {
	JWTSecret  string
	AccessHash string

	Companies   repository.CompanyRepository
	Contacts    repository.ContactRepository
	Tags        repository.TagRepository
	Preferences repository.PreferencesRepository
	Loader      repository.SnapshotLoader

	Activities   *activity.Service
	History      *history.Logger
	CustomFields *customfield.Service
	AI           *ai.Service
	Hub          *realtime.Hub

	// Health pings the storage backend, when it has one to ping.
	Health func(context.Context) error
	// Refresh drops cached sheet data.
	Refresh func()

	Logger *zap.Logger
}

// NewRouter builds the gin engine. Only /v1/health and /v1/auth/login are
// reachable without a session token.
func NewRouter(d Deps) *gin.Engine {
	r := gin.New()
	r.Use(middleware.RequestLogger(d.Logger), gin.Recovery())

	r.GET("/v1/health", health(d.Health, d.Logger))
	authH := NewAuthHandler(d.AccessHash, d.JWTSecret, d.Logger)
	r.POST("/v1/auth/login", authH.Login)

	v1 := r.Group("/v1")
	v1.Use(middleware.AuthMiddleware(d.JWTSecret))

	companies := NewCompanyHandler(d.Companies, d.Hub, d.Logger)
	contacts := NewContactHandler(d.Contacts, d.Hub, d.Logger)
	acts := NewActivityHandler(d.Activities, d.Logger)
	hist := NewHistoryHandler(d.History, d.Logger)
	tags := NewTagHandler(d.Tags, d.Hub, d.Logger)
	fields := NewCustomFieldHandler(d.CustomFields, d.Hub, d.Logger)
	prefs := NewPreferencesHandler(d.Preferences, d.Logger)
	boot := NewBootstrapHandler(d.Loader, d.Activities.Types(), d.Logger)

	v1.GET("/bootstrap", boot.Get)
	v1.GET("/ws", func(c *gin.Context) { d.Hub.ServeWS(c.Writer, c.Request) })
	v1.POST("/refresh", refresh(d.Refresh, d.Logger))

	v1.GET("/companies", companies.List)
	v1.POST("/companies", companies.Create)
	v1.GET("/companies/match", companies.Match)
	v1.GET("/companies/:id", companies.Get)
	v1.PUT("/companies/:id", companies.Update)
	v1.DELETE("/companies/:id", companies.Delete)
	v1.GET("/companies/:id/activities", acts.CompanyActivities)

	v1.GET("/contacts", contacts.List)
	v1.POST("/contacts", contacts.Create)
	v1.GET("/contacts/:id", contacts.Get)
	v1.PUT("/contacts/:id", contacts.Update)
	v1.DELETE("/contacts/:id", contacts.Delete)
	v1.GET("/contacts/:id/activities", acts.ContactActivities)

	for prefix, kind := range map[string]models.EntityKind{
		"/companies/:id": models.KindCompany,
		"/contacts/:id":  models.KindContact,
	} {
		v1.GET(prefix+"/history", hist.List(kind))
		v1.POST(prefix+"/history", hist.AddNote(kind))

		v1.GET(prefix+"/tags", tags.EntityTags(kind))
		v1.PUT(prefix+"/tags/:tag_id", tags.Attach(kind))
		v1.DELETE(prefix+"/tags/:tag_id", tags.Detach(kind))

		v1.GET(prefix+"/custom-fields", fields.Values(kind))
		v1.PUT(prefix+"/custom-fields", fields.SaveValues(kind))
		v1.GET(prefix+"/custom-fields/form", fields.Form(kind))
		v1.POST(prefix+"/custom-fields/form", fields.SubmitForm(kind))
		v1.GET(prefix+"/custom-fields/details", fields.Details(kind))
	}

	for _, kind := range []models.EntityKind{models.KindCompany, models.KindContact} {
		base := "/tags/" + string(kind)
		v1.GET(base, tags.List(kind))
		v1.POST(base, tags.Create(kind))
		v1.PUT(base+"/:id", tags.Update(kind))
		v1.DELETE(base+"/:id", tags.Delete(kind))
	}

	v1.GET("/activities", acts.List)
	v1.POST("/activities", acts.Create)
	v1.GET("/activities/types", acts.Types)
	v1.GET("/activities/upcoming", acts.Upcoming)
	v1.GET("/activities/overdue", acts.Overdue)
	v1.GET("/activities/stats", acts.Stats)
	v1.GET("/activities/:id", acts.Get)
	v1.PATCH("/activities/:id", acts.Update)
	v1.DELETE("/activities/:id", acts.Delete)
	v1.POST("/activities/:id/complete", acts.Complete)
	v1.POST("/activities/:id/cancel", acts.Cancel)

	v1.GET("/custom-fields", fields.ListDefinitions)
	v1.POST("/custom-fields", fields.CreateDefinition)
	v1.PATCH("/custom-fields/:id", fields.UpdateDefinition)
	v1.DELETE("/custom-fields/:id", fields.DisableDefinition)

	v1.GET("/preferences", prefs.Get)
	v1.PUT("/preferences", prefs.Put)

	if d.AI != nil {
		aiH := NewAIHandler(d.AI, d.Companies, d.Contacts, d.Activities, d.History, d.Logger)
		v1.GET("/ai/settings", aiH.GetSettings)
		v1.PUT("/ai/settings", aiH.PutSettings)
		v1.POST("/ai/summary", aiH.Summary)
		v1.POST("/ai/next-steps", aiH.NextSteps)
		v1.POST("/ai/email", aiH.Email)
	}

	return r
}
