package repository

import (
	"context"
	"errors"

	"github.com/lalith-99/sheetcrm/internal/models"
)

// ErrNotFound is returned by updates and deletes whose id matches no row.
// Lookups (GetByID and friends) return nil, nil instead, like a query that
// found nothing.
var ErrNotFound = errors.New("not found")

// Every method takes a context because every method may hit the
// spreadsheet API. Implementations cache reads and retry remote calls;
// callers never retry on top.

// CompanyRepository reads and writes the Companies sheet.
type CompanyRepository interface {
	List(ctx context.Context) ([]models.Company, error)

	// GetByID returns nil, nil if no company has that id.
	GetByID(ctx context.Context, id string) (*models.Company, error)

	// FindByDomain matches the Domain column case-insensitively and exactly.
	// Used to attach inbound leads to an existing company.
	FindByDomain(ctx context.Context, domain string) (*models.Company, error)

	// Create assigns an id when c.ID is empty and returns the stored record.
	Create(ctx context.Context, c models.Company) (*models.Company, error)

	// Update overwrites the row holding c.ID. ErrNotFound if there is none.
	Update(ctx context.Context, c models.Company) error

	// Delete clears the row holding id. ErrNotFound if there is none.
	Delete(ctx context.Context, id string) error
}

// ContactRepository reads and writes the Contacts sheet.
type ContactRepository interface {
	List(ctx context.Context) ([]models.Contact, error)
	ListByCompany(ctx context.Context, companyID string) ([]models.Contact, error)
	GetByID(ctx context.Context, id string) (*models.Contact, error)
	Create(ctx context.Context, c models.Contact) (*models.Contact, error)
	Update(ctx context.Context, c models.Contact) error
	Delete(ctx context.Context, id string) error
}

// ActivityRepository reads and writes the Activities sheet. The sheet is
// optional: when it cannot be read, List returns an empty set.
type ActivityRepository interface {
	List(ctx context.Context) ([]models.Activity, error)

	// GetByID returns nil, nil if no activity has that id. Unlike List it
	// reports read failures.
	GetByID(ctx context.Context, id string) (*models.Activity, error)

	Create(ctx context.Context, a models.Activity) error
	Update(ctx context.Context, a models.Activity) error
	Delete(ctx context.Context, id string) error
}

// HistoryRepository appends to and reads the per-kind history feeds.
type HistoryRepository interface {
	Append(ctx context.Context, e models.HistoryEntry) error

	// List returns the feed of one company or contact in sheet order.
	List(ctx context.Context, kind models.EntityKind, entityID string) ([]models.HistoryEntry, error)
}

// TagRepository manages tags and their join rows, separately per kind.
type TagRepository interface {
	ListTags(ctx context.Context, kind models.EntityKind) ([]models.Tag, error)
	CreateTag(ctx context.Context, t models.Tag) (*models.Tag, error)
	UpdateTag(ctx context.Context, t models.Tag) error

	// DeleteTag clears the tag row and every relation row pointing at it.
	DeleteTag(ctx context.Context, kind models.EntityKind, id string) error

	ListRelations(ctx context.Context, kind models.EntityKind) ([]models.TagRelation, error)

	// Attach is a no-op when the relation already exists.
	Attach(ctx context.Context, rel models.TagRelation) error

	// Detach is a no-op when the relation does not exist.
	Detach(ctx context.Context, rel models.TagRelation) error
}

// CustomFieldRepository stores field definitions and per-entity values.
type CustomFieldRepository interface {
	ListDefinitions(ctx context.Context) ([]models.CustomFieldDefinition, error)
	CreateDefinition(ctx context.Context, d models.CustomFieldDefinition) (*models.CustomFieldDefinition, error)
	UpdateDefinition(ctx context.Context, d models.CustomFieldDefinition) error

	// GetValues returns an empty (non-nil) map when nothing is stored.
	GetValues(ctx context.Context, kind models.EntityKind, entityID string) (map[string]any, error)

	// SaveValues replaces the whole value map of one entity.
	SaveValues(ctx context.Context, kind models.EntityKind, entityID string, values map[string]any) error
}

// PreferencesRepository stores per-user preferences keyed by email. The
// sheet is optional, like activities.
type PreferencesRepository interface {
	Get(ctx context.Context, email string) (*models.UserPreferences, error)
	Save(ctx context.Context, p models.UserPreferences) (*models.UserPreferences, error)
}

// Snapshot is everything the main screen needs, fetched in one round.
type Snapshot struct {
	Companies           []models.Company     `json:"companies"`
	Contacts            []models.Contact     `json:"contacts"`
	CompanyTags         []models.Tag         `json:"company_tags"`
	ContactTags         []models.Tag         `json:"contact_tags"`
	CompanyTagRelations []models.TagRelation `json:"company_tag_relations"`
	ContactTagRelations []models.TagRelation `json:"contact_tag_relations"`
}

// SnapshotLoader fetches a Snapshot with independent reads issued
// concurrently. Any failed read fails the whole load.
type SnapshotLoader interface {
	LoadAll(ctx context.Context) (*Snapshot, error)
}
