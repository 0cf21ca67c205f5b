// Package customfield manages user-defined fields on companies and
// contacts: their definitions, stored values, form rendering and value
// collection.
package customfield

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"sort"
	"strings"

	"github.com/lalith-99/sheetcrm/internal/models"
	"github.com/lalith-99/sheetcrm/internal/repository"
	"go.uber.org/zap"
)

var (
	ErrDuplicateKey      = errors.New("custom field key already exists")
	ErrInvalidDefinition = errors.New("invalid custom field definition")
	ErrMissingRequired   = errors.New("required custom fields missing")
)

type Service struct {
	repo   repository.CustomFieldRepository
	logger *zap.Logger
}

func NewService(repo repository.CustomFieldRepository, logger *zap.Logger) *Service {
	return &Service{repo: repo, logger: logger}
}

// AllDefinitions returns every definition, disabled ones included, in
// display order.
func (s *Service) AllDefinitions(ctx context.Context) ([]models.CustomFieldDefinition, error) {
	defs, err := s.repo.ListDefinitions(ctx)
	if err != nil {
		return nil, fmt.Errorf("list custom fields: %w", err)
	}
	sort.SliceStable(defs, func(i, j int) bool { return defs[i].Order < defs[j].Order })
	return defs, nil
}

// Definitions returns the enabled definitions shown for kind.
func (s *Service) Definitions(ctx context.Context, kind models.EntityKind) ([]models.CustomFieldDefinition, error) {
	all, err := s.AllDefinitions(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]models.CustomFieldDefinition, 0, len(all))
	for _, d := range all {
		if d.Enabled && d.AppliesTo(kind) {
			out = append(out, d)
		}
	}
	return out, nil
}

func invalid(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrInvalidDefinition, fmt.Sprintf(format, args...))
}

func (s *Service) check(d models.CustomFieldDefinition) error {
	if strings.TrimSpace(d.Label) == "" {
		return invalid("label is required")
	}
	if d.EntityType != models.KindBoth && !d.EntityType.Valid() {
		return invalid("entity type %q", d.EntityType)
	}
	if !d.FieldType.Valid() {
		return invalid("field type %q", d.FieldType)
	}
	if d.FieldType == models.FieldSelect {
		opts, err := ParseOptions(d.OptionsJSON)
		if err != nil {
			return invalid("options: %v", err)
		}
		if len(opts) == 0 {
			return invalid("select fields need at least one option")
		}
	}
	return nil
}

// CreateDefinition stores a new enabled definition. The key is slugged
// from Key, or from Label when Key is empty, and must be unique. A zero
// Order places the field last.
func (s *Service) CreateDefinition(ctx context.Context, d models.CustomFieldDefinition) (*models.CustomFieldDefinition, error) {
	d.Label = strings.TrimSpace(d.Label)
	if d.Key == "" {
		d.Key = d.Label
	}
	d.Key = Slug(d.Key)
	if d.Key == "" {
		return nil, invalid("key is required")
	}
	if err := s.check(d); err != nil {
		return nil, err
	}

	existing, err := s.AllDefinitions(ctx)
	if err != nil {
		return nil, err
	}
	var maxOrder float64
	for _, e := range existing {
		if e.Key == d.Key {
			return nil, fmt.Errorf("%w: %s", ErrDuplicateKey, d.Key)
		}
		maxOrder = max(maxOrder, e.Order)
	}
	if d.Order == 0 {
		d.Order = maxOrder + 1
	}
	d.ID = ""
	d.Enabled = true

	created, err := s.repo.CreateDefinition(ctx, d)
	if err != nil {
		return nil, fmt.Errorf("create custom field: %w", err)
	}
	return created, nil
}

// DefinitionPatch changes a definition. The key cannot be changed: stored
// values are keyed by it.
type DefinitionPatch struct {
	Label       *string            `json:"label"`
	EntityType  *models.EntityKind `json:"entity_type"`
	FieldType   *models.FieldType  `json:"field_type"`
	OptionsJSON *string            `json:"options_json"`
	Required    *bool              `json:"required"`
	Enabled     *bool              `json:"enabled"`
	Order       *float64           `json:"order"`
}

func (s *Service) find(ctx context.Context, id string) (*models.CustomFieldDefinition, error) {
	all, err := s.AllDefinitions(ctx)
	if err != nil {
		return nil, err
	}
	for i := range all {
		if all[i].ID == id {
			return &all[i], nil
		}
	}
	return nil, fmt.Errorf("custom field %s: %w", id, repository.ErrNotFound)
}

func (s *Service) UpdateDefinition(ctx context.Context, id string, p DefinitionPatch) (*models.CustomFieldDefinition, error) {
	d, err := s.find(ctx, id)
	if err != nil {
		return nil, err
	}
	if p.Label != nil {
		d.Label = strings.TrimSpace(*p.Label)
	}
	if p.EntityType != nil {
		d.EntityType = *p.EntityType
	}
	if p.FieldType != nil {
		d.FieldType = *p.FieldType
	}
	if p.OptionsJSON != nil {
		d.OptionsJSON = *p.OptionsJSON
	}
	if p.Required != nil {
		d.Required = *p.Required
	}
	if p.Enabled != nil {
		d.Enabled = *p.Enabled
	}
	if p.Order != nil {
		d.Order = *p.Order
	}
	if err := s.check(*d); err != nil {
		return nil, err
	}
	if err := s.repo.UpdateDefinition(ctx, *d); err != nil {
		return nil, fmt.Errorf("update custom field: %w", err)
	}
	return d, nil
}

// DisableDefinition hides a field. Definitions are never removed, so
// values saved under the key survive and reappear when it is re-enabled.
func (s *Service) DisableDefinition(ctx context.Context, id string) (*models.CustomFieldDefinition, error) {
	disabled := false
	return s.UpdateDefinition(ctx, id, DefinitionPatch{Enabled: &disabled})
}

func checkKind(kind models.EntityKind, entityID string) error {
	if !kind.Valid() {
		return fmt.Errorf("unsupported entity kind %q", kind)
	}
	if entityID == "" {
		return fmt.Errorf("missing %s id", kind)
	}
	return nil
}

func (s *Service) Values(ctx context.Context, kind models.EntityKind, entityID string) (map[string]any, error) {
	if err := checkKind(kind, entityID); err != nil {
		return nil, fmt.Errorf("load custom values: %w", err)
	}
	values, err := s.repo.GetValues(ctx, kind, entityID)
	if err != nil {
		return nil, fmt.Errorf("load custom values: %w", err)
	}
	return values, nil
}

// SaveValues replaces the stored values of one entity.
func (s *Service) SaveValues(ctx context.Context, kind models.EntityKind, entityID string, values map[string]any) error {
	if err := checkKind(kind, entityID); err != nil {
		return fmt.Errorf("save custom values: %w", err)
	}
	if values == nil {
		values = map[string]any{}
	}
	if err := s.repo.SaveValues(ctx, kind, entityID, values); err != nil {
		return fmt.Errorf("save custom values: %w", err)
	}
	return nil
}

// SaveForm collects the submitted form for the fields shown on kind and
// saves the result. Values of fields not on the form (disabled ones, or
// ones scoped to the other kind) are carried over unchanged.
func (s *Service) SaveForm(ctx context.Context, kind models.EntityKind, entityID string, form url.Values) (map[string]any, error) {
	defs, err := s.Definitions(ctx, kind)
	if err != nil {
		return nil, err
	}
	collected := Collect(defs, form)
	if missing := Missing(defs, collected); len(missing) > 0 {
		return nil, fmt.Errorf("%w: %s", ErrMissingRequired, strings.Join(missing, ", "))
	}

	values, err := s.Values(ctx, kind, entityID)
	if err != nil {
		return nil, err
	}
	for k, v := range collected {
		values[k] = v
	}
	if err := s.SaveValues(ctx, kind, entityID, values); err != nil {
		return nil, err
	}
	return values, nil
}
