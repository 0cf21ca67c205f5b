package sheetstore

import (
	"context"
	"errors"
	"fmt"

	"github.com/lalith-99/sheetcrm/internal/cache"
	"github.com/lalith-99/sheetcrm/internal/models"
	"github.com/lalith-99/sheetcrm/internal/repository"
	"go.uber.org/zap"
)

const definitionsKey = "customFieldDefinitions"

func valuesKey(kind models.EntityKind, entityID string) string {
	return fmt.Sprintf("customFieldValues:%s:%s", kind, entityID)
}

type CustomFieldStore struct {
	s *Store
}

func NewCustomFieldStore(s *Store) *CustomFieldStore {
	return &CustomFieldStore{s: s}
}

func (c *CustomFieldStore) ListDefinitions(ctx context.Context) ([]models.CustomFieldDefinition, error) {
	return cachedList(ctx, c.s, definitionsKey, customFieldsTable, definitionFromRow)
}

func (c *CustomFieldStore) CreateDefinition(ctx context.Context, d models.CustomFieldDefinition) (*models.CustomFieldDefinition, error) {
	now := c.s.now()
	if d.ID == "" {
		d.ID = models.NewID(now)
	}
	if d.CreatedAt == "" {
		d.CreatedAt = models.Timestamp(now)
	}
	d.UpdatedAt = models.Timestamp(now)
	if err := c.s.appendRow(ctx, customFieldsTable, definitionToRow(d, now)); err != nil {
		return nil, fmt.Errorf("insert custom field: %w", err)
	}
	c.s.cache.Delete(definitionsKey)
	return &d, nil
}

func (c *CustomFieldStore) UpdateDefinition(ctx context.Context, d models.CustomFieldDefinition) error {
	n, err := c.s.locateRow(ctx, customFieldsTable, byID(d.ID))
	if err != nil {
		return fmt.Errorf("locate custom field %s: %w", d.ID, err)
	}
	now := c.s.now()
	d.UpdatedAt = models.Timestamp(now)
	if err := c.s.writeRow(ctx, customFieldsTable, n, definitionToRow(d, now)); err != nil {
		return fmt.Errorf("update custom field: %w", err)
	}
	c.s.cache.Delete(definitionsKey)
	return nil
}

func (c *CustomFieldStore) GetValues(ctx context.Context, kind models.EntityKind, entityID string) (map[string]any, error) {
	key := valuesKey(kind, entityID)
	if cached, ok := cache.Lookup[map[string]any](c.s.cache, key); ok {
		return copyValues(cached), nil
	}

	rows, err := c.s.readRows(ctx, customFieldValuesTable)
	if err != nil {
		return nil, err
	}
	values := map[string]any{}
	for _, row := range rows {
		v, ok, badJSON := valuesFromRow(row)
		if !ok || v.EntityType != kind || v.EntityID != entityID {
			continue
		}
		if badJSON {
			c.s.logger.Warn("malformed custom field values, treating as empty",
				zap.String("entity_type", string(kind)),
				zap.String("entity_id", entityID),
			)
		}
		values = v.Values
		break
	}
	c.s.cache.Set(key, values)
	return copyValues(values), nil
}

func (c *CustomFieldStore) SaveValues(ctx context.Context, kind models.EntityKind, entityID string, values map[string]any) error {
	now := c.s.now()
	row, err := valuesToRow(models.CustomFieldValues{
		EntityType: kind,
		EntityID:   entityID,
		Values:     values,
		UpdatedAt:  models.Timestamp(now),
	}, now)
	if err != nil {
		return fmt.Errorf("encode custom field values: %w", err)
	}

	n, err := c.s.locateRow(ctx, customFieldValuesTable, func(r []string) bool {
		return cell(r, 0) == string(kind) && cell(r, 1) == entityID
	})
	switch {
	case err == nil:
		err = c.s.writeRow(ctx, customFieldValuesTable, n, row)
	case errors.Is(err, repository.ErrNotFound):
		err = c.s.appendRow(ctx, customFieldValuesTable, row)
	}
	if err != nil {
		return fmt.Errorf("save custom field values: %w", err)
	}
	c.s.cache.Delete(valuesKey(kind, entityID))
	return nil
}

func copyValues(in map[string]any) map[string]any {
	out := make(map[string]any, len(in))
	for k, v := range in {
		out[k] = v
	}
	return out
}
