package sheetstore

import (
	"context"
	"errors"
	"fmt"

	"github.com/lalith-99/sheetcrm/internal/models"
	"github.com/lalith-99/sheetcrm/internal/repository"
)

type TagStore struct {
	s *Store
}

func NewTagStore(s *Store) *TagStore {
	return &TagStore{s: s}
}

func tagTables(kind models.EntityKind) (tags, relations table, err error) {
	switch kind {
	case models.KindCompany:
		return companyTagsTable, companyTagRelationsTable, nil
	case models.KindContact:
		return contactTagsTable, contactTagRelationsTable, nil
	}
	return table{}, table{}, fmt.Errorf("tags: unsupported entity kind %q", kind)
}

func tagsKey(kind models.EntityKind) string      { return "tags:" + string(kind) }
func relationsKey(kind models.EntityKind) string { return "tagRelations:" + string(kind) }

func (t *TagStore) ListTags(ctx context.Context, kind models.EntityKind) ([]models.Tag, error) {
	tags, _, err := tagTables(kind)
	if err != nil {
		return nil, err
	}
	return cachedList(ctx, t.s, tagsKey(kind), tags, tagFromRow(kind))
}

func (t *TagStore) CreateTag(ctx context.Context, tag models.Tag) (*models.Tag, error) {
	tags, _, err := tagTables(tag.Kind)
	if err != nil {
		return nil, err
	}
	now := t.s.now()
	if tag.ID == "" {
		tag.ID = models.NewID(now)
	}
	if tag.CreatedAt == "" {
		tag.CreatedAt = models.Timestamp(now)
	}
	if err := t.s.appendRow(ctx, tags, tagToRow(tag, now)); err != nil {
		return nil, fmt.Errorf("insert tag: %w", err)
	}
	t.s.cache.Delete(tagsKey(tag.Kind))
	return &tag, nil
}

func (t *TagStore) UpdateTag(ctx context.Context, tag models.Tag) error {
	tags, _, err := tagTables(tag.Kind)
	if err != nil {
		return err
	}
	n, err := t.s.locateRow(ctx, tags, byID(tag.ID))
	if err != nil {
		return fmt.Errorf("locate tag %s: %w", tag.ID, err)
	}
	if err := t.s.writeRow(ctx, tags, n, tagToRow(tag, t.s.now())); err != nil {
		return fmt.Errorf("update tag: %w", err)
	}
	t.s.cache.Delete(tagsKey(tag.Kind))
	return nil
}

func (t *TagStore) DeleteTag(ctx context.Context, kind models.EntityKind, id string) error {
	tags, relations, err := tagTables(kind)
	if err != nil {
		return err
	}
	n, err := t.s.locateRow(ctx, tags, byID(id))
	if err != nil {
		return fmt.Errorf("locate tag %s: %w", id, err)
	}
	if err := t.s.clearRow(ctx, tags, n); err != nil {
		return fmt.Errorf("delete tag: %w", err)
	}
	t.s.cache.Delete(tagsKey(kind))

	// Orphaned join rows would resurface the tag id on every entity.
	rows, err := t.s.locateAll(ctx, relations, func(row []string) bool { return cell(row, 1) == id })
	if err != nil {
		return fmt.Errorf("locate relations of tag %s: %w", id, err)
	}
	for _, rn := range rows {
		if err := t.s.clearRow(ctx, relations, rn); err != nil {
			return fmt.Errorf("delete tag relation: %w", err)
		}
	}
	t.s.cache.Delete(relationsKey(kind))
	return nil
}

func (t *TagStore) ListRelations(ctx context.Context, kind models.EntityKind) ([]models.TagRelation, error) {
	_, relations, err := tagTables(kind)
	if err != nil {
		return nil, err
	}
	return cachedList(ctx, t.s, relationsKey(kind), relations, relationFromRow(kind))
}

func (t *TagStore) Attach(ctx context.Context, rel models.TagRelation) error {
	_, relations, err := tagTables(rel.Kind)
	if err != nil {
		return err
	}
	if rel.EntityID == "" || rel.TagID == "" {
		return fmt.Errorf("attach tag: both %s id and tag id are required", rel.Kind)
	}
	_, err = t.s.locateRow(ctx, relations, matchRelation(rel))
	if err == nil {
		return nil
	}
	if !errors.Is(err, repository.ErrNotFound) {
		return fmt.Errorf("attach tag: %w", err)
	}
	if err := t.s.appendRow(ctx, relations, relationToRow(rel)); err != nil {
		return fmt.Errorf("attach tag: %w", err)
	}
	t.s.cache.Delete(relationsKey(rel.Kind))
	return nil
}

func (t *TagStore) Detach(ctx context.Context, rel models.TagRelation) error {
	_, relations, err := tagTables(rel.Kind)
	if err != nil {
		return err
	}
	rows, err := t.s.locateAll(ctx, relations, matchRelation(rel))
	if err != nil {
		return fmt.Errorf("detach tag: %w", err)
	}
	for _, n := range rows {
		if err := t.s.clearRow(ctx, relations, n); err != nil {
			return fmt.Errorf("detach tag: %w", err)
		}
	}
	t.s.cache.Delete(relationsKey(rel.Kind))
	return nil
}

func matchRelation(rel models.TagRelation) func(row []string) bool {
	return func(row []string) bool {
		return cell(row, 0) == rel.EntityID && cell(row, 1) == rel.TagID
	}
}
