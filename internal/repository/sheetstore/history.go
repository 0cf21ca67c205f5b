package sheetstore

import (
	"context"
	"fmt"

	"github.com/lalith-99/sheetcrm/internal/models"
)

type HistoryStore struct {
	s *Store
}

func NewHistoryStore(s *Store) *HistoryStore {
	return &HistoryStore{s: s}
}

func historyTable(kind models.EntityKind) (table, error) {
	switch kind {
	case models.KindCompany:
		return companyHistoryTable, nil
	case models.KindContact:
		return contactHistoryTable, nil
	}
	return table{}, fmt.Errorf("history: unsupported entity kind %q", kind)
}

func historyKey(kind models.EntityKind) string {
	return "history:" + string(kind)
}

func (h *HistoryStore) Append(ctx context.Context, e models.HistoryEntry) error {
	t, err := historyTable(e.Kind)
	if err != nil {
		return err
	}
	if e.EntityID == "" {
		return fmt.Errorf("append history: missing %s id", e.Kind)
	}
	if err := h.s.appendRow(ctx, t, historyToRow(e, h.s.now())); err != nil {
		return fmt.Errorf("append history: %w", err)
	}
	h.s.cache.Delete(historyKey(e.Kind))
	return nil
}

func (h *HistoryStore) List(ctx context.Context, kind models.EntityKind, entityID string) ([]models.HistoryEntry, error) {
	t, err := historyTable(kind)
	if err != nil {
		return nil, err
	}
	all, err := cachedList(ctx, h.s, historyKey(kind), t, historyFromRow(kind))
	if err != nil {
		return nil, err
	}
	out := make([]models.HistoryEntry, 0)
	for _, e := range all {
		if e.EntityID == entityID {
			out = append(out, e)
		}
	}
	return out, nil
}
