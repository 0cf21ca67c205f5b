package sheetstore

import (
	"context"
	"fmt"

	"github.com/lalith-99/sheetcrm/internal/models"
	"go.uber.org/zap"
)

const activitiesKey = "activities"

type ActivityStore struct {
	s *Store
}

func NewActivityStore(s *Store) *ActivityStore {
	return &ActivityStore{s: s}
}

// List degrades to an empty set when the Activities sheet cannot be read:
// deployments that never enabled activities have no such sheet. The empty
// result is not cached so the sheet is picked up as soon as it exists.
func (a *ActivityStore) List(ctx context.Context) ([]models.Activity, error) {
	list, err := cachedList(ctx, a.s, activitiesKey, activityTable, activityFromRow)
	if err != nil {
		a.s.logger.Warn("activities unavailable, returning empty set", zap.Error(err))
		return []models.Activity{}, nil
	}
	return list, nil
}

// GetByID reads without degrading: writes look their target up through it,
// and a failed read there must not pass for a missing activity. Returns
// nil, nil when no row has id.
func (a *ActivityStore) GetByID(ctx context.Context, id string) (*models.Activity, error) {
	list, err := cachedList(ctx, a.s, activitiesKey, activityTable, activityFromRow)
	if err != nil {
		return nil, fmt.Errorf("get activity %s: %w", id, err)
	}
	for i := range list {
		if list[i].ID == id {
			return &list[i], nil
		}
	}
	return nil, nil
}

func (a *ActivityStore) Create(ctx context.Context, act models.Activity) error {
	if act.ID == "" {
		return fmt.Errorf("insert activity: missing id")
	}
	if err := a.s.appendRow(ctx, activityTable, activityToRow(act, a.s.now())); err != nil {
		return fmt.Errorf("insert activity: %w", err)
	}
	a.s.cache.Delete(activitiesKey)
	return nil
}

func (a *ActivityStore) Update(ctx context.Context, act models.Activity) error {
	n, err := a.s.locateRow(ctx, activityTable, byID(act.ID))
	if err != nil {
		return fmt.Errorf("locate activity %s: %w", act.ID, err)
	}
	if err := a.s.writeRow(ctx, activityTable, n, activityToRow(act, a.s.now())); err != nil {
		return fmt.Errorf("update activity: %w", err)
	}
	a.s.cache.Delete(activitiesKey)
	return nil
}

func (a *ActivityStore) Delete(ctx context.Context, id string) error {
	n, err := a.s.locateRow(ctx, activityTable, byID(id))
	if err != nil {
		return fmt.Errorf("locate activity %s: %w", id, err)
	}
	if err := a.s.clearRow(ctx, activityTable, n); err != nil {
		return fmt.Errorf("delete activity: %w", err)
	}
	a.s.cache.Delete(activitiesKey)
	return nil
}
