package sheetstore

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/lalith-99/sheetcrm/internal/models"
	"github.com/lalith-99/sheetcrm/internal/repository"
	"go.uber.org/zap"
)

const preferencesKey = "preferences"

type PreferencesStore struct {
	s *Store
}

func NewPreferencesStore(s *Store) *PreferencesStore {
	return &PreferencesStore{s: s}
}

// Get returns nil, nil when the user has no row, and also when the
// UserPreferences sheet is missing or unreadable.
func (p *PreferencesStore) Get(ctx context.Context, email string) (*models.UserPreferences, error) {
	all, err := cachedList(ctx, p.s, preferencesKey, preferencesTable, preferencesFromRow)
	if err != nil {
		p.s.logger.Warn("preferences unavailable", zap.Error(err))
		return nil, nil
	}
	for i := range all {
		if strings.EqualFold(all[i].Email, email) {
			return &all[i], nil
		}
	}
	return nil, nil
}

// Save upserts the row keyed by p.Email, keeping the original CreatedAt.
func (p *PreferencesStore) Save(ctx context.Context, prefs models.UserPreferences) (*models.UserPreferences, error) {
	if prefs.Email == "" {
		return nil, fmt.Errorf("save preferences: missing email")
	}
	now := p.s.now()
	prefs.UpdatedAt = models.Timestamp(now)

	var existing []string
	n, err := p.s.locateRow(ctx, preferencesTable, func(row []string) bool {
		if strings.EqualFold(cell(row, 0), prefs.Email) {
			existing = row
			return true
		}
		return false
	})
	switch {
	case err == nil:
		if prefs.CreatedAt == "" {
			prefs.CreatedAt = cell(existing, 2)
		}
		err = p.s.writeRow(ctx, preferencesTable, n, preferencesToRow(prefs, now))
	case errors.Is(err, repository.ErrNotFound):
		if prefs.CreatedAt == "" {
			prefs.CreatedAt = models.Timestamp(now)
		}
		err = p.s.appendRow(ctx, preferencesTable, preferencesToRow(prefs, now))
	}
	if err != nil {
		return nil, fmt.Errorf("save preferences: %w", err)
	}
	p.s.cache.Delete(preferencesKey)
	return &prefs, nil
}
