// Package history writes the human-readable audit feed shown on company and
// contact pages.
package history

import (
	"context"
	"fmt"
	"slices"
	"sort"
	"time"

	"github.com/lalith-99/sheetcrm/internal/models"
	"github.com/lalith-99/sheetcrm/internal/repository"
	"go.uber.org/zap"
)

// Provenance tags stored in HistoryEntry.Meta.
const (
	MetaActivityCreated = "activity_created"
	MetaActivityUpdated = "activity_updated"
	MetaActivityDeleted = "activity_deleted"
)

type Logger struct {
	repo   repository.HistoryRepository
	types  models.ActivityTypes
	logger *zap.Logger
	now    func() time.Time
}

func NewLogger(repo repository.HistoryRepository, types models.ActivityTypes, logger *zap.Logger) *Logger {
	return &Logger{repo: repo, types: types, logger: logger, now: time.Now}
}

// WithClock replaces the time source used to stamp entries.
func (l *Logger) WithClock(now func() time.Time) *Logger {
	l.now = now
	return l
}

// ActivityCreated appends "<Label>: <title>" to every linked feed.
func (l *Logger) ActivityCreated(ctx context.Context, actor string, a models.Activity) error {
	content := fmt.Sprintf("%s: %s", l.types.Label(a.Type), a.Title)
	return l.logActivity(ctx, actor, a, content, MetaActivityCreated)
}

func (l *Logger) ActivityUpdated(ctx context.Context, actor string, a models.Activity) error {
	content := fmt.Sprintf("Updated %s: %s", l.types.Label(a.Type), a.Title)
	return l.logActivity(ctx, actor, a, content, MetaActivityUpdated)
}

// ActivityDeleted is called with the record as it was before the delete.
func (l *Logger) ActivityDeleted(ctx context.Context, actor string, a models.Activity) error {
	content := fmt.Sprintf("Deleted %s: %s", l.types.Label(a.Type), a.Title)
	return l.logActivity(ctx, actor, a, content, MetaActivityDeleted)
}

// logActivity writes one event per linked company and one per linked
// contact. An activity linked to neither is logged as a warning and skipped.
func (l *Logger) logActivity(ctx context.Context, actor string, a models.Activity, content, action string) error {
	if a.CompanyID == "" && a.ContactID == "" {
		l.logger.Warn("activity has no company or contact, history not written",
			zap.String("activity_id", a.ID),
			zap.String("action", action),
		)
		return nil
	}

	meta := action + ":" + a.ID
	stamp := models.Timestamp(l.now())
	targets := []struct {
		kind models.EntityKind
		id   string
	}{
		{models.KindCompany, a.CompanyID},
		{models.KindContact, a.ContactID},
	}
	for _, t := range targets {
		if t.id == "" {
			continue
		}
		err := l.repo.Append(ctx, models.HistoryEntry{
			Kind:      t.kind,
			EntityID:  t.id,
			Type:      models.HistoryEvent,
			Timestamp: stamp,
			User:      actor,
			Content:   content,
			Meta:      meta,
		})
		if err != nil {
			return fmt.Errorf("log %s for %s %s: %w", action, t.kind, t.id, err)
		}
	}
	return nil
}

// AddNote appends a free-text note to one feed.
func (l *Logger) AddNote(ctx context.Context, kind models.EntityKind, entityID, user, content string) (*models.HistoryEntry, error) {
	if !kind.Valid() {
		return nil, fmt.Errorf("add note: unsupported entity kind %q", kind)
	}
	if entityID == "" {
		return nil, fmt.Errorf("add note: missing %s id", kind)
	}
	if content == "" {
		return nil, fmt.Errorf("add note: empty content")
	}
	e := models.HistoryEntry{
		Kind:      kind,
		EntityID:  entityID,
		Type:      models.HistoryNote,
		Timestamp: models.Timestamp(l.now()),
		User:      user,
		Content:   content,
	}
	if err := l.repo.Append(ctx, e); err != nil {
		return nil, fmt.Errorf("add note: %w", err)
	}
	return &e, nil
}

// List returns the feed of one entity, newest first.
func (l *Logger) List(ctx context.Context, kind models.EntityKind, entityID string) ([]models.HistoryEntry, error) {
	entries, err := l.repo.List(ctx, kind, entityID)
	if err != nil {
		return nil, fmt.Errorf("list history: %w", err)
	}
	// Timestamps share one layout, so string order is time order. Entries
	// from the same millisecond keep reverse sheet order.
	slices.Reverse(entries)
	sort.SliceStable(entries, func(i, j int) bool {
		return entries[i].Timestamp > entries[j].Timestamp
	})
	return entries, nil
}
