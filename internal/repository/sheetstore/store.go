// Package sheetstore implements the repository contracts on top of a
// sheets.RowStore: fixed column layouts, a TTL read cache and retried
// remote calls.
package sheetstore

import (
	"context"
	"fmt"
	"slices"
	"time"

	"github.com/lalith-99/sheetcrm/internal/cache"
	"github.com/lalith-99/sheetcrm/internal/repository"
	"github.com/lalith-99/sheetcrm/internal/retry"
	"github.com/lalith-99/sheetcrm/internal/sheets"
	"go.uber.org/zap"
)

// table is one sheet with a fixed column layout. Row 1 holds the header;
// data starts at row 2.
type table struct {
	sheet   string
	headers []string
}

func (t table) width() int { return len(t.headers) }

func (t table) dataRange() string { return sheets.DataRange(t.sheet, t.width()) }

func (t table) rowRange(n int) string { return sheets.RowRange(t.sheet, t.width(), n) }

var (
	companiesTable = table{"Companies", []string{"id", "name", "industry", "notes", "website", "phone", "city", "country", "domain"}}
	contactsTable  = table{"Contacts", []string{"id", "companyId", "name", "position", "email", "phone"}}
	activityTable  = table{"Activities", []string{"id", "type", "title", "date", "notes", "companyId", "contactId", "status", "createdBy", "createdAt"}}

	companyHistoryTable = table{"CompanyHistory", []string{"companyId", "type", "timestamp", "user", "content", "meta"}}
	contactHistoryTable = table{"ContactHistory", []string{"contactId", "type", "timestamp", "user", "content", "meta"}}

	companyTagsTable = table{"CompanyTags", []string{"id", "name", "color", "description", "createdBy", "createdAt"}}
	contactTagsTable = table{"ContactTags", []string{"id", "name", "color", "description", "createdBy", "createdAt"}}

	companyTagRelationsTable = table{"CompanyTagRelations", []string{"companyId", "tagId"}}
	contactTagRelationsTable = table{"ContactTagRelations", []string{"contactId", "tagId"}}

	customFieldsTable      = table{"CustomFields", []string{"id", "entityType", "key", "label", "fieldType", "optionsJson", "required", "enabled", "order", "createdAt", "updatedAt"}}
	customFieldValuesTable = table{"CustomFieldValues", []string{"entityType", "entityId", "valuesJson", "updatedAt"}}

	preferencesTable = table{"UserPreferences", []string{"email", "displayName", "createdAt", "updatedAt"}}
)

var allTables = []table{
	companiesTable, contactsTable, activityTable,
	companyHistoryTable, contactHistoryTable,
	companyTagsTable, contactTagsTable,
	companyTagRelationsTable, contactTagRelationsTable,
	customFieldsTable, customFieldValuesTable,
	preferencesTable,
}

// SheetNames lists every sheet the CRM reads or writes.
func SheetNames() []string {
	names := make([]string, len(allTables))
	for i, t := range allTables {
		names[i] = t.sheet
	}
	return names
}

// Store holds what every repository shares: the backing rows, the read
// cache, the retry policy and a clock. One Store is built at startup and
// handed to each repository constructor.
type Store struct {
	rows   sheets.RowStore
	cache  *cache.TTL
	retry  *retry.Retrier
	logger *zap.Logger
	now    func() time.Time
}

func New(rows sheets.RowStore, c *cache.TTL, r *retry.Retrier, logger *zap.Logger) *Store {
	return &Store{
		rows:   rows,
		cache:  c,
		retry:  r,
		logger: logger,
		now:    time.Now,
	}
}

// WithClock replaces the time source used for generated ids and timestamps.
func (s *Store) WithClock(now func() time.Time) *Store {
	s.now = now
	return s
}

// EnsureHeaders writes the header row of every sheet whose row 1 is empty.
// Sheets that cannot be read are skipped with a warning; optional sheets
// may legitimately be missing.
func (s *Store) EnsureHeaders(ctx context.Context) error {
	for _, t := range allTables {
		head, err := retry.Value(ctx, s.retry, func(ctx context.Context) ([][]string, error) {
			return s.rows.Get(ctx, t.rowRange(1))
		})
		if err != nil {
			s.logger.Warn("skipping header check", zap.String("sheet", t.sheet), zap.Error(err))
			continue
		}
		if len(head) > 0 && len(head[0]) > 0 {
			continue
		}
		if err := s.writeRow(ctx, t, 1, t.headers); err != nil {
			return fmt.Errorf("write header of %s: %w", t.sheet, err)
		}
		s.logger.Info("wrote sheet header", zap.String("sheet", t.sheet))
	}
	return nil
}

// InvalidateAll drops every cached dataset.
func (s *Store) InvalidateAll() {
	s.cache.Clear()
}

func (s *Store) readRows(ctx context.Context, t table) ([][]string, error) {
	rows, err := retry.Value(ctx, s.retry, func(ctx context.Context) ([][]string, error) {
		return s.rows.Get(ctx, t.dataRange())
	})
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", t.sheet, err)
	}
	return rows, nil
}

func (s *Store) appendRow(ctx context.Context, t table, row []string) error {
	err := s.retry.Run(ctx, func(ctx context.Context) error {
		return s.rows.Append(ctx, t.dataRange(), [][]string{row})
	})
	if err != nil {
		return fmt.Errorf("append to %s: %w", t.sheet, err)
	}
	return nil
}

func (s *Store) writeRow(ctx context.Context, t table, n int, row []string) error {
	err := s.retry.Run(ctx, func(ctx context.Context) error {
		return s.rows.Update(ctx, t.rowRange(n), [][]string{row})
	})
	if err != nil {
		return fmt.Errorf("update %s row %d: %w", t.sheet, n, err)
	}
	return nil
}

func (s *Store) clearRow(ctx context.Context, t table, n int) error {
	err := s.retry.Run(ctx, func(ctx context.Context) error {
		return s.rows.Clear(ctx, t.rowRange(n))
	})
	if err != nil {
		return fmt.Errorf("clear %s row %d: %w", t.sheet, n, err)
	}
	return nil
}

// locateRow re-reads the sheet and returns the 1-based row number of the
// first row matching match.
//
// Row positions are looked up at write time rather than remembered from an
// earlier read: another session may have appended or cleared rows since,
// and a stale offset would overwrite the wrong record.
func (s *Store) locateRow(ctx context.Context, t table, match func(row []string) bool) (int, error) {
	rows, err := s.readRows(ctx, t)
	if err != nil {
		return 0, err
	}
	for i, row := range rows {
		if match(row) {
			return i + 2, nil
		}
	}
	return 0, repository.ErrNotFound
}

// locateAll is locateRow for every matching row.
func (s *Store) locateAll(ctx context.Context, t table, match func(row []string) bool) ([]int, error) {
	rows, err := s.readRows(ctx, t)
	if err != nil {
		return nil, err
	}
	var found []int
	for i, row := range rows {
		if match(row) {
			found = append(found, i+2)
		}
	}
	return found, nil
}

func byID(id string) func(row []string) bool {
	return func(row []string) bool { return id != "" && cell(row, 0) == id }
}

// cachedList is the read-through path shared by every sheet: cache hit,
// else a retried read decoded row by row, with undecodable rows dropped.
func cachedList[T any](ctx context.Context, s *Store, key string, t table, decode func([]string) (T, bool)) ([]T, error) {
	if cached, ok := cache.Lookup[[]T](s.cache, key); ok {
		return slices.Clone(cached), nil
	}
	rows, err := s.readRows(ctx, t)
	if err != nil {
		return nil, err
	}
	out := make([]T, 0, len(rows))
	for _, row := range rows {
		if rec, ok := decode(row); ok {
			out = append(out, rec)
		}
	}
	s.cache.Set(key, out)
	return slices.Clone(out), nil
}

var (
	_ repository.CompanyRepository     = (*CompanyStore)(nil)
	_ repository.ContactRepository     = (*ContactStore)(nil)
	_ repository.ActivityRepository    = (*ActivityStore)(nil)
	_ repository.HistoryRepository     = (*HistoryStore)(nil)
	_ repository.TagRepository         = (*TagStore)(nil)
	_ repository.CustomFieldRepository = (*CustomFieldStore)(nil)
	_ repository.PreferencesRepository = (*PreferencesStore)(nil)
	_ repository.SnapshotLoader        = (*Loader)(nil)
)
