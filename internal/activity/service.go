// Package activity holds the rules for planned and logged interactions:
// validation, the status lifecycle, date queries and statistics.
package activity

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/lalith-99/sheetcrm/internal/models"
	"github.com/lalith-99/sheetcrm/internal/realtime"
	"github.com/lalith-99/sheetcrm/internal/repository"
	"go.uber.org/zap"
)

// ErrInvalidTransition is returned when an update tries to move a completed
// or cancelled activity to another status.
var ErrInvalidTransition = errors.New("invalid status transition")

// Recorder writes the audit trail of activity changes.
type Recorder interface {
	ActivityCreated(ctx context.Context, actor string, a models.Activity) error
	ActivityUpdated(ctx context.Context, actor string, a models.Activity) error
	ActivityDeleted(ctx context.Context, actor string, a models.Activity) error
}

// Publisher is told about every successful write.
type Publisher interface {
	Publish(e realtime.Event)
}

type Service struct {
	repo      repository.ActivityRepository
	history   Recorder
	publisher Publisher
	types     models.ActivityTypes
	logger    *zap.Logger
	now       func() time.Time
}

func NewService(repo repository.ActivityRepository, history Recorder, types models.ActivityTypes, logger *zap.Logger) *Service {
	return &Service{
		repo:    repo,
		history: history,
		types:   types,
		logger:  logger,
		now:     time.Now,
	}
}

func (s *Service) WithClock(now func() time.Time) *Service {
	s.now = now
	return s
}

func (s *Service) WithPublisher(p Publisher) *Service {
	s.publisher = p
	return s
}

// Types returns the configured activity types.
func (s *Service) Types() models.ActivityTypes {
	return s.types
}

// Patch is a partial update. Nil fields are left unchanged.
type Patch struct {
	Type      *string                `json:"type"`
	Title     *string                `json:"title"`
	Date      *string                `json:"date"`
	Notes     *string                `json:"notes"`
	CompanyID *string                `json:"company_id"`
	ContactID *string                `json:"contact_id"`
	Status    *models.ActivityStatus `json:"status"`
}

func (p Patch) apply(a models.Activity) models.Activity {
	set := func(dst *string, v *string) {
		if v != nil {
			*dst = *v
		}
	}
	set(&a.Type, p.Type)
	set(&a.Title, p.Title)
	set(&a.Date, p.Date)
	set(&a.Notes, p.Notes)
	set(&a.CompanyID, p.CompanyID)
	set(&a.ContactID, p.ContactID)
	if p.Status != nil {
		a.Status = *p.Status
	}
	return a
}

// Create validates in, fills id, date, status and audit fields when absent,
// stores it and logs it to the linked history feeds.
func (s *Service) Create(ctx context.Context, actor string, in models.Activity) (*models.Activity, error) {
	if problems := s.Validate(in); len(problems) > 0 {
		return nil, &ValidationError{Problems: problems}
	}

	now := s.now()
	a := in
	if a.ID == "" {
		a.ID = models.NewID(now)
	}
	if a.Date == "" {
		a.Date = models.Timestamp(now)
	} else {
		a.Date = s.normalizeDate(a.Date)
	}
	if a.Status == "" {
		a.Status = models.StatusPlanned
	}
	if a.CreatedBy == "" {
		a.CreatedBy = actor
	}
	a.CreatedAt = models.Timestamp(now)

	if err := s.repo.Create(ctx, a); err != nil {
		return nil, fmt.Errorf("create activity: %w", err)
	}
	s.record(ctx, "created", a, s.history.ActivityCreated(ctx, actor, a))
	return &a, nil
}

// Update merges p over the stored activity. The id never changes. A patch
// that changes nothing is not written.
func (s *Service) Update(ctx context.Context, actor, id string, p Patch) (*models.Activity, error) {
	current, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	merged := p.apply(*current)
	merged.ID = current.ID
	if merged.Status != current.Status && current.Status != models.StatusPlanned {
		return nil, fmt.Errorf("%w: %s activity cannot become %s", ErrInvalidTransition, current.Status, merged.Status)
	}
	if problems := s.Validate(merged); len(problems) > 0 {
		return nil, &ValidationError{Problems: problems}
	}
	if p.Date != nil {
		merged.Date = s.normalizeDate(merged.Date)
	}
	if merged == *current {
		return &merged, nil
	}

	if err := s.repo.Update(ctx, merged); err != nil {
		return nil, fmt.Errorf("update activity %s: %w", id, err)
	}
	s.record(ctx, "updated", merged, s.history.ActivityUpdated(ctx, actor, merged))
	return &merged, nil
}

// Delete clears the activity and logs the record as it was before.
func (s *Service) Delete(ctx context.Context, actor, id string) error {
	current, err := s.Get(ctx, id)
	if err != nil {
		return err
	}
	if err := s.repo.Delete(ctx, id); err != nil {
		return fmt.Errorf("delete activity %s: %w", id, err)
	}
	s.record(ctx, "deleted", *current, s.history.ActivityDeleted(ctx, actor, *current))
	return nil
}

// Complete marks a planned activity completed. Completing an already
// completed activity changes nothing, so no row is written and no
// "updated" history entry is added.
func (s *Service) Complete(ctx context.Context, actor, id string) (*models.Activity, error) {
	status := models.StatusCompleted
	return s.Update(ctx, actor, id, Patch{Status: &status})
}

// Cancel marks a planned activity cancelled. Like Complete, repeating it
// writes nothing and adds no history entry.
func (s *Service) Cancel(ctx context.Context, actor, id string) (*models.Activity, error) {
	status := models.StatusCancelled
	return s.Update(ctx, actor, id, Patch{Status: &status})
}

// record finishes a write: the history error is logged, not returned,
// because the activity row is already stored.
func (s *Service) record(ctx context.Context, action string, a models.Activity, historyErr error) {
	if historyErr != nil {
		s.logger.Warn("activity saved but history not written",
			zap.String("activity_id", a.ID),
			zap.String("action", action),
			zap.Error(historyErr),
		)
	}
	if s.publisher != nil {
		s.publisher.Publish(realtime.Event{Entity: "activity", Action: action, ID: a.ID})
	}
}

// Get returns repository.ErrNotFound (wrapped) when no activity has id. A
// failed sheet read is returned as is, never as not found.
func (s *Service) Get(ctx context.Context, id string) (*models.Activity, error) {
	a, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("load activity: %w", err)
	}
	if a == nil {
		return nil, fmt.Errorf("activity %s: %w", id, repository.ErrNotFound)
	}
	return a, nil
}

func (s *Service) List(ctx context.Context) ([]models.Activity, error) {
	all, err := s.repo.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("load activities: %w", err)
	}
	return all, nil
}

func (s *Service) CompanyActivities(ctx context.Context, companyID string, f Filters) ([]models.Activity, error) {
	all, err := s.List(ctx)
	if err != nil {
		return nil, err
	}
	return ApplyFilters(byLinks(all, companyID, ""), f), nil
}

func (s *Service) ContactActivities(ctx context.Context, contactID string, f Filters) ([]models.Activity, error) {
	all, err := s.List(ctx)
	if err != nil {
		return nil, err
	}
	return ApplyFilters(byLinks(all, "", contactID), f), nil
}

func (s *Service) today() string {
	return s.now().UTC().Format(models.DateLayout)
}

// Upcoming returns planned activities dated today or later, oldest first.
// Empty ids do not narrow the result.
func (s *Service) Upcoming(ctx context.Context, companyID, contactID string) ([]models.Activity, error) {
	all, err := s.List(ctx)
	if err != nil {
		return nil, err
	}
	today := s.today()
	out := make([]models.Activity, 0)
	for _, a := range byLinks(all, companyID, contactID) {
		if a.Status == models.StatusPlanned && a.Date != "" && models.DatePrefix(a.Date) >= today {
			out = append(out, a)
		}
	}
	oldestFirst(out)
	return out, nil
}

// Overdue returns planned activities dated before today, oldest first.
func (s *Service) Overdue(ctx context.Context) ([]models.Activity, error) {
	all, err := s.List(ctx)
	if err != nil {
		return nil, err
	}
	today := s.today()
	out := make([]models.Activity, 0)
	for _, a := range all {
		if a.Status == models.StatusPlanned && a.Date != "" && models.DatePrefix(a.Date) < today {
			out = append(out, a)
		}
	}
	oldestFirst(out)
	return out, nil
}

type Stats struct {
	Total    int                           `json:"total"`
	ByType   map[string]int                `json:"by_type"`
	ByStatus map[models.ActivityStatus]int `json:"by_status"`
	Upcoming int                           `json:"upcoming"`
	Overdue  int                           `json:"overdue"`
}

// Stats counts the activities linked to companyID and contactID (empty ids
// do not narrow). Upcoming and Overdue only count planned activities.
func (s *Service) Stats(ctx context.Context, companyID, contactID string) (*Stats, error) {
	all, err := s.List(ctx)
	if err != nil {
		return nil, err
	}
	st := &Stats{
		ByType:   make(map[string]int),
		ByStatus: make(map[models.ActivityStatus]int, len(models.Statuses)),
	}
	for _, status := range models.Statuses {
		st.ByStatus[status] = 0
	}

	today := s.today()
	for _, a := range byLinks(all, companyID, contactID) {
		st.Total++
		st.ByType[a.Type]++
		if _, ok := st.ByStatus[a.Status]; ok {
			st.ByStatus[a.Status]++
		}
		if a.Status != models.StatusPlanned || a.Date == "" {
			continue
		}
		if models.DatePrefix(a.Date) >= today {
			st.Upcoming++
		} else {
			st.Overdue++
		}
	}
	return st, nil
}
