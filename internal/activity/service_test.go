package activity

import (
	"context"
	"errors"
	"testing"

	"github.com/lalith-99/sheetcrm/internal/models"
	"github.com/lalith-99/sheetcrm/internal/realtime"
	"github.com/lalith-99/sheetcrm/internal/repository"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValidate_CollectsEveryProblem(t *testing.T) {
	env := setupService(t)

	problems := env.svc.Validate(models.Activity{Type: "EMAIL"})

	require.Len(t, problems, 2)
	assert.Contains(t, problems[0], "title is required")
	assert.Contains(t, problems[1], "company or a contact")
}

func TestValidate_Rules(t *testing.T) {
	env := setupService(t)
	tests := []struct {
		name string
		in   models.Activity
		want []string
	}{
		{"valid phone call", models.Activity{Type: "PHONE", CompanyID: "c1"}, nil},
		{"unknown type", models.Activity{Type: "FAX", CompanyID: "c1"}, []string{"unknown activity type"}},
		{"meeting needs title and date", models.Activity{Type: "MEETING", ContactID: "p1"}, []string{"title is required", "date is required"}},
		{"bad date", models.Activity{Type: "PHONE", CompanyID: "c1", Date: "not a date"}, []string{"not a valid date"}},
		{"bad status", models.Activity{Type: "PHONE", CompanyID: "c1", Status: "done"}, []string{"unknown status"}},
		{"iso timestamp", models.Activity{Type: "PHONE", CompanyID: "c1", Date: "2024-03-11T14:00:00.000Z"}, nil},
		{"impossible iso date", models.Activity{Type: "PHONE", CompanyID: "c1", Date: "2024-02-30"}, []string{"not a valid date"}},
		{"impossible iso timestamp", models.Activity{Type: "PHONE", CompanyID: "c1", Date: "2024-13-01T10:00"}, []string{"not a valid date"}},
		{"impossible numeric date", models.Activity{Type: "PHONE", CompanyID: "c1", Date: "31/02/2024"}, []string{"not a valid date"}},
		{"bare number", models.Activity{Type: "PHONE", CompanyID: "c1", Date: "5"}, []string{"not a valid date"}},
		{"day phrase", models.Activity{Type: "PHONE", CompanyID: "c1", Date: "next friday"}, nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			problems := env.svc.Validate(tt.in)
			require.Len(t, problems, len(tt.want))
			for i, w := range tt.want {
				assert.Contains(t, problems[i], w)
			}
		})
	}
}

func TestCreate_NormalizesWrittenDates(t *testing.T) {
	env := setupService(t)
	ctx := context.Background()

	// testNow is Sunday 2024-03-10.
	tests := map[string]string{
		"next friday": "2024-03-15T00:00:00.000Z",
		"Last Friday": "2024-03-08T00:00:00.000Z",
		"tomorrow":    "2024-03-11T00:00:00.000Z",
		"2024-03-12":  "2024-03-12",
	}
	for in, want := range tests {
		a, err := env.svc.Create(ctx, "ann@acme.io", models.Activity{Type: "PHONE", CompanyID: "c1", Date: in})
		require.NoError(t, err, in)
		assert.Equal(t, want, a.Date, in)
	}

	_, err := env.svc.Create(ctx, "ann@acme.io", models.Activity{Type: "PHONE", CompanyID: "c1", Date: "2024-02-30"})
	var verr *ValidationError
	require.ErrorAs(t, err, &verr)
}

func TestWrites_ReportReadFailureInsteadOfNotFound(t *testing.T) {
	env := setupService(t)
	ctx := context.Background()
	a, err := env.svc.Create(ctx, "ann@acme.io", models.Activity{Type: "PHONE", CompanyID: "c1"})
	require.NoError(t, err)

	env.mem.FailNext(1)
	_, err = env.svc.Complete(ctx, "ann@acme.io", a.ID)
	require.Error(t, err)
	assert.False(t, errors.Is(err, repository.ErrNotFound), err.Error())

	env.mem.FailNext(1)
	err = env.svc.Delete(ctx, "ann@acme.io", a.ID)
	require.Error(t, err)
	assert.False(t, errors.Is(err, repository.ErrNotFound), err.Error())

	// Nothing was written by either call.
	got, err := env.svc.Get(ctx, a.ID)
	require.NoError(t, err)
	assert.Equal(t, models.StatusPlanned, got.Status)
}

func TestCreate_ThenLookupReturnsSameRecord(t *testing.T) {
	env := setupService(t)
	ctx := context.Background()

	created, err := env.svc.Create(ctx, "ann@acme.io", models.Activity{
		Type: "MEETING", Title: "Kickoff", Date: "2024-03-12", Notes: "bring slides", CompanyID: "c1", ContactID: "p1",
	})
	require.NoError(t, err)

	assert.NotEmpty(t, created.ID)
	assert.Equal(t, models.StatusPlanned, created.Status)
	assert.Equal(t, "ann@acme.io", created.CreatedBy)
	assert.Equal(t, "2024-03-10T09:30:00.000Z", created.CreatedAt)

	got, err := env.svc.Get(ctx, created.ID)
	require.NoError(t, err)
	assert.Equal(t, *created, *got)
}

func TestCreate_DefaultsDateToNow(t *testing.T) {
	env := setupService(t)

	created, err := env.svc.Create(context.Background(), "ann", models.Activity{Type: "PHONE", CompanyID: "c1"})

	require.NoError(t, err)
	assert.Equal(t, "2024-03-10T09:30:00.000Z", created.Date)
}

func TestCreate_ValidationFailsBeforeWrite(t *testing.T) {
	env := setupService(t)

	_, err := env.svc.Create(context.Background(), "ann", models.Activity{Type: "EMAIL"})

	var verr *ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Len(t, verr.Problems, 2)
	assert.Len(t, env.mem.Rows("Activities"), 1, "header only")
}

func TestCreate_LogsHistoryAndPublishes(t *testing.T) {
	env := setupService(t)

	created, err := env.svc.Create(context.Background(), "ann", models.Activity{
		Type: "EMAIL", Title: "Intro", CompanyID: "c1", ContactID: "p1",
	})
	require.NoError(t, err)

	company := env.feed(t, models.KindCompany, "c1")
	contact := env.feed(t, models.KindContact, "p1")
	require.Len(t, company, 1)
	require.Len(t, contact, 1)
	assert.Equal(t, "Email: Intro", company[0].Content)
	assert.Equal(t, "activity_created:"+created.ID, company[0].Meta)
	assert.Equal(t, []realtime.Event{{Entity: "activity", Action: "created", ID: created.ID}}, env.events)
}

func TestUpdate_MergesAndKeepsID(t *testing.T) {
	env := setupService(t)
	ctx := context.Background()
	created, err := env.svc.Create(ctx, "ann", models.Activity{Type: "TASK", Title: "Send quote", Date: "2024-03-15", CompanyID: "c1"})
	require.NoError(t, err)

	updated, err := env.svc.Update(ctx, "bob", created.ID, Patch{Title: ptr("Send revised quote")})
	require.NoError(t, err)

	assert.Equal(t, created.ID, updated.ID)
	assert.Equal(t, "Send revised quote", updated.Title)
	assert.Equal(t, "2024-03-15", updated.Date)

	company := env.feed(t, models.KindCompany, "c1")
	require.Len(t, company, 2)
	assert.Equal(t, "Updated Task: Send revised quote", company[1].Content)
	assert.Equal(t, "bob", company[1].User)
}

func TestUpdate_NotFound(t *testing.T) {
	env := setupService(t)

	_, err := env.svc.Update(context.Background(), "ann", "missing", Patch{Title: ptr("x")})

	assert.ErrorIs(t, err, repository.ErrNotFound)
}

func TestUpdate_RevalidatesMergedRecord(t *testing.T) {
	env := setupService(t)
	ctx := context.Background()
	created, err := env.svc.Create(ctx, "ann", models.Activity{Type: "PHONE", CompanyID: "c1"})
	require.NoError(t, err)

	_, err = env.svc.Update(ctx, "ann", created.ID, Patch{CompanyID: ptr("")})

	var verr *ValidationError
	assert.ErrorAs(t, err, &verr)
}

func TestComplete_IsIdempotent(t *testing.T) {
	env := setupService(t)
	ctx := context.Background()
	created, err := env.svc.Create(ctx, "ann", models.Activity{Type: "PHONE", CompanyID: "c1"})
	require.NoError(t, err)

	first, err := env.svc.Complete(ctx, "ann", created.ID)
	require.NoError(t, err)
	second, err := env.svc.Complete(ctx, "ann", created.ID)
	require.NoError(t, err)

	assert.Equal(t, models.StatusCompleted, first.Status)
	assert.Equal(t, models.StatusCompleted, second.Status)
	got, err := env.svc.Get(ctx, created.ID)
	require.NoError(t, err)
	assert.Equal(t, models.StatusCompleted, got.Status)
	assert.Len(t, env.feed(t, models.KindCompany, "c1"), 2, "second completion writes nothing")
}

func TestStatusTransitions(t *testing.T) {
	env := setupService(t)
	ctx := context.Background()
	created, err := env.svc.Create(ctx, "ann", models.Activity{Type: "PHONE", CompanyID: "c1"})
	require.NoError(t, err)

	_, err = env.svc.Cancel(ctx, "ann", created.ID)
	require.NoError(t, err)

	_, err = env.svc.Complete(ctx, "ann", created.ID)
	assert.ErrorIs(t, err, ErrInvalidTransition)
	_, err = env.svc.Update(ctx, "ann", created.ID, Patch{Status: ptr(models.StatusPlanned)})
	assert.ErrorIs(t, err, ErrInvalidTransition)

	_, err = env.svc.Update(ctx, "ann", created.ID, Patch{Notes: ptr("no answer")})
	assert.NoError(t, err, "other fields stay editable")
}

func TestDelete_RemovesAndLogsOncePerLink(t *testing.T) {
	env := setupService(t)
	ctx := context.Background()
	created, err := env.svc.Create(ctx, "ann", models.Activity{Type: "EMAIL", Title: "Intro", CompanyID: "c1", ContactID: "p1"})
	require.NoError(t, err)

	require.NoError(t, env.svc.Delete(ctx, "ann", created.ID))

	all, err := env.svc.List(ctx)
	require.NoError(t, err)
	assert.Empty(t, all)

	company := env.feed(t, models.KindCompany, "c1")
	contact := env.feed(t, models.KindContact, "p1")
	require.Len(t, company, 2)
	require.Len(t, contact, 2)
	assert.Equal(t, "Deleted Email: Intro", company[1].Content)
	assert.Equal(t, "activity_deleted:"+created.ID, contact[1].Meta)

	assert.ErrorIs(t, env.svc.Delete(ctx, "ann", created.ID), repository.ErrNotFound)
}

func TestUpcomingAndOverdue(t *testing.T) {
	env := setupService(t)
	env.seed(t,
		models.Activity{ID: "past-1", Type: "PHONE", Date: "2024-03-01", CompanyID: "c1"},
		models.Activity{ID: "past-2", Type: "PHONE", Date: "2024-02-01", CompanyID: "c2"},
		models.Activity{ID: "today", Type: "PHONE", Date: "2024-03-10T18:00:00.000Z", CompanyID: "c1"},
		models.Activity{ID: "next", Type: "PHONE", Date: "2024-04-01", ContactID: "p1", CompanyID: "c1"},
		models.Activity{ID: "soon", Type: "PHONE", Date: "2024-03-20", CompanyID: "c2"},
		models.Activity{ID: "done", Type: "PHONE", Date: "2024-03-25", CompanyID: "c1", Status: models.StatusCompleted},
		models.Activity{ID: "dropped", Type: "PHONE", Date: "2024-01-25", CompanyID: "c1", Status: models.StatusCancelled},
	)
	ctx := context.Background()

	upcoming, err := env.svc.Upcoming(ctx, "", "")
	require.NoError(t, err)
	assert.Equal(t, []string{"today", "soon", "next"}, ids(upcoming))

	narrowed, err := env.svc.Upcoming(ctx, "c1", "")
	require.NoError(t, err)
	assert.Equal(t, []string{"today", "next"}, ids(narrowed))

	byContact, err := env.svc.Upcoming(ctx, "", "p1")
	require.NoError(t, err)
	assert.Equal(t, []string{"next"}, ids(byContact))

	overdue, err := env.svc.Overdue(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"past-2", "past-1"}, ids(overdue))
}

func TestStats(t *testing.T) {
	env := setupService(t)
	env.seed(t,
		models.Activity{ID: "a", Type: "PHONE", Date: "2024-03-01", CompanyID: "c1"},
		models.Activity{ID: "b", Type: "EMAIL", Title: "x", Date: "2024-03-11", CompanyID: "c1"},
		models.Activity{ID: "c", Type: "EMAIL", Title: "y", Date: "2024-03-11", CompanyID: "c1", Status: models.StatusCompleted},
		models.Activity{ID: "d", Type: "PHONE", Date: "2024-03-11", CompanyID: "c2"},
	)

	st, err := env.svc.Stats(context.Background(), "c1", "")

	require.NoError(t, err)
	assert.Equal(t, 3, st.Total)
	assert.Equal(t, map[string]int{"PHONE": 1, "EMAIL": 2}, st.ByType)
	assert.Equal(t, map[models.ActivityStatus]int{
		models.StatusPlanned:   2,
		models.StatusCompleted: 1,
		models.StatusCancelled: 0,
	}, st.ByStatus)
	assert.Equal(t, 1, st.Upcoming)
	assert.Equal(t, 1, st.Overdue)
}

func TestCompanyAndContactActivities(t *testing.T) {
	env := setupService(t)
	env.seed(t,
		models.Activity{ID: "a", Type: "PHONE", Date: "2024-03-01", CompanyID: "c1"},
		models.Activity{ID: "b", Type: "PHONE", Date: "2024-03-05", CompanyID: "c1", ContactID: "p1"},
		models.Activity{ID: "c", Type: "EMAIL", Title: "x", Date: "2024-03-07", ContactID: "p1"},
	)
	ctx := context.Background()

	company, err := env.svc.CompanyActivities(ctx, "c1", Filters{})
	require.NoError(t, err)
	assert.Equal(t, []string{"b", "a"}, ids(company))

	contact, err := env.svc.ContactActivities(ctx, "p1", Filters{Type: "EMAIL"})
	require.NoError(t, err)
	assert.Equal(t, []string{"c"}, ids(contact))
}
