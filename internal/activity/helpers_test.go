package activity

import (
	"context"
	"testing"
	"time"

	"github.com/lalith-99/sheetcrm/internal/cache"
	"github.com/lalith-99/sheetcrm/internal/history"
	"github.com/lalith-99/sheetcrm/internal/models"
	"github.com/lalith-99/sheetcrm/internal/realtime"
	"github.com/lalith-99/sheetcrm/internal/repository/sheetstore"
	"github.com/lalith-99/sheetcrm/internal/retry"
	"github.com/lalith-99/sheetcrm/internal/sheets"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

// 2024-03-10 is "today" in every test.
var testNow = time.Date(2024, 3, 10, 9, 30, 0, 0, time.UTC)

type testEnv struct {
	svc     *Service
	mem     *sheets.Memory
	history *sheetstore.HistoryStore
	events  []realtime.Event
}

func (e *testEnv) Publish(ev realtime.Event) { e.events = append(e.events, ev) }

func setupService(t *testing.T) *testEnv {
	t.Helper()
	mem := sheets.NewMemory(sheetstore.SheetNames()...)
	r := retry.New(retry.Policy{Attempts: 1}, zap.NewNop())
	store := sheetstore.New(mem, cache.New(time.Minute), r, zap.NewNop()).WithClock(func() time.Time { return testNow })
	require.NoError(t, store.EnsureHeaders(context.Background()))

	env := &testEnv{mem: mem, history: sheetstore.NewHistoryStore(store)}
	types := models.DefaultActivityTypes()
	recorder := history.NewLogger(env.history, types, zap.NewNop()).WithClock(func() time.Time { return testNow })
	env.svc = NewService(sheetstore.NewActivityStore(store), recorder, types, zap.NewNop()).
		WithClock(func() time.Time { return testNow }).
		WithPublisher(env)
	return env
}

func (e *testEnv) seed(t *testing.T, acts ...models.Activity) {
	t.Helper()
	for _, a := range acts {
		_, err := e.svc.Create(context.Background(), "seed", a)
		require.NoError(t, err)
	}
}

func (e *testEnv) feed(t *testing.T, kind models.EntityKind, id string) []models.HistoryEntry {
	t.Helper()
	entries, err := e.history.List(context.Background(), kind, id)
	require.NoError(t, err)
	return entries
}

func ids(list []models.Activity) []string {
	out := make([]string, len(list))
	for i, a := range list {
		out[i] = a.ID
	}
	return out
}

func ptr[T any](v T) *T { return &v }
