package sheetstore

import (
	"context"
	"testing"
	"time"

	"github.com/lalith-99/sheetcrm/internal/cache"
	"github.com/lalith-99/sheetcrm/internal/retry"
	"github.com/lalith-99/sheetcrm/internal/sheets"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

var testNow = time.Date(2024, 3, 10, 9, 30, 0, 0, time.UTC)

// setupTestStore returns a Store over an in-memory spreadsheet with every
// sheet created and its header written.
func setupTestStore(t *testing.T) (*Store, *sheets.Memory) {
	t.Helper()
	mem := sheets.NewMemory(SheetNames()...)
	s := newStoreOn(mem)
	require.NoError(t, s.EnsureHeaders(context.Background()))
	return s, mem
}

func newStoreOn(rows sheets.RowStore) *Store {
	r := retry.New(retry.Policy{Attempts: 3, BaseDelay: time.Millisecond}, zap.NewNop())
	return New(rows, cache.New(time.Minute), r, zap.NewNop()).WithClock(func() time.Time { return testNow })
}
