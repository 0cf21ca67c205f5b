package localstate

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func openTestDB(t *testing.T) *DB {
	t.Helper()
	db, err := Open(Options{InMemory: true})
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return db
}

type settings struct {
	Provider string `json:"provider"`
	Consent  bool   `json:"consent"`
}

func TestJSON_RoundTrip(t *testing.T) {
	db := openTestDB(t)

	var missing settings
	assert.ErrorIs(t, db.GetJSON("ai:ann", &missing), ErrKeyNotFound)

	require.NoError(t, db.PutJSON("ai:ann", settings{Provider: "openai", Consent: true}))
	var got settings
	require.NoError(t, db.GetJSON("ai:ann", &got))
	assert.Equal(t, settings{Provider: "openai", Consent: true}, got)

	require.NoError(t, db.Delete("ai:ann"))
	assert.ErrorIs(t, db.GetJSON("ai:ann", &got), ErrKeyNotFound)
}

func TestOpen_OnDisk(t *testing.T) {
	dir := t.TempDir()
	db, err := Open(Options{Path: dir})
	require.NoError(t, err)
	require.NoError(t, db.PutJSON("k", settings{Provider: "gemini"}))
	require.NoError(t, db.Close())

	db, err = Open(Options{Path: dir})
	require.NoError(t, err)
	defer db.Close()
	var got settings
	require.NoError(t, db.GetJSON("k", &got))
	assert.Equal(t, "gemini", got.Provider)
}

func TestTextCache(t *testing.T) {
	db := openTestDB(t)
	ctx := context.Background()
	c := db.TextCache("resp:", time.Hour)

	_, ok, err := c.GetText(ctx, "h1")
	require.NoError(t, err)
	assert.False(t, ok)

	require.NoError(t, c.SetText(ctx, "h1", "hello"))
	got, ok, err := c.GetText(ctx, "h1")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, "hello", got)

	other := db.TextCache("other:", time.Hour)
	_, ok, err = other.GetText(ctx, "h1")
	require.NoError(t, err)
	assert.False(t, ok, "prefixes isolate caches")
}

func TestTextCache_Expires(t *testing.T) {
	db := openTestDB(t)
	ctx := context.Background()
	c := db.TextCache("resp:", time.Second)
	require.NoError(t, c.SetText(ctx, "h1", "hello"))

	// Badger TTLs have one second resolution.
	assert.Eventually(t, func() bool {
		_, ok, err := c.GetText(ctx, "h1")
		return err == nil && !ok
	}, 4*time.Second, 100*time.Millisecond)
}
