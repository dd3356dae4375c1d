package session

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemoryStore_SaveGet(t *testing.T) {
	store := NewMemoryStore()
	ctx := context.Background()

	_, err := store.Get(ctx, "sid-1")
	assert.ErrorIs(t, err, ErrNotFound)

	rec := NewRecord("sid-1")
	rec.Cookies = []Cookie{{Name: "connect.sid", Value: "abc"}}
	require.NoError(t, store.Save(ctx, rec))
	assert.Equal(t, int64(1), rec.Version)

	got, err := store.Get(ctx, "sid-1")
	require.NoError(t, err)
	assert.Equal(t, rec.Cookies, got.Cookies)

	// callers get copies
	got.Cookies[0].Value = "changed"
	again, err := store.Get(ctx, "sid-1")
	require.NoError(t, err)
	assert.Equal(t, "abc", again.Cookies[0].Value)
}

func TestMemoryStore_VersionConflict(t *testing.T) {
	store := NewMemoryStore()
	ctx := context.Background()

	stale := NewRecord("sid-1")
	stale.Version = 3
	assert.ErrorIs(t, store.Save(ctx, stale), ErrVersionConflict)

	require.NoError(t, store.Save(ctx, NewRecord("sid-1")))
	assert.ErrorIs(t, store.Save(ctx, NewRecord("sid-1")), ErrVersionConflict)
}

func TestMemoryStore_DeleteIdleSince(t *testing.T) {
	store := NewMemoryStore()
	ctx := context.Background()
	now := time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)

	store.now = func() time.Time { return now.Add(-time.Hour) }
	require.NoError(t, store.Save(ctx, NewRecord("old")))
	store.now = func() time.Time { return now }
	require.NoError(t, store.Save(ctx, NewRecord("fresh")))

	n, err := store.DeleteIdleSince(ctx, now.Add(-time.Minute))
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)
	assert.Equal(t, 1, store.Len())

	require.NoError(t, store.Delete(ctx, "fresh"))
	assert.Equal(t, 0, store.Len())
}

func TestRecord_Clone(t *testing.T) {
	rec := NewRecord("sid-1")
	rec.Cookies = []Cookie{{Name: "a", Value: "1"}}

	cp := rec.Clone()
	cp.Cookies[0].Value = "2"
	cp.State.IsLoggedIn = true

	assert.Equal(t, "1", rec.Cookies[0].Value)
	assert.False(t, rec.State.IsLoggedIn)
}
