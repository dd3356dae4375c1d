package storage

import (
	"context"
	"testing"
	"time"

	"github.com/loganlanou/profiledesk/internal/session"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestSessionStore(t *testing.T) *SessionStore {
	t.Helper()
	_, queries, cleanup, err := NewTestDB()
	require.NoError(t, err)
	t.Cleanup(cleanup)
	return NewSessionStore(queries)
}

func TestSessionStore_GetMissing(t *testing.T) {
	store := newTestSessionStore(t)

	_, err := store.Get(context.Background(), "nope")

	assert.ErrorIs(t, err, session.ErrNotFound)
}

func TestSessionStore_SaveAndGet(t *testing.T) {
	store := newTestSessionStore(t)
	ctx := context.Background()

	rec := session.NewRecord("sid-1")
	rec.State = session.State{IsLoggedIn: true, Email: "ada@example.com"}
	rec.Cookies = []session.Cookie{{Name: "connect.sid", Value: "abc"}}

	require.NoError(t, store.Save(ctx, rec))
	assert.Equal(t, int64(1), rec.Version)
	assert.False(t, rec.UpdatedAt.IsZero())

	got, err := store.Get(ctx, "sid-1")
	require.NoError(t, err)
	assert.Equal(t, rec.State, got.State)
	assert.Equal(t, rec.Cookies, got.Cookies)
	assert.Equal(t, int64(1), got.Version)
}

func TestSessionStore_NilCookiesStoredAsEmpty(t *testing.T) {
	store := newTestSessionStore(t)
	ctx := context.Background()

	require.NoError(t, store.Save(ctx, session.NewRecord("sid-1")))

	got, err := store.Get(ctx, "sid-1")
	require.NoError(t, err)
	assert.Empty(t, got.Cookies)
	assert.Equal(t, session.LoggedOut(), got.State)
}

func TestSessionStore_VersionConflict(t *testing.T) {
	store := newTestSessionStore(t)
	ctx := context.Background()

	require.NoError(t, store.Save(ctx, session.NewRecord("sid-1")))

	// a second insert of the same ID loses
	err := store.Save(ctx, session.NewRecord("sid-1"))
	assert.ErrorIs(t, err, session.ErrVersionConflict)

	first, err := store.Get(ctx, "sid-1")
	require.NoError(t, err)
	second, err := store.Get(ctx, "sid-1")
	require.NoError(t, err)

	first.State.Email = "first@example.com"
	require.NoError(t, store.Save(ctx, first))
	assert.Equal(t, int64(2), first.Version)

	second.State.Email = "second@example.com"
	err = store.Save(ctx, second)
	assert.ErrorIs(t, err, session.ErrVersionConflict)

	got, err := store.Get(ctx, "sid-1")
	require.NoError(t, err)
	assert.Equal(t, "first@example.com", got.State.Email)
}

func TestSessionStore_Delete(t *testing.T) {
	store := newTestSessionStore(t)
	ctx := context.Background()

	require.NoError(t, store.Save(ctx, session.NewRecord("sid-1")))
	require.NoError(t, store.Delete(ctx, "sid-1"))

	_, err := store.Get(ctx, "sid-1")
	assert.ErrorIs(t, err, session.ErrNotFound)
}

func TestSessionStore_DeleteIdleSince(t *testing.T) {
	store := newTestSessionStore(t)
	ctx := context.Background()

	now := time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)
	store.now = func() time.Time { return now.Add(-48 * time.Hour) }
	require.NoError(t, store.Save(ctx, session.NewRecord("old")))

	store.now = func() time.Time { return now }
	require.NoError(t, store.Save(ctx, session.NewRecord("fresh")))

	n, err := store.DeleteIdleSince(ctx, now.Add(-24*time.Hour))
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)

	_, err = store.Get(ctx, "old")
	assert.ErrorIs(t, err, session.ErrNotFound)
	_, err = store.Get(ctx, "fresh")
	assert.NoError(t, err)
}

func TestSessionStore_TouchKeepsActiveSessionFromSweep(t *testing.T) {
	store := newTestSessionStore(t)
	ctx := context.Background()

	now := time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)
	store.now = func() time.Time { return now.Add(-48 * time.Hour) }
	rec := session.NewRecord("active")
	rec.State = session.State{IsLoggedIn: true, Email: "ada@example.com"}
	require.NoError(t, store.Save(ctx, rec))

	// read within the window, long after the last write
	store.now = func() time.Time { return now.Add(-time.Hour) }
	require.NoError(t, store.Touch(ctx, "active"))
	require.NoError(t, store.Touch(ctx, "missing"))

	n, err := store.DeleteIdleSince(ctx, now.Add(-24*time.Hour))
	require.NoError(t, err)
	assert.Equal(t, int64(0), n)

	got, err := store.Get(ctx, "active")
	require.NoError(t, err)
	assert.Equal(t, int64(1), got.Version, "touching is not a write")
	assert.True(t, got.State.IsLoggedIn)
}
