package storage

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/loganlanou/profiledesk/internal/session"
	"github.com/loganlanou/profiledesk/storage/db"
)

// SessionStore persists session records in the sessions table
type SessionStore struct {
	queries *db.Queries
	now     func() time.Time
}

var (
	_ session.Store   = (*SessionStore)(nil)
	_ session.Sweeper = (*SessionStore)(nil)
)

func NewSessionStore(queries *db.Queries) *SessionStore {
	return &SessionStore{
		queries: queries,
		now:     time.Now,
	}
}

func (s *SessionStore) Get(ctx context.Context, id string) (*session.Record, error) {
	row, err := s.queries.GetSession(ctx, id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, session.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get session: %w", err)
	}

	rec := &session.Record{
		ID:        row.ID,
		Version:   row.Version,
		UpdatedAt: time.Unix(row.UpdatedAt, 0).UTC(),
	}
	if err := json.Unmarshal([]byte(row.State), &rec.State); err != nil {
		return nil, fmt.Errorf("failed to decode session state: %w", err)
	}
	if err := json.Unmarshal([]byte(row.ApiCookies), &rec.Cookies); err != nil {
		return nil, fmt.Errorf("failed to decode session cookies: %w", err)
	}

	return rec, nil
}

func (s *SessionStore) Save(ctx context.Context, rec *session.Record) error {
	state, err := json.Marshal(rec.State)
	if err != nil {
		return fmt.Errorf("failed to encode session state: %w", err)
	}
	cookies := rec.Cookies
	if cookies == nil {
		cookies = []session.Cookie{}
	}
	cookieJSON, err := json.Marshal(cookies)
	if err != nil {
		return fmt.Errorf("failed to encode session cookies: %w", err)
	}

	now := s.now().UTC()

	var affected int64
	if rec.Version == 0 {
		affected, err = s.queries.InsertSession(ctx, db.InsertSessionParams{
			ID:         rec.ID,
			State:      string(state),
			ApiCookies: string(cookieJSON),
			CreatedAt:  now.Unix(),
			UpdatedAt:  now.Unix(),
		})
	} else {
		affected, err = s.queries.UpdateSessionIfVersion(ctx, db.UpdateSessionIfVersionParams{
			State:      string(state),
			ApiCookies: string(cookieJSON),
			UpdatedAt:  now.Unix(),
			ID:         rec.ID,
			Version:    rec.Version,
		})
	}
	if err != nil {
		return fmt.Errorf("failed to save session: %w", err)
	}
	if affected == 0 {
		return session.ErrVersionConflict
	}

	rec.Version++
	rec.UpdatedAt = time.Unix(now.Unix(), 0).UTC()
	return nil
}

func (s *SessionStore) Touch(ctx context.Context, id string) error {
	err := s.queries.TouchSession(ctx, db.TouchSessionParams{
		UpdatedAt: s.now().UTC().Unix(),
		ID:        id,
	})
	if err != nil {
		return fmt.Errorf("failed to touch session: %w", err)
	}
	return nil
}

func (s *SessionStore) Delete(ctx context.Context, id string) error {
	if err := s.queries.DeleteSession(ctx, id); err != nil {
		return fmt.Errorf("failed to delete session: %w", err)
	}
	return nil
}

func (s *SessionStore) DeleteIdleSince(ctx context.Context, cutoff time.Time) (int64, error) {
	n, err := s.queries.DeleteSessionsIdleSince(ctx, cutoff.Unix())
	if err != nil {
		return 0, fmt.Errorf("failed to sweep sessions: %w", err)
	}
	return n, nil
}
