package auth

import (
	"context"
	"crypto/sha256"
	"errors"
	"fmt"
	"log/slog"

	"github.com/loganlanou/profiledesk/internal/api"
	"github.com/loganlanou/profiledesk/internal/session"
	"golang.org/x/sync/singleflight"
)

const maxSaveAttempts = 3

// Service owns login/logout against the remote API and the persistence of
// the resulting session state.
type Service struct {
	client *api.Client
	store  session.Store
	flight singleflight.Group
}

// NewService creates a new auth service
func NewService(client *api.Client, store session.Store) *Service {
	return &Service{
		client: client,
		store:  store,
	}
}

// Bind returns the session context for one request's record
func (s *Service) Bind(rec *session.Record) *Session {
	jar := newJar(s.client.BaseURL(), rec.Cookies)
	return &Session{
		svc: s,
		rec: rec,
		jar: jar,
		api: s.client.WithJar(jar.jar),
	}
}

// login runs one upstream login and, on HTTP 200, commits the logged-in state
func (s *Service) login(ctx context.Context, base *session.Record, email, password string) (*session.Record, error) {
	jar := newJar(s.client.BaseURL(), base.Cookies)
	if err := s.client.WithJar(jar.jar).Login(ctx, email, password); err != nil {
		return nil, err
	}

	cookies := jar.collect()
	return s.update(ctx, base, func(rec *session.Record) bool {
		rec.State = session.State{IsLoggedIn: true, Name: "", Email: email}
		rec.Cookies = cookies
		return true
	})
}

// logout tells the API to drop its session, then resets the local state no
// matter how that went.
func (s *Service) logout(ctx context.Context, base *session.Record) (*session.Record, error) {
	jar := newJar(s.client.BaseURL(), base.Cookies)
	if err := s.client.WithJar(jar.jar).Logout(ctx); err != nil {
		slog.Warn("api logout failed, clearing local session anyway", "session_id", base.ID, "error", err)
	}

	cookies := jar.collect()
	return s.update(ctx, base, func(rec *session.Record) bool {
		rec.State = session.LoggedOut()
		rec.Cookies = cookies
		return true
	})
}

// update applies mutate and saves with a version check. On conflict the
// latest stored record is reloaded and mutate is applied to it instead, so
// a stale copy never overwrites a newer commit. When mutate returns false
// the change no longer applies and the record is returned unsaved.
func (s *Service) update(ctx context.Context, base *session.Record, mutate func(*session.Record) bool) (*session.Record, error) {
	rec := base.Clone()
	for attempt := 1; attempt <= maxSaveAttempts; attempt++ {
		if !mutate(rec) {
			return rec, nil
		}

		err := s.store.Save(ctx, rec)
		if err == nil {
			return rec, nil
		}
		if !errors.Is(err, session.ErrVersionConflict) {
			return nil, fmt.Errorf("failed to save session %s: %w", rec.ID, err)
		}

		slog.Debug("session version conflict, reloading", "session_id", rec.ID, "attempt", attempt)
		latest, err := s.store.Get(ctx, rec.ID)
		switch {
		case errors.Is(err, session.ErrNotFound):
			rec = session.NewRecord(rec.ID)
		case err != nil:
			return nil, fmt.Errorf("failed to reload session %s: %w", rec.ID, err)
		default:
			rec = latest
		}
	}
	return nil, fmt.Errorf("session %s: %w after %d attempts", base.ID, session.ErrVersionConflict, maxSaveAttempts)
}

func loginKey(id, email, password string) string {
	return fmt.Sprintf("%s|login|%s|%x", id, email, sha256.Sum256([]byte(password)))
}

func logoutKey(id string) string {
	return id + "|logout"
}
