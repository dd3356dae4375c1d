package auth

import (
	"context"
	"log/slog"
	"slices"

	"github.com/loganlanou/profiledesk/internal/api"
	"github.com/loganlanou/profiledesk/internal/session"
)

// Session is the session context of a single request. Middleware creates
// it and handlers receive it explicitly; it is not shared between requests.
type Session struct {
	svc *Service
	rec *session.Record
	jar *cookieJar
	api *api.Client
}

// ID returns the browser session ID
func (s *Session) ID() string {
	return s.rec.ID
}

// State returns the current session state
func (s *Session) State() session.State {
	return s.rec.State
}

// IsLoggedIn reports whether the route guard admits this session
func (s *Session) IsLoggedIn() bool {
	return Admit(s.rec.State)
}

// Version returns the persisted version of the session record
func (s *Session) Version() int64 {
	return s.rec.Version
}

// API returns a client that carries this browser's upstream cookies
func (s *Session) API() *api.Client {
	return s.api
}

// Login authenticates with the API. On HTTP 200 the session becomes logged
// in with the given email and is persisted; otherwise nothing changes.
// Identical concurrent logins on the same session share one upstream call.
func (s *Session) Login(ctx context.Context, email, password string) bool {
	base := s.current()
	// the flight outlives whichever caller started it
	flightCtx := context.WithoutCancel(ctx)
	v, err, shared := s.svc.flight.Do(loginKey(s.rec.ID, email, password), func() (any, error) {
		return s.svc.login(flightCtx, base, email, password)
	})
	if err != nil {
		slog.Info("login failed", "session_id", s.rec.ID, "email", email, "error", err)
		return false
	}

	s.adopt(v.(*session.Record))
	slog.Info("login succeeded", "session_id", s.rec.ID, "email", email, "shared", shared)
	return true
}

// Logout tells the API to end its session and then resets this session to
// logged out, regardless of the API's answer.
func (s *Session) Logout(ctx context.Context) {
	base := s.current()
	flightCtx := context.WithoutCancel(ctx)
	v, err, _ := s.svc.flight.Do(logoutKey(s.rec.ID), func() (any, error) {
		return s.svc.logout(flightCtx, base)
	})
	if err != nil {
		slog.Error("failed to persist logout", "session_id", s.rec.ID, "error", err)
		cleared := s.rec.Clone()
		cleared.State = session.LoggedOut()
		s.adopt(cleared)
		return
	}

	s.adopt(v.(*session.Record))
	slog.Info("logged out", "session_id", s.rec.ID)
}

// SyncCookies persists upstream cookie changes picked up by API calls made
// through API(). Session state is left untouched. If the stored cookies
// changed since this request loaded them, another request logged in or out
// meanwhile and the rotated cookies belong to a session that no longer
// exists; they are dropped and the newer record is adopted.
func (s *Session) SyncCookies(ctx context.Context) error {
	seeded := s.rec.Cookies
	cookies := s.jar.collect()
	if slices.Equal(cookies, seeded) {
		return nil
	}

	rec, err := s.svc.update(ctx, s.rec, func(rec *session.Record) bool {
		if !slices.Equal(rec.Cookies, seeded) {
			slog.Debug("dropping stale cookie update", "session_id", rec.ID, "version", rec.Version)
			return false
		}
		rec.Cookies = cookies
		return true
	})
	if err != nil {
		return err
	}
	s.adopt(rec)
	return nil
}

// current snapshots the record including cookies the jar picked up since Bind
func (s *Session) current() *session.Record {
	rec := s.rec.Clone()
	if s.jar.url != nil {
		rec.Cookies = s.jar.collect()
	}
	return rec
}

func (s *Session) adopt(rec *session.Record) {
	s.rec = rec.Clone()
	s.jar = newJar(s.svc.client.BaseURL(), s.rec.Cookies)
	s.api = s.svc.client.WithJar(s.jar.jar)
}
