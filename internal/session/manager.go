package session

import (
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/gorilla/sessions"
	"github.com/labstack/echo/v4"
	"github.com/oklog/ulid/v2"
)

const (
	sessionName = "profiledesk_session"
	idKey       = "sid"

	// touchAfter limits idle-clock refreshes to one store write per window
	touchAfter = time.Minute
)

// Manager binds browsers to session records. The browser cookie only carries
// the signed session ID; the state itself lives in the Store.
//
// Expiry is idle-based: every visit re-issues the cookie with a fresh MaxAge
// and touches the stored record, so only sessions left unused for maxAge
// lapse.
type Manager struct {
	cookies sessions.Store
	options sessions.Options
	store   Store
	now     func() time.Time
}

// NewManager creates a new session manager
func NewManager(secret string, secure bool, maxAge int, store Store) *Manager {
	options := sessions.Options{
		Path:     "/",
		MaxAge:   maxAge,
		HttpOnly: true,
		Secure:   secure,
		SameSite: http.SameSiteLaxMode,
	}

	cookieStore := sessions.NewCookieStore([]byte(secret))
	cookieStore.Options = &options

	return &Manager{
		cookies: cookieStore,
		options: options,
		store:   store,
		now:     time.Now,
	}
}

// Store returns the record store behind the manager
func (m *Manager) Store() Store {
	return m.store
}

// Load returns the record for the request's browser. A browser without a
// valid cookie gets a freshly minted ID and a logged-out record; nothing is
// written to the store until the first state change.
func (m *Manager) Load(c echo.Context) (*Record, error) {
	cookieSession, err := m.cookies.Get(c.Request(), sessionName)
	if err != nil {
		slog.Debug("discarding unreadable session cookie", "error", err)
	}
	if cookieSession == nil {
		cookieSession = sessions.NewSession(m.cookies, sessionName)
		opts := m.options
		cookieSession.Options = &opts
	}

	id, _ := cookieSession.Values[idKey].(string)
	minted := id == ""
	if minted {
		id = ulid.Make().String()
		cookieSession.Values[idKey] = id
	}

	// re-issued on every visit so MaxAge counts from the last request
	if err := cookieSession.Save(c.Request(), c.Response()); err != nil {
		return nil, fmt.Errorf("failed to save session cookie: %w", err)
	}
	if minted {
		return NewRecord(id), nil
	}

	ctx := c.Request().Context()
	rec, err := m.store.Get(ctx, id)
	if errors.Is(err, ErrNotFound) {
		return NewRecord(id), nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load session %s: %w", id, err)
	}

	if now := m.now(); now.Sub(rec.UpdatedAt) >= touchAfter {
		if err := m.store.Touch(ctx, id); err != nil {
			slog.Warn("failed to refresh session idle clock", "session_id", id, "error", err)
		} else {
			rec.UpdatedAt = now.UTC()
		}
	}

	return rec, nil
}
