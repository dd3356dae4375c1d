package middleware

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/loganlanou/profiledesk/internal/api"
	"github.com/loganlanou/profiledesk/internal/auth"
	"github.com/loganlanou/profiledesk/internal/session"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testSecret = "test-secret-test-secret-test-sec"

// brokenStore fails every read
type brokenStore struct {
	*session.MemoryStore
}

func (brokenStore) Get(context.Context, string) (*session.Record, error) {
	return nil, errors.New("db is down")
}

func newTestEcho(store session.Store) *echo.Echo {
	e := echo.New()
	mgr := session.NewManager(testSecret, false, 3600, store)
	svc := auth.NewService(api.New("http://api.test"), store)
	e.Use(LoadSession(mgr, svc))

	e.GET("/open", func(c echo.Context) error {
		sess, ok := auth.FromContext(c)
		if !ok {
			return c.String(http.StatusInternalServerError, "no session")
		}
		return c.String(http.StatusOK, sess.ID())
	})
	e.GET("/private", func(c echo.Context) error {
		return c.String(http.StatusOK, "secret")
	}, RequireAuth())
	return e
}

func TestLoadSession_BindsSession(t *testing.T) {
	e := newTestEcho(session.NewMemoryStore())

	req := httptest.NewRequest(http.MethodGet, "/open", nil)
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.NotEmpty(t, rec.Body.String())
	assert.NotEmpty(t, rec.Result().Cookies())
}

func TestLoadSession_StoreFailureDegradesToLoggedOut(t *testing.T) {
	e := newTestEcho(session.NewMemoryStore())

	// mint a cookie first so the second request reaches the store
	first := httptest.NewRecorder()
	e.ServeHTTP(first, httptest.NewRequest(http.MethodGet, "/open", nil))

	broken := newTestEcho(brokenStore{session.NewMemoryStore()})
	req := httptest.NewRequest(http.MethodGet, "/private", nil)
	for _, c := range first.Result().Cookies() {
		req.AddCookie(c)
	}
	rec := httptest.NewRecorder()
	broken.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusFound, rec.Code)
	assert.Equal(t, LoginPath, rec.Header().Get(echo.HeaderLocation))
}

func TestLoadSession_StoreFailureUsesThrowawayIDs(t *testing.T) {
	minted := httptest.NewRecorder()
	newTestEcho(session.NewMemoryStore()).ServeHTTP(minted, httptest.NewRequest(http.MethodGet, "/open", nil))
	browserID := minted.Body.String()

	broken := newTestEcho(brokenStore{session.NewMemoryStore()})
	ids := make(map[string]bool)
	for range 2 {
		req := httptest.NewRequest(http.MethodGet, "/open", nil)
		for _, c := range minted.Result().Cookies() {
			req.AddCookie(c)
		}
		rec := httptest.NewRecorder()
		broken.ServeHTTP(rec, req)

		require.Equal(t, http.StatusOK, rec.Code)
		id := rec.Body.String()
		assert.NotEmpty(t, id)
		assert.NotEqual(t, browserID, id)
		ids[id] = true
	}
	assert.Len(t, ids, 2, "degraded requests never share a session ID")
}

func TestRequireAuth(t *testing.T) {
	store := session.NewMemoryStore()
	e := newTestEcho(store)

	t.Run("logged out is redirected", func(t *testing.T) {
		rec := httptest.NewRecorder()
		e.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/private", nil))

		assert.Equal(t, http.StatusFound, rec.Code)
		assert.Equal(t, "/login", rec.Header().Get(echo.HeaderLocation))
	})

	t.Run("logged in passes", func(t *testing.T) {
		first := httptest.NewRecorder()
		e.ServeHTTP(first, httptest.NewRequest(http.MethodGet, "/open", nil))
		id := first.Body.String()

		rec := session.NewRecord(id)
		rec.State = session.State{IsLoggedIn: true, Email: "ada@example.com"}
		require.NoError(t, store.Save(t.Context(), rec))

		req := httptest.NewRequest(http.MethodGet, "/private", nil)
		for _, c := range first.Result().Cookies() {
			req.AddCookie(c)
		}
		resp := httptest.NewRecorder()
		e.ServeHTTP(resp, req)

		assert.Equal(t, http.StatusOK, resp.Code)
		assert.Equal(t, "secret", resp.Body.String())
	})
}

func TestSecureHeaders(t *testing.T) {
	e := echo.New()
	e.Use(SecureHeaders())
	e.GET("/", func(c echo.Context) error { return c.NoContent(http.StatusOK) })

	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))

	assert.Equal(t, "nosniff", rec.Header().Get("X-Content-Type-Options"))
	assert.Equal(t, "DENY", rec.Header().Get("X-Frame-Options"))
}

func TestRequestLogger_HandlesErrors(t *testing.T) {
	e := echo.New()
	e.Use(RequestLogger())
	e.GET("/boom", func(c echo.Context) error {
		return echo.NewHTTPError(http.StatusTeapot, "nope")
	})

	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/boom", nil))

	assert.Equal(t, http.StatusTeapot, rec.Code)
}
