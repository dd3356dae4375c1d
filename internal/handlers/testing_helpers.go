package handlers

import (
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"

	"github.com/labstack/echo/v4"
	"github.com/loganlanou/profiledesk/internal/auth"
	"github.com/loganlanou/profiledesk/internal/session"
)

// NewTestContext creates a new Echo context for testing
func NewTestContext(method, path string, body io.Reader, contentType string) (echo.Context, *httptest.ResponseRecorder) {
	e := echo.New()

	req := httptest.NewRequest(method, path, body)
	if contentType != "" {
		req.Header.Set(echo.HeaderContentType, contentType)
	}

	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	c.SetPath(path)

	return c, rec
}

// NewTestFormContext creates an Echo context carrying a urlencoded form
func NewTestFormContext(path string, form url.Values) (echo.Context, *httptest.ResponseRecorder) {
	return NewTestContext(http.MethodPost, path, strings.NewReader(form.Encode()), echo.MIMEApplicationForm)
}

// SetTestSession binds a session in the given state to the context
func SetTestSession(c echo.Context, svc *auth.Service, state session.State) *auth.Session {
	rec := session.NewRecord("test-session")
	rec.State = state
	sess := svc.Bind(rec)
	auth.SetSession(c, sess)
	return sess
}
