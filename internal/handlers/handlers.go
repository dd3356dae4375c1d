package handlers

import (
	"log/slog"
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/loganlanou/profiledesk/internal/auth"
	"github.com/loganlanou/profiledesk/views/layout"
	"github.com/loganlanou/profiledesk/views/pages"
)

const (
	loginPath   = "/login"
	profilePath = "/profile"
)

// Config holds what the page handlers need to know about the deployment
type Config struct {
	// SiteURL is the public origin of this server, used for canonical links
	SiteURL string
	// BrowserAPIBase is the API origin as seen by the browser ("" for same origin)
	BrowserAPIBase string
	// UploadMaxSize caps profile form bodies in bytes
	UploadMaxSize int64
}

func sessionFrom(c echo.Context) (*auth.Session, error) {
	sess, ok := auth.FromContext(c)
	if !ok {
		slog.Error("no session bound to request", "path", c.Request().URL.Path)
		return nil, echo.NewHTTPError(http.StatusInternalServerError, "session unavailable")
	}
	return sess, nil
}

// syncCookies persists upstream cookie changes picked up during the request
func syncCookies(c echo.Context, sess *auth.Session) {
	if err := sess.SyncCookies(c.Request().Context()); err != nil {
		slog.Warn("failed to persist api cookies", "session_id", sess.ID(), "error", err)
	}
}

// logoutAndRedirect handles an expired upstream session
func logoutAndRedirect(c echo.Context, sess *auth.Session) error {
	slog.Info("api session expired, logging out", "session_id", sess.ID(), "path", c.Request().URL.Path)
	sess.Logout(c.Request().Context())
	return c.Redirect(http.StatusFound, loginPath)
}

func (cfg Config) page(c echo.Context, title string) pages.Page {
	return pages.Page{
		Meta: layout.NewPageMeta(c, cfg.SiteURL).WithTitle(title),
		Auth: auth.GetAuthContext(c),
	}
}
