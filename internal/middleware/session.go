package middleware

import (
	"log/slog"

	"github.com/labstack/echo/v4"
	"github.com/loganlanou/profiledesk/internal/auth"
	"github.com/loganlanou/profiledesk/internal/session"
	"github.com/oklog/ulid/v2"
)

// LoadSession resolves the browser's session record and binds it to the
// request as an *auth.Session. A store failure degrades to a logged-out
// session under a throwaway ID instead of failing the request.
func LoadSession(mgr *session.Manager, svc *auth.Service) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			rec, err := mgr.Load(c)
			if err != nil {
				slog.Error("failed to load session, continuing logged out",
					"path", c.Request().URL.Path,
					"error", err,
				)
				rec = session.NewRecord(ulid.Make().String())
			}

			auth.SetSession(c, svc.Bind(rec))
			return next(c)
		}
	}
}
