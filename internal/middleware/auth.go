package middleware

import (
	"log/slog"
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/loganlanou/profiledesk/internal/auth"
)

// LoginPath is where the route guard sends unauthenticated browsers
const LoginPath = "/login"

// RequireAuth only lets logged-in sessions through. Everyone else is
// redirected to the login page.
func RequireAuth() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			if !auth.IsAuthenticated(c) {
				slog.Debug("route guard redirect", "path", c.Request().URL.Path)
				return c.Redirect(http.StatusFound, LoginPath)
			}
			return next(c)
		}
	}
}
