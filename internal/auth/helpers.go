package auth

import (
	"github.com/labstack/echo/v4"
	"github.com/loganlanou/profiledesk/internal/session"
)

// SessionKey is the echo context key the session middleware stores the
// request's *Session under
const SessionKey = "auth_session"

// Admit is the route guard decision: only logged-in sessions pass
func Admit(state session.State) bool {
	return state.IsLoggedIn
}

// FromContext returns the request's session context
func FromContext(c echo.Context) (*Session, bool) {
	sess, ok := c.Get(SessionKey).(*Session)
	return sess, ok && sess != nil
}

// SetSession stores the session context on the request
func SetSession(c echo.Context, sess *Session) {
	c.Set(SessionKey, sess)
}

// IsAuthenticated checks if the current request is authenticated
func IsAuthenticated(c echo.Context) bool {
	sess, ok := FromContext(c)
	return ok && sess.IsLoggedIn()
}
