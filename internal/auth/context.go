package auth

import (
	"github.com/labstack/echo/v4"
)

// Context holds authentication data to be passed to templates
type Context struct {
	IsAuthenticated bool
	User            *UserData
}

// UserData contains user information for templates
type UserData struct {
	Name  string
	Email string
}

// GetAuthContext builds the template auth context from the request's session
func GetAuthContext(c echo.Context) *Context {
	sess, ok := FromContext(c)
	if !ok || !sess.IsLoggedIn() {
		return &Context{
			IsAuthenticated: false,
			User:            nil,
		}
	}

	state := sess.State()
	return &Context{
		IsAuthenticated: true,
		User: &UserData{
			Name:  state.Name,
			Email: state.Email,
		},
	}
}
