package handlers

import (
	"bytes"
	"net/http"

	"github.com/a-h/templ"
	"github.com/labstack/echo/v4"
)

// Render renders a templ component and writes it to the response
func Render(c echo.Context, component templ.Component) error {
	return RenderStatus(c, http.StatusOK, component)
}

// RenderStatus renders a templ component with the given status code.
// The page is buffered so a template failure never leaves a half-written body.
func RenderStatus(c echo.Context, status int, component templ.Component) error {
	var buf bytes.Buffer
	if err := component.Render(c.Request().Context(), &buf); err != nil {
		return err
	}
	return c.HTMLBlob(status, buf.Bytes())
}
