package handlers

import (
	"github.com/labstack/echo/v4"
	"github.com/loganlanou/profiledesk/views/pages"
)

type HomeHandler struct {
	cfg Config
}

func NewHomeHandler(cfg Config) *HomeHandler {
	return &HomeHandler{cfg: cfg}
}

// HandleHome renders the static landing page
func (h *HomeHandler) HandleHome(c echo.Context) error {
	return Render(c, pages.Home(pages.HomeData{Page: h.cfg.page(c, "")}))
}
